package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/aggregate"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/config"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
)

// errBadQuery marks query-string problems caught before any file is read.
var errBadQuery = errors.New("bad query parameter")

const dayFormat = "2006-01-02"

// parseRequest builds the pipeline request from the query string. Dates are
// inclusive calendar days. Validation happens here, before any I/O.
func parseRequest(r *http.Request, needCategory bool) (config.Request, error) {
	q := r.URL.Query()
	req := config.Request{
		Location: model.LocationID(q.Get("location")),
		Category: model.Category(q.Get("category")),
	}

	var err error
	if req.Start, err = parseDay("start", q.Get("start")); err != nil {
		return config.Request{}, err
	}
	if req.End, err = parseDay("end", q.Get("end")); err != nil {
		return config.Request{}, err
	}
	if needCategory && req.Category == "" {
		return config.Request{}, fmt.Errorf("%w: category is required", config.ErrUnknownCategory)
	}
	if err := req.Validate(); err != nil {
		return config.Request{}, err
	}
	return req, nil
}

func parseDay(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required (%s)", errBadQuery, name, dayFormat)
	}
	ts, err := time.Parse(dayFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q is not a %s date", errBadQuery, name, value, dayFormat)
	}
	return ts, nil
}

// parseGranularity reads the optional granularity parameter; absent means
// native resolution.
func parseGranularity(r *http.Request) (aggregate.Granularity, error) {
	return aggregate.ParseGranularity(r.URL.Query().Get("granularity"))
}

// parseSeed reads the optional forecast seed; absent means seed 0, the
// deterministic default.
func parseSeed(r *http.Request) (uint64, error) {
	value := r.URL.Query().Get("seed")
	if value == "" {
		return 0, nil
	}
	seed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: seed %q is not an unsigned integer", errBadQuery, value)
	}
	return seed, nil
}
