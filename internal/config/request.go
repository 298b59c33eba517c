package config

import (
	"fmt"
	"time"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
)

// Request is the immutable parameter object one analysis carries through the
// pipeline. Every handler and CLI builds a fresh one; nothing downstream
// mutates it or remembers it.
type Request struct {
	Location model.LocationID
	Category model.Category
	Start    time.Time
	End      time.Time
}

// Validate rejects malformed requests before any file is touched.
func (r Request) Validate() error {
	if _, ok := model.SiteCatalog[r.Location]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLocation, r.Location)
	}
	if r.Category != "" && r.Category != model.CategoryMPPT && r.Category != model.CategoryWeather {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, r.Category)
	}
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: %s > %s", ErrBadDateRange,
			r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	}
	return nil
}

// Range returns the request's inclusive day range.
func (r Request) Range() model.TimeRange {
	return model.TimeRange{Start: r.Start, End: r.End}
}
