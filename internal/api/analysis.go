package api

import (
	"net/http"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/analysis"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/clean"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/forecast"
)

func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	logger, reqID := s.requestLogger(w, r)
	req, err := parseRequest(r, false)
	if err != nil {
		fail(w, logger, err)
		return
	}

	bundle, _, err := s.loader.LoadLocation(req)
	if err != nil {
		fail(w, logger, err)
		return
	}
	mppt, _ := clean.Clean(bundle.MPPT)
	weather, _ := clean.Clean(bundle.Weather)

	res, err := analysis.Correlate(mppt, weather, analysis.Options{
		TargetColumn: r.URL.Query().Get("target"),
	})
	if err != nil {
		fail(w, logger, err)
		return
	}

	logger.Info().
		Str("location", string(req.Location)).
		Str("target", res.TargetColumn).
		Int("matched_hours", res.MatchedHours).
		Msg("correlation served")

	writeJSON(w, struct {
		RequestID string `json:"request_id"`
		*analysis.Result
	}{reqID, res})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	logger, reqID := s.requestLogger(w, r)
	req, err := parseRequest(r, false)
	if err != nil {
		fail(w, logger, err)
		return
	}
	seed, err := parseSeed(r)
	if err != nil {
		fail(w, logger, err)
		return
	}

	bundle, _, err := s.loader.LoadLocation(req)
	if err != nil {
		fail(w, logger, err)
		return
	}
	mppt, _ := clean.Clean(bundle.MPPT)
	weather, _ := clean.Clean(bundle.Weather)

	res, err := forecast.Run(mppt, weather, forecast.Options{
		TargetColumn: r.URL.Query().Get("target"),
		Seed:         seed,
	})
	if err != nil {
		fail(w, logger, err)
		return
	}

	s.bridge.OnForecastComplete(reqID, req.Location, res)

	logger.Info().
		Str("location", string(req.Location)).
		Str("target", res.TargetColumn).
		Str("best_model", res.BestModel().Name).
		Int("train_rows", res.TrainRows).
		Msg("forecast served")

	writeJSON(w, struct {
		RequestID string `json:"request_id"`
		*forecast.Result
	}{reqID, res})
}
