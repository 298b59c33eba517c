// Package api serves the dashboard's REST surface. Every endpoint is
// stateless: the query string becomes one config.Request that rides through
// load, clean, and the requested analysis; nothing is remembered between
// requests. Long-running completions are additionally pushed to websocket
// clients through the ws bridge.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/aggregate"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/analysis"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/config"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/dataset"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/forecast"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/ws"
)

// Server handles the HTTP API for the analytics dashboard. It owns the
// loader, the websocket hub, and the bridge that feeds it.
type Server struct {
	cfg    *config.Config
	loader *dataset.Loader
	hub    *ws.Hub
	bridge *ws.Bridge
	logger zerolog.Logger
}

func New(cfg *config.Config) *Server {
	loader := dataset.NewLoader(cfg.DataRoot)
	for loc, dir := range cfg.SiteDirs {
		loader.SetSiteDir(loc, dir)
	}
	hub := ws.NewHub()
	return &Server{
		cfg:    cfg,
		loader: loader,
		hub:    hub,
		bridge: ws.NewBridge(hub),
		logger: log.With().Str("component", "api").Logger(),
	}
}

// Handler builds the full route table. API responses are gzip-compressed;
// /ws stays outside the gzip wrapper because the upgrade hijacks the
// connection.
func (s *Server) Handler() http.Handler {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/sites", s.handleSites)
	apiMux.HandleFunc("GET /api/summary", s.handleSummary)
	apiMux.HandleFunc("GET /api/aggregate", s.handleAggregate)
	apiMux.HandleFunc("GET /api/correlation", s.handleCorrelation)
	apiMux.HandleFunc("GET /api/forecast", s.handleForecast)
	apiMux.HandleFunc("GET /api/quality", s.handleQuality)
	apiMux.HandleFunc("GET /api/export.csv", s.handleExport)

	mux := http.NewServeMux()
	mux.Handle("/api/", gziphandler.GzipHandler(apiMux))
	mux.Handle("/ws", ws.NewHandler(s.hub, s.bridge))
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	if s.cfg.StaticDir != "" {
		if _, err := os.Stat(s.cfg.StaticDir); err == nil {
			mux.Handle("/", http.FileServer(http.Dir(s.cfg.StaticDir)))
		}
	}
	return mux
}

// Run starts the HTTP server and blocks until the context is canceled or an
// error occurs, draining open connections on the way out.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down server")
		s.hub.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

// requestLogger tags one analysis request with a fresh ID. The ID shows up
// in logs, the X-Request-ID header, and the forecast completion envelope so
// a dashboard client can tie them together.
func (s *Server) requestLogger(w http.ResponseWriter, r *http.Request) (zerolog.Logger, string) {
	id := uuid.NewString()
	w.Header().Set("X-Request-ID", id)
	logger := s.logger.With().Str("request_id", id).Str("path", r.URL.Path).Logger()
	return logger, id
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg}); err != nil {
		log.Warn().Err(err).Msg("failed to write error response")
		panic(http.ErrAbortHandler)
	}
}

// errorStatus maps pipeline failures onto the API contract: malformed
// parameters are 400, well-formed requests the data cannot support are 422,
// anything else is 500.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, errBadQuery),
		errors.Is(err, config.ErrUnknownLocation),
		errors.Is(err, config.ErrUnknownCategory),
		errors.Is(err, config.ErrBadDateRange),
		errors.Is(err, aggregate.ErrBadGranularity):
		return http.StatusBadRequest
	case errors.Is(err, analysis.ErrNoData),
		errors.Is(err, analysis.ErrInsufficientMatchedData),
		errors.Is(err, analysis.ErrNoTarget),
		errors.Is(err, forecast.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail logs the error and writes it out with its mapped status. 5xx bodies
// hide the underlying error text.
func fail(w http.ResponseWriter, logger zerolog.Logger, err error) {
	code := errorStatus(err)
	if code == http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
		writeJSONError(w, "internal server error", code)
		return
	}
	logger.Warn().Err(err).Int("status", code).Msg("request rejected")
	writeJSONError(w, err.Error(), code)
}
