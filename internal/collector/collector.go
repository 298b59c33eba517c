// Package collector polls a measurement device on a fixed interval inside a
// daily time window and appends each reading as one JSON line to a per-day
// log file.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/config"
)

// errNoData marks an empty line from the device; it is retried like any
// other transient failure.
var errNoData = errors.New("device returned no data")

// Record is one collected reading as it lands in the daily log file.
type Record struct {
	Timestamp string `json:"timestamp"`
	Data      string `json:"data"`
}

// Collector drives one device. It is not safe for concurrent Run calls.
type Collector struct {
	device  Device
	cfg     config.CollectorConfig
	limiter *rate.Limiter
	logger  zerolog.Logger

	startMin int // window start, minutes after midnight
	endMin   int

	// retryBudget caps the total time spent retrying one failed read.
	retryBudget time.Duration
	now         func() time.Time
}

func New(device Device, cfg config.CollectorConfig) (*Collector, error) {
	start, err := time.Parse("15:04", cfg.WindowStart)
	if err != nil {
		return nil, fmt.Errorf("window start %q: %w", cfg.WindowStart, err)
	}
	end, err := time.Parse("15:04", cfg.WindowEnd)
	if err != nil {
		return nil, fmt.Errorf("window end %q: %w", cfg.WindowEnd, err)
	}
	if cfg.IntervalSeconds <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %d", cfg.IntervalSeconds)
	}

	interval := time.Duration(cfg.IntervalSeconds) * time.Second
	return &Collector{
		device:      device,
		cfg:         cfg,
		limiter:     rate.NewLimiter(rate.Every(interval), 1),
		logger:      log.With().Str("component", "collector").Logger(),
		startMin:    start.Hour()*60 + start.Minute(),
		endMin:      end.Hour()*60 + end.Minute(),
		retryBudget: 30 * time.Second,
		now:         time.Now,
	}, nil
}

// Run polls until the context is canceled. Failed polls are logged and
// skipped; the loop itself only stops with the context.
func (c *Collector) Run(ctx context.Context) error {
	c.logger.Info().
		Str("window", c.cfg.WindowStart+"-"+c.cfg.WindowEnd).
		Int("interval_seconds", c.cfg.IntervalSeconds).
		Msg("collector started")

	ticker := time.NewTicker(time.Duration(c.cfg.IntervalSeconds) * time.Second)
	defer ticker.Stop()

	if err := c.CollectOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warn().Err(err).Msg("poll failed")
	}
	for {
		select {
		case <-ticker.C:
			if err := c.CollectOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				c.logger.Warn().Err(err).Msg("poll failed")
			}
		case <-ctx.Done():
			c.logger.Info().Msg("collector stopped")
			return ctx.Err()
		}
	}
}

// CollectOnce reads one line from the device and appends it to today's log.
// Outside the collection window it does nothing.
func (c *Collector) CollectOnce(ctx context.Context) error {
	now := c.now()
	if !c.inWindow(now) {
		c.logger.Debug().Time("at", now).Msg("outside collection window")
		return nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	line, err := c.readLine(ctx)
	if err != nil {
		return fmt.Errorf("read device: %w", err)
	}

	rec := Record{Timestamp: now.Format("2006-01-02 15:04:05"), Data: line}
	if err := c.appendRecord(rec, now); err != nil {
		return err
	}
	c.logger.Info().Str("at", rec.Timestamp).Msg("reading collected")
	return nil
}

// readLine retries transient device failures with capped exponential
// backoff. An empty line counts as a failure.
func (c *Collector) readLine(ctx context.Context) (string, error) {
	var line string
	op := func() error {
		var err error
		line, err = c.device.ReadLine(ctx)
		if err != nil {
			return err
		}
		if line == "" {
			return errNoData
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.retryBudget
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return "", err
	}
	return line, nil
}

// inWindow reports whether t falls inside the daily window, inclusive at
// both ends. A window whose end precedes its start crosses midnight.
func (c *Collector) inWindow(t time.Time) bool {
	cur := t.Hour()*60 + t.Minute()
	if c.startMin <= c.endMin {
		return cur >= c.startMin && cur <= c.endMin
	}
	return cur >= c.startMin || cur <= c.endMin
}

// appendRecord writes one JSON line to the day's log file, creating the
// directory and file as needed. Files rotate by calendar day.
func (c *Collector) appendRecord(rec Record, day time.Time) error {
	if err := os.MkdirAll(c.cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s.json", c.cfg.FilePrefix, day.Format("20060102"))
	path := filepath.Join(c.cfg.DataDir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	buf, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(buf, '\n')); err != nil {
		return fmt.Errorf("append to %s: %w", name, err)
	}
	return nil
}
