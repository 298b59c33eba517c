package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
)

// Configuration problems detected before any file I/O.
var (
	ErrUnknownLocation = errors.New("unknown location")
	ErrUnknownCategory = errors.New("unknown category")
	ErrBadDateRange    = errors.New("start date after end date")
)

// CollectorConfig drives the unattended serial-device collector.
type CollectorConfig struct {
	// IntervalSeconds is the pause between polls inside the daily window.
	IntervalSeconds int `json:"interval_seconds"`
	// WindowStart/WindowEnd bound the daily collection window as HH:MM.
	// A window may cross midnight (e.g. 22:00 to 06:00).
	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`
	DataDir     string `json:"data_dir"`
	FilePrefix  string `json:"file_prefix"`
}

// Config holds all application configuration. Values come from defaults,
// an optional JSON config file, then environment variables, in that order.
type Config struct {
	// DataRoot is the directory holding per-site day-file trees.
	DataRoot  string `json:"data_root"`
	Addr      string `json:"addr"`
	StaticDir string `json:"static_dir"`
	LogLevel  string `json:"log_level"`
	// SiteDirs overrides the catalog data directory per location.
	SiteDirs  map[model.LocationID]string `json:"site_dirs,omitempty"`
	Collector CollectorConfig             `json:"collector"`
}

func defaults() *Config {
	return &Config{
		DataRoot:  "data",
		Addr:      ":8080",
		StaticDir: "frontend",
		LogLevel:  "info",
		Collector: CollectorConfig{
			IntervalSeconds: 60,
			WindowStart:     "08:00",
			WindowEnd:       "18:00",
			DataDir:         "collected_data",
			FilePrefix:      "mppt_data",
		},
	}
}

// Load builds the configuration. A missing config file is not an error: the
// defaults are written there so the operator has something to edit, matching
// how the field deployments were set up.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			if werr := writeDefault(path, cfg); werr != nil {
				log.Warn().Err(werr).Str("path", path).Msg("could not write default config")
			}
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			// Unmarshal over the populated struct: present keys override,
			// absent keys keep their defaults, nested objects merge.
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.DataRoot = envOr("PV_DATA_ROOT", cfg.DataRoot)
	cfg.Addr = envOr("PV_ADDR", cfg.Addr)
	cfg.StaticDir = envOr("PV_STATIC_DIR", cfg.StaticDir)
	cfg.LogLevel = envOr("PV_LOG_LEVEL", cfg.LogLevel)
	cfg.Collector.IntervalSeconds = envIntOr("PV_COLLECT_INTERVAL", cfg.Collector.IntervalSeconds)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Collector.IntervalSeconds <= 0 {
		return fmt.Errorf("collector interval must be positive, got %d", c.Collector.IntervalSeconds)
	}
	for _, clock := range []string{c.Collector.WindowStart, c.Collector.WindowEnd} {
		if _, err := time.Parse("15:04", clock); err != nil {
			return fmt.Errorf("collector window time %q: %w", clock, err)
		}
	}
	return nil
}

// SiteDir resolves the data directory for a location, honoring overrides.
func (c *Config) SiteDir(loc model.LocationID) string {
	if dir, ok := c.SiteDirs[loc]; ok {
		return dir
	}
	return model.SiteCatalog[loc].DataDir
}

func writeDefault(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
