// analytics-server serves the dashboard API and websocket feed over the
// day-file archive.
//
// Usage:
//
//	analytics-server
//	analytics-server -config config.json -addr :9090
//	analytics-server -data-root /srv/pv-archive
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/api"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/config"
)

func main() {
	configPath := flag.String("config", "config.json", "path to JSON config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	dataRoot := flag.String("data-root", "", "archive root directory (overrides config)")
	staticDir := flag.String("static-dir", "", "frontend directory (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dataRoot != "" {
		cfg.DataRoot = *dataRoot
	}
	if *staticDir != "" {
		cfg.StaticDir = *staticDir
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.New(cfg).Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
