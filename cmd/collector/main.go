// collector polls a line-oriented measurement device inside the configured
// daily window and appends timestamped JSON records, one file per day. It is
// the unattended process that feeds the archive the analytics read.
//
// Usage:
//
//	collector -device /dev/ttyUSB0
//	collector -device - -once
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/collector"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/config"
)

func main() {
	configPath := flag.String("config", "config.json", "path to JSON config file")
	devicePath := flag.String("device", "-", "line device to poll (- for stdin)")
	once := flag.Bool("once", false, "take a single reading and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	var src io.Reader = os.Stdin
	if *devicePath != "-" {
		f, err := os.Open(*devicePath)
		if err != nil {
			log.Fatal().Err(err).Str("device", *devicePath).Msg("opening device")
		}
		defer f.Close()
		src = f
	}

	col, err := collector.New(collector.NewReaderDevice(src), cfg.Collector)
	if err != nil {
		log.Fatal().Err(err).Msg("building collector")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		if err := col.CollectOnce(ctx); err != nil {
			log.Fatal().Err(err).Msg("collection failed")
		}
		return
	}

	if err := col.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("collector stopped")
	}
}
