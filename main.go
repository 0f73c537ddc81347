package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/chazu/sapling/pkg/config"
	"github.com/chazu/sapling/pkg/xserver/xcb"
)

func main() {
	configPath := flag.StringP("config", "c", "", "path to the configuration file")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q\n", *logLevel)
		os.Exit(2)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Error("loading config", "path", *configPath, "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	backend, err := xcb.Connect(log)
	if err != nil {
		log.Error("connecting to display", "err", err)
		os.Exit(1)
	}
	defer backend.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := NewApp(cfg, *configPath, backend, log)
	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("session ended", "err", err)
		os.Exit(1)
	}
}
