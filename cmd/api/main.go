package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/cecvol/pkg/api"
	"github.com/urmzd/cecvol/pkg/db"
	"github.com/urmzd/cecvol/pkg/device"
	"github.com/urmzd/cecvol/pkg/device/schema"
	"github.com/urmzd/cecvol/pkg/transport"

	_ "github.com/urmzd/cecvol/docs"
)

// @title           cecvol API
// @version         1.0
// @description     Local REST API for controlling a display over HDMI-CEC

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	dbPath := flag.String("db", "", "Path to database file (default: ~/.config/cecvol/cecvol.db)")
	listen := flag.String("listen", "", "Listen address, overriding the stored API server address")
	verbose := flag.Bool("v", false, "Log bus traffic")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	log.Info().Str("path", database.Path()).Msg("Database opened")

	if err := database.Prepare(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare database")
	}

	cfg, err := database.ActiveConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	addr := cfg.APIAddress()
	if *listen != "" {
		addr = *listen
	}

	log.Info().
		Str("profile", cfg.Profile.Name).
		Str("transport", cfg.CEC.Transport).
		Str("api_address", addr).
		Msg("Configuration loaded")

	// Fall back to NullController when the bus is unavailable
	var controller device.Controller
	var eventSubscriber device.EventSubscriber

	ctrl, err := transport.NewController(ctx, cfg.CEC, transport.Options(cfg.CEC))
	if err != nil {
		log.Warn().Err(err).Str("transport", cfg.CEC.Transport).Msg("CEC controller unavailable, using null controller")
		controller = device.NewNullController()
		eventSubscriber = device.NewNullEventSubscriber()
	} else {
		if err := ctrl.PollAll(ctx); err != nil {
			log.Warn().Err(err).Msg("Initial CEC poll failed")
		}
		ctrl.StartPolling(ctx, cfg.CEC.PollInterval)
		controller = ctrl
		eventSubscriber = ctrl
	}
	defer controller.Close()

	router := api.NewRouter(controller, eventSubscriber, schema.NewValidator())

	srv := &http.Server{
		Addr:              addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	log.Info().Str("address", addr).Msg("Starting API server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
