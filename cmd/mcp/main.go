package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/cecvol/pkg/db"
	"github.com/urmzd/cecvol/pkg/device"
	"github.com/urmzd/cecvol/pkg/device/schema"
	cecmcp "github.com/urmzd/cecvol/pkg/mcp"
	"github.com/urmzd/cecvol/pkg/transport"
)

func main() {
	// Logging must go to stderr; stdout is the MCP transport
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	dbPath := flag.String("db", "", "Path to database file (default: ~/.config/cecvol/cecvol.db)")
	flag.Parse()

	ctx := context.Background()

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

	var controller device.Controller
	ctrl, err := transport.NewController(ctx, cfg.CEC, transport.Options(cfg.CEC))
	if err != nil {
		log.Warn().Err(err).Str("transport", cfg.CEC.Transport).Msg("CEC controller unavailable, using null controller")
		controller = device.NewNullController()
	} else {
		if err := ctrl.PollAll(ctx); err != nil {
			log.Warn().Err(err).Msg("Initial CEC poll failed")
		}
		ctrl.StartPolling(ctx, cfg.CEC.PollInterval)
		controller = ctrl
	}
	defer controller.Close()

	mcpServer := cecmcp.NewServer(controller, schema.NewValidator())

	log.Info().Msg("Starting MCP server on stdio")

	if err := mcpServer.ServeStdio(); err != nil {
		log.Fatal().Err(err).Msg("MCP server failed")
	}
}
