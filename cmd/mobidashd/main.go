package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/celerix-dev/mobidash/internal/api"
	"github.com/celerix-dev/mobidash/internal/backend"
	"github.com/celerix-dev/mobidash/internal/config"
	"github.com/celerix-dev/mobidash/internal/dashboard"
	"github.com/celerix-dev/mobidash/internal/events"
	"github.com/celerix-dev/mobidash/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatal().Err(err).Msg("failed to read .env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log.Info().Str("config", cfg.String()).Msg("starting mobidash daemon")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Storage
	store, err := backend.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("failed to open storage")
	}

	// 2. Dashboard store, publishing changes to websocket subscribers
	hub := events.NewHub(32)
	dash := dashboard.New(store,
		dashboard.WithKeyPrefix(cfg.Storage.KeyPrefix),
		dashboard.WithNotifier(hub),
	)
	log.Info().
		Int("charts", len(dash.GetAllCharts())).
		Int("tables", len(dash.GetAllTables())).
		Msg("dashboard store ready")

	// 3. HTTP API
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(&api.Handler{
		Store:         dash,
		Hub:           hub,
		MaxUploadSize: cfg.Import.MaxFileSize,
		Origins:       cfg.Server.CORSOrigins,
	})
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// 4. Graceful shutdown
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown incomplete")
	}
	hub.Close()

	log.Info().Msg("finalizing storage writes")
	store.Close()
	log.Info().Msg("shutdown complete")
}
