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

	"github.com/joho/godotenv"

	"github.com/itchan-dev/parley/frontend/internal/router"
	"github.com/itchan-dev/parley/frontend/internal/setup"
	"github.com/itchan-dev/parley/shared/config"
	"github.com/itchan-dev/parley/shared/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Log.Warn("failed to read .env", "error", err)
	}

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.Log.Level, cfg.Public.Log.JSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		logger.Log.Error("failed to setup dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Cleanup()

	addr := cfg.Public.Server.WebAddr
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	// no WriteTimeout, /api answers are proxied as a stream
	server := &http.Server{
		Addr:              addr,
		Handler:           router.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Public.Server.ReadTimeout,
		IdleTimeout:       cfg.Public.Server.IdleTimeout,
	}

	go func() {
		logger.Log.Info("web server started", "addr", addr, "api", cfg.Public.Server.ApiBaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("graceful shutdown failed", "error", err)
	}
}
