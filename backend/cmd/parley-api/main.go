package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/itchan-dev/parley/backend/internal/router"
	"github.com/itchan-dev/parley/backend/internal/service"
	"github.com/itchan-dev/parley/backend/internal/setup"
	"github.com/itchan-dev/parley/shared/config"
	"github.com/itchan-dev/parley/shared/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	var configFolder string
	var hashPassword bool
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.BoolVar(&hashPassword, "hash-password", false, "read a password from stdin and print its bcrypt hash")
	flag.Parse()

	if hashPassword {
		printPasswordHash()
		return
	}

	// .env is optional, real environment wins
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Log.Warn("failed to read .env", "error", err)
	}

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.Log.Level, cfg.Public.Log.JSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setup.SetupDependencies(ctx, cfg)
	if err != nil {
		logger.Log.Error("failed to setup dependencies", "error", err)
		os.Exit(1)
	}

	addr := cfg.Public.Server.ApiAddr
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	// no WriteTimeout: answers are streamed for as long as the model talks
	server := &http.Server{
		Addr:              addr,
		Handler:           router.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Public.Server.ReadTimeout,
		IdleTimeout:       cfg.Public.Server.IdleTimeout,
	}

	go func() {
		logger.Log.Info("api server started", "addr", addr, "provider", deps.Provider.Name(), "model", cfg.Public.Model.Name)
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
	deps.Cleanup()
}

func printPasswordHash() {
	fmt.Fprint(os.Stderr, "password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(os.Stderr, "no password given")
		os.Exit(1)
	}
	hash, err := service.HashPassword(strings.TrimRight(line, "\r\n"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
