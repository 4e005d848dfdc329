package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/itchan-dev/parley/frontend/internal/apiclient"
	"github.com/itchan-dev/parley/frontend/internal/chat"
	"github.com/itchan-dev/parley/frontend/internal/cli"
	"github.com/itchan-dev/parley/shared/config"
	"github.com/itchan-dev/parley/shared/logger"
	"github.com/itchan-dev/parley/shared/validation"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "failed to read .env:", err)
	}

	var (
		apiURL      string
		profilePath string
		logLevel    string
		sendHistory bool
	)
	flag.StringVar(&apiURL, "api", envOr("PARLEY_API_URL", "http://localhost:8080"), "backend base url")
	flag.StringVar(&profilePath, "profile", "", "profile file (default in the user config dir)")
	flag.StringVar(&logLevel, "log-level", "warn", "log level")
	flag.BoolVar(&sendHistory, "history", false, "send earlier messages with each prompt")
	flag.Parse()

	// answers go to stdout, logs stay out of their way
	logger.InitializeTo(os.Stderr, logLevel, false)

	if err := run(apiURL, profilePath, sendHistory); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(apiURL, profilePath string, sendHistory bool) error {
	client, err := apiclient.New(apiURL)
	if err != nil {
		return err
	}
	client.SendHistory = sendHistory

	if profilePath == "" {
		if profilePath, err = chat.DefaultProfilePath(); err != nil {
			return err
		}
	}

	previews, err := chat.NewPreviews()
	if err != nil {
		return err
	}
	defer previews.Close()

	app := cli.New(client, validation.NewPolicy(config.DefaultUploads()), previews, chat.NewProfileStore(profilePath), os.Stdout)

	ctx := context.Background()
	if email, password := os.Getenv("PARLEY_EMAIL"), os.Getenv("PARLEY_PASSWORD"); email != "" && password != "" {
		if err := app.Login(ctx, email, password); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	// Ctrl-C stops a streaming answer, otherwise it exits
	interrupts := make(chan struct{})
	app.Interrupts = interrupts
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	go func() {
		for range sigs {
			if app.Busy() {
				select {
				case interrupts <- struct{}{}:
				default:
				}
				continue
			}
			previews.Close()
			fmt.Println()
			os.Exit(130)
		}
	}()

	fmt.Println("Parley. /help lists the commands.")
	return app.Run(ctx, os.Stdin)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
