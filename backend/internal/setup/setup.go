package setup

import (
	"context"
	"fmt"

	"github.com/itchan-dev/parley/backend/internal/compose"
	"github.com/itchan-dev/parley/backend/internal/handler"
	"github.com/itchan-dev/parley/backend/internal/llm"
	"github.com/itchan-dev/parley/backend/internal/service"
	"github.com/itchan-dev/parley/shared/config"
	"github.com/itchan-dev/parley/shared/jwt"
	"github.com/itchan-dev/parley/shared/middleware"
	"github.com/itchan-dev/parley/shared/middleware/ratelimiter"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config         *config.Config
	Handler        *handler.Handler
	Jwt            jwt.JwtService
	AuthMiddleware *middleware.Auth
	Composer       *compose.Composer
	Provider       llm.Provider
	LoginLimiter   *ratelimiter.Limiter
	ChatLimiter    *ratelimiter.Limiter
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	composer, err := compose.New(cfg.Public.Uploads, cfg.Public.Chat.DefaultPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to start extraction workers: %w", err)
	}

	provider, err := llm.New(ctx, cfg)
	if err != nil {
		composer.Close()
		return nil, fmt.Errorf("failed to initialize model provider: %w", err)
	}

	jwtSvc := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	authMw := middleware.NewAuth(jwtSvc, cfg.Public.Server.SecureCookies)

	auth := service.NewAuth(jwtSvc, cfg.Private.Login)
	chat := service.NewChat(composer, provider, service.ChatOptions{
		IncludeHistory: cfg.Public.Chat.IncludeHistory,
		Timeout:        cfg.Public.Model.Timeout,
	})

	h := handler.New(auth, chat, authMw, composer, cfg)

	return &Dependencies{
		Config:         cfg,
		Handler:        h,
		Jwt:            jwtSvc,
		AuthMiddleware: authMw,
		Composer:       composer,
		Provider:       provider,
		LoginLimiter:   ratelimiter.PerMinute(cfg.Public.RateLimits.LoginPerMinute),
		ChatLimiter:    ratelimiter.PerMinute(cfg.Public.RateLimits.ChatPerMinute),
	}, nil
}

// Cleanup releases the extraction workers and stops the limiter sweepers.
// Readiness turns to 503 after it.
func (d *Dependencies) Cleanup() {
	d.Composer.Close()
	d.LoginLimiter.Stop()
	d.ChatLimiter.Stop()
}

