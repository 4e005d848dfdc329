package setup

import (
	"fmt"

	"github.com/itchan-dev/parley/frontend/internal/apiclient"
	"github.com/itchan-dev/parley/frontend/internal/handler"
	"github.com/itchan-dev/parley/frontend/internal/markdown"
	"github.com/itchan-dev/parley/frontend/internal/middleware"
	"github.com/itchan-dev/parley/frontend/web"
	"github.com/itchan-dev/parley/shared/config"
	"github.com/itchan-dev/parley/shared/jwt"
	mw "github.com/itchan-dev/parley/shared/middleware"
	"github.com/itchan-dev/parley/shared/middleware/ratelimiter"
)

type Dependencies struct {
	Handler *handler.Handler
	Gate    *middleware.Gate
	Public  config.Public

	LoginLimiter *ratelimiter.Limiter
}

func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	templates, err := web.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	apiClient, err := apiclient.New(cfg.Public.Server.ApiBaseURL)
	if err != nil {
		return nil, err
	}
	// one client serves every visitor, sessions stay in the browsers
	apiClient.HttpClient.Jar = nil

	// same key as the api, so pages can check the session without a round trip
	jwtSvc := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	auth := mw.NewAuth(jwtSvc, cfg.Public.Server.SecureCookies)

	h := handler.New(templates, cfg.Public, markdown.New(), apiClient, auth)

	return &Dependencies{
		Handler: h,
		Gate:    middleware.NewGate(auth, cfg.Public.Server.SecureCookies),
		Public:  cfg.Public,

		LoginLimiter: ratelimiter.PerMinute(cfg.Public.RateLimits.LoginPerMinute),
	}, nil
}

func (d *Dependencies) Cleanup() {
	d.LoginLimiter.Stop()
}
