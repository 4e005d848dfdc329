package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/itchan-dev/parley/shared/config"
	"github.com/itchan-dev/parley/shared/logger"
)

const (
	// EnvParleyMode selects the mock provider regardless of config when set to MOCK.
	EnvParleyMode = "PARLEY_MODE"
	ModeMock      = "MOCK"
)

// New builds the configured provider.
func New(ctx context.Context, cfg *config.Config) (Provider, error) {
	model := cfg.Public.Model
	if os.Getenv(EnvParleyMode) == ModeMock {
		logger.Log.Info("PARLEY_MODE=MOCK detected, using mock model provider")
		return &Mock{}, nil
	}

	// Timeout is left to the caller's context: a client timeout would also
	// cut long streams.
	httpClient := &http.Client{}

	switch model.Provider {
	case "gemini":
		if cfg.Private.GoogleAPIKey == "" {
			return nil, fmt.Errorf("google_api_key (or GOOGLE_API_KEY) is required for the gemini provider")
		}
		return NewGemini(ctx, cfg.Private.GoogleAPIKey, model.BaseURL, model.Name, httpClient)
	case "openai":
		if cfg.Private.OpenAIAPIKey == "" && model.BaseURL == "" {
			return nil, fmt.Errorf("openai_api_key (or OPENAI_API_KEY) is required for the openai provider")
		}
		return NewOpenAI(cfg.Private.OpenAIAPIKey, model.BaseURL, model.Name, httpClient), nil
	case "mock":
		return &Mock{}, nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", model.Provider)
	}
}
