package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/vampirenirmal/storyshift/internal/config"
)

// ErrMissingCredential reports that no API key is configured for the provider.
var ErrMissingCredential = errors.New("missing API key")

// NewGenerator builds the backend named by cfg, wrapped in a response cache
// when caching is enabled.
func NewGenerator(ctx context.Context, cfg *config.Config) (Generator, error) {
	gc := cfg.Generation
	if gc.APIKey == "" {
		return nil, fmt.Errorf("%w for %s: set %s", ErrMissingCredential, gc.Provider, cfg.CredentialEnv())
	}

	var gen Generator
	switch gc.Provider {
	case geminiProvider:
		client, err := NewGeminiClient(ctx, GeminiConfig{
			APIKey:            gc.APIKey,
			Model:             gc.Model,
			BaseURL:           gc.BaseURL,
			RequestsPerMinute: cfg.Limits.RateLimit.RequestsPerMinute,
			Burst:             cfg.Limits.RateLimit.BurstSize,
		})
		if err != nil {
			return nil, err
		}
		gen = client
	default:
		gen = NewClient(gc.Provider, gc.APIKey,
			WithAPIConfig(gc.BaseURL, gc.Model),
			WithTimeout(cfg.Limits.CallTimeout),
			WithRateLimit(cfg.Limits.RateLimit.RequestsPerMinute, cfg.Limits.RateLimit.BurstSize))
	}

	if cfg.Cache.Enabled {
		gen = NewCachedGenerator(gen, cfg.Cache.TTL)
	}
	return gen, nil
}

// NewServiceFromConfig wraps gen with the configured retry budget, call
// timeout and presets.
func NewServiceFromConfig(gen Generator, cfg *config.Config) *Service {
	return NewService(gen,
		WithRetryBudget(cfg.Limits.RetryBudget),
		WithCallTimeout(cfg.Limits.CallTimeout),
		WithPresets(
			Preset{Temperature: cfg.Presets.Creative.Temperature, MaxTokens: cfg.Presets.Creative.MaxTokens},
			Preset{Temperature: cfg.Presets.Structured.Temperature, MaxTokens: cfg.Presets.Structured.MaxTokens},
		))
}
