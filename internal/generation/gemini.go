package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/vampirenirmal/storyshift/internal/core"
)

const geminiProvider = "gemini"

// GeminiConfig configures GeminiClient. BaseURL is only set in tests.
type GeminiConfig struct {
	APIKey            string
	Model             string
	BaseURL           string
	RequestsPerMinute int
	Burst             int
}

// GeminiClient generates text through the Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	limiter := rate.NewLimiter(rate.Limit(0.5), 5)
	if cfg.RequestsPerMinute > 0 && cfg.Burst > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.Burst)
	}

	return &GeminiClient{
		client:  client,
		model:   cfg.Model,
		limiter: limiter,
		logger:  slog.Default().With("component", "gemini_client"),
	}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	startTime := time.Now()

	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait failed: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), config)
	if err != nil {
		status := 0
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.Code
		}
		g.logger.Error("gemini request failed",
			"model", g.model,
			"status_code", status,
			"duration_ms", time.Since(startTime).Milliseconds(),
			"error", err)
		return "", &core.UpstreamError{Provider: geminiProvider, StatusCode: status, Err: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &core.UpstreamError{Provider: geminiProvider, Err: errEmptyResponse}
	}

	g.logger.Info("gemini request successful",
		"model", g.model,
		"duration_ms", time.Since(startTime).Milliseconds(),
		"response_length", len(text))

	return text, nil
}
