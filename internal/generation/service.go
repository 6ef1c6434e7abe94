package generation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/vampirenirmal/storyshift/internal/core"
)

// DefaultRetryBudget is the number of extra attempts after a failed call.
const DefaultRetryBudget = 2

// Preset is a fixed pair of sampling parameters.
type Preset struct {
	Temperature float64
	MaxTokens   int
}

var (
	// CreativePreset favors varied, longer prose.
	CreativePreset = Preset{Temperature: 0.85, MaxTokens: 2000}
	// StructuredPreset favors concise, consistent analysis.
	StructuredPreset = Preset{Temperature: 0.4, MaxTokens: 1000}
)

type Service struct {
	gen         Generator
	retryBudget int
	callTimeout time.Duration
	creative    Preset
	structured  Preset
	logger      *slog.Logger
}

type Option func(*Service)

func WithRetryBudget(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.retryBudget = n
		}
	}
}

// WithCallTimeout bounds each individual attempt. Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.callTimeout = d
	}
}

func WithPresets(creative, structured Preset) Option {
	return func(s *Service) {
		s.creative = creative
		s.structured = structured
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(gen Generator, opts ...Option) *Service {
	s := &Service{
		gen:         gen,
		retryBudget: DefaultRetryBudget,
		creative:    CreativePreset,
		structured:  StructuredPreset,
		logger:      slog.Default().With("component", "generation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RetryBudget returns the budget the presets use.
func (s *Service) RetryBudget() int {
	return s.retryBudget
}

// Generate makes a single attempt.
func (s *Service) Generate(ctx context.Context, prompt, system string, temperature float64, maxTokens int) (string, error) {
	req := Request{Prompt: prompt, System: system, Temperature: temperature, MaxTokens: maxTokens}
	if err := req.validate(); err != nil {
		return "", err
	}
	return s.attempt(ctx, req)
}

// GenerateWithRetry makes up to retryBudget+1 attempts with no delay between
// them. Every failed attempt that will be retried is logged first. When all
// attempts fail the error from the final attempt is returned. Errors that are
// not upstream failures, including context cancellation, end the loop at once.
func (s *Service) GenerateWithRetry(ctx context.Context, prompt, system string, temperature float64, maxTokens, retryBudget int) (string, error) {
	req := Request{Prompt: prompt, System: system, Temperature: temperature, MaxTokens: maxTokens}
	if err := req.validate(); err != nil {
		return "", err
	}
	if retryBudget < 0 {
		retryBudget = 0
	}

	start := time.Now()
	var lastErr error

	for attempt := 0; attempt <= retryBudget; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := s.attempt(ctx, req)
		if err == nil {
			if attempt > 0 {
				s.logger.Info("generation succeeded after retries",
					"retries", attempt,
					"duration_ms", time.Since(start).Milliseconds())
			}
			return text, nil
		}

		lastErr = err
		if !core.IsRetryable(err) {
			return "", err
		}

		if attempt < retryBudget {
			s.logger.Warn("generation attempt failed, retrying",
				"attempt", attempt+1,
				"retry_budget", retryBudget,
				"error", err)
		}
	}

	s.logger.Error("generation failed after max retries",
		"attempts", retryBudget+1,
		"duration_ms", time.Since(start).Milliseconds(),
		"last_error", lastErr)

	return "", lastErr
}

// Creative generates open-ended prose with the creative preset.
func (s *Service) Creative(ctx context.Context, prompt, system string) (string, error) {
	return s.GenerateWithRetry(ctx, prompt, system, s.creative.Temperature, s.creative.MaxTokens, s.retryBudget)
}

// Structured generates concise analysis with the structured preset.
func (s *Service) Structured(ctx context.Context, prompt, system string) (string, error) {
	return s.GenerateWithRetry(ctx, prompt, system, s.structured.Temperature, s.structured.MaxTokens, s.retryBudget)
}

func (s *Service) attempt(ctx context.Context, req Request) (string, error) {
	callCtx := ctx
	if s.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}

	text, err := s.gen.Generate(callCtx, req)
	if err == nil {
		if strings.TrimSpace(text) == "" {
			return "", &core.UpstreamError{Provider: "generator", Err: errEmptyResponse}
		}
		return text, nil
	}

	// The caller gave up; that is not the backend's failure.
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	// Already classified errors keep their kind; anything else came from the backend.
	if core.KindOf(err) != core.KindUnknown || errors.Is(err, ErrInvalidRequest) {
		return "", err
	}
	return "", &core.UpstreamError{Provider: "generator", Err: err}
}
