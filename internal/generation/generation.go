// Package generation calls the external text-generation service. Backends
// implement Generator and report every failure as *core.UpstreamError;
// Service layers the bounded retry policy and the sampling presets on top.
package generation

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidRequest marks a request that no backend could serve. It is never retried.
var ErrInvalidRequest = errors.New("invalid generation request")

// Request is a single generation call. System may be empty.
type Request struct {
	Prompt      string
	System      string
	Temperature float64
	MaxTokens   int
}

func (r Request) validate() error {
	switch {
	case r.Prompt == "":
		return fmt.Errorf("%w: empty prompt", ErrInvalidRequest)
	case r.Temperature < 0 || r.Temperature > 1:
		return fmt.Errorf("%w: temperature %.2f outside [0,1]", ErrInvalidRequest, r.Temperature)
	case r.MaxTokens <= 0:
		return fmt.Errorf("%w: max tokens must be positive, got %d", ErrInvalidRequest, r.MaxTokens)
	}
	return nil
}

// Generator is the boundary to a text-generation backend.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
