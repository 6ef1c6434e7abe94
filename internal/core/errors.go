package core

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Kinds
// =============================================================================

// ErrorKind classifies a failure so callers can branch on it without string matching.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindMalformedMapping
	KindUpstreamGeneration
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindMalformedMapping:
		return "malformed_mapping"
	case KindUpstreamGeneration:
		return "upstream_generation"
	default:
		return "unknown"
	}
}

// =============================================================================
// Predefined Error Values
// =============================================================================

var (
	ErrNotFound           = errors.New("not found")
	ErrMalformedMapping   = errors.New("malformed mapping")
	ErrUpstreamGeneration = errors.New("upstream generation failure")
)

// =============================================================================
// Core Error Types
// =============================================================================

// NotFoundError reports a story or world key the data provider does not know.
type NotFoundError struct {
	Resource  string // "story" or "world"
	Key       string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found. Available: [%s]", e.Resource, e.Key, strings.Join(e.Available, ", "))
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// MalformedMappingError reports a mapping record that cannot be rendered into a prompt.
type MalformedMappingError struct {
	Template string
	Fields   []string
	Err      error
}

func (e *MalformedMappingError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("malformed mapping for %s prompt: missing %s", e.Template, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("malformed mapping for %s prompt: %v", e.Template, e.Err)
}

func (e *MalformedMappingError) Unwrap() error {
	return e.Err
}

func (e *MalformedMappingError) Is(target error) bool {
	return target == ErrMalformedMapping
}

// UpstreamError collapses every text-generation failure (network, quota,
// malformed response) into one kind.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s generation failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamGeneration
}

// StageError reports which pipeline stage failed and what kind of failure it was.
type StageError struct {
	RunID string
	Stage string
	Kind  ErrorKind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// =============================================================================
// Error Classification Functions
// =============================================================================

// KindOf reports the kind of the first classified error in err's chain.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var stageErr *StageError
	if errors.As(err, &stageErr) && stageErr.Kind != KindUnknown {
		return stageErr.Kind
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrMalformedMapping):
		return KindMalformedMapping
	case errors.Is(err, ErrUpstreamGeneration):
		return KindUpstreamGeneration
	default:
		return KindUnknown
	}
}

// IsNotFound checks if an error is a missing story or world key
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsMalformedMapping checks if an error is a prompt rendering failure
func IsMalformedMapping(err error) bool {
	return errors.Is(err, ErrMalformedMapping)
}

// IsUpstream checks if an error came from the text-generation service
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstreamGeneration)
}

// =============================================================================
// Error Creation Helpers
// =============================================================================

// NewStageError wraps err with the failing stage, classifying it on the way.
func NewStageError(runID, stage string, err error) *StageError {
	return &StageError{
		RunID: runID,
		Stage: stage,
		Kind:  KindOf(err),
		Err:   err,
	}
}

// IsRetryable reports whether another attempt could succeed. Only upstream
// generation failures qualify; lookup and rendering failures are deterministic.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == KindUpstreamGeneration
}
