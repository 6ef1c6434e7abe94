// Package output shapes a finished run into its artifact: the JSON record,
// a Markdown rendering of it, and the writer that persists both.
package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vampirenirmal/storyshift/internal/domain"
)

type Metadata struct {
	Source          string   `json:"source"`
	TargetWorld     string   `json:"target_world"`
	ThemesPreserved []string `json:"themes_preserved"`
}

// CharacterTransformation pairs a source character with its generated counterpart.
type CharacterTransformation struct {
	Original       string `json:"original"`
	Transformation string `json:"transformation"`
}

type TransformationDetails struct {
	Characters []CharacterTransformation `json:"characters"`
	Conflict   string                    `json:"conflict"`
}

// Result is the artifact record of a completed run.
type Result struct {
	Metadata              Metadata              `json:"metadata"`
	TransformationDetails TransformationDetails `json:"transformation_details"`
	Story                 string                `json:"story"`
	Validation            string                `json:"validation"`
}

// ErrMissingContext reports an Assemble call without a transformation context.
var ErrMissingContext = errors.New("assemble: nil transformation context")

// Assemble combines the context and stage outputs into a Result. It copies
// its inputs, so later changes to them do not leak into the artifact.
func Assemble(ctx *domain.TransformationContext, characters []CharacterTransformation, conflict, story, validation string) (Result, error) {
	if ctx == nil {
		return Result{}, ErrMissingContext
	}

	themes := make([]string, len(ctx.Source.Themes))
	copy(themes, ctx.Source.Themes)

	chars := make([]CharacterTransformation, len(characters))
	copy(chars, characters)

	return Result{
		Metadata: Metadata{
			Source:          ctx.Source.Title,
			TargetWorld:     ctx.Target.Name,
			ThemesPreserved: themes,
		},
		TransformationDetails: TransformationDetails{
			Characters: chars,
			Conflict:   conflict,
		},
		Story:      story,
		Validation: validation,
	}, nil
}

// Encode renders r as indented JSON. Non-ASCII text and markup characters
// are written as-is.
func Encode(r Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads an artifact written by Encode.
func Decode(data []byte) (Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, fmt.Errorf("decoding result: %w", err)
	}
	return r, nil
}
