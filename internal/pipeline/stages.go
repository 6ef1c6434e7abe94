package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/vampirenirmal/storyshift/internal/domain"
	"github.com/vampirenirmal/storyshift/internal/output"
	"github.com/vampirenirmal/storyshift/internal/prompts"
)

// System instructions sent with each generation stage. Validation has none.
const (
	CharacterSystem = "You are a creative writing assistant specializing in story adaptation. " +
		"You understand that characters must keep their NARRATIVE FUNCTION while " +
		"changing their surface details to fit new worlds."

	ConflictSystem = "You are analyzing story structure. The conflict must create the same " +
		"EMOTIONAL STAKES while using completely different surface elements."

	StorySystem = "You are a skilled fiction writer. Write vivid, engaging prose that " +
		"brings this reimagined story to life. Use sensory details and natural " +
		"dialogue. The story should feel fresh while honoring its source."
)

// Each stage output embeds the one before it, so a stage can only run once
// its predecessor has produced a value.

type BuiltStage struct {
	Context domain.TransformationContext
}

type CharactersStage struct {
	BuiltStage
	Characters []output.CharacterTransformation
}

type ConflictStage struct {
	CharactersStage
	Conflict string
}

type StoryStage struct {
	ConflictStage
	Story string
}

type ValidatedStage struct {
	StoryStage
	Validation string
}

func (r *run) build(ctx context.Context) (BuiltStage, error) {
	r.progress("Building transformation context...")

	tc, err := r.p.source.BuildFromKeys(ctx, r.storyKey, r.worldKey)
	if err != nil {
		return BuiltStage{}, err
	}

	r.progress("  Source: %s", tc.Source.Title)
	r.progress("  Target: %s", tc.Target.Name)

	return BuiltStage{Context: tc}, nil
}

// transformCharacters runs one structured generation per character, in
// mapping order. Any failure discards the characters produced so far.
func (r *run) transformCharacters(ctx context.Context, in BuiltStage) (CharactersStage, error) {
	r.progress("Transforming characters...")

	mappings := in.Context.Characters
	chars := make([]output.CharacterTransformation, 0, len(mappings))
	for _, m := range mappings {
		r.progress("  Transforming %s...", m.OriginalName)

		prompt, err := r.p.composer.Character(m)
		if err != nil {
			return CharactersStage{}, err
		}
		text, err := r.p.gen.Structured(ctx, prompt, CharacterSystem)
		if err != nil {
			return CharactersStage{}, fmt.Errorf("transforming %s: %w", m.OriginalName, err)
		}

		chars = append(chars, output.CharacterTransformation{
			Original:       m.OriginalName,
			Transformation: text,
		})
	}

	r.progress("  Transformed %d characters", len(chars))
	return CharactersStage{BuiltStage: in, Characters: chars}, nil
}

func (r *run) transformConflict(ctx context.Context, in CharactersStage) (ConflictStage, error) {
	r.progress("Transforming central conflict...")

	prompt, err := r.p.composer.Conflict(in.Context.Conflict, in.Context.Target.Name)
	if err != nil {
		return ConflictStage{}, err
	}
	text, err := r.p.gen.Structured(ctx, prompt, ConflictSystem)
	if err != nil {
		return ConflictStage{}, err
	}

	r.progress("  Conflict transformed")
	return ConflictStage{CharactersStage: in, Conflict: text}, nil
}

func (r *run) generateStory(ctx context.Context, in ConflictStage) (StoryStage, error) {
	r.progress("Generating full story...")

	tc := in.Context
	prompt, err := r.p.composer.Assembly(prompts.AssemblyInput{
		SourceTitle:   tc.Source.Title,
		WorldName:     tc.Target.Name,
		Themes:        tc.Source.Themes,
		EmotionalCore: tc.Source.EmotionalCore,
		Characters:    CharacterSummaries(in.Characters),
		Conflict:      in.Conflict,
		Scenes:        BeatSummaries(tc.PlotBeats),
		Aesthetic:     tc.Target.Aesthetic,
	})
	if err != nil {
		return StoryStage{}, err
	}
	text, err := r.p.gen.Creative(ctx, prompt, StorySystem)
	if err != nil {
		return StoryStage{}, err
	}

	r.progress("  Story generated")
	return StoryStage{ConflictStage: in, Story: text}, nil
}

func (r *run) validate(ctx context.Context, in StoryStage) (ValidatedStage, error) {
	r.progress("Validating thematic fidelity...")

	prompt, err := r.p.composer.Validation(prompts.ValidationInput{
		Themes:        in.Context.Source.Themes,
		EmotionalCore: in.Context.Source.EmotionalCore,
		StoryText:     in.Story,
	})
	if err != nil {
		return ValidatedStage{}, err
	}
	text, err := r.p.gen.Structured(ctx, prompt, "")
	if err != nil {
		return ValidatedStage{}, err
	}

	r.progress("  Validation complete")
	return ValidatedStage{StoryStage: in, Validation: text}, nil
}

// CharacterSummaries renders transformed characters as "**Name** becomes:"
// blocks separated by blank lines.
func CharacterSummaries(chars []output.CharacterTransformation) string {
	blocks := make([]string, len(chars))
	for i, c := range chars {
		blocks[i] = "**" + c.Original + "** becomes:\n" + c.Transformation
	}
	return strings.Join(blocks, "\n\n")
}

// BeatSummaries lists the original plot beats as Markdown bullets.
func BeatSummaries(beats []domain.PlotBeatMapping) string {
	lines := make([]string, len(beats))
	for i, b := range beats {
		lines[i] = "- " + b.OriginalBeat
	}
	return strings.Join(lines, "\n")
}
