// Package pipeline drives a story transformation through its fixed sequence
// of stages: build the context, reimagine each character, reframe the
// conflict, write the story, then check it against the source themes.
//
// Stages run strictly one after another and every generation call blocks
// until it succeeds or its retry budget is spent. A failed stage ends the run
// in the state it had reached; nothing produced earlier is rolled back or
// returned.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vampirenirmal/storyshift/internal/core"
	"github.com/vampirenirmal/storyshift/internal/domain"
	"github.com/vampirenirmal/storyshift/internal/output"
	"github.com/vampirenirmal/storyshift/internal/prompts"
)

// ContextSource builds the transformation context for a story/world pair.
type ContextSource interface {
	BuildFromKeys(ctx context.Context, storyKey, worldKey string) (domain.TransformationContext, error)
}

// PromptComposer renders the instruction for each generation stage.
type PromptComposer interface {
	Character(m domain.CharacterMapping) (string, error)
	Conflict(m domain.ConflictMapping, worldName string) (string, error)
	Assembly(in prompts.AssemblyInput) (string, error)
	Validation(in prompts.ValidationInput) (string, error)
}

// Generation produces text with the two fixed sampling presets.
type Generation interface {
	Creative(ctx context.Context, prompt, system string) (string, error)
	Structured(ctx context.Context, prompt, system string) (string, error)
}

// Recorder observes a run's state transitions. Recorder failures are logged
// and never fail the run.
type Recorder interface {
	Started(ctx context.Context, runID, storyKey, worldKey, state string) error
	Reached(ctx context.Context, runID, state string) error
	Finished(ctx context.Context, runID, state string, runErr error) error
}

// Outcome describes a finished run. Result is only set when State is Complete.
type Outcome struct {
	RunID    string
	State    State
	Result   output.Result
	Duration time.Duration
}

type Option func(*Pipeline)

func WithRecorder(rec Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = rec
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithProgress writes human-readable "[Pipeline] ..." lines to w.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) {
		p.progress = w
	}
}

// WithRunIDs replaces the uuid run ID generator.
func WithRunIDs(next func() string) Option {
	return func(p *Pipeline) {
		p.newID = next
	}
}

type Pipeline struct {
	source   ContextSource
	composer PromptComposer
	gen      Generation
	recorder Recorder
	progress io.Writer
	logger   *slog.Logger
	newID    func() string
}

func New(source ContextSource, composer PromptComposer, gen Generation, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:   source,
		composer: composer,
		gen:      gen,
		logger:   slog.Default().With("component", "pipeline"),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// run holds the mutable state of a single execution. It is never shared.
type run struct {
	p        *Pipeline
	id       string
	storyKey string
	worldKey string
	state    State
	logger   *slog.Logger
}

// Run executes every stage for the given keys. On failure the returned
// Outcome carries the last state reached and the error is a *core.StageError
// naming the stage that failed.
func (p *Pipeline) Run(ctx context.Context, storyKey, worldKey string) (Outcome, error) {
	r := &run{
		p:        p,
		id:       p.newID(),
		storyKey: storyKey,
		worldKey: worldKey,
		state:    Initial,
	}
	r.logger = p.logger.With("run_id", r.id, "story", storyKey, "world", worldKey)

	start := time.Now()
	r.logger.Info("pipeline started")
	r.progress("Starting Story Transformation Pipeline")
	r.record(func(rec Recorder) error {
		return rec.Started(ctx, r.id, storyKey, worldKey, r.state.String())
	})

	result, err := r.execute(ctx)

	outcome := Outcome{
		RunID:    r.id,
		State:    r.state,
		Duration: time.Since(start),
	}

	// A cancelled caller context must not prevent the final record.
	finishCtx := context.WithoutCancel(ctx)
	r.record(func(rec Recorder) error {
		return rec.Finished(finishCtx, r.id, r.state.String(), err)
	})

	if err != nil {
		r.logger.Error("pipeline failed",
			"state", r.state.String(),
			"duration_ms", outcome.Duration.Milliseconds(),
			"error", err)
		return outcome, err
	}

	outcome.Result = result
	r.progress("Pipeline complete!")
	r.logger.Info("pipeline complete",
		"duration_ms", outcome.Duration.Milliseconds(),
		"characters", len(result.TransformationDetails.Characters),
		"story_length", len(result.Story))
	return outcome, nil
}

func (r *run) execute(ctx context.Context) (output.Result, error) {
	built, err := r.build(ctx)
	if err := r.advance(ctx, err, Built); err != nil {
		return output.Result{}, err
	}

	chars, err := r.transformCharacters(ctx, built)
	if err := r.advance(ctx, err, CharactersTransformed); err != nil {
		return output.Result{}, err
	}

	conflict, err := r.transformConflict(ctx, chars)
	if err := r.advance(ctx, err, ConflictTransformed); err != nil {
		return output.Result{}, err
	}

	story, err := r.generateStory(ctx, conflict)
	if err := r.advance(ctx, err, StoryGenerated); err != nil {
		return output.Result{}, err
	}

	validated, err := r.validate(ctx, story)
	if err := r.advance(ctx, err, Validated); err != nil {
		return output.Result{}, err
	}

	result, err := output.Assemble(&validated.Context,
		validated.Characters,
		validated.Conflict,
		validated.Story,
		validated.Validation)
	if err := r.advance(ctx, err, Complete); err != nil {
		return output.Result{}, err
	}
	return result, nil
}

// advance moves to target when stageErr is nil. Otherwise the run stays in
// its current state and the error is tagged with the stage that failed.
func (r *run) advance(ctx context.Context, stageErr error, target State) error {
	if stageErr != nil {
		return core.NewStageError(r.id, target.String(), stageErr)
	}

	if next, ok := r.state.Next(); !ok || next != target {
		// Stages are wired in a fixed order in execute; reaching this is a bug.
		panic(fmt.Sprintf("pipeline: invalid transition %s -> %s", r.state, target))
	}

	r.logger.Debug("stage complete", "from", r.state.String(), "to", target.String())
	r.state = target
	r.record(func(rec Recorder) error {
		return rec.Reached(ctx, r.id, target.String())
	})
	return nil
}

func (r *run) record(call func(Recorder) error) {
	if r.p.recorder == nil {
		return
	}
	if err := call(r.p.recorder); err != nil {
		r.logger.Warn("failed to record run state",
			"state", r.state.String(),
			"error", err)
	}
}

func (r *run) progress(format string, args ...any) {
	if r.p.progress == nil {
		return
	}
	fmt.Fprintf(r.p.progress, "[Pipeline] %s\n", fmt.Sprintf(format, args...))
}
