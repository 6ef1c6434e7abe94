package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vampirenirmal/storyshift/internal/catalog"
	"github.com/vampirenirmal/storyshift/internal/core"
	"github.com/vampirenirmal/storyshift/internal/generation"
	"github.com/vampirenirmal/storyshift/internal/output"
	"github.com/vampirenirmal/storyshift/internal/pipeline"
	"github.com/vampirenirmal/storyshift/internal/prompts"
	"github.com/vampirenirmal/storyshift/internal/storage"
	"github.com/vampirenirmal/storyshift/internal/storage/history"
	"github.com/vampirenirmal/storyshift/internal/transform"
)

type runOptions struct {
	story  string
	world  string
	output string
}

func (a *app) runCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Transform a story into a new world",
		Long: `Runs the full transformation: characters, conflict, story and a
thematic fidelity check. Without --story and --world the keys are read
interactively.`,
		Example: `  storyshift run --story romeo_and_juliet --world silicon_valley_tech
  storyshift run --story hamlet --world cyberpunk_megacity --output hamlet2077
  storyshift run --story odyssey --world space_colony --quiet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.story, "story", "s", "", "Source story key")
	cmd.Flags().StringVarP(&opts.world, "world", "w", "", "Target world key")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Artifact base name without extension (default: timestamped name)")

	return cmd
}

func (a *app) run(cmd *cobra.Command, opts runOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cat, err := a.catalog(ctx)
	if err != nil {
		return err
	}

	if opts.story == "" || opts.world == "" {
		opts.story, opts.world, err = promptKeys(cmd, cat)
		if err != nil {
			return err
		}
	}

	// The returned error is printed once, by main; only hints go to out.
	if err := checkKeys(ctx, cat, opts.story, opts.world); err != nil {
		fmt.Fprintln(out, "Use `storyshift list` to see available options")
		return err
	}

	gen, err := a.newGenerator(ctx, a.cfg)
	if err != nil {
		a.credentialHint(out)
		return err
	}

	composer := prompts.NewComposer(prompts.WithOverrideDir(a.cfg.Paths.PromptsDir))
	if err := composer.Preload(); err != nil {
		return err
	}

	pipeOpts := []pipeline.Option{pipeline.WithLogger(a.logger.With("component", "pipeline"))}
	if !a.quiet {
		pipeOpts = append(pipeOpts, pipeline.WithProgress(out))
	}
	if store := a.openHistory(ctx); store != nil {
		defer store.Close()
		pipeOpts = append(pipeOpts, pipeline.WithRecorder(store))
	}

	p := pipeline.New(
		transform.NewBuilder(cat),
		composer,
		generation.NewServiceFromConfig(gen, a.cfg),
		pipeOpts...,
	)

	fmt.Fprintf(out, "\nTransforming '%s' into '%s' setting...\n\n", opts.story, opts.world)

	outcome, err := p.Run(ctx, opts.story, opts.world)
	if err != nil {
		if core.KindOf(err) == core.KindUpstreamGeneration {
			a.credentialHint(out)
		}
		return fmt.Errorf("transformation failed: %w", err)
	}

	name := opts.output
	if name == "" {
		name = storage.ArtifactName(opts.story, opts.world, outcome.RunID, time.Now())
	}

	writer := output.NewWriter(storage.NewFileSystem(a.cfg.Paths.OutputDir))
	paths, err := writer.Write(ctx, name, outcome.Result)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved to %s\n", paths.JSON)
	fmt.Fprintf(out, "Saved markdown to %s\n", paths.Markdown)

	printStory(out, outcome.Result)
	return nil
}

// promptKeys lists the options and reads both keys from stdin.
func promptKeys(cmd *cobra.Command, cat catalog.Provider) (string, string, error) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "STORY TRANSFORMATION SYSTEM")
	fmt.Fprintln(out, "\nThis system transforms classic stories into new settings")
	fmt.Fprintln(out, "while preserving their emotional core.")
	fmt.Fprintln(out)
	if err := printOptions(cmd, out, cat); err != nil {
		return "", "", err
	}
	fmt.Fprintln(out, strings.Repeat("-", 50))

	in := bufio.NewReader(cmd.InOrStdin())
	story, err := ask(in, out, "Enter story key (e.g., romeo_and_juliet): ")
	if err != nil {
		return "", "", err
	}
	world, err := ask(in, out, "Enter world key (e.g., silicon_valley_tech): ")
	if err != nil {
		return "", "", err
	}

	if story == "" || world == "" {
		return "", "", errors.New("both story and world are required")
	}
	return story, world, nil
}

func ask(in *bufio.Reader, out io.Writer, question string) (string, error) {
	fmt.Fprint(out, question)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func checkKeys(ctx context.Context, cat catalog.Provider, storyKey, worldKey string) error {
	if _, err := cat.Story(ctx, storyKey); err != nil {
		return err
	}
	if _, err := cat.World(ctx, worldKey); err != nil {
		return err
	}
	return nil
}

// openHistory opens the run ledger. A ledger that cannot be opened only
// disables recording.
func (a *app) openHistory(ctx context.Context) *history.Store {
	if a.cfg.Paths.HistoryDB == "" {
		return nil
	}
	store, err := history.Open(ctx, a.cfg.Paths.HistoryDB)
	if err != nil {
		a.logger.Warn("run history unavailable", "path", a.cfg.Paths.HistoryDB, "error", err)
		return nil
	}
	return store
}

func (a *app) credentialHint(w io.Writer) {
	fmt.Fprintf(w, "Make sure the %s environment variable is set\n", a.cfg.CredentialEnv())
}

func printStory(w io.Writer, r output.Result) {
	fmt.Fprintln(w, "\nREIMAGINED STORY")
	fmt.Fprintf(w, "\nOriginal: %s\n", r.Metadata.Source)
	fmt.Fprintf(w, "New Setting: %s\n\n", r.Metadata.TargetWorld)
	fmt.Fprintln(w, r.Story)
}
