package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vampirenirmal/storyshift/internal/catalog"
	"github.com/vampirenirmal/storyshift/internal/config"
	"github.com/vampirenirmal/storyshift/internal/generation"
)

// app holds the state shared by all subcommands.
type app struct {
	configPath string
	verbose    bool
	quiet      bool

	cfg    *config.Config
	logger *slog.Logger

	// newGenerator builds the text generation backend; tests replace it.
	newGenerator func(ctx context.Context, cfg *config.Config) (generation.Generator, error)
}

func newApp() *app {
	return &app{
		newGenerator: generation.NewGenerator,
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "storyshift",
		Short: "Reimagine classic stories in new worlds",
		Long: `storyshift transforms a classic story into a new setting.

Characters keep their narrative function, the conflict keeps its emotional
stakes, and the finished story is checked against the source's themes.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (default: $XDG_CONFIG_HOME/storyshift/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Suppress progress messages and informational logs")

	root.AddCommand(a.listCmd())
	root.AddCommand(a.runCmd())
	root.AddCommand(a.historyCmd())

	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	switch {
	case a.verbose:
		level = slog.LevelDebug
	case a.quiet:
		level = slog.LevelWarn
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	a.logger.Debug("configuration loaded",
		"provider", cfg.Generation.Provider,
		"model", cfg.Generation.Model,
		"output_dir", cfg.Paths.OutputDir,
		"retry_budget", cfg.Limits.RetryBudget)
	return nil
}

// catalog opens the configured data directory, or the built-in stories and
// worlds when none is set.
func (a *app) catalog(ctx context.Context) (*catalog.Catalog, error) {
	if a.cfg.Paths.DataDir != "" {
		return catalog.Open(ctx, a.cfg.Paths.DataDir)
	}
	return catalog.Default(ctx)
}
