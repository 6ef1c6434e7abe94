package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vampirenirmal/storyshift/internal/catalog"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available source stories and target worlds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			return printOptions(cmd, cmd.OutOrStdout(), cat)
		},
	}
}

func printOptions(cmd *cobra.Command, w io.Writer, cat catalog.Provider) error {
	ctx := cmd.Context()

	fmt.Fprintln(w, "AVAILABLE SOURCE STORIES")
	for _, key := range cat.StoryKeys() {
		story, err := cat.Story(ctx, key)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n  %s\n", key)
		fmt.Fprintf(w, "    Title: %s\n", story.Title)
		fmt.Fprintf(w, "    Author: %s\n", story.Author)
		fmt.Fprintf(w, "    Themes: %s...\n", strings.Join(head(story.CoreThemes, 2), ", "))
	}

	fmt.Fprintln(w, "\nAVAILABLE TARGET WORLDS")
	for _, key := range cat.WorldKeys() {
		world, err := cat.World(ctx, key)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n  %s\n", key)
		fmt.Fprintf(w, "    Setting: %s\n", world.Name)
		fmt.Fprintf(w, "    Era: %s\n", world.Era)
		fmt.Fprintf(w, "    Aesthetic: %s...\n", prefix(world.Aesthetic, 50))
	}
	fmt.Fprintln(w)
	return nil
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}
