package output

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vampirenirmal/storyshift/internal/storage"
)

// Writer persists artifacts as <name>.json and <name>.md.
type Writer struct {
	store  storage.Storage
	logger *slog.Logger
}

func NewWriter(store storage.Storage) *Writer {
	return &Writer{
		store:  store,
		logger: slog.Default().With("component", "output_writer"),
	}
}

// Paths holds the storage-relative paths of a written artifact.
type Paths struct {
	JSON     string
	Markdown string
}

// Write saves both renderings. If the Markdown cannot be written the JSON is
// removed again so a run never leaves half an artifact behind.
func (w *Writer) Write(ctx context.Context, name string, r Result) (Paths, error) {
	paths := Paths{JSON: name + ".json", Markdown: name + ".md"}

	data, err := Encode(r)
	if err != nil {
		return Paths{}, err
	}

	if err := w.store.Save(ctx, paths.JSON, data); err != nil {
		return Paths{}, fmt.Errorf("saving %s: %w", paths.JSON, err)
	}

	if err := w.store.Save(ctx, paths.Markdown, []byte(RenderMarkdown(r))); err != nil {
		if delErr := w.store.Delete(ctx, paths.JSON); delErr != nil {
			w.logger.Error("failed to remove partial artifact",
				"path", paths.JSON,
				"error", delErr)
		}
		return Paths{}, fmt.Errorf("saving %s: %w", paths.Markdown, err)
	}

	w.logger.Info("artifact written",
		"json", paths.JSON,
		"markdown", paths.Markdown,
		"bytes", len(data))

	return paths, nil
}

// Read loads a previously written JSON artifact.
func (w *Writer) Read(ctx context.Context, name string) (Result, error) {
	data, err := w.store.Load(ctx, name+".json")
	if err != nil {
		return Result{}, err
	}
	return Decode(data)
}
