// Package catalog provides the keyed story and world records the pipeline
// transforms. Records come from JSON or YAML files, either a directory on disk
// or the set embedded in the binary.
package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/vampirenirmal/storyshift/internal/core"
	"github.com/vampirenirmal/storyshift/internal/domain"
)

//go:embed data/*.json
var defaultData embed.FS

const (
	storiesFile = "stories"
	worldsFile  = "worlds"
)

// Provider resolves story and world keys to records.
type Provider interface {
	Story(ctx context.Context, key string) (domain.Story, error)
	World(ctx context.Context, key string) (domain.World, error)
	StoryKeys() []string
	WorldKeys() []string
}

type Catalog struct {
	stories map[string]domain.Story
	worlds  map[string]domain.World
}

// Default loads the records embedded in the binary.
func Default(ctx context.Context) (*Catalog, error) {
	sub, err := fs.Sub(defaultData, "data")
	if err != nil {
		return nil, fmt.Errorf("opening embedded catalog: %w", err)
	}
	return Load(ctx, sub)
}

// Open loads records from a directory containing stories.{json,yaml} and worlds.{json,yaml}.
func Open(ctx context.Context, dir string) (*Catalog, error) {
	return Load(ctx, os.DirFS(dir))
}

// Load reads both record files concurrently and validates every record.
func Load(ctx context.Context, fsys fs.FS) (*Catalog, error) {
	logger := slog.Default().With("component", "catalog")

	var (
		stories map[string]domain.Story
		worlds  map[string]domain.World
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stories, err = readRecords[domain.Story](gctx, fsys, storiesFile)
		return err
	})
	g.Go(func() error {
		var err error
		worlds, err = readRecords[domain.World](gctx, fsys, worldsFile)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	validate := validator.New()
	for _, key := range sortedKeys(stories) {
		if err := validate.Struct(stories[key]); err != nil {
			return nil, fmt.Errorf("invalid story %q: %w", key, err)
		}
	}
	for _, key := range sortedKeys(worlds) {
		if err := validate.Struct(worlds[key]); err != nil {
			return nil, fmt.Errorf("invalid world %q: %w", key, err)
		}
	}

	logger.Debug("catalog loaded",
		"stories", len(stories),
		"worlds", len(worlds))

	return &Catalog{stories: stories, worlds: worlds}, nil
}

func (c *Catalog) Story(ctx context.Context, key string) (domain.Story, error) {
	if err := ctx.Err(); err != nil {
		return domain.Story{}, err
	}
	story, ok := c.stories[key]
	if !ok {
		return domain.Story{}, &core.NotFoundError{Resource: "story", Key: key, Available: c.StoryKeys()}
	}
	return story, nil
}

func (c *Catalog) World(ctx context.Context, key string) (domain.World, error) {
	if err := ctx.Err(); err != nil {
		return domain.World{}, err
	}
	world, ok := c.worlds[key]
	if !ok {
		return domain.World{}, &core.NotFoundError{Resource: "world", Key: key, Available: c.WorldKeys()}
	}
	return world, nil
}

// StoryKeys returns the known story keys in sorted order.
func (c *Catalog) StoryKeys() []string {
	return sortedKeys(c.stories)
}

// WorldKeys returns the known world keys in sorted order.
func (c *Catalog) WorldKeys() []string {
	return sortedKeys(c.worlds)
}

// readRecords decodes base.json, base.yaml or base.yml, whichever exists first.
func readRecords[T any](ctx context.Context, fsys fs.FS, base string) (map[string]T, error) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := base + ext
		data, err := fs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}

		records := make(map[string]T)
		if path.Ext(name) == ".json" {
			err = json.Unmarshal(data, &records)
		} else {
			err = yaml.Unmarshal(data, &records)
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		return records, nil
	}
	return nil, fmt.Errorf("no %s.json or %s.yaml found", base, base)
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
