package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidPath is returned for paths that would leave the base directory.
var ErrInvalidPath = errors.New("invalid path")

// FileSystem is a Storage rooted at a single directory. Paths are always
// resolved inside that directory.
type FileSystem struct {
	baseDir string
}

func NewFileSystem(baseDir string) *FileSystem {
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	return &FileSystem{baseDir: filepath.Clean(baseDir)}
}

// BaseDir returns the absolute root of the storage.
func (f *FileSystem) BaseDir() string {
	return f.baseDir
}

// resolve maps a relative path into the base directory, rejecting traversal
// and absolute paths.
func (f *FileSystem) resolve(path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(path))

	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: absolute paths not allowed", ErrInvalidPath)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: contains parent directory reference", ErrInvalidPath)
	}

	full := filepath.Join(f.baseDir, cleaned)
	if !f.within(full) {
		return "", fmt.Errorf("%w: outside base directory", ErrInvalidPath)
	}
	return full, nil
}

func (f *FileSystem) within(full string) bool {
	return full == f.baseDir || strings.HasPrefix(full, f.baseDir+string(filepath.Separator))
}

func (f *FileSystem) Save(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := f.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

func (f *FileSystem) Load(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full, err := f.resolve(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// List returns the relative paths matching a glob pattern, sorted.
func (f *FileSystem) List(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full, err := f.resolve(pattern)
	if err != nil {
		return nil, err
	}

	matches, err := filepath.Glob(full)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	results := make([]string, 0, len(matches))
	for _, match := range matches {
		if !f.within(match) {
			continue
		}
		rel, err := filepath.Rel(f.baseDir, match)
		if err != nil {
			continue
		}
		results = append(results, filepath.ToSlash(rel))
	}
	return results, nil
}

func (f *FileSystem) Exists(ctx context.Context, path string) bool {
	full, err := f.resolve(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

func (f *FileSystem) Delete(ctx context.Context, path string) error {
	full, err := f.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}
