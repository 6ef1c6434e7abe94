package prompts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"text/template"
)

//go:embed templates/*.tmpl
var embedded embed.FS

const templateExt = ".tmpl"

var funcs = template.FuncMap{
	"join": func(items []string) string {
		return strings.Join(items, ", ")
	},
}

// TemplateCache parses each prompt template once. A template found in the
// override filesystem wins over the embedded default of the same name.
type TemplateCache struct {
	mu        sync.RWMutex
	templates map[string]*template.Template
	raw       map[string]string
	override  fs.FS
	defaults  fs.FS
}

// NewTemplateCache creates a cache. override may be nil.
func NewTemplateCache(override fs.FS) *TemplateCache {
	defaults, _ := fs.Sub(embedded, "templates")
	return &TemplateCache{
		templates: make(map[string]*template.Template),
		raw:       make(map[string]string),
		override:  override,
		defaults:  defaults,
	}
}

// Source returns the raw text of the named template.
func (tc *TemplateCache) Source(name string) (string, error) {
	tc.mu.RLock()
	if content, ok := tc.raw[name]; ok {
		tc.mu.RUnlock()
		return content, nil
	}
	tc.mu.RUnlock()

	content, err := tc.read(name + templateExt)
	if err != nil {
		return "", err
	}

	tc.mu.Lock()
	tc.raw[name] = content
	tc.mu.Unlock()

	return content, nil
}

// Template returns the parsed template, parsing it on first use.
func (tc *TemplateCache) Template(name string) (*template.Template, error) {
	tc.mu.RLock()
	if tmpl, ok := tc.templates[name]; ok {
		tc.mu.RUnlock()
		return tmpl, nil
	}
	tc.mu.RUnlock()

	content, err := tc.Source(name)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).Option("missingkey=error").Funcs(funcs).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s template: %w", name, err)
	}

	tc.mu.Lock()
	tc.templates[name] = tmpl
	tc.mu.Unlock()

	return tmpl, nil
}

// Preload parses the named templates so broken overrides fail at startup.
func (tc *TemplateCache) Preload(names ...string) error {
	for _, name := range names {
		if _, err := tc.Template(name); err != nil {
			return fmt.Errorf("preloading %s: %w", name, err)
		}
	}
	return nil
}

func (tc *TemplateCache) Clear() {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.templates = make(map[string]*template.Template)
	tc.raw = make(map[string]string)
}

// Stats returns the number of parsed and raw entries.
func (tc *TemplateCache) Stats() (templates int, raw int) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	return len(tc.templates), len(tc.raw)
}

func (tc *TemplateCache) read(file string) (string, error) {
	if tc.override != nil {
		data, err := fs.ReadFile(tc.override, file)
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("reading prompt override %s: %w", file, err)
		}
	}

	data, err := fs.ReadFile(tc.defaults, file)
	if err != nil {
		return "", fmt.Errorf("reading prompt %s: %w", file, err)
	}
	return string(data), nil
}
