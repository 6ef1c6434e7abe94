package prompts

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestTemplateCache(t *testing.T) {
	override := fstest.MapFS{
		"conflict.tmpl": {Data: []byte("override {{.WorldName}}")},
	}
	cache := NewTemplateCache(override)

	t.Run("loads embedded template", func(t *testing.T) {
		content, err := cache.Source(CharacterTemplate)
		if err != nil {
			t.Fatalf("Source() error = %v", err)
		}
		if !strings.Contains(content, "ORIGINAL CHARACTER") {
			t.Errorf("Source() = %q, want embedded character template", content)
		}
	})

	t.Run("prefers override", func(t *testing.T) {
		content, err := cache.Source(ConflictTemplate)
		if err != nil {
			t.Fatalf("Source() error = %v", err)
		}
		if content != "override {{.WorldName}}" {
			t.Errorf("Source() = %q, want override", content)
		}
	})

	t.Run("caches parsed template", func(t *testing.T) {
		first, err := cache.Template(ValidationTemplate)
		if err != nil {
			t.Fatalf("Template() error = %v", err)
		}
		second, err := cache.Template(ValidationTemplate)
		if err != nil {
			t.Fatal(err)
		}
		if first != second {
			t.Error("Template() parsed twice")
		}
		if first.Name() != ValidationTemplate {
			t.Errorf("template name = %q, want %q", first.Name(), ValidationTemplate)
		}
	})

	t.Run("unknown template", func(t *testing.T) {
		if _, err := cache.Template("epilogue"); err == nil {
			t.Error("Template() error = nil, want error for unknown template")
		}
	})

	t.Run("preload and clear", func(t *testing.T) {
		cache.Clear()
		if err := cache.Preload(AllTemplates...); err != nil {
			t.Fatalf("Preload() error = %v", err)
		}
		templates, raw := cache.Stats()
		if templates != len(AllTemplates) || raw != len(AllTemplates) {
			t.Errorf("Stats() = %d, %d, want %d, %d", templates, raw, len(AllTemplates), len(AllTemplates))
		}

		cache.Clear()
		templates, raw = cache.Stats()
		if templates != 0 || raw != 0 {
			t.Errorf("Stats() after Clear = %d, %d, want 0, 0", templates, raw)
		}
	})

	t.Run("broken override fails preload", func(t *testing.T) {
		broken := NewTemplateCache(fstest.MapFS{
			"scene.tmpl": {Data: []byte("{{.Theme")},
		})
		if err := broken.Preload(SceneTemplate); err == nil {
			t.Error("Preload() error = nil, want parse error")
		}
	})
}
