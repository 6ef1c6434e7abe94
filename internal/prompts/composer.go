// Package prompts renders mapping records into generation instructions.
//
// Each template restates the role, traits, arc and themes it was given so the
// instruction names the constraint the generated text must keep. Rendering is
// deterministic: a missing required field fails with a
// *core.MalformedMappingError and is never worth retrying.
package prompts

import (
	"bytes"
	"errors"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vampirenirmal/storyshift/internal/core"
	"github.com/vampirenirmal/storyshift/internal/domain"
)

// Template names, matching the file names without extension.
const (
	CharacterTemplate  = "character"
	ConflictTemplate   = "conflict"
	SceneTemplate      = "scene"
	AssemblyTemplate   = "assembly"
	ValidationTemplate = "validation"
)

// AllTemplates lists every template the composer can render.
var AllTemplates = []string{
	CharacterTemplate,
	ConflictTemplate,
	SceneTemplate,
	AssemblyTemplate,
	ValidationTemplate,
}

// AssemblyInput carries the texts produced by earlier stages.
type AssemblyInput struct {
	SourceTitle   string   `json:"source_title" validate:"required"`
	WorldName     string   `json:"world_name" validate:"required"`
	Themes        []string `json:"themes"`
	EmotionalCore string   `json:"emotional_core" validate:"required"`
	Characters    string   `json:"characters"`
	Conflict      string   `json:"conflict" validate:"required"`
	Scenes        string   `json:"scenes"`
	Aesthetic     string   `json:"aesthetic"`
}

type ValidationInput struct {
	Themes        []string `json:"themes"`
	EmotionalCore string   `json:"emotional_core" validate:"required"`
	StoryText     string   `json:"story_text" validate:"required"`
}

// SceneInput renders a single plot beat as a standalone scene.
type SceneInput struct {
	SourceTitle   string                 `json:"source_title" validate:"required"`
	SourceAuthor  string                 `json:"source_author"`
	Theme         string                 `json:"theme" validate:"required"`
	EmotionalCore string                 `json:"emotional_core" validate:"required"`
	Beat          domain.PlotBeatMapping `json:"beat"`
	WorldSetting  string                 `json:"world_setting"`
	Characters    string                 `json:"characters"`
}

type conflictInput struct {
	domain.ConflictMapping
	WorldName string `json:"world_name" validate:"required"`
}

// Option configures a Composer.
type Option func(*Composer)

// WithOverrideDir lets templates in dir replace the embedded defaults by file name.
func WithOverrideDir(dir string) Option {
	return func(c *Composer) {
		if dir != "" {
			c.cache = NewTemplateCache(os.DirFS(dir))
		}
	}
}

// WithCache uses an existing template cache.
func WithCache(cache *TemplateCache) Option {
	return func(c *Composer) {
		c.cache = cache
	}
}

type Composer struct {
	cache    *TemplateCache
	validate *validator.Validate
}

func NewComposer(opts ...Option) *Composer {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	c := &Composer{
		cache:    NewTemplateCache(nil),
		validate: v,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Preload parses every template so a broken override fails before any
// generation call is made.
func (c *Composer) Preload() error {
	return c.cache.Preload(AllTemplates...)
}

// Character renders the instruction for reimagining one character.
func (c *Composer) Character(m domain.CharacterMapping) (string, error) {
	return c.render(CharacterTemplate, m)
}

// Conflict renders the conflict reframing instruction for worldName.
func (c *Composer) Conflict(m domain.ConflictMapping, worldName string) (string, error) {
	return c.render(ConflictTemplate, conflictInput{ConflictMapping: m, WorldName: worldName})
}

// Scene renders a single-beat scene instruction. A blank WorldSetting reads
// as "the new world".
func (c *Composer) Scene(in SceneInput) (string, error) {
	if in.WorldSetting == "" {
		in.WorldSetting = "the new world"
	}
	return c.render(SceneTemplate, in)
}

func (c *Composer) Assembly(in AssemblyInput) (string, error) {
	return c.render(AssemblyTemplate, in)
}

// Validation renders the fidelity check. The story text is embedded verbatim.
func (c *Composer) Validation(in ValidationInput) (string, error) {
	return c.render(ValidationTemplate, in)
}

func (c *Composer) render(name string, data any) (string, error) {
	if err := c.validate.Struct(data); err != nil {
		return "", malformed(name, err)
	}

	tmpl, err := c.cache.Template(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", &core.MalformedMappingError{Template: name, Err: err}
	}
	return strings.TrimSpace(buf.String()), nil
}

func malformed(name string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &core.MalformedMappingError{Template: name, Err: err}
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &core.MalformedMappingError{Template: name, Fields: fields, Err: err}
}
