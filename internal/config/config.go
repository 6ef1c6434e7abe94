package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const appName = "storyshift"

// Providers lists the supported generation backends.
var Providers = []string{"groq", "openai", "anthropic", "gemini"}

type Config struct {
	Generation GenerationConfig `yaml:"generation" validate:"required"`
	Presets    PresetsConfig    `yaml:"presets" validate:"required"`
	Paths      PathsConfig      `yaml:"paths" validate:"required"`
	Limits     Limits           `yaml:"limits" validate:"required"`
	Cache      CacheConfig      `yaml:"cache"`
}

type GenerationConfig struct {
	Provider string `yaml:"provider" env:"STORYSHIFT_PROVIDER" validate:"required,oneof=groq openai anthropic gemini"`
	Model    string `yaml:"model" env:"STORYSHIFT_MODEL" validate:"required"`
	BaseURL  string `yaml:"base_url" env:"STORYSHIFT_BASE_URL" validate:"omitempty,url"`

	// APIKey is only ever read from the environment.
	APIKey string `yaml:"-"`
}

// Preset is a fixed pair of sampling parameters.
type Preset struct {
	Temperature float64 `yaml:"temperature" validate:"min=0,max=1"`
	MaxTokens   int     `yaml:"max_tokens" validate:"required,min=1,max=32000"`
}

type PresetsConfig struct {
	Creative   Preset `yaml:"creative" validate:"required"`
	Structured Preset `yaml:"structured" validate:"required"`
}

type PathsConfig struct {
	OutputDir  string `yaml:"output_dir" validate:"required"`
	DataDir    string `yaml:"data_dir"`
	PromptsDir string `yaml:"prompts_dir"`
	HistoryDB  string `yaml:"history_db"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl" validate:"required_if=Enabled true"`
}

type credentials struct {
	Groq      string `env:"GROQ_API_KEY"`
	OpenAI    string `env:"OPENAI_API_KEY"`
	Anthropic string `env:"ANTHROPIC_API_KEY"`
	Gemini    string `env:"GEMINI_API_KEY"`
}

func (c credentials) forProvider(provider string) string {
	switch provider {
	case "openai":
		return c.OpenAI
	case "anthropic":
		return c.Anthropic
	case "gemini":
		return c.Gemini
	default:
		return c.Groq
	}
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			Provider: "groq",
		},
		Presets: PresetsConfig{
			Creative:   Preset{Temperature: 0.85, MaxTokens: 2000},
			Structured: Preset{Temperature: 0.4, MaxTokens: 1000},
		},
		Paths: PathsConfig{
			OutputDir: ".",
			HistoryDB: filepath.Join(dataHome(), appName, "history.db"),
		},
		Limits: DefaultLimits(),
		Cache: CacheConfig{
			TTL: 30 * time.Minute,
		},
	}
}

// Load reads the config file at path, or the default location when path is
// empty, then applies .env and environment overrides. A missing file is not
// an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = Path()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := env.Parse(&cfg.Generation); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	var creds credentials
	if err := env.Parse(&creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	cfg.Generation.APIKey = creds.forProvider(cfg.Generation.Provider)

	cfg.applyProviderDefaults()
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Path resolves the config file location.
func Path() string {
	// 1. Explicit config path via environment variable
	if path := os.Getenv("STORYSHIFT_CONFIG"); path != "" {
		return path
	}

	// 2. XDG_CONFIG_HOME
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appName, "config.yaml")
	}

	// 3. ~/.config fallback
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName, "config.yaml")
}

func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// CredentialEnv names the environment variable holding the API key for the
// configured provider.
func (c *Config) CredentialEnv() string {
	switch c.Generation.Provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return "GROQ_API_KEY"
	}
}

func (c *Config) applyProviderDefaults() {
	var baseURL, model string
	switch c.Generation.Provider {
	case "groq":
		baseURL, model = "https://api.groq.com/openai/v1", "llama-3.1-8b-instant"
	case "openai":
		baseURL, model = "https://api.openai.com/v1", "gpt-4o-mini"
	case "anthropic":
		baseURL, model = "https://api.anthropic.com/v1", "claude-3-5-sonnet-20241022"
	case "gemini":
		model = "gemini-2.0-flash"
	}

	if c.Generation.BaseURL == "" {
		c.Generation.BaseURL = baseURL
	}
	if c.Generation.Model == "" {
		c.Generation.Model = model
	}
}

func (c *Config) expandPaths() {
	c.Paths.OutputDir = expandTilde(c.Paths.OutputDir)
	c.Paths.DataDir = expandTilde(c.Paths.DataDir)
	c.Paths.PromptsDir = expandTilde(c.Paths.PromptsDir)
	c.Paths.HistoryDB = expandTilde(c.Paths.HistoryDB)
}

// expandTilde expands a leading ~/ to the user's home directory
func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func dataHome() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return xdgData
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share")
}
