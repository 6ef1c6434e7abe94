package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STORYSHIFT_PROVIDER", "STORYSHIFT_MODEL", "STORYSHIFT_BASE_URL",
		"GROQ_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Generation.Provider != "groq" {
		t.Errorf("Provider = %q, want groq", cfg.Generation.Provider)
	}
	if cfg.Generation.Model != "llama-3.1-8b-instant" {
		t.Errorf("Model = %q, want llama-3.1-8b-instant", cfg.Generation.Model)
	}
	if cfg.Generation.BaseURL != "https://api.groq.com/openai/v1" {
		t.Errorf("BaseURL = %q", cfg.Generation.BaseURL)
	}
	if cfg.Generation.APIKey != "gsk-test" {
		t.Errorf("APIKey = %q, want value from GROQ_API_KEY", cfg.Generation.APIKey)
	}
	if cfg.Limits.RetryBudget != 2 {
		t.Errorf("RetryBudget = %d, want 2", cfg.Limits.RetryBudget)
	}
	if cfg.Presets.Creative != (Preset{Temperature: 0.85, MaxTokens: 2000}) {
		t.Errorf("Creative = %+v", cfg.Presets.Creative)
	}
	if cfg.Presets.Structured != (Preset{Temperature: 0.4, MaxTokens: 1000}) {
		t.Errorf("Structured = %+v", cfg.Presets.Structured)
	}
	if cfg.Cache.Enabled {
		t.Error("cache enabled by default")
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
generation:
  provider: openai
  model: gpt-4.1
limits:
  retry_budget: 4
  call_timeout: 45s
  rate_limit:
    requests_per_minute: 10
    burst_size: 2
paths:
  output_dir: out
  prompts_dir: prompts
cache:
  enabled: true
  ttl: 10m
`)
	t.Setenv("STORYSHIFT_MODEL", "gpt-4o")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("GROQ_API_KEY", "gsk-ignored")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Generation.Model != "gpt-4o" {
		t.Errorf("Model = %q, want env override gpt-4o", cfg.Generation.Model)
	}
	if cfg.Generation.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("BaseURL = %q, want openai default", cfg.Generation.BaseURL)
	}
	if cfg.Generation.APIKey != "sk-openai" {
		t.Errorf("APIKey = %q, want sk-openai", cfg.Generation.APIKey)
	}
	if cfg.Limits.RetryBudget != 4 || cfg.Limits.CallTimeout != 45*time.Second {
		t.Errorf("Limits = %+v", cfg.Limits)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Paths.PromptsDir != "prompts" {
		t.Errorf("PromptsDir = %q", cfg.Paths.PromptsDir)
	}
	if cfg.CredentialEnv() != "OPENAI_API_KEY" {
		t.Errorf("CredentialEnv() = %q", cfg.CredentialEnv())
	}
}

func TestLoadProviderFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORYSHIFT_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "gem-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Generation.Model != "gemini-2.0-flash" || cfg.Generation.BaseURL != "" {
		t.Errorf("Generation = %+v", cfg.Generation)
	}
	if cfg.Generation.APIKey != "gem-key" {
		t.Errorf("APIKey = %q", cfg.Generation.APIKey)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Generation.Provider = "ollama" },
			wantErr: "Provider",
		},
		{
			name:    "temperature above one",
			mutate:  func(c *Config) { c.Presets.Creative.Temperature = 1.5 },
			wantErr: "Temperature",
		},
		{
			name:    "retry budget too large",
			mutate:  func(c *Config) { c.Limits.RetryBudget = 11 },
			wantErr: "RetryBudget",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.Limits.RateLimit.RequestsPerMinute = 0 },
			wantErr: "RequestsPerMinute",
		},
		{
			name:    "bad base url",
			mutate:  func(c *Config) { c.Generation.BaseURL = "not a url" },
			wantErr: "BaseURL",
		},
		{
			name: "cache enabled without ttl",
			mutate: func(c *Config) {
				c.Cache.Enabled = true
				c.Cache.TTL = 0
			},
			wantErr: "TTL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Generation.Model = "llama-3.1-8b-instant"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error mentioning %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestInvalidFileFailsLoad(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "generation: [unclosed")

	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}

func TestPathResolution(t *testing.T) {
	t.Setenv("STORYSHIFT_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := Path(); got != filepath.Join("/tmp/xdg", "storyshift", "config.yaml") {
		t.Errorf("Path() = %q", got)
	}

	t.Setenv("STORYSHIFT_CONFIG", "/etc/storyshift.yaml")
	if got := Path(); got != "/etc/storyshift.yaml" {
		t.Errorf("Path() = %q, want explicit path", got)
	}
}
