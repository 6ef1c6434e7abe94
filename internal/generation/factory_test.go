package generation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vampirenirmal/storyshift/internal/config"
)

func testConfig(provider, key string) *config.Config {
	cfg := config.Default()
	cfg.Generation.Provider = provider
	cfg.Generation.Model = "test-model"
	cfg.Generation.APIKey = key
	return cfg
}

func TestNewGeneratorRequiresCredential(t *testing.T) {
	_, err := NewGenerator(context.Background(), testConfig("anthropic", ""))
	require.ErrorIs(t, err, ErrMissingCredential)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestNewGeneratorSelectsBackend(t *testing.T) {
	tests := []struct {
		provider string
		check    func(t *testing.T, gen Generator)
	}{
		{"groq", func(t *testing.T, gen Generator) {
			c, ok := gen.(*Client)
			require.True(t, ok)
			assert.Equal(t, APIOpenAI, c.apiType)
		}},
		{"anthropic", func(t *testing.T, gen Generator) {
			c, ok := gen.(*Client)
			require.True(t, ok)
			assert.Equal(t, APIAnthropic, c.apiType)
		}},
		{"gemini", func(t *testing.T, gen Generator) {
			_, ok := gen.(*GeminiClient)
			assert.True(t, ok)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			gen, err := NewGenerator(context.Background(), testConfig(tt.provider, "key"))
			require.NoError(t, err)
			tt.check(t, gen)
		})
	}
}

func TestNewGeneratorWrapsCache(t *testing.T) {
	cfg := testConfig("openai", "key")
	cfg.Cache.Enabled = true

	gen, err := NewGenerator(context.Background(), cfg)
	require.NoError(t, err)
	_, ok := gen.(*CachedGenerator)
	assert.True(t, ok)
}

func TestNewServiceFromConfig(t *testing.T) {
	cfg := testConfig("groq", "key")
	cfg.Limits.RetryBudget = 1
	cfg.Presets.Structured = config.Preset{Temperature: 0.2, MaxTokens: 50}

	mock := NewMockGenerator(nil)
	svc := NewServiceFromConfig(mock, cfg)

	_, err := svc.Structured(context.Background(), "p", "")
	require.NoError(t, err)
	assert.Equal(t, 1, svc.RetryBudget())
	assert.Equal(t, Request{Prompt: "p", Temperature: 0.2, MaxTokens: 50}, mock.Calls()[0])
}
