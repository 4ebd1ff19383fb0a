package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 6, cfg.Retrieval.TopK)
	assert.Equal(t, 0.5, cfg.Retrieval.MaxAvgDistance)
	assert.Equal(t, 0.55, cfg.Retrieval.KeywordAvgDistance)
	assert.Equal(t, 250, cfg.Retrieval.MinContextWords)
	assert.Equal(t, 0.25, cfg.AI.Temperature)
	assert.Equal(t, 900, cfg.AI.MaxTokens)
	assert.Equal(t, 120*time.Second, cfg.ModelTimeout())
	assert.Equal(t, 10*time.Second, cfg.WebSearchTimeout())
	assert.True(t, cfg.WebSearch.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeConfig(t, `
retrieval:
  top_k: 10
ai:
  chat_model: llama-3.1-8b-instant
web_search:
  enabled: false
logging:
  level: debug
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 10, cfg.Retrieval.TopK)
		assert.Equal(t, "llama-3.1-8b-instant", cfg.AI.ChatModel)
		assert.False(t, cfg.WebSearch.Enabled)
		assert.Equal(t, "debug", cfg.Logging.Level)

		// untouched sections keep their defaults
		assert.Equal(t, 0.5, cfg.Retrieval.MaxAvgDistance)
		assert.Equal(t, 900, cfg.AI.MaxTokens)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "retrieval: [not a map")
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		cases := map[string]string{
			"zero top_k":          "retrieval:\n  top_k: 0\n",
			"negative threshold":  "retrieval:\n  max_avg_distance: -1\n",
			"temperature too hot": "ai:\n  temperature: 3.5\n",
			"empty chat model":    "ai:\n  chat_model: \"\"\n",
			"bad log level":       "logging:\n  level: chatty\n",
		}
		for name, content := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := Load(writeConfig(t, content))
				assert.Error(t, err)
			})
		}
	})
}

func TestCredentialResolution(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AI.APIKeyEnv = "TEST_MEDIQA_API_KEY"
	cfg.WebSearch.APIKeyEnv = "TEST_MEDIQA_GOOGLE_KEY"
	cfg.WebSearch.EngineIDEnv = "TEST_MEDIQA_CSE_ID"

	t.Setenv("TEST_MEDIQA_API_KEY", "model-key")
	t.Setenv("TEST_MEDIQA_GOOGLE_KEY", "google-key")
	t.Setenv("TEST_MEDIQA_CSE_ID", "engine-id")

	assert.Equal(t, "model-key", cfg.APIKey())
	apiKey, engineID := cfg.WebSearchCredentials()
	assert.Equal(t, "google-key", apiKey)
	assert.Equal(t, "engine-id", engineID)
}
