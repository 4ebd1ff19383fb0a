package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration, loaded from a YAML file with
// sensible defaults for every field. Secrets are never stored in the file;
// the *_env fields name the environment variables that hold them.
type Config struct {
	Retrieval RetrievalConfig `yaml:"retrieval"`
	AI        AIConfig        `yaml:"ai"`
	WebSearch WebSearchConfig `yaml:"web_search"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// RetrievalConfig tunes the vector search and its relevance gate.
type RetrievalConfig struct {
	TopK               int     `yaml:"top_k"`
	MaxAvgDistance     float64 `yaml:"max_avg_distance"`
	KeywordAvgDistance float64 `yaml:"keyword_avg_distance"`
	MinContextWords    int     `yaml:"min_context_words"`
}

// AIConfig selects the embedding and chat backends.
type AIConfig struct {
	EmbeddingHost  string  `yaml:"embedding_host"`
	ChatHost       string  `yaml:"chat_host"`
	EmbeddingModel string  `yaml:"embedding_model"`
	ChatModel      string  `yaml:"chat_model"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSecs    int     `yaml:"timeout_secs"`
}

// WebSearchConfig controls the Google Custom Search fallback.
type WebSearchConfig struct {
	Enabled     bool   `yaml:"enabled"`
	APIKeyEnv   string `yaml:"api_key_env"`
	EngineIDEnv string `yaml:"cx_env"`
	NumResults  int    `yaml:"num_results"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Retrieval: RetrievalConfig{
			TopK:               6,
			MaxAvgDistance:     0.5,
			KeywordAvgDistance: 0.55,
			MinContextWords:    250,
		},
		AI: AIConfig{
			EmbeddingHost:  "http://localhost:11434/v1",
			ChatHost:       "https://api.groq.com/openai/v1",
			EmbeddingModel: "embeddinggemma",
			ChatModel:      "llama-3.3-70b-versatile",
			APIKeyEnv:      "GROQ_API_KEY",
			Temperature:    0.25,
			MaxTokens:      900,
			TimeoutSecs:    120,
		},
		WebSearch: WebSearchConfig{
			Enabled:     true,
			APIKeyEnv:   "GOOGLE_API_KEY",
			EngineIDEnv: "GOOGLE_CSE_ID",
			NumResults:  3,
			TimeoutSecs: 10,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML config file over the defaults and validates the result.
// An empty path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks all fields for consistency.
func (c *Config) Validate() error {
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.MaxAvgDistance <= 0 {
		return fmt.Errorf("retrieval.max_avg_distance must be positive, got %v", c.Retrieval.MaxAvgDistance)
	}
	if c.Retrieval.KeywordAvgDistance <= 0 {
		return fmt.Errorf("retrieval.keyword_avg_distance must be positive, got %v", c.Retrieval.KeywordAvgDistance)
	}
	if c.Retrieval.MinContextWords < 0 {
		return fmt.Errorf("retrieval.min_context_words cannot be negative, got %d", c.Retrieval.MinContextWords)
	}
	if c.AI.EmbeddingHost == "" || c.AI.ChatHost == "" {
		return fmt.Errorf("ai.embedding_host and ai.chat_host are required")
	}
	if c.AI.EmbeddingModel == "" || c.AI.ChatModel == "" {
		return fmt.Errorf("ai.embedding_model and ai.chat_model are required")
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be in [0, 2], got %v", c.AI.Temperature)
	}
	if c.AI.MaxTokens <= 0 {
		return fmt.Errorf("ai.max_tokens must be positive, got %d", c.AI.MaxTokens)
	}
	if c.AI.TimeoutSecs <= 0 {
		return fmt.Errorf("ai.timeout_secs must be positive, got %d", c.AI.TimeoutSecs)
	}
	if c.WebSearch.NumResults <= 0 {
		return fmt.Errorf("web_search.num_results must be positive, got %d", c.WebSearch.NumResults)
	}
	if c.WebSearch.TimeoutSecs <= 0 {
		return fmt.Errorf("web_search.timeout_secs must be positive, got %d", c.WebSearch.TimeoutSecs)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}

// ModelTimeout returns the chat/embedding request timeout as a Duration.
func (c *Config) ModelTimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSecs) * time.Second
}

// WebSearchTimeout returns the web search request timeout as a Duration.
func (c *Config) WebSearchTimeout() time.Duration {
	return time.Duration(c.WebSearch.TimeoutSecs) * time.Second
}

// APIKey resolves the model API key from the configured environment variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.AI.APIKeyEnv)
}

// WebSearchCredentials resolves the Google API key and engine ID from the
// configured environment variables.
func (c *Config) WebSearchCredentials() (apiKey, engineID string) {
	return os.Getenv(c.WebSearch.APIKeyEnv), os.Getenv(c.WebSearch.EngineIDEnv)
}
