package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	RedisURL string        `envconfig:"REDIS_URL"`
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"1h"`

	// LLM provider. BaseURL allows any OpenAI-compatible endpoint (Groq,
	// OpenAI, a local gateway).
	LLMAPIKey       string `envconfig:"LLM_API_KEY"`
	LLMBaseURL      string `envconfig:"LLM_BASE_URL"`
	CompletionModel string `envconfig:"COMPLETION_MODEL" default:"llama-3.3-70b-versatile"`
	EmbeddingModel  string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`

	EmbeddingDimensions int     `envconfig:"EMBEDDING_DIMENSIONS" default:"384"`
	RetrievalLimit      int     `envconfig:"RETRIEVAL_LIMIT" default:"3"`
	SimilarityFloor     float64 `envconfig:"SIMILARITY_FLOOR" default:"0.5"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("RISKPILOT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) HasRedis() bool {
	return c.RedisURL != ""
}

func (c *Config) HasLLM() bool {
	return c.LLMAPIKey != ""
}
