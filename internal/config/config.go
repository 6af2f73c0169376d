package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration for the analyzer service.
// Provider credentials are deliberately absent: they arrive with each request.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes
	MaxDocuments  int   `env:"MAX_DOCUMENTS" envDefault:"5"`

	// Prompt
	DefaultTemplate  string `env:"DEFAULT_TEMPLATE" envDefault:"comparative"`
	PromptTokenLimit int    `env:"PROMPT_TOKEN_LIMIT" envDefault:"120000"` // <= 0 disables the guard
	BytesPerToken    int    `env:"BYTES_PER_TOKEN" envDefault:"4"`

	// Providers
	ProviderTimeout   time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"5m"`
	OpenAIModel       string        `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	OpenAIBaseURL     string        `env:"OPENAI_BASE_URL"`
	OpenAITemperature float64       `env:"OPENAI_TEMPERATURE" envDefault:"0.5"`
	GeminiModel       string        `env:"GEMINI_MODEL" envDefault:"gemini-pro"`
	GeminiBaseURL     string        `env:"GEMINI_BASE_URL"`
	HuggingFaceURL    string        `env:"HUGGINGFACE_URL" envDefault:"https://api-inference.huggingface.co/models/mistralai/Mixtral-8x7B-Instruct-v0.1"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
