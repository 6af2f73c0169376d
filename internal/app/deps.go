package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/joho/godotenv"

	"script-analyzer/internal/analysis"
	"script-analyzer/internal/config"
	"script-analyzer/internal/ingest"
	"script-analyzer/internal/llm"
	"script-analyzer/internal/logger"
	"script-analyzer/internal/prompt"
)

// Deps bundles common runtime dependencies for the analyzer service.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Prompts  *prompt.Library
	Analyzer *analysis.Service
}

// Build loads env, config, and shared components. A missing .env file is not
// an error.
func Build() (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	return BuildWith(cfg, log)
}

// BuildWith wires components from an already loaded config.
func BuildWith(cfg config.Config, log *slog.Logger) (Deps, error) {
	prompts, err := buildPrompts(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize prompt templates: %w", err)
	}
	dispatcher := buildDispatcher(cfg, log)
	analyzer := analysis.NewService(log, ingest.New(log), prompts, dispatcher, analysis.Options{
		PromptTokenLimit: cfg.PromptTokenLimit,
		BytesPerToken:    cfg.BytesPerToken,
	})
	return Deps{
		Config:   cfg,
		Log:      log,
		Prompts:  prompts,
		Analyzer: analyzer,
	}, nil
}

func buildPrompts(cfg config.Config, log *slog.Logger) (*prompt.Library, error) {
	var opts []prompt.Option
	if cfg.DefaultTemplate != "" {
		opts = append(opts, prompt.WithDefault(cfg.DefaultTemplate))
	}
	lib, err := prompt.NewLibrary(opts...)
	if err != nil {
		return nil, err
	}
	log.Info("prompt templates loaded", "count", len(lib.Templates()), "default", lib.Default())
	return lib, nil
}

func buildDispatcher(cfg config.Config, log *slog.Logger) *llm.Dispatcher {
	hc := &http.Client{Timeout: cfg.ProviderTimeout}
	gens := map[llm.Provider]llm.Generator{
		llm.ProviderOpenAI: llm.NewOpenAIGenerator(llm.OpenAIOptions{
			Model:       cfg.OpenAIModel,
			Temperature: cfg.OpenAITemperature,
			BaseURL:     cfg.OpenAIBaseURL,
			HTTPClient:  hc,
		}),
		llm.ProviderGemini: llm.NewGeminiGenerator(llm.GeminiOptions{
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: hc,
		}),
		llm.ProviderHuggingFace: llm.NewHuggingFaceGenerator(llm.HuggingFaceOptions{
			URL:        cfg.HuggingFaceURL,
			HTTPClient: hc,
		}),
	}
	log.Info("providers configured",
		"openai_model", cfg.OpenAIModel,
		"gemini_model", cfg.GeminiModel,
		"huggingface_url", cfg.HuggingFaceURL,
		"timeout", cfg.ProviderTimeout.String(),
	)
	return llm.NewDispatcher(log, gens)
}
