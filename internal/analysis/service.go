// Package analysis runs one script analysis: ingest the uploaded documents,
// compose the prompt and dispatch it to a single provider.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"script-analyzer/internal/ingest"
	"script-analyzer/internal/llm"
	"script-analyzer/internal/prompt"
)

var (
	ErrNoDocuments       = errors.New("at least one document is required")
	ErrMissingCredential = errors.New("api key is required")
)

// Request is everything one analysis needs. Credential is used for the single
// provider call and is not retained.
type Request struct {
	Documents  []ingest.SourceDocument
	Template   string
	Addendum   string
	Provider   string
	Credential string
}

// Report is the outcome of a Run. Provider-side failures are carried in
// Result rather than returned as errors.
type Report struct {
	ID            uuid.UUID
	Provider      string
	Template      string
	DocumentCount int
	PromptTokens  int
	Warnings      []ingest.Warning
	Result        llm.Result
}

// Dispatcher sends a composed prompt to the selected provider.
type Dispatcher interface {
	Dispatch(ctx context.Context, selector, prompt, credential string) llm.Result
}

// Options tunes the token budget guard.
type Options struct {
	PromptTokenLimit int // <= 0 disables the guard
	BytesPerToken    int
}

// Service is stateless across runs and safe for concurrent use.
type Service struct {
	log        *slog.Logger
	ingestor   *ingest.Ingestor
	prompts    *prompt.Library
	dispatcher Dispatcher
	opts       Options
}

func NewService(log *slog.Logger, ingestor *ingest.Ingestor, prompts *prompt.Library, d Dispatcher, opts Options) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{log: log, ingestor: ingestor, prompts: prompts, dispatcher: d, opts: opts}
}

// Run executes one analysis. The returned error is non-nil only when a
// precondition fails, in which case no provider call was made.
func (s *Service) Run(ctx context.Context, req Request) (Report, error) {
	rep := Report{ID: uuid.New(), Provider: strings.TrimSpace(req.Provider), DocumentCount: len(req.Documents)}
	log := s.log.With("analysis_id", rep.ID, "provider", rep.Provider)

	if len(req.Documents) == 0 {
		return rep, ErrNoDocuments
	}
	if req.Credential == "" {
		return rep, ErrMissingCredential
	}
	tmpl, err := s.prompts.Lookup(req.Template)
	if err != nil {
		return rep, err
	}
	rep.Template = tmpl.Name

	scripts, warnings := s.ingestor.Ingest(req.Documents)
	rep.Warnings = warnings

	text, err := s.prompts.Compose(tmpl.Name, req.Addendum, scripts)
	if err != nil {
		return rep, fmt.Errorf("compose prompt: %w", err)
	}
	rep.PromptTokens, err = prompt.CheckBudget(text, s.opts.PromptTokenLimit, s.opts.BytesPerToken)
	if err != nil {
		log.Warn("prompt rejected by token budget", "prompt_tokens", rep.PromptTokens, "limit", s.opts.PromptTokenLimit)
		return rep, err
	}

	log.Info("analysis dispatching",
		"template", rep.Template,
		"documents", rep.DocumentCount,
		"warnings", len(rep.Warnings),
		"prompt_tokens", rep.PromptTokens,
	)
	rep.Result = s.dispatcher.Dispatch(ctx, req.Provider, text, req.Credential)
	if rep.Result.Failure != nil {
		log.Warn("analysis failed", "kind", rep.Result.Failure.Kind, "retryable", rep.Result.Failure.Retryable())
	} else {
		log.Info("analysis completed", "chars", len(rep.Result.Text))
	}
	return rep, nil
}

// IsPrecondition reports whether err from Run means the request itself was
// unacceptable.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrNoDocuments) ||
		errors.Is(err, ErrMissingCredential) ||
		errors.Is(err, prompt.ErrUnknownTemplate) ||
		errors.Is(err, prompt.ErrNoScripts) ||
		errors.Is(err, prompt.ErrPromptTooLarge)
}
