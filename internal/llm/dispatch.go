package llm

import (
	"context"
	"log/slog"
	"time"
)

// Dispatcher routes a prompt to exactly one Generator chosen by selector.
// There is no fallback between providers and no retry.
type Dispatcher struct {
	log        *slog.Logger
	generators map[Provider]Generator
}

// NewDispatcher returns a Dispatcher over gens. Providers without a
// generator are reported as unavailable at dispatch time.
func NewDispatcher(log *slog.Logger, gens map[Provider]Generator) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	m := make(map[Provider]Generator, len(gens))
	for p, g := range gens {
		m[p] = g
	}
	return &Dispatcher{log: log, generators: m}
}

// Dispatch resolves selector and calls its generator once. Unknown selectors
// and empty credentials are rejected without any network call.
func (d *Dispatcher) Dispatch(ctx context.Context, selector, prompt, credential string) (res Result) {
	provider, ok := ParseProvider(selector)
	if !ok {
		d.log.Warn("invalid provider selection", "selector", selector)
		return Fail(KindInvalidSelection, "invalid model selected: %q", selector)
	}
	gen, ok := d.generators[provider]
	if !ok {
		return Fail(KindInvalidSelection, "provider %s is not configured", provider)
	}
	if credential == "" {
		return missingCredential(provider)
	}

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Error("provider panic recovered", "provider", provider, "panic", rec)
			res = Fail(KindProtocol, "%s: unexpected failure: %v", provider, rec)
		}
		attrs := []any{"provider", provider, "duration_ms", time.Since(start).Milliseconds()}
		if res.Failure != nil {
			d.log.Warn("provider call failed", append(attrs, "kind", res.Failure.Kind, "status", res.Failure.Status)...)
			return
		}
		d.log.Info("provider call succeeded", append(attrs, "chars", len(res.Text))...)
	}()
	return gen.Generate(ctx, prompt, credential)
}
