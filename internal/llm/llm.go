package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Generator sends one prompt to a text-generation provider. Implementations
// never return a Go error: every failure is folded into the Result.
type Generator interface {
	Generate(ctx context.Context, prompt, credential string) Result
}

// FailureKind classifies why a generation produced no text.
type FailureKind string

const (
	KindNetwork          FailureKind = "network"           // transport failed, no usable HTTP response
	KindAuth             FailureKind = "auth"              // provider rejected the credential
	KindUpstream         FailureKind = "upstream"          // provider returned an error status
	KindProtocol         FailureKind = "protocol"          // response did not have the expected shape
	KindInvalidSelection FailureKind = "invalid_selection" // no such provider
	KindPrecondition     FailureKind = "precondition"      // request rejected before any call
)

// Failure is a human-readable description of a failed generation. Raw holds
// the provider's response body when one was received.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
	Status  int         `json:"status,omitempty"`
	Raw     string      `json:"raw,omitempty"`
}

func (f *Failure) Error() string { return f.Message }

// Retryable reports whether the same request might succeed later. Nothing in
// this module retries; the flag is surfaced to the caller.
func (f *Failure) Retryable() bool {
	switch f.Kind {
	case KindNetwork:
		return true
	case KindUpstream:
		return f.Status == http.StatusTooManyRequests || f.Status >= 500
	default:
		return false
	}
}

// Result is either generated text or a Failure.
type Result struct {
	Text    string
	Failure *Failure
}

// OK reports whether the result carries generated text.
func (r Result) OK() bool { return r.Failure == nil }

// String renders the result for presentation: the text on success, otherwise
// an "Error: ..." line followed by the raw provider payload.
func (r Result) String() string {
	if r.Failure == nil {
		return r.Text
	}
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(r.Failure.Message)
	if r.Failure.Raw != "" {
		b.WriteString("\n")
		b.WriteString(r.Failure.Raw)
	}
	return b.String()
}

// Success wraps generated text.
func Success(text string) Result { return Result{Text: text} }

// Fail builds a failed Result.
func Fail(kind FailureKind, format string, args ...any) Result {
	return Result{Failure: &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}}
}

// statusFailure builds a failed Result from a non-2xx response.
func statusFailure(provider Provider, status int, raw string) Result {
	kind := KindUpstream
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = KindAuth
	}
	return Result{Failure: &Failure{
		Kind:    kind,
		Message: fmt.Sprintf("%s: HTTP %d %s", provider, status, http.StatusText(status)),
		Status:  status,
		Raw:     raw,
	}}
}

// transportFailure builds a failed Result from a client-side error.
func transportFailure(provider Provider, err error) Result {
	msg := fmt.Sprintf("%s: request failed: %v", provider, err)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		msg = fmt.Sprintf("%s: request cancelled: %v", provider, err)
	}
	return Result{Failure: &Failure{Kind: KindNetwork, Message: msg}}
}

func missingCredential(provider Provider) Result {
	return Fail(KindPrecondition, "%s: api key required", provider)
}
