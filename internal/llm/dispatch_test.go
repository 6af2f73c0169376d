package llm

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestDispatcher() (*Dispatcher, map[Provider]*MockGenerator) {
	mocks := map[Provider]*MockGenerator{
		ProviderOpenAI:      new(MockGenerator),
		ProviderGemini:      new(MockGenerator),
		ProviderHuggingFace: new(MockGenerator),
	}
	gens := make(map[Provider]Generator, len(mocks))
	for p, m := range mocks {
		gens[p] = m
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDispatcher(log, gens), mocks
}

func assertNoCalls(t *testing.T, mocks map[Provider]*MockGenerator) {
	t.Helper()
	for _, m := range mocks {
		m.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestDispatchRoutesToExactlyOneProvider(t *testing.T) {
	tests := []struct {
		selector string
		want     Provider
	}{
		{"openai", ProviderOpenAI},
		{"GPT-4 (OpenAI)", ProviderOpenAI},
		{"Gemini", ProviderGemini},
		{"Gemini Pro (Google AI)", ProviderGemini},
		{"huggingface", ProviderHuggingFace},
		{" Hugging Face ", ProviderHuggingFace},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			d, mocks := newTestDispatcher()
			mocks[tt.want].On("Generate", mock.Anything, "prompt", "key").Return(Success("OK")).Once()

			res := d.Dispatch(context.Background(), tt.selector, "prompt", "key")

			assert.True(t, res.OK())
			assert.Equal(t, "OK", res.Text)
			for p, m := range mocks {
				if p == tt.want {
					m.AssertExpectations(t)
					continue
				}
				m.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestDispatchInvalidSelection(t *testing.T) {
	d, mocks := newTestDispatcher()

	res := d.Dispatch(context.Background(), "Claude (Anthropic)", "prompt", "key")

	assert.False(t, res.OK())
	assert.Equal(t, KindInvalidSelection, res.Failure.Kind)
	assert.Contains(t, res.String(), "invalid model selected")
	assertNoCalls(t, mocks)
}

func TestDispatchUnconfiguredProvider(t *testing.T) {
	d := NewDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	res := d.Dispatch(context.Background(), "openai", "prompt", "key")

	assert.Equal(t, KindInvalidSelection, res.Failure.Kind)
}

func TestDispatchEmptyCredential(t *testing.T) {
	d, mocks := newTestDispatcher()

	res := d.Dispatch(context.Background(), "gemini", "prompt", "")

	assert.False(t, res.OK())
	assert.Equal(t, KindPrecondition, res.Failure.Kind)
	assertNoCalls(t, mocks)
}

func TestDispatchRecoversAdapterPanic(t *testing.T) {
	d, mocks := newTestDispatcher()
	mocks[ProviderOpenAI].On("Generate", mock.Anything, mock.Anything, mock.Anything).Panic("boom").Once()

	res := d.Dispatch(context.Background(), "openai", "prompt", "key")

	assert.False(t, res.OK())
	assert.Equal(t, KindProtocol, res.Failure.Kind)
	assert.Contains(t, res.Failure.Message, "boom")
}

func TestDispatchPassesFailureThrough(t *testing.T) {
	d, mocks := newTestDispatcher()
	failed := Result{Failure: &Failure{Kind: KindUpstream, Message: "gemini: HTTP 500", Status: 500, Raw: `{"error":"x"}`}}
	mocks[ProviderGemini].On("Generate", mock.Anything, "p", "k").Return(failed).Once()

	res := d.Dispatch(context.Background(), "gemini", "p", "k")

	assert.Equal(t, failed, res)
	mocks[ProviderGemini].AssertExpectations(t)
}
