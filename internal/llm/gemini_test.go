package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type geminiCapture struct {
	path   string
	apiKey string
	body   struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
}

func newGeminiServer(t *testing.T, status int, body string, capture *geminiCapture) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			capture.path = r.URL.Path
			capture.apiKey = r.Header.Get("x-goog-api-key")
			if err := json.NewDecoder(r.Body).Decode(&capture.body); err != nil {
				t.Errorf("decode body: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestGeminiGenerateSuccess(t *testing.T) {
	var capture geminiCapture
	srv := newGeminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"OK"}]},"finishReason":"STOP"}]}`, &capture)
	defer srv.Close()

	gen := NewGeminiGenerator(GeminiOptions{BaseURL: srv.URL, HTTPClient: srv.Client()})
	res := gen.Generate(context.Background(), "Compare these 1 scripts", "AIza-test")

	require.True(t, res.OK(), res.String())
	assert.Equal(t, "OK", res.Text)
	assert.True(t, strings.HasSuffix(capture.path, "models/gemini-pro:generateContent"), capture.path)
	assert.Equal(t, "AIza-test", capture.apiKey)
	require.Len(t, capture.body.Contents, 1)
	require.Len(t, capture.body.Contents[0].Parts, 1)
	assert.Equal(t, "Compare these 1 scripts", capture.body.Contents[0].Parts[0].Text)
}

func TestGeminiGenerateMissingCandidates(t *testing.T) {
	raw := `{"usageMetadata":{"promptTokenCount":12},"modelVersion":"gemini-pro"}`
	srv := newGeminiServer(t, http.StatusOK, raw, nil)
	defer srv.Close()

	gen := NewGeminiGenerator(GeminiOptions{BaseURL: srv.URL, HTTPClient: srv.Client()})
	res := gen.Generate(context.Background(), "prompt", "AIza-test")

	require.False(t, res.OK())
	assert.Equal(t, KindProtocol, res.Failure.Kind)
	out := res.String()
	assert.Contains(t, out, "Error")
	assert.Contains(t, out, raw)
}

func TestGeminiGenerateHTTPError(t *testing.T) {
	raw := `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`
	srv := newGeminiServer(t, http.StatusBadRequest, raw, nil)
	defer srv.Close()

	gen := NewGeminiGenerator(GeminiOptions{BaseURL: srv.URL, HTTPClient: srv.Client()})
	res := gen.Generate(context.Background(), "prompt", "bad-key")

	require.False(t, res.OK())
	assert.Equal(t, KindUpstream, res.Failure.Kind)
	assert.Equal(t, http.StatusBadRequest, res.Failure.Status)
	assert.Contains(t, res.String(), "API key not valid")
}

func TestGeminiGenerateRequiresCredential(t *testing.T) {
	gen := NewGeminiGenerator(GeminiOptions{BaseURL: "http://127.0.0.1:1"})
	res := gen.Generate(context.Background(), "prompt", "")

	require.False(t, res.OK())
	assert.Equal(t, KindPrecondition, res.Failure.Kind)
}
