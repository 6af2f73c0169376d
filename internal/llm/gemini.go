package llm

import (
	"context"
	"net/http"

	"google.golang.org/genai"
)

// GeminiOptions configures the generative-content adapter.
type GeminiOptions struct {
	Model      string
	BaseURL    string // empty uses generativelanguage.googleapis.com
	HTTPClient *http.Client
}

// GeminiGenerator calls models/{model}:generateContent on the Gemini API.
// The SDK sends the credential in the x-goog-api-key header.
type GeminiGenerator struct {
	model   string
	baseURL string
	hc      *http.Client
}

const defaultGeminiModel = "gemini-pro"

func NewGeminiGenerator(o GeminiOptions) *GeminiGenerator {
	model := o.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiGenerator{model: model, baseURL: o.BaseURL, hc: o.HTTPClient}
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt, credential string) Result {
	if credential == "" {
		return missingCredential(ProviderGemini)
	}
	hc, rec := newRecordingClient(g.hc)
	cfg := &genai.ClientConfig{
		APIKey:     credential,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
	}
	if g.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return Fail(KindPrecondition, "gemini: client setup: %v", err)
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		if rec.status != 0 && (rec.status < 200 || rec.status > 299) {
			return statusFailure(ProviderGemini, rec.status, string(rec.body))
		}
		if rec.status != 0 {
			return protocolFailure(ProviderGemini, err.Error(), rec.body)
		}
		return transportFailure(ProviderGemini, err)
	}
	if text, ok := firstCandidateText(resp); ok {
		return Success(text)
	}
	return protocolFailure(ProviderGemini, "response has no candidates[0].content.parts[0].text", rec.body)
}

func firstCandidateText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil || len(c.Content.Parts) == 0 || c.Content.Parts[0] == nil {
		return "", false
	}
	return c.Content.Parts[0].Text, true
}

func protocolFailure(provider Provider, reason string, raw []byte) Result {
	res := Fail(KindProtocol, "%s: unexpected response: %s", provider, reason)
	res.Failure.Raw = string(raw)
	return res
}
