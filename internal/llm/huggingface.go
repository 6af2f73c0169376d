package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
)

// HuggingFaceOptions configures the hosted inference adapter.
type HuggingFaceOptions struct {
	URL        string // full model endpoint
	HTTPClient *http.Client
}

// HuggingFaceGenerator posts {"inputs": prompt} to a hosted inference model
// and reads [0].generated_text.
type HuggingFaceGenerator struct {
	url string
	hc  *http.Client
}

const defaultHuggingFaceURL = "https://api-inference.huggingface.co/models/mistralai/Mixtral-8x7B-Instruct-v0.1"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 8 << 20

type hfRequest struct {
	Inputs string `json:"inputs"`
}

func NewHuggingFaceGenerator(o HuggingFaceOptions) *HuggingFaceGenerator {
	u := o.URL
	if u == "" {
		u = defaultHuggingFaceURL
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HuggingFaceGenerator{url: u, hc: hc}
}

func (g *HuggingFaceGenerator) Generate(ctx context.Context, prompt, credential string) Result {
	if credential == "" {
		return missingCredential(ProviderHuggingFace)
	}
	body, err := json.Marshal(hfRequest{Inputs: prompt})
	if err != nil {
		return Fail(KindPrecondition, "huggingface: encode request: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return Fail(KindPrecondition, "huggingface: build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := g.hc.Do(req)
	if err != nil {
		return transportFailure(ProviderHuggingFace, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return transportFailure(ProviderHuggingFace, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		res := statusFailure(ProviderHuggingFace, resp.StatusCode, string(raw))
		if msg := gjson.GetBytes(raw, "error"); msg.Type == gjson.String {
			res.Failure.Message += ": " + msg.String()
		}
		return res
	}
	if !gjson.ValidBytes(raw) {
		return protocolFailure(ProviderHuggingFace, "body is not JSON", raw)
	}
	text := gjson.GetBytes(raw, "0.generated_text")
	if !text.Exists() || text.Type != gjson.String {
		return protocolFailure(ProviderHuggingFace, "response has no [0].generated_text", raw)
	}
	return Success(text.String())
}
