package llm

import "strings"

// Provider names one of the supported text-generation backends.
type Provider string

const (
	ProviderOpenAI      Provider = "openai"
	ProviderGemini      Provider = "gemini"
	ProviderHuggingFace Provider = "huggingface"
)

// ProviderInfo describes a provider for selection UIs.
type ProviderInfo struct {
	Name  Provider `json:"name"`
	Label string   `json:"label"`
}

var providers = []ProviderInfo{
	{Name: ProviderOpenAI, Label: "GPT-4 (OpenAI)"},
	{Name: ProviderGemini, Label: "Gemini Pro (Google AI)"},
	{Name: ProviderHuggingFace, Label: "Hugging Face"},
}

// Providers lists the closed set of providers in display order.
func Providers() []ProviderInfo {
	out := make([]ProviderInfo, len(providers))
	copy(out, providers)
	return out
}

// ParseProvider resolves a selector by canonical name or display label,
// case-insensitively.
func ParseProvider(selector string) (Provider, bool) {
	s := strings.TrimSpace(selector)
	for _, p := range providers {
		if strings.EqualFold(s, string(p.Name)) || strings.EqualFold(s, p.Label) {
			return p.Name, true
		}
	}
	return "", false
}
