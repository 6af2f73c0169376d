package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIOptions configures the chat-completion adapter.
type OpenAIOptions struct {
	Model       string
	Temperature float64
	BaseURL     string // empty uses api.openai.com
	HTTPClient  *http.Client
}

// OpenAIGenerator calls the OpenAI Chat Completions API with a single user
// message. A client is built per call because the credential is per call.
type OpenAIGenerator struct {
	model       openai.ChatModel
	temperature float64
	opts        []option.RequestOption
}

const defaultChatTemperature = 0.5

// NewOpenAIGenerator builds the adapter. SDK retries are disabled so each
// request reaches the provider at most once.
func NewOpenAIGenerator(o OpenAIOptions) *OpenAIGenerator {
	model := openai.ChatModel(o.Model)
	if model == "" {
		model = openai.ChatModelGPT4o
	}
	temperature := o.Temperature
	if temperature == 0 {
		temperature = defaultChatTemperature
	}
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.BaseURL))
	}
	if o.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(o.HTTPClient))
	}
	return &OpenAIGenerator{model: model, temperature: temperature, opts: opts}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt, credential string) Result {
	if credential == "" {
		return missingCredential(ProviderOpenAI)
	}
	cli := openai.NewClient(append(g.opts, option.WithAPIKey(credential))...)
	resp, err := cli.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       g.model,
		Messages:    buildMessages(prompt),
		Temperature: openai.Float(g.temperature),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			res := statusFailure(ProviderOpenAI, apiErr.StatusCode, apiErr.RawJSON())
			if apiErr.Message != "" {
				res.Failure.Message += ": " + apiErr.Message
			}
			return res
		}
		return transportFailure(ProviderOpenAI, err)
	}
	if len(resp.Choices) == 0 {
		res := Fail(KindProtocol, "openai: no choices returned")
		res.Failure.Raw = resp.RawJSON()
		return res
	}
	return Success(resp.Choices[0].Message.Content)
}

func buildMessages(user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}
