package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/zombar/easyread/internal/fallback"
	"github.com/zombar/easyread/internal/models"
)

// OpenAI translates with a chat completion model
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates the provider. baseURL may point at any compatible
// server; empty means the OpenAI API. An empty model uses GPT-4o mini.
func NewOpenAI(apiKey, baseURL, model string, httpClient *http.Client) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(DefaultTimeout)
	}
	cfg.HTTPClient = httpClient
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}
}

func (o *OpenAI) Name() string { return "openai" }

// Call translates req.Text from req.SourceLang to req.TargetLangCode
func (o *OpenAI) Call(ctx context.Context, req models.TranslationRequest) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You are a translation engine. Respond with only the translated text, " +
					"without quotes, notes or explanations.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Translate the following text from ISO 639-1 language %q to %q:\n\n%s",
					req.SourceLang, req.TargetLangCode, req.Text),
			},
		},
		Temperature: 0.3,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
			return "", &fallback.StatusError{Provider: o.Name(), StatusCode: apiErr.HTTPStatusCode}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
			return "", &fallback.StatusError{Provider: o.Name(), StatusCode: reqErr.HTTPStatusCode}
		}
		return "", fmt.Errorf("%s: %w", o.Name(), err)
	}

	if len(resp.Choices) == 0 {
		return "", fallback.Malformed(o.Name(), "no choices returned")
	}
	translated := CleanText(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", fallback.Malformed(o.Name(), "empty completion")
	}
	return translated, nil
}
