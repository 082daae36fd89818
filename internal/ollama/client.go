package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/zombar/easyread/internal/fallback"
	"github.com/zombar/easyread/internal/models"
	"github.com/zombar/easyread/internal/tracing"
)

const (
	DefaultModel   = "llama3.2"
	DefaultTimeout = 60 * time.Second
)

// Client wraps the Ollama API client
type Client struct {
	client  *api.Client
	model   string
	timeout time.Duration
}

// New creates a new Ollama client
func New(ollamaURL, model string) (*Client, error) {
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}
	if model == "" {
		model = DefaultModel
	}

	// Parse the base URL
	baseURL, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	httpClient := &http.Client{Transport: tracing.Transport(nil)}

	return &Client{
		client:  api.NewClient(baseURL, httpClient),
		model:   model,
		timeout: DefaultTimeout,
	}, nil
}

// WithTimeout returns a copy of the client using timeout per request
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	clone := *c
	if timeout > 0 {
		clone.timeout = timeout
	}
	return &clone
}

// GenerateResponse generates a response from the LLM
func (c *Client) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	slog.Debug("ollama request", "model", c.model, "timeout", c.timeout)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: new(bool), // false
	}

	var response strings.Builder
	err := c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		response.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			return "", &fallback.StatusError{Provider: "ollama", StatusCode: statusErr.StatusCode}
		}
		return "", fmt.Errorf("generation failed: %w", err)
	}

	result := strings.TrimSpace(response.String())
	slog.Debug("ollama response received", "model", c.model, "chars", len(result))
	return result, nil
}

// Summarize writes a plain-language summary of text whose length in words
// stays within target
func (c *Client) Summarize(ctx context.Context, text string, target models.LengthRange) (string, error) {
	prompt := fmt.Sprintf(`Rewrite the following text as a short, easy to read summary.

Requirements:
- Use between %d and %d words
- Use simple, common words and short sentences
- Keep the most important facts and questions
- Do NOT use numbering or bullet points
- Do NOT add commentary about the text itself

Text:
%s

Summary:`, target.Min, target.Max, text)

	return c.GenerateResponse(ctx, prompt)
}

// Summarizer exposes the client as a remote simplification provider
type Summarizer struct {
	client *Client
}

// NewSummarizer wraps client for use by the simplification orchestrator
func NewSummarizer(client *Client) *Summarizer {
	return &Summarizer{client: client}
}

func (s *Summarizer) Name() string { return "ollama" }

// Call implements fallback.Provider
func (s *Summarizer) Call(ctx context.Context, req models.SummaryRequest) (string, error) {
	summary, err := s.client.Summarize(ctx, req.Text, req.TargetLengthRange)
	if err != nil {
		return "", err
	}
	if summary == "" {
		return "", fallback.Malformed(s.Name(), "empty response")
	}
	return summary, nil
}
