package remote

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/zombar/easyread/internal/fallback"
	"github.com/zombar/easyread/internal/models"
)

// DefaultHuggingFaceURL is the hosted BART summarisation model
const DefaultHuggingFaceURL = "https://api-inference.huggingface.co/models/facebook/bart-large-cnn"

// HuggingFace summarises text with the Hugging Face inference API
type HuggingFace struct {
	url    string
	token  string
	client *http.Client
}

// NewHuggingFace creates the provider. An empty url uses the hosted model,
// an empty token sends anonymous requests.
func NewHuggingFace(url, token string, client *http.Client) *HuggingFace {
	if url == "" {
		url = DefaultHuggingFaceURL
	}
	if client == nil {
		client = NewHTTPClient(DefaultTimeout)
	}
	return &HuggingFace{url: url, token: token, client: client}
}

type hfParameters struct {
	MaxLength int  `json:"max_length"`
	MinLength int  `json:"min_length"`
	DoSample  bool `json:"do_sample"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfSummary struct {
	SummaryText string `json:"summary_text"`
}

func (h *HuggingFace) Name() string { return "huggingface" }

// Call requests a summary within the target length range
func (h *HuggingFace) Call(ctx context.Context, req models.SummaryRequest) (string, error) {
	payload := hfRequest{
		Inputs: req.Text,
		Parameters: hfParameters{
			MaxLength: req.TargetLengthRange.Max,
			MinLength: req.TargetLengthRange.Min,
			DoSample:  false,
		},
	}

	headers := map[string]string{}
	if h.token != "" {
		headers["Authorization"] = "Bearer " + h.token
	}

	// The API answers with a list on success and an {"error": ...} object
	// otherwise, so decode lazily.
	var raw json.RawMessage
	if err := postJSON(ctx, h.client, h.Name(), h.url, headers, payload, &raw); err != nil {
		return "", err
	}

	var apiErr struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
		return "", fallback.Malformed(h.Name(), "api error: "+apiErr.Error)
	}

	var summaries []hfSummary
	if err := json.Unmarshal(raw, &summaries); err != nil {
		return "", fallback.Malformed(h.Name(), "expected a list of summaries")
	}
	if len(summaries) == 0 {
		return "", fallback.Malformed(h.Name(), "no summary generated")
	}

	summary := CleanText(summaries[0].SummaryText)
	if summary == "" {
		return "", fallback.Malformed(h.Name(), "empty summary_text")
	}
	return summary, nil
}
