package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/zombar/easyread/internal/fallback"
	"github.com/zombar/easyread/internal/models"
)

// DefaultMyMemoryURL is the public MyMemory endpoint
const DefaultMyMemoryURL = "https://api.mymemory.translated.net/get"

// MyMemory translates with the MyMemory API
type MyMemory struct {
	url    string
	client *http.Client
}

// NewMyMemory creates the provider; an empty url uses the public endpoint
func NewMyMemory(endpoint string, client *http.Client) *MyMemory {
	if endpoint == "" {
		endpoint = DefaultMyMemoryURL
	}
	if client == nil {
		client = NewHTTPClient(DefaultTimeout)
	}
	return &MyMemory{url: endpoint, client: client}
}

type myMemoryResponse struct {
	// Sent as a number on success and sometimes as a string on errors
	ResponseStatus json.RawMessage `json:"responseStatus"`
	ResponseData   struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
}

func (m *MyMemory) Name() string { return "mymemory" }

// Call translates req.Text from req.SourceLang to req.TargetLangCode
func (m *MyMemory) Call(ctx context.Context, req models.TranslationRequest) (string, error) {
	query := url.Values{}
	query.Set("q", req.Text)
	query.Set("langpair", req.SourceLang+"|"+req.TargetLangCode)

	var resp myMemoryResponse
	if err := getJSON(ctx, m.client, m.Name(), m.url+"?"+query.Encode(), &resp); err != nil {
		return "", err
	}

	if status := strings.Trim(string(resp.ResponseStatus), `"`); status != "200" {
		return "", fallback.Malformed(m.Name(), "responseStatus "+status)
	}

	translated := CleanText(resp.ResponseData.TranslatedText)
	if translated == "" {
		return "", fallback.Malformed(m.Name(), "empty translatedText")
	}
	return translated, nil
}
