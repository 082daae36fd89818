package remote

import (
	"context"
	"net/http"

	"github.com/zombar/easyread/internal/fallback"
	"github.com/zombar/easyread/internal/models"
)

// DefaultLibreTranslateURL is the public LibreTranslate mirror
const DefaultLibreTranslateURL = "https://libretranslate.de/translate"

// LibreTranslate translates with a LibreTranslate server
type LibreTranslate struct {
	url    string
	apiKey string
	client *http.Client
}

// NewLibreTranslate creates the provider; apiKey is optional
func NewLibreTranslate(endpoint, apiKey string, client *http.Client) *LibreTranslate {
	if endpoint == "" {
		endpoint = DefaultLibreTranslateURL
	}
	if client == nil {
		client = NewHTTPClient(DefaultTimeout)
	}
	return &LibreTranslate{url: endpoint, apiKey: apiKey, client: client}
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

func (l *LibreTranslate) Name() string { return "libretranslate" }

// Call translates req.Text from req.SourceLang to req.TargetLangCode
func (l *LibreTranslate) Call(ctx context.Context, req models.TranslationRequest) (string, error) {
	payload := libreRequest{
		Q:      req.Text,
		Source: req.SourceLang,
		Target: req.TargetLangCode,
		Format: "text",
		APIKey: l.apiKey,
	}

	var resp libreResponse
	if err := postJSON(ctx, l.client, l.Name(), l.url, nil, payload, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fallback.Malformed(l.Name(), "api error: "+resp.Error)
	}

	translated := CleanText(resp.TranslatedText)
	if translated == "" {
		return "", fallback.Malformed(l.Name(), "no translation received")
	}
	return translated, nil
}
