// Package app assembles the simplification and translation services from
// configuration. The server and the command line tool share it.
package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/zombar/easyread/internal/fallback"
	"github.com/zombar/easyread/internal/metrics"
	"github.com/zombar/easyread/internal/models"
	"github.com/zombar/easyread/internal/ollama"
	"github.com/zombar/easyread/internal/remote"
	"github.com/zombar/easyread/internal/simplify"
	"github.com/zombar/easyread/internal/translate"
)

// Summarizer backends
const (
	SummarizerHuggingFace = "huggingface"
	SummarizerOllama      = "ollama"
	SummarizerNone        = "none"
)

// Config selects and configures the remote providers
type Config struct {
	Offline    bool   // no remote calls at all; local output only
	Summarizer string // huggingface, ollama or none

	HuggingFaceURL   string
	HuggingFaceToken string

	OllamaURL     string
	OllamaModel   string
	OllamaTimeout time.Duration // zero keeps the client default

	MyMemoryURL          string
	LibreTranslateURL    string
	LibreTranslateAPIKey string

	OpenAIAPIKey  string // enables the OpenAI translator when set
	OpenAIBaseURL string
	OpenAIModel   string

	ProviderTimeout time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
	DisableBreakers bool
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	breaker := fallback.DefaultBreakerConfig()
	return Config{
		Summarizer:      SummarizerHuggingFace,
		OllamaModel:     ollama.DefaultModel,
		ProviderTimeout: remote.DefaultTimeout,
		BreakerFailures: breaker.ConsecutiveFailures,
		BreakerCooldown: breaker.Cooldown,
	}
}

// App holds the assembled services
type App struct {
	Engine     *simplify.Engine
	Translator *translate.Service

	// Provider names in the order they are tried
	SummaryProviders     []string
	TranslationProviders []string
}

// New builds the services. m may be nil.
func New(cfg Config, logger *slog.Logger, m *metrics.Metrics) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = remote.DefaultTimeout
	}
	httpClient := remote.NewHTTPClient(cfg.ProviderTimeout)
	breaker := fallback.BreakerConfig{
		ConsecutiveFailures: cfg.BreakerFailures,
		Cooldown:            cfg.BreakerCooldown,
	}

	engineOpts := []simplify.EngineOption{simplify.WithLogger(logger), simplify.WithMetrics(m)}
	translateOpts := []translate.ServiceOption{translate.WithLogger(logger), translate.WithMetrics(m)}
	if cfg.Offline {
		return &App{
			Engine:     simplify.NewEngine(engineOpts...),
			Translator: translate.NewService(nil, translateOpts...),
		}, nil
	}

	summaryProviders, err := buildSummaryProviders(cfg, httpClient)
	if err != nil {
		return nil, err
	}
	translationProviders := []fallback.Provider[models.TranslationRequest, string]{
		remote.NewMyMemory(cfg.MyMemoryURL, httpClient),
		remote.NewLibreTranslate(cfg.LibreTranslateURL, cfg.LibreTranslateAPIKey, httpClient),
	}
	if cfg.OpenAIAPIKey != "" {
		translationProviders = append(translationProviders,
			remote.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, httpClient))
	}

	if !cfg.DisableBreakers {
		for i, p := range summaryProviders {
			summaryProviders[i] = fallback.WithBreaker(p, breaker)
		}
		for i, p := range translationProviders {
			translationProviders[i] = fallback.WithBreaker(p, breaker)
		}
	}

	opts := []fallback.Option{fallback.WithLogger(logger), fallback.WithMetrics(m)}
	translations := fallback.New("translate", translationProviders, opts...)

	a := &App{TranslationProviders: translations.Providers()}
	if len(summaryProviders) > 0 {
		summaries := fallback.New("simplify", summaryProviders, opts...)
		engineOpts = append(engineOpts, simplify.WithSummarizer(summaries))
		a.SummaryProviders = summaries.Providers()
	}

	a.Engine = simplify.NewEngine(engineOpts...)
	a.Translator = translate.NewService(translations, translateOpts...)
	return a, nil
}

func buildSummaryProviders(cfg Config, httpClient *http.Client) ([]fallback.Provider[models.SummaryRequest, string], error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Summarizer)) {
	case SummarizerHuggingFace, "":
		return []fallback.Provider[models.SummaryRequest, string]{
			remote.NewHuggingFace(cfg.HuggingFaceURL, cfg.HuggingFaceToken, httpClient),
		}, nil
	case SummarizerOllama:
		client, err := ollama.New(cfg.OllamaURL, cfg.OllamaModel)
		if err != nil {
			return nil, err
		}
		return []fallback.Provider[models.SummaryRequest, string]{
			ollama.NewSummarizer(client.WithTimeout(cfg.OllamaTimeout)),
		}, nil
	case SummarizerNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown summarizer %q (want %s, %s or %s)",
			cfg.Summarizer, SummarizerHuggingFace, SummarizerOllama, SummarizerNone)
	}
}
