package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zombar/easyread/internal/metrics"
	"github.com/zombar/easyread/internal/models"
	"github.com/zombar/easyread/internal/simplify"
	"github.com/zombar/easyread/internal/translate"
)

func TestNewProviderOrder(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*Config)
		summaries    []string
		translations []string
	}{
		{
			name:         "defaults",
			mutate:       func(*Config) {},
			summaries:    []string{"huggingface"},
			translations: []string{"mymemory", "libretranslate"},
		},
		{
			name:         "ollama and openai",
			mutate:       func(c *Config) { c.Summarizer = "ollama"; c.OpenAIAPIKey = "key" },
			summaries:    []string{"ollama"},
			translations: []string{"mymemory", "libretranslate", "openai"},
		},
		{
			name:         "no summarizer",
			mutate:       func(c *Config) { c.Summarizer = "none"; c.DisableBreakers = true },
			summaries:    nil,
			translations: []string{"mymemory", "libretranslate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			a, err := New(cfg, nil, nil)

			require.NoError(t, err)
			assert.Equal(t, tt.summaries, a.SummaryProviders)
			assert.Equal(t, tt.translations, a.TranslationProviders)
		})
	}
}

func TestNewRejectsUnknownSummarizer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Summarizer = "gpt"
	_, err := New(cfg, nil, nil)
	assert.ErrorContains(t, err, `unknown summarizer "gpt"`)
}

// Every remote service is down: both features still answer with local output.
func TestNewFallsBackWhenProvidersFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.HuggingFaceURL = srv.URL
	cfg.MyMemoryURL = srv.URL
	cfg.LibreTranslateURL = srv.URL
	m := metrics.New("app_test", prometheus.NewRegistry())

	a, err := New(cfg, nil, m)
	require.NoError(t, err)

	simplified, err := a.Engine.Simplify(context.Background(),
		"The quick fact. Is this clear? Students learn at school.", "heavy", simplify.Options{})
	require.NoError(t, err)
	assert.Equal(t, models.KindFallback, simplified.Kind)
	assert.Equal(t, simplify.SourceRuleBased, simplified.Source)

	translated, err := a.Translator.Translate(context.Background(), "Hello", "it", translate.Options{})
	require.NoError(t, err)
	assert.Equal(t, models.KindFallback, translated.Kind)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fallbacks.WithLabelValues("simplify")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fallbacks.WithLabelValues("translate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderAttempts.WithLabelValues("translate", "libretranslate", metrics.OutcomeFailure)))
}

func TestNewOffline(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Offline = true
	cfg.Summarizer = "not checked offline"

	a, err := New(cfg, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, a.SummaryProviders)
	assert.Empty(t, a.TranslationProviders)

	translated, err := a.Translator.Translate(context.Background(), "Hello", "es", translate.Options{})
	require.NoError(t, err)
	assert.Equal(t, models.KindFallback, translated.Kind)
}
