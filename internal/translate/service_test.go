package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zombar/easyread/internal/fallback"
	"github.com/zombar/easyread/internal/metrics"
	"github.com/zombar/easyread/internal/models"
	"github.com/zombar/easyread/internal/notify"
	"github.com/zombar/easyread/internal/remote"
)

type stubTranslator struct {
	translated string
	provider   string
	err        error
	got        []models.TranslationRequest
}

func (s *stubTranslator) Try(_ context.Context, req models.TranslationRequest) (string, string, error) {
	s.got = append(s.got, req)
	return s.translated, s.provider, s.err
}

func TestTranslateRejections(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		lang     string
		wantErr  error
		severity notify.Severity
	}{
		{"empty", "   ", "es", ErrEmptyInput, notify.SeverityWarning},
		{"too long", strings.Repeat("a", MaxTextLength+1), "es", ErrTextTooLong, notify.SeverityWarning},
		{"unknown language", "Hello there", "xx", ErrUnsupportedLanguage, notify.SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubTranslator{translated: "unused"}
			rec := &notify.Recorder{}

			result, err := NewService(stub).Translate(context.Background(), tt.text, tt.lang, Options{Notify: rec, Progress: rec})

			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, stub.got, "no provider is called for a rejected request")
			require.Len(t, rec.Notices(), 1)
			assert.Equal(t, tt.severity, rec.Notices()[0].Severity)
			assert.Empty(t, rec.Percents())
		})
	}
}

func TestTranslateAcceptsMaxLength(t *testing.T) {
	stub := &stubTranslator{translated: "ok", provider: "mymemory"}
	_, err := NewService(stub).Translate(context.Background(), strings.Repeat("é", MaxTextLength), "fr", Options{})
	assert.NoError(t, err)

	// An emoji is one character even though it is two UTF-16 units
	_, err = NewService(stub).Translate(context.Background(), strings.Repeat("😀", MaxTextLength), "fr", Options{})
	assert.NoError(t, err)
}

func TestTranslateRemote(t *testing.T) {
	stub := &stubTranslator{translated: "Hola mundo", provider: "mymemory"}
	rec := &notify.Recorder{}

	result, err := NewService(stub).Translate(context.Background(), "  Hello world  ", "ES", Options{Notify: rec, Progress: rec})

	require.NoError(t, err)
	assert.Equal(t, "Hola mundo", result.Content)
	assert.Equal(t, "Translation to Spanish", result.SourceLabel)
	assert.Equal(t, models.KindRemote, result.Kind)
	assert.Equal(t, "mymemory", result.Provider)
	assert.Equal(t, "es", result.Language.Code)
	require.Len(t, stub.got, 1)
	assert.Equal(t, models.TranslationRequest{Text: "Hello world", SourceLang: "en", TargetLangCode: "es"}, stub.got[0])
	assert.Equal(t, []notify.Notice{{Message: "Successfully translated to Spanish", Severity: notify.SeveritySuccess}}, rec.Notices())
	assert.Equal(t, []int{30, 100}, rec.Percents())
	assert.False(t, rec.Visible())
}

func TestTranslateDemoOnProviderFailure(t *testing.T) {
	stub := &stubTranslator{err: fallback.ErrExhausted}
	rec := &notify.Recorder{}

	result, err := NewService(stub).Translate(context.Background(), "Hello world", "de", Options{Notify: rec})

	require.NoError(t, err)
	assert.Equal(t, DemoTranslation("Hello world", Language{Code: "de", Name: "German"}), result.Content)
	assert.True(t, strings.HasPrefix(result.Content, "[DEUTSCH] Hello world"))
	assert.Equal(t, "Translation to German (Demo)", result.SourceLabel)
	assert.Equal(t, models.KindFallback, result.Kind)
	assert.Empty(t, result.Provider)
	assert.Equal(t, []notify.Notice{{Message: DemoNotice, Severity: notify.SeverityInfo}}, rec.Notices())
}

func TestTranslateWithoutTranslator(t *testing.T) {
	result, err := NewService(nil).Translate(context.Background(), "Hello world", "ja", Options{})

	require.NoError(t, err)
	assert.Equal(t, models.KindFallback, result.Kind)
	assert.Equal(t, "[JAPANESE] Hello world\n\n*"+genericDemoNote+"*", result.Content)
}

// Both real providers answer with server errors: the caller still gets the
// demo template and no error.
func TestTranslateBothProvidersFail(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	orch := fallback.New("translate", []fallback.Provider[models.TranslationRequest, string]{
		remote.NewMyMemory(srv.URL+"/get", srv.Client()),
		remote.NewLibreTranslate(srv.URL+"/translate", "", srv.Client()),
	})
	m := metrics.New("test", prometheus.NewRegistry())

	result, err := NewService(orch, WithMetrics(m)).Translate(context.Background(), "Hello world", "sw", Options{})

	require.NoError(t, err)
	assert.Equal(t, "[KISWAHILI] Hello world\n\n*Huu ni tafsiri ya onyesho. Katika utekelezaji halisi, huduma ya kitaalamu ya tafsiri ingetumika.*", result.Content)
	assert.Equal(t, int32(2), calls.Load(), "each provider is tried exactly once")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Translations.WithLabelValues("sw", "fallback")))
}

func TestTranslateSecondProviderWins(t *testing.T) {
	failing := fallback.ProviderFunc[models.TranslationRequest, string]{
		ProviderName: "first",
		Fn: func(context.Context, models.TranslationRequest) (string, error) {
			return "", errors.New("connection refused")
		},
	}
	working := fallback.ProviderFunc[models.TranslationRequest, string]{
		ProviderName: "second",
		Fn: func(_ context.Context, req models.TranslationRequest) (string, error) {
			return "Bonjour " + req.TargetLangCode, nil
		},
	}
	orch := fallback.New("translate", []fallback.Provider[models.TranslationRequest, string]{failing, working})

	result, err := NewService(orch).Translate(context.Background(), "Hello", "fr", Options{})

	require.NoError(t, err)
	assert.Equal(t, "Bonjour fr", result.Content)
	assert.Equal(t, "second", result.Provider)
	assert.Equal(t, models.KindRemote, result.Kind)
}

func TestLanguages(t *testing.T) {
	langs := Languages()
	require.Len(t, langs, 12)
	assert.Equal(t, "es", langs[0].Code)
	assert.Equal(t, "sw", langs[len(langs)-1].Code)

	langs[0].Name = "changed"
	assert.Equal(t, "Spanish", Languages()[0].Name)

	l, err := LookupLanguage(" PT ")
	require.NoError(t, err)
	assert.Equal(t, "🇵🇹 Portuguese", l.Display())

	assert.Equal(t, "Korean", LanguageName("ko"))
	assert.Equal(t, "xx", LanguageName("xx"))
	assert.Equal(t, "🌐", LanguageFlag("xx"))
}

func TestDemoTranslationPerLanguage(t *testing.T) {
	for _, l := range Languages() {
		demo := DemoTranslation("Text", l)
		assert.Contains(t, demo, "] Text\n\n*", l.Code)
		assert.Equal(t, demo, DemoTranslation("Text", l), "deterministic for %s", l.Code)
	}
	es, _ := LookupLanguage("es")
	assert.True(t, strings.HasPrefix(DemoTranslation("Hi", es), "[ESPAÑOL] Hi"))
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"The cat is in the house and wants to sleep", "en"},
		{"¿Qué es el problema que tiene la casa?", "es"},
		{"Le chat est dans la maison et il dort à midi", "fr"},
		{"", "en"},
		{"qqq", "en"},
		// substring matching: the "y" in "xyz" counts as Spanish
		{"xyz", "es"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLanguage(tt.text), tt.text)
	}
}
