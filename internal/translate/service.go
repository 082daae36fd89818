// Package translate translates English text through an ordered list of
// remote providers and shows a demo translation when all of them fail.
package translate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zombar/easyread/internal/metrics"
	"github.com/zombar/easyread/internal/models"
	"github.com/zombar/easyread/internal/notify"
	"github.com/zombar/easyread/internal/tracing"
)

var (
	ErrEmptyInput          = errors.New("please enter some text to translate")
	ErrTextTooLong         = errors.New("text too long for translation, please use shorter text")
	ErrUnsupportedLanguage = errors.New("invalid language selected")
)

// MaxTextLength is the longest text, in characters, that is translated
const MaxTextLength = 2000

// DemoNotice is reported when the demo translation is shown
const DemoNotice = "Demo translation shown - API services might be busy"

// Translator produces remote translations. It is satisfied by
// *fallback.Orchestrator[models.TranslationRequest, string].
type Translator interface {
	Try(ctx context.Context, req models.TranslationRequest) (string, string, error)
}

// Options carries the per-call sinks
type Options struct {
	Notify   notify.Sink
	Progress notify.Progress
}

// Result is a finished translation
type Result struct {
	models.Result
	Provider       string   `json:"provider,omitempty"`
	Language       Language `json:"language"`
	DetectedSource string   `json:"detected_source"`
}

// Service runs translations
type Service struct {
	translator Translator
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a Service. A nil translator always yields the demo
// translation.
func NewService(translator Translator, opts ...ServiceOption) *Service {
	s := &Service{
		translator: translator,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Translate translates text from English into targetLang. Provider failures
// are absorbed: when every provider fails the demo translation is returned
// without an error.
func (s *Service) Translate(ctx context.Context, text, targetLang string, opts Options) (*Result, error) {
	sink := notify.SinkOrNop(opts.Notify)

	text = strings.TrimSpace(text)
	if text == "" {
		s.metrics.ObserveRejection("translate", "empty")
		sink.Report("Please enter some text to translate", notify.SeverityWarning)
		return nil, ErrEmptyInput
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		s.metrics.ObserveRejection("translate", "too_long")
		sink.Report("Text too long for translation. Please use shorter text.", notify.SeverityWarning)
		return nil, ErrTextTooLong
	}
	lang, err := LookupLanguage(targetLang)
	if err != nil {
		s.metrics.ObserveRejection("translate", "unsupported_language")
		sink.Report("Invalid language selected", notify.SeverityError)
		return nil, err
	}

	ctx, span := tracing.Tracer().Start(ctx, "translate.run", trace.WithAttributes(
		attribute.String("translate.target", lang.Code),
		attribute.Int("text.length", len(text)),
	))
	defer span.End()

	progress := notify.ProgressOrNop(opts.Progress)
	progress.SetVisible(true)
	defer progress.SetVisible(false)
	progress.SetPercent(30)

	result := &Result{Language: lang, DetectedSource: DetectLanguage(text)}

	if translated, provider, ok := s.tryRemote(ctx, text, lang); ok {
		result.Result = models.Result{
			Content:     translated,
			SourceLabel: "Translation to " + lang.Name,
			Kind:        models.KindRemote,
		}
		result.Provider = provider
		sink.Report("Successfully translated to "+lang.Name, notify.SeveritySuccess)
	} else {
		result.Result = models.Result{
			Content:     DemoTranslation(text, lang),
			SourceLabel: "Translation to " + lang.Name + " (Demo)",
			Kind:        models.KindFallback,
		}
		sink.Report(DemoNotice, notify.SeverityInfo)
	}
	progress.SetPercent(100)

	span.SetAttributes(
		attribute.String("translate.kind", string(result.Kind)),
		attribute.String("translate.provider", result.Provider),
	)
	s.metrics.ObserveTranslation(lang.Code, string(result.Kind))
	s.logger.Info("text translated",
		"target", lang.Code,
		"kind", result.Kind,
		"provider", result.Provider,
		"detected_source", result.DetectedSource,
	)
	return result, nil
}

func (s *Service) tryRemote(ctx context.Context, text string, lang Language) (string, string, bool) {
	if s.translator == nil {
		return "", "", false
	}
	translated, provider, err := s.translator.Try(ctx, models.TranslationRequest{
		Text:           text,
		SourceLang:     SourceLanguage,
		TargetLangCode: lang.Code,
	})
	if err != nil {
		s.logger.Info("translation providers failed, using demo translation", "target", lang.Code, "error", err)
		return "", "", false
	}
	if strings.TrimSpace(translated) == "" {
		return "", "", false
	}
	return translated, provider, true
}
