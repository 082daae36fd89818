package simplify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zombar/easyread/internal/analyzer"
	"github.com/zombar/easyread/internal/metrics"
	"github.com/zombar/easyread/internal/models"
	"github.com/zombar/easyread/internal/notify"
	"github.com/zombar/easyread/internal/tracing"
)

var (
	// ErrEmptyInput is returned for blank text
	ErrEmptyInput = errors.New("please enter some text to simplify")

	// ErrTrivialInput is returned for text too short to be worth simplifying.
	// Callers should skip processing rather than treat it as a failure.
	ErrTrivialInput = errors.New("text is already very short")

	// ErrUnknownProfile is returned for a profile name not in the table
	ErrUnknownProfile = errors.New("unknown simplification profile")
)

const (
	// MinInputLength is the shortest trimmed text, in characters, that is simplified
	MinInputLength = 10

	// UnableToSimplify is returned when nothing could be produced
	UnableToSimplify = "Unable to simplify this text."

	// SourceRuleBased labels output of the local extractive path
	SourceRuleBased = "rule-based"
)

// Summarizer produces remote summaries. It is satisfied by
// *fallback.Orchestrator[models.SummaryRequest, string].
type Summarizer interface {
	Try(ctx context.Context, req models.SummaryRequest) (string, string, error)
}

// Picker chooses an index in [0, n)
type Picker interface {
	IntN(n int) int
}

type globalPicker struct{}

func (globalPicker) IntN(n int) int { return rand.IntN(n) }

// Options are per-call switches and sinks
type Options struct {
	AddExamples  bool
	ShowOriginal bool
	Notify       notify.Sink
	Progress     notify.Progress
}

// Result is the outcome of a simplification
type Result struct {
	Output      string                  `json:"output"`     // what the user sees
	Simplified  string                  `json:"simplified"` // simplified text without example or framing
	Source      string                  `json:"source"`     // provider name or "rule-based"
	Kind        models.Kind             `json:"kind"`
	Label       string                  `json:"label"`
	Profile     string                  `json:"profile"`
	Before      models.ReadabilityStats `json:"before_stats"`
	After       models.ReadabilityStats `json:"after_stats"`
	Improvement int                     `json:"improvement"` // percent, see analyzer.Improvement
}

// AsResult converts r into the display model shared with translation
func (r *Result) AsResult() models.Result {
	return models.Result{Content: r.Output, SourceLabel: r.Label, Kind: r.Kind}
}

// Engine simplifies text. It holds no per-call state and is safe for
// concurrent use as long as its Picker is.
type Engine struct {
	summarizer Summarizer
	picker     Picker
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithSummarizer enables the remote summary attempt
func WithSummarizer(s Summarizer) EngineOption {
	return func(e *Engine) { e.summarizer = s }
}

// WithPicker sets the random source used to pick examples
func WithPicker(p Picker) EngineOption {
	return func(e *Engine) { e.picker = p }
}

// WithLogger sets the engine logger
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics records simplifications in m
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates an Engine. Without a summarizer only the local path runs.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		picker: globalPicker{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Simplify shortens text according to the named profile. It first asks the
// remote summarizer, if any, and falls back to extractive simplification
// when that fails. Remote failures are never returned as errors.
func (e *Engine) Simplify(ctx context.Context, text, profileName string, opts Options) (*Result, error) {
	sink := notify.SinkOrNop(opts.Notify)

	text = strings.TrimSpace(text)
	if text == "" {
		e.metrics.ObserveRejection("simplify", "empty")
		sink.Report("Please enter some text to simplify", notify.SeverityWarning)
		return nil, ErrEmptyInput
	}
	if utf8.RuneCountInString(text) < MinInputLength {
		e.metrics.ObserveRejection("simplify", "trivial")
		sink.Report("Text is already very short", notify.SeverityInfo)
		return nil, ErrTrivialInput
	}
	profile, err := LookupProfile(profileName)
	if err != nil {
		e.metrics.ObserveRejection("simplify", "unknown_profile")
		sink.Report("Invalid simplification level selected", notify.SeverityError)
		return nil, err
	}

	ctx, span := tracing.Tracer().Start(ctx, "simplify.run", trace.WithAttributes(
		attribute.String("simplify.profile", profile.Name),
		attribute.Int("text.length", len(text)),
	))
	defer span.End()

	progress := notify.ProgressOrNop(opts.Progress)
	progress.SetVisible(true)
	defer progress.SetVisible(false)
	progress.SetPercent(30)

	result := &Result{
		Label:   "Simplified Text - " + profile.Label,
		Profile: profile.Name,
	}

	if simplified, source, ok := e.tryRemote(ctx, text, profile); ok {
		result.Simplified, result.Source, result.Kind = simplified, source, models.KindRemote
		progress.SetPercent(80)
	} else {
		result.Simplified, result.Source, result.Kind = RuleBased(text, profile), SourceRuleBased, models.KindFallback
		progress.SetPercent(70)
	}

	result.Output = result.Simplified
	if opts.AddExamples {
		result.Output = e.addExample(result.Output)
	}
	if opts.ShowOriginal {
		result.Output = FormatWithOriginal(text, result.Output)
	}

	result.Before = analyzer.Analyze(text)
	result.After = analyzer.Analyze(result.Simplified)
	result.Improvement = analyzer.Improvement(result.Before, result.After)
	progress.SetPercent(100)

	span.SetAttributes(
		attribute.String("simplify.kind", string(result.Kind)),
		attribute.String("simplify.source", result.Source),
		attribute.Float64("readability.before", result.Before.ReadabilityScore),
		attribute.Float64("readability.after", result.After.ReadabilityScore),
	)
	e.metrics.ObserveSimplification(profile.Name, string(result.Kind), result.Before.ReadabilityScore, result.After.ReadabilityScore)
	e.logger.Info("text simplified",
		"profile", profile.Name,
		"source", result.Source,
		"kind", result.Kind,
		"words_before", result.Before.WordCount,
		"words_after", result.After.WordCount,
		"improvement_percent", result.Improvement,
	)

	sink.Report("Text simplified successfully!", notify.SeveritySuccess)
	return result, nil
}

// tryRemote makes the single remote attempt. ok is false on any failure.
func (e *Engine) tryRemote(ctx context.Context, text string, profile Profile) (string, string, bool) {
	if e.summarizer == nil {
		return "", "", false
	}

	summary, source, err := e.summarizer.Try(ctx, models.SummaryRequest{
		Text:              text,
		TargetLengthRange: profile.SummaryLength,
	})
	if err != nil {
		e.logger.Info("remote simplification failed, using rule-based", "error", err)
		return "", "", false
	}

	processed := PostProcessRemote(summary)
	if processed == "" {
		e.logger.Info("remote simplification was empty, using rule-based", "provider", source)
		return "", "", false
	}
	return processed, source, true
}

// PostProcessRemote tidies a remote summary: it trims it, capitalises the
// first letter and makes sure it ends with terminal punctuation.
func PostProcessRemote(summary string) string {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(summary)
	summary = string(unicode.ToUpper(first)) + summary[size:]
	if !analyzer.EndsWithTerminal(summary) {
		summary += "."
	}
	return summary
}

// RuleBased is the local extractive simplification. It keeps the highest
// scoring sentences that fit the profile's word cap, in score order with
// document order breaking ties. Sentences that already end in "?" or "!"
// are joined with a space rather than ". ", and no "." is appended after
// them, so the output never contains "?." sequences.
func RuleBased(text string, profile Profile) string {
	scored := analyzer.ScoreSentences(text)

	eligible := slices.DeleteFunc(slices.Clone(scored), func(s models.ScoredSentence) bool {
		return s.WordCount > profile.MaxWordsPerSentence
	})
	slices.SortStableFunc(eligible, func(a, b models.ScoredSentence) int {
		return b.Score - a.Score
	})

	selected := make([]string, 0, profile.MaxSentences)
	for _, s := range eligible[:min(len(eligible), profile.MaxSentences)] {
		selected = append(selected, s.Text)
	}

	// Every sentence was over the cap: keep the opening ones unfiltered
	if len(selected) == 0 {
		for _, s := range scored[:min(len(scored), profile.MaxSentences)] {
			selected = append(selected, s.Text)
		}
	}

	if out := joinSentences(selected); out != "" {
		return out
	}
	return UnableToSimplify
}

// joinSentences reassembles sentences. A ". " separator is only inserted
// after a sentence that has no terminal punctuation of its own, and the
// result always ends with terminal punctuation.
func joinSentences(sentences []string) string {
	var b strings.Builder
	for i, s := range sentences {
		if i > 0 {
			if analyzer.EndsWithTerminal(sentences[i-1]) {
				b.WriteString(" ")
			} else {
				b.WriteString(". ")
			}
		}
		b.WriteString(s)
	}

	out := b.String()
	if out != "" && !analyzer.EndsWithTerminal(out) {
		out += "."
	}
	return out
}

// FormatWithOriginal renders the original and simplified text side by side
// together with how much shorter the simplified version is.
func FormatWithOriginal(original, simplified string) string {
	return fmt.Sprintf("📖 ORIGINAL TEXT:\n%s\n\n🎯 SIMPLIFIED VERSION:\n%s\n\n---\n*The simplified version is %d%% shorter and easier to understand.*",
		original, simplified, ShrinkagePercent(original, simplified))
}

// ShrinkagePercent is how many percent shorter simplified is than original,
// measured in characters
func ShrinkagePercent(original, simplified string) int {
	originalLen := utf8.RuneCountInString(original)
	if originalLen == 0 {
		return 0
	}
	ratio := float64(utf8.RuneCountInString(simplified)) / float64(originalLen)
	return analyzer.RoundHalfUp((1 - ratio) * 100)
}
