// Package fallback implements the ordered-provider calling convention used
// by simplification and translation: providers are tried one at a time in
// the order given, each exactly once, and the first success wins. When all
// of them fail the caller substitutes local output.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zombar/easyread/internal/metrics"
	"github.com/zombar/easyread/internal/tracing"
)

// Provider is a remote service able to answer a request
type Provider[Req, Resp any] interface {
	Name() string
	Call(ctx context.Context, req Req) (Resp, error)
}

// ProviderFunc adapts a function to the Provider interface
type ProviderFunc[Req, Resp any] struct {
	ProviderName string
	Fn           func(ctx context.Context, req Req) (Resp, error)
}

func (p ProviderFunc[Req, Resp]) Name() string { return p.ProviderName }

func (p ProviderFunc[Req, Resp]) Call(ctx context.Context, req Req) (Resp, error) {
	return p.Fn(ctx, req)
}

// Orchestrator tries its providers strictly in order
type Orchestrator[Req, Resp any] struct {
	name      string
	providers []Provider[Req, Resp]
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures an Orchestrator
type Option func(*config)

type config struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// WithLogger sets the logger used for attempt logs
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMetrics records attempts and fallbacks in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// New creates an orchestrator named name over providers
func New[Req, Resp any](name string, providers []Provider[Req, Resp], opts ...Option) *Orchestrator[Req, Resp] {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Orchestrator[Req, Resp]{
		name:      name,
		providers: providers,
		logger:    cfg.logger,
		metrics:   cfg.metrics,
	}
}

// Name returns the orchestrator name
func (o *Orchestrator[Req, Resp]) Name() string {
	return o.name
}

// Providers returns the provider names in call order
func (o *Orchestrator[Req, Resp]) Providers() []string {
	names := make([]string, len(o.providers))
	for i, p := range o.providers {
		names[i] = p.Name()
	}
	return names
}

// Try calls each provider once, in order, and returns the first success
// together with the name of the provider that produced it. When every
// provider fails the returned error wraps ErrExhausted and each failure.
func (o *Orchestrator[Req, Resp]) Try(ctx context.Context, req Req) (Resp, string, error) {
	var zero Resp
	if len(o.providers) == 0 {
		return zero, "", fmt.Errorf("%s: %w", o.name, ErrNoProviders)
	}

	ctx, span := tracing.Tracer().Start(ctx, "fallback."+o.name,
		trace.WithAttributes(attribute.Int("fallback.providers", len(o.providers))),
	)
	defer span.End()

	failures := make([]error, 0, len(o.providers))
	for i, p := range o.providers {
		// A caller that went away ends the chain; it is not a provider failure.
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return zero, "", err
		}

		start := time.Now()
		resp, err := p.Call(ctx, req)
		elapsed := time.Since(start)
		o.metrics.ObserveAttempt(o.name, p.Name(), err, elapsed)

		if err == nil {
			span.AddEvent("provider_succeeded", trace.WithAttributes(
				attribute.String("provider", p.Name()),
				attribute.Int("attempt", i+1),
			))
			span.SetAttributes(attribute.String("fallback.provider", p.Name()))
			o.logger.Debug("provider succeeded",
				"orchestrator", o.name,
				"provider", p.Name(),
				"duration_ms", elapsed.Milliseconds(),
			)
			return resp, p.Name(), nil
		}

		span.AddEvent("provider_failed", trace.WithAttributes(
			attribute.String("provider", p.Name()),
			attribute.Int("attempt", i+1),
			attribute.String("error", err.Error()),
		))
		o.logger.Info("provider failed, trying next",
			"orchestrator", o.name,
			"provider", p.Name(),
			"error", err,
			"remaining", len(o.providers)-i-1,
		)
		failures = append(failures, fmt.Errorf("%s: %w", p.Name(), err))
	}

	o.metrics.ObserveFallback(o.name)
	span.SetAttributes(attribute.Bool("fallback.exhausted", true))
	return zero, "", fmt.Errorf("%s: %w: %w", o.name, ErrExhausted, errors.Join(failures...))
}
