package fallback

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig controls when a provider is skipped after repeated failures
type BreakerConfig struct {
	ConsecutiveFailures uint32        // failures in a row that open the breaker
	Cooldown            time.Duration // how long the breaker stays open
}

// DefaultBreakerConfig returns the breaker settings used by the service
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		ConsecutiveFailures: 5,
		Cooldown:            30 * time.Second,
	}
}

type breakerProvider[Req, Resp any] struct {
	inner Provider[Req, Resp]
	cb    *gobreaker.CircuitBreaker
}

// WithBreaker wraps p in a circuit breaker. While the breaker is open the
// provider fails immediately, which the orchestrator treats like any other
// failure and moves on to the next provider. The wrapped call is never
// repeated. A cancelled caller context does not count against the provider.
func WithBreaker[Req, Resp any](p Provider[Req, Resp], cfg BreakerConfig) Provider[Req, Resp] {
	if cfg.ConsecutiveFailures == 0 {
		cfg = DefaultBreakerConfig()
	}

	settings := gobreaker.Settings{
		Name:        p.Name(),
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("provider circuit breaker state changed",
				"provider", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &breakerProvider[Req, Resp]{
		inner: p,
		cb:    gobreaker.NewCircuitBreaker(settings),
	}
}

func (b *breakerProvider[Req, Resp]) Name() string {
	return b.inner.Name()
}

func (b *breakerProvider[Req, Resp]) Call(ctx context.Context, req Req) (Resp, error) {
	var zero Resp
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Call(ctx, req)
	})
	if err != nil {
		return zero, err
	}
	resp, _ := out.(Resp)
	return resp, nil
}

// State reports the breaker state of a provider created by WithBreaker.
// Other providers are always reported closed.
func State[Req, Resp any](p Provider[Req, Resp]) gobreaker.State {
	if b, ok := p.(*breakerProvider[Req, Resp]); ok {
		return b.cb.State()
	}
	return gobreaker.StateClosed
}
