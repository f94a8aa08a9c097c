package provider

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Default circuit breaker settings.
const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// BreakerProvider wraps a Provider with circuit breaker protection. When the
// backend fails repeatedly, the circuit opens and subsequent calls fail fast
// without reaching it, preventing retry storms against a rate-limited API.
type BreakerProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker[[]string]
	logger  *log.Logger
}

// WithBreaker wraps inner with a circuit breaker.
func WithBreaker(inner Provider, logger *log.Logger) *BreakerProvider {
	cb := gobreaker.NewCircuitBreaker[[]string](gobreaker.Settings{
		Name:        "llm:" + inner.Name(),
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    defaultCBInterval,
		Timeout:     defaultCBTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= defaultCBMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Printf("circuit breaker %s: %s -> %s", name, from.String(), to.String())
		},
	})
	return &BreakerProvider{inner: inner, breaker: cb, logger: logger}
}

func (p *BreakerProvider) Name() string { return p.inner.Name() }

// GenerateKeyPoints routes the call through the circuit breaker. An open
// circuit surfaces as ErrBackendUnavailable so extraction skips the source.
func (p *BreakerProvider) GenerateKeyPoints(ctx context.Context, text string, maxPoints int) ([]string, error) {
	points, err := p.breaker.Execute(func() ([]string, error) {
		return p.inner.GenerateKeyPoints(ctx, text, maxPoints)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("%s circuit open: %w: %v", p.inner.Name(), ErrBackendUnavailable, err)
		}
		return nil, err
	}
	return points, nil
}
