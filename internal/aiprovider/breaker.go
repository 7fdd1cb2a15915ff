package aiprovider

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig configures how aggressively a provider's circuit opens on
// repeated failures.
type BreakerConfig struct {
	MaxRequestsHalfOpen uint32
	OpenTimeout         time.Duration
	FailureThreshold    uint32
}

// DefaultBreakerConfig trips after five consecutive failures and allows a
// single half-open probe after thirty seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{MaxRequestsHalfOpen: 1, OpenTimeout: 30 * time.Second, FailureThreshold: 5}
}

// WrappedProvider decorates a Provider with a per-provider circuit breaker
// so a failing backend doesn't keep absorbing request latency.
type WrappedProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker
}

// NewWrappedProvider wraps p with a circuit breaker using cfg.
func NewWrappedProvider(p Provider, cfg BreakerConfig) *WrappedProvider {
	settings := gobreaker.Settings{
		Name:        "aiprovider-" + p.Name(),
		MaxRequests: cfg.MaxRequestsHalfOpen,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
	}
	return &WrappedProvider{inner: p, breaker: gobreaker.NewCircuitBreaker(settings)}
}

func (w *WrappedProvider) Name() string { return w.inner.Name() }

func (w *WrappedProvider) GenerateText(ctx context.Context, req *GenerateTextRequest) (*GenerateTextResponse, error) {
	res, err := w.breaker.Execute(func() (interface{}, error) {
		return w.inner.GenerateText(ctx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", w.inner.Name(), err)
	}
	return res.(*GenerateTextResponse), nil
}

func (w *WrappedProvider) ClassifyText(ctx context.Context, req *ClassifyTextRequest) (*ClassifyTextResponse, error) {
	res, err := w.breaker.Execute(func() (interface{}, error) {
		return w.inner.ClassifyText(ctx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", w.inner.Name(), err)
	}
	return res.(*ClassifyTextResponse), nil
}

func (w *WrappedProvider) SummarizeText(ctx context.Context, req *SummarizeTextRequest) (string, error) {
	res, err := w.breaker.Execute(func() (interface{}, error) {
		return w.inner.SummarizeText(ctx, req)
	})
	if err != nil {
		return "", fmt.Errorf("provider %s: %w", w.inner.Name(), err)
	}
	return res.(string), nil
}

func (w *WrappedProvider) ExtractEntities(ctx context.Context, req *ExtractEntitiesRequest) ([]Entity, error) {
	res, err := w.breaker.Execute(func() (interface{}, error) {
		return w.inner.ExtractEntities(ctx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", w.inner.Name(), err)
	}
	return res.([]Entity), nil
}
