package retry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sourcepilot/sourcing-aggregator/internal/metrics"
	"github.com/sourcepilot/sourcing-aggregator/pkg/eventbus"
	"github.com/sourcepilot/sourcing-aggregator/pkg/model"
)

const maxBackoff = 10 * time.Second

// Backoff returns the sleep duration after a failed attempt (1-based):
// 1s, 2s, 4s, ... capped at 10s.
func Backoff(attempt int) time.Duration {
	d := time.Second * (1 << (attempt - 1))
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// AttemptEvent is published on the event bus for every attempt, so logging
// and metrics observers can diagnose slow or flaky upstreams.
type AttemptEvent struct {
	Source  string
	Attempt int
	Max     int
	Err     error
	Latency time.Duration
}

// Operation is one connector search call.
type Operation func(ctx context.Context) ([]model.Product, error)

// Executor wraps a connector call with bounded retries and exponential
// backoff. Exhausted retries degrade to an empty contribution instead of
// propagating the failure: one bad source must never sink the aggregation.
type Executor struct {
	logger      *zap.Logger
	bus         *eventbus.EventBus
	maxAttempts int

	// Sleep waits between attempts; replaceable in tests.
	Sleep func(ctx context.Context, d time.Duration)
}

// New creates an Executor. bus may be nil when no observers are wired.
func New(logger *zap.Logger, bus *eventbus.EventBus, maxAttempts int) *Executor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Executor{
		logger:      logger,
		bus:         bus,
		maxAttempts: maxAttempts,
		Sleep:       sleepCtx,
	}
}

// Run executes op up to maxAttempts times. It returns the products of the
// first successful attempt, or (nil, true) once retries are exhausted.
func (e *Executor) Run(ctx context.Context, sourceName string, op Operation) ([]model.Product, bool) {
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		start := time.Now()
		products, err := op(ctx)
		latency := time.Since(start)

		e.observe(AttemptEvent{
			Source:  sourceName,
			Attempt: attempt,
			Max:     e.maxAttempts,
			Err:     err,
			Latency: latency,
		})

		if err == nil {
			metrics.RetryAttemptsTotal.WithLabelValues(sourceName, "success").Inc()
			return products, false
		}

		metrics.RetryAttemptsTotal.WithLabelValues(sourceName, "failure").Inc()
		e.logger.Warn("retry.attempt_failed",
			zap.String("source", sourceName),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", e.maxAttempts),
			zap.Duration("latency", latency),
			zap.Error(err))

		if attempt < e.maxAttempts {
			e.Sleep(ctx, Backoff(attempt))
		}
	}

	metrics.DegradedSourcesTotal.WithLabelValues(sourceName).Inc()
	e.logger.Warn("retry.exhausted", zap.String("source", sourceName))
	return nil, true
}

func (e *Executor) observe(ev AttemptEvent) {
	if e.bus != nil {
		e.bus.PublishSync(ev)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
