// Package retry runs a single upstream call under a bounded exponential
// backoff policy.
package retry

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/No25ha/Market/pkg/httpclient"
)

var attemptsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_retry_attempts_total",
		Help: "Attempts made under the retry policy, by operation and outcome",
	},
	[]string{"operation", "outcome"},
)

func init() {
	prometheus.MustRegister(attemptsTotal)
}

// Policy controls how often and how patiently an operation is retried.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	// MaxJitter bounds the random amount added to each doubled delay.
	MaxJitter time.Duration

	// Classify decides whether an error is worth retrying. Defaults to
	// httpclient.IsTransient.
	Classify func(error) bool
	// Sleep waits for d or until ctx is done. Defaults to a timer.
	Sleep func(ctx context.Context, d time.Duration) error
	// Jitter returns a value in [0, max). Defaults to math/rand.
	Jitter func(limit time.Duration) time.Duration

	Logger *slog.Logger
}

// DefaultPolicy returns 5 attempts starting at 1.5s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  5,
		InitialDelay: 1500 * time.Millisecond,
		MaxJitter:    500 * time.Millisecond,
	}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Classify == nil {
		p.Classify = httpclient.IsTransient
	}
	if p.Sleep == nil {
		p.Sleep = sleep
	}
	if p.Jitter == nil {
		p.Jitter = jitter
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	return p
}

// Do runs op until it succeeds, fails permanently, or the attempt budget is
// spent, or ctx is done while waiting. The last error is returned
// unchanged. Between attempts the delay
// starts at InitialDelay and becomes delay*2 plus jitter.
func Do[T any](ctx context.Context, p Policy, name string, op func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()
	delay := p.InitialDelay

	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			attemptsTotal.WithLabelValues(name, "success").Inc()
			return result, nil
		}

		if !p.Classify(err) {
			attemptsTotal.WithLabelValues(name, "permanent").Inc()
			return result, err
		}
		if attempt >= p.MaxAttempts {
			attemptsTotal.WithLabelValues(name, "exhausted").Inc()
			return result, err
		}
		attemptsTotal.WithLabelValues(name, "retry").Inc()

		p.Logger.WarnContext(ctx, "retrying operation",
			slog.String("operation", name),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()),
		)

		if p.Sleep(ctx, delay) != nil {
			return result, err
		}
		delay = delay*2 + p.Jitter(p.MaxJitter)
	}
}

// Run is Do for operations without a result.
func Run(ctx context.Context, p Policy, name string, op func(ctx context.Context) error) error {
	_, err := Do(ctx, p, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func jitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return rand.N(limit)
}
