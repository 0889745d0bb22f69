package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"TrendScope/internal/model"
)

// GuardOptions configure request pacing and the circuit breaker.
type GuardOptions struct {
	RatePerSecond float64 // <= 0 disables pacing
	Burst         int
	MaxFailures   uint32        // consecutive failures before the breaker opens
	OpenTimeout   time.Duration // time the breaker stays open before probing
}

// Guarded paces calls to a Fetcher and stops calling it after repeated failures.
type Guarded struct {
	next    Fetcher
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewGuarded wraps next with a token-bucket limiter and a circuit breaker.
func NewGuarded(next Fetcher, opts GuardOptions) *Guarded {
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = time.Minute
	}
	st := gobreaker.Settings{Name: next.Name(), Timeout: opts.OpenTimeout}
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= opts.MaxFailures
	}
	// Empty ranges and cancelled runs say nothing about provider health.
	st.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, ErrNoData) || errors.Is(err, context.Canceled)
	}
	return &Guarded{
		next:    next,
		limiter: rate.NewLimiter(limit, opts.Burst),
		breaker: gobreaker.NewCircuitBreaker(st),
	}
}

func (g *Guarded) Name() string { return g.next.Name() }

// State reports the breaker state, e.g. "closed" or "open".
func (g *Guarded) State() string { return g.breaker.State().String() }

func (g *Guarded) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	res, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.FetchDailyBars(ctx, symbol, start, end)
	})
	if err != nil {
		return nil, err
	}
	bars, _ := res.([]model.Bar)
	return bars, nil
}
