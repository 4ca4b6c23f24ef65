// ABOUTME: This file implements bounded exponential backoff retry for adapter calls
// ABOUTME: Delays are deterministic (no jitter); every attempt can be reported to listeners
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// ShouldRetryFunc decides whether a failed attempt (1-based) is retried.
type ShouldRetryFunc func(err error, attempt int) bool

// OnRetryFunc is called before waiting for the next attempt.
type OnRetryFunc func(err error, attempt int, delay time.Duration)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type Config struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	ShouldRetry       ShouldRetryFunc
	OnRetry           OnRetryFunc
}

// DefaultConfig mirrors the service defaults: three attempts, 1s doubling up to 10s.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       3,
		InitialDelay:      1 * time.Second,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// State is a snapshot of one Execute call.
type State struct {
	Operation     string
	Attempt       int
	TotalAttempts int
	LastError     error
	IsRetrying    bool
	NextDelay     time.Duration
}

// Retrier holds an immutable retry policy and can be shared between goroutines; retry state
// lives on the stack of each call.
type Retrier struct {
	config   Config
	logger   *slog.Logger
	sleep    SleepFunc
	reporter *StatusReporter
}

type Option func(*Retrier)

// WithSleep replaces the wait between attempts. Tests use it to record delays.
func WithSleep(fn SleepFunc) Option {
	return func(r *Retrier) { r.sleep = fn }
}

// WithReporter publishes a State snapshot after every attempt.
func WithReporter(reporter *StatusReporter) Option {
	return func(r *Retrier) { r.reporter = reporter }
}

func New(config Config, logger *slog.Logger, opts ...Option) *Retrier {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.BackoffMultiplier <= 0 {
		config.BackoffMultiplier = 1
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = config.InitialDelay
	}
	if config.ShouldRetry == nil {
		config.ShouldRetry = DefaultShouldRetry
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Retrier{
		config: config,
		logger: logger,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the effective policy.
func (r *Retrier) Config() Config {
	return r.config
}

// Delay returns the wait after the given failed attempt: InitialDelay * BackoffMultiplier^(attempt-1), capped at MaxDelay.
func (r *Retrier) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(r.config.InitialDelay) * math.Pow(r.config.BackoffMultiplier, float64(attempt-1))
	if delay > float64(r.config.MaxDelay) || math.IsInf(delay, 1) {
		return r.config.MaxDelay
	}
	return time.Duration(delay)
}

// Do runs operation until it succeeds, fails with a non-retryable error, or attempts run out.
func (r *Retrier) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	_, err := Execute(ctx, r, operation, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Execute runs fn under r's policy and returns its result. The last error is returned once
// attempts are exhausted; non-retryable errors are returned as-is after the first failure.
func Execute[T any](ctx context.Context, r *Retrier, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	start := time.Now()
	state := State{Operation: operation, TotalAttempts: r.config.MaxAttempts}

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		state.Attempt = attempt
		state.IsRetrying = attempt > 1

		result, err := fn(ctx)
		if err == nil {
			state.IsRetrying = false
			state.LastError = nil
			state.NextDelay = 0
			r.report(state)
			if attempt > 1 {
				r.logger.InfoContext(ctx, "operation succeeded after retry",
					"operation", operation,
					"attempt", attempt,
					"total_duration_ms", time.Since(start).Milliseconds())
			}
			return result, nil
		}

		state.LastError = err
		retryable := ctx.Err() == nil && r.config.ShouldRetry(err, attempt)

		if !retryable || attempt == r.config.MaxAttempts {
			state.IsRetrying = false
			state.NextDelay = 0
			r.report(state)
			if !retryable {
				r.logger.WarnContext(ctx, "operation failed with non-retryable error",
					"operation", operation,
					"attempt", attempt,
					"error", err)
				return zero, err
			}
			r.logger.ErrorContext(ctx, "operation failed permanently",
				"operation", operation,
				"attempts", attempt,
				"error", err,
				"total_duration_ms", time.Since(start).Milliseconds())
			return zero, fmt.Errorf("%s failed after %d attempts: %w", operation, attempt, err)
		}

		delay := r.Delay(attempt)
		state.IsRetrying = true
		state.NextDelay = delay
		r.report(state)

		r.logger.WarnContext(ctx, "operation attempt failed, retrying",
			"operation", operation,
			"attempt", attempt,
			"error", err,
			"retry_delay_ms", delay.Milliseconds())
		if r.config.OnRetry != nil {
			r.config.OnRetry(err, attempt, delay)
		}

		if err := r.sleep(ctx, delay); err != nil {
			return zero, fmt.Errorf("%s retry cancelled: %w", operation, err)
		}
	}

	// MaxAttempts >= 1 guarantees the loop returns.
	return zero, fmt.Errorf("%s: no attempts made", operation)
}

func (r *Retrier) report(state State) {
	if r.reporter != nil {
		r.reporter.publish(r.logger, state)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
