// Package retry wraps remote calls with bounded attempts, exponential backoff
// and a per-attempt deadline.
package retry

import (
	"context"
	"errors"
	"time"
)

// ErrAttemptTimeout is reported when a single attempt outlives its deadline
// while the caller's context is still alive. It is always retryable.
var ErrAttemptTimeout = errors.New("retry: attempt timed out")

// Func is a retryable operation. It must respect ctx.
type Func func(ctx context.Context) error

// ValueFunc is a retryable operation producing a value.
type ValueFunc[T any] func(ctx context.Context) (T, error)

// RetryIf reports whether err should trigger another attempt.
type RetryIf func(error) bool

// Backoff returns the wait before retry number attempt (0 based).
type Backoff interface {
	Next(attempt int) time.Duration
}

type fixedBackoff struct {
	interval time.Duration
}

func (b fixedBackoff) Next(int) time.Duration {
	return b.interval
}

// Fixed waits the same interval between every attempt.
func Fixed(interval time.Duration) Backoff {
	return fixedBackoff{interval: interval}
}

type exponentialBackoff struct {
	base time.Duration
	max  time.Duration
}

func (b exponentialBackoff) Next(attempt int) time.Duration {
	if attempt > 30 {
		attempt = 30
	}
	d := b.base * time.Duration(1<<attempt)
	if b.max > 0 && d > b.max {
		return b.max
	}
	return d
}

// Exponential waits base*2^attempt, optionally capped by max.
func Exponential(base time.Duration, max ...time.Duration) Backoff {
	var m time.Duration
	if len(max) > 0 {
		m = max[0]
	}
	return exponentialBackoff{base: base, max: m}
}

// Config defines retry behavior.
type Config struct {
	maxAttempts    int
	attemptTimeout time.Duration
	backoff        Backoff
	retryIf        RetryIf
	onRetry        func(attempt int, err error, wait time.Duration)
}

const (
	// DefaultMaxRetries 远端调用默认尝试次数
	DefaultMaxRetries = 3
	// DefaultInitialDelay 首次重试等待时间，之后按 2^n 递增
	DefaultInitialDelay = time.Second
	// DefaultAttemptTimeout 单次调用超时
	DefaultAttemptTimeout = 10 * time.Second
)

func defaultConfig() *Config {
	return &Config{
		maxAttempts:    DefaultMaxRetries,
		attemptTimeout: DefaultAttemptTimeout,
		backoff:        Exponential(DefaultInitialDelay),
		retryIf:        IsRetryableError,
	}
}

// Option configures retry behavior.
type Option func(*Config)

// WithMaxAttempts sets the number of attempts, including the first one.
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithInitialDelay switches to exponential backoff starting at d.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.backoff = Exponential(d)
		}
	}
}

// WithAttemptTimeout bounds every single attempt. Zero disables it.
func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.attemptTimeout = d
		}
	}
}

// WithBackoff sets the backoff strategy.
func WithBackoff(b Backoff) Option {
	return func(c *Config) {
		if b != nil {
			c.backoff = b
		}
	}
}

// WithRetryIf sets the retry condition function.
func WithRetryIf(fn RetryIf) Option {
	return func(c *Config) {
		if fn != nil {
			c.retryIf = fn
		}
	}
}

// WithOnRetry registers a hook called before each wait.
func WithOnRetry(fn func(attempt int, err error, wait time.Duration)) Option {
	return func(c *Config) {
		c.onRetry = fn
	}
}

// Do executes fn with retry logic.
func Do(ctx context.Context, fn Func, opts ...Option) error {
	_, err := DoValue(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, opts...)
	return err
}

// DoValue executes fn with retry logic and returns its value. After the last
// failed attempt the last error is returned as is; there is no wait after it.
func DoValue[T any](ctx context.Context, fn ValueFunc[T], opts ...Option) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var (
		zero    T
		lastErr error
	)

	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := runAttempt(ctx, cfg.attemptTimeout, fn)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !cfg.retryIf(err) {
			return zero, err
		}

		if attempt == cfg.maxAttempts-1 {
			break
		}

		wait := cfg.backoff.Next(attempt)
		if cfg.onRetry != nil {
			cfg.onRetry(attempt+1, err, wait)
		}
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			}
		}
	}

	return zero, lastErr
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, fn ValueFunc[T]) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v, err := fn(attemptCtx)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return v, errors.Join(ErrAttemptTimeout, err)
	}
	return v, err
}

// IsRetryableError is the default retry condition.
// Cancellation by the caller stops retrying; per-attempt timeouts do not.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAttemptTimeout) {
		return true
	}
	if errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
