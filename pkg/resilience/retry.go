package resilience

import (
	"context"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-agent/errors"
)

// RetryConfig controls RetryWithBackoff. Delays grow deterministically:
// InitialDelay, InitialDelay*BackoffMultiplier, ... capped at MaxDelay.
type RetryConfig struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig returns 3 attempts starting at 1s, doubling up to 10s
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialDelay:      time.Second,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2,
	}
}

func (c RetryConfig) normalize() RetryConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = time.Second
	}
	if c.MaxDelay < c.InitialDelay {
		c.MaxDelay = c.InitialDelay
	}
	if c.BackoffMultiplier < 1 {
		c.BackoffMultiplier = 1
	}
	return c
}

type retryOptions struct {
	logger *zap.Logger
	timer  backoff.Timer
}

// RetryOption customises a single RetryWithBackoff call
type RetryOption func(*retryOptions)

// WithRetryLogger logs every scheduled retry
func WithRetryLogger(logger *zap.Logger) RetryOption {
	return func(o *retryOptions) { o.logger = logger }
}

// WithTimer replaces the wall-clock timer used between attempts
func WithTimer(t backoff.Timer) RetryOption {
	return func(o *retryOptions) { o.timer = t }
}

// RetryWithBackoff runs op until it succeeds, returns an error that is not
// retryable, or runs out of attempts. The last error is returned as-is.
func RetryWithBackoff[T any](ctx context.Context, op func(context.Context) (T, error), cfg RetryConfig, label string, opts ...RetryOption) (T, error) {
	o := retryOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	cfg = cfg.normalize()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialDelay
	bo.Multiplier = cfg.BackoffMultiplier
	bo.MaxInterval = cfg.MaxDelay
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0
	bo.Reset()

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(cfg.MaxAttempts-1)), ctx)

	var (
		result  T
		attempt int
	)
	operation := func() error {
		attempt++
		v, err := op(ctx)
		if err != nil {
			if !apperrors.IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = v
		return nil
	}

	notify := func(err error, delay time.Duration) {
		if o.logger != nil {
			o.logger.Warn("🔁 Retrying operation",
				zap.String("operation", label),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", cfg.MaxAttempts),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
		}
	}

	if err := backoff.RetryNotifyWithTimer(operation, policy, notify, o.timer); err != nil {
		if o.logger != nil {
			o.logger.Error("❌ Operation failed",
				zap.String("operation", label),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
		}
		var zero T
		return zero, err
	}
	return result, nil
}
