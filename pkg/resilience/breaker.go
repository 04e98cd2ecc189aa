package resilience

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-agent/errors"
)

// State is the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "Closed"
	case StateOpen:
		return "Open"
	case StateHalfOpen:
		return "HalfOpen"
	default:
		return "Unknown"
	}
}

// BreakerConfig configures one breaker instance
type BreakerConfig struct {
	Name string

	// FailureThreshold consecutive failures open the circuit
	FailureThreshold int

	// SuccessThreshold consecutive HalfOpen successes close it again
	SuccessThreshold int

	// Timeout bounds every protected call
	Timeout time.Duration

	// ResetTimeout is how long the circuit stays Open
	ResetTimeout time.Duration

	OnStateChange func(name string, from, to State)
}

// DefaultBreakerConfig returns thresholds 5/2, a 30s call timeout and a 60s reset
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
		ResetTimeout:     60 * time.Second,
	}
}

// BreakerOption customises a CircuitBreaker
type BreakerOption func(*CircuitBreaker)

// WithClock overrides time.Now
func WithClock(now func() time.Time) BreakerOption {
	return func(b *CircuitBreaker) { b.now = now }
}

// CircuitBreaker guards a single downstream dependency
type CircuitBreaker struct {
	cfg    BreakerConfig
	logger *zap.Logger
	now    func() time.Time

	mu              sync.Mutex
	state           State
	failureCount    int
	successCount    int
	nextAttemptTime time.Time
}

// NewCircuitBreaker creates a breaker in the Closed state
func NewCircuitBreaker(cfg BreakerConfig, logger *zap.Logger, opts ...BreakerOption) *CircuitBreaker {
	def := DefaultBreakerConfig(cfg.Name)
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = def.ResetTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &CircuitBreaker{
		cfg:    cfg,
		logger: logger.With(zap.String("breaker", cfg.Name)),
		now:    time.Now,
		state:  StateClosed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the dependency name
func (b *CircuitBreaker) Name() string {
	return b.cfg.Name
}

// Execute runs op under the breaker
func (b *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	_, err := Execute(ctx, b, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

type callResult[T any] struct {
	value T
	err   error
}

// Execute runs op through b and returns its value. While the circuit is Open
// op is never invoked. A call that outlives the configured timeout counts as a
// failure and surfaces as a DEPENDENCY_TIMEOUT error.
func Execute[T any](ctx context.Context, b *CircuitBreaker, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := b.beforeCall(); err != nil {
		return zero, err
	}

	callCtx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	resultCh := make(chan callResult[T], 1)
	go func() {
		v, err := op(callCtx)
		resultCh <- callResult[T]{value: v, err: err}
	}()

	select {
	case <-callCtx.Done():
		return zero, b.timedOut(ctx)
	case res := <-resultCh:
		if res.err == nil {
			b.record(true)
			return res.value, nil
		}
		if callCtx.Err() != nil {
			// op observed the deadline before the select did
			return zero, b.timedOut(ctx)
		}
		if countsAsFailure(res.err) {
			b.record(false)
		}
		return zero, res.err
	}
}

func (b *CircuitBreaker) timedOut(ctx context.Context) error {
	if ctx.Err() != nil {
		// caller gave up, not the dependency
		return ctx.Err()
	}
	b.record(false)
	return apperrors.ErrDependencyTimeout(b.cfg.Name, b.cfg.Timeout)
}

// countsAsFailure excludes errors that say nothing about dependency health
func countsAsFailure(err error) bool {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation, apperrors.KindDependencyTerminal:
		return false
	default:
		return true
	}
}

func (b *CircuitBreaker) beforeCall() error {
	b.mu.Lock()
	if b.state != StateOpen {
		b.mu.Unlock()
		return nil
	}
	if b.now().Before(b.nextAttemptTime) {
		retryAt := b.nextAttemptTime
		b.mu.Unlock()
		return apperrors.ErrCircuitOpen(b.cfg.Name, retryAt)
	}
	b.state = StateHalfOpen
	b.successCount = 0
	b.mu.Unlock()

	b.emit(StateOpen, StateHalfOpen)
	return nil
}

func (b *CircuitBreaker) record(success bool) {
	b.mu.Lock()
	from := b.state
	if success {
		switch b.state {
		case StateClosed:
			b.failureCount = 0
		case StateHalfOpen:
			b.successCount++
			if b.successCount >= b.cfg.SuccessThreshold {
				b.state = StateClosed
				b.failureCount = 0
				b.successCount = 0
			}
		}
	} else {
		switch b.state {
		case StateClosed:
			b.failureCount++
			if b.failureCount >= b.cfg.FailureThreshold {
				b.trip()
			}
		case StateHalfOpen:
			b.trip()
		}
	}
	to := b.state
	b.mu.Unlock()

	b.emit(from, to)
}

// trip must be called with mu held
func (b *CircuitBreaker) trip() {
	b.state = StateOpen
	b.successCount = 0
	b.nextAttemptTime = b.now().Add(b.cfg.ResetTimeout)
}

func (b *CircuitBreaker) emit(from, to State) {
	if from == to {
		return
	}
	if to == StateOpen {
		b.logger.Warn("⚡ Circuit opened",
			zap.String("from", from.String()),
			zap.Duration("reset_timeout", b.cfg.ResetTimeout),
		)
	} else {
		b.logger.Info("🔌 Circuit state changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(b.cfg.Name, from, to)
	}
}

// State returns the current state
func (b *CircuitBreaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// BreakerStats is a point-in-time snapshot of a breaker
type BreakerStats struct {
	Name            string     `json:"name"`
	State           string     `json:"state"`
	FailureCount    int        `json:"failureCount"`
	SuccessCount    int        `json:"successCount"`
	NextAttemptTime *time.Time `json:"nextAttemptTime,omitempty"`
}

// Stats snapshots the breaker counters
func (b *CircuitBreaker) Stats() BreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := BreakerStats{
		Name:         b.cfg.Name,
		State:        b.state.String(),
		FailureCount: b.failureCount,
		SuccessCount: b.successCount,
	}
	if b.state == StateOpen {
		next := b.nextAttemptTime
		stats.NextAttemptTime = &next
	}
	return stats
}
