package resilience

import (
	"context"
	stdErrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-agent/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var errBoom = stdErrors.New("boom")

func newTestBreaker(clock *fakeClock) *CircuitBreaker {
	return NewCircuitBreaker(BreakerConfig{
		Name:             "test",
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Timeout:          time.Second,
		ResetTimeout:     time.Minute,
	}, zap.NewNop(), WithClock(clock.Now))
}

func fail(calls *int32) func(context.Context) error {
	return func(context.Context) error {
		atomic.AddInt32(calls, 1)
		return errBoom
	}
}

func succeed(calls *int32) func(context.Context) error {
	return func(context.Context) error {
		atomic.AddInt32(calls, 1)
		return nil
	}
}

func TestCircuitBreaker_StartsClosed(t *testing.T) {
	b := newTestBreaker(newFakeClock())
	stats := b.Stats()

	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, 0, stats.FailureCount)
	assert.Nil(t, stats.NextAttemptTime)
}

func TestCircuitBreaker_OpensAfterThresholdAndShortCircuits(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock)
	ctx := context.Background()
	var calls int32

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, b.Execute(ctx, fail(&calls)), errBoom)
	}
	assert.Equal(t, StateOpen, b.State())
	assert.EqualValues(t, 3, calls)

	clock.Advance(59 * time.Second)
	err := b.Execute(ctx, succeed(&calls))

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrorCode_CIRCUIT_OPEN))
	assert.False(t, apperrors.IsRetryable(err))
	assert.EqualValues(t, 3, calls, "operation must not run while open")
}

func TestCircuitBreaker_SuccessResetsFailureCountWhenClosed(t *testing.T) {
	b := newTestBreaker(newFakeClock())
	ctx := context.Background()
	var calls int32

	_ = b.Execute(ctx, fail(&calls))
	_ = b.Execute(ctx, fail(&calls))
	require.NoError(t, b.Execute(ctx, succeed(&calls)))
	_ = b.Execute(ctx, fail(&calls))
	_ = b.Execute(ctx, fail(&calls))

	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, 2, b.Stats().FailureCount)
}

func TestCircuitBreaker_HalfOpenClosesAfterSuccessThreshold(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock)
	ctx := context.Background()
	var calls int32

	for i := 0; i < 3; i++ {
		_ = b.Execute(ctx, fail(&calls))
	}
	clock.Advance(time.Minute)

	require.NoError(t, b.Execute(ctx, succeed(&calls)))
	assert.Equal(t, StateHalfOpen, b.State())
	assert.Equal(t, 1, b.Stats().SuccessCount)

	require.NoError(t, b.Execute(ctx, succeed(&calls)))
	assert.Equal(t, StateClosed, b.State())
	stats := b.Stats()
	assert.Equal(t, 0, stats.FailureCount)
	assert.Equal(t, 0, stats.SuccessCount)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock)
	ctx := context.Background()
	var calls int32

	for i := 0; i < 3; i++ {
		_ = b.Execute(ctx, fail(&calls))
	}
	clock.Advance(2 * time.Minute)

	require.NoError(t, b.Execute(ctx, succeed(&calls)))
	require.ErrorIs(t, b.Execute(ctx, fail(&calls)), errBoom)

	assert.Equal(t, StateOpen, b.State())
	stats := b.Stats()
	require.NotNil(t, stats.NextAttemptTime)
	assert.Equal(t, clock.Now().Add(time.Minute), *stats.NextAttemptTime)
	assert.Equal(t, 0, stats.SuccessCount)

	before := atomic.LoadInt32(&calls)
	err := b.Execute(ctx, succeed(&calls))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrorCode_CIRCUIT_OPEN))
	assert.Equal(t, before, atomic.LoadInt32(&calls))
}

func TestCircuitBreaker_TimeoutCountsAsFailure(t *testing.T) {
	b := NewCircuitBreaker(BreakerConfig{
		Name:             "slow",
		FailureThreshold: 1,
		Timeout:          20 * time.Millisecond,
		ResetTimeout:     time.Minute,
	}, zap.NewNop())

	err := b.Execute(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrorCode_DEPENDENCY_TIMEOUT))
	assert.True(t, apperrors.IsRetryable(err))
	assert.Equal(t, StateOpen, b.State())
}

func TestCircuitBreaker_TerminalErrorsDoNotTrip(t *testing.T) {
	b := newTestBreaker(newFakeClock())
	rejected := apperrors.ErrDependencyTerminal("graph", stdErrors.New("400"))

	for i := 0; i < 5; i++ {
		err := b.Execute(context.Background(), func(context.Context) error { return rejected })
		require.Error(t, err)
	}
	assert.Equal(t, StateClosed, b.State())
}

func TestExecute_ReturnsValue(t *testing.T) {
	b := newTestBreaker(newFakeClock())
	got, err := Execute(context.Background(), b, func(context.Context) (int, error) { return 42, nil })

	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestCircuitBreaker_ConcurrentFailuresAreNotLost(t *testing.T) {
	b := NewCircuitBreaker(BreakerConfig{Name: "concurrent", FailureThreshold: 50, Timeout: time.Second}, zap.NewNop())
	var wg sync.WaitGroup
	var calls int32
	for i := 0; i < 49; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Execute(context.Background(), fail(&calls))
		}()
	}
	wg.Wait()

	assert.Equal(t, 49, b.Stats().FailureCount)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakers_StateChangeCallback(t *testing.T) {
	var mu sync.Mutex
	var transitions []string
	onChange := func(name string, from, to State) {
		mu.Lock()
		transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		mu.Unlock()
	}
	extraction := BreakerConfig{Name: "extraction", FailureThreshold: 1, OnStateChange: onChange}
	reg := NewBreakers(extraction, BreakerConfig{}, zap.NewNop())

	_ = reg.Extraction.Execute(context.Background(), func(context.Context) error { return errBoom })

	assert.Equal(t, []string{"extraction:Closed->Open"}, transitions)
	stats := reg.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, "Open", stats[0].State)
	assert.Equal(t, "actions", stats[1].Name)
}
