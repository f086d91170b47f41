package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fast = Policy{MaxAttempts: 5, PerAttemptTimeout: time.Second, Interval: time.Millisecond}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fast, "op", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsAtMaxAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := Do(context.Background(), fast, "op", func(ctx context.Context) error {
		calls++
		return boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 5, calls)
}

func TestDo_PermanentStopsEarly(t *testing.T) {
	calls := 0
	boom := errors.New("bad input")
	err := Do(context.Background(), fast, "op", func(ctx context.Context) error {
		calls++
		return Permanent(boom)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestDo_PerAttemptTimeout(t *testing.T) {
	p := Policy{MaxAttempts: 2, PerAttemptTimeout: 20 * time.Millisecond}
	calls := 0
	err := Do(context.Background(), p, "slow", func(ctx context.Context) error {
		calls++
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		<-ctx.Done()
		return ctx.Err()
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2, calls)
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = Do(context.Background(), Policy{}, "op", func(ctx context.Context) error {
		calls++
		return errors.New("x")
	})
	assert.Equal(t, 1, calls)
}

func TestUntil_ReturnsFirstComplete(t *testing.T) {
	calls := 0
	v, ok, err := Until(context.Background(), fast, "fetch",
		func(ctx context.Context) (int, error) {
			calls++
			return calls, nil
		},
		func(v int) bool { return v >= 2 },
	)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, calls)
}

func TestUntil_ExhaustedKeepsLastPartial(t *testing.T) {
	calls := 0
	v, ok, err := Until(context.Background(), fast, "fetch",
		func(ctx context.Context) (int, error) {
			calls++
			if calls == 5 {
				return 0, errors.New("timeout")
			}
			return calls, nil
		},
		func(int) bool { return false },
	)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 4, v)
	assert.Equal(t, 5, calls)
}

func TestUntil_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := Until(ctx, fast, "fetch",
		func(ctx context.Context) (int, error) { return 0, ctx.Err() },
		func(int) bool { return true },
	)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPolicy_Worst(t *testing.T) {
	assert.Equal(t, 5*time.Minute+8*time.Second, DefaultPolicy.Worst())
}
