package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/NadavMozeson/typescript-discord-bot/internal/logger"
)

// Policy bounds a retried operation. Worst case latency is
// MaxAttempts * PerAttemptTimeout + (MaxAttempts-1) * Interval.
type Policy struct {
	MaxAttempts       int
	PerAttemptTimeout time.Duration
	Interval          time.Duration
}

// DefaultPolicy matches the scraper's observed behaviour: five tries, one minute each
var DefaultPolicy = Policy{
	MaxAttempts:       5,
	PerAttemptTimeout: 60 * time.Second,
	Interval:          2 * time.Second,
}

// Worst returns the aggregate worst case latency of the policy
func (p Policy) Worst() time.Duration {
	attempts := p.attempts()
	return time.Duration(attempts)*p.PerAttemptTimeout + time.Duration(attempts-1)*p.Interval
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Do runs op until it succeeds, returns a permanent error, or the attempts run out.
// Each attempt gets its own deadline derived from ctx.
func Do(ctx context.Context, p Policy, name string, op func(ctx context.Context) error) error {
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Interval), uint64(p.attempts()-1)),
		ctx,
	)

	attempt := 0
	operation := func() error {
		attempt++
		attemptCtx := ctx
		if p.PerAttemptTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, p.PerAttemptTimeout)
			defer cancel()
		}
		return op(attemptCtx)
	}

	notify := func(err error, next time.Duration) {
		logger.WarnCtx(ctx, "Attempt failed, retrying",
			zap.String("operation", name),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.attempts()),
			zap.Duration("next_retry_in", next),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return fmt.Errorf("%s failed after %d attempts: %w", name, attempt, err)
	}
	return nil
}

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// errIncomplete drives another attempt when a result lacks required data
var errIncomplete = errors.New("result incomplete")

// Until calls fetch until complete accepts its result or the attempts run out.
// It returns the last result seen, complete or not; ok tells which.
// A fetch error counts as an incomplete attempt.
func Until[T any](ctx context.Context, p Policy, name string, fetch func(ctx context.Context) (T, error), complete func(T) bool) (last T, ok bool, err error) {
	err = Do(ctx, p, name, func(ctx context.Context) error {
		v, ferr := fetch(ctx)
		if ferr != nil {
			return ferr
		}
		last = v
		if !complete(v) {
			return errIncomplete
		}
		return nil
	})
	if err == nil {
		return last, true, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return last, false, ctxErr
	}
	return last, false, nil
}
