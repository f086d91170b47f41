package workpool

import (
	"context"
	"errors"
	"fmt"

	"github.com/alitto/pond/v2"
)

// DefaultLimit is the concurrency used for bulk Discord work
const DefaultLimit = 5

// Run calls fn for every item with at most limit calls in flight.
// It waits for all submitted work and returns every failure joined.
func Run[T any](ctx context.Context, limit int, items []T, fn func(ctx context.Context, item T) error) error {
	if len(items) == 0 {
		return nil
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	pool := pond.NewPool(limit, pond.WithContext(ctx))
	defer pool.StopAndWait()

	tasks := make([]pond.Task, 0, len(items))
	for _, item := range items {
		item := item
		tasks = append(tasks, pool.SubmitErr(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, item)
		}))
	}

	var errs []error
	for i, task := range tasks {
		if err := task.Wait(); err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
