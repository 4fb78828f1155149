// Package fanout executes independent sub-operations of a single task with
// a concurrency ceiling, preserving input order in the collected output.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultLimit is the concurrency ceiling used when none is configured.
const DefaultLimit = 10

// Map runs op for every item with at most limit operations in flight and
// returns the non-nil results in the same relative order as the input.
// Nil results are filtered out, not placeholder-preserved. The first error
// fails the whole fan-out: remaining operations are cancelled through the
// group context, and results from already-started siblings are discarded.
// No ordering is guaranteed between sibling side effects, only in the
// returned slice.
func Map[T, R any](ctx context.Context, limit int, items []T, op func(context.Context, T) (*R, error)) ([]R, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	// One slot per input item keeps collection order-stable regardless of
	// completion order.
	slots := make([]*R, len(items))
	for i, item := range items {
		g.Go(func() error {
			res, err := op(gctx, item)
			if err != nil {
				return err
			}
			slots[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]R, 0, len(items))
	for _, res := range slots {
		if res != nil {
			out = append(out, *res)
		}
	}
	return out, nil
}
