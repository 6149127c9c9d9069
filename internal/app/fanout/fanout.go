// Package fanout runs a function over a slice with a bounded number of
// goroutines. Gallery creation feeds it source image URLs with the configured
// worker count; results land in input order, so the formatted asset value
// string comes out deterministic no matter how downloads interleave.
package fanout

import (
	"context"
	"sync"
)

// Result pairs one item's output with its error. Exactly one of the two is
// meaningful.
type Result[R any] struct {
	Value R
	Err   error
}

// Run applies fn to every item with at most maxWorkers running at once and
// returns one Result per item, in input order. maxWorkers must be at least 1.
//
// A goroutine still waiting for a worker slot when ctx is canceled records
// ctx.Err() without calling fn. Once fn has started it runs to completion;
// observing ctx mid-flight is fn's own business.
//
// Run blocks until everything finishes. Empty input returns an empty non-nil
// slice.
func Run[T, R any](ctx context.Context, maxWorkers int, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}

	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(slot int, it T) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[slot] = Result[R]{Err: ctx.Err()}
				return
			}

			val, err := fn(ctx, it)
			results[slot] = Result[R]{Value: val, Err: err}
		}(i, item)
	}

	wg.Wait()
	return results
}
