// Package fanout runs a function over a slice of items with bounded
// worker-thread parallelism, collapsing to the first error while letting
// already-running units finish their current item. This is the shared
// fork-join primitive behind the activation, check, and update engines.
package fanout

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Run executes fn(items[i]) for every i, using up to workers goroutines
// (0 or negative means runtime.NumCPU()). A worker failure stops new items
// from being started; items already in flight run to completion. The first
// error encountered, if any, is returned.
func Run[T any](items []T, workers int, fn func(T) error) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(items) {
		workers = len(items)
	}
	if workers == 0 {
		return nil
	}

	work := make(chan T)
	var wg sync.WaitGroup
	var failed atomic.Bool
	var firstErr error
	var errOnce sync.Once

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range work {
				if failed.Load() {
					continue
				}
				if err := fn(item); err != nil {
					failed.Store(true)
					errOnce.Do(func() { firstErr = err })
				}
			}
		}()
	}

	for _, item := range items {
		if failed.Load() {
			break
		}
		work <- item
	}
	close(work)
	wg.Wait()

	return firstErr
}
