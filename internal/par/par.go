// Package par runs the pipeline's embarrassingly data-parallel kernels:
// every unit of work writes only its own output slot, so plain range
// splitting over a worker count is all the coordination required.
package par

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Ranges splits [0, n) into one contiguous range per worker and runs fn on
// each range concurrently. fn must not touch slots outside its range.
func Ranges(workersCount, n int, fn func(start, end int)) {
	if workersCount < 1 {
		workersCount = 1
	}

	var wg sync.WaitGroup
	chunkSize := (n + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		start := workerID * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}

// Chunks splits [0, n) into fixed-size batches and runs fn on each with at
// most workersCount in flight. Unlike Ranges the batch size is chosen by
// the caller, so long-running kernels can be cut into slices that respect
// an executor's time limits. The first error aborts scheduling of further
// batches and is returned.
func Chunks(workersCount, n, chunkSize int, fn func(start, end int) error) error {
	if workersCount < 1 {
		workersCount = 1
	}
	if chunkSize < 1 {
		chunkSize = n
	}

	var group errgroup.Group
	group.SetLimit(workersCount)

	for start := 0; start < n; start += chunkSize {
		start, end := start, min(start+chunkSize, n)
		group.Go(func() error {
			return fn(start, end)
		})
	}
	return group.Wait()
}
