package extract

import (
	"runtime"
	"sync"
)

const maxWorkers = 8

// normaliseWorkers resolves a requested worker count: zero or negative picks
// min(GOMAXPROCS, maxWorkers), and the result never exceeds the number of
// items to split.
func normaliseWorkers(requested, items int) int {
	workers := requested
	if workers <= 0 {
		workers = min(runtime.GOMAXPROCS(0), maxWorkers)
	}
	return max(1, min(workers, items))
}

// splitRange returns the half-open range of items owned by worker index.
func splitRange(length, workers, index int) (int, int) {
	chunk := length / workers
	remainder := length % workers
	start := index*chunk + min(index, remainder)
	end := start + chunk
	if index < remainder {
		end++
	}
	return start, end
}

// parallel runs fn over [0, length) split across workers and waits for all
// of them. fn receives the worker index and its range.
func parallel(length, workers int, fn func(worker, start, end int)) {
	if length == 0 {
		return
	}
	workers = normaliseWorkers(workers, length)
	if workers == 1 {
		fn(0, 0, length)
		return
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start, end := splitRange(length, workers, w)
		wg.Add(1)
		go func(worker, start, end int) {
			defer wg.Done()
			fn(worker, start, end)
		}(w, start, end)
	}
	wg.Wait()
}
