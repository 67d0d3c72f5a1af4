package projection

import (
	"runtime"
	"sync"
)

// parallelRows splits [0, rows) into one contiguous band per core and runs
// fn on every band concurrently. Bands write disjoint output rows, so no
// locking is needed.
func parallelRows(rows, numCores int, fn func(start, end int)) {
	if numCores <= 0 {
		numCores = runtime.NumCPU()
	}
	if numCores > rows {
		numCores = rows
	}
	if numCores <= 1 {
		fn(0, rows)
		return
	}

	rowsPerCore := (rows + numCores - 1) / numCores

	var wg sync.WaitGroup
	for c := 0; c < numCores; c++ {
		start := c * rowsPerCore
		end := start + rowsPerCore
		if end > rows {
			end = rows
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
