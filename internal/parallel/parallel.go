// Package parallel splits row-independent numeric work across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled    bool // Whether parallel execution is enabled.
	NumWorkers int  // Number of worker goroutines to use.
	MinWork    int  // Minimum work units per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:    n > 1,
		NumWorkers: n,
		MinWork:    1 << 14,
	}
}

// For executes f(i) for i in [0, n), where each call costs roughly cost
// work units. It runs sequentially when parallelism is disabled or the total
// work is too small to share. f must be safe to call concurrently for
// distinct i.
func For(n, cost int, f func(i int), cfg Config) {
	cost = max(cost, 1)
	if !cfg.Enabled || cfg.NumWorkers < 2 || n*cost < 2*cfg.MinWork {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	minChunk := (cfg.MinWork + cost - 1) / cost
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, minChunk)

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}
