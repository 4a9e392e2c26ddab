// Package arena pools reusable []float64 buffers for repeated
// builder.Dense.Init calls across records, so a hot extraction loop
// avoids reallocating a feature vector per record. Adapted from
// src/projection/grid_pool.go and the ArenaManager capacity-bucketed
// acquire/release pattern in src/projection/offheap_arena.go; the
// mmap/unsafe off-heap mechanics those files use are not adopted here —
// nothing in this module needs memory outside the Go heap, so only the
// pooling idiom is carried over.
package arena

import "sync"

// Arena hands out []float64 buffers sized at least to the requested
// capacity, reusing previously released ones when large enough.
type Arena struct {
	mu   sync.Mutex
	pool []*[]float64
}

// New constructs an empty Arena.
func New() *Arena { return &Arena{} }

// Acquire returns a buffer with length 0 and capacity at least n, reusing
// a pooled buffer if one is large enough.
func (a *Arena) Acquire(n int) []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, buf := range a.pool {
		if cap(*buf) >= n {
			a.pool[i] = a.pool[len(a.pool)-1]
			a.pool = a.pool[:len(a.pool)-1]
			return (*buf)[:0]
		}
	}
	return make([]float64, 0, n)
}

// Release returns buf to the pool for future Acquire calls. The caller
// must not use buf after calling Release.
func (a *Arena) Release(buf []float64) {
	if cap(buf) == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pool = append(a.pool, &buf)
}
