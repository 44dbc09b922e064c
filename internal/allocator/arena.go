package allocator

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Arena is a generation-checked lifetime scope for slab allocations.
// Allocation through the slabs bound to one arena must be serialized by the
// caller; Stats, Generation and Scope are safe to call concurrently.
type Arena struct {
	config     *Config
	generation atomic.Uint64
	stats      counters
}

// NewArena creates a new arena.
func NewArena(options ...Option) (*Arena, error) {
	config := DefaultConfig()
	for _, opt := range options {
		opt(config)
	}

	if config.ChunkSize <= 0 {
		return nil, fmt.Errorf("arena chunk size must be greater than 0, got %d", config.ChunkSize)
	}

	return &Arena{config: config}, nil
}

// MustNewArena is NewArena for static configurations.
func MustNewArena(options ...Option) *Arena {
	a, err := NewArena(options...)
	if err != nil {
		panic(err)
	}

	return a
}

// Config returns the arena configuration.
func (a *Arena) Config() *Config { return a.config }

// Generation returns the current generation.
func (a *Arena) Generation() uint64 { return a.generation.Load() }

// Scope returns the scope of the current generation.
func (a *Arena) Scope() Scope {
	return Scope{arena: a, generation: a.Generation()}
}

// Reset tears the arena down. Every scope taken before the reset stops being
// live, and slabs start new chunks on their next allocation.
func (a *Arena) Reset() {
	a.generation.Add(1)
	a.stats.resets.Add(1)
	a.stats.elements.Store(0)
	a.stats.bytes.Store(0)
	a.stats.chunks.Store(0)
}

// Stats returns allocation statistics.
func (a *Arena) Stats() AllocatorStats {
	return AllocatorStats{
		Name:            a.config.Name,
		Generation:      a.Generation(),
		Resets:          a.stats.resets.Load(),
		AllocationCount: a.stats.allocations.Load(),
		Elements:        a.stats.elements.Load(),
		Chunks:          a.stats.chunks.Load(),
		BytesInUse:      a.stats.bytes.Load(),
		PeakBytes:       a.stats.peak.Load(),
	}
}

func (a *Arena) reserve(n uint64) {
	if limit := a.config.MaxElements; limit > 0 && a.stats.elements.Load()+n > limit {
		panic(fmt.Sprintf("arena %s: element limit %d exceeded", a.config.Name, limit))
	}
}

// Slab hands out stable storage for values of one type from an arena.
// A chunk is never grown in place, so pointers and sub-slices returned by
// Alloc and AllocSlice stay valid until the arena is reset.
type Slab[T any] struct {
	arena      *Arena
	generation uint64
	chunk      []T
	elemSize   uint64
}

// NewSlab binds a typed slab to an arena.
func NewSlab[T any](a *Arena) *Slab[T] {
	var zero T

	return &Slab[T]{
		arena:      a,
		generation: a.Generation(),
		elemSize:   uint64(unsafe.Sizeof(zero)),
	}
}

// Arena returns the arena backing the slab.
func (s *Slab[T]) Arena() *Arena { return s.arena }

// Alloc stores one value and returns its address.
func (s *Slab[T]) Alloc(v T) *T {
	s.sync()
	s.arena.reserve(1)

	if len(s.chunk) == cap(s.chunk) {
		s.grow(s.arena.config.ChunkSize)
	}

	s.chunk = append(s.chunk, v)
	s.arena.stats.record(1, s.elemSize)

	return &s.chunk[len(s.chunk)-1]
}

// AllocSlice copies items into one contiguous run of arena storage. The
// empty list yields nil without allocating. The result has its capacity
// clipped, so appending to it never writes into neighbouring allocations.
func (s *Slab[T]) AllocSlice(items []T) []T {
	n := len(items)
	if n == 0 {
		return nil
	}

	s.sync()
	s.arena.reserve(uint64(n))
	s.arena.stats.record(uint64(n), s.elemSize*uint64(n))

	if n > s.arena.config.ChunkSize {
		// Oversized runs get a dedicated chunk and leave the current one alone.
		s.arena.stats.chunks.Add(1)
		out := make([]T, n)
		copy(out, items)

		return out
	}

	if cap(s.chunk)-len(s.chunk) < n {
		s.grow(s.arena.config.ChunkSize)
	}

	start := len(s.chunk)
	s.chunk = append(s.chunk, items...)

	return s.chunk[start:len(s.chunk):len(s.chunk)]
}

// sync abandons the current chunk when the arena was reset since the last
// allocation.
func (s *Slab[T]) sync() {
	if gen := s.arena.Generation(); gen != s.generation {
		s.generation = gen
		s.chunk = nil
	}
}

func (s *Slab[T]) grow(size int) {
	s.chunk = make([]T, 0, size)
	s.arena.stats.chunks.Add(1)
}
