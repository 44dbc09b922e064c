// Package allocator provides arena allocation for long-lived, read-only
// toolchain data such as labeled type trees.
// An Arena is a lifetime scope: values are never freed individually, and a
// Reset invalidates every reference handed out before it. Typed storage is
// provided by Slab, which carves values out of fixed-capacity chunks so
// that an allocated value never moves.
package allocator

import (
	"fmt"
	"sync/atomic"
)

// DefaultChunkSize is the number of elements per slab chunk.
const DefaultChunkSize = 256

// Configuration for arenas.
type Config struct {
	Name      string
	ChunkSize int
	// MaxElements caps the number of live elements per generation; 0 means unlimited.
	MaxElements uint64
}

type Option func(*Config)

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() *Config {
	return &Config{
		Name:      "arena",
		ChunkSize: DefaultChunkSize,
	}
}

// Option functions.
func WithName(name string) Option {
	return func(c *Config) { c.Name = name }
}

func WithChunkSize(size int) Option {
	return func(c *Config) { c.ChunkSize = size }
}

func WithMaxElements(n uint64) Option {
	return func(c *Config) { c.MaxElements = n }
}

// AllocatorStats provides allocation statistics.
type AllocatorStats struct {
	Name            string
	Generation      uint64
	Resets          uint64
	AllocationCount uint64
	Elements        uint64
	Chunks          uint64
	BytesInUse      uint64
	PeakBytes       uint64
}

// String renders the stats on one line.
func (s AllocatorStats) String() string {
	return fmt.Sprintf("%s: gen=%d allocs=%d elems=%d chunks=%d bytes=%d peak=%d",
		s.Name, s.Generation, s.AllocationCount, s.Elements, s.Chunks, s.BytesInUse, s.PeakBytes)
}

// Scope identifies one generation of one arena. Values allocated while the
// arena is at a given generation are valid exactly as long as the scope is
// live.
type Scope struct {
	arena      *Arena
	generation uint64
}

// Arena returns the arena the scope belongs to.
func (s Scope) Arena() *Arena { return s.arena }

// Generation returns the arena generation the scope was taken at.
func (s Scope) Generation() uint64 { return s.generation }

// Live reports whether the arena has not been reset since the scope was taken.
func (s Scope) Live() bool {
	return s.arena != nil && s.arena.Generation() == s.generation
}

// Same reports whether both scopes denote the same arena generation.
func (s Scope) Same(other Scope) bool {
	return s.arena == other.arena && s.generation == other.generation
}

// IsZero reports whether the scope was never bound to an arena.
func (s Scope) IsZero() bool { return s.arena == nil }

func (s Scope) String() string {
	if s.arena == nil {
		return "scope(none)"
	}

	return fmt.Sprintf("scope(%s@%d)", s.arena.config.Name, s.generation)
}

// counters are updated atomically so a stats reader never races the
// (single) allocating goroutine.
type counters struct {
	allocations atomic.Uint64
	elements    atomic.Uint64
	chunks      atomic.Uint64
	bytes       atomic.Uint64
	peak        atomic.Uint64
	resets      atomic.Uint64
}

func (c *counters) record(elements, bytes uint64) {
	c.allocations.Add(1)
	c.elements.Add(elements)
	used := c.bytes.Add(bytes)

	for {
		peak := c.peak.Load()
		if used <= peak || c.peak.CompareAndSwap(peak, used) {
			return
		}
	}
}
