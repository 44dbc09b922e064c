package labeled

import (
	"fmt"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/orizon-lang/lty/internal/types"
)

type internKey[L comparable] struct {
	base     types.Type
	label    L
	children string
}

// Interner hash-conses nodes of one context so that structurally equal
// subtrees are allocated once. The cache is bounded; an evicted node only
// costs sharing, never correctness, because tree equality is structural.
type Interner[L comparable] struct {
	ctx    *Context[L]
	cache  *lru.Cache[internKey[L], *Tree[L]]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewInterner creates an interner over ctx remembering up to size nodes.
func NewInterner[L comparable](ctx *Context[L], size int) (*Interner[L], error) {
	cache, err := lru.New[internKey[L], *Tree[L]](size)
	if err != nil {
		return nil, fmt.Errorf("create interner cache: %w", err)
	}

	return &Interner[L]{ctx: ctx, cache: cache}, nil
}

// Mk returns the canonical node for (base, children, label), allocating it
// in the context when it is not cached. children must be canonical.
func (in *Interner[L]) Mk(base types.Type, children []*Tree[L], label L) *Tree[L] {
	k := internKey[L]{base: base, label: label, children: childKey(children)}

	if t, ok := in.cache.Get(k); ok && t.Live() {
		in.hits.Add(1)
		return t
	}

	in.misses.Add(1)
	t := in.ctx.Mk(base, in.ctx.MkSlice(children), label)
	in.cache.Add(k, t)

	return t
}

// Intern returns the canonical copy of t, rebuilding it bottom-up through Mk.
// A node shared within t is visited once.
func (in *Interner[L]) Intern(t *Tree[L]) *Tree[L] {
	return in.intern(t, make(map[*Tree[L]]*Tree[L]))
}

func (in *Interner[L]) intern(t *Tree[L], memo map[*Tree[L]]*Tree[L]) *Tree[L] {
	if done, ok := memo[t]; ok {
		return done
	}

	var children []*Tree[L]
	if len(t.children) > 0 {
		children = make([]*Tree[L], len(t.children))
		for i, child := range t.children {
			children[i] = in.intern(child, memo)
		}
	}

	out := in.Mk(t.base, children, t.label)
	memo[t] = out

	return out
}

// Build is Context.Build followed by Intern.
func (in *Interner[L]) Build(t types.Type, fn func(types.Type) L) (*Tree[L], error) {
	lt, err := in.ctx.Build(t, fn)
	if err != nil {
		return nil, err
	}

	return in.Intern(lt), nil
}

// Stats returns cache hits, misses and the current number of cached nodes.
func (in *Interner[L]) Stats() (hits, misses uint64, size int) {
	return in.hits.Load(), in.misses.Load(), in.cache.Len()
}

// Purge drops every cached node.
func (in *Interner[L]) Purge() { in.cache.Purge() }

func childKey[L any](children []*Tree[L]) string {
	if len(children) == 0 {
		return ""
	}

	var b strings.Builder
	for _, child := range children {
		fmt.Fprintf(&b, "%p,", child)
	}

	return b.String()
}
