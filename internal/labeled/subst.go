package labeled

import (
	"fmt"

	"github.com/orizon-lang/lty/internal/allocator"
	lterrors "github.com/orizon-lang/lty/internal/errors"
	"github.com/orizon-lang/lty/internal/types"
)

// Substitute replaces every placeholder leaf of t with args[index]. Other
// nodes keep their label and host type; a node is reallocated only when one
// of its children changed, so untouched subtrees stay shared with t.
// A placeholder index outside args fails with INDEX_OUT_OF_BOUNDS; t or an
// argument allocated in another arena fails with SCOPE_MISMATCH.
func (c *Context[L]) Substitute(t *Tree[L], args []*Tree[L]) (*Tree[L], error) {
	if err := c.checkLive("substitute", t, args); err != nil {
		return nil, err
	}

	s := substituter[L]{ctx: c, args: args, memo: make(map[*Tree[L]]*Tree[L])}

	return s.tree(t)
}

// SubstituteSlice substitutes into each tree in order.
func (c *Context[L]) SubstituteSlice(ts []*Tree[L], args []*Tree[L]) ([]*Tree[L], error) {
	if err := c.checkLive("substitute", nil, args); err != nil {
		return nil, err
	}

	for _, t := range ts {
		if err := c.checkLive("substitute", t, nil); err != nil {
			return nil, err
		}
	}

	s := substituter[L]{ctx: c, args: args, memo: make(map[*Tree[L]]*Tree[L])}

	out, changed, err := s.slice(ts)
	if err != nil || changed {
		return out, err
	}

	return c.MkSlice(ts), nil
}

// MustSubstitute is Substitute for argument lists known to cover every
// placeholder.
func (c *Context[L]) MustSubstitute(t *Tree[L], args []*Tree[L]) *Tree[L] {
	out, err := c.Substitute(t, args)
	if err != nil {
		panic(err)
	}

	return out
}

type substituter[L any] struct {
	ctx  *Context[L]
	args []*Tree[L]
	// memo keeps shared subtrees shared in the result.
	memo map[*Tree[L]]*Tree[L]
}

func (s *substituter[L]) tree(t *Tree[L]) (*Tree[L], error) {
	if done, ok := s.memo[t]; ok {
		return done, nil
	}

	if p, ok := t.base.(types.Placeholder); ok && t.base.Kind() == types.TypeKindParam {
		idx := p.Index()
		if idx < 0 || idx >= len(s.args) {
			return nil, lterrors.IndexOutOfBounds(idx, len(s.args))
		}

		s.memo[t] = s.args[idx]

		return s.args[idx], nil
	}

	children, changed, err := s.slice(t.children)
	if err != nil {
		return nil, err
	}

	out := t
	if changed {
		out = s.ctx.Mk(s.rebase(t.base, children), children, t.label)
	}

	s.memo[t] = out

	return out, nil
}

// slice substitutes into ts and reports whether any element changed. When
// nothing changed ts itself is returned.
func (s *substituter[L]) slice(ts []*Tree[L]) ([]*Tree[L], bool, error) {
	if len(ts) == 0 {
		return ts, false, nil
	}

	out := make([]*Tree[L], len(ts))
	changed := false

	for i, t := range ts {
		st, err := s.tree(t)
		if err != nil {
			return nil, false, err
		}
		out[i] = st
		changed = changed || st != t
	}

	if !changed {
		return ts, false, nil
	}

	return s.ctx.MkSlice(out), true, nil
}

func (s *substituter[L]) rebase(base types.Type, children []*Tree[L]) types.Type {
	if s.ctx.opts.rebase == nil {
		return base
	}

	hosts := make([]types.Type, len(children))
	for i, child := range children {
		hosts[i] = child.base
	}

	return s.ctx.opts.rebase(base, hosts)
}

// checkLive fails when t or any argument belongs to an arena generation that
// has since been reset, or to an arena other than c's.
func (c *Context[L]) checkLive(operation string, t *Tree[L], args []*Tree[L]) error {
	if t != nil {
		if err := c.checkOperand(operation, t); err != nil {
			return err
		}
	}

	for _, arg := range args {
		if arg != nil {
			if err := c.checkOperand(operation, arg); err != nil {
				return err
			}
		}
	}

	return nil
}

func (c *Context[L]) checkOperand(operation string, t *Tree[L]) error {
	if !t.Live() {
		return staleError(operation, t.scope)
	}

	if t.scope.Arena() != c.arena {
		return lterrors.ScopeMismatch(fmt.Sprintf("%s: %s is in %s, context is in %s",
			operation, t.base, t.scope, c.arena.Scope()))
	}

	return nil
}

func staleError(operation string, s allocator.Scope) error {
	var current uint64
	if a := s.Arena(); a != nil {
		current = a.Generation()
	}

	return lterrors.StaleReference(operation, s.Generation(), current)
}
