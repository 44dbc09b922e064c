// Package typemap walks type structure generically. Algorithms here see
// only the Shape capability, so they traverse raw host types and labeled
// trees the same way without knowing about labels.
package typemap

import (
	"fmt"

	lterrors "github.com/orizon-lang/lty/internal/errors"
	"github.com/orizon-lang/lty/internal/types"
)

// Shape is the read-only structural view of a type node.
type Shape interface {
	// Host returns the host type at this node.
	Host() types.Type
	NumArgs() int
	Arg(i int) Shape
}

// hostShape exposes a raw host type as a Shape.
type hostShape struct {
	t        types.Type
	children []types.Type
}

// Host wraps a raw host type.
func Host(t types.Type) Shape {
	children, _ := types.Children(t)

	return &hostShape{t: t, children: children}
}

func (h *hostShape) Host() types.Type { return h.t }
func (h *hostShape) NumArgs() int     { return len(h.children) }
func (h *hostShape) Arg(i int) Shape  { return Host(h.children[i]) }

// Bindings maps placeholder indices to the shapes they matched.
type Bindings map[int]Shape

// Match binds the placeholders of pattern to the corresponding subshapes of
// target. Every other node must agree on its head and arity. A placeholder
// occurring more than once must match structurally equal subshapes.
func Match(pattern, target Shape) (Bindings, bool) {
	b := make(Bindings)
	if !match(pattern, target, b) {
		return nil, false
	}

	return b, true
}

func match(pattern, target Shape, b Bindings) bool {
	if p, ok := pattern.Host().(types.Placeholder); ok && pattern.Host().Kind() == types.TypeKindParam {
		if prev, bound := b[p.Index()]; bound {
			return Same(prev, target)
		}

		b[p.Index()] = target

		return true
	}

	if !types.SameHead(pattern.Host(), target.Host()) || pattern.NumArgs() != target.NumArgs() {
		return false
	}

	for i := 0; i < pattern.NumArgs(); i++ {
		if !match(pattern.Arg(i), target.Arg(i), b) {
			return false
		}
	}

	return true
}

// Same reports whether a and b have equal heads at every position.
func Same(a, b Shape) bool {
	if !types.SameHead(a.Host(), b.Host()) || a.NumArgs() != b.NumArgs() {
		return false
	}

	for i := 0; i < a.NumArgs(); i++ {
		if !Same(a.Arg(i), b.Arg(i)) {
			return false
		}
	}

	return true
}

// Zip walks a and b in parallel pre-order, calling visit on each pair of
// nodes at the same position. Descent below a pair stops when visit returns
// false. It fails when the two shapes disagree on the number of children at
// a visited position.
func Zip(a, b Shape, visit func(a, b Shape) bool) error {
	if a.NumArgs() != b.NumArgs() {
		return lterrors.Arity(fmt.Sprintf("%s ~ %s", a.Host(), b.Host()), b.NumArgs(), a.NumArgs())
	}

	if !visit(a, b) {
		return nil
	}

	for i := 0; i < a.NumArgs(); i++ {
		if err := Zip(a.Arg(i), b.Arg(i), visit); err != nil {
			return err
		}
	}

	return nil
}

// Count returns the number of nodes in s.
func Count(s Shape) int {
	n := 1
	for i := 0; i < s.NumArgs(); i++ {
		n += Count(s.Arg(i))
	}

	return n
}
