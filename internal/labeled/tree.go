// Package labeled attaches caller-defined labels to every node of a host
// type's structural tree.
//
// Trees are immutable and live in an arena: a Context borrows an
// allocator.Arena and is the only way to create nodes. Children are
// allocated before their parent, so trees are acyclic, and subtrees are
// freely shared between parents. Resetting the arena invalidates every tree
// built from it; Tree.Live reports whether that has happened.
package labeled

import (
	"fmt"
	"strings"

	"github.com/orizon-lang/lty/internal/allocator"
	"github.com/orizon-lang/lty/internal/typemap"
	"github.com/orizon-lang/lty/internal/types"
)

// Tree is one node of a labeled type tree.
type Tree[L any] struct {
	base     types.Type
	children []*Tree[L]
	label    L
	scope    allocator.Scope
}

// Base returns the host type at this node.
func (t *Tree[L]) Base() types.Type { return t.base }

// Label returns the node's label.
func (t *Tree[L]) Label() L { return t.label }

// Children returns the child nodes. The slice is arena storage shared with
// the tree and must not be modified.
func (t *Tree[L]) Children() []*Tree[L] { return t.children }

// NumChildren returns the number of child nodes.
func (t *Tree[L]) NumChildren() int { return len(t.children) }

// Child returns the i-th child. It panics when i is out of range.
func (t *Tree[L]) Child(i int) *Tree[L] { return t.children[i] }

// Scope returns the arena scope the node was allocated in.
func (t *Tree[L]) Scope() allocator.Scope { return t.scope }

// Live reports whether the arena backing the node has not been reset.
func (t *Tree[L]) Live() bool { return t.scope.Live() }

// Unsupported reports whether the node is a leaf only because its kind hides
// structure this package does not decompose.
func (t *Tree[L]) Unsupported() bool { return HidesStructure(t.base.Kind()) }

// ForEachLabel calls visit with every label in pre-order: a node before its
// children, children left to right.
func (t *Tree[L]) ForEachLabel(visit func(L)) {
	visit(t.label)

	for _, child := range t.children {
		child.ForEachLabel(visit)
	}
}

// Count returns the number of nodes, counting shared subtrees once per
// occurrence.
func (t *Tree[L]) Count() int {
	n := 1
	for _, child := range t.children {
		n += child.Count()
	}

	return n
}

// Depth returns the length of the longest root-to-leaf path; a leaf has
// depth 1.
func (t *Tree[L]) Depth() int {
	d := 0
	for _, child := range t.children {
		if cd := child.Depth(); cd > d {
			d = cd
		}
	}

	return d + 1
}

// Labels returns the labels in ForEachLabel order.
func (t *Tree[L]) Labels() []L {
	out := make([]L, 0, t.Count())
	t.ForEachLabel(func(l L) { out = append(out, l) })

	return out
}

// String renders the tree as label#type[children].
func (t *Tree[L]) String() string {
	var b strings.Builder
	t.write(&b)

	return b.String()
}

func (t *Tree[L]) write(b *strings.Builder) {
	fmt.Fprintf(b, "%v#%s[", t.label, t.base)

	for i, child := range t.children {
		if i > 0 {
			b.WriteString(", ")
		}
		child.write(b)
	}

	b.WriteByte(']')
}

// Host implements typemap.Shape.
func (t *Tree[L]) Host() types.Type { return t.base }

// NumArgs implements typemap.Shape.
func (t *Tree[L]) NumArgs() int { return len(t.children) }

// Arg implements typemap.Shape.
func (t *Tree[L]) Arg(i int) typemap.Shape { return t.children[i] }

var _ typemap.Shape = (*Tree[struct{}])(nil)
