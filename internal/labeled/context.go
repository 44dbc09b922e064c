package labeled

import (
	"log"

	"github.com/orizon-lang/lty/internal/allocator"
	lterrors "github.com/orizon-lang/lty/internal/errors"
	"github.com/orizon-lang/lty/internal/types"
)

// Arity is the structural policy of a kind.
type Arity int

const (
	// ArityLeaf kinds are atomic.
	ArityLeaf Arity = iota
	// ArityOne kinds wrap exactly one element type.
	ArityOne
	// ArityMany kinds have an ordered list of children.
	ArityMany
	// ArityHidden kinds carry structure that is not decomposed; they are
	// built as leaves.
	ArityHidden
	// ArityOpaque kinds have no structure of their own (placeholders,
	// inference variables, the error type).
	ArityOpaque
)

// Policy maps every kind of the catalogue to its structural policy. ok is
// false for kinds outside the catalogue. This table must be revisited
// whenever types.TypeKind grows.
func Policy(kind types.TypeKind) (arity Arity, ok bool) {
	switch kind {
	case types.TypeKindBool, types.TypeKindChar, types.TypeKindInt, types.TypeKindUint,
		types.TypeKindFloat, types.TypeKindStr, types.TypeKindNever:
		return ArityLeaf, true
	case types.TypeKindRawPtr, types.TypeKindRef, types.TypeKindArray, types.TypeKindSlice:
		return ArityOne, true
	case types.TypeKindAdt, types.TypeKindFnDef, types.TypeKindFnPtr, types.TypeKindTuple:
		return ArityMany, true
	case types.TypeKindDynamic, types.TypeKindClosure, types.TypeKindProjection, types.TypeKindOpaque:
		return ArityHidden, true
	case types.TypeKindInfer, types.TypeKindParam, types.TypeKindError:
		return ArityOpaque, true
	default:
		return 0, false
	}
}

// HidesStructure reports whether kind is built as a leaf even though the
// host may nest types inside it.
func HidesStructure(kind types.TypeKind) bool {
	arity, ok := Policy(kind)
	return ok && arity == ArityHidden
}

type options struct {
	strict bool
	logger *log.Logger
	rebase func(t types.Type, children []types.Type) types.Type
}

// Option configures a Context.
type Option func(*options)

// WithStrictKinds makes Build fail on kinds that hide structure instead of
// building them as leaves.
func WithStrictKinds() Option {
	return func(o *options) { o.strict = true }
}

// WithLogger installs a logger for lenient-mode warnings.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRebase makes Substitute recompute the host type of every rebuilt node
// from the host types of its new children, typically with
// (*types.Context).Rebuild. Without it rebuilt nodes keep their original
// host type.
func WithRebase(rebase func(t types.Type, children []types.Type) types.Type) Option {
	return func(o *options) { o.rebase = rebase }
}

// Context allocates labeled trees in an arena. Allocation is not
// synchronized: one Context, and every other Context sharing its arena,
// must be used from one goroutine at a time. Finished trees may be read
// concurrently.
type Context[L any] struct {
	arena  *allocator.Arena
	nodes  *allocator.Slab[Tree[L]]
	seqs   *allocator.Slab[*Tree[L]]
	opts   options
	warned map[types.TypeKind]bool
}

// NewContext binds a context for label type L to arena.
func NewContext[L any](arena *allocator.Arena, opts ...Option) *Context[L] {
	c := &Context[L]{
		arena:  arena,
		nodes:  allocator.NewSlab[Tree[L]](arena),
		seqs:   allocator.NewSlab[*Tree[L]](arena),
		warned: make(map[types.TypeKind]bool),
	}

	for _, opt := range opts {
		opt(&c.opts)
	}

	return c
}

// Arena returns the arena backing the context.
func (c *Context[L]) Arena() *allocator.Arena { return c.arena }

// Mk allocates one node. children must already be arena storage of a
// compatible scope, usually the result of MkSlice. Nothing is validated.
func (c *Context[L]) Mk(base types.Type, children []*Tree[L], label L) *Tree[L] {
	return c.nodes.Alloc(Tree[L]{
		base:     base,
		children: children,
		label:    label,
		scope:    c.arena.Scope(),
	})
}

// MkSlice copies items into one contiguous arena array. The empty list is
// returned as the shared empty sequence (nil) without allocating.
func (c *Context[L]) MkSlice(items []*Tree[L]) []*Tree[L] {
	return c.seqs.AllocSlice(items)
}

// Build labels t and, recursively, its structural children. fn is called
// exactly once per node, before the node's children are built.
func (c *Context[L]) Build(t types.Type, fn func(types.Type) L) (*Tree[L], error) {
	children, err := c.decompose(t)
	if err != nil {
		return nil, err
	}

	label := fn(t)

	if len(children) == 0 {
		return c.Mk(t, nil, label), nil
	}

	args := make([]*Tree[L], len(children))
	for i, child := range children {
		if args[i], err = c.Build(child, fn); err != nil {
			return nil, err
		}
	}

	return c.Mk(t, c.MkSlice(args), label), nil
}

// BuildMany builds each type in order.
func (c *Context[L]) BuildMany(ts []types.Type, fn func(types.Type) L) ([]*Tree[L], error) {
	out := make([]*Tree[L], len(ts))

	for i, t := range ts {
		lt, err := c.Build(t, fn)
		if err != nil {
			return nil, err
		}
		out[i] = lt
	}

	return c.MkSlice(out), nil
}

// MustBuild is Build for host types known to be well formed.
func (c *Context[L]) MustBuild(t types.Type, fn func(types.Type) L) *Tree[L] {
	lt, err := c.Build(t, fn)
	if err != nil {
		panic(err)
	}

	return lt
}

// MustBuildMany is BuildMany for host types known to be well formed.
func (c *Context[L]) MustBuildMany(ts []types.Type, fn func(types.Type) L) []*Tree[L] {
	out, err := c.BuildMany(ts, fn)
	if err != nil {
		panic(err)
	}

	return out
}

// decompose returns the children Build recurses into.
func (c *Context[L]) decompose(t types.Type) ([]types.Type, error) {
	kind := t.Kind()

	arity, ok := Policy(kind)
	if !ok {
		return nil, lterrors.UnsupportedKind(kind.String(), t.String())
	}

	switch arity {
	case ArityLeaf, ArityOpaque:
		return nil, nil
	case ArityHidden:
		if c.opts.strict {
			return nil, lterrors.UnsupportedKind(kind.String(), t.String())
		}
		c.warnHidden(t)

		return nil, nil
	case ArityOne:
		w, ok := t.(types.Wrapper)
		if !ok {
			return nil, lterrors.MalformedType(kind.String(), t.String(), "an element type")
		}

		return []types.Type{w.Elem()}, nil
	}

	// ArityMany: generic arguments, signature inputs then output, or
	// tuple elements.
	switch kind {
	case types.TypeKindAdt, types.TypeKindFnDef:
		g, ok := t.(types.Generic)
		if !ok {
			return nil, lterrors.MalformedType(kind.String(), t.String(), "type arguments")
		}

		return g.TypeArgs(), nil
	case types.TypeKindFnPtr:
		s, ok := t.(types.Signature)
		if !ok {
			return nil, lterrors.MalformedType(kind.String(), t.String(), "a signature")
		}

		out := make([]types.Type, 0, len(s.Inputs())+1)
		out = append(out, s.Inputs()...)

		return append(out, s.Output()), nil
	default:
		tu, ok := t.(types.Tupled)
		if !ok {
			return nil, lterrors.MalformedType(kind.String(), t.String(), "tuple elements")
		}

		return tu.Elems(), nil
	}
}

func (c *Context[L]) warnHidden(t types.Type) {
	if c.opts.logger == nil || c.warned[t.Kind()] {
		return
	}

	c.warned[t.Kind()] = true
	c.opts.logger.Printf("labeled: building %s (%s) as a leaf; nested types are not labeled", t, t.Kind())
}
