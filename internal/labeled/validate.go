package labeled

import (
	"fmt"

	lterrors "github.com/orizon-lang/lty/internal/errors"
	"github.com/orizon-lang/lty/internal/types"
)

// Equal reports whether a and b are structurally equal: same host type,
// labels equal under eq, and equal children in the same order. Shared
// subtrees compare equal without being walked.
func Equal[L any](a, b *Tree[L], eq func(x, y L) bool) bool {
	if a == b {
		return true
	}

	if a == nil || b == nil {
		return false
	}

	if !sameBase(a.base, b.base) || len(a.children) != len(b.children) || !eq(a.label, b.label) {
		return false
	}

	for i := range a.children {
		if !Equal(a.children[i], b.children[i], eq) {
			return false
		}
	}

	return true
}

// EqualComparable is Equal with == on labels.
func EqualComparable[L comparable](a, b *Tree[L]) bool {
	return Equal(a, b, func(x, y L) bool { return x == y })
}

// sameBase compares host handles. Interned hosts compare by identity; other
// hosts fall back to their head and rendering.
func sameBase(a, b types.Type) bool {
	if a == b {
		return true
	}

	return types.SameHead(a, b) && a.String() == b.String()
}

// Validate checks the invariants of a tree: every node is live, shares the
// root's arena scope, and has the number of children its host kind calls
// for.
func Validate[L any](t *Tree[L]) error {
	return validate(t, t)
}

func validate[L any](root, t *Tree[L]) error {
	if !t.Live() {
		return staleError("validate", t.scope)
	}

	if !t.scope.Same(root.scope) {
		return lterrors.ScopeMismatch(fmt.Sprintf("%s is in %s, root is in %s", t.base, t.scope, root.scope))
	}

	want, err := expectedChildren(t.base)
	if err != nil {
		return err
	}

	if len(t.children) != want {
		return lterrors.Arity(t.base.String(), len(t.children), want)
	}

	for _, child := range t.children {
		if err := validate(root, child); err != nil {
			return err
		}
	}

	return nil
}

func expectedChildren(t types.Type) (int, error) {
	arity, ok := Policy(t.Kind())
	if !ok {
		return 0, lterrors.UnsupportedKind(t.Kind().String(), t.String())
	}

	switch arity {
	case ArityOne:
		return 1, nil
	case ArityMany:
		children, ok := types.Children(t)
		if !ok {
			return 0, lterrors.MalformedType(t.Kind().String(), t.String(), "children")
		}

		return len(children), nil
	default:
		return 0, nil
	}
}
