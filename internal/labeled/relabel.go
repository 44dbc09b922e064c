package labeled

// Relabel builds, in dst, a tree with the shape and host types of t whose
// labels are fn applied to t's labels. fn is called once per distinct node,
// not once per occurrence: a subtree reachable along several paths is
// labeled once and stays shared in the result, so fn must be pure.
// Relabeling a tree whose arena was reset panics with STALE_REFERENCE.
func Relabel[L1, L2 any](dst *Context[L2], t *Tree[L1], fn func(L1) L2) *Tree[L2] {
	r := relabeler[L1, L2]{dst: dst, fn: fn, memo: make(map[*Tree[L1]]*Tree[L2])}

	return r.tree(t)
}

// RelabelSlice relabels each tree in order.
func RelabelSlice[L1, L2 any](dst *Context[L2], ts []*Tree[L1], fn func(L1) L2) []*Tree[L2] {
	r := relabeler[L1, L2]{dst: dst, fn: fn, memo: make(map[*Tree[L1]]*Tree[L2])}

	return r.slice(ts)
}

type relabeler[L1, L2 any] struct {
	dst  *Context[L2]
	fn   func(L1) L2
	memo map[*Tree[L1]]*Tree[L2]
}

func (r *relabeler[L1, L2]) tree(t *Tree[L1]) *Tree[L2] {
	if done, ok := r.memo[t]; ok {
		return done
	}

	if !t.Live() {
		panic(staleError("relabel", t.scope))
	}

	children := r.slice(t.children)
	out := r.dst.Mk(t.base, children, r.fn(t.label))
	r.memo[t] = out

	return out
}

func (r *relabeler[L1, L2]) slice(ts []*Tree[L1]) []*Tree[L2] {
	if len(ts) == 0 {
		return nil
	}

	out := make([]*Tree[L2], len(ts))
	for i, t := range ts {
		out[i] = r.tree(t)
	}

	return r.dst.MkSlice(out)
}
