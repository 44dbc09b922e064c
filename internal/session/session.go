// Package session holds the state shared by the lty tools: a catalogue, an
// arena with a string-labeled tree context over it, and the optional
// interner.
package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/orizon-lang/lty/internal/allocator"
	"github.com/orizon-lang/lty/internal/catalog"
	"github.com/orizon-lang/lty/internal/cli"
	"github.com/orizon-lang/lty/internal/config"
	"github.com/orizon-lang/lty/internal/labeled"
	"github.com/orizon-lang/lty/internal/types"
)

// Mode selects how nodes are labeled.
type Mode string

// Labeling modes.
const (
	// ModeKind labels a node with its display name, e.g. Pair or int32.
	ModeKind Mode = "kind"
	// ModeType labels a node with its full host type.
	ModeType  Mode = "type"
	ModeDepth Mode = "depth"
	// ModeIndex numbers nodes in pre-order.
	ModeIndex Mode = "index"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeKind, ModeType, ModeDepth, ModeIndex:
		return m, nil
	default:
		return "", fmt.Errorf("unknown label mode %q (want kind, type, depth or index)", s)
	}
}

// Session builds labeled trees for catalogue entries.
type Session struct {
	Catalog *catalog.Catalog

	arena    *allocator.Arena
	ctx      *labeled.Context[string]
	interner *labeled.Interner[string]
	opts     []labeled.Option
	log      *cli.Logger
}

// New creates a session over cat configured by cfg.
func New(cfg *config.Config, cat *catalog.Catalog, log *cli.Logger) (*Session, error) {
	arena, err := allocator.NewArena(cfg.ArenaOptions("lty")...)
	if err != nil {
		return nil, err
	}

	opts := append(cfg.ContextOptions(),
		labeled.WithLogger(log.Std()),
		labeled.WithRebase(cat.Context().Rebuild),
	)

	s := &Session{
		Catalog: cat,
		arena:   arena,
		ctx:     labeled.NewContext[string](arena, opts...),
		opts:    opts,
		log:     log,
	}

	if cfg.ShareCache > 0 {
		s.interner, err = labeled.NewInterner(s.ctx, cfg.ShareCache)
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Context returns the tree context of the current session.
func (s *Session) Context() *labeled.Context[string] { return s.ctx }

// Build labels t according to mode.
func (s *Session) Build(t types.Type, mode Mode) (*labeled.Tree[string], error) {
	var (
		tree *labeled.Tree[string]
		err  error
	)

	switch mode {
	case ModeKind:
		tree, err = s.ctx.Build(t, types.DisplayName)
	case ModeType:
		tree, err = s.ctx.Build(t, types.Type.String)
	case ModeIndex:
		n := 0
		tree, err = s.ctx.Build(t, func(types.Type) string {
			n++
			return strconv.Itoa(n - 1)
		})
	case ModeDepth:
		tree, err = s.buildDepth(t)
	default:
		return nil, fmt.Errorf("unknown label mode %q", mode)
	}

	if err != nil {
		return nil, err
	}

	s.log.Debug("built %s: %d nodes, depth %d", t, tree.Count(), tree.Depth())

	if s.interner != nil {
		tree = s.interner.Intern(tree)
	}

	return tree, nil
}

// buildDepth numbers nodes in pre-order, measures each node's depth, then
// relabels the numbered tree with those depths.
func (s *Session) buildDepth(t types.Type) (*labeled.Tree[string], error) {
	n := 0
	numbered, err := labeled.NewContext[int](s.arena, s.opts...).Build(t, func(types.Type) int {
		n++
		return n - 1
	})
	if err != nil {
		return nil, err
	}

	depths := make([]int, n)
	var walk func(t *labeled.Tree[int], depth int)
	walk = func(t *labeled.Tree[int], depth int) {
		depths[t.Label()] = depth
		for _, child := range t.Children() {
			walk(child, depth+1)
		}
	}
	walk(numbered, 0)

	return labeled.Relabel(s.ctx, numbered, func(i int) string {
		return strconv.Itoa(depths[i])
	}), nil
}

// Resolve resolves each source through the catalogue.
func (s *Session) Resolve(srcs []string) ([]types.Type, error) {
	out := make([]types.Type, 0, len(srcs))
	for _, src := range srcs {
		t, err := s.Catalog.Resolve(strings.TrimSpace(src))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src, err)
		}
		out = append(out, t)
	}

	return out, nil
}

// Substitute builds the argument types with mode and substitutes them
// into t.
func (s *Session) Substitute(t *labeled.Tree[string], args []types.Type, mode Mode) (*labeled.Tree[string], error) {
	trees := make([]*labeled.Tree[string], len(args))
	for i, arg := range args {
		tree, err := s.Build(arg, mode)
		if err != nil {
			return nil, err
		}
		trees[i] = tree
	}

	out, err := s.ctx.Substitute(t, trees)
	if err != nil {
		return nil, err
	}

	if s.interner != nil {
		out = s.interner.Intern(out)
	}

	return out, nil
}

// Reset releases every tree built so far.
func (s *Session) Reset() {
	s.arena.Reset()
	if s.interner != nil {
		s.interner.Purge()
	}
	s.log.Info("arena reset, generation %d", s.arena.Generation())
}

// Stats describes arena usage and, when sharing is on, the interner.
func (s *Session) Stats() string {
	out := cli.FormatStats(s.arena.Stats())
	if s.interner != nil {
		out += "\n" + cli.FormatSharing(s.interner.Stats())
	}

	return out
}

// Outline renders t one node per line, children indented under their
// parent. Nodes built as leaves for hidden-structure kinds are marked.
func Outline(t *labeled.Tree[string]) string {
	var b strings.Builder
	outline(&b, t, 0)

	return b.String()
}

func outline(b *strings.Builder, t *labeled.Tree[string], depth int) {
	fmt.Fprintf(b, "%s%s  %s", strings.Repeat("  ", depth), t.Label(), t.Base())
	if t.Unsupported() {
		b.WriteString("  (opaque)")
	}
	b.WriteByte('\n')

	for _, child := range t.Children() {
		outline(b, child, depth+1)
	}
}
