package typemap_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orizon-lang/lty/internal/allocator"
	lterrors "github.com/orizon-lang/lty/internal/errors"
	"github.com/orizon-lang/lty/internal/labeled"
	"github.com/orizon-lang/lty/internal/typemap"
	"github.com/orizon-lang/lty/internal/types"
)

// TestMatch tests placeholder binding against host shapes.
func TestMatch(t *testing.T) {
	tcx := types.NewContext()

	t.Run("BindsPlaceholders", func(t *testing.T) {
		pattern := typemap.Host(tcx.MustParse("Map<K, Vec<V>>", "K", "V"))
		target := typemap.Host(tcx.MustParse("Map<str, Vec<(u8, bool)>>"))

		b, ok := typemap.Match(pattern, target)
		require.True(t, ok)
		require.Len(t, b, 2)
		assert.Equal(t, "str", b[0].Host().String())
		assert.Equal(t, "(u8, bool)", b[1].Host().String())
	})

	t.Run("HeadMismatch", func(t *testing.T) {
		pattern := typemap.Host(tcx.MustParse("Vec<T>", "T"))
		target := typemap.Host(tcx.MustParse("Option<u8>"))

		_, ok := typemap.Match(pattern, target)
		assert.False(t, ok)
	})

	t.Run("RepeatedPlaceholder", func(t *testing.T) {
		pattern := typemap.Host(tcx.MustParse("(T, T)", "T"))

		_, ok := typemap.Match(pattern, typemap.Host(tcx.MustParse("(u8, u8)")))
		assert.True(t, ok)

		_, ok = typemap.Match(pattern, typemap.Host(tcx.MustParse("(u8, i8)")))
		assert.False(t, ok)
	})

	t.Run("LabeledTarget", func(t *testing.T) {
		arena := allocator.MustNewArena(allocator.WithName(t.Name()))
		lcx := labeled.NewContext[int](arena)

		tree, err := lcx.Build(tcx.MustParse("Result<&str, i32>"), func(types.Type) int { return 0 })
		require.NoError(t, err)

		b, ok := typemap.Match(typemap.Host(tcx.MustParse("Result<&T, E>", "T", "E")), tree)
		require.True(t, ok)
		assert.Same(t, tree.Child(0).Child(0), b[0])
		assert.Same(t, tree.Child(1), b[1])
	})
}

// TestSame tests head-by-head structural comparison.
func TestSame(t *testing.T) {
	tcx := types.NewContext()

	assert.True(t, typemap.Same(
		typemap.Host(tcx.MustParse("[&mut u8; 4]")),
		typemap.Host(tcx.MustParse("[&mut u8; 4]")),
	))
	assert.False(t, typemap.Same(
		typemap.Host(tcx.MustParse("[&mut u8; 4]")),
		typemap.Host(tcx.MustParse("[&u8; 4]")),
	))
	assert.False(t, typemap.Same(
		typemap.Host(tcx.MustParse("[u8; 4]")),
		typemap.Host(tcx.MustParse("[u8; 8]")),
	))
}

// TestZip tests parallel traversal of two shapes.
func TestZip(t *testing.T) {
	tcx := types.NewContext()

	t.Run("VisitsPairs", func(t *testing.T) {
		var pairs []string
		err := typemap.Zip(
			typemap.Host(tcx.MustParse("(u8, Vec<bool>)")),
			typemap.Host(tcx.MustParse("(i8, Vec<char>)")),
			func(a, b typemap.Shape) bool {
				pairs = append(pairs, a.Host().String()+"~"+b.Host().String())
				return true
			},
		)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"(u8, Vec<bool>)~(i8, Vec<char>)",
			"u8~i8",
			"Vec<bool>~Vec<char>",
			"bool~char",
		}, pairs)
	})

	t.Run("Prune", func(t *testing.T) {
		visits := 0
		err := typemap.Zip(
			typemap.Host(tcx.MustParse("Vec<(u8, u8)>")),
			typemap.Host(tcx.MustParse("Vec<u8>")),
			func(a, b typemap.Shape) bool {
				visits++
				return false
			},
		)
		require.NoError(t, err)
		assert.Equal(t, 1, visits)
	})

	t.Run("ArityMismatch", func(t *testing.T) {
		err := typemap.Zip(
			typemap.Host(tcx.MustParse("(u8, u8)")),
			typemap.Host(tcx.MustParse("(u8, u8, u8)")),
			func(a, b typemap.Shape) bool { return true },
		)
		require.Error(t, err)
		assert.True(t, errors.Is(err, lterrors.ErrArity))
	})
}

// TestCount tests node counting over hosts and labeled trees alike.
func TestCount(t *testing.T) {
	tcx := types.NewContext()
	ty := tcx.MustParse("fn(&str, [u8]) -> Option<u8>")

	assert.Equal(t, 7, typemap.Count(typemap.Host(ty)))

	arena := allocator.MustNewArena(allocator.WithName(t.Name()))
	lcx := labeled.NewContext[string](arena)
	tree, err := lcx.Build(ty, types.DisplayName)
	require.NoError(t, err)

	assert.Equal(t, typemap.Count(typemap.Host(ty)), typemap.Count(tree))
	assert.Equal(t, tree.Count(), typemap.Count(tree))
}
