package types

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lterrors "github.com/orizon-lang/lty/internal/errors"
)

// TestContextInterning tests that structurally equal types share a handle.
func TestContextInterning(t *testing.T) {
	ctx := NewContext()

	t.Run("Primitives", func(t *testing.T) {
		i32, ok := ctx.Primitive("i32")
		require.True(t, ok)
		long, ok := ctx.Primitive("int32")
		require.True(t, ok)
		assert.Same(t, i32, long)
		assert.Same(t, i32, ctx.Int(Width32))
		assert.Equal(t, TypeKindInt, i32.Kind())

		_, ok = ctx.Primitive("i33")
		assert.False(t, ok)
	})

	t.Run("Composite", func(t *testing.T) {
		a := ctx.Adt("Pair", ctx.Bool(), ctx.Int(Width32))
		b := ctx.Adt("Pair", ctx.Bool(), ctx.Int(Width32))
		c := ctx.Adt("Pair", ctx.Int(Width32), ctx.Bool())
		assert.Same(t, a, b)
		assert.NotSame(t, a, c)
	})

	t.Run("ParamsWithSameNameStayDistinct", func(t *testing.T) {
		a := ctx.Adt("Box", ctx.Param(0, "T"))
		b := ctx.Adt("Box", ctx.Param(1, "T"))
		assert.NotSame(t, a, b)
		assert.Equal(t, a.String(), b.String())
	})

	t.Run("Mutability", func(t *testing.T) {
		assert.NotSame(t, ctx.Ref(ctx.Str(), false), ctx.Ref(ctx.Str(), true))
		assert.NotSame(t, ctx.RawPtr(ctx.Str(), false), ctx.RawPtr(ctx.Str(), true))
	})

	t.Run("InferIsFresh", func(t *testing.T) {
		assert.NotSame(t, ctx.Infer(), ctx.Infer())
	})

	t.Run("EmptyTupleIsUnit", func(t *testing.T) {
		assert.Same(t, ctx.Unit(), ctx.Tuple())
		assert.Equal(t, "()", ctx.Unit().String())
	})
}

// TestChildren tests the structural decomposition of each kind.
func TestChildren(t *testing.T) {
	ctx := NewContext()
	i32 := ctx.Int(Width32)
	b := ctx.Bool()

	tests := []struct {
		name string
		typ  Type
		want []Type
	}{
		{"bool", b, nil},
		{"never", ctx.Never(), nil},
		{"rawptr", ctx.RawPtr(i32, true), []Type{i32}},
		{"ref", ctx.Ref(b, false), []Type{b}},
		{"array", ctx.Array(b, 4), []Type{b}},
		{"slice", ctx.Slice(i32), []Type{i32}},
		{"adt", ctx.Adt("Pair", b, i32), []Type{b, i32}},
		{"fndef", ctx.FnDef("id", i32), []Type{i32}},
		{"fnptr", ctx.FnPtr([]Type{b, b}, i32), []Type{b, b, i32}},
		{"fnptr unit", ctx.FnPtr(nil, nil), []Type{ctx.Unit()}},
		{"tuple", ctx.Tuple(i32, b), []Type{i32, b}},
		{"dyn", ctx.Dynamic("Display"), nil},
		{"param", ctx.Param(0, "T"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Children(tt.typ)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestParse tests the type expression grammar.
func TestParse(t *testing.T) {
	ctx := NewContext()

	t.Run("RoundTrip", func(t *testing.T) {
		inputs := []string{
			"bool", "char", "i8", "u128", "isize", "f64", "str", "!",
			"*const i32", "*mut u8", "&str", "&mut [u8]",
			"[bool; 4]", "[i32]",
			"()", "(i32,)", "(i32, bool)",
			"fn(i32, bool) -> str", "fn() -> ()",
			"fn swap<i32, bool>",
			"Pair<bool, i32>", "Vec<Vec<i32>>", "std::rc::Rc<str>",
			"$0", "dyn Display", "impl Iterator", "proj Iterator::Item",
			"closure#3", "{error}", "Unit",
		}

		for _, in := range inputs {
			typ, err := ctx.Parse(in)
			require.NoError(t, err, in)
			assert.Equal(t, in, typ.String())
		}
	})

	t.Run("Kinds", func(t *testing.T) {
		cases := map[string]TypeKind{
			"bool":           TypeKindBool,
			"&i32":           TypeKindRef,
			"fn(i32) -> i32": TypeKindFnPtr,
			"fn id<i32>":     TypeKindFnDef,
			"Option<u8>":     TypeKindAdt,
			"_":              TypeKindInfer,
			"impl Fn":        TypeKindOpaque,
		}

		for in, want := range cases {
			typ, err := ctx.Parse(in)
			require.NoError(t, err, in)
			assert.Equal(t, want, typ.Kind(), in)
		}
	})

	t.Run("NamedParams", func(t *testing.T) {
		typ, err := ctx.Parse("Map<K, Vec<V>>", "K", "V")
		require.NoError(t, err)

		adt := typ.(*Adt)
		k := adt.TypeArgs()[0].(Placeholder)
		assert.Equal(t, 0, k.Index())
		v := adt.TypeArgs()[1].(*Adt).TypeArgs()[0].(Placeholder)
		assert.Equal(t, 1, v.Index())
	})

	t.Run("FnPtrDefaultsToUnit", func(t *testing.T) {
		typ := ctx.MustParse("fn(i32)")
		assert.Same(t, ctx.Unit(), typ.(Signature).Output())
	})

	t.Run("Errors", func(t *testing.T) {
		bad := []string{"", "Pair<bool", "*i32", "[i32; x]", "i32 i32", "dyn", "closure#", "{oops}", "fn(i32"}

		for _, in := range bad {
			_, err := ctx.Parse(in)
			require.Error(t, err, in)
			assert.True(t, stderrors.Is(err, lterrors.ErrParse), in)
		}
	})
}

// TestParseWith tests alias expansion during parsing.
func TestParseWith(t *testing.T) {
	ctx := NewContext()

	aliases := map[string]*Alias{
		"Ints":     {Type: ctx.MustParse("Pair<i32, i64>")},
		"Callback": {Type: ctx.MustParse("fn(&T) -> Result<T, str>", "T"), Params: 1},
	}
	lookup := func(name string) (*Alias, error) { return aliases[name], nil }

	t.Run("Expands", func(t *testing.T) {
		typ, err := ctx.ParseWith("(&Ints, Vec<Ints>)", lookup)
		require.NoError(t, err)
		assert.Equal(t, "(&Pair<i32, i64>, Vec<Pair<i32, i64>>)", typ.String())

		ref := typ.(*Tuple).Elems()[0].(*Reference)
		assert.Same(t, aliases["Ints"].Type, ref.Elem())
	})

	t.Run("Instantiates", func(t *testing.T) {
		typ, err := ctx.ParseWith("Callback<u8>", lookup)
		require.NoError(t, err)
		assert.Same(t, ctx.MustParse("fn(&u8) -> Result<u8, str>"), typ)
	})

	t.Run("ParamsShadowAliases", func(t *testing.T) {
		typ, err := ctx.ParseWith("Vec<Ints>", lookup, "Ints")
		require.NoError(t, err)
		assert.Equal(t, "Vec<Ints>", typ.String())
		assert.Equal(t, TypeKindParam, typ.(*Adt).TypeArgs()[0].Kind())
	})

	t.Run("Arity", func(t *testing.T) {
		for _, in := range []string{"Ints<u8>", "&Callback", "Callback<u8, u8>"} {
			_, err := ctx.ParseWith(in, lookup)
			assert.True(t, stderrors.Is(err, lterrors.ErrArity), "%s: %v", in, err)
		}
	})

	t.Run("LookupError", func(t *testing.T) {
		failing := func(string) (*Alias, error) { return nil, stderrors.New("cycle") }
		_, err := ctx.ParseWith("Vec<Loop>", failing)
		assert.EqualError(t, err, "cycle")

		_, err = ctx.ParseWith("Vec<u8>", failing)
		assert.EqualError(t, err, "cycle")
	})
}

// TestInstantiate tests placeholder replacement.
func TestInstantiate(t *testing.T) {
	ctx := NewContext()
	generic := ctx.MustParse("(A, [B; 2], $2)", "A", "B")

	got := ctx.Instantiate(generic, []Type{ctx.Bool(), ctx.Str()})
	assert.Same(t, ctx.MustParse("(bool, [str; 2], $2)"), got)

	assert.Same(t, generic, ctx.Instantiate(generic, nil))

	closed := ctx.MustParse("Vec<u8>")
	assert.Same(t, closed, ctx.Instantiate(closed, []Type{ctx.Bool()}))
}

// TestDisplayName tests head names used as labels.
func TestDisplayName(t *testing.T) {
	ctx := NewContext()

	assert.Equal(t, "int32", DisplayName(ctx.Int(Width32)))
	assert.Equal(t, "uintsize", DisplayName(ctx.Uint(WidthSize)))
	assert.Equal(t, "float64", DisplayName(ctx.Float(Width64)))
	assert.Equal(t, "bool", DisplayName(ctx.Bool()))
	assert.Equal(t, "never", DisplayName(ctx.Never()))
	assert.Equal(t, "Pair", DisplayName(ctx.Adt("Pair", ctx.Bool())))
	assert.Equal(t, "slice", DisplayName(ctx.Slice(ctx.Bool())))
	assert.Equal(t, "$2", DisplayName(ctx.Param(2, "")))
}

// TestKindCatalogue tests kind names.
func TestKindCatalogue(t *testing.T) {
	kinds := AllKinds()
	assert.Len(t, kinds, int(TypeKindError))

	seen := make(map[string]bool)
	for _, k := range kinds {
		assert.True(t, k.Known())
		assert.NotEqual(t, "invalid", k.String())
		assert.False(t, seen[k.String()], "duplicate name %s", k)
		seen[k.String()] = true
	}

	assert.False(t, TypeKindInvalid.Known())
	assert.False(t, TypeKind(999).Known())
}
