package types

import (
	"fmt"
	"strings"
	"sync"
)

// Context interns types so that structurally equal types share one handle.
// It is safe for concurrent use.
type Context struct {
	mu       sync.RWMutex
	interned map[string]Type
	nextVar  int

	unit  Type
	never Type
	err   Type
}

// NewContext creates a type context with the primitive types pre-interned.
func NewContext() *Context {
	c := &Context{interned: make(map[string]Type)}

	for _, b := range primitives {
		c.intern(b)
	}

	c.unit = c.intern(&Tuple{})
	c.never = c.lookupPrimitive("!")
	c.err = c.intern(Invalid{})

	return c
}

var primitives = []*Basic{
	{kind: TypeKindBool, name: "bool"},
	{kind: TypeKindChar, name: "char"},
	{kind: TypeKindInt, name: "i8", width: Width8},
	{kind: TypeKindInt, name: "i16", width: Width16},
	{kind: TypeKindInt, name: "i32", width: Width32},
	{kind: TypeKindInt, name: "i64", width: Width64},
	{kind: TypeKindInt, name: "i128", width: Width128},
	{kind: TypeKindInt, name: "isize", width: WidthSize},
	{kind: TypeKindUint, name: "u8", width: Width8},
	{kind: TypeKindUint, name: "u16", width: Width16},
	{kind: TypeKindUint, name: "u32", width: Width32},
	{kind: TypeKindUint, name: "u64", width: Width64},
	{kind: TypeKindUint, name: "u128", width: Width128},
	{kind: TypeKindUint, name: "usize", width: WidthSize},
	{kind: TypeKindFloat, name: "f32", width: Width32},
	{kind: TypeKindFloat, name: "f64", width: Width64},
	{kind: TypeKindStr, name: "str"},
	{kind: TypeKindNever, name: "!"},
}

// aliases accepted by Primitive in addition to the canonical names.
var primitiveAliases = map[string]string{
	"int8":    "i8",
	"int16":   "i16",
	"int32":   "i32",
	"int64":   "i64",
	"uint8":   "u8",
	"uint16":  "u16",
	"uint32":  "u32",
	"uint64":  "u64",
	"float32": "f32",
	"float64": "f64",
	"never":   "!",
}

// key encodes t structurally. Children are encoded by their own keys, so
// parameters that print alike but have different indices stay distinct.
func key(t Type) string {
	var b strings.Builder
	writeKey(&b, t)

	return b.String()
}

func writeKey(b *strings.Builder, t Type) {
	fmt.Fprintf(b, "%d", t.Kind())

	switch v := t.(type) {
	case *Param:
		fmt.Fprintf(b, "#%d:%s", v.index, v.name)
		return
	case *Infer:
		fmt.Fprintf(b, "#%d", v.id)
		return
	case *Pointer:
		fmt.Fprintf(b, "m%t", v.mutable)
	case *Reference:
		fmt.Fprintf(b, "m%t", v.mutable)
	case *Array:
		fmt.Fprintf(b, "n%d", v.length)
	case *Adt:
		b.WriteString(":" + v.name)
	case *FnDef:
		b.WriteString(":" + v.name)
	case *Basic, *Dynamic, *Closure, *Projection, *Opaque, Invalid:
		b.WriteString(":" + t.String())
		return
	}

	children, _ := Children(t)
	b.WriteByte('(')
	for i, child := range children {
		if i > 0 {
			b.WriteByte(',')
		}
		writeKey(b, child)
	}
	b.WriteByte(')')
}

func (c *Context) intern(t Type) Type {
	k := key(t)

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.interned[k]; ok {
		return existing
	}

	c.interned[k] = t

	return t
}

func (c *Context) lookupPrimitive(name string) Type {
	for _, b := range primitives {
		if b.name == name {
			return c.intern(b)
		}
	}

	return nil
}

// Len returns the number of interned types.
func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.interned)
}

// ====== Constructors ======

// Primitive returns the atomic type with the given name, accepting both
// canonical names (i32) and long names (int32).
func (c *Context) Primitive(name string) (Type, bool) {
	if alias, ok := primitiveAliases[name]; ok {
		name = alias
	}

	t := c.lookupPrimitive(name)

	return t, t != nil
}

func (c *Context) mustPrimitive(name string) Type {
	t, ok := c.Primitive(name)
	if !ok {
		panic("types: missing primitive " + name)
	}

	return t
}

func (c *Context) Bool() Type  { return c.mustPrimitive("bool") }
func (c *Context) Char() Type  { return c.mustPrimitive("char") }
func (c *Context) Str() Type   { return c.mustPrimitive("str") }
func (c *Context) Never() Type { return c.never }
func (c *Context) Unit() Type  { return c.unit }
func (c *Context) Error() Type { return c.err }

// Int returns the signed integer type of the given width.
func (c *Context) Int(w Width) Type { return c.numeric(TypeKindInt, w) }

// Uint returns the unsigned integer type of the given width.
func (c *Context) Uint(w Width) Type { return c.numeric(TypeKindUint, w) }

// Float returns the floating point type of the given width.
func (c *Context) Float(w Width) Type { return c.numeric(TypeKindFloat, w) }

func (c *Context) numeric(kind TypeKind, w Width) Type {
	for _, b := range primitives {
		if b.kind == kind && b.width == w {
			return c.intern(b)
		}
	}

	panic(fmt.Sprintf("types: no %s primitive of width %d", kind, w))
}

func (c *Context) RawPtr(elem Type, mutable bool) Type {
	return c.intern(&Pointer{elem: elem, mutable: mutable})
}

func (c *Context) Ref(elem Type, mutable bool) Type {
	return c.intern(&Reference{elem: elem, mutable: mutable})
}

func (c *Context) Array(elem Type, length int) Type {
	return c.intern(&Array{elem: elem, length: length})
}

func (c *Context) Slice(elem Type) Type {
	return c.intern(&Slice{elem: elem})
}

// Adt returns the nominal type name applied to args.
func (c *Context) Adt(name string, args ...Type) Type {
	return c.intern(&Adt{name: name, args: cloneTypes(args)})
}

// FnDef returns the item type of function name instantiated with args.
func (c *Context) FnDef(name string, args ...Type) Type {
	return c.intern(&FnDef{name: name, args: cloneTypes(args)})
}

// FnPtr returns a function pointer type. A nil output means unit.
func (c *Context) FnPtr(inputs []Type, output Type) Type {
	if output == nil {
		output = c.unit
	}

	return c.intern(&FnPtr{inputs: cloneTypes(inputs), output: output})
}

func (c *Context) Tuple(elems ...Type) Type {
	if len(elems) == 0 {
		return c.unit
	}

	return c.intern(&Tuple{elems: cloneTypes(elems)})
}

func (c *Context) Dynamic(trait string) Type {
	return c.intern(&Dynamic{trait: trait})
}

func (c *Context) Closure(id int) Type {
	return c.intern(&Closure{id: id})
}

func (c *Context) Projection(path string) Type {
	return c.intern(&Projection{path: path})
}

func (c *Context) Opaque(bound string) Type {
	return c.intern(&Opaque{bound: bound})
}

// Param returns the placeholder for type parameter index. name is used for
// display only.
func (c *Context) Param(index int, name string) Type {
	return c.intern(&Param{index: index, name: name})
}

// Infer returns a fresh inference variable.
func (c *Context) Infer() Type {
	c.mu.Lock()
	id := c.nextVar
	c.nextVar++
	c.mu.Unlock()

	return c.intern(&Infer{id: id})
}

func cloneTypes(ts []Type) []Type {
	if len(ts) == 0 {
		return nil
	}

	out := make([]Type, len(ts))
	copy(out, ts)

	return out
}

// Rebuild returns the type with t's head and the given structural children,
// in the order Children reports them. Types without children, and child
// lists of the wrong length, return t unchanged.
func (c *Context) Rebuild(t Type, children []Type) Type {
	current, ok := Children(t)
	if !ok || len(current) == 0 || len(current) != len(children) {
		return t
	}

	switch v := t.(type) {
	case *Pointer:
		return c.RawPtr(children[0], v.mutable)
	case *Reference:
		return c.Ref(children[0], v.mutable)
	case *Array:
		return c.Array(children[0], v.length)
	case *Slice:
		return c.Slice(children[0])
	case *Adt:
		return c.Adt(v.name, children...)
	case *FnDef:
		return c.FnDef(v.name, children...)
	case *FnPtr:
		n := len(children) - 1
		return c.FnPtr(children[:n], children[n])
	case *Tuple:
		return c.Tuple(children...)
	}

	return t
}

// Instantiate replaces each placeholder $i in t with args[i]. Placeholders
// without a matching argument are kept.
func (c *Context) Instantiate(t Type, args []Type) Type {
	if len(args) == 0 {
		return t
	}

	if p, ok := t.(*Param); ok {
		if p.index < len(args) {
			return args[p.index]
		}
		return t
	}

	children, ok := Children(t)
	if !ok || len(children) == 0 {
		return t
	}

	out := make([]Type, len(children))
	changed := false
	for i, child := range children {
		out[i] = c.Instantiate(child, args)
		changed = changed || out[i] != child
	}

	if !changed {
		return t
	}

	return c.Rebuild(t, out)
}
