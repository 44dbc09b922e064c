package types

import (
	"fmt"
	"strings"
)

// ====== Handles ======

// Type is an opaque handle into the host type system.
type Type interface {
	Kind() TypeKind
	String() string
}

// Wrapper is implemented by raw pointer, reference, array and slice types.
type Wrapper interface {
	Type
	Elem() Type
}

// Generic is implemented by ADTs and function items.
type Generic interface {
	Type
	TypeArgs() []Type
}

// Signature is implemented by function pointer types.
type Signature interface {
	Type
	Inputs() []Type
	Output() Type
}

// Tupled is implemented by tuple types.
type Tupled interface {
	Type
	Elems() []Type
}

// Placeholder is implemented by type parameters.
type Placeholder interface {
	Type
	Index() int
}

// ====== Primitive Types ======

// Basic represents an atomic type.
type Basic struct {
	kind  TypeKind
	name  string
	width Width
}

func (b *Basic) Kind() TypeKind { return b.kind }
func (b *Basic) String() string { return b.name }

// Width returns the bit width of numeric primitives and 0 otherwise.
func (b *Basic) Width() Width { return b.width }

// ====== Wrapper Types ======

// Pointer represents a raw pointer type.
type Pointer struct {
	elem    Type
	mutable bool
}

func (p *Pointer) Kind() TypeKind { return TypeKindRawPtr }
func (p *Pointer) Elem() Type     { return p.elem }
func (p *Pointer) Mutable() bool  { return p.mutable }

func (p *Pointer) String() string {
	if p.mutable {
		return "*mut " + p.elem.String()
	}

	return "*const " + p.elem.String()
}

// Reference represents a borrowed reference type.
type Reference struct {
	elem    Type
	mutable bool
}

func (r *Reference) Kind() TypeKind { return TypeKindRef }
func (r *Reference) Elem() Type     { return r.elem }
func (r *Reference) Mutable() bool  { return r.mutable }

func (r *Reference) String() string {
	if r.mutable {
		return "&mut " + r.elem.String()
	}

	return "&" + r.elem.String()
}

// Array represents a fixed-size array type
type Array struct {
	elem   Type
	length int
}

func (a *Array) Kind() TypeKind { return TypeKindArray }
func (a *Array) Elem() Type     { return a.elem }
func (a *Array) Len() int       { return a.length }
func (a *Array) String() string { return fmt.Sprintf("[%s; %d]", a.elem, a.length) }

// Slice represents a dynamically sized slice type
type Slice struct {
	elem Type
}

func (s *Slice) Kind() TypeKind { return TypeKindSlice }
func (s *Slice) Elem() Type     { return s.elem }
func (s *Slice) String() string { return "[" + s.elem.String() + "]" }

// ====== Multi-argument Types ======

// Adt represents a nominal algebraic type applied to its generic arguments.
type Adt struct {
	name string
	args []Type
}

func (a *Adt) Kind() TypeKind   { return TypeKindAdt }
func (a *Adt) Name() string     { return a.name }
func (a *Adt) TypeArgs() []Type { return a.args }
func (a *Adt) String() string   { return a.name + angleList(a.args) }

// FnDef represents the zero-sized type of a named function item.
type FnDef struct {
	name string
	args []Type
}

func (f *FnDef) Kind() TypeKind   { return TypeKindFnDef }
func (f *FnDef) Name() string     { return f.name }
func (f *FnDef) TypeArgs() []Type { return f.args }
func (f *FnDef) String() string   { return "fn " + f.name + angleList(f.args) }

// FnPtr represents a function pointer signature.
type FnPtr struct {
	inputs []Type
	output Type
}

func (f *FnPtr) Kind() TypeKind { return TypeKindFnPtr }
func (f *FnPtr) Inputs() []Type { return f.inputs }
func (f *FnPtr) Output() Type   { return f.output }

func (f *FnPtr) String() string {
	return "fn(" + joinTypes(f.inputs) + ") -> " + f.output.String()
}

// Tuple represents a tuple type. The empty tuple is the unit type.
type Tuple struct {
	elems []Type
}

func (t *Tuple) Kind() TypeKind { return TypeKindTuple }
func (t *Tuple) Elems() []Type  { return t.elems }

func (t *Tuple) String() string {
	if len(t.elems) == 1 {
		return "(" + t.elems[0].String() + ",)"
	}

	return "(" + joinTypes(t.elems) + ")"
}

// ====== Opaque Types ======

// Dynamic represents a trait object.
type Dynamic struct{ trait string }

func (d *Dynamic) Kind() TypeKind { return TypeKindDynamic }
func (d *Dynamic) String() string { return "dyn " + d.trait }

// Closure represents a closure type identified by its definition number.
type Closure struct{ id int }

func (c *Closure) Kind() TypeKind { return TypeKindClosure }
func (c *Closure) String() string { return fmt.Sprintf("closure#%d", c.id) }

// Projection represents an associated type projection.
type Projection struct{ path string }

func (p *Projection) Kind() TypeKind { return TypeKindProjection }
func (p *Projection) String() string { return "proj " + p.path }

// Opaque represents an anonymous `impl Trait` type.
type Opaque struct{ bound string }

func (o *Opaque) Kind() TypeKind { return TypeKindOpaque }
func (o *Opaque) String() string { return "impl " + o.bound }

// Infer represents an unresolved inference variable.
type Infer struct{ id int }

func (i *Infer) Kind() TypeKind { return TypeKindInfer }
func (i *Infer) ID() int        { return i.id }
func (i *Infer) String() string { return "_" }

// Param represents a type parameter placeholder.
type Param struct {
	index int
	name  string
}

func (p *Param) Kind() TypeKind { return TypeKindParam }
func (p *Param) Index() int     { return p.index }
func (p *Param) Name() string   { return p.name }

func (p *Param) String() string {
	if p.name != "" {
		return p.name
	}

	return fmt.Sprintf("$%d", p.index)
}

// Invalid is the error type.
type Invalid struct{}

func (Invalid) Kind() TypeKind { return TypeKindError }
func (Invalid) String() string { return "{error}" }

// ====== Helpers ======

// Children returns the structural children of t in the order labeled trees
// use: element for wrappers, type arguments for ADTs and fn items, inputs
// followed by the output for fn pointers, elements for tuples. ok is false
// when the kind claims structure the value does not implement.
func Children(t Type) (children []Type, ok bool) {
	switch t.Kind() {
	case TypeKindRawPtr, TypeKindRef, TypeKindArray, TypeKindSlice:
		w, ok := t.(Wrapper)
		if !ok {
			return nil, false
		}

		return []Type{w.Elem()}, true
	case TypeKindAdt, TypeKindFnDef:
		g, ok := t.(Generic)
		if !ok {
			return nil, false
		}

		return g.TypeArgs(), true
	case TypeKindFnPtr:
		s, ok := t.(Signature)
		if !ok {
			return nil, false
		}

		out := make([]Type, 0, len(s.Inputs())+1)
		out = append(out, s.Inputs()...)

		return append(out, s.Output()), true
	case TypeKindTuple:
		tu, ok := t.(Tupled)
		if !ok {
			return nil, false
		}

		return tu.Elems(), true
	default:
		return nil, true
	}
}

func joinTypes(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}

	return strings.Join(parts, ", ")
}

func angleList(ts []Type) string {
	if len(ts) == 0 {
		return ""
	}

	return "<" + joinTypes(ts) + ">"
}

// DisplayName returns a short human-readable name for the head of t: the
// nominal name of ADTs and fn items, the long name of primitives (int32,
// float64) and the kind name otherwise.
func DisplayName(t Type) string {
	switch v := t.(type) {
	case *Adt:
		return v.name
	case *FnDef:
		return v.name
	case *Param:
		return v.String()
	case *Basic:
		switch v.kind {
		case TypeKindInt:
			return widthName("int", v.width)
		case TypeKindUint:
			return widthName("uint", v.width)
		case TypeKindFloat:
			return widthName("float", v.width)
		case TypeKindNever:
			return "never"
		default:
			return v.name
		}
	}

	return t.Kind().String()
}

func widthName(prefix string, w Width) string {
	if w == WidthSize {
		return prefix + "size"
	}

	return fmt.Sprintf("%s%d", prefix, int(w))
}

// SameHead reports whether a and b agree on everything except their
// structural children: kind, nominal name, array length, mutability,
// parameter index and arity.
func SameHead(a, b Type) bool {
	if a == b {
		return true
	}

	if a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case *Basic:
		y, ok := b.(*Basic)
		return ok && x.name == y.name
	case *Pointer:
		y, ok := b.(*Pointer)
		return ok && x.mutable == y.mutable
	case *Reference:
		y, ok := b.(*Reference)
		return ok && x.mutable == y.mutable
	case *Array:
		y, ok := b.(*Array)
		return ok && x.length == y.length
	case *Adt:
		y, ok := b.(*Adt)
		return ok && x.name == y.name && len(x.args) == len(y.args)
	case *FnDef:
		y, ok := b.(*FnDef)
		return ok && x.name == y.name && len(x.args) == len(y.args)
	case *FnPtr:
		y, ok := b.(*FnPtr)
		return ok && len(x.inputs) == len(y.inputs)
	case *Tuple:
		y, ok := b.(*Tuple)
		return ok && len(x.elems) == len(y.elems)
	case *Param:
		y, ok := b.(*Param)
		return ok && x.index == y.index
	case *Infer:
		y, ok := b.(*Infer)
		return ok && x.id == y.id
	case *Slice, Invalid:
		return true
	}

	return a.String() == b.String()
}
