// Package types provides the host type system consumed by labeled type trees.
// It defines the kind catalogue, the Type handle interfaces through which
// structure is exposed, concrete type values, an interning Context and a
// parser for type expressions.
package types

// TypeKind represents the kind of a type in the host type system
type TypeKind int

const (
	TypeKindInvalid TypeKind = iota

	// Atomic types
	TypeKindBool
	TypeKindChar
	TypeKindInt
	TypeKindUint
	TypeKindFloat
	TypeKindStr
	TypeKindNever

	// Single-argument wrappers
	TypeKindRawPtr
	TypeKindRef
	TypeKindArray
	TypeKindSlice

	// Multi-argument types
	TypeKindAdt
	TypeKindFnDef
	TypeKindFnPtr
	TypeKindTuple

	// Types without exposed structure
	TypeKindDynamic
	TypeKindClosure
	TypeKindProjection
	TypeKindOpaque
	TypeKindInfer
	TypeKindParam
	TypeKindError
)

// String returns the string representation of a TypeKind
func (tk TypeKind) String() string {
	switch tk {
	case TypeKindBool:
		return "bool"
	case TypeKindChar:
		return "char"
	case TypeKindInt:
		return "int"
	case TypeKindUint:
		return "uint"
	case TypeKindFloat:
		return "float"
	case TypeKindStr:
		return "str"
	case TypeKindNever:
		return "never"
	case TypeKindRawPtr:
		return "rawptr"
	case TypeKindRef:
		return "ref"
	case TypeKindArray:
		return "array"
	case TypeKindSlice:
		return "slice"
	case TypeKindAdt:
		return "adt"
	case TypeKindFnDef:
		return "fndef"
	case TypeKindFnPtr:
		return "fnptr"
	case TypeKindTuple:
		return "tuple"
	case TypeKindDynamic:
		return "dynamic"
	case TypeKindClosure:
		return "closure"
	case TypeKindProjection:
		return "projection"
	case TypeKindOpaque:
		return "opaque"
	case TypeKindInfer:
		return "infer"
	case TypeKindParam:
		return "param"
	case TypeKindError:
		return "error"
	default:
		return "invalid"
	}
}

// Known reports whether tk is part of the catalogue.
func (tk TypeKind) Known() bool {
	return tk > TypeKindInvalid && tk <= TypeKindError
}

// AllKinds lists the catalogue in declaration order.
func AllKinds() []TypeKind {
	kinds := make([]TypeKind, 0, int(TypeKindError))
	for k := TypeKindBool; k <= TypeKindError; k++ {
		kinds = append(kinds, k)
	}

	return kinds
}

// Width is the bit width of a numeric primitive. WidthSize is the
// pointer-sized width.
type Width int

const (
	Width8    Width = 8
	Width16   Width = 16
	Width32   Width = 32
	Width64   Width = 64
	Width128  Width = 128
	WidthSize Width = -1
)
