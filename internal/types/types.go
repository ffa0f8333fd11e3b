package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindObject
	KindBool
	KindChar
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindString
	KindNamed    // a declared or external type referenced by name
	KindArray    // Elem[]
	KindNullable // Elem?
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindObject:
		return "object"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindNamed:
		return "named"
	case KindArray:
		return "array"
	case KindNullable:
		return "nullable"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsPrimitive reports whether the kind is a keyword type.
func (k Kind) IsPrimitive() bool {
	return k >= KindVoid && k <= KindString
}

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind Kind
	Elem TypeID // for arrays and nullable annotations
	Name string // qualified name for KindNamed
}

// MakeNamed describes a reference to a type by its qualified name.
func MakeNamed(name string) Type {
	return Type{Kind: KindNamed, Name: name}
}

// MakeArray describes a single-dimensional array of elem.
func MakeArray(elem TypeID) Type {
	return Type{Kind: KindArray, Elem: elem}
}

// MakeNullable describes elem annotated with '?'.
func MakeNullable(elem TypeID) Type {
	return Type{Kind: KindNullable, Elem: elem}
}
