package model

import (
	"slices"

	"weave/internal/source"
	"weave/internal/types"
)

// Attribute is a custom attribute attached to a declaration.
type Attribute struct {
	Name string
	Args []string
}

// Decl is an immutable declaration record. Snapshots hand out pointers to
// shared records; callers must not mutate them and use Delta.Update instead.
type Decl struct {
	Ref    Ref
	Kind   DeclKind
	Name   string
	Parent Ref
	Access Accessibility
	Flags  Flags
	Type   types.TypeID // return type, field/property/event type, parameter type

	Params  []Ref
	Members []Ref

	TypeKind   TypeKind
	BaseType   Ref
	BaseName   string // base type outside of the compilation
	Interfaces []Ref

	MethodKind MethodKind

	Initializer InitializerKind
	InitArgs    []string
	InitTarget  Ref

	Value        string // default value, field or property initializer
	Writeability Writeability
	Accessors    Accessors
	Auto         bool // auto-property or field-like event

	ExplicitInterface Ref
	Attributes        []Attribute
	Body              []string

	Span   source.Span
	Origin Origin
}

// Has reports whether all flags in f are set.
func (d *Decl) Has(f Flags) bool { return d.Flags&f == f }

// IsStatic reports whether the declaration is static.
func (d *Decl) IsStatic() bool { return d.Flags&FlagStatic != 0 }

// IsImplicit reports whether the declaration was synthesized by the compiler.
func (d *Decl) IsImplicit() bool { return d.Flags&FlagImplicit != 0 }

// IsInstanceConstructor reports whether d is a non-static constructor.
func (d *Decl) IsInstanceConstructor() bool {
	return d.Kind == DeclConstructor && !d.IsStatic()
}

// IsFinalizer reports whether d is a finalizer method.
func (d *Decl) IsFinalizer() bool {
	return d.Kind == DeclMethod && d.MethodKind == MethodFinalizer
}

// CanOverride reports whether d may be overridden from a derived type.
func CanOverride(d *Decl) bool {
	if d == nil || d.IsStatic() || d.Has(FlagSealed) {
		return false
	}
	return d.Flags&(FlagVirtual|FlagAbstract|FlagOverride) != 0
}

// Clone returns a deep copy of the record so it can be modified in a new layer.
func (d *Decl) Clone() *Decl {
	c := *d
	c.Params = slices.Clone(d.Params)
	c.Members = slices.Clone(d.Members)
	c.Interfaces = slices.Clone(d.Interfaces)
	c.InitArgs = slices.Clone(d.InitArgs)
	c.Body = slices.Clone(d.Body)
	if d.Attributes != nil {
		c.Attributes = make([]Attribute, len(d.Attributes))
		for i, a := range d.Attributes {
			c.Attributes[i] = Attribute{Name: a.Name, Args: slices.Clone(a.Args)}
		}
	}
	return &c
}

// Equal reports whether two records carry the same content.
func (d *Decl) Equal(o *Decl) bool {
	if d == o {
		return true
	}
	if d == nil || o == nil {
		return false
	}
	if d.Ref != o.Ref || d.Kind != o.Kind || d.Name != o.Name || d.Parent != o.Parent ||
		d.Access != o.Access || d.Flags != o.Flags || d.Type != o.Type ||
		d.TypeKind != o.TypeKind || d.BaseType != o.BaseType || d.BaseName != o.BaseName ||
		d.MethodKind != o.MethodKind || d.Initializer != o.Initializer || d.InitTarget != o.InitTarget ||
		d.Value != o.Value || d.Writeability != o.Writeability || d.Accessors != o.Accessors ||
		d.Auto != o.Auto || d.ExplicitInterface != o.ExplicitInterface || d.Span != o.Span || d.Origin != o.Origin {
		return false
	}
	if !slices.Equal(d.Params, o.Params) || !slices.Equal(d.Members, o.Members) ||
		!slices.Equal(d.Interfaces, o.Interfaces) || !slices.Equal(d.InitArgs, o.InitArgs) ||
		!slices.Equal(d.Body, o.Body) || len(d.Attributes) != len(o.Attributes) {
		return false
	}
	for i := range d.Attributes {
		if d.Attributes[i].Name != o.Attributes[i].Name || !slices.Equal(d.Attributes[i].Args, o.Attributes[i].Args) {
			return false
		}
	}
	return true
}
