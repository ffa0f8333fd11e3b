package builder

import (
	"weave/internal/model"
)

// Proceed is the template placeholder for the body being wrapped: the
// overridden member or, for new members, the hidden base member.
const Proceed = "meta.Proceed()"

// Header carries the attributes shared by all frozen declarations.
type Header struct {
	Ref               model.Ref
	Kind              model.DeclKind
	Name              string
	DeclaringType     model.Ref // parent type, namespace or parameter owner
	Access            model.Accessibility
	Flags             model.Flags
	Attributes        []model.Attribute
	ExplicitInterface model.Ref

	IsNew           bool
	HasNewKeyword   bool
	IsOverride      bool
	Overridden      model.Ref
	CompileTimeOnly bool

	Aspect      string
	Layer       int
	Template    []string
	Description string
}

// DeclRef implements refs.Referent.
func (h *Header) DeclRef() model.Ref { return h.Ref }

// Head returns the shared header.
func (h *Header) Head() *Header { return h }

// Describe returns a short human-readable description, e.g. "method 'Foo(int)'".
func (h *Header) Describe() string { return h.Description }

// IsStatic reports whether the declaration is static.
func (h *Header) IsStatic() bool { return h.Flags&model.FlagStatic != 0 }

// HasTemplate reports whether a body template was provided.
func (h *Header) HasTemplate() bool { return len(h.Template) > 0 }

func (h *Header) decl() model.Decl {
	flags := h.Flags
	if h.HasNewKeyword {
		flags |= model.FlagNew
	}
	if h.IsOverride {
		flags = flags&^(model.FlagVirtual|model.FlagNew) | model.FlagOverride
	}
	return model.Decl{
		Ref:               h.Ref,
		Kind:              h.Kind,
		Name:              h.Name,
		Parent:            h.DeclaringType,
		Access:            h.Access,
		Flags:             flags,
		Attributes:        cloneAttributes(h.Attributes),
		ExplicitInterface: h.ExplicitInterface,
		Origin:            model.Origin{Kind: model.OriginIntroduced, Aspect: h.Aspect, Layer: h.Layer},
	}
}

// Data is the closed set of frozen builder records.
type Data interface {
	DeclRef() model.Ref
	Head() *Header
	Describe() string
	// Decls converts the record into model entries: the declaration itself
	// first, followed by its parameters.
	Decls() []model.Decl
	isData()
}

func (*MethodData) isData()      {}
func (*FieldData) isData()       {}
func (*PropertyData) isData()    {}
func (*EventData) isData()       {}
func (*ConstructorData) isData() {}
func (*IndexerData) isData()     {}
func (*ParameterData) isData()   {}
func (*TypeData) isData()        {}
func (*NamespaceData) isData()   {}

// Member is a frozen record that can collide with an existing type member.
type Member interface {
	Data
	Signature() model.Signature
}

func cloneAttributes(attrs []model.Attribute) []model.Attribute {
	if attrs == nil {
		return nil
	}
	out := make([]model.Attribute, len(attrs))
	for i, a := range attrs {
		out[i] = model.Attribute{Name: a.Name, Args: append([]string(nil), a.Args...)}
	}
	return out
}

func paramDecls(owner model.Ref, params []*ParameterData) ([]model.Ref, []model.Decl) {
	refs := make([]model.Ref, len(params))
	decls := make([]model.Decl, len(params))
	for i, p := range params {
		refs[i] = p.Ref
		decls[i] = p.paramDecl(owner)
	}
	return refs, decls
}
