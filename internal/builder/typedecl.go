package builder

import (
	"fmt"

	"weave/internal/model"
)

// Type builds a nested or top-level type declaration. Members are added by
// later advice targeting the introduced type's ref.
type Type struct {
	base
	kind       model.TypeKind
	baseType   model.Ref
	baseName   string
	interfaces []model.Ref
	data       *TypeData
}

// TypeData is a frozen type declaration.
type TypeData struct {
	Header
	TypeKind   model.TypeKind
	BaseType   model.Ref
	BaseName   string
	Interfaces []model.Ref
}

// Type starts a class named name in target (a type or namespace).
func (f *Factory) Type(target model.Ref, name string, kind model.TypeKind) *Type {
	return &Type{base: base{types: f.Types, h: f.header(model.DeclType, target, name)}, kind: kind}
}

// TypeKind returns the type kind.
func (b *Type) TypeKind() model.TypeKind { return b.kind }

// SetBaseType sets the base class declared in the compilation.
func (b *Type) SetBaseType(t model.Ref) {
	b.mustMutable()
	b.baseType = t
}

// SetBaseName sets a base class outside of the compilation.
func (b *Type) SetBaseName(name string) {
	b.mustMutable()
	b.baseName = name
}

// AddInterface records an implemented interface.
func (b *Type) AddInterface(iface model.Ref) {
	b.mustMutable()
	b.interfaces = append(b.interfaces, iface)
}

// Describe returns e.g. "class 'Name'".
func (b *Type) Describe() string { return fmt.Sprintf("%s '%s'", b.kind, b.h.Name) }

// Freeze captures the builder state. Repeated calls return the same record.
func (b *Type) Freeze() *TypeData {
	if b.data != nil {
		return b.data
	}
	b.data = &TypeData{
		Header:     b.freezeHeader(b.Describe()),
		TypeKind:   b.kind,
		BaseType:   b.baseType,
		BaseName:   b.baseName,
		Interfaces: append([]model.Ref(nil), b.interfaces...),
	}
	return b.data
}

// FreezeData implements Builder.
func (b *Type) FreezeData() Data { return b.Freeze() }

// Signature implements Member.
func (d *TypeData) Signature() model.Signature {
	return model.Signature{Kind: model.DeclType, Name: d.Name, Static: d.IsStatic()}
}

// Decls implements Data.
func (d *TypeData) Decls() []model.Decl {
	main := d.decl()
	main.TypeKind = d.TypeKind
	main.BaseType = d.BaseType
	main.BaseName = d.BaseName
	main.Interfaces = append([]model.Ref(nil), d.Interfaces...)
	return []model.Decl{main}
}

// Namespace builds a namespace.
type Namespace struct {
	base
	data *NamespaceData
}

// NamespaceData is a frozen namespace.
type NamespaceData struct {
	Header
}

// Namespace starts a namespace named name inside parent (NoRef for global).
func (f *Factory) Namespace(parent model.Ref, name string) *Namespace {
	h := f.header(model.DeclNamespace, parent, name)
	h.Access = model.AccessDefault
	return &Namespace{base: base{types: f.Types, h: h}}
}

// Describe returns "namespace 'Name'".
func (b *Namespace) Describe() string { return fmt.Sprintf("namespace '%s'", b.h.Name) }

// Freeze captures the builder state. Repeated calls return the same record.
func (b *Namespace) Freeze() *NamespaceData {
	if b.data != nil {
		return b.data
	}
	b.data = &NamespaceData{Header: b.freezeHeader(b.Describe())}
	return b.data
}

// FreezeData implements Builder.
func (b *Namespace) FreezeData() Data { return b.Freeze() }

// Decls implements Data.
func (d *NamespaceData) Decls() []model.Decl {
	return []model.Decl{d.decl()}
}
