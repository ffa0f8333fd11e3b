package builder

import (
	"fmt"

	"weave/internal/model"
	"weave/internal/types"
)

// Field builds a field.
type Field struct {
	base
	typ   types.TypeID
	init  string
	write model.Writeability
	data  *FieldData
}

// FieldData is a frozen field.
type FieldData struct {
	Header
	Type         types.TypeID
	Initializer  string
	Writeability model.Writeability
}

// Field starts a field of target.
func (f *Factory) Field(target model.Ref, name string, typ types.TypeID) *Field {
	h := f.header(model.DeclField, target, name)
	h.Access = model.AccessPrivate
	return &Field{base: base{types: f.Types, h: h}, typ: typ, write: model.WriteAll}
}

// Type returns the field type.
func (b *Field) Type() types.TypeID { return b.typ }

// SetType changes the field type.
func (b *Field) SetType(t types.TypeID) {
	b.mustMutable()
	b.typ = t
}

// SetInitializer sets the initializer expression.
func (b *Field) SetInitializer(expr string) {
	b.mustMutable()
	b.init = expr
}

// SetWriteability maps the writeability class onto field modifiers: anything
// short of WriteAll makes the field readonly.
func (b *Field) SetWriteability(w model.Writeability) {
	b.mustMutable()
	b.write = w
	b.setFlag(model.FlagReadOnly, w != model.WriteAll)
}

// SetReadOnly is SetWriteability(WriteConstructorOnly) or WriteAll.
func (b *Field) SetReadOnly(on bool) {
	if on {
		b.SetWriteability(model.WriteConstructorOnly)
		return
	}
	b.SetWriteability(model.WriteAll)
}

// Describe returns "field 'name'".
func (b *Field) Describe() string { return fmt.Sprintf("field '%s'", b.h.Name) }

// Freeze captures the builder state. Repeated calls return the same record.
func (b *Field) Freeze() *FieldData {
	if b.data != nil {
		return b.data
	}
	b.data = &FieldData{
		Header:       b.freezeHeader(b.Describe()),
		Type:         b.typ,
		Initializer:  b.init,
		Writeability: b.write,
	}
	return b.data
}

// FreezeData implements Builder.
func (b *Field) FreezeData() Data { return b.Freeze() }

// Signature implements Member.
func (d *FieldData) Signature() model.Signature {
	return model.Signature{Kind: model.DeclField, Name: d.Name, Return: d.Type, Static: d.IsStatic()}
}

// Decls implements Data.
func (d *FieldData) Decls() []model.Decl {
	main := d.decl()
	main.Type = d.Type
	main.Value = d.Initializer
	main.Writeability = d.Writeability
	return []model.Decl{main}
}
