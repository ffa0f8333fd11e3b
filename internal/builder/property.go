package builder

import (
	"fmt"

	"weave/internal/model"
	"weave/internal/types"
)

// Property builds a property. Without accessor templates it is lowered as an
// auto-property.
type Property struct {
	base
	typ         types.TypeID
	init        string
	write       model.Writeability
	getTemplate []string
	setTemplate []string
	hasGetter   bool
	hasSetter   bool
	data        *PropertyData
}

// PropertyData is a frozen property.
type PropertyData struct {
	Header
	Type         types.TypeID
	Initializer  string
	Writeability model.Writeability
	Auto         bool
	HasGetter    bool
	HasSetter    bool
	GetTemplate  []string
	SetTemplate  []string
}

// Property starts a read-write auto-property of target.
func (f *Factory) Property(target model.Ref, name string, typ types.TypeID) *Property {
	return &Property{
		base:      base{types: f.Types, h: f.header(model.DeclProperty, target, name)},
		typ:       typ,
		write:     model.WriteAll,
		hasGetter: true,
		hasSetter: true,
	}
}

// Type returns the property type.
func (b *Property) Type() types.TypeID { return b.typ }

// SetType changes the property type.
func (b *Property) SetType(t types.TypeID) {
	b.mustMutable()
	b.typ = t
}

// SetInitializer sets the initializer expression of an auto-property.
func (b *Property) SetInitializer(expr string) {
	b.mustMutable()
	b.init = expr
}

// SetWriteability chooses how the setter is emitted.
func (b *Property) SetWriteability(w model.Writeability) {
	b.mustMutable()
	b.write = w
	b.hasSetter = w != model.WriteNone
}

// SetGetter sets the getter template. Passing no lines removes the getter.
func (b *Property) SetGetter(lines ...string) {
	b.mustMutable()
	b.getTemplate = append([]string(nil), lines...)
	b.hasGetter = len(lines) > 0
}

// SetSetter sets the setter template. Passing no lines removes the setter.
func (b *Property) SetSetter(lines ...string) {
	b.mustMutable()
	b.setTemplate = append([]string(nil), lines...)
	b.hasSetter = len(lines) > 0
	if b.hasSetter && b.write == model.WriteNone {
		b.write = model.WriteAll
	}
}

// Describe returns "property 'name'".
func (b *Property) Describe() string { return fmt.Sprintf("property '%s'", b.h.Name) }

// Freeze captures the builder state. Repeated calls return the same record.
func (b *Property) Freeze() *PropertyData {
	if b.data != nil {
		return b.data
	}
	b.data = &PropertyData{
		Header:       b.freezeHeader(b.Describe()),
		Type:         b.typ,
		Initializer:  b.init,
		Writeability: b.write,
		Auto:         len(b.getTemplate) == 0 && len(b.setTemplate) == 0,
		HasGetter:    b.hasGetter,
		HasSetter:    b.hasSetter,
		GetTemplate:  append([]string(nil), b.getTemplate...),
		SetTemplate:  append([]string(nil), b.setTemplate...),
	}
	return b.data
}

// FreezeData implements Builder.
func (b *Property) FreezeData() Data { return b.Freeze() }

// Accessors returns the accessor set the property will declare.
func (d *PropertyData) Accessors() model.Accessors {
	var acc model.Accessors
	if d.HasGetter {
		acc |= model.AccessorGet
	}
	if d.HasSetter {
		switch d.Writeability {
		case model.WriteInitOnly:
			acc |= model.AccessorInit
		case model.WriteAll:
			acc |= model.AccessorSet
		case model.WriteConstructorOnly:
			if !d.Auto {
				acc |= model.AccessorSet
			}
		}
	}
	return acc
}

// Signature implements Member.
func (d *PropertyData) Signature() model.Signature {
	return model.Signature{Kind: model.DeclProperty, Name: d.Name, Return: d.Type, Static: d.IsStatic()}
}

// Decls implements Data.
func (d *PropertyData) Decls() []model.Decl {
	main := d.decl()
	main.Type = d.Type
	main.Value = d.Initializer
	main.Writeability = d.Writeability
	main.Accessors = d.Accessors()
	main.Auto = d.Auto
	return []model.Decl{main}
}
