package builder

import (
	"fmt"

	"weave/internal/model"
	"weave/internal/types"
)

// Event builds an event. Without accessor templates it is a field-like event.
type Event struct {
	base
	typ            types.TypeID
	init           string
	addTemplate    []string
	removeTemplate []string
	data           *EventData
}

// EventData is a frozen event.
type EventData struct {
	Header
	Type           types.TypeID
	Initializer    string
	FieldLike      bool
	AddTemplate    []string
	RemoveTemplate []string
}

// Event starts a field-like event of target.
func (f *Factory) Event(target model.Ref, name string, typ types.TypeID) *Event {
	return &Event{base: base{types: f.Types, h: f.header(model.DeclEvent, target, name)}, typ: typ}
}

// Type returns the delegate type.
func (b *Event) Type() types.TypeID { return b.typ }

// SetType changes the delegate type.
func (b *Event) SetType(t types.TypeID) {
	b.mustMutable()
	b.typ = t
}

// SetInitializer sets the initializer of a field-like event.
func (b *Event) SetInitializer(expr string) {
	b.mustMutable()
	b.init = expr
}

// SetAccessors turns the event into an explicit one with add/remove templates.
func (b *Event) SetAccessors(add, remove []string) {
	b.mustMutable()
	b.addTemplate = append([]string(nil), add...)
	b.removeTemplate = append([]string(nil), remove...)
}

// Describe returns "event 'name'".
func (b *Event) Describe() string { return fmt.Sprintf("event '%s'", b.h.Name) }

// Freeze captures the builder state. Repeated calls return the same record.
func (b *Event) Freeze() *EventData {
	if b.data != nil {
		return b.data
	}
	b.data = &EventData{
		Header:         b.freezeHeader(b.Describe()),
		Type:           b.typ,
		Initializer:    b.init,
		FieldLike:      len(b.addTemplate) == 0 && len(b.removeTemplate) == 0,
		AddTemplate:    append([]string(nil), b.addTemplate...),
		RemoveTemplate: append([]string(nil), b.removeTemplate...),
	}
	return b.data
}

// FreezeData implements Builder.
func (b *Event) FreezeData() Data { return b.Freeze() }

// Signature implements Member.
func (d *EventData) Signature() model.Signature {
	return model.Signature{Kind: model.DeclEvent, Name: d.Name, Return: d.Type, Static: d.IsStatic()}
}

// Decls implements Data.
func (d *EventData) Decls() []model.Decl {
	main := d.decl()
	main.Type = d.Type
	main.Value = d.Initializer
	main.Auto = d.FieldLike
	if !d.FieldLike {
		main.Accessors = model.AccessorAdd | model.AccessorRemove
	}
	return []model.Decl{main}
}
