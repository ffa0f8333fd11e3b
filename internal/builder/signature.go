package builder

import (
	"weave/internal/model"
	"weave/internal/types"
)

func builderParamTypes(params []*Parameter) []types.TypeID {
	out := make([]types.TypeID, len(params))
	for i, p := range params {
		out[i] = p.typ
	}
	return out
}

// Signature returns the lookup key of the method in its current state.
func (m *Method) Signature() model.Signature {
	return model.Signature{
		Kind:       model.DeclMethod,
		MethodKind: m.kind,
		Name:       m.h.Name,
		Params:     builderParamTypes(m.params),
		Return:     m.ret,
		Static:     m.IsStatic(),
	}
}

// Signature returns the lookup key of the field.
func (b *Field) Signature() model.Signature {
	return model.Signature{Kind: model.DeclField, Name: b.h.Name, Return: b.typ, Static: b.IsStatic()}
}

// Signature returns the lookup key of the property.
func (b *Property) Signature() model.Signature {
	return model.Signature{Kind: model.DeclProperty, Name: b.h.Name, Return: b.typ, Static: b.IsStatic()}
}

// Signature returns the lookup key of the event.
func (b *Event) Signature() model.Signature {
	return model.Signature{Kind: model.DeclEvent, Name: b.h.Name, Return: b.typ, Static: b.IsStatic()}
}

// Signature returns the lookup key of the constructor.
func (c *Constructor) Signature() model.Signature {
	return model.Signature{
		Kind:   model.DeclConstructor,
		Name:   c.h.Name,
		Params: builderParamTypes(c.params),
		Static: c.IsStatic(),
	}
}

// Signature returns the lookup key of the indexer.
func (b *Indexer) Signature() model.Signature {
	return model.Signature{
		Kind:   model.DeclIndexer,
		Name:   model.IndexerName,
		Params: builderParamTypes(b.params),
		Return: b.typ,
		Static: b.IsStatic(),
	}
}

// Signature returns the lookup key of the type.
func (b *Type) Signature() model.Signature {
	return model.Signature{Kind: model.DeclType, Name: b.h.Name, Static: b.IsStatic()}
}

// HasBodyTemplate reports whether data carries any body or accessor template.
func HasBodyTemplate(data Data) bool {
	switch d := data.(type) {
	case *PropertyData:
		return len(d.GetTemplate) > 0 || len(d.SetTemplate) > 0
	case *IndexerData:
		return len(d.GetTemplate) > 0 || len(d.SetTemplate) > 0
	case *EventData:
		return len(d.AddTemplate) > 0 || len(d.RemoveTemplate) > 0
	}
	return data.Head().HasTemplate()
}
