package builder

import (
	"fmt"

	"weave/internal/model"
	"weave/internal/types"
)

// Parameter builds a method, constructor or indexer parameter.
type Parameter struct {
	base
	typ   types.TypeID
	def   string
	index int
	data  *ParameterData
}

// ParameterData is a frozen parameter.
type ParameterData struct {
	Header
	Type    types.TypeID
	Default string
	Index   int // position in the owner's list; -1 appends
}

// Parameter starts a parameter of owner.
func (f *Factory) Parameter(owner model.Ref, name string, typ types.TypeID, def string) *Parameter {
	h := f.header(model.DeclParameter, owner, name)
	h.Access = model.AccessDefault
	return &Parameter{base: base{types: f.Types, h: h}, typ: typ, def: def, index: -1}
}

// Type returns the parameter type.
func (p *Parameter) Type() types.TypeID { return p.typ }

// Default returns the default value expression.
func (p *Parameter) Default() string { return p.def }

// SetType changes the parameter type.
func (p *Parameter) SetType(t types.TypeID) {
	p.mustMutable()
	p.typ = t
}

// SetDefault sets the default value; an empty string removes it.
func (p *Parameter) SetDefault(expr string) {
	p.mustMutable()
	p.def = expr
}

// SetIndex sets the insertion position; -1 appends.
func (p *Parameter) SetIndex(i int) {
	p.mustMutable()
	p.index = i
}

// SetParams toggles the params modifier.
func (p *Parameter) SetParams(on bool) { p.setFlag(model.FlagParams, on) }

// Describe returns "parameter 'name'".
func (p *Parameter) Describe() string {
	return fmt.Sprintf("parameter '%s'", p.h.Name)
}

// Freeze captures the builder state. Repeated calls return the same record.
func (p *Parameter) Freeze() *ParameterData {
	if p.data != nil {
		return p.data
	}
	p.data = &ParameterData{
		Header:  p.freezeHeader(p.Describe()),
		Type:    p.typ,
		Default: p.def,
		Index:   p.index,
	}
	return p.data
}

// FreezeData implements Builder.
func (p *Parameter) FreezeData() Data { return p.Freeze() }

// Decls implements Data.
func (d *ParameterData) Decls() []model.Decl {
	return []model.Decl{d.paramDecl(d.DeclaringType)}
}

func (d *ParameterData) paramDecl(owner model.Ref) model.Decl {
	return model.Decl{
		Ref:        d.Ref,
		Kind:       model.DeclParameter,
		Name:       d.Name,
		Parent:     owner,
		Flags:      d.Flags,
		Type:       d.Type,
		Value:      d.Default,
		Attributes: cloneAttributes(d.Attributes),
		Origin:     model.Origin{Kind: model.OriginIntroduced, Aspect: d.Aspect, Layer: d.Layer},
	}
}

func freezeParams(params []*Parameter) []*ParameterData {
	out := make([]*ParameterData, len(params))
	for i, p := range params {
		out[i] = p.Freeze()
	}
	return out
}

func paramTypes(params []*ParameterData) []types.TypeID {
	out := make([]types.TypeID, len(params))
	for i, p := range params {
		out[i] = p.Type
	}
	return out
}
