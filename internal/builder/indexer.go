package builder

import (
	"fmt"

	"weave/internal/model"
	"weave/internal/types"
)

// Indexer builds an indexer ("this[...]").
type Indexer struct {
	base
	typ         types.TypeID
	params      []*Parameter
	write       model.Writeability
	getTemplate []string
	setTemplate []string
	f           *Factory
	data        *IndexerData
}

// IndexerData is a frozen indexer.
type IndexerData struct {
	Header
	Type         types.TypeID
	Params       []*ParameterData
	Writeability model.Writeability
	GetTemplate  []string
	SetTemplate  []string
}

// Indexer starts an indexer of target returning typ.
func (f *Factory) Indexer(target model.Ref, typ types.TypeID) *Indexer {
	return &Indexer{
		base:  base{types: f.Types, h: f.header(model.DeclIndexer, target, model.IndexerName)},
		typ:   typ,
		write: model.WriteAll,
		f:     f,
	}
}

// Type returns the element type.
func (b *Indexer) Type() types.TypeID { return b.typ }

// AddParameter appends an index parameter.
func (b *Indexer) AddParameter(name string, typ types.TypeID) *Parameter {
	b.mustMutable()
	p := b.f.Parameter(b.h.Ref, name, typ, "")
	b.params = append(b.params, p)
	return p
}

// Params returns the parameter builders.
func (b *Indexer) Params() []*Parameter { return b.params }

// SetGetter sets the getter template.
func (b *Indexer) SetGetter(lines ...string) {
	b.mustMutable()
	b.getTemplate = append([]string(nil), lines...)
}

// SetSetter sets the setter template; no lines makes the indexer read-only.
func (b *Indexer) SetSetter(lines ...string) {
	b.mustMutable()
	b.setTemplate = append([]string(nil), lines...)
	if len(lines) == 0 {
		b.write = model.WriteNone
		return
	}
	b.write = model.WriteAll
}

// Describe returns e.g. "indexer 'this[int]'".
func (b *Indexer) Describe() string {
	return fmt.Sprintf("indexer 'this[%s]'", b.paramList(b.params))
}

// Freeze captures the builder state. Repeated calls return the same record.
func (b *Indexer) Freeze() *IndexerData {
	if b.data != nil {
		return b.data
	}
	desc := b.Describe()
	b.data = &IndexerData{
		Header:       b.freezeHeader(desc),
		Type:         b.typ,
		Params:       freezeParams(b.params),
		Writeability: b.write,
		GetTemplate:  append([]string(nil), b.getTemplate...),
		SetTemplate:  append([]string(nil), b.setTemplate...),
	}
	return b.data
}

// FreezeData implements Builder.
func (b *Indexer) FreezeData() Data { return b.Freeze() }

// Signature implements Member.
func (d *IndexerData) Signature() model.Signature {
	return model.Signature{
		Kind:   model.DeclIndexer,
		Name:   model.IndexerName,
		Params: paramTypes(d.Params),
		Return: d.Type,
		Static: d.IsStatic(),
	}
}

// Decls implements Data.
func (d *IndexerData) Decls() []model.Decl {
	main := d.decl()
	main.Type = d.Type
	main.Writeability = d.Writeability
	main.Accessors = model.AccessorGet
	if d.Writeability != model.WriteNone {
		main.Accessors |= model.AccessorSet
	}
	refs, params := paramDecls(d.Ref, d.Params)
	main.Params = refs
	return append([]model.Decl{main}, params...)
}
