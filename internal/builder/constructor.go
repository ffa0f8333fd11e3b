package builder

import (
	"fmt"

	"weave/internal/model"
	"weave/internal/types"
)

// Constructor builds an instance or static constructor.
type Constructor struct {
	base
	params   []*Parameter
	initKind model.InitializerKind
	initArgs []string
	replaces bool
	f        *Factory
	data     *ConstructorData
}

// ConstructorData is a frozen constructor.
type ConstructorData struct {
	Header
	Params          []*ParameterData
	Initializer     model.InitializerKind
	InitializerArgs []string
	// ReplacesImplicit is set when the constructor makes an implicit one explicit;
	// it then reuses the implicit constructor's ref.
	ReplacesImplicit bool
}

// Constructor starts a public instance constructor of target named typeName.
func (f *Factory) Constructor(target model.Ref, typeName string) *Constructor {
	return &Constructor{base: base{types: f.Types, h: f.header(model.DeclConstructor, target, typeName)}, f: f}
}

// ExplicitConstructor starts a builder that replaces an implicit constructor
// with an explicit one keeping its ref and accessibility.
func (f *Factory) ExplicitConstructor(implicit *model.Decl) *Constructor {
	h := Header{
		Ref:           implicit.Ref,
		Kind:          model.DeclConstructor,
		Name:          implicit.Name,
		DeclaringType: implicit.Parent,
		Access:        implicit.Access,
		Aspect:        f.Aspect,
		Layer:         f.Layer,
	}
	return &Constructor{base: base{types: f.Types, h: h}, f: f, replaces: true}
}

// AddParameter appends a parameter and returns its builder.
func (c *Constructor) AddParameter(name string, typ types.TypeID, def string) *Parameter {
	c.mustMutable()
	p := c.f.Parameter(c.h.Ref, name, typ, def)
	c.params = append(c.params, p)
	return p
}

// Params returns the parameter builders.
func (c *Constructor) Params() []*Parameter { return c.params }

// SetInitializer sets a base(...) or this(...) initializer.
func (c *Constructor) SetInitializer(kind model.InitializerKind, args ...string) {
	c.mustMutable()
	c.initKind = kind
	c.initArgs = append([]string(nil), args...)
}

// ReplacesImplicit reports whether the builder explicates an implicit constructor.
func (c *Constructor) ReplacesImplicit() bool { return c.replaces }

// Describe returns e.g. "constructor 'T(int)'".
func (c *Constructor) Describe() string {
	if c.IsStatic() {
		return fmt.Sprintf("static constructor '%s()'", c.h.Name)
	}
	return fmt.Sprintf("constructor '%s(%s)'", c.h.Name, c.paramList(c.params))
}

// Freeze captures the builder state. Repeated calls return the same record.
func (c *Constructor) Freeze() *ConstructorData {
	if c.data != nil {
		return c.data
	}
	desc := c.Describe()
	c.data = &ConstructorData{
		Header:           c.freezeHeader(desc),
		Params:           freezeParams(c.params),
		Initializer:      c.initKind,
		InitializerArgs:  append([]string(nil), c.initArgs...),
		ReplacesImplicit: c.replaces,
	}
	return c.data
}

// FreezeData implements Builder.
func (c *Constructor) FreezeData() Data { return c.Freeze() }

// Signature implements Member.
func (d *ConstructorData) Signature() model.Signature {
	return model.Signature{
		Kind:   model.DeclConstructor,
		Name:   d.Name,
		Params: paramTypes(d.Params),
		Static: d.IsStatic(),
	}
}

// Decls implements Data.
func (d *ConstructorData) Decls() []model.Decl {
	main := d.decl()
	main.Initializer = d.Initializer
	main.InitArgs = append([]string(nil), d.InitializerArgs...)
	refs, params := paramDecls(d.Ref, d.Params)
	main.Params = refs
	return append([]model.Decl{main}, params...)
}
