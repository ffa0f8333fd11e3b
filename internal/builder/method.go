package builder

import (
	"fmt"

	"weave/internal/model"
	"weave/internal/types"
)

// Method builds ordinary methods, operators, conversion operators and finalizers.
type Method struct {
	base
	kind   model.MethodKind
	ret    types.TypeID
	params []*Parameter
	f      *Factory
	data   *MethodData
}

// MethodData is a frozen method.
type MethodData struct {
	Header
	MethodKind model.MethodKind
	ReturnType types.TypeID
	Params     []*ParameterData
}

// Method starts an ordinary method named name in target.
func (f *Factory) Method(target model.Ref, name string) *Method {
	return &Method{
		base: base{types: f.Types, h: f.header(model.DeclMethod, target, name)},
		kind: model.MethodOrdinary,
		ret:  f.Types.Builtins().Void,
		f:    f,
	}
}

// Operator starts a static user-defined operator. token is the operator
// symbol ("+", "==") or "implicit"/"explicit" for conversions.
func (f *Factory) Operator(target model.Ref, token string, ret types.TypeID) *Method {
	m := f.Method(target, token)
	m.kind = model.MethodOperator
	if token == "implicit" || token == "explicit" {
		m.kind = model.MethodConversion
	}
	m.ret = ret
	m.h.Flags |= model.FlagStatic
	return m
}

// Finalizer starts a finalizer of target.
func (f *Factory) Finalizer(target model.Ref) *Method {
	m := f.Method(target, model.FinalizerName)
	m.kind = model.MethodFinalizer
	m.h.Access = model.AccessDefault
	return m
}

// MethodKind returns the method kind.
func (m *Method) MethodKind() model.MethodKind { return m.kind }

// ReturnType returns the declared return type.
func (m *Method) ReturnType() types.TypeID { return m.ret }

// SetReturnType changes the return type.
func (m *Method) SetReturnType(t types.TypeID) {
	m.mustMutable()
	m.ret = t
}

// AddParameter appends a parameter and returns its builder.
func (m *Method) AddParameter(name string, typ types.TypeID, def string) *Parameter {
	m.mustMutable()
	p := m.f.Parameter(m.h.Ref, name, typ, def)
	m.params = append(m.params, p)
	return p
}

// Params returns the parameter builders.
func (m *Method) Params() []*Parameter { return m.params }

// Describe returns e.g. "method 'Foo(int)'".
func (m *Method) Describe() string {
	switch m.kind {
	case model.MethodFinalizer:
		return "finalizer"
	case model.MethodOperator:
		return fmt.Sprintf("operator '%s(%s)'", m.h.Name, m.paramList(m.params))
	case model.MethodConversion:
		return fmt.Sprintf("%s conversion operator to '%s'", m.h.Name, m.typeName(m.ret))
	}
	return fmt.Sprintf("method '%s(%s)'", m.h.Name, m.paramList(m.params))
}

// Freeze captures the builder state. Repeated calls return the same record.
func (m *Method) Freeze() *MethodData {
	if m.data != nil {
		return m.data
	}
	desc := m.Describe()
	m.data = &MethodData{
		Header:     m.freezeHeader(desc),
		MethodKind: m.kind,
		ReturnType: m.ret,
		Params:     freezeParams(m.params),
	}
	return m.data
}

// FreezeData implements Builder.
func (m *Method) FreezeData() Data { return m.Freeze() }

// Signature implements Member.
func (d *MethodData) Signature() model.Signature {
	return model.Signature{
		Kind:       model.DeclMethod,
		MethodKind: d.MethodKind,
		Name:       d.Name,
		Params:     paramTypes(d.Params),
		Return:     d.ReturnType,
		Static:     d.IsStatic(),
	}
}

// Decls implements Data.
func (d *MethodData) Decls() []model.Decl {
	main := d.decl()
	main.Type = d.ReturnType
	main.MethodKind = d.MethodKind
	refs, params := paramDecls(d.Ref, d.Params)
	main.Params = refs
	return append([]model.Decl{main}, params...)
}
