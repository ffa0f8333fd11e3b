package lower

import (
	"fmt"

	"weave/internal/builder"
	"weave/internal/model"
	"weave/internal/syntax"
	"weave/internal/types"
)

// Introduced lowers the declaration part of an introduced member. Bodies
// only proceed: to the hidden or overridden base member, or to a default.
// Templates are applied by ApplyOverride. Parameters are not members and
// must be lowered with ParamFromData.
func Introduced(ctx *Context, data builder.Data) *syntax.Member {
	switch d := data.(type) {
	case *builder.MethodData:
		return method(ctx, d)
	case *builder.FieldData:
		return field(ctx, d)
	case *builder.PropertyData:
		return property(ctx, d)
	case *builder.EventData:
		return event(ctx, d)
	case *builder.ConstructorData:
		return constructor(ctx, d)
	case *builder.IndexerData:
		return indexer(ctx, d)
	case *builder.TypeData:
		decl := d.Decls()[0]
		return typeShell(ctx, &decl)
	case *builder.NamespaceData:
		return &syntax.Member{Kind: syntax.MemberNamespace, Name: d.Name}
	case *builder.ParameterData:
		panic("lower: parameters are lowered with ParamFromData")
	default:
		panic(fmt.Sprintf("lower: unexpected builder data %T", data))
	}
}

func head(ctx *Context, data builder.Data) (syntax.Member, model.Decl) {
	decl := data.Decls()[0]
	h := data.Head()
	m := syntax.Member{
		Attributes: ctx.Gen.Attributes(h.Attributes),
		Modifiers:  ctx.Gen.Modifiers(&decl),
		Name:       h.Name,
	}
	if h.ExplicitInterface.IsValid() {
		m.Explicit = ctx.Snapshot.QualifiedName(h.ExplicitInterface)
	}
	return m, decl
}

// chainsToBase reports whether proceed should call the hidden or overridden member.
func chainsToBase(ctx *Context, h *builder.Header) bool {
	if !(h.IsOverride || h.IsNew) || !h.Overridden.IsValid() {
		return false
	}
	o := ctx.Snapshot.Get(h.Overridden)
	return o != nil && !o.Has(model.FlagAbstract)
}

func (c *Context) returnsValue(id types.TypeID) bool {
	return id != 0 && id != c.Snapshot.Interner().Builtins().Void
}

func method(ctx *Context, d *builder.MethodData) *syntax.Member {
	m, decl := head(ctx, d)
	params, _ := paramsFromData(ctx, d.Params)
	m.Params = params
	m.Type = ctx.Gen.TypeSyntax(d.ReturnType)
	m.HasBody = !decl.Has(model.FlagAbstract) && !decl.Has(model.FlagExtern)

	switch d.MethodKind {
	case model.MethodOperator:
		if len(d.Params) != 1 && len(d.Params) != 2 {
			panic(fmt.Sprintf("lower: operator %s with %d parameters", d.Name, len(d.Params)))
		}
		m.Kind = syntax.MemberOperator
	case model.MethodConversion:
		if len(d.Params) != 1 {
			panic(fmt.Sprintf("lower: conversion operator with %d parameters", len(d.Params)))
		}
		m.Kind = syntax.MemberConversion
	case model.MethodFinalizer:
		if len(d.Params) != 0 {
			panic("lower: finalizer with parameters")
		}
		m.Kind = syntax.MemberFinalizer
		m.Modifiers = nil
		m.Type = ""
		if t := ctx.Snapshot.Get(d.DeclaringType); t != nil {
			m.Name = t.Name
		}
	case model.MethodOrdinary:
		m.Kind = syntax.MemberMethod
	default:
		panic(fmt.Sprintf("lower: unexpected method kind %v", d.MethodKind))
	}
	if m.HasBody {
		m.Body = Substitute(proceedTemplate(nil, ctx.returnsValue(d.ReturnType)), IntroducedProceed(ctx, d).Expr)
	}
	return &m
}

func field(ctx *Context, d *builder.FieldData) *syntax.Member {
	m, _ := head(ctx, d)
	m.Kind = syntax.MemberField
	m.Type = ctx.Gen.TypeSyntax(d.Type)
	m.Value = d.Initializer
	return &m
}

func property(ctx *Context, d *builder.PropertyData) *syntax.Member {
	if !d.HasGetter && !d.HasSetter {
		panic(fmt.Sprintf("lower: property %s has neither accessor", d.Name))
	}
	m, decl := head(ctx, d)
	m.Kind = syntax.MemberProperty
	m.Type = ctx.Gen.TypeSyntax(d.Type)
	if d.Auto || decl.Has(model.FlagAbstract) {
		m.Accessors = autoAccessors(decl.Accessors)
		m.Value = d.Initializer
		return &m
	}
	p := IntroducedProceed(ctx, d)
	if d.HasGetter {
		m.Accessors = append(m.Accessors, syntax.Accessor{Keyword: "get", Body: Substitute(proceedTemplate(nil, true), p.Get)})
	}
	if d.HasSetter {
		m.Accessors = append(m.Accessors, setter(d.Writeability, Substitute(proceedTemplate(nil, false), p.Set)))
	}
	return &m
}

func setter(w model.Writeability, body []string) syntax.Accessor {
	switch w {
	case model.WriteInitOnly:
		return syntax.Accessor{Keyword: "init", Body: body}
	case model.WriteConstructorOnly:
		return syntax.Accessor{Keyword: "set", Modifiers: []string{"private"}, Body: body}
	default:
		return syntax.Accessor{Keyword: "set", Body: body}
	}
}

func autoAccessors(acc model.Accessors) []syntax.Accessor {
	var out []syntax.Accessor
	if acc.Has(model.AccessorGet) {
		out = append(out, syntax.Accessor{Keyword: "get", Auto: true})
	}
	switch {
	case acc.Has(model.AccessorSet):
		out = append(out, syntax.Accessor{Keyword: "set", Auto: true})
	case acc.Has(model.AccessorInit):
		out = append(out, syntax.Accessor{Keyword: "init", Auto: true})
	}
	if len(out) == 0 {
		panic("lower: auto-property without accessors")
	}
	return out
}

func event(ctx *Context, d *builder.EventData) *syntax.Member {
	m, _ := head(ctx, d)
	m.Type = ctx.Gen.TypeSyntax(d.Type)
	if d.FieldLike {
		m.Kind = syntax.MemberEventField
		m.Value = d.Initializer
		return &m
	}
	m.Kind = syntax.MemberEvent
	p := IntroducedProceed(ctx, d)
	m.Accessors = []syntax.Accessor{
		{Keyword: "add", Body: Substitute(proceedTemplate(nil, false), p.Add)},
		{Keyword: "remove", Body: Substitute(proceedTemplate(nil, false), p.Remove)},
	}
	return &m
}

func constructor(ctx *Context, d *builder.ConstructorData) *syntax.Member {
	m, decl := head(ctx, d)
	m.Kind = syntax.MemberConstructor
	m.HasBody = true
	params, _ := paramsFromData(ctx, d.Params)
	m.Params = params
	if decl.IsStatic() {
		m.Modifiers = []string{"static"}
	}
	if d.Initializer != model.InitNone {
		m.Init = &syntax.Initializer{Keyword: d.Initializer.String(), Args: append([]string(nil), d.InitializerArgs...)}
	}
	if !decl.IsStatic() && d.Initializer != model.InitThis && ctx.IsStruct(d.DeclaringType) && ctx.StructDefaultsRequired() {
		m.Body = []string{structDefault}
	}
	return &m
}

// structDefault zero-initializes a struct before any field is assigned.
const structDefault = "this = default;"

func indexer(ctx *Context, d *builder.IndexerData) *syntax.Member {
	m, decl := head(ctx, d)
	m.Kind = syntax.MemberIndexer
	m.Type = ctx.Gen.TypeSyntax(d.Type)
	params, _ := paramsFromData(ctx, d.Params)
	m.Params = params
	if decl.Has(model.FlagAbstract) {
		m.Accessors = autoAccessors(decl.Accessors)
		return &m
	}
	p := IntroducedProceed(ctx, d)
	m.Accessors = []syntax.Accessor{{Keyword: "get", Body: Substitute(proceedTemplate(nil, true), p.Get)}}
	if d.Writeability != model.WriteNone {
		m.Accessors = append(m.Accessors, setter(d.Writeability, Substitute(proceedTemplate(nil, false), p.Set)))
	}
	return &m
}
