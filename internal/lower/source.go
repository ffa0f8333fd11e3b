package lower

import (
	"fmt"
	"slices"

	"weave/internal/model"
	"weave/internal/syntax"
)

// Source lowers a declaration of the base compilation (or one already folded
// into the snapshot). Implicit constructors lower to nil. Nested types are
// returned as shells; callers fill in members.
func Source(ctx *Context, d *model.Decl) *syntax.Member {
	m := syntax.Member{
		Attributes: ctx.Gen.Attributes(d.Attributes),
		Modifiers:  ctx.Gen.Modifiers(d),
		Name:       d.Name,
	}
	if d.ExplicitInterface.IsValid() {
		m.Explicit = ctx.Snapshot.QualifiedName(d.ExplicitInterface)
	}
	switch d.Kind {
	case model.DeclNamespace:
		return &syntax.Member{Kind: syntax.MemberNamespace, Name: d.Name}
	case model.DeclType:
		return typeShell(ctx, d)
	case model.DeclMethod:
		m.Params, _ = paramsFromDecl(ctx, d.Ref)
		m.Type = ctx.Gen.TypeSyntax(d.Type)
		m.Body = slices.Clone(d.Body)
		m.HasBody = hasBody(ctx, d)
		switch d.MethodKind {
		case model.MethodOrdinary:
			m.Kind = syntax.MemberMethod
		case model.MethodOperator:
			m.Kind = syntax.MemberOperator
		case model.MethodConversion:
			m.Kind = syntax.MemberConversion
		case model.MethodFinalizer:
			m.Kind = syntax.MemberFinalizer
			m.Modifiers = nil
			if t := ctx.Snapshot.Get(d.Parent); t != nil {
				m.Name = t.Name
			}
		default:
			panic(fmt.Sprintf("lower: unexpected method kind %v", d.MethodKind))
		}
	case model.DeclField:
		m.Kind = syntax.MemberField
		m.Type = ctx.Gen.TypeSyntax(d.Type)
		m.Value = d.Value
	case model.DeclProperty:
		m.Kind = syntax.MemberProperty
		m.Type = ctx.Gen.TypeSyntax(d.Type)
		m.Accessors = sourceAccessors(ctx, d)
		if d.Auto {
			m.Value = d.Value
		}
	case model.DeclIndexer:
		m.Kind = syntax.MemberIndexer
		m.Type = ctx.Gen.TypeSyntax(d.Type)
		m.Params, _ = paramsFromDecl(ctx, d.Ref)
		m.Accessors = sourceAccessors(ctx, d)
	case model.DeclEvent:
		m.Type = ctx.Gen.TypeSyntax(d.Type)
		if d.Auto {
			m.Kind = syntax.MemberEventField
			m.Value = d.Value
			break
		}
		m.Kind = syntax.MemberEvent
		m.Accessors = []syntax.Accessor{{Keyword: "add"}, {Keyword: "remove"}}
	case model.DeclConstructor:
		if d.IsImplicit() {
			return nil
		}
		m.Kind = syntax.MemberConstructor
		m.Params, _ = paramsFromDecl(ctx, d.Ref)
		if d.IsStatic() {
			m.Modifiers = []string{"static"}
		}
		if d.Initializer != model.InitNone {
			m.Init = &syntax.Initializer{Keyword: d.Initializer.String(), Args: slices.Clone(d.InitArgs)}
		}
		m.Body = slices.Clone(d.Body)
		m.HasBody = true
	default:
		panic(fmt.Sprintf("lower: unexpected declaration kind %v", d.Kind))
	}
	return &m
}

func hasBody(ctx *Context, d *model.Decl) bool {
	if d.Has(model.FlagAbstract) || d.Has(model.FlagExtern) {
		return false
	}
	if t := ctx.Snapshot.Get(d.Parent); t != nil && t.TypeKind == model.TypeInterface && len(d.Body) == 0 {
		return false
	}
	return true
}

// sourceAccessors lowers property and indexer accessors. Non-auto
// declarations keep their body in the getter.
func sourceAccessors(ctx *Context, d *model.Decl) []syntax.Accessor {
	if d.Auto || !hasBody(ctx, d) {
		return autoAccessors(d.Accessors)
	}
	var out []syntax.Accessor
	if d.Accessors.Has(model.AccessorGet) {
		out = append(out, syntax.Accessor{Keyword: "get", Body: slices.Clone(d.Body)})
	}
	switch {
	case d.Accessors.Has(model.AccessorSet):
		out = append(out, syntax.Accessor{Keyword: "set"})
	case d.Accessors.Has(model.AccessorInit):
		out = append(out, syntax.Accessor{Keyword: "init"})
	}
	if len(out) == 0 {
		panic(fmt.Sprintf("lower: %s %s has neither accessor", d.Kind, d.Name))
	}
	return out
}

func typeShell(ctx *Context, d *model.Decl) *syntax.Member {
	m := &syntax.Member{
		Kind:       syntax.MemberType,
		Attributes: ctx.Gen.Attributes(d.Attributes),
		Modifiers:  ctx.Gen.Modifiers(d),
		Keyword:    d.TypeKind.String(),
		Name:       d.Name,
	}
	switch {
	case d.BaseType.IsValid():
		m.Bases = append(m.Bases, ctx.Snapshot.QualifiedName(d.BaseType))
	case d.BaseName != "":
		m.Bases = append(m.Bases, d.BaseName)
	}
	for _, iface := range d.Interfaces {
		m.Bases = append(m.Bases, ctx.Snapshot.QualifiedName(iface))
	}
	return m
}
