package syntax

import (
	"strings"

	"weave/internal/model"
	"weave/internal/types"
)

// NullabilityMode controls whether nullable annotations are emitted.
type NullabilityMode uint8

const (
	// NullabilityOblivious drops '?' on reference types.
	NullabilityOblivious NullabilityMode = iota
	// NullabilityAware keeps annotations as declared.
	NullabilityAware
)

// ParseNullability maps "aware"/"oblivious" to a mode.
func ParseNullability(s string) (NullabilityMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "oblivious", "disable", "off":
		return NullabilityOblivious, true
	case "aware", "enable", "on":
		return NullabilityAware, true
	}
	return NullabilityOblivious, false
}

// ValueTypeOracle tells whether a named type is a value type.
type ValueTypeOracle interface {
	IsValueType(id types.TypeID) bool
}

// Generator is the syntax generation service used by lowering.
type Generator struct {
	Types  *types.Interner
	Values ValueTypeOracle
	Mode   NullabilityMode
}

// TypeSyntax renders id as a type reference.
func (g Generator) TypeSyntax(id types.TypeID) string {
	if id == types.NoTypeID {
		return "void"
	}
	var b strings.Builder
	g.writeType(&b, id)
	return b.String()
}

func (g Generator) writeType(b *strings.Builder, id types.TypeID) {
	t, ok := g.Types.Lookup(id)
	if !ok {
		b.WriteString("object")
		return
	}
	switch t.Kind {
	case types.KindNamed:
		b.WriteString(t.Name)
	case types.KindArray:
		g.writeType(b, t.Elem)
		b.WriteString("[]")
	case types.KindNullable:
		g.writeType(b, t.Elem)
		if g.Mode == NullabilityAware || g.isValue(t.Elem) {
			b.WriteByte('?')
		}
	default:
		b.WriteString(t.Kind.String())
	}
}

func (g Generator) isValue(id types.TypeID) bool {
	if g.Values != nil {
		return g.Values.IsValueType(id)
	}
	return g.Types.IsValueKeyword(id)
}

// Modifiers returns the modifier tokens for a declaration in canonical order.
func (g Generator) Modifiers(d *model.Decl) []string {
	var mods []string
	// explicit interface implementations and finalizers carry no accessibility
	showAccess := !d.ExplicitInterface.IsValid() && !d.IsFinalizer() &&
		d.Kind != model.DeclNamespace && d.Kind != model.DeclParameter
	if a := d.Access.String(); showAccess && a != "" {
		mods = append(mods, a)
	}
	add := func(f model.Flags, tok string) {
		if d.Flags&f != 0 {
			mods = append(mods, tok)
		}
	}
	add(model.FlagStatic, "static")
	add(model.FlagExtern, "extern")
	add(model.FlagNew, "new")
	if d.Flags&model.FlagOverride == 0 {
		add(model.FlagVirtual, "virtual")
	}
	add(model.FlagAbstract, "abstract")
	add(model.FlagSealed, "sealed")
	add(model.FlagOverride, "override")
	add(model.FlagReadOnly, "readonly")
	add(model.FlagConst, "const")
	add(model.FlagAsync, "async")
	return mods
}

// Attributes renders attribute lists: "[Name(args)]".
func (g Generator) Attributes(attrs []model.Attribute) []string {
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if len(a.Args) == 0 {
			out = append(out, "["+a.Name+"]")
			continue
		}
		out = append(out, "["+a.Name+"("+strings.Join(a.Args, ", ")+")]")
	}
	return out
}
