package lower

import (
	"fmt"
	"slices"

	"weave/internal/builder"
	"weave/internal/model"
	"weave/internal/syntax"
)

// Proceed describes what the proceed placeholder invokes inside an override.
type Proceed struct {
	Expr        string   // methods; empty drops bare proceed statements
	Get, Set    string   // properties and indexers
	Add, Remove string   // events
	Body        []string // constructors: statements spliced in place
}

// IntroducedProceed is what proceed means for a freshly introduced member:
// the hidden or overridden base member when there is one, a default otherwise.
func IntroducedProceed(ctx *Context, data builder.Data) Proceed {
	h := data.Head()
	base := chainsToBase(ctx, h)
	switch d := data.(type) {
	case *builder.MethodData:
		switch {
		case base && d.MethodKind == model.MethodOrdinary:
			names := make([]string, len(d.Params))
			for i, p := range d.Params {
				names[i] = p.Name
			}
			return Proceed{Expr: call("base", d.Name, names)}
		case ctx.returnsValue(d.ReturnType):
			return Proceed{Expr: "default"}
		}
		return Proceed{}
	case *builder.PropertyData:
		if base {
			return Proceed{Get: "base." + d.Name, Set: "base." + d.Name + " = value"}
		}
		return Proceed{Get: "default"}
	case *builder.IndexerData:
		if base {
			names := make([]string, len(d.Params))
			for i, p := range d.Params {
				names[i] = p.Name
			}
			index := "base[" + joinArgs(names) + "]"
			return Proceed{Get: index, Set: index + " = value"}
		}
		return Proceed{Get: "default"}
	case *builder.EventData:
		if base {
			return Proceed{Add: "base." + d.Name + " += value", Remove: "base." + d.Name + " -= value"}
		}
		return Proceed{}
	}
	return Proceed{}
}

// Helper turns the current syntax of a member into the private helper an
// override proceeds to. Only methods and properties have helpers.
func Helper(current *syntax.Member, name string) *syntax.Member {
	h := cloneMember(current)
	h.Name = name
	h.Attributes = nil
	h.Explicit = ""
	h.Modifiers = []string{"private"}
	if slices.Contains(current.Modifiers, "static") {
		h.Modifiers = append(h.Modifiers, "static")
	}
	switch current.Kind {
	case syntax.MemberMethod:
	case syntax.MemberProperty:
		for i := range h.Accessors {
			h.Accessors[i].Modifiers = nil
		}
	default:
		panic(fmt.Sprintf("lower: %s cannot be moved to a helper", current.Kind))
	}
	return h
}

// HelperProceed returns the proceed invoking helper name for current.
func HelperProceed(current *syntax.Member, name string) Proceed {
	recv := "this"
	if slices.Contains(current.Modifiers, "static") {
		recv = ""
	}
	target := name
	if recv != "" {
		target = recv + "." + name
	}
	switch current.Kind {
	case syntax.MemberMethod:
		names := make([]string, len(current.Params))
		for i, p := range current.Params {
			names[i] = p.Name
		}
		return Proceed{Expr: target + "(" + joinArgs(names) + ")"}
	case syntax.MemberProperty:
		return Proceed{Get: target, Set: target + " = value"}
	}
	panic(fmt.Sprintf("lower: %s has no helper proceed", current.Kind))
}

// InlineProceed returns the proceed splicing the current constructor body.
func InlineProceed(current *syntax.Member) Proceed {
	return Proceed{Body: slices.Clone(current.Body)}
}

// ApplyOverride wraps current with the template carried by data. The
// signature of current is kept; only bodies change.
func ApplyOverride(ctx *Context, current *syntax.Member, data builder.Data, p Proceed) *syntax.Member {
	out := cloneMember(current)
	switch d := data.(type) {
	case *builder.MethodData:
		out.HasBody = true
		out.Body = Substitute(proceedTemplate(d.Template, ctx.returnsValue(d.ReturnType) && current.Type != "void"), p.Expr)
	case *builder.ConstructorData:
		out.HasBody = true
		out.Body = overrideConstructorBody(d.Template, p.Body)
	case *builder.PropertyData:
		out.Value = ""
		out.Accessors = overrideAccessors(current.Accessors, map[string][]string{
			"get":  Substitute(proceedTemplate(d.GetTemplate, true), p.Get),
			"set":  Substitute(proceedTemplate(d.SetTemplate, false), p.Set),
			"init": Substitute(proceedTemplate(d.SetTemplate, false), p.Set),
		})
	case *builder.IndexerData:
		out.Accessors = overrideAccessors(current.Accessors, map[string][]string{
			"get": Substitute(proceedTemplate(d.GetTemplate, true), p.Get),
			"set": Substitute(proceedTemplate(d.SetTemplate, false), p.Set),
		})
	case *builder.EventData:
		if current.Kind != syntax.MemberEvent {
			panic("lower: field-like events cannot be overridden")
		}
		out.Accessors = overrideAccessors(current.Accessors, map[string][]string{
			"add":    Substitute(proceedTemplate(d.AddTemplate, false), p.Add),
			"remove": Substitute(proceedTemplate(d.RemoveTemplate, false), p.Remove),
		})
	default:
		panic(fmt.Sprintf("lower: cannot override with %T", data))
	}
	return out
}

// overrideConstructorBody splices the overridden body at the proceed
// statement. A leading struct zero-initialization always stays first.
func overrideConstructorBody(template, inner []string) []string {
	var out []string
	if len(inner) > 0 && inner[0] == structDefault {
		out = append(out, structDefault)
		inner = inner[1:]
	}
	if len(template) == 0 {
		return append(out, inner...)
	}
	return append(out, Inline(template, inner)...)
}

func overrideAccessors(current []syntax.Accessor, bodies map[string][]string) []syntax.Accessor {
	out := make([]syntax.Accessor, len(current))
	for i, a := range current {
		out[i] = syntax.Accessor{Keyword: a.Keyword, Modifiers: slices.Clone(a.Modifiers), Body: bodies[a.Keyword]}
	}
	return out
}

func cloneMember(m *syntax.Member) *syntax.Member {
	c := *m
	c.Attributes = slices.Clone(m.Attributes)
	c.Modifiers = slices.Clone(m.Modifiers)
	c.Params = slices.Clone(m.Params)
	c.Bases = slices.Clone(m.Bases)
	c.Body = slices.Clone(m.Body)
	c.Members = slices.Clone(m.Members)
	c.Accessors = make([]syntax.Accessor, len(m.Accessors))
	for i, a := range m.Accessors {
		c.Accessors[i] = syntax.Accessor{Keyword: a.Keyword, Modifiers: slices.Clone(a.Modifiers), Body: slices.Clone(a.Body), Auto: a.Auto}
	}
	if m.Accessors == nil {
		c.Accessors = nil
	}
	if m.Init != nil {
		init := *m.Init
		init.Args = slices.Clone(m.Init.Args)
		c.Init = &init
	}
	return &c
}
