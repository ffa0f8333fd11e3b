package transform

import (
	"fmt"
	"strings"

	"weave/internal/builder"
	"weave/internal/lower"
	"weave/internal/model"
	"weave/internal/syntax"
)

// IntroduceMember adds a declaration, or replaces an implicit constructor
// with an explicit one.
type IntroduceMember struct {
	header
	Data builder.Data
}

// NewIntroduceMember wraps frozen data.
func NewIntroduceMember(adv Advice, data builder.Data) *IntroduceMember {
	return &IntroduceMember{header: header{advice: adv}, Data: data}
}

func (*IntroduceMember) isTransformation() {}

// Kind implements Transformation.
func (*IntroduceMember) Kind() Kind { return KindIntroduceMember }

// Target is the type or namespace receiving the declaration.
func (t *IntroduceMember) Target() model.Ref { return t.Data.Head().DeclaringType }

// DeclRef is the introduced declaration.
func (t *IntroduceMember) DeclRef() model.Ref { return t.Data.DeclRef() }

// ReplacesImplicit reports whether an implicit constructor is made explicit.
func (t *IntroduceMember) ReplacesImplicit() bool {
	c, ok := t.Data.(*builder.ConstructorData)
	return ok && c.ReplacesImplicit
}

// Position implements Transformation.
func (t *IntroduceMember) Position() Position {
	if t.ReplacesImplicit() {
		return Position{Relation: Replace, Anchor: t.Data.DeclRef()}
	}
	return Position{Relation: Within, Anchor: t.Target()}
}

// Observability implements Transformation.
func (t *IntroduceMember) Observability() Observability {
	if t.Data.Head().CompileTimeOnly {
		return ObservableCompileTimeOnly
	}
	return ObservableAlways
}

// Describe implements Transformation.
func (t *IntroduceMember) Describe(snap *model.Snapshot) string {
	if t.ReplacesImplicit() {
		return fmt.Sprintf("make %s explicit", snap.Display(t.Data.DeclRef()))
	}
	return fmt.Sprintf("introduce %s into %s", t.Data.Describe(), snap.Display(t.Target()))
}

// Lower implements Transformation.
func (t *IntroduceMember) Lower(ctx *lower.Context) syntax.Fragment {
	return syntax.Fragment{Kind: syntax.FragmentMember, Member: lower.Introduced(ctx, t.Data)}
}

// Apply implements Observable.
func (t *IntroduceMember) Apply(d *model.Delta) {
	decls := t.Data.Decls()
	main := decls[0]
	if t.ReplacesImplicit() {
		// keep membership; the ref is already listed by the parent
		main.Origin = model.Origin{Kind: model.OriginIntroduced, Aspect: t.advice.Aspect, Layer: t.advice.Layer}
		d.Put(&main)
	} else {
		d.AddMember(main)
	}
	for i := range decls[1:] {
		p := decls[1+i]
		d.Put(&p)
	}
}

// OverrideMember replaces the body of an existing or just-introduced member
// with a template. It does not change the declaration model.
type OverrideMember struct {
	header
	target model.Ref
	Data   builder.Data
	// Paired is set when the override accompanies the introduction of the
	// same declaration; proceed then calls what the introduction would.
	Paired bool
}

// NewOverrideMember overrides target with the template in data.
func NewOverrideMember(adv Advice, target model.Ref, data builder.Data, paired bool) *OverrideMember {
	return &OverrideMember{header: header{advice: adv}, target: target, Data: data, Paired: paired}
}

func (*OverrideMember) isTransformation() {}

// Kind implements Transformation.
func (*OverrideMember) Kind() Kind { return KindOverrideMember }

// Target implements Transformation.
func (t *OverrideMember) Target() model.Ref { return t.target }

// Position implements Transformation.
func (t *OverrideMember) Position() Position { return Position{Relation: Replace, Anchor: t.target} }

// Observability implements Transformation.
func (*OverrideMember) Observability() Observability { return ObservableNone }

// Describe implements Transformation.
func (t *OverrideMember) Describe(snap *model.Snapshot) string {
	return fmt.Sprintf("override %s with %s", snap.Display(t.target), t.Data.Describe())
}

// HelperName is the name of the member this override proceeds to when it
// wraps an earlier implementation.
func (t *OverrideMember) HelperName(target string, first bool) string {
	if first {
		return lower.SourceName(target)
	}
	return target + "_" + t.advice.Aspect
}

// Wrap applies the override on top of the current syntax of the target.
func (t *OverrideMember) Wrap(ctx *lower.Context, current *syntax.Member, p lower.Proceed) *syntax.Member {
	return lower.ApplyOverride(ctx, current, t.Data, p)
}

// Lower renders the override as the only one applied to its target.
func (t *OverrideMember) Lower(ctx *lower.Context) syntax.Fragment {
	var current *syntax.Member
	var p lower.Proceed
	target := ctx.Snapshot.Get(t.target)
	switch {
	case t.Paired:
		current = lower.Introduced(ctx, t.Data)
		p = lower.IntroducedProceed(ctx, t.Data)
	case target == nil:
		panic(fmt.Sprintf("transform: override target %d does not resolve", t.target))
	default:
		current = lower.Source(ctx, target)
		if current.Kind == syntax.MemberConstructor {
			p = lower.InlineProceed(current)
		} else {
			p = lower.HelperProceed(current, t.HelperName(current.Name, true))
		}
	}
	return syntax.Fragment{Kind: syntax.FragmentMember, Member: t.Wrap(ctx, current, p)}
}

// IntroduceParameter appends (or inserts) a parameter into a constructor.
type IntroduceParameter struct {
	header
	Param *builder.ParameterData
}

// NewIntroduceParameter wraps frozen parameter data; its owner is the target.
func NewIntroduceParameter(adv Advice, p *builder.ParameterData) *IntroduceParameter {
	return &IntroduceParameter{header: header{advice: adv}, Param: p}
}

func (*IntroduceParameter) isTransformation() {}

// Kind implements Transformation.
func (*IntroduceParameter) Kind() Kind { return KindIntroduceParameter }

// Target implements Transformation.
func (t *IntroduceParameter) Target() model.Ref { return t.Param.DeclaringType }

// DeclRef is the introduced parameter.
func (t *IntroduceParameter) DeclRef() model.Ref { return t.Param.Ref }

// Position implements Transformation.
func (t *IntroduceParameter) Position() Position {
	return Position{Relation: Within, Anchor: t.Param.DeclaringType}
}

// Observability implements Transformation.
func (*IntroduceParameter) Observability() Observability { return ObservableAlways }

// Describe implements Transformation.
func (t *IntroduceParameter) Describe(snap *model.Snapshot) string {
	return fmt.Sprintf("introduce %s into %s", t.Param.Describe(), snap.Display(t.Target()))
}

// Lower implements Transformation.
func (t *IntroduceParameter) Lower(ctx *lower.Context) syntax.Fragment {
	p := lower.ParamFromData(ctx, t.Param)
	return syntax.Fragment{Kind: syntax.FragmentParam, Param: &p}
}

// Apply implements Observable.
func (t *IntroduceParameter) Apply(d *model.Delta) {
	decl := t.Param.Decls()[0]
	d.InsertParameter(decl, t.Param.Index)
}

// AppendInitializerArgument adds an argument to the base(...) or this(...)
// call of a constructor. A constructor without an initializer gets base(...).
type AppendInitializerArgument struct {
	header
	ctor   model.Ref
	callee model.Ref
	Arg    string
	Name   string // set when the argument must be passed by name
}

// NewAppendInitializerArgument appends arg to ctor's call of callee.
func NewAppendInitializerArgument(adv Advice, ctor, callee model.Ref, arg, name string) *AppendInitializerArgument {
	return &AppendInitializerArgument{header: header{advice: adv}, ctor: ctor, callee: callee, Arg: arg, Name: name}
}

func (*AppendInitializerArgument) isTransformation() {}

// Kind implements Transformation.
func (*AppendInitializerArgument) Kind() Kind { return KindAppendInitializerArgument }

// Target implements Transformation.
func (t *AppendInitializerArgument) Target() model.Ref { return t.ctor }

// Callee is the constructor receiving the argument.
func (t *AppendInitializerArgument) Callee() model.Ref { return t.callee }

// Position implements Transformation.
func (t *AppendInitializerArgument) Position() Position {
	return Position{Relation: Within, Anchor: t.ctor}
}

// Observability implements Transformation.
func (*AppendInitializerArgument) Observability() Observability { return ObservableAlways }

// Argument renders the argument as it appears in the call.
func (t *AppendInitializerArgument) Argument() string {
	if t.Name != "" {
		return t.Name + ": " + t.Arg
	}
	return t.Arg
}

// Describe implements Transformation.
func (t *AppendInitializerArgument) Describe(snap *model.Snapshot) string {
	return fmt.Sprintf("pass %s from %s to %s", t.Argument(), snap.Display(t.ctor), snap.Display(t.callee))
}

func (t *AppendInitializerArgument) initializer(snap *model.Snapshot) model.InitializerKind {
	if c := snap.Get(t.ctor); c != nil && c.Initializer != model.InitNone {
		return c.Initializer
	}
	return model.InitBase
}

// Lower implements Transformation.
func (t *AppendInitializerArgument) Lower(ctx *lower.Context) syntax.Fragment {
	return syntax.Fragment{
		Kind:        syntax.FragmentArgument,
		Argument:    t.Argument(),
		Initializer: t.initializer(ctx.Snapshot).String(),
	}
}

// Apply implements Observable.
func (t *AppendInitializerArgument) Apply(d *model.Delta) {
	kind := t.initializer(d.Base())
	d.Update(t.ctor, func(c *model.Decl) {
		c.Initializer = kind
		c.InitArgs = append(c.InitArgs, t.Argument())
		c.InitTarget = t.callee
	})
}

// InsertStatement prepends statements to a constructor body.
type InsertStatement struct {
	header
	target     model.Ref
	Statements []string
}

// NewInsertStatement inserts stmts at the start of target's body.
func NewInsertStatement(adv Advice, target model.Ref, stmts ...string) *InsertStatement {
	return &InsertStatement{header: header{advice: adv}, target: target, Statements: append([]string(nil), stmts...)}
}

func (*InsertStatement) isTransformation() {}

// Kind implements Transformation.
func (*InsertStatement) Kind() Kind { return KindInsertStatement }

// Target implements Transformation.
func (t *InsertStatement) Target() model.Ref { return t.target }

// Position implements Transformation.
func (t *InsertStatement) Position() Position { return Position{Relation: Within, Anchor: t.target} }

// Observability implements Transformation.
func (*InsertStatement) Observability() Observability { return ObservableNone }

// Describe implements Transformation.
func (t *InsertStatement) Describe(snap *model.Snapshot) string {
	return fmt.Sprintf("insert %q into %s", strings.Join(t.Statements, " "), snap.Display(t.target))
}

// Lower implements Transformation.
func (t *InsertStatement) Lower(*lower.Context) syntax.Fragment {
	return syntax.Fragment{Kind: syntax.FragmentStatement, Statements: append([]string(nil), t.Statements...)}
}
