package project

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"weave/internal/builder"
	"weave/internal/diag"
	"weave/internal/introduce"
	"weave/internal/model"
	"weave/internal/pipeline"
	"weave/internal/project/dag"
	"weave/internal/pull"
	"weave/internal/refs"
	"weave/internal/source"
	"weave/internal/types"
)

// AdviceKind selects what an advice introduces.
type AdviceKind string

const (
	KindMethod      AdviceKind = "method"
	KindOperator    AdviceKind = "operator"
	KindFinalizer   AdviceKind = "finalizer"
	KindField       AdviceKind = "field"
	KindProperty    AdviceKind = "property"
	KindEvent       AdviceKind = "event"
	KindIndexer     AdviceKind = "indexer"
	KindConstructor AdviceKind = "constructor"
	KindType        AdviceKind = "type"
	KindNamespace   AdviceKind = "namespace"
	KindParameter   AdviceKind = "parameter"
	KindOverride    AdviceKind = "override"
)

var adviceKinds = map[AdviceKind]bool{
	KindMethod: true, KindOperator: true, KindFinalizer: true, KindField: true,
	KindProperty: true, KindEvent: true, KindIndexer: true, KindConstructor: true,
	KindType: true, KindNamespace: true, KindParameter: true, KindOverride: true,
}

// AdviceSpec is one advice of a plan. Target is the symbol key of the
// declaration the advice works on: a type for member kinds, a type or
// namespace for types, a constructor for parameters, any member for
// overrides. Name is the introduced name (operator token for operators).
type AdviceSpec struct {
	Name            string      `toml:"name"`
	Kind            AdviceKind  `toml:"kind"`
	Target          string      `toml:"target"`
	Member          string      `toml:"member"`
	Strategy        string      `toml:"strategy"`
	Type            string      `toml:"type"`
	Access          string      `toml:"access"`
	Modifiers       []string    `toml:"modifiers"`
	Params          []ParamSpec `toml:"params"`
	Template        []string    `toml:"template"`
	Getter          []string    `toml:"getter"`
	Setter          []string    `toml:"setter"`
	Add             []string    `toml:"add"`
	Remove          []string    `toml:"remove"`
	Init            string      `toml:"init"`
	Writeability    string      `toml:"writeability"`
	TypeKind        string      `toml:"type_kind"`
	Base            string      `toml:"base"`
	Initializer     string      `toml:"initializer"`
	Args            []string    `toml:"args"`
	Pull            string      `toml:"pull"`
	Index           *int        `toml:"index"`
	Attributes      []string    `toml:"attributes"`
	CompileTimeOnly bool        `toml:"compile_time_only"`
}

// AspectSpec is a named list of advices ordered after other aspects.
type AspectSpec struct {
	Name    string       `toml:"name"`
	After   []string     `toml:"after"`
	Advices []AdviceSpec `toml:"advice"`
}

// PlanFile is the decoded form of a plan file.
type PlanFile struct {
	Aspects []AspectSpec `toml:"aspect"`
}

// Plan is a validated plan with declaration sites resolved.
type Plan struct {
	aspects []plannedAspect
	// Order lists aspect names in execution order.
	Order []string
	// Batches groups aspects that do not depend on each other.
	Batches [][]string
}

type plannedAspect struct {
	spec    *AspectSpec
	site    source.Span
	advices []plannedAdvice
}

type plannedAdvice struct {
	spec     *AdviceSpec
	site     source.Span
	strategy introduce.Strategy
	policy   pull.Policy
}

// LoadPlan reads a plan file. Invalid advices and ordering problems are
// reported to r and left out of the plan.
func LoadPlan(fs *source.FileSet, path string, r diag.Reporter) (*Plan, error) {
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	return buildPlan(fs.Get(id), r)
}

// ParsePlan is LoadPlan for in-memory content.
func ParsePlan(fs *source.FileSet, name string, content []byte, r diag.Reporter) (*Plan, error) {
	return buildPlan(fs.Get(fs.AddSource(name, content)), r)
}

func buildPlan(file *source.File, r diag.Reporter) (*Plan, error) {
	var pf PlanFile
	if _, err := toml.Decode(string(file.Content), &pf); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", file.Path, err)
	}
	loc := &locator{file: file}
	invalid := func(span source.Span, format string, args ...any) {
		diag.ReportError(r, diag.PrjInvalidPlan, span, fmt.Sprintf(format, args...)).Emit()
	}

	planned := make([]plannedAspect, 0, len(pf.Aspects))
	nodes := make([]dag.AspectNode, 0, len(pf.Aspects))
	for i := range pf.Aspects {
		spec := &pf.Aspects[i]
		site := loc.quoted(spec.Name)
		if !IsValidIdent(spec.Name) {
			invalid(site, "invalid aspect name %q", spec.Name)
			continue
		}
		pa := plannedAspect{spec: spec, site: site}
		for j := range spec.Advices {
			adv := &spec.Advices[j]
			advSite := loc.quoted(adv.Name)
			if p, ok := planAdvice(adv, advSite, invalid); ok {
				pa.advices = append(pa.advices, p)
			}
		}
		node := dag.AspectNode{Name: spec.Name, Span: site}
		for _, dep := range spec.After {
			node.After = append(node.After, dag.Dep{Name: strings.TrimSpace(dep), Span: loc.quotedAfter(dep, site)})
		}
		planned = append(planned, pa)
		nodes = append(nodes, node)
	}

	idx := dag.BuildIndex(nodes)
	g, slots := dag.BuildGraph(idx, nodes, r)
	topo := dag.ToposortKahn(g)
	dag.ReportCycles(idx, slots, topo, r)

	byName := make(map[string]*plannedAspect, len(planned))
	for i := range planned {
		if _, dup := byName[planned[i].spec.Name]; !dup {
			byName[planned[i].spec.Name] = &planned[i]
		}
	}
	plan := &Plan{}
	for _, id := range topo.Order {
		name := idx.IDToName[int(id)]
		plan.aspects = append(plan.aspects, *byName[name])
		plan.Order = append(plan.Order, name)
	}
	for _, batch := range topo.Batches {
		names := make([]string, len(batch))
		for i, id := range batch {
			names[i] = idx.IDToName[int(id)]
		}
		plan.Batches = append(plan.Batches, names)
	}
	return plan, nil
}

func planAdvice(adv *AdviceSpec, site source.Span, invalid func(source.Span, string, ...any)) (plannedAdvice, bool) {
	p := plannedAdvice{spec: adv, site: site}
	if strings.TrimSpace(adv.Name) == "" {
		invalid(site, "advice without a name")
		return p, false
	}
	if !adviceKinds[adv.Kind] {
		invalid(site, "advice %s: unknown kind %q", adv.Name, adv.Kind)
		return p, false
	}
	if adv.Kind != KindNamespace && strings.TrimSpace(adv.Target) == "" {
		invalid(site, "advice %s: target is required", adv.Name)
		return p, false
	}
	switch adv.Kind {
	case KindMethod, KindField, KindProperty, KindEvent, KindType, KindNamespace, KindParameter:
		if !IsValidIdent(adv.Member) {
			invalid(site, "advice %s: invalid member name %q", adv.Name, adv.Member)
			return p, false
		}
	case KindOperator:
		if strings.TrimSpace(adv.Member) == "" {
			invalid(site, "advice %s: operator token is required", adv.Name)
			return p, false
		}
	}
	s, err := introduce.ParseStrategy(adv.Strategy)
	if err != nil {
		invalid(site, "advice %s: %v", adv.Name, err)
		return p, false
	}
	p.strategy = s
	if _, ok := parseWriteability(adv.Writeability); !ok {
		invalid(site, "advice %s: unknown writeability %q", adv.Name, adv.Writeability)
		return p, false
	}
	if adv.Kind == KindParameter {
		if p.policy, err = pull.ParsePolicy(adv.Pull); err != nil {
			invalid(site, "advice %s: %v", adv.Name, err)
			return p, false
		}
	}
	return p, true
}

// Aspects turns the plan into pipeline aspects in execution order.
func (p *Plan) Aspects() []pipeline.Aspect {
	out := make([]pipeline.Aspect, 0, len(p.aspects))
	for _, pa := range p.aspects {
		a := pipeline.Aspect{Name: pa.spec.Name}
		for _, adv := range pa.advices {
			a.Advices = append(a.Advices, pipeline.Advice{
				Name: adv.spec.Name,
				Site: adv.site,
				Run:  adv.run,
			})
		}
		out = append(out, a)
	}
	return out
}

// Len returns the number of planned advices.
func (p *Plan) Len() int {
	n := 0
	for _, a := range p.aspects {
		n += len(a.advices)
	}
	return n
}

func (p plannedAdvice) run(ac *pipeline.AdviceContext) error {
	spec := p.spec
	var target *model.Decl
	if spec.Target != "" {
		d, err := ac.Resolve(refs.Symbol(spec.Target))
		if err != nil {
			diag.Errorf(ac.Reporter(), diag.PrjUnknownTarget, p.site, spec.Name, spec.Target).Emit()
			return nil
		}
		target = d
	}
	b := &adviceBuilder{ac: ac, spec: spec, types: ac.Types()}
	f := ac.Factory()

	switch spec.Kind {
	case KindNamespace:
		parent := model.NoRef
		if target != nil {
			parent = target.Ref
		}
		ac.IntroduceNamespace(f.Namespace(parent, spec.Member))
		return nil
	case KindParameter:
		typ, err := b.typ(spec.Type)
		if err != nil {
			return err
		}
		pb := f.Parameter(target.Ref, spec.Member, typ, spec.Init)
		if spec.Index != nil {
			pb.SetIndex(*spec.Index)
		}
		ac.IntroduceParameter(pb, p.policy)
		return nil
	case KindOverride:
		ob, err := b.overrideOf(target)
		if err != nil {
			return err
		}
		ac.OverrideExisting(target.Ref, ob)
		return nil
	}

	if target.Kind != model.DeclType && spec.Kind != KindType {
		diag.Errorf(ac.Reporter(), diag.PrjUnknownTarget, p.site, spec.Name, spec.Target+" (not a type)").Emit()
		return nil
	}
	switch spec.Kind {
	case KindMethod:
		m := f.Method(target.Ref, spec.Member)
		if err := b.method(m); err != nil {
			return err
		}
		ac.IntroduceMethod(m, p.strategy)
	case KindOperator:
		ret, err := b.typ(spec.Type)
		if err != nil {
			return err
		}
		m := f.Operator(target.Ref, spec.Member, ret)
		if err := b.method(m); err != nil {
			return err
		}
		ac.IntroduceOperator(m, p.strategy)
	case KindFinalizer:
		m := f.Finalizer(target.Ref)
		if err := b.common(m); err != nil {
			return err
		}
		m.SetTemplate(spec.Template...)
		ac.IntroduceFinalizer(m, p.strategy)
	case KindField:
		typ, err := b.typ(spec.Type)
		if err != nil {
			return err
		}
		fb := f.Field(target.Ref, spec.Member, typ)
		if err := b.common(fb); err != nil {
			return err
		}
		fb.SetInitializer(spec.Init)
		if spec.Writeability != "" {
			w, ok := parseWriteability(spec.Writeability)
			if !ok {
				return fmt.Errorf("unknown writeability %q", spec.Writeability)
			}
			fb.SetWriteability(w)
		}
		ac.IntroduceField(fb, p.strategy)
	case KindProperty:
		typ, err := b.typ(spec.Type)
		if err != nil {
			return err
		}
		pb := f.Property(target.Ref, spec.Member, typ)
		if err := b.property(pb); err != nil {
			return err
		}
		ac.IntroduceProperty(pb, p.strategy)
	case KindEvent:
		typ, err := b.typ(spec.Type)
		if err != nil {
			return err
		}
		eb := f.Event(target.Ref, spec.Member, typ)
		if err := b.common(eb); err != nil {
			return err
		}
		eb.SetInitializer(spec.Init)
		if len(spec.Add) > 0 || len(spec.Remove) > 0 {
			eb.SetAccessors(spec.Add, spec.Remove)
		}
		ac.IntroduceEvent(eb, p.strategy)
	case KindIndexer:
		typ, err := b.typ(spec.Type)
		if err != nil {
			return err
		}
		ib := f.Indexer(target.Ref, typ)
		if err := b.common(ib); err != nil {
			return err
		}
		for _, ps := range spec.Params {
			pt, err := b.typ(ps.Type)
			if err != nil {
				return err
			}
			ib.AddParameter(ps.Name, pt)
		}
		ib.SetGetter(spec.Getter...)
		if len(spec.Setter) > 0 {
			ib.SetSetter(spec.Setter...)
		}
		ac.IntroduceIndexer(ib, p.strategy)
	case KindConstructor:
		cb := f.Constructor(target.Ref, target.Name)
		if err := b.constructor(cb); err != nil {
			return err
		}
		ac.IntroduceConstructor(cb, p.strategy)
	case KindType:
		kind, ok := parseTypeKind(spec.TypeKind)
		if !ok {
			return fmt.Errorf("unknown type kind %q", spec.TypeKind)
		}
		tb := f.Type(target.Ref, spec.Member, kind)
		if err := b.common(tb); err != nil {
			return err
		}
		if spec.Base != "" {
			if base, err := ac.Resolve(refs.Symbol(spec.Base)); err == nil {
				tb.SetBaseType(base.Ref)
			} else {
				tb.SetBaseName(spec.Base)
			}
		}
		ac.IntroduceType(tb, p.strategy)
	}
	return nil
}

// adviceBuilder fills builders from an advice spec.
type adviceBuilder struct {
	ac    *pipeline.AdviceContext
	spec  *AdviceSpec
	types *types.Interner
}

func (b *adviceBuilder) typ(text string) (types.TypeID, error) {
	if strings.TrimSpace(text) == "" {
		return b.types.Builtins().Void, nil
	}
	id, err := b.types.Parse(text)
	if err != nil {
		return types.NoTypeID, fmt.Errorf("type %q: %w", text, err)
	}
	return id, nil
}

// modifiable is implemented by every member builder.
type modifiable interface {
	SetAccess(model.Accessibility)
	SetStatic(bool)
	SetVirtual(bool)
	SetAbstract(bool)
	SetSealed(bool)
	SetAsync(bool)
	AddAttribute(name string, args ...string)
	SetCompileTimeOnly(bool)
}

func (b *adviceBuilder) common(m modifiable) error {
	spec := b.spec
	if spec.Access != "" {
		access, ok := model.ParseAccessibility(spec.Access)
		if !ok {
			return fmt.Errorf("unknown accessibility %q", spec.Access)
		}
		m.SetAccess(access)
	}
	for _, mod := range spec.Modifiers {
		switch strings.TrimSpace(mod) {
		case "static":
			m.SetStatic(true)
		case "virtual":
			m.SetVirtual(true)
		case "abstract":
			m.SetAbstract(true)
		case "sealed":
			m.SetSealed(true)
		case "async":
			m.SetAsync(true)
		case "readonly":
			if fb, ok := m.(*builder.Field); ok {
				fb.SetReadOnly(true)
				continue
			}
			return fmt.Errorf("modifier 'readonly' applies to fields only")
		default:
			return fmt.Errorf("unsupported modifier %q", mod)
		}
	}
	for _, attr := range spec.Attributes {
		m.AddAttribute(strings.TrimSpace(attr))
	}
	if spec.CompileTimeOnly {
		m.SetCompileTimeOnly(true)
	}
	return nil
}

func (b *adviceBuilder) method(m *builder.Method) error {
	if err := b.common(m); err != nil {
		return err
	}
	if m.MethodKind() == model.MethodOrdinary {
		ret, err := b.typ(b.spec.Type)
		if err != nil {
			return err
		}
		m.SetReturnType(ret)
	}
	for _, ps := range b.spec.Params {
		pt, err := b.typ(ps.Type)
		if err != nil {
			return err
		}
		pb := m.AddParameter(ps.Name, pt, ps.Default)
		if ps.Params {
			pb.SetParams(true)
		}
	}
	m.SetTemplate(b.spec.Template...)
	return nil
}

func (b *adviceBuilder) property(p *builder.Property) error {
	if err := b.common(p); err != nil {
		return err
	}
	p.SetInitializer(b.spec.Init)
	if b.spec.Writeability != "" {
		w, ok := parseWriteability(b.spec.Writeability)
		if !ok {
			return fmt.Errorf("unknown writeability %q", b.spec.Writeability)
		}
		p.SetWriteability(w)
	}
	if len(b.spec.Getter) > 0 {
		p.SetGetter(b.spec.Getter...)
	}
	if len(b.spec.Setter) > 0 {
		p.SetSetter(b.spec.Setter...)
	}
	if len(b.spec.Template) > 0 {
		p.SetTemplate(b.spec.Template...)
	}
	return nil
}

func (b *adviceBuilder) constructor(c *builder.Constructor) error {
	if err := b.common(c); err != nil {
		return err
	}
	for _, ps := range b.spec.Params {
		pt, err := b.typ(ps.Type)
		if err != nil {
			return err
		}
		c.AddParameter(ps.Name, pt, ps.Default)
	}
	switch strings.TrimSpace(b.spec.Initializer) {
	case "":
	case "this":
		c.SetInitializer(model.InitThis, b.spec.Args...)
	case "base":
		c.SetInitializer(model.InitBase, b.spec.Args...)
	default:
		return fmt.Errorf("unknown initializer %q (expected: this|base)", b.spec.Initializer)
	}
	c.SetTemplate(b.spec.Template...)
	return nil
}

// overrideOf builds a template-only builder matching the existing member.
func (b *adviceBuilder) overrideOf(existing *model.Decl) (builder.Builder, error) {
	f := b.ac.Factory()
	snap := b.ac.Snapshot()
	switch existing.Kind {
	case model.DeclMethod:
		m := f.Method(existing.Parent, existing.Name)
		m.SetReturnType(existing.Type)
		for _, pref := range existing.Params {
			if pd := snap.Get(pref); pd != nil {
				m.AddParameter(pd.Name, pd.Type, pd.Value)
			}
		}
		m.SetTemplate(b.spec.Template...)
		return m, nil
	case model.DeclProperty:
		p := f.Property(existing.Parent, existing.Name, existing.Type)
		if len(b.spec.Getter) > 0 {
			p.SetGetter(b.spec.Getter...)
		}
		if len(b.spec.Setter) > 0 {
			p.SetSetter(b.spec.Setter...)
		}
		p.SetTemplate(b.spec.Template...)
		return p, nil
	case model.DeclConstructor:
		c := f.Constructor(existing.Parent, existing.Name)
		for _, pref := range existing.Params {
			if pd := snap.Get(pref); pd != nil {
				c.AddParameter(pd.Name, pd.Type, pd.Value)
			}
		}
		c.SetTemplate(b.spec.Template...)
		return c, nil
	}
	return nil, fmt.Errorf("cannot override %s '%s'", existing.Kind, snap.Display(existing.Ref))
}

func parseWriteability(s string) (model.Writeability, bool) {
	switch strings.TrimSpace(s) {
	case "", "all":
		return model.WriteAll, true
	case "init-only":
		return model.WriteInitOnly, true
	case "constructor-only":
		return model.WriteConstructorOnly, true
	case "none":
		return model.WriteNone, true
	}
	return model.WriteAll, false
}
