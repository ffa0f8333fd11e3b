package introduce

import (
	"fmt"

	"weave/internal/builder"
	"weave/internal/diag"
	"weave/internal/model"
	"weave/internal/pull"
	"weave/internal/source"
	"weave/internal/transform"
)

// Options tune language-dependent checks.
type Options struct {
	// LangVersion is the target language version; zero means the latest.
	LangVersion int
}

// structDefaultsRequired reports whether struct constructors must assign
// every field before use.
func (o Options) structDefaultsRequired() bool {
	return o.LangVersion > 0 && o.LangVersion < 11
}

// Engine runs introductions for one advice against one snapshot. It never
// changes the snapshot; callers fold the returned transformations.
type Engine struct {
	Snapshot *model.Snapshot
	Reporter diag.Reporter
	Factory  *builder.Factory
	Stamp    func() transform.Advice
	// Site is where the advice is declared; diagnostics point there when set.
	Site    source.Span
	Options Options
}

// member is implemented by every builder that becomes a type member.
type member interface {
	builder.Builder
	Signature() model.Signature
	Flags() model.Flags
	Aspect() string
	SetAccess(model.Accessibility)
	MarkNew(existing model.Ref)
	MarkOverride(existing model.Ref)
}

// IntroduceMethod introduces an ordinary method.
func (e *Engine) IntroduceMethod(b *builder.Method, s Strategy) Result {
	if b.MethodKind() != model.MethodOrdinary {
		panic(fmt.Sprintf("introduce: %s is not an ordinary method", b.Describe()))
	}
	return e.introduce(b, s)
}

// IntroduceOperator introduces a user-defined or conversion operator.
func (e *Engine) IntroduceOperator(b *builder.Method, s Strategy) Result {
	if k := b.MethodKind(); k != model.MethodOperator && k != model.MethodConversion {
		panic(fmt.Sprintf("introduce: %s is not an operator", b.Describe()))
	}
	return e.introduce(b, s)
}

// IntroduceFinalizer introduces a finalizer.
func (e *Engine) IntroduceFinalizer(b *builder.Method, s Strategy) Result {
	if b.MethodKind() != model.MethodFinalizer {
		panic(fmt.Sprintf("introduce: %s is not a finalizer", b.Describe()))
	}
	return e.introduce(b, s)
}

// IntroduceField introduces a field.
func (e *Engine) IntroduceField(b *builder.Field, s Strategy) Result { return e.introduce(b, s) }

// IntroduceProperty introduces a property.
func (e *Engine) IntroduceProperty(b *builder.Property, s Strategy) Result { return e.introduce(b, s) }

// IntroduceEvent introduces an event.
func (e *Engine) IntroduceEvent(b *builder.Event, s Strategy) Result { return e.introduce(b, s) }

// IntroduceIndexer introduces an indexer.
func (e *Engine) IntroduceIndexer(b *builder.Indexer, s Strategy) Result { return e.introduce(b, s) }

// IntroduceConstructor introduces a constructor. Overriding an implicit
// constructor makes it explicit.
func (e *Engine) IntroduceConstructor(b *builder.Constructor, s Strategy) Result {
	return e.introduce(b, s)
}

func (e *Engine) introduce(b member, s Strategy) Result {
	snap := e.Snapshot
	target := snap.Get(b.DeclaringType())
	if target == nil {
		return e.fail(nil, diag.AdvTargetNotFound, nil, b.Aspect(), fmt.Sprintf("ref %d", b.DeclaringType()))
	}
	if target.Kind != model.DeclType {
		return e.fail(target, diag.AdvInvalidTarget, nil, b.Aspect(), b.Describe(), e.where(target), "it is not a type")
	}
	if r, failed := e.precheck(target, b); failed {
		return r
	}
	existing, sameType := snap.FindInHierarchy(target.Ref, b.Signature())
	switch {
	case existing == nil:
		return e.accept(target, b, OutcomeDefault)
	case existing.Kind == model.DeclConstructor && existing.IsImplicit():
		// an explicit parameterless constructor takes the implicit one's place
		outcome := OutcomeDefault
		if s == Override {
			outcome = OutcomeOverride
		}
		return e.explicate(existing, b, outcome)
	}
	return e.resolve(target, b, s, existing, sameType)
}

// precheck rejects introductions the target type can never hold.
func (e *Engine) precheck(target *model.Decl, b member) (Result, bool) {
	sig := b.Signature()
	flags := b.Flags()
	aspect, desc, where := b.Aspect(), b.Describe(), e.where(target)
	static := sig.Static || flags&model.FlagConst != 0

	switch {
	case target.IsStatic() && !static:
		return e.fail(target, diag.AdvInstanceIntoStaticType, nil, aspect, desc, where), true
	case flags&(model.FlagVirtual|model.FlagAbstract) != 0 && (target.Has(model.FlagSealed) || target.TypeKind == model.TypeStruct):
		return e.fail(target, diag.AdvVirtualIntoSealedOrStruct, nil, aspect, desc, where), true
	case sig.Static && flags&(model.FlagVirtual|model.FlagAbstract) != 0:
		return e.fail(target, diag.AdvStaticVirtual, nil, aspect, desc), true
	case sig.Static && flags&model.FlagSealed != 0:
		return e.fail(target, diag.AdvStaticSealed, nil, aspect, desc), true
	}

	switch sig.Kind {
	case model.DeclMethod:
		switch sig.MethodKind {
		case model.MethodFinalizer:
			if target.TypeKind != model.TypeClass && target.TypeKind != model.TypeRecord {
				return e.fail(target, diag.AdvFinalizerNotAllowed, nil, aspect, where), true
			}
			if len(sig.Params) != 0 {
				return e.fail(target, diag.AdvInvalidOperator, nil, aspect, desc, "finalizers take no parameters"), true
			}
		case model.MethodOperator:
			if !sig.Static {
				return e.fail(target, diag.AdvInvalidOperator, nil, aspect, desc, "operators must be static"), true
			}
			if n := len(sig.Params); n < 1 || n > 2 {
				return e.fail(target, diag.AdvInvalidOperator, nil, aspect, desc, "operators take one or two parameters"), true
			}
		case model.MethodConversion:
			if !sig.Static {
				return e.fail(target, diag.AdvInvalidOperator, nil, aspect, desc, "operators must be static"), true
			}
			if len(sig.Params) != 1 {
				return e.fail(target, diag.AdvInvalidOperator, nil, aspect, desc, "conversion operators take exactly one parameter"), true
			}
		}
	case model.DeclField:
		if target.TypeKind == model.TypeInterface && !static {
			return e.fail(target, diag.AdvInvalidTarget, nil, aspect, desc, where, "interfaces cannot contain instance fields"), true
		}
	case model.DeclConstructor:
		if target.TypeKind == model.TypeInterface {
			return e.fail(target, diag.AdvInvalidTarget, nil, aspect, desc, where, "interfaces cannot contain constructors"), true
		}
	}
	return Result{}, false
}

// resolve runs the strategy branch for an existing member with the same
// name (and parameter list, for overloadable kinds).
func (e *Engine) resolve(target *model.Decl, b member, s Strategy, existing *model.Decl, sameType bool) Result {
	sig := b.Signature()
	aspect, desc, where := b.Aspect(), b.Describe(), e.where(target)
	have := e.Snapshot.Display(existing.Ref)

	if existing.Kind != sig.Kind {
		return e.fail(target, diag.AdvDifferentKind, existing, aspect, desc, where, have)
	}
	if existing.IsStatic() != sig.Static {
		return e.fail(target, diag.AdvDifferentStaticity, existing, aspect, desc, where, have)
	}

	switch s {
	case Fail:
		return e.fail(target, diag.AdvMemberAlreadyExists, existing, aspect, desc, where, have)
	case Ignore:
		return Result{Outcome: OutcomeIgnore, Decl: existing.Ref}
	case New:
		if sig.Kind == model.DeclConstructor {
			return e.fail(target, diag.AdvUnsupportedStrategy, existing, aspect, desc, where, s)
		}
		if sameType {
			return e.fail(target, diag.AdvNewMemberInSameType, existing, aspect, desc, where, have)
		}
		if !typeMatches(existing, sig) {
			return e.fail(target, diag.AdvDifferentType, existing, aspect, desc, where, have)
		}
		b.MarkNew(existing.Ref)
		return e.accept(target, b, OutcomeNew)
	case Override:
		switch sig.Kind {
		case model.DeclField, model.DeclType:
			return e.fail(target, diag.AdvUnsupportedStrategy, existing, aspect, desc, where, s)
		}
		if !typeMatches(existing, sig) {
			return e.fail(target, diag.AdvDifferentType, existing, aspect, desc, where, have)
		}
		if sameType {
			return e.overrideInPlace(target, existing, b, aspect)
		}
		if !model.CanOverride(existing) {
			return e.fail(target, diag.AdvCannotOverrideSealed, existing, aspect, have, desc)
		}
		b.SetAccess(existing.Access)
		b.MarkOverride(existing.Ref)
		return e.accept(target, b, OutcomeOverride)
	default:
		panic(fmt.Sprintf("introduce: unexpected strategy %v", s))
	}
}

// typeMatches compares the declared type of members that carry one.
func typeMatches(existing *model.Decl, sig model.Signature) bool {
	switch sig.Kind {
	case model.DeclMethod, model.DeclField, model.DeclProperty, model.DeclEvent, model.DeclIndexer:
		return existing.Type == sig.Return
	}
	return true
}

// overrideInPlace replaces the body of a member declared by the target type
// itself. The declaration keeps its signature; only syntax changes.
func (e *Engine) overrideInPlace(target, existing *model.Decl, b builder.Builder, aspect string) Result {
	desc, where := b.Describe(), e.where(target)
	switch existing.Kind {
	case model.DeclMethod:
		if existing.MethodKind != model.MethodOrdinary || existing.Has(model.FlagAbstract) || existing.Has(model.FlagExtern) {
			return e.fail(target, diag.AdvUnsupportedStrategy, existing, aspect, desc, where, Override)
		}
	case model.DeclProperty:
		if existing.Has(model.FlagAbstract) {
			return e.fail(target, diag.AdvUnsupportedStrategy, existing, aspect, desc, where, Override)
		}
	case model.DeclConstructor:
		if existing.IsImplicit() {
			return e.explicate(existing, b, OutcomeOverride)
		}
	default:
		return e.fail(target, diag.AdvUnsupportedStrategy, existing, aspect, desc, where, Override)
	}
	data := b.FreezeData()
	return Result{
		Outcome:         OutcomeOverride,
		Decl:            existing.Ref,
		Transformations: []transform.Transformation{transform.NewOverrideMember(e.Stamp(), existing.Ref, data, false)},
	}
}

// explicate replaces an implicit constructor with an explicit one carrying
// the accessibility, initializer, attributes and template of b. The result
// refers to the implicit constructor's ref, which the explicit one keeps.
func (e *Engine) explicate(implicit *model.Decl, b builder.Builder, outcome Outcome) Result {
	data := b.FreezeData()
	x := e.Factory.ExplicitConstructor(implicit)
	if c, ok := data.(*builder.ConstructorData); ok {
		x.SetAccess(c.Access)
		x.SetInitializer(c.Initializer, c.InitializerArgs...)
		for _, a := range c.Attributes {
			x.AddAttribute(a.Name, a.Args...)
		}
	}
	x.SetTemplate(data.Head().Template...)
	xd := x.Freeze()
	ts := []transform.Transformation{transform.NewIntroduceMember(e.Stamp(), xd)}
	if xd.HasTemplate() {
		ts = append(ts, transform.NewOverrideMember(e.Stamp(), implicit.Ref, xd, true))
	}
	return Result{Outcome: outcome, Decl: implicit.Ref, Transformations: ts}
}

// accept freezes b and emits its introduction, the body override when the
// member has a body to generate, and struct field defaults.
func (e *Engine) accept(target *model.Decl, b builder.Builder, outcome Outcome) Result {
	data := b.FreezeData()
	ts := []transform.Transformation{transform.NewIntroduceMember(e.Stamp(), data)}
	if hasBody(data) && (outcome == OutcomeNew || outcome == OutcomeOverride || builder.HasBodyTemplate(data)) {
		ts = append(ts, transform.NewOverrideMember(e.Stamp(), data.DeclRef(), data, true))
	}
	ts = append(ts, e.structDefaults(target, data)...)
	return Result{Outcome: outcome, Decl: data.DeclRef(), Transformations: ts}
}

func hasBody(data builder.Data) bool {
	if data.Head().Flags&(model.FlagAbstract|model.FlagExtern) != 0 {
		return false
	}
	switch d := data.(type) {
	case *builder.MethodData, *builder.ConstructorData, *builder.IndexerData:
		return true
	case *builder.PropertyData:
		return !d.Auto
	case *builder.EventData:
		return !d.FieldLike
	}
	return false
}

// structDefaults assigns a new instance field of a struct in every explicit
// source constructor that does not delegate with this(...).
func (e *Engine) structDefaults(target *model.Decl, data builder.Data) []transform.Transformation {
	if target == nil || target.TypeKind != model.TypeStruct || !e.Options.structDefaultsRequired() {
		return nil
	}
	if data.Head().IsStatic() || data.Head().Flags&model.FlagConst != 0 {
		return nil
	}
	switch d := data.(type) {
	case *builder.FieldData:
	case *builder.PropertyData:
		if !d.Auto {
			return nil
		}
	case *builder.EventData:
		if !d.FieldLike {
			return nil
		}
	default:
		return nil
	}
	stmt := "this." + data.Head().Name + " = default;"
	var out []transform.Transformation
	for _, c := range e.Snapshot.Constructors(target.Ref) {
		if c.IsStatic() || c.IsImplicit() || c.Origin.Kind != model.OriginSource || c.Initializer == model.InitThis {
			continue
		}
		out = append(out, transform.NewInsertStatement(e.Stamp(), c.Ref, stmt))
	}
	return out
}

// IntroduceType introduces a type into a namespace, a type (nested) or the
// global namespace.
func (e *Engine) IntroduceType(b *builder.Type, s Strategy) Result {
	parent, r, failed := e.container(b, true)
	if failed {
		return r
	}
	var existing *model.Decl
	sameType := true
	if parent != nil && parent.Kind == model.DeclType {
		existing, sameType = e.Snapshot.FindInHierarchy(parent.Ref, b.Signature())
	} else {
		existing = e.childNamed(parent, b.Name())
	}
	if existing == nil {
		return e.accept(parent, b, OutcomeDefault)
	}
	return e.resolve(parent, b, s, existing, sameType)
}

// IntroduceNamespace introduces a namespace. An existing namespace with the
// same name is reused.
func (e *Engine) IntroduceNamespace(b *builder.Namespace) Result {
	parent, r, failed := e.container(b, false)
	if failed {
		return r
	}
	existing := e.childNamed(parent, b.Name())
	switch {
	case existing == nil:
		data := b.Freeze()
		return Result{
			Outcome:         OutcomeDefault,
			Decl:            data.Ref,
			Transformations: []transform.Transformation{transform.NewIntroduceMember(e.Stamp(), data)},
		}
	case existing.Kind == model.DeclNamespace:
		return Result{Outcome: OutcomeIgnore, Decl: existing.Ref}
	}
	return e.fail(parent, diag.AdvDifferentKind, existing, b.Aspect(), b.Describe(), e.where(parent), e.Snapshot.Display(existing.Ref))
}

type scoped interface {
	builder.Builder
	Aspect() string
}

// container resolves the parent of a namespace or type introduction; nil
// is the global namespace.
func (e *Engine) container(b scoped, typesAllowed bool) (*model.Decl, Result, bool) {
	ref := b.DeclaringType()
	if !ref.IsValid() {
		return nil, Result{}, false
	}
	parent := e.Snapshot.Get(ref)
	if parent == nil {
		return nil, e.fail(nil, diag.AdvTargetNotFound, nil, b.Aspect(), fmt.Sprintf("ref %d", ref)), true
	}
	switch {
	case parent.Kind == model.DeclNamespace:
	case parent.Kind == model.DeclType && typesAllowed:
	default:
		return nil, e.fail(parent, diag.AdvInvalidTarget, nil, b.Aspect(), b.Describe(), e.where(parent), "it cannot contain this declaration"), true
	}
	return parent, Result{}, false
}

func (e *Engine) childNamed(parent *model.Decl, name string) *model.Decl {
	if parent != nil {
		if ms := e.Snapshot.MembersNamed(parent.Ref, name); len(ms) > 0 {
			return ms[0]
		}
		return nil
	}
	for _, ref := range e.Snapshot.Roots() {
		if d := e.Snapshot.Get(ref); d != nil && d.Name == name {
			return d
		}
	}
	return nil
}

// IntroduceParameter appends (or inserts) a parameter into a constructor and
// pulls it through the constructors chaining to it according to policy. A
// nil policy relies on the parameter default everywhere.
func (e *Engine) IntroduceParameter(b *builder.Parameter, policy pull.Policy) Result {
	snap := e.Snapshot
	aspect := b.Aspect()
	ctor := snap.Get(b.DeclaringType())
	if ctor == nil {
		return e.fail(nil, diag.AdvTargetNotFound, nil, aspect, fmt.Sprintf("ref %d", b.DeclaringType()))
	}
	if ctor.Kind != model.DeclConstructor {
		return e.fail(ctor, diag.AdvInvalidTarget, nil, aspect, b.Describe(), e.where(ctor), "it is not a constructor")
	}
	if ctor.IsStatic() {
		return e.fail(ctor, diag.AdvParameterIntoStaticCtor, nil, aspect, b.Name(), e.where(ctor))
	}
	for _, p := range snap.Params(ctor.Ref) {
		if p.Name == b.Name() {
			return e.fail(ctor, diag.AdvParameterAlreadyExists, p, aspect, b.Name(), e.where(ctor))
		}
	}

	var ts []transform.Transformation
	if ctor.IsImplicit() {
		ts = append(ts, transform.NewIntroduceMember(e.Stamp(), e.Factory.ExplicitConstructor(ctor).Freeze()))
	}
	data := b.Freeze()
	ts = append(ts, transform.NewIntroduceParameter(e.Stamp(), data))
	if policy == nil {
		policy = pull.Always(pull.DoNotPull)
	}
	p := &pull.Propagator{Snapshot: snap, Factory: e.Factory, Stamp: e.Stamp}
	ts = append(ts, p.Propagate(ctor.Ref, data, policy)...)
	return Result{Outcome: OutcomeDefault, Decl: data.Ref, Transformations: ts}
}

// OverrideExisting replaces the body of a member declared in source (or
// introduced by an earlier layer) with the template carried by b.
func (e *Engine) OverrideExisting(target model.Ref, b builder.Builder) Result {
	aspect := e.Factory.Aspect
	existing := e.Snapshot.Get(target)
	if existing == nil {
		return e.fail(nil, diag.AdvTargetNotFound, nil, aspect, fmt.Sprintf("ref %d", target))
	}
	owner := e.Snapshot.Get(existing.Parent)
	if kind := b.FreezeData().Head().Kind; kind != existing.Kind {
		return e.fail(owner, diag.AdvDifferentKind, existing, aspect, b.Describe(), e.where(owner), e.Snapshot.Display(existing.Ref))
	}
	return e.overrideInPlace(owner, existing, b, aspect)
}

func (e *Engine) where(d *model.Decl) string {
	if d == nil {
		return "global namespace"
	}
	return e.Snapshot.Display(d.Ref)
}

func (e *Engine) site(target *model.Decl) source.Span {
	if e.Site.IsValid() || target == nil {
		return e.Site
	}
	return target.Span
}

// fail reports code through the sink and returns the error result. The
// conflicting declaration, when known, is attached as a note.
func (e *Engine) fail(target *model.Decl, code diag.Code, existing *model.Decl, args ...any) Result {
	rb := diag.Errorf(e.Reporter, code, e.site(target), args...)
	var decl model.Ref
	if existing != nil {
		decl = existing.Ref
		rb.WithNote(existing.Span, fmt.Sprintf("'%s' is declared here", e.Snapshot.Display(existing.Ref)))
	}
	rb.Emit()
	d := rb.Diagnostic()
	return Result{Outcome: OutcomeError, Decl: decl, Diagnostic: &d}
}
