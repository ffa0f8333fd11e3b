package pipeline

import (
	"context"

	"weave/internal/builder"
	"weave/internal/diag"
	"weave/internal/introduce"
	"weave/internal/model"
	"weave/internal/pull"
	"weave/internal/refs"
	"weave/internal/transform"
	"weave/internal/types"
)

// Outcome records one introduction performed by an advice.
type Outcome struct {
	Aspect string
	Advice string
	introduce.Result
}

// AdviceContext is handed to an advice. Every successful introduction is
// folded into the working snapshot before the call returns, so the next call
// already sees it.
type AdviceContext struct {
	ctx     context.Context
	state   *state
	aspect  string
	layer   int
	advice  *Advice
	factory *builder.Factory
}

// Context returns the context of the running pipeline.
func (ac *AdviceContext) Context() context.Context { return ac.ctx }

// Aspect is the name of the running aspect.
func (ac *AdviceContext) Aspect() string { return ac.aspect }

// Layer is the position of the running aspect, starting at 1.
func (ac *AdviceContext) Layer() int { return ac.layer }

// Snapshot is the current working snapshot.
func (ac *AdviceContext) Snapshot() *model.Snapshot { return ac.state.snap }

// Types is the type interner shared by every snapshot of the run.
func (ac *AdviceContext) Types() *types.Interner { return ac.state.snap.Interner() }

// Factory creates builders attributed to the running aspect.
func (ac *AdviceContext) Factory() *builder.Factory { return ac.factory }

// Reporter is the diagnostic sink of the run.
func (ac *AdviceContext) Reporter() diag.Reporter { return ac.state.reporter }

// Resolve finds a declaration in the current snapshot.
func (ac *AdviceContext) Resolve(ref refs.Reference) (*model.Decl, error) {
	return ac.state.resolver.Resolve(ac.state.snap, ref)
}

func (ac *AdviceContext) engine() *introduce.Engine {
	return &introduce.Engine{
		Snapshot: ac.state.snap,
		Reporter: ac.state.reporter,
		Factory:  ac.factory,
		Stamp:    func() transform.Advice { return ac.state.counter.Stamp(ac.aspect, ac.layer) },
		Site:     ac.advice.Site,
		Options:  introduce.Options{LangVersion: ac.state.opts.LangVersion},
	}
}

func (ac *AdviceContext) record(r introduce.Result) introduce.Result {
	st := ac.state
	if !r.Failed() && len(r.Transformations) > 0 {
		st.snap = transform.Fold(st.snap, ac.aspect+"/"+ac.advice.Name, r.Transformations)
		st.all = append(st.all, r.Transformations...)
	}
	st.outcomes = append(st.outcomes, Outcome{Aspect: ac.aspect, Advice: ac.advice.Name, Result: r})
	return r
}

// IntroduceMethod introduces an ordinary method.
func (ac *AdviceContext) IntroduceMethod(b *builder.Method, s introduce.Strategy) introduce.Result {
	return ac.record(ac.engine().IntroduceMethod(b, s))
}

// IntroduceOperator introduces an operator or conversion.
func (ac *AdviceContext) IntroduceOperator(b *builder.Method, s introduce.Strategy) introduce.Result {
	return ac.record(ac.engine().IntroduceOperator(b, s))
}

// IntroduceFinalizer introduces a finalizer.
func (ac *AdviceContext) IntroduceFinalizer(b *builder.Method, s introduce.Strategy) introduce.Result {
	return ac.record(ac.engine().IntroduceFinalizer(b, s))
}

// IntroduceField introduces a field.
func (ac *AdviceContext) IntroduceField(b *builder.Field, s introduce.Strategy) introduce.Result {
	return ac.record(ac.engine().IntroduceField(b, s))
}

// IntroduceProperty introduces a property.
func (ac *AdviceContext) IntroduceProperty(b *builder.Property, s introduce.Strategy) introduce.Result {
	return ac.record(ac.engine().IntroduceProperty(b, s))
}

// IntroduceEvent introduces an event.
func (ac *AdviceContext) IntroduceEvent(b *builder.Event, s introduce.Strategy) introduce.Result {
	return ac.record(ac.engine().IntroduceEvent(b, s))
}

// IntroduceIndexer introduces an indexer.
func (ac *AdviceContext) IntroduceIndexer(b *builder.Indexer, s introduce.Strategy) introduce.Result {
	return ac.record(ac.engine().IntroduceIndexer(b, s))
}

// IntroduceConstructor introduces a constructor.
func (ac *AdviceContext) IntroduceConstructor(b *builder.Constructor, s introduce.Strategy) introduce.Result {
	return ac.record(ac.engine().IntroduceConstructor(b, s))
}

// IntroduceType introduces a nested or namespace-level type.
func (ac *AdviceContext) IntroduceType(b *builder.Type, s introduce.Strategy) introduce.Result {
	return ac.record(ac.engine().IntroduceType(b, s))
}

// IntroduceNamespace introduces a namespace; an existing one is reused.
func (ac *AdviceContext) IntroduceNamespace(b *builder.Namespace) introduce.Result {
	return ac.record(ac.engine().IntroduceNamespace(b))
}

// IntroduceParameter appends a constructor parameter and pulls it through
// chained constructors.
func (ac *AdviceContext) IntroduceParameter(b *builder.Parameter, policy pull.Policy) introduce.Result {
	return ac.record(ac.engine().IntroduceParameter(b, policy))
}

// OverrideExisting replaces the body of an existing member.
func (ac *AdviceContext) OverrideExisting(target model.Ref, b builder.Builder) introduce.Result {
	return ac.record(ac.engine().OverrideExisting(target, b))
}
