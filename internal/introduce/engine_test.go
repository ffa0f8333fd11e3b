package introduce

import (
	"strings"
	"testing"

	"weave/internal/builder"
	"weave/internal/diag"
	"weave/internal/lower"
	"weave/internal/model"
	"weave/internal/pull"
	"weave/internal/syntax"
	"weave/internal/transform"
)

type world struct {
	snap    *model.Snapshot
	bag     *diag.Bag
	ns      model.Ref
	b       model.Ref // class B { virtual void Foo(); void Bar(); virtual int Calc(); int Count; static void S(); sealed override void Locked(); }
	d       model.Ref // class D : B { void Own(); }
	t       model.Ref // class T { void Foo(); }
	empty   model.Ref // class E {}
	st      model.Ref // struct S { S(int a); S(string s) : this(1); }
	static  model.Ref // static class U {}
	sealed  model.Ref // sealed class X {}
	foo     model.Ref
	tFoo    model.Ref
	stInt   model.Ref
	counter *transform.Counter
}

func newWorld(t *testing.T) *world {
	t.Helper()
	c := model.NewCompilation(model.Hints{Decls: 64}, nil, nil)
	ti := c.Types.Builtins()
	w := &world{bag: diag.NewBag(64), counter: &transform.Counter{}}
	w.ns = c.AddNamespace(model.NoRef, "App")

	w.b = c.AddType(w.ns, "B", model.TypeClass, model.AccessPublic, 0)
	w.foo = c.AddMethod(w.b, "Foo", ti.Void, model.AccessPublic, model.FlagVirtual)
	c.SetBody(w.foo, "Console.WriteLine(1);")
	c.AddMethod(w.b, "Bar", ti.Void, model.AccessPublic, 0)
	c.AddMethod(w.b, "Calc", ti.Int, model.AccessProtected, model.FlagVirtual)
	c.AddField(w.b, "Count", ti.Int, model.AccessProtected, 0)
	c.AddMethod(w.b, "S", ti.Void, model.AccessPublic, model.FlagStatic)
	c.AddMethod(w.b, "Locked", ti.Void, model.AccessPublic, model.FlagSealed|model.FlagOverride)

	w.d = c.AddType(w.ns, "D", model.TypeClass, model.AccessPublic, 0)
	c.SetBase(w.d, w.b)
	c.AddMethod(w.d, "Own", ti.Void, model.AccessPublic, 0)

	w.t = c.AddType(w.ns, "T", model.TypeClass, model.AccessPublic, 0)
	w.tFoo = c.AddMethod(w.t, "Foo", ti.Void, model.AccessPublic, 0)
	c.SetBody(w.tFoo, "return;")

	w.empty = c.AddType(w.ns, "E", model.TypeClass, model.AccessPublic, 0)

	w.st = c.AddType(w.ns, "S", model.TypeStruct, model.AccessPublic, 0)
	w.stInt = c.AddConstructor(w.st, model.AccessPublic, 0)
	c.AddParameter(w.stInt, "a", ti.Int, "")
	stStr := c.AddConstructor(w.st, model.AccessPublic, 0)
	c.AddParameter(stStr, "s", ti.String, "")
	c.SetInitializer(stStr, model.InitThis, "1")

	w.static = c.AddType(w.ns, "U", model.TypeClass, model.AccessPublic, model.FlagStatic)
	w.sealed = c.AddType(w.ns, "X", model.TypeClass, model.AccessPublic, model.FlagSealed)

	w.snap = c.Seal()
	return w
}

func (w *world) engine(langVersion int) *Engine {
	return &Engine{
		Snapshot: w.snap,
		Reporter: diag.BagReporter{Bag: w.bag},
		Factory:  &builder.Factory{Types: w.snap.Interner(), Alloc: w.snap, Aspect: "Logging", Layer: 1},
		Stamp:    func() transform.Advice { return w.counter.Stamp("Logging", 1) },
		Options:  Options{LangVersion: langVersion},
	}
}

func (w *world) method(e *Engine, target model.Ref, name string) *builder.Method {
	m := e.Factory.Method(target, name)
	m.SetTemplate("Console.WriteLine(\"enter\");", "return meta.Proceed();")
	return m
}

func TestConflictMatrix(t *testing.T) {
	type row struct {
		name     string
		target   func(w *world) model.Ref
		strategy Strategy
		want     Outcome
		code     diag.Code
	}
	absent := func(w *world) model.Ref { return w.empty }
	same := func(w *world) model.Ref { return w.t }
	inherited := func(w *world) model.Ref { return w.d }

	rows := []row{
		{"absent/fail", absent, Fail, OutcomeDefault, 0},
		{"absent/ignore", absent, Ignore, OutcomeDefault, 0},
		{"absent/new", absent, New, OutcomeDefault, 0},
		{"absent/override", absent, Override, OutcomeDefault, 0},
		{"same/fail", same, Fail, OutcomeError, diag.AdvMemberAlreadyExists},
		{"same/ignore", same, Ignore, OutcomeIgnore, 0},
		{"same/new", same, New, OutcomeError, diag.AdvNewMemberInSameType},
		{"same/override", same, Override, OutcomeOverride, 0},
		{"base/fail", inherited, Fail, OutcomeError, diag.AdvMemberAlreadyExists},
		{"base/ignore", inherited, Ignore, OutcomeIgnore, 0},
		{"base/new", inherited, New, OutcomeNew, 0},
		{"base/override", inherited, Override, OutcomeOverride, 0},
	}
	for _, tc := range rows {
		t.Run(tc.name, func(t *testing.T) {
			w := newWorld(t)
			e := w.engine(0)
			r := e.IntroduceMethod(w.method(e, tc.target(w), "Foo"), tc.strategy)
			if r.Outcome != tc.want {
				t.Fatalf("got outcome %v, want %v", r.Outcome, tc.want)
			}
			switch {
			case tc.code != 0:
				if r.Diagnostic == nil || r.Diagnostic.Code != tc.code {
					t.Fatalf("expected %s, got %+v", tc.code.ID(), r.Diagnostic)
				}
				if w.bag.Len() != 1 || len(r.Transformations) != 0 {
					t.Fatalf("failure must report once and add nothing: %d diagnostics, %d transformations", w.bag.Len(), len(r.Transformations))
				}
			case tc.want == OutcomeIgnore:
				if len(r.Transformations) != 0 || w.bag.Len() != 0 || !r.Decl.IsValid() {
					t.Fatalf("ignore must return the existing member only: %+v", r)
				}
			default:
				if w.bag.Len() != 0 || len(r.Transformations) == 0 {
					t.Fatalf("expected transformations and no diagnostics: %+v", r)
				}
			}
		})
	}
}

func TestSameTypeOverrideKeepsDeclaration(t *testing.T) {
	w := newWorld(t)
	e := w.engine(0)
	r := e.IntroduceMethod(w.method(e, w.t, "Foo"), Override)
	if r.Decl != w.tFoo || len(r.Transformations) != 1 {
		t.Fatalf("expected a single override of T.Foo, got %+v", r)
	}
	om, ok := r.Transformations[0].(*transform.OverrideMember)
	if !ok || om.Paired || om.Target() != w.tFoo {
		t.Fatalf("unexpected transformation %#v", r.Transformations[0])
	}
}

func TestOverrideRequiresOverridableBase(t *testing.T) {
	for _, name := range []string{"Bar", "Locked"} {
		w := newWorld(t)
		e := w.engine(0)
		r := e.IntroduceMethod(w.method(e, w.d, name), Override)
		if r.Outcome != OutcomeError || r.Diagnostic.Code != diag.AdvCannotOverrideSealed {
			t.Fatalf("%s: expected cannot-override-sealed, got %+v", name, r)
		}
		if len(r.Diagnostic.Notes) != 1 {
			t.Fatalf("%s: expected a note at the existing member", name)
		}
	}
}

func TestSignatureMismatch(t *testing.T) {
	for _, tc := range []struct {
		strategy Strategy
		want     Outcome
		code     diag.Code
	}{
		{Fail, OutcomeError, diag.AdvMemberAlreadyExists},
		{Ignore, OutcomeIgnore, 0},
		{New, OutcomeError, diag.AdvDifferentType},
		{Override, OutcomeError, diag.AdvDifferentType},
	} {
		w := newWorld(t)
		e := w.engine(0)
		m := e.Factory.Method(w.d, "Calc")
		m.SetReturnType(w.snap.Interner().Builtins().String)
		r := e.IntroduceMethod(m, tc.strategy)
		if r.Outcome != tc.want {
			t.Fatalf("%v: got %v, want %v", tc.strategy, r.Outcome, tc.want)
		}
		if tc.code != 0 && r.Diagnostic.Code != tc.code {
			t.Fatalf("%v: got %s, want %s", tc.strategy, r.Diagnostic.Code.ID(), tc.code.ID())
		}
	}
}

func TestDifferentKindAndStaticity(t *testing.T) {
	w := newWorld(t)
	e := w.engine(0)
	for _, s := range []Strategy{Fail, Ignore, New, Override} {
		if r := e.IntroduceMethod(e.Factory.Method(w.d, "Count"), s); r.Diagnostic == nil || r.Diagnostic.Code != diag.AdvDifferentKind {
			t.Fatalf("%v: expected different-kind, got %+v", s, r)
		}
		if r := e.IntroduceMethod(e.Factory.Method(w.d, "S"), s); r.Diagnostic == nil || r.Diagnostic.Code != diag.AdvDifferentStaticity {
			t.Fatalf("%v: expected different-staticity, got %+v", s, r)
		}
	}
}

func TestPrechecks(t *testing.T) {
	w := newWorld(t)
	e := w.engine(0)
	ti := w.snap.Interner().Builtins()

	virtualInSealed := e.Factory.Method(w.sealed, "V")
	virtualInSealed.SetVirtual(true)
	staticVirtual := e.Factory.Method(w.empty, "SV")
	staticVirtual.SetStatic(true)
	staticVirtual.SetVirtual(true)
	staticSealed := e.Factory.Method(w.empty, "SS")
	staticSealed.SetStatic(true)
	staticSealed.SetSealed(true)
	op := e.Factory.Operator(w.empty, "+", ti.Int)

	for _, tc := range []struct {
		name string
		run  func() Result
		code diag.Code
	}{
		{"instance into static", func() Result { return e.IntroduceMethod(e.Factory.Method(w.static, "I"), Fail) }, diag.AdvInstanceIntoStaticType},
		{"virtual into sealed", func() Result { return e.IntroduceMethod(virtualInSealed, Fail) }, diag.AdvVirtualIntoSealedOrStruct},
		{"static virtual", func() Result { return e.IntroduceMethod(staticVirtual, Fail) }, diag.AdvStaticVirtual},
		{"static sealed", func() Result { return e.IntroduceMethod(staticSealed, Fail) }, diag.AdvStaticSealed},
		{"finalizer in struct", func() Result { return e.IntroduceFinalizer(e.Factory.Finalizer(w.st), Fail) }, diag.AdvFinalizerNotAllowed},
		{"operator arity", func() Result { return e.IntroduceOperator(op, Fail) }, diag.AdvInvalidOperator},
		{"into namespace", func() Result { return e.IntroduceMethod(e.Factory.Method(w.ns, "N"), Fail) }, diag.AdvInvalidTarget},
		{"missing target", func() Result { return e.IntroduceMethod(e.Factory.Method(model.Ref(9999), "N"), Fail) }, diag.AdvTargetNotFound},
	} {
		r := tc.run()
		if r.Outcome != OutcomeError || r.Diagnostic.Code != tc.code {
			t.Fatalf("%s: expected %s, got %+v", tc.name, tc.code.ID(), r)
		}
	}
	if got := w.bag.Len(); got != 8 {
		t.Fatalf("expected one diagnostic per rejected introduction, got %d", got)
	}
}

func TestUnsupportedStrategies(t *testing.T) {
	w := newWorld(t)
	e := w.engine(0)
	ti := w.snap.Interner().Builtins()

	r := e.IntroduceField(e.Factory.Field(w.d, "Count", ti.Int), Override)
	if r.Diagnostic == nil || r.Diagnostic.Code != diag.AdvUnsupportedStrategy {
		t.Fatalf("override of a field must be unsupported, got %+v", r)
	}
	ctor := e.Factory.Constructor(w.st, "S")
	ctor.AddParameter("a", ti.Int, "")
	r = e.IntroduceConstructor(ctor, New)
	if r.Diagnostic == nil || r.Diagnostic.Code != diag.AdvUnsupportedStrategy {
		t.Fatalf("new constructor must be unsupported, got %+v", r)
	}
}

func TestStructFieldDefaults(t *testing.T) {
	for _, tc := range []struct {
		lang    int
		inserts int
	}{{10, 1}, {11, 0}, {0, 0}} {
		w := newWorld(t)
		e := w.engine(tc.lang)
		r := e.IntroduceField(e.Factory.Field(w.st, "_x", w.snap.Interner().Builtins().Int), Fail)
		if r.Failed() {
			t.Fatalf("lang %d: unexpected failure %+v", tc.lang, r.Diagnostic)
		}
		var got []*transform.InsertStatement
		for _, tr := range r.Transformations {
			if is, ok := tr.(*transform.InsertStatement); ok {
				got = append(got, is)
			}
		}
		if len(got) != tc.inserts {
			t.Fatalf("lang %d: expected %d statement insertions, got %d", tc.lang, tc.inserts, len(got))
		}
		if len(got) == 1 && (got[0].Target() != w.stInt || got[0].Statements[0] != "this._x = default;") {
			t.Fatalf("unexpected insertion %+v", got[0])
		}
	}
}

func TestStructDefaultsNotQueuedOnFailure(t *testing.T) {
	w := newWorld(t)
	e := w.engine(10)
	ti := w.snap.Interner().Builtins()
	first := e.IntroduceField(e.Factory.Field(w.st, "_y", ti.Int), Fail)
	if first.Failed() {
		t.Fatalf("first introduction failed: %+v", first.Diagnostic)
	}
	e.Snapshot = transform.Fold(w.snap, "fold", first.Transformations)

	r := e.IntroduceField(e.Factory.Field(w.st, "_y", ti.Int), Fail)
	if !r.Failed() || len(r.Transformations) != 0 {
		t.Fatalf("expected failure without side effects, got %+v", r)
	}
}

func TestImplicitConstructorIsReplaced(t *testing.T) {
	w := newWorld(t)
	e := w.engine(0)
	implicit := w.snap.Constructors(w.empty)[0]
	ctor := e.Factory.Constructor(w.empty, "E")
	ctor.SetTemplate("Init();", builder.Proceed+";")

	r := e.IntroduceConstructor(ctor, Fail)
	if r.Outcome != OutcomeDefault || r.Decl != implicit.Ref || len(r.Transformations) != 2 {
		t.Fatalf("unexpected result %+v", r)
	}
	im := r.Transformations[0].(*transform.IntroduceMember)
	if !im.ReplacesImplicit() {
		t.Fatalf("expected the implicit constructor to be replaced")
	}
	next := transform.Fold(w.snap, "ctor", r.Transformations)
	if got := next.Constructors(w.empty); len(got) != 1 || got[0].IsImplicit() {
		t.Fatalf("expected one explicit constructor, got %+v", got)
	}
}

func TestIntroduceNamespaceAndType(t *testing.T) {
	w := newWorld(t)
	e := w.engine(0)
	if r := e.IntroduceNamespace(e.Factory.Namespace(model.NoRef, "App")); r.Outcome != OutcomeIgnore || r.Decl != w.ns {
		t.Fatalf("existing namespace must be reused, got %+v", r)
	}
	r := e.IntroduceType(e.Factory.Type(w.ns, "Generated", model.TypeClass), Fail)
	if r.Outcome != OutcomeDefault || len(r.Transformations) != 1 {
		t.Fatalf("unexpected result %+v", r)
	}
	if r := e.IntroduceType(e.Factory.Type(w.ns, "B", model.TypeClass), Fail); r.Diagnostic == nil || r.Diagnostic.Code != diag.AdvMemberAlreadyExists {
		t.Fatalf("expected member-already-exists, got %+v", r)
	}
	if r := e.IntroduceType(e.Factory.Type(w.ns, "B", model.TypeClass), Override); r.Diagnostic == nil || r.Diagnostic.Code != diag.AdvUnsupportedStrategy {
		t.Fatalf("expected unsupported strategy, got %+v", r)
	}
}

func TestIntroduceParameterChecks(t *testing.T) {
	w := newWorld(t)
	e := w.engine(0)
	ti := w.snap.Interner().Builtins()
	if r := e.IntroduceParameter(e.Factory.Parameter(w.stInt, "a", ti.Int, "0"), nil); r.Diagnostic == nil || r.Diagnostic.Code != diag.AdvParameterAlreadyExists {
		t.Fatalf("expected parameter-already-exists, got %+v", r)
	}
	if r := e.IntroduceParameter(e.Factory.Parameter(w.foo, "x", ti.Int, "0"), nil); r.Diagnostic == nil || r.Diagnostic.Code != diag.AdvInvalidTarget {
		t.Fatalf("expected invalid target, got %+v", r)
	}
}

func TestScenarioIntroduceIntoEmptyType(t *testing.T) {
	w := newWorld(t)
	e := w.engine(0)
	r := e.IntroduceMethod(e.Factory.Method(w.empty, "Foo"), Fail)
	if r.Outcome != OutcomeDefault {
		t.Fatalf("expected default outcome, got %v", r.Outcome)
	}
	snap := transform.Fold(w.snap, "foo", r.Transformations)
	ctx := lower.NewContext(snap, syntax.NullabilityAware, 0)
	out := syntax.PrintMember(r.Transformations[0].Lower(ctx).Member)
	if !strings.Contains(out, "public void Foo()") || strings.Contains(out, "override") || strings.Contains(out, "new ") {
		t.Fatalf("unexpected lowering:\n%s", out)
	}
}

func TestScenarioFailOnExisting(t *testing.T) {
	w := newWorld(t)
	e := w.engine(0)
	r := e.IntroduceMethod(e.Factory.Method(w.t, "Foo"), Fail)
	if !r.Failed() || len(r.Transformations) != 0 {
		t.Fatalf("expected failure without transformations, got %+v", r)
	}
	if w.bag.Len() != 1 || w.bag.Count(diag.AdvMemberAlreadyExists) != 1 {
		t.Fatalf("expected exactly one member-already-exists diagnostic, got %+v", w.bag.Items())
	}
	if !strings.Contains(w.bag.Items()[0].Message, "already contains 'App.T.Foo()'") {
		t.Fatalf("unexpected message %q", w.bag.Items()[0].Message)
	}
}

func TestScenarioOverrideBaseMethod(t *testing.T) {
	w := newWorld(t)
	e := w.engine(0)
	m := w.method(e, w.d, "Foo")
	r := e.IntroduceMethod(m, Override)
	if r.Outcome != OutcomeOverride {
		t.Fatalf("expected override, got %v", r.Outcome)
	}
	if !m.IsOverride() || m.Overridden() != w.foo {
		t.Fatalf("builder must link the overridden method: override=%v overridden=%d", m.IsOverride(), m.Overridden())
	}
	if len(r.Transformations) != 2 || r.Transformations[1].Kind() != transform.KindOverrideMember {
		t.Fatalf("expected introduction and override, got %d transformations", len(r.Transformations))
	}
	snap := transform.Fold(w.snap, "override", r.Transformations)
	if d := snap.Get(r.Decl); !d.Has(model.FlagOverride) || d.Has(model.FlagVirtual) {
		t.Fatalf("unexpected flags %v", d.Flags.Strings())
	}
}

func TestScenarioPullThroughThisChain(t *testing.T) {
	c := model.NewCompilation(model.Hints{}, nil, nil)
	ti := c.Types.Builtins()
	typ := c.AddType(model.NoRef, "C", model.TypeClass, model.AccessPublic, 0)
	main := c.AddConstructor(typ, model.AccessPublic, 0)
	c.AddParameter(main, "a", ti.Int, "")
	chained := c.AddConstructor(typ, model.AccessPublic, 0)
	c.SetInitializer(chained, model.InitThis, "1")
	snap := c.Seal()

	counter := &transform.Counter{}
	e := &Engine{
		Snapshot: snap,
		Reporter: diag.NopReporter{},
		Factory:  &builder.Factory{Types: snap.Interner(), Alloc: snap, Aspect: "Inject", Layer: 1},
		Stamp:    func() transform.Advice { return counter.Stamp("Inject", 1) },
	}
	r := e.IntroduceParameter(e.Factory.Parameter(main, "x", ti.Int, "0"), pull.Always(pull.AppendParameterAndPull))
	if r.Failed() {
		t.Fatalf("unexpected failure %+v", r.Diagnostic)
	}
	var forChained int
	for _, tr := range r.Transformations {
		if tr.Kind() == transform.KindIntroduceParameter && tr.Target() == chained {
			forChained++
		}
	}
	if forChained != 1 {
		t.Fatalf("expected one parameter introduction for the chained constructor, got %d", forChained)
	}

	next := transform.Fold(snap, "pull", r.Transformations)
	d := next.Get(chained)
	params := next.Params(chained)
	if len(params) != 1 || params[0].Name != "x" || strings.Join(d.InitArgs, ", ") != "1, x" {
		t.Fatalf("unexpected chained constructor %s : this(%s)", next.Display(chained), strings.Join(d.InitArgs, ", "))
	}
}
