package pull

import (
	"strings"
	"testing"

	"weave/internal/builder"
	"weave/internal/model"
	"weave/internal/transform"
)

type chain struct {
	snap  *model.Snapshot
	ctors []model.Ref // ctors[0] is the modified one
}

// newChain builds n classes T0 <- T1 <- ... each with one constructor that
// chains to the previous one via base(a).
func newChain(t *testing.T, n int) chain {
	t.Helper()
	c := model.NewCompilation(model.Hints{}, nil, nil)
	ti := c.Types.Builtins()
	ns := c.AddNamespace(model.NoRef, "App")
	var prev model.Ref
	var ctors []model.Ref
	for i := 0; i < n; i++ {
		typ := c.AddType(ns, "T"+string(rune('0'+i)), model.TypeClass, model.AccessPublic, 0)
		if prev.IsValid() {
			c.SetBase(typ, prev)
		}
		ctor := c.AddConstructor(typ, model.AccessPublic, 0)
		c.AddParameter(ctor, "a", ti.Int, "")
		if prev.IsValid() {
			c.SetInitializer(ctor, model.InitBase, "a")
		}
		ctors = append(ctors, ctor)
		prev = typ
	}
	return chain{snap: c.Seal(), ctors: ctors}
}

func propagator(snap *model.Snapshot) (*Propagator, *transform.Counter) {
	counter := &transform.Counter{}
	p := &Propagator{
		Snapshot: snap,
		Factory:  &builder.Factory{Types: snap.Interner(), Alloc: snap, Aspect: "Pull", Layer: 1},
		Stamp:    func() transform.Advice { return counter.Stamp("Pull", 1) },
	}
	return p, counter
}

func introduced(p *Propagator, ctor model.Ref, name, def string) *builder.ParameterData {
	ti := p.Snapshot.Interner().Builtins()
	return p.Factory.Parameter(ctor, name, ti.Int, def).Freeze()
}

func count(ts []transform.Transformation, kind transform.Kind) int {
	n := 0
	for _, t := range ts {
		if t.Kind() == kind {
			n++
		}
	}
	return n
}

func TestPropagateAlongChain(t *testing.T) {
	for _, n := range []int{1, 2, 4, 7} {
		c := newChain(t, n)
		p, _ := propagator(c.snap)
		param := introduced(p, c.ctors[0], "x", "0")

		ts := p.Propagate(c.ctors[0], param, Always(AppendParameterAndPull))
		if got := count(ts, transform.KindIntroduceParameter); got != n-1 {
			t.Fatalf("chain of %d: expected %d parameter introductions, got %d", n, n-1, got)
		}
		if got := count(ts, transform.KindAppendInitializerArgument); got != n-1 {
			t.Fatalf("chain of %d: expected %d argument appends, got %d", n, n-1, got)
		}
	}
}

func TestDoNotPullEmitsNothing(t *testing.T) {
	c := newChain(t, 3)
	p, counter := propagator(c.snap)
	param := introduced(p, c.ctors[0], "x", "0")

	if ts := p.Propagate(c.ctors[0], param, Always(DoNotPull)); len(ts) != 0 {
		t.Fatalf("expected no transformations, got %d", len(ts))
	}
	if counter.Issued() != 0 {
		t.Fatalf("no stamps expected")
	}
}

func TestUseExpressionStopsAtFirstLevel(t *testing.T) {
	c := newChain(t, 3)
	p, _ := propagator(c.snap)
	param := introduced(p, c.ctors[0], "x", "")

	ts := p.Propagate(c.ctors[0], param, Expression("42"))
	if len(ts) != 1 {
		t.Fatalf("expected one transformation, got %d", len(ts))
	}
	arg, ok := ts[0].(*transform.AppendInitializerArgument)
	if !ok || arg.Target() != c.ctors[1] || arg.Argument() != "42" {
		t.Fatalf("unexpected transformation %#v", ts[0])
	}
}

func TestSameTypeThisChain(t *testing.T) {
	c := model.NewCompilation(model.Hints{}, nil, nil)
	ti := c.Types.Builtins()
	typ := c.AddType(model.NoRef, "T", model.TypeClass, model.AccessPublic, 0)
	main := c.AddConstructor(typ, model.AccessPublic, 0)
	c.AddParameter(main, "a", ti.Int, "")
	other := c.AddConstructor(typ, model.AccessPublic, 0)
	c.SetInitializer(other, model.InitThis, "1")
	snap := c.Seal()

	p, _ := propagator(snap)
	param := introduced(p, main, "x", "0")
	ts := p.Propagate(main, param, Always(AppendParameterAndPull))

	if got := count(ts, transform.KindIntroduceParameter); got != 1 {
		t.Fatalf("expected one parameter introduction, got %d", got)
	}
	var arg *transform.AppendInitializerArgument
	for _, tr := range ts {
		switch v := tr.(type) {
		case *transform.IntroduceParameter:
			if v.Target() != other || v.Param.Name != "x" || v.Param.Default != "0" {
				t.Fatalf("unexpected parameter %+v", v.Param)
			}
		case *transform.AppendInitializerArgument:
			arg = v
		}
	}
	if arg == nil || arg.Argument() != "x" {
		t.Fatalf("expected positional argument x, got %#v", arg)
	}

	next := transform.Fold(snap, "pull", ts)
	d := next.Get(other)
	if len(d.Params) != 1 || strings.Join(d.InitArgs, ", ") != "1, x" || d.Initializer != model.InitThis {
		t.Fatalf("unexpected folded constructor %+v", d)
	}
}

func TestImplicitConstructorIsExplicated(t *testing.T) {
	c := model.NewCompilation(model.Hints{}, nil, nil)
	ti := c.Types.Builtins()
	base := c.AddType(model.NoRef, "B", model.TypeClass, model.AccessPublic, 0)
	ctor := c.AddConstructor(base, model.AccessPublic, 0)
	derived := c.AddType(model.NoRef, "D", model.TypeClass, model.AccessPublic, 0)
	c.SetBase(derived, base)
	snap := c.Seal()
	implicit := snap.Constructors(derived)[0]

	p, _ := propagator(snap)
	ts := p.Propagate(ctor, p.Factory.Parameter(ctor, "x", ti.Int, "").Freeze(), Always(AppendParameterAndPull))
	if len(ts) != 3 {
		t.Fatalf("expected explicate, parameter and argument, got %d", len(ts))
	}
	im, ok := ts[0].(*transform.IntroduceMember)
	if !ok || !im.ReplacesImplicit() || im.DeclRef() != implicit.Ref {
		t.Fatalf("expected explicit constructor first, got %#v", ts[0])
	}

	next := transform.Fold(snap, "pull", ts)
	d := next.Get(implicit.Ref)
	if d.IsImplicit() || len(d.Params) != 1 || d.Initializer != model.InitBase {
		t.Fatalf("unexpected explicated constructor %+v", d)
	}
}

func TestRenamesOnParameterConflict(t *testing.T) {
	c := model.NewCompilation(model.Hints{}, nil, nil)
	ti := c.Types.Builtins()
	typ := c.AddType(model.NoRef, "T", model.TypeClass, model.AccessPublic, 0)
	main := c.AddConstructor(typ, model.AccessPublic, 0)
	other := c.AddConstructor(typ, model.AccessPublic, 0)
	c.AddParameter(other, "x", ti.String, "")
	c.SetInitializer(other, model.InitThis)
	snap := c.Seal()

	p, _ := propagator(snap)
	ts := p.Propagate(main, introduced(p, main, "x", ""), Always(AppendParameterAndPull))
	for _, tr := range ts {
		if ip, ok := tr.(*transform.IntroduceParameter); ok && ip.Param.Name != "x1" {
			t.Fatalf("expected renamed parameter x1, got %q", ip.Param.Name)
		}
	}
}

func TestNamedArgumentWhenPositionsDiffer(t *testing.T) {
	c := model.NewCompilation(model.Hints{}, nil, nil)
	ti := c.Types.Builtins()
	typ := c.AddType(model.NoRef, "T", model.TypeClass, model.AccessPublic, 0)
	main := c.AddConstructor(typ, model.AccessPublic, 0)
	c.AddParameter(main, "a", ti.Int, "")
	c.AddParameter(main, "b", ti.Int, "2")
	other := c.AddConstructor(typ, model.AccessPublic, 0)
	c.SetInitializer(other, model.InitThis, "1")
	snap := c.Seal()

	p, _ := propagator(snap)
	ts := p.Propagate(main, introduced(p, main, "x", "0"), Expression("5"))
	if len(ts) != 1 || ts[0].(*transform.AppendInitializerArgument).Argument() != "x: 5" {
		t.Fatalf("expected named argument, got %#v", ts)
	}
}

func TestCyclePanics(t *testing.T) {
	c := model.NewCompilation(model.Hints{}, nil, nil)
	ti := c.Types.Builtins()
	typ := c.AddType(model.NoRef, "T", model.TypeClass, model.AccessPublic, 0)
	a := c.AddConstructor(typ, model.AccessPublic, 0)
	c.AddParameter(a, "p", ti.Int, "")
	b := c.AddConstructor(typ, model.AccessPublic, 0)
	c.AddParameter(b, "p", ti.String, "")
	c.SetInitializer(a, model.InitThis, "\"s\"")
	c.SetInitializer(b, model.InitThis, "1")
	snap := c.Seal()

	p, _ := propagator(snap)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic on a constructor cycle")
		}
	}()
	p.Propagate(a, introduced(p, a, "x", "0"), Always(AppendParameterAndPull))
}

func TestParsePolicy(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Action
		err  bool
	}{
		{"", DoNotPull, false},
		{"append", AppendParameterAndPull, false},
		{"expression: default", UseExpression, false},
		{"expression:", 0, true},
		{"sideways", 0, true},
	} {
		p, err := ParsePolicy(tc.in)
		if tc.err {
			if err == nil {
				t.Fatalf("%q: expected an error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if got := p.Decide(nil, nil).Action; got != tc.want {
			t.Fatalf("%q: got %v, want %v", tc.in, got, tc.want)
		}
	}
}
