package model

import (
	"errors"
	"sync"
	"testing"

	"weave/internal/types"
)

type fixture struct {
	comp     *Compilation
	ns       Ref
	base     Ref
	derived  Ref
	foo      Ref
	baseCtor Ref
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	c := NewCompilation(Hints{Decls: 16}, nil, nil)
	ti := c.Types.Builtins()
	ns := c.AddNamespace(NoRef, "App")
	base := c.AddType(ns, "B", TypeClass, AccessPublic, 0)
	foo := c.AddMethod(base, "Foo", ti.Void, AccessPublic, FlagVirtual)
	baseCtor := c.AddConstructor(base, AccessPublic, 0)
	c.AddParameter(baseCtor, "a", ti.Int, "")
	derived := c.AddType(ns, "D", TypeClass, AccessPublic, 0)
	c.SetBase(derived, base)
	return fixture{comp: c, ns: ns, base: base, derived: derived, foo: foo, baseCtor: baseCtor}
}

func TestSealSynthesizesImplicitConstructor(t *testing.T) {
	f := newFixture(t)
	snap := f.comp.Seal()

	ctors := snap.Constructors(f.derived)
	if len(ctors) != 1 {
		t.Fatalf("expected one implicit constructor, got %d", len(ctors))
	}
	if !ctors[0].IsImplicit() || ctors[0].Name != "D" {
		t.Fatalf("unexpected constructor %+v", ctors[0])
	}
	if got := snap.Constructors(f.base); len(got) != 1 || got[0].Ref != f.baseCtor {
		t.Fatalf("explicit constructor must suppress the implicit one")
	}
	if f.comp.Seal() != snap {
		t.Fatalf("Seal must be idempotent")
	}
}

func TestResolveMissing(t *testing.T) {
	snap := newFixture(t).comp.Seal()
	if _, err := snap.Resolve(Ref(999)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if snap.Get(NoRef) != nil {
		t.Fatalf("NoRef must not resolve")
	}
}

func TestLayeringKeepsUntouchedDeclarations(t *testing.T) {
	f := newFixture(t)
	s0 := f.comp.Seal()
	ti := f.comp.Types.Builtins()

	d := s0.Edit("introduce")
	bar := d.AddMember(Decl{Kind: DeclMethod, Name: "Bar", Parent: f.derived, Type: ti.Int, Access: AccessPublic})
	s1 := d.Commit()

	if s1.Layer() != s0.Layer()+1 {
		t.Fatalf("expected layer %d, got %d", s0.Layer()+1, s1.Layer())
	}
	if !s0.Get(f.foo).Equal(s1.Get(f.foo)) {
		t.Fatalf("untouched declaration changed between layers")
	}
	if s0.Get(bar) != nil {
		t.Fatalf("new declaration leaked into the previous layer")
	}
	if got := s1.MembersNamed(f.derived, "Bar"); len(got) != 1 || got[0].Ref != bar {
		t.Fatalf("expected Bar in new layer, got %v", got)
	}
	if len(s0.Get(f.derived).Members) != 1 {
		t.Fatalf("parent of the previous layer was mutated")
	}
}

func TestRefsStayStableAcrossLayers(t *testing.T) {
	f := newFixture(t)
	snap := f.comp.Seal()
	d := snap.Edit("first")
	ref := d.AddMember(Decl{Kind: DeclField, Name: "x", Parent: f.base})
	snap = d.Commit()

	d = snap.Edit("second")
	d.Update(ref, func(decl *Decl) { decl.Value = "1" })
	next := d.Commit()

	if snap.Get(ref).Value != "" {
		t.Fatalf("update must not touch the earlier layer")
	}
	if next.Get(ref).Value != "1" || next.Get(ref).Name != "x" {
		t.Fatalf("ref did not resolve to the updated declaration: %+v", next.Get(ref))
	}
}

func TestDeepLayersAreFlattened(t *testing.T) {
	f := newFixture(t)
	snap := f.comp.Seal()
	refs := make([]Ref, 0, maxDepth*2)
	for i := 0; i < maxDepth*2; i++ {
		d := snap.Edit("step")
		refs = append(refs, d.AddMember(Decl{Kind: DeclField, Name: "f", Parent: f.base}))
		snap = d.Commit()
	}
	if snap.depth > maxDepth {
		t.Fatalf("overlay chain too deep: %d", snap.depth)
	}
	for _, r := range refs {
		if snap.Get(r) == nil {
			t.Fatalf("ref %d lost after flattening", r)
		}
	}
	if got := len(snap.Get(f.base).Members); got != 2+len(refs) {
		t.Fatalf("expected %d members, got %d", 2+len(refs), got)
	}
}

func TestCommitTwicePanics(t *testing.T) {
	d := newFixture(t).comp.Seal().Edit("x")
	d.Commit()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on second commit")
		}
	}()
	d.Commit()
}

func TestFindInHierarchy(t *testing.T) {
	f := newFixture(t)
	ti := f.comp.Types.Builtins()
	f.comp.AddProperty(f.base, "Name", ti.String, AccessPublic, 0, AccessorGet, true)
	f.comp.AddField(f.base, "secret", ti.Int, AccessPrivate, 0)
	snap := f.comp.Seal()

	tests := []struct {
		name     string
		sig      Signature
		want     Ref
		sameType bool
	}{
		{"base method", Signature{Kind: DeclMethod, Name: "Foo"}, f.foo, false},
		{"overload is not a conflict", Signature{Kind: DeclMethod, Name: "Foo", Params: []types.TypeID{ti.Int}}, NoRef, false},
		{"different kind", Signature{Kind: DeclMethod, Name: "Name"}, snap.MembersNamed(f.base, "Name")[0].Ref, false},
		{"private base member hidden", Signature{Kind: DeclField, Name: "secret"}, NoRef, false},
		{"absent", Signature{Kind: DeclMethod, Name: "Bar"}, NoRef, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, same := snap.FindInHierarchy(f.derived, tt.sig)
			var ref Ref
			if got != nil {
				ref = got.Ref
			}
			if ref != tt.want || same != tt.sameType {
				t.Fatalf("got (%d, %v), want (%d, %v)", ref, same, tt.want, tt.sameType)
			}
		})
	}

	got, same := snap.FindInHierarchy(f.base, Signature{Kind: DeclMethod, Name: "Foo"})
	if got == nil || got.Ref != f.foo || !same {
		t.Fatalf("expected same-type match for B.Foo")
	}
}

func TestChainedConstructors(t *testing.T) {
	c := NewCompilation(Hints{}, nil, nil)
	ti := c.Types.Builtins()
	typ := c.AddType(NoRef, "T", TypeClass, AccessPublic, 0)
	main := c.AddConstructor(typ, AccessPublic, 0)
	c.AddParameter(main, "a", ti.Int, "")
	caller := c.AddConstructor(typ, AccessPublic, 0)
	c.SetInitializer(caller, InitThis, "1")
	copyCtor := c.AddConstructor(typ, AccessPublic, 0)
	c.AddParameter(copyCtor, "other", c.Types.Named("T"), "")
	c.SetInitializer(copyCtor, InitThis, "other.a")

	sub := c.AddType(NoRef, "S", TypeClass, AccessPublic, 0)
	c.SetBase(sub, typ)
	subCtor := c.AddConstructor(sub, AccessPublic, 0)
	c.SetInitializer(subCtor, InitBase, "2")
	subCopy := c.AddConstructor(sub, AccessPublic, 0)
	c.AddParameter(subCopy, "other", c.Types.Named("S"), "")
	c.SetInitializer(subCopy, InitBase, "3")
	snap := c.Seal()

	if got := snap.Get(caller).InitTarget; got != main {
		t.Fatalf("this(1) resolved to %d, want %d", got, main)
	}
	if !snap.IsCopyConstructor(subCopy) {
		t.Fatalf("S(S other) must be a copy constructor")
	}
	chained := snap.ChainedConstructors(main)
	var refs []Ref
	for _, d := range chained {
		refs = append(refs, d.Ref)
	}
	want := []Ref{caller, copyCtor, subCtor}
	if len(refs) != len(want) {
		t.Fatalf("chained = %v, want %v", refs, want)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Fatalf("chained = %v, want %v", refs, want)
		}
	}
	if snap.EffectiveBaseConstructor(caller) != nil {
		t.Fatalf("this(...) constructors have no effective base constructor")
	}
}

func TestCanOverride(t *testing.T) {
	tests := []struct {
		flags Flags
		want  bool
	}{
		{FlagVirtual, true},
		{FlagAbstract, true},
		{FlagOverride, true},
		{FlagOverride | FlagSealed, false},
		{0, false},
		{FlagStatic | FlagVirtual, false},
	}
	for _, tt := range tests {
		if got := CanOverride(&Decl{Kind: DeclMethod, Flags: tt.flags}); got != tt.want {
			t.Errorf("CanOverride(%v) = %v, want %v", tt.flags.Strings(), got, tt.want)
		}
	}
}

func TestDisplay(t *testing.T) {
	f := newFixture(t)
	snap := f.comp.Seal()
	if got := snap.Display(f.foo); got != "App.B.Foo()" {
		t.Fatalf("Display(foo) = %q", got)
	}
	if got := snap.Display(f.baseCtor); got != "App.B.B(int)" {
		t.Fatalf("Display(ctor) = %q", got)
	}
	if got := snap.TypeOfNamed("D"); got != f.derived {
		t.Fatalf("TypeOfNamed(D) = %d", got)
	}
	if got := snap.TypeOfNamed("App.D"); got != f.derived {
		t.Fatalf("TypeOfNamed(App.D) = %d", got)
	}
}

func TestConcurrentReaders(t *testing.T) {
	f := newFixture(t)
	snap := f.comp.Seal()
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if len(snap.MembersNamed(f.base, "Foo")) != 1 {
				t.Errorf("name index inconsistent")
			}
			if got, _ := snap.FindInHierarchy(f.derived, Signature{Kind: DeclMethod, Name: "Foo"}); got == nil || got.Ref != f.foo {
				t.Errorf("hierarchy lookup saw a partial index: %v", got)
			}
			_ = snap.TypeOfNamed("B")
		}()
	}
	close(start)
	wg.Wait()
}

func TestFindBySignature(t *testing.T) {
	f := newFixture(t)
	ti := f.comp.Types.Builtins()
	overload := f.comp.AddMethod(f.base, "Foo", ti.Void, AccessPublic, 0)
	f.comp.AddParameter(overload, "n", ti.Int, "")
	self := f.comp.Types.Named("App.B")
	conv := f.comp.Add(Decl{Kind: DeclMethod, Name: "op_Implicit", Parent: f.base, Access: AccessPublic, Flags: FlagStatic, MethodKind: MethodConversion, Type: ti.Int})
	f.comp.AddParameter(conv, "v", self, "")
	snap := f.comp.Seal()

	tests := []struct {
		name    string
		sig     Signature
		want    Ref
		derived bool
	}{
		{"parameterless", Signature{Kind: DeclMethod, Name: "Foo"}, f.foo, false},
		{"overload", Signature{Kind: DeclMethod, Name: "Foo", Params: []types.TypeID{ti.Int}}, overload, false},
		{"wrong parameters", Signature{Kind: DeclMethod, Name: "Foo", Params: []types.TypeID{ti.String}}, NoRef, false},
		{"wrong kind", Signature{Kind: DeclField, Name: "Foo"}, NoRef, false},
		{"conversion by result", Signature{Kind: DeclMethod, MethodKind: MethodConversion, Name: "op_Implicit", Params: []types.TypeID{self}, Return: ti.Int}, conv, false},
		{"conversion other result", Signature{Kind: DeclMethod, MethodKind: MethodConversion, Name: "op_Implicit", Params: []types.TypeID{self}, Return: ti.Long}, NoRef, false},
		{"inherited is not searched", Signature{Kind: DeclMethod, Name: "Foo"}, NoRef, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner := f.base
			if tt.derived {
				owner = f.derived
			}
			var ref Ref
			if got := snap.FindBySignature(owner, tt.sig); got != nil {
				ref = got.Ref
			}
			if ref != tt.want {
				t.Fatalf("got %d, want %d", ref, tt.want)
			}
		})
	}
}
