package project

import (
	"testing"

	"weave/internal/diag"
	"weave/internal/model"
	"weave/internal/refs"
	"weave/internal/source"
	"weave/internal/testkit"
)

const sampleModel = `
[[type]]
name = "App.Base"
modifiers = ["abstract"]
access = "public"

  [[type.method]]
  name = "Run"
  type = "int"
  access = "public"
  modifiers = ["virtual"]
  params = [{ name = "a", type = "int" }]
  body = ["return a;"]

[[type]]
name = "App.Service"
access = "public"
base = "App.Base"
interfaces = ["App.IRun"]

  [[type.field]]
  name = "_count"
  type = "int"
  access = "private"
  modifiers = ["readonly"]
  init = "0"

  [[type.constructor]]
  access = "public"
  params = [{ name = "count", type = "int" }]
  body = ["_count = count;"]

  [[type.constructor]]
  access = "public"
  initializer = "this"
  args = ["1"]

  [[type.property]]
  name = "Name"
  type = "string?"
  access = "public"
  accessors = ["get", "init"]

  [[type.method]]
  kind = "operator"
  name = "+"
  type = "App.Service"
  access = "public"
  params = [{ name = "l", type = "App.Service" }, { name = "r", type = "App.Service" }]
  body = ["return l;"]

[[type]]
name = "App.IRun"
kind = "interface"
access = "public"

[[type]]
name = "App.Service.Options"
kind = "struct"
access = "public"
`

func loadSample(t *testing.T, content string) (*model.Snapshot, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(20)
	snap, err := ParseModel(source.NewFileSet(), "model.toml", []byte(content), diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("ParseModel: %v", err)
	}
	if err := testkit.CheckSnapshotInvariants(snap); err != nil {
		t.Fatalf("model snapshot: %v", err)
	}
	return snap, bag
}

func TestParseModel(t *testing.T) {
	snap, bag := loadSample(t, sampleModel)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	r := refs.NewResolver()
	must := func(key string) *model.Decl {
		t.Helper()
		d, err := r.Resolve(snap, refs.Symbol(key))
		if err != nil {
			t.Fatalf("resolve %q: %v", key, err)
		}
		return d
	}

	base := must("App.Base")
	svc := must("App.Service")
	if svc.BaseType != base.Ref || len(svc.Interfaces) != 1 {
		t.Fatalf("base or interfaces not linked: %+v", svc)
	}
	if !base.Has(model.FlagAbstract) {
		t.Fatalf("abstract modifier lost")
	}
	run := must("App.Base.Run(int)")
	if !run.Has(model.FlagVirtual) || len(run.Body) != 1 {
		t.Fatalf("method not loaded: %+v", run)
	}
	field := must("App.Service._count")
	if field.Value != "0" || field.Writeability != model.WriteConstructorOnly {
		t.Fatalf("field not loaded: %+v", field)
	}
	chained := must("App.Service.Service()")
	main := must("App.Service.Service(int)")
	if chained.Initializer != model.InitThis || chained.InitTarget != main.Ref {
		t.Fatalf("initializer not resolved: %+v", chained)
	}
	if p := must("App.Service.Name"); p.Writeability != model.WriteInitOnly || !p.Auto {
		t.Fatalf("property not loaded: %+v", p)
	}
	if op := must("App.Service.operator +(App.Service, App.Service)"); op.MethodKind != model.MethodOperator || !op.IsStatic() {
		t.Fatalf("operator not loaded: %+v", op)
	}
	nested := must("App.Service.Options")
	if nested.Parent != svc.Ref || nested.TypeKind != model.TypeStruct {
		t.Fatalf("nested type not placed in its parent: %+v", nested)
	}
	if ns := snap.Get(svc.Parent); ns == nil || ns.Kind != model.DeclNamespace || ns.Name != "App" {
		t.Fatalf("namespace not created")
	}
	if _, err := r.Resolve(snap, refs.Symbol("App.Base.Base()")); err != nil {
		t.Fatalf("implicit constructor not synthesized: %v", err)
	}
}

func TestParseModelReportsBadEntries(t *testing.T) {
	snap, bag := loadSample(t, `
[[type]]
name = "App.T"

  [[type.field]]
  name = "bad name"
  type = "int"

  [[type.field]]
  name = "ok"
  type = "int["

  [[type.method]]
  name = "M"
  modifiers = ["fancy"]

[[type]]
name = "App.T"

[[type]]
name = "App..U"

[[type]]
name = "App.V"
kind = "union"
`)
	if bag.Count(diag.PrjInvalidModel) != 4 {
		t.Fatalf("expected 4 invalid entries, got %+v", bag.Items())
	}
	if bag.Count(diag.PrjUnknownType) != 1 || bag.Count(diag.PrjDuplicate) != 1 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	typ, err := refs.NewResolver().Resolve(snap, refs.Symbol("App.T"))
	if err != nil {
		t.Fatalf("valid type was dropped: %v", err)
	}
	for _, m := range typ.Members {
		if d := snap.Get(m); d.Kind != model.DeclConstructor {
			t.Fatalf("invalid member %q was loaded", d.Name)
		}
	}
	for _, d := range bag.Items() {
		if !d.Primary.IsValid() {
			t.Fatalf("diagnostic without a site: %+v", d)
		}
	}
}

func TestParseModelSyntaxError(t *testing.T) {
	_, err := ParseModel(source.NewFileSet(), "m.toml", []byte("[[type]\n"), diag.NopReporter{})
	if err == nil {
		t.Fatalf("expected TOML error")
	}
}
