package dag

import (
	"testing"

	"weave/internal/diag"
	"weave/internal/source"
)

func idsToNames(idx AspectIndex, ids []AspectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}

func batchesToNames(idx AspectIndex, batches [][]AspectID) [][]string {
	out := make([][]string, len(batches))
	for i, batch := range batches {
		out[i] = idsToNames(idx, batch)
	}
	return out
}

func after(names ...string) []Dep {
	deps := make([]Dep, len(names))
	for i, n := range names {
		deps[i] = Dep{Name: n}
	}
	return deps
}

func TestBuildIndexKeepsDeclarationOrder(t *testing.T) {
	nodes := []AspectNode{{Name: "Logging"}, {Name: "Caching"}, {Name: "Auth"}, {Name: "Caching"}}
	idx := BuildIndex(nodes)
	want := []string{"Logging", "Caching", "Auth"}
	if len(idx.IDToName) != len(want) {
		t.Fatalf("unexpected aspect count: %d", len(idx.IDToName))
	}
	for i, name := range want {
		if idx.IDToName[i] != name {
			t.Fatalf("idx.IDToName[%d] = %q, want %q", i, idx.IDToName[i], name)
		}
		if id, ok := idx.NameToID[name]; !ok || int(id) != i {
			t.Fatalf("idx.NameToID[%q] = %v, want %d", name, id, i)
		}
	}
}

func TestBuildGraphReportsUnknownAndDuplicates(t *testing.T) {
	first := source.Span{File: 1, Start: 0, End: 5}
	dup := source.Span{File: 1, Start: 20, End: 25}
	nodes := []AspectNode{
		{Name: "A", Span: first, After: after("Missing", "A")},
		{Name: "A", Span: dup},
	}
	bag := diag.NewBag(10)
	idx := BuildIndex(nodes)
	g, slots := BuildGraph(idx, nodes, diag.BagReporter{Bag: bag})

	if !g.Present[0] || slots[0].Node.Span != first {
		t.Fatalf("the first declaration must win")
	}
	for _, code := range []diag.Code{diag.PrjUnknownAspect, diag.PrjAspectCycle, diag.PrjDuplicate} {
		if bag.Count(code) != 1 {
			t.Fatalf("expected one %v, got %v", code, bag.Items())
		}
	}
	if len(g.Edges[0]) != 0 {
		t.Fatalf("unexpected edges: %v", g.Edges)
	}
}

func TestToposortKahnBatches(t *testing.T) {
	nodes := []AspectNode{
		{Name: "a"},
		{Name: "b", After: after("c")},
		{Name: "c"},
		{Name: "d", After: after("b", "a")},
	}
	idx := BuildIndex(nodes)
	g, _ := BuildGraph(idx, nodes, diag.NopReporter{})
	topo := ToposortKahn(g)
	if topo.Cyclic {
		t.Fatalf("expected acyclic graph")
	}

	order := idsToNames(idx, topo.Order)
	wantOrder := []string{"a", "c", "b", "d"}
	for i, want := range wantOrder {
		if order[i] != want {
			t.Fatalf("order = %v, want %v", order, wantOrder)
		}
	}

	batches := batchesToNames(idx, topo.Batches)
	wantBatches := [][]string{{"a", "c"}, {"b"}, {"d"}}
	if len(batches) != len(wantBatches) {
		t.Fatalf("batches = %v, want %v", batches, wantBatches)
	}
	for i := range wantBatches {
		if len(batches[i]) != len(wantBatches[i]) {
			t.Fatalf("batches = %v, want %v", batches, wantBatches)
		}
		for j, want := range wantBatches[i] {
			if batches[i][j] != want {
				t.Fatalf("batches = %v, want %v", batches, wantBatches)
			}
		}
	}
}

func TestReportCycles(t *testing.T) {
	spanA := source.Span{File: 1, Start: 0, End: 4}
	spanB := source.Span{File: 1, Start: 10, End: 14}
	nodes := []AspectNode{
		{Name: "a", Span: spanA, After: after("b")},
		{Name: "b", Span: spanB, After: after("a")},
		{Name: "c"},
	}
	idx := BuildIndex(nodes)
	bag := diag.NewBag(10)
	r := diag.BagReporter{Bag: bag}
	g, slots := BuildGraph(idx, nodes, r)

	topo := ToposortKahn(g)
	if !topo.Cyclic || len(topo.Cycles) != 2 {
		t.Fatalf("expected cycle with two aspects, got %+v", topo)
	}
	if names := idsToNames(idx, topo.Order); len(names) != 1 || names[0] != "c" {
		t.Fatalf("only the acyclic aspect is ordered, got %v", names)
	}

	ReportCycles(idx, slots, topo, r)
	if bag.Count(diag.PrjAspectCycle) != 2 {
		t.Fatalf("cycle diagnostics = %v", bag.Items())
	}
	if got := bag.Items()[0].Message; got != "aspect 'a' participates in an ordering cycle: a -> b" {
		t.Fatalf("unexpected message %q", got)
	}
}
