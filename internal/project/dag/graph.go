package dag

import (
	"slices"
	"strings"

	"weave/internal/diag"
	"weave/internal/source"
)

// Dep is one "after" reference of an aspect.
type Dep struct {
	Name string
	Span source.Span
}

// AspectNode is an aspect together with the aspects it must run after.
type AspectNode struct {
	Name  string
	Span  source.Span
	After []Dep
}

type Graph struct {
	Edges   [][]AspectID // Edges[from] = []to; from выполняется раньше to
	Indeg   []int        // входящие степени для Kahn
	Present []bool
}

type AspectSlot struct {
	Node    AspectNode
	Present bool
}

// BuildGraph turns "after" references into edges. Unknown names, self
// references and duplicate aspects are reported to r and ignored.
func BuildGraph(idx AspectIndex, nodes []AspectNode, r diag.Reporter) (Graph, []AspectSlot) {
	n := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]AspectID, n),
		Indeg:   make([]int, n),
		Present: make([]bool, n),
	}
	slots := make([]AspectSlot, n)

	for _, node := range nodes {
		id, ok := idx.NameToID[node.Name]
		if !ok {
			continue
		}
		slot := &slots[int(id)]
		if slot.Present {
			diag.Errorf(r, diag.PrjDuplicate, node.Span, "aspect", node.Name).
				WithNote(slot.Node.Span, "previous declaration of '"+node.Name+"'").
				Emit()
			continue
		}
		slot.Node = node
		slot.Present = true
		g.Present[int(id)] = true
	}

	for to := range slots {
		slot := &slots[to]
		if !slot.Present {
			continue
		}
		seen := make(map[AspectID]struct{}, len(slot.Node.After))
		for _, dep := range slot.Node.After {
			from, ok := idx.NameToID[dep.Name]
			if !ok {
				diag.Errorf(r, diag.PrjUnknownAspect, dep.Span, slot.Node.Name, dep.Name).Emit()
				continue
			}
			if int(from) == to {
				diag.Errorf(r, diag.PrjAspectCycle, dep.Span, slot.Node.Name, slot.Node.Name).Emit()
				continue
			}
			if _, dup := seen[from]; dup {
				continue
			}
			seen[from] = struct{}{}
			g.Edges[from] = append(g.Edges[from], AspectID(to)) //nolint:gosec // bounded by node count
			g.Indeg[to]++
		}
	}
	for from := range g.Edges {
		if len(g.Edges[from]) > 1 {
			slices.Sort(g.Edges[from])
		}
	}
	return g, slots
}

// ReportCycles reports every aspect left in a cycle.
func ReportCycles(idx AspectIndex, slots []AspectSlot, topo *Topo, r diag.Reporter) {
	if !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, idx.IDToName[int(id)])
	}
	summary := strings.Join(names, " -> ")
	for _, id := range topo.Cycles {
		slot := slots[int(id)]
		diag.Errorf(r, diag.PrjAspectCycle, slot.Node.Span, slot.Node.Name, summary).Emit()
	}
}
