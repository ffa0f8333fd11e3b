package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Topo is the execution order of the aspects of a plan.
type Topo struct {
	Order   []AspectID   // layer i+1 runs Order[i]
	Batches [][]AspectID // aspects whose predecessors all ran in earlier batches
	Cyclic  bool
	Cycles  []AspectID // aspects that never became ready
}

func aspectID(i int) AspectID {
	id, err := safecast.Conv[AspectID](i)
	if err != nil {
		panic(fmt.Errorf("aspect id overflow: %w", err))
	}
	return id
}

// ToposortKahn orders aspects so that each one follows every aspect it is
// declared after. Within a batch aspects keep declaration order, so a plan
// without "after" runs in the order it was written.
func ToposortKahn(g Graph) *Topo {
	indeg := slices.Clone(g.Indeg)
	topo := &Topo{}

	var frontier []AspectID
	pending := 0
	for i, present := range g.Present {
		if !present {
			continue
		}
		pending++
		if indeg[i] == 0 {
			frontier = append(frontier, aspectID(i))
		}
	}

	for len(frontier) > 0 {
		topo.Batches = append(topo.Batches, frontier)
		topo.Order = append(topo.Order, frontier...)
		pending -= len(frontier)

		var next []AspectID
		for _, id := range frontier {
			for _, to := range g.Edges[id] {
				if !g.Present[to] {
					continue
				}
				if indeg[to]--; indeg[to] == 0 {
					next = append(next, to)
				}
			}
		}
		// id совпадает с порядком объявления
		slices.Sort(next)
		frontier = next
	}

	if pending == 0 {
		return topo
	}
	topo.Cyclic = true
	for i, present := range g.Present {
		if present && indeg[i] > 0 {
			topo.Cycles = append(topo.Cycles, aspectID(i))
		}
	}
	return topo
}
