package model

import (
	"fmt"
	"maps"
	"slices"
)

// Delta collects changes for the next layer. It is single-writer; the
// snapshot it was started from is never modified.
type Delta struct {
	base       *Snapshot
	decls      map[Ref]*Decl
	roots      []Ref
	types      []Ref
	rootsOwned bool
	typesOwned bool
	label      string
	committed  bool
}

// Base returns the snapshot the delta was started from.
func (d *Delta) Base() *Snapshot { return d.base }

// Len returns the number of added or replaced declarations.
func (d *Delta) Len() int { return len(d.decls) }

// Get returns the pending declaration for ref or falls back to the base layer.
func (d *Delta) Get(ref Ref) *Decl {
	if decl, ok := d.decls[ref]; ok {
		return decl
	}
	return d.base.Get(ref)
}

// NewRef allocates a fresh reference shared by all layers of the compilation.
func (d *Delta) NewRef() Ref {
	d.mustOpen()
	return Ref(d.base.comp.next.Add(1))
}

// Put stores decl in the delta, replacing any earlier record for its ref.
func (d *Delta) Put(decl *Decl) {
	d.mustOpen()
	if !decl.Ref.IsValid() {
		panic("model: Put with NoRef")
	}
	d.decls[decl.Ref] = decl
}

// Update applies fn to a private copy of the declaration and stores it.
// It panics if ref does not exist.
func (d *Delta) Update(ref Ref, fn func(*Decl)) *Decl {
	d.mustOpen()
	decl, owned := d.decls[ref]
	if !owned {
		cur := d.base.Get(ref)
		if cur == nil {
			panic(fmt.Sprintf("model: update of missing ref %d", ref))
		}
		decl = cur.Clone()
		d.decls[ref] = decl
	}
	fn(decl)
	return decl
}

// AddMember stores a new declaration and links it into its parent's member
// or parameter list. A ref is allocated when decl.Ref is NoRef.
func (d *Delta) AddMember(decl Decl) Ref {
	d.mustOpen()
	if !decl.Ref.IsValid() {
		decl.Ref = d.NewRef()
	}
	ref := decl.Ref
	stored := decl
	d.decls[ref] = &stored
	switch {
	case decl.Kind == DeclParameter:
		d.Update(decl.Parent, func(p *Decl) { p.Params = append(p.Params, ref) })
	case decl.Parent.IsValid():
		d.Update(decl.Parent, func(p *Decl) {
			if !slices.Contains(p.Members, ref) {
				p.Members = append(p.Members, ref)
			}
		})
	default:
		if !d.rootsOwned {
			d.roots = slices.Clone(d.base.roots)
			d.rootsOwned = true
		}
		d.roots = append(d.roots, ref)
	}
	if decl.Kind == DeclType {
		if !d.typesOwned {
			d.types = slices.Clone(d.base.types)
			d.typesOwned = true
		}
		d.types = append(d.types, ref)
	}
	return ref
}

// InsertParameter inserts a parameter at index (or appends when index is out of range).
func (d *Delta) InsertParameter(decl Decl, index int) Ref {
	d.mustOpen()
	if !decl.Ref.IsValid() {
		decl.Ref = d.NewRef()
	}
	decl.Kind = DeclParameter
	ref := decl.Ref
	stored := decl
	d.decls[ref] = &stored
	d.Update(decl.Parent, func(p *Decl) {
		if index < 0 || index >= len(p.Params) {
			p.Params = append(p.Params, ref)
			return
		}
		p.Params = slices.Insert(p.Params, index, ref)
	})
	return ref
}

// Commit freezes the delta into a new snapshot. A delta commits once.
func (d *Delta) Commit() *Snapshot {
	d.mustOpen()
	d.committed = true
	base := d.base
	next := &Snapshot{
		comp:   base.comp,
		parent: base,
		delta:  d.decls,
		roots:  base.roots,
		types:  base.types,
		layer:  base.layer + 1,
		depth:  base.depth + 1,
		label:  d.label,
	}
	if d.rootsOwned {
		next.roots = d.roots
	}
	if d.typesOwned {
		next.types = d.types
	}
	if next.depth > maxDepth {
		next.delta = flatten(base, d.decls)
		next.parent = nil
		next.depth = 0
	}
	return next
}

func (d *Delta) mustOpen() {
	if d.committed {
		panic("model: delta already committed")
	}
}

// flatten merges all overlays from the base layer up to s plus top.
func flatten(s *Snapshot, top map[Ref]*Decl) map[Ref]*Decl {
	var chain []*Snapshot
	for cur := s; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	merged := make(map[Ref]*Decl)
	for i := len(chain) - 1; i >= 0; i-- {
		maps.Copy(merged, chain[i].delta)
	}
	maps.Copy(merged, top)
	return merged
}
