package model

import (
	"errors"
	"fmt"
	"sync"

	"weave/internal/source"
	"weave/internal/types"
)

// ErrNotFound is returned when a reference does not resolve in a snapshot.
var ErrNotFound = errors.New("declaration not found")

// maxDepth bounds the overlay chain; deeper layers are flattened on commit.
const maxDepth = 32

// Snapshot is an immutable layer of the compilation: a delta of added or
// replaced declarations over its parent. Readers may query a snapshot from
// several goroutines; lazily computed indexes are guarded accordingly.
type Snapshot struct {
	comp   *Compilation
	parent *Snapshot
	delta  map[Ref]*Decl
	roots  []Ref
	types  []Ref
	layer  int
	depth  int
	label  string

	members   sync.Map // Ref -> *memberIndex
	typeOnce  sync.Once
	typeNames map[string]Ref
}

type memberIndex struct {
	once   sync.Once
	byName map[string][]Ref
}

// Layer returns the layer number; the sealed base compilation is layer 0.
func (s *Snapshot) Layer() int { return s.layer }

// Label returns the label given when the layer was committed.
func (s *Snapshot) Label() string { return s.label }

// Parent returns the previous layer; nil for the base layer or a flattened one.
func (s *Snapshot) Parent() *Snapshot { return s.parent }

// Interner returns the type interner shared by all layers.
func (s *Snapshot) Interner() *types.Interner { return s.comp.Types }

// Files returns the file set used for diagnostic locations.
func (s *Snapshot) Files() *source.FileSet { return s.comp.Files }

// Get returns the declaration for ref, or nil when it does not exist in this layer.
func (s *Snapshot) Get(ref Ref) *Decl {
	if ref == NoRef {
		return nil
	}
	for cur := s; cur != nil; cur = cur.parent {
		if d, ok := cur.delta[ref]; ok {
			return d
		}
	}
	if int(ref) < len(s.comp.decls) {
		return &s.comp.decls[ref]
	}
	return nil
}

// Resolve is Get with an error for missing declarations.
func (s *Snapshot) Resolve(ref Ref) (*Decl, error) {
	d := s.Get(ref)
	if d == nil {
		return nil, fmt.Errorf("ref %d in layer %d: %w", ref, s.layer, ErrNotFound)
	}
	return d, nil
}

// Roots returns top-level declarations. The slice must not be modified.
func (s *Snapshot) Roots() []Ref { return s.roots }

// Types returns every type declaration in declaration order. The slice must not be modified.
func (s *Snapshot) Types() []Ref { return s.types }

// Edit starts a delta over this snapshot.
func (s *Snapshot) Edit(label string) *Delta {
	return &Delta{base: s, decls: make(map[Ref]*Decl), label: label}
}

func (s *Snapshot) memberIndex(t Ref) *memberIndex {
	v, ok := s.members.Load(t)
	if !ok {
		v, _ = s.members.LoadOrStore(t, &memberIndex{})
	}
	idx, _ := v.(*memberIndex)
	// Load может вернуть индекс, который ещё заполняется: once.Do дожидается.
	idx.once.Do(func() {
		idx.byName = make(map[string][]Ref)
		td := s.Get(t)
		if td == nil {
			return
		}
		for _, m := range td.Members {
			md := s.Get(m)
			if md == nil {
				continue
			}
			idx.byName[md.Name] = append(idx.byName[md.Name], m)
		}
	})
	return idx
}

func (s *Snapshot) typeIndex() map[string]Ref {
	s.typeOnce.Do(func() {
		s.typeNames = make(map[string]Ref, len(s.types)*2)
		ambiguous := make(map[string]bool)
		for _, t := range s.types {
			s.typeNames[s.QualifiedName(t)] = t
			name := s.Get(t).Name
			if prev, ok := s.typeNames[name]; ok && prev != t {
				ambiguous[name] = true
				continue
			}
			s.typeNames[name] = t
		}
		for name := range ambiguous {
			qualified := false
			for _, t := range s.types {
				if s.QualifiedName(t) == name {
					qualified = true
					s.typeNames[name] = t
				}
			}
			if !qualified {
				delete(s.typeNames, name)
			}
		}
	})
	return s.typeNames
}

// NewRef allocates a reference for a declaration that a later layer will
// add. Refs are unique across all layers of the compilation.
func (s *Snapshot) NewRef() Ref { return Ref(s.comp.next.Add(1)) }
