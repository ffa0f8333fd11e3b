// Package refs resolves stable declaration handles against compilation snapshots.
package refs

import (
	"fmt"
	"strings"
	"sync"

	"weave/internal/model"
)

// Referent is anything that names a declaration by ref: frozen builder data,
// transformations, introduction results.
type Referent interface {
	DeclRef() model.Ref
}

// Reference is a durable handle: either a ref token or a symbolic key in
// display form ("App.Service.Run(int)"). Symbolic keys let plans address
// base declarations before any ref is known.
type Reference struct {
	Ref model.Ref
	Key string
}

// Direct wraps a ref token.
func Direct(r model.Ref) Reference { return Reference{Ref: r} }

// Symbol wraps a symbolic key.
func Symbol(key string) Reference { return Reference{Key: strings.TrimSpace(key)} }

// Of returns the reference of a referent.
func Of(x Referent) Reference { return Reference{Ref: x.DeclRef()} }

func (r Reference) String() string {
	if r.Ref.IsValid() {
		return fmt.Sprintf("#%d", r.Ref)
	}
	return r.Key
}

// IsZero reports whether the reference names nothing.
func (r Reference) IsZero() bool { return !r.Ref.IsValid() && r.Key == "" }

type cacheKey struct {
	snap *model.Snapshot
	ref  Reference
}

type symbolIndex struct {
	once  sync.Once
	byKey map[string]model.Ref
}

// Resolver caches resolutions per snapshot. Snapshots never change after
// commit, so cached entries stay valid; the resolver is safe for concurrent use.
type Resolver struct {
	cache   sync.Map // cacheKey -> model.Ref
	symbols sync.Map // *model.Snapshot -> *symbolIndex
}

// NewResolver returns an empty resolver.
func NewResolver() *Resolver { return &Resolver{} }

// Resolve returns the declaration ref points to in snap.
func (r *Resolver) Resolve(snap *model.Snapshot, ref Reference) (*model.Decl, error) {
	if d, ok := r.TryResolve(snap, ref); ok {
		return d, nil
	}
	return nil, fmt.Errorf("resolve %s in layer %d: %w", ref, snap.Layer(), model.ErrNotFound)
}

// TryResolve is the "may be missing" form of Resolve used by speculative lookups.
func (r *Resolver) TryResolve(snap *model.Snapshot, ref Reference) (*model.Decl, bool) {
	if snap == nil || ref.IsZero() {
		return nil, false
	}
	key := cacheKey{snap: snap, ref: ref}
	if v, ok := r.cache.Load(key); ok {
		target, _ := v.(model.Ref)
		d := snap.Get(target)
		return d, d != nil
	}
	target := ref.Ref
	if !target.IsValid() {
		target = r.symbolIndex(snap).byKey[ref.Key]
	}
	d := snap.Get(target)
	if d == nil {
		return nil, false
	}
	r.cache.Store(key, target)
	return d, true
}

// MustResolve panics when ref is missing; for refs produced by the engine itself.
func (r *Resolver) MustResolve(snap *model.Snapshot, ref Reference) *model.Decl {
	d, err := r.Resolve(snap, ref)
	if err != nil {
		panic(err)
	}
	return d
}

// ResolveAll resolves a batch; the first missing reference aborts.
func (r *Resolver) ResolveAll(snap *model.Snapshot, refs ...Reference) ([]*model.Decl, error) {
	out := make([]*model.Decl, 0, len(refs))
	for _, ref := range refs {
		d, err := r.Resolve(snap, ref)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// KeyOf returns the symbolic key of a declaration in snap.
func KeyOf(snap *model.Snapshot, ref model.Ref) string {
	return snap.Display(ref)
}

func (r *Resolver) symbolIndex(snap *model.Snapshot) *symbolIndex {
	v, _ := r.symbols.LoadOrStore(snap, &symbolIndex{})
	idx, _ := v.(*symbolIndex)
	idx.once.Do(func() {
		idx.byKey = make(map[string]model.Ref)
		snap.Walk(func(d *model.Decl, _ int) bool {
			if d.Kind == model.DeclParameter {
				return true
			}
			key := snap.Display(d.Ref)
			if _, dup := idx.byKey[key]; !dup {
				idx.byKey[key] = d.Ref
			}
			return true
		})
	})
	return idx
}
