package model

import (
	"fmt"
	"sync/atomic"

	"fortio.org/safecast"

	"weave/internal/source"
	"weave/internal/types"
)

// Compilation is the mutable base arena of declarations. It is filled by a
// loader and sealed exactly once; after Seal every change goes through
// snapshot deltas.
type Compilation struct {
	Types *types.Interner
	Files *source.FileSet

	decls    []Decl
	roots    []Ref
	typeList []Ref
	next     *atomic.Uint32
	sealed   *Snapshot
}

// Hints provide optional capacity suggestions for the arena.
type Hints struct{ Decls uint }

// NewCompilation creates an empty base compilation.
// Nil interner or file set are replaced with fresh ones.
func NewCompilation(h Hints, ti *types.Interner, files *source.FileSet) *Compilation {
	capHint, err := safecast.Conv[uint32](h.Decls)
	if err != nil {
		panic(fmt.Errorf("decl capacity overflow: %w", err))
	}
	if ti == nil {
		ti = types.NewInterner()
	}
	if files == nil {
		files = source.NewFileSet()
	}
	return &Compilation{
		Types: ti,
		Files: files,
		decls: make([]Decl, 1, capHint+1), // reserve 0 as NoRef
		next:  new(atomic.Uint32),
	}
}

func (c *Compilation) mustOpen() {
	if c.sealed != nil {
		panic("model: compilation is sealed")
	}
}

func (c *Compilation) allocRef() Ref {
	value, err := safecast.Conv[uint32](len(c.decls))
	if err != nil {
		panic(fmt.Errorf("decl arena overflow: %w", err))
	}
	return Ref(value)
}

// Add appends a declaration and links it into its parent.
func (c *Compilation) Add(d Decl) Ref {
	c.mustOpen()
	if d.Parent.IsValid() && c.Decl(d.Parent) == nil {
		panic(fmt.Sprintf("model: parent %d does not exist", d.Parent))
	}
	ref := c.allocRef()
	d.Ref = ref
	c.decls = append(c.decls, d)
	switch {
	case d.Kind == DeclParameter:
		parent := &c.decls[d.Parent]
		parent.Params = append(parent.Params, ref)
	case d.Parent.IsValid():
		parent := &c.decls[d.Parent]
		parent.Members = append(parent.Members, ref)
	default:
		c.roots = append(c.roots, ref)
	}
	if d.Kind == DeclType {
		c.typeList = append(c.typeList, ref)
	}
	return ref
}

// Decl returns the mutable record for ref while the compilation is open.
func (c *Compilation) Decl(ref Ref) *Decl {
	if ref == NoRef || int(ref) >= len(c.decls) {
		return nil
	}
	return &c.decls[ref]
}

// Len returns the number of declarations in the arena.
func (c *Compilation) Len() int { return len(c.decls) - 1 }

// AddNamespace declares a namespace; parent may be NoRef for the global namespace.
func (c *Compilation) AddNamespace(parent Ref, name string) Ref {
	return c.Add(Decl{Kind: DeclNamespace, Name: name, Parent: parent})
}

// AddType declares a class, struct, interface or record.
func (c *Compilation) AddType(parent Ref, name string, kind TypeKind, access Accessibility, flags Flags) Ref {
	return c.Add(Decl{Kind: DeclType, Name: name, Parent: parent, TypeKind: kind, Access: access, Flags: flags})
}

// SetBase sets the base class of t.
func (c *Compilation) SetBase(t, base Ref) {
	c.mustOpen()
	c.decls[t].BaseType = base
}

// AddInterface records an implemented interface.
func (c *Compilation) AddInterface(t, iface Ref) {
	c.mustOpen()
	c.decls[t].Interfaces = append(c.decls[t].Interfaces, iface)
}

// AddMethod declares an ordinary method.
func (c *Compilation) AddMethod(parent Ref, name string, ret types.TypeID, access Accessibility, flags Flags) Ref {
	return c.Add(Decl{Kind: DeclMethod, Name: name, Parent: parent, Type: ret, Access: access, Flags: flags})
}

// AddField declares a field.
func (c *Compilation) AddField(parent Ref, name string, typ types.TypeID, access Accessibility, flags Flags) Ref {
	return c.Add(Decl{Kind: DeclField, Name: name, Parent: parent, Type: typ, Access: access, Flags: flags, Writeability: WriteAll})
}

// AddProperty declares a property with the given accessors.
func (c *Compilation) AddProperty(parent Ref, name string, typ types.TypeID, access Accessibility, flags Flags, acc Accessors, auto bool) Ref {
	return c.Add(Decl{
		Kind: DeclProperty, Name: name, Parent: parent, Type: typ, Access: access, Flags: flags,
		Accessors: acc, Auto: auto, Writeability: writeabilityOf(acc),
	})
}

// AddEvent declares an event; fieldLike events have no explicit accessors.
func (c *Compilation) AddEvent(parent Ref, name string, typ types.TypeID, access Accessibility, flags Flags, fieldLike bool) Ref {
	d := Decl{Kind: DeclEvent, Name: name, Parent: parent, Type: typ, Access: access, Flags: flags, Auto: fieldLike}
	if !fieldLike {
		d.Accessors = AccessorAdd | AccessorRemove
	}
	return c.Add(d)
}

// AddConstructor declares a constructor. Its name is the declaring type's name.
func (c *Compilation) AddConstructor(parent Ref, access Accessibility, flags Flags) Ref {
	name := ""
	if p := c.Decl(parent); p != nil {
		name = p.Name
	}
	return c.Add(Decl{Kind: DeclConstructor, Name: name, Parent: parent, Access: access, Flags: flags})
}

// AddIndexer declares an indexer.
func (c *Compilation) AddIndexer(parent Ref, typ types.TypeID, access Accessibility, flags Flags, acc Accessors) Ref {
	return c.Add(Decl{
		Kind: DeclIndexer, Name: IndexerName, Parent: parent, Type: typ, Access: access, Flags: flags,
		Accessors: acc, Writeability: writeabilityOf(acc),
	})
}

// AddParameter appends a parameter to a method, constructor or indexer.
func (c *Compilation) AddParameter(owner Ref, name string, typ types.TypeID, value string) Ref {
	return c.Add(Decl{Kind: DeclParameter, Name: name, Parent: owner, Type: typ, Value: value})
}

// SetInitializer sets the constructor initializer; the target is resolved on Seal.
func (c *Compilation) SetInitializer(ctor Ref, kind InitializerKind, args ...string) {
	c.mustOpen()
	d := &c.decls[ctor]
	d.Initializer = kind
	d.InitArgs = append([]string(nil), args...)
}

// SetBody replaces the body statements of a declaration.
func (c *Compilation) SetBody(ref Ref, lines ...string) {
	c.mustOpen()
	c.decls[ref].Body = append([]string(nil), lines...)
}

// SetSpan records the source location of a declaration.
func (c *Compilation) SetSpan(ref Ref, sp source.Span) {
	c.mustOpen()
	c.decls[ref].Span = sp
}

// Seal synthesizes implicit constructors, resolves constructor initializer
// targets and returns the base snapshot. Repeated calls return the same snapshot.
func (c *Compilation) Seal() *Snapshot {
	if c.sealed != nil {
		return c.sealed
	}
	for _, t := range append([]Ref(nil), c.typeList...) {
		c.synthesizeImplicitConstructor(t)
	}
	last, err := safecast.Conv[uint32](len(c.decls) - 1)
	if err != nil {
		panic(fmt.Errorf("decl arena overflow: %w", err))
	}
	c.next.Store(last)
	snap := &Snapshot{comp: c, roots: c.roots, types: c.typeList, label: "base"}
	for i := range c.decls {
		d := &c.decls[i]
		if d.Kind != DeclConstructor || d.Initializer == InitNone || d.InitTarget.IsValid() {
			continue
		}
		if target := snap.InitializerTarget(d.Ref); target != nil {
			d.InitTarget = target.Ref
		}
	}
	c.sealed = snap
	return snap
}

func (c *Compilation) synthesizeImplicitConstructor(t Ref) {
	td := c.decls[t]
	if td.TypeKind == TypeInterface || td.Has(FlagStatic) {
		return
	}
	for _, m := range td.Members {
		if md := c.decls[m]; md.Kind == DeclConstructor && !md.IsStatic() {
			return
		}
	}
	access := AccessPublic
	if td.Has(FlagAbstract) {
		access = AccessProtected
	}
	c.Add(Decl{
		Kind:   DeclConstructor,
		Name:   td.Name,
		Parent: t,
		Access: access,
		Flags:  FlagImplicit,
		Span:   td.Span,
		Origin: Origin{Kind: OriginSynthesized},
	})
}

func writeabilityOf(acc Accessors) Writeability {
	switch {
	case acc.Has(AccessorSet):
		return WriteAll
	case acc.Has(AccessorInit):
		return WriteInitOnly
	case acc.Has(AccessorGet):
		return WriteConstructorOnly
	}
	return WriteNone
}

// IndexerName is the member name indexers are registered under.
const IndexerName = "this[]"
