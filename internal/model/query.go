package model

import (
	"slices"

	"weave/internal/types"
)

// Signature identifies a member for conflict lookups.
type Signature struct {
	Kind       DeclKind
	MethodKind MethodKind
	Name       string
	Params     []types.TypeID
	Return     types.TypeID // result or member type; FindBySignature checks it only for conversion operators
	Static     bool         // distinguishes static from instance constructors
}

// Members returns the members of a type or namespace in declaration order.
func (s *Snapshot) Members(t Ref) []*Decl {
	td := s.Get(t)
	if td == nil {
		return nil
	}
	out := make([]*Decl, 0, len(td.Members))
	for _, m := range td.Members {
		if md := s.Get(m); md != nil {
			out = append(out, md)
		}
	}
	return out
}

// MembersNamed returns the members of t with the given name.
func (s *Snapshot) MembersNamed(t Ref, name string) []*Decl {
	refs := s.memberIndex(t).byName[name]
	out := make([]*Decl, 0, len(refs))
	for _, r := range refs {
		if d := s.Get(r); d != nil {
			out = append(out, d)
		}
	}
	return out
}

// Params returns the parameter declarations of a method, constructor or indexer.
func (s *Snapshot) Params(ref Ref) []*Decl {
	d := s.Get(ref)
	if d == nil {
		return nil
	}
	out := make([]*Decl, 0, len(d.Params))
	for _, p := range d.Params {
		if pd := s.Get(p); pd != nil {
			out = append(out, pd)
		}
	}
	return out
}

// ParamTypes returns parameter types in order.
func (s *Snapshot) ParamTypes(ref Ref) []types.TypeID {
	params := s.Params(ref)
	out := make([]types.TypeID, len(params))
	for i, p := range params {
		out[i] = p.Type
	}
	return out
}

// DeclaringType returns the type that declares ref. For a type it is the type itself.
func (s *Snapshot) DeclaringType(ref Ref) *Decl {
	for d := s.Get(ref); d != nil; d = s.Get(d.Parent) {
		if d.Kind == DeclType {
			return d
		}
	}
	return nil
}

// TypeOfNamed finds a type by qualified or unambiguous simple name.
func (s *Snapshot) TypeOfNamed(name string) Ref {
	return s.typeIndex()[name]
}

// NamedType returns the semantic type referring to the type declaration t.
func (s *Snapshot) NamedType(t Ref) types.TypeID {
	return s.comp.Types.Named(s.QualifiedName(t))
}

// DeclOfType maps a semantic named type back to its declaration, if any.
func (s *Snapshot) DeclOfType(id types.TypeID) Ref {
	tt, ok := s.comp.Types.Lookup(s.comp.Types.StripNullable(id))
	if !ok || tt.Kind != types.KindNamed {
		return NoRef
	}
	return s.TypeOfNamed(tt.Name)
}

// IsValueType reports whether id denotes a struct or a value keyword type.
func (s *Snapshot) IsValueType(id types.TypeID) bool {
	if s.comp.Types.IsValueKeyword(id) {
		return true
	}
	if t := s.Get(s.DeclOfType(id)); t != nil {
		return t.TypeKind == TypeStruct
	}
	return false
}

// BaseType returns the base class of t within the compilation.
func (s *Snapshot) BaseType(t Ref) Ref {
	if d := s.Get(t); d != nil && d.Kind == DeclType {
		return d.BaseType
	}
	return NoRef
}

// BaseChain returns t followed by its base classes, nearest first.
// A malformed cyclic hierarchy stops at the first repeated type.
func (s *Snapshot) BaseChain(t Ref) []Ref {
	var chain []Ref
	for cur := t; cur.IsValid(); cur = s.BaseType(cur) {
		if slices.Contains(chain, cur) {
			break
		}
		chain = append(chain, cur)
	}
	return chain
}

// DirectlyDerived returns types whose base class is t. It scans all types.
func (s *Snapshot) DirectlyDerived(t Ref) []Ref {
	var out []Ref
	for _, ref := range s.types {
		if d := s.Get(ref); d != nil && d.BaseType == t {
			out = append(out, ref)
		}
	}
	return out
}

// FindBySignature finds a member of t matching sig exactly.
func (s *Snapshot) FindBySignature(t Ref, sig Signature) *Decl {
	for _, m := range s.MembersNamed(t, sig.Name) {
		if m.Kind == sig.Kind && s.signatureMatches(m, sig) {
			return m
		}
	}
	return nil
}

// FindInHierarchy looks for a member conflicting with sig in t and its base
// classes, nearest first. sameType reports whether the match is declared by t.
// Members of a different kind with the same name are returned as conflicts;
// same-kind members with other parameter lists are overloads and skipped.
func (s *Snapshot) FindInHierarchy(t Ref, sig Signature) (existing *Decl, sameType bool) {
	for i, cur := range s.BaseChain(t) {
		inherited := i > 0
		if inherited && !inheritable(sig) {
			break
		}
		for _, m := range s.MembersNamed(cur, sig.Name) {
			if inherited && (m.Access == AccessPrivate || m.Kind == DeclConstructor) {
				continue
			}
			if m.Kind == sig.Kind && !s.signatureMatches(m, sig) {
				continue
			}
			return m, !inherited
		}
	}
	return nil, false
}

func inheritable(sig Signature) bool {
	switch {
	case sig.Kind == DeclConstructor:
		return false
	case sig.Kind == DeclMethod && sig.MethodKind != MethodOrdinary:
		return false
	}
	return true
}

func (s *Snapshot) signatureMatches(m *Decl, sig Signature) bool {
	switch m.Kind {
	case DeclMethod:
		if m.MethodKind != sig.MethodKind {
			return false
		}
		if m.MethodKind == MethodConversion && m.Type != sig.Return {
			return false
		}
		return slices.Equal(s.ParamTypes(m.Ref), sig.Params)
	case DeclConstructor:
		return m.IsStatic() == sig.Static && slices.Equal(s.ParamTypes(m.Ref), sig.Params)
	case DeclIndexer:
		return slices.Equal(s.ParamTypes(m.Ref), sig.Params)
	}
	return true
}

// Finalizer returns the finalizer declared by t.
func (s *Snapshot) Finalizer(t Ref) *Decl {
	for _, m := range s.Members(t) {
		if m.IsFinalizer() {
			return m
		}
	}
	return nil
}

// Walk visits declarations depth first starting from the roots.
func (s *Snapshot) Walk(fn func(d *Decl, depth int) bool) {
	var visit func(ref Ref, depth int) bool
	visit = func(ref Ref, depth int) bool {
		d := s.Get(ref)
		if d == nil {
			return true
		}
		if !fn(d, depth) {
			return false
		}
		for _, p := range d.Params {
			if !visit(p, depth+1) {
				return false
			}
		}
		for _, m := range d.Members {
			if !visit(m, depth+1) {
				return false
			}
		}
		return true
	}
	for _, r := range s.roots {
		if !visit(r, 0) {
			return
		}
	}
}
