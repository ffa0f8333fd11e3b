package model

// FinalizerName is the member name finalizers are registered under.
const FinalizerName = "Finalize"

// Constructors returns the instance constructors of t, implicit ones included.
func (s *Snapshot) Constructors(t Ref) []*Decl {
	var out []*Decl
	for _, m := range s.Members(t) {
		if m.IsInstanceConstructor() {
			out = append(out, m)
		}
	}
	return out
}

// ResolveConstructorCall picks the instance constructor of t that accepts argc
// positional arguments, preferring an exact parameter count. exclude is skipped.
func (s *Snapshot) ResolveConstructorCall(t Ref, argc int, exclude Ref) *Decl {
	var fallback *Decl
	for _, c := range s.Constructors(t) {
		if c.Ref == exclude {
			continue
		}
		params := s.Params(c.Ref)
		if len(params) == argc {
			return c
		}
		if fallback == nil && argc < len(params) && requiredParams(params) <= argc {
			fallback = c
		}
	}
	return fallback
}

func requiredParams(params []*Decl) int {
	n := 0
	for _, p := range params {
		if p.Value == "" && !p.Has(FlagParams) {
			n++
		}
	}
	return n
}

// InitializerTarget returns the constructor invoked by ctor's explicit
// base(...) or this(...) initializer.
func (s *Snapshot) InitializerTarget(ctor Ref) *Decl {
	d := s.Get(ctor)
	if d == nil || d.Kind != DeclConstructor {
		return nil
	}
	if d.InitTarget.IsValid() {
		return s.Get(d.InitTarget)
	}
	switch d.Initializer {
	case InitThis:
		return s.ResolveConstructorCall(d.Parent, len(d.InitArgs), d.Ref)
	case InitBase:
		if base := s.BaseType(d.Parent); base.IsValid() {
			return s.ResolveConstructorCall(base, len(d.InitArgs), NoRef)
		}
	}
	return nil
}

// EffectiveBaseConstructor returns the base-class constructor ctor ends up
// calling: the explicit base(...) target, or the parameterless base
// constructor when there is no initializer. Constructors chaining with
// this(...) have none.
func (s *Snapshot) EffectiveBaseConstructor(ctor Ref) *Decl {
	d := s.Get(ctor)
	if d == nil || !d.IsInstanceConstructor() {
		return nil
	}
	switch d.Initializer {
	case InitThis:
		return nil
	case InitBase:
		return s.InitializerTarget(ctor)
	}
	base := s.BaseType(d.Parent)
	if !base.IsValid() {
		return nil
	}
	return s.ResolveConstructorCall(base, 0, NoRef)
}

// ChainedConstructors returns constructors calling ctor: this(...) callers in
// the same type, then constructors of directly derived types whose effective
// base constructor is ctor. Copy constructors are excluded.
func (s *Snapshot) ChainedConstructors(ctor Ref) []*Decl {
	d := s.Get(ctor)
	if d == nil {
		return nil
	}
	var out []*Decl
	for _, c := range s.Constructors(d.Parent) {
		if c.Ref == ctor || c.Initializer != InitThis {
			continue
		}
		if t := s.InitializerTarget(c.Ref); t != nil && t.Ref == ctor {
			out = append(out, c)
		}
	}
	for _, derived := range s.DirectlyDerived(d.Parent) {
		for _, c := range s.Constructors(derived) {
			if s.IsCopyConstructor(c.Ref) {
				continue
			}
			if b := s.EffectiveBaseConstructor(c.Ref); b != nil && b.Ref == ctor {
				out = append(out, c)
			}
		}
	}
	return out
}

// IsCopyConstructor reports whether ctor takes a single parameter of its own type.
func (s *Snapshot) IsCopyConstructor(ctor Ref) bool {
	d := s.Get(ctor)
	if d == nil || !d.IsInstanceConstructor() || len(d.Params) != 1 {
		return false
	}
	p := s.Get(d.Params[0])
	if p == nil {
		return false
	}
	self := s.NamedType(d.Parent)
	return s.comp.Types.StripNullable(p.Type) == self
}
