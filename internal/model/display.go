package model

import (
	"strings"
)

// QualifiedName returns the dotted name of a type or namespace.
func (s *Snapshot) QualifiedName(ref Ref) string {
	var parts []string
	for d := s.Get(ref); d != nil; d = s.Get(d.Parent) {
		if d.Kind != DeclType && d.Kind != DeclNamespace {
			continue
		}
		parts = append(parts, d.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// Display renders a declaration for diagnostics, e.g. "App.Service.Run(int)".
func (s *Snapshot) Display(ref Ref) string {
	d := s.Get(ref)
	if d == nil {
		return "<missing>"
	}
	switch d.Kind {
	case DeclType, DeclNamespace:
		return s.QualifiedName(ref)
	case DeclParameter:
		return d.Name + " in " + s.Display(d.Parent)
	}
	owner := s.QualifiedName(d.Parent)
	var b strings.Builder
	b.WriteString(owner)
	b.WriteByte('.')
	switch {
	case d.Kind == DeclConstructor:
		if d.IsStatic() {
			b.WriteString("static ")
		}
		b.WriteString(d.Name)
		s.writeParams(&b, d, '(', ')')
	case d.Kind == DeclIndexer:
		b.WriteString("this")
		s.writeParams(&b, d, '[', ']')
	case d.IsFinalizer():
		b.WriteString("~")
		if td := s.Get(d.Parent); td != nil {
			b.WriteString(td.Name)
		}
		b.WriteString("()")
	case d.Kind == DeclMethod && d.MethodKind == MethodOperator:
		b.WriteString("operator ")
		b.WriteString(d.Name)
		s.writeParams(&b, d, '(', ')')
	case d.Kind == DeclMethod && d.MethodKind == MethodConversion:
		b.WriteString(d.Name)
		b.WriteString(" operator ")
		b.WriteString(s.comp.Types.Display(d.Type))
		s.writeParams(&b, d, '(', ')')
	case d.Kind == DeclMethod:
		b.WriteString(d.Name)
		s.writeParams(&b, d, '(', ')')
	default:
		b.WriteString(d.Name)
	}
	return b.String()
}

func (s *Snapshot) writeParams(b *strings.Builder, d *Decl, open, closing byte) {
	b.WriteByte(open)
	for i, p := range d.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if pd := s.Get(p); pd != nil {
			b.WriteString(s.comp.Types.Display(pd.Type))
		}
	}
	b.WriteByte(closing)
}
