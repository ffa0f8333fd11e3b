package syntax

import (
	"strings"
)

const indentUnit = "    "

// Printer renders syntax nodes with a fixed layout. Output depends only on
// the input tree.
type Printer struct {
	b     strings.Builder
	depth int
}

// Print renders a whole file.
func Print(f *File) string {
	var p Printer
	for _, line := range f.Header {
		p.line(line)
	}
	if len(f.Header) > 0 && len(f.Members) > 0 {
		p.blank()
	}
	p.members(f.Members)
	return p.b.String()
}

// PrintMember renders a single member at the top level.
func PrintMember(m *Member) string {
	var p Printer
	p.member(m)
	return p.b.String()
}

func (p *Printer) line(parts ...string) {
	text := strings.Join(parts, "")
	if text == "" {
		p.blank()
		return
	}
	p.b.WriteString(strings.Repeat(indentUnit, p.depth))
	p.b.WriteString(text)
	p.b.WriteByte('\n')
}

func (p *Printer) blank() { p.b.WriteByte('\n') }

func (p *Printer) members(ms []*Member) {
	for i, m := range ms {
		if i > 0 {
			p.blank()
		}
		p.member(m)
	}
}

func (p *Printer) open() {
	p.line("{")
	p.depth++
}

func (p *Printer) close(suffix string) {
	p.depth--
	p.line("}" + suffix)
}

func (p *Printer) block(stmts []string) {
	p.open()
	for _, s := range stmts {
		p.line(s)
	}
	p.close("")
}

func (p *Printer) member(m *Member) {
	if m.Comment != "" {
		p.line("// ", m.Comment)
	}
	for _, a := range m.Attributes {
		p.line(a)
	}
	switch m.Kind {
	case MemberNamespace:
		p.line("namespace ", m.Name)
		p.open()
		p.members(m.Members)
		p.close("")
	case MemberType:
		head := prefix(m.Modifiers) + m.Keyword + " " + m.Name
		if len(m.Bases) > 0 {
			head += " : " + strings.Join(m.Bases, ", ")
		}
		p.line(head)
		p.open()
		p.members(m.Members)
		p.close("")
	case MemberMethod:
		p.body(prefix(m.Modifiers)+m.Type+" "+explicit(m)+m.Name+"("+params(m.Params)+")", m)
	case MemberOperator:
		p.body(prefix(m.Modifiers)+m.Type+" operator "+m.Name+"("+params(m.Params)+")", m)
	case MemberConversion:
		p.body(prefix(m.Modifiers)+m.Name+" operator "+m.Type+"("+params(m.Params)+")", m)
	case MemberFinalizer:
		p.body("~"+m.Name+"()", m)
	case MemberConstructor:
		head := prefix(m.Modifiers) + m.Name + "(" + params(m.Params) + ")"
		if m.Init != nil {
			head += " : " + m.Init.Keyword + "(" + strings.Join(m.Init.Args, ", ") + ")"
		}
		p.body(head, m)
	case MemberField:
		p.line(prefix(m.Modifiers), m.Type, " ", m.Name, value(m.Value), ";")
	case MemberEventField:
		p.line(prefix(m.Modifiers), "event ", m.Type, " ", explicit(m), m.Name, value(m.Value), ";")
	case MemberProperty:
		p.accessors(prefix(m.Modifiers)+m.Type+" "+explicit(m)+m.Name, m)
	case MemberIndexer:
		p.accessors(prefix(m.Modifiers)+m.Type+" "+explicit(m)+"this["+params(m.Params)+"]", m)
	case MemberEvent:
		p.accessors(prefix(m.Modifiers)+"event "+m.Type+" "+explicit(m)+m.Name, m)
	default:
		panic("syntax: unexpected member kind " + m.Kind.String())
	}
}

func (p *Printer) body(head string, m *Member) {
	if !m.HasBody {
		p.line(head, ";")
		return
	}
	p.line(head)
	p.block(m.Body)
}

func (p *Printer) accessors(head string, m *Member) {
	if allAuto(m.Accessors) {
		parts := make([]string, len(m.Accessors))
		for i, a := range m.Accessors {
			parts[i] = prefix(a.Modifiers) + a.Keyword + ";"
		}
		p.line(head, " { ", strings.Join(parts, " "), " }", value(m.Value), terminator(m.Value))
		return
	}
	p.line(head)
	p.open()
	for _, a := range m.Accessors {
		if a.Auto {
			p.line(prefix(a.Modifiers), a.Keyword, ";")
			continue
		}
		p.line(prefix(a.Modifiers), a.Keyword)
		p.block(a.Body)
	}
	p.close("")
}

func allAuto(accs []Accessor) bool {
	for _, a := range accs {
		if !a.Auto {
			return false
		}
	}
	return len(accs) > 0
}

func prefix(mods []string) string {
	if len(mods) == 0 {
		return ""
	}
	return strings.Join(mods, " ") + " "
}

func explicit(m *Member) string {
	if m.Explicit == "" {
		return ""
	}
	return m.Explicit + "."
}

func value(v string) string {
	if v == "" {
		return ""
	}
	return " = " + v
}

func terminator(v string) string {
	if v == "" {
		return ""
	}
	return ";"
}

func params(ps []Param) string {
	parts := make([]string, len(ps))
	for i, prm := range ps {
		var b strings.Builder
		for _, a := range prm.Attributes {
			b.WriteString(a)
			b.WriteByte(' ')
		}
		b.WriteString(prefix(prm.Modifiers))
		b.WriteString(prm.Type)
		b.WriteByte(' ')
		b.WriteString(prm.Name)
		if prm.Default != "" {
			b.WriteString(" = ")
			b.WriteString(prm.Default)
		}
		parts[i] = b.String()
	}
	return strings.Join(parts, ", ")
}
