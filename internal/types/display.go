package types

import "strings"

// Display renders id in source form ("int", "App.Item[]", "string?").
func (in *Interner) Display(id TypeID) string {
	var b strings.Builder
	in.write(&b, id)
	return b.String()
}

func (in *Interner) write(b *strings.Builder, id TypeID) {
	t, ok := in.Lookup(id)
	if !ok {
		b.WriteString("<invalid>")
		return
	}
	switch t.Kind {
	case KindNamed:
		b.WriteString(t.Name)
	case KindArray:
		in.write(b, t.Elem)
		b.WriteString("[]")
	case KindNullable:
		in.write(b, t.Elem)
		b.WriteByte('?')
	default:
		b.WriteString(t.Kind.String())
	}
}

// StripNullable removes a top-level '?' annotation.
func (in *Interner) StripNullable(id TypeID) TypeID {
	if t, ok := in.Lookup(id); ok && t.Kind == KindNullable {
		return t.Elem
	}
	return id
}

// IsValueKeyword reports whether id is a keyword value type (bool, char and numerics).
func (in *Interner) IsValueKeyword(id TypeID) bool {
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case KindBool, KindChar, KindInt, KindLong, KindFloat, KindDouble:
		return true
	}
	return false
}
