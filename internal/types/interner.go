package types

import (
	"fmt"
	"strings"
	"sync"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for keyword types.
type Builtins struct {
	Void   TypeID
	Object TypeID
	Bool   TypeID
	Char   TypeID
	Int    TypeID
	Long   TypeID
	Float  TypeID
	Double TypeID
	String TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Interning is guarded by a mutex so snapshots sharing one interner can be
// read from several goroutines while lowering.
type Interner struct {
	mu       sync.RWMutex
	types    []Type
	index    map[Type]TypeID
	builtins Builtins
}

// NewInterner constructs an interner seeded with keyword types.
func NewInterner() *Interner {
	in := &Interner{
		types: make([]Type, 1, 32), // reserve 0 as NoTypeID
		index: make(map[Type]TypeID, 32),
	}
	in.builtins = Builtins{
		Void:   in.Intern(Type{Kind: KindVoid}),
		Object: in.Intern(Type{Kind: KindObject}),
		Bool:   in.Intern(Type{Kind: KindBool}),
		Char:   in.Intern(Type{Kind: KindChar}),
		Int:    in.Intern(Type{Kind: KindInt}),
		Long:   in.Intern(Type{Kind: KindLong}),
		Float:  in.Intern(Type{Kind: KindFloat}),
		Double: in.Intern(Type{Kind: KindDouble}),
		String: in.Intern(Type{Kind: KindString}),
	}
	return in
}

// Builtins returns TypeIDs for keyword types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	in.mu.RLock()
	id, ok := in.index[t]
	in.mu.RUnlock()
	if ok {
		return id
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.index[t]; ok {
		return id
	}
	value, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id = TypeID(value)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Named interns a reference to a named type.
func (in *Interner) Named(name string) TypeID {
	return in.Intern(MakeNamed(name))
}

// ArrayOf interns elem[].
func (in *Interner) ArrayOf(elem TypeID) TypeID {
	return in.Intern(MakeArray(elem))
}

// NullableOf interns elem?. Annotating an already nullable type is a no-op.
func (in *Interner) NullableOf(elem TypeID) TypeID {
	if t, ok := in.Lookup(elem); ok && t.Kind == KindNullable {
		return elem
	}
	return in.Intern(MakeNullable(elem))
}

var keywords = map[string]Kind{
	"void":   KindVoid,
	"object": KindObject,
	"bool":   KindBool,
	"char":   KindChar,
	"int":    KindInt,
	"long":   KindLong,
	"float":  KindFloat,
	"double": KindDouble,
	"string": KindString,
}

// Parse interns a type written in source form: keyword or qualified name,
// optionally followed by any sequence of "[]" and "?" suffixes.
func (in *Interner) Parse(text string) (TypeID, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return NoTypeID, fmt.Errorf("empty type")
	}
	switch {
	case strings.HasSuffix(text, "[]"):
		elem, err := in.Parse(strings.TrimSuffix(text, "[]"))
		if err != nil {
			return NoTypeID, err
		}
		return in.ArrayOf(elem), nil
	case strings.HasSuffix(text, "?"):
		elem, err := in.Parse(strings.TrimSuffix(text, "?"))
		if err != nil {
			return NoTypeID, err
		}
		return in.NullableOf(elem), nil
	}
	if kind, ok := keywords[text]; ok {
		return in.Intern(Type{Kind: kind}), nil
	}
	for _, part := range strings.Split(text, ".") {
		if !isIdent(part) {
			return NoTypeID, fmt.Errorf("invalid type name %q", text)
		}
	}
	return in.Named(text), nil
}

// MustParse is Parse for tests and fixtures.
func (in *Interner) MustParse(text string) TypeID {
	id, err := in.Parse(text)
	if err != nil {
		panic(err)
	}
	return id
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		case r > 0x7f:
		default:
			return false
		}
	}
	return true
}
