package model

// Ref is a stable reference token for a declaration. It is allocated once per
// compilation and keeps identifying the same declaration in every layer.
type Ref uint32

const (
	// NoRef marks the absence of a declaration reference.
	NoRef Ref = 0
)

// IsValid reports whether the ref points to an allocated declaration.
func (r Ref) IsValid() bool { return r != NoRef }

// DeclKind classifies declarations.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclNamespace
	DeclType
	DeclMethod
	DeclField
	DeclProperty
	DeclEvent
	DeclConstructor
	DeclIndexer
	DeclParameter
)

func (k DeclKind) String() string {
	switch k {
	case DeclNamespace:
		return "namespace"
	case DeclType:
		return "type"
	case DeclMethod:
		return "method"
	case DeclField:
		return "field"
	case DeclProperty:
		return "property"
	case DeclEvent:
		return "event"
	case DeclConstructor:
		return "constructor"
	case DeclIndexer:
		return "indexer"
	case DeclParameter:
		return "parameter"
	default:
		return "invalid"
	}
}

// IsMember reports whether declarations of this kind live in a type's member list.
func (k DeclKind) IsMember() bool {
	switch k {
	case DeclMethod, DeclField, DeclProperty, DeclEvent, DeclConstructor, DeclIndexer, DeclType:
		return true
	}
	return false
}

// MatchesBySignature reports whether conflicts for this kind are decided by
// parameter types rather than by name alone.
func (k DeclKind) MatchesBySignature() bool {
	return k == DeclMethod || k == DeclConstructor || k == DeclIndexer
}

// TypeKind distinguishes classes, structs, interfaces and records.
type TypeKind uint8

const (
	TypeClass TypeKind = iota
	TypeStruct
	TypeInterface
	TypeRecord
)

func (k TypeKind) String() string {
	switch k {
	case TypeClass:
		return "class"
	case TypeStruct:
		return "struct"
	case TypeInterface:
		return "interface"
	case TypeRecord:
		return "record"
	default:
		return "invalid"
	}
}

// MethodKind refines DeclMethod.
type MethodKind uint8

const (
	MethodOrdinary MethodKind = iota
	MethodOperator
	MethodConversion
	MethodFinalizer
)

func (k MethodKind) String() string {
	switch k {
	case MethodOrdinary:
		return "method"
	case MethodOperator:
		return "operator"
	case MethodConversion:
		return "conversion operator"
	case MethodFinalizer:
		return "finalizer"
	default:
		return "invalid"
	}
}

// Accessibility of a declaration. AccessDefault prints no modifier.
type Accessibility uint8

const (
	AccessDefault Accessibility = iota
	AccessPrivate
	AccessPrivateProtected
	AccessProtected
	AccessInternal
	AccessProtectedInternal
	AccessPublic
)

func (a Accessibility) String() string {
	switch a {
	case AccessPrivate:
		return "private"
	case AccessPrivateProtected:
		return "private protected"
	case AccessProtected:
		return "protected"
	case AccessInternal:
		return "internal"
	case AccessProtectedInternal:
		return "protected internal"
	case AccessPublic:
		return "public"
	default:
		return ""
	}
}

// ParseAccessibility maps the source spelling back to Accessibility.
func ParseAccessibility(s string) (Accessibility, bool) {
	switch s {
	case "":
		return AccessDefault, true
	case "private":
		return AccessPrivate, true
	case "private protected":
		return AccessPrivateProtected, true
	case "protected":
		return AccessProtected, true
	case "internal":
		return AccessInternal, true
	case "protected internal":
		return AccessProtectedInternal, true
	case "public":
		return AccessPublic, true
	}
	return AccessDefault, false
}

// Flags encode modifiers for quick checks.
type Flags uint16

const (
	FlagStatic Flags = 1 << iota
	FlagVirtual
	FlagAbstract
	FlagOverride
	FlagSealed
	FlagNew
	FlagReadOnly
	FlagImplicit // synthesized by the compiler (implicit constructors)
	FlagExtern
	FlagAsync
	FlagConst
	FlagParams // parameter declared with 'params'
)

var flagLabels = []struct {
	flag  Flags
	label string
}{
	{FlagStatic, "static"},
	{FlagVirtual, "virtual"},
	{FlagAbstract, "abstract"},
	{FlagOverride, "override"},
	{FlagSealed, "sealed"},
	{FlagNew, "new"},
	{FlagReadOnly, "readonly"},
	{FlagImplicit, "implicit"},
	{FlagExtern, "extern"},
	{FlagAsync, "async"},
	{FlagConst, "const"},
	{FlagParams, "params"},
}

// Strings returns a slice of textual flag labels.
func (f Flags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	for _, fl := range flagLabels {
		if f&fl.flag != 0 {
			labels = append(labels, fl.label)
		}
	}
	return labels
}

// ParseFlag maps a modifier keyword to its flag.
func ParseFlag(s string) (Flags, bool) {
	for _, fl := range flagLabels {
		if fl.label == s {
			return fl.flag, true
		}
	}
	return 0, false
}

// Writeability describes who may assign a field or property.
type Writeability uint8

const (
	WriteNone Writeability = iota
	WriteConstructorOnly
	WriteInitOnly
	WriteAll
)

func (w Writeability) String() string {
	switch w {
	case WriteNone:
		return "none"
	case WriteConstructorOnly:
		return "constructor-only"
	case WriteInitOnly:
		return "init-only"
	case WriteAll:
		return "all"
	default:
		return "invalid"
	}
}

// InitializerKind is the kind of a constructor initializer.
type InitializerKind uint8

const (
	InitNone InitializerKind = iota
	InitBase
	InitThis
)

func (k InitializerKind) String() string {
	switch k {
	case InitBase:
		return "base"
	case InitThis:
		return "this"
	default:
		return "none"
	}
}

// Accessors is the set of accessors a property, indexer or event declares.
type Accessors uint8

const (
	AccessorGet Accessors = 1 << iota
	AccessorSet
	AccessorInit
	AccessorAdd
	AccessorRemove
)

// Has reports whether all of the given accessors are present.
func (a Accessors) Has(x Accessors) bool { return a&x == x }

// OriginKind tells where a declaration comes from.
type OriginKind uint8

const (
	OriginSource OriginKind = iota
	OriginSynthesized
	OriginIntroduced
)

// Origin records the producer of a declaration.
type Origin struct {
	Kind   OriginKind
	Aspect string // introducing aspect
	Layer  int    // aspect layer index
}
