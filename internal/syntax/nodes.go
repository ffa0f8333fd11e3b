// Package syntax holds the small C#-shaped syntax tree produced by lowering,
// its deterministic printer and the type/modifier generation service.
package syntax

// MemberKind enumerates lowered declaration shapes.
type MemberKind uint8

const (
	MemberInvalid MemberKind = iota
	MemberNamespace
	MemberType
	MemberMethod
	MemberOperator
	MemberConversion
	MemberFinalizer
	MemberConstructor
	MemberField
	MemberProperty
	MemberIndexer
	MemberEvent
	MemberEventField
)

func (k MemberKind) String() string {
	switch k {
	case MemberNamespace:
		return "namespace"
	case MemberType:
		return "type"
	case MemberMethod:
		return "method"
	case MemberOperator:
		return "operator"
	case MemberConversion:
		return "conversion"
	case MemberFinalizer:
		return "finalizer"
	case MemberConstructor:
		return "constructor"
	case MemberField:
		return "field"
	case MemberProperty:
		return "property"
	case MemberIndexer:
		return "indexer"
	case MemberEvent:
		return "event"
	case MemberEventField:
		return "event field"
	default:
		return "invalid"
	}
}

// Param is a parameter in a member signature.
type Param struct {
	Attributes []string
	Modifiers  []string
	Type       string
	Name       string
	Default    string
}

// Accessor is a property, indexer or event accessor.
type Accessor struct {
	Keyword   string // get, set, init, add, remove
	Modifiers []string
	Body      []string
	Auto      bool // "get;" form without a body
}

// Initializer is a constructor initializer: ": base(args)" or ": this(args)".
type Initializer struct {
	Keyword string
	Args    []string
}

// Member is one lowered declaration. Types and namespaces nest members.
type Member struct {
	Kind       MemberKind
	Attributes []string
	Modifiers  []string
	Keyword    string // class/struct/interface/record for types
	Type       string // return, field, property or event type
	Name       string
	Explicit   string // explicit interface qualifier
	Params     []Param
	Bases      []string
	Init       *Initializer
	Accessors  []Accessor
	Body       []string
	HasBody    bool // false prints ';' instead of a block
	Value      string
	Members    []*Member
	Comment    string // leading single-line comment
}

// File is the root of the printed output.
type File struct {
	Header  []string
	Members []*Member
}

// FragmentKind distinguishes the pieces a transformation lowers into.
type FragmentKind uint8

const (
	FragmentNone FragmentKind = iota
	FragmentMember
	FragmentParam
	FragmentArgument
	FragmentStatement
)

// Fragment is the syntax a single transformation contributes.
type Fragment struct {
	Kind        FragmentKind
	Member      *Member
	Param       *Param
	Argument    string
	Initializer string // base or this, for arguments of constructors without one
	Statements  []string
}

// IsEmpty reports whether the fragment contributes nothing.
func (f Fragment) IsEmpty() bool {
	return f.Kind == FragmentNone
}
