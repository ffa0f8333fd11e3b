package trace

import "time"

// Kind is the shape of an event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	}
	return "unknown"
}

// Scope is the granularity of an event; coarser scopes have lower values.
type Scope uint8

const (
	// ScopeDriver covers one CLI command.
	ScopeDriver Scope = iota + 1
	// ScopePass covers a pipeline pass: load, advise, lower, print.
	ScopePass
	// ScopeAspect covers one aspect, i.e. one layer.
	ScopeAspect
	// ScopeAdvice covers a single advice call.
	ScopeAdvice
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeAspect:
		return "aspect"
	case ScopeAdvice:
		return "advice"
	}
	return "unknown"
}

// Attr is an ordered key/value pair attached to an event.
type Attr struct {
	Key   string
	Value string
}

// Event is one trace record. Aspect and Layer are set on events emitted
// while an aspect runs; Err is set when a span ended with an error.
type Event struct {
	Time   time.Time
	Seq    uint64
	Kind   Kind
	Scope  Scope
	Span   uint64
	Parent uint64
	Name   string
	Detail string
	Aspect string
	Layer  int
	Err    string
	Attrs  []Attr
}
