// Package transform defines the closed set of transformations advice
// produces, how they lower into syntax fragments and how observable ones
// fold into the next compilation layer.
package transform

import (
	"fmt"

	"weave/internal/lower"
	"weave/internal/model"
	"weave/internal/syntax"
)

// Kind enumerates transformation variants.
type Kind uint8

const (
	KindIntroduceMember Kind = iota + 1
	KindOverrideMember
	KindIntroduceParameter
	KindAppendInitializerArgument
	KindInsertStatement
)

func (k Kind) String() string {
	switch k {
	case KindIntroduceMember:
		return "introduce-member"
	case KindOverrideMember:
		return "override-member"
	case KindIntroduceParameter:
		return "introduce-parameter"
	case KindAppendInitializerArgument:
		return "append-initializer-argument"
	case KindInsertStatement:
		return "insert-statement"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Observability tells who can see the effect of a transformation.
type Observability uint8

const (
	// ObservableAlways changes the declaration model for every consumer.
	ObservableAlways Observability = iota
	// ObservableCompileTimeOnly is hidden from the design-time view.
	ObservableCompileTimeOnly
	// ObservableNone only changes emitted code (bodies, statements).
	ObservableNone
)

func (o Observability) String() string {
	switch o {
	case ObservableAlways:
		return "always"
	case ObservableCompileTimeOnly:
		return "compile-time-only"
	case ObservableNone:
		return "none"
	default:
		return fmt.Sprintf("Observability(%d)", o)
	}
}

// Relation places a transformation relative to an anchor declaration.
type Relation uint8

const (
	Within Relation = iota
	Before
	After
	Replace
)

func (r Relation) String() string {
	switch r {
	case Within:
		return "within"
	case Before:
		return "before"
	case After:
		return "after"
	case Replace:
		return "replace"
	default:
		return fmt.Sprintf("Relation(%d)", r)
	}
}

// Position is an insertion position.
type Position struct {
	Relation Relation
	Anchor   model.Ref
}

// Advice identifies the producer of a transformation. Layer is the aspect
// index in the pipeline; Order is a sequence number across the whole run.
type Advice struct {
	Aspect string
	Layer  int
	Order  int
}

// Less orders transformations by layer, then by sequence.
func (a Advice) Less(b Advice) bool {
	if a.Layer != b.Layer {
		return a.Layer < b.Layer
	}
	return a.Order < b.Order
}

// Transformation is one concrete unit of change.
type Transformation interface {
	Kind() Kind
	Target() model.Ref
	Advice() Advice
	Position() Position
	Observability() Observability
	Describe(snap *model.Snapshot) string
	// Lower materializes the transformation against ctx.
	Lower(ctx *lower.Context) syntax.Fragment
	isTransformation()
}

// Observable transformations change the declaration model.
type Observable interface {
	Transformation
	Apply(d *model.Delta)
}

type header struct {
	advice Advice
}

func (h header) Advice() Advice { return h.advice }

// Counter hands out advice stamps in emission order. It is owned by the
// single writer of a pipeline run.
type Counter struct{ n int }

// Stamp returns the next advice stamp for aspect at layer.
func (c *Counter) Stamp(aspect string, layer int) Advice {
	c.n++
	return Advice{Aspect: aspect, Layer: layer, Order: c.n}
}

// Issued returns the number of stamps handed out.
func (c *Counter) Issued() int { return c.n }
