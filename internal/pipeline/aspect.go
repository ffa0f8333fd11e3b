package pipeline

import (
	"weave/internal/source"
)

// Aspect is a named, ordered list of advices. Aspects run in the order they
// are given to Run; the position is the layer of every transformation the
// aspect produces.
type Aspect struct {
	Name    string
	Advices []Advice
}

// Advice is one unit of work inside an aspect. Run sees the snapshot left by
// every earlier advice.
type Advice struct {
	Name string
	// Site is where the advice is declared; diagnostics point there.
	Site source.Span
	Run  func(ac *AdviceContext) error
}
