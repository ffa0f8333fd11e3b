// Package introduce decides how a declaration built by advice enters the
// current compilation: introduced as is, hiding or overriding an inherited
// member, overriding a member of the same type, ignored, or rejected with a
// diagnostic.
package introduce

import (
	"fmt"
	"strings"

	"weave/internal/diag"
	"weave/internal/model"
	"weave/internal/transform"
)

// Strategy says what to do when a member with the same signature exists.
type Strategy uint8

const (
	Fail Strategy = iota
	Ignore
	New
	Override
)

func (s Strategy) String() string {
	switch s {
	case Fail:
		return "fail"
	case Ignore:
		return "ignore"
	case New:
		return "new"
	case Override:
		return "override"
	default:
		return fmt.Sprintf("Strategy(%d)", s)
	}
}

// ParseStrategy parses a strategy name; the empty string means Fail.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail":
		return Fail, nil
	case "ignore":
		return Ignore, nil
	case "new":
		return New, nil
	case "override":
		return Override, nil
	}
	return Fail, fmt.Errorf("unknown override strategy %q", s)
}

// Outcome tags the result of an introduction.
type Outcome uint8

const (
	// OutcomeDefault: nothing conflicting existed.
	OutcomeDefault Outcome = iota
	// OutcomeOverride: an existing member is overridden.
	OutcomeOverride
	// OutcomeNew: an inherited member is hidden.
	OutcomeNew
	// OutcomeIgnore: the existing member wins; nothing is introduced.
	OutcomeIgnore
	// OutcomeError: the introduction was rejected with a diagnostic.
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDefault:
		return "default"
	case OutcomeOverride:
		return "override"
	case OutcomeNew:
		return "new"
	case OutcomeIgnore:
		return "ignore"
	case OutcomeError:
		return "error"
	default:
		return fmt.Sprintf("Outcome(%d)", o)
	}
}

// Result is returned by every introduction. Decl is the introduced
// declaration, or the existing one for Ignore and same-type Override.
type Result struct {
	Outcome         Outcome
	Decl            model.Ref
	Transformations []transform.Transformation
	Diagnostic      *diag.Diagnostic
}

// Failed reports whether the introduction was rejected.
func (r Result) Failed() bool { return r.Outcome == OutcomeError }
