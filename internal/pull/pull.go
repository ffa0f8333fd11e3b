// Package pull threads a newly introduced constructor parameter through the
// constructors that chain to the modified one.
package pull

import (
	"fmt"
	"strconv"
	"strings"

	"weave/internal/builder"
	"weave/internal/model"
	"weave/internal/transform"
)

// Action is what a chained constructor does about a new callee parameter.
type Action uint8

const (
	// DoNotPull relies on the parameter's default value.
	DoNotPull Action = iota
	// UseExpression passes a fixed expression at the call site.
	UseExpression
	// AppendParameterAndPull adds a parameter to the chained constructor,
	// forwards it and continues with that constructor's callers.
	AppendParameterAndPull
)

func (a Action) String() string {
	switch a {
	case DoNotPull:
		return "none"
	case UseExpression:
		return "expression"
	case AppendParameterAndPull:
		return "append"
	default:
		return fmt.Sprintf("Action(%d)", a)
	}
}

// Decision is a policy answer for one chained constructor.
type Decision struct {
	Action     Action
	Expression string // UseExpression
	Name       string // AppendParameterAndPull; defaults to the callee parameter name
	Default    string // AppendParameterAndPull; defaults to the callee parameter default
}

// Policy decides, per chained constructor, how a parameter is pulled.
type Policy interface {
	Decide(chained *model.Decl, param *builder.ParameterData) Decision
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(chained *model.Decl, param *builder.ParameterData) Decision

// Decide implements Policy.
func (f PolicyFunc) Decide(chained *model.Decl, param *builder.ParameterData) Decision {
	return f(chained, param)
}

// Always returns the same action for every constructor.
func Always(a Action) Policy {
	return PolicyFunc(func(*model.Decl, *builder.ParameterData) Decision { return Decision{Action: a} })
}

// Expression passes expr to every chained call.
func Expression(expr string) Policy {
	return PolicyFunc(func(*model.Decl, *builder.ParameterData) Decision {
		return Decision{Action: UseExpression, Expression: expr}
	})
}

// ParsePolicy understands "none", "append" and "expression:<expr>".
func ParsePolicy(s string) (Policy, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || s == "none":
		return Always(DoNotPull), nil
	case s == "append":
		return Always(AppendParameterAndPull), nil
	case strings.HasPrefix(s, "expression:"):
		expr := strings.TrimSpace(strings.TrimPrefix(s, "expression:"))
		if expr == "" {
			return nil, fmt.Errorf("empty pull expression")
		}
		return Expression(expr), nil
	}
	return nil, fmt.Errorf("unknown pull policy %q", s)
}

// Propagator walks the "who calls me" relation of a snapshot. The relation
// is recomputed from the snapshot on every walk.
type Propagator struct {
	Snapshot *model.Snapshot
	Factory  *builder.Factory
	Stamp    func() transform.Advice
}

type walker struct {
	*Propagator
	policy     Policy
	visited    map[model.Ref]bool
	explicated map[model.Ref]bool
	added      map[model.Ref]int // parameters appended in this walk, per constructor
	out        []transform.Transformation
}

// Propagate returns the transformations pulling param, just introduced into
// ctor, through every constructor chaining to it. The walk panics if the
// chaining relation has a cycle.
func (p *Propagator) Propagate(ctor model.Ref, param *builder.ParameterData, policy Policy) []transform.Transformation {
	w := &walker{
		Propagator: p,
		policy:     policy,
		visited:    make(map[model.Ref]bool),
		explicated: make(map[model.Ref]bool),
		added:      make(map[model.Ref]int),
	}
	w.added[ctor]++
	w.walk(ctor, param)
	return w.out
}

func (w *walker) walk(callee model.Ref, param *builder.ParameterData) {
	if w.visited[callee] {
		panic(fmt.Sprintf("pull: constructor chain cycle through %s", w.Snapshot.Display(callee)))
	}
	w.visited[callee] = true

	for _, k := range w.Snapshot.ChainedConstructors(callee) {
		d := w.policy.Decide(k, param)
		switch d.Action {
		case DoNotPull:
		case UseExpression:
			w.out = append(w.out, transform.NewAppendInitializerArgument(
				w.Stamp(), k.Ref, callee, d.Expression, w.argumentName(k, callee, param)))
		case AppendParameterAndPull:
			if k.IsImplicit() && !w.explicated[k.Ref] {
				w.explicated[k.Ref] = true
				w.out = append(w.out, transform.NewIntroduceMember(w.Stamp(), w.Factory.ExplicitConstructor(k).Freeze()))
			}
			name := d.Name
			if name == "" {
				name = param.Name
			}
			name = w.uniqueName(k, name)
			def := d.Default
			if def == "" {
				def = param.Default
			}
			pb := w.Factory.Parameter(k.Ref, name, param.Type, def)
			pdata := pb.Freeze()
			w.out = append(w.out,
				transform.NewIntroduceParameter(w.Stamp(), pdata),
				transform.NewAppendInitializerArgument(w.Stamp(), k.Ref, callee, name, w.argumentName(k, callee, param)),
			)
			w.added[k.Ref]++
			w.walk(k.Ref, pdata)
		default:
			panic(fmt.Sprintf("pull: unexpected action %v", d.Action))
		}
	}
}

// argumentName returns the parameter name when the new argument must be
// passed by name because positional arguments would not line up.
func (w *walker) argumentName(k *model.Decl, callee model.Ref, param *builder.ParameterData) string {
	position := len(w.Snapshot.Get(callee).Params) + w.added[callee] - 1
	if param.Index >= 0 {
		position = param.Index
	}
	for _, a := range k.InitArgs {
		if strings.Contains(a, ":") {
			return param.Name
		}
	}
	if len(k.InitArgs) != position {
		return param.Name
	}
	return ""
}

func (w *walker) uniqueName(k *model.Decl, name string) string {
	taken := make(map[string]bool)
	for _, p := range w.Snapshot.Params(k.Ref) {
		taken[p.Name] = true
	}
	if !taken[name] {
		return name
	}
	for i := 1; ; i++ {
		candidate := name + strconv.Itoa(i)
		if !taken[candidate] {
			return candidate
		}
	}
}
