// Package emit merges the syntax fragments of all transformations with the
// lowered base compilation into one deterministic source file.
package emit

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"weave/internal/lower"
	"weave/internal/model"
	"weave/internal/syntax"
	"weave/internal/transform"
)

// DefaultHeader starts every emitted file.
var DefaultHeader = []string{"// <auto-generated/>"}

// Options control lowering.
type Options struct {
	Header      []string
	Mode        syntax.NullabilityMode
	LangVersion int
	DesignTime  bool // drop compile-time-only transformations
	Jobs        int  // parallel type lowering; 0 means GOMAXPROCS
}

// Emitter lowers Final. Declarations that come from the base compilation are
// lowered from Base so that folded parameters and arguments are applied only
// once, through their fragments.
type Emitter struct {
	Base    *model.Snapshot
	Final   *model.Snapshot
	Options Options
}

// plan indexes transformations by the declaration they shape.
type plan struct {
	intro map[model.Ref]*transform.IntroduceMember
	edits map[model.Ref][]transform.Transformation
}

func newPlan(ts []transform.Transformation) *plan {
	p := &plan{
		intro: make(map[model.Ref]*transform.IntroduceMember),
		edits: make(map[model.Ref][]transform.Transformation),
	}
	for _, t := range ts {
		if im, ok := t.(*transform.IntroduceMember); ok {
			p.intro[im.DeclRef()] = im
			continue
		}
		p.edits[t.Target()] = append(p.edits[t.Target()], t)
	}
	return p
}

// Emit lowers every declaration of the final snapshot. Types are lowered
// concurrently; the result does not depend on scheduling.
func (e *Emitter) Emit(ctx context.Context, ts []transform.Transformation) (*syntax.File, error) {
	ts = slices.Clone(transform.Visible(ts, e.Options.DesignTime))
	transform.Sort(ts)
	if err := transform.Check(e.Final, ts); err != nil {
		return nil, fmt.Errorf("emit: %w", err)
	}
	w := &writer{
		plan:  newPlan(ts),
		base:  lower.NewContext(e.Base, e.Options.Mode, e.Options.LangVersion),
		final: lower.NewContext(e.Final, e.Options.Mode, e.Options.LangVersion),
	}

	// верхнеуровневые типы (внутри пространств имён) понижаются параллельно
	var tops []model.Ref
	var collect func(refs []model.Ref)
	collect = func(refs []model.Ref) {
		for _, ref := range refs {
			d := e.Final.Get(ref)
			switch {
			case d == nil:
			case d.Kind == model.DeclNamespace:
				collect(d.Members)
			case d.Kind == model.DeclType && !w.hidden(ref):
				tops = append(tops, ref)
			}
		}
	}
	collect(e.Final.Roots())

	jobs := e.Options.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]*syntax.Member, len(tops))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(tops))))
	for i, ref := range tops {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = w.typeDecl(ref)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lowered := make(map[model.Ref]*syntax.Member, len(tops))
	for i, ref := range tops {
		lowered[ref] = results[i]
	}
	header := e.Options.Header
	if header == nil {
		header = DefaultHeader
	}
	return &syntax.File{Header: slices.Clone(header), Members: w.tree(e.Final.Roots(), lowered)}, nil
}

// Print emits and prints in one step.
func (e *Emitter) Print(ctx context.Context, ts []transform.Transformation) (string, error) {
	f, err := e.Emit(ctx, ts)
	if err != nil {
		return "", err
	}
	return syntax.Print(f), nil
}

type writer struct {
	plan  *plan
	base  *lower.Context
	final *lower.Context
}

func (w *writer) tree(refs []model.Ref, lowered map[model.Ref]*syntax.Member) []*syntax.Member {
	var out []*syntax.Member
	for _, ref := range refs {
		d := w.final.Snapshot.Get(ref)
		if d == nil {
			continue
		}
		switch d.Kind {
		case model.DeclNamespace:
			ns := &syntax.Member{Kind: syntax.MemberNamespace, Name: d.Name}
			ns.Members = w.tree(d.Members, lowered)
			out = append(out, ns)
		case model.DeclType:
			if m := lowered[ref]; m != nil {
				out = append(out, m)
			}
		}
	}
	return out
}

// hidden reports declarations introduced by a transformation that was
// filtered out (compile-time-only at design time).
func (w *writer) hidden(ref model.Ref) bool {
	if _, ok := w.plan.intro[ref]; ok {
		return false
	}
	return w.base.Snapshot.Get(ref) == nil
}

// typeDecl lowers a type with its members and nested types.
func (w *writer) typeDecl(ref model.Ref) *syntax.Member {
	d := w.final.Snapshot.Get(ref)
	var shell *syntax.Member
	if im, ok := w.plan.intro[ref]; ok {
		shell = im.Lower(w.final).Member
	} else {
		shell = lower.Source(w.final, d)
	}
	for _, mref := range d.Members {
		md := w.final.Snapshot.Get(mref)
		if md == nil {
			continue
		}
		if w.hidden(mref) {
			continue
		}
		if md.Kind == model.DeclType {
			shell.Members = append(shell.Members, w.typeDecl(mref))
			continue
		}
		shell.Members = append(shell.Members, w.member(md)...)
	}
	return shell
}

// member lowers one declaration and applies its fragments in advice order.
// Overrides that move an implementation aside produce helper members,
// returned after the member itself.
func (w *writer) member(d *model.Decl) []*syntax.Member {
	var current *syntax.Member
	im, introduced := w.plan.intro[d.Ref]
	switch {
	case introduced:
		current = im.Lower(w.final).Member
	case w.hidden(d.Ref):
		return nil
	default:
		current = lower.Source(w.base, w.base.Snapshot.Get(d.Ref))
	}
	if current == nil {
		return nil
	}

	var helpers []*syntax.Member
	names := make(map[string]bool)
	for _, t := range w.plan.edits[d.Ref] {
		switch v := t.(type) {
		case *transform.OverrideMember:
			current, helpers = w.override(v, current, helpers, names, introduced)
		case *transform.IntroduceParameter:
			p := v.Lower(w.final).Param
			if i := v.Param.Index; i >= 0 && i < len(current.Params) {
				current.Params = slices.Insert(current.Params, i, *p)
			} else {
				current.Params = append(current.Params, *p)
			}
		case *transform.AppendInitializerArgument:
			f := v.Lower(w.final)
			if current.Init == nil {
				current.Init = &syntax.Initializer{Keyword: f.Initializer}
			}
			current.Init.Args = append(current.Init.Args, f.Argument)
		case *transform.InsertStatement:
			current.Body = prepend(current.Body, v.Lower(w.final).Statements)
			current.HasBody = true
		default:
			panic(fmt.Sprintf("emit: unexpected transformation %T on %s", t, w.final.Snapshot.Display(d.Ref)))
		}
	}
	return append([]*syntax.Member{current}, helpers...)
}

func (w *writer) override(v *transform.OverrideMember, current *syntax.Member, helpers []*syntax.Member, names map[string]bool, introduced bool) (*syntax.Member, []*syntax.Member) {
	if v.Paired {
		return v.Wrap(w.final, current, lower.IntroducedProceed(w.final, v.Data)), helpers
	}
	if current.Kind == syntax.MemberConstructor {
		return v.Wrap(w.final, current, lower.InlineProceed(current)), helpers
	}
	name := v.HelperName(current.Name, !introduced && len(names) == 0)
	for i := 2; names[name]; i++ {
		name = v.HelperName(current.Name, false) + strconv.Itoa(i)
	}
	names[name] = true
	helpers = append(helpers, lower.Helper(current, name))
	return v.Wrap(w.final, current, lower.HelperProceed(current, name)), helpers
}

// prepend inserts stmts at the start of body, after a leading struct
// zero-initialization.
func prepend(body, stmts []string) []string {
	at := 0
	if len(body) > 0 && body[0] == "this = default;" {
		at = 1
	}
	return slices.Insert(slices.Clone(body), at, stmts...)
}
