// Package pipeline runs aspects over a base compilation. Advices run one at
// a time; each successful introduction is folded into the working snapshot
// before the next advice starts, and the collected transformations are
// lowered once at the end.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"weave/internal/builder"
	"weave/internal/diag"
	"weave/internal/emit"
	"weave/internal/model"
	"weave/internal/observ"
	"weave/internal/refs"
	"weave/internal/syntax"
	"weave/internal/trace"
	"weave/internal/transform"
)

// Options configure one run.
type Options struct {
	LangVersion    int
	Mode           syntax.NullabilityMode
	DesignTime     bool
	MaxDiagnostics int
	Jobs           int
	Header         []string
	// EnableTimings collects per-phase timings into Result.Timer.
	EnableTimings bool
}

// Pipeline is reusable; Run keeps no state between calls.
type Pipeline struct {
	Options  Options
	Progress ProgressSink
}

// Result is everything a run produced. File and Text are nil/empty when
// lowering was not reached.
type Result struct {
	Base            *model.Snapshot
	Final           *model.Snapshot
	Transformations []transform.Transformation
	Outcomes        []Outcome
	Bag             *diag.Bag
	File            *syntax.File
	Text            string
	Timings         Timings
	Timer           *observ.Timer
}

// state is the single writer of a run.
type state struct {
	opts     Options
	snap     *model.Snapshot
	reporter *diag.DedupReporter
	resolver *refs.Resolver
	counter  transform.Counter
	all      []transform.Transformation
	outcomes []Outcome
}

// Run applies aspects in order and lowers the result. It returns an error
// only for cancellation and lowering failures; advice failures become
// diagnostics in Result.Bag.
func (p *Pipeline) Run(ctx context.Context, base *model.Snapshot, aspects []Aspect) (*Result, error) {
	if base == nil {
		return nil, fmt.Errorf("pipeline: nil base snapshot")
	}
	limit := p.Options.MaxDiagnostics
	if limit <= 0 {
		limit = 100
	}
	res := &Result{Base: base, Bag: diag.NewBag(limit)}
	if p.Options.EnableTimings {
		res.Timer = observ.NewTimer()
	}
	begin := func(name string) int {
		if res.Timer == nil {
			return -1
		}
		return res.Timer.Begin(name)
	}
	end := func(idx int, note string) {
		if res.Timer == nil || idx < 0 {
			return
		}
		res.Timer.End(idx, note)
	}

	st := &state{
		opts:     p.Options,
		snap:     base,
		reporter: diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag}),
		resolver: refs.NewResolver(),
	}

	names := make([]string, len(aspects))
	for i, a := range aspects {
		names[i] = a.Name
	}
	emitQueued(p.Progress, names)

	adviseCtx, pass := trace.Start(ctx, trace.ScopePass, "advise")
	idx := begin("advise")
	started := time.Now()
	for i := range aspects {
		if err := ctx.Err(); err != nil {
			pass.End("cancelled")
			end(idx, "cancelled")
			return nil, err
		}
		p.runAspect(adviseCtx, st, &aspects[i], i+1, res)
	}
	res.Timings.Add(StageAdvise, time.Since(started))
	pass.Count("aspects", len(aspects)).
		Count("transformations", len(st.all)).
		Count("duplicates", st.reporter.Suppressed()).
		End("")
	end(idx, fmt.Sprintf("%d transformations", len(st.all)))

	res.Final = st.snap
	res.Transformations = st.all
	res.Outcomes = st.outcomes

	lowerCtx, pass := trace.Start(ctx, trace.ScopePass, "lower")
	idx = begin("lower")
	started = time.Now()
	notify(p.Progress, Event{Stage: StageLower, Status: StatusWorking})
	em := &emit.Emitter{Base: base, Final: st.snap, Options: emit.Options{
		Header:      p.Options.Header,
		Mode:        p.Options.Mode,
		LangVersion: p.Options.LangVersion,
		DesignTime:  p.Options.DesignTime,
		Jobs:        p.Options.Jobs,
	}}
	file, err := em.Emit(lowerCtx, st.all)
	elapsed := time.Since(started)
	res.Timings.Add(StageLower, elapsed)
	end(idx, "")
	if err != nil {
		pass.End("error")
		notify(p.Progress, Event{Stage: StageLower, Status: StatusError, Err: err, Elapsed: elapsed})
		return res, err
	}
	pass.End("")
	notify(p.Progress, Event{Stage: StageLower, Status: StatusDone, Elapsed: elapsed})
	res.File = file

	_, pass = trace.Start(ctx, trace.ScopePass, "print")
	idx = begin("print")
	started = time.Now()
	res.Text = syntax.Print(file)
	res.Timings.Add(StagePrint, time.Since(started))
	end(idx, fmt.Sprintf("%d bytes", len(res.Text)))
	pass.End("")

	res.Bag.Sort()
	return res, nil
}

func (p *Pipeline) runAspect(ctx context.Context, st *state, a *Aspect, layer int, res *Result) {
	ctx, span := trace.StartAspect(ctx, a.Name, layer)
	notify(p.Progress, Event{Unit: a.Name, Layer: layer, Stage: StageAdvise, Status: StatusWorking})
	started := time.Now()
	before := len(st.all)

	var firstErr error
	for i := range a.Advices {
		adv := &a.Advices[i]
		if err := p.runAdvice(ctx, st, a.Name, layer, adv); err != nil {
			diag.Errorf(st.reporter, diag.AdvAdviceFailed, adv.Site, adv.Name, a.Name, err).Emit()
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	elapsed := time.Since(started)
	span.Count("advices", len(a.Advices)).Count("transformations", len(st.all)-before)
	if firstErr != nil {
		span.Fail(firstErr)
	} else {
		span.End("")
	}
	if firstErr != nil {
		notify(p.Progress, Event{Unit: a.Name, Layer: layer, Stage: StageAdvise, Status: StatusError, Err: firstErr, Elapsed: elapsed})
		return
	}
	notify(p.Progress, Event{Unit: a.Name, Layer: layer, Stage: StageAdvise, Status: StatusDone, Elapsed: elapsed})
}

// runAdvice runs one advice. A returned error is reported and the run moves
// on; panics are invariant violations and propagate to the caller.
func (p *Pipeline) runAdvice(ctx context.Context, st *state, aspect string, layer int, adv *Advice) (err error) {
	ctx, span := trace.Start(ctx, trace.ScopeAdvice, adv.Name)
	before := len(st.all)
	defer func() {
		if err != nil {
			span.Fail(err)
			return
		}
		span.Count("transformations", len(st.all)-before).End("")
	}()
	if adv.Run == nil {
		return nil
	}
	ac := &AdviceContext{
		ctx:    ctx,
		state:  st,
		aspect: aspect,
		layer:  layer,
		advice: adv,
		factory: &builder.Factory{
			Types:  st.snap.Interner(),
			Alloc:  st.snap,
			Aspect: aspect,
			Layer:  layer,
		},
	}
	return adv.Run(ac)
}
