package trace

import "context"

type (
	tracerKey struct{}
	spanKey   struct{}
)

// FromContext returns the tracer carried by ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// WithTracer attaches t to ctx. A nil t detaches tracing.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// current returns the innermost live span stored in ctx.
func current(ctx context.Context) *Span {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(spanKey{}).(*Span)
	return s
}

// CurrentSpan returns the id of the span stored in ctx, 0 if none.
func CurrentSpan(ctx context.Context) uint64 { return current(ctx).ID() }

// Start opens a child of the span in ctx. The child inherits the aspect
// tag of its parent.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	parent := current(ctx)
	var (
		aspect string
		layer  int
	)
	if parent != nil {
		aspect, layer = parent.aspect, parent.layer
	}
	return attach(ctx, open(FromContext(ctx), scope, name, parent.ID(), aspect, layer))
}

// StartAspect opens the span of the aspect running at layer. Events of
// nested spans carry the same tag.
func StartAspect(ctx context.Context, name string, layer int) (context.Context, *Span) {
	return attach(ctx, open(FromContext(ctx), ScopeAspect, name, CurrentSpan(ctx), name, layer))
}

func attach(ctx context.Context, s *Span) (context.Context, *Span) {
	if s.ID() == 0 {
		return ctx, s
	}
	return context.WithValue(ctx, spanKey{}, s), s
}
