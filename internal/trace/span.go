package trace

import (
	"strconv"
	"sync/atomic"
	"time"
)

var (
	seqs  atomic.Uint64
	spans atomic.Uint64
)

// NextSeq returns the next global sequence number.
func NextSeq() uint64 { return seqs.Add(1) }

// Span is an open begin/end pair. A span from a disabled tracer is inert:
// every method is a no-op and ID is 0.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	aspect  string
	layer   int
	started time.Time
	attrs   []Attr
}

// Begin emits the begin event of a new span under parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return open(t, scope, name, parent, "", 0)
}

func open(t Tracer, scope Scope, name string, parent uint64, aspect string, layer int) *Span {
	if !emits(t, scope) {
		return &Span{}
	}
	s := &Span{
		tracer:  t,
		id:      spans.Add(1),
		parent:  parent,
		scope:   scope,
		name:    name,
		aspect:  aspect,
		layer:   layer,
		started: time.Now(),
	}
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

// Point emits an instant event.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if !emits(t, scope) {
		return
	}
	t.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: scope, Parent: parent, Name: name, Detail: detail})
}

func emits(t Tracer, scope Scope) bool {
	return t != nil && t.Enabled() && t.Level().ShouldEmit(scope)
}

func (s *Span) live() bool { return s != nil && s.tracer != nil }

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	return &Event{
		Time:   at,
		Kind:   kind,
		Scope:  s.scope,
		Span:   s.id,
		Parent: s.parent,
		Name:   s.name,
		Detail: detail,
		Aspect: s.aspect,
		Layer:  s.layer,
	}
}

// Attr attaches a key/value pair to the end event.
func (s *Span) Attr(key, value string) *Span {
	if s.live() {
		s.attrs = append(s.attrs, Attr{Key: key, Value: value})
	}
	return s
}

// Count is Attr for integer values.
func (s *Span) Count(key string, n int) *Span { return s.Attr(key, strconv.Itoa(n)) }

// End emits the end event and returns the span duration.
func (s *Span) End(detail string) time.Duration { return s.finish(detail, nil) }

// Fail ends the span recording err.
func (s *Span) Fail(err error) time.Duration { return s.finish("", err) }

func (s *Span) finish(detail string, err error) time.Duration {
	if !s.live() {
		return 0
	}
	now := time.Now()
	ev := s.event(KindSpanEnd, now, detail)
	ev.Attrs = s.attrs
	if err != nil {
		ev.Err = err.Error()
	}
	s.tracer.Emit(ev)
	s.tracer = nil
	return now.Sub(s.started)
}

// ID returns the span id, 0 for inert spans.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}
