package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the most recent events in memory. It records every
// scope regardless of level so a failure dump shows the advice calls that
// led to it.
type RingTracer struct {
	mu    sync.Mutex
	buf   []Event
	start int
	n     int
	level Level
}

// NewRingTracer keeps up to size events.
func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = defaultRingSize
	}
	return &RingTracer{buf: make([]Event, size), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if ev == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	e := *ev
	e.Seq = NextSeq()
	if t.n < len(t.buf) {
		t.buf[(t.start+t.n)%len(t.buf)] = e
		t.n++
		return
	}
	// полный буфер: затираем самое старое событие
	t.buf[t.start] = e
	t.start = (t.start + 1) % len(t.buf)
}

// Snapshot returns the kept events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, t.n)
	for i := range out {
		out[i] = t.buf[(t.start+i)%len(t.buf)]
	}
	return out
}

// Dump writes the kept events to w.
func (t *RingTracer) Dump(w io.Writer, f Format) error {
	if f == FormatAuto {
		f = FormatText
	}
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, f)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }
func (t *RingTracer) Close() error { return nil }

// Level reports LevelDebug once enabled: the ring accepts every scope.
func (t *RingTracer) Level() Level {
	if t.level == LevelOff {
		return LevelOff
	}
	return LevelDebug
}

func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
