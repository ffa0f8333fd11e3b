package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewOffReturnsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.Enabled() {
		t.Fatalf("off tracer must be disabled")
	}
	span := Begin(tr, ScopeDriver, "apply", 0)
	if span.ID() != 0 || span.Count("n", 1).End("") != 0 {
		t.Fatalf("nop span should be inert")
	}
}

func TestStreamTracerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	ctx := WithTracer(context.Background(), tr)
	ctx, pass := Start(ctx, ScopePass, "advise")
	actx, aspect := StartAspect(ctx, "Logging", 1)
	_, advice := Start(actx, ScopeAdvice, "wrap-run")
	advice.End("")
	aspect.Count("transformations", 2).End("ok")
	pass.End("")

	out := buf.String()
	if !strings.Contains(out, "→ advise") || !strings.Contains(out, "← Logging (ok) {transformations=2}") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "wrap-run") {
		t.Fatalf("advice scope must be filtered at detail level:\n%s", out)
	}
	if aspect.parent != pass.ID() {
		t.Fatalf("aspect span parent = %d, want %d", aspect.parent, pass.ID())
	}
}

func TestAdviceSpansCarryAspect(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatText)
	ctx := WithTracer(context.Background(), tr)

	ctx, aspect := StartAspect(ctx, "Inject", 3)
	_, call := Start(ctx, ScopeAdvice, "param")
	if d := call.Fail(errors.New("boom")); d < 0 {
		t.Fatalf("negative duration")
	}
	call.End("twice") // already ended
	aspect.End("")

	out := buf.String()
	if !strings.Contains(out, "← param [Inject@3] !boom") {
		t.Fatalf("advice end event:\n%s", out)
	}
	if strings.Contains(out, "twice") {
		t.Fatalf("span ended twice:\n%s", out)
	}
}

func TestNDJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeAdvice, "fold", "layer 3", 0)

	var decoded map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if decoded["name"] != "fold" || decoded["scope"] != "advice" || decoded["detail"] != "layer 3" {
		t.Fatalf("decoded = %v", decoded)
	}
}

func TestRingTracerWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelError)
	for _, name := range []string{"a", "b", "c", "d"} {
		Point(ring, ScopeAdvice, name, "", 0)
	}
	events := ring.Snapshot()
	if len(events) != 3 {
		t.Fatalf("len = %d", len(events))
	}
	if events[0].Name != "b" || events[2].Name != "d" {
		t.Fatalf("order = %s %s %s", events[0].Name, events[1].Name, events[2].Name)
	}
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatAuto); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("dump = %q", buf.String())
	}
}

func TestMultiTracerFansOut(t *testing.T) {
	var buf bytes.Buffer
	stream := NewStreamTracer(&buf, LevelPhase, FormatText)
	multi := NewMultiTracer(LevelPhase, stream, NewRingTracer(8, LevelError))

	Point(multi, ScopeAdvice, "deep", "", 0)
	if buf.Len() != 0 {
		t.Fatalf("stream must filter advice scope at phase level")
	}
	if len(multi.Ring().Snapshot()) != 1 {
		t.Fatalf("ring must keep every event")
	}
}

func TestParsers(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "DEBUG"} {
		if _, err := ParseLevel(s); err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Fatalf("expected mode error")
	}
	cases := map[string]Format{"run.ndjson": FormatNDJSON, "run.jsonl": FormatNDJSON, "run.log": FormatText, "-": FormatText}
	for path, want := range cases {
		if got := formatFor(FormatAuto, path); got != want {
			t.Errorf("formatFor(%q) = %d, want %d", path, got, want)
		}
	}
}
