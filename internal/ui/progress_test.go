package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"weave/internal/pipeline"
)

func TestApplyEventTracksAspects(t *testing.T) {
	m := NewProgressModel("weave", []string{"Logging", "Caching"}, nil).(*progressModel)
	if m.rows[1].layer != 2 || m.rows[1].status != pipeline.StatusQueued {
		t.Fatalf("announced row = %+v", m.rows[1])
	}

	m.applyEvent(pipeline.Event{Unit: "Logging", Layer: 1, Stage: pipeline.StageAdvise, Status: pipeline.StatusWorking})
	if p := m.percent(); p <= 0 || p >= 0.8 {
		t.Fatalf("percent = %v", p)
	}

	m.applyEvent(pipeline.Event{Unit: "Caching", Layer: 2, Stage: pipeline.StageAdvise, Status: pipeline.StatusError, Err: errors.New("boom")})
	if m.failed != 1 || m.rows[1].err != "boom" {
		t.Fatalf("error not recorded: %+v", m.rows[1])
	}

	m.applyEvent(pipeline.Event{Unit: "Late", Layer: 3, Stage: pipeline.StageAdvise, Status: pipeline.StatusDone, Elapsed: time.Millisecond})
	if len(m.rows) != 3 || m.rows[2].layer != 3 || m.rows[2].status != pipeline.StatusDone {
		t.Fatalf("unknown aspect not appended: %+v", m.rows)
	}

	m.applyEvent(pipeline.Event{Stage: pipeline.StageLower, Status: pipeline.StatusWorking})
	if m.percent() != 0.8 {
		t.Fatalf("lowering percent = %v", m.percent())
	}

	view := m.View()
	for _, want := range []string{"weave (lowering)", "advising", "Caching: boom", "Late (1ms)", "L3", "1 aspect(s) reported failures"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	long := truncate("a-very-long-aspect-name", 8)
	if !strings.HasSuffix(long, "...") || len(long) > 8 {
		t.Fatalf("truncate long = %q", long)
	}

	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdef", 2, "ab"},
		{"anything", 0, "anything"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
