package pipeline

import "time"

// Stage is a pipeline phase as shown to progress consumers.
type Stage string

const (
	StageLoad   Stage = "load"
	StageAdvise Stage = "advise" // one aspect at a time
	StageLower  Stage = "lower"
	StagePrint  Stage = "print"
)

// Status is where a unit is within its stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event is a progress report. Unit names the aspect; it is empty for
// stages that cover the whole run. Layer is set for aspect events.
type Event struct {
	Unit    string
	Layer   int
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink receives events on the goroutine running the pipeline.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings accumulates wall time per stage in the order stages first ran.
type Timings struct {
	order []Stage
	dur   []time.Duration
}

func (t *Timings) index(stage Stage) int {
	for i, s := range t.order {
		if s == stage {
			return i
		}
	}
	return -1
}

// Add charges d to stage.
func (t *Timings) Add(stage Stage, d time.Duration) {
	if t == nil {
		return
	}
	if i := t.index(stage); i >= 0 {
		t.dur[i] += d
		return
	}
	t.order = append(t.order, stage)
	t.dur = append(t.dur, d)
}

// Has reports whether stage ran.
func (t Timings) Has(stage Stage) bool { return t.index(stage) >= 0 }

// Duration returns the time charged to stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if i := t.index(stage); i >= 0 {
		return t.dur[i]
	}
	return 0
}

// Sum adds up the given stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	var total time.Duration
	for _, s := range stages {
		total += t.Duration(s)
	}
	return total
}

// Stages lists the stages that ran, in order.
func (t Timings) Stages() []Stage { return append([]Stage(nil), t.order...) }
