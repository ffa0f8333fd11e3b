package main

import (
	"fmt"
	"io"
	"time"

	"weave/internal/observ"
	"weave/internal/pipeline"
)

func printStageTimings(out io.Writer, timings pipeline.Timings, timer *observ.Timer, loaded time.Duration) error {
	if out == nil {
		return nil
	}
	if loaded > 0 {
		if _, err := fmt.Fprintf(out, "loaded %.1f ms\n", toMillis(loaded)); err != nil {
			return err
		}
	}
	if timings.Has(pipeline.StageAdvise) {
		if _, err := fmt.Fprintf(out, "advised %.1f ms\n", toMillis(timings.Duration(pipeline.StageAdvise))); err != nil {
			return err
		}
	}
	if timings.Has(pipeline.StageLower) || timings.Has(pipeline.StagePrint) {
		lowered := timings.Sum(pipeline.StageLower, pipeline.StagePrint)
		if _, err := fmt.Fprintf(out, "lowered %.1f ms\n", toMillis(lowered)); err != nil {
			return err
		}
	}
	if timer != nil {
		if _, err := io.WriteString(out, timer.Summary()); err != nil {
			return err
		}
	}
	return nil
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
