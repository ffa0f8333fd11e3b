package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"weave/internal/model"
	"weave/internal/pipeline"
	"weave/internal/ui"
)

type runOutcome struct {
	result *pipeline.Result
	err    error
}

// runWithUI runs p in the background and renders its progress events until
// the run finishes.
func runWithUI(ctx context.Context, title string, p pipeline.Pipeline, base *model.Snapshot, aspects []pipeline.Aspect) (*pipeline.Result, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	units := make([]string, len(aspects))
	for i, a := range aspects {
		units[i] = a.Name
	}

	go func() {
		p.Progress = pipeline.ChannelSink{Ch: events}
		res, err := p.Run(ctx, base, aspects)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, units, events), tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// интерфейс мог выйти раньше (ctrl+c) - дочитываем события, чтобы не заблокировать пайплайн
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
