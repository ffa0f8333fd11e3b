package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"weave/internal/project"
	"weave/internal/trace"
)

// setupTracing combines the [trace] section of cfg with the trace flags and
// attaches the tracer to the command context. The returned cleanup flushes
// the tracer; when the run failed, events held in a ring buffer are dumped
// to stderr.
func setupTracing(cmd *cobra.Command, cfg project.Config) (func(failed bool), error) {
	flags := cmd.Root().PersistentFlags()

	if v, err := flags.GetString("trace"); err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	} else if v != "" {
		cfg.Trace.Output = v
		// указан файл - значит трассировка нужна, даже если уровень не задан
		if cfg.Trace.Level == "off" {
			cfg.Trace.Level = "phase"
		}
	}
	if v, err := flags.GetString("trace-level"); err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	} else if v != "" {
		cfg.Trace.Level = v
	}
	if v, err := flags.GetString("trace-mode"); err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	} else if v != "" {
		cfg.Trace.Mode = v
	}

	tcfg, err := cfg.TraceConfig()
	if err != nil {
		return nil, err
	}
	if tcfg.Level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func(bool) {}, nil
	}

	tracer, err := trace.New(tcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	cleanup := func(failed bool) {
		if ring := ringOf(tracer); failed && ring != nil {
			if err := ring.Dump(cmd.ErrOrStderr(), tcfg.Format); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

func ringOf(t trace.Tracer) *trace.RingTracer {
	switch t := t.(type) {
	case *trace.RingTracer:
		return t
	case *trace.MultiTracer:
		return t.Ring()
	}
	return nil
}
