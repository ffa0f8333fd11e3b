package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"weave/internal/diag"
	"weave/internal/diagfmt"
	"weave/internal/source"
	"weave/internal/version"
)

var errDiagnostics = errors.New("errors were reported")

type outputFormat string

const (
	formatPretty outputFormat = "pretty"
	formatJSON   outputFormat = "json"
	formatSarif  outputFormat = "sarif"
)

func readOutputFormat(value string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(value))); f {
	case "":
		return formatPretty, nil
	case formatPretty, formatJSON, formatSarif:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q (must be pretty, json or sarif)", value)
}

// diagOptions are the rendering flags shared by the commands.
type diagOptions struct {
	format   outputFormat
	pathMode diagfmt.PathMode
	color    bool
	notes    bool
	baseDir  string
	args     []string
}

func newDiagOptions(formatValue, pathValue, colorValue string, notes bool, args []string) (diagOptions, error) {
	format, err := readOutputFormat(formatValue)
	if err != nil {
		return diagOptions{}, err
	}
	pathMode, ok := diagfmt.ParsePathMode(pathValue)
	if !ok {
		return diagOptions{}, fmt.Errorf("invalid --path-mode %q (expected auto|absolute|relative|basename)", pathValue)
	}
	colored, err := useColor(colorValue, os.Stderr)
	if err != nil {
		return diagOptions{}, err
	}
	wd, err := os.Getwd()
	if err != nil {
		return diagOptions{}, err
	}
	return diagOptions{
		format:   format,
		pathMode: pathMode,
		color:    colored && format == formatPretty,
		notes:    notes,
		baseDir:  filepath.Clean(wd),
		args:     args,
	}, nil
}

func renderDiagnostics(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts diagOptions) error {
	switch opts.format {
	case formatJSON:
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         opts.pathMode,
			BaseDir:          opts.baseDir,
			IncludeNotes:     opts.notes,
		})
	case formatSarif:
		return diagfmt.Sarif(w, bag, fs, diagfmt.SarifRunMeta{
			ToolName:       "weave",
			ToolVersion:    version.Short(),
			InvocationArgs: opts.args,
			BaseDir:        opts.baseDir,
		})
	default:
		if bag.Len() == 0 {
			return nil
		}
		if err := diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:     opts.color,
			Context:   0,
			PathMode:  opts.pathMode,
			BaseDir:   opts.baseDir,
			ShowNotes: opts.notes,
		}); err != nil {
			return err
		}
		if n := bag.Dropped(); n > 0 {
			_, err := fmt.Fprintf(w, "... %d more diagnostic(s) over the limit\n", n)
			return err
		}
		return nil
	}
}
