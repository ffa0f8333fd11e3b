package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"weave/internal/diag"
	"weave/internal/source"
)

type palette struct {
	err, warn, info, note, code, path, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgGreen),
		code:   color.New(color.Bold),
		path:   color.New(color.FgWhite, color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.code, p.path, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	for i, d := range items {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := prettyOne(w, d, fs, opts, p); err != nil {
			return err
		}
	}
	return nil
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s %s: %s\n",
		p.path.Sprint(location(fs, d.Primary, opts)),
		p.severity(d.Severity).Sprint(d.Severity.String()),
		p.code.Sprint(d.Code.ID()),
		d.Message)
	snippet(&b, fs, d.Primary, opts, p, "")

	if opts.ShowNotes || d.Code == diag.ObsTimings {
		for _, n := range d.Notes {
			fmt.Fprintf(&b, "  %s %s: %s\n", p.note.Sprint("note"), location(fs, n.Span, opts), n.Msg)
			snippet(&b, fs, n.Span, opts, p, "  ")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func location(fs *source.FileSet, sp source.Span, opts PrettyOpts) string {
	f := fs.Get(sp.File)
	if f == nil {
		return "<generated>"
	}
	start, _, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", displayPath(f, opts.PathMode, opts.BaseDir), start.Line, start.Col)
}

func snippet(b *strings.Builder, fs *source.FileSet, sp source.Span, opts PrettyOpts, p palette, indent string) {
	f := fs.Get(sp.File)
	if f == nil {
		return
	}
	start, end, ok := fs.Resolve(sp)
	if !ok {
		return
	}
	ctx := uint32(0)
	if opts.Context > 0 {
		ctx = uint32(opts.Context)
	}
	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := start.Line + ctx
	maxLine := uint32(len(f.LineIdx)) + 1 //nolint:gosec // bounded by file size
	if last > maxLine {
		last = maxLine
	}
	gw := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		text := strings.ReplaceAll(f.GetLine(ln), "\t", "    ")
		if opts.Width > 0 {
			text = runewidth.Truncate(text, int(opts.Width), "...")
		}
		fmt.Fprintf(b, "%s%s %s\n", indent, p.gutter.Sprintf("%*d |", gw, ln), text)
		if ln != start.Line {
			continue
		}
		line := f.GetLine(ln)
		col := int(start.Col) - 1
		if col > len(line) {
			col = len(line)
		}
		prefix := runewidth.StringWidth(strings.ReplaceAll(line[:col], "\t", "    "))
		width := 1
		if end.Line == start.Line && end.Col > start.Col {
			stop := int(end.Col) - 1
			if stop > len(line) {
				stop = len(line)
			}
			width = max(runewidth.StringWidth(line[col:stop]), 1)
		}
		marker := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(b, "%s%s %s%s\n", indent, p.gutter.Sprint(strings.Repeat(" ", gw)+" |"), strings.Repeat(" ", prefix), p.caret.Sprint(marker))
	}
}
