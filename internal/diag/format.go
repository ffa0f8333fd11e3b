package diag

import (
	"fmt"
	"sort"
	"strings"

	"weave/internal/source"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Where    string
	Message  string
}

// FormatShort renders diagnostics into a stable, single-line-per-entry
// representation: "<SEV> <ID> <path:line:col> <message>". Notes are rendered
// as indented follow-up lines when includeNotes is set.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	rendered := make([]shortDiagnostic, 0, len(diags))
	notes := make(map[int][]string)
	for i := range diags {
		d := &diags[i]
		rendered = append(rendered, shortDiagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Where:    position(fs, d.Primary),
			Message:  d.Message,
		})
		if includeNotes {
			for _, n := range d.Notes {
				notes[len(rendered)-1] = append(notes[len(rendered)-1], fmt.Sprintf("  note %s %s", position(fs, n.Span), n.Msg))
			}
		}
	}

	order := make([]int, len(rendered))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		di, dj := rendered[order[a]], rendered[order[b]]
		if di.Where != dj.Where {
			return di.Where < dj.Where
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	lines := make([]string, 0, len(rendered))
	for _, idx := range order {
		d := rendered[idx]
		lines = append(lines, fmt.Sprintf("%s %s %s %s", d.Severity, d.Code, d.Where, d.Message))
		lines = append(lines, notes[idx]...)
	}
	return strings.Join(lines, "\n")
}

func position(fs *source.FileSet, sp source.Span) string {
	if fs == nil {
		return "<generated>"
	}
	return fs.Position(sp)
}
