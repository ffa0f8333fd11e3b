// Package lower turns frozen builder data and source declarations into syntax.
package lower

import (
	"strings"

	"weave/internal/builder"
	"weave/internal/model"
	"weave/internal/syntax"
)

// Context is the member injection context: the snapshot being lowered
// against plus the syntax generation service.
type Context struct {
	Snapshot    *model.Snapshot
	Gen         syntax.Generator
	LangVersion int
}

// NewContext binds a generator to snap.
func NewContext(snap *model.Snapshot, mode syntax.NullabilityMode, langVersion int) *Context {
	return &Context{
		Snapshot:    snap,
		Gen:         syntax.Generator{Types: snap.Interner(), Values: snap, Mode: mode},
		LangVersion: langVersion,
	}
}

// StructDefaultsRequired reports whether struct constructors must assign
// every field explicitly. Zero means the latest language version.
func (c *Context) StructDefaultsRequired() bool {
	return c.LangVersion > 0 && c.LangVersion < 11
}

// IsStruct reports whether t is a struct.
func (c *Context) IsStruct(t model.Ref) bool {
	d := c.Snapshot.Get(t)
	return d != nil && d.Kind == model.DeclType && d.TypeKind == model.TypeStruct
}

// SourceName is the name an overridden same-type member is moved to.
func SourceName(name string) string { return name + "_Source" }

// Substitute replaces the proceed placeholder in template lines with expr.
// With an empty expr, statements consisting only of the placeholder are dropped.
func Substitute(lines []string, expr string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if !strings.Contains(line, builder.Proceed) {
			out = append(out, line)
			continue
		}
		if expr == "" {
			switch strings.TrimSpace(line) {
			case builder.Proceed + ";", "return " + builder.Proceed + ";":
				continue
			}
			out = append(out, strings.ReplaceAll(line, builder.Proceed, "default"))
			continue
		}
		out = append(out, strings.ReplaceAll(line, builder.Proceed, expr))
	}
	return out
}

// Inline splices body in place of a standalone "meta.Proceed();" statement,
// keeping the placeholder's indentation. Other occurrences are left as is.
func Inline(lines, body []string) []string {
	out := make([]string, 0, len(lines)+len(body))
	for _, line := range lines {
		if strings.TrimSpace(line) != builder.Proceed+";" {
			out = append(out, line)
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		for _, b := range body {
			out = append(out, indent+b)
		}
	}
	return out
}

func call(receiver, name string, args []string) string {
	return receiver + "." + name + "(" + strings.Join(args, ", ") + ")"
}

func proceedTemplate(lines []string, returnsValue bool) []string {
	if len(lines) > 0 {
		return lines
	}
	if returnsValue {
		return []string{"return " + builder.Proceed + ";"}
	}
	return []string{builder.Proceed + ";"}
}

func joinArgs(args []string) string { return strings.Join(args, ", ") }
