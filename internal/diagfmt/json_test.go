package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"weave/internal/diag"
	"weave/internal/source"
)

const planText = `[[aspect]]
name = "Logging"

[[aspect.advice]]
name = "log"
target = "App.Missing"
`

func planFixture(t *testing.T) (*source.FileSet, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("weave.plan.toml", []byte(planText))
	f := fs.Get(id)
	target, ok := f.Find(`"App.Missing"`, 0)
	if !ok {
		t.Fatal("fixture target not found")
	}
	aspect, _ := f.Find(`"Logging"`, 0)

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.PrjUnknownTarget, target, "the advice 'log' references 'App.Missing' which does not exist").
		WithNote(aspect, "in aspect 'Logging'"))
	bag.Add(diag.New(diag.SevWarning, diag.AdvMemberIgnored, source.Span{}, "member 'Foo' already exists and was ignored"))
	return fs, bag
}

func TestJSONBasic(t *testing.T) {
	fs, bag := planFixture(t)

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, buf.String())
	}
	if output.Count != 2 || output.Truncated != 0 {
		t.Fatalf("count=%d truncated=%d", output.Count, output.Truncated)
	}

	d := output.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "PRJ2004" {
		t.Errorf("severity/code = %s/%s", d.Severity, d.Code)
	}
	if d.Location.File != "weave.plan.toml" || d.Location.StartLine != 6 || d.Location.StartCol != 10 {
		t.Errorf("location = %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location.StartLine != 2 {
		t.Errorf("notes = %+v", d.Notes)
	}

	gen := output.Diagnostics[1]
	if gen.Location.File != "<generated>" || gen.Location.StartLine != 0 {
		t.Errorf("generated location = %+v", gen.Location)
	}
}

func TestJSONOptions(t *testing.T) {
	cases := []struct {
		name      string
		opts      JSONOpts
		count     int
		truncated int
		notes     bool
		positions bool
	}{
		{"defaults", JSONOpts{}, 2, 0, false, false},
		{"max", JSONOpts{Max: 1}, 1, 1, false, false},
		{"notes and positions", JSONOpts{IncludeNotes: true, IncludePositions: true}, 2, 0, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fs, bag := planFixture(t)
			out := BuildDiagnosticsOutput(bag, fs, tc.opts)
			if out.Count != tc.count || out.Truncated != tc.truncated {
				t.Fatalf("count=%d truncated=%d", out.Count, out.Truncated)
			}
			first := out.Diagnostics[0]
			if got := len(first.Notes) > 0; got != tc.notes {
				t.Errorf("notes present = %v, want %v", got, tc.notes)
			}
			if got := first.Location.StartLine > 0; got != tc.positions {
				t.Errorf("positions present = %v, want %v", got, tc.positions)
			}
		})
	}
}

func TestParsePathMode(t *testing.T) {
	for in, want := range map[string]PathMode{
		"":         PathModeAuto,
		"auto":     PathModeAuto,
		"absolute": PathModeAbsolute,
		"relative": PathModeRelative,
		"basename": PathModeBasename,
	} {
		got, ok := ParsePathMode(in)
		if !ok || got != want {
			t.Errorf("ParsePathMode(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := ParsePathMode("weird"); ok {
		t.Error("unknown mode accepted")
	}
}
