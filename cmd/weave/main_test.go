package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"weave/internal/diagfmt"
	"weave/internal/project"
)

const testModel = `
[[type]]
name = "App.C"
access = "public"

  [[type.constructor]]
  access = "public"
  params = [{ name = "a", type = "int" }]

  [[type.constructor]]
  access = "public"
  initializer = "this"
  args = ["1"]
`

const testPlan = `
[[aspect]]
name = "Inject"

  [[aspect.advice]]
  name = "wrap-c"
  kind = "override"
  target = "App.C.C(int)"
  template = ["Init();", "meta.Proceed();"]

  [[aspect.advice]]
  name = "param"
  kind = "parameter"
  target = "App.C.C(int)"
  member = "log"
  type = "string?"
  init = "null"
  pull = "append"
`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"model.toml": testModel,
		"plan.toml":  testPlan,
		project.ConfigName: `
[project]
model = "model.toml"
plan = "plan.toml"

[cache]
enabled = true
dir = "cache"
`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// resetFlags returns every flag to its default; cobra keeps values between
// Execute calls on the same command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestApplyUsesAndFillsCache(t *testing.T) {
	dir := writeProject(t)
	cfg := filepath.Join(dir, project.ConfigName)

	first, stderr, err := execute(t, "--config", cfg, "--ui", "off", "apply")
	if err != nil {
		t.Fatalf("apply: %v\n%s", err, stderr)
	}
	for _, want := range []string{"public C(int a, string? log = null)", "public C(string? log = null) : this(1, log)", "Init();"} {
		if !strings.Contains(first, want) {
			t.Fatalf("output lacks %q:\n%s", want, first)
		}
	}
	entries, _ := filepath.Glob(filepath.Join(dir, "cache", "runs", "*", "*.mp"))
	if len(entries) != 1 {
		t.Fatalf("expected one cache entry, got %v", entries)
	}

	second, stderr, err := execute(t, "--config", cfg, "--ui", "off", "apply")
	if err != nil {
		t.Fatalf("cached apply: %v\n%s", err, stderr)
	}
	if second != first {
		t.Fatalf("cached output differs:\n%s\n---\n%s", first, second)
	}
}

func TestInspectListsDeclarations(t *testing.T) {
	dir := writeProject(t)
	out, stderr, err := execute(t, "--config", filepath.Join(dir, project.ConfigName), "--color", "off", "inspect", "--format", "pretty")
	if err != nil {
		t.Fatalf("inspect: %v\n%s", err, stderr)
	}
	for _, want := range []string{"namespace", "App.C", "constructor", "App.C.C(int)", "aspect order:", "1. Inject"} {
		if !strings.Contains(out, want) {
			t.Fatalf("inspect output lacks %q:\n%s", want, out)
		}
	}
}

func TestReadUIMode(t *testing.T) {
	cases := map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff}
	for in, want := range cases {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Error("invalid mode accepted")
	}
	if shouldUseTUI(uiModeOff) || !shouldUseTUI(uiModeOn) {
		t.Error("explicit modes ignored")
	}
}

func TestInputPaths(t *testing.T) {
	cfg := project.DefaultConfig()
	cfg.Project.Model, cfg.Project.Plan = "m.toml", "p.toml"

	cases := []struct {
		name      string
		cfg       project.Config
		args      []string
		needPlan  bool
		wantModel string
		wantPlan  string
		wantErr   bool
	}{
		{"from config", cfg, nil, true, "m.toml", "p.toml", false},
		{"args win", cfg, []string{"a.toml", "b.toml"}, true, "a.toml", "b.toml", false},
		{"model only", cfg, []string{"a.toml"}, true, "a.toml", "p.toml", false},
		{"missing model", project.DefaultConfig(), nil, false, "", "", true},
		{"missing plan", project.DefaultConfig(), []string{"a.toml"}, true, "", "", true},
		{"plan optional", project.DefaultConfig(), []string{"a.toml"}, false, "a.toml", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, p, err := inputPaths(tc.cfg, tc.args, tc.needPlan)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v", err)
			}
			if !tc.wantErr && (m != tc.wantModel || p != tc.wantPlan) {
				t.Fatalf("paths = %q, %q", m, p)
			}
		})
	}
}

func TestConfigFingerprintIgnoresPaths(t *testing.T) {
	a := project.DefaultConfig()
	b := project.DefaultConfig()
	b.Path = "/elsewhere/weave.toml"
	b.Project.Model = "/elsewhere/model.toml"
	b.Cache.Dir = "/tmp/other"

	fa, err := configFingerprint(a)
	if err != nil {
		t.Fatal(err)
	}
	fb, err := configFingerprint(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(fa, fb) {
		t.Fatalf("fingerprints differ:\n%s\n%s", fa, fb)
	}

	b.Engine.DesignTime = true
	fc, _ := configFingerprint(b)
	if bytes.Equal(fa, fc) {
		t.Fatal("engine options must change the fingerprint")
	}
}

func TestReadOutputFormat(t *testing.T) {
	for _, in := range []string{"", "pretty", "JSON", "sarif"} {
		if _, err := readOutputFormat(in); err != nil {
			t.Errorf("readOutputFormat(%q): %v", in, err)
		}
	}
	if _, err := readOutputFormat("xml"); err == nil {
		t.Error("xml accepted")
	}
}

func TestApplyJSONCarriesTimings(t *testing.T) {
	dir := writeProject(t)
	cfg := filepath.Join(dir, project.ConfigName)

	_, stderr, err := execute(t, "--config", cfg, "--ui", "off", "--no-cache", "--timings", "apply", "--format", "json")
	if err != nil {
		t.Fatalf("apply: %v\n%s", err, stderr)
	}
	var out diagfmt.DiagnosticsOutput
	if err := json.Unmarshal([]byte(stderr), &out); err != nil {
		t.Fatalf("stderr is not diagnostics json: %v\n%s", err, stderr)
	}
	var timings *diagfmt.DiagnosticJSON
	for i := range out.Diagnostics {
		if out.Diagnostics[i].Code == "OBS3001" {
			timings = &out.Diagnostics[i]
		}
	}
	if timings == nil || len(timings.Notes) == 0 {
		t.Fatalf("no timings diagnostic in %+v", out.Diagnostics)
	}
	if _, err := os.Stat(filepath.Join(dir, "cache")); !os.IsNotExist(err) {
		t.Fatalf("--no-cache still created the cache dir: %v", err)
	}
}

func TestVersionFullJSON(t *testing.T) {
	out, _, err := execute(t, "version", "--full", "--format", "json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var info buildInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if info.Tool != "weave" || info.GoVersion == "" || info.CacheSchema == 0 || info.GitCommit == "" {
		t.Fatalf("info = %+v", info)
	}
	if _, _, err := execute(t, "version", "--format", "yaml"); err == nil {
		t.Fatal("unsupported format accepted")
	}
}
