package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"weave/internal/diag"
	"weave/internal/source"
)

func TestPutGet(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	key := Key([]byte("config"), []byte("model"), []byte("plan"))
	if _, ok, err := c.Get(key); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	d := diag.NewError(diag.AdvMemberAlreadyExists, source.Span{File: 2, Start: 10, End: 14}, "conflict").
		WithNote(source.Span{File: 1, Start: 3, End: 5}, "declared here")
	in := &Payload{
		Text:            "// <auto-generated/>\n",
		Diagnostics:     []diag.Diagnostic{d},
		Transformations: 7,
		Created:         time.Unix(1700000000, 0).UTC(),
	}
	if err := c.Put(key, in); err != nil {
		t.Fatalf("Put: %v", err)
	}
	out, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if out.Text != in.Text || out.Transformations != 7 || !out.Created.Equal(in.Created) {
		t.Fatalf("payload mismatch: %+v", out)
	}
	got := out.Diagnostics[0]
	if got.Code != d.Code || got.Primary != d.Primary || len(got.Notes) != 1 || got.Notes[0].Span != d.Notes[0].Span {
		t.Fatalf("diagnostic mismatch: %+v", got)
	}

	entries, err := filepath.Glob(filepath.Join(c.Dir(), "runs", "*", "tmp-*"))
	if err != nil || len(entries) != 0 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestKeyDependsOnEveryPart(t *testing.T) {
	base := Key([]byte("a"), []byte("b"))
	for _, other := range [][][]byte{
		{[]byte("a"), []byte("c")},
		{[]byte("b"), []byte("a")},
		{[]byte("ab")},
	} {
		if Key(other...) == base {
			t.Fatalf("key collision for %q", other)
		}
	}
	if Key([]byte("a"), []byte("b")) != base {
		t.Fatalf("key is not deterministic")
	}
}

func TestCorruptEntryIsError(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := Key([]byte("x"))
	if err := c.Put(key, &Payload{Text: "x"}); err != nil {
		t.Fatal(err)
	}
	// повреждённая запись - ошибка, а не промах
	if err := os.WriteFile(c.pathFor(key), []byte{0xc1}, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(key); ok || err == nil {
		t.Fatalf("corrupt entry: ok=%v err=%v", ok, err)
	}
}

func TestDropAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	key := Key([]byte("x"))
	if err := c.Put(key, &Payload{Text: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, ok, _ := c.Get(key); ok {
		t.Fatalf("entry survived DropAll")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("cache dir must exist after DropAll: %v", err)
	}
}
