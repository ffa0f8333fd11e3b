package types

import (
	"sync"
	"testing"
)

func TestInternerStableIDs(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Int == NoTypeID || b.Int == b.Long {
		t.Fatalf("builtins not distinct: %+v", b)
	}
	if got := in.Intern(Type{Kind: KindInt}); got != b.Int {
		t.Fatalf("re-interning int gave %d, want %d", got, b.Int)
	}
	a1 := in.Named("App.Item")
	a2 := in.Named("App.Item")
	if a1 != a2 {
		t.Fatalf("named types not deduplicated")
	}
	if in.Intern(Type{}) != NoTypeID {
		t.Fatalf("invalid descriptor must map to NoTypeID")
	}
}

func TestParseAndDisplay(t *testing.T) {
	in := NewInterner()
	cases := []string{
		"int",
		"string?",
		"App.Item[]",
		"App.Item[]?",
		"int?[]",
		"EventHandler",
	}
	for _, tc := range cases {
		id, err := in.Parse(tc)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc, err)
		}
		if got := in.Display(id); got != tc {
			t.Fatalf("Display(Parse(%q)) = %q", tc, got)
		}
	}
	for _, bad := range []string{"", "1abc", "a..b", "a b"} {
		if _, err := in.Parse(bad); err == nil {
			t.Fatalf("Parse(%q) should fail", bad)
		}
	}
}

func TestNullableHelpers(t *testing.T) {
	in := NewInterner()
	s := in.Builtins().String
	ns := in.NullableOf(s)
	if in.NullableOf(ns) != ns {
		t.Fatalf("double nullable annotation should collapse")
	}
	if in.StripNullable(ns) != s {
		t.Fatalf("StripNullable failed")
	}
	if !in.IsValueKeyword(in.Builtins().Int) || in.IsValueKeyword(s) {
		t.Fatalf("IsValueKeyword misclassified")
	}
}

func TestConcurrentIntern(t *testing.T) {
	in := NewInterner()
	var wg sync.WaitGroup
	ids := make([]TypeID, 16)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = in.Named("Shared")
		}(i)
	}
	wg.Wait()
	for _, id := range ids[1:] {
		if id != ids[0] {
			t.Fatalf("concurrent interning produced different ids")
		}
	}
}
