package diag

import (
	"cmp"
	"slices"
)

// Bag collects diagnostics of one run up to an optional limit.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

// NewBag keeps at most max diagnostics; max <= 0 means no limit.
func NewBag(max int) *Bag {
	hint := 16
	if max > 0 && max < 256 {
		hint = max
	}
	return &Bag{items: make([]Diagnostic, 0, hint), max: max}
}

// Add stores d unless the bag is full. Rejected diagnostics are counted.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Dropped returns how many diagnostics Add rejected.
func (b *Bag) Dropped() int { return b.dropped }

func (b *Bag) HasErrors() bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity.AtLeast(SevError) })
}

// Count returns the number of diagnostics with code.
func (b *Bag) Count(code Code) int {
	n := 0
	for i := range b.items {
		if b.items[i].Code == code {
			n++
		}
	}
	return n
}

func (b *Bag) Len() int { return len(b.items) }

// Items returns the stored diagnostics. Callers must not modify the slice.
func (b *Bag) Items() []Diagnostic { return b.items }

// Merge appends everything from other; the limit grows to fit.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if n := len(b.items) + len(other.items); b.max > 0 && n > b.max {
		b.max = n
	}
	b.items = append(b.items, other.items...)
	b.dropped += other.dropped
}

// Sort orders by file, start, end, then severity (worst first) and code.
// Diagnostics without a location keep their relative order at the front.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}
