package transform

import (
	"fmt"
	"sort"

	"weave/internal/model"
)

// Fold applies observable transformations to snap and commits a new layer.
// Transformations that do not change the model are skipped. The input
// snapshot is not modified.
func Fold(snap *model.Snapshot, label string, ts []Transformation) *model.Snapshot {
	delta := snap.Edit(label)
	for _, t := range ts {
		obs, ok := t.(Observable)
		if !ok || t.Observability() == ObservableNone {
			continue
		}
		obs.Apply(delta)
	}
	return delta.Commit()
}

// Sort orders transformations by (layer, order). The sort is stable.
func Sort(ts []Transformation) {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].Advice().Less(ts[j].Advice()) })
}

// Visible filters out compile-time-only transformations for the design-time view.
func Visible(ts []Transformation, designTime bool) []Transformation {
	if !designTime {
		return ts
	}
	out := make([]Transformation, 0, len(ts))
	for _, t := range ts {
		if t.Observability() != ObservableCompileTimeOnly {
			out = append(out, t)
		}
	}
	return out
}

// Check verifies that every transformation's target resolves in snap.
func Check(snap *model.Snapshot, ts []Transformation) error {
	for _, t := range ts {
		if !t.Target().IsValid() && t.Kind() == KindIntroduceMember {
			continue // global namespace
		}
		if snap.Get(t.Target()) == nil {
			return fmt.Errorf("%s targets ref %d: %w", t.Kind(), t.Target(), model.ErrNotFound)
		}
	}
	return nil
}
