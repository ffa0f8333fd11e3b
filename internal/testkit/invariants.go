// Package testkit holds checks shared by package tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"weave/internal/model"
	"weave/internal/source"
)

// CheckSnapshotInvariants runs a minimal set of structural checks on a snapshot:
// 1) every declaration reachable from the roots is visited once
// 2) members and parameters point back at their owner
// 3) spans that name a file lie within that file's content
// 4) every type in Types() is reachable
func CheckSnapshotInvariants(s *model.Snapshot) error {
	if s == nil {
		return fmt.Errorf("nil snapshot")
	}
	seen := make(map[model.Ref]bool)
	var visit func(ref, owner model.Ref) error
	visit = func(ref, owner model.Ref) error {
		d := s.Get(ref)
		if d == nil {
			return fmt.Errorf("ref %d listed under %d does not resolve", ref, owner)
		}
		if seen[ref] {
			return fmt.Errorf("%s is reachable twice", s.Display(ref))
		}
		seen[ref] = true
		if d.Parent != owner {
			return fmt.Errorf("%s: parent is %d, listed under %d", s.Display(ref), d.Parent, owner)
		}
		if err := checkSpan(s.Files(), d.Span); err != nil {
			return fmt.Errorf("%s: %w", s.Display(ref), err)
		}
		for _, p := range d.Params {
			if err := visit(p, ref); err != nil {
				return err
			}
		}
		for _, m := range d.Members {
			if err := visit(m, ref); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range s.Roots() {
		if err := visit(r, model.NoRef); err != nil {
			return err
		}
	}
	for _, t := range s.Types() {
		if !seen[t] {
			return fmt.Errorf("type %d is not reachable from the roots", t)
		}
	}
	return nil
}

func checkSpan(fs *source.FileSet, sp source.Span) error {
	if !sp.IsValid() {
		return nil
	}
	f := fs.Get(sp.File)
	if f == nil {
		return fmt.Errorf("span %v points to an unknown file", sp)
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if sp.End < sp.Start || sp.End > lenContent {
		return fmt.Errorf("span %v is outside %s (%d bytes)", sp, f.Path, lenContent)
	}
	return nil
}
