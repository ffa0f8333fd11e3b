package diagfmt

import (
	"path/filepath"
	"strings"

	"weave/internal/source"
)

func displayPath(f *source.File, mode PathMode, base string) string {
	if f == nil {
		return "<generated>"
	}
	if f.Flags&source.FileVirtual != 0 {
		return f.Path
	}
	switch mode {
	case PathModeBasename:
		return filepath.Base(f.Path)
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case PathModeRelative, PathModeAuto:
		if base == "" {
			return f.Path
		}
		abs, err := filepath.Abs(f.Path)
		if err != nil {
			return f.Path
		}
		rel, err := filepath.Rel(base, abs)
		if err != nil {
			return f.Path
		}
		// в auto-режиме пути вне base остаются как есть
		if mode == PathModeAuto && strings.HasPrefix(rel, "..") {
			return f.Path
		}
		return filepath.ToSlash(rel)
	}
	return f.Path
}
