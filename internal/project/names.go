package project

import (
	"errors"
	"strings"
	"unicode"
)

var errInvalidName = errors.New("invalid qualified name")

// IsValidIdent reports whether name is a single identifier.
func IsValidIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// SplitQualified разбивает "A.B.C" на сегменты; пустые сегменты запрещены.
func SplitQualified(name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errInvalidName
	}
	segs := strings.Split(name, ".")
	for _, s := range segs {
		if !IsValidIdent(s) {
			return nil, errInvalidName
		}
	}
	return segs, nil
}
