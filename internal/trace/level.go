package trace

import (
	"fmt"
	"strings"
)

// Level is the verbosity of a tracer.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // nothing streamed; ring dumped on failure
	LevelPhase        // driver and pass spans
	LevelDetail       // plus one span per aspect
	LevelDebug        // plus one span per advice call
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel parses a [trace] level value.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelOff, nil
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopePass
	case LevelDetail:
		return scope <= ScopeAspect
	case LevelDebug:
		return true
	}
	return false
}
