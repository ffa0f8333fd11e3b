package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode is the value of --ui; --color takes the same words.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

var modeAliases = map[string]uiMode{
	"":       uiModeAuto,
	"auto":   uiModeAuto,
	"on":     uiModeOn,
	"always": uiModeOn,
	"off":    uiModeOff,
	"never":  uiModeOff,
}

func parseMode(flag, value string) (uiMode, error) {
	if m, ok := modeAliases[strings.ToLower(strings.TrimSpace(value))]; ok {
		return m, nil
	}
	return "", fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
}

func readUIMode(value string) (uiMode, error) { return parseMode("ui", value) }

// resolve decides an auto mode by whether out is a terminal.
func (m uiMode) resolve(out *os.File) bool {
	switch m {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	return out != nil && isTerminal(out)
}

// shouldUseTUI follows stderr: the progress view draws there while the
// lowered code goes to stdout.
func shouldUseTUI(mode uiMode) bool { return mode.resolve(os.Stderr) }

// useColor resolves --color against the stream the output goes to.
func useColor(value string, out *os.File) (bool, error) {
	m, err := parseMode("color", value)
	if err != nil {
		return false, err
	}
	return m.resolve(out), nil
}
