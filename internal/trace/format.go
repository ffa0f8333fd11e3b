package trace

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format selects how events are serialized.
type Format uint8

const (
	FormatAuto Format = iota // by output file extension
	FormatText
	FormatNDJSON
)

// ParseFormat parses a [trace] format value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
}

// formatFor resolves FormatAuto against an output path.
func formatFor(f Format, path string) Format {
	if f != FormatAuto {
		return f
	}
	for _, ext := range []string{".ndjson", ".jsonl", ".json"} {
		if strings.HasSuffix(path, ext) {
			return FormatNDJSON
		}
	}
	return FormatText
}

// FormatEvent renders ev as one line terminated by '\n'.
func FormatEvent(ev *Event, f Format) []byte {
	if f == FormatNDJSON {
		return eventJSON(ev)
	}
	return eventText(ev)
}

type jsonAttr struct {
	Key   string `json:"k"`
	Value string `json:"v"`
}

type jsonEvent struct {
	Time   string     `json:"time"`
	Seq    uint64     `json:"seq"`
	Kind   string     `json:"kind"`
	Scope  string     `json:"scope"`
	Span   uint64     `json:"span,omitempty"`
	Parent uint64     `json:"parent,omitempty"`
	Name   string     `json:"name"`
	Detail string     `json:"detail,omitempty"`
	Aspect string     `json:"aspect,omitempty"`
	Layer  int        `json:"layer,omitempty"`
	Err    string     `json:"error,omitempty"`
	Attrs  []jsonAttr `json:"attrs,omitempty"`
}

func eventJSON(ev *Event) []byte {
	out := jsonEvent{
		Time:   ev.Time.UTC().Format("2006-01-02T15:04:05.000000Z"),
		Seq:    ev.Seq,
		Kind:   ev.Kind.String(),
		Scope:  ev.Scope.String(),
		Span:   ev.Span,
		Parent: ev.Parent,
		Name:   ev.Name,
		Detail: ev.Detail,
		Aspect: ev.Aspect,
		Layer:  ev.Layer,
		Err:    ev.Err,
	}
	for _, a := range ev.Attrs {
		out.Attrs = append(out.Attrs, jsonAttr(a))
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

// eventText renders
//
//	[seq] <indent><marker> name [aspect@layer] (detail) {k=v, ...} !error
func eventText(ev *Event) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%6d] ", ev.Seq)
	if ev.Scope > ScopeDriver {
		sb.WriteString(strings.Repeat("  ", int(ev.Scope-ScopeDriver)))
	}
	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("→ ")
	case KindSpanEnd:
		sb.WriteString("← ")
	default:
		sb.WriteString("• ")
	}
	sb.WriteString(ev.Name)
	if ev.Aspect != "" && ev.Scope > ScopeAspect {
		fmt.Fprintf(&sb, " [%s@%d]", ev.Aspect, ev.Layer)
	}
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	if len(ev.Attrs) > 0 {
		sb.WriteString(" {")
		for i, a := range ev.Attrs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.Key + "=" + a.Value)
		}
		sb.WriteString("}")
	}
	if ev.Err != "" {
		sb.WriteString(" !" + ev.Err)
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
