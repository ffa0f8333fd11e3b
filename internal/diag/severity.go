package diag

// Severity orders diagnostics by importance; higher is worse.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var sevNames = [...]string{"INFO", "WARNING", "ERROR"}

func (s Severity) String() string {
	if int(s) < len(sevNames) {
		return sevNames[s]
	}
	return "UNKNOWN"
}

// AtLeast reports whether s is min or worse.
func (s Severity) AtLeast(min Severity) bool { return s >= min }
