package diag

// Severity defines the importance of an issue.
type Severity uint8

const (
	// SevOff disables a rule entirely; it never appears on emitted issues.
	SevOff Severity = iota
	// SevWarning is for issues that do not fail the run by themselves.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevOff:
		return "off"
	case SevWarning:
		return "warn"
	case SevError:
		return "error"
	}
	return "unknown"
}

// ParseSeverity maps a configuration string to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "off":
		return SevOff, true
	case "warn", "warning":
		return SevWarning, true
	case "error":
		return SevError, true
	}
	return SevOff, false
}
