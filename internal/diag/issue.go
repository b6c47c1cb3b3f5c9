package diag

import (
	"relint/internal/source"
)

// TextEdit replaces the text covered by Span with NewText. OldText, when
// non-empty, is a guard: the fix engine refuses the edit if the file no
// longer contains it at that span.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// Fix is an automated correction attached to an issue. Fixes are data-only;
// application lives in internal/fix.
type Fix struct {
	Title string
	Edits []TextEdit
}

// Issue is a single rule finding. Rule is the full rule id the issue was
// raised under, including a plugin prefix when the rule has one
// (e.g. "import/no-cycle").
type Issue struct {
	Rule     string
	Severity Severity
	Message  string
	Primary  source.Span
	Fix      *Fix
}

// WithFix returns a copy of the issue carrying the given fix.
func (i Issue) WithFix(title string, edits ...TextEdit) Issue {
	i.Fix = &Fix{Title: title, Edits: edits}
	return i
}
