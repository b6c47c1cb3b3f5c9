// Package fix applies rule-produced text edits to file content. Edits are
// applied in one left-to-right pass over the original text, so the span
// offsets computed during rule execution stay valid for every edit; the
// text is never re-scanned between edits.
package fix

import (
	"fmt"
	"sort"

	"relint/internal/diag"
)

// Conflict records an edit that was skipped instead of applied.
type Conflict struct {
	Edit   diag.TextEdit
	Reason string
}

// Outcome is the result of applying edits to one file's text.
type Outcome struct {
	Text    []byte
	Applied int
	Skipped []Conflict
}

// Changed reports whether the applied edits altered the text.
func (o Outcome) Changed() bool {
	return o.Applied > 0
}

// Apply sorts edits by start offset and rewrites text in a single pass.
// An edit that overlaps an already accepted edit is skipped and counted as
// a conflict; a skipped edit never corrupts the output. Edits whose OldText
// guard no longer matches the underlying text are skipped the same way.
func Apply(text []byte, edits []diag.TextEdit) Outcome {
	if len(edits) == 0 {
		return Outcome{Text: text}
	}

	sorted := make([]diag.TextEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start != sorted[j].Span.Start {
			return sorted[i].Span.Start < sorted[j].Span.Start
		}
		return sorted[i].Span.End < sorted[j].Span.End
	})

	out := Outcome{Text: make([]byte, 0, len(text))}
	var cursor uint32
	var last *diag.TextEdit

	for i := range sorted {
		edit := sorted[i]
		if int(edit.Span.End) > len(text) || edit.Span.End < edit.Span.Start {
			out.Skipped = append(out.Skipped, Conflict{Edit: edit, Reason: "edit span out of range"})
			continue
		}
		if last != nil && spansConflict(*last, edit) {
			out.Skipped = append(out.Skipped, Conflict{Edit: edit, Reason: "overlaps an already accepted edit"})
			continue
		}
		if edit.Span.Start < cursor {
			// zero-length edit inside already consumed text
			out.Skipped = append(out.Skipped, Conflict{Edit: edit, Reason: "overlaps an already accepted edit"})
			continue
		}
		if edit.OldText != "" && string(text[edit.Span.Start:edit.Span.End]) != edit.OldText {
			out.Skipped = append(out.Skipped, Conflict{
				Edit:   edit,
				Reason: fmt.Sprintf("text changed: expected %q", edit.OldText),
			})
			continue
		}

		out.Text = append(out.Text, text[cursor:edit.Span.Start]...)
		out.Text = append(out.Text, edit.NewText...)
		cursor = edit.Span.End
		out.Applied++
		last = &sorted[i]
	}
	out.Text = append(out.Text, text[cursor:]...)

	if out.Applied == 0 {
		out.Text = text
	}
	return out
}

// spansConflict reports whether two edits' spans overlap. Spans are
// half-open [Start, End). Two zero-length edits at the same offset never
// conflict; a zero-length edit conflicts with a span that contains its
// position.
func spansConflict(a, b diag.TextEdit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End

	if aStart == aEnd && bStart == bEnd {
		return false
	}
	if aStart == aEnd {
		return bStart <= aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart <= bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}
