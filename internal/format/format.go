// Package format derives canonical-style edits for a file: trailing
// whitespace removal, final-newline enforcement, blank-line collapsing,
// and markdown heading normalization. Edits are ordinary text edits
// applied through the fix engine, so check and write modes share the
// lint fixer's conflict handling and atomic writes.
package format

import (
	"strings"

	"relint/internal/diag"
	"relint/internal/scan"
	"relint/internal/source"
)

// Options tunes the canonical style.
type Options struct {
	// MaxBlankLines is the longest run of blank lines kept; 0 means 1.
	MaxBlankLines int
}

func (o Options) withDefaults() Options {
	if o.MaxBlankLines <= 0 {
		o.MaxBlankLines = 1
	}
	return o
}

// Edits computes the canonical-style edits for one classified file.
// String literals, fenced blocks, and indented blocks are left untouched;
// reformatting their interiors would change meaning.
func Edits(idx *scan.Index, opts Options) []diag.TextEdit {
	opts = opts.withDefaults()
	f := idx.File()
	if f.Format == source.FormatOther || len(f.Content) == 0 {
		return nil
	}

	var edits []diag.TextEdit
	markdown := f.Format == source.FormatMarkdown
	lineCount := f.LineCount()

	for line := uint32(1); line <= lineCount; line++ {
		start, end := lineBounds(f, line)
		if isBlank(f.Content[start:end]) {
			runEnd := line
			for runEnd < lineCount {
				s, e := lineBounds(f, runEnd+1)
				if !isBlank(f.Content[s:e]) {
					break
				}
				runEnd++
			}
			edits = appendBlankRunEdit(edits, idx, opts, line, runEnd)
			line = runEnd
			continue
		}
		if markdown {
			edits = appendHeadingEdit(edits, idx, start, end)
		}
		edits = appendTrailingEdit(edits, idx, markdown, start, end)
	}

	return ensureFinalNewline(f, edits)
}

// lineBounds returns the [start, end) text of a 1-based line, newline
// excluded.
func lineBounds(f *source.File, line uint32) (uint32, uint32) {
	var start uint32
	if line > 1 {
		start = f.LineIdx[line-2] + 1
	}
	end := uint32(len(f.Content))
	if int(line-1) < len(f.LineIdx) {
		end = f.LineIdx[line-1]
	}
	return start, end
}

func isBlank(line []byte) bool {
	for _, b := range line {
		if b != ' ' && b != '\t' {
			return false
		}
	}
	return true
}

// formattable reports whether an offset sits in text the formatter may
// rewrite. Markdown restricts edits to prose; code files only protect
// string literals.
func formattable(idx *scan.Index, markdown bool, off uint32) bool {
	kind := idx.KindAt(off)
	if markdown {
		return kind == scan.ZoneCode
	}
	return kind != scan.ZoneString
}

// appendBlankRunEdit collapses a run of blank lines [first, last] down to
// the configured maximum. A run at end of file is removed entirely; the
// final-newline pass owns the file's last byte.
func appendBlankRunEdit(edits []diag.TextEdit, idx *scan.Index, opts Options, first, last uint32) []diag.TextEdit {
	f := idx.File()
	start, _ := lineBounds(f, first)
	if !formattable(idx, f.Format == source.FormatMarkdown, start) {
		return edits
	}
	atEOF := last >= f.LineCount()
	var end uint32
	if atEOF {
		end = uint32(len(f.Content))
	} else {
		end, _ = lineBounds(f, last+1)
	}
	keep := ""
	if !atEOF {
		n := int(last - first + 1)
		if n > opts.MaxBlankLines {
			n = opts.MaxBlankLines
		}
		keep = strings.Repeat("\n", n)
	}
	old := string(f.Content[start:end])
	if old == keep {
		return edits
	}
	return append(edits, diag.TextEdit{
		Span:    source.Span{File: f.ID, Start: start, End: end},
		NewText: keep,
		OldText: old,
	})
}

// appendTrailingEdit trims trailing whitespace on a non-blank line. In
// markdown prose a run of two or more trailing spaces is a hard line
// break and is normalized to exactly two.
func appendTrailingEdit(edits []diag.TextEdit, idx *scan.Index, markdown bool, start, end uint32) []diag.TextEdit {
	f := idx.File()
	wsStart := end
	spacesOnly := true
	for wsStart > start {
		b := f.Content[wsStart-1]
		if b != ' ' && b != '\t' {
			break
		}
		if b != ' ' {
			spacesOnly = false
		}
		wsStart--
	}
	if wsStart == end {
		return edits
	}
	if !formattable(idx, markdown, wsStart) {
		return edits
	}
	keep := ""
	if markdown && spacesOnly && end-wsStart >= 2 {
		if end-wsStart == 2 {
			return edits
		}
		keep = "  "
	}
	return append(edits, diag.TextEdit{
		Span:    source.Span{File: f.ID, Start: wsStart, End: end},
		NewText: keep,
		OldText: string(f.Content[wsStart:end]),
	})
}

// appendHeadingEdit normalizes ATX headings to exactly one space between
// the hashes and the heading text.
func appendHeadingEdit(edits []diag.TextEdit, idx *scan.Index, start, end uint32) []diag.TextEdit {
	f := idx.File()
	pos := start
	indent := uint32(0)
	for pos < end && f.Content[pos] == ' ' && indent < 3 {
		pos++
		indent++
	}
	if pos >= end || f.Content[pos] != '#' || !formattable(idx, true, pos) {
		return edits
	}
	hashes := uint32(0)
	for pos < end && f.Content[pos] == '#' {
		pos++
		hashes++
	}
	if hashes > 6 {
		return edits
	}
	spaces := pos
	for spaces < end && (f.Content[spaces] == ' ' || f.Content[spaces] == '\t') {
		spaces++
	}
	switch {
	case spaces == pos && pos < end:
		// "#Heading": insert the missing space.
		return append(edits, diag.TextEdit{
			Span:    source.Span{File: f.ID, Start: pos, End: pos},
			NewText: " ",
		})
	case spaces > pos+1 && spaces < end:
		// "#   Heading": collapse the run. An all-space tail is left to
		// the trailing-whitespace pass.
		return append(edits, diag.TextEdit{
			Span:    source.Span{File: f.ID, Start: pos, End: spaces},
			NewText: " ",
			OldText: string(f.Content[pos:spaces]),
		})
	}
	return edits
}

func ensureFinalNewline(f *source.File, edits []diag.TextEdit) []diag.TextEdit {
	n := uint32(len(f.Content))
	if n == 0 || f.Content[n-1] == '\n' {
		return edits
	}
	// A blank-run deletion reaching EOF already leaves the file ending on
	// the newline before the run.
	for _, e := range edits {
		if e.Span.End == n && e.Span.Start < e.Span.End {
			return edits
		}
	}
	return append(edits, diag.TextEdit{
		Span:    source.Span{File: f.ID, Start: n, End: n},
		NewText: "\n",
	})
}
