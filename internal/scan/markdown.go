package scan

import (
	"bytes"

	"relint/internal/source"
)

// classifyMarkdown scans structured text line by line. A fence opens with 3+
// backticks or 3+ tildes (up to 3 leading spaces allowed) and closes with a
// marker of the same character at least as long; the fenced zone includes
// both marker lines. Outside fences, runs of lines indented by 4 spaces or a
// tab form indented code zones. An unterminated fence runs to end of file.
func classifyMarkdown(f *source.File) []Zone {
	content := f.Content
	n := fileLen(f)
	zb := newZoneBuilder(f.ID)

	var (
		inFence     bool
		fenceChar   byte
		fenceLen    int
		fenceStart  uint32
		indentStart = uint32(0)
		inIndent    bool
	)

	lineStart := uint32(0)
	for lineStart < n {
		lineEnd := lineStart
		for lineEnd < n && content[lineEnd] != '\n' {
			lineEnd++
		}
		// nextStart includes the newline in the current line's zone
		nextStart := lineEnd
		if nextStart < n {
			nextStart++
		}
		line := content[lineStart:lineEnd]

		switch {
		case inFence:
			if ch, ln, ok := fenceMarker(line); ok && ch == fenceChar && ln >= fenceLen {
				zb.push(ZoneFencedCode, fenceStart, nextStart)
				inFence = false
			}
		case inIndent:
			if isIndentedLine(line) {
				// still inside the indented run
			} else {
				zb.push(ZoneIndentedCode, indentStart, lineStart)
				inIndent = false
				// reconsider this line from the top
				continue
			}
		default:
			if ch, ln, ok := fenceMarker(line); ok {
				inFence = true
				fenceChar = ch
				fenceLen = ln
				fenceStart = lineStart
			} else if isIndentedLine(line) {
				inIndent = true
				indentStart = lineStart
			}
		}

		lineStart = nextStart
	}

	if inFence {
		zb.push(ZoneFencedCode, fenceStart, n)
	}
	if inIndent {
		zb.push(ZoneIndentedCode, indentStart, n)
	}
	return zb.finish(n)
}

// fenceMarker reports whether the line opens or closes a fence, returning the
// fence character and marker length.
func fenceMarker(line []byte) (byte, int, bool) {
	trimmed := line
	indent := 0
	for indent < len(trimmed) && indent < 3 && trimmed[indent] == ' ' {
		indent++
	}
	trimmed = trimmed[indent:]
	if len(trimmed) < 3 {
		return 0, 0, false
	}
	ch := trimmed[0]
	if ch != '`' && ch != '~' {
		return 0, 0, false
	}
	ln := 0
	for ln < len(trimmed) && trimmed[ln] == ch {
		ln++
	}
	if ln < 3 {
		return 0, 0, false
	}
	// an opening backtick fence must not contain backticks in its info string
	if ch == '`' && bytes.IndexByte(trimmed[ln:], '`') >= 0 {
		return 0, 0, false
	}
	return ch, ln, true
}

func isIndentedLine(line []byte) bool {
	if len(line) == 0 {
		return false
	}
	if line[0] == '\t' {
		return true
	}
	return len(line) >= 4 && line[0] == ' ' && line[1] == ' ' && line[2] == ' ' && line[3] == ' '
}
