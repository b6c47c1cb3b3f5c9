package scan

import (
	"fmt"

	"fortio.org/safecast"

	"relint/internal/source"
)

// Classify partitions a file's text into zones according to its format.
// It never fails: malformed input (an unterminated string, comment or fence)
// classifies the trailing text as the open construct, which at worst makes
// rules skip it.
func Classify(f *source.File) []Zone {
	switch f.Format {
	case source.FormatCode:
		return classifyCode(f)
	case source.FormatMarkdown:
		return classifyMarkdown(f)
	default:
		return classifyPlain(f)
	}
}

func fileLen(f *source.File) uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("file length overflow: %w", err))
	}
	return n
}

func classifyPlain(f *source.File) []Zone {
	zb := newZoneBuilder(f.ID)
	return zb.finish(fileLen(f))
}

// classifyCode scans script-like source byte by byte. Strings honor backslash
// escapes; // comments run to the newline (exclusive); /* */ comments do not
// nest. Template literals are treated as plain strings: interpolation holes
// stay inside the string zone, a deliberate lexical approximation.
func classifyCode(f *source.File) []Zone {
	content := f.Content
	n := fileLen(f)
	zb := newZoneBuilder(f.ID)

	i := uint32(0)
	for i < n {
		b := content[i]
		switch {
		case b == '"' || b == '\'' || b == '`':
			end := scanString(content, i, b)
			zb.push(ZoneString, i, end)
			i = end
		case b == '/' && i+1 < n && content[i+1] == '/':
			end := i + 2
			for end < n && content[end] != '\n' {
				end++
			}
			zb.push(ZoneLineComment, i, end)
			i = end
		case b == '/' && i+1 < n && content[i+1] == '*':
			end := scanBlockComment(content, i)
			zb.push(ZoneBlockComment, i, end)
			i = end
		default:
			i++
		}
	}
	return zb.finish(n)
}

// scanString returns the offset one past the closing quote, or the end of the
// line for single/double quotes (strings do not span lines), or end of file
// for an unterminated backtick template.
func scanString(content []byte, start uint32, quote byte) uint32 {
	n := uint32(len(content))
	i := start + 1
	for i < n {
		b := content[i]
		if b == '\\' && i+1 < n {
			i += 2
			continue
		}
		if b == quote {
			return i + 1
		}
		if b == '\n' && quote != '`' {
			// unterminated single-line string: close at the newline so the
			// rest of the file stays classifiable
			return i
		}
		i++
	}
	return n
}

func scanBlockComment(content []byte, start uint32) uint32 {
	n := uint32(len(content))
	i := start + 2
	for i+1 < n {
		if content[i] == '*' && content[i+1] == '/' {
			return i + 2
		}
		i++
	}
	// unterminated: the comment swallows the rest of the file
	return n
}
