// Package directive parses disable comments out of a file's comment zones
// and answers per-line suppression queries. Two vocabularies are accepted
// and treated identically, `eslint-...` and `relint-...`, so existing
// directive comments keep working after a migration.
package directive

import (
	"sort"
	"strings"

	"relint/internal/scan"
)

// Range suppresses a set of rules over an inclusive line interval.
type Range struct {
	StartLine uint32
	EndLine   uint32
	Rules     []string // empty suppresses every rule
}

// Suppressions holds all ranges collected from one file.
type Suppressions struct {
	ranges []Range
}

// Covers reports whether rule is suppressed on line. A line is suppressed
// when any range covers it (union semantics, no precedence between forms).
func (s *Suppressions) Covers(rule string, line uint32) bool {
	for _, r := range s.ranges {
		if line < r.StartLine || line > r.EndLine {
			continue
		}
		if len(r.Rules) == 0 {
			return true
		}
		for _, id := range r.Rules {
			if id == rule {
				return true
			}
		}
	}
	return false
}

// Ranges returns the collected ranges ordered by start line.
func (s *Suppressions) Ranges() []Range {
	return s.ranges
}

type directiveKind uint8

const (
	kindDisable directiveKind = iota
	kindEnable
	kindDisableNextLine
)

type marker struct {
	kind  directiveKind
	rules []string
	zone  scan.Zone
}

type openMark struct {
	startLine uint32
}

// Collect scans the comment zones of a file and builds its suppression set.
// Directive text anywhere else (code, string literals, markdown prose) is
// never honored.
func Collect(idx *scan.Index) *Suppressions {
	c := &collector{
		idx:      idx,
		openRule: make(map[string][]openMark),
	}
	for _, z := range idx.CommentZones() {
		m, ok := parseMarker(commentText(idx, z))
		if !ok {
			continue
		}
		m.zone = z
		c.apply(m)
	}
	c.closeAll(c.lastLine())

	sort.Slice(c.out, func(i, j int) bool {
		if c.out[i].StartLine != c.out[j].StartLine {
			return c.out[i].StartLine < c.out[j].StartLine
		}
		return c.out[i].EndLine < c.out[j].EndLine
	})
	return &Suppressions{ranges: c.out}
}

type collector struct {
	idx      *scan.Index
	out      []Range
	openAll  []openMark
	openRule map[string][]openMark
}

func (c *collector) apply(m marker) {
	switch m.kind {
	case kindDisableNextLine:
		line := c.idx.File().LineAt(lastOffset(m.zone)) + 1
		c.out = append(c.out, Range{StartLine: line, EndLine: line, Rules: m.rules})

	case kindDisable:
		start := c.disableStart(m.zone)
		if len(m.rules) == 0 {
			c.openAll = append(c.openAll, openMark{startLine: start})
			return
		}
		for _, r := range m.rules {
			c.openRule[r] = append(c.openRule[r], openMark{startLine: start})
		}

	case kindEnable:
		end := c.enableEnd(m.zone)
		if len(m.rules) == 0 {
			c.closeAll(end)
			return
		}
		for _, r := range m.rules {
			for _, o := range c.openRule[r] {
				c.emit(o.startLine, end, []string{r})
			}
			delete(c.openRule, r)
		}
	}
}

// disableStart picks the first suppressed line for a disable marker: the
// line after the marker, or the marker's own line when a line comment is
// used or when code shares that line.
func (c *collector) disableStart(z scan.Zone) uint32 {
	line := c.idx.File().LineAt(z.Span.Start)
	if z.Kind == scan.ZoneLineComment || c.codeOnLine(line) {
		return line
	}
	return line + 1
}

// enableEnd picks the last suppressed line for an enable marker: the line
// before it, or the marker's own line when code shares that line.
func (c *collector) enableEnd(z scan.Zone) uint32 {
	line := c.idx.File().LineAt(z.Span.Start)
	if c.codeOnLine(line) {
		return line
	}
	return line - 1
}

func (c *collector) closeAll(end uint32) {
	for _, o := range c.openAll {
		c.emit(o.startLine, end, nil)
	}
	c.openAll = c.openAll[:0]
	for r, opens := range c.openRule {
		for _, o := range opens {
			c.emit(o.startLine, end, []string{r})
		}
		delete(c.openRule, r)
	}
}

func (c *collector) emit(start, end uint32, rules []string) {
	if start > end {
		return
	}
	c.out = append(c.out, Range{StartLine: start, EndLine: end, Rules: rules})
}

func (c *collector) lastLine() uint32 {
	return c.idx.File().LineCount()
}

// codeOnLine reports whether the given line carries anything in a code zone
// besides whitespace.
func (c *collector) codeOnLine(line uint32) bool {
	f := c.idx.File()
	start, end, ok := lineBounds(f.LineIdx, uint32(len(f.Content)), line)
	if !ok {
		return false
	}
	for off := start; off < end; off++ {
		b := f.Content[off]
		if b == ' ' || b == '\t' || b == '\r' {
			continue
		}
		if c.idx.InCode(off) {
			return true
		}
	}
	return false
}

func lineBounds(lineIdx []uint32, fileLen, line uint32) (start, end uint32, ok bool) {
	if line == 0 {
		return 0, 0, false
	}
	if line > 1 {
		i := int(line) - 2
		if i >= len(lineIdx) {
			return 0, 0, false
		}
		start = lineIdx[i] + 1
	}
	if int(line)-1 < len(lineIdx) {
		end = lineIdx[line-1]
	} else {
		end = fileLen
	}
	return start, end, true
}

func lastOffset(z scan.Zone) uint32 {
	if z.Span.End > z.Span.Start {
		return z.Span.End - 1
	}
	return z.Span.Start
}

// commentText strips the comment markers off a zone's raw text.
func commentText(idx *scan.Index, z scan.Zone) string {
	text := string(idx.File().Content[z.Span.Start:z.Span.End])
	switch z.Kind {
	case scan.ZoneLineComment:
		text = strings.TrimPrefix(text, "//")
	case scan.ZoneBlockComment:
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(text, "*/")
	default:
		return ""
	}
	return strings.TrimSpace(text)
}

// parseMarker recognizes the directive grammar:
//
//	<vocab>-disable-next-line [rule, ...] [-- explanation]
//	<vocab>-disable [rule, ...] [-- explanation]
//	<vocab>-enable [rule, ...] [-- explanation]
//
// with <vocab> one of eslint or relint. Explanations are discarded.
func parseMarker(text string) (marker, bool) {
	rest := ""
	switch {
	case strings.HasPrefix(text, "eslint-"):
		rest = text[len("eslint-"):]
	case strings.HasPrefix(text, "relint-"):
		rest = text[len("relint-"):]
	default:
		return marker{}, false
	}

	var m marker
	switch {
	case hasWord(rest, "disable-next-line"):
		m.kind = kindDisableNextLine
		rest = rest[len("disable-next-line"):]
	case hasWord(rest, "disable"):
		m.kind = kindDisable
		rest = rest[len("disable"):]
	case hasWord(rest, "enable"):
		m.kind = kindEnable
		rest = rest[len("enable"):]
	default:
		return marker{}, false
	}

	if i := strings.Index(rest, "--"); i >= 0 {
		rest = rest[:i]
	}
	for _, part := range strings.Split(rest, ",") {
		if id := strings.TrimSpace(part); id != "" {
			m.rules = append(m.rules, id)
		}
	}
	return m, true
}

// hasWord reports whether s starts with word followed by a boundary.
func hasWord(s, word string) bool {
	if !strings.HasPrefix(s, word) {
		return false
	}
	if len(s) == len(word) {
		return true
	}
	c := s[len(word)]
	return c == ' ' || c == '\t'
}
