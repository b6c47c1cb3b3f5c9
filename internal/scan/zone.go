package scan

import (
	"relint/internal/source"
)

// ZoneKind classifies a contiguous region of a file.
type ZoneKind uint8

const (
	// ZoneCode is rule-visible text: anything not claimed by another kind.
	ZoneCode ZoneKind = iota
	// ZoneString is a string literal, quotes included.
	ZoneString
	// ZoneLineComment is a // comment, newline excluded.
	ZoneLineComment
	// ZoneBlockComment is a /* */ comment, markers included.
	ZoneBlockComment
	// ZoneFencedCode is a markdown fenced block, fence markers included.
	ZoneFencedCode
	// ZoneIndentedCode is a markdown 4-space/tab indented block.
	ZoneIndentedCode
)

func (k ZoneKind) String() string {
	switch k {
	case ZoneCode:
		return "code"
	case ZoneString:
		return "string"
	case ZoneLineComment:
		return "line-comment"
	case ZoneBlockComment:
		return "block-comment"
	case ZoneFencedCode:
		return "fenced-code"
	case ZoneIndentedCode:
		return "indented-code"
	}
	return "unknown"
}

// IsComment reports whether the zone is a line or block comment.
func (k ZoneKind) IsComment() bool {
	return k == ZoneLineComment || k == ZoneBlockComment
}

// Zone is a classified span. Classifier output is a sorted sequence of
// disjoint zones whose union covers the whole file.
type Zone struct {
	Kind ZoneKind
	Span source.Span
}

// zoneBuilder accumulates zones while keeping the cover-and-partition
// invariant: every byte between 0 and the file length belongs to exactly
// one zone.
type zoneBuilder struct {
	file      source.FileID
	zones     []Zone
	codeStart uint32 // start of the pending code zone
}

func newZoneBuilder(file source.FileID) *zoneBuilder {
	return &zoneBuilder{file: file, zones: make([]Zone, 0, 16)}
}

// push closes the pending code gap and appends a non-code zone.
func (zb *zoneBuilder) push(kind ZoneKind, start, end uint32) {
	if start > zb.codeStart {
		zb.zones = append(zb.zones, Zone{
			Kind: ZoneCode,
			Span: source.Span{File: zb.file, Start: zb.codeStart, End: start},
		})
	}
	if end > start {
		zb.zones = append(zb.zones, Zone{
			Kind: kind,
			Span: source.Span{File: zb.file, Start: start, End: end},
		})
	}
	zb.codeStart = end
}

// finish flushes the trailing code zone and returns the partition.
func (zb *zoneBuilder) finish(fileLen uint32) []Zone {
	if fileLen > zb.codeStart {
		zb.zones = append(zb.zones, Zone{
			Kind: ZoneCode,
			Span: source.Span{File: zb.file, Start: zb.codeStart, End: fileLen},
		})
		zb.codeStart = fileLen
	}
	return zb.zones
}
