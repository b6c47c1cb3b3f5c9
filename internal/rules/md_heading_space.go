package rules

import (
	"relint/internal/diag"
	"relint/internal/scan"
	"relint/internal/source"
)

func init() {
	Register(mdHeadingSpace{})
}

type mdHeadingSpace struct{}

func (mdHeadingSpace) Meta() Meta {
	return Meta{
		Name:            "md/heading-space",
		Description:     "require a space between a heading's hashes and its text",
		DefaultSeverity: diag.SevWarning,
		Fixable:         true,
		Markdown:        true,
	}
}

func (mdHeadingSpace) Check(ctx *Context) {
	content := ctx.File.Content
	lineStart := uint32(0)
	for lineStart < uint32(len(content)) {
		lineEnd := lineStart
		for lineEnd < uint32(len(content)) && content[lineEnd] != '\n' {
			lineEnd++
		}
		checkHeadingLine(ctx, lineStart, lineEnd)
		lineStart = lineEnd + 1
	}
}

func checkHeadingLine(ctx *Context, lineStart, lineEnd uint32) {
	content := ctx.File.Content

	// headings allow up to three leading spaces
	pos := lineStart
	for pos < lineEnd && pos-lineStart < 3 && content[pos] == ' ' {
		pos++
	}
	if pos >= lineEnd || content[pos] != '#' {
		return
	}
	// inside a fenced or indented block this is code, not a heading
	if ctx.Index.KindAt(pos) != scan.ZoneCode {
		return
	}

	hashStart := pos
	for pos < lineEnd && content[pos] == '#' {
		pos++
	}
	level := pos - hashStart
	if level > 6 || pos >= lineEnd {
		return
	}
	if content[pos] == ' ' || content[pos] == '\t' {
		return
	}

	span := source.Span{File: ctx.File.ID, Start: hashStart, End: pos}
	fx := &diag.Fix{
		Title: "insert space after hashes",
		Edits: []diag.TextEdit{{
			Span:    source.Span{File: ctx.File.ID, Start: pos, End: pos},
			NewText: " ",
		}},
	}
	ctx.ReportFix(span, "Missing space after hashes on heading.", fx)
}
