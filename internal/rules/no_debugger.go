package rules

import (
	"relint/internal/diag"
	"relint/internal/scan"
	"relint/internal/source"
)

func init() {
	Register(noDebugger{})
}

type noDebugger struct{}

func (noDebugger) Meta() Meta {
	return Meta{
		Name:            "no-debugger",
		Description:     "disallow debugger statements",
		DefaultSeverity: diag.SevError,
		Fixable:         true,
	}
}

func (noDebugger) Check(ctx *Context) {
	toks := ctx.Tokens
	for i, t := range toks {
		if t.Kind != scan.TokIdent || t.Text != "debugger" {
			continue
		}
		if i > 0 && toks[i-1].Kind == scan.TokPunct && toks[i-1].Text == "." {
			continue
		}
		// remove the statement and its trailing semicolon
		cut := t.Span
		if i+1 < len(toks) && toks[i+1].Kind == scan.TokPunct && toks[i+1].Text == ";" {
			cut = cut.Cover(toks[i+1].Span)
		}
		cut = extendOverLine(ctx.File, cut)
		fx := &diag.Fix{
			Title: "remove debugger statement",
			Edits: []diag.TextEdit{{Span: cut, NewText: ""}},
		}
		ctx.ReportFix(t.Span, "Unexpected 'debugger' statement.", fx)
	}
}

// extendOverLine widens a removal span to swallow the line's newline when
// nothing but whitespace surrounds the statement, so the fix does not leave
// a blank line behind.
func extendOverLine(f *source.File, s source.Span) source.Span {
	start, end := s.Start, s.End
	for start > 0 {
		b := f.Content[start-1]
		if b != ' ' && b != '\t' {
			break
		}
		start--
	}
	if start > 0 && f.Content[start-1] != '\n' {
		return s
	}
	scan := end
	for scan < uint32(len(f.Content)) {
		b := f.Content[scan]
		if b == '\n' {
			return source.Span{File: s.File, Start: start, End: scan + 1}
		}
		if b != ' ' && b != '\t' && b != '\r' {
			return s
		}
		scan++
	}
	return source.Span{File: s.File, Start: start, End: scan}
}
