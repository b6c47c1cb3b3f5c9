package rules

import (
	"relint/internal/diag"
	"relint/internal/scan"
)

func init() {
	Register(noVar{})
}

type noVar struct{}

func (noVar) Meta() Meta {
	return Meta{
		Name:            "no-var",
		Description:     "require let or const instead of var",
		DefaultSeverity: diag.SevWarning,
		Fixable:         true,
	}
}

func (noVar) Check(ctx *Context) {
	toks := ctx.Tokens
	for i, t := range toks {
		if t.Kind != scan.TokIdent || t.Text != "var" {
			continue
		}
		if i > 0 && toks[i-1].Kind == scan.TokPunct && toks[i-1].Text == "." {
			continue
		}
		// only a declaration position: var <name>, var {..}, var [..]
		if i+1 >= len(toks) {
			continue
		}
		next := toks[i+1]
		declared := next.Kind == scan.TokIdent ||
			(next.Kind == scan.TokPunct && (next.Text == "{" || next.Text == "["))
		if !declared {
			continue
		}
		fx := &diag.Fix{
			Title: "replace var with let",
			Edits: []diag.TextEdit{{Span: t.Span, NewText: "let", OldText: "var"}},
		}
		ctx.ReportFix(t.Span, "Unexpected var, use let or const instead.", fx)
	}
}
