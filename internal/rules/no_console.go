package rules

import (
	"fmt"

	"relint/internal/diag"
	"relint/internal/scan"
)

func init() {
	Register(noConsole{})
}

type noConsole struct{}

func (noConsole) Meta() Meta {
	return Meta{
		Name:            "no-console",
		Description:     "disallow calls to console methods",
		DefaultSeverity: diag.SevWarning,
	}
}

func (noConsole) Check(ctx *Context) {
	allow := make(map[string]bool, len(ctx.Options.NoConsole.Allow))
	for _, m := range ctx.Options.NoConsole.Allow {
		allow[m] = true
	}

	toks := ctx.Tokens
	for i, t := range toks {
		if t.Kind != scan.TokIdent || t.Text != "console" {
			continue
		}
		if i > 0 && toks[i-1].Kind == scan.TokPunct && toks[i-1].Text == "." {
			continue
		}
		if i+2 >= len(toks) || toks[i+1].Text != "." || toks[i+2].Kind != scan.TokIdent {
			continue
		}
		method := toks[i+2]
		if allow[method.Text] {
			continue
		}
		ctx.Report(t.Span.Cover(method.Span), fmt.Sprintf("Unexpected console.%s statement.", method.Text))
	}
}
