package rules

import (
	"relint/internal/diag"
)

func init() {
	Register(noEmptyPattern{})
}

type noEmptyPattern struct{}

func (noEmptyPattern) Meta() Meta {
	return Meta{
		Name:            "no-empty-pattern",
		Description:     "disallow empty destructuring patterns",
		DefaultSeverity: diag.SevError,
		NeedsScope:      true,
	}
}

func (noEmptyPattern) Check(ctx *Context) {
	for _, span := range ctx.Scope.EmptyPatterns() {
		msg := "Unexpected empty object pattern."
		if int(span.Start) < len(ctx.File.Content) && ctx.File.Content[span.Start] == '[' {
			msg = "Unexpected empty array pattern."
		}
		ctx.Report(span, msg)
	}
}
