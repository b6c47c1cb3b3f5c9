package rules

import (
	"fmt"

	"relint/internal/diag"
	"relint/internal/scope"
)

func init() {
	Register(noUnusedVars{})
}

type noUnusedVars struct{}

func (noUnusedVars) Meta() Meta {
	return Meta{
		Name:            "no-unused-vars",
		Description:     "disallow bindings that are declared but never read",
		DefaultSeverity: diag.SevError,
		NeedsScope:      true,
	}
}

func (noUnusedVars) Check(ctx *Context) {
	for _, b := range ctx.Scope.Bindings() {
		if b.Used || b.Exempt || b.Exported {
			continue
		}
		msg := fmt.Sprintf("'%s' is defined but never used.", b.Name)
		switch {
		case b.Kind == scope.BindImport:
			msg = fmt.Sprintf("'%s' is imported but never used.", b.Name)
		case b.Reassigned:
			msg = fmt.Sprintf("'%s' is assigned a value but never used.", b.Name)
		}
		ctx.Report(b.Span, msg)
	}
}
