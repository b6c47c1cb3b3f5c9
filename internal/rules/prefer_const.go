package rules

import (
	"fmt"

	"relint/internal/diag"
	"relint/internal/scope"
)

func init() {
	Register(preferConst{})
}

type preferConst struct{}

func (preferConst) Meta() Meta {
	return Meta{
		Name:            "prefer-const",
		Description:     "require const for let bindings that are never reassigned",
		DefaultSeverity: diag.SevWarning,
		NeedsScope:      true,
	}
}

func (preferConst) Check(ctx *Context) {
	for _, b := range ctx.Scope.Bindings() {
		if b.Kind != scope.BindLet || b.Reassigned || b.Exempt {
			continue
		}
		ctx.Report(b.Span, fmt.Sprintf("'%s' is never reassigned. Use 'const' instead.", b.Name))
	}
}
