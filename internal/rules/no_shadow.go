package rules

import (
	"fmt"

	"relint/internal/diag"
	"relint/internal/scope"
)

func init() {
	Register(noShadow{})
}

type noShadow struct{}

func (noShadow) Meta() Meta {
	return Meta{
		Name:            "no-shadow",
		Description:     "disallow bindings that shadow a declaration in an enclosing scope",
		DefaultSeverity: diag.SevWarning,
		NeedsScope:      true,
	}
}

func (noShadow) Check(ctx *Context) {
	bindings := ctx.Scope.Bindings()
	for id := range bindings {
		b := &bindings[id]
		if b.Exempt {
			continue
		}
		if _, shadowed := ctx.Scope.ShadowTarget(scope.BindingID(id)); shadowed {
			ctx.Report(b.Span, fmt.Sprintf("'%s' is already declared in the upper scope.", b.Name))
		}
	}
}
