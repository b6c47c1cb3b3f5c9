package rules

import (
	"fmt"
	"strings"

	"relint/internal/diag"
)

func init() {
	Register(importNoUnresolved{})
	Register(importNamed{})
	Register(importNoCycle{})
}

type importNoUnresolved struct{}

func (importNoUnresolved) Meta() Meta {
	return Meta{
		Name:            "import/no-unresolved",
		Description:     "ensure relative imports resolve to a file",
		DefaultSeverity: diag.SevError,
		NeedsGraph:      true,
	}
}

func (importNoUnresolved) Check(ctx *Context) {
	node := ctx.Graph.Node(ctx.File.ID)
	if node == nil {
		return
	}
	for _, imp := range node.Imports {
		if !imp.Relative || imp.Resolved || imp.OnDisk {
			continue
		}
		ctx.Report(imp.Span, fmt.Sprintf("Unable to resolve path to module '%s'.", imp.Specifier))
	}
}

type importNamed struct{}

func (importNamed) Meta() Meta {
	return Meta{
		Name:            "import/named",
		Description:     "ensure named imports exist in the resolved module",
		DefaultSeverity: diag.SevError,
		NeedsGraph:      true,
	}
}

func (importNamed) Check(ctx *Context) {
	node := ctx.Graph.Node(ctx.File.ID)
	if node == nil {
		return
	}
	for _, imp := range node.Imports {
		if !imp.Resolved || imp.TypeOnly {
			continue
		}
		for _, nb := range imp.Named {
			if ctx.Graph.HasExport(imp.Target, nb.Name) {
				continue
			}
			ctx.Report(nb.Span, fmt.Sprintf("%s not found in '%s'.", nb.Name, imp.Specifier))
		}
	}
}

type importNoCycle struct{}

func (importNoCycle) Meta() Meta {
	return Meta{
		Name:            "import/no-cycle",
		Description:     "disallow import cycles reachable from this file",
		DefaultSeverity: diag.SevError,
		NeedsGraph:      true,
	}
}

func (importNoCycle) Check(ctx *Context) {
	c, ok := ctx.Graph.CycleFrom(ctx.File.ID)
	if !ok {
		return
	}
	ctx.Report(c.At, fmt.Sprintf("Dependency cycle detected: %s.", strings.Join(c.Path, " -> ")))
}
