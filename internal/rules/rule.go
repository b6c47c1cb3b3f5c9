// Package rules holds the rule catalog and the registry the engine executes
// from. A rule declares what it needs (scope tree, module graph, markdown
// input) through its Meta; the engine builds those inputs lazily and only
// when an enabled rule asks for them.
package rules

import (
	"relint/internal/diag"
	"relint/internal/modgraph"
	"relint/internal/scan"
	"relint/internal/scope"
	"relint/internal/source"
)

// Meta describes a rule for the registry and the catalog listing.
type Meta struct {
	Name            string
	Description     string
	DefaultSeverity diag.Severity
	Fixable         bool
	NeedsScope      bool
	NeedsGraph      bool
	Markdown        bool // runs on markdown files instead of code files
}

// Rule is one executable check.
type Rule interface {
	Meta() Meta
	Check(ctx *Context)
}

// Context carries the per-file inputs a rule may consult. Scope and Graph
// are nil unless the rule's Meta requested them.
type Context struct {
	Rule     string
	Severity diag.Severity
	Reporter diag.Reporter

	File    *source.File
	Index   *scan.Index
	Tokens  []scan.Token // code-zone tokens, shared across token-walking rules
	Scope   *scope.Tree
	Graph   *modgraph.Graph
	Options *OptionSet
}

// Report emits an issue under the context's rule id and severity.
func (c *Context) Report(span source.Span, msg string) {
	c.Reporter.Report(c.Rule, c.Severity, span, msg, nil)
}

// ReportFix emits an issue carrying a suggested fix.
func (c *Context) ReportFix(span source.Span, msg string, fx *diag.Fix) {
	c.Reporter.Report(c.Rule, c.Severity, span, msg, fx)
}
