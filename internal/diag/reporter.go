package diag

import "relint/internal/source"

// Reporter is the minimal contract rules use to emit issues.
// Implementations: BagReporter (stores in a Bag), DedupReporter (fan-in filter).
type Reporter interface {
	Report(rule string, sev Severity, primary source.Span, msg string, fix *Fix)
}

// BagReporter writes every reported issue into a Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(rule string, sev Severity, primary source.Span, msg string, fix *Fix) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Issue{
		Rule: rule, Severity: sev, Message: msg,
		Primary: primary, Fix: fix,
	})
}

type dedupKey struct {
	rule  string
	sev   Severity
	file  source.FileID
	start uint32
	end   uint32
	msg   string
}

// DedupReporter wraps another Reporter and suppresses duplicate issues with
// the same rule, severity, primary span and message.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

// NewDedupReporter returns a Reporter that forwards only unique issues.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(rule string, sev Severity, primary source.Span, msg string, fix *Fix) {
	if r == nil {
		return
	}
	key := dedupKey{
		rule:  rule,
		sev:   sev,
		file:  primary.File,
		start: primary.Start,
		end:   primary.End,
		msg:   msg,
	}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(rule, sev, primary, msg, fix)
	}
}
