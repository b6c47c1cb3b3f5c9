package engine

import (
	"relint/internal/cache"
	"relint/internal/diag"
	"relint/internal/directive"
	"relint/internal/fix"
	"relint/internal/rules"
	"relint/internal/scan"
	"relint/internal/scope"
	"relint/internal/source"
)

// index returns the zone index for a file, reusing the shared partition
// cache when one is attached to the run. Cached partitions are rebound
// to f so spans never carry another file's identity.
func (rc *runContext) index(f *source.File) *scan.Index {
	key := cache.IndexKey{Content: cache.Digest(f.Hash), Format: f.Format}
	if zones, ok := rc.indexes.Get(key); ok {
		return scan.IndexFromZones(f, zones)
	}
	idx := scan.NewIndex(f)
	rc.indexes.Put(key, idx.Zones())
	return idx
}

// lintFile runs every enabled rule for the file's format, filters through
// the collected suppressions, and applies fixes per the run mode.
func (rc *runContext) lintFile(id source.FileID) FileVerdict {
	f := rc.fs.Get(id)
	verdict := FileVerdict{Path: f.Path}
	if f.Format == source.FormatOther {
		return verdict
	}
	markdown := f.Format == source.FormatMarkdown
	slots := rc.codeRules
	if markdown {
		slots = rc.mdRules
	}
	if len(slots) == 0 {
		return verdict
	}

	var key cache.Digest
	if rc.disk != nil {
		key = cache.Key(f.Content, f.Format, rc.fingerprint, rc.ruleIDs)
		if entry, hit, err := rc.disk.Get(key); err == nil && hit {
			verdict.Issues = entry.Unpack(id)
			return verdict
		}
	}

	idx := rc.index(f)
	bag := diag.NewBag(rc.maxIssues)
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: bag})

	var tokens []scan.Token
	var tree *scope.Tree
	if !markdown {
		tokens = scan.Tokenize(idx)
		if rc.needsScope {
			tree = scope.Resolve(idx, scope.Options{IgnorePattern: rc.ignore})
		}
	}
	for _, slot := range slots {
		rctx := &rules.Context{
			Rule:     slot.meta.Name,
			Severity: slot.sev,
			Reporter: rep,
			File:     f,
			Index:    idx,
			Tokens:   tokens,
			Options:  rc.cfg.Options,
		}
		if slot.meta.NeedsScope {
			rctx.Scope = tree
		}
		if slot.meta.NeedsGraph {
			rctx.Graph = rc.graph
		}
		slot.rule.Check(rctx)
	}

	supp := directive.Collect(idx)
	before := bag.Len()
	bag.Filter(func(is diag.Issue) bool {
		return !supp.Covers(is.Rule, f.LineAt(is.Primary.Start))
	})
	verdict.Suppressed = before - bag.Len()
	bag.Sort()

	if rc.fixMode != FixNone {
		verdict.Fix = rc.applyFixes(f, bag)
	}
	verdict.Issues = bag.Items()

	if rc.disk != nil {
		// Best effort: a failed cache write never fails the run.
		_ = rc.disk.Put(key, cache.Pack(verdict.Issues))
	}
	return verdict
}

type editKey struct {
	start   uint32
	end     uint32
	newText string
}

// applyFixes gathers the bag's edits and runs them through the fix engine.
// In write and dry-run modes, issues whose edits all applied are removed
// from the report; issues with conflicting edits stay.
func (rc *runContext) applyFixes(f *source.File, bag *diag.Bag) *fix.FileResult {
	var edits []diag.TextEdit
	for _, is := range bag.Items() {
		if is.Fix != nil {
			edits = append(edits, is.Fix.Edits...)
		}
	}
	if len(edits) == 0 {
		return nil
	}

	mode := fix.ModeCheck
	switch rc.fixMode {
	case FixWrite:
		mode = fix.ModeWrite
	case FixDryRun:
		mode = fix.ModeDryRun
	}
	res, err := fix.ApplyToFile(f, edits, mode)
	if err != nil {
		bag.Add(diag.Issue{
			Severity: diag.SevError,
			Message:  "failed to apply fixes: " + err.Error(),
			Primary:  source.Span{File: f.ID},
		})
		return &res
	}
	if rc.fixMode == FixWrite || rc.fixMode == FixDryRun {
		skipped := make(map[editKey]bool, len(res.Skipped))
		for _, c := range res.Skipped {
			skipped[editKey{c.Edit.Span.Start, c.Edit.Span.End, c.Edit.NewText}] = true
		}
		bag.Filter(func(is diag.Issue) bool {
			if is.Fix == nil {
				return true
			}
			for _, e := range is.Fix.Edits {
				if skipped[editKey{e.Span.Start, e.Span.End, e.NewText}] {
					return true
				}
			}
			return false
		})
	}
	return &res
}
