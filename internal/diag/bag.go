package diag

import (
	"fmt"
	"sort"
)

// Bag accumulates issues produced by rules for one file or one run.
type Bag struct {
	items []Issue
	max   uint16
}

// NewBag creates a bag holding at most max issues.
func NewBag(max int) *Bag {
	return &Bag{
		items: make([]Issue, 0, max),
		max:   uint16(max),
	}
}

// Add appends an issue, honoring the limit.
// Returns false when the issue was dropped because the bag is full.
func (b *Bag) Add(i Issue) bool {
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, i)
	return true
}

func (b *Bag) Cap() uint16 {
	return b.max
}

func (b *Bag) Len() int {
	return len(b.items)
}

// HasErrors reports whether at least one error-severity issue is present.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// Counts returns the number of error and warning issues.
func (b *Bag) Counts() (errors, warnings int) {
	for i := range b.items {
		switch b.items[i].Severity {
		case SevError:
			errors++
		case SevWarning:
			warnings++
		}
	}
	return errors, warnings
}

// Items returns a read-only view of the accumulated issues.
// Callers must not modify the returned slice.
func (b *Bag) Items() []Issue {
	return b.items
}

// Merge appends all issues from the other bag, growing max as needed.
func (b *Bag) Merge(other *Bag) {
	newTotal := len(b.items) + len(other.items)
	if uint16(newTotal) > b.max {
		b.max = uint16(newTotal)
	}
	b.items = append(b.items, other.items...)
}

// Filter keeps only issues for which keep returns true.
func (b *Bag) Filter(keep func(Issue) bool) {
	out := b.items[:0]
	for _, i := range b.items {
		if keep(i) {
			out = append(out, i)
		}
	}
	b.items = out
}

// Sort orders issues by file, start, end, severity (desc), rule id for a
// stable, deterministic report order.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Rule < dj.Rule
	})
}

// Dedup removes issues that repeat an earlier rule+span combination.
func (b *Bag) Dedup() {
	seen := make(map[string]bool)
	newitems := make([]Issue, 0, len(b.items))
	for _, i := range b.items {
		key := fmt.Sprintf("%s:%s", i.Rule, i.Primary.String())
		if seen[key] {
			continue
		}
		seen[key] = true
		newitems = append(newitems, i)
	}
	b.items = newitems
}
