// Package diag defines the issue model shared by every lint phase.
//
// Issue is the central record: a rule id, a severity, a message, the primary
// source.Span, and an optional Fix. Fixes are intentionally data-only — a
// Fix carries concrete TextEdits (span + new/old text) and nothing else;
// materialising them against file contents is the job of internal/fix.
//
// Producers emit through a Reporter so they stay decoupled from storage.
// BagReporter aggregates into a Bag, which supports sorting, deduplication,
// filtering and counting; DedupReporter drops repeats before they reach the
// bag. Rendering responsibilities live in internal/report, orchestration in
// internal/engine.
//
// Keep the data model deterministic: identical input files and configuration
// must produce byte-identical sorted bags, since the engine relies on that
// for reproducible output and for the on-disk result cache.
package diag
