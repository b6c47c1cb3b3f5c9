// Package engine runs the configured rule set over a set of files and
// aggregates the per-file verdicts into a run result. All run-level state
// lives in an explicit per-run context; nothing is retained across runs.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"runtime"

	"golang.org/x/sync/errgroup"

	"relint/internal/cache"
	"relint/internal/config"
	"relint/internal/diag"
	"relint/internal/fix"
	"relint/internal/modgraph"
	"relint/internal/observ"
	"relint/internal/rules"
	"relint/internal/source"
)

// FixMode selects what happens to autofixable issues.
type FixMode uint8

const (
	// FixNone reports issues without touching fixes.
	FixNone FixMode = iota
	// FixWrite applies fixes and rewrites files on disk.
	FixWrite
	// FixDryRun simulates fixes and surfaces the rewritten text.
	FixDryRun
	// FixCheck reports whether fixes would change any file.
	FixCheck
)

// Options configures one run.
type Options struct {
	// Paths are the files and directories to lint.
	Paths []string
	// Config is the validated configuration; nil means config.Default().
	Config *config.Config
	// Jobs bounds the worker pool; <= 0 means GOMAXPROCS.
	Jobs int
	// Fix selects the fix mode.
	Fix FixMode
	// Disk is the optional verdict cache; nil disables it. Fix runs
	// bypass it either way.
	Disk *cache.Disk
	// Indexes is the optional zone-index cache shared across runs.
	Indexes *cache.IndexCache
	// MaxIssuesPerFile caps the per-file bag; <= 0 means 1000.
	MaxIssuesPerFile int
	// Timer, when set, records phase durations.
	Timer *observ.Timer
}

// FileVerdict is one file's outcome.
type FileVerdict struct {
	Path       string
	Issues     []diag.Issue
	Suppressed int
	Fix        *fix.FileResult
}

// Result aggregates a whole run.
type Result struct {
	FileSet    *source.FileSet
	Files      []FileVerdict
	Errors     int
	Warnings   int
	Suppressed int
	// ExitCode is 0 when no errors remain and warnings are within the
	// configured cap, 1 otherwise.
	ExitCode int
}

// Issues returns every surviving issue in report order.
func (r *Result) Issues() []diag.Issue {
	var out []diag.Issue
	for _, v := range r.Files {
		out = append(out, v.Issues...)
	}
	return out
}

// WouldChange reports whether any file has unapplied formatting or fixes,
// used by check mode to fail CI.
func (r *Result) WouldChange() bool {
	for _, v := range r.Files {
		if v.Fix != nil && v.Fix.Changed {
			return true
		}
	}
	return false
}

type ruleSlot struct {
	rule rules.Rule
	meta rules.Meta
	sev  diag.Severity
}

// runContext holds everything a worker needs. It is built once per run by
// a single goroutine and is read-only during rule execution (the index
// cache locks internally).
type runContext struct {
	fs          *source.FileSet
	cfg         *config.Config
	codeRules   []ruleSlot
	mdRules     []ruleSlot
	graph       *modgraph.Graph
	indexes     *cache.IndexCache
	disk        *cache.Disk
	ignore      *regexp.Regexp
	fingerprint string
	ruleIDs     []string
	maxIssues   int
	fixMode     FixMode
	needsScope  bool
}

// Run lints the configured paths. Only configuration-level failures return
// an error; per-file problems become issues in the result.
func Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	maxIssues := opts.MaxIssuesPerFile
	if maxIssues <= 0 {
		maxIssues = 1000
	}

	rc := &runContext{
		cfg:         cfg,
		indexes:     opts.Indexes,
		maxIssues:   maxIssues,
		fixMode:     opts.Fix,
		fingerprint: cfg.Fingerprint(),
	}
	if opts.Fix == FixNone {
		rc.disk = opts.Disk
	}
	needsGraph := false
	for _, r := range rules.All() {
		meta := r.Meta()
		sev := cfg.Rules[meta.Name]
		if sev == diag.SevOff {
			continue
		}
		slot := ruleSlot{rule: r, meta: meta, sev: sev}
		if meta.Markdown {
			rc.mdRules = append(rc.mdRules, slot)
		} else {
			rc.codeRules = append(rc.codeRules, slot)
			rc.needsScope = rc.needsScope || meta.NeedsScope
			needsGraph = needsGraph || meta.NeedsGraph
		}
		rc.ruleIDs = append(rc.ruleIDs, meta.Name)
	}
	rc.ignore = cfg.IgnorePattern
	if p := cfg.Options.NoUnusedVars.IgnorePattern; p != "" {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid no-unused-vars ignore-pattern: %w", err)
		}
		rc.ignore = re
	}

	timer := opts.Timer
	phase := func(name string) int {
		if timer == nil {
			return -1
		}
		return timer.Begin(name)
	}
	done := func(idx int, note string) {
		if timer != nil {
			timer.End(idx, note)
		}
	}

	p := phase("discover")
	paths, err := DiscoverFiles(opts.Paths, cfg)
	if err != nil {
		return nil, err
	}
	done(p, fmt.Sprintf("%d files", len(paths)))

	p = phase("load")
	rc.fs = source.NewFileSet()
	fileIDs := make([]source.FileID, len(paths))
	loadErrors := make([]error, len(paths))
	var loaded []source.FileID
	for i, path := range paths {
		id, err := rc.fs.Load(path)
		if err != nil {
			loadErrors[i] = err
			continue
		}
		fileIDs[i] = id
		loaded = append(loaded, id)
	}
	done(p, "")

	if needsGraph {
		p = phase("graph")
		rc.graph = modgraph.Build(rc.fs, loaded, modgraph.Options{Index: rc.index})
		done(p, "")
	}

	p = phase("lint")
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	verdicts := make([]FileVerdict, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	if len(paths) > 0 {
		g.SetLimit(min(jobs, len(paths)))
	}
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if loadErrors[i] != nil {
				verdicts[i] = FileVerdict{
					Path: path,
					Issues: []diag.Issue{{
						Severity: diag.SevError,
						Message:  "failed to load file: " + loadErrors[i].Error(),
					}},
				}
				return nil
			}
			verdicts[i] = rc.lintFile(fileIDs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	done(p, "")

	res := &Result{FileSet: rc.fs, Files: verdicts}
	for _, v := range verdicts {
		res.Suppressed += v.Suppressed
		for _, is := range v.Issues {
			switch is.Severity {
			case diag.SevError:
				res.Errors++
			case diag.SevWarning:
				res.Warnings++
			}
		}
	}
	if res.Errors > 0 || (cfg.MaxWarnings >= 0 && res.Warnings > cfg.MaxWarnings) {
		res.ExitCode = 1
	}
	return res, nil
}
