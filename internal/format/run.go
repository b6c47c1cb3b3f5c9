package format

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"relint/internal/fix"
	"relint/internal/scan"
	"relint/internal/source"
)

// RunOptions configures a formatting pass over a file list.
type RunOptions struct {
	// Mode selects write, check, or dry-run behavior.
	Mode fix.Mode
	// Jobs bounds the worker pool; <= 0 means GOMAXPROCS.
	Jobs int
	// Style tunes the canonical style.
	Style Options
}

// FileOutcome is one file's formatting result.
type FileOutcome struct {
	Path   string
	Result fix.FileResult
	Err    error
}

// RunResult aggregates a formatting pass.
type RunResult struct {
	Files   []FileOutcome
	Changed int
	Failed  int
}

// Run formats the given files concurrently. Per-file failures land in the
// outcome list; only cancellation aborts the pass.
func Run(ctx context.Context, paths []string, opts RunOptions) (*RunResult, error) {
	fileSet := source.NewFileSet()
	outcomes := make([]FileOutcome, len(paths))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	ids := make([]source.FileID, len(paths))
	loadErrors := make([]error, len(paths))
	for i, path := range paths {
		ids[i], loadErrors[i] = fileSet.Load(path)
	}

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
			outcomes[i] = FileOutcome{Path: path}
			if loadErrors[i] != nil {
				outcomes[i].Err = loadErrors[i]
				return nil
			}
			f := fileSet.Get(ids[i])
			idx := scan.NewIndex(f)
			edits := Edits(idx, opts.Style)
			if len(edits) == 0 {
				return nil
			}
			res, err := fix.ApplyToFile(f, edits, opts.Mode)
			outcomes[i].Result = res
			outcomes[i].Err = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	run := &RunResult{Files: outcomes}
	for _, o := range outcomes {
		if o.Err != nil {
			run.Failed++
			continue
		}
		if o.Result.Changed {
			run.Changed++
		}
	}
	return run, nil
}
