// Package report renders lint results for the terminal: issues grouped by
// file with aligned columns, severity coloring, and a run summary.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"relint/internal/diag"
	"relint/internal/source"
)

// FileIssues is one file's surviving issues in report order.
type FileIssues struct {
	Path   string
	Issues []diag.Issue
}

// Options controls rendering.
type Options struct {
	// Color enables ANSI coloring.
	Color bool
	// Quiet drops warning-severity issues from the listing.
	Quiet bool
}

type palette struct {
	path *color.Color
	err  *color.Color
	warn *color.Color
	dim  *color.Color
}

func newPalette(enabled bool) palette {
	if !enabled {
		return palette{}
	}
	return palette{
		path: color.New(color.Underline),
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		dim:  color.New(color.Faint),
	}
}

func (p palette) paint(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

func sevLabel(s diag.Severity) string {
	if s >= diag.SevError {
		return "error"
	}
	return "warning"
}

// Write renders every file's issues. Files without issues are omitted.
func Write(w io.Writer, fs *source.FileSet, files []FileIssues, opts Options) {
	pal := newPalette(opts.Color)
	for _, fi := range files {
		issues := fi.Issues
		if opts.Quiet {
			issues = filterErrors(issues)
		}
		if len(issues) == 0 {
			continue
		}
		fmt.Fprintln(w, pal.paint(pal.path, fi.Path))

		posWidth, msgWidth := 0, 0
		positions := make([]string, len(issues))
		for i, is := range issues {
			positions[i] = position(fs, is)
			if n := runewidth.StringWidth(positions[i]); n > posWidth {
				posWidth = n
			}
			if n := runewidth.StringWidth(is.Message); n > msgWidth {
				msgWidth = n
			}
		}
		for i, is := range issues {
			sev := sevLabel(is.Severity)
			sevColor := pal.warn
			if is.Severity >= diag.SevError {
				sevColor = pal.err
			}
			fmt.Fprintf(w, "  %s  %s  %s  %s\n",
				pal.paint(pal.dim, pad(positions[i], posWidth)),
				pal.paint(sevColor, pad(sev, 7)),
				pad(is.Message, msgWidth),
				pal.paint(pal.dim, is.Rule),
			)
		}
		fmt.Fprintln(w)
	}
}

// Summary prints the run totals the way CI logs expect them.
func Summary(w io.Writer, errors, warnings, fixable int, opts Options) {
	total := errors + warnings
	if total == 0 {
		return
	}
	pal := newPalette(opts.Color)
	c := pal.warn
	if errors > 0 {
		c = pal.err
	}
	line := fmt.Sprintf("✖ %d %s (%d %s, %d %s)",
		total, plural(total, "problem"),
		errors, plural(errors, "error"),
		warnings, plural(warnings, "warning"))
	fmt.Fprintln(w, pal.paint(c, line))
	if fixable > 0 {
		fmt.Fprintf(w, "  %d %s potentially fixable with the --fix option\n",
			fixable, plural(fixable, "issue"))
	}
}

func filterErrors(issues []diag.Issue) []diag.Issue {
	var out []diag.Issue
	for _, is := range issues {
		if is.Severity >= diag.SevError {
			out = append(out, is)
		}
	}
	return out
}

// position renders "line:col" for an issue, or "-" for run-level issues
// that carry no span (e.g. unreadable files).
func position(fs *source.FileSet, is diag.Issue) string {
	if fs == nil || (is.Primary == (source.Span{}) && is.Rule == "") {
		return "-"
	}
	start, _ := fs.Resolve(is.Primary)
	return fmt.Sprintf("%d:%d", start.Line, start.Col)
}

// pad right-pads to a display width, counting wide runes correctly.
func pad(s string, width int) string {
	gap := width - runewidth.StringWidth(s)
	for gap > 0 {
		s += " "
		gap--
	}
	return s
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
