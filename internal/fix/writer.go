package fix

import (
	"fmt"
	"os"
	"path/filepath"

	"relint/internal/diag"
	"relint/internal/source"
)

// Mode selects what happens with the rewritten text.
type Mode uint8

const (
	// ModeWrite rewrites the file on disk.
	ModeWrite Mode = iota
	// ModeCheck only reports whether edits would change the file.
	ModeCheck
	// ModeDryRun simulates the rewrite and surfaces the outcome without
	// touching disk.
	ModeDryRun
)

// FileResult summarises one file's fix application.
type FileResult struct {
	Path    string
	Applied int
	Skipped []Conflict
	Changed bool
	NewText []byte // populated for ModeDryRun
}

// ApplyToFile runs the edits against a file's content and, in write mode,
// persists the result. Writes are all-or-nothing: the new content goes to a
// temp file in the same directory and is renamed over the original, so an
// aborted run never leaves a partially written file.
func ApplyToFile(f *source.File, edits []diag.TextEdit, mode Mode) (FileResult, error) {
	res := FileResult{Path: f.Path}
	if f.Flags&source.FileVirtual != 0 {
		return res, fmt.Errorf("fix: %s is virtual", f.Path)
	}

	out := Apply(f.Content, edits)
	res.Applied = out.Applied
	res.Skipped = out.Skipped
	res.Changed = out.Changed()

	switch mode {
	case ModeCheck:
		return res, nil
	case ModeDryRun:
		if res.Changed {
			res.NewText = out.Text
		}
		return res, nil
	}

	if !res.Changed {
		return res, nil
	}
	if err := writeAtomic(f.Path, out.Text); err != nil {
		return res, err
	}
	return res, nil
}

// writeAtomic writes data to a sibling temp file and renames it over path,
// preserving the original file mode when it can be read.
func writeAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".relint-*.tmp")
	if err != nil {
		return fmt.Errorf("fix: create temp in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("fix: write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("fix: close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("fix: chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("fix: rename over %s: %w", path, err)
	}
	return nil
}
