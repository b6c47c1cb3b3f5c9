package fix

import (
	"os"
	"path/filepath"
	"testing"

	"relint/internal/diag"
	"relint/internal/source"
)

func edit(start, end uint32, newText string) diag.TextEdit {
	return diag.TextEdit{Span: source.Span{Start: start, End: end}, NewText: newText}
}

func TestApplySingleEdit(t *testing.T) {
	out := Apply([]byte("var x = 1"), []diag.TextEdit{edit(0, 3, "let")})
	if string(out.Text) != "let x = 1" {
		t.Fatalf("text = %q", out.Text)
	}
	if out.Applied != 1 || len(out.Skipped) != 0 {
		t.Errorf("applied=%d skipped=%d", out.Applied, len(out.Skipped))
	}
}

func TestApplyMultipleEditsLeftToRight(t *testing.T) {
	text := []byte("var a = 1\nvar b = 2\n")
	out := Apply(text, []diag.TextEdit{
		edit(10, 13, "let"),
		edit(0, 3, "let"),
	})
	if string(out.Text) != "let a = 1\nlet b = 2\n" {
		t.Fatalf("text = %q", out.Text)
	}
	if out.Applied != 2 {
		t.Errorf("applied = %d, want 2", out.Applied)
	}
}

func TestApplyOverlapSkippedNotCorrupted(t *testing.T) {
	text := []byte("abcdefgh")
	out := Apply(text, []diag.TextEdit{
		edit(0, 4, "XXXX"),
		edit(2, 6, "YYYY"),
		edit(6, 8, "ZZ"),
	})
	if string(out.Text) != "XXXXefZZ" {
		t.Fatalf("text = %q", out.Text)
	}
	if out.Applied != 2 || len(out.Skipped) != 1 {
		t.Fatalf("applied=%d skipped=%d", out.Applied, len(out.Skipped))
	}
	if out.Skipped[0].Edit.Span.Start != 2 {
		t.Errorf("wrong edit skipped: %+v", out.Skipped[0])
	}
}

func TestApplyOldTextGuard(t *testing.T) {
	text := []byte("debugger;")
	stale := diag.TextEdit{Span: source.Span{Start: 0, End: 9}, NewText: "", OldText: "console.log"}
	out := Apply(text, []diag.TextEdit{stale})
	if out.Applied != 0 || len(out.Skipped) != 1 {
		t.Fatalf("stale guard not enforced: %+v", out)
	}
	if string(out.Text) != "debugger;" {
		t.Errorf("text mutated despite guard: %q", out.Text)
	}
}

func TestApplyOutOfRangeSkipped(t *testing.T) {
	out := Apply([]byte("ab"), []diag.TextEdit{edit(1, 9, "x")})
	if out.Applied != 0 || len(out.Skipped) != 1 {
		t.Fatalf("out-of-range edit applied: %+v", out)
	}
}

func TestApplyZeroLengthInsertions(t *testing.T) {
	text := []byte("ab")
	out := Apply(text, []diag.TextEdit{edit(2, 2, "\n")})
	if string(out.Text) != "ab\n" {
		t.Fatalf("text = %q", out.Text)
	}

	out = Apply(text, []diag.TextEdit{edit(1, 1, "-"), edit(0, 2, "XX")})
	if out.Applied != 1 || len(out.Skipped) != 1 {
		t.Fatalf("insertion inside a replacement not skipped: %+v", out)
	}
	if string(out.Text) != "-ab" && string(out.Text) != "XX" {
		t.Fatalf("unexpected text %q", out.Text)
	}
}

func TestApplyNoEdits(t *testing.T) {
	text := []byte("unchanged")
	out := Apply(text, nil)
	if out.Changed() || string(out.Text) != "unchanged" {
		t.Fatalf("no-edit apply changed text: %+v", out)
	}
}

func TestApplyStableOrderIndependence(t *testing.T) {
	text := []byte("0123456789")
	a := []diag.TextEdit{edit(0, 2, "AA"), edit(4, 6, "BB"), edit(8, 10, "CC")}
	b := []diag.TextEdit{a[2], a[0], a[1]}
	outA := Apply(text, a)
	outB := Apply(text, b)
	if string(outA.Text) != string(outB.Text) {
		t.Fatalf("input order changed result: %q vs %q", outA.Text, outB.Text)
	}
}

func TestApplyToFileWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.js")
	if err := os.WriteFile(path, []byte("var x = 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	f := fs.Get(id)

	res, err := ApplyToFile(f, []diag.TextEdit{{
		Span:    source.Span{File: id, Start: 0, End: 3},
		NewText: "let",
		OldText: "var",
	}}, ModeWrite)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Changed || res.Applied != 1 {
		t.Fatalf("result = %+v", res)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "let x = 1\n" {
		t.Errorf("file content = %q", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("file mode not preserved: %v", info.Mode())
	}
}

func TestApplyToFileCheckDoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.js")
	if err := os.WriteFile(path, []byte("var x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	res, err := ApplyToFile(fs.Get(id), []diag.TextEdit{edit(0, 3, "let")}, ModeCheck)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Changed {
		t.Errorf("check mode did not report a pending change")
	}
	got, _ := os.ReadFile(path)
	if string(got) != "var x = 1\n" {
		t.Errorf("check mode wrote to disk: %q", got)
	}
}

func TestApplyToFileDryRunSurfacesText(t *testing.T) {
	fsys := source.NewFileSet()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.js")
	if err := os.WriteFile(path, []byte("var x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	id, err := fsys.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	res, err := ApplyToFile(fsys.Get(id), []diag.TextEdit{edit(0, 3, "let")}, ModeDryRun)
	if err != nil {
		t.Fatal(err)
	}
	if string(res.NewText) != "let x = 1\n" {
		t.Errorf("dry-run text = %q", res.NewText)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "var x = 1\n" {
		t.Errorf("dry run wrote to disk: %q", got)
	}
}

func TestApplyToFileVirtualRejected(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("virt.js", []byte("var x = 1\n"))
	if _, err := ApplyToFile(fs.Get(id), []diag.TextEdit{edit(0, 3, "let")}, ModeWrite); err == nil {
		t.Fatal("virtual file accepted for writing")
	}
}
