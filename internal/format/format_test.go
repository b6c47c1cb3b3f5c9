package format

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"relint/internal/fix"
	"relint/internal/scan"
	"relint/internal/source"
)

func formatText(t *testing.T, name, text string) string {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.Add(name, []byte(text), source.DetectFormat(filepath.Ext(name)), 0)
	idx := scan.NewIndex(fs.Get(id))
	edits := Edits(idx, Options{})
	out := fix.Apply([]byte(text), edits)
	if len(out.Skipped) > 0 {
		t.Fatalf("formatter produced conflicting edits: %v", out.Skipped)
	}
	return string(out.Text)
}

func TestTrailingWhitespaceTrimmed(t *testing.T) {
	got := formatText(t, "a.js", "let x = 1;  \nlet y = 2;\t\n")
	want := "let x = 1;\nlet y = 2;\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStringLiteralInteriorPreserved(t *testing.T) {
	// The unterminated string claims the rest of the line, trailing
	// spaces included.
	text := "const s = 'abc  \nlet y = 2;\n"
	if got := formatText(t, "a.js", text); got != text {
		t.Errorf("string interior rewritten: %q", got)
	}
}

func TestFinalNewlineAdded(t *testing.T) {
	if got := formatText(t, "a.js", "let x = 1;"); got != "let x = 1;\n" {
		t.Errorf("got %q", got)
	}
}

func TestBlankRunsCollapsed(t *testing.T) {
	got := formatText(t, "a.js", "a();\n\n\n\nb();\n")
	want := "a();\n\nb();\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBlankLineWhitespaceTrimmed(t *testing.T) {
	got := formatText(t, "a.js", "a();\n   \nb();\n")
	want := "a();\n\nb();\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTrailingBlankLinesRemoved(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a();\n\n\n", "a();\n"},
		{"a();\n  ", "a();\n"},
		{"a();\n\n  \n\t", "a();\n"},
	}
	for _, tc := range tests {
		if got := formatText(t, "a.js", tc.in); got != tc.want {
			t.Errorf("formatText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMarkdownHardBreaks(t *testing.T) {
	tests := []struct{ in, want string }{
		{"para  \nmore\n", "para  \nmore\n"},
		{"para     \nmore\n", "para  \nmore\n"},
		{"para \nmore\n", "para\nmore\n"},
		{"para\t\nmore\n", "para\nmore\n"},
	}
	for _, tc := range tests {
		if got := formatText(t, "a.md", tc.in); got != tc.want {
			t.Errorf("formatText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMarkdownHeadingNormalized(t *testing.T) {
	tests := []struct{ in, want string }{
		{"#Title\n", "# Title\n"},
		{"##   Sub\n", "## Sub\n"},
		{"# Fine\n", "# Fine\n"},
		{"####### seven\n", "####### seven\n"},
	}
	for _, tc := range tests {
		if got := formatText(t, "a.md", tc.in); got != tc.want {
			t.Errorf("formatText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMarkdownFencedBlockUntouched(t *testing.T) {
	text := "intro\n\n```\n#not a heading\ncode  \n\n\n\nmore\n```\n"
	if got := formatText(t, "a.md", text); got != text {
		t.Errorf("fenced block rewritten: %q", got)
	}
}

func TestFormatIdempotence(t *testing.T) {
	inputs := []struct{ name, text string }{
		{"a.js", "let x = 1;  \n\n\n\nconsole.log(x)"},
		{"a.md", "#Title\n\n\n\npara     \nmore\n\n\n"},
	}
	for _, tc := range inputs {
		once := formatText(t, tc.name, tc.text)
		twice := formatText(t, tc.name, once)
		if once != twice {
			t.Errorf("%s: not idempotent:\nonce:  %q\ntwice: %q", tc.name, once, twice)
		}
	}
}

func TestRunCheckThenWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.js")
	messy := "let x = 1;  \n\n\n\nconsole.log(x)"
	if err := os.WriteFile(path, []byte(messy), 0o644); err != nil {
		t.Fatal(err)
	}

	check, err := Run(context.Background(), []string{path}, RunOptions{Mode: fix.ModeCheck})
	if err != nil {
		t.Fatalf("Run(check): %v", err)
	}
	if check.Changed != 1 {
		t.Errorf("check Changed = %d, want 1", check.Changed)
	}
	content, _ := os.ReadFile(path)
	if string(content) != messy {
		t.Errorf("check mode modified the file: %q", content)
	}

	write, err := Run(context.Background(), []string{path}, RunOptions{Mode: fix.ModeWrite})
	if err != nil {
		t.Fatalf("Run(write): %v", err)
	}
	if write.Changed != 1 {
		t.Errorf("write Changed = %d, want 1", write.Changed)
	}
	content, _ = os.ReadFile(path)
	want := "let x = 1;\n\nconsole.log(x)\n"
	if string(content) != want {
		t.Errorf("written file = %q, want %q", content, want)
	}

	again, err := Run(context.Background(), []string{path}, RunOptions{Mode: fix.ModeWrite})
	if err != nil {
		t.Fatalf("Run(write, formatted): %v", err)
	}
	if again.Changed != 0 {
		t.Errorf("formatted file changed again: %d", again.Changed)
	}
}
