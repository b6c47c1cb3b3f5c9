package rules

import (
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"relint/internal/diag"
	"relint/internal/fix"
	"relint/internal/modgraph"
	"relint/internal/scan"
	"relint/internal/scope"
	"relint/internal/source"
)

func runRule(t *testing.T, name, filename, text string) []diag.Issue {
	t.Helper()
	return runRuleOpts(t, name, filename, text, DefaultOptions())
}

func runRuleOpts(t *testing.T, name, filename, text string, opts *OptionSet) []diag.Issue {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.Add(filename, []byte(text), source.DetectFormat(filepath.Ext(filename)), 0)
	return runRuleOn(t, name, fs, []source.FileID{id}, id, opts)
}

func runGraphRule(t *testing.T, name string, files map[string]string, target string) []diag.Issue {
	t.Helper()
	fs := source.NewFileSet()
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	ids := make([]source.FileID, 0, len(paths))
	var targetID source.FileID
	for _, p := range paths {
		id := fs.Add(p, []byte(files[p]), source.DetectFormat(filepath.Ext(p)), 0)
		ids = append(ids, id)
		if p == target {
			targetID = id
		}
	}
	return runRuleOn(t, name, fs, ids, targetID, DefaultOptions())
}

func runRuleOn(t *testing.T, name string, fs *source.FileSet, ids []source.FileID, target source.FileID, opts *OptionSet) []diag.Issue {
	t.Helper()
	r, ok := Get(name)
	if !ok {
		t.Fatalf("rule %q not registered", name)
	}
	meta := r.Meta()

	f := fs.Get(target)
	idx := scan.NewIndex(f)
	bag := diag.NewBag(100)
	ctx := &Context{
		Rule:     name,
		Severity: meta.DefaultSeverity,
		Reporter: diag.BagReporter{Bag: bag},
		File:     f,
		Index:    idx,
		Options:  opts,
	}
	if !meta.Markdown {
		ctx.Tokens = scan.Tokenize(idx)
	}
	if meta.NeedsScope {
		ctx.Scope = scope.Resolve(idx, scope.Options{})
	}
	if meta.NeedsGraph {
		ctx.Graph = modgraph.Build(fs, ids, modgraph.Options{})
	}
	r.Check(ctx)
	bag.Sort()
	return bag.Items()
}

func applyFixes(t *testing.T, text string, issues []diag.Issue) string {
	t.Helper()
	var edits []diag.TextEdit
	for _, iss := range issues {
		if iss.Fix != nil {
			edits = append(edits, iss.Fix.Edits...)
		}
	}
	out := fix.Apply([]byte(text), edits)
	if len(out.Skipped) != 0 {
		t.Fatalf("fix conflicts: %+v", out.Skipped)
	}
	return string(out.Text)
}

func TestRegistryCatalog(t *testing.T) {
	want := []string{
		"import/named", "import/no-cycle", "import/no-unresolved",
		"md/heading-space",
		"no-console", "no-debugger", "no-empty-pattern", "no-shadow",
		"no-unused-vars", "no-var", "prefer-const",
	}
	got := Names()
	if len(got) != len(want) {
		t.Fatalf("registry has %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("registry order: got %v, want %v", got, want)
		}
	}
	if _, ok := Get("no-such-rule"); ok {
		t.Errorf("Get accepted an unknown id")
	}
}

func TestNoUnusedVarsBasics(t *testing.T) {
	issues := runRule(t, "no-unused-vars", "a.js", "const a = 1\nconsole.log(b)\n")
	if len(issues) != 1 {
		t.Fatalf("issues = %+v, want one for 'a'", issues)
	}
	if !strings.Contains(issues[0].Message, "'a'") {
		t.Errorf("message = %q", issues[0].Message)
	}
}

func TestNoUnusedVarsIgnorePattern(t *testing.T) {
	issues := runRule(t, "no-unused-vars", "a.js", "const _skip = 1\n")
	if len(issues) != 0 {
		t.Fatalf("underscore-prefixed binding reported: %+v", issues)
	}
}

func TestNoUnusedVarsExported(t *testing.T) {
	issues := runRule(t, "no-unused-vars", "a.js", "export const api = 1\n")
	if len(issues) != 0 {
		t.Fatalf("exported binding reported: %+v", issues)
	}
}

func TestNoUnusedVarsImportMessage(t *testing.T) {
	issues := runRule(t, "no-unused-vars", "a.js", "import { thing } from './b'\n")
	if len(issues) != 1 || !strings.Contains(issues[0].Message, "imported but never used") {
		t.Fatalf("issues = %+v", issues)
	}
}

func TestNoShadow(t *testing.T) {
	src := "const v = 1\nfunction f() {\n  const v = 2\n  return v\n}\nsend(f(), v)\n"
	issues := runRule(t, "no-shadow", "a.js", src)
	if len(issues) != 1 {
		t.Fatalf("issues = %+v, want one shadow report", issues)
	}
	if !strings.Contains(issues[0].Message, "'v'") {
		t.Errorf("message = %q", issues[0].Message)
	}
}

func TestNoShadowDistinctNames(t *testing.T) {
	issues := runRule(t, "no-shadow", "a.js", "const a = 1\nfunction f() { const b = 2\n return b }\nsend(f(), a)\n")
	if len(issues) != 0 {
		t.Fatalf("false shadow: %+v", issues)
	}
}

func TestNoEmptyPatternScenario(t *testing.T) {
	issues := runRule(t, "no-empty-pattern", "a.js", "const {} = obj\n")
	if len(issues) != 1 {
		t.Fatalf("issues = %+v, want exactly one", issues)
	}
	if !strings.Contains(issues[0].Message, "object pattern") {
		t.Errorf("message = %q", issues[0].Message)
	}
}

func TestPreferConst(t *testing.T) {
	issues := runRule(t, "prefer-const", "a.js", "let total = 1\nsend(total)\n")
	if len(issues) != 1 || !strings.Contains(issues[0].Message, "'total'") {
		t.Fatalf("issues = %+v", issues)
	}
}

func TestPreferConstReassignedScenario(t *testing.T) {
	issues := runRule(t, "prefer-const", "a.js", "let cc = 'a, b'\ncc = 'c'\n")
	if len(issues) != 0 {
		t.Fatalf("reassigned let reported: %+v", issues)
	}
}

func TestPreferConstIgnoresConstAndVar(t *testing.T) {
	issues := runRule(t, "prefer-const", "a.js", "const a = 1\nvar b = 2\nsend(a, b)\n")
	if len(issues) != 0 {
		t.Fatalf("issues = %+v, want none", issues)
	}
}

func TestNoVarWithFix(t *testing.T) {
	src := "var x = 1\nsend(x)\n"
	issues := runRule(t, "no-var", "a.js", src)
	if len(issues) != 1 || issues[0].Fix == nil {
		t.Fatalf("issues = %+v, want one fixable", issues)
	}
	if got := applyFixes(t, src, issues); got != "let x = 1\nsend(x)\n" {
		t.Errorf("fixed = %q", got)
	}
}

func TestNoVarIgnoresMemberAndKeys(t *testing.T) {
	issues := runRule(t, "no-var", "a.js", "obj.var = 1\nconst o = { var: 2 }\nsend(o)\n")
	if len(issues) != 0 {
		t.Fatalf("issues = %+v, want none", issues)
	}
}

func TestNoConsole(t *testing.T) {
	issues := runRule(t, "no-console", "a.js", "console.log(1)\nconsole.warn(2)\n")
	if len(issues) != 2 {
		t.Fatalf("issues = %+v, want two", issues)
	}
}

func TestNoConsoleAllowList(t *testing.T) {
	opts := &OptionSet{NoConsole: NoConsoleOptions{Allow: []string{"warn"}}}
	issues := runRuleOpts(t, "no-console", "a.js", "console.log(1)\nconsole.warn(2)\n", opts)
	if len(issues) != 1 || !strings.Contains(issues[0].Message, "console.log") {
		t.Fatalf("issues = %+v", issues)
	}
}

func TestNoConsoleIgnoresMemberAccess(t *testing.T) {
	issues := runRule(t, "no-console", "a.js", "win.console.log(1)\n")
	if len(issues) != 0 {
		t.Fatalf("issues = %+v, want none", issues)
	}
}

func TestNoDebuggerWithFix(t *testing.T) {
	src := "before()\ndebugger;\nafter()\n"
	issues := runRule(t, "no-debugger", "a.js", src)
	if len(issues) != 1 || issues[0].Fix == nil {
		t.Fatalf("issues = %+v", issues)
	}
	if got := applyFixes(t, src, issues); got != "before()\nafter()\n" {
		t.Errorf("fixed = %q", got)
	}
}

func TestImportNoUnresolved(t *testing.T) {
	issues := runGraphRule(t, "import/no-unresolved", map[string]string{
		"src/main.js": "import a from './a'\nimport m from './missing'\nimport l from 'lodash'\n",
		"src/a.js":    "export default 1\n",
	}, "src/main.js")
	if len(issues) != 1 || !strings.Contains(issues[0].Message, "./missing") {
		t.Fatalf("issues = %+v", issues)
	}
}

func TestImportNamed(t *testing.T) {
	issues := runGraphRule(t, "import/named", map[string]string{
		"src/main.js": "import { real, fake } from './lib'\nsend(real, fake)\n",
		"src/lib.js":  "export const real = 1\n",
	}, "src/main.js")
	if len(issues) != 1 || !strings.Contains(issues[0].Message, "fake") {
		t.Fatalf("issues = %+v", issues)
	}
}

func TestImportNoCycle(t *testing.T) {
	files := map[string]string{
		"src/a.js": "import { b } from './b'\nexport const a = 1\n",
		"src/b.js": "import { a } from './a'\nexport const b = 2\n",
	}
	issues := runGraphRule(t, "import/no-cycle", files, "src/a.js")
	if len(issues) != 1 {
		t.Fatalf("issues = %+v, want one cycle report", issues)
	}
	if !strings.Contains(issues[0].Message, "src/a.js -> src/b.js -> src/a.js") {
		t.Errorf("message = %q", issues[0].Message)
	}
	if issues[0].Primary.Empty() {
		t.Errorf("cycle issue has no span")
	}
}

func TestMdHeadingSpaceScenario(t *testing.T) {
	src := "#Heading\n"
	issues := runRule(t, "md/heading-space", "doc.md", src)
	if len(issues) != 1 || issues[0].Fix == nil {
		t.Fatalf("issues = %+v", issues)
	}
	fixed := applyFixes(t, src, issues)
	if fixed != "# Heading\n" {
		t.Fatalf("fixed = %q", fixed)
	}
	if again := runRule(t, "md/heading-space", "doc.md", fixed); len(again) != 0 {
		t.Errorf("fix not idempotent: %+v", again)
	}
}

func TestMdHeadingSpaceSkipsFencedCode(t *testing.T) {
	src := "```\n#not a heading\n```\n## ok\n"
	issues := runRule(t, "md/heading-space", "doc.md", src)
	if len(issues) != 0 {
		t.Fatalf("issues inside fence: %+v", issues)
	}
}

func TestMdHeadingSpaceEdgeCases(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"# fine\n", 0},
		{"#\n", 0},
		{"#######seven\n", 0},
		{"   #indented-three\n", 1},
		{"##twice\n#once\n", 2},
	}
	for _, tc := range cases {
		if got := len(runRule(t, "md/heading-space", "doc.md", tc.text)); got != tc.want {
			t.Errorf("%q: issues = %d, want %d", tc.text, got, tc.want)
		}
	}
}
