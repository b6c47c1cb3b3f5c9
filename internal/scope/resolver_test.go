package scope

import (
	"testing"

	"relint/internal/scan"
	"relint/internal/source"
)

func resolveText(t *testing.T, text string) *Tree {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.js", []byte(text))
	return Resolve(scan.NewIndex(fs.Get(id)), Options{})
}

func findBinding(t *testing.T, tree *Tree, name string) *Binding {
	t.Helper()
	var found *Binding
	bindings := tree.MutBindings()
	for i := range bindings {
		if bindings[i].Name == name {
			if found != nil {
				t.Fatalf("multiple bindings named %q; use findBindings", name)
			}
			found = &bindings[i]
		}
	}
	if found == nil {
		t.Fatalf("no binding named %q", name)
	}
	return found
}

func TestUsageCounting(t *testing.T) {
	tree := resolveText(t, "const a = 1\nconst b = a + a\nsend(b)\n")
	a := findBinding(t, tree, "a")
	if !a.Used || a.Uses != 2 {
		t.Errorf("a: used=%v uses=%d, want used with 2 uses", a.Used, a.Uses)
	}
	b := findBinding(t, tree, "b")
	if !b.Used || b.Uses != 1 {
		t.Errorf("b: used=%v uses=%d, want used once", b.Used, b.Uses)
	}
}

func TestUnusedBinding(t *testing.T) {
	tree := resolveText(t, "const unused = 1\n")
	if findBinding(t, tree, "unused").Used {
		t.Error("binding without references must stay unused")
	}
}

func TestIgnorePatternExemption(t *testing.T) {
	tree := resolveText(t, "const _ignored = 1\nconst kept = 2\n")
	if !findBinding(t, tree, "_ignored").Exempt {
		t.Error("underscore-prefixed names must be exempt by default")
	}
	if findBinding(t, tree, "kept").Exempt {
		t.Error("plain names must not be exempt")
	}
}

func TestSelfInitializerDoesNotCount(t *testing.T) {
	tree := resolveText(t, "let x = x\n")
	x := findBinding(t, tree, "x")
	if x.Used || x.Uses != 0 {
		t.Errorf("self-initializer reference counted: used=%v uses=%d", x.Used, x.Uses)
	}
}

func TestReassignmentIsNotARead(t *testing.T) {
	tree := resolveText(t, "let cc = 'a, b'\ncc = 'c'\n")
	cc := findBinding(t, tree, "cc")
	if !cc.Reassigned {
		t.Error("assignment after declaration must mark the binding reassigned")
	}
	if cc.Used {
		t.Error("a bare assignment target must not count as a read")
	}
}

func TestCompoundAssignAndIncrement(t *testing.T) {
	tree := resolveText(t, "let n = 0\nn += 1\nlet m = 0\nm++\n")
	if !findBinding(t, tree, "n").Reassigned {
		t.Error("compound assignment must mark reassigned")
	}
	if !findBinding(t, tree, "m").Reassigned {
		t.Error("increment must mark reassigned")
	}
}

func TestNeverReassignedLet(t *testing.T) {
	tree := resolveText(t, "let stable = 1\nsend(stable)\n")
	b := findBinding(t, tree, "stable")
	if b.Reassigned {
		t.Error("binding was never reassigned")
	}
	if b.Kind != BindLet {
		t.Errorf("expected let kind, got %s", b.Kind)
	}
}

func TestShadowing(t *testing.T) {
	tree := resolveText(t, "const v = 1\nfunction f() {\n  const v = 2\n  send(v)\n}\nsend(v)\nf()\n")
	bindings := tree.Bindings()
	var inner, outer BindingID
	seen := 0
	for i := range bindings {
		if bindings[i].Name == "v" {
			if bindings[i].Scope == tree.Root() {
				outer = BindingID(i)
			} else {
				inner = BindingID(i)
			}
			seen++
		}
	}
	if seen != 2 {
		t.Fatalf("expected 2 bindings for v, got %d", seen)
	}

	target, ok := tree.ShadowTarget(inner)
	if !ok || target != outer {
		t.Fatalf("inner v must shadow outer v")
	}
	if _, ok := tree.ShadowTarget(outer); ok {
		t.Error("outer v shadows nothing")
	}

	// the inner use resolves to the inner binding
	if tree.Binding(inner).Uses != 1 {
		t.Errorf("inner v uses = %d, want 1", tree.Binding(inner).Uses)
	}
	if tree.Binding(outer).Uses != 1 {
		t.Errorf("outer v uses = %d, want 1", tree.Binding(outer).Uses)
	}
}

func TestDestructuringBindings(t *testing.T) {
	tree := resolveText(t, "const {a, b: alias, c: {d}, ...rest} = obj\nsend(a, alias, d, rest)\n")
	for _, name := range []string{"a", "alias", "d", "rest"} {
		b := findBinding(t, tree, name)
		if b.Kind != BindDestructure {
			t.Errorf("%s: kind %s, want destructure", name, b.Kind)
		}
		if !b.Used {
			t.Errorf("%s should be used", name)
		}
	}
	// the key of b: alias binds nothing
	for _, b := range tree.Bindings() {
		if b.Name == "b" || b.Name == "c" {
			t.Errorf("pattern key %q must not become a binding", b.Name)
		}
	}
}

func TestArrayDestructuring(t *testing.T) {
	tree := resolveText(t, "const [first, , third] = xs\nsend(first, third)\n")
	if !findBinding(t, tree, "first").Used {
		t.Error("first should be used")
	}
	if !findBinding(t, tree, "third").Used {
		t.Error("third should be used")
	}
}

func TestEmptyPattern(t *testing.T) {
	tree := resolveText(t, "const {} = obj\n")
	if len(tree.EmptyPatterns()) != 1 {
		t.Fatalf("expected 1 empty pattern, got %d", len(tree.EmptyPatterns()))
	}
	sp := tree.EmptyPatterns()[0]
	if sp.Start != 6 || sp.End != 8 {
		t.Errorf("empty pattern span = %v, want 6..8", sp)
	}
}

func TestFunctionParams(t *testing.T) {
	tree := resolveText(t, "function f(a, {b}, ...cs) {\n  return a + b + cs.length\n}\nf()\n")
	for _, name := range []string{"a", "b", "cs"} {
		p := findBinding(t, tree, name)
		if p.Kind != BindParam {
			t.Errorf("%s: kind %s, want param", name, p.Kind)
		}
		if !p.Used {
			t.Errorf("param %s should be used", name)
		}
	}
	if !findBinding(t, tree, "f").Used {
		t.Error("function declaration should count the trailing call as a use")
	}
}

func TestArrowFunctions(t *testing.T) {
	tree := resolveText(t, "const twice = (x) => x + x\nconst inc = y => y + 1\nsend(twice, inc)\n")
	x := findBinding(t, tree, "x")
	if x.Kind != BindParam || x.Uses != 2 {
		t.Errorf("arrow param x: kind=%s uses=%d", x.Kind, x.Uses)
	}
	y := findBinding(t, tree, "y")
	if y.Kind != BindParam || y.Uses != 1 {
		t.Errorf("bare arrow param y: kind=%s uses=%d", y.Kind, y.Uses)
	}
}

func TestArrowParamDoesNotLeak(t *testing.T) {
	tree := resolveText(t, "items.map(e => e.id)\nsend(e)\n")
	e := findBinding(t, tree, "e")
	// the later send(e) must not resolve to the arrow's parameter
	if e.Uses != 1 {
		t.Errorf("arrow param e uses = %d, want exactly the body reference", e.Uses)
	}
}

func TestImportBindings(t *testing.T) {
	tree := resolveText(t, "import def, {named, orig as alias} from './m'\nimport * as ns from './n'\nsend(def, named, alias, ns)\n")
	for _, name := range []string{"def", "named", "alias", "ns"} {
		b := findBinding(t, tree, name)
		if b.Kind != BindImport {
			t.Errorf("%s: kind %s, want import", name, b.Kind)
		}
		if !b.Used {
			t.Errorf("import %s should be used", name)
		}
	}
	for _, b := range tree.Bindings() {
		if b.Name == "orig" {
			t.Error("the exported name in `orig as alias` must not bind locally")
		}
	}
}

func TestCatchParam(t *testing.T) {
	tree := resolveText(t, "try {\n  work()\n} catch (err) {\n  send(err)\n}\n")
	err := findBinding(t, tree, "err")
	if err.Kind != BindParam || !err.Used {
		t.Errorf("catch param: kind=%s used=%v", err.Kind, err.Used)
	}
}

func TestExportedBindingsMarked(t *testing.T) {
	tree := resolveText(t, "export const api = 1\nconst local = 2\nsend(local)\n")
	if !findBinding(t, tree, "api").Exported {
		t.Error("export const must mark the binding exported")
	}
	if findBinding(t, tree, "local").Exported {
		t.Error("plain const must not be exported")
	}
}

func TestObjectKeysAreNotReferences(t *testing.T) {
	tree := resolveText(t, "const width = 1\nconst o = {width: 2, height: width}\nsend(o)\n")
	w := findBinding(t, tree, "width")
	if w.Uses != 1 {
		t.Errorf("width uses = %d, want only the value-position reference", w.Uses)
	}
}

func TestMemberAccessIsNotAReference(t *testing.T) {
	tree := resolveText(t, "const size = 1\nsend(box.size, size)\n")
	if got := findBinding(t, tree, "size").Uses; got != 1 {
		t.Errorf("size uses = %d, property access must not count", got)
	}
}

func TestStringContentNeverResolves(t *testing.T) {
	tree := resolveText(t, "const secret = 1\nsend('secret secret')\n")
	if findBinding(t, tree, "secret").Used {
		t.Error("identifier text inside a string literal must not count as a use")
	}
}

func TestClassMethodScope(t *testing.T) {
	tree := resolveText(t, "const base = 1\nclass Box {\n  area(w) {\n    return w * base\n  }\n}\nsend(Box)\n")
	w := findBinding(t, tree, "w")
	if w.Kind != BindParam || !w.Used {
		t.Errorf("method param: kind=%s used=%v", w.Kind, w.Used)
	}
	if !findBinding(t, tree, "base").Used {
		t.Error("method body must see enclosing bindings")
	}
	box := findBinding(t, tree, "Box")
	if box.Kind != BindFunc || !box.Used {
		t.Errorf("class binding: kind=%s used=%v", box.Kind, box.Used)
	}
}

func TestVarKindPreserved(t *testing.T) {
	tree := resolveText(t, "var old = 1\nsend(old)\n")
	if got := findBinding(t, tree, "old").Kind; got != BindVar {
		t.Errorf("kind = %s, want var", got)
	}
}

func TestBlockScopeShadowLookup(t *testing.T) {
	tree := resolveText(t, "const x = 1\nif (cond) {\n  const x = 2\n  send(x)\n}\n")
	count := 0
	for _, b := range tree.Bindings() {
		if b.Name == "x" {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 x bindings (outer + block), got %d", count)
	}
	if tree.ScopeCount() < 2 {
		t.Error("if-block must open its own scope")
	}
}
