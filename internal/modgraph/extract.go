package modgraph

import (
	"relint/internal/scan"
	"relint/internal/source"
)

// extract walks the token stream and records import edges and exported
// names. This is pattern scanning, not parsing: it recognizes the statement
// shapes that matter for the graph and steps over everything else.
func extract(n *Node, f *source.File, toks []scan.Token) {
	w := walker{node: n, file: f, toks: toks}
	w.run()
}

type walker struct {
	node *Node
	file *source.File
	toks []scan.Token
	pos  int
}

func (w *walker) run() {
	for w.pos < len(w.toks) {
		t := w.toks[w.pos]
		if t.Kind != scan.TokIdent || w.prevIs(".") {
			w.pos++
			continue
		}
		switch t.Text {
		case "import":
			w.importStmt()
		case "export":
			w.exportStmt()
		case "require":
			w.requireCall()
		case "module":
			w.moduleExports()
		case "exports":
			w.exportsAssign()
		default:
			w.pos++
		}
	}
}

func (w *walker) tok(i int) (scan.Token, bool) {
	if i < 0 || i >= len(w.toks) {
		return scan.Token{}, false
	}
	return w.toks[i], true
}

func (w *walker) prevIs(text string) bool {
	t, ok := w.tok(w.pos - 1)
	return ok && t.Kind == scan.TokPunct && t.Text == text
}

func (w *walker) addImport(imp Import) {
	w.node.Imports = append(w.node.Imports, imp)
}

func (w *walker) exportName(t scan.Token) {
	if t.Text == "default" {
		w.node.Exports.Default = true
		return
	}
	w.node.Exports.Names[tokenName(t)] = t.Span
}

// statementBreak approximates automatic semicolon insertion: cur starts a
// new statement when it sits on a later line than prev, prev can end an
// expression, and cur is not a continuation punctuator.
func (w *walker) statementBreak(prev, cur scan.Token) bool {
	if cur.Kind == scan.TokPunct {
		return false
	}
	if w.file.LineAt(cur.Span.Start) == w.file.LineAt(prev.Span.End) {
		return false
	}
	switch prev.Kind {
	case scan.TokIdent, scan.TokNumber, scan.TokString:
		return true
	}
	switch prev.Text {
	case ")", "]", "}", "++", "--":
		return true
	}
	return false
}

// importStmt handles static imports, side-effect imports, and dynamic
// import() calls. The walker enters with pos on the `import` token.
func (w *walker) importStmt() {
	w.pos++
	t, ok := w.tok(w.pos)
	if !ok {
		return
	}
	if t.Kind == scan.TokPunct && (t.Text == "(" || t.Text == ".") {
		if t.Text == "(" {
			if s, ok2 := w.tok(w.pos + 1); ok2 && s.Kind == scan.TokString {
				w.addImport(Import{Specifier: stringValue(s.Text), Span: s.Span})
				w.pos += 2
			}
		}
		return
	}
	if t.Kind == scan.TokString {
		w.addImport(Import{Specifier: stringValue(t.Text), Span: t.Span})
		w.pos++
		return
	}

	var imp Import
	if t.Kind == scan.TokIdent && t.Text == "type" {
		if nx, ok2 := w.tok(w.pos + 1); ok2 && nx.Text != "from" && nx.Text != "," && nx.Text != "=" {
			imp.TypeOnly = true
			w.pos++
		}
	}
	for w.pos < len(w.toks) {
		t, _ = w.tok(w.pos)
		switch {
		case t.Kind == scan.TokIdent && t.Text == "from":
			w.pos++
			if s, ok2 := w.tok(w.pos); ok2 && s.Kind == scan.TokString {
				imp.Specifier = stringValue(s.Text)
				imp.Span = s.Span
				w.addImport(imp)
				w.pos++
			}
			return
		case t.Kind == scan.TokIdent:
			imp.Default = true
			w.pos++
		case t.Text == ",":
			w.pos++
		case t.Text == "*":
			imp.Namespace = true
			w.pos++
			if a, ok2 := w.tok(w.pos); ok2 && a.Text == "as" {
				w.pos += 2
			}
		case t.Text == "{":
			w.pos++
			w.namedSpecifiers(&imp)
		default:
			return
		}
	}
}

// namedSpecifiers reads the inside of an import brace list. Names are
// recorded as the target module exports them; inline type specifiers are
// skipped since they may name type-only exports.
func (w *walker) namedSpecifiers(imp *Import) {
	for w.pos < len(w.toks) {
		t, ok := w.tok(w.pos)
		if !ok {
			return
		}
		if t.Text == "}" {
			w.pos++
			return
		}
		if t.Kind == scan.TokIdent || t.Kind == scan.TokString {
			typeOnly := false
			if t.Text == "type" {
				if nx, ok2 := w.tok(w.pos + 1); ok2 && nx.Kind == scan.TokIdent && nx.Text != "as" {
					typeOnly = true
					w.pos++
					t, _ = w.tok(w.pos)
				}
			}
			name := tokenName(t)
			span := t.Span
			w.pos++
			if a, ok2 := w.tok(w.pos); ok2 && a.Kind == scan.TokIdent && a.Text == "as" {
				w.pos += 2
			}
			if !typeOnly {
				imp.Named = append(imp.Named, NamedBinding{Name: name, Span: span})
			}
			continue
		}
		w.pos++
	}
}

// exportStmt dispatches on the token after `export`.
func (w *walker) exportStmt() {
	w.pos++
	t, ok := w.tok(w.pos)
	if !ok {
		return
	}
	switch t.Text {
	case "default":
		w.node.Exports.Default = true
		w.pos++
	case "{":
		w.pos++
		w.exportClause()
	case "*":
		w.exportStar()
	case "type":
		w.pos++
		if nx, ok2 := w.tok(w.pos); ok2 {
			switch {
			case nx.Text == "{":
				w.pos++
				w.exportClause()
			case nx.Kind == scan.TokIdent:
				w.exportName(nx)
				w.pos++
			}
		}
	case "const", "let", "var":
		w.pos++
		w.exportDecl()
	case "async":
		w.pos++
		if nx, ok2 := w.tok(w.pos); ok2 && nx.Text == "function" {
			w.pos++
			w.functionName()
		}
	case "function":
		w.pos++
		w.functionName()
	case "class", "enum", "interface", "namespace", "abstract":
		w.pos++
		if t.Text == "abstract" {
			if nx, ok2 := w.tok(w.pos); ok2 && nx.Text == "class" {
				w.pos++
			}
		}
		if nx, ok2 := w.tok(w.pos); ok2 && nx.Kind == scan.TokIdent {
			w.exportName(nx)
			w.pos++
		}
	}
}

func (w *walker) functionName() {
	t, ok := w.tok(w.pos)
	if !ok {
		return
	}
	if t.Text == "*" {
		w.pos++
		t, ok = w.tok(w.pos)
		if !ok {
			return
		}
	}
	if t.Kind == scan.TokIdent {
		w.exportName(t)
		w.pos++
	}
}

// exportClause reads `{ a, b as c }` and the optional `from` tail. Without
// a tail the names are plain exports; with one they are also re-exported
// names the target must provide.
func (w *walker) exportClause() {
	type entry struct {
		orig  string
		alias string
		span  source.Span
	}
	var entries []entry
	for w.pos < len(w.toks) {
		t, ok := w.tok(w.pos)
		if !ok {
			return
		}
		if t.Text == "}" {
			w.pos++
			break
		}
		if t.Kind == scan.TokIdent || t.Kind == scan.TokString {
			e := entry{orig: tokenName(t), alias: tokenName(t), span: t.Span}
			w.pos++
			if a, ok2 := w.tok(w.pos); ok2 && a.Kind == scan.TokIdent && a.Text == "as" {
				if al, ok3 := w.tok(w.pos + 1); ok3 {
					e.alias = tokenName(al)
					w.pos += 2
				}
			}
			entries = append(entries, e)
			continue
		}
		w.pos++
	}
	for _, e := range entries {
		if e.alias == "default" {
			w.node.Exports.Default = true
			continue
		}
		w.node.Exports.Names[e.alias] = e.span
	}
	if f, ok := w.tok(w.pos); ok && f.Kind == scan.TokIdent && f.Text == "from" {
		if s, ok2 := w.tok(w.pos + 1); ok2 && s.Kind == scan.TokString {
			imp := Import{Specifier: stringValue(s.Text), Span: s.Span}
			for _, e := range entries {
				if e.orig == "default" {
					imp.Default = true
					continue
				}
				imp.Named = append(imp.Named, NamedBinding{Name: e.orig, Span: e.span})
			}
			w.addImport(imp)
			w.pos += 2
		}
	}
}

// exportStar handles `export * from` and `export * as ns from`. The
// namespace form exports a single name; the bare form folds the target's
// names into this module's export set one level deep.
func (w *walker) exportStar() {
	w.pos++
	namespace := false
	if a, ok := w.tok(w.pos); ok && a.Kind == scan.TokIdent && a.Text == "as" {
		if ns, ok2 := w.tok(w.pos + 1); ok2 && ns.Kind == scan.TokIdent {
			w.node.Exports.Names[ns.Text] = ns.Span
			w.pos += 2
			namespace = true
		}
	}
	f, ok := w.tok(w.pos)
	if !ok || f.Kind != scan.TokIdent || f.Text != "from" {
		return
	}
	s, ok := w.tok(w.pos + 1)
	if !ok || s.Kind != scan.TokString {
		return
	}
	spec := stringValue(s.Text)
	if !namespace {
		w.node.Exports.Star = append(w.node.Exports.Star, spec)
	}
	w.addImport(Import{Specifier: spec, Span: s.Span})
	w.pos += 2
}

// exportDecl collects binder names from an exported const/let/var
// declaration, including destructuring patterns. Initializer expressions
// are skipped with balanced brackets so their identifiers never register
// as exports.
func (w *walker) exportDecl() {
	expect := true
	depth := 0
	var prev scan.Token
	first := true
	for w.pos < len(w.toks) {
		t, ok := w.tok(w.pos)
		if !ok {
			return
		}
		if !first && depth == 0 && w.statementBreak(prev, t) {
			return
		}
		switch {
		case t.Text == "{" || t.Text == "[":
			depth++
			expect = true
		case t.Text == "}" || t.Text == "]":
			if depth == 0 {
				return
			}
			depth--
		case t.Text == ";":
			return
		case t.Text == ",":
			expect = true
		case t.Text == ":":
			expect = depth > 0
		case t.Text == "...":
			expect = true
		case t.Text == "=":
			if depth == 0 {
				w.skipInitializer()
				if p, ok2 := w.tok(w.pos - 1); ok2 {
					prev = p
				}
				first = false
				expect = false
				continue
			}
			expect = false
		case t.Kind == scan.TokIdent && expect && !w.prevIs("."):
			key := false
			if depth > 0 {
				if nx, ok2 := w.tok(w.pos + 1); ok2 && nx.Text == ":" {
					key = true
				}
			}
			if !key {
				w.exportName(t)
				expect = false
			}
		}
		prev = t
		first = false
		w.pos++
	}
}

// skipInitializer steps over an initializer expression after a top-level
// `=`, stopping at a same-depth comma or semicolon or at a statement break.
// The walker is left on the stopping token.
func (w *walker) skipInitializer() {
	depth := 0
	prev, _ := w.tok(w.pos)
	w.pos++
	for w.pos < len(w.toks) {
		t, ok := w.tok(w.pos)
		if !ok {
			return
		}
		if depth == 0 {
			if t.Text == "," || t.Text == ";" {
				return
			}
			if w.statementBreak(prev, t) {
				return
			}
		}
		switch t.Text {
		case "(", "{", "[":
			depth++
		case ")", "}", "]":
			if depth == 0 {
				return
			}
			depth--
		}
		prev = t
		w.pos++
	}
}

func (w *walker) requireCall() {
	if p, ok := w.tok(w.pos + 1); ok && p.Text == "(" {
		if s, ok2 := w.tok(w.pos + 2); ok2 && s.Kind == scan.TokString {
			w.addImport(Import{Specifier: stringValue(s.Text), Span: s.Span})
			w.pos += 3
			return
		}
	}
	w.pos++
}

func (w *walker) moduleExports() {
	if d, ok := w.tok(w.pos + 1); ok && d.Text == "." {
		if e, ok2 := w.tok(w.pos + 2); ok2 && e.Kind == scan.TokIdent && e.Text == "exports" {
			w.node.Exports.Opaque = true
			w.node.Exports.Default = true
			w.pos += 3
			return
		}
	}
	w.pos++
}

func (w *walker) exportsAssign() {
	d, ok := w.tok(w.pos + 1)
	if !ok || d.Text != "." {
		w.pos++
		return
	}
	name, ok := w.tok(w.pos + 2)
	if !ok || name.Kind != scan.TokIdent {
		w.pos++
		return
	}
	if eq, ok2 := w.tok(w.pos + 3); ok2 && eq.Text == "=" {
		w.exportName(name)
		w.pos += 4
		return
	}
	w.pos++
}

func tokenName(t scan.Token) string {
	if t.Kind == scan.TokString {
		return stringValue(t.Text)
	}
	return t.Text
}

func stringValue(text string) string {
	if len(text) >= 2 {
		q := text[0]
		if (q == '"' || q == '\'' || q == '`') && text[len(text)-1] == q {
			return text[1 : len(text)-1]
		}
	}
	if len(text) >= 1 {
		q := text[0]
		if q == '"' || q == '\'' || q == '`' {
			return text[1:]
		}
	}
	return text
}
