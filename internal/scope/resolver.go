package scope

import (
	"regexp"

	"relint/internal/scan"
	"relint/internal/source"
)

// Options configures resolution.
type Options struct {
	// IgnorePattern exempts matching binding names from unused reporting.
	// Nil means the default: names starting with an underscore.
	IgnorePattern *regexp.Regexp
}

var defaultIgnore = regexp.MustCompile(`^_`)

// Resolve builds the scope tree for a file from its classified token stream.
// It is a lexical approximation, not a parser: scopes open per function and
// per statement block, bindings are collected from declaration forms, and
// every remaining identifier in code zones resolves against the nearest
// enclosing binding. Deliberate policies (documented, not varied):
//   - an identifier referenced only inside its own declarator's initializer
//     does not count as a use;
//   - `x = ...`, `x += ...`, `x++` mark the binding reassigned, not used;
//   - expression-bodied arrow scopes extend to the end of the enclosing
//     expression (next comma/closer at the same nesting depth).
func Resolve(idx *scan.Index, opts Options) *Tree {
	ignore := opts.IgnorePattern
	if ignore == nil {
		ignore = defaultIgnore
	}
	r := &resolver{
		file:         idx.File(),
		toks:         scan.Tokenize(idx),
		tree:         NewTree(),
		ignore:       ignore,
		pendingScope: NoScope,
	}
	r.scope = r.tree.Root()
	r.run()
	return r.tree
}

type frameKind uint8

const (
	fkBlock frameKind = iota
	fkObject
	fkClassBody
	fkParen
	fkBracket
)

type frame struct {
	kind  frameKind
	scope ScopeID // scope opened with this frame, NoScope when none
	outer ScopeID // scope restored when the frame closes
}

// exprScope tracks an expression-bodied arrow whose scope has no brace frame.
type exprScope struct {
	outer ScopeID
	depth int // len(frames) when the arrow body started
}

// declState is the active declarator of a const/let/var statement. Names in
// it are invisible to use-counting (the self-initializer policy).
type declState struct {
	names    map[string]struct{}
	depth    int
	kind     BindKind
	exported bool
}

type resolver struct {
	file   *source.File
	toks   []scan.Token
	pos    int
	tree   *Tree
	scope  ScopeID
	ignore *regexp.Regexp

	frames       []frame
	exprScopes   []exprScope
	decl         *declState
	pendingScope ScopeID
	classHead    bool
	classDepth   int
	exportNext   bool
}

var keywords = map[string]bool{
	"const": true, "let": true, "var": true, "function": true, "class": true,
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"switch": true, "case": true, "default": true, "break": true, "continue": true,
	"return": true, "throw": true, "try": true, "catch": true, "finally": true,
	"new": true, "delete": true, "typeof": true, "instanceof": true, "void": true,
	"in": true, "of": true, "import": true, "export": true, "from": true, "as": true,
	"async": true, "await": true, "yield": true, "static": true, "get": true, "set": true,
	"extends": true, "super": true, "this": true, "null": true, "true": true,
	"false": true, "undefined": true, "arguments": true, "type": true, "interface": true,
}

func (r *resolver) cur() (scan.Token, bool) {
	if r.pos >= len(r.toks) {
		return scan.Token{}, false
	}
	return r.toks[r.pos], true
}

func (r *resolver) peek(n int) (scan.Token, bool) {
	if r.pos+n >= len(r.toks) {
		return scan.Token{}, false
	}
	return r.toks[r.pos+n], true
}

func (r *resolver) prev() (scan.Token, bool) {
	if r.pos == 0 {
		return scan.Token{}, false
	}
	return r.toks[r.pos-1], true
}

func (r *resolver) run() {
	for r.pos < len(r.toks) {
		if r.statementBreak() {
			r.endStatement()
		}
		t := r.toks[r.pos]
		switch t.Kind {
		case scan.TokPunct:
			r.handlePunct(t)
		case scan.TokIdent:
			r.handleIdentToken(t)
		default:
			r.pos++
		}
	}
	r.endStatement()
}

func (r *resolver) handlePunct(t scan.Token) {
	switch t.Text {
	case "{":
		r.openBrace()
	case "}":
		r.closeFrame()
		r.pos++
	case "(":
		r.openParenOrArrow()
	case ")":
		r.closeFrame()
		r.pos++
	case "[":
		r.pushFrame(fkBracket, NoScope)
		r.pos++
	case "]":
		r.closeFrame()
		r.pos++
	case ",":
		r.onComma()
	case ";":
		r.endStatement()
		r.pos++
	default:
		r.pos++
	}
}

func (r *resolver) handleIdentToken(t scan.Token) {
	switch t.Text {
	case "const":
		r.parseDecl(BindConst)
	case "let":
		r.parseDecl(BindLet)
	case "var":
		r.parseDecl(BindVar)
	case "function":
		r.parseFunction()
	case "import":
		r.parseImport()
	case "catch":
		r.parseCatch()
	case "class":
		r.parseClassHead()
	case "export":
		r.exportNext = true
		r.pos++
	case "of", "in":
		// for-header terminator: the declarator list ends here
		if r.decl != nil && r.decl.depth >= len(r.frames) {
			r.decl = nil
		}
		r.pos++
	default:
		if keywords[t.Text] {
			r.pos++
			return
		}
		r.handleIdent(t)
	}
}

// statementBreak approximates automatic semicolon insertion: a token starting
// a new line after a token that can end a statement begins a new statement.
func (r *resolver) statementBreak() bool {
	if r.pos == 0 {
		return false
	}
	prev := r.toks[r.pos-1]
	cur := r.toks[r.pos]
	if r.file.LineAt(cur.Span.Start) == r.file.LineAt(prev.Span.End-1) {
		return false
	}
	switch prev.Kind {
	case scan.TokIdent:
		if keywords[prev.Text] && prev.Text != "this" && prev.Text != "super" &&
			prev.Text != "true" && prev.Text != "false" && prev.Text != "null" &&
			prev.Text != "undefined" && prev.Text != "arguments" {
			return false
		}
	case scan.TokPunct:
		if prev.Text != ")" && prev.Text != "]" && prev.Text != "}" &&
			prev.Text != "++" && prev.Text != "--" {
			return false
		}
	}
	switch cur.Kind {
	case scan.TokIdent, scan.TokNumber, scan.TokString:
		return true
	case scan.TokPunct:
		return cur.Text == "(" || cur.Text == "["
	}
	return false
}

func (r *resolver) endStatement() {
	if r.decl != nil && r.decl.depth >= len(r.frames) {
		r.decl = nil
	}
	for len(r.exprScopes) > 0 {
		top := r.exprScopes[len(r.exprScopes)-1]
		if top.depth < len(r.frames) {
			break
		}
		r.scope = top.outer
		r.exprScopes = r.exprScopes[:len(r.exprScopes)-1]
	}
	r.exportNext = false
}

func (r *resolver) pushFrame(kind frameKind, scope ScopeID) {
	r.frames = append(r.frames, frame{kind: kind, scope: scope, outer: r.scope})
	if scope != NoScope {
		r.scope = scope
	}
}

// closeFrame pops expression scopes opened at the current depth, then the
// top frame. Mismatched closers in malformed input just pop whatever is open.
func (r *resolver) closeFrame() {
	r.popExprScopesAt(len(r.frames))
	if len(r.frames) == 0 {
		return
	}
	top := r.frames[len(r.frames)-1]
	r.frames = r.frames[:len(r.frames)-1]
	r.scope = top.outer
}

func (r *resolver) popExprScopesAt(depth int) {
	for len(r.exprScopes) > 0 {
		top := r.exprScopes[len(r.exprScopes)-1]
		if top.depth < depth {
			break
		}
		r.scope = top.outer
		r.exprScopes = r.exprScopes[:len(r.exprScopes)-1]
	}
}

func (r *resolver) openBrace() {
	switch {
	case r.pendingScope != NoScope:
		s := r.pendingScope
		r.pendingScope = NoScope
		r.pushFrame(fkBlock, s)
	case r.classHead && r.classDepth == len(r.frames):
		r.classHead = false
		r.pushFrame(fkClassBody, NoScope)
	case r.isBlockContext():
		s := r.tree.NewScope(ScopeBlock, r.scope)
		r.pushFrame(fkBlock, s)
	default:
		r.pushFrame(fkObject, NoScope)
	}
	r.pos++
}

func (r *resolver) isBlockContext() bool {
	prev, ok := r.prev()
	if !ok {
		return true
	}
	switch prev.Text {
	case ")", ";", "{", "}", "else", "do", "try", "finally":
		return true
	}
	return false
}

func (r *resolver) onComma() {
	r.popExprScopesAt(len(r.frames))
	if r.decl != nil && r.decl.depth == len(r.frames) {
		r.pos++ // the comma
		r.decl.names = make(map[string]struct{})
		r.parsePatternInto(r.scope, r.declTargetKind(), r.decl.names)
		return
	}
	r.pos++
}

func (r *resolver) declTargetKind() BindKind {
	if r.decl == nil {
		return BindLet
	}
	return r.decl.kind
}

func (r *resolver) declareBinding(scope ScopeID, name string, kind BindKind, span source.Span) BindingID {
	id := r.tree.Declare(scope, name, kind, span)
	b := r.tree.Binding(id)
	b.Exempt = r.ignore.MatchString(name)
	b.Exported = r.exportNext || (r.decl != nil && r.decl.exported)
	return id
}

func (r *resolver) parseDecl(kind BindKind) {
	r.pos++ // const/let/var
	r.decl = &declState{
		names:    make(map[string]struct{}),
		depth:    len(r.frames),
		kind:     kind,
		exported: r.exportNext,
	}
	r.parsePatternInto(r.scope, kind, r.decl.names)
	r.exportNext = false
}

// parsePatternInto consumes one binding pattern (identifier, object pattern
// or array pattern), declaring each target in the given scope.
func (r *resolver) parsePatternInto(scope ScopeID, kind BindKind, names map[string]struct{}) {
	t, ok := r.cur()
	if !ok {
		return
	}
	switch {
	case t.Kind == scan.TokIdent && !keywords[t.Text]:
		r.declareBinding(scope, t.Text, kind, t.Span)
		if names != nil {
			names[t.Text] = struct{}{}
		}
		r.pos++
	case t.Text == "{":
		r.parseDestructure(scope, kind, names, "{", "}")
	case t.Text == "[":
		r.parseDestructure(scope, kind, names, "[", "]")
	default:
		r.pos++
	}
}

// parseDestructure consumes an object or array pattern. Targets become
// independent bindings; a pattern binding nothing is recorded for
// no-empty-pattern. Default expressions are scanned for uses in place.
func (r *resolver) parseDestructure(scope ScopeID, kind BindKind, names map[string]struct{}, open, close string) {
	start, _ := r.cur()
	r.pos++ // the opener
	count := 0

	targetKind := kind
	if kind != BindParam && kind != BindImport {
		targetKind = BindDestructure
	}

	for r.pos < len(r.toks) {
		t := r.toks[r.pos]
		switch {
		case t.Text == close:
			if count == 0 {
				r.tree.RecordEmptyPattern(start.Span.Cover(t.Span))
			}
			r.pos++
			return
		case t.Text == ",":
			r.pos++
		case t.Text == "...":
			r.pos++
			r.parsePatternInto(scope, targetKind, names)
			count++
		case t.Text == "{" || t.Text == "[":
			r.parseDestructure(scope, targetKind, names, t.Text, closerFor(t.Text))
			count++
			r.skipDefault()
		case t.Kind == scan.TokIdent:
			if open == "{" {
				if next, ok := r.peek(1); ok && next.Text == ":" {
					// key: target — the key itself binds nothing
					r.pos += 2
					r.parsePatternInto(scope, targetKind, names)
					count++
					r.skipDefault()
					continue
				}
			}
			if keywords[t.Text] {
				r.pos++
				continue
			}
			r.declareBinding(scope, t.Text, targetKind, t.Span)
			if names != nil {
				names[t.Text] = struct{}{}
			}
			count++
			r.pos++
			r.skipDefault()
		case t.Kind == scan.TokString || t.Kind == scan.TokNumber:
			// literal key: {'a': target}
			if next, ok := r.peek(1); ok && next.Text == ":" {
				r.pos += 2
				r.parsePatternInto(scope, targetKind, names)
				count++
				r.skipDefault()
				continue
			}
			r.pos++
		default:
			r.pos++
		}
	}
}

func closerFor(open string) string {
	if open == "{" {
		return "}"
	}
	return "]"
}

// skipDefault consumes a `= expr` pattern default, counting identifier uses
// inside the expression. The scan stops at a comma or closer at the default's
// own nesting level.
func (r *resolver) skipDefault() {
	t, ok := r.cur()
	if !ok || t.Text != "=" {
		return
	}
	r.pos++
	depth := 0
	for r.pos < len(r.toks) {
		t := r.toks[r.pos]
		switch t.Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			if depth == 0 {
				return
			}
			depth--
		case ",":
			if depth == 0 {
				return
			}
		}
		if t.Kind == scan.TokIdent && !keywords[t.Text] {
			if prev, ok := r.prev(); !ok || (prev.Text != "." && prev.Text != "?.") {
				r.countUse(t.Text)
			}
		}
		r.pos++
	}
}

func (r *resolver) parseFunction() {
	r.pos++ // function
	if t, ok := r.cur(); ok && t.Text == "*" {
		r.pos++
	}
	if t, ok := r.cur(); ok && t.Kind == scan.TokIdent && !keywords[t.Text] {
		r.declareBinding(r.scope, t.Text, BindFunc, t.Span)
		r.pos++
	}
	r.exportNext = false
	fn := r.tree.NewScope(ScopeFunction, r.scope)
	if t, ok := r.cur(); ok && t.Text == "(" {
		r.parseParams(fn)
	}
	r.pendingScope = fn
}

// parseParams consumes a parenthesized parameter list, declaring each
// parameter (including destructured and rest targets) in fn.
func (r *resolver) parseParams(fn ScopeID) {
	outer := r.scope
	r.scope = fn
	r.pos++ // (
	for r.pos < len(r.toks) {
		t := r.toks[r.pos]
		switch {
		case t.Text == ")":
			r.pos++
			r.scope = outer
			return
		case t.Text == ",":
			r.pos++
		case t.Text == "...":
			r.pos++
			r.parsePatternInto(fn, BindParam, nil)
		case t.Text == ":":
			// type annotation: skip to the next comma or closer
			r.skipAnnotation()
		default:
			r.parsePatternInto(fn, BindParam, nil)
			r.skipDefault()
		}
	}
	r.scope = outer
}

// skipAnnotation consumes a TS-style `: Type` annotation up to the next
// comma or `)` at the annotation's nesting level.
func (r *resolver) skipAnnotation() {
	r.pos++ // :
	depth := 0
	for r.pos < len(r.toks) {
		t := r.toks[r.pos]
		switch t.Text {
		case "(", "[", "{", "<":
			depth++
		case "]", "}", ">":
			if depth > 0 {
				depth--
			}
		case ")":
			if depth == 0 {
				return
			}
			depth--
		case ",", "=":
			if depth == 0 {
				return
			}
		}
		r.pos++
	}
}

func (r *resolver) parseCatch() {
	r.pos++ // catch
	t, ok := r.cur()
	if !ok || t.Text != "(" {
		return // optional catch binding
	}
	s := r.tree.NewScope(ScopeBlock, r.scope)
	r.pos++ // (
	r.parsePatternInto(s, BindParam, nil)
	for r.pos < len(r.toks) && r.toks[r.pos].Text != ")" {
		r.pos++
	}
	if r.pos < len(r.toks) {
		r.pos++ // )
	}
	r.pendingScope = s
}

func (r *resolver) parseClassHead() {
	r.pos++ // class
	if t, ok := r.cur(); ok && t.Kind == scan.TokIdent && !keywords[t.Text] {
		r.declareBinding(r.scope, t.Text, BindFunc, t.Span)
		r.pos++
	}
	r.exportNext = false
	r.classHead = true
	r.classDepth = len(r.frames)
}

func (r *resolver) parseImport() {
	r.pos++ // import
	t, ok := r.cur()
	if !ok {
		return
	}
	if t.Text == "(" || t.Text == "." {
		return // dynamic import() or import.meta: plain expression
	}
	if t.Kind == scan.TokString {
		r.pos++ // side-effect import
		return
	}
	for r.pos < len(r.toks) {
		t := r.toks[r.pos]
		switch {
		case t.Text == "from":
			r.pos++
			if s, ok := r.cur(); ok && s.Kind == scan.TokString {
				r.pos++
			}
			return
		case t.Kind == scan.TokString:
			r.pos++
			return
		case t.Text == ",":
			r.pos++
		case t.Text == "*":
			r.pos++
			if as, ok := r.cur(); ok && as.Text == "as" {
				r.pos++
				if n, ok := r.cur(); ok && n.Kind == scan.TokIdent {
					r.declareBinding(r.scope, n.Text, BindImport, n.Span)
					r.pos++
				}
			}
		case t.Text == "{":
			r.parseNamedImports()
		case t.Text == "type":
			// type-only import: bindings are still registered
			r.pos++
		case t.Kind == scan.TokIdent:
			r.declareBinding(r.scope, t.Text, BindImport, t.Span)
			r.pos++
		default:
			return
		}
	}
}

func (r *resolver) parseNamedImports() {
	r.pos++ // {
	for r.pos < len(r.toks) {
		t := r.toks[r.pos]
		switch {
		case t.Text == "}":
			r.pos++
			return
		case t.Text == ",":
			r.pos++
		case t.Text == "type":
			if next, ok := r.peek(1); ok && next.Kind == scan.TokIdent && next.Text != "," {
				r.pos++ // per-specifier type modifier
				continue
			}
			r.importSpecifier()
		case t.Kind == scan.TokIdent || t.Kind == scan.TokString:
			r.importSpecifier()
		default:
			r.pos++
		}
	}
}

// importSpecifier consumes `name` or `exported as local`, declaring only the
// local binding.
func (r *resolver) importSpecifier() {
	t := r.toks[r.pos]
	if next, ok := r.peek(1); ok && next.Text == "as" {
		r.pos += 2
		if local, ok := r.cur(); ok && local.Kind == scan.TokIdent {
			r.declareBinding(r.scope, local.Text, BindImport, local.Span)
			r.pos++
		}
		return
	}
	if t.Kind == scan.TokIdent {
		r.declareBinding(r.scope, t.Text, BindImport, t.Span)
	}
	r.pos++
}

func (r *resolver) openParenOrArrow() {
	if end, ok := r.matchingParen(r.pos); ok {
		if after, ok2 := r.tokAt(end + 1); ok2 && after.Text == "=>" {
			fn := r.tree.NewScope(ScopeFunction, r.scope)
			r.parseParams(fn)
			if t, ok := r.cur(); ok && t.Text == "=>" {
				r.pos++
			}
			r.beginArrowBody(fn)
			return
		}
	}
	r.pushFrame(fkParen, NoScope)
	r.pos++
}

func (r *resolver) beginArrowBody(fn ScopeID) {
	if t, ok := r.cur(); ok && t.Text == "{" {
		r.pendingScope = fn
		return
	}
	r.exprScopes = append(r.exprScopes, exprScope{outer: r.scope, depth: len(r.frames)})
	r.scope = fn
}

func (r *resolver) tokAt(i int) (scan.Token, bool) {
	if i < 0 || i >= len(r.toks) {
		return scan.Token{}, false
	}
	return r.toks[i], true
}

// matchingParen returns the index of the ) balancing the ( at index i.
func (r *resolver) matchingParen(i int) (int, bool) {
	depth := 0
	for j := i; j < len(r.toks); j++ {
		switch r.toks[j].Text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return j, true
			}
		}
	}
	return 0, false
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"**=": true, "<<=": true, ">>=": true, ">>>=": true, "&=": true,
	"|=": true, "^=": true, "&&=": true, "||=": true, "??=": true,
}

func (r *resolver) handleIdent(t scan.Token) {
	prev, hasPrev := r.prev()
	if hasPrev && (prev.Text == "." || prev.Text == "?.") {
		r.pos++ // property access
		return
	}

	if len(r.frames) > 0 {
		top := r.frames[len(r.frames)-1]
		switch top.kind {
		case fkClassBody:
			r.handleClassMember(t, prev, hasPrev)
			return
		case fkObject:
			if next, ok := r.peek(1); ok && next.Text == ":" &&
				(!hasPrev || prev.Text == "{" || prev.Text == ",") {
				r.pos++ // property key
				return
			}
		}
	}

	next, hasNext := r.peek(1)

	// single-parameter arrow: x => ...
	if hasNext && next.Text == "=>" {
		fn := r.tree.NewScope(ScopeFunction, r.scope)
		r.declareParam(fn, t)
		r.pos += 2
		r.beginArrowBody(fn)
		return
	}

	// assignment target: reassignment, not a read
	if hasNext && assignOps[next.Text] {
		r.markReassigned(t.Text)
		r.pos++
		return
	}
	if (hasNext && (next.Text == "++" || next.Text == "--")) ||
		(hasPrev && (prev.Text == "++" || prev.Text == "--")) {
		r.markReassigned(t.Text)
		r.pos++
		return
	}

	r.countUse(t.Text)
	r.pos++
}

func (r *resolver) declareParam(fn ScopeID, t scan.Token) {
	id := r.tree.Declare(fn, t.Text, BindParam, t.Span)
	b := r.tree.Binding(id)
	b.Exempt = r.ignore.MatchString(t.Text)
}

// handleClassMember treats identifiers directly inside a class body as member
// names, turning `name(...)` sequences into method scopes.
func (r *resolver) handleClassMember(t scan.Token, prev scan.Token, hasPrev bool) {
	memberHead := !hasPrev
	if hasPrev {
		switch prev.Text {
		case "{", "}", ";", ",", "static", "get", "set", "async", "*", "#":
			memberHead = true
		}
	}
	if !memberHead {
		r.countUse(t.Text)
		r.pos++
		return
	}
	if next, ok := r.peek(1); ok && next.Text == "(" {
		// method definition
		r.pos++
		fn := r.tree.NewScope(ScopeFunction, r.scope)
		r.parseParams(fn)
		r.pendingScope = fn
		return
	}
	// field name (possibly with an initializer handled as a plain expression)
	r.pos++
	if next, ok := r.cur(); ok && next.Text == "=" {
		r.pos++
	}
}

func (r *resolver) countUse(name string) {
	if r.decl != nil {
		if _, declaring := r.decl.names[name]; declaring {
			return // self-initializer reference
		}
	}
	if id, ok := r.tree.Lookup(r.scope, name); ok {
		b := r.tree.Binding(id)
		b.Uses++
		b.Used = true
	}
}

func (r *resolver) markReassigned(name string) {
	if r.decl != nil {
		if _, declaring := r.decl.names[name]; declaring {
			return
		}
	}
	if id, ok := r.tree.Lookup(r.scope, name); ok {
		r.tree.Binding(id).Reassigned = true
	}
}
