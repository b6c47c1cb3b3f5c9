package scope

import (
	"relint/internal/source"
)

// ScopeID addresses a scope inside a Tree's arena.
type ScopeID uint32

// BindingID addresses a binding inside a Tree's arena.
type BindingID uint32

// NoScope is the parent of the root scope.
const NoScope ScopeID = ^ScopeID(0)

// ScopeKind classifies a lexical scope.
type ScopeKind uint8

const (
	ScopeModule ScopeKind = iota
	ScopeFunction
	ScopeBlock
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	}
	return "unknown"
}

// BindKind records the declaration form that introduced a binding.
type BindKind uint8

const (
	BindConst BindKind = iota
	BindLet
	BindVar
	BindParam
	BindImport
	BindDestructure
	// BindFunc covers function and class declarations; they are tracked for
	// usage like any binding but are never prefer-const candidates.
	BindFunc
)

func (k BindKind) String() string {
	switch k {
	case BindConst:
		return "const"
	case BindLet:
		return "let"
	case BindVar:
		return "var"
	case BindParam:
		return "param"
	case BindImport:
		return "import"
	case BindDestructure:
		return "destructure"
	case BindFunc:
		return "func"
	}
	return "unknown"
}

// Binding is a named declaration tracked for usage and shadowing analysis.
type Binding struct {
	Name       string
	Kind       BindKind
	Scope      ScopeID
	Span       source.Span
	Uses       int
	Used       bool
	Reassigned bool
	Exempt     bool // name matches the configured ignore pattern
	Exported   bool // declared with an export modifier; never unused
}

// Scope is a node in the scope tree. Scopes live in an arena addressed by
// ScopeID; Parent is an index, not a reference, so the tree has no cycles to
// manage.
type Scope struct {
	Kind   ScopeKind
	Parent ScopeID
	names  map[string]BindingID
}

// Tree is the result of resolving one file: an arena of scopes, an arena of
// bindings, and the set of empty destructuring patterns encountered.
type Tree struct {
	scopes        []Scope
	bindings      []Binding
	emptyPatterns []source.Span
}

// NewTree creates a tree containing only the module root scope.
func NewTree() *Tree {
	t := &Tree{
		scopes:   make([]Scope, 0, 8),
		bindings: make([]Binding, 0, 16),
	}
	t.NewScope(ScopeModule, NoScope)
	return t
}

// Root returns the module scope id.
func (t *Tree) Root() ScopeID { return 0 }

// NewScope appends a scope to the arena and returns its id.
func (t *Tree) NewScope(kind ScopeKind, parent ScopeID) ScopeID {
	id := ScopeID(len(t.scopes))
	t.scopes = append(t.scopes, Scope{
		Kind:   kind,
		Parent: parent,
		names:  make(map[string]BindingID),
	})
	return id
}

// Scope returns the scope for an id.
func (t *Tree) Scope(id ScopeID) *Scope {
	return &t.scopes[id]
}

// ScopeCount returns the number of scopes in the arena.
func (t *Tree) ScopeCount() int { return len(t.scopes) }

// Declare registers a binding in the given scope. A redeclaration in the
// same scope keeps both binding records but the name map points at the
// newest one.
func (t *Tree) Declare(scope ScopeID, name string, kind BindKind, span source.Span) BindingID {
	id := BindingID(len(t.bindings))
	t.bindings = append(t.bindings, Binding{
		Name:  name,
		Kind:  kind,
		Scope: scope,
		Span:  span,
	})
	t.scopes[scope].names[name] = id
	return id
}

// Binding returns the binding for an id.
func (t *Tree) Binding(id BindingID) *Binding {
	return &t.bindings[id]
}

// Bindings returns all bindings in declaration order.
// Callers must not grow the returned slice.
func (t *Tree) Bindings() []Binding {
	return t.bindings
}

// MutBindings is like Bindings but intended for in-place counter updates.
func (t *Tree) MutBindings() []Binding {
	return t.bindings
}

// Lookup resolves a name starting at the given scope and walking outwards.
// The nearest enclosing scope's binding wins (standard lexical shadowing).
func (t *Tree) Lookup(from ScopeID, name string) (BindingID, bool) {
	for s := from; s != NoScope; s = t.scopes[s].Parent {
		if id, ok := t.scopes[s].names[name]; ok {
			return id, true
		}
	}
	return 0, false
}

// ShadowTarget returns the binding the given one shadows, if any: the same
// name resolved from the binding's enclosing scope's parent outward.
func (t *Tree) ShadowTarget(id BindingID) (BindingID, bool) {
	b := t.bindings[id]
	parent := t.scopes[b.Scope].Parent
	if parent == NoScope {
		return 0, false
	}
	return t.Lookup(parent, b.Name)
}

// RecordEmptyPattern notes an object/array destructuring pattern that binds
// nothing.
func (t *Tree) RecordEmptyPattern(span source.Span) {
	t.emptyPatterns = append(t.emptyPatterns, span)
}

// EmptyPatterns returns the spans of empty destructuring patterns.
func (t *Tree) EmptyPatterns() []source.Span {
	return t.emptyPatterns
}
