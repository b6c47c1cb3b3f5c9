// Package modgraph builds the directed import graph for one run. Nodes are
// the code files of the run's file set; edges come from import/require
// specifiers extracted by pattern scanning over code zones. The graph is
// built once, before any rule executes, and is read-only afterwards.
package modgraph

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"relint/internal/scan"
	"relint/internal/source"
)

// NoFile marks an import edge without a resolved in-set target.
const NoFile = ^source.FileID(0)

// DefaultExtensions is the probe order for extension-less relative
// specifiers.
var DefaultExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"}

// NamedBinding is one name pulled in by a static import, recorded under the
// name it carries in the origin module (local aliases live in scope data).
type NamedBinding struct {
	Name string
	Span source.Span
}

// Import is one specifier extracted from a file.
type Import struct {
	Specifier string
	Span      source.Span // the specifier literal, quotes included
	Named     []NamedBinding
	Default   bool // binds the target's default export
	Namespace bool
	TypeOnly  bool
	Relative  bool
	Resolved  bool          // points at a file in the set
	OnDisk    bool          // exists on disk but outside the set
	Target    source.FileID // valid only when Resolved
}

// ExportSet records everything a file makes visible to importers.
type ExportSet struct {
	Names   map[string]source.Span
	Default bool
	Opaque  bool     // CommonJS module.exports assignment; shape unknown
	Star    []string // `export * from` specifiers, followed one level
}

// Node is one file in the graph.
type Node struct {
	File    source.FileID
	Path    string
	Imports []Import
	Exports ExportSet

	starTargets []source.FileID
}

// Indexer supplies the zone index for a file. The engine routes this through
// its per-run cache so classification happens once per file.
type Indexer func(f *source.File) *scan.Index

// Options control graph construction.
type Options struct {
	Extensions []string
	Index      Indexer
}

// Graph is the run-level module graph.
type Graph struct {
	fs    *source.FileSet
	nodes map[source.FileID]*Node
	order []source.FileID
	exts  []string
}

// Build extracts imports and exports from every code file and resolves the
// relative edges. Markdown and other non-code files never become nodes.
func Build(fs *source.FileSet, files []source.FileID, opts Options) *Graph {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	index := opts.Index
	if index == nil {
		index = func(f *source.File) *scan.Index { return scan.NewIndex(f) }
	}

	g := &Graph{
		fs:    fs,
		nodes: make(map[source.FileID]*Node, len(files)),
		exts:  exts,
	}
	for _, id := range files {
		f := fs.Get(id)
		if f == nil || f.Format != source.FormatCode {
			continue
		}
		node := &Node{
			File:    id,
			Path:    f.Path,
			Exports: ExportSet{Names: make(map[string]source.Span)},
		}
		extract(node, f, scan.Tokenize(index(f)))
		g.nodes[id] = node
		g.order = append(g.order, id)
	}
	sort.Slice(g.order, func(i, j int) bool {
		return g.nodes[g.order[i]].Path < g.nodes[g.order[j]].Path
	})

	for _, id := range g.order {
		g.resolveNode(g.nodes[id])
	}
	return g
}

// Files returns the node file IDs in lexicographic path order.
func (g *Graph) Files() []source.FileID {
	return g.order
}

// Node returns the graph node for a file, or nil for non-code files.
func (g *Graph) Node(id source.FileID) *Node {
	return g.nodes[id]
}

// HasExport reports whether target exports name, following `export * from`
// re-exports one level. Opaque (CommonJS) targets accept any name since
// their export shape is unknown.
func (g *Graph) HasExport(target source.FileID, name string) bool {
	n := g.nodes[target]
	if n == nil || n.Exports.Opaque {
		return true
	}
	if _, ok := n.Exports.Names[name]; ok {
		return true
	}
	if name == "default" && n.Exports.Default {
		return true
	}
	for _, st := range n.starTargets {
		m := g.nodes[st]
		if m == nil {
			continue
		}
		if m.Exports.Opaque {
			return true
		}
		if _, ok := m.Exports.Names[name]; ok {
			return true
		}
	}
	return false
}

func (g *Graph) resolveNode(n *Node) {
	for i := range n.Imports {
		imp := &n.Imports[i]
		imp.Relative = isRelative(imp.Specifier)
		if !imp.Relative {
			continue
		}
		target, onDisk := g.resolveSpecifier(n.Path, imp.Specifier)
		if target != NoFile {
			imp.Resolved = true
			imp.Target = target
		} else if onDisk {
			imp.OnDisk = true
		}
	}
	for _, spec := range n.Exports.Star {
		if !isRelative(spec) {
			continue
		}
		if target, _ := g.resolveSpecifier(n.Path, spec); target != NoFile {
			n.starTargets = append(n.starTargets, target)
		}
	}
}

// resolveSpecifier probes the literal path, then each known extension, then
// an index file inside the directory. The first candidate that matches wins;
// a file in the set beats the same path on disk.
func (g *Graph) resolveSpecifier(fromPath, spec string) (source.FileID, bool) {
	base := path.Join(path.Dir(fromPath), spec)
	cands := make([]string, 0, 1+2*len(g.exts))
	cands = append(cands, base)
	for _, ext := range g.exts {
		cands = append(cands, base+ext)
	}
	for _, ext := range g.exts {
		cands = append(cands, path.Join(base, "index"+ext))
	}

	for _, cand := range cands {
		if id, ok := g.fs.GetLatest(cand); ok {
			return id, false
		}
		if info, err := os.Stat(filepath.FromSlash(cand)); err == nil && !info.IsDir() {
			return NoFile, true
		}
	}
	return NoFile, false
}

func isRelative(spec string) bool {
	return spec == "." || spec == ".." ||
		strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}
