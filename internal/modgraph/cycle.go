package modgraph

import (
	"relint/internal/source"
)

// Cycle describes an import cycle that passes through a given entry file.
type Cycle struct {
	// Path holds the file paths along the cycle, entry first and the
	// entry repeated last.
	Path []string
	// At is the import in the entry file that leads into the cycle.
	At source.Span
}

type dfsFrame struct {
	id  source.FileID
	via source.Span // the import span the edge was taken through
	nxt int         // next import index to try
}

// CycleFrom runs an iterative depth-first walk over resolved edges starting
// at entry and reports the first back-edge that returns to the entry file.
// Each file detects its own cycles, so a two-file mutual import reports on
// both files rather than once globally.
func (g *Graph) CycleFrom(entry source.FileID) (Cycle, bool) {
	start := g.nodes[entry]
	if start == nil {
		return Cycle{}, false
	}
	stack := []dfsFrame{{id: entry}}
	visited := map[source.FileID]bool{entry: true}

	for len(stack) > 0 {
		top := len(stack) - 1
		n := g.nodes[stack[top].id]
		advanced := false
		for stack[top].nxt < len(n.Imports) {
			imp := n.Imports[stack[top].nxt]
			stack[top].nxt++
			if !imp.Resolved {
				continue
			}
			if imp.Target == entry {
				c := Cycle{Path: make([]string, 0, len(stack)+1)}
				for _, fr := range stack {
					c.Path = append(c.Path, g.nodes[fr.id].Path)
				}
				c.Path = append(c.Path, start.Path)
				if len(stack) > 1 {
					c.At = stack[1].via
				} else {
					c.At = imp.Span
				}
				return c, true
			}
			if visited[imp.Target] {
				continue
			}
			visited[imp.Target] = true
			stack = append(stack, dfsFrame{id: imp.Target, via: imp.Span})
			advanced = true
			break
		}
		if !advanced {
			stack = stack[:top]
		}
	}
	return Cycle{}, false
}
