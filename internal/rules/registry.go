package rules

import (
	"fmt"
	"sort"
)

var registry = make(map[string]Rule)

// Register adds a rule to the catalog. Rules register from init, so a
// duplicate id is a programming error and panics immediately.
func Register(r Rule) {
	name := r.Meta().Name
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("rules: duplicate registration of %q", name))
	}
	registry[name] = r
}

// Get looks a rule up by its exact id, including any plugin prefix.
func Get(name string) (Rule, bool) {
	r, ok := registry[name]
	return r, ok
}

// All returns every registered rule ordered by id.
func All() []Rule {
	out := make([]Rule, 0, len(registry))
	for _, r := range registry {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Meta().Name < out[j].Meta().Name
	})
	return out
}

// Names returns the sorted ids of every registered rule.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
