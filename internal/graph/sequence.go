package graph

import (
	"sort"
	"strings"

	"warebridge/pkg/errors"
)

// Sequence computes one valid processing order for an acyclic graph:
// dependencies always precede the warehouses that reference them. Kahn-style
// counting over remaining dependencies, so warehouses with nothing left to
// wait on are emitted first. Ties are broken lexicographically, which makes
// the order reproducible across runs.
//
// Callers are expected to have checked FindCycles first. The vertex-count
// postcondition is a defensive double-check: a short result means a cycle
// slipped through or the graph is inconsistent, and the error names the
// warehouses that could not be placed.
func Sequence(g *Graph) ([]string, error) {
	if g.Len() == 0 {
		return nil, errors.New(errors.ErrCodeGraphEmpty, "Dependency graph has no warehouses")
	}

	remaining := make(map[string]int, g.Len())
	dependents := make(map[string][]string, g.Len())

	for k, deps := range g.deps {
		remaining[k] = len(deps)
		for dk := range deps {
			dependents[dk] = append(dependents[dk], k)
		}
	}

	var ready []string
	for k, n := range remaining {
		if n == 0 {
			ready = append(ready, k)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, g.Len())
	for len(ready) > 0 {
		current := ready[0]
		ready = ready[1:]
		order = append(order, g.names[current])

		for _, dep := range dependents[current] {
			remaining[dep]--
			if remaining[dep] == 0 {
				i := sort.SearchStrings(ready, dep)
				ready = append(ready, "")
				copy(ready[i+1:], ready[i:])
				ready[i] = dep
			}
		}
	}

	if len(order) != g.Len() {
		placed := make(map[string]bool, len(order))
		for _, name := range order {
			placed[key(name)] = true
		}
		var unresolved []string
		for k := range g.deps {
			if !placed[k] {
				unresolved = append(unresolved, g.names[k])
			}
		}
		sort.Strings(unresolved)

		return nil, errors.New(errors.ErrCodeSequenceIncomplete,
			"Processing order is incomplete, graph is cyclic or inconsistent").
			WithContext("unresolved", strings.Join(unresolved, ", ")).
			WithContext("placed", len(order)).
			WithContext("total", g.Len()).
			WithSeverity(errors.SeverityCritical)
	}

	return order, nil
}
