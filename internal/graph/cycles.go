package graph

import (
	"sort"
	"strings"
)

// Cycle is one circular reference chain, expressed as warehouse display
// names with the starting warehouse repeated at the end: w1 -> w2 -> w1.
type Cycle []string

func (c Cycle) String() string {
	return strings.Join(c, " -> ")
}

// FindCycles reports every cycle in the graph using three-color depth-first
// search. A vertex on the current recursion stack reached again closes a
// cycle; a vertex that is merely finished is a shared ancestor in a DAG and
// is not re-explored. Traversal order is lexicographic so repeated runs
// report cycles identically.
func FindCycles(g *Graph) []Cycle {
	var cycles []Cycle

	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var path []string

	var visit func(k string)
	visit = func(k string) {
		visited[k] = true
		onStack[k] = true
		path = append(path, k)

		for _, dep := range sortedKeys(g.deps[k]) {
			if onStack[dep] {
				cycles = append(cycles, g.slicePath(path, dep))
				continue
			}
			if !visited[dep] {
				visit(dep)
			}
		}

		onStack[k] = false
		path = path[:len(path)-1]
	}

	for _, k := range sortedKeys(boolKeySet(g.deps)) {
		if !visited[k] {
			visit(k)
		}
	}

	return cycles
}

// slicePath reconstructs the cycle from the first occurrence of the
// back-edge target through the end of the current DFS path, closing the
// loop with the target itself.
func (g *Graph) slicePath(path []string, target string) Cycle {
	start := 0
	for i, k := range path {
		if k == target {
			start = i
			break
		}
	}

	cycle := make(Cycle, 0, len(path)-start+1)
	for _, k := range path[start:] {
		cycle = append(cycle, g.names[k])
	}
	cycle = append(cycle, g.names[target])
	return cycle
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func boolKeySet(m map[string]map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}
