package graph

import (
	"sort"
	"strings"
)

// Graph holds the discovered dependency relation between warehouses: each
// warehouse maps to the set of warehouses its schema references. Warehouse
// names are case-insensitive; the first-seen spelling is kept for display.
type Graph struct {
	deps  map[string]map[string]bool
	names map[string]string
}

// NewGraph creates an empty dependency graph
func NewGraph() *Graph {
	return &Graph{
		deps:  make(map[string]map[string]bool),
		names: make(map[string]string),
	}
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Add ensures a warehouse appears as a vertex, even with no dependencies
func (g *Graph) Add(warehouse string) {
	k := key(warehouse)
	if k == "" {
		return
	}
	if _, ok := g.deps[k]; !ok {
		g.deps[k] = make(map[string]bool)
	}
	if _, ok := g.names[k]; !ok {
		g.names[k] = strings.TrimSpace(warehouse)
	}
}

// AddDependency records that warehouse references an object in dependsOn.
// Self references are collapsed away.
func (g *Graph) AddDependency(warehouse, dependsOn string) {
	wk, dk := key(warehouse), key(dependsOn)
	if wk == "" || dk == "" || wk == dk {
		return
	}
	g.Add(warehouse)
	g.Add(dependsOn)
	g.deps[wk][dk] = true
}

// Has reports whether the warehouse is a vertex in the graph
func (g *Graph) Has(warehouse string) bool {
	_, ok := g.deps[key(warehouse)]
	return ok
}

// Len returns the number of warehouses in the graph
func (g *Graph) Len() int {
	return len(g.deps)
}

// Warehouses returns all warehouse display names in lexicographic order
func (g *Graph) Warehouses() []string {
	out := make([]string, 0, len(g.deps))
	for k := range g.deps {
		out = append(out, g.names[k])
	}
	sort.Strings(out)
	return out
}

// Dependencies returns the display names of a warehouse's dependencies in
// lexicographic order. Returns nil for an unknown warehouse.
func (g *Graph) Dependencies(warehouse string) []string {
	set, ok := g.deps[key(warehouse)]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for dk := range set {
		out = append(out, g.names[dk])
	}
	sort.Strings(out)
	return out
}

// DependsOn reports whether warehouse lists dependsOn as a dependency
func (g *Graph) DependsOn(warehouse, dependsOn string) bool {
	set, ok := g.deps[key(warehouse)]
	if !ok {
		return false
	}
	return set[key(dependsOn)]
}
