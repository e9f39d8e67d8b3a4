package graph

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapSource serves references out of a fixed map; names in failures error out
type mapSource struct {
	refs     map[string][]string
	failures map[string]bool
	queries  []string
}

func (m *mapSource) References(ctx context.Context, warehouse string) ([]string, error) {
	m.queries = append(m.queries, warehouse)
	if m.failures[warehouse] {
		return nil, fmt.Errorf("access denied to %s", warehouse)
	}
	return m.refs[warehouse], nil
}

func graphFrom(t *testing.T, adjacency map[string][]string) *Graph {
	t.Helper()
	g := NewGraph()
	for w, deps := range adjacency {
		g.Add(w)
		for _, d := range deps {
			g.AddDependency(w, d)
		}
	}
	return g
}

func TestGraphCaseInsensitive(t *testing.T) {
	g := NewGraph()
	g.AddDependency("Sales", "Inventory")
	g.AddDependency("SALES", "inventory")

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"Inventory"}, g.Dependencies("sales"))
	assert.True(t, g.DependsOn("SaLeS", "INVENTORY"))
}

func TestGraphCollapsesSelfReference(t *testing.T) {
	g := NewGraph()
	g.AddDependency("Sales", "Sales")

	assert.Equal(t, 1, g.Len())
	assert.Empty(t, g.Dependencies("Sales"))
}

func TestBuildTransitiveDiscovery(t *testing.T) {
	source := &mapSource{refs: map[string][]string{
		"Reporting": {"Sales"},
		"Sales":     {"Inventory", "Reference"},
		"Inventory": {"Reference"},
	}}

	g, warnings := Build(context.Background(), source, "Reporting")

	assert.Empty(t, warnings)
	assert.Equal(t, 4, g.Len())
	assert.Equal(t, []string{"Inventory", "Reference"}, g.Dependencies("Sales"))
	assert.Empty(t, g.Dependencies("Reference"))
	// Every warehouse is queried exactly once
	assert.Len(t, source.queries, 4)
}

func TestBuildSeedOnlyGraph(t *testing.T) {
	source := &mapSource{refs: map[string][]string{}}

	g, warnings := Build(context.Background(), source, "Standalone")

	assert.Empty(t, warnings)
	assert.Equal(t, 1, g.Len())
	assert.True(t, g.Has("Standalone"))
}

// Scenario E: a warehouse whose catalog query fails still appears as a key
// with an empty dependency set, a warning is surfaced, and Build succeeds.
func TestBuildCatalogFailureIsNonFatal(t *testing.T) {
	source := &mapSource{
		refs: map[string][]string{
			"Reporting": {"Sales", "Locked"},
			"Sales":     {"Inventory"},
		},
		failures: map[string]bool{"Locked": true},
	}

	g, warnings := Build(context.Background(), source, "Reporting")

	require.Len(t, warnings, 1)
	assert.Equal(t, "Locked", warnings[0].Warehouse)
	assert.Contains(t, warnings[0].String(), "catalog query failed")

	assert.True(t, g.Has("Locked"))
	assert.Empty(t, g.Dependencies("Locked"))
	// The rest of the chain is still fully discovered
	assert.True(t, g.Has("Inventory"))
}

func TestFindCyclesAcyclic(t *testing.T) {
	g := graphFrom(t, map[string][]string{
		"X": {},
		"Y": {"X"},
		"Z": {"Y"},
	})

	assert.Empty(t, FindCycles(g))
}

// Scenario B: {X: {Y}, Y: {X}} yields exactly one cycle [X, Y, X].
func TestFindCyclesTwoNodeCycle(t *testing.T) {
	g := graphFrom(t, map[string][]string{
		"X": {"Y"},
		"Y": {"X"},
	})

	cycles := FindCycles(g)
	require.Len(t, cycles, 1)
	assert.Equal(t, Cycle{"X", "Y", "X"}, cycles[0])
	assert.Equal(t, "X -> Y -> X", cycles[0].String())
}

func TestFindCyclesSelfContainedAndLonger(t *testing.T) {
	g := graphFrom(t, map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {"A"},
		"D": {"E"},
		"E": {"D"},
		"F": {},
	})

	cycles := FindCycles(g)
	require.Len(t, cycles, 2)
	assert.Equal(t, Cycle{"A", "B", "C", "A"}, cycles[0])
	assert.Equal(t, Cycle{"D", "E", "D"}, cycles[1])
}

// A diamond is a DAG with a shared ancestor; revisiting the finished vertex
// must not be misreported as a cycle.
func TestFindCyclesDiamondIsNotACycle(t *testing.T) {
	g := graphFrom(t, map[string][]string{
		"Top":   {"Left", "Right"},
		"Left":  {"Base"},
		"Right": {"Base"},
		"Base":  {},
	})

	assert.Empty(t, FindCycles(g))
}

// Scenario A: {X: {}, Y: {X}, Z: {Y}} sequences to [X, Y, Z].
func TestSequenceChain(t *testing.T) {
	g := graphFrom(t, map[string][]string{
		"X": {},
		"Y": {"X"},
		"Z": {"Y"},
	})

	order, err := Sequence(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y", "Z"}, order)
}

func TestSequenceLexicographicTieBreak(t *testing.T) {
	g := graphFrom(t, map[string][]string{
		"Zulu":  {},
		"Alpha": {},
		"Mike":  {"Alpha", "Zulu"},
	})

	order, err := Sequence(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Zulu", "Mike"}, order)
}

func TestSequenceDependenciesPrecedeDependents(t *testing.T) {
	g := graphFrom(t, map[string][]string{
		"Reporting": {"Sales", "Inventory"},
		"Sales":     {"Reference"},
		"Inventory": {"Reference"},
		"Reference": {},
		"Audit":     {"Reporting"},
	})

	order, err := Sequence(g)
	require.NoError(t, err)
	require.Len(t, order, g.Len())

	position := make(map[string]int, len(order))
	for i, w := range order {
		position[w] = i
	}

	for _, w := range g.Warehouses() {
		for _, dep := range g.Dependencies(w) {
			assert.Less(t, position[dep], position[w],
				"%s must precede %s", dep, w)
		}
	}
}

func TestSequenceRefusesCyclicGraph(t *testing.T) {
	g := graphFrom(t, map[string][]string{
		"X": {"Y"},
		"Y": {"X"},
		"Z": {},
	})

	order, err := Sequence(g)
	require.Error(t, err)
	assert.Nil(t, order)
	assert.Contains(t, err.Error(), "incomplete")

	// The unresolved warehouses are named in the error context
	assert.Contains(t, fmt.Sprint(err), "WBE3002")
}

func TestSequenceEmptyGraph(t *testing.T) {
	_, err := Sequence(NewGraph())
	assert.Error(t, err)
}
