package graph

import (
	"context"
	"fmt"
)

// ReferenceSource answers which other warehouses a given warehouse
// references. The production implementation is the catalog client; tests
// substitute an in-memory map.
type ReferenceSource interface {
	References(ctx context.Context, warehouse string) ([]string, error)
}

// Warning records a non-fatal problem encountered during discovery
type Warning struct {
	Warehouse string
	Message   string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Warehouse, w.Message)
}

// Build discovers the full transitive dependency graph reachable from the
// seed warehouse using breadth-first traversal. A warehouse whose catalog
// query fails is recorded with an empty dependency set and a warning;
// discovery continues, so an inaccessible warehouse never blocks analysis
// of the rest of the chain. Its omitted edges are a correctness risk the
// operator must weigh, which is why the warning is surfaced rather than
// swallowed.
func Build(ctx context.Context, source ReferenceSource, seed string) (*Graph, []Warning) {
	g := NewGraph()
	var warnings []Warning

	processed := make(map[string]bool)
	queued := map[string]bool{key(seed): true}
	queue := []string{seed}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		ck := key(current)
		if processed[ck] {
			continue
		}
		processed[ck] = true

		g.Add(current)

		refs, err := source.References(ctx, current)
		if err != nil {
			warnings = append(warnings, Warning{
				Warehouse: current,
				Message:   fmt.Sprintf("catalog query failed, recorded with no dependencies: %v", err),
			})
			continue
		}

		for _, ref := range refs {
			rk := key(ref)
			if rk == "" || rk == ck {
				continue
			}
			g.AddDependency(current, ref)
			if !processed[rk] && !queued[rk] {
				queued[rk] = true
				queue = append(queue, ref)
			}
		}
	}

	return g, warnings
}
