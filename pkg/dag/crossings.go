package dag

import (
	"maps"
	"slices"
)

// CountCrossings returns the total number of edge crossings for the given tier
// orderings. It sums the crossings between each pair of consecutive tiers
// present in the map. Orders list node IDs in ascending angular order.
//
// Example:
//
//	orders := map[int][]string{
//	    0: {"spark"},
//	    1: {"flame", "ember", "ash"},
//	}
//	crossings := dag.CountCrossings(g, orders)
//
// Edges that skip tiers are only counted against the next tier that holds
// their child, so the result is a lower bound for graphs with long edges.
func CountCrossings(g *DAG, orders map[int][]string) int {
	tiers := slices.Sorted(maps.Keys(orders))
	crossings := 0
	for i := 0; i < len(tiers)-1; i++ {
		crossings += CountLayerCrossings(g, orders[tiers[i]], orders[tiers[i+1]])
	}
	return crossings
}

// CountLayerCrossings counts edge crossings between two tiers using a
// Fenwick tree (binary indexed tree) for O(E log V) performance where E is the
// number of edges between the tiers and V is the number of nodes in the outer tier.
//
// Two edges (u1,v1) and (u2,v2) cross if and only if:
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
//
// This is equivalent to counting inversions in the sequence of target positions
// when edges are sorted by source position.
//
// Returns 0 if either tier is empty, as no crossings can exist without edges.
func CountLayerCrossings(g *DAG, inner, outer []string) int {
	if len(inner) == 0 || len(outer) == 0 {
		return 0
	}

	outerPos := PosMap(outer)

	type edge struct{ inner, outer int }
	edges := make([]edge, 0, len(inner)*2)
	for i, nodeID := range inner {
		for _, child := range g.Children(nodeID) {
			if pos, ok := outerPos[child]; ok {
				edges = append(edges, edge{i, pos})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}

	slices.SortFunc(edges, func(a, b edge) int {
		if a.inner != b.inner {
			return a.inner - b.inner
		}
		return a.outer - b.outer
	})

	fenwick := make([]int, len(outer)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		// edges seen so far with target <= e.outer
		lessOrEqual := 0
		for q := e.outer + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual

		total++
		for idx := e.outer + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}
