package transform

import "github.com/matzehuels/growtree/pkg/dag"

// AssignTiers assigns every node a tier based on its depth below the roots.
//
// It uses a longest-path layering via topological sort (Kahn's algorithm).
// Each node is placed at one plus the maximum tier of any of its parents:
//   - Flagged roots are at tier 0
//   - All parents are strictly inward of their children
//   - Each node is pushed as far out as its deepest parent requires
//
// When some nodes are flagged Root, any other node without prerequisites
// starts on tier 1 so it never shares the root ring. Edges returned by
// [BackEdges] are ignored, so cyclic input still receives finite tiers.
// Existing tier assignments are overwritten. Returns the number of ignored
// back edges.
//
// Time complexity is O(V + E).
func AssignTiers(g *dag.DAG) int {
	back := make(map[[2]string]bool)
	for _, e := range BackEdges(g) {
		back[e] = true
	}

	nodes := g.Nodes()
	hasFlagged := false
	for _, n := range nodes {
		if n.Root {
			hasFlagged = true
			break
		}
	}

	inDegree := make(map[string]int, len(nodes))
	for _, n := range nodes {
		for _, child := range g.Children(n.ID) {
			if !back[[2]string{n.ID, child}] {
				inDegree[child]++
			}
		}
	}

	tiers := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if inDegree[n.ID] != 0 {
			continue
		}
		if hasFlagged && !n.Root {
			tiers[n.ID] = 1
		}
		queue = append(queue, n.ID)
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if back[[2]string{curr, child}] {
				continue
			}
			if tier := tiers[curr] + 1; tier > tiers[child] {
				tiers[child] = tier
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	for _, n := range nodes {
		if n.Root {
			tiers[n.ID] = 0
		}
	}
	g.SetTiers(tiers)
	return len(back)
}
