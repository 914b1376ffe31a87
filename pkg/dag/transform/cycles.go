package transform

import "github.com/matzehuels/growtree/pkg/dag"

// BackEdges returns the edges that close a cycle, found by depth-first search
// from the roots and then from any node not yet visited. The graph is not
// modified. An acyclic graph yields nil.
func BackEdges(g *dag.DAG) [][2]string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	var back [][2]string

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				back = append(back, [2]string{node, child})
			}
		}
		color[node] = black
	}

	for _, n := range g.Roots() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	return back
}
