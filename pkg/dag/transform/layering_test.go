package transform

import (
	"testing"

	"github.com/matzehuels/growtree/pkg/dag"
)

func tierOf(t *testing.T, g *dag.DAG, id string) int {
	t.Helper()
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("node %s missing", id)
	}
	return n.Tier
}

func TestAssignTiers(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []dag.Node
		edges    [][2]string
		want     map[string]int
		wantBack int
	}{
		{
			name:  "chain",
			nodes: []dag.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
			edges: [][2]string{{"a", "b"}, {"b", "c"}},
			want:  map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name:  "longest path wins",
			nodes: []dag.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}},
			want:  map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name:  "unflagged source moves off root ring",
			nodes: []dag.Node{{ID: "r", Root: true}, {ID: "x"}, {ID: "y"}},
			edges: [][2]string{{"r", "y"}},
			want:  map[string]int{"r": 0, "x": 1, "y": 1},
		},
		{
			name:     "cycle",
			nodes:    []dag.Node{{ID: "r", Root: true}, {ID: "b"}, {ID: "c"}},
			edges:    [][2]string{{"r", "b"}, {"b", "c"}, {"c", "b"}},
			want:     map[string]int{"r": 0, "b": 1, "c": 2},
			wantBack: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := dag.New(nil)
			for _, n := range tt.nodes {
				_ = g.AddNode(n)
			}
			for _, e := range tt.edges {
				_ = g.AddEdge(dag.Edge{From: e[0], To: e[1]})
			}
			if back := AssignTiers(g); back != tt.wantBack {
				t.Errorf("AssignTiers() = %d back edges, want %d", back, tt.wantBack)
			}
			for id, want := range tt.want {
				if got := tierOf(t, g, id); got != want {
					t.Errorf("tier(%s) = %d, want %d", id, got, want)
				}
			}
		})
	}
}
