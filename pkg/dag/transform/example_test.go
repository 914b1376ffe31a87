package transform_test

import (
	"fmt"

	"github.com/matzehuels/growtree/pkg/dag"
	"github.com/matzehuels/growtree/pkg/dag/transform"
)

func ExampleAssignTiers() {
	// Tiers are left unset; only structure is given
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "spark", Root: true})
	_ = g.AddNode(dag.Node{ID: "flame"})
	_ = g.AddNode(dag.Node{ID: "ember"})
	_ = g.AddNode(dag.Node{ID: "inferno"})
	_ = g.AddEdge(dag.Edge{From: "spark", To: "flame"})
	_ = g.AddEdge(dag.Edge{From: "spark", To: "ember"})
	_ = g.AddEdge(dag.Edge{From: "flame", To: "inferno"})
	_ = g.AddEdge(dag.Edge{From: "ember", To: "inferno"})

	transform.AssignTiers(g)

	for _, id := range []string{"spark", "flame", "ember", "inferno"} {
		n, _ := g.Node(id)
		fmt.Printf("%s: tier %d\n", id, n.Tier)
	}
	// Output:
	// spark: tier 0
	// flame: tier 1
	// ember: tier 1
	// inferno: tier 2
}

func ExampleBackEdges() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "A", Root: true})
	_ = g.AddNode(dag.Node{ID: "B"})
	_ = g.AddNode(dag.Node{ID: "C"})
	_ = g.AddEdge(dag.Edge{From: "A", To: "B"})
	_ = g.AddEdge(dag.Edge{From: "B", To: "C"})
	_ = g.AddEdge(dag.Edge{From: "C", To: "B"}) // closes a cycle

	fmt.Println("Back edges:", transform.BackEdges(g))
	fmt.Println("Edges kept:", g.EdgeCount())
	// Output:
	// Back edges: [[C B]]
	// Edges kept: 3
}
