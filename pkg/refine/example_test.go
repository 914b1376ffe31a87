package refine_test

import (
	"fmt"

	"github.com/matzehuels/growtree/pkg/dag"
	"github.com/matzehuels/growtree/pkg/grid"
	"github.com/matzehuels/growtree/pkg/growth"
	"github.com/matzehuels/growtree/pkg/refine"
)

func ExampleBarycenter() {
	g := dag.New(nil)
	for _, id := range []string{"spark", "flame", "frost", "blaze", "ice"} {
		_ = g.AddNode(dag.Node{ID: id})
	}
	_ = g.AddEdge(dag.Edge{From: "spark", To: "flame"})
	_ = g.AddEdge(dag.Edge{From: "spark", To: "frost"})
	_ = g.AddEdge(dag.Edge{From: "flame", To: "blaze"})
	_ = g.AddEdge(dag.Edge{From: "frost", To: "ice"})

	place := func(id string, tier int, angle, radius float64) growth.Position {
		p := growth.Position{ID: id, Tier: tier, Slot: tier}
		p.SetPolar(angle, radius, 0, 0)
		return p
	}
	root := place("spark", 0, 45, 80)
	root.Root, root.Slot = true, growth.NoSlot
	pos := growth.Positions{
		"spark": root,
		"flame": place("flame", 1, 30, 140),
		"frost": place("frost", 1, 60, 140),
		"blaze": place("blaze", 2, 60, 200),
		"ice":   place("ice", 2, 30, 200),
	}

	before, after := refine.Barycenter(refine.Input{
		Graph:     g,
		Positions: pos,
		Frame:     grid.NewFrame(grid.Sector{Start: 0, End: 90}, 0),
	})
	fmt.Printf("crossings: %d -> %d\n", before, after)
	fmt.Printf("blaze: %.0f°, ice: %.0f°\n", pos["blaze"].Angle, pos["ice"].Angle)
	// Output:
	// crossings: 1 -> 0
	// blaze: 30°, ice: 60°
}
