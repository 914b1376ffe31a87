package layout_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/growtree/pkg/dag"
	"github.com/matzehuels/growtree/pkg/layout"
)

func Example() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "spark", Root: true})
	for _, id := range []string{"flame", "ember", "ash"} {
		_ = g.AddNode(dag.Node{ID: id, Tier: 1})
		_ = g.AddEdge(dag.Edge{From: "spark", To: id})
	}

	e, err := layout.New(layout.Options{Seed: 42})
	if err != nil {
		panic(err)
	}
	res, err := e.Layout(context.Background(), []layout.Category{
		{Name: "fire", Shape: "spiky", Behavior: "burst", Graph: g},
		{Name: "frost"},
	})
	if err != nil {
		panic(err)
	}
	for _, c := range res.Categories {
		fmt.Printf("%s %v: %d nodes, shape %s\n", c.Name, c.Sector, len(c.Positions), c.Shape)
	}
	root := res.Categories[0].Positions["spark"]
	fmt.Printf("spark: tier %d at %.0f°\n", root.Tier, root.Angle)
	// Output:
	// fire [0.0°, 180.0°): 4 nodes, shape spiky
	// frost [180.0°, 360.0°): 0 nodes, shape organic
	// spark: tier 0 at 90°
}

func ExampleStages() {
	for _, s := range layout.Stages() {
		fmt.Println(s)
	}
	// Output:
	// root_placement
	// level_bfs_placement
	// orphan_assignment
	// barycenter_reorder
	// sitter_nudge
	// shape_conformity
	// density_stretch
}
