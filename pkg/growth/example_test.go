package growth_test

import (
	"fmt"

	"github.com/matzehuels/growtree/pkg/config"
	"github.com/matzehuels/growtree/pkg/dag"
	"github.com/matzehuels/growtree/pkg/grid"
	"github.com/matzehuels/growtree/pkg/growth"
	"github.com/matzehuels/growtree/pkg/rng"
	"github.com/matzehuels/growtree/pkg/shape"
)

func ExamplePlace() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "spark", Root: true})
	for _, id := range []string{"flame", "ember", "ash"} {
		_ = g.AddNode(dag.Node{ID: id, Tier: 1})
		_ = g.AddEdge(dag.Edge{From: "spark", To: id})
	}

	cfg := config.Default()
	gen := grid.NewGenerator(cfg)
	sector := grid.Sector{Start: 0, End: 90}

	res := growth.Place(growth.Input{
		Graph:  g,
		Frame:  gen.Frame(sector),
		Grid:   grid.New(gen.ForSector(sector)),
		Config: cfg,
		Shape:  shape.Neutral,
		Stream: rng.NewStream(42),
	})

	root := res.Positions["spark"]
	fmt.Printf("root: tier %d at %.0f°\n", root.Tier, root.Angle)
	fmt.Println("placed:", res.Stats.Placed, "orphans:", res.Stats.Orphans)
	fmt.Println("order:", res.Order)
	// Output:
	// root: tier 0 at 45°
	// placed: 3 orphans: 0
	// order: [spark flame ember ash]
}
