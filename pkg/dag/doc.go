// Package dag provides the tiered tree structure the layout engine places.
//
// # Overview
//
// Each category of a growtree layout is one [DAG]: a set of nodes organized
// into concentric tiers radiating from one or more roots. Edges run from a
// parent to a child. Unlike a layered drawing, an edge may skip tiers, so a
// child on tier 3 can hang off a parent on tier 1.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [DAG.AddNode] and edges with
// [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "spark", Root: true})
//	g.AddNode(dag.Node{ID: "flame", Tier: 1})
//	g.AddEdge(dag.Edge{From: "spark", To: "flame"})
//
// Query the structure with [DAG.Children], [DAG.Parents], [DAG.NodesInTier]
// and [DAG.Roots]. All node listings follow insertion order, so two graphs
// built from the same input iterate identically. Seeded layouts depend on it.
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] use a Fenwick tree (binary
// indexed tree) to count inversions in O(E log V) time. The refiner calls
// them to keep the best ordering found during barycenter sweeps.
//
// # Validation
//
// [DAG.Validate] checks edge endpoints, tier ranges and acyclicity. The layout
// engine never requires a valid graph; callers use Validate to warn early.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Read-only operations such as
// counting crossings can run in parallel on a graph nobody mutates.
//
// # Related Packages
//
// The [transform] subpackage derives tiers for inputs that omit them.
//
// [transform]: github.com/matzehuels/growtree/pkg/dag/transform
package dag
