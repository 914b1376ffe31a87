// Package graph provides the wire formats of growtree: the input document
// that describes categories and the layout document that reports positions.
//
// # Input
//
// An [Input] lists categories, each with its sector, shape, behavior and
// nodes. It decodes from JSON or YAML:
//
//	categories:
//	  - name: fire
//	    shape: spiky
//	    behavior: burst
//	    nodes:
//	      - {id: spark, root: true, children: [flame, ember]}
//	      - {id: flame, tier: 1}
//	      - {id: ember, tier: 1, prerequisites: [spark]}
//
// Edges may be given as children, as prerequisites, or both; duplicates are
// merged. With auto_tier set, tiers are recomputed from the edges.
//
// Common operations:
//
//	in, _ := graph.ReadInputFile("spells.yaml")   // File → Input
//	cats, _ := graph.ToCategories(in, logger)     // Input → engine categories
//	data, _ := graph.MarshalInput(in)             // Input → canonical JSON
//
// # Layout
//
// A [Layout] holds one [PlacedNode] per input node, in input order, and one
// [CategoryStats] per category:
//
//	l := graph.FromResult(res, cats, engine.Config())
//	graph.WriteLayoutFile(l, "layout.json")
//
// All decoding errors carry codes from pkg/errors: INVALID_FORMAT for
// malformed documents, INVALID_INPUT for bad names or references.
package graph
