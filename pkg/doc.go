// Package pkg provides the libraries behind growtree, a procedural layout
// engine for radial skill trees.
//
// # Overview
//
// Growtree takes one or more categories, each a tree of nodes on tiers, and
// computes 2-D positions around a common center. Every category owns an
// angular sector and grows outward from its roots, following a named shape
// (spiky, tree, cloud, ...) and a growth behavior (upward_surge, wandering,
// ...). Layouts are deterministic for a given seed.
//
// # Architecture
//
// The data flow through growtree:
//
//	Input document (JSON or YAML)
//	         ↓
//	    [graph] package (decode, validate, build per-category DAGs)
//	         ↓
//	    [layout] package (grid → growth → refine, categories in parallel)
//	         ↓
//	    [graph] package (layout document)
//
// The [pipeline] package ties these stages together and adds caching, and is
// shared by the CLI and the HTTP server.
//
// # Quick Start
//
//	in, _ := graph.ReadInputFile("tree.yaml")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, _ := runner.Execute(ctx, pipeline.Options{
//	    Input: in,
//	    Seed:  pipeline.SeedOf(42),
//	})
//	_ = graph.WriteLayoutFile(res.Layout, "tree.layout.json")
//
// # Main Packages
//
//   - [dag]: tiered tree structure with crossing counts and transforms
//   - [grid]: sector math and candidate slot grids
//   - [shape]: shape registry and scoring weights
//   - [behavior]: growth behaviors and their phases
//   - [growth]: slot assignment with fallbacks
//   - [refine]: barycenter sweeps and geometric repair passes
//   - [layout]: the per-category stage engine
//   - [graph]: input and layout documents
//   - [pipeline]: parse, layout and cache orchestration
//   - [cache]: file, Redis and null layout caches
//   - [config]: layout configuration
//   - [errors]: coded errors
//   - [observability]: hooks for stage timing and cache events
//   - [rng]: deterministic random stream
package pkg
