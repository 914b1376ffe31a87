// Package transform derives tier assignments for category graphs.
//
// Input documents may omit tiers and describe only parent/child structure.
// [AssignTiers] computes tiers from that structure using a longest-path
// layering, so every child sits strictly outward of all its parents. Roots
// stay on tier 0.
//
// The layout engine assumes acyclic input but must not fail on a cycle.
// [BackEdges] finds the edges that close cycles without modifying the graph;
// AssignTiers ignores them when layering.
package transform
