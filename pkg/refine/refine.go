// Package refine improves a placement with four geometric passes that always
// run in this order:
//
//  1. [Barycenter] reorders nodes within each tier to reduce edge crossings.
//     Each sweep recomputes a node's order value as the mean angle of its
//     neighbors on the same or adjacent tier, sorts the tier by that value
//     and hands the tier's existing angular positions out in the new order.
//     Radii and tiers never change. The ordering with the fewest crossings
//     seen is kept.
//  2. [NudgeSitters] pushes nodes that sit on an edge they do not belong to
//     off that edge, once, in a single pass.
//  3. [Conform] remaps every non-root angle to the shape silhouette. This is
//     the authoritative shape enforcement; the placement mask is only a
//     preference.
//  4. [Stretch] scales the tree uniformly around its root anchor toward the
//     shape's target extent.
//
// All passes mutate the position map in place and are deterministic.
package refine

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/growtree/pkg/config"
	"github.com/matzehuels/growtree/pkg/dag"
	"github.com/matzehuels/growtree/pkg/grid"
	"github.com/matzehuels/growtree/pkg/growth"
	"github.com/matzehuels/growtree/pkg/shape"
)

// DefaultPasses is the number of alternating barycenter sweeps.
const DefaultPasses = 4

// Input is what every pass works on.
type Input struct {
	Graph     *dag.DAG
	Positions growth.Positions
	Frame     grid.Frame
	Config    config.Layout
	Shape     shape.Strategy
	Logger    *log.Logger
	// Passes is the number of barycenter sweeps. Zero means DefaultPasses.
	Passes int
}

// Stats summarizes a refinement.
type Stats struct {
	CrossingsBefore int     `json:"crossings_before"`
	CrossingsAfter  int     `json:"crossings_after"`
	Nudged          int     `json:"nudged"`
	Stretch         float64 `json:"stretch"`
}

func (in Input) withDefaults() Input {
	if in.Shape == nil {
		in.Shape = shape.Neutral
	}
	if in.Logger == nil {
		in.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if in.Graph == nil {
		in.Graph = dag.New(nil)
	}
	if in.Passes <= 0 {
		in.Passes = DefaultPasses
	}
	in.Config = in.Config.WithDefaults()
	return in
}

// Refine runs all four passes in order.
func Refine(in Input) Stats {
	var st Stats
	st.CrossingsBefore, st.CrossingsAfter = Barycenter(in)
	st.Nudged = NudgeSitters(in)
	Conform(in)
	st.Stretch = Stretch(in)
	return st
}

// movable reports whether a pass may move p. Roots keep their exact polar
// position and overflow nodes stay at the origin.
func movable(p growth.Position) bool { return !p.Root && !p.Overflow }

// outerTier is the tier depth is normalized against: the graph's deepest
// tier, as during placement. Without a graph the outermost placed tier is
// used.
func outerTier(in Input) int {
	if in.Graph.NodeCount() > 0 {
		return in.Graph.MaxTier()
	}
	m := 0
	for _, p := range in.Positions {
		m = max(m, p.Tier)
	}
	return m
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
