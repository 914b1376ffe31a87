// Package shape defines the growth shapes a category tree can take.
//
// # Overview
//
// A shape is a [Strategy]: a bundle of rules that the placer and the refiner
// consult instead of branching on the shape name. Every rule works in
// normalized coordinates:
//
//   - depth is the node's tier divided by the deepest tier of the category
//     graph, in [0, 1] (see [Depth])
//   - angle is the offset from the sector center divided by half the usable
//     sector angle, in [-1, 1]
//
// The rules are:
//
//   - [Strategy.Mask]: a soft filter. The placer prefers candidate slots that
//     pass it and penalizes those that don't, but never rejects them.
//   - [Strategy.TargetAngle]: the angle rule layered on top of the BFS-derived
//     target angle during placement.
//   - [Strategy.Conform]: the authoritative silhouette remap applied after
//     placement. It depends only on depth and angle.
//   - [Strategy.Weights]: scoring constants for candidate selection.
//   - [Strategy.Stretch]: target extents for the final density stretch.
//
// # Built-in Shapes
//
// [All] lists the built-in shapes. [Find] resolves a name or alias; unknown
// names resolve to nothing and callers fall back to [Neutral].
package shape

import (
	"math"

	"github.com/matzehuels/growtree/pkg/rng"
)

// Profile holds the visual modifiers of a shape.
type Profile struct {
	Key string `json:"key"`

	// RadiusJitter is the maximum radial displacement, in canvas units,
	// applied to placed nodes.
	RadiusJitter float64 `json:"radius_jitter"`
	// AngleJitter is the maximum angular displacement in degrees.
	AngleJitter float64 `json:"angle_jitter"`
	// TierSpacingMult scales the distance between tiers.
	TierSpacingMult float64 `json:"tier_spacing_mult"`
	// SpreadMult scales the sibling fan and the angular wander.
	SpreadMult float64 `json:"spread_mult"`
	// TaperSpread is the normalized half-width left at the outermost tier of
	// a tapering shape. Zero for shapes that don't taper.
	TaperSpread float64 `json:"taper_spread"`
	// TaperAmount is how strongly the shape narrows with depth.
	TaperAmount float64 `json:"taper_amount"`
}

// Weights are the scoring constants used when choosing a slot.
// They are hand-tuned: what matters is the silhouette they produce, not the
// exact values.
type Weights struct {
	Angle       float64 `json:"angle"`        // cost per degree of angular miss
	Tier        float64 `json:"tier"`         // cost per tier of radial miss
	TopK        int     `json:"top_k"`        // pick uniformly among the K best
	SearchRange int     `json:"search_range"` // tiers searched beyond the target
	SkipFactor  int     `json:"skip_factor"`  // same-tier neighbours blocked on each side
	TierBias    float64 `json:"tier_bias"`    // >0 skips tiers, <0 compacts them
	RandomBonus float64 `json:"random_bonus"` // max random score reduction
	RootPull    float64 `json:"root_pull"`    // cost per degree from the owning root
}

// Stretch describes the density stretch target of a shape.
type Stretch struct {
	// Angular is the target fraction of the usable half-angle the tree should
	// span. Zero disables angular scaling.
	Angular float64 `json:"angular"`
	// Radial is the target fraction of the available radial range.
	Radial float64 `json:"radial"`
	// Cap bounds the uniform scale factor.
	Cap float64 `json:"cap"`
	// Taper reapplies the shape's envelope after scaling.
	Taper bool `json:"taper"`
}

// Strategy is one growth shape.
type Strategy interface {
	Name() string
	Profile() Profile
	Weights() Weights
	Stretch() Stretch

	// Mask reports whether a position fits the silhouette. Implementations
	// may draw from r; nil r means no draws are taken.
	Mask(depth, angle float64, r *rng.Stream) bool
	// TargetAngle transforms a target angle during placement.
	TargetAngle(depth, angle float64) float64
	// Conform remaps an angle to the silhouette.
	Conform(depth, angle float64) float64
	// Envelope returns the largest |angle| the silhouette allows at depth.
	Envelope(depth float64) float64
}

// base is the neutral strategy every shape starts from.
type base struct {
	name    string
	profile Profile
	weights Weights
	stretch Stretch
}

func (b base) Name() string     { return b.name }
func (b base) Profile() Profile { return b.profile }
func (b base) Weights() Weights { return b.weights }
func (b base) Stretch() Stretch { return b.stretch }

func (base) Mask(float64, float64, *rng.Stream) bool { return true }
func (base) TargetAngle(_, a float64) float64        { return clamp1(a) }
func (base) Conform(_, a float64) float64            { return clamp1(a) }
func (base) Envelope(float64) float64                { return 1 }

func clamp1(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return max(-1, min(v, 1))
}

// Depth normalizes tier against outer, the deepest tier of the category's
// graph, clamped to [0, 1]. Placement and refinement both use it, so the mask
// and the conformity remap judge a node at the same depth.
func Depth(tier, outer int) float64 {
	return clamp01(float64(tier) / float64(max(1, outer)))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return max(0, min(v, 1))
}

func lerp(a, b, t float64) float64 { return a + (b-a)*clamp01(t) }

// sign returns -1 for negative values and 1 otherwise, so the center line
// belongs to the positive side.
func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// nearest returns the element of targets closest to v. Ties go to the
// earlier element.
func nearest(v float64, targets []float64) float64 {
	best := targets[0]
	for _, t := range targets[1:] {
		if math.Abs(v-t) < math.Abs(v-best) {
			best = t
		}
	}
	return best
}
