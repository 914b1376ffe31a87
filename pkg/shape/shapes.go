package shape

import (
	"math"

	"github.com/matzehuels/growtree/pkg/rng"
)

// Neutral is the organic shape, used for unknown names.
var Neutral Strategy = organic{newOrganic()}

func newOrganic() base {
	return base{
		name: "organic",
		profile: Profile{
			Key:             "organic",
			RadiusJitter:    4,
			AngleJitter:     2,
			TierSpacingMult: 1,
			SpreadMult:      1,
		},
		weights: Weights{Angle: 1, Tier: 40, TopK: 3, SearchRange: 2, RandomBonus: 5, RootPull: 0.5},
		stretch: Stretch{Angular: 0.6, Radial: 0.8, Cap: 3},
	}
}

type organic struct{ base }

// spiky locks every branch onto one of a few fixed rays.
type spiky struct{ base }

var spikyRays = []float64{-0.8, -0.4, 0, 0.4, 0.8}

const rayTolerance = 0.08

func newSpiky() spiky {
	return spiky{base{
		name: "spiky",
		profile: Profile{
			Key:             "spiky",
			RadiusJitter:    2,
			TierSpacingMult: 1.15,
			SpreadMult:      0.5,
		},
		weights: Weights{Angle: 4, Tier: 3, TopK: 1, SearchRange: 4, SkipFactor: 1, TierBias: 0.3, RootPull: 1},
		stretch: Stretch{Radial: 0.95, Cap: 3},
	}}
}

func (spiky) Mask(_, a float64, _ *rng.Stream) bool {
	return math.Abs(a-nearest(a, spikyRays)) <= rayTolerance
}
func (spiky) TargetAngle(_, a float64) float64 { return nearest(clamp1(a), spikyRays) }
func (spiky) Conform(_, a float64) float64     { return nearest(clamp1(a), spikyRays) }

// swords has three blades that narrow to a point at the outermost tier.
type swords struct{ base }

var swordBlades = []float64{-0.6, 0, 0.6}

func newSwords() swords {
	return swords{base{
		name: "swords",
		profile: Profile{
			Key:             "swords",
			RadiusJitter:    2,
			AngleJitter:     1,
			TierSpacingMult: 1.1,
			SpreadMult:      0.6,
			TaperAmount:     1,
		},
		weights: Weights{Angle: 3, Tier: 5, TopK: 1, SearchRange: 3, SkipFactor: 1, TierBias: 0.2, RootPull: 1},
		stretch: Stretch{Radial: 0.9, Cap: 3},
	}}
}

func (swords) bladeWidth(depth float64) float64 { return 0.15 * (1 - clamp01(depth)) }

func (s swords) Mask(d, a float64, _ *rng.Stream) bool {
	return math.Abs(a-nearest(a, swordBlades)) <= s.bladeWidth(d)+0.05
}

func (s swords) TargetAngle(d, a float64) float64 { return s.Conform(d, a) }

func (s swords) Conform(d, a float64) float64 {
	a = clamp1(a)
	c := nearest(a, swordBlades)
	w := s.bladeWidth(d)
	return clamp1(c + max(-w, min(a-c, w)))
}

// mountain is wide at the base and pulls toward the center with depth.
type mountain struct{ base }

func newMountain() mountain {
	return mountain{base{
		name: "mountain",
		profile: Profile{
			Key:             "mountain",
			RadiusJitter:    3,
			AngleJitter:     2,
			TierSpacingMult: 0.85,
			SpreadMult:      1.3,
			TaperSpread:     0.3,
			TaperAmount:     0.7,
		},
		weights: Weights{Angle: 0.5, Tier: 20, TopK: 3, SearchRange: 1, TierBias: -0.3, RandomBonus: 5, RootPull: 0.5},
		stretch: Stretch{Angular: 0.85, Radial: 0.7, Cap: 3, Taper: true},
	}}
}

func (m mountain) Envelope(d float64) float64 {
	d = clamp01(d)
	return 1 - m.profile.TaperAmount*d*d
}

func (m mountain) Mask(d, a float64, _ *rng.Stream) bool { return math.Abs(a) <= m.Envelope(d)+0.05 }
func (m mountain) Conform(d, a float64) float64          { return clamp1(a) * m.Envelope(d) }

// explosion pushes nodes out of a hollow core that shrinks with depth.
type explosion struct{ base }

func newExplosion() explosion {
	return explosion{base{
		name: "explosion",
		profile: Profile{
			Key:             "explosion",
			RadiusJitter:    8,
			AngleJitter:     4,
			TierSpacingMult: 1.2,
			SpreadMult:      1.5,
		},
		weights: Weights{Angle: 0.8, Tier: 2, TopK: 6, SearchRange: 4, SkipFactor: 2, TierBias: 0.6, RandomBonus: 15, RootPull: 0.2},
		stretch: Stretch{Angular: 0.9, Radial: 0.9, Cap: 3.5},
	}}
}

func (explosion) void(d float64) float64 { return 0.35 * (1 - clamp01(d)) }

func (e explosion) Mask(d, a float64, _ *rng.Stream) bool { return math.Abs(a) >= e.void(d) }
func (e explosion) TargetAngle(d, a float64) float64      { return e.Conform(d, a) }

func (e explosion) Conform(d, a float64) float64 {
	a = clamp1(a)
	v := e.void(d)
	return sign(a) * (v + (1-v)*math.Abs(a))
}

// tree grows a narrow trunk, widening branches, a full canopy and a slight
// droop at the tips.
type tree struct{ base }

func newTree() tree {
	return tree{base{
		name: "tree",
		profile: Profile{
			Key:             "tree",
			RadiusJitter:    3,
			AngleJitter:     1.5,
			TierSpacingMult: 1,
			SpreadMult:      1,
			TaperSpread:     0.7,
			TaperAmount:     0.3,
		},
		weights: Weights{Angle: 1.5, Tier: 15, TopK: 2, SearchRange: 2, TierBias: 0.1, RandomBonus: 5, RootPull: 0.5},
		stretch: Stretch{Angular: 0.8, Radial: 0.85, Cap: 3, Taper: true},
	}}
}

// Envelope is the band width: trunk, branch, canopy, droop.
func (t tree) Envelope(d float64) float64 {
	d = clamp01(d)
	switch {
	case d < 0.3:
		return 0.12
	case d < 0.55:
		return lerp(0.12, 0.6, (d-0.3)/0.25)
	case d < 0.85:
		return lerp(0.6, 1, (d-0.55)/0.3)
	}
	return lerp(1, t.profile.TaperSpread, (d-0.85)/0.15)
}

func (t tree) Mask(d, a float64, _ *rng.Stream) bool { return math.Abs(a) <= t.Envelope(d)+0.05 }
func (t tree) TargetAngle(d, a float64) float64      { return t.Conform(d, a) }
func (t tree) Conform(d, a float64) float64          { return clamp1(a) * t.Envelope(d) }

// cloud scatters nodes over three soft lobes.
type cloud struct{ base }

var cloudLobes = []float64{-0.6, 0, 0.6}

func newCloud() cloud {
	return cloud{base{
		name: "cloud",
		profile: Profile{
			Key:             "cloud",
			RadiusJitter:    10,
			AngleJitter:     5,
			TierSpacingMult: 0.9,
			SpreadMult:      1.4,
		},
		weights: Weights{Angle: 0.6, Tier: 8, TopK: 8, SearchRange: 3, SkipFactor: 2, RandomBonus: 25, RootPull: 0.2},
		stretch: Stretch{Angular: 0.85, Radial: 0.75, Cap: 3},
	}}
}

func (cloud) Mask(_, a float64, r *rng.Stream) bool {
	if math.Abs(a-nearest(a, cloudLobes)) <= 0.3 {
		return true
	}
	return r != nil && r.Chance(0.25)
}

func (cloud) Conform(_, a float64) float64 {
	a = clamp1(a)
	return clamp1(a + 0.3*(nearest(a, cloudLobes)-a))
}

// cascade drifts diagonally across the sector as it grows outward.
type cascade struct{ base }

func newCascade() cascade {
	return cascade{base{
		name: "cascade",
		profile: Profile{
			Key:             "cascade",
			RadiusJitter:    3,
			AngleJitter:     2,
			TierSpacingMult: 1,
			SpreadMult:      0.8,
		},
		weights: Weights{Angle: 1.2, Tier: 10, TopK: 3, SearchRange: 2, SkipFactor: 1, TierBias: 0.2, RandomBonus: 8, RootPull: 0.5},
		stretch: Stretch{Angular: 0.75, Radial: 0.85, Cap: 3},
	}}
}

func (cascade) drift(d float64) float64 { return (clamp01(d) - 0.5) * 0.8 }

func (c cascade) Mask(d, a float64, _ *rng.Stream) bool { return math.Abs(a-c.drift(d)) <= 0.4 }
func (c cascade) Conform(d, a float64) float64          { return clamp1(clamp1(a)*0.6 + c.drift(d)) }

// linear is a narrow spine along the sector center.
type linear struct{ base }

const linearHalfWidth = 0.15

func newLinear() linear {
	return linear{base{
		name: "linear",
		profile: Profile{
			Key:             "linear",
			RadiusJitter:    1,
			AngleJitter:     0.5,
			TierSpacingMult: 1.1,
			SpreadMult:      0.3,
		},
		weights: Weights{Angle: 3, Tier: 4, TopK: 1, SearchRange: 3, TierBias: 0.4, RootPull: 1},
		stretch: Stretch{Radial: 0.95, Cap: 3},
	}}
}

func (linear) Envelope(float64) float64              { return linearHalfWidth }
func (linear) Mask(_, a float64, _ *rng.Stream) bool { return math.Abs(a) <= linearHalfWidth }
func (linear) Conform(_, a float64) float64          { return clamp1(a) * linearHalfWidth }

// grid snaps nodes into evenly spaced columns.
type grid struct{ base }

const gridColumns = 4

func newGrid() grid {
	return grid{base{
		name: "grid",
		profile: Profile{
			Key:             "grid",
			TierSpacingMult: 1,
			SpreadMult:      1,
		},
		weights: Weights{Angle: 2.5, Tier: 30, TopK: 1, SearchRange: 1, RootPull: 0.5},
		stretch: Stretch{Radial: 0.8, Cap: 3},
	}}
}

// column returns the center of the column holding a.
func (grid) column(a float64) float64 {
	i := int(math.Floor((clamp1(a) + 1) / 2 * gridColumns))
	i = max(0, min(i, gridColumns-1))
	return -1 + (2*float64(i)+1)/gridColumns
}

func (g grid) Mask(_, a float64, _ *rng.Stream) bool { return math.Abs(a-g.column(a)) <= 0.08 }
func (g grid) TargetAngle(_, a float64) float64      { return g.column(a) }
func (g grid) Conform(_, a float64) float64          { return g.column(a) }

// portal keeps a doorway open around the center of the inner tiers.
type portal struct{ base }

const (
	portalDepth = 0.7
	portalHalf  = 0.35
)

func newPortal() portal {
	return portal{base{
		name: "portal",
		profile: Profile{
			Key:             "portal",
			RadiusJitter:    3,
			AngleJitter:     2,
			TierSpacingMult: 1,
			SpreadMult:      1.1,
		},
		weights: Weights{Angle: 1, Tier: 20, TopK: 3, SearchRange: 2, SkipFactor: 1, RandomBonus: 5, RootPull: 0.5},
		stretch: Stretch{Angular: 0.8, Radial: 0.8, Cap: 3},
	}}
}

func (portal) Mask(d, a float64, _ *rng.Stream) bool {
	return d >= portalDepth || math.Abs(a) >= portalHalf
}

func (portal) Conform(d, a float64) float64 {
	a = clamp1(a)
	if d < portalDepth && math.Abs(a) < portalHalf {
		return sign(a) * portalHalf
	}
	return a
}

// radial spreads evenly spaced spokes across the whole sector. Spoke heads
// sit exactly on a spoke; outer nodes may wander a little off it.
type radial struct{ base }

const (
	radialSpokes = 5
	radialWander = 0.1
)

var radialSpokeAngles = spokes(radialSpokes)

// spokes returns n evenly spaced angles from -1 to 1 inclusive.
func spokes(n int) []float64 {
	if n < 2 {
		return []float64{0}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = -1 + 2*float64(i)/float64(n-1)
	}
	return out
}

func newRadial() radial {
	return radial{base{
		name: "radial",
		profile: Profile{
			Key:             "radial",
			RadiusJitter:    2,
			AngleJitter:     1,
			TierSpacingMult: 1,
			SpreadMult:      1,
		},
		weights: Weights{Angle: 3, Tier: 10, TopK: 2, SearchRange: 2, TierBias: 0.2, RandomBonus: 2, RootPull: 1},
		stretch: Stretch{Angular: 0.3, Radial: 0.9, Cap: 3},
	}}
}

func (radial) wander(d float64) float64 { return radialWander * clamp01(d) }

func (r radial) Mask(d, a float64, _ *rng.Stream) bool {
	return math.Abs(a-nearest(a, radialSpokeAngles)) <= r.wander(d)+0.05
}

func (r radial) TargetAngle(_, a float64) float64 { return nearest(clamp1(a), radialSpokeAngles) }

func (r radial) Conform(d, a float64) float64 {
	a = clamp1(a)
	c := nearest(a, radialSpokeAngles)
	w := r.wander(d)
	return clamp1(c + max(-w, min(a-c, w)))
}
