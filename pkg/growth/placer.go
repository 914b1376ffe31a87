// Package growth assigns every node of a category to a grid slot or an
// interpolated position.
//
// # Algorithm
//
// Placement runs in three stages, exposed as methods on [Placer] so the
// caller can observe each one:
//
//  1. [Placer.PlaceRoots] puts the roots on the tier-0 ring at the sector
//     center, or spread over half the usable angle when there are several.
//     Each root reserves its nearest tier-0 slot.
//  2. [Placer.Grow] runs a level-synchronized round-robin breadth-first
//     search. Every turn places one child of the head at the front of the
//     current level, then sends the head to the back of that level. Siblings
//     under different parents interleave, so no branch can monopolize the
//     grid.
//  3. [Placer.AssignOrphans] gives every node the search never reached a free
//     slot, or the origin as a last resort.
//
// # Scoring
//
// For each child the placer picks a target tier and a target angle from the
// active behavior parameters and the shape rules, then scores the free slots
// in [target, target+searchRange]:
//
//	score = angleDiff·angleWeight + tierDiff·tierWeight − random·randomBonus
//	        + 100 if the slot moves inward against an outward bias
//	        + rootPull·|angle − owning root angle| in multi-root trees
//	        + 1000 if the slot fails the shape mask
//
// One of the K best candidates is picked uniformly at random. When no
// candidate is free the search widens to the whole grid with halved weights,
// and when the grid is exhausted the node gets an interpolated polar position.
//
// All randomness comes from the category's [rng.Stream], drawn in a fixed
// order, so a placement is fully determined by its inputs.
package growth

import (
	"cmp"
	"io"
	"math"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/growtree/pkg/behavior"
	"github.com/matzehuels/growtree/pkg/config"
	"github.com/matzehuels/growtree/pkg/dag"
	"github.com/matzehuels/growtree/pkg/grid"
	"github.com/matzehuels/growtree/pkg/rng"
	"github.com/matzehuels/growtree/pkg/shape"
)

// Scoring penalties.
const (
	InwardPenalty = 100.0
	MaskPenalty   = 1000.0

	// RootSpreadFraction is the share of the usable angle multiple roots
	// are spread over.
	RootSpreadFraction = 0.5
	// FanFraction scales the sibling fan width relative to the usable angle.
	FanFraction = 0.4
	// FallbackRelax scales the scoring weights during the full-grid search.
	FallbackRelax = 0.5
)

// Input bundles everything one placement run needs.
type Input struct {
	Graph    *dag.DAG
	Frame    grid.Frame
	Grid     *grid.Grid
	Config   config.Layout
	Shape    shape.Strategy
	Behavior behavior.Behavior
	Stream   *rng.Stream
	Logger   *log.Logger
}

// Stats summarizes a placement run.
type Stats struct {
	Roots        int `json:"roots"`
	Placed       int `json:"placed"`
	Fallbacks    int `json:"fallbacks"`
	Interpolated int `json:"interpolated"`
	Orphans      int `json:"orphans"`
	Overflow     int `json:"overflow"`
}

// Placer runs one placement. It is single use and not safe for concurrent use.
type Placer struct {
	in      Input
	cfg     config.Layout
	weights shape.Weights
	profile shape.Profile
	logger  *log.Logger

	pos   Positions
	owner map[string]string // node -> owning root
	order []string          // placement order
	total int
	outer int // deepest tier of the graph
	stats Stats
}

// New prepares a placer. Nil fields of in are replaced with neutral values:
// the organic shape, the neutral behavior, a stream seeded with 0 and a
// discarding logger.
func New(in Input) *Placer {
	if in.Shape == nil {
		in.Shape = shape.Neutral
	}
	if in.Behavior.Name == "" && in.Behavior.Params == (behavior.Params{}) {
		in.Behavior = behavior.New("none", "", behavior.Neutral)
	}
	if in.Stream == nil {
		in.Stream = rng.NewStream(0)
	}
	if in.Logger == nil {
		in.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if in.Graph == nil {
		in.Graph = dag.New(nil)
	}
	cfg := in.Config.WithDefaults()
	if in.Grid == nil {
		in.Grid = grid.New(grid.NewGenerator(cfg).ForSector(in.Frame.Sector))
	}
	return &Placer{
		in:      in,
		cfg:     cfg,
		weights: in.Shape.Weights(),
		profile: in.Shape.Profile(),
		logger:  in.Logger,
		pos:     make(Positions, in.Graph.NodeCount()),
		owner:   make(map[string]string),
		total:   in.Graph.NodeCount(),
		outer:   in.Graph.MaxTier(),
	}
}

// Place runs all three stages and returns the result.
func Place(in Input) *Placement {
	p := New(in)
	p.PlaceRoots()
	p.Grow()
	p.AssignOrphans()
	return p.Result()
}

// Placement is the output of a placement run.
type Placement struct {
	Positions Positions
	// Owner maps each reached node to the root its branch grew from.
	Owner map[string]string
	// Order lists node IDs in the order they were placed.
	Order []string
	Stats Stats
}

// Result returns the placement. The placer must not be used afterwards.
func (p *Placer) Result() *Placement {
	return &Placement{Positions: p.pos, Owner: p.owner, Order: p.order, Stats: p.stats}
}

// Positions returns the positions placed so far.
func (p *Placer) Positions() Positions { return p.pos }

func (p *Placer) set(pos Position) {
	p.pos[pos.ID] = pos
	p.order = append(p.order, pos.ID)
}

func (p *Placer) progress() float64 {
	if p.total == 0 {
		return 0
	}
	return float64(len(p.pos)) / float64(p.total)
}

// depth normalizes a tier against the graph's deepest tier.
func (p *Placer) depth(tier int) float64 { return shape.Depth(tier, p.outer) }

// PlaceRoots places the category roots on the tier-0 ring.
func (p *Placer) PlaceRoots() {
	roots := p.in.Graph.Roots()
	f := p.in.Frame
	n := len(roots)
	for i, r := range roots {
		angle := f.Center()
		if n > 1 {
			spread := RootSpreadFraction * f.Usable
			angle = f.Center() - spread/2 + spread*float64(i)/float64(n-1)
		}
		pos := Position{ID: r.ID, Tier: 0, Slot: NoSlot, Root: true}
		pos.SetPolar(angle, p.cfg.BaseRadius, f.Center(), p.cfg.BaseRadius)
		if s, ok := p.in.Grid.Nearest(0, angle); ok {
			p.in.Grid.Reserve(s.Key())
		}
		p.set(pos)
		p.owner[r.ID] = r.ID
	}
	p.stats.Roots = n
	p.logger.Debug("roots placed", "count", n, "ids", dag.NodeIDs(roots))
}

type head struct {
	id   string
	next int
}

// Grow places every node reachable from the roots.
func (p *Placer) Grow() {
	var current, next []head
	for _, r := range p.in.Graph.Roots() {
		if _, ok := p.pos[r.ID]; ok && p.in.Graph.OutDegree(r.ID) > 0 {
			current = append(current, head{id: r.ID})
		}
	}

	for len(current) > 0 {
		h := current[0]
		current = current[1:]
		kids := p.in.Graph.Children(h.id)

		h.next = p.skipPlaced(kids, h.next)
		if h.next < len(kids) {
			child := kids[h.next]
			p.placeChild(h.id, child, h.next, len(kids))
			h.next++
			if p.in.Graph.OutDegree(child) > 0 {
				next = append(next, head{id: child})
			}
		}

		if h.next = p.skipPlaced(kids, h.next); h.next < len(kids) {
			current = append(current, h)
		}
		if len(current) == 0 {
			current, next = next, nil
		}
	}
	p.logger.Debug("growth complete", "placed", p.stats.Placed, "fallbacks", p.stats.Fallbacks,
		"interpolated", p.stats.Interpolated)
}

func (p *Placer) skipPlaced(kids []string, i int) int {
	for i < len(kids) {
		if _, ok := p.pos[kids[i]]; !ok {
			break
		}
		i++
	}
	return i
}

// candidate is a scored grid slot.
type candidate struct {
	slot  grid.Slot
	score float64
	mask  bool
}

func (p *Placer) placeChild(parentID, childID string, sibling, siblings int) {
	parent := p.pos[parentID]
	params := p.in.Behavior.Active(p.progress())

	target := p.targetTier(parent.Tier, params)
	angle := p.targetAngle(parent.Angle, target, sibling, siblings, params)
	owner := p.owner[parentID]
	p.owner[childID] = owner

	req := request{
		parentTier: parent.Tier,
		tier:       target,
		angle:      angle,
		rootAngle:  p.pos[owner].Angle,
		bias:       params.VerticalBias,
	}

	cands := p.in.Grid.FreeInRange(max(1, target), target+p.weights.SearchRange)
	slot, ok := p.choose(cands, req, p.weights)
	if !ok {
		relaxed := p.weights
		relaxed.Angle *= FallbackRelax
		relaxed.Tier *= FallbackRelax
		relaxed.RootPull *= FallbackRelax
		slot, ok = p.choose(p.in.Grid.FreeInRange(1, p.in.Grid.MaxTier()), req, relaxed)
		if ok {
			p.stats.Fallbacks++
			p.logger.Debug("fallback to full grid", "node", childID, "tier", slot.Tier)
		}
	}

	pos := Position{ID: childID}
	if ok {
		p.reserve(slot)
		pos.Tier, pos.Slot = slot.Tier, slot.Index
		p.placeJittered(&pos, slot.Angle, slot.Tier)
	} else {
		pos.Tier, pos.Slot, pos.Interpolated = target, NoSlot, true
		pos.SetPolar(angle, p.tierRadius(target), p.in.Frame.Center(), p.cfg.BaseRadius)
		p.stats.Interpolated++
		p.logger.Debug("grid exhausted, interpolating", "node", childID, "tier", target)
	}
	p.set(pos)
	p.stats.Placed++
}

// targetTier picks the tier a child should grow onto.
func (p *Placer) targetTier(parentTier int, params behavior.Params) int {
	s := p.in.Stream
	target := parentTier + 1

	switch vb := params.VerticalBias; {
	case vb > 0:
		if s.Chance(vb * 0.5) {
			target++
			if s.Chance(vb * 0.25) {
				target++
			}
		}
	case vb < 0:
		// Stay on the parent's ring until it reaches the fill threshold.
		if parentTier > 0 && p.in.Grid.Fill(parentTier) < params.LayerFillThreshold {
			target = parentTier
		}
	}

	switch tb := p.weights.TierBias; {
	case tb > 0:
		if s.Chance(tb * 0.5) {
			target++
		}
	case tb < 0:
		if target > max(1, parentTier) && s.Chance(-tb) {
			target--
		}
	}
	return max(1, min(target, p.cfg.MaxTiers-1))
}

// targetAngle fans siblings around the parent, adds wander and applies the
// shape's angle rule.
func (p *Placer) targetAngle(parentAngle float64, tier, sibling, siblings int, params behavior.Params) float64 {
	f := p.in.Frame
	spread := p.profile.SpreadMult
	width := params.SpreadFactor * f.Usable * FanFraction * spread

	offset := 0.0
	if siblings > 1 {
		offset = ((float64(sibling)+0.5)/float64(siblings) - 0.5) * width
	}
	wander := 0.0
	if w := params.AngularWander * spread; w > 0 {
		wander = p.in.Stream.Signed(w)
	}

	angle := parentAngle + offset + wander
	angle = max(parentAngle-width, min(angle, parentAngle+width))
	angle = f.Clamp(angle)
	angle = f.Denorm(p.in.Shape.TargetAngle(p.depth(tier), f.Norm(angle)))
	if !finite(angle) {
		return f.Center()
	}
	return angle
}

type request struct {
	parentTier int
	tier       int
	angle      float64
	rootAngle  float64
	bias       float64
}

// choose scores candidates and picks one of the best K.
func (p *Placer) choose(slots []grid.Slot, req request, w shape.Weights) (grid.Slot, bool) {
	if len(slots) == 0 {
		return grid.Slot{}, false
	}
	f := p.in.Frame
	s := p.in.Stream
	multiRoot := p.stats.Roots > 1

	cands := make([]candidate, 0, len(slots))
	passing := 0
	for _, slot := range slots {
		c := candidate{slot: slot}
		c.mask = p.in.Shape.Mask(p.depth(slot.Tier), f.Norm(slot.Angle), s)
		if c.mask {
			passing++
		}
		c.score = math.Abs(slot.Angle-req.angle)*w.Angle + math.Abs(float64(slot.Tier-req.tier))*w.Tier
		if w.RandomBonus > 0 {
			c.score -= s.Float() * w.RandomBonus
		}
		if req.bias > 0 && slot.Tier < req.parentTier {
			c.score += InwardPenalty
		}
		if multiRoot {
			c.score += math.Abs(slot.Angle-req.rootAngle) * w.RootPull
		}
		if !c.mask {
			c.score += MaskPenalty
		}
		cands = append(cands, c)
	}

	if passing > 0 {
		cands = slices.DeleteFunc(cands, func(c candidate) bool { return !c.mask })
	}
	slices.SortStableFunc(cands, func(a, b candidate) int { return cmp.Compare(a.score, b.score) })

	k := min(max(1, w.TopK), len(cands))
	return cands[s.IntN(k)].slot, true
}

// reserve marks slot and up to SkipFactor neighbours on each side as used.
func (p *Placer) reserve(slot grid.Slot) {
	g := p.in.Grid
	g.Use(slot.Key())
	for d := 1; d <= p.weights.SkipFactor; d++ {
		g.Use(grid.Key{Tier: slot.Tier, Index: slot.Index - d})
		g.Use(grid.Key{Tier: slot.Tier, Index: slot.Index + d})
	}
}

// tierRadius is the radius of tier t scaled by the shape's tier spacing,
// capped at the outermost allowed radius.
func (p *Placer) tierRadius(t int) float64 {
	r := p.cfg.BaseRadius + float64(t)*p.cfg.TierSpacing*p.profile.TierSpacingMult
	return min(r, p.cfg.MaxRadius())
}

// placeJittered stores a slot position with the shape's jitter applied.
func (p *Placer) placeJittered(pos *Position, angle float64, tier int) {
	radius := p.tierRadius(tier)
	if j := p.profile.AngleJitter; j > 0 {
		angle += p.in.Stream.Signed(j)
	}
	if j := p.profile.RadiusJitter; j > 0 {
		radius += p.in.Stream.Signed(j)
	}
	radius = max(p.cfg.BaseRadius, min(radius, p.cfg.MaxRadius()))
	pos.SetPolar(angle, radius, p.in.Frame.Center(), p.tierRadius(tier))
}

// AssignOrphans places every node the search did not reach.
func (p *Placer) AssignOrphans() {
	g := p.in.Grid
	for _, n := range p.in.Graph.Nodes() {
		if _, ok := p.pos[n.ID]; ok {
			continue
		}
		tier := max(1, min(n.Tier, g.MaxTier()))
		pos := Position{ID: n.ID, Orphan: true, Tier: tier, Slot: NoSlot}

		slot, ok := first(g.FreeInRange(tier, tier))
		if !ok {
			slot, ok = first(g.FreeInRange(1, g.MaxTier()))
		}
		if ok {
			g.Use(slot.Key())
			pos.Tier, pos.Slot = slot.Tier, slot.Index
			pos.SetPolar(slot.Angle, p.tierRadius(slot.Tier), p.in.Frame.Center(), p.cfg.BaseRadius)
		} else {
			pos.Overflow = true
			pos.SetPolar(p.in.Frame.Center(), 0, p.in.Frame.Center(), 0)
			p.stats.Overflow++
		}
		p.set(pos)
		p.stats.Orphans++
	}
	if p.stats.Orphans > 0 {
		p.logger.Warn("unreachable nodes placed as orphans", "count", p.stats.Orphans, "overflow", p.stats.Overflow)
	}
}

func first(slots []grid.Slot) (grid.Slot, bool) {
	if len(slots) == 0 {
		return grid.Slot{}, false
	}
	return slots[0], true
}
