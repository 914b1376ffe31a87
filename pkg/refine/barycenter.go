package refine

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/growtree/pkg/dag"
	"github.com/matzehuels/growtree/pkg/growth"
)

// spot is an angular position a tier hands out during reordering.
type spot struct {
	angle        float64
	slot         int
	interpolated bool
}

// Barycenter reorders movable nodes within their tiers and returns the edge
// crossing count before and after.
func Barycenter(in Input) (before, after int) {
	in = in.withDefaults()
	pos := in.Positions
	if len(pos) == 0 {
		return 0, 0
	}

	tiers := tierMembers(pos)
	ids := slices.Sorted(maps.Keys(tiers))

	best := crossings(in.Graph, pos)
	before = best
	bestPos := maps.Clone(pos)

	for pass := range in.Passes {
		down := pass%2 == 0
		order := ids
		if !down {
			order = slices.Clone(ids)
			slices.Reverse(order)
		}
		for _, t := range order {
			reorderTier(in.Graph, pos, tiers[t], t, down)
		}
		if c := crossings(in.Graph, pos); c < best {
			best = c
			bestPos = maps.Clone(pos)
		}
	}

	maps.Copy(pos, bestPos)
	in.Logger.Debug("barycenter reordering", "crossings_before", before, "crossings_after", best)
	return before, best
}

// tierMembers groups movable nodes by tier, each tier sorted by ID.
func tierMembers(pos growth.Positions) map[int][]string {
	tiers := make(map[int][]string)
	for _, id := range pos.IDs() {
		if p := pos[id]; movable(p) {
			tiers[p.Tier] = append(tiers[p.Tier], id)
		}
	}
	return tiers
}

// byAngle sorts ids by current angle, breaking ties by ID.
func byAngle(pos growth.Positions, ids []string) []string {
	out := slices.Clone(ids)
	slices.SortStableFunc(out, func(a, b string) int {
		if c := cmp.Compare(pos[a].Angle, pos[b].Angle); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return out
}

func reorderTier(g *dag.DAG, pos growth.Positions, members []string, tier int, down bool) {
	if len(members) < 2 {
		return
	}
	current := byAngle(pos, members)

	spots := make([]spot, len(current))
	values := make(map[string]float64, len(current))
	for i, id := range current {
		p := pos[id]
		spots[i] = spot{angle: p.Angle, slot: p.Slot, interpolated: p.Interpolated}
		values[id] = barycenter(g, pos, id, tier, down)
	}

	next := slices.Clone(current)
	slices.SortStableFunc(next, func(a, b string) int { return cmp.Compare(values[a], values[b]) })

	for i, id := range next {
		p := pos[id]
		p.Slot, p.Interpolated = spots[i].slot, spots[i].interpolated
		p.SetPolar(spots[i].angle, p.Radius, p.Angle, p.Radius)
		pos[id] = p
	}
}

// barycenter is the mean angle of id's neighbors on the tiers the sweep looks
// at: {tier-1, tier} going outward, {tier, tier+1} going inward. A node
// without such neighbors keeps its own angle.
func barycenter(g *dag.DAG, pos growth.Positions, id string, tier int, down bool) float64 {
	lo, hi := tier-1, tier
	if !down {
		lo, hi = tier, tier+1
	}
	sum, n := 0.0, 0
	for _, nb := range g.Neighbors(id) {
		p, ok := pos[nb]
		if !ok || p.Overflow || p.Tier < lo || p.Tier > hi {
			continue
		}
		sum += p.Angle
		n++
	}
	if n == 0 {
		return pos[id].Angle
	}
	return sum / float64(n)
}

// crossings counts edge crossings with every tier ordered by angle.
func crossings(g *dag.DAG, pos growth.Positions) int {
	if g == nil {
		return 0
	}
	members := make(map[int][]string)
	for _, id := range pos.IDs() {
		p := pos[id]
		members[p.Tier] = append(members[p.Tier], id)
	}
	orders := make(map[int][]string, len(members))
	for t, ids := range members {
		orders[t] = byAngle(pos, ids)
	}
	return dag.CountCrossings(g, orders)
}
