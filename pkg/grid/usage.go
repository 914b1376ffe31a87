package grid

import (
	"math"
	"slices"
)

// State is the usage state of a slot.
type State uint8

const (
	Free State = iota
	Used
	Reserved
)

func (s State) String() string {
	switch s {
	case Used:
		return "used"
	case Reserved:
		return "reserved"
	}
	return "free"
}

// Grid tracks slot usage for one placement run. It is not safe for
// concurrent use; each category owns its own Grid.
type Grid struct {
	slots []Slot
	state map[Key]State
	tiers map[int][]int // tier -> indexes into slots
	max   int
}

// New builds a grid over slots with every slot free.
func New(slots []Slot) *Grid {
	g := &Grid{
		slots: slots,
		state: make(map[Key]State, len(slots)),
		tiers: make(map[int][]int),
		max:   -1,
	}
	for i, s := range slots {
		g.tiers[s.Tier] = append(g.tiers[s.Tier], i)
		g.max = max(g.max, s.Tier)
	}
	return g
}

// Slots returns every slot in generation order.
func (g *Grid) Slots() []Slot { return g.slots }

// MaxTier returns the outermost tier, or -1 for an empty grid.
func (g *Grid) MaxTier() int { return g.max }

// InTier returns the slots of tier t ordered by index.
func (g *Grid) InTier(t int) []Slot {
	idx := g.tiers[t]
	out := make([]Slot, len(idx))
	for i, j := range idx {
		out[i] = g.slots[j]
	}
	return out
}

// Slot returns the slot with key k.
func (g *Grid) Slot(k Key) (Slot, bool) {
	idx := g.tiers[k.Tier]
	if k.Index < 0 || k.Index >= len(idx) {
		return Slot{}, false
	}
	return g.slots[idx[k.Index]], true
}

// State returns the usage state of k.
func (g *Grid) State(k Key) State { return g.state[k] }

// IsFree reports whether k exists and is free.
func (g *Grid) IsFree(k Key) bool {
	if _, ok := g.Slot(k); !ok {
		return false
	}
	return g.state[k] == Free
}

// Use marks k as used. It reports false if the slot was not free.
func (g *Grid) Use(k Key) bool {
	if !g.IsFree(k) {
		return false
	}
	g.state[k] = Used
	return true
}

// Reserve marks k as reserved so no node is placed there.
func (g *Grid) Reserve(k Key) {
	if _, ok := g.Slot(k); ok {
		g.state[k] = Reserved
	}
}

// Nearest returns the slot of tier t whose angle is closest to angle,
// regardless of state. Ties go to the lower index.
func (g *Grid) Nearest(t int, angle float64) (Slot, bool) {
	var best Slot
	found := false
	bestDiff := math.Inf(1)
	for _, j := range g.tiers[t] {
		if d := math.Abs(g.slots[j].Angle - angle); d < bestDiff {
			best, bestDiff, found = g.slots[j], d, true
		}
	}
	return best, found
}

// FreeInRange returns the free slots with lo <= tier <= hi, ordered by
// (tier, index).
func (g *Grid) FreeInRange(lo, hi int) []Slot {
	var out []Slot
	for t := max(lo, 0); t <= min(hi, g.max); t++ {
		for _, j := range g.tiers[t] {
			if s := g.slots[j]; g.state[s.Key()] == Free {
				out = append(out, s)
			}
		}
	}
	return out
}

// Fill returns the fraction of tier t that is not free.
func (g *Grid) Fill(t int) float64 {
	idx := g.tiers[t]
	if len(idx) == 0 {
		return 1
	}
	taken := 0
	for _, j := range idx {
		if g.state[g.slots[j].Key()] != Free {
			taken++
		}
	}
	return float64(taken) / float64(len(idx))
}

// FreeCount returns the number of free slots in the grid.
func (g *Grid) FreeCount() int {
	n := 0
	for _, s := range g.slots {
		if g.state[s.Key()] == Free {
			n++
		}
	}
	return n
}

// Tiers returns the tier numbers in ascending order.
func (g *Grid) Tiers() []int {
	out := make([]int, 0, len(g.tiers))
	for t := range g.tiers {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
