package growth

import (
	"maps"
	"math"
	"slices"

	"github.com/matzehuels/growtree/pkg/grid"
)

// NoSlot marks a position that does not occupy a grid slot.
const NoSlot = -1

// Position is the computed placement of one node. Angle is in degrees; X and
// Y are always derived from Angle and Radius.
type Position struct {
	ID           string  `json:"id"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Angle        float64 `json:"angle"`
	Radius       float64 `json:"radius"`
	Tier         int     `json:"tier"`
	Slot         int     `json:"slot"`
	Interpolated bool    `json:"interpolated,omitempty"`
	Orphan       bool    `json:"orphan,omitempty"`
	Overflow     bool    `json:"overflow,omitempty"`
	Root         bool    `json:"root,omitempty"`
}

// OnGrid reports whether the position occupies a grid slot.
func (p Position) OnGrid() bool { return p.Slot != NoSlot && !p.Interpolated }

// SetPolar sets Angle and Radius and recomputes X and Y. NaN or infinite
// inputs are replaced by fallbackAngle and fallbackRadius.
func (p *Position) SetPolar(angle, radius, fallbackAngle, fallbackRadius float64) {
	if !finite(angle) {
		angle = fallbackAngle
	}
	if !finite(radius) || radius < 0 {
		radius = fallbackRadius
	}
	p.Angle, p.Radius = angle, radius
	p.X, p.Y = grid.Polar(angle, radius)
}

// Positions maps node IDs to positions. Each layout run writes a fresh map.
type Positions map[string]Position

// Clone returns a copy of the map.
func (m Positions) Clone() Positions {
	return maps.Clone(m)
}

// IDs returns the node IDs in sorted order.
func (m Positions) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
