// Package grid generates the candidate slot grid of a category sector and
// tracks which slots are taken during placement.
//
// A [Generator] is pure: the same configuration and sector always yield the
// same slots, with no randomness involved. A [Grid] wraps the generated slots
// with a usage state per slot and is owned by a single placement run.
//
// # Geometry
//
// Angles are in degrees, measured counter-clockwise from the positive x axis.
// A sector loses min(padding, span/4) degrees on each side; the rest is the
// usable angle. Tier t has radius baseRadius + t·tierSpacing and holds
// max(3, floor(arc/arcSpacing)) slots, where arc is the length of the usable
// angle at that radius. Slots are spread evenly from one edge of the usable
// angle to the other, so the middle slot of an odd tier sits exactly on the
// sector center.
package grid

import (
	"fmt"
	"math"

	"github.com/matzehuels/growtree/pkg/config"
)

// MinSlotsPerTier is the smallest number of candidates any tier receives.
const MinSlotsPerTier = 3

// Sector is an angular range [Start, End) in degrees. End may be smaller than
// Start for a sector that wraps through 0°; the zero value means "not set".
type Sector struct {
	Start float64 `json:"start" yaml:"start" toml:"start"`
	End   float64 `json:"end" yaml:"end" toml:"end"`
}

// IsZero reports whether the sector is unset.
func (s Sector) IsZero() bool { return s.Start == 0 && s.End == 0 }

// Span returns the sector width in degrees, in (0, 360].
func (s Sector) Span() float64 {
	span := s.End - s.Start
	if span <= 0 {
		span += 360
	}
	return span
}

// Center returns the angle halfway through the sector.
func (s Sector) Center() float64 { return s.Start + s.Span()/2 }

// String implements fmt.Stringer.
func (s Sector) String() string { return fmt.Sprintf("[%.1f°, %.1f°)", s.Start, s.End) }

// SectorFor returns the index-th of total equal sectors covering the disk.
func SectorFor(index, total int) Sector {
	if total <= 0 {
		total = 1
	}
	span := 360.0 / float64(total)
	start := float64(index) * span
	return Sector{Start: start, End: start + span}
}

// Frame describes the usable angular window of a sector.
type Frame struct {
	Sector  Sector
	Padding float64 // degrees removed on each side
	Usable  float64 // usable angle in degrees
}

// NewFrame computes the padded frame of s.
func NewFrame(s Sector, padding float64) Frame {
	span := s.Span()
	pad := max(0, min(padding, span/4))
	return Frame{Sector: s, Padding: pad, Usable: span - 2*pad}
}

// Center returns the sector center angle.
func (f Frame) Center() float64 { return f.Sector.Center() }

// HalfWidth is half the usable angle.
func (f Frame) HalfWidth() float64 { return f.Usable / 2 }

// Lo and Hi bound the usable window.
func (f Frame) Lo() float64 { return f.Center() - f.HalfWidth() }
func (f Frame) Hi() float64 { return f.Center() + f.HalfWidth() }

// Norm maps an angle to [-1, 1] relative to the usable window. Angles outside
// the window map outside that range. A zero-width window maps to 0.
func (f Frame) Norm(angle float64) float64 {
	hw := f.HalfWidth()
	if hw <= 0 {
		return 0
	}
	return (angle - f.Center()) / hw
}

// Denorm is the inverse of Norm.
func (f Frame) Denorm(norm float64) float64 { return f.Center() + norm*f.HalfWidth() }

// Clamp limits angle to the usable window.
func (f Frame) Clamp(angle float64) float64 { return max(f.Lo(), min(angle, f.Hi())) }

// Slot is one candidate position.
type Slot struct {
	Tier        int     `json:"tier"`
	Index       int     `json:"index"`
	Angle       float64 `json:"angle"`
	Radius      float64 `json:"radius"`
	SlotsInTier int     `json:"slots_in_tier"`
}

// Key identifies a slot within one grid.
type Key struct {
	Tier, Index int
}

// Key returns the slot's (tier, index) pair.
func (s Slot) Key() Key { return Key{s.Tier, s.Index} }

// XY converts the slot's polar position to cartesian coordinates.
func (s Slot) XY() (float64, float64) { return Polar(s.Angle, s.Radius) }

// Polar converts an angle in degrees and a radius to x, y.
func Polar(angle, radius float64) (float64, float64) {
	rad := angle * math.Pi / 180
	return math.Cos(rad) * radius, math.Sin(rad) * radius
}

// Generator builds slot grids from a layout configuration.
type Generator struct {
	cfg config.Layout
}

// NewGenerator returns a generator for cfg. Zero fields take their defaults.
func NewGenerator(cfg config.Layout) Generator {
	return Generator{cfg: cfg.WithDefaults()}
}

// Positions returns the slots for the categoryIndex-th of totalCategories
// evenly divided sectors, ordered by (tier, index).
func (g Generator) Positions(categoryIndex, totalCategories int) []Slot {
	return g.ForSector(SectorFor(categoryIndex, totalCategories))
}

// Frame returns the padded frame of s under the generator's configuration.
func (g Generator) Frame(s Sector) Frame { return NewFrame(s, g.cfg.CategoryPadding) }

// ForSector returns the slots for an explicit sector, ordered by (tier, index).
func (g Generator) ForSector(s Sector) []Slot {
	f := g.Frame(s)
	var slots []Slot
	for t := range g.cfg.MaxTiers {
		radius := g.cfg.TierRadius(t)
		n := SlotCount(f.Usable, radius, g.cfg.ArcSpacing)
		for i := range n {
			frac := float64(i) / float64(n-1)
			slots = append(slots, Slot{
				Tier:        t,
				Index:       i,
				Angle:       f.Lo() + frac*f.Usable,
				Radius:      radius,
				SlotsInTier: n,
			})
		}
	}
	return slots
}

// SlotCount is the number of candidates on a tier of the given radius.
func SlotCount(usable, radius, arcSpacing float64) int {
	arc := usable / 360 * 2 * math.Pi * radius
	n := MinSlotsPerTier
	if arcSpacing > 0 {
		if c := math.Floor(arc / arcSpacing); !math.IsNaN(c) && c > float64(n) {
			n = int(c)
		}
	}
	return n
}
