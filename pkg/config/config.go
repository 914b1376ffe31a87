// Package config defines the explicit configuration value passed to every
// layout invocation.
//
// There is no package-level cache: callers construct a [Layout] (usually via
// [Default]) and hand it to the engine. Changing configuration means building a
// new value.
package config

import (
	"fmt"
	"math"

	"github.com/matzehuels/growtree/pkg/errors"
)

// Default values for [Layout]. These match the sizes the reference panel used
// for a 1200px canvas.
const (
	DefaultNodeSize        = 10.0
	DefaultBaseRadius      = 80.0
	DefaultTierSpacing     = 60.0
	DefaultArcSpacing      = 40.0
	DefaultMinNodeSpacing  = 30.0
	DefaultMaxTiers        = 12
	DefaultCategoryPadding = 4.0
)

// Layout holds the geometry parameters for one layout invocation.
// Angles are in degrees, distances in canvas units.
type Layout struct {
	// NodeSize is the rendered node diameter. Sitter detection and nudging
	// default to multiples of it.
	NodeSize float64 `toml:"node_size" mapstructure:"node_size" json:"node_size" yaml:"node_size,omitempty"`
	// BaseRadius is the radius of tier 0 (the root ring).
	BaseRadius float64 `toml:"base_radius" mapstructure:"base_radius" json:"base_radius" yaml:"base_radius,omitempty"`
	// TierSpacing is the radial distance between consecutive tiers.
	TierSpacing float64 `toml:"tier_spacing" mapstructure:"tier_spacing" json:"tier_spacing" yaml:"tier_spacing,omitempty"`
	// ArcSpacing is the target arc length between grid slots on one tier.
	ArcSpacing float64 `toml:"arc_spacing" mapstructure:"arc_spacing" json:"arc_spacing" yaml:"arc_spacing,omitempty"`
	// MinNodeSpacing is the minimum center distance considered non-overlapping.
	MinNodeSpacing float64 `toml:"min_node_spacing" mapstructure:"min_node_spacing" json:"min_node_spacing" yaml:"min_node_spacing,omitempty"`
	// MaxTiers is the number of tiers in the candidate grid.
	MaxTiers int `toml:"max_tiers" mapstructure:"max_tiers" json:"max_tiers" yaml:"max_tiers,omitempty"`
	// CategoryPadding is the angular padding, in degrees, on each side of a sector.
	CategoryPadding float64 `toml:"category_padding" mapstructure:"category_padding" json:"category_padding" yaml:"category_padding,omitempty"`
	// SitterDistance is the perpendicular distance under which a node counts as
	// sitting on an edge. Zero means 1.2 × NodeSize.
	SitterDistance float64 `toml:"sitter_distance" mapstructure:"sitter_distance" json:"sitter_distance,omitempty" yaml:"sitter_distance,omitempty"`
	// NudgeDistance is how far a sitter is pushed off an edge. Zero means
	// 1.5 × NodeSize.
	NudgeDistance float64 `toml:"nudge_distance" mapstructure:"nudge_distance" json:"nudge_distance,omitempty" yaml:"nudge_distance,omitempty"`
}

// Default returns the default layout configuration.
func Default() Layout {
	return Layout{
		NodeSize:        DefaultNodeSize,
		BaseRadius:      DefaultBaseRadius,
		TierSpacing:     DefaultTierSpacing,
		ArcSpacing:      DefaultArcSpacing,
		MinNodeSpacing:  DefaultMinNodeSpacing,
		MaxTiers:        DefaultMaxTiers,
		CategoryPadding: DefaultCategoryPadding,
	}
}

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c Layout) WithDefaults() Layout {
	d := Default()
	if c.NodeSize == 0 {
		c.NodeSize = d.NodeSize
	}
	if c.BaseRadius == 0 {
		c.BaseRadius = d.BaseRadius
	}
	if c.TierSpacing == 0 {
		c.TierSpacing = d.TierSpacing
	}
	if c.ArcSpacing == 0 {
		c.ArcSpacing = d.ArcSpacing
	}
	if c.MinNodeSpacing == 0 {
		c.MinNodeSpacing = d.MinNodeSpacing
	}
	if c.MaxTiers == 0 {
		c.MaxTiers = d.MaxTiers
	}
	if c.SitterDistance == 0 {
		c.SitterDistance = 1.2 * c.NodeSize
	}
	if c.NudgeDistance == 0 {
		c.NudgeDistance = 1.5 * c.NodeSize
	}
	return c
}

// Override returns c with every non-zero field of o applied on top.
func (c Layout) Override(o Layout) Layout {
	set := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	set(&c.NodeSize, o.NodeSize)
	set(&c.BaseRadius, o.BaseRadius)
	set(&c.TierSpacing, o.TierSpacing)
	set(&c.ArcSpacing, o.ArcSpacing)
	set(&c.MinNodeSpacing, o.MinNodeSpacing)
	set(&c.CategoryPadding, o.CategoryPadding)
	set(&c.SitterDistance, o.SitterDistance)
	set(&c.NudgeDistance, o.NudgeDistance)
	if o.MaxTiers != 0 {
		c.MaxTiers = o.MaxTiers
	}
	return c
}

// Validate checks that every field is finite and in range.
func (c Layout) Validate() error {
	fields := []struct {
		name string
		v    float64
		min  float64
	}{
		{"node_size", c.NodeSize, 0},
		{"base_radius", c.BaseRadius, 0},
		{"tier_spacing", c.TierSpacing, 0},
		{"arc_spacing", c.ArcSpacing, 0},
		{"min_node_spacing", c.MinNodeSpacing, 0},
		{"category_padding", c.CategoryPadding, 0},
		{"sitter_distance", c.SitterDistance, 0},
		{"nudge_distance", c.NudgeDistance, 0},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be finite", f.name)
		}
		if f.v < f.min {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be >= %v, got %v", f.name, f.min, f.v)
		}
	}
	if c.TierSpacing == 0 || c.ArcSpacing == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "tier_spacing and arc_spacing must be positive")
	}
	if c.MaxTiers < 2 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_tiers must be >= 2, got %d", c.MaxTiers)
	}
	return nil
}

// TierRadius returns the radius of tier t.
func (c Layout) TierRadius(t int) float64 {
	return c.BaseRadius + float64(t)*c.TierSpacing
}

// MaxRadius is the outermost radius any node may occupy:
// BaseRadius + MaxTiers·TierSpacing.
func (c Layout) MaxRadius() float64 {
	return c.BaseRadius + float64(c.MaxTiers)*c.TierSpacing
}

// String implements fmt.Stringer for log output.
func (c Layout) String() string {
	return fmt.Sprintf("base=%.0f spacing=%.0f arc=%.0f tiers=%d pad=%.1f°",
		c.BaseRadius, c.TierSpacing, c.ArcSpacing, c.MaxTiers, c.CategoryPadding)
}
