// Package behavior defines growth behaviors: parameter sets that steer how a
// tree grows during placement.
//
// A [Behavior] has base [Params] and an optional list of phases. Each phase
// names a progress point in [0, 1] and a partial set of overrides. Progress is
// the fraction of nodes placed so far. [Behavior.Active] returns the base
// parameters with the overrides of the last phase whose At is <= progress. Only
// that one phase applies; earlier phases are not accumulated.
//
// Behaviors live in a [Catalog]. [Builtin] returns the built-in catalog, and
// [LoadFile] extends a catalog from a TOML file:
//
//	[[behavior]]
//	name = "slow_bloom"
//	vertical_bias = 0.1
//	spread_factor = 0.5
//
//	  [[behavior.phase]]
//	  at = 0.5
//	  spread_factor = 0.9
package behavior

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// Params are the scalar growth parameters.
type Params struct {
	// VerticalBias > 0 makes children skip tiers outward; < 0 keeps them on
	// their parent's tier while it is sparsely filled. Range [-1, 1].
	VerticalBias float64 `toml:"vertical_bias" json:"vertical_bias"`
	// SpreadFactor scales how widely siblings fan around their parent.
	SpreadFactor float64 `toml:"spread_factor" json:"spread_factor"`
	// AngularWander is the maximum random angular deviation in degrees.
	AngularWander float64 `toml:"angular_wander" json:"angular_wander"`
	// LayerFillThreshold is the tier fill fraction under which a negative
	// VerticalBias keeps children on the parent's tier.
	LayerFillThreshold float64 `toml:"layer_fill_threshold" json:"layer_fill_threshold"`
}

// Neutral is used for unknown or empty behavior names.
var Neutral = Params{
	VerticalBias:       0,
	SpreadFactor:       0.6,
	AngularWander:      15,
	LayerFillThreshold: 0.3,
}

// Overrides is a partial Params. Nil fields leave the base value alone.
type Overrides struct {
	VerticalBias       *float64 `toml:"vertical_bias" json:"vertical_bias,omitempty"`
	SpreadFactor       *float64 `toml:"spread_factor" json:"spread_factor,omitempty"`
	AngularWander      *float64 `toml:"angular_wander" json:"angular_wander,omitempty"`
	LayerFillThreshold *float64 `toml:"layer_fill_threshold" json:"layer_fill_threshold,omitempty"`
}

// Apply returns p with the non-nil overrides applied.
func (o Overrides) Apply(p Params) Params {
	if o.VerticalBias != nil {
		p.VerticalBias = *o.VerticalBias
	}
	if o.SpreadFactor != nil {
		p.SpreadFactor = *o.SpreadFactor
	}
	if o.AngularWander != nil {
		p.AngularWander = *o.AngularWander
	}
	if o.LayerFillThreshold != nil {
		p.LayerFillThreshold = *o.LayerFillThreshold
	}
	return p
}

// Phase overrides parameters from progress At onward.
type Phase struct {
	At        float64   `json:"at"`
	Overrides Overrides `json:"overrides"`
}

// Behavior is a named parameter set with optional phases.
type Behavior struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Params      Params  `json:"params"`
	Phases      []Phase `json:"phases,omitempty"`
}

// New returns a behavior with its phases sorted by At. The sort is stable, so
// phases sharing an At keep their order and the later one wins.
func New(name, description string, p Params, phases ...Phase) Behavior {
	phases = slices.Clone(phases)
	slices.SortStableFunc(phases, func(a, b Phase) int {
		switch {
		case a.At < b.At:
			return -1
		case a.At > b.At:
			return 1
		}
		return 0
	})
	return Behavior{Name: name, Description: description, Params: p, Phases: phases}
}

// Active returns the parameters in effect at progress. Phases must be sorted
// by At, which [New] guarantees.
func (b Behavior) Active(progress float64) Params {
	if math.IsNaN(progress) {
		progress = 0
	}
	// first phase with At > progress; the one before it is the last match
	i := sort.Search(len(b.Phases), func(i int) bool { return b.Phases[i].At > progress })
	if i == 0 {
		return b.Params
	}
	return b.Phases[i-1].Overrides.Apply(b.Params)
}

// Validate checks parameter ranges.
func (b Behavior) Validate() error {
	if err := b.Params.validate(); err != nil {
		return fmt.Errorf("behavior %q: %w", b.Name, err)
	}
	for i, ph := range b.Phases {
		if math.IsNaN(ph.At) || ph.At < 0 || ph.At > 1 {
			return fmt.Errorf("behavior %q: phase %d: at must be in [0, 1], got %v", b.Name, i, ph.At)
		}
		if err := ph.Overrides.Apply(b.Params).validate(); err != nil {
			return fmt.Errorf("behavior %q: phase %d: %w", b.Name, i, err)
		}
	}
	return nil
}

func (p Params) validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"vertical_bias", p.VerticalBias},
		{"spread_factor", p.SpreadFactor},
		{"angular_wander", p.AngularWander},
		{"layer_fill_threshold", p.LayerFillThreshold},
	}
	for _, fl := range fields {
		if math.IsNaN(fl.v) || math.IsInf(fl.v, 0) {
			return fmt.Errorf("%s must be finite", fl.name)
		}
	}
	if p.VerticalBias < -1 || p.VerticalBias > 1 {
		return fmt.Errorf("vertical_bias must be in [-1, 1], got %v", p.VerticalBias)
	}
	if p.SpreadFactor < 0 {
		return fmt.Errorf("spread_factor must be >= 0, got %v", p.SpreadFactor)
	}
	if p.AngularWander < 0 {
		return fmt.Errorf("angular_wander must be >= 0, got %v", p.AngularWander)
	}
	if p.LayerFillThreshold < 0 || p.LayerFillThreshold > 1 {
		return fmt.Errorf("layer_fill_threshold must be in [0, 1], got %v", p.LayerFillThreshold)
	}
	return nil
}

func f(v float64) *float64 { return &v }
