package shape

import (
	"slices"
	"strings"
)

// All is the canonical list of built-in shapes.
var All = []Strategy{
	Neutral,
	newSpiky(),
	newSwords(),
	newMountain(),
	newExplosion(),
	newTree(),
	newCloud(),
	newCascade(),
	newLinear(),
	newGrid(),
	newPortal(),
	newRadial(),
}

// Aliases maps alternative names to canonical shape names.
var Aliases = map[string]string{
	"neutral":  "organic",
	"ray-lock": "spiky",
	"rays":     "spiky",
	"blades":   "swords",
	"taper":    "mountain",
	"blast":    "explosion",
	"canopy":   "tree",
	"scatter":  "cloud",
	"drift":    "cascade",
	"spine":    "linear",
	"column":   "grid",
	"doorway":  "portal",
	"star":     "radial",
	"spokes":   "radial",
}

// Registry resolves shape names to strategies.
type Registry struct {
	byName map[string]Strategy
	names  []string
}

// NewRegistry builds a registry over strategies. Later entries replace
// earlier ones with the same name.
func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{byName: make(map[string]Strategy, len(strategies))}
	for _, s := range strategies {
		r.Register(s)
	}
	return r
}

// Default is the registry of built-in shapes.
var Default = NewRegistry(All...)

// Register adds or replaces a strategy.
func (r *Registry) Register(s Strategy) {
	if _, ok := r.byName[s.Name()]; !ok {
		r.names = append(r.names, s.Name())
	}
	r.byName[s.Name()] = s
}

// Lookup resolves name, following aliases. The match is case-insensitive.
func (r *Registry) Lookup(name string) (Strategy, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if canon, ok := Aliases[name]; ok {
		name = canon
	}
	s, ok := r.byName[name]
	return s, ok
}

// Resolve returns the strategy for name, or [Neutral] with ok == false.
// An empty name resolves to Neutral with ok == true.
func (r *Registry) Resolve(name string) (Strategy, bool) {
	if strings.TrimSpace(name) == "" {
		return Neutral, true
	}
	if s, ok := r.Lookup(name); ok {
		return s, true
	}
	return Neutral, false
}

// Profile returns the profile for name, falling back to the neutral profile.
func (r *Registry) Profile(name string) Profile {
	s, _ := r.Resolve(name)
	return s.Profile()
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string { return slices.Clone(r.names) }

// Info describes a registered shape.
type Info struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Profile Profile  `json:"profile"`
	Weights Weights  `json:"weights"`
	Stretch Stretch  `json:"stretch"`
}

// Describe lists every registered shape in registration order.
func (r *Registry) Describe() []Info {
	out := make([]Info, 0, len(r.names))
	for _, name := range r.names {
		s := r.byName[name]
		info := Info{Name: name, Profile: s.Profile(), Weights: s.Weights(), Stretch: s.Stretch()}
		for alias, canon := range Aliases {
			if canon == name {
				info.Aliases = append(info.Aliases, alias)
			}
		}
		slices.Sort(info.Aliases)
		out = append(out, info)
	}
	return out
}

// Find resolves name in the default registry.
func Find(name string) (Strategy, bool) { return Default.Lookup(name) }
