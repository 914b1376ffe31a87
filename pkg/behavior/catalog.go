package behavior

import (
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/growtree/pkg/errors"
)

// Catalog is a set of behaviors keyed by name.
type Catalog struct {
	byName map[string]Behavior
	names  []string
}

// NewCatalog builds a catalog. Later behaviors replace earlier ones with the
// same name.
func NewCatalog(behaviors ...Behavior) *Catalog {
	c := &Catalog{byName: make(map[string]Behavior, len(behaviors))}
	for _, b := range behaviors {
		c.Add(b)
	}
	return c
}

// Builtin returns a fresh catalog of the built-in behaviors.
func Builtin() *Catalog {
	return NewCatalog(
		New("balanced", "Even growth in every direction", Neutral),
		New("upward_surge", "Climbs outward fast, then narrows",
			Params{VerticalBias: 0.6, SpreadFactor: 0.4, AngularWander: 8, LayerFillThreshold: 0.3},
			Phase{At: 0.5, Overrides: Overrides{VerticalBias: f(0.8)}},
			Phase{At: 0.8, Overrides: Overrides{VerticalBias: f(0.8), SpreadFactor: f(0.3)}},
		),
		New("ground_cover", "Fills inner tiers before moving out",
			Params{VerticalBias: -0.6, SpreadFactor: 0.9, AngularWander: 20, LayerFillThreshold: 0.6},
			Phase{At: 0.7, Overrides: Overrides{VerticalBias: f(-0.2)}},
		),
		New("burst", "Wide initial flare that settles into steady growth",
			Params{VerticalBias: 0.2, SpreadFactor: 1, AngularWander: 25, LayerFillThreshold: 0.3},
			Phase{At: 0, Overrides: Overrides{SpreadFactor: f(1.2)}},
			Phase{At: 0.3, Overrides: Overrides{VerticalBias: f(0.5), SpreadFactor: f(0.8)}},
			Phase{At: 0.7, Overrides: Overrides{AngularWander: f(10)}},
		),
		New("wandering", "Meanders sideways with large angular drift",
			Params{VerticalBias: 0, SpreadFactor: 0.7, AngularWander: 35, LayerFillThreshold: 0.3},
			Phase{At: 0.5, Overrides: Overrides{AngularWander: f(45)}},
		),
		New("steady_climb", "Gains outward momentum in thirds",
			Params{VerticalBias: 0.3, SpreadFactor: 0.5, AngularWander: 10, LayerFillThreshold: 0.4},
			Phase{At: 0.33, Overrides: Overrides{VerticalBias: f(0.4)}},
			Phase{At: 0.66, Overrides: Overrides{VerticalBias: f(0.5)}},
		),
	)
}

// Add inserts or replaces b.
func (c *Catalog) Add(b Behavior) {
	if _, ok := c.byName[b.Name]; !ok {
		c.names = append(c.names, b.Name)
	}
	c.byName[b.Name] = b
}

// Get returns the behavior named name. Lookup is case-insensitive.
func (c *Catalog) Get(name string) (Behavior, bool) {
	b, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return b, ok
}

// Resolve returns the named behavior, or a neutral behavior with ok == false.
// An empty name resolves to the neutral behavior with ok == true.
func (c *Catalog) Resolve(name string) (Behavior, bool) {
	if strings.TrimSpace(name) == "" {
		return New("none", "", Neutral), true
	}
	if b, ok := c.Get(name); ok {
		return b, true
	}
	return New(name, "", Neutral), false
}

// ActiveParameters returns the parameters of the named behavior at progress,
// falling back to neutral defaults for unknown names.
func (c *Catalog) ActiveParameters(name string, progress float64) Params {
	b, _ := c.Resolve(name)
	return b.Active(progress)
}

// Names returns behavior names in insertion order.
func (c *Catalog) Names() []string { return slices.Clone(c.names) }

// All returns every behavior in insertion order.
func (c *Catalog) All() []Behavior {
	out := make([]Behavior, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.byName[name])
	}
	return out
}

// Len returns the number of behaviors.
func (c *Catalog) Len() int { return len(c.names) }

type fileBehavior struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Overrides
	Phases []filePhase `toml:"phase"`
}

type filePhase struct {
	At float64 `toml:"at"`
	Overrides
}

type catalogFile struct {
	Behaviors []fileBehavior `toml:"behavior"`
}

// LoadFile reads behaviors from a TOML file into c. Parameters a behavior
// leaves out take the neutral defaults. It returns the names that were loaded.
func (c *Catalog) LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "behavior file %s", path)
		}
		return nil, err
	}
	return c.Load(data)
}

// Load parses TOML behavior definitions into c. Nothing is added unless every
// behavior in data is valid.
func (c *Catalog) Load(data []byte) ([]string, error) {
	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse behaviors")
	}

	loaded := make([]Behavior, 0, len(file.Behaviors))
	for _, fb := range file.Behaviors {
		name := strings.ToLower(strings.TrimSpace(fb.Name))
		if name == "" {
			return nil, errors.New(errors.ErrCodeInvalidBehavior, "behavior without a name")
		}
		if err := errors.ValidateKey(errors.ErrCodeInvalidBehavior, name); err != nil {
			return nil, err
		}
		phases := make([]Phase, len(fb.Phases))
		for i, p := range fb.Phases {
			phases[i] = Phase{At: p.At, Overrides: p.Overrides}
		}
		b := New(name, fb.Description, fb.Overrides.Apply(Neutral), phases...)
		if err := b.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidBehavior, err, "invalid behavior")
		}
		loaded = append(loaded, b)
	}

	names := make([]string, len(loaded))
	for i, b := range loaded {
		c.Add(b)
		names[i] = b.Name
	}
	return names, nil
}
