package graph

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/growtree/pkg/config"
	"github.com/matzehuels/growtree/pkg/dag"
	"github.com/matzehuels/growtree/pkg/dag/transform"
	"github.com/matzehuels/growtree/pkg/errors"
	"github.com/matzehuels/growtree/pkg/grid"
	"github.com/matzehuels/growtree/pkg/layout"
)

// =============================================================================
// Input - Category Documents
// =============================================================================

// Input is the document a layout run reads: a list of categories, each a
// list of nodes with their children and prerequisites.
//
// The same structure decodes from JSON and YAML.
type Input struct {
	// Seed fixes the layout. Nil means the caller picks one.
	Seed *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	// AutoTier recomputes every tier from the edges (longest path from the
	// roots) instead of trusting the tier fields.
	AutoTier bool `json:"auto_tier,omitempty" yaml:"auto_tier,omitempty"`
	// Config overrides layout geometry; zero fields keep their defaults.
	Config     *config.Layout `json:"config,omitempty" yaml:"config,omitempty"`
	Categories []Category     `json:"categories" yaml:"categories"`
}

// Category is one tree in an [Input].
type Category struct {
	Name     string      `json:"name" yaml:"name"`
	Sector   grid.Sector `json:"sector,omitzero" yaml:"sector,omitempty"`
	Shape    string      `json:"shape,omitempty" yaml:"shape,omitempty"`
	Behavior string      `json:"behavior,omitempty" yaml:"behavior,omitempty"`
	Nodes    []Node      `json:"nodes" yaml:"nodes"`
}

// Node is one node of a [Category]. An edge parent→child may be given on
// either side, as a child of the parent or a prerequisite of the child, or
// both.
type Node struct {
	ID            string         `json:"id" yaml:"id"`
	Tier          int            `json:"tier,omitempty" yaml:"tier,omitempty"`
	Root          bool           `json:"root,omitempty" yaml:"root,omitempty"`
	Children      []string       `json:"children,omitempty" yaml:"children,omitempty"`
	Prerequisites []string       `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
	Meta          map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// NodeCount returns the number of nodes across all categories.
func (in Input) NodeCount() int {
	n := 0
	for _, c := range in.Categories {
		n += len(c.Nodes)
	}
	return n
}

// Validate checks names, keys, sectors and node references. It does not
// check that each category is a tree; the engine degrades on cycles and
// unreachable nodes instead.
func (in Input) Validate() error {
	names := make(map[string]bool, len(in.Categories))
	for _, c := range in.Categories {
		if err := errors.ValidateIdentifier("category name", c.Name); err != nil {
			return err
		}
		if names[c.Name] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate category %q", c.Name)
		}
		names[c.Name] = true

		if err := errors.ValidateKey(errors.ErrCodeInvalidShape, c.Shape); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidShape, err, "category %q", c.Name)
		}
		if err := errors.ValidateKey(errors.ErrCodeInvalidBehavior, c.Behavior); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidBehavior, err, "category %q", c.Name)
		}
		if err := errors.ValidateSector(c.Sector.Start, c.Sector.End); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSector, err, "category %q", c.Name)
		}
		if err := c.validateNodes(); err != nil {
			return err
		}
	}
	if in.Config != nil {
		if err := in.Config.WithDefaults().Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c Category) validateNodes() error {
	ids := make(map[string]bool, len(c.Nodes))
	for _, n := range c.Nodes {
		if err := errors.ValidateIdentifier("node id", n.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "category %q", c.Name)
		}
		if ids[n.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "category %q: duplicate node %q", c.Name, n.ID)
		}
		if n.Tier < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "category %q: node %q has negative tier %d", c.Name, n.ID, n.Tier)
		}
		ids[n.ID] = true
	}
	for _, n := range c.Nodes {
		for _, ref := range append(append([]string(nil), n.Children...), n.Prerequisites...) {
			if !ids[ref] {
				return errors.New(errors.ErrCodeInvalidInput, "category %q: node %q references unknown node %q", c.Name, n.ID, ref)
			}
			if ref == n.ID {
				return errors.New(errors.ErrCodeInvalidInput, "category %q: node %q references itself", c.Name, n.ID)
			}
		}
	}
	return nil
}

// =============================================================================
// Input → layout.Category Conversion
// =============================================================================

// ToCategories validates in and builds one [layout.Category] per input
// category. Edges are added in document order: every node's children first,
// then every node's prerequisites, so a child's position in its parent's
// child list follows the parent's children field when both are given.
// Root nodes are forced onto tier 0. A nil logger discards.
func ToCategories(in Input, logger *log.Logger) ([]layout.Category, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	out := make([]layout.Category, 0, len(in.Categories))
	for _, c := range in.Categories {
		g, err := c.toDAG()
		if err != nil {
			return nil, err
		}
		if in.AutoTier {
			if back := transform.AssignTiers(g); back > 0 && logger != nil {
				logger.Warn("ignored back edges while assigning tiers", "category", c.Name, "edges", back)
			}
		}
		out = append(out, layout.Category{
			Name:     c.Name,
			Sector:   c.Sector,
			Shape:    c.Shape,
			Behavior: c.Behavior,
			Graph:    g,
		})
	}
	return out, nil
}

func (c Category) toDAG() (*dag.DAG, error) {
	g := dag.New(dag.Metadata{"category": c.Name})
	for _, n := range c.Nodes {
		tier := n.Tier
		if n.Root {
			tier = 0
		}
		if err := g.AddNode(dag.Node{ID: n.ID, Tier: tier, Root: n.Root, Meta: n.Meta}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "category %q: node %q", c.Name, n.ID)
		}
	}
	for _, n := range c.Nodes {
		for _, child := range n.Children {
			if err := g.AddEdge(dag.Edge{From: n.ID, To: child}); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "category %q: edge %s→%s", c.Name, n.ID, child)
			}
		}
	}
	for _, n := range c.Nodes {
		for _, parent := range n.Prerequisites {
			if err := g.AddEdge(dag.Edge{From: parent, To: n.ID}); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "category %q: edge %s→%s", c.Name, parent, n.ID)
			}
		}
	}
	return g, nil
}

// FromCategories converts engine categories back into an input document.
// Only children lists are emitted.
func FromCategories(cats []layout.Category) Input {
	in := Input{Categories: make([]Category, 0, len(cats))}
	for _, c := range cats {
		ic := Category{Name: c.Name, Sector: c.Sector, Shape: c.Shape, Behavior: c.Behavior}
		if c.Graph != nil {
			for _, n := range c.Graph.Nodes() {
				node := Node{ID: n.ID, Tier: n.Tier, Root: n.Root}
				if kids := c.Graph.Children(n.ID); len(kids) > 0 {
					node.Children = append([]string(nil), kids...)
				}
				if len(n.Meta) > 0 {
					node.Meta = n.Meta
				}
				ic.Nodes = append(ic.Nodes, node)
			}
		}
		in.Categories = append(in.Categories, ic)
	}
	return in
}
