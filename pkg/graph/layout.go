package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/growtree/pkg/config"
	"github.com/matzehuels/growtree/pkg/errors"
	"github.com/matzehuels/growtree/pkg/grid"
	"github.com/matzehuels/growtree/pkg/growth"
	"github.com/matzehuels/growtree/pkg/layout"
	"github.com/matzehuels/growtree/pkg/refine"
)

// =============================================================================
// Layout - Positioned Output
// =============================================================================

// Layout is the serialized result of a layout run: one entry per input node
// plus per-category statistics.
type Layout struct {
	Seed       uint64          `json:"seed"`
	Config     config.Layout   `json:"config"`
	Nodes      []PlacedNode    `json:"nodes"`
	Categories []CategoryStats `json:"categories"`
}

// PlacedNode is the position of one node. Angles are in degrees.
type PlacedNode struct {
	ID           string  `json:"id"`
	Category     string  `json:"category"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Angle        float64 `json:"angle"`
	Radius       float64 `json:"radius"`
	Tier         int     `json:"tier"`
	Shape        string  `json:"shape"`
	Slot         int     `json:"slot"`
	Interpolated bool    `json:"interpolated,omitempty"`
	Orphan       bool    `json:"orphan,omitempty"`
	Overflow     bool    `json:"overflow,omitempty"`
	Root         bool    `json:"root,omitempty"`
}

// CategoryStats summarizes one category of a [Layout].
type CategoryStats struct {
	Name      string       `json:"name"`
	Sector    grid.Sector  `json:"sector"`
	Shape     string       `json:"shape"`
	Behavior  string       `json:"behavior"`
	Seed      uint64       `json:"seed"`
	Nodes     int          `json:"nodes"`
	Placement growth.Stats `json:"placement"`
	Refine    refine.Stats `json:"refine"`
	Warnings  []string     `json:"warnings,omitempty"`
}

// FromResult flattens an engine result. Nodes are listed category by
// category, each in the category's node insertion order; cats must be the
// categories the result was computed from.
func FromResult(res *layout.Result, cats []layout.Category, cfg config.Layout) Layout {
	out := Layout{
		Seed:       res.Seed,
		Config:     cfg,
		Nodes:      make([]PlacedNode, 0, res.NodeCount()),
		Categories: make([]CategoryStats, 0, len(res.Categories)),
	}
	for i, cr := range res.Categories {
		out.Categories = append(out.Categories, CategoryStats{
			Name:      cr.Name,
			Sector:    cr.Sector,
			Shape:     cr.Shape,
			Behavior:  cr.Behavior,
			Seed:      cr.Seed,
			Nodes:     len(cr.Positions),
			Placement: cr.Placement,
			Refine:    cr.Refine,
			Warnings:  cr.Warnings,
		})
		if i >= len(cats) || cats[i].Graph == nil {
			continue
		}
		for _, n := range cats[i].Graph.Nodes() {
			p, ok := cr.Positions[n.ID]
			if !ok {
				continue
			}
			out.Nodes = append(out.Nodes, PlacedNode{
				ID:           p.ID,
				Category:     cr.Name,
				X:            p.X,
				Y:            p.Y,
				Angle:        p.Angle,
				Radius:       p.Radius,
				Tier:         p.Tier,
				Shape:        cr.Shape,
				Slot:         p.Slot,
				Interpolated: p.Interpolated,
				Orphan:       p.Orphan,
				Overflow:     p.Overflow,
				Root:         p.Root,
			})
		}
	}
	return out
}

// Node returns the placed node with the given category and id.
func (l *Layout) Node(category, id string) (PlacedNode, bool) {
	for _, n := range l.Nodes {
		if n.Category == category && n.ID == id {
			return n, true
		}
	}
	return PlacedNode{}, false
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	if len(l.Nodes) > 0 && len(l.Categories) == 0 {
		return Layout{}, errors.New(errors.ErrCodeInvalidFormat, "layout has nodes but no categories")
	}
	return l, nil
}

// WriteLayout writes a Layout as indented JSON to w.
func WriteLayout(l Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
