package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the same
	// ID already exists in the graph. Node IDs must be unique within a category.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the parent node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the child node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrSelfLoop is returned by [DAG.AddEdge] when an edge would connect a
	// node to itself.
	ErrSelfLoop = errors.New("edge connects a node to itself")

	// ErrInvalidEdgeEndpoint is returned by [DAG.Validate] when an edge
	// references a node that doesn't exist.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrRootNotTierZero is returned by [DAG.Validate] when a node flagged as a
	// root sits on a tier other than 0.
	ErrRootNotTierZero = errors.New("root node must be on tier 0")

	// ErrNegativeTier is returned by [DAG.Validate] when a node has a tier
	// below zero.
	ErrNegativeTier = errors.New("tier must be >= 0")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	// Cycles are detected using depth-first search with white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// Metadata maps are never nil after AddNode or New.
type Metadata map[string]any

// Node is a placeable item in one category's tree.
//
// The zero value is not usable - ID must be set before adding to a DAG.
type Node struct {
	ID   string   // Unique identifier within the category
	Tier int      // Depth ring (0 = root ring, increasing outward)
	Root bool     // Explicit root flag; roots always sit on tier 0
	Meta Metadata // Arbitrary key-value metadata (never nil after AddNode)
}

// Edge is a directed parent→child connection. The child lists the parent
// among its prerequisites.
type Edge struct {
	From string   // Parent node ID
	To   string   // Child node ID
	Meta Metadata // Arbitrary key-value metadata (never nil after AddEdge)
}

// DAG is the tree structure of one category: nodes indexed by tier, with
// ordered child and parent lists.
//
// Unlike a plain map-backed graph, a DAG remembers node insertion order.
// [DAG.Nodes], [DAG.NodesInTier] and [DAG.Roots] all return nodes in that
// order, which keeps seeded layouts reproducible.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes    map[string]*Node
	order    []*Node
	edges    []Edge
	outgoing map[string][]string // nodeID -> children IDs
	incoming map[string][]string // nodeID -> parent IDs
	tiers    map[int][]*Node     // tier -> nodes in that tier
	meta     Metadata
}

// New creates an empty DAG with optional graph-level metadata.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		tiers:    make(map[int][]*Node),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode adds a node to the graph and indexes it by its Tier.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a node with the same ID already exists.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	d.nodes[node.ID] = node
	d.order = append(d.order, node)
	d.tiers[node.Tier] = append(d.tiers[node.Tier], node)
	return nil
}

// SetTiers updates the tier assignments for nodes and rebuilds the tier index.
// Nodes not present in the map keep their current tier. The index preserves
// insertion order within each tier.
func (d *DAG) SetTiers(tiers map[string]int) {
	d.tiers = make(map[int][]*Node)
	for _, n := range d.order {
		if t, ok := tiers[n.ID]; ok {
			n.Tier = t
		}
		d.tiers[n.Tier] = append(d.tiers[n.Tier], n)
	}
}

// AddEdge adds a directed parent→child edge between two existing nodes.
// Adding an edge that already exists is a no-op, so callers may derive the
// same relation from both a child list and a prerequisite list.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.From == e.To {
		return ErrSelfLoop
	}
	if d.HasEdge(e.From, e.To) {
		return nil
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// HasEdge reports whether the edge from→to exists.
func (d *DAG) HasEdge(from, to string) bool {
	return slices.Contains(d.outgoing[from], to)
}

// Nodes returns all nodes in insertion order. The returned slice contains
// pointers to the actual node structs, so modifications affect the graph.
func (d *DAG) Nodes() []*Node { return slices.Clone(d.order) }

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the IDs of the node's children in edge insertion order.
// The returned slice should not be modified.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the IDs of the node's prerequisites in edge insertion order.
// The returned slice should not be modified.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// Neighbors returns parents followed by children.
func (d *DAG) Neighbors(id string) []string {
	out := make([]string, 0, len(d.incoming[id])+len(d.outgoing[id]))
	out = append(out, d.incoming[id]...)
	return append(out, d.outgoing[id]...)
}

// OutDegree returns the number of outgoing edges from the node.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Node returns the node with the given ID and true, or nil and false if not found.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// NodesInTier returns all nodes assigned to the given tier in insertion order.
func (d *DAG) NodesInTier(tier int) []*Node { return d.tiers[tier] }

// TierCount returns the number of distinct tiers in the graph.
func (d *DAG) TierCount() int { return len(d.tiers) }

// TierIDs returns all tier indices in ascending order.
func (d *DAG) TierIDs() []int {
	return slices.Sorted(maps.Keys(d.tiers))
}

// MaxTier returns the highest tier index, or 0 if the graph is empty.
func (d *DAG) MaxTier() int {
	if len(d.tiers) == 0 {
		return 0
	}
	ids := d.TierIDs()
	return ids[len(ids)-1]
}

// Roots returns the category's roots in insertion order. Nodes flagged Root
// win; failing that, every tier-0 node; failing that, every node without
// prerequisites.
func (d *DAG) Roots() []*Node {
	var flagged, tierZero []*Node
	for _, n := range d.order {
		if n.Root {
			flagged = append(flagged, n)
		}
		if n.Tier == 0 {
			tierZero = append(tierZero, n)
		}
	}
	switch {
	case len(flagged) > 0:
		return flagged
	case len(tierZero) > 0:
		return tierZero
	}
	return d.Sources()
}

// Sources returns nodes with no incoming edges, in insertion order.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, n := range d.order {
		if len(d.incoming[n.ID]) == 0 {
			sources = append(sources, n)
		}
	}
	return sources
}

// Validate checks graph integrity and returns nil if valid.
// It verifies that:
//
//  1. All edges connect existing nodes
//  2. Tiers are non-negative and roots are on tier 0
//  3. The graph is acyclic
//
// The layout engine does not require a valid graph; it degrades instead of
// failing. Validate lets callers report problems up front.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		if _, ok := d.nodes[e.From]; !ok {
			return ErrInvalidEdgeEndpoint
		}
		if _, ok := d.nodes[e.To]; !ok {
			return ErrInvalidEdgeEndpoint
		}
	}
	for _, n := range d.order {
		if n.Tier < 0 {
			return ErrNegativeTier
		}
		if n.Root && n.Tier != 0 {
			return ErrRootNotTierZero
		}
	}
	return d.detectCycles()
}

func (d *DAG) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for _, n := range d.order {
		if color[n.ID] == white {
			dfs(n.ID)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// PosMap creates a position lookup map from a slice of node IDs.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// NodeIDs extracts the ID from each node in a slice.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
