package growth

import (
	"bytes"
	"fmt"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/growtree/pkg/behavior"
	"github.com/matzehuels/growtree/pkg/config"
	"github.com/matzehuels/growtree/pkg/dag"
	"github.com/matzehuels/growtree/pkg/grid"
	"github.com/matzehuels/growtree/pkg/rng"
	"github.com/matzehuels/growtree/pkg/shape"
)

func input(g *dag.DAG, cfg config.Layout, sector grid.Sector, s shape.Strategy, b behavior.Behavior, seed uint64) Input {
	gen := grid.NewGenerator(cfg)
	return Input{
		Graph:    g,
		Frame:    gen.Frame(sector),
		Grid:     grid.New(gen.ForSector(sector)),
		Config:   cfg,
		Shape:    s,
		Behavior: b,
		Stream:   rng.NewStream(seed),
	}
}

// tree builds a root with the given fan-out per level.
func tree(t *testing.T, fanout ...int) *dag.DAG {
	t.Helper()
	g := dag.New(nil)
	if err := g.AddNode(dag.Node{ID: "root", Root: true}); err != nil {
		t.Fatal(err)
	}
	level := []string{"root"}
	for depth, k := range fanout {
		var next []string
		for _, parent := range level {
			for i := range k {
				id := fmt.Sprintf("%s.%d", parent, i)
				_ = g.AddNode(dag.Node{ID: id, Tier: depth + 1})
				_ = g.AddEdge(dag.Edge{From: parent, To: id})
				next = append(next, id)
			}
		}
		level = next
	}
	return g
}

func neutral() behavior.Behavior { return behavior.New("none", "", behavior.Neutral) }

func checkInvariants(t *testing.T, g *dag.DAG, res *Placement) {
	t.Helper()
	if len(res.Positions) != g.NodeCount() {
		t.Fatalf("%d positions for %d nodes", len(res.Positions), g.NodeCount())
	}
	seen := make(map[grid.Key]string)
	for id, p := range res.Positions {
		if p.Tier < 0 {
			t.Errorf("%s: tier %d", id, p.Tier)
		}
		if p.Root && p.Tier != 0 {
			t.Errorf("root %s on tier %d", id, p.Tier)
		}
		if !p.Root && p.Tier == 0 {
			t.Errorf("non-root %s on the root ring", id)
		}
		for _, v := range []float64{p.X, p.Y, p.Angle, p.Radius} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("%s: non-finite position %+v", id, p)
			}
		}
		x, y := grid.Polar(p.Angle, p.Radius)
		if math.Abs(x-p.X) > 1e-9 || math.Abs(y-p.Y) > 1e-9 {
			t.Errorf("%s: (%v, %v) does not match polar (%v, %v)", id, p.X, p.Y, x, y)
		}
		if p.OnGrid() {
			k := grid.Key{Tier: p.Tier, Index: p.Slot}
			if other, dup := seen[k]; dup {
				t.Errorf("%s and %s share slot %+v", id, other, k)
			}
			seen[k] = id
		}
	}
}

func TestScenarioSingleRootThreeChildren(t *testing.T) {
	cfg := config.Default()
	sector := grid.Sector{Start: 0, End: 360}
	run := func() *Placement {
		return Place(input(tree(t, 3), cfg, sector, shape.Neutral, neutral(), 42))
	}

	res := run()
	checkInvariants(t, tree(t, 3), res)

	f := grid.NewGenerator(cfg).Frame(sector)
	root := res.Positions["root"]
	if root.Tier != 0 || root.Angle != f.Center() {
		t.Errorf("root = tier %d angle %v, want tier 0 angle %v", root.Tier, root.Angle, f.Center())
	}
	bound := behavior.Neutral.SpreadFactor * sector.Span() * FanFraction
	for i := range 3 {
		id := fmt.Sprintf("root.%d", i)
		c := res.Positions[id]
		if c.Tier != 1 {
			t.Errorf("%s on tier %d, want 1", id, c.Tier)
		}
		if d := math.Abs(c.Angle - root.Angle); d > bound {
			t.Errorf("%s is %v° from the root, want <= %v°", id, d, bound)
		}
	}

	again := run()
	for id, p := range res.Positions {
		if again.Positions[id] != p {
			t.Errorf("%s differs on rerun: %+v vs %+v", id, p, again.Positions[id])
		}
	}
}

func TestInvariantsAcrossShapesAndBehaviors(t *testing.T) {
	cfg := config.Default()
	cat := behavior.Builtin()
	for _, s := range shape.All {
		for _, name := range cat.Names() {
			b, _ := cat.Get(name)
			t.Run(s.Name()+"/"+name, func(t *testing.T) {
				g := tree(t, 3, 3, 2)
				res := Place(input(g, cfg, grid.SectorFor(1, 3), s, b, 7))
				checkInvariants(t, g, res)
				if res.Stats.Orphans != 0 {
					t.Errorf("connected tree produced %d orphans", res.Stats.Orphans)
				}
			})
		}
	}
}

func TestRoundRobinInterleavesSiblings(t *testing.T) {
	g := tree(t, 2, 2)
	res := Place(input(g, config.Default(), grid.SectorFor(0, 2), shape.Neutral, neutral(), 1))
	want := []string{"root", "root.0", "root.1", "root.0.0", "root.1.0", "root.0.1", "root.1.1"}
	if !slices.Equal(res.Order, want) {
		t.Errorf("Order = %v, want %v", res.Order, want)
	}
}

func TestDeterminismAndSeed(t *testing.T) {
	cfg := config.Default()
	place := func(seed uint64) *Placement {
		return Place(input(tree(t, 4, 2), cfg, grid.SectorFor(0, 4), shape.Neutral, neutral(), seed))
	}
	a, b, c := place(99), place(99), place(100)
	changed := false
	for id, p := range a.Positions {
		if b.Positions[id] != p {
			t.Fatalf("%s not deterministic", id)
		}
		if c.Positions[id].Angle != p.Angle {
			changed = true
		}
	}
	if !changed {
		t.Error("changing the seed changed no angle")
	}
}

func TestUnreachableNodeIsOrphan(t *testing.T) {
	g := tree(t, 2)
	_ = g.AddNode(dag.Node{ID: "stray", Tier: 2})
	_ = g.AddNode(dag.Node{ID: "stray.child", Tier: 3})
	_ = g.AddEdge(dag.Edge{From: "stray", To: "stray.child"})

	res := Place(input(g, config.Default(), grid.SectorFor(0, 1), shape.Neutral, neutral(), 3))
	checkInvariants(t, g, res)
	for _, id := range []string{"stray", "stray.child"} {
		p := res.Positions[id]
		if !p.Orphan {
			t.Errorf("%s not flagged orphan", id)
		}
	}
	if res.Stats.Orphans != 2 {
		t.Errorf("Stats.Orphans = %d, want 2", res.Stats.Orphans)
	}
}

func TestGridExhaustionInterpolates(t *testing.T) {
	cfg := config.Default()
	cfg.MaxTiers = 2
	cfg.ArcSpacing = 10000 // three slots per tier
	g := tree(t, 10)

	res := Place(input(g, cfg, grid.SectorFor(0, 4), shape.Neutral, neutral(), 5))
	checkInvariants(t, g, res)
	if res.Stats.Interpolated != 7 {
		t.Errorf("Stats.Interpolated = %d, want 7", res.Stats.Interpolated)
	}
	for id, p := range res.Positions {
		if p.Interpolated && (p.Slot != NoSlot || p.Tier != 1) {
			t.Errorf("%s: interpolated position %+v", id, p)
		}
	}
}

func TestOverflowWhenGridFull(t *testing.T) {
	cfg := config.Default()
	cfg.MaxTiers = 2
	cfg.ArcSpacing = 10000
	g := tree(t, 3)
	for i := range 5 {
		_ = g.AddNode(dag.Node{ID: fmt.Sprintf("lost%d", i), Tier: 1})
	}

	res := Place(input(g, cfg, grid.SectorFor(0, 4), shape.Neutral, neutral(), 5))
	checkInvariants(t, g, res)
	if res.Stats.Overflow != 5 {
		t.Errorf("Stats.Overflow = %d, want 5", res.Stats.Overflow)
	}
	p := res.Positions["lost0"]
	if !p.Overflow || !p.Orphan || p.X != 0 || p.Y != 0 {
		t.Errorf("overflow position = %+v", p)
	}
}

func TestMultipleRootsSpread(t *testing.T) {
	g := dag.New(nil)
	for _, id := range []string{"a", "b", "c"} {
		_ = g.AddNode(dag.Node{ID: id, Root: true})
	}
	cfg := config.Default()
	sector := grid.Sector{Start: 0, End: 120}
	res := Place(input(g, cfg, sector, shape.Neutral, neutral(), 1))

	f := grid.NewGenerator(cfg).Frame(sector)
	half := RootSpreadFraction * f.Usable / 2
	want := map[string]float64{"a": f.Center() - half, "b": f.Center(), "c": f.Center() + half}
	for id, angle := range want {
		p := res.Positions[id]
		if math.Abs(p.Angle-angle) > 1e-9 || p.Radius != cfg.BaseRadius || !p.Root {
			t.Errorf("%s = %+v, want angle %v radius %v", id, p, angle, cfg.BaseRadius)
		}
	}
}

func TestOuterBiasSkipsTiers(t *testing.T) {
	g := tree(t, 20)
	b := behavior.New("up", "", behavior.Params{VerticalBias: 1, SpreadFactor: 0.6, AngularWander: 5, LayerFillThreshold: 0.3})
	res := Place(input(g, config.Default(), grid.SectorFor(0, 1), shape.Neutral, b, 11))
	skipped := false
	for _, p := range res.Positions {
		if p.Tier > 1 {
			skipped = true
		}
	}
	if !skipped {
		t.Error("full vertical bias never skipped a tier")
	}
}

func TestEmptyGraph(t *testing.T) {
	res := Place(input(dag.New(nil), config.Default(), grid.SectorFor(0, 1), shape.Neutral, neutral(), 1))
	if len(res.Positions) != 0 || len(res.Order) != 0 {
		t.Errorf("empty graph produced %d positions", len(res.Positions))
	}
}

func TestDepthFollowsGraph(t *testing.T) {
	treeShape, _ := shape.Find("tree")
	cfg := config.Default()
	g := tree(t, 3)
	p := New(input(g, cfg, grid.Sector{Start: 0, End: 90}, treeShape, neutral(), 1))

	tests := []struct {
		tier int
		want float64
	}{
		{0, 0},
		{1, 1},
		{3, 1},
	}
	for _, tt := range tests {
		if got := p.depth(tt.tier); got != tt.want {
			t.Errorf("depth(%d) = %v, want %v", tt.tier, got, tt.want)
		}
		if got, want := p.depth(tt.tier), shape.Depth(tt.tier, g.MaxTier()); got != want {
			t.Errorf("depth(%d) = %v, shape.Depth = %v", tt.tier, got, want)
		}
	}
}

func TestNegativeVerticalBiasHoldsTier(t *testing.T) {
	g := tree(t, 3, 3)
	p := New(input(g, config.Default(), grid.Sector{Start: 0, End: 90}, shape.Neutral, neutral(), 3))

	tests := []struct {
		name       string
		parentTier int
		params     behavior.Params
		want       int
	}{
		{"under threshold", 1, behavior.Params{VerticalBias: -0.1, LayerFillThreshold: 0.5}, 1},
		{"strong bias", 2, behavior.Params{VerticalBias: -1, LayerFillThreshold: 0.5}, 2},
		{"threshold reached", 1, behavior.Params{VerticalBias: -0.1, LayerFillThreshold: 0}, 2},
		{"root tier reserved", 0, behavior.Params{VerticalBias: -1, LayerFillThreshold: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := p.in.Stream.Draws()
			for range 20 {
				if got := p.targetTier(tt.parentTier, tt.params); got != tt.want {
					t.Fatalf("targetTier(%d) = %d, want %d", tt.parentTier, got, tt.want)
				}
			}
			if d := p.in.Stream.Draws() - before; d != 0 {
				t.Errorf("drew %d values, want 0", d)
			}
		})
	}
}

func TestPlaceRootsLogsIDs(t *testing.T) {
	g := dag.New(nil)
	for _, id := range []string{"ember", "frost"} {
		_ = g.AddNode(dag.Node{ID: id, Root: true})
	}
	var buf bytes.Buffer
	in := input(g, config.Default(), grid.Sector{Start: 0, End: 120}, shape.Neutral, neutral(), 1)
	in.Logger = log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	New(in).PlaceRoots()

	out := buf.String()
	if !strings.Contains(out, "roots placed") || !strings.Contains(out, "ember frost") {
		t.Errorf("log = %q, want root ids", out)
	}
}
