package layout

import (
	"context"
	"fmt"
	"io"
	"maps"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/growtree/pkg/behavior"
	"github.com/matzehuels/growtree/pkg/config"
	"github.com/matzehuels/growtree/pkg/dag"
	"github.com/matzehuels/growtree/pkg/errors"
	"github.com/matzehuels/growtree/pkg/grid"
	"github.com/matzehuels/growtree/pkg/growth"
	"github.com/matzehuels/growtree/pkg/observability"
	"github.com/matzehuels/growtree/pkg/refine"
	"github.com/matzehuels/growtree/pkg/rng"
	"github.com/matzehuels/growtree/pkg/shape"
)

// Category is one tree to lay out.
type Category struct {
	Name string
	// Sector is the category's angular range. The zero sector means "the
	// index-th of n equal slices of the disk".
	Sector grid.Sector
	// Shape and Behavior are registry keys; empty selects the neutral one.
	Shape    string
	Behavior string
	Graph    *dag.DAG
}

// Options configures an [Engine].
type Options struct {
	Seed   uint64
	Config config.Layout
	// Parallel is the number of categories laid out concurrently. Values
	// below 2 lay categories out one after another.
	Parallel int
	// Passes is the number of barycenter sweeps; zero means
	// [refine.DefaultPasses].
	Passes    int
	Shapes    *shape.Registry
	Behaviors *behavior.Catalog
	Logger    *log.Logger
}

// CategoryResult is the layout of one category.
type CategoryResult struct {
	Name      string           `json:"name"`
	Sector    grid.Sector      `json:"sector"`
	Shape     string           `json:"shape"`
	Behavior  string           `json:"behavior"`
	Seed      uint64           `json:"seed"`
	Positions growth.Positions `json:"positions"`
	Placement growth.Stats     `json:"placement"`
	Refine    refine.Stats     `json:"refine"`
	Warnings  []string         `json:"warnings,omitempty"`
}

// Result is the layout of every category, in input order.
type Result struct {
	Seed       uint64           `json:"seed"`
	Categories []CategoryResult `json:"categories"`
}

// NodeCount returns the number of positioned nodes across all categories.
func (r *Result) NodeCount() int {
	n := 0
	for _, c := range r.Categories {
		n += len(c.Positions)
	}
	return n
}

// Positions merges every category's positions into one fresh map. Node IDs
// are expected to be unique across categories; on a clash the later
// category wins.
func (r *Result) Positions() growth.Positions {
	out := make(growth.Positions, r.NodeCount())
	for _, c := range r.Categories {
		maps.Copy(out, c.Positions)
	}
	return out
}

// Engine lays out categories. It holds no per-run state and is safe for
// concurrent use.
type Engine struct {
	opts Options
}

// New validates opts and returns an engine. Zero config fields take their
// defaults; nil registries select the built-in shapes and behaviors.
func New(opts Options) (*Engine, error) {
	opts.Config = opts.Config.WithDefaults()
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Shapes == nil {
		opts.Shapes = shape.Default
	}
	if opts.Behaviors == nil {
		opts.Behaviors = behavior.Builtin()
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Engine{opts: opts}, nil
}

// Config returns the effective layout configuration.
func (e *Engine) Config() config.Layout { return e.opts.Config }

// Layout lays out every category and returns the results in input order.
// The only errors are a cancelled context and a category with an invalid
// name.
func (e *Engine) Layout(ctx context.Context, cats []Category) (*Result, error) {
	start := time.Now()
	nodes := 0
	for _, c := range cats {
		if c.Graph != nil {
			nodes += c.Graph.NodeCount()
		}
	}
	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, len(cats), nodes)

	res, err := e.layout(ctx, cats)
	hooks.OnLayoutComplete(ctx, nodes, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	e.opts.Logger.Debug("layout complete", "categories", len(cats), "nodes", nodes, "duration", time.Since(start))
	return res, nil
}

func (e *Engine) layout(ctx context.Context, cats []Category) (*Result, error) {
	for _, c := range cats {
		if err := errors.ValidateIdentifier("category name", c.Name); err != nil {
			return nil, err
		}
	}

	results := make([]CategoryResult, len(cats))
	if e.opts.Parallel < 2 || len(cats) < 2 {
		for i, c := range cats {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = e.LayoutCategory(ctx, c, i, len(cats))
		}
		return &Result{Seed: e.opts.Seed, Categories: results}, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Parallel)
	for i, c := range cats {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.LayoutCategory(gctx, c, i, len(cats))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Result{Seed: e.opts.Seed, Categories: results}, nil
}

// LayoutCategory lays out the index-th of total categories. It never fails:
// problems are logged and listed in the result's warnings.
func (e *Engine) LayoutCategory(ctx context.Context, c Category, index, total int) CategoryResult {
	cfg := e.opts.Config
	logger := e.opts.Logger.With("category", c.Name)
	res := CategoryResult{
		Name: c.Name,
		Seed: rng.CategorySeed(e.opts.Seed, c.Name),
	}
	warn := func(msg string, kv ...any) {
		logger.Warn(msg, kv...)
		res.Warnings = append(res.Warnings, warning(msg, kv...))
	}

	res.Sector = c.Sector
	if res.Sector.IsZero() {
		res.Sector = grid.SectorFor(index, total)
	} else if err := errors.ValidateSector(c.Sector.Start, c.Sector.End); err != nil {
		res.Sector = grid.SectorFor(index, total)
		warn("invalid sector, using an even slice", "sector", c.Sector, "fallback", res.Sector)
	}

	strategy, ok := e.opts.Shapes.Resolve(c.Shape)
	if !ok {
		warn("unknown shape", "shape", c.Shape, "fallback", strategy.Name())
	}
	res.Shape = strategy.Name()

	b, ok := e.opts.Behaviors.Resolve(c.Behavior)
	res.Behavior = b.Name
	if !ok {
		res.Behavior = "none"
		warn("unknown behavior", "behavior", c.Behavior, "fallback", res.Behavior)
	}

	g := c.Graph
	if g == nil {
		g = dag.New(nil)
	}
	if err := g.Validate(); err != nil {
		warn("graph is not a valid tree, layout may degrade", "error", err)
	}

	gen := grid.NewGenerator(cfg)
	frame := gen.Frame(res.Sector)
	placer := growth.New(growth.Input{
		Graph:    g,
		Frame:    frame,
		Grid:     grid.New(gen.ForSector(res.Sector)),
		Config:   cfg,
		Shape:    strategy,
		Behavior: b,
		Stream:   rng.NewStream(res.Seed),
		Logger:   logger,
	})

	var rin refine.Input
	run := func(s Stage, fn func()) {
		start := time.Now()
		fn()
		d := time.Since(start)
		logger.Debug("stage complete", "stage", s, "duration", d)
		observability.Layout().OnStage(ctx, c.Name, s.String(), d)
	}

	for _, s := range Stages() {
		switch s {
		case StageRootPlacement:
			run(s, placer.PlaceRoots)
		case StageLevelBFSPlacement:
			run(s, placer.Grow)
		case StageOrphanAssignment:
			run(s, placer.AssignOrphans)
			p := placer.Result()
			res.Positions, res.Placement = p.Positions, p.Stats
			rin = refine.Input{
				Graph:     g,
				Positions: p.Positions,
				Frame:     frame,
				Config:    cfg,
				Shape:     strategy,
				Logger:    logger,
				Passes:    e.opts.Passes,
			}
		case StageBarycenterReorder:
			run(s, func() { res.Refine.CrossingsBefore, res.Refine.CrossingsAfter = refine.Barycenter(rin) })
		case StageSitterNudge:
			run(s, func() { res.Refine.Nudged = refine.NudgeSitters(rin) })
		case StageShapeConformity:
			run(s, func() { refine.Conform(rin) })
		case StageDensityStretch:
			run(s, func() { res.Refine.Stretch = refine.Stretch(rin) })
		}
	}

	e.reportFallbacks(ctx, c.Name, res.Placement)
	logger.Debug("category laid out", "shape", res.Shape, "behavior", res.Behavior,
		"nodes", len(res.Positions), "crossings", res.Refine.CrossingsAfter, "stretch", res.Refine.Stretch)
	return res
}

func (e *Engine) reportFallbacks(ctx context.Context, category string, st growth.Stats) {
	hooks := observability.Layout()
	for _, f := range []struct {
		kind  string
		count int
	}{
		{"grid", st.Fallbacks},
		{"interpolated", st.Interpolated},
		{"overflow", st.Overflow},
	} {
		if f.count > 0 {
			hooks.OnFallback(ctx, category, f.kind, f.count)
		}
	}
}

// warning renders a log message and its key-value pairs as one line.
func warning(msg string, kv ...any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	return b.String()
}
