package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/growtree/pkg/cache"
	"github.com/matzehuels/growtree/pkg/graph"
	"github.com/matzehuels/growtree/pkg/layout"
	"github.com/matzehuels/growtree/pkg/observability"
)

// cacheKeyType labels layout entries in cache hooks.
const cacheKeyType = "layout"

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs parse → layout, serving the layout from the cache when an
// identical run was stored before.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}
	hash, err := HashInput(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("hash input: %w", err)
	}
	result.InputHash = hash
	if opts.Cacheable() {
		result.CacheKey = r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())
	}

	// Stage 1: Parse
	parseStart := time.Now()
	cats, err := Parse(opts.Input, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.Categories = len(cats)
	for _, c := range cats {
		result.Stats.Nodes += c.Graph.NodeCount()
		result.Stats.Edges += c.Graph.EdgeCount()
	}

	r.Logger.Debug("parsed input",
		"categories", result.Stats.Categories,
		"nodes", result.Stats.Nodes,
		"edges", result.Stats.Edges,
		"duration", result.Stats.ParseTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, hit, err := r.layoutWithCache(ctx, result.CacheKey, cats, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.CacheHit = hit
	result.Stats.LayoutTime = time.Since(layoutStart)
	for _, c := range l.Categories {
		result.Stats.CrossingsBefore += c.Refine.CrossingsBefore
		result.Stats.CrossingsAfter += c.Refine.CrossingsAfter
		result.Stats.Fallbacks += c.Placement.Fallbacks
		result.Stats.Warnings += len(c.Warnings)
	}

	r.Logger.Info("computed layout",
		"seed", l.Seed,
		"nodes", len(l.Nodes),
		"crossings", fmt.Sprintf("%d→%d", result.Stats.CrossingsBefore, result.Stats.CrossingsAfter),
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// layoutWithCache looks key up before running the engine and stores the
// fresh result. An empty key bypasses the cache. Cache failures are logged
// and never fail the run.
func (r *Runner) layoutWithCache(ctx context.Context, key string, cats []layout.Category, opts Options) (graph.Layout, bool, error) {
	hooks := observability.Cache()

	if key != "" && !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		switch {
		case err != nil:
			r.Logger.Warn("cache read failed", "error", err)
		case hit:
			if cached, err := graph.UnmarshalLayout(data); err == nil {
				hooks.OnCacheHit(ctx, cacheKeyType)
				return cached, true, nil
			}
			// A corrupt entry is recomputed and overwritten below.
			r.Logger.Debug("discarding unreadable cache entry", "key", key)
		}
		hooks.OnCacheMiss(ctx, cacheKeyType)
	}

	l, err := GenerateLayout(ctx, cats, opts)
	if err != nil {
		return graph.Layout{}, false, err
	}

	if key != "" {
		if data, err := graph.MarshalLayout(l); err == nil {
			if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
				r.Logger.Warn("cache write failed", "error", err)
			} else {
				hooks.OnCacheSet(ctx, cacheKeyType, len(data))
			}
		}
	}
	return l, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
