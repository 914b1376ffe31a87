// Package pipeline provides the layout pipeline shared by the CLI and the
// HTTP API.
//
// The pipeline has two stages:
//
//  1. Parse: validate an input document and turn each category into a
//     tiered graph
//  2. Layout: run the engine and flatten the result into a [graph.Layout]
//
// A [Runner] wraps both with a result cache. Layouts are a pure function of
// the input, the seed and the options that change geometry, so a cached
// layout is always the one a fresh run would produce.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input: in,
//	    Seed:  pipeline.SeedOf(42),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	graph.WriteLayout(result.Layout, os.Stdout)
package pipeline

import (
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/growtree/pkg/behavior"
	"github.com/matzehuels/growtree/pkg/cache"
	"github.com/matzehuels/growtree/pkg/config"
	"github.com/matzehuels/growtree/pkg/errors"
	"github.com/matzehuels/growtree/pkg/graph"
	"github.com/matzehuels/growtree/pkg/refine"
	"github.com/matzehuels/growtree/pkg/shape"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultPasses is the number of barycenter sweeps.
	DefaultPasses = refine.DefaultPasses

	// MaxPasses bounds the sweeps a request may ask for.
	MaxPasses = 64

	// MaxParallel bounds concurrent category layouts per request.
	MaxParallel = 64
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Input graph.Input `json:"input"`

	// Seed fixes the layout. It wins over the input's own seed; when both
	// are nil a time-derived seed is used and the result is not cached.
	Seed *uint64 `json:"seed,omitempty"`

	// Config is the base geometry. Non-zero fields of the input's config
	// are applied on top; remaining zero fields take their defaults.
	Config config.Layout `json:"config,omitzero"`

	// Override is applied last, after the input's config. Non-zero fields
	// win over both Config and the input document.
	Override *config.Layout `json:"override,omitempty"`

	Parallel int  `json:"parallel,omitempty"`
	Passes   int  `json:"passes,omitempty"`
	Refresh  bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Shapes    *shape.Registry   `json:"-"`
	Behaviors *behavior.Catalog `json:"-"`
	Logger    *log.Logger       `json:"-"`

	// Now supplies the time-derived seed. Nil means time.Now.
	Now func() time.Time `json:"-"`

	seed       uint64
	randomSeed bool
	validated  bool
}

// SeedOf returns a pointer to seed, for [Options.Seed].
func SeedOf(seed uint64) *uint64 { return &seed }

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the positioned output.
	Layout graph.Layout

	// InputHash is the content hash of the input document, without its
	// seed and config.
	InputHash string

	// CacheKey is empty when the run was not cacheable.
	CacheKey string

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether the layout came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Categories      int
	Nodes           int
	Edges           int
	CrossingsBefore int
	CrossingsAfter  int
	Fallbacks       int
	Warnings        int
	ParseTime       time.Duration
	LayoutTime      time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateAndSetDefaults checks the input and resolves the seed and
// geometry. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.Input.Validate(); err != nil {
		return err
	}
	if o.Passes < 0 || o.Passes > MaxPasses {
		return errors.New(errors.ErrCodeInvalidInput, "passes must be in [0, %d], got %d", MaxPasses, o.Passes)
	}
	if o.Passes == 0 {
		o.Passes = DefaultPasses
	}
	if o.Parallel < 0 || o.Parallel > MaxParallel {
		return errors.New(errors.ErrCodeInvalidInput, "parallel must be in [0, %d], got %d", MaxParallel, o.Parallel)
	}

	cfg := o.Config
	if o.Input.Config != nil {
		cfg = cfg.Override(*o.Input.Config)
	}
	if o.Override != nil {
		cfg = cfg.Override(*o.Override)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.Config = cfg

	switch {
	case o.Seed != nil:
		o.seed = *o.Seed
	case o.Input.Seed != nil:
		o.seed = *o.Input.Seed
	default:
		now := time.Now
		if o.Now != nil {
			now = o.Now
		}
		o.seed = uint64(now().UnixNano())
		o.randomSeed = true
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// EffectiveSeed returns the seed the run uses. Valid after
// ValidateAndSetDefaults.
func (o *Options) EffectiveSeed() uint64 { return o.seed }

// Cacheable reports whether the result may be cached: the seed was given
// rather than derived from the clock.
func (o *Options) Cacheable() bool { return !o.randomSeed }

// LayoutKeyOpts returns the options that determine the layout for cache keys.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Seed:      o.seed,
		Config:    o.Config,
		Passes:    o.Passes,
		Behaviors: catalogFingerprint(o.Behaviors),
	}
}

// catalogFingerprint hashes a custom behavior catalog. Nil (the built-in
// catalog) has the empty fingerprint.
func catalogFingerprint(c *behavior.Catalog) string {
	if c == nil {
		return ""
	}
	var all []behavior.Behavior
	for _, name := range c.Names() {
		b, _ := c.Get(name)
		all = append(all, b)
	}
	data, err := json.Marshal(all)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
