package pipeline

import (
	"context"

	"github.com/matzehuels/growtree/pkg/graph"
	"github.com/matzehuels/growtree/pkg/layout"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout runs the engine over cats and flattens the result. opts
// must have been through ValidateAndSetDefaults.
func GenerateLayout(ctx context.Context, cats []layout.Category, opts Options) (graph.Layout, error) {
	e, err := layout.New(layout.Options{
		Seed:      opts.seed,
		Config:    opts.Config,
		Parallel:  opts.Parallel,
		Passes:    opts.Passes,
		Shapes:    opts.Shapes,
		Behaviors: opts.Behaviors,
		Logger:    opts.Logger,
	})
	if err != nil {
		return graph.Layout{}, err
	}
	res, err := e.Layout(ctx, cats)
	if err != nil {
		return graph.Layout{}, err
	}
	return graph.FromResult(res, cats, e.Config()), nil
}
