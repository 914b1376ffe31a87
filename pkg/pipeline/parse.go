package pipeline

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/growtree/pkg/cache"
	"github.com/matzehuels/growtree/pkg/graph"
	"github.com/matzehuels/growtree/pkg/layout"
)

// Parse turns a validated input into engine categories. Auto-tiering and
// dropped back edges are logged as warnings.
func Parse(in graph.Input, logger *log.Logger) ([]layout.Category, error) {
	cats, err := graph.ToCategories(in, logger)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		for _, c := range cats {
			logger.Debug("parsed category",
				"category", c.Name,
				"nodes", c.Graph.NodeCount(),
				"edges", c.Graph.EdgeCount(),
				"tiers", c.Graph.TierCount())
		}
	}
	return cats, nil
}

// HashInput returns the content hash of in without its seed and config,
// which enter cache keys separately.
func HashInput(in graph.Input) (string, error) {
	in.Seed = nil
	in.Config = nil
	data, err := graph.MarshalInput(in)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}
