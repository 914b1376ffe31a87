// Package cli implements the growtree command-line interface.
//
// # Commands
//
//   - layout: lay out an input document and write the positioned result
//   - grid: print the candidate grid of one sector
//   - shapes, behaviors: list the shape registry and behavior catalog
//   - config: write, show or locate the configuration file
//   - cache: clear or locate the layout cache
//   - serve: run the HTTP API
//   - completion: generate shell completion scripts
//
// # Configuration
//
// Settings are layered, highest first: command-line flags, GROWTREE_*
// environment variables, the config file (~/.config/growtree/config.toml or
// --config) and built-in defaults.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/growtree/pkg/behavior"
	"github.com/matzehuels/growtree/pkg/buildinfo"
	"github.com/matzehuels/growtree/pkg/cache"
	"github.com/matzehuels/growtree/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "growtree"

	// envPrefix prefixes environment overrides, e.g. GROWTREE_CACHE_BACKEND.
	envPrefix = "GROWTREE"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// out receives user-facing output; logs go to the logger's writer.
	out        io.Writer
	configFile string
	settings   Settings
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:   newLogger(w, level),
		out:      os.Stdout,
		settings: DefaultSettings(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects user-facing output.
func (c *CLI) SetOutput(w io.Writer) { c.out = w }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Growtree lays out skill trees as radial, shaped growths",
		Long: `Growtree computes 2-D positions for the nodes of one or more tree-shaped
categories arranged around a common center. Each category grows outward in its
own angular sector, following a named shape and growth behavior.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, used, err := LoadSettings(c.configFile)
			if err != nil {
				return err
			}
			c.settings = s
			if used != "" {
				c.Logger.Debug("loaded config", "file", used)
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: "+displayPath(configFilePath())+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.gridCommand())
	root.AddCommand(c.shapesCommand())
	root.AddCommand(c.behaviorsCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner over the configured cache backend.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// newCache opens the configured backend. A file cache that cannot be created
// degrades to no caching; an unreachable Redis is an error.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cs := c.settings.Cache
	if noCache || cs.Backend == BackendNone {
		return cache.NewNullCache(), nil
	}
	switch cs.Backend {
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cs.RedisURL, cs.Prefix)
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return rc, nil
	case BackendFile, "":
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Warn("cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			c.Logger.Warn("cache disabled", "dir", dir, "error", err)
			return cache.NewNullCache(), nil
		}
		return fc, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q (want %s, %s or %s)", cs.Backend, BackendFile, BackendRedis, BackendNone)
}

// catalog returns the behavior catalog extended by the configured TOML
// files, or nil when none are configured.
func (c *CLI) catalog(extra []string) (*behavior.Catalog, error) {
	files := append(append([]string(nil), c.settings.Behaviors...), extra...)
	if len(files) == 0 {
		return nil, nil
	}
	cat := behavior.Builtin()
	for _, f := range files {
		names, err := cat.LoadFile(f)
		if err != nil {
			return nil, fmt.Errorf("load behaviors %s: %w", f, err)
		}
		c.Logger.Debug("loaded behaviors", "file", f, "names", names)
	}
	return cat, nil
}
