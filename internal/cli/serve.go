package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/growtree/internal/server"
	"github.com/matzehuels/growtree/pkg/cache"
	"github.com/matzehuels/growtree/pkg/shape"
)

// serveCommand runs the HTTP API until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		behaviors []string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout HTTP API",
		Long: `Serve the layout HTTP API.

Routes:
  POST /v1/layout      lay out a JSON request or a YAML input document
  GET  /v1/shapes      list shapes
  GET  /v1/behaviors   list behaviors
  GET  /healthz        liveness check

Set cache.backend = "redis" to share cached layouts between servers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ss := c.settings.Server
			if cmd.Flags().Changed("addr") {
				ss.Addr = addr
			}
			timeout, err := time.ParseDuration(ss.RequestTimeout)
			if err != nil {
				return fmt.Errorf("server.request_timeout: %w", err)
			}

			catalog, err := c.catalog(behaviors)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()
			if c.settings.Cache.Backend == BackendRedis && !noCache {
				runner.Keyer = cache.NewScopedKeyer(runner.Keyer, "api:")
			}

			srv := server.New(server.Options{
				Runner:         runner,
				Config:         c.settings.Layout,
				Parallel:       c.settings.Parallel,
				Shapes:         shape.Default,
				Behaviors:      catalog,
				Logger:         c.Logger,
				MaxBodyBytes:   ss.MaxBodyBytes,
				RequestTimeout: timeout,
			})
			printInfo(c.out, "Serving on http://%s (cache: %s)", ss.Addr, c.settings.Cache.Backend)
			return srv.ListenAndServe(ctx, ss.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config: localhost:8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringSliceVar(&behaviors, "behaviors", nil, "TOML files that extend the behavior catalog")
	return cmd
}
