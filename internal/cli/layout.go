package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/growtree/pkg/graph"
	"github.com/matzehuels/growtree/pkg/observability"
	"github.com/matzehuels/growtree/pkg/pipeline"
)

type layoutFlags struct {
	output    string
	seed      uint64
	passes    int
	parallel  int
	autoTier  bool
	noCache   bool
	refresh   bool
	behaviors []string
	format    string
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var f layoutFlags

	cmd := &cobra.Command{
		Use:   "layout [input.json|input.yaml|-]",
		Short: "Compute node positions for an input document",
		Long: `Compute node positions for an input document.

The input lists categories, each a tree of nodes with children or
prerequisites. The output is a layout.json file with one positioned entry per
node plus per-category statistics.

Without --seed the input's own seed is used; failing that a time-derived seed
is picked and printed so the run can be reproduced. Seeded results are cached
locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{Parallel: c.settings.Parallel, Passes: c.settings.Passes, Refresh: f.refresh}
			if cmd.Flags().Changed("seed") {
				opts.Seed = pipeline.SeedOf(f.seed)
			}
			if cmd.Flags().Changed("passes") {
				opts.Passes = f.passes
			}
			if cmd.Flags().Changed("parallel") {
				opts.Parallel = f.parallel
			}
			return c.runLayout(cmd.Context(), args[0], opts, f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file, - for stdout (default: <input>.layout.json)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed (default: input seed, else time-derived)")
	cmd.Flags().IntVar(&f.passes, "passes", pipeline.DefaultPasses, "barycenter sweeps")
	cmd.Flags().IntVar(&f.parallel, "parallel", 0, "categories laid out concurrently (default from config)")
	cmd.Flags().BoolVar(&f.autoTier, "auto-tier", false, "derive tiers from the edges instead of the input")
	cmd.Flags().StringSliceVar(&f.behaviors, "behaviors", nil, "TOML files that extend the behavior catalog")
	cmd.Flags().StringVar(&f.format, "format", "", "input format when reading stdin: json or yaml (default: detect)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even if cached")

	return cmd
}

// runLayout loads the input, computes the layout and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, f layoutFlags) error {
	in, err := readInput(input, f.format)
	if err != nil {
		return err
	}
	if f.autoTier {
		in.AutoTier = true
	}

	catalog, err := c.catalog(f.behaviors)
	if err != nil {
		return err
	}
	opts.Input = in
	opts.Config = c.settings.Layout
	opts.Behaviors = catalog
	opts.Logger = c.Logger

	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	toStdout := f.output == "-"
	status := c.out
	if toStdout {
		status = io.Discard
	}

	spinner := newSpinner(ctx, os.Stderr, fmt.Sprintf("Laying out %d categories...", len(in.Categories)))
	if !toStdout {
		observability.SetLayoutHooks(spinner)
		defer observability.SetLayoutHooks(observability.NoopLayoutHooks{})
		spinner.Start()
	}

	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done("layout finished", "nodes", res.Stats.Nodes, "cached", res.CacheHit)

	if toStdout {
		return graph.WriteLayout(res.Layout, c.out)
	}

	outputPath := f.output
	if outputPath == "" {
		outputPath = defaultOutputPath(input)
	}
	if err := graph.WriteLayoutFile(res.Layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess(status, "Layout complete")
	printFile(status, outputPath)
	printStats(status, []string{
		fmt.Sprintf("%d categories", res.Stats.Categories),
		fmt.Sprintf("%d nodes", res.Stats.Nodes),
		fmt.Sprintf("%d edges", res.Stats.Edges),
		fmt.Sprintf("crossings %d %s %d", res.Stats.CrossingsBefore, iconArrow, res.Stats.CrossingsAfter),
	}, res.CacheHit)
	if opts.Seed == nil && in.Seed == nil {
		printDetail(status, "seed %d (pass --seed %d to reproduce)", res.Layout.Seed, res.Layout.Seed)
	}
	fmt.Fprintln(status)
	fmt.Fprintln(status, categoryTable(res.Layout))
	for _, cs := range res.Layout.Categories {
		for _, w := range cs.Warnings {
			printWarning(status, "%s: %s", cs.Name, w)
		}
	}
	return nil
}

// readInput reads path, or stdin when path is "-".
func readInput(path, format string) (graph.Input, error) {
	if path == "-" {
		in, err := graph.ReadInput(os.Stdin, format)
		if err != nil {
			return graph.Input{}, fmt.Errorf("read stdin: %w", err)
		}
		return in, nil
	}
	in, err := graph.ReadInputFile(path)
	if err != nil {
		return graph.Input{}, fmt.Errorf("load input %s: %w", path, err)
	}
	return in, nil
}

// defaultOutputPath maps spells.yaml to spells.layout.json.
func defaultOutputPath(input string) string {
	if input == "-" {
		return "layout.json"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
}

// categoryTable summarizes each category of l.
func categoryTable(l graph.Layout) string {
	rows := make([][]string, 0, len(l.Categories))
	for _, cs := range l.Categories {
		rows = append(rows, []string{
			cs.Name,
			cs.Sector.String(),
			cs.Shape,
			cs.Behavior,
			fmt.Sprint(cs.Nodes),
			fmt.Sprintf("%d %s %d", cs.Refine.CrossingsBefore, iconArrow, cs.Refine.CrossingsAfter),
			fmt.Sprint(cs.Placement.Fallbacks),
			fmt.Sprint(cs.Refine.Nudged),
			fmt.Sprintf("%.2f", cs.Refine.Stretch),
		})
	}
	return renderTable(
		[]string{"Category", "Sector", "Shape", "Behavior", "Nodes", "Crossings", "Fallbacks", "Nudged", "Stretch"},
		rows, 4, 6, 7, 8,
	)
}
