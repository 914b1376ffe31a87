package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/growtree/pkg/behavior"
	"github.com/matzehuels/growtree/pkg/shape"
)

// shapesCommand lists the shape registry.
func (c *CLI) shapesCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "shapes",
		Short: "List the available growth shapes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := shape.Default.Describe()
			if asJSON {
				return writeJSON(c.out, infos)
			}
			fmt.Fprintln(c.out, shapesTable(infos))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

// behaviorsCommand lists the behavior catalog, including configured files.
func (c *CLI) behaviorsCommand() *cobra.Command {
	var (
		asJSON bool
		files  []string
	)
	cmd := &cobra.Command{
		Use:   "behaviors",
		Short: "List the growth behaviors and their phases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog(files)
			if err != nil {
				return err
			}
			if cat == nil {
				cat = behavior.Builtin()
			}
			if asJSON {
				return writeJSON(c.out, cat.All())
			}
			fmt.Fprintln(c.out, behaviorsTable(cat.All()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	cmd.Flags().StringSliceVar(&files, "behaviors", nil, "TOML files that extend the behavior catalog")
	return cmd
}

func shapesTable(infos []shape.Info) string {
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		st := info.Stretch
		stretch := fmt.Sprintf("radial %.2f", st.Radial)
		if st.Angular > 0 {
			stretch = fmt.Sprintf("angular %.2f, %s", st.Angular, stretch)
		}
		if st.Taper {
			stretch += ", taper"
		}
		rows = append(rows, []string{
			info.Name,
			strings.Join(info.Aliases, ", "),
			fmt.Sprintf("%.0f", info.Profile.RadiusJitter),
			fmt.Sprintf("%.0f°", info.Profile.AngleJitter),
			fmt.Sprintf("%.2f", info.Weights.TierBias),
			stretch,
		})
	}
	return renderTable([]string{"Shape", "Aliases", "R jitter", "A jitter", "Tier bias", "Stretch"}, rows, 2, 3, 4)
}

func behaviorsTable(all []behavior.Behavior) string {
	rows := make([][]string, 0, len(all))
	for _, b := range all {
		phases := make([]string, 0, len(b.Phases))
		for _, p := range b.Phases {
			phases = append(phases, fmt.Sprintf("%.0f%%", p.At*100))
		}
		rows = append(rows, []string{
			b.Name,
			fmt.Sprintf("%+.1f", b.Params.VerticalBias),
			fmt.Sprintf("%.1f", b.Params.SpreadFactor),
			fmt.Sprintf("%.0f°", b.Params.AngularWander),
			strings.Join(phases, " "),
			b.Description,
		})
	}
	return renderTable([]string{"Behavior", "Bias", "Spread", "Wander", "Phases", "Description"}, rows, 1, 2, 3)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
