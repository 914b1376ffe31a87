package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/growtree/pkg/grid"
)

// gridCommand prints the candidate grid of one sector.
func (c *CLI) gridCommand() *cobra.Command {
	var (
		total, index int
		start, end   float64
		asJSON       bool
	)
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Show the candidate slots of a category's sector",
		Long: `Show the candidate slots of a category's sector.

By default the sector is the index-th of --categories equal slices of the
disk; --start and --end select an explicit sector in degrees.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if total < 1 || index < 0 || index >= total {
				return fmt.Errorf("--index must be in [0, %d)", total)
			}
			sector := grid.SectorFor(index, total)
			if cmd.Flags().Changed("start") || cmd.Flags().Changed("end") {
				sector = grid.Sector{Start: start, End: end}
			}
			gen := grid.NewGenerator(c.settings.Layout)
			slots := gen.ForSector(sector)
			if asJSON {
				return writeJSON(c.out, slots)
			}

			f := gen.Frame(sector)
			printKeyValue(c.out, "sector", sector.String())
			printKeyValue(c.out, "usable", fmt.Sprintf("[%.1f°, %.1f°]", f.Lo(), f.Hi()))
			printKeyValue(c.out, "slots", fmt.Sprint(len(slots)))
			fmt.Fprintln(c.out, tierTable(slots))
			return nil
		},
	}
	cmd.Flags().IntVarP(&total, "categories", "n", 1, "number of categories sharing the disk")
	cmd.Flags().IntVarP(&index, "index", "i", 0, "category index")
	cmd.Flags().Float64Var(&start, "start", 0, "sector start angle in degrees")
	cmd.Flags().Float64Var(&end, "end", 0, "sector end angle in degrees")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print every slot as JSON")
	return cmd
}

// tierTable summarizes slots per tier. slots must be ordered by tier.
func tierTable(slots []grid.Slot) string {
	var rows [][]string
	for i := 0; i < len(slots); {
		s := slots[i]
		n := s.SlotsInTier
		last := slots[i+n-1]
		step := 0.0
		if n > 1 {
			step = slots[i+1].Angle - s.Angle
		}
		rows = append(rows, []string{
			fmt.Sprint(s.Tier),
			fmt.Sprintf("%.0f", s.Radius),
			fmt.Sprint(n),
			fmt.Sprintf("%.1f°", step),
			fmt.Sprintf("%.1f° … %.1f°", s.Angle, last.Angle),
		})
		i += n
	}
	return renderTable([]string{"Tier", "Radius", "Slots", "Step", "Angles"}, rows, 0, 1, 2, 3)
}
