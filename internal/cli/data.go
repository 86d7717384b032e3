package cli

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"vegalens/internal/grid"
	"vegalens/internal/loader"
	"vegalens/internal/scenario"
)

func addDataCommands(rootCmd *cobra.Command, app *App) {
	dataCmd := &cobra.Command{
		Use:   "data",
		Short: "Grid data management",
		Long:  "Inspect the vega grid data the analysis commands run on.",
	}
	dataCmd.AddCommand(newDataInfoCmd(app))
	rootCmd.AddCommand(dataCmd)
}

func newDataInfoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Summarize the loaded vega grids",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			set := scenario.DefaultSet()
			sample, _ := cmd.Flags().GetBool("sample")
			dataDir, _ := cmd.Flags().GetString("data")
			if dataDir == "" {
				dataDir = app.Config.Data.Dir
			}

			var st *grid.Store
			var err error
			source := dataDir
			if sample {
				st, err = loader.SampleStore(set)
				source = "built-in sample grids"
			} else {
				st, err = loader.Load(dataDir, app.Config.Data.FilePrefix, set, time.Now())
			}
			if err != nil {
				return err
			}

			moneyness, tenor := st.Axes()

			if output.IsJSON() {
				summaries := make([]map[string]interface{}, 0, len(st.Scenarios()))
				for _, name := range st.Scenarios() {
					s, _ := st.Surface(name)
					total, min, max := surfaceStats(s)
					summaries = append(summaries, map[string]interface{}{
						"scenario":   name,
						"total_vega": total,
						"min_vega":   min,
						"max_vega":   max,
					})
				}
				return output.JSON(map[string]interface{}{
					"source":    source,
					"moneyness": moneyness.Values(),
					"tenor":     tenor.Values(),
					"scenarios": summaries,
				})
			}

			output.Bold("Grid Data")
			output.Printf("  Source:     %s\n", source)
			output.Printf("  Moneyness:  %d levels, %.2f to %.2f\n", len(moneyness), moneyness[0], moneyness[len(moneyness)-1])
			output.Printf("  Tenor:      %d buckets, %.0f to %.0f days\n", len(tenor), tenor[0], tenor[len(tenor)-1])
			output.Println()

			table := NewTable(output, "Scenario", "Total Vega", "Min Cell", "Max Cell")
			for _, name := range st.Scenarios() {
				s, _ := st.Surface(name)
				total, min, max := surfaceStats(s)
				table.AddRow(name,
					fmt.Sprintf("%.0f", total),
					fmt.Sprintf("%.0f", min),
					fmt.Sprintf("%.0f", max))
			}
			table.Render()
			return nil
		},
	}
}

// surfaceStats reduces one surface to its total and cell range.
func surfaceStats(s *grid.Surface) (total, min, max float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for i := 0; i < s.Rows(); i++ {
		for j := 0; j < s.Cols(); j++ {
			v := s.At(i, j)
			total += v
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	return total, min, max
}
