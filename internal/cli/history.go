package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func addHistoryCommands(rootCmd *cobra.Command, app *App) {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse persisted analysis runs",
	}
	historyCmd.AddCommand(newHistoryListCmd(app))
	historyCmd.AddCommand(newHistoryShowCmd(app))
	rootCmd.AddCommand(historyCmd)
}

func newHistoryListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.History == nil {
				return fmt.Errorf("run history is disabled; enable it in config.toml")
			}

			limit, _ := cmd.Flags().GetInt("limit")
			runs, err := app.History.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(runs)
			}

			if len(runs) == 0 {
				output.Info("No runs recorded yet")
				return nil
			}

			table := NewTable(output, "ID", "Created", "Beta", "Skew", "Term Slope", "Ref Tenor", "Volga Scalar")
			for _, r := range runs {
				table.AddRow(
					strconv.FormatInt(r.ID, 10),
					r.CreatedAt.Format("2006-01-02 15:04"),
					fmt.Sprintf("%.2f", r.Params.Beta),
					fmt.Sprintf("%.2f", r.Params.SkewFactor),
					fmt.Sprintf("%.2f", r.Params.TermSlope),
					fmt.Sprintf("%.0f", r.Params.ReferenceTenor),
					fmt.Sprintf("%.2f", r.Params.VolgaScalar),
				)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "maximum number of runs to list")
	return cmd
}

func newHistoryShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run with its scenario rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.History == nil {
				return fmt.Errorf("run history is disabled; enable it in config.toml")
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run id %q", args[0])
			}

			run, err := app.History.GetRun(cmd.Context(), id)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(run)
			}

			output.Bold("Run %d (%s)", run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"))
			output.Printf("  Beta: %.2f  Skew: %.2f  Term Slope: %.2f  Ref Tenor: %.0fd  Volga Scalar: %.2f\n",
				run.Params.Beta, run.Params.SkewFactor, run.Params.TermSlope,
				run.Params.ReferenceTenor, run.Params.VolgaScalar)
			output.Println()

			table := NewTable(output, "Scenario", "Spot Return", "Vega P&L", "Vanna P&L", "Volga P&L", "Total P&L")
			for _, row := range run.Rows {
				table.AddRow(
					row.Scenario,
					fmt.Sprintf("%+.3f", row.SpotReturn),
					output.FormatPnL(row.VegaPnL),
					output.FormatPnL(row.VannaPnL),
					output.FormatPnL(row.VolgaPnL),
					output.FormatPnL(row.TotalPnL),
				)
			}
			table.Render()
			return nil
		},
	}
}
