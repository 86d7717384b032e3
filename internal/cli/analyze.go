package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vegalens/internal/greeks"
	"vegalens/internal/grid"
	"vegalens/internal/ivmodel"
	"vegalens/internal/loader"
	"vegalens/internal/pnl"
	"vegalens/internal/report"
	"vegalens/internal/scenario"
	"vegalens/pkg/utils"
)

func addAnalysisCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newPnLCmd(app))
	rootCmd.AddCommand(newDeltaIVCmd(app))
	rootCmd.AddCommand(newGreeksCmd(app))
	rootCmd.AddCommand(newScenariosCmd(app))
}

// addModelFlags registers the per-run model parameter overrides.
func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("beta", 0, "spot/vol beta (vol points per 1% spot move)")
	cmd.Flags().Float64("skew", 0, "skew factor (0 = parallel shift)")
	cmd.Flags().Float64("term-slope", 0, "term structure slope")
	cmd.Flags().Float64("ref-tenor", 0, "reference tenor in days")
	cmd.Flags().Float64("volga-scalar", 0, "volga sensitivity multiplier")
	cmd.Flags().Float64("spot", 0, "reference spot level")
	cmd.Flags().String("scheme", "central", "greeks scheme: central, wing or analytic")
	cmd.Flags().Float64("vol", 0.2, "flat volatility for the analytic scheme")
	cmd.Flags().Float64("rate", 0.0, "risk-free rate for the analytic scheme")
}

// paramsFromFlags builds the model parameters for a run: config defaults
// overridden by any flags the caller set.
func paramsFromFlags(cmd *cobra.Command, app *App) ivmodel.Params {
	params := app.Config.Params()
	if cmd.Flags().Changed("beta") {
		params.Beta, _ = cmd.Flags().GetFloat64("beta")
	}
	if cmd.Flags().Changed("skew") {
		params.SkewFactor, _ = cmd.Flags().GetFloat64("skew")
	}
	if cmd.Flags().Changed("term-slope") {
		params.TermSlope, _ = cmd.Flags().GetFloat64("term-slope")
	}
	if cmd.Flags().Changed("ref-tenor") {
		params.ReferenceTenor, _ = cmd.Flags().GetFloat64("ref-tenor")
	}
	if cmd.Flags().Changed("volga-scalar") {
		params.VolgaScalar, _ = cmd.Flags().GetFloat64("volga-scalar")
	}
	return params
}

// schemeFromFlags resolves the greeks derivation strategy for a run.
func schemeFromFlags(cmd *cobra.Command, app *App) (greeks.Scheme, error) {
	spot := app.Config.Model.ReferenceSpot
	if cmd.Flags().Changed("spot") {
		spot, _ = cmd.Flags().GetFloat64("spot")
	}
	name, _ := cmd.Flags().GetString("scheme")
	switch name {
	case "", "central":
		return greeks.CentralDifference{ReferenceSpot: spot}, nil
	case "wing":
		return greeks.WingProxy{Central: greeks.CentralDifference{ReferenceSpot: spot}}, nil
	case "analytic":
		vol, _ := cmd.Flags().GetFloat64("vol")
		rate, _ := cmd.Flags().GetFloat64("rate")
		return greeks.Analytic{Spot: spot, Rate: rate, Vol: vol}, nil
	}
	return nil, fmt.Errorf("unknown greeks scheme %q (want central, wing or analytic)", name)
}

// loadEngine builds the P&L engine from flags: sample grids or a data
// directory of per-scenario CSVs.
func (app *App) loadEngine(cmd *cobra.Command) (*pnl.Engine, error) {
	set := scenario.DefaultSet()

	sample, _ := cmd.Flags().GetBool("sample")
	dataDir, _ := cmd.Flags().GetString("data")
	if dataDir == "" {
		dataDir = app.Config.Data.Dir
	}

	var st *grid.Store
	var err error
	switch {
	case sample:
		st, err = loader.SampleStore(set)
	case dataDir != "":
		st, err = loader.Load(dataDir, app.Config.Data.FilePrefix, set, time.Now())
	default:
		return nil, fmt.Errorf("no grid data configured; pass --data <dir> or --sample")
	}
	if err != nil {
		return nil, err
	}

	scheme, err := schemeFromFlags(cmd, app)
	if err != nil {
		return nil, err
	}
	return pnl.NewEngine(st, set, scheme, app.Logger)
}

func newScanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Project P&L across the full scenario band",
		Long: `Scan computes the vega/vanna/volga P&L attribution for every
configured spot scenario and prints the band as a table.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			engine, err := app.loadEngine(cmd)
			if err != nil {
				return err
			}
			params := paramsFromFlags(cmd, app)

			started := time.Now()
			rows, err := engine.Summary(params)
			if err != nil {
				return err
			}
			app.Logger.Info().
				Int("scenarios", len(rows)).
				Dur("duration", time.Since(started)).
				Msg("Scenario scan completed")

			if app.History != nil {
				if id, err := app.History.SaveRun(cmd.Context(), params, rows); err != nil {
					app.Logger.Warn().Err(err).Msg("Failed to persist run")
				} else {
					app.Logger.Debug().Int64("run_id", id).Msg("Run persisted")
				}
			}

			if csvPath, _ := cmd.Flags().GetString("csv"); csvPath != "" {
				f, err := os.Create(csvPath)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := report.WriteSummaryCSV(f, rows); err != nil {
					return err
				}
				output.Info("Summary written to %s", csvPath)
			}

			if output.IsJSON() {
				return output.JSON(rows)
			}
			renderScan(output, rows)
			return nil
		},
	}
	addModelFlags(cmd)
	cmd.Flags().String("csv", "", "also write the summary to a CSV file")
	return cmd
}

func renderScan(output *Output, rows []pnl.SummaryRow) {
	output.Bold("Scenario P&L Projection")
	output.Println()

	table := NewTable(output, "Scenario", "Move", "Vega P&L", "Vanna P&L", "Volga P&L", "Total P&L")
	for _, r := range rows {
		table.AddRow(
			r.Scenario,
			r.Label,
			output.FormatPnL(r.VegaPnL),
			output.FormatPnL(r.VannaPnL),
			output.FormatPnL(r.VolgaPnL),
			output.FormatPnL(r.TotalPnL),
		)
	}
	table.Render()

	output.Println()
	renderBand(output, rows)
}

// renderBand draws a signed bar per scenario so the band's shape is
// visible at a glance.
func renderBand(output *Output, rows []pnl.SummaryRow) {
	maxAbs := 0.0
	for _, r := range rows {
		if a := abs(r.TotalPnL); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs == 0 {
		return
	}

	gain := color.New(color.FgGreen)
	loss := color.New(color.FgRed)
	const barWidth = 28
	for _, r := range rows {
		n := int(abs(r.TotalPnL) / maxAbs * barWidth)
		bar := strings.Repeat("█", n)
		if r.TotalPnL >= 0 {
			bar = gain.Sprint(bar)
		} else {
			bar = loss.Sprint(bar)
		}
		output.Printf("  %-6s %s %s\n", r.Label, bar, utils.FormatCompact(r.TotalPnL))
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func newPnLCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pnl <scenario>",
		Short: "Full P&L breakdown for one scenario",
		Long: `PnL computes the vega, vanna and volga P&L for a single scenario and
shows how it distributes across tenors and moneyness levels.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			engine, err := app.loadEngine(cmd)
			if err != nil {
				return err
			}
			params := paramsFromFlags(cmd, app)

			result, err := engine.Calculate(args[0], params)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}
			renderResult(output, engine.Set(), result)
			return nil
		},
	}
	addModelFlags(cmd)
	return cmd
}

func renderResult(output *Output, set *scenario.Set, r *pnl.Result) {
	output.Bold("Scenario %s (%s)", r.Scenario, set.Label(r.Scenario))
	output.Println()
	output.Printf("  Vega P&L:   %s\n", output.FormatPnL(r.VegaPnL))
	output.Printf("  Vanna P&L:  %s\n", output.FormatPnL(r.VannaPnL))
	output.Printf("  Volga P&L:  %s\n", output.FormatPnL(r.VolgaPnL))
	output.Printf("  Total P&L:  %s\n", output.FormatPnL(r.TotalPnL))
	output.Println()

	output.Bold("By Tenor")
	tenorTable := NewTable(output, "Days", "Vega P&L", "Vanna P&L", "Volga P&L", "Total P&L")
	for _, m := range r.ByTenor {
		tenorTable.AddRow(
			fmt.Sprintf("%.0f", m.Coord),
			output.FormatPnL(m.VegaPnL),
			output.FormatPnL(m.VannaPnL),
			output.FormatPnL(m.VolgaPnL),
			output.FormatPnL(m.TotalPnL),
		)
	}
	tenorTable.Render()
	output.Println()

	output.Bold("By Moneyness")
	moneyTable := NewTable(output, "K/S", "Vega P&L", "Vanna P&L", "Volga P&L", "Total P&L")
	for _, m := range r.ByMoneyness {
		moneyTable.AddRow(
			fmt.Sprintf("%.2f", m.Coord),
			output.FormatPnL(m.VegaPnL),
			output.FormatPnL(m.VannaPnL),
			output.FormatPnL(m.VolgaPnL),
			output.FormatPnL(m.TotalPnL),
		)
	}
	moneyTable.Render()
}

func newDeltaIVCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deltaiv <scenario>",
		Short: "Projected IV change surface for one scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			engine, err := app.loadEngine(cmd)
			if err != nil {
				return err
			}
			params := paramsFromFlags(cmd, app)

			set := engine.Set()
			spotReturn, err := set.Return(args[0])
			if err != nil {
				return err
			}
			moneyness, tenor := engine.Store().Axes()
			surface, err := ivmodel.ComputeDeltaIV(moneyness, tenor, spotReturn, params)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"scenario":    args[0],
					"spot_return": spotReturn,
					"moneyness":   surface.Moneyness().Values(),
					"tenor":       surface.Tenor().Values(),
					"delta_iv":    surface.Cells(),
				})
			}

			output.Bold("ΔIV surface for %s (%s), vol points", args[0], set.Label(args[0]))
			output.Println()
			renderSurface(output, surface, "%.3f")
			return nil
		},
	}
	addModelFlags(cmd)
	return cmd
}

func newGreeksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "greeks <scenario>",
		Short: "Derived vanna and volga surfaces for one scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			engine, err := app.loadEngine(cmd)
			if err != nil {
				return err
			}
			params := paramsFromFlags(cmd, app)
			scheme, err := schemeFromFlags(cmd, app)
			if err != nil {
				return err
			}

			vanna, err := scheme.Vanna(engine.Store(), engine.Set(), args[0])
			if err != nil {
				return err
			}
			volga, err := scheme.Volga(engine.Store(), engine.Set(), args[0], params.VolgaScalar)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"scenario":  args[0],
					"scheme":    scheme.Name(),
					"moneyness": vanna.Moneyness().Values(),
					"tenor":     vanna.Tenor().Values(),
					"vanna":     vanna.Cells(),
					"volga":     volga.Cells(),
				})
			}

			output.Bold("Vanna surface (%s scheme)", scheme.Name())
			output.Println()
			renderSurface(output, vanna, "%.2f")
			output.Println()
			output.Bold("Volga surface (%s scheme)", scheme.Name())
			output.Println()
			renderSurface(output, volga, "%.2f")
			return nil
		},
	}
	addModelFlags(cmd)
	return cmd
}

// renderSurface prints a surface as a table with moneyness rows and tenor
// columns.
func renderSurface(output *Output, s *grid.Surface, cellFormat string) {
	headers := []string{"K/S"}
	for _, t := range s.Tenor() {
		headers = append(headers, fmt.Sprintf("%.0fd", t))
	}
	table := NewTable(output, headers...)
	for i, m := range s.Moneyness() {
		row := []string{fmt.Sprintf("%.2f", m)}
		for j := range s.Tenor() {
			row = append(row, fmt.Sprintf(cellFormat, s.At(i, j)))
		}
		table.AddRow(row...)
	}
	table.Render()
}

func newScenariosCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the configured spot scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			set := scenario.DefaultSet()

			if output.IsJSON() {
				return output.JSON(set.Returns())
			}

			table := NewTable(output, "Scenario", "Spot Return", "Label")
			for _, name := range set.Names() {
				r, _ := set.Return(name)
				table.AddRow(name, fmt.Sprintf("%+.3f", r), set.Label(name))
			}
			table.Render()
			return nil
		},
	}
}
