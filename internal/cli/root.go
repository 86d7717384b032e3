package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"vegalens/internal/config"
	"vegalens/internal/logging"
	"vegalens/internal/store"
)

// Version information
const (
	Version   = "0.2.0"
	BuildDate = "2026-08-01"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	History *store.SQLiteStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if cfg.History.Enabled {
		history, err := store.NewSQLiteStore(cfg.History.DBPath)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to open run history, runs will not be persisted")
		} else {
			app.History = history
			logger.Debug().Str("path", cfg.History.DBPath).Msg("Run history store opened")
		}
	}

	rootCmd := &cobra.Command{
		Use:   "vegalens",
		Short: "Vegalens - option vega scenario P&L projection CLI",
		Long: `Vegalens projects portfolio P&L across a band of spot-move scenarios.

It loads per-scenario dollar vega grids keyed by moneyness and tenor,
models the implied-volatility response to each spot move, derives vanna
and volga from neighboring scenario grids, and aggregates everything into
a vega/vanna/volga P&L attribution per scenario.

Use 'vegalens scan --sample' to try it with built-in demo grids.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("data", "", "grid data directory (default: data.dir from config)")
	rootCmd.PersistentFlags().Bool("sample", false, "use built-in sample grids instead of loading files")

	addAnalysisCommands(rootCmd, app)
	addDataCommands(rootCmd, app)
	addHistoryCommands(rootCmd, app)
	addCoreCommands(rootCmd, app)

	return rootCmd
}

func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("vegalens v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Model Parameters")
	output.Printf("  Beta:             %.2f\n", cfg.Model.Beta)
	output.Printf("  Skew Factor:      %.2f\n", cfg.Model.SkewFactor)
	output.Printf("  Term Slope:       %.2f\n", cfg.Model.TermSlope)
	output.Printf("  Reference Tenor:  %.0f days\n", cfg.Model.ReferenceTenorDays)
	output.Printf("  Volga Scalar:     %.2f\n", cfg.Model.VolgaScalar)
	output.Printf("  Reference Spot:   %.2f\n", cfg.Model.ReferenceSpot)
	output.Println()

	output.Bold("Data")
	output.Printf("  Directory:        %s\n", cfg.Data.Dir)
	output.Printf("  File Prefix:      %s\n", cfg.Data.FilePrefix)
	output.Println()

	output.Bold("History")
	output.Printf("  Enabled:          %v\n", cfg.History.Enabled)
	output.Printf("  Database:         %s\n", cfg.History.DBPath)
}
