package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# vegalens configuration

[model]
# ATM vol sensitivity to spot moves, in vol points per 1% move.
# Typical SPX: -2 to -5.
beta = -3.0
# Skew dynamics multiplier: 0 = parallel shift, >0 = steepens on selloffs.
skew_factor = 1.0
# Term structure response: >1 = front-month moves more, <1 = flatter.
term_slope = 1.0
# Tenor (days) at which the term adjustment equals 1.
reference_tenor_days = 30.0
# Volga sensitivity multiplier. Typical 0.3 to 0.7.
volga_scalar = 0.5
# Spot level used to translate fractional returns to absolute moves.
reference_spot = 100.0

[data]
# Directory holding one vega grid CSV per scenario
# (<file_prefix>_<scenario>.csv, e.g. SPX_down_75.csv).
dir = ""
file_prefix = "SPX"

[history]
# Persist each run's scenario summary to a local SQLite database.
enabled = true
# db_path = "~/.config/vegalens/vegalens.db"

[ui]
# Enable colored output
color_enabled = true
`

// createTemplateConfig writes the default config template so a first run
// leaves an editable file behind.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil // already exists
	}
	return os.WriteFile(path, []byte(configTemplate), 0644)
}
