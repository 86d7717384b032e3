package pnl

import "vegalens/internal/grid"

// Marginal is the P&L contribution of one axis slice (one tenor column or
// one moneyness row).
type Marginal struct {
	Coord    float64 `json:"coord"`
	VegaPnL  float64 `json:"vega_pnl"`
	VannaPnL float64 `json:"vanna_pnl"`
	VolgaPnL float64 `json:"volga_pnl"`
	TotalPnL float64 `json:"total_pnl"`
}

// Result is the computed P&L breakdown for one scenario. Instances are
// created fresh per query and carry no shared mutable state.
type Result struct {
	Scenario   string  `json:"scenario"`
	SpotReturn float64 `json:"spot_return"`

	VegaPnL  float64 `json:"vega_pnl"`
	VannaPnL float64 `json:"vanna_pnl"`
	VolgaPnL float64 `json:"volga_pnl"`
	// TotalPnL is the exact sum of the three components, by construction.
	TotalPnL float64 `json:"total_pnl"`

	// Per-cell contributions and the delta-IV surface they were built from.
	VegaGrid  *grid.Surface `json:"-"`
	VannaGrid *grid.Surface `json:"-"`
	VolgaGrid *grid.Surface `json:"-"`
	TotalGrid *grid.Surface `json:"-"`
	DeltaIV   *grid.Surface `json:"-"`

	// Marginal totals along each axis.
	ByTenor     []Marginal `json:"by_tenor,omitempty"`
	ByMoneyness []Marginal `json:"by_moneyness,omitempty"`
}

// SummaryRow is one line of the cross-scenario P&L table.
type SummaryRow struct {
	Scenario   string  `json:"scenario"`
	Label      string  `json:"label"`
	SpotReturn float64 `json:"spot_return"`
	VegaPnL    float64 `json:"vega_pnl"`
	VannaPnL   float64 `json:"vanna_pnl"`
	VolgaPnL   float64 `json:"volga_pnl"`
	TotalPnL   float64 `json:"total_pnl"`
}
