// Package report exports computed scenario results for downstream
// consumers.
package report

import (
	"io"

	"github.com/gocarina/gocsv"

	"vegalens/internal/pnl"
)

// summaryRecord is the CSV row layout for the cross-scenario table.
type summaryRecord struct {
	Scenario   string  `csv:"scenario"`
	SpotReturn float64 `csv:"spot_return"`
	VegaPnL    float64 `csv:"vega_pnl"`
	VannaPnL   float64 `csv:"vanna_pnl"`
	VolgaPnL   float64 `csv:"volga_pnl"`
	TotalPnL   float64 `csv:"total_pnl"`
}

// WriteSummaryCSV writes the scenario summary as CSV, one row per scenario
// in the order given.
func WriteSummaryCSV(w io.Writer, rows []pnl.SummaryRow) error {
	records := make([]*summaryRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, &summaryRecord{
			Scenario:   r.Scenario,
			SpotReturn: r.SpotReturn,
			VegaPnL:    r.VegaPnL,
			VannaPnL:   r.VannaPnL,
			VolgaPnL:   r.VolgaPnL,
			TotalPnL:   r.TotalPnL,
		})
	}
	return gocsv.Marshal(records, w)
}
