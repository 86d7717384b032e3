package report

import (
	"strings"
	"testing"

	"vegalens/internal/pnl"
)

func TestWriteSummaryCSV(t *testing.T) {
	rows := []pnl.SummaryRow{
		{Scenario: "down_25", Label: "-2.5%", SpotReturn: -0.025, VegaPnL: 500.5, VannaPnL: -20, VolgaPnL: 3.25, TotalPnL: 483.75},
		{Scenario: "atm", Label: "ATM", SpotReturn: 0, VegaPnL: 0, VannaPnL: 0, VolgaPnL: 0, TotalPnL: 0},
	}

	var sb strings.Builder
	if err := WriteSummaryCSV(&sb, rows); err != nil {
		t.Fatalf("WriteSummaryCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows:\n%s", len(lines), sb.String())
	}
	if lines[0] != "scenario,spot_return,vega_pnl,vanna_pnl,volga_pnl,total_pnl" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "down_25,-0.025,500.5,") {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestWriteSummaryCSVEmpty(t *testing.T) {
	var sb strings.Builder
	if err := WriteSummaryCSV(&sb, nil); err != nil {
		t.Fatalf("WriteSummaryCSV failed on empty input: %v", err)
	}
	if !strings.Contains(sb.String(), "scenario") {
		t.Errorf("empty export missing header: %q", sb.String())
	}
}
