package store

import (
	"context"
	"path/filepath"
	"testing"

	apperrors "vegalens/internal/errors"
	"vegalens/internal/ivmodel"
	"vegalens/internal/pnl"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRows() []pnl.SummaryRow {
	return []pnl.SummaryRow{
		{Scenario: "down_50", Label: "-5.0%", SpotReturn: -0.05, VegaPnL: 1200.5, VannaPnL: -80.25, VolgaPnL: 15.75, TotalPnL: 1136.0},
		{Scenario: "atm", Label: "ATM", SpotReturn: 0, VegaPnL: 0, VannaPnL: 0, VolgaPnL: 0, TotalPnL: 0},
		{Scenario: "up_50", Label: "+5.0%", SpotReturn: 0.05, VegaPnL: -900, VannaPnL: -60, VolgaPnL: 10, TotalPnL: -950},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	params := ivmodel.DefaultParams()

	id, err := s.SaveRun(ctx, params, testRows())
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if id <= 0 {
		t.Fatalf("run id = %d, want positive", id)
	}

	run, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Params.Beta != params.Beta || run.Params.ReferenceTenor != params.ReferenceTenor {
		t.Errorf("params round trip mismatch: %+v", run.Params)
	}
	if len(run.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(run.Rows))
	}
	// Rows come back ordered by spot return.
	if run.Rows[0].Scenario != "down_50" || run.Rows[2].Scenario != "up_50" {
		t.Errorf("row order = %s..%s, want down_50..up_50", run.Rows[0].Scenario, run.Rows[2].Scenario)
	}
	if run.Rows[0].VegaPnL != 1200.5 {
		t.Errorf("vega P&L = %v, want 1200.5", run.Rows[0].VegaPnL)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first, err := s.SaveRun(ctx, ivmodel.DefaultParams(), testRows())
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	params := ivmodel.DefaultParams()
	params.Beta = -4.0
	second, err := s.SaveRun(ctx, params, testRows())
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != second || runs[1].ID != first {
		t.Errorf("run order = %d, %d, want %d, %d", runs[0].ID, runs[1].ID, second, first)
	}
	if runs[0].Params.Beta != -4.0 {
		t.Errorf("listed beta = %v, want -4.0", runs[0].Params.Beta)
	}
	if len(runs[0].Rows) != 0 {
		t.Errorf("ListRuns returned %d rows, want none", len(runs[0].Rows))
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.GetRun(context.Background(), 9999)
	if !apperrors.Is(err, apperrors.ErrDataNotFound) {
		t.Errorf("GetRun error = %v, want ErrDataNotFound", err)
	}
}
