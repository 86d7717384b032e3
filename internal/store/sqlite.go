// Package store provides persistence for analysis runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"vegalens/internal/errors"
	"vegalens/internal/ivmodel"
	"vegalens/internal/pnl"
)

// Run is one persisted analysis: a parameter set and the scenario results
// it produced.
type Run struct {
	ID        int64            `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Params    ivmodel.Params   `json:"params"`
	Rows      []pnl.SummaryRow `json:"rows,omitempty"`
}

// SQLiteStore persists analysis runs in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the run history database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Analysis runs: one row per invocation with its parameter set
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME NOT NULL,
		beta REAL NOT NULL,
		skew_factor REAL NOT NULL,
		term_slope REAL NOT NULL,
		reference_tenor REAL NOT NULL,
		volga_scalar REAL NOT NULL
	);

	-- Per-scenario P&L rows belonging to a run
	CREATE TABLE IF NOT EXISTS run_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		scenario TEXT NOT NULL,
		spot_return REAL NOT NULL,
		vega_pnl REAL NOT NULL,
		vanna_pnl REAL NOT NULL,
		volga_pnl REAL NOT NULL,
		total_pnl REAL NOT NULL,
		UNIQUE(run_id, scenario),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_run_results_run ON run_results(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun persists one analysis run and its scenario rows, returning the
// run ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, params ivmodel.Params, rows []pnl.SummaryRow) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "starting transaction")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created_at, beta, skew_factor, term_slope, reference_tenor, volga_scalar)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().UTC(), params.Beta, params.SkewFactor, params.TermSlope, params.ReferenceTenor, params.VolgaScalar)
	if err != nil {
		return 0, errors.Wrap(err, "inserting run")
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "resolving run id")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_results (run_id, scenario, spot_return, vega_pnl, vanna_pnl, volga_pnl, total_pnl)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, errors.Wrap(err, "preparing result insert")
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, runID, r.Scenario, r.SpotReturn, r.VegaPnL, r.VannaPnL, r.VolgaPnL, r.TotalPnL); err != nil {
			return 0, errors.Wrapf(err, "inserting result for %s", r.Scenario)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "committing run")
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first, without their
// scenario rows.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, beta, skew_factor, term_slope, reference_tenor, volga_scalar
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Params.Beta, &r.Params.SkewFactor,
			&r.Params.TermSlope, &r.Params.ReferenceTenor, &r.Params.VolgaScalar); err != nil {
			return nil, errors.Wrap(err, "scanning run")
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun loads one run with its scenario rows ordered by spot return.
func (s *SQLiteStore) GetRun(ctx context.Context, id int64) (*Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, beta, skew_factor, term_slope, reference_tenor, volga_scalar
		 FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.CreatedAt, &r.Params.Beta, &r.Params.SkewFactor,
			&r.Params.TermSlope, &r.Params.ReferenceTenor, &r.Params.VolgaScalar)
	if err == sql.ErrNoRows {
		return nil, errors.NewDataError(fmt.Sprintf("run %d", id), "run not found", errors.ErrDataNotFound)
	}
	if err != nil {
		return nil, errors.Wrap(err, "querying run")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT scenario, spot_return, vega_pnl, vanna_pnl, volga_pnl, total_pnl
		 FROM run_results WHERE run_id = ? ORDER BY spot_return`, id)
	if err != nil {
		return nil, errors.Wrap(err, "querying run results")
	}
	defer rows.Close()

	for rows.Next() {
		var row pnl.SummaryRow
		if err := rows.Scan(&row.Scenario, &row.SpotReturn, &row.VegaPnL, &row.VannaPnL, &row.VolgaPnL, &row.TotalPnL); err != nil {
			return nil, errors.Wrap(err, "scanning run result")
		}
		r.Rows = append(r.Rows, row)
	}
	return &r, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
