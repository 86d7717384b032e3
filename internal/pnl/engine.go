// Package pnl aggregates vega, vanna and volga sensitivity grids against a
// projected delta-IV surface into scenario P&L figures.
package pnl

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"vegalens/internal/errors"
	"vegalens/internal/greeks"
	"vegalens/internal/grid"
	"vegalens/internal/ivmodel"
	"vegalens/internal/performance"
	"vegalens/internal/scenario"
)

// Engine orchestrates scenario P&L: it resolves the scenario's spot return,
// projects the delta-IV surface, derives vanna/volga through the configured
// scheme and reduces everything into the four P&L figures.
//
// The engine is stateless per call once constructed: the store is read-only
// and every calculation builds fresh surfaces, so concurrent Calculate
// calls need no coordination.
type Engine struct {
	store  *grid.Store
	set    *scenario.Set
	scheme greeks.Scheme
	logger zerolog.Logger
}

// NewEngine validates that the store covers every scenario in the set and
// returns the engine. A nil scheme defaults to the central-difference
// scheme at the default reference spot.
func NewEngine(store *grid.Store, set *scenario.Set, scheme greeks.Scheme, logger zerolog.Logger) (*Engine, error) {
	for _, name := range set.Names() {
		if !store.Has(name) {
			return nil, errors.NewGridError(name, "shape", "scenario has no vega surface in store")
		}
	}
	if scheme == nil {
		scheme = greeks.CentralDifference{}
	}
	return &Engine{
		store:  store,
		set:    set,
		scheme: scheme,
		logger: logger,
	}, nil
}

// Scenarios exposes the configured scenario names ordered by spot return.
func (e *Engine) Scenarios() []string {
	return e.set.Names()
}

// Set returns the engine's scenario set.
func (e *Engine) Set() *scenario.Set {
	return e.set
}

// Store returns the engine's vega surface store.
func (e *Engine) Store() *grid.Store {
	return e.store
}

// Calculate computes the full P&L breakdown for one scenario:
//
//	vega_pnl  = sum Vega * dIV
//	vanna_pnl = sum Vanna * spot_return * dIV
//	volga_pnl = sum 0.5 * Volga * dIV^2
//
// with total_pnl the exact sum of the three components.
func (e *Engine) Calculate(name string, params ivmodel.Params) (*Result, error) {
	spotReturn, err := e.set.Return(name)
	if err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	moneyness, tenor := e.store.Axes()
	deltaIV, err := ivmodel.ComputeDeltaIV(moneyness, tenor, spotReturn, params)
	if err != nil {
		return nil, err
	}

	vega, err := e.store.Surface(name)
	if err != nil {
		return nil, err
	}
	vanna, err := e.scheme.Vanna(e.store, e.set, name)
	if err != nil {
		return nil, errors.Wrapf(err, "deriving vanna for %s", name)
	}
	volga, err := e.scheme.Volga(e.store, e.set, name, params.VolgaScalar)
	if err != nil {
		return nil, errors.Wrapf(err, "deriving volga for %s", name)
	}
	if !vanna.SameAxes(moneyness, tenor) || !volga.SameAxes(moneyness, tenor) {
		return nil, errors.NewGridError(name, "shape", "derived greek surface axes differ from store")
	}

	rows, cols := vega.Rows(), vega.Cols()
	vegaCells := make([][]float64, rows)
	vannaCells := make([][]float64, rows)
	volgaCells := make([][]float64, rows)
	totalCells := make([][]float64, rows)

	var vegaSum, vannaSum, volgaSum kahanSum
	byTenor := make([]struct{ vega, vanna, volga kahanSum }, cols)
	byMoney := make([]struct{ vega, vanna, volga kahanSum }, rows)

	for i := 0; i < rows; i++ {
		vegaRow := make([]float64, cols)
		vannaRow := make([]float64, cols)
		volgaRow := make([]float64, cols)
		totalRow := make([]float64, cols)
		for j := 0; j < cols; j++ {
			div := deltaIV.At(i, j)
			vegaPnL := vega.At(i, j) * div
			vannaPnL := vanna.At(i, j) * spotReturn * div
			volgaPnL := 0.5 * volga.At(i, j) * div * div

			vegaRow[j] = vegaPnL
			vannaRow[j] = vannaPnL
			volgaRow[j] = volgaPnL
			totalRow[j] = vegaPnL + vannaPnL + volgaPnL

			vegaSum.Add(vegaPnL)
			vannaSum.Add(vannaPnL)
			volgaSum.Add(volgaPnL)
			byTenor[j].vega.Add(vegaPnL)
			byTenor[j].vanna.Add(vannaPnL)
			byTenor[j].volga.Add(volgaPnL)
			byMoney[i].vega.Add(vegaPnL)
			byMoney[i].vanna.Add(vannaPnL)
			byMoney[i].volga.Add(volgaPnL)
		}
		vegaCells[i] = vegaRow
		vannaCells[i] = vannaRow
		volgaCells[i] = volgaRow
		totalCells[i] = totalRow
	}

	result := &Result{
		Scenario:   name,
		SpotReturn: spotReturn,
		VegaPnL:    vegaSum.Value(),
		VannaPnL:   vannaSum.Value(),
		VolgaPnL:   volgaSum.Value(),
		DeltaIV:    deltaIV,
	}
	result.TotalPnL = result.VegaPnL + result.VannaPnL + result.VolgaPnL

	result.VegaGrid, _ = grid.NewSurfaceOnAxes(moneyness, tenor, vegaCells)
	result.VannaGrid, _ = grid.NewSurfaceOnAxes(moneyness, tenor, vannaCells)
	result.VolgaGrid, _ = grid.NewSurfaceOnAxes(moneyness, tenor, volgaCells)
	result.TotalGrid, _ = grid.NewSurfaceOnAxes(moneyness, tenor, totalCells)

	result.ByTenor = make([]Marginal, cols)
	for j := range byTenor {
		m := Marginal{
			Coord:    tenor[j],
			VegaPnL:  byTenor[j].vega.Value(),
			VannaPnL: byTenor[j].vanna.Value(),
			VolgaPnL: byTenor[j].volga.Value(),
		}
		m.TotalPnL = m.VegaPnL + m.VannaPnL + m.VolgaPnL
		result.ByTenor[j] = m
	}
	result.ByMoneyness = make([]Marginal, rows)
	for i := range byMoney {
		m := Marginal{
			Coord:    moneyness[i],
			VegaPnL:  byMoney[i].vega.Value(),
			VannaPnL: byMoney[i].vanna.Value(),
			VolgaPnL: byMoney[i].volga.Value(),
		}
		m.TotalPnL = m.VegaPnL + m.VannaPnL + m.VolgaPnL
		result.ByMoneyness[i] = m
	}

	e.logger.Debug().
		Str("scenario", name).
		Float64("spot_return", spotReturn).
		Str("scheme", e.scheme.Name()).
		Float64("total_pnl", result.TotalPnL).
		Msg("Scenario P&L computed")

	return result, nil
}

// CalculateAll evaluates every configured scenario. Evaluations run in
// parallel across a worker pool; surfaces are immutable so no coordination
// is needed beyond collecting results.
func (e *Engine) CalculateAll(params ivmodel.Params) (map[string]*Result, error) {
	names := e.set.Names()

	pool := performance.NewWorkerPool(0)
	pool.Start()
	defer pool.Stop()

	results := make(map[string]*Result, len(names))
	errs := make(map[string]error)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range names {
		name := name
		wg.Add(1)
		task := func() {
			defer wg.Done()
			res, err := e.Calculate(name, params)
			mu.Lock()
			if err != nil {
				errs[name] = err
			} else {
				results[name] = res
			}
			mu.Unlock()
		}
		if !pool.Submit(task) {
			task()
		}
	}
	wg.Wait()

	if len(errs) > 0 {
		// Report the first failure in scenario order; partial results are
		// never returned silently.
		failed := make([]string, 0, len(errs))
		for name := range errs {
			failed = append(failed, name)
		}
		sort.Strings(failed)
		return nil, errors.Wrapf(errs[failed[0]], "calculating scenario %s", failed[0])
	}
	return results, nil
}

// Summary computes P&L for every scenario and returns one row per
// scenario, sorted by spot return.
func (e *Engine) Summary(params ivmodel.Params) ([]SummaryRow, error) {
	results, err := e.CalculateAll(params)
	if err != nil {
		return nil, err
	}
	names := e.set.Names()
	rows := make([]SummaryRow, 0, len(names))
	for _, name := range names {
		r := results[name]
		rows = append(rows, SummaryRow{
			Scenario:   name,
			Label:      e.set.Label(name),
			SpotReturn: r.SpotReturn,
			VegaPnL:    r.VegaPnL,
			VannaPnL:   r.VannaPnL,
			VolgaPnL:   r.VolgaPnL,
			TotalPnL:   r.TotalPnL,
		})
	}
	return rows, nil
}
