package greeks

import (
	"vegalens/internal/errors"
	"vegalens/internal/grid"
	"vegalens/internal/scenario"
)

// Supplied serves precomputed vanna/volga grids delivered by an external
// loader instead of deriving them. Grids are validated against the store's
// axes on access so a misaligned surface can never reach the P&L engine.
// The volga scalar is not applied: supplied grids are taken as final.
type Supplied struct {
	VannaGrids map[string]*grid.Surface
	VolgaGrids map[string]*grid.Surface
}

// Name identifies the scheme.
func (Supplied) Name() string { return "supplied" }

func (s Supplied) lookup(store *grid.Store, set *scenario.Set, grids map[string]*grid.Surface, name, kind string) (*grid.Surface, error) {
	if !set.Has(name) {
		return nil, errors.NewUnknownScenario(name, kind)
	}
	g, ok := grids[name]
	if !ok {
		return nil, errors.NewDataError(name, "no supplied "+kind+" grid for scenario", errors.ErrDataNotFound)
	}
	moneyness, tenor := store.Axes()
	if !g.SameAxes(moneyness, tenor) {
		return nil, errors.NewGridError(name, kind, "supplied grid axes differ from vega store")
	}
	return g, nil
}

// Vanna returns the supplied vanna grid for the scenario.
func (s Supplied) Vanna(store *grid.Store, set *scenario.Set, name string) (*grid.Surface, error) {
	return s.lookup(store, set, s.VannaGrids, name, "vanna")
}

// Volga returns the supplied volga grid for the scenario.
func (s Supplied) Volga(store *grid.Store, set *scenario.Set, name string, _ float64) (*grid.Surface, error) {
	return s.lookup(store, set, s.VolgaGrids, name, "volga")
}
