package greeks

import (
	"vegalens/internal/grid"
	"vegalens/internal/scenario"
)

// WingProxy replaces the volga derivation with the moneyness wing proxy:
//
//	volga(m, t) = vega_atm(m, t) * (m - 1)^2 * scalar
//
// Volga is highest for far-OTM wings and near zero at the money, which
// this captures directly from the baseline vega surface without needing a
// scenario bracket. Vanna still comes from the central difference. Kept
// selectable because existing P&L calibrations were produced against it.
type WingProxy struct {
	Central CentralDifference
}

// Name identifies the scheme.
func (WingProxy) Name() string { return "wing" }

// Vanna delegates to the central-difference estimate.
func (w WingProxy) Vanna(store *grid.Store, set *scenario.Set, name string) (*grid.Surface, error) {
	return w.Central.Vanna(store, set, name)
}

// Volga applies the wing factor to the baseline vega surface.
func (w WingProxy) Volga(store *grid.Store, set *scenario.Set, name string, volgaScalar float64) (*grid.Surface, error) {
	if !set.Has(name) {
		_, err := set.Return(name)
		return nil, err
	}
	base, err := store.Surface(set.Baseline())
	if err != nil {
		return nil, err
	}
	return base.Map(func(m, _, vega float64) float64 {
		wing := (m - 1) * (m - 1)
		return vega * wing * volgaScalar
	}), nil
}
