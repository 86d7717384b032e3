package greeks

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"vegalens/internal/errors"
	"vegalens/internal/grid"
	"vegalens/internal/scenario"
)

// Analytic computes closed-form Black-Scholes vanna and volga per cell,
// reading only the store's coordinate axes: strike is moneyness times
// spot, tenor is converted from days to a year fraction.
//
//	vanna = -phi(d1) * d2 / sigma
//	volga = vega * d1 * d2 / sigma,  vega = S * phi(d1) * sqrt(T)
//
// Unlike the finite-difference schemes these are exact unit Greeks, so the
// volga scalar is not applied.
type Analytic struct {
	Spot float64 // underlying spot level
	Rate float64 // continuously compounded risk-free rate
	Vol  float64 // flat volatility used for the closed forms
}

// Name identifies the scheme.
func (Analytic) Name() string { return "analytic" }

func (a Analytic) validate(set *scenario.Set, name string) error {
	if !set.Has(name) {
		return errors.NewUnknownScenario(name, "analytic greeks")
	}
	if a.Spot <= 0 {
		return errors.NewParameterError("spot", a.Spot, "must be positive")
	}
	if a.Vol <= 0 {
		return errors.NewParameterError("vol", a.Vol, "must be positive")
	}
	return nil
}

// d1d2 returns the Black-Scholes d1/d2 terms for one cell.
func (a Analytic) d1d2(m, tenorDays float64) (d1, d2, sqrtT float64) {
	t := tenorDays / 365.0
	sqrtT = math.Sqrt(t)
	d1 = (-math.Log(m) + (a.Rate+a.Vol*a.Vol/2)*t) / (a.Vol * sqrtT)
	d2 = d1 - a.Vol*sqrtT
	return d1, d2, sqrtT
}

// Vanna evaluates the closed-form vanna over the store's axes.
func (a Analytic) Vanna(store *grid.Store, set *scenario.Set, name string) (*grid.Surface, error) {
	if err := a.validate(set, name); err != nil {
		return nil, err
	}
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	moneyness, tenor := store.Axes()
	return grid.Zero(moneyness, tenor).Map(func(m, t, _ float64) float64 {
		d1, d2, _ := a.d1d2(m, t)
		return -norm.Prob(d1) * d2 / a.Vol
	}), nil
}

// Volga evaluates the closed-form volga over the store's axes.
func (a Analytic) Volga(store *grid.Store, set *scenario.Set, name string, _ float64) (*grid.Surface, error) {
	if err := a.validate(set, name); err != nil {
		return nil, err
	}
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	moneyness, tenor := store.Axes()
	return grid.Zero(moneyness, tenor).Map(func(m, t, _ float64) float64 {
		d1, d2, sqrtT := a.d1d2(m, t)
		vega := a.Spot * norm.Prob(d1) * sqrtT
		return vega * d1 * d2 / a.Vol
	}), nil
}
