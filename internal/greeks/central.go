package greeks

import (
	"vegalens/internal/errors"
	"vegalens/internal/grid"
	"vegalens/internal/scenario"
)

// CentralDifference is the default scheme. It brackets the target scenario
// with its nearest smaller and larger spot-return neighbors and treats the
// vega surfaces at those scenarios as samples of vega along the spot axis:
//
//	vanna = (V[r+] - V[r-]) / (S*r+ - S*r-)
//	volga = scalar * (V[r+] - 2*V[atm] + V[r-]) / ((S*r+ - S*r-)/2)^2
//
// where S*r is the absolute spot change implied by return r at the
// reference spot level. Volga here is a proxy: the grids carry no
// independent vol-bump axis, so spot-curvature of vega stands in for vol
// convexity, rescaled by the caller's volga scalar. Downstream P&L figures
// are calibrated against this convention.
//
// The bracket rule is the nearest symmetric pair around the target. A
// target at the edge of the band pairs its single neighbor with the
// baseline instead; when even that yields fewer than two distinct
// scenarios the derivation fails with ErrInsufficientScenarios.
type CentralDifference struct {
	// ReferenceSpot is the spot level used to scale fractional returns to
	// absolute spot changes. Zero means DefaultReferenceSpot.
	ReferenceSpot float64
}

// Name identifies the scheme.
func (CentralDifference) Name() string { return "central" }

func (c CentralDifference) spot() (float64, error) {
	s := c.ReferenceSpot
	if s == 0 {
		s = DefaultReferenceSpot
	}
	if s < 0 {
		return 0, errors.NewParameterError("reference_spot", s, "must be positive")
	}
	return s, nil
}

// bracket resolves the neighbor surfaces and the absolute spot gap between
// them.
func (c CentralDifference) bracket(store *grid.Store, set *scenario.Set, name string) (upper, lower *grid.Surface, gap float64, err error) {
	spot, err := c.spot()
	if err != nil {
		return nil, nil, 0, err
	}
	lowName, upName, err := set.Bracket(name)
	if err != nil {
		return nil, nil, 0, err
	}
	lower, err = store.Surface(lowName)
	if err != nil {
		return nil, nil, 0, err
	}
	upper, err = store.Surface(upName)
	if err != nil {
		return nil, nil, 0, err
	}
	rLow, _ := set.Return(lowName)
	rUp, _ := set.Return(upName)
	return upper, lower, spot * (rUp - rLow), nil
}

// Vanna estimates dVega/dSpot as the central difference of vega across the
// bracketing scenarios.
func (c CentralDifference) Vanna(store *grid.Store, set *scenario.Set, name string) (*grid.Surface, error) {
	upper, lower, gap, err := c.bracket(store, set, name)
	if err != nil {
		return nil, err
	}
	return grid.Combine(upper, lower, func(up, down float64) float64 {
		return (up - down) / gap
	})
}

// Volga estimates vol convexity from the second central difference of vega
// across the bracketing scenarios, centered on the baseline surface.
func (c CentralDifference) Volga(store *grid.Store, set *scenario.Set, name string, volgaScalar float64) (*grid.Surface, error) {
	upper, lower, gap, err := c.bracket(store, set, name)
	if err != nil {
		return nil, err
	}
	base, err := store.Surface(set.Baseline())
	if err != nil {
		return nil, err
	}
	half := gap / 2
	curvature, err := grid.Combine(upper, lower, func(up, down float64) float64 {
		return up + down
	})
	if err != nil {
		return nil, err
	}
	return grid.Combine(curvature, base, func(sum, atm float64) float64 {
		return volgaScalar * (sum - 2*atm) / (half * half)
	})
}
