// Package ivmodel estimates implied-volatility changes across a
// (moneyness, tenor) grid for a given spot move.
//
// Dynamics modeled:
//  1. Spot/vol beta: ATM vol rises when spot drops (negative correlation).
//  2. Term structure: front tenors move more than back tenors.
//  3. Skew: OTM puts see amplified moves on selloffs, dampened on rallies.
package ivmodel

import (
	"math"

	"vegalens/internal/errors"
	"vegalens/internal/grid"
)

// Caps keeping the multiplicative adjustments inside sane bounds for
// extreme parameter/coordinate combinations.
const (
	termAdjustMin = 0.3
	termAdjustMax = 3.0
	skewMultMin   = 0.2
	skewMultMax   = 3.0
)

// Params holds the tunable coefficients of the IV change model. A Params
// value is configuration passed per call; callers may hold several
// concurrently.
type Params struct {
	// Beta is the sensitivity of ATM vol to spot moves, in vol points per
	// 1% spot move. Typical range -5 to -2: -3 means a 1% spot drop lifts
	// ATM vol by 3 points.
	Beta float64
	// SkewFactor controls skew dynamics: 0 is a parallel shift, positive
	// values steepen the put wing on selloffs. Typical range 0 to 1.5.
	SkewFactor float64
	// TermSlope shapes the term-structure response: ~1 means front tenors
	// move roughly with sqrt(reference/tenor), <1 flattens the response.
	TermSlope float64
	// ReferenceTenor is the tenor, in days, at which the term adjustment
	// is exactly 1. Must be positive.
	ReferenceTenor float64
	// VolgaScalar rescales the volga proxy used by the greeks engine.
	// Typical range 0.3 to 0.7.
	VolgaScalar float64
}

// DefaultParams returns the standard parameter set.
func DefaultParams() Params {
	return Params{
		Beta:           -3.0,
		SkewFactor:     1.0,
		TermSlope:      1.0,
		ReferenceTenor: 30,
		VolgaScalar:    0.5,
	}
}

// Validate checks the parameter invariants.
func (p Params) Validate() error {
	if p.ReferenceTenor <= 0 {
		return errors.NewParameterError("reference_tenor", p.ReferenceTenor, "must be positive")
	}
	if math.IsNaN(p.Beta) || math.IsNaN(p.SkewFactor) || math.IsNaN(p.TermSlope) || math.IsNaN(p.VolgaScalar) {
		return errors.NewParameterError("params", 0, "parameter is NaN")
	}
	return nil
}

// sign is the usual signum with sign(0) = 0, so a zero spot move yields a
// zero delta-IV surface regardless of skew factor.
func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// ATMChange returns the ATM IV change in vol points for a fractional spot
// return at a given tenor (days).
func ATMChange(spotReturn, tenor float64, p Params) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if tenor <= 0 {
		return 0, errors.NewParameterError("tenor", tenor, "must be positive")
	}
	base := p.Beta * spotReturn * 100
	adjust := math.Pow(p.ReferenceTenor/tenor, p.TermSlope/2)
	adjust = clamp(adjust, termAdjustMin, termAdjustMax)
	return base * adjust, nil
}

// Change returns the IV change in vol points for one (moneyness, tenor)
// cell: the ATM change scaled by the skew multiplier
// 1 + skew_factor * (-sign(spot_return)) * (1 - moneyness).
func Change(spotReturn, moneyness, tenor float64, p Params) (float64, error) {
	atm, err := ATMChange(spotReturn, tenor, p)
	if err != nil {
		return 0, err
	}
	mult := 1 + p.SkewFactor*(-sign(spotReturn))*(1-moneyness)
	mult = clamp(mult, skewMultMin, skewMultMax)
	return atm * mult, nil
}

// ComputeDeltaIV produces the delta-IV surface over the given axes for one
// spot-return scenario. The result shares the input axes exactly; no
// interpolation happens here.
func ComputeDeltaIV(moneyness, tenor grid.Axis, spotReturn float64, p Params) (*grid.Surface, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cells := make([][]float64, len(moneyness))
	for i, m := range moneyness {
		row := make([]float64, len(tenor))
		for j, t := range tenor {
			v, err := Change(spotReturn, m, t, p)
			if err != nil {
				return nil, err
			}
			row[j] = v
		}
		cells[i] = row
	}
	return grid.NewSurfaceOnAxes(moneyness, tenor, cells)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
