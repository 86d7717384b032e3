package loader

import (
	"math"

	"vegalens/internal/grid"
	"vegalens/internal/scenario"
)

// Sample axes: a 0.70-1.30 moneyness band and a front-to-back tenor ladder
// in days.
var (
	sampleMoneyness = []float64{0.70, 0.75, 0.80, 0.85, 0.90, 0.95, 1.00, 1.05, 1.10, 1.15, 1.20, 1.25, 1.30}
	sampleTenors    = []float64{7, 14, 30, 60, 90, 180, 365}
)

// SampleStore builds a deterministic synthetic vega store for demo runs and
// tests: dollar vega peaks at the money, grows with sqrt(tenor), and tilts
// toward the put wing under down scenarios. The shape is smooth in the
// spot return so finite-difference greeks behave.
func SampleStore(set *scenario.Set) (*grid.Store, error) {
	surfaces := make(map[string]*grid.Surface, set.Len())
	for name, r := range set.Returns() {
		cells := make([][]float64, len(sampleMoneyness))
		for i, m := range sampleMoneyness {
			row := make([]float64, len(sampleTenors))
			for j, t := range sampleTenors {
				row[j] = sampleVega(m, t, r)
			}
			cells[i] = row
		}
		s, err := grid.NewSurface(sampleMoneyness, sampleTenors, cells)
		if err != nil {
			return nil, err
		}
		surfaces[name] = s
	}
	return grid.NewStore(surfaces)
}

// sampleVega models a short-put-wing book: ATM-peaked vega with extra mass
// below 1.0, scaled by the square root of tenor, drifting with the spot
// scenario.
func sampleVega(m, tenor, spotReturn float64) float64 {
	peak := math.Exp(-((m - 1) / 0.15) * ((m - 1) / 0.15))
	wingTilt := 1 + 0.6*(1-m)
	term := math.Sqrt(tenor / 30)
	drift := 1 + 4*spotReturn*(1-m) + 1.5*spotReturn
	return 25000 * peak * wingTilt * term * drift
}
