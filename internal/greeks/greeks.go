// Package greeks derives second-order option sensitivities (vanna, volga)
// on the same coordinate grid as the vega surfaces.
//
// The derivation is a swappable strategy: the default finite-differences
// vega across neighboring spot scenarios, and alternatives substitute the
// original wing proxy, closed-form Black-Scholes values, or externally
// supplied grids without touching the P&L engine.
package greeks

import (
	"vegalens/internal/grid"
	"vegalens/internal/scenario"
)

// Scheme derives vanna and volga surfaces for a target scenario from a
// vega surface store.
type Scheme interface {
	Name() string
	Vanna(store *grid.Store, set *scenario.Set, name string) (*grid.Surface, error)
	Volga(store *grid.Store, set *scenario.Set, name string, volgaScalar float64) (*grid.Surface, error)
}

// DefaultReferenceSpot is the spot level used to translate fractional
// returns into absolute spot changes when the caller does not supply one.
const DefaultReferenceSpot = 100.0
