package grid

import (
	"sort"

	"vegalens/internal/errors"
)

// Store owns one vega surface per spot scenario, all sharing identical
// coordinate axes. A store is read-only after construction; the P&L engine
// combines its surfaces element-wise, so axis consistency is validated up
// front rather than trusted per call.
type Store struct {
	moneyness Axis
	tenor     Axis
	surfaces  map[string]*Surface
}

// NewStore validates that every supplied surface shares one axis pair and
// returns the immutable store. The reference pair is taken from the first
// scenario in name order so validation is deterministic.
func NewStore(surfaces map[string]*Surface) (*Store, error) {
	if len(surfaces) == 0 {
		return nil, errors.NewGridError("", "shape", "no surfaces supplied")
	}

	names := make([]string, 0, len(surfaces))
	for name := range surfaces {
		names = append(names, name)
	}
	sort.Strings(names)

	ref := surfaces[names[0]]
	owned := make(map[string]*Surface, len(surfaces))
	for _, name := range names {
		s := surfaces[name]
		if s.Rows() != ref.Rows() || s.Cols() != ref.Cols() {
			return nil, errors.NewGridError(name, "shape", "matrix dimensions differ from reference surface")
		}
		if !s.moneyness.Equal(ref.moneyness) {
			return nil, errors.NewGridError(name, "moneyness", "axis values differ from reference surface")
		}
		if !s.tenor.Equal(ref.tenor) {
			return nil, errors.NewGridError(name, "tenor", "axis values differ from reference surface")
		}
		owned[name] = s
	}

	return &Store{
		moneyness: ref.moneyness,
		tenor:     ref.tenor,
		surfaces:  owned,
	}, nil
}

// Surface returns the vega surface for the named scenario.
func (st *Store) Surface(name string) (*Surface, error) {
	s, ok := st.surfaces[name]
	if !ok {
		return nil, errors.NewUnknownScenario(name, "get surface")
	}
	return s, nil
}

// Has reports whether the store holds a surface for the scenario.
func (st *Store) Has(name string) bool {
	_, ok := st.surfaces[name]
	return ok
}

// Axes returns the shared moneyness and tenor axes.
func (st *Store) Axes() (Axis, Axis) {
	return st.moneyness, st.tenor
}

// Scenarios returns the stored scenario names in sorted order.
func (st *Store) Scenarios() []string {
	names := make([]string, 0, len(st.surfaces))
	for name := range st.surfaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
