// Package scenario defines the named spot-move scenarios a surface store is
// keyed by: a zero-move baseline plus symmetric down/up moves at fixed
// fractional spot returns.
package scenario

import (
	"fmt"
	"sort"

	"vegalens/internal/errors"
)

// Baseline is the conventional name of the zero-move scenario.
const Baseline = "atm"

// Set is a named collection of spot-return scenarios with exactly one
// baseline at return zero. Sets are value objects passed per call and
// never mutated.
type Set struct {
	returns  map[string]float64
	baseline string
}

// NewSet validates the scenario mapping: exactly one scenario must carry a
// zero return, and it becomes the baseline.
func NewSet(returns map[string]float64) (*Set, error) {
	if len(returns) == 0 {
		return nil, errors.NewParameterError("scenarios", 0, "scenario set is empty")
	}
	baseline := ""
	owned := make(map[string]float64, len(returns))
	for name, r := range returns {
		if r == 0 {
			if baseline != "" {
				return nil, errors.NewParameterError("scenarios", 0,
					fmt.Sprintf("multiple zero-return scenarios: %q and %q", baseline, name))
			}
			baseline = name
		}
		owned[name] = r
	}
	if baseline == "" {
		return nil, errors.NewParameterError("scenarios", 0, "no zero-return baseline scenario")
	}
	return &Set{returns: owned, baseline: baseline}, nil
}

// DefaultSet returns the standard scenario band: +/-2.5%, +/-5% and +/-7.5%
// spot moves around the ATM baseline.
func DefaultSet() *Set {
	s, _ := NewSet(map[string]float64{
		"down_75": -0.075,
		"down_50": -0.05,
		"down_25": -0.025,
		Baseline:  0.0,
		"up_25":   0.025,
		"up_50":   0.05,
		"up_75":   0.075,
	})
	return s
}

// Return resolves the fractional spot return for a scenario name.
func (s *Set) Return(name string) (float64, error) {
	r, ok := s.returns[name]
	if !ok {
		return 0, errors.NewUnknownScenario(name, "resolve return")
	}
	return r, nil
}

// Has reports whether the set contains the scenario.
func (s *Set) Has(name string) bool {
	_, ok := s.returns[name]
	return ok
}

// Baseline returns the name of the zero-return scenario.
func (s *Set) Baseline() string {
	return s.baseline
}

// Names returns all scenario names ordered by spot return.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.returns))
	for name := range s.returns {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := s.returns[names[i]], s.returns[names[j]]
		if ri == rj {
			return names[i] < names[j]
		}
		return ri < rj
	})
	return names
}

// Len returns the number of scenarios in the set.
func (s *Set) Len() int {
	return len(s.returns)
}

// Returns returns a copy of the name -> spot return mapping.
func (s *Set) Returns() map[string]float64 {
	out := make(map[string]float64, len(s.returns))
	for name, r := range s.returns {
		out[name] = r
	}
	return out
}

// Bracket locates the two axis-adjacent scenarios around the target: the
// nearest scenario with a strictly smaller return and the nearest with a
// strictly larger one (the nearest symmetric pair when the band is
// symmetric around the target). A target at the edge of the band falls
// back to the baseline paired with its single nearest neighbor; when even
// that yields fewer than two distinct scenarios, Bracket fails with
// ErrInsufficientScenarios.
func (s *Set) Bracket(name string) (lower, upper string, err error) {
	target, ok := s.returns[name]
	if !ok {
		return "", "", errors.NewUnknownScenario(name, "bracket")
	}
	lowerFound, upperFound := false, false
	var lowerRet, upperRet float64
	for n, r := range s.returns {
		switch {
		case r < target:
			if !lowerFound || r > lowerRet || (r == lowerRet && n < lower) {
				lower, lowerRet, lowerFound = n, r, true
			}
		case r > target:
			if !upperFound || r < upperRet || (r == upperRet && n < upper) {
				upper, upperRet, upperFound = n, r, true
			}
		}
	}
	if lowerFound && upperFound {
		return lower, upper, nil
	}

	// Boundary of the band: pair the single neighbor with the baseline.
	neighbor := lower
	if upperFound {
		neighbor = upper
	}
	if neighbor == "" || s.baseline == name || s.baseline == neighbor {
		return "", "", errors.NewInsufficientScenarios(name, "no two-sided bracket in scenario set")
	}
	if s.returns[neighbor] < s.returns[s.baseline] {
		return neighbor, s.baseline, nil
	}
	return s.baseline, neighbor, nil
}

// Label returns a display label for a scenario ("-7.5%", "ATM", "+2.5%").
func (s *Set) Label(name string) string {
	r, ok := s.returns[name]
	if !ok {
		return name
	}
	if r == 0 {
		return "ATM"
	}
	return fmt.Sprintf("%+.1f%%", r*100)
}
