// Package grid provides immutable vega surfaces keyed by (moneyness, tenor)
// coordinates and the store that holds one surface per spot scenario.
package grid

import (
	"math"
	"sort"

	"vegalens/internal/errors"
)

// Axis is an ordered sequence of coordinate values shared by all surfaces
// for one underlying. Values are strictly increasing and positive.
type Axis []float64

// NewAxis validates and normalizes axis values: the result is sorted
// ascending regardless of input order. Duplicate or non-positive values
// are rejected.
func NewAxis(name string, values []float64) (Axis, error) {
	if len(values) == 0 {
		return nil, errors.NewAxisError(name, "axis is empty")
	}
	out := make(Axis, len(values))
	copy(out, values)
	sort.Float64s(out)
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.NewAxisError(name, "axis contains a non-finite value")
		}
		if v <= 0 {
			return nil, errors.NewAxisError(name, "axis values must be positive")
		}
		if i > 0 && out[i-1] == v {
			return nil, errors.NewAxisError(name, "axis values must be strictly increasing")
		}
	}
	return out, nil
}

// Equal reports whether two axes carry identical values.
func (a Axis) Equal(b Axis) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Values returns a copy of the axis values.
func (a Axis) Values() []float64 {
	out := make([]float64, len(a))
	copy(out, a)
	return out
}

// sortOrder returns the permutation that sorts values ascending.
func sortOrder(values []float64) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return values[order[i]] < values[order[j]]
	})
	return order
}

// Surface is a 2-D grid of a single quantity (dollar vega, vanna, volga or
// delta-IV) over moneyness x tenor. Surfaces are value objects: constructed
// once, never mutated, safe for concurrent readers.
type Surface struct {
	moneyness Axis
	tenor     Axis
	cells     [][]float64 // rows = moneyness, cols = tenor
}

// NewSurface builds a surface from raw coordinate values and a matrix of
// cells (rows indexed by moneyness, columns by tenor). Axes are normalized
// to ascending order and the matrix is permuted with them, so two inputs
// that differ only in coordinate ordering produce identical surfaces.
func NewSurface(moneyness, tenor []float64, cells [][]float64) (*Surface, error) {
	if len(cells) != len(moneyness) {
		return nil, errors.NewGridError("", "shape", "row count does not match moneyness axis length")
	}
	for _, row := range cells {
		if len(row) != len(tenor) {
			return nil, errors.NewGridError("", "shape", "column count does not match tenor axis length")
		}
	}

	mAxis, err := NewAxis("moneyness", moneyness)
	if err != nil {
		return nil, err
	}
	tAxis, err := NewAxis("tenor", tenor)
	if err != nil {
		return nil, err
	}

	rowOrder := sortOrder(moneyness)
	colOrder := sortOrder(tenor)

	grid := make([][]float64, len(mAxis))
	for i := range grid {
		src := cells[rowOrder[i]]
		row := make([]float64, len(tAxis))
		for j := range row {
			row[j] = src[colOrder[j]]
		}
		grid[i] = row
	}

	return &Surface{moneyness: mAxis, tenor: tAxis, cells: grid}, nil
}

// NewSurfaceOnAxes builds a surface over pre-validated axes. The matrix is
// taken as already aligned with the axes.
func NewSurfaceOnAxes(moneyness, tenor Axis, cells [][]float64) (*Surface, error) {
	if len(cells) != len(moneyness) {
		return nil, errors.NewGridError("", "shape", "row count does not match moneyness axis length")
	}
	grid := make([][]float64, len(cells))
	for i, row := range cells {
		if len(row) != len(tenor) {
			return nil, errors.NewGridError("", "shape", "column count does not match tenor axis length")
		}
		dst := make([]float64, len(row))
		copy(dst, row)
		grid[i] = dst
	}
	return &Surface{moneyness: moneyness, tenor: tenor, cells: grid}, nil
}

// Zero returns a zero-valued surface over the given axes.
func Zero(moneyness, tenor Axis) *Surface {
	cells := make([][]float64, len(moneyness))
	for i := range cells {
		cells[i] = make([]float64, len(tenor))
	}
	return &Surface{moneyness: moneyness, tenor: tenor, cells: cells}
}

// Moneyness returns the moneyness axis.
func (s *Surface) Moneyness() Axis { return s.moneyness }

// Tenor returns the tenor axis.
func (s *Surface) Tenor() Axis { return s.tenor }

// Rows returns the moneyness axis length.
func (s *Surface) Rows() int { return len(s.moneyness) }

// Cols returns the tenor axis length.
func (s *Surface) Cols() int { return len(s.tenor) }

// At returns the cell value at moneyness index i and tenor index j.
func (s *Surface) At(i, j int) float64 { return s.cells[i][j] }

// Cells returns a deep copy of the cell matrix.
func (s *Surface) Cells() [][]float64 {
	out := make([][]float64, len(s.cells))
	for i, row := range s.cells {
		dst := make([]float64, len(row))
		copy(dst, row)
		out[i] = dst
	}
	return out
}

// SameAxes reports whether the surface shares identical axis values with
// the given pair.
func (s *Surface) SameAxes(moneyness, tenor Axis) bool {
	return s.moneyness.Equal(moneyness) && s.tenor.Equal(tenor)
}

// Map returns a new surface over the same axes with fn applied per cell.
// fn receives the moneyness value, tenor value and cell value.
func (s *Surface) Map(fn func(m, t, v float64) float64) *Surface {
	cells := make([][]float64, len(s.cells))
	for i, row := range s.cells {
		dst := make([]float64, len(row))
		for j, v := range row {
			dst[j] = fn(s.moneyness[i], s.tenor[j], v)
		}
		cells[i] = dst
	}
	return &Surface{moneyness: s.moneyness, tenor: s.tenor, cells: cells}
}

// Combine returns a new surface whose cells are fn(a, b) per cell. Axes
// must already be identical; callers go through Store validation.
func Combine(a, b *Surface, fn func(x, y float64) float64) (*Surface, error) {
	if !b.SameAxes(a.moneyness, a.tenor) {
		return nil, errors.NewGridError("", "shape", "surfaces do not share axes")
	}
	cells := make([][]float64, len(a.cells))
	for i := range a.cells {
		row := make([]float64, len(a.cells[i]))
		for j := range row {
			row[j] = fn(a.cells[i][j], b.cells[i][j])
		}
		cells[i] = row
	}
	return &Surface{moneyness: a.moneyness, tenor: a.tenor, cells: cells}, nil
}
