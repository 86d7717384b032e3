package grid

import (
	"testing"

	apperrors "vegalens/internal/errors"
)

func TestNewAxisSortsAscending(t *testing.T) {
	axis, err := NewAxis("moneyness", []float64{1.10, 0.90, 1.00})
	if err != nil {
		t.Fatalf("NewAxis failed: %v", err)
	}
	want := []float64{0.90, 1.00, 1.10}
	for i, v := range want {
		if axis[i] != v {
			t.Errorf("axis[%d] = %v, want %v", i, axis[i], v)
		}
	}
}

func TestNewAxisValidation(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"empty", nil},
		{"duplicate", []float64{1.0, 1.0, 1.1}},
		{"zero value", []float64{0, 1.0}},
		{"negative value", []float64{-0.9, 1.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAxis("tenor", tt.values)
			if err == nil {
				t.Fatalf("NewAxis(%v) succeeded, want error", tt.values)
			}
			if !apperrors.Is(err, apperrors.ErrInvalidAxis) {
				t.Errorf("error = %v, want ErrInvalidAxis", err)
			}
		})
	}
}

func TestNewSurfaceShapeMismatch(t *testing.T) {
	_, err := NewSurface(
		[]float64{0.9, 1.0},
		[]float64{7, 30},
		[][]float64{{1, 2}}, // one row, two moneyness levels
	)
	if err == nil {
		t.Fatal("NewSurface succeeded with mismatched row count")
	}
	if !apperrors.Is(err, apperrors.ErrInconsistentGrid) {
		t.Errorf("error = %v, want ErrInconsistentGrid", err)
	}
}

// Two inputs that differ only in coordinate ordering must produce
// identical surfaces.
func TestNewSurfaceAxisOrderIndependence(t *testing.T) {
	sorted, err := NewSurface(
		[]float64{0.9, 1.0, 1.1},
		[]float64{7, 30},
		[][]float64{
			{10, 20},
			{30, 40},
			{50, 60},
		},
	)
	if err != nil {
		t.Fatalf("NewSurface (sorted) failed: %v", err)
	}

	// Same data with both axes reversed and the matrix permuted to match.
	shuffled, err := NewSurface(
		[]float64{1.1, 0.9, 1.0},
		[]float64{30, 7},
		[][]float64{
			{60, 50},
			{20, 10},
			{40, 30},
		},
	)
	if err != nil {
		t.Fatalf("NewSurface (shuffled) failed: %v", err)
	}

	if !shuffled.SameAxes(sorted.Moneyness(), sorted.Tenor()) {
		t.Fatal("axes differ after normalization")
	}
	for i := 0; i < sorted.Rows(); i++ {
		for j := 0; j < sorted.Cols(); j++ {
			if sorted.At(i, j) != shuffled.At(i, j) {
				t.Errorf("cell (%d,%d): sorted %v, shuffled %v", i, j, sorted.At(i, j), shuffled.At(i, j))
			}
		}
	}
}

func TestStoreRejectsInconsistentAxes(t *testing.T) {
	a, _ := NewSurface([]float64{0.9, 1.0}, []float64{7, 30}, [][]float64{{1, 2}, {3, 4}})
	b, _ := NewSurface([]float64{0.9, 1.1}, []float64{7, 30}, [][]float64{{1, 2}, {3, 4}})

	_, err := NewStore(map[string]*Surface{"atm": a, "up_25": b})
	if err == nil {
		t.Fatal("NewStore succeeded with diverging moneyness axes")
	}
	if !apperrors.Is(err, apperrors.ErrInconsistentGrid) {
		t.Errorf("error = %v, want ErrInconsistentGrid", err)
	}
	var gridErr *apperrors.GridError
	if !apperrors.As(err, &gridErr) {
		t.Fatalf("error = %T, want *GridError", err)
	}
	if gridErr.Scenario != "up_25" {
		t.Errorf("offending scenario = %q, want %q", gridErr.Scenario, "up_25")
	}
}

func TestStoreUnknownScenario(t *testing.T) {
	a, _ := NewSurface([]float64{0.9, 1.0}, []float64{7, 30}, [][]float64{{1, 2}, {3, 4}})
	st, err := NewStore(map[string]*Surface{"atm": a})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if _, err := st.Surface("atm"); err != nil {
		t.Errorf("Surface(atm) failed: %v", err)
	}
	_, err = st.Surface("up_99")
	if !apperrors.Is(err, apperrors.ErrUnknownScenario) {
		t.Errorf("Surface(up_99) error = %v, want ErrUnknownScenario", err)
	}
}

func TestCombineRequiresSharedAxes(t *testing.T) {
	a, _ := NewSurface([]float64{0.9, 1.0}, []float64{7, 30}, [][]float64{{1, 2}, {3, 4}})
	b, _ := NewSurface([]float64{0.9, 1.0}, []float64{7, 60}, [][]float64{{1, 2}, {3, 4}})

	if _, err := Combine(a, b, func(x, y float64) float64 { return x + y }); err == nil {
		t.Fatal("Combine succeeded across differing tenor axes")
	}

	sum, err := Combine(a, a, func(x, y float64) float64 { return x + y })
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	if got := sum.At(1, 1); got != 8 {
		t.Errorf("sum cell = %v, want 8", got)
	}
}

func TestMapPassesCoordinates(t *testing.T) {
	s, _ := NewSurface([]float64{0.9, 1.0}, []float64{7, 30}, [][]float64{{1, 1}, {1, 1}})
	scaled := s.Map(func(m, tenor, v float64) float64 { return v * m * tenor })
	if got := scaled.At(0, 1); got != 0.9*30 {
		t.Errorf("mapped cell = %v, want %v", got, 0.9*30)
	}
	// Original surface untouched
	if got := s.At(0, 1); got != 1 {
		t.Errorf("source cell mutated: %v", got)
	}
}
