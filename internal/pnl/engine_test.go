package pnl

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	apperrors "vegalens/internal/errors"
	"vegalens/internal/greeks"
	"vegalens/internal/grid"
	"vegalens/internal/ivmodel"
	"vegalens/internal/loader"
	"vegalens/internal/scenario"
)

func sampleEngine(t *testing.T) *Engine {
	t.Helper()
	set := scenario.DefaultSet()
	store, err := loader.SampleStore(set)
	if err != nil {
		t.Fatalf("SampleStore failed: %v", err)
	}
	engine, err := NewEngine(store, set, greeks.CentralDifference{ReferenceSpot: 100}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func TestNewEngineRequiresFullCoverage(t *testing.T) {
	set := scenario.DefaultSet()
	s, _ := grid.NewSurface([]float64{0.9, 1.0}, []float64{30}, [][]float64{{1}, {2}})
	store, err := grid.NewStore(map[string]*grid.Surface{"atm": s})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if _, err := NewEngine(store, set, nil, zerolog.Nop()); !apperrors.Is(err, apperrors.ErrInconsistentGrid) {
		t.Errorf("NewEngine error = %v, want ErrInconsistentGrid", err)
	}
}

// The baseline scenario has zero spot return, so the delta-IV surface is
// zero everywhere and all P&L components vanish.
func TestCalculateBaselineIsZero(t *testing.T) {
	engine := sampleEngine(t)
	result, err := engine.Calculate("atm", ivmodel.DefaultParams())
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if result.VegaPnL != 0 || result.VannaPnL != 0 || result.VolgaPnL != 0 || result.TotalPnL != 0 {
		t.Errorf("baseline P&L not zero: vega %v, vanna %v, volga %v, total %v",
			result.VegaPnL, result.VannaPnL, result.VolgaPnL, result.TotalPnL)
	}
}

func TestCalculateTotalIsExactComponentSum(t *testing.T) {
	engine := sampleEngine(t)
	for _, name := range engine.Scenarios() {
		result, err := engine.Calculate(name, ivmodel.DefaultParams())
		if err != nil {
			t.Fatalf("Calculate(%s) failed: %v", name, err)
		}
		if got := result.VegaPnL + result.VannaPnL + result.VolgaPnL; result.TotalPnL != got {
			t.Errorf("%s: total %v != component sum %v", name, result.TotalPnL, got)
		}
		for _, m := range result.ByTenor {
			if m.TotalPnL != m.VegaPnL+m.VannaPnL+m.VolgaPnL {
				t.Errorf("%s: tenor marginal total not exact at %v", name, m.Coord)
			}
		}
	}
}

func TestCalculateDownScenarioSigns(t *testing.T) {
	// The sample book is long vega, so a down move with negative beta
	// (vol up) produces a vega gain.
	engine := sampleEngine(t)
	result, err := engine.Calculate("down_50", ivmodel.DefaultParams())
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if result.SpotReturn != -0.05 {
		t.Errorf("spot return = %v, want -0.05", result.SpotReturn)
	}
	if result.VegaPnL <= 0 {
		t.Errorf("vega P&L = %v, want positive for long vega on vol-up move", result.VegaPnL)
	}
}

func TestCalculateUnknownScenario(t *testing.T) {
	engine := sampleEngine(t)
	if _, err := engine.Calculate("sideways", ivmodel.DefaultParams()); !apperrors.Is(err, apperrors.ErrUnknownScenario) {
		t.Errorf("error = %v, want ErrUnknownScenario", err)
	}
}

func TestCalculateAllCoversEveryScenario(t *testing.T) {
	engine := sampleEngine(t)
	results, err := engine.CalculateAll(ivmodel.DefaultParams())
	if err != nil {
		t.Fatalf("CalculateAll failed: %v", err)
	}
	if len(results) != 7 {
		t.Fatalf("got %d results, want 7", len(results))
	}
	for _, name := range engine.Scenarios() {
		single, err := engine.Calculate(name, ivmodel.DefaultParams())
		if err != nil {
			t.Fatalf("Calculate(%s) failed: %v", name, err)
		}
		if results[name].TotalPnL != single.TotalPnL {
			t.Errorf("%s: parallel total %v != serial total %v", name, results[name].TotalPnL, single.TotalPnL)
		}
	}
}

func TestSummarySortedBySpotReturn(t *testing.T) {
	engine := sampleEngine(t)
	rows, err := engine.Summary(ivmodel.DefaultParams())
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].SpotReturn >= rows[i].SpotReturn {
			t.Errorf("rows not sorted: %v before %v", rows[i-1].SpotReturn, rows[i].SpotReturn)
		}
	}
	if rows[0].Scenario != "down_75" || rows[len(rows)-1].Scenario != "up_75" {
		t.Errorf("band ends = %s..%s, want down_75..up_75", rows[0].Scenario, rows[len(rows)-1].Scenario)
	}
}

// Property: the same vega data fed in with shuffled axis ordering
// produces bitwise-identical P&L, because surfaces normalize their axes
// at construction.
func TestPropertyAxisOrderConsistency(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	moneyness := []float64{0.9, 1.0, 1.1}
	tenor := []float64{30, 90}
	shuffledM := []float64{1.1, 0.9, 1.0}
	shuffledT := []float64{90, 30}
	// Row/column source indexes mapping shuffled cells back to sorted data.
	rowSrc := []int{2, 0, 1}
	colSrc := []int{1, 0}

	set, err := scenario.NewSet(map[string]float64{
		"down_25": -0.025,
		"atm":     0,
		"up_25":   0.025,
	})
	if err != nil {
		t.Fatalf("NewSet failed: %v", err)
	}

	buildEngine := func(vega map[string][][]float64, shuffle bool) (*Engine, error) {
		surfaces := make(map[string]*grid.Surface, len(vega))
		for name, cells := range vega {
			m, tn, data := moneyness, tenor, cells
			if shuffle {
				data = make([][]float64, len(rowSrc))
				for i, si := range rowSrc {
					row := make([]float64, len(colSrc))
					for j, sj := range colSrc {
						row[j] = cells[si][sj]
					}
					data[i] = row
				}
				m, tn = shuffledM, shuffledT
			}
			s, err := grid.NewSurface(m, tn, data)
			if err != nil {
				return nil, err
			}
			surfaces[name] = s
		}
		store, err := grid.NewStore(surfaces)
		if err != nil {
			return nil, err
		}
		return NewEngine(store, set, greeks.CentralDifference{ReferenceSpot: 100}, zerolog.Nop())
	}

	properties.Property("shuffled axis input yields identical P&L", prop.ForAll(
		func(raw []float64) bool {
			if len(raw) < 18 {
				return true
			}
			vega := make(map[string][][]float64, 3)
			k := 0
			for _, name := range []string{"down_25", "atm", "up_25"} {
				cells := make([][]float64, 3)
				for i := range cells {
					row := make([]float64, 2)
					for j := range row {
						row[j] = raw[k]
						k++
					}
					cells[i] = row
				}
				vega[name] = cells
			}

			sortedEngine, err := buildEngine(vega, false)
			if err != nil {
				return false
			}
			shuffledEngine, err := buildEngine(vega, true)
			if err != nil {
				return false
			}

			for _, name := range []string{"down_25", "atm", "up_25"} {
				a, err := sortedEngine.Calculate(name, ivmodel.DefaultParams())
				if err != nil {
					return false
				}
				b, err := shuffledEngine.Calculate(name, ivmodel.DefaultParams())
				if err != nil {
					return false
				}
				if a.VegaPnL != b.VegaPnL || a.VannaPnL != b.VannaPnL ||
					a.VolgaPnL != b.VolgaPnL || a.TotalPnL != b.TotalPnL {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(18, gen.Float64Range(-50000, 50000)),
	))

	properties.TestingRun(t)
}

func TestKahanSumCompensates(t *testing.T) {
	// Adding 1e-16 to 1.0 rounds away under naive accumulation; the
	// compensation term carries the lost low-order bits across adds.
	var k kahanSum
	naive := 1.0
	k.Add(1.0)
	for i := 0; i < 10000; i++ {
		k.Add(1e-16)
		naive += 1e-16
	}
	if naive != 1.0 {
		t.Fatalf("naive sum unexpectedly precise: %v", naive)
	}
	if got := k.Value(); math.Abs(got-(1.0+1e-12)) > 1e-15 {
		t.Errorf("compensated sum = %v, want ~%v", got, 1.0+1e-12)
	}
}
