package loader

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "vegalens/internal/errors"
	"vegalens/internal/scenario"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestParseGridFileNumericTenors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "grid.csv",
		"K/S,7,30,90\n"+
			"0.90,100,200,300\n"+
			"1.00,400,500,600\n"+
			"1.10,700,800,900\n")

	s, err := ParseGridFile(path, time.Now())
	if err != nil {
		t.Fatalf("ParseGridFile failed: %v", err)
	}
	if s.Rows() != 3 || s.Cols() != 3 {
		t.Fatalf("shape = %dx%d, want 3x3", s.Rows(), s.Cols())
	}
	if got := s.At(1, 2); got != 600 {
		t.Errorf("cell (1.00, 90d) = %v, want 600", got)
	}
}

// Dashboard exports carry a trailing TOTAL column, thousands separators
// and a summary row with an empty moneyness cell; all must be dropped or
// normalized.
func TestParseGridFileDashboardLayout(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "grid.csv",
		"K/S,7,30,TOTAL\n"+
			`0.90,"1,000","2,000","3,000"`+"\n"+
			"1.00,400,500,900\n"+
			",1400,2500,3900\n")

	s, err := ParseGridFile(path, time.Now())
	if err != nil {
		t.Fatalf("ParseGridFile failed: %v", err)
	}
	if s.Rows() != 2 || s.Cols() != 2 {
		t.Fatalf("shape = %dx%d, want 2x2 after dropping TOTAL and summary row", s.Rows(), s.Cols())
	}
	if got := s.At(0, 1); got != 2000 {
		t.Errorf("cell (0.90, 30d) = %v, want 2000", got)
	}
}

func TestParseGridFileDateTenors(t *testing.T) {
	refDate := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	path := writeFile(t, dir, "grid.csv",
		"K/S,2026-08-08,Mon Aug 31 2026\n"+
			"0.95,10,20\n"+
			"1.05,30,40\n")

	s, err := ParseGridFile(path, refDate)
	if err != nil {
		t.Fatalf("ParseGridFile failed: %v", err)
	}
	tenor := s.Tenor()
	if math.Abs(tenor[0]-7) > 1e-9 {
		t.Errorf("first tenor = %v days, want 7", tenor[0])
	}
	if math.Abs(tenor[1]-30) > 1e-9 {
		t.Errorf("second tenor = %v days, want 30", tenor[1])
	}
}

func TestParseGridFileExpiredDateFloorsAtOneDay(t *testing.T) {
	refDate := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	path := writeFile(t, dir, "grid.csv",
		"K/S,2026-07-01,2026-09-01\n"+
			"1.00,10,20\n"+
			"1.05,30,40\n")

	s, err := ParseGridFile(path, refDate)
	if err != nil {
		t.Fatalf("ParseGridFile failed: %v", err)
	}
	if got := s.Tenor()[0]; got != 1 {
		t.Errorf("expired tenor = %v, want floor of 1 day", got)
	}
}

func TestParseGridFileBadCell(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "grid.csv",
		"K/S,7,30\n"+
			"0.90,100,oops\n")

	if _, err := ParseGridFile(path, time.Now()); err == nil {
		t.Fatal("ParseGridFile succeeded on a non-numeric cell")
	}
}

func TestLoadResolvesFilesCaseInsensitively(t *testing.T) {
	set, err := scenario.NewSet(map[string]float64{
		"down_25": -0.025,
		"atm":     0,
		"up_25":   0.025,
	})
	if err != nil {
		t.Fatalf("NewSet failed: %v", err)
	}

	dir := t.TempDir()
	content := "K/S,7,30\n0.90,100,200\n1.00,300,400\n"
	writeFile(t, dir, "SPX_atm.csv", content)
	writeFile(t, dir, "spx_down_25.csv", content)
	writeFile(t, dir, "SPX_UP_25.csv", content)

	store, err := Load(dir, "SPX", set, time.Now())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for _, name := range set.Names() {
		if !store.Has(name) {
			t.Errorf("store missing scenario %s", name)
		}
	}
}

func TestLoadReportsMissingScenarios(t *testing.T) {
	set := scenario.DefaultSet()
	dir := t.TempDir()
	writeFile(t, dir, "SPX_atm.csv", "K/S,7\n0.90,100\n1.00,200\n")

	_, err := Load(dir, "SPX", set, time.Now())
	if !apperrors.Is(err, apperrors.ErrDataNotFound) {
		t.Fatalf("Load error = %v, want ErrDataNotFound", err)
	}
}

func TestSampleStoreCoversDefaultSet(t *testing.T) {
	set := scenario.DefaultSet()
	store, err := SampleStore(set)
	if err != nil {
		t.Fatalf("SampleStore failed: %v", err)
	}
	for _, name := range set.Names() {
		s, err := store.Surface(name)
		if err != nil {
			t.Fatalf("Surface(%s) failed: %v", name, err)
		}
		// Vega must peak at the money for every tenor.
		atmRow := -1
		for i, m := range s.Moneyness() {
			if m == 1.0 {
				atmRow = i
			}
		}
		if atmRow < 0 {
			t.Fatal("sample grid has no ATM row")
		}
	}
}
