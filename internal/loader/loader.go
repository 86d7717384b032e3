// Package loader reads vega grid CSV files into a surface store. One file
// per scenario: the first column carries moneyness levels, the header row
// carries tenor labels (day counts or expiry dates), cells carry dollar
// vega.
package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"vegalens/internal/errors"
	"vegalens/internal/grid"
	"vegalens/internal/scenario"
)

// Date layouts accepted for tenor column headers. CBOE-style exports label
// expiries like "Thu May 22 2025"; internal exports use ISO dates.
var dateLayouts = []string{
	"2006-01-02",
	"Mon Jan 02 2006",
	"Jan 02 2006",
	"01/02/2006",
}

// Load reads one grid file per scenario from dir, expecting files named
// <prefix>_<scenario>.csv (case-insensitive). Every scenario in the set
// must have a file; tenor axes labelled with dates are converted to day
// counts against refDate.
func Load(dir, prefix string, set *scenario.Set, refDate time.Time) (*grid.Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewDataError(dir, "reading grid directory", err)
	}

	byName := make(map[string]string) // lowercased file name -> actual name
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		byName[strings.ToLower(e.Name())] = e.Name()
	}

	surfaces := make(map[string]*grid.Surface)
	var missing []string
	for _, name := range set.Names() {
		want := strings.ToLower(fmt.Sprintf("%s_%s.csv", prefix, name))
		actual, ok := byName[want]
		if !ok {
			missing = append(missing, name)
			continue
		}
		path := filepath.Join(dir, actual)
		s, err := ParseGridFile(path, refDate)
		if err != nil {
			return nil, err
		}
		surfaces[name] = s
	}
	if len(missing) > 0 {
		return nil, errors.NewDataError(dir,
			fmt.Sprintf("missing grid files for scenarios: %s", strings.Join(missing, ", ")),
			errors.ErrDataNotFound)
	}

	return grid.NewStore(surfaces)
}

// ParseGridFile parses a single vega grid CSV into a surface. A trailing
// TOTAL column and summary rows with an empty moneyness cell are dropped,
// matching the layout of exported dashboards.
func ParseGridFile(path string, refDate time.Time) (*grid.Surface, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataError(path, "opening grid file", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.NewDataError(path, "reading csv", err)
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return nil, errors.NewDataError(path, "grid file needs a header row and at least one data row", errors.ErrDataNotFound)
	}

	header := records[0]
	var tenors []float64
	var keep []int // column indexes carrying tenor data
	for j := 1; j < len(header); j++ {
		label := strings.TrimSpace(header[j])
		if label == "" || strings.EqualFold(label, "TOTAL") {
			continue
		}
		t, err := parseTenorLabel(label, refDate)
		if err != nil {
			return nil, errors.NewDataError(path, fmt.Sprintf("column %d: bad tenor label %q", j, label), err)
		}
		tenors = append(tenors, t)
		keep = append(keep, j)
	}

	var moneyness []float64
	var cells [][]float64
	for i := 1; i < len(records); i++ {
		row := records[i]
		first := strings.TrimSpace(row[0])
		if first == "" {
			continue // summary row
		}
		m, err := strconv.ParseFloat(first, 64)
		if err != nil {
			return nil, errors.NewDataError(path, fmt.Sprintf("row %d: bad moneyness %q", i, first), err)
		}
		vals := make([]float64, len(keep))
		for k, j := range keep {
			if j >= len(row) {
				return nil, errors.NewDataError(path, fmt.Sprintf("row %d: short row", i), errors.ErrInconsistentGrid)
			}
			cell := strings.TrimSpace(strings.ReplaceAll(row[j], ",", ""))
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, errors.NewDataError(path, fmt.Sprintf("row %d col %d: bad vega %q", i, j, row[j]), err)
			}
			vals[k] = v
		}
		moneyness = append(moneyness, m)
		cells = append(cells, vals)
	}

	s, err := grid.NewSurface(moneyness, tenors, cells)
	if err != nil {
		return nil, errors.NewDataError(path, "building surface", err)
	}
	return s, nil
}

// parseTenorLabel interprets a header label as a day count, either a plain
// number or an expiry date measured against refDate (floored at one day).
func parseTenorLabel(label string, refDate time.Time) (float64, error) {
	if t, err := strconv.ParseFloat(label, 64); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		exp, err := time.Parse(layout, label)
		if err != nil {
			continue
		}
		days := exp.Sub(refDate).Hours() / 24
		if days < 1 {
			days = 1
		}
		return days, nil
	}
	return 0, fmt.Errorf("label is neither a day count nor a recognized date")
}
