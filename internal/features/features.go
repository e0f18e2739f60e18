// Package features derives the match outcome label and recent-form counts
// from a raw match table.
package features

import (
	"fmt"
	"strconv"

	"pitchflow/internal/dataset"
)

const (
	HomeWin = "H"
	AwayWin = "A"
	Draw    = "D"

	WinMarker = "W"

	ResultCol   = "Result"
	HomeWinsCol = "HomeWins"
	AwayWinsCol = "AwayWins"
)

var (
	HomeForm = []string{"HM1", "HM2", "HM3", "HM4", "HM5"}
	AwayForm = []string{"AM1", "AM2", "AM3", "AM4", "AM5"}

	// HighCardinality columns are dropped before encoding.
	HighCardinality = []string{"HTFormPtsStr", "ATFormPtsStr"}

	// IndexColumns are the spellings of a leftover unnamed index column.
	IndexColumns = []string{"", "Unnamed: 0"}
)

// Result labels a match from full-time goals.
func Result(fthg, ftag float64) string {
	switch {
	case fthg > ftag:
		return HomeWin
	case fthg < ftag:
		return AwayWin
	default:
		return Draw
	}
}

// CountWins counts the values equal to WinMarker.
func CountWins(values []string) int {
	n := 0
	for _, v := range values {
		if v == WinMarker {
			n++
		}
	}
	return n
}

// Derive drops the index column, appends Result, HomeWins and AwayWins, and
// drops the high-cardinality form strings. f is modified in place.
func Derive(f *dataset.Frame) error {
	f.Drop(IndexColumns...)

	hg, err := f.MustIndex("FTHG")
	if err != nil {
		return err
	}
	ag, err := f.MustIndex("FTAG")
	if err != nil {
		return err
	}
	home, err := indices(f, HomeForm)
	if err != nil {
		return err
	}
	away, err := indices(f, AwayForm)
	if err != nil {
		return err
	}

	n := f.Len()
	results := make([]string, n)
	homeWins := make([]string, n)
	awayWins := make([]string, n)
	for i, row := range f.Rows {
		h, err := strconv.ParseFloat(row[hg], 64)
		if err != nil {
			return fmt.Errorf("row %d: FTHG %q: %w", i, row[hg], err)
		}
		a, err := strconv.ParseFloat(row[ag], 64)
		if err != nil {
			return fmt.Errorf("row %d: FTAG %q: %w", i, row[ag], err)
		}
		results[i] = Result(h, a)
		homeWins[i] = strconv.Itoa(CountWins(pick(row, home)))
		awayWins[i] = strconv.Itoa(CountWins(pick(row, away)))
	}

	for _, c := range []struct {
		name string
		vals []string
	}{{ResultCol, results}, {HomeWinsCol, homeWins}, {AwayWinsCol, awayWins}} {
		if err := f.AddColumn(c.name, c.vals); err != nil {
			return err
		}
	}
	f.Drop(HighCardinality...)
	return nil
}

func indices(f *dataset.Frame, cols []string) ([]int, error) {
	out := make([]int, len(cols))
	for i, c := range cols {
		j, err := f.MustIndex(c)
		if err != nil {
			return nil, err
		}
		out[i] = j
	}
	return out, nil
}

func pick(row []string, idx []int) []string {
	out := make([]string, len(idx))
	for k, j := range idx {
		out[k] = row[j]
	}
	return out
}
