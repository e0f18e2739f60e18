package preprocess

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

var ErrNegativeFeature = errors.New("chi2: features must be non-negative")

// Chi2 scores each column of X (row-major) against the class labels y.
// Observed counts are per-class column sums; expected counts are the class
// prior times the column total. Columns with a zero total score NaN. A
// single class is padded with an empty one, so every score is NaN and the
// p-values use one degree of freedom.
func Chi2(X [][]float64, y []string) (scores, pvalues []float64, err error) {
	if len(X) != len(y) {
		return nil, nil, fmt.Errorf("chi2: %d rows but %d labels", len(X), len(y))
	}
	if len(X) == 0 {
		return nil, nil, errors.New("chi2: no rows")
	}
	nFeat := len(X[0])

	classes := slices.Clone(y)
	slices.Sort(classes)
	classes = slices.Compact(classes)
	classIdx := make(map[string]int, len(classes))
	for i, c := range classes {
		classIdx[c] = i
	}

	nClass := max(len(classes), 2)
	observed := make([][]float64, nClass)
	for c := range observed {
		observed[c] = make([]float64, nFeat)
	}
	prior := make([]float64, nClass)
	total := make([]float64, nFeat)
	for i, row := range X {
		if len(row) != nFeat {
			return nil, nil, fmt.Errorf("chi2: row %d has %d features, want %d", i, len(row), nFeat)
		}
		for _, v := range row {
			if v < 0 {
				return nil, nil, ErrNegativeFeature
			}
		}
		c := classIdx[y[i]]
		floats.Add(observed[c], row)
		floats.Add(total, row)
		prior[c]++
	}
	floats.Scale(1/float64(len(X)), prior)

	scores = make([]float64, nFeat)
	for j := range nFeat {
		var s float64
		for c := range nClass {
			exp := prior[c] * total[j]
			d := observed[c][j] - exp
			s += d * d / exp
		}
		scores[j] = s
	}

	pvalues = make([]float64, nFeat)
	dof := float64(nClass - 1)
	for j, s := range scores {
		if math.IsNaN(s) {
			pvalues[j] = math.NaN()
			continue
		}
		pvalues[j] = distuv.ChiSquared{K: dof}.Survival(s)
	}
	return scores, pvalues, nil
}
