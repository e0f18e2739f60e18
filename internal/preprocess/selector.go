package preprocess

import (
	"fmt"
	"math"
	"slices"
)

// SelectPercentile keeps the highest-scoring percentile of features.
type SelectPercentile struct {
	Percentile float64

	Scores  []float64
	PValues []float64
	Mask    []bool
}

func NewSelectPercentile(percentile float64) *SelectPercentile {
	return &SelectPercentile{Percentile: percentile}
}

func (s *SelectPercentile) Fit(X [][]float64, y []string) error {
	if s.Percentile < 0 || s.Percentile > 100 {
		return fmt.Errorf("select percentile: %v outside [0,100]", s.Percentile)
	}
	scores, pvalues, err := Chi2(X, y)
	if err != nil {
		return err
	}
	s.Scores, s.PValues = scores, pvalues
	s.Mask = percentileMask(scores, s.Percentile)
	return nil
}

// Selected returns the indices of kept features.
func (s *SelectPercentile) Selected() []int {
	var out []int
	for j, keep := range s.Mask {
		if keep {
			out = append(out, j)
		}
	}
	return out
}

// percentileMask keeps scores strictly above the (100-p)th percentile, then
// fills up to floor(n*p/100) with ties at the threshold in column order.
func percentileMask(scores []float64, p float64) []bool {
	n := len(scores)
	mask := make([]bool, n)
	switch {
	case n == 0 || p == 0:
		return mask
	case p == 100:
		for j := range mask {
			mask[j] = true
		}
		return mask
	}

	clean := make([]float64, n)
	for j, v := range scores {
		if math.IsNaN(v) {
			v = -math.MaxFloat64
		}
		clean[j] = v
	}
	threshold := percentile(clean, 100-p)

	kept := 0
	var ties []int
	for j, v := range clean {
		switch {
		case v > threshold:
			mask[j] = true
			kept++
		case v == threshold:
			ties = append(ties, j)
		}
	}
	room := int(float64(n)*p/100) - kept
	for _, j := range ties {
		if room <= 0 {
			break
		}
		mask[j] = true
		room--
	}
	return mask
}

// percentile uses linear interpolation between closest ranks.
func percentile(values []float64, q float64) float64 {
	s := slices.Clone(values)
	slices.Sort(s)
	pos := float64(len(s)-1) * q / 100
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	if frac == 0 || lo == hi {
		return s[lo]
	}
	return s[lo]*(1-frac) + s[hi]*frac
}
