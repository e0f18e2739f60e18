package preprocess

import (
	"slices"
)

// Unknown is the code given to values not seen during Fit.
const Unknown = -1

// LabelEncoder maps each distinct value to its index in the sorted class list.
type LabelEncoder struct {
	Classes []string
	index   map[string]int
}

func (e *LabelEncoder) Fit(values []string) {
	seen := make(map[string]struct{}, len(values))
	classes := make([]string, 0)
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			classes = append(classes, v)
		}
	}
	slices.Sort(classes)
	e.Classes = classes
	e.reindex()
}

func (e *LabelEncoder) reindex() {
	e.index = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.index[c] = i
	}
}

func (e *LabelEncoder) Code(v string) int {
	if e.index == nil {
		e.reindex()
	}
	if i, ok := e.index[v]; ok {
		return i
	}
	return Unknown
}

func (e *LabelEncoder) Transform(values []string) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(e.Code(v))
	}
	return out
}
