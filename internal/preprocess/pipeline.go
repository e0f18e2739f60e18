package preprocess

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"pitchflow/internal/dataset"
	"pitchflow/internal/spec"
)

var ErrNotFitted = errors.New("pipeline not fitted")

// Pipeline label-encodes the non-numeric columns of a frame and keeps the
// chi2 percentile of them. Numeric columns are dropped unless Remainder is
// passthrough.
type Pipeline struct {
	Remainder spec.Remainder

	// Categorical and Numeric are the input columns seen at Fit, in header order.
	Categorical []string
	Numeric     []string
	Encoders    []*LabelEncoder // aligned with Categorical
	Selector    *SelectPercentile
	FittedAt    time.Time
}

func New(percentile float64, remainder spec.Remainder) *Pipeline {
	if remainder == "" {
		remainder = spec.RemainderDrop
	}
	return &Pipeline{Remainder: remainder, Selector: NewSelectPercentile(percentile)}
}

func (p *Pipeline) Fitted() bool { return !p.FittedAt.IsZero() }

// Fit learns encoders and the feature mask from f against labels y.
func (p *Pipeline) Fit(f *dataset.Frame, y []string) error {
	if len(y) != f.Len() {
		return fmt.Errorf("pipeline: %d labels for %d rows", len(y), f.Len())
	}
	p.Numeric, p.Categorical = f.Kinds()
	p.Encoders = make([]*LabelEncoder, len(p.Categorical))

	X := make([][]float64, f.Len())
	for i := range X {
		X[i] = make([]float64, len(p.Categorical))
	}
	for k, name := range p.Categorical {
		col, err := f.Column(name)
		if err != nil {
			return err
		}
		enc := &LabelEncoder{}
		enc.Fit(col)
		p.Encoders[k] = enc
		for i, v := range enc.Transform(col) {
			X[i][k] = v
		}
	}

	if len(p.Categorical) > 0 && f.Len() > 0 {
		if err := p.Selector.Fit(X, y); err != nil {
			return fmt.Errorf("pipeline: %w", err)
		}
	} else {
		p.Selector.Mask = make([]bool, len(p.Categorical))
		p.Selector.Scores = make([]float64, len(p.Categorical))
		p.Selector.PValues = make([]float64, len(p.Categorical))
	}
	p.FittedAt = time.Now().UTC()
	return nil
}

// Columns returns the output column names of Transform. They are also the
// input columns it reads, encoded in place.
func (p *Pipeline) Columns() []string {
	var out []string
	for _, j := range p.Selector.Selected() {
		out = append(out, p.Categorical[j])
	}
	if p.Remainder == spec.RemainderPassthrough {
		out = append(out, p.Numeric...)
	}
	return out
}

// Transform applies the fitted pipeline. Columns seen at Fit must be present.
func (p *Pipeline) Transform(f *dataset.Frame) (*dataset.Frame, error) {
	if !p.Fitted() {
		return nil, ErrNotFitted
	}
	in, err := f.Select(p.Columns()...)
	if err != nil {
		return nil, err
	}
	sel := p.Selector.Selected()

	out := dataset.New(p.Columns(), make([][]string, in.Len()))
	for r, row := range in.Rows {
		vals := make([]string, len(row))
		for k, v := range row {
			if k < len(sel) {
				v = strconv.Itoa(p.Encoders[sel[k]].Code(v))
			}
			vals[k] = v
		}
		out.Rows[r] = vals
	}
	return out, nil
}

func (p *Pipeline) FitTransform(f *dataset.Frame, y []string) (*dataset.Frame, error) {
	if err := p.Fit(f, y); err != nil {
		return nil, err
	}
	return p.Transform(f)
}

// TransformRecord applies the pipeline to one column->value record and
// returns the output columns with their values. Only the columns the output
// depends on need to be present.
func (p *Pipeline) TransformRecord(rec map[string]string) ([]string, []string, error) {
	if !p.Fitted() {
		return nil, nil, ErrNotFitted
	}
	header := p.Columns()
	row := make([]string, len(header))
	for i, h := range header {
		v, ok := rec[h]
		if !ok {
			return nil, nil, fmt.Errorf("%w %q", dataset.ErrNoColumn, h)
		}
		row[i] = v
	}
	out, err := p.Transform(dataset.New(header, [][]string{row}))
	if err != nil {
		return nil, nil, err
	}
	return out.Header, out.Rows[0], nil
}
