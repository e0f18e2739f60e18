// Package dataset holds the in-memory table the preprocessing stages pass
// around: a header row plus string cells, read from and written to CSV.
package dataset

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

var ErrNoColumn = errors.New("no such column")

// Frame is a row-major table of string cells.
type Frame struct {
	Header []string
	Rows   [][]string
}

func New(header []string, rows [][]string) *Frame {
	return &Frame{Header: header, Rows: rows}
}

func (f *Frame) Len() int { return len(f.Rows) }

// Index returns the position of column name, or -1.
func (f *Frame) Index(name string) int {
	return slices.Index(f.Header, name)
}

func (f *Frame) MustIndex(name string) (int, error) {
	i := f.Index(name)
	if i < 0 {
		return -1, fmt.Errorf("%w %q", ErrNoColumn, name)
	}
	return i, nil
}

// Column returns a copy of the named column.
func (f *Frame) Column(name string) ([]string, error) {
	j, err := f.MustIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = r[j]
	}
	return out, nil
}

// AddColumn appends a column; values must have one entry per row.
func (f *Frame) AddColumn(name string, values []string) error {
	if len(values) != len(f.Rows) {
		return fmt.Errorf("column %q: %d values for %d rows", name, len(values), len(f.Rows))
	}
	f.Header = append(f.Header, name)
	for i := range f.Rows {
		f.Rows[i] = append(f.Rows[i], values[i])
	}
	return nil
}

// Drop removes the named columns; names not present are ignored.
func (f *Frame) Drop(names ...string) {
	keep := make([]int, 0, len(f.Header))
	for j, h := range f.Header {
		if !slices.Contains(names, h) {
			keep = append(keep, j)
		}
	}
	if len(keep) == len(f.Header) {
		return
	}
	*f = *f.selectColumns(keep)
}

// Select returns a new frame with the named columns in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		j, err := f.MustIndex(n)
		if err != nil {
			return nil, err
		}
		idx[i] = j
	}
	return f.selectColumns(idx), nil
}

func (f *Frame) selectColumns(idx []int) *Frame {
	out := &Frame{Header: make([]string, len(idx)), Rows: make([][]string, len(f.Rows))}
	for k, j := range idx {
		out.Header[k] = f.Header[j]
	}
	for i, r := range f.Rows {
		row := make([]string, len(idx))
		for k, j := range idx {
			row[k] = r[j]
		}
		out.Rows[i] = row
	}
	return out
}

// Take returns a new frame holding the rows at idx, in that order. Row
// slices are shared with f.
func (f *Frame) Take(idx []int) *Frame {
	out := &Frame{Header: slices.Clone(f.Header), Rows: make([][]string, len(idx))}
	for k, i := range idx {
		out.Rows[k] = f.Rows[i]
	}
	return out
}

// Record returns row i as a column->value map.
func (f *Frame) Record(i int) map[string]string {
	m := make(map[string]string, len(f.Header))
	for j, h := range f.Header {
		m[h] = f.Rows[i][j]
	}
	return m
}

// IsMissing reports whether v is one of the cell spellings read as NaN.
func IsMissing(v string) bool {
	switch v {
	case "", "NA", "NaN", "nan", "null":
		return true
	}
	return false
}

// IsNumeric reports whether every non-missing cell of column j parses as a
// float. A column with no values at all counts as numeric.
func (f *Frame) IsNumeric(j int) bool {
	for _, r := range f.Rows {
		v := r[j]
		if IsMissing(v) {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
	}
	return true
}

// Kinds splits the header into numeric and non-numeric column names,
// preserving header order.
func (f *Frame) Kinds() (numeric, categorical []string) {
	for j, h := range f.Header {
		if f.IsNumeric(j) {
			numeric = append(numeric, h)
		} else {
			categorical = append(categorical, h)
		}
	}
	return numeric, categorical
}
