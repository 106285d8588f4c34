package psychometrics

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Missing is the marker for an absent cell.
var Missing = math.NaN()

// IsMissing reports whether v marks an absent cell.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// Dataset is a read-only table of respondents (rows) by items (columns).
// It is never modified after NewDataset returns, so it can be shared between
// concurrent analyses.
type Dataset struct {
	names []string
	index map[string]int
	cols  [][]float64
	rows  int
}

// NewDataset copies rows (each of len(columns)) into a column-major table.
// Missing cells are NaN.
func NewDataset(columns []string, rows [][]float64) (*Dataset, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("column %d: empty name", i)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("column %q: duplicate name", name)
		}
		index[name] = i
	}
	cols := make([][]float64, len(columns))
	for j := range cols {
		cols[j] = make([]float64, len(rows))
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d: got %d values, want %d", i, len(row), len(columns))
		}
		for j, v := range row {
			cols[j][i] = v
		}
	}
	return &Dataset{
		names: append([]string(nil), columns...),
		index: index,
		cols:  cols,
		rows:  len(rows),
	}, nil
}

// Rows returns the number of respondents.
func (d *Dataset) Rows() int { return d.rows }

// Columns returns the column names in order.
func (d *Dataset) Columns() []string { return append([]string(nil), d.names...) }

// Has reports whether the column exists.
func (d *Dataset) Has(column string) bool {
	_, ok := d.index[column]
	return ok
}

// Column returns a copy of the column values.
func (d *Dataset) Column(column string) ([]float64, error) {
	j, ok := d.index[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, column)
	}
	return append([]float64(nil), d.cols[j]...), nil
}

// Value returns the cell at (column, row); ok is false when the cell is
// missing or out of range.
func (d *Dataset) Value(column string, row int) (float64, bool) {
	j, ok := d.index[column]
	if !ok || row < 0 || row >= d.rows {
		return 0, false
	}
	v := d.cols[j][row]
	return v, !IsMissing(v)
}

// Complete performs listwise deletion over columns. It returns the surviving
// rows as a len(kept) x len(columns) matrix and the original row indices.
// A nil matrix with no error means no row survived.
func (d *Dataset) Complete(columns ...string) (*mat.Dense, []int, error) {
	idx := make([]int, len(columns))
	for i, c := range columns {
		j, ok := d.index[c]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrMissingColumn, c)
		}
		idx[i] = j
	}
	kept := make([]int, 0, d.rows)
	for r := 0; r < d.rows; r++ {
		complete := true
		for _, j := range idx {
			if IsMissing(d.cols[j][r]) {
				complete = false
				break
			}
		}
		if complete {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 || len(columns) == 0 {
		return nil, kept, nil
	}
	data := make([]float64, 0, len(kept)*len(idx))
	for _, r := range kept {
		for _, j := range idx {
			data = append(data, d.cols[j][r])
		}
	}
	return mat.NewDense(len(kept), len(idx), data), kept, nil
}

// completeFor is Complete with the engine's error mapping for metric.
func (d *Dataset) completeFor(metric MetricKind, items []string) (*mat.Dense, []int, error) {
	if err := d.requireColumns(metric, items...); err != nil {
		return nil, nil, err
	}
	m, kept, err := d.Complete(items...)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, metricErr(metric, ErrNoData, "no complete rows across %d items", len(items))
	}
	return m, kept, nil
}

func (d *Dataset) requireColumns(metric MetricKind, columns ...string) error {
	for _, c := range columns {
		if !d.Has(c) {
			return metricErr(metric, ErrMissingColumn, "%q", c)
		}
	}
	return nil
}

// rowScores sums each complete row of items. It returns the original row
// indices in ascending order alongside their sums.
func (d *Dataset) rowScores(items []string) ([]int, []float64, error) {
	m, kept, err := d.Complete(items...)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, nil
	}
	return kept, rowSums(m), nil
}
