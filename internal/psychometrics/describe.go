package psychometrics

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ItemDescriptive summarizes the valid responses to one item.
type ItemDescriptive struct {
	Item    string   `json:"item"`
	N       int      `json:"n"`
	Missing int      `json:"missing"`
	Mean    *float64 `json:"mean"`
	SD      *float64 `json:"sd"`
	Min     *float64 `json:"min"`
	Median  *float64 `json:"median"`
	Max     *float64 `json:"max"`
}

// Describe returns per-item descriptives. Each item is summarized over its
// own valid cells, not listwise. Statistics that need more observations than
// the item has are nil.
func Describe(ds *Dataset, items []string) ([]ItemDescriptive, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	out := make([]ItemDescriptive, 0, len(items))
	for _, item := range items {
		col, err := ds.Column(item)
		if err != nil {
			return nil, err
		}
		valid := make([]float64, 0, len(col))
		for _, v := range col {
			if !IsMissing(v) {
				valid = append(valid, v)
			}
		}
		d := ItemDescriptive{Item: item, N: len(valid), Missing: len(col) - len(valid)}
		if len(valid) > 0 {
			sort.Float64s(valid)
			m := stat.Mean(valid, nil)
			lo, hi := floats.Min(valid), floats.Max(valid)
			med := stat.Quantile(0.5, stat.Empirical, valid, nil)
			if len(valid)%2 == 0 {
				med = (med + valid[len(valid)/2]) / 2
			}
			d.Mean, d.Min, d.Max, d.Median = &m, &lo, &hi, &med
		}
		if len(valid) > 1 {
			sd := stat.StdDev(valid, nil)
			d.SD = &sd
		}
		out = append(out, d)
	}
	return out, nil
}
