package psychometrics

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// KMO computes the Kaiser-Meyer-Olkin measure of sampling adequacy, per item
// and overall.
func (a *Analyzer) KMO(ds *Dataset, items []string) (*KMOResult, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	if len(items) < 2 {
		return nil, metricErr(KindKMO, ErrInsufficientItems, "need at least 2 items, got %d", len(items))
	}
	m, _, err := ds.completeFor(KindKMO, items)
	if err != nil {
		return nil, err
	}
	corr, ok := correlationMatrix(standardize(m))
	if !ok {
		return nil, metricErr(KindKMO, ErrSingularMatrix, "correlation undefined for a constant item")
	}
	var inv mat.Dense
	if err := inv.Inverse(corr); err != nil {
		return nil, metricErr(KindKMO, ErrSingularMatrix, "%v", err)
	}

	p := len(items)
	perItem := make([]ItemKMO, p)
	values := make([]float64, p)
	for i := 0; i < p; i++ {
		var sumCorr, sumPartial float64
		for j := 0; j < p; j++ {
			if i == j {
				continue
			}
			r := corr.At(i, j)
			sumCorr += r * r
			denom := inv.At(i, i) * inv.At(j, j)
			if denom <= 0 {
				return nil, metricErr(KindKMO, ErrSingularMatrix, "non-positive diagonal in inverse")
			}
			partial := -inv.At(i, j) / math.Sqrt(denom)
			sumPartial += partial * partial
		}
		var v float64
		if sumCorr+sumPartial > 0 {
			v = sumCorr / (sumCorr + sumPartial)
		}
		values[i] = v
		perItem[i] = ItemKMO{Item: items[i], KMO: v}
	}
	global := mean(values)
	n, _ := m.Dims()
	a.computed(KindKMO, global, zap.Int("items", p), zap.Int("observations", n))
	return &KMOResult{
		KMO:            global,
		Interpretation: a.interpret("kmo", a.cfg.KMO.Classify(global)),
		PerItem:        perItem,
		NVariables:     p,
		NObservations:  n,
	}, nil
}
