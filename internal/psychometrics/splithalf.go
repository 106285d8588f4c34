package psychometrics

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// SplitHalf correlates the sum of the first floor(k/2) items with the sum of
// the rest and applies the Spearman-Brown correction. The split follows the
// order of items.
func (a *Analyzer) SplitHalf(ds *Dataset, items []string) (*SplitHalfResult, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	if len(items) < 2 {
		return nil, metricErr(KindSplitHalf, ErrInsufficientItems, "need at least 2 items, got %d", len(items))
	}
	m, _, err := ds.completeFor(KindSplitHalf, items)
	if err != nil {
		return nil, err
	}
	mid := len(items) / 2
	n, k := m.Dims()
	first := rowSums(m.Slice(0, n, 0, mid).(*mat.Dense))
	second := rowSums(m.Slice(0, n, mid, k).(*mat.Dense))

	r, ok := pearson(first, second)
	if !ok {
		return nil, metricErr(KindSplitHalf, ErrDegenerateCorrelation, "half scores have zero variance")
	}
	reliability, ok := spearmanBrown(r)
	if !ok {
		return nil, metricErr(KindSplitHalf, ErrDegenerateCorrelation, "correlation between halves is -1")
	}
	a.computed(KindSplitHalf, reliability, zap.Float64("r", r), zap.Int("observations", n))
	return &SplitHalfResult{
		CorrelationHalves: r,
		SpearmanBrown:     reliability,
		FirstHalf:         append([]string(nil), items[:mid]...),
		SecondHalf:        append([]string(nil), items[mid:]...),
		NObservations:     n,
		Interpretation:    a.interpret("reliability", a.cfg.Reliability.Classify(reliability)),
	}, nil
}

// spearmanBrown projects a half-test correlation to full length: 2r/(1+r).
func spearmanBrown(r float64) (float64, bool) {
	if r <= -1 {
		return 0, false
	}
	return 2 * r / (1 + r), true
}
