package psychometrics

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// CronbachAlpha computes internal consistency over items after listwise
// deletion. Variances use the sample (n-1) denominator.
func (a *Analyzer) CronbachAlpha(ds *Dataset, items []string) (*AlphaResult, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	if len(items) < 2 {
		return nil, metricErr(KindAlpha, ErrInsufficientItems, "need at least 2 items, got %d", len(items))
	}
	m, _, err := ds.completeFor(KindAlpha, items)
	if err != nil {
		return nil, err
	}
	cols := columns(m)
	alpha, ok := alphaOf(cols)
	if !ok {
		return nil, metricErr(KindAlpha, ErrDegenerateCorrelation, "total score has zero variance")
	}

	totals := rowSums(m)
	analysis := make([]ItemAnalysis, len(items))
	for j, item := range items {
		ia := ItemAnalysis{Item: item}
		rest := make([]float64, len(totals))
		for i := range totals {
			rest[i] = totals[i] - cols[j][i]
		}
		if r, ok := pearson(cols[j], rest); ok {
			ia.ItemTotalCorrelation = &r
		}
		if len(items)-1 >= 2 {
			remaining := make([][]float64, 0, len(cols)-1)
			remaining = append(remaining, cols[:j]...)
			remaining = append(remaining, cols[j+1:]...)
			if v, ok := alphaOf(remaining); ok {
				ia.AlphaIfDeleted = &v
			}
		}
		analysis[j] = ia
	}

	var meanInter *float64
	if corr, ok := correlationMatrix(m); ok {
		v := mean(upperTriangle(corr))
		meanInter = &v
	}

	n, _ := m.Dims()
	a.computed(KindAlpha, alpha, zap.Int("items", len(items)), zap.Int("observations", n))
	return &AlphaResult{
		Alpha:                    alpha,
		Interpretation:           a.interpret("reliability", a.cfg.Reliability.Classify(alpha)),
		NItems:                   len(items),
		NObservations:            n,
		Items:                    append([]string(nil), items...),
		ItemAnalysis:             analysis,
		MeanInterItemCorrelation: meanInter,
	}, nil
}

// alphaOf applies k/(k-1) * (1 - sum(var_i)/var(total)). ok is false when the
// total score is constant.
func alphaOf(cols [][]float64) (float64, bool) {
	k := len(cols)
	if k < 2 || len(cols[0]) < 2 {
		return 0, false
	}
	totals := make([]float64, len(cols[0]))
	var itemVars float64
	for _, col := range cols {
		itemVars += stat.Variance(col, nil)
		for i, v := range col {
			totals[i] += v
		}
	}
	totalVar := stat.Variance(totals, nil)
	if totalVar == 0 {
		return 0, false
	}
	kf := float64(k)
	return (kf / (kf - 1)) * (1 - itemVars/totalVar), true
}
