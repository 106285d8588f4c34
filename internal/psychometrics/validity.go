package psychometrics

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Convergent summarizes the inter-item correlations of one dimension.
func (a *Analyzer) Convergent(ds *Dataset, items []string) (*ConvergentResult, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	if len(items) < 2 {
		return nil, metricErr(KindConvergent, ErrInsufficientItems, "need at least 2 items, got %d", len(items))
	}
	m, _, err := ds.completeFor(KindConvergent, items)
	if err != nil {
		return nil, err
	}
	corr, ok := correlationMatrix(m)
	if !ok {
		return nil, metricErr(KindConvergent, ErrDegenerateCorrelation, "correlation undefined for a constant item")
	}
	pairs := upperTriangle(corr)
	avg := mean(pairs)
	n, _ := m.Dims()
	a.computed(KindConvergent, avg, zap.Int("pairs", len(pairs)))
	return &ConvergentResult{
		Items:             append([]string(nil), items...),
		MeanCorrelation:   avg,
		MinCorrelation:    floats.Min(pairs),
		MaxCorrelation:    floats.Max(pairs),
		NCorrelations:     len(pairs),
		CorrelationMatrix: toRows(corr),
		NObservations:     n,
		Interpretation:    a.interpret("convergent", convergentThresholds.Classify(avg)),
	}, nil
}

// Discriminant correlates the sum scores of two item lists over respondents
// complete in both.
func (a *Analyzer) Discriminant(ds *Dataset, first, second []string) (*DiscriminantResult, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	if len(first) == 0 || len(second) == 0 {
		return nil, metricErr(KindDiscriminant, ErrInsufficientItems, "both item lists must be non-empty")
	}
	if err := ds.requireColumns(KindDiscriminant, append(append([]string(nil), first...), second...)...); err != nil {
		return nil, err
	}
	x, y, n, err := alignedScores(ds, first, second)
	if err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, metricErr(KindDiscriminant, ErrNoData, "%d common observations", n)
	}
	r, ok := pearson(x, y)
	if !ok {
		return nil, metricErr(KindDiscriminant, ErrDegenerateCorrelation, "a dimension score has zero variance")
	}
	a.computed(KindDiscriminant, r, zap.Int("observations", n))
	return &DiscriminantResult{
		Correlation:    r,
		FirstItems:     append([]string(nil), first...),
		SecondItems:    append([]string(nil), second...),
		NObservations:  n,
		Interpretation: a.interpret("discriminant", discriminantCode(r)),
	}, nil
}

// Criterion correlates the sum score of items with an external criterion
// column and tests the correlation with Student's t on n-2 degrees of
// freedom.
func (a *Analyzer) Criterion(ds *Dataset, items []string, criterion string) (*CriterionResult, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	if len(items) == 0 {
		return nil, metricErr(KindCriterion, ErrInsufficientItems, "no predictor items")
	}
	if err := ds.requireColumns(KindCriterion, append(append([]string(nil), items...), criterion)...); err != nil {
		return nil, err
	}
	x, y, n, err := alignedScores(ds, items, []string{criterion})
	if err != nil {
		return nil, err
	}
	if n < 3 {
		return nil, metricErr(KindCriterion, ErrNoData, "%d common observations, need at least 3", n)
	}
	r, ok := pearson(x, y)
	if !ok {
		return nil, metricErr(KindCriterion, ErrDegenerateCorrelation, "score or criterion has zero variance")
	}
	t, p, ok := correlationTest(r, n)
	if !ok {
		return nil, metricErr(KindCriterion, ErrDegenerateCorrelation, "|r| = 1")
	}
	a.computed(KindCriterion, r, zap.Float64("p_value", p), zap.Int("observations", n))
	return &CriterionResult{
		Criterion:      criterion,
		Items:          append([]string(nil), items...),
		Correlation:    r,
		TStatistic:     t,
		PValue:         p,
		Significant:    p < a.cfg.Significance,
		NObservations:  n,
		Interpretation: a.interpret("criterion", criterionCode(r, p)),
	}, nil
}

// correlationTest returns t = r*sqrt((n-2)/(1-r^2)) and its two-tailed
// p-value. ok is false for |r| = 1 or n < 3.
func correlationTest(r float64, n int) (float64, float64, bool) {
	if n < 3 || math.Abs(r) >= 1 {
		return 0, 0, false
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(math.Abs(t))
	return t, math.Min(p, 1), true
}

// alignedScores sums each item list per respondent and keeps the
// respondents present in both, in row order.
func alignedScores(ds *Dataset, first, second []string) ([]float64, []float64, int, error) {
	rowsA, sumsA, err := ds.rowScores(first)
	if err != nil {
		return nil, nil, 0, err
	}
	rowsB, sumsB, err := ds.rowScores(second)
	if err != nil {
		return nil, nil, 0, err
	}
	var x, y []float64
	i, j := 0, 0
	for i < len(rowsA) && j < len(rowsB) {
		switch {
		case rowsA[i] == rowsB[j]:
			x = append(x, sumsA[i])
			y = append(y, sumsB[j])
			i++
			j++
		case rowsA[i] < rowsB[j]:
			i++
		default:
			j++
		}
	}
	return x, y, len(x), nil
}
