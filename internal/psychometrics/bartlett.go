package psychometrics

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Bartlett tests H0: the item correlation matrix is an identity matrix.
func (a *Analyzer) Bartlett(ds *Dataset, items []string) (*BartlettResult, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	if len(items) < 2 {
		return nil, metricErr(KindBartlett, ErrInsufficientItems, "need at least 2 items, got %d", len(items))
	}
	m, _, err := ds.completeFor(KindBartlett, items)
	if err != nil {
		return nil, err
	}
	corr, ok := correlationMatrix(m)
	if !ok {
		return nil, metricErr(KindBartlett, ErrSingularMatrix, "correlation undefined for a constant item")
	}
	det := mat.Det(corr)
	if !(det > 0) {
		return nil, metricErr(KindBartlett, ErrSingularMatrix, "determinant %g is not positive", det)
	}

	n, p := m.Dims()
	chi, df, pValue := bartlettStatistic(det, n, p)
	suitable := pValue < a.cfg.Significance
	code := "retain"
	if suitable {
		code = "reject"
	}
	a.computed(KindBartlett, chi, zap.Float64("p_value", pValue), zap.Int("df", df))
	return &BartlettResult{
		ChiSquare:        chi,
		DegreesOfFreedom: df,
		PValue:           pValue,
		Determinant:      det,
		Suitable:         suitable,
		Significance:     a.cfg.Significance,
		Interpretation:   a.interpret("bartlett", code),
		NVariables:       p,
		NObservations:    n,
	}, nil
}

// bartlettStatistic returns chi2 = -((n-1) - (2p+5)/6) * ln(det), its
// degrees of freedom p(p-1)/2 and the upper-tail p-value.
func bartlettStatistic(det float64, n, p int) (float64, int, float64) {
	chi := -(float64(n-1) - float64(2*p+5)/6) * math.Log(det)
	if !(chi > 0) {
		chi = 0
	}
	df := p * (p - 1) / 2
	pValue := distuv.ChiSquared{K: float64(df)}.Survival(chi)
	return chi, df, pValue
}
