package psychometrics

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// kaiserTolerance absorbs rounding in eigenvalues that are exactly 1 in
// theory, such as those of an identity correlation matrix.
const kaiserTolerance = 1e-9

// Factorial runs an exploratory factor analysis by iterated principal-axis
// factoring. When nFactors <= 0 the factor count is the number of
// correlation-matrix eigenvalues greater than 1.
func (a *Analyzer) Factorial(ds *Dataset, items []string, nFactors int) (*FactorialResult, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	if len(items) < 3 {
		return nil, metricErr(KindFactorial, ErrInsufficientItems, "need at least 3 items, got %d", len(items))
	}
	m, _, err := ds.completeFor(KindFactorial, items)
	if err != nil {
		return nil, err
	}
	corr, ok := correlationMatrix(standardize(m))
	if !ok {
		return nil, metricErr(KindFactorial, ErrSingularMatrix, "correlation undefined for a constant item")
	}
	eigenvalues, _, ok := eigenDesc(corr)
	if !ok {
		return nil, metricErr(KindFactorial, ErrSingularMatrix, "eigen-decomposition failed")
	}
	p := len(items)
	if nFactors <= 0 {
		for _, v := range eigenvalues {
			if v > 1+kaiserTolerance {
				nFactors++
			}
		}
		if nFactors == 0 {
			return nil, metricErr(KindFactorial, ErrInsufficientFactors, "no eigenvalue above 1")
		}
	}
	if nFactors > p {
		return nil, metricErr(KindFactorial, ErrInsufficientItems, "%d factors requested from %d items", nFactors, p)
	}

	var inv mat.Dense
	if err := inv.Inverse(corr); err != nil {
		return nil, metricErr(KindFactorial, ErrSingularMatrix, "%v", err)
	}
	communalities := make([]float64, p)
	for i := range communalities {
		communalities[i] = clamp01(1 - 1/inv.At(i, i))
	}

	loadings, iterations, converged, err := a.principalAxis(corr, communalities, nFactors)
	if err != nil {
		return nil, err
	}

	ss := make([]float64, nFactors)
	rows := make([][]float64, p)
	for i := 0; i < p; i++ {
		rows[i] = make([]float64, nFactors)
		communalities[i] = 0
		for f := 0; f < nFactors; f++ {
			l := loadings.At(i, f)
			rows[i][f] = l
			ss[f] += l * l
			communalities[i] += l * l
		}
	}
	var ssTotal float64
	for _, v := range ss {
		ssTotal += v
	}
	ratio := make([]float64, nFactors)
	proportion := make([]float64, nFactors)
	var totalRatio, cumulative float64
	factors := make([]string, nFactors)
	for f := range ss {
		if ssTotal > 0 {
			ratio[f] = ss[f] / ssTotal
		}
		proportion[f] = ss[f] / float64(p)
		totalRatio += ratio[f]
		cumulative += proportion[f]
		factors[f] = fmt.Sprintf("Factor_%d", f+1)
	}

	n, _ := m.Dims()
	a.computed(KindFactorial, cumulative,
		zap.Int("factors", nFactors), zap.Int("iterations", iterations), zap.Bool("converged", converged))
	return &FactorialResult{
		Items:                  append([]string(nil), items...),
		NFactors:               nFactors,
		Factors:                factors,
		Loadings:               rows,
		Eigenvalues:            eigenvalues,
		Communalities:          communalities,
		SSLoadings:             ss,
		ExplainedVarianceRatio: ratio,
		TotalVarianceExplained: totalRatio,
		ProportionOfVariance:   proportion,
		CumulativeVariance:     cumulative,
		Iterations:             iterations,
		Converged:              converged,
		NObservations:          n,
		Interpretation:         a.interpret("factorial", "extracted"),
	}, nil
}

// principalAxis iterates the reduced correlation matrix (communalities on the
// diagonal) until communalities move less than the configured tolerance or
// the iteration cap is hit. Each returned factor has a non-negative loading
// sum.
func (a *Analyzer) principalAxis(corr *mat.SymDense, h []float64, nFactors int) (*mat.Dense, int, bool, error) {
	p := len(h)
	reduced := mat.NewSymDense(p, nil)
	loadings := mat.NewDense(p, nFactors, nil)
	converged := false
	iterations := 0
	for iterations < a.cfg.MaxFactorIterations {
		iterations++
		reduced.CopySym(corr)
		for i, v := range h {
			reduced.SetSym(i, i, v)
		}
		vals, vecs, ok := eigenDesc(reduced)
		if !ok {
			return nil, iterations, false, metricErr(KindFactorial, ErrSingularMatrix, "eigen-decomposition failed at iteration %d", iterations)
		}
		delta := 0.0
		for i := 0; i < p; i++ {
			var hi float64
			for f := 0; f < nFactors; f++ {
				l := vecs.At(i, f) * math.Sqrt(math.Max(vals[f], 0))
				loadings.Set(i, f, l)
				hi += l * l
			}
			hi = clamp01(hi)
			delta = math.Max(delta, math.Abs(hi-h[i]))
			h[i] = hi
		}
		if delta < a.cfg.FactorTolerance {
			converged = true
			break
		}
	}
	for f := 0; f < nFactors; f++ {
		var sum float64
		for i := 0; i < p; i++ {
			sum += loadings.At(i, f)
		}
		if sum < 0 {
			for i := 0; i < p; i++ {
				loadings.Set(i, f, -loadings.At(i, f))
			}
		}
	}
	return loadings, iterations, converged, nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
