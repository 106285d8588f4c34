package psychometrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func rowSums(m *mat.Dense) []float64 {
	r, _ := m.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = mat.Sum(m.RowView(i))
	}
	return out
}

func columns(m *mat.Dense) [][]float64 {
	_, c := m.Dims()
	out := make([][]float64, c)
	for j := range out {
		out[j] = mat.Col(nil, j, m)
	}
	return out
}

// pearson returns the correlation of x and y clamped to [-1, 1]. ok is false
// when either series has zero variance or fewer than two points.
func pearson(x, y []float64) (float64, bool) {
	if len(x) < 2 || len(x) != len(y) {
		return 0, false
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return math.Max(-1, math.Min(1, r)), true
}

// standardize centers every column and scales it to unit population
// variance. Zero-variance columns are only centered.
func standardize(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	for j, col := range columns(m) {
		mean, sd := stat.PopMeanStdDev(col, nil)
		for i, v := range col {
			z := v - mean
			if sd > 0 {
				z /= sd
			}
			out.Set(i, j, z)
		}
	}
	return out
}

// correlationMatrix returns the Pearson correlation matrix of the columns of
// m. ok is false when any entry is undefined.
func correlationMatrix(m *mat.Dense) (*mat.SymDense, bool) {
	cols := columns(m)
	p := len(cols)
	corr := mat.NewSymDense(p, nil)
	ok := true
	for i := 0; i < p; i++ {
		corr.SetSym(i, i, 1)
		for j := i + 1; j < p; j++ {
			r, defined := pearson(cols[i], cols[j])
			if !defined {
				ok = false
				r = math.NaN()
			}
			corr.SetSym(i, j, r)
		}
	}
	return corr, ok
}

// upperTriangle returns the strictly upper-triangular entries row by row.
func upperTriangle(s *mat.SymDense) []float64 {
	p := s.SymmetricDim()
	out := make([]float64, 0, p*(p-1)/2)
	for i := 0; i < p; i++ {
		for j := i + 1; j < p; j++ {
			out = append(out, s.At(i, j))
		}
	}
	return out
}

func toRows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		for j := range out[i] {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

// eigenDesc decomposes s and returns eigenvalues in descending order with
// the matching eigenvectors as columns.
func eigenDesc(s *mat.SymDense) ([]float64, *mat.Dense, bool) {
	var es mat.EigenSym
	if !es.Factorize(s, true) {
		return nil, nil, false
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	order := make([]int, len(vals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return vals[order[a]] > vals[order[b]] })

	p := len(vals)
	sortedVals := make([]float64, p)
	sortedVecs := mat.NewDense(p, p, nil)
	for k, idx := range order {
		sortedVals[k] = vals[idx]
		for i := 0; i < p; i++ {
			sortedVecs.Set(i, k, vecs.At(i, idx))
		}
	}
	return sortedVals, sortedVecs, true
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}
