package psychometrics

import (
	"math"
	"sort"
	"strconv"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// GroupSummary describes the valid values of one level of a grouping
// column. SD is nil for fewer than two observations.
type GroupSummary struct {
	Group string   `json:"group"`
	N     int      `json:"n"`
	Mean  float64  `json:"mean"`
	SD    *float64 `json:"sd"`
}

type OneSampleTTestResult struct {
	Variable       string         `json:"variable"`
	PopulationMean float64        `json:"population_mean"`
	SampleMean     float64        `json:"sample_mean"`
	SD             float64        `json:"sd"`
	N              int            `json:"n"`
	TStatistic     float64        `json:"t_statistic"`
	DF             float64        `json:"df"`
	PValue         float64        `json:"p_value"`
	CILower        float64        `json:"ci_lower"`
	CIUpper        float64        `json:"ci_upper"`
	Significant    bool           `json:"significant"`
	Interpretation Interpretation `json:"interpretation"`
}

func (*OneSampleTTestResult) Kind() MetricKind { return KindOneSampleT }

// IndependentTTestResult compares the two levels of a grouping column.
// Levene's statistic is nil when every group is constant.
type IndependentTTestResult struct {
	Variable        string         `json:"variable"`
	GroupVariable   string         `json:"group_variable"`
	Groups          []GroupSummary `json:"groups"`
	LeveneStatistic *float64       `json:"levene_statistic"`
	LevenePValue    *float64       `json:"levene_p_value"`
	EqualVariance   bool           `json:"equal_variance"`
	TStatistic      float64        `json:"t_statistic"`
	DF              float64        `json:"df"`
	PValue          float64        `json:"p_value"`
	CohenD          float64        `json:"cohen_d"`
	Significant     bool           `json:"significant"`
	Interpretation  Interpretation `json:"interpretation"`
	EffectSize      Interpretation `json:"effect_size"`
}

func (*IndependentTTestResult) Kind() MetricKind { return KindIndependentT }

// PairwiseComparison is one post-hoc Student t-test between two groups.
// TStatistic and PValue are nil when both groups are constant.
type PairwiseComparison struct {
	First          string   `json:"first"`
	Second         string   `json:"second"`
	MeanDifference float64  `json:"mean_difference"`
	TStatistic     *float64 `json:"t_statistic"`
	PValue         *float64 `json:"p_value"`
	Significant    bool     `json:"significant"`
}

type ANOVAResult struct {
	Variable       string               `json:"variable"`
	GroupVariable  string               `json:"group_variable"`
	Groups         []GroupSummary       `json:"groups"`
	FStatistic     float64              `json:"f_statistic"`
	DFBetween      int                  `json:"df_between"`
	DFWithin       int                  `json:"df_within"`
	PValue         float64              `json:"p_value"`
	EtaSquared     float64              `json:"eta_squared"`
	Significant    bool                 `json:"significant"`
	Interpretation Interpretation       `json:"interpretation"`
	EffectSize     Interpretation       `json:"effect_size"`
	PostHoc        []PairwiseComparison `json:"post_hoc,omitempty"`
}

func (*ANOVAResult) Kind() MetricKind { return KindANOVA }

// Correlation methods accepted by CorrelationTest.
const (
	MethodPearson  = "pearson"
	MethodSpearman = "spearman"
	MethodKendall  = "kendall"
)

type CorrelationTestResult struct {
	First          string         `json:"first"`
	Second         string         `json:"second"`
	Method         string         `json:"method"`
	N              int            `json:"n"`
	Correlation    float64        `json:"correlation"`
	PValue         float64        `json:"p_value"`
	Significant    bool           `json:"significant"`
	Strength       Interpretation `json:"strength"`
	Interpretation Interpretation `json:"interpretation"`
}

func (*CorrelationTestResult) Kind() MetricKind { return KindCorrelation }

// ChiSquareResult is a test of independence on the contingency table of two
// categorical columns. Table[i][j] counts rows with RowLevels[i] and
// ColumnLevels[j].
type ChiSquareResult struct {
	First          string         `json:"first"`
	Second         string         `json:"second"`
	RowLevels      []string       `json:"row_levels"`
	ColumnLevels   []string       `json:"column_levels"`
	Table          [][]int        `json:"table"`
	N              int            `json:"n"`
	ChiSquare      float64        `json:"chi_square"`
	DF             int            `json:"df"`
	YatesCorrected bool           `json:"yates_corrected"`
	PValue         float64        `json:"p_value"`
	CramersV       float64        `json:"cramers_v"`
	Significant    bool           `json:"significant"`
	Interpretation Interpretation `json:"interpretation"`
	EffectSize     Interpretation `json:"effect_size"`
}

func (*ChiSquareResult) Kind() MetricKind { return KindChiSquare }

// RegressionResult is an ordinary least squares fit of Dependent on
// Independent. FStatistic is nil for a perfect fit, whose p-value is 0.
type RegressionResult struct {
	Dependent      string         `json:"dependent"`
	Independent    string         `json:"independent"`
	N              int            `json:"n"`
	Intercept      float64        `json:"intercept"`
	Slope          float64        `json:"slope"`
	RSquared       float64        `json:"r_squared"`
	RMSE           float64        `json:"rmse"`
	FStatistic     *float64       `json:"f_statistic"`
	PValue         float64        `json:"p_value"`
	Significant    bool           `json:"significant"`
	Interpretation Interpretation `json:"interpretation"`
}

func (*RegressionResult) Kind() MetricKind { return KindRegression }

// OneSampleTTest tests whether the mean of variable differs from mu, and
// reports the (1 - significance) confidence interval of the mean.
func (a *Analyzer) OneSampleTTest(ds *Dataset, variable string, mu float64) (*OneSampleTTestResult, error) {
	xs, err := validValues(ds, KindOneSampleT, variable)
	if err != nil {
		return nil, err
	}
	n := len(xs)
	if n < 2 {
		return nil, metricErr(KindOneSampleT, ErrNoData, "%d observations, need at least 2", n)
	}
	m, sd := stat.MeanStdDev(xs, nil)
	if sd == 0 {
		return nil, metricErr(KindOneSampleT, ErrDegenerateCorrelation, "%q has zero variance", variable)
	}
	df := float64(n - 1)
	se := sd / math.Sqrt(float64(n))
	t := (m - mu) / se
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := math.Min(2*dist.Survival(math.Abs(t)), 1)
	margin := dist.Quantile(1-a.cfg.Significance/2) * se
	a.computed(KindOneSampleT, t, zap.Float64("p_value", p), zap.Int("observations", n))
	return &OneSampleTTestResult{
		Variable:       variable,
		PopulationMean: mu,
		SampleMean:     m,
		SD:             sd,
		N:              n,
		TStatistic:     t,
		DF:             df,
		PValue:         p,
		CILower:        m - margin,
		CIUpper:        m + margin,
		Significant:    p < a.cfg.Significance,
		Interpretation: a.hypothesis(p),
	}, nil
}

// IndependentTTest compares variable between the two levels of group. A
// median-centred Levene test picks Student's pooled test when the variances
// are homogeneous and Welch's test otherwise.
func (a *Analyzer) IndependentTTest(ds *Dataset, variable, group string) (*IndependentTTestResult, error) {
	levels, values, err := groupValues(ds, KindIndependentT, variable, group)
	if err != nil {
		return nil, err
	}
	if len(levels) != 2 {
		return nil, metricErr(KindIndependentT, ErrInvalidGroups, "%q has %d levels, need exactly 2", group, len(levels))
	}
	x, y := values[0], values[1]
	n1, n2 := float64(len(x)), float64(len(y))
	if len(x) < 2 || len(y) < 2 {
		return nil, metricErr(KindIndependentT, ErrNoData, "each group needs at least 2 observations")
	}
	m1, v1 := stat.MeanVariance(x, nil)
	m2, v2 := stat.MeanVariance(y, nil)

	res := &IndependentTTestResult{
		Variable:      variable,
		GroupVariable: group,
		Groups:        summarize(levels, values),
		EqualVariance: true,
	}
	if w, p, ok := levene(values); ok {
		res.LeveneStatistic, res.LevenePValue = &w, &p
		res.EqualVariance = p >= a.cfg.Significance
	}

	pooled := ((n1-1)*v1 + (n2-1)*v2) / (n1 + n2 - 2)
	if pooled == 0 {
		return nil, metricErr(KindIndependentT, ErrDegenerateCorrelation, "both groups are constant")
	}
	var se, df float64
	if res.EqualVariance {
		se = math.Sqrt(pooled * (1/n1 + 1/n2))
		df = n1 + n2 - 2
	} else {
		a1, a2 := v1/n1, v2/n2
		se = math.Sqrt(a1 + a2)
		df = (a1 + a2) * (a1 + a2) / (a1*a1/(n1-1) + a2*a2/(n2-1))
	}
	res.TStatistic = (m1 - m2) / se
	res.DF = df
	res.PValue = twoTailedT(res.TStatistic, df)
	res.CohenD = (m1 - m2) / math.Sqrt(pooled)
	res.Significant = res.PValue < a.cfg.Significance
	res.Interpretation = a.hypothesis(res.PValue)
	res.EffectSize = a.interpret("cohen_d", cohenDCode(res.CohenD))
	a.computed(KindIndependentT, res.TStatistic,
		zap.Float64("p_value", res.PValue),
		zap.Bool("equal_variance", res.EqualVariance),
		zap.Float64("cohen_d", res.CohenD))
	return res, nil
}

// OneWayANOVA compares variable across every level of group. Pairwise
// Student t-tests are attached when the omnibus test is significant.
func (a *Analyzer) OneWayANOVA(ds *Dataset, variable, group string) (*ANOVAResult, error) {
	levels, values, err := groupValues(ds, KindANOVA, variable, group)
	if err != nil {
		return nil, err
	}
	k := len(levels)
	if k < 2 {
		return nil, metricErr(KindANOVA, ErrInvalidGroups, "%q has %d levels, need at least 2", group, k)
	}
	var all []float64
	for _, g := range values {
		all = append(all, g...)
	}
	total := len(all)
	if total <= k {
		return nil, metricErr(KindANOVA, ErrNoData, "%d observations for %d groups", total, k)
	}
	grand := stat.Mean(all, nil)
	var ssBetween, ssWithin float64
	for _, g := range values {
		m := stat.Mean(g, nil)
		ssBetween += float64(len(g)) * (m - grand) * (m - grand)
		for _, v := range g {
			ssWithin += (v - m) * (v - m)
		}
	}
	if ssWithin == 0 {
		return nil, metricErr(KindANOVA, ErrDegenerateCorrelation, "no variance within groups")
	}
	dfB, dfW := k-1, total-k
	f := (ssBetween / float64(dfB)) / (ssWithin / float64(dfW))
	p := distuv.F{D1: float64(dfB), D2: float64(dfW)}.Survival(f)
	eta := ssBetween / (ssBetween + ssWithin)

	res := &ANOVAResult{
		Variable:       variable,
		GroupVariable:  group,
		Groups:         summarize(levels, values),
		FStatistic:     f,
		DFBetween:      dfB,
		DFWithin:       dfW,
		PValue:         p,
		EtaSquared:     eta,
		Significant:    p < a.cfg.Significance,
		Interpretation: a.hypothesis(p),
		EffectSize:     a.interpret("eta_squared", etaSquaredCode(eta)),
	}
	if res.Significant {
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				res.PostHoc = append(res.PostHoc, a.pairwise(levels[i], levels[j], values[i], values[j]))
			}
		}
	}
	a.computed(KindANOVA, f, zap.Float64("p_value", p), zap.Float64("eta_squared", eta), zap.Int("groups", k))
	return res, nil
}

func (a *Analyzer) pairwise(first, second string, x, y []float64) PairwiseComparison {
	m1, v1 := stat.MeanVariance(x, nil)
	m2, v2 := stat.MeanVariance(y, nil)
	if len(x) == 1 {
		v1 = 0
	}
	if len(y) == 1 {
		v2 = 0
	}
	cmp := PairwiseComparison{First: first, Second: second, MeanDifference: m1 - m2}
	n1, n2 := float64(len(x)), float64(len(y))
	df := n1 + n2 - 2
	if df < 1 {
		return cmp
	}
	pooled := ((n1-1)*v1 + (n2-1)*v2) / df
	if pooled == 0 {
		return cmp
	}
	t := (m1 - m2) / math.Sqrt(pooled*(1/n1+1/n2))
	p := twoTailedT(t, df)
	cmp.TStatistic, cmp.PValue = &t, &p
	cmp.Significant = p < a.cfg.Significance
	return cmp
}

// CorrelationTest correlates two columns over the rows where both are
// present, with method pearson, spearman or kendall (tau-b).
func (a *Analyzer) CorrelationTest(ds *Dataset, first, second, method string) (*CorrelationTestResult, error) {
	if method == "" {
		method = MethodPearson
	}
	x, y, err := pairedValues(ds, KindCorrelation, first, second)
	if err != nil {
		return nil, err
	}
	n := len(x)
	if n < 3 {
		return nil, metricErr(KindCorrelation, ErrNoData, "%d common observations, need at least 3", n)
	}
	var r, p float64
	switch method {
	case MethodPearson, MethodSpearman:
		if method == MethodSpearman {
			x, y = ranks(x), ranks(y)
		}
		var ok bool
		if r, ok = pearson(x, y); !ok {
			return nil, metricErr(KindCorrelation, ErrDegenerateCorrelation, "a column has zero variance")
		}
		if _, p, ok = correlationTest(r, n); !ok {
			p = 0
		}
	case MethodKendall:
		var ok bool
		if r, p, ok = kendallTau(x, y); !ok {
			return nil, metricErr(KindCorrelation, ErrDegenerateCorrelation, "a column has a single value")
		}
	default:
		return nil, metricErr(KindCorrelation, ErrUnsupportedMethod, "%q", method)
	}
	a.computed(KindCorrelation, r, zap.String("method", method), zap.Float64("p_value", p), zap.Int("observations", n))
	return &CorrelationTestResult{
		First:          first,
		Second:         second,
		Method:         method,
		N:              n,
		Correlation:    r,
		PValue:         p,
		Significant:    p < a.cfg.Significance,
		Strength:       a.interpret("correlation", correlationCode(r)),
		Interpretation: a.hypothesis(p),
	}, nil
}

// ChiSquare tests independence of two categorical columns. Levels are the
// distinct values of each column in ascending order. Yates' continuity
// correction is applied when the table has one degree of freedom.
func (a *Analyzer) ChiSquare(ds *Dataset, first, second string) (*ChiSquareResult, error) {
	x, y, err := pairedValues(ds, KindChiSquare, first, second)
	if err != nil {
		return nil, err
	}
	rowLevels, colLevels := sortedLevels(x), sortedLevels(y)
	if len(rowLevels) < 2 || len(colLevels) < 2 {
		return nil, metricErr(KindChiSquare, ErrInvalidGroups, "need at least 2 levels in each column, got %dx%d",
			len(rowLevels), len(colLevels))
	}
	rowIdx, colIdx := levelIndex(rowLevels), levelIndex(colLevels)
	table := make([][]int, len(rowLevels))
	for i := range table {
		table[i] = make([]int, len(colLevels))
	}
	rowTotals := make([]float64, len(rowLevels))
	colTotals := make([]float64, len(colLevels))
	for i := range x {
		r, c := rowIdx[x[i]], colIdx[y[i]]
		table[r][c]++
		rowTotals[r]++
		colTotals[c]++
	}
	n := float64(len(x))
	df := (len(rowLevels) - 1) * (len(colLevels) - 1)
	yates := df == 1
	var chi float64
	for i := range table {
		for j := range table[i] {
			expected := rowTotals[i] * colTotals[j] / n
			diff := math.Abs(float64(table[i][j]) - expected)
			if yates {
				diff = math.Max(diff-0.5, 0)
			}
			chi += diff * diff / expected
		}
	}
	p := distuv.ChiSquared{K: float64(df)}.Survival(chi)
	minDim := min(len(rowLevels), len(colLevels)) - 1
	v := math.Sqrt(chi / (n * float64(minDim)))
	a.computed(KindChiSquare, chi, zap.Float64("p_value", p), zap.Int("df", df), zap.Float64("cramers_v", v))
	return &ChiSquareResult{
		First:          first,
		Second:         second,
		RowLevels:      formatLevels(rowLevels),
		ColumnLevels:   formatLevels(colLevels),
		Table:          table,
		N:              len(x),
		ChiSquare:      chi,
		DF:             df,
		YatesCorrected: yates,
		PValue:         p,
		CramersV:       v,
		Significant:    p < a.cfg.Significance,
		Interpretation: a.hypothesis(p),
		EffectSize:     a.interpret("cramers_v", cramersVCode(v)),
	}, nil
}

// SimpleRegression fits dependent = intercept + slope*independent and tests
// the model with F on (1, n-2) degrees of freedom.
func (a *Analyzer) SimpleRegression(ds *Dataset, dependent, independent string) (*RegressionResult, error) {
	y, x, err := pairedValues(ds, KindRegression, dependent, independent)
	if err != nil {
		return nil, err
	}
	n := len(x)
	if n < 3 {
		return nil, metricErr(KindRegression, ErrNoData, "%d common observations, need at least 3", n)
	}
	if stat.Variance(x, nil) == 0 {
		return nil, metricErr(KindRegression, ErrDegenerateCorrelation, "%q has zero variance", independent)
	}
	intercept, slope := stat.LinearRegression(x, y, nil, false)
	my := stat.Mean(y, nil)
	var sse, sst float64
	for i := range x {
		resid := y[i] - (intercept + slope*x[i])
		sse += resid * resid
		sst += (y[i] - my) * (y[i] - my)
	}
	res := &RegressionResult{
		Dependent:   dependent,
		Independent: independent,
		N:           n,
		Intercept:   intercept,
		Slope:       slope,
		RMSE:        math.Sqrt(sse / float64(n)),
	}
	switch {
	case sst == 0:
		res.PValue = 1
	case sse > 1e-12*sst:
		res.RSquared = 1 - sse/sst
		f := (sst - sse) / (sse / float64(n-2))
		res.FStatistic = &f
		res.PValue = distuv.F{D1: 1, D2: float64(n - 2)}.Survival(f)
	default:
		res.RSquared = 1
	}
	res.Significant = res.PValue < a.cfg.Significance
	res.Interpretation = a.hypothesis(res.PValue)
	a.computed(KindRegression, res.RSquared, zap.Float64("slope", slope), zap.Float64("p_value", res.PValue))
	return res, nil
}

func (a *Analyzer) hypothesis(p float64) Interpretation {
	if p < a.cfg.Significance {
		return a.interpret("hypothesis", "reject")
	}
	return a.interpret("hypothesis", "retain")
}

// levene is the Brown-Forsythe variant: absolute deviations from each
// group's median. ok is false when every deviation is zero.
func levene(groups [][]float64) (w, p float64, ok bool) {
	k := len(groups)
	devs := make([][]float64, k)
	var total int
	var grand float64
	for i, g := range groups {
		med := median(g)
		devs[i] = make([]float64, len(g))
		for j, v := range g {
			devs[i][j] = math.Abs(v - med)
			grand += devs[i][j]
		}
		total += len(g)
	}
	grand /= float64(total)
	var between, within float64
	for _, d := range devs {
		m := stat.Mean(d, nil)
		between += float64(len(d)) * (m - grand) * (m - grand)
		for _, v := range d {
			within += (v - m) * (v - m)
		}
	}
	if within == 0 || total <= k {
		return 0, 0, false
	}
	d1, d2 := float64(k-1), float64(total-k)
	w = (d2 / d1) * between / within
	return w, distuv.F{D1: d1, D2: d2}.Survival(w), true
}

// kendallTau returns tau-b and its two-tailed p-value from the normal
// approximation with the tie-corrected variance.
func kendallTau(x, y []float64) (tau, p float64, ok bool) {
	n := len(x)
	var concordant, discordant float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx, dy := x[i]-x[j], y[i]-y[j]
			switch {
			case dx == 0 || dy == 0:
			case (dx > 0) == (dy > 0):
				concordant++
			default:
				discordant++
			}
		}
	}
	pairs := float64(n) * float64(n-1) / 2
	n1, n2 := tieTerm(x, 2), tieTerm(y, 2)
	denom := math.Sqrt((pairs - n1) * (pairs - n2))
	if denom == 0 {
		return 0, 0, false
	}
	s := concordant - discordant
	tau = s / denom

	fn := float64(n)
	v0 := fn * (fn - 1) * (2*fn + 5)
	vt, vu := tieTerm(x, 5), tieTerm(y, 5)
	t1, u1 := 2*n1, 2*n2
	t2, u2 := tieTerm(x, 3), tieTerm(y, 3)
	variance := (v0-vt-vu)/18 + t1*u1/(2*fn*(fn-1))
	if n > 2 {
		variance += t2 * u2 / (9 * fn * (fn - 1) * (fn - 2))
	}
	if variance <= 0 {
		return tau, 1, true
	}
	z := s / math.Sqrt(variance)
	return tau, math.Min(2*distuv.UnitNormal.Survival(math.Abs(z)), 1), true
}

// tieTerm sums a polynomial in the tie-group sizes t of xs:
// 2 gives t(t-1)/2, 3 gives t(t-1)(t-2), 5 gives t(t-1)(2t+5).
func tieTerm(xs []float64, form int) float64 {
	counts := map[float64]float64{}
	for _, v := range xs {
		counts[v]++
	}
	var sum float64
	for _, t := range counts {
		if t < 2 {
			continue
		}
		switch form {
		case 2:
			sum += t * (t - 1) / 2
		case 3:
			sum += t * (t - 1) * (t - 2)
		case 5:
			sum += t * (t - 1) * (2*t + 5)
		}
	}
	return sum
}

// ranks assigns 1-based ranks, averaging ties.
func ranks(xs []float64) []float64 {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return xs[idx[i]] < xs[idx[j]] })
	out := make([]float64, len(xs))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && xs[idx[j+1]] == xs[idx[i]] {
			j++
		}
		r := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = r
		}
		i = j + 1
	}
	return out
}

func twoTailedT(t, df float64) float64 {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return math.Min(2*dist.Survival(math.Abs(t)), 1)
}

func median(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return quantileLinear(sorted, 0.5)
}

// quantileLinear interpolates between closest ranks at position q*(n-1).
// sorted must be ascending and non-empty.
func quantileLinear(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}

func validValues(ds *Dataset, metric MetricKind, column string) ([]float64, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	if err := ds.requireColumns(metric, column); err != nil {
		return nil, err
	}
	col, _ := ds.Column(column)
	out := make([]float64, 0, len(col))
	for _, v := range col {
		if !IsMissing(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// pairedValues keeps the rows where both columns are present.
func pairedValues(ds *Dataset, metric MetricKind, first, second string) ([]float64, []float64, error) {
	if ds == nil {
		return nil, nil, ErrNilDataset
	}
	if err := ds.requireColumns(metric, first, second); err != nil {
		return nil, nil, err
	}
	a, _ := ds.Column(first)
	b, _ := ds.Column(second)
	var x, y []float64
	for i := range a {
		if IsMissing(a[i]) || IsMissing(b[i]) {
			continue
		}
		x = append(x, a[i])
		y = append(y, b[i])
	}
	return x, y, nil
}

// groupValues splits variable by the levels of group, in order of first
// appearance. Rows missing either value are skipped.
func groupValues(ds *Dataset, metric MetricKind, variable, group string) ([]string, [][]float64, error) {
	x, g, err := pairedValues(ds, metric, variable, group)
	if err != nil {
		return nil, nil, err
	}
	var levels []string
	var values [][]float64
	index := map[float64]int{}
	for i, level := range g {
		j, ok := index[level]
		if !ok {
			j = len(levels)
			index[level] = j
			levels = append(levels, formatLevel(level))
			values = append(values, nil)
		}
		values[j] = append(values[j], x[i])
	}
	return levels, values, nil
}

func summarize(levels []string, values [][]float64) []GroupSummary {
	out := make([]GroupSummary, len(levels))
	for i, level := range levels {
		out[i] = GroupSummary{Group: level, N: len(values[i]), Mean: stat.Mean(values[i], nil)}
		if len(values[i]) > 1 {
			sd := stat.StdDev(values[i], nil)
			out[i].SD = &sd
		}
	}
	return out
}

func sortedLevels(xs []float64) []float64 {
	seen := map[float64]bool{}
	var out []float64
	for _, v := range xs {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

func levelIndex(levels []float64) map[float64]int {
	idx := make(map[float64]int, len(levels))
	for i, v := range levels {
		idx[v] = i
	}
	return idx
}

func formatLevel(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func formatLevels(vs []float64) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = formatLevel(v)
	}
	return out
}

func cohenDCode(d float64) string {
	switch a := math.Abs(d); {
	case a < 0.2:
		return "small"
	case a < 0.5:
		return "medium"
	case a < 0.8:
		return "large"
	default:
		return "very_large"
	}
}

func etaSquaredCode(eta float64) string {
	switch {
	case eta < 0.01:
		return "small"
	case eta < 0.06:
		return "medium"
	default:
		return "large"
	}
}

func correlationCode(r float64) string {
	switch a := math.Abs(r); {
	case a < 0.1:
		return "negligible"
	case a < 0.3:
		return "weak"
	case a < 0.5:
		return "moderate"
	case a < 0.7:
		return "strong"
	default:
		return "very_strong"
	}
}

func cramersVCode(v float64) string {
	switch {
	case v < 0.1:
		return "weak"
	case v < 0.3:
		return "moderate"
	default:
		return "strong"
	}
}
