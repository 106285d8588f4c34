package psychometrics

import (
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Outlier detection rules.
const (
	OutliersIQR    = "iqr"
	OutliersZScore = "zscore"
)

type FrequencyRow struct {
	Value             string  `json:"value"`
	Count             int     `json:"count"`
	Percent           float64 `json:"percent"`
	Cumulative        int     `json:"cumulative"`
	CumulativePercent float64 `json:"cumulative_percent"`
}

// FrequencyTable counts the valid values of one column, most frequent first.
// Ties are ordered by value.
type FrequencyTable struct {
	Variable string         `json:"variable"`
	N        int            `json:"n"`
	Missing  int            `json:"missing"`
	Rows     []FrequencyRow `json:"rows"`
}

func (*FrequencyTable) Kind() MetricKind { return KindFrequency }

// GroupStatistics summarizes a column within one level of a grouping column.
// Quartiles interpolate linearly between order statistics.
type GroupStatistics struct {
	Group  string   `json:"group"`
	N      int      `json:"n"`
	Mean   float64  `json:"mean"`
	Median float64  `json:"median"`
	SD     *float64 `json:"sd"`
	Min    float64  `json:"min"`
	Max    float64  `json:"max"`
	Q1     float64  `json:"q1"`
	Q3     float64  `json:"q3"`
}

type GroupedStatistics struct {
	Variable      string            `json:"variable"`
	GroupVariable string            `json:"group_variable"`
	Groups        []GroupStatistics `json:"groups"`
}

func (*GroupedStatistics) Kind() MetricKind { return KindGroupStats }

// NormalityResult holds Shapiro-Wilk and Kolmogorov-Smirnov tests against a
// normal with the sample mean and standard deviation. Normal is true when
// neither test rejects.
type NormalityResult struct {
	Variable      string  `json:"variable"`
	N             int     `json:"n"`
	ShapiroW      float64 `json:"shapiro_w"`
	ShapiroPValue float64 `json:"shapiro_p_value"`
	ShapiroNormal bool    `json:"shapiro_normal"`
	KSStatistic   float64 `json:"ks_statistic"`
	KSPValue      float64 `json:"ks_p_value"`
	KSNormal      bool    `json:"ks_normal"`
	Normal        bool    `json:"normal"`
}

func (*NormalityResult) Kind() MetricKind { return KindNormality }

// OutlierResult lists the rows of a column flagged by Method. Bounds are set
// for the IQR rule only.
type OutlierResult struct {
	Variable string    `json:"variable"`
	Method   string    `json:"method"`
	N        int       `json:"n"`
	Rows     []int     `json:"rows"`
	Values   []float64 `json:"values"`
	Percent  float64   `json:"percent"`
	Lower    *float64  `json:"lower_bound,omitempty"`
	Upper    *float64  `json:"upper_bound,omitempty"`
}

func (*OutlierResult) Kind() MetricKind { return KindOutliers }

func (a *Analyzer) FrequencyTable(ds *Dataset, variable string) (*FrequencyTable, error) {
	xs, err := validValues(ds, KindFrequency, variable)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, metricErr(KindFrequency, ErrNoData, "%q has no valid values", variable)
	}
	counts := map[float64]int{}
	for _, v := range xs {
		counts[v]++
	}
	values := make([]float64, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i] < values[j]
	})
	n := len(xs)
	table := &FrequencyTable{Variable: variable, N: n, Missing: ds.Rows() - n}
	cum := 0
	for _, v := range values {
		c := counts[v]
		cum += c
		table.Rows = append(table.Rows, FrequencyRow{
			Value:             formatLevel(v),
			Count:             c,
			Percent:           100 * float64(c) / float64(n),
			Cumulative:        cum,
			CumulativePercent: 100 * float64(cum) / float64(n),
		})
	}
	a.computed(KindFrequency, float64(len(values)), zap.String("variable", variable), zap.Int("observations", n))
	return table, nil
}

// GroupedStatistics describes variable within each level of group, in order
// of first appearance.
func (a *Analyzer) GroupedStatistics(ds *Dataset, variable, group string) (*GroupedStatistics, error) {
	levels, values, err := groupValues(ds, KindGroupStats, variable, group)
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, metricErr(KindGroupStats, ErrNoData, "no rows with both %q and %q", variable, group)
	}
	res := &GroupedStatistics{Variable: variable, GroupVariable: group}
	for i, level := range levels {
		sorted := append([]float64(nil), values[i]...)
		sort.Float64s(sorted)
		gs := GroupStatistics{
			Group:  level,
			N:      len(sorted),
			Mean:   stat.Mean(sorted, nil),
			Median: quantileLinear(sorted, 0.5),
			Min:    sorted[0],
			Max:    sorted[len(sorted)-1],
			Q1:     quantileLinear(sorted, 0.25),
			Q3:     quantileLinear(sorted, 0.75),
		}
		if len(sorted) > 1 {
			sd := stat.StdDev(sorted, nil)
			gs.SD = &sd
		}
		res.Groups = append(res.Groups, gs)
	}
	a.computed(KindGroupStats, float64(len(levels)), zap.String("variable", variable), zap.String("group", group))
	return res, nil
}

// Normality runs Shapiro-Wilk (Royston's approximation) and a one-sample
// Kolmogorov-Smirnov test with the asymptotic Kolmogorov distribution.
// Shapiro-Wilk accepts 3 to 5000 observations.
func (a *Analyzer) Normality(ds *Dataset, variable string) (*NormalityResult, error) {
	xs, err := validValues(ds, KindNormality, variable)
	if err != nil {
		return nil, err
	}
	n := len(xs)
	if n < 3 || n > 5000 {
		return nil, metricErr(KindNormality, ErrNoData, "%d observations, need between 3 and 5000", n)
	}
	sort.Float64s(xs)
	m, sd := stat.MeanStdDev(xs, nil)
	if sd == 0 {
		return nil, metricErr(KindNormality, ErrDegenerateCorrelation, "%q has zero variance", variable)
	}
	w, wp := shapiroWilk(xs)
	d, dp := ksNormal(xs, m, sd)
	res := &NormalityResult{
		Variable:      variable,
		N:             n,
		ShapiroW:      w,
		ShapiroPValue: wp,
		ShapiroNormal: wp >= a.cfg.Significance,
		KSStatistic:   d,
		KSPValue:      dp,
		KSNormal:      dp >= a.cfg.Significance,
	}
	res.Normal = res.ShapiroNormal && res.KSNormal
	a.computed(KindNormality, w, zap.Float64("shapiro_p", wp), zap.Float64("ks_statistic", d), zap.Float64("ks_p", dp))
	return res, nil
}

// Outliers flags rows of variable outside [Q1 - 1.5 IQR, Q3 + 1.5 IQR] for
// the iqr rule, or with |z| > 3 (population SD) for the zscore rule.
func (a *Analyzer) Outliers(ds *Dataset, variable, method string) (*OutlierResult, error) {
	if method == "" {
		method = OutliersIQR
	}
	if method != OutliersIQR && method != OutliersZScore {
		return nil, metricErr(KindOutliers, ErrUnsupportedMethod, "%q", method)
	}
	if ds == nil {
		return nil, ErrNilDataset
	}
	xs, err := validValues(ds, KindOutliers, variable)
	if err != nil {
		return nil, err
	}
	if len(xs) < 2 {
		return nil, metricErr(KindOutliers, ErrNoData, "%d observations, need at least 2", len(xs))
	}
	col, _ := ds.Column(variable)
	res := &OutlierResult{Variable: variable, Method: method, N: len(xs), Rows: []int{}, Values: []float64{}}

	var flagged func(v float64) bool
	switch method {
	case OutliersIQR:
		sorted := append([]float64(nil), xs...)
		sort.Float64s(sorted)
		q1, q3 := quantileLinear(sorted, 0.25), quantileLinear(sorted, 0.75)
		lo, hi := q1-1.5*(q3-q1), q3+1.5*(q3-q1)
		res.Lower, res.Upper = &lo, &hi
		flagged = func(v float64) bool { return v < lo || v > hi }
	case OutliersZScore:
		m := stat.Mean(xs, nil)
		sd := math.Sqrt(stat.PopVariance(xs, nil))
		if sd == 0 {
			return nil, metricErr(KindOutliers, ErrDegenerateCorrelation, "%q has zero variance", variable)
		}
		flagged = func(v float64) bool { return math.Abs(v-m)/sd > 3 }
	}
	for i, v := range col {
		if !IsMissing(v) && flagged(v) {
			res.Rows = append(res.Rows, i)
			res.Values = append(res.Values, v)
		}
	}
	res.Percent = 100 * float64(len(res.Rows)) / float64(len(xs))
	a.computed(KindOutliers, float64(len(res.Rows)), zap.String("variable", variable), zap.String("method", method))
	return res, nil
}

// ExploreOptions selects the optional parts of Explore.
type ExploreOptions struct {
	// GroupBy, when set, adds grouped statistics of every item by this column.
	GroupBy string
	// OutlierMethod is iqr (default) or zscore.
	OutlierMethod string
}

// ExploratoryReport bundles per-item frequency, normality and outlier
// results. Failed metrics are listed in Omitted.
type ExploratoryReport struct {
	Items       []ItemDescriptive    `json:"items"`
	Frequencies []*FrequencyTable    `json:"frequencies"`
	Normality   []*NormalityResult   `json:"normality"`
	Outliers    []*OutlierResult     `json:"outliers"`
	Grouped     []*GroupedStatistics `json:"grouped,omitempty"`
	Omitted     []Omission           `json:"omitted"`
}

// Explore runs the exploratory battery over items. Only a nil dataset or an
// unknown item is fatal; every other failure becomes an omission.
func (a *Analyzer) Explore(ds *Dataset, items []string, opts ExploreOptions) (*ExploratoryReport, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	desc, err := Describe(ds, items)
	if err != nil {
		return nil, err
	}
	c := &composition{a: a, ds: ds}
	report := &ExploratoryReport{Items: desc}
	for _, item := range items {
		scope := "item:" + item
		if res, err := a.FrequencyTable(ds, item); c.keep(scope, KindFrequency, err) {
			report.Frequencies = append(report.Frequencies, res)
		}
		if res, err := a.Normality(ds, item); c.keep(scope, KindNormality, err) {
			report.Normality = append(report.Normality, res)
		}
		if res, err := a.Outliers(ds, item, opts.OutlierMethod); c.keep(scope, KindOutliers, err) {
			report.Outliers = append(report.Outliers, res)
		}
		if opts.GroupBy != "" && opts.GroupBy != item {
			if res, err := a.GroupedStatistics(ds, item, opts.GroupBy); c.keep(scope, KindGroupStats, err) {
				report.Grouped = append(report.Grouped, res)
			}
		}
	}
	report.Omitted = c.omitted
	if report.Omitted == nil {
		report.Omitted = []Omission{}
	}
	return report, nil
}

// shapiroWilk returns W and its p-value for ascending xs, following Royston
// (1992, 1995).
func shapiroWilk(xs []float64) (float64, float64) {
	n := len(xs)
	fn := float64(n)
	coef := make([]float64, n)
	if n == 3 {
		coef[0], coef[2] = -math.Sqrt(0.5), math.Sqrt(0.5)
	} else {
		m := make([]float64, n)
		for i := range m {
			m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (fn + 0.25))
		}
		mm := floats.Dot(m, m)
		u := 1 / math.Sqrt(fn)
		an := m[n-1]/math.Sqrt(mm) + poly(u, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056)
		if n > 5 {
			an1 := m[n-2]/math.Sqrt(mm) + poly(u, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633)
			phi := (mm - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) / (1 - 2*an*an - 2*an1*an1)
			for i := 2; i < n-2; i++ {
				coef[i] = m[i] / math.Sqrt(phi)
			}
			coef[n-1], coef[0] = an, -an
			coef[n-2], coef[1] = an1, -an1
		} else {
			phi := (mm - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
			for i := 1; i < n-1; i++ {
				coef[i] = m[i] / math.Sqrt(phi)
			}
			coef[n-1], coef[0] = an, -an
		}
	}
	avg := stat.Mean(xs, nil)
	var num, den float64
	for i, v := range xs {
		num += coef[i] * v
		den += (v - avg) * (v - avg)
	}
	w := math.Min(num*num/den, 1)

	switch {
	case w >= 1:
		return 1, 1
	case n == 3:
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		return w, math.Max(p, 0)
	case n <= 11:
		gamma := 0.459*fn - 2.273
		lw := math.Log(1 - w)
		if lw >= gamma {
			return w, 0
		}
		mu := 0.5440 - 0.39978*fn + 0.025054*fn*fn - 0.0006714*fn*fn*fn
		sigma := math.Exp(1.3822 - 0.77857*fn + 0.062767*fn*fn - 0.0020322*fn*fn*fn)
		z := (-math.Log(gamma-lw) - mu) / sigma
		return w, distuv.UnitNormal.Survival(z)
	default:
		ln := math.Log(fn)
		mu := -1.5861 - 0.31082*ln - 0.083751*ln*ln + 0.0038915*ln*ln*ln
		sigma := math.Exp(-0.4803 - 0.082676*ln + 0.0030302*ln*ln)
		z := (math.Log(1-w) - mu) / sigma
		return w, distuv.UnitNormal.Survival(z)
	}
}

// poly evaluates c[0]u + c[1]u^2 + ... for the Royston coefficient
// corrections.
func poly(u float64, c ...float64) float64 {
	sum, pow := 0.0, u
	for _, ci := range c {
		sum += ci * pow
		pow *= u
	}
	return sum
}

// ksNormal returns the Kolmogorov-Smirnov D of ascending xs against
// N(mu, sd) and its p-value from the Kolmogorov distribution with
// Stephens' small-sample correction.
func ksNormal(xs []float64, mu, sd float64) (float64, float64) {
	dist := distuv.Normal{Mu: mu, Sigma: sd}
	n := float64(len(xs))
	var d float64
	for i, v := range xs {
		f := dist.CDF(v)
		d = math.Max(d, math.Max(float64(i+1)/n-f, f-float64(i)/n))
	}
	sqrtN := math.Sqrt(n)
	lambda := (sqrtN + 0.12 + 0.11/sqrtN) * d
	return d, kolmogorovSurvival(lambda)
}

func kolmogorovSurvival(lambda float64) float64 {
	if lambda < 0.2 {
		return 1
	}
	var sum float64
	sign := 1.0
	for k := 1; k <= 100; k++ {
		term := sign * math.Exp(-2*float64(k*k)*lambda*lambda)
		sum += term
		if math.Abs(term) < 1e-12 {
			break
		}
		sign = -sign
	}
	return math.Max(0, math.Min(1, 2*sum))
}
