package psychometrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoGroups stacks a and b into a value column and a 1/2 group column.
func twoGroups(t *testing.T, a, b []float64) *Dataset {
	t.Helper()
	var rows [][]float64
	for _, v := range a {
		rows = append(rows, []float64{v, 1})
	}
	for _, v := range b {
		rows = append(rows, []float64{v, 2})
	}
	return mustDataset(t, []string{"score", "group"}, rows)
}

func TestOneSampleTTest(t *testing.T) {
	a := newTestAnalyzer(t)
	xs := []float64{5.1, 4.9, 5.6, 5.8, 6.0, 6.1, 5.5, 5.3}
	rows := make([][]float64, 0, len(xs)+1)
	for _, v := range xs {
		rows = append(rows, []float64{v})
	}
	rows = append(rows, []float64{Missing})
	ds := mustDataset(t, []string{"x"}, rows)

	res, err := a.OneSampleTTest(ds, "x", 5)
	require.NoError(t, err)
	assert.Equal(t, 8, res.N)
	assert.InDelta(t, 5.5375, res.SampleMean, 1e-12)
	assert.InDelta(t, 3.5851, res.TStatistic, 1e-4)
	assert.InDelta(t, 7.0, res.DF, 0)
	assert.Less(t, res.PValue, 0.01)
	assert.True(t, res.Significant)
	assert.Equal(t, "reject", res.Interpretation.Code)
	assert.Less(t, res.CILower, res.SampleMean)
	assert.Greater(t, res.CIUpper, res.SampleMean)
	assert.Greater(t, res.CILower, 5.0)

	res, err = a.OneSampleTTest(ds, "x", 5.5)
	require.NoError(t, err)
	assert.False(t, res.Significant)
	assert.Equal(t, "retain", res.Interpretation.Code)
}

func TestOneSampleTTest_Errors(t *testing.T) {
	a := newTestAnalyzer(t)
	ds := mustDataset(t, []string{"x"}, [][]float64{{3}, {3}, {3}})

	_, err := a.OneSampleTTest(ds, "x", 1)
	assert.ErrorIs(t, err, ErrDegenerateCorrelation)
	_, err = a.OneSampleTTest(ds, "nope", 1)
	assert.ErrorIs(t, err, ErrMissingColumn)
	_, err = a.OneSampleTTest(nil, "x", 1)
	assert.ErrorIs(t, err, ErrNilDataset)
}

func TestIndependentTTest_EqualVariances(t *testing.T) {
	a := newTestAnalyzer(t)
	ds := twoGroups(t,
		[]float64{12, 14, 11, 15, 13, 14, 12, 16},
		[]float64{18, 17, 19, 20, 16, 21, 18, 19})

	res, err := a.IndependentTTest(ds, "score", "group")
	require.NoError(t, err)
	require.Len(t, res.Groups, 2)
	assert.Equal(t, "1", res.Groups[0].Group)
	assert.Equal(t, "2", res.Groups[1].Group)
	require.NotNil(t, res.LeveneStatistic)
	assert.True(t, res.EqualVariance)
	assert.InDelta(t, 14.0, res.DF, 0)
	assert.InDelta(t, -6.2318, res.TStatistic, 1e-4)
	assert.InDelta(t, -3.1159, res.CohenD, 1e-4)
	assert.True(t, res.Significant)
	assert.Equal(t, "very_large", res.EffectSize.Code)
}

func TestIndependentTTest_WelchWhenVariancesDiffer(t *testing.T) {
	a := newTestAnalyzer(t)
	ds := twoGroups(t,
		[]float64{10, 10.1, 9.9, 10, 10.05, 9.95, 10, 10, 10.02, 9.98},
		[]float64{0, 20, 5, 15, -5, 25, 10, 10, -10, 30})

	res, err := a.IndependentTTest(ds, "score", "group")
	require.NoError(t, err)
	require.NotNil(t, res.LevenePValue)
	assert.Less(t, *res.LevenePValue, 0.05)
	assert.False(t, res.EqualVariance)
	assert.Less(t, res.DF, 18.0)
	assert.Greater(t, res.DF, 8.0)
	assert.False(t, res.Significant)
}

func TestIndependentTTest_NeedsTwoGroups(t *testing.T) {
	a := newTestAnalyzer(t)
	ds := mustDataset(t, []string{"score", "group"}, [][]float64{
		{1, 1}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {6, 3},
	})
	_, err := a.IndependentTTest(ds, "score", "group")
	assert.ErrorIs(t, err, ErrInvalidGroups)
	assert.Equal(t, "invalid_groups", ErrorKind(err))
}

func TestOneWayANOVA(t *testing.T) {
	a := newTestAnalyzer(t)
	groups := [][]float64{{1, 2, 3, 2}, {4, 5, 6, 5}, {7, 8, 9, 8}}
	var rows [][]float64
	for g, vals := range groups {
		for _, v := range vals {
			rows = append(rows, []float64{v, float64(g + 1)})
		}
	}
	rows = append(rows, []float64{Missing, 1}, []float64{4, Missing})
	ds := mustDataset(t, []string{"score", "group"}, rows)

	res, err := a.OneWayANOVA(ds, "score", "group")
	require.NoError(t, err)
	assert.InDelta(t, 54.0, res.FStatistic, 1e-9)
	assert.Equal(t, 2, res.DFBetween)
	assert.Equal(t, 9, res.DFWithin)
	assert.InDelta(t, 12.0/13.0, res.EtaSquared, 1e-9)
	assert.Less(t, res.PValue, 0.001)
	assert.Equal(t, "large", res.EffectSize.Code)
	require.Len(t, res.Groups, 3)
	assert.Equal(t, 4, res.Groups[0].N)

	require.Len(t, res.PostHoc, 3)
	first := res.PostHoc[0]
	assert.Equal(t, "1", first.First)
	assert.Equal(t, "2", first.Second)
	assert.InDelta(t, -3.0, first.MeanDifference, 1e-12)
	require.NotNil(t, first.PValue)
	assert.True(t, first.Significant)
}

func TestOneWayANOVA_NoPostHocWhenNotSignificant(t *testing.T) {
	a := newTestAnalyzer(t)
	ds := twoGroups(t, []float64{1, 5, 3, 2, 4}, []float64{2, 4, 3, 5, 1})

	res, err := a.OneWayANOVA(ds, "score", "group")
	require.NoError(t, err)
	assert.False(t, res.Significant)
	assert.Empty(t, res.PostHoc)
	assert.InDelta(t, 0.0, res.EtaSquared, 1e-12)
}

func TestCorrelationTest_Methods(t *testing.T) {
	a := newTestAnalyzer(t)
	rows := [][]float64{{1, 1}, {2, 8}, {3, 27}, {4, 64}, {5, 125}, {6, 216}}
	ds := mustDataset(t, []string{"x", "y"}, rows)

	pear, err := a.CorrelationTest(ds, "x", "y", "")
	require.NoError(t, err)
	assert.Equal(t, MethodPearson, pear.Method)
	assert.Less(t, pear.Correlation, 1.0)
	assert.Greater(t, pear.Correlation, 0.9)

	spear, err := a.CorrelationTest(ds, "x", "y", MethodSpearman)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, spear.Correlation, 1e-12)
	assert.Equal(t, "very_strong", spear.Strength.Code)
	assert.True(t, spear.Significant)

	_, err = a.CorrelationTest(ds, "x", "y", "biserial")
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestCorrelationTest_Kendall(t *testing.T) {
	a := newTestAnalyzer(t)
	ds := mustDataset(t, []string{"x", "y"}, [][]float64{{1, 2}, {2, 1}, {3, 4}, {4, 3}, {5, 5}})

	res, err := a.CorrelationTest(ds, "x", "y", MethodKendall)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, res.Correlation, 1e-12)
	assert.Greater(t, res.PValue, 0.1)
	assert.Less(t, res.PValue, 0.2)
	assert.False(t, res.Significant)
}

func TestRanks_AveragesTies(t *testing.T) {
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, ranks([]float64{10, 20, 20, 30}))
	assert.Equal(t, []float64{3, 1, 2}, ranks([]float64{9, 1, 5}))
}

func TestChiSquare_YatesOnTwoByTwo(t *testing.T) {
	a := newTestAnalyzer(t)
	cells := [][3]int{{1, 1, 10}, {1, 2, 20}, {2, 1, 30}, {2, 2, 40}}
	var rows [][]float64
	for _, c := range cells {
		for i := 0; i < c[2]; i++ {
			rows = append(rows, []float64{float64(c[0]), float64(c[1])})
		}
	}
	ds := mustDataset(t, []string{"sex", "answer"}, rows)

	res, err := a.ChiSquare(ds, "sex", "answer")
	require.NoError(t, err)
	assert.Equal(t, [][]int{{10, 20}, {30, 40}}, res.Table)
	assert.Equal(t, []string{"1", "2"}, res.RowLevels)
	assert.Equal(t, 1, res.DF)
	assert.True(t, res.YatesCorrected)
	assert.InDelta(t, 0.446429, res.ChiSquare, 1e-6)
	assert.InDelta(t, math.Sqrt(res.ChiSquare/100), res.CramersV, 1e-12)
	assert.False(t, res.Significant)
	assert.Equal(t, "weak", res.EffectSize.Code)
}

func TestChiSquare_StrongAssociation(t *testing.T) {
	a := newTestAnalyzer(t)
	var rows [][]float64
	for i := 0; i < 90; i++ {
		lvl := float64(i % 3)
		rows = append(rows, []float64{lvl, lvl})
	}
	ds := mustDataset(t, []string{"a", "b"}, rows)

	res, err := a.ChiSquare(ds, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 4, res.DF)
	assert.False(t, res.YatesCorrected)
	assert.InDelta(t, 180.0, res.ChiSquare, 1e-9)
	assert.InDelta(t, 1.0, res.CramersV, 1e-12)
	assert.True(t, res.Significant)
	assert.Equal(t, "strong", res.EffectSize.Code)
}

func TestChiSquare_SingleLevel(t *testing.T) {
	a := newTestAnalyzer(t)
	ds := mustDataset(t, []string{"a", "b"}, [][]float64{{1, 1}, {1, 2}, {1, 1}})
	_, err := a.ChiSquare(ds, "a", "b")
	assert.ErrorIs(t, err, ErrInvalidGroups)
}

func TestSimpleRegression(t *testing.T) {
	a := newTestAnalyzer(t)
	rows := [][]float64{{5.1, 1}, {7.9, 2}, {11.2, 3}, {13.8, 4}, {17.1, 5}, {19.9, 6}}
	ds := mustDataset(t, []string{"y", "x"}, rows)

	res, err := a.SimpleRegression(ds, "y", "x")
	require.NoError(t, err)
	assert.Equal(t, 6, res.N)
	assert.InDelta(t, 3.0, res.Slope, 0.05)
	assert.InDelta(t, 2.0, res.Intercept, 0.2)
	assert.Greater(t, res.RSquared, 0.99)
	require.NotNil(t, res.FStatistic)
	assert.Less(t, res.PValue, 0.001)
	assert.True(t, res.Significant)
	assert.Greater(t, res.RMSE, 0.0)
}

func TestSimpleRegression_PerfectFitAndConstantPredictor(t *testing.T) {
	a := newTestAnalyzer(t)
	ds := mustDataset(t, []string{"y", "x", "c"}, [][]float64{{3, 1, 7}, {5, 2, 7}, {7, 3, 7}, {9, 4, 7}})

	res, err := a.SimpleRegression(ds, "y", "x")
	require.NoError(t, err)
	assert.Nil(t, res.FStatistic)
	assert.InDelta(t, 1.0, res.RSquared, 1e-12)
	assert.InDelta(t, 0.0, res.RMSE, 1e-12)

	_, err = a.SimpleRegression(ds, "y", "c")
	assert.ErrorIs(t, err, ErrDegenerateCorrelation)
}

func TestEffectSizeCodes(t *testing.T) {
	assert.Equal(t, "small", cohenDCode(-0.1))
	assert.Equal(t, "medium", cohenDCode(0.3))
	assert.Equal(t, "large", cohenDCode(0.6))
	assert.Equal(t, "medium", etaSquaredCode(0.03))
	assert.Equal(t, "negligible", correlationCode(-0.05))
	assert.Equal(t, "strong", correlationCode(-0.65))
	assert.Equal(t, "moderate", cramersVCode(0.2))
}

func TestInferential_SpanishLabels(t *testing.T) {
	a := newTestAnalyzer(t).WithLocale("es")
	ds := twoGroups(t, []float64{1, 2, 3, 4}, []float64{11, 12, 13, 14})

	res, err := a.IndependentTTest(ds, "score", "group")
	require.NoError(t, err)
	assert.Equal(t, "Efecto muy grande", res.EffectSize.Label)
	assert.Contains(t, res.Interpretation.Label, "hipótesis nula")
}
