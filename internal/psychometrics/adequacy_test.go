package psychometrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orthogonal holds three mutually uncorrelated centered columns.
var orthogonal = [][]float64{
	{1, 1, 1},
	{1, -1, -1},
	{-1, 1, -1},
	{-1, -1, 1},
}

func TestSplitHalf_PerfectHalves(t *testing.T) {
	a := newTestAnalyzer(t)
	ds := mustDataset(t, []string{"a", "b", "c", "d"}, [][]float64{
		{1, 2, 2, 1},
		{2, 3, 3, 2},
		{4, 1, 3, 2},
		{5, 5, 5, 5},
	})
	res, err := a.SplitHalf(ds, []string{"a", "b", "c", "d"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.CorrelationHalves, 1e-12)
	assert.InDelta(t, 1.0, res.SpearmanBrown, 1e-12)
	assert.Equal(t, []string{"a", "b"}, res.FirstHalf)
	assert.Equal(t, []string{"c", "d"}, res.SecondHalf)
	assert.Equal(t, "excellent", res.Interpretation.Code)
}

func TestSplitHalf_OddItemCount(t *testing.T) {
	a := newTestAnalyzer(t)
	ds := mustDataset(t, []string{"q1", "q2", "q3"}, smallRows)
	res, err := a.SplitHalf(ds, []string{"q1", "q2", "q3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"q1"}, res.FirstHalf)
	assert.Equal(t, []string{"q2", "q3"}, res.SecondHalf)
	sb, ok := spearmanBrown(res.CorrelationHalves)
	require.True(t, ok)
	assert.InDelta(t, sb, res.SpearmanBrown, 1e-15)
}

func TestSplitHalf_ConstantHalf(t *testing.T) {
	a := newTestAnalyzer(t)
	ds := mustDataset(t, []string{"a", "b"}, [][]float64{{1, 3}, {2, 3}, {3, 3}})
	_, err := a.SplitHalf(ds, []string{"a", "b"})
	assert.ErrorIs(t, err, ErrDegenerateCorrelation)
}

func TestSpearmanBrown(t *testing.T) {
	v, ok := spearmanBrown(1)
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	v, ok = spearmanBrown(0)
	require.True(t, ok)
	assert.Equal(t, 0.0, v)

	v, ok = spearmanBrown(0.5)
	require.True(t, ok)
	assert.InDelta(t, 2.0/3.0, v, 1e-15)

	_, ok = spearmanBrown(-1)
	assert.False(t, ok)
}

func TestKMO_UncorrelatedItems(t *testing.T) {
	a := newTestAnalyzer(t)
	ds := mustDataset(t, []string{"x", "y", "z"}, orthogonal)
	res, err := a.KMO(ds, []string{"x", "y", "z"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.KMO)
	for _, it := range res.PerItem {
		assert.Equal(t, 0.0, it.KMO, it.Item)
	}
	assert.Equal(t, "unacceptable", res.Interpretation.Code)
	assert.Equal(t, 3, res.NVariables)
}

func TestKMO_Bounds(t *testing.T) {
	a := newTestAnalyzer(t)
	dims := []Dimension{
		{Name: "A", Items: itemNames("A", 4)},
		{Name: "B", Items: itemNames("B", 3)},
	}
	ds := likertPanel(3, 200, dims...)
	all := append(append([]string(nil), dims[0].Items...), dims[1].Items...)

	res, err := a.KMO(ds, all)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.KMO, 0.0)
	assert.LessOrEqual(t, res.KMO, 1.0)
	assert.Len(t, res.PerItem, len(all))
	for _, it := range res.PerItem {
		assert.GreaterOrEqual(t, it.KMO, 0.0)
		assert.LessOrEqual(t, it.KMO, 1.0)
	}
	assert.Equal(t, DefaultKMOThresholds().Classify(res.KMO), res.Interpretation.Code)
}

func TestKMO_ConstantItem(t *testing.T) {
	a := newTestAnalyzer(t)
	ds := mustDataset(t, []string{"a", "b", "c"}, [][]float64{{1, 2, 3}, {2, 2, 1}, {3, 2, 2}})
	_, err := a.KMO(ds, []string{"a", "b", "c"})
	assert.ErrorIs(t, err, ErrSingularMatrix)
}

func TestBartlett_Identity(t *testing.T) {
	a := newTestAnalyzer(t)
	ds := mustDataset(t, []string{"x", "y", "z"}, orthogonal)
	res, err := a.Bartlett(ds, []string{"x", "y", "z"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.ChiSquare)
	assert.InDelta(t, 1.0, res.PValue, 1e-12)
	assert.InDelta(t, 1.0, res.Determinant, 1e-12)
	assert.Equal(t, 3, res.DegreesOfFreedom)
	assert.False(t, res.Suitable)
	assert.Equal(t, "retain", res.Interpretation.Code)
}

func TestBartlett_CorrelatedItems(t *testing.T) {
	a := newTestAnalyzer(t)
	dim := Dimension{Name: "A", Items: itemNames("A", 5)}
	ds := likertPanel(5, 140, dim)
	res, err := a.Bartlett(ds, dim.Items)
	require.NoError(t, err)
	assert.Greater(t, res.ChiSquare, 0.0)
	assert.Less(t, res.PValue, 0.05)
	assert.True(t, res.Suitable)
	assert.Equal(t, "reject", res.Interpretation.Code)
	assert.Equal(t, 10, res.DegreesOfFreedom)
}

func TestBartlett_ConstantItem(t *testing.T) {
	a := newTestAnalyzer(t)
	ds := mustDataset(t, []string{"a", "b", "c"}, [][]float64{{1, 2, 3}, {2, 2, 1}, {3, 2, 2}})
	_, err := a.Bartlett(ds, []string{"a", "b", "c"})
	assert.ErrorIs(t, err, ErrSingularMatrix)
}

func TestBartlettStatistic(t *testing.T) {
	chi, df, p := bartlettStatistic(0.5, 101, 4)
	assert.Equal(t, 6, df)
	assert.InDelta(t, -(100.0-13.0/6.0)*-0.6931471805599453, chi, 1e-9)
	assert.Greater(t, p, 0.0)
	assert.Less(t, p, 1.0)

	chi, _, p = bartlettStatistic(1, 10, 3)
	assert.Equal(t, 0.0, chi)
	assert.InDelta(t, 1.0, p, 1e-12)
}
