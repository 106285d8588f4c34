package psychometrics

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(DefaultConfig(), zap.NewNop())
	require.NoError(t, err)
	return a
}

func mustDataset(t *testing.T, columns []string, rows [][]float64) *Dataset {
	t.Helper()
	ds, err := NewDataset(columns, rows)
	require.NoError(t, err)
	return ds
}

func itemNames(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return out
}

// likertPanel simulates n respondents answering a 1..5 scale where the items
// of each dimension load on one latent trait.
func likertPanel(seed int64, n int, dims ...Dimension) *Dataset {
	rng := rand.New(rand.NewSource(seed))
	var cols []string
	for _, d := range dims {
		cols = append(cols, d.Items...)
	}
	rows := make([][]float64, n)
	for i := range rows {
		row := make([]float64, 0, len(cols))
		for _, d := range dims {
			trait := rng.NormFloat64()
			for range d.Items {
				v := math.Round(3 + 1.1*trait + 0.6*rng.NormFloat64())
				row = append(row, math.Max(1, math.Min(5, v)))
			}
		}
		rows[i] = row
	}
	ds, err := NewDataset(cols, rows)
	if err != nil {
		panic(err)
	}
	return ds
}

// closedFormAlpha recomputes alpha from the textbook formula with explicit
// loops.
func closedFormAlpha(rows [][]float64) float64 {
	k := len(rows[0])
	sampleVar := func(xs []float64) float64 {
		var m float64
		for _, x := range xs {
			m += x
		}
		m /= float64(len(xs))
		var ss float64
		for _, x := range xs {
			ss += (x - m) * (x - m)
		}
		return ss / float64(len(xs)-1)
	}
	var itemVars float64
	for j := 0; j < k; j++ {
		col := make([]float64, len(rows))
		for i, r := range rows {
			col[i] = r[j]
		}
		itemVars += sampleVar(col)
	}
	totals := make([]float64, len(rows))
	for i, r := range rows {
		for _, v := range r {
			totals[i] += v
		}
	}
	kf := float64(k)
	return kf / (kf - 1) * (1 - itemVars/sampleVar(totals))
}
