package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/synap-reliability/internal/psychometrics"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestRecorderCountsRuns(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	rec.ObserveRun("alpha", 3*time.Millisecond, nil)
	rec.ObserveRun("alpha", time.Millisecond, nil)
	rec.ObserveRun("alpha", time.Millisecond, psychometrics.ErrNoData)
	rec.ObserveRun("full", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, counterValue(t, reg, "synap_analysis_runs_total", map[string]string{"kind": "alpha", "result": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "synap_analysis_runs_total", map[string]string{"kind": "alpha", "result": "no_data"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "synap_analysis_runs_total", map[string]string{"kind": "full", "result": "error"}))
}

func TestRecorderCountsOmissions(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	rec.ObserveOmission("kmo", "singular_matrix")
	rec.ObserveOmission("kmo", "singular_matrix")
	rec.ObserveOmission("factorial", "insufficient_items")

	assert.Equal(t, 2.0, counterValue(t, reg, "synap_analysis_omissions_total", map[string]string{"metric": "kmo", "reason": "singular_matrix"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "synap_analysis_omissions_total", map[string]string{"metric": "factorial", "reason": "insufficient_items"}))
}

func TestRecorderHandler(t *testing.T) {
	rec := NewRecorder(nil)
	rec.ObserveRun("content_validity", time.Millisecond, nil)

	rr := httptest.NewRecorder()
	rec.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `synap_analysis_runs_total{kind="content_validity",result="ok"} 1`)
	assert.Contains(t, string(body), "synap_analysis_duration_seconds_bucket")
}
