package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soaringjerry/synap-reliability/internal/psychometrics"
	"github.com/soaringjerry/synap-reliability/internal/services"
)

var _ services.AnalysisRecorder = (*Recorder)(nil)

// Recorder exports analysis activity to Prometheus.
type Recorder struct {
	runs      *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	omissions *prometheus.CounterVec
	gatherer  prometheus.Gatherer
}

// NewRecorder registers the analysis collectors on reg. A nil reg uses a
// fresh registry.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Recorder{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "synap_analysis_runs_total",
			Help: "Analysis runs by kind and result",
		}, []string{"kind", "result"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "synap_analysis_duration_seconds",
			Help:    "Analysis duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"kind"}),
		omissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "synap_analysis_omissions_total",
			Help: "Metrics left out of comprehensive reports by metric and reason",
		}, []string{"metric", "reason"}),
		gatherer: reg,
	}
}

func (r *Recorder) ObserveRun(kind string, elapsed time.Duration, err error) {
	r.runs.WithLabelValues(kind, resultLabel(err)).Inc()
	r.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveOmission(metric, reason string) {
	r.omissions.WithLabelValues(metric, reason).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := psychometrics.ErrorKind(err); kind != "unknown" {
		return kind
	}
	return "error"
}
