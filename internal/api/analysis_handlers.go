package api

import (
	"net/http"

	"github.com/soaringjerry/synap-reliability/internal/middleware"
	"github.com/soaringjerry/synap-reliability/internal/services"
)

// GET /api/scales/{id}/analytics
func (rt *Router) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := rt.svc.Analysis.Summary(tenantOf(r), r.PathValue("id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// POST /api/scales/{id}/analysis
// { include_validity?: bool, criterion?: item id, factors?: int }
func (rt *Router) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req services.AnalyzeRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	req.Locale = middleware.LocaleFromContext(r.Context())
	run, err := rt.svc.Analysis.Analyze(tenantOf(r), r.PathValue("id"), req)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// GET /api/scales/{id}/content-validity
func (rt *Router) handleContentValidity(w http.ResponseWriter, r *http.Request) {
	res, err := rt.svc.Analysis.ContentValidity(tenantOf(r), r.PathValue("id"), middleware.LocaleFromContext(r.Context()))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /api/scales/{id}/inferential
// { test, variable, group?, second?, method?, population_mean? }
func (rt *Router) handleInferential(w http.ResponseWriter, r *http.Request) {
	var req services.InferentialRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Locale = middleware.LocaleFromContext(r.Context())
	res, err := rt.svc.Analysis.Inferential(tenantOf(r), r.PathValue("id"), req)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"test": req.Test, "kind": res.Kind(), "result": res})
}

// GET /api/scales/{id}/exploratory?group_by=&outliers=iqr|zscore
func (rt *Router) handleExplore(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := services.ExploreRequest{GroupBy: q.Get("group_by"), OutlierMethod: q.Get("outliers")}
	report, err := rt.svc.Analysis.Explore(tenantOf(r), r.PathValue("id"), middleware.LocaleFromContext(r.Context()), req)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GET /api/metrics/alpha?scale_id=...
func (rt *Router) handleAlpha(w http.ResponseWriter, r *http.Request) {
	scaleID := r.URL.Query().Get("scale_id")
	if scaleID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "scale_id required", Code: string(services.ErrorInvalid)})
		return
	}
	res, err := rt.svc.Analysis.Alpha(tenantOf(r), scaleID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scale_id": scaleID, "alpha": res.Alpha, "n": res.NObservations, "result": res})
}
