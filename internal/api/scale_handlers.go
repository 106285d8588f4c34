package api

import (
	"net/http"

	"github.com/soaringjerry/synap-reliability/internal/middleware"
	"github.com/soaringjerry/synap-reliability/internal/services"
)

// POST /api/scales
func (rt *Router) handleCreateScale(w http.ResponseWriter, r *http.Request) {
	var sc services.Scale
	if !decodeJSON(w, r, &sc) {
		return
	}
	out, err := rt.svc.Scales.CreateScale(tenantOf(r), sc)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// GET /api/scales/{id}/items?lang=xx
func (rt *Router) handleListItems(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	items, err := rt.svc.Scales.ListItems(id, middleware.LocaleFromContext(r.Context()))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scale_id": id, "items": items})
}

// POST /api/scales/{id}/items
func (rt *Router) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var it services.Item
	if !decodeJSON(w, r, &it) {
		return
	}
	out, err := rt.svc.Scales.AddItem(tenantOf(r), r.PathValue("id"), it)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// PUT /api/scales/{id}/dimensions
// { dimensions: [{name, items: [item ids]}] }
func (rt *Router) handleSetDimensions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Dimensions []services.Dimension `json:"dimensions"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	dims, err := rt.svc.Scales.SetDimensions(tenantOf(r), r.PathValue("id"), req.Dimensions)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dimensions": dims})
}
