package api

import (
	"net/http"

	"github.com/soaringjerry/synap-reliability/internal/services"
)

// POST /api/responses/bulk
// { participant: {email?: string}, scale_id: string, answers: [{item_id, raw_value}] }
func (rt *Router) handleBulkResponses(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Participant struct {
			Email string `json:"email"`
		} `json:"participant"`
		ScaleID string            `json:"scale_id"`
		Answers []services.Answer `json:"answers"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := rt.svc.Responses.Submit(services.BulkResponsesRequest{
		ScaleID:          req.ScaleID,
		ParticipantEmail: req.Participant.Email,
		Answers:          req.Answers,
	})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /api/scales/{id}/ratings
// { judge: string, ratings: [{item_id, score}] }
func (rt *Router) handleRatings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Judge   string                 `json:"judge"`
		Ratings []services.JudgeRating `json:"ratings"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := rt.svc.Responses.SubmitRatings(tenantOf(r), r.PathValue("id"), req.Judge, req.Ratings)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "count": n})
}
