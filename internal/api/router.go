package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/soaringjerry/synap-reliability/internal/middleware"
	"github.com/soaringjerry/synap-reliability/internal/services"
)

// Services groups the application services the HTTP layer dispatches to.
type Services struct {
	Auth      *services.AuthService
	Scales    *services.ScaleService
	Responses *services.ResponseService
	Analysis  *services.AnalysisService
}

type Router struct {
	svc    Services
	tokens *middleware.Tokens
	logger *zap.Logger
}

func NewRouter(svc Services, tokens *middleware.Tokens, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{svc: svc, tokens: tokens, logger: logger.Named("api")}
}

// Register mounts the API under /api on mux. Participant submissions and
// item listing are public; every other route, judge ratings included,
// requires a bearer token.
func (rt *Router) Register(mux *http.ServeMux) {
	auth := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }

	mux.HandleFunc("POST /api/auth/register", rt.handleRegister)
	mux.HandleFunc("POST /api/auth/login", rt.handleLogin)

	mux.Handle("POST /api/scales", auth(rt.handleCreateScale))
	mux.HandleFunc("GET /api/scales/{id}/items", rt.handleListItems)
	mux.Handle("POST /api/scales/{id}/items", auth(rt.handleAddItem))
	mux.Handle("PUT /api/scales/{id}/dimensions", auth(rt.handleSetDimensions))
	mux.Handle("POST /api/scales/{id}/ratings", auth(rt.handleRatings))
	mux.Handle("GET /api/scales/{id}/analytics", auth(rt.handleSummary))
	mux.Handle("POST /api/scales/{id}/analysis", auth(rt.handleAnalyze))
	mux.Handle("GET /api/scales/{id}/content-validity", auth(rt.handleContentValidity))
	mux.Handle("POST /api/scales/{id}/inferential", auth(rt.handleInferential))
	mux.Handle("GET /api/scales/{id}/exploratory", auth(rt.handleExplore))

	mux.HandleFunc("POST /api/responses/bulk", rt.handleBulkResponses)
	mux.Handle("GET /api/metrics/alpha", auth(rt.handleAlpha))
}

// Handler returns the API wrapped in auth, locale and header middleware.
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	rt.Register(mux)
	var h http.Handler = mux
	h = middleware.NoStore(h)
	h = middleware.LocaleMiddleware(h)
	h = rt.tokens.WithAuth(h)
	return h
}
