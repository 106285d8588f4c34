package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soaringjerry/synap-reliability/internal/db"
	"github.com/soaringjerry/synap-reliability/internal/middleware"
	"github.com/soaringjerry/synap-reliability/internal/psychometrics"
	"github.com/soaringjerry/synap-reliability/internal/services"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	sqlDB, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.RunMigrations(sqlDB, "", nil))
	store, err := db.NewSQLiteStore(sqlDB, zap.NewNop())
	require.NoError(t, err)

	tokens, err := middleware.NewTokens("router-test")
	require.NoError(t, err)
	analyzer, err := psychometrics.NewAnalyzer(psychometrics.DefaultConfig(), zap.NewNop())
	require.NoError(t, err)

	rt := NewRouter(Services{
		Auth:      services.NewAuthService(store, tokens.Sign, 0),
		Scales:    services.NewScaleService(store),
		Responses: services.NewResponseService(store, 4),
		Analysis:  services.NewAnalysisService(store, analyzer, nil, zap.NewNop()),
	}, tokens, zap.NewNop())
	return &testServer{t: t, handler: rt.Handler()}
}

func (s *testServer) do(method, path, token string, body any) (int, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	var out map[string]any
	if rr.Body.Len() > 0 && rr.Body.Bytes()[0] == '{' {
		require.NoError(s.t, json.Unmarshal(rr.Body.Bytes(), &out))
	}
	return rr.Code, out
}

func (s *testServer) register(email string) string {
	s.t.Helper()
	code, out := s.do(http.MethodPost, "/api/auth/register", "", map[string]any{"email": email, "password": "correct-horse"})
	require.Equal(s.t, http.StatusCreated, code, out)
	return out["token"].(string)
}

func clamp(v int) int {
	return max(1, min(5, v))
}

// seed creates scale S1 with four Likert items and a numeric GPA item, then
// submits answers for 30 participants.
func (s *testServer) seed(token string) {
	s.t.Helper()
	code, out := s.do(http.MethodPost, "/api/scales", token, map[string]any{"id": "S1", "points": 5})
	require.Equal(s.t, http.StatusCreated, code, out)
	for k := 1; k <= 4; k++ {
		code, out = s.do(http.MethodPost, "/api/scales/S1/items", token, map[string]any{
			"id":        fmt.Sprintf("Q%d", k),
			"stem_i18n": map[string]string{"es": fmt.Sprintf("Pregunta %d", k), "en": fmt.Sprintf("Question %d", k)},
		})
		require.Equal(s.t, http.StatusCreated, code, out)
	}
	code, out = s.do(http.MethodPost, "/api/scales/S1/items", token, map[string]any{
		"id": "GPA", "type": "numeric", "stem_i18n": map[string]string{"es": "Promedio"},
	})
	require.Equal(s.t, http.StatusCreated, code, out)

	for i := 0; i < 30; i++ {
		base := i%5 + 1
		total := 0
		answers := []map[string]any{}
		for k := 1; k <= 4; k++ {
			v := clamp(base + (i+k)%3 - 1)
			total += v
			answers = append(answers, map[string]any{"item_id": fmt.Sprintf("Q%d", k), "raw_value": v})
		}
		answers = append(answers, map[string]any{"item_id": "GPA", "raw_value": total + i%2})
		code, out = s.do(http.MethodPost, "/api/responses/bulk", "", map[string]any{
			"participant": map[string]string{"email": fmt.Sprintf("p%d@example.com", i)},
			"scale_id":    "S1",
			"answers":     answers,
		})
		require.Equal(s.t, http.StatusOK, code, out)
		require.EqualValues(s.t, 5, out["count"])
	}
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)
	srv.register("owner@example.com")

	code, out := srv.do(http.MethodPost, "/api/auth/register", "", map[string]any{"email": "owner@example.com", "password": "correct-horse"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "conflict", out["code"])

	code, out = srv.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "OWNER@example.com", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, out["token"])

	code, _ = srv.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "owner@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = srv.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "x@example.com", "extra": 1})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestScaleRoutes(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register("owner@example.com")
	srv.seed(token)

	code, _ := srv.do(http.MethodPost, "/api/scales", "", map[string]any{"id": "S2"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, out := srv.do(http.MethodGet, "/api/scales/S1/items?lang=en", "", nil)
	require.Equal(t, http.StatusOK, code)
	items := out["items"].([]any)
	require.Len(t, items, 5)
	assert.Equal(t, "Question 1", items[0].(map[string]any)["stem"])
	assert.Equal(t, "Promedio", items[4].(map[string]any)["stem"])

	code, _ = srv.do(http.MethodGet, "/api/scales/nope/items", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, out = srv.do(http.MethodPut, "/api/scales/S1/dimensions", token, map[string]any{
		"dimensions": []map[string]any{
			{"name": "A", "items": []string{"Q1", "Q2"}},
			{"name": "B", "items": []string{"Q3", "Q4"}},
		},
	})
	require.Equal(t, http.StatusOK, code, out)
	assert.Len(t, out["dimensions"], 2)

	code, _ = srv.do(http.MethodPut, "/api/scales/S1/dimensions", token, map[string]any{
		"dimensions": []map[string]any{{"name": "A", "items": []string{"ghost"}}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAnalysisRoutes(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register("owner@example.com")
	srv.seed(token)

	code, out := srv.do(http.MethodGet, "/api/metrics/alpha?scale_id=S1", token, nil)
	require.Equal(t, http.StatusOK, code, out)
	assert.Greater(t, out["alpha"].(float64), 0.0)
	assert.EqualValues(t, 30, out["n"])

	code, _ = srv.do(http.MethodGet, "/api/metrics/alpha", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, out = srv.do(http.MethodGet, "/api/scales/S1/analytics", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 150, out["total_responses"])
	assert.EqualValues(t, 30, out["participants"])

	code, out = srv.do(http.MethodPost, "/api/scales/S1/analysis?lang=en", token, nil)
	require.Equal(t, http.StatusOK, code, out)
	assert.EqualValues(t, 30, out["respondents"])
	assert.Equal(t, "en", out["locale"])
	report := out["report"].(map[string]any)
	assert.Contains(t, report["by_dimension"], services.DefaultDimension)

	code, out = srv.do(http.MethodPost, "/api/scales/S1/analysis", token, map[string]any{"include_validity": true, "criterion": "GPA"})
	require.Equal(t, http.StatusOK, code, out)
	assert.NotNil(t, out["report"].(map[string]any)["validity"])

	code, out = srv.do(http.MethodPost, "/api/scales/S1/analysis", token, map[string]any{"criterion": "nope"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid", out["code"])
}

func TestContentValidityRoutes(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register("owner@example.com")
	srv.seed(token)

	code, out := srv.do(http.MethodGet, "/api/scales/S1/content-validity", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "no_data", out["reason"])

	// Judge ratings are owner-submitted; the route is not public.
	code, _ = srv.do(http.MethodPost, "/api/scales/S1/ratings", "", map[string]any{
		"judge": "j1", "ratings": []map[string]any{{"item_id": "Q1", "score": 4}},
	})
	assert.Equal(t, http.StatusUnauthorized, code)

	for _, judge := range []string{"j1", "j2"} {
		ratings := []map[string]any{}
		for k := 1; k <= 4; k++ {
			ratings = append(ratings, map[string]any{"item_id": fmt.Sprintf("Q%d", k), "score": 4})
		}
		code, out = srv.do(http.MethodPost, "/api/scales/S1/ratings", token, map[string]any{"judge": judge, "ratings": ratings})
		require.Equal(t, http.StatusOK, code, out)
		assert.EqualValues(t, 4, out["count"])
	}

	code, out = srv.do(http.MethodGet, "/api/scales/S1/content-validity", token, nil)
	require.Equal(t, http.StatusOK, code, out)
	assert.Equal(t, 1.0, out["ivc_total"])
}

func TestInferentialRoutes(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register("owner@example.com")
	srv.seed(token)

	code, out := srv.do(http.MethodPost, "/api/scales/S1/inferential?lang=en", token, map[string]any{
		"test": "regression", "variable": "GPA", "second": "Q1",
	})
	require.Equal(t, http.StatusOK, code, out)
	assert.Equal(t, "simple_regression", out["kind"])
	result := out["result"].(map[string]any)
	assert.Greater(t, result["slope"].(float64), 0.0)
	assert.Equal(t, "reject", result["interpretation"].(map[string]any)["code"])

	code, out = srv.do(http.MethodPost, "/api/scales/S1/inferential", token, map[string]any{
		"test": "correlation", "variable": "Q1", "second": "Q2", "method": "kendall",
	})
	require.Equal(t, http.StatusOK, code, out)
	assert.Equal(t, "kendall", out["result"].(map[string]any)["method"])

	code, out = srv.do(http.MethodPost, "/api/scales/S1/inferential", token, map[string]any{
		"test": "t_independent", "variable": "GPA", "group": "Q1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "invalid_groups", out["reason"])

	code, out = srv.do(http.MethodPost, "/api/scales/S1/inferential", token, map[string]any{"test": "sign_test", "variable": "GPA"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid", out["code"])

	code, _ = srv.do(http.MethodPost, "/api/scales/S1/inferential", "", map[string]any{"test": "anova", "variable": "GPA", "group": "Q1"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, out = srv.do(http.MethodGet, "/api/scales/S1/exploratory?outliers=iqr", token, nil)
	require.Equal(t, http.StatusOK, code, out)
	assert.Len(t, out["frequencies"], 4)
	assert.Len(t, out["normality"], 4)

	code, _ = srv.do(http.MethodGet, "/api/scales/S1/exploratory?outliers=grubbs", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestTenantIsolation(t *testing.T) {
	srv := newTestServer(t)
	owner := srv.register("owner@example.com")
	srv.seed(owner)
	other := srv.register("other@example.com")

	for _, c := range []struct{ method, path string }{
		{http.MethodGet, "/api/scales/S1/analytics"},
		{http.MethodPost, "/api/scales/S1/analysis"},
		{http.MethodGet, "/api/metrics/alpha?scale_id=S1"},
		{http.MethodGet, "/api/scales/S1/content-validity"},
		{http.MethodGet, "/api/scales/S1/exploratory"},
	} {
		code, _ := srv.do(c.method, c.path, other, nil)
		assert.Equal(t, http.StatusForbidden, code, c.path)
		code, _ = srv.do(c.method, c.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, c.path)
	}
}
