package middleware

import (
	"context"
	"net/http"

	"github.com/soaringjerry/synap-reliability/internal/utils"
)

type ctxKey int

const localeKey ctxKey = 1

// LocaleMiddleware stores the label language chosen from the lang query
// parameter or Accept-Language in the request context.
func LocaleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := utils.DetermineLocale(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", locale)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), localeKey, locale)))
	})
}

func LocaleFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(localeKey).(string); ok && s != "" {
		return s
	}
	return utils.DefaultLocale
}
