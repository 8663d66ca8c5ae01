package middleware

import (
	"fmt"
	"net/http"

	"pokedex-backend/pkg/api"

	"go.uber.org/zap"
)

// Recovery converts a panic into a 500 JSON response and logs it with the
// stack and the request ID.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("panic recovered",
					zap.String("request_id", GetRequestIDFromRequest(r)),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("panic", fmt.Sprint(rec)),
					zap.Stack("stack"),
				)

				// Nothing can be sent once the handler started its response.
				if w.Header().Get("Content-Type") == "" {
					api.Error(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
