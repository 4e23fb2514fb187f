package appMiddleware

import (
	"log/slog"
	"net/http"
	"strings"
)

// RecoverPanic is the top-level safety net. Any unhandled panic is logged
// with the method and path that caused it and surfaced to the caller as a
// generic 500 without leaking internals. Requests to the server-rendered
// surface are redirected to the error view instead of receiving a raw
// status page.
func RecoverPanic(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorContext(r.Context(), "Unhandled panic",
						slog.Any("error", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)

					if strings.HasPrefix(r.URL.Path, "/api/") {
						w.Header().Set("Content-Type", "application/json")
						w.WriteHeader(http.StatusInternalServerError)
						w.Write([]byte(`{"success":false,"message":"Internal Server Error","data":null,"errors":[]}`))
						return
					}
					http.Redirect(w, r, "/error", http.StatusFound)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
