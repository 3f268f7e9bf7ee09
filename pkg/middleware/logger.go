package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kubev2v/coach-importer/pkg/requestid"
)

// Logger logs every request once it completed, at a level following the
// response status. Health checks are logged at debug.
func Logger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := r.URL.Path
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			fields := []any{
				"request_id", requestid.FromRequest(r),
				"status", ww.Status(),
				"method", r.Method,
				"path", path,
				"route", routePattern(r),
				"query", r.URL.RawQuery,
				"ip", getClientIP(r),
				"user-agent", r.UserAgent(),
				"latency", time.Since(start),
				"response_bytes", ww.BytesWritten(),
			}

			logger := zap.S().Named("http")
			switch {
			case ww.Status() >= 500:
				logger.Errorw("Request completed", fields...)
			case ww.Status() >= 400:
				logger.Warnw("Request completed", fields...)
			case r.Method == http.MethodGet && path == "/health":
				logger.Debugw("Request completed", fields...)
			default:
				logger.Infow("Request completed", fields...)
			}
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

// getClientIP prefers the first X-Forwarded-For address, then X-Real-IP.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return r.RemoteAddr
}
