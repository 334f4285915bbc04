package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// slowRequest is the duration above which a request is logged as slow.
const slowRequest = 3 * time.Second

// skipLogPaths are high-frequency paths left out of the request log.
var skipLogPaths = map[string]bool{
	"/health": true,
}

// RequestLogger returns middleware that logs each request once it completes.
// 5xx responses log at Error, 4xx and slow requests at Warn, the rest at Info.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipLogPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			attrs := []any{
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", elapsed.Milliseconds(),
				"remote_addr", r.RemoteAddr,
			}

			switch {
			case status >= http.StatusInternalServerError:
				logger.Error("Request failed", attrs...)
			case status >= http.StatusBadRequest:
				logger.Warn("Request rejected", attrs...)
			case elapsed > slowRequest:
				logger.Warn("Slow request", attrs...)
			default:
				logger.Info("Request completed", attrs...)
			}
		})
	}
}
