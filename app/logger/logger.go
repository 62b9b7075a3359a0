// Package logger provides the slog request-logging middleware mounted in
// front of every route.
package logger

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// StructuredLogger logs one line per completed request. A debug line is
// emitted up front as well: budget aggregations can legitimately run tens
// of seconds, and a request that is only visible once it finishes is a
// request that looks hung in the meantime. Mount after RequestID so the
// req_id attribute is populated.
func StructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			l := logger.With(
				slog.String("req_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
			)
			l.DebugContext(r.Context(), "request started")

			next.ServeHTTP(ww, r)

			// The route pattern is only known once routing has finished.
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					l = l.With(slog.String("route", pattern))
				}
			}
			l.InfoContext(r.Context(), "request completed",
				slog.Int("status", ww.Status()),
				slog.Int("bytes_written", ww.BytesWritten()),
				slog.Duration("elapsed", time.Since(start)),
			)
		})
	}
}
