// internal/api/middleware.go
package api

import (
	"net/http"
	"strconv"
	"time"

	"loan-origination/internal/common/logger"
	"loan-origination/internal/common/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
)

// RequestLogger logs one line per served request.
func RequestLogger(log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				fields := map[string]interface{}{
					"method":       r.Method,
					"path":         r.URL.Path,
					"remoteAddr":   r.RemoteAddr,
					"status":       ww.Status(),
					"latencyMs":    float64(time.Since(start).Nanoseconds()) / 1e6,
					"bytesWritten": ww.BytesWritten(),
					"requestId":    middleware.GetReqID(r.Context()),
					"traceId":      traceid.FromContext(r.Context()),
				}
				if ww.Status() >= http.StatusInternalServerError {
					log.Warn("served request", fields)
					return
				}
				log.Info("served request", fields)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// Metrics records request counts and latency by route pattern.
func Metrics() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				route := r.URL.Path
				if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
					route = rctx.RoutePattern()
				}
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
				metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
