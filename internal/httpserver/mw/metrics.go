package mw

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/deroute/internal/metrics"
)

// Metrics records request count, latency and in-flight gauge per matched route pattern.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w}

			m.Begin()
			defer func() {
				m.ObserveRequest(r.Method, routePattern(r), ww.code(), time.Since(start))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
