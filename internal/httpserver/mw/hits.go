package mw

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/deroute/internal/logger"
)

// Counter is the subset of deps.HitCounter the middleware needs.
type Counter interface {
	Incr(ctx context.Context, method, pattern string) error
}

// Hits counts every request against the route pattern chi matched.
// Requests answered 404 or 405 are not counted: below a mounted prefix they
// still match the mount's wildcard. Counter failures are logged, never surfaced.
func Hits(counter Counter, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(ww, r)

			switch ww.code() {
			case http.StatusNotFound, http.StatusMethodNotAllowed:
				return
			}
			pattern := routePattern(r)
			if pattern == "" {
				return
			}
			// The request context may already be cancelled once the handler returned.
			if err := counter.Incr(context.WithoutCancel(r.Context()), r.Method, pattern); err != nil {
				log.Warn("hit counter failed",
					logger.String("method", r.Method),
					logger.String("route", pattern),
					logger.Error(err))
			}
		})
	}
}
