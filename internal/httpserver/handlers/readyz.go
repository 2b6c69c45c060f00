package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/deroute/internal/httpserver/deps"
	"github.com/MrSnakeDoc/deroute/internal/logger"
)

type readyzResponse struct {
	Ready     bool       `json:"ready"`
	Prefixes  []string   `json:"prefixes"`
	Redis     string     `json:"redis"`
	LastMount *time.Time `json:"last_mount,omitempty"`
}

// Readyz reports ready once controllers are mounted and, when configured, Redis answers a ping.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{Ready: true, Redis: "disabled", Prefixes: []string{}}

		if d.MemoryIndex != nil {
			resp.Prefixes = d.MemoryIndex.Prefixes()
			if last := d.MemoryIndex.LastMount(); !last.IsZero() {
				resp.LastMount = &last
			}
		}
		if len(resp.Prefixes) == 0 {
			resp.Ready = false
		}

		if d.RedisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.RedisClient.Ping(ctx).Err(); err != nil {
				d.Logger.Warn("readyz: redis ping failed", logger.Error(err))
				resp.Ready = false
				resp.Redis = "down"
			} else {
				resp.Redis = "up"
			}
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
