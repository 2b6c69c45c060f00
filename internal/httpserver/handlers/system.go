package handlers

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/MrSnakeDoc/deroute/internal/httpserver/deps"
	"github.com/MrSnakeDoc/deroute/internal/index"
	"github.com/MrSnakeDoc/deroute/internal/logger"
)

type routesResponse struct {
	Count  int               `json:"count"`
	Routes []index.RouteInfo `json:"routes"`
}

// Routes lists every mounted route in mount order.
func Routes(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routes := d.MemoryIndex.Routes()
		writeJSON(w, http.StatusOK, routesResponse{Count: len(routes), Routes: routes})
	}
}

type hitEntry struct {
	Route string `json:"route"`
	Count int64  `json:"count"`
}

type hitsResponse struct {
	Backend string     `json:"backend"`
	Hits    []hitEntry `json:"hits"`
}

// Hits returns request counters per route, busiest first.
// ?limit=N keeps the first N entries.
func Hits(d deps.Deps) http.HandlerFunc {
	backend := "memory"
	if d.RedisClient != nil {
		backend = "redis"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer", Status: http.StatusBadRequest})
				return
			}
			limit = n
		}

		counts, err := d.Hits.All(r.Context())
		if err != nil {
			d.Logger.Error("hits: read counters", logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "hit counters unavailable", Status: http.StatusServiceUnavailable})
			return
		}

		entries := make([]hitEntry, 0, len(counts))
		for route, n := range counts {
			entries = append(entries, hitEntry{Route: route, Count: n})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Count != entries[j].Count {
				return entries[i].Count > entries[j].Count
			}
			return entries[i].Route < entries[j].Route
		})
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}

		writeJSON(w, http.StatusOK, hitsResponse{Backend: backend, Hits: entries})
	}
}

// ResetHits drops every request counter.
func ResetHits(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Hits.Reset(r.Context()); err != nil {
			d.Logger.Error("hits: reset counters", logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "hit counters unavailable", Status: http.StatusServiceUnavailable})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
