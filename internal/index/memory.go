package index

import (
	"context"
	"sync"
	"time"
)

// RouteInfo describes one installed route, with its full path.
type RouteInfo struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Prefix  string `json:"prefix"`
	Pattern string `json:"pattern"`
}

// MemoryIndex keeps the mounted route table and, when Redis is not configured,
// the per-route hit counters.
type MemoryIndex struct {
	mu        sync.RWMutex
	prefixes  []string               // mount order
	routes    map[string][]RouteInfo // prefix -> routes
	hits      map[string]int64       // "METHOD pattern" -> count
	lastMount time.Time
}

// NewMemoryIndex creates an empty index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		routes: make(map[string][]RouteInfo),
		hits:   make(map[string]int64),
	}
}

// RecordMount adds the routes of a controller mounted at prefix.
// Mounting the same prefix again appends to its routes.
func (idx *MemoryIndex) RecordMount(prefix string, routes []RouteInfo) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.routes[prefix]; !ok {
		idx.prefixes = append(idx.prefixes, prefix)
	}
	idx.routes[prefix] = append(idx.routes[prefix], routes...)
	idx.lastMount = time.Now()
}

// Routes returns every recorded route in mount order.
func (idx *MemoryIndex) Routes() []RouteInfo {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]RouteInfo, 0, len(idx.prefixes))
	for _, p := range idx.prefixes {
		out = append(out, idx.routes[p]...)
	}
	return out
}

// Prefixes returns the mounted prefixes in mount order.
func (idx *MemoryIndex) Prefixes() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return append([]string(nil), idx.prefixes...)
}

// LastMount returns when the last controller was recorded.
func (idx *MemoryIndex) LastMount() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.lastMount
}

// Incr adds one request to the counter of method+pattern.
func (idx *MemoryIndex) Incr(_ context.Context, method, pattern string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.hits[method+" "+pattern]++
	return nil
}

// All returns a copy of the hit counters.
func (idx *MemoryIndex) All(_ context.Context) (map[string]int64, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make(map[string]int64, len(idx.hits))
	for k, v := range idx.hits {
		out[k] = v
	}
	return out, nil
}

// Reset drops every hit counter. The route table is kept.
func (idx *MemoryIndex) Reset(_ context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.hits = make(map[string]int64)
	return nil
}
