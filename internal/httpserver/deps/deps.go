package deps

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/deroute/internal/index"
	"github.com/MrSnakeDoc/deroute/internal/logger"
	"github.com/MrSnakeDoc/deroute/internal/metrics"
)

// HitCounter counts requests per route. Backed by Redis when configured,
// by the memory index otherwise.
type HitCounter interface {
	Incr(ctx context.Context, method, pattern string) error
	All(ctx context.Context) (map[string]int64, error)
	Reset(ctx context.Context) error
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time   // for testing, defaults to time.Now
	AllowedHosts []string           // Host headers accepted by "enforce-host"
	AllowedCIDRS []string           // client IPs accepted by "allow-cidrs"
	TrustProxy   bool               // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateBurst    int                // "rate-limit" bucket size
	RatePerMin   int                // "rate-limit" refill per client per minute
	RedisClient  *redis.Client      // nil when hit counters live in memory
	MemoryIndex  *index.MemoryIndex // mounted route table (and in-memory hit counters)
	Hits         HitCounter         // request counters per route
	Metrics      *metrics.Metrics   // Prometheus collectors
}
