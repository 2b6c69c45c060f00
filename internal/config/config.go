package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/deroute/pkg/deroute"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout applied by the root router

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	RoutesDirs deroute.Dirs // route manifest roots, walked in order (ex: "./routes,./extra")

	// Redis (optional, empty addr = hit counters disabled)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	AllowedHosts []string // optional, Host headers accepted by the "enforce-host" middleware
	AllowedCIDRS []string // optional, client IPs accepted by the "allow-cidrs" middleware
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	RateBurst  int // "rate-limit" middleware bucket size
	RatePerMin int // "rate-limit" middleware refill per client per minute
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("DEROUTE_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("DEROUTE_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("DEROUTE_REQUEST_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("DEROUTE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("DEROUTE_PRETTY_LOG", true),

		// Route discovery
		RoutesDirs: getenvDirs("DEROUTE_ROUTES_DIR", deroute.Dirs{"./routes"}),

		// Redis settings
		RedisAddr:           getenv("DEROUTE_REDIS_ADDR", ""),
		RedisUser:           getenv("DEROUTE_REDIS_USERNAME", ""),
		RedisPassword:       getenv("DEROUTE_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("DEROUTE_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("DEROUTE_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("DEROUTE_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("DEROUTE_TRUST_PROXY", false),

		RateBurst:  getenvInt("DEROUTE_RATE_BURST", 20),
		RatePerMin: getenvInt("DEROUTE_RATE_PER_MIN", 60),
	}

	if len(cfg.RoutesDirs) == 0 {
		panic("❌ FATAL: DEROUTE_ROUTES_DIR must name at least one directory")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// RedisEnabled reports whether a Redis address was configured.
func (c *Config) RedisEnabled() bool { return c.RedisAddr != "" }

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvDirs decodes a comma separated directory list.
func getenvDirs(key string, def deroute.Dirs) deroute.Dirs {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var dirs deroute.Dirs
	if err := dirs.UnmarshalText([]byte(v)); err != nil {
		log.Printf("[WARN] invalid %s=%q: %v", key, v, err)
		return def
	}
	return dirs
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
