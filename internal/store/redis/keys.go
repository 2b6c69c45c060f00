package redis

import "strings"

const (
	// KeyPrefix namespaces every key this application writes.
	KeyPrefix = "deroute:"
	// KeyHits is the hash of request counters, one field per mounted route.
	KeyHits = KeyPrefix + "hits"
)

// HitsKey returns the Redis key of the hit counter hash.
func HitsKey() string {
	return KeyHits
}

// HitField returns the hash field counting requests to a route pattern.
// Example: ("get", "/user") -> "GET /user"
func HitField(method, pattern string) string {
	return strings.ToUpper(method) + " " + pattern
}
