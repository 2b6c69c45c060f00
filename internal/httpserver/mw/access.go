package mw

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/deroute/internal/logger"
	"github.com/MrSnakeDoc/deroute/internal/utils"
)

type errorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// reject writes the JSON error envelope used by every route.
func reject(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: http.StatusText(status), Status: status})
}

func passthrough(next http.Handler) http.Handler { return next }

// AllowCIDRS lets through only clients whose IP matches one of the allowed IPs/CIDRs.
// An empty list disables the filter.
func AllowCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		log.Debug("allow-cidrs: no rules, passthrough")
		return passthrough
	}

	log.Debug("allow-cidrs: initialized",
		logger.Strings("rules", allowed),
		logger.Bool("trust_proxy", trustProxy))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Debug("allow-cidrs: rejected",
					logger.String("ip", ip),
					logger.String("path", r.URL.Path))
				reject(w, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// EnforceHost accepts requests whose Host header matches one of hosts.
// Patterns like "*.example.com" match any subdomain. An empty list disables the check.
func EnforceHost(hosts []string, log logger.Logger) func(http.Handler) http.Handler {
	if len(hosts) == 0 {
		log.Debug("enforce-host: no hosts, passthrough")
		return passthrough
	}

	log.Debug("enforce-host: initialized", logger.Strings("hosts", hosts))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := utils.ParseHostNoPort(r.Host)
			for _, pattern := range hosts {
				if matchHost(host, pattern) {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Debug("enforce-host: rejected", logger.String("host", r.Host))
			reject(w, http.StatusForbidden)
		})
	}
}

// matchHost compares case-insensitively; "*.example.com" does not match "example.com".
func matchHost(host, pattern string) bool {
	host = strings.ToLower(host)
	pattern = strings.ToLower(pattern)
	if host == pattern {
		return true
	}
	if strings.HasPrefix(pattern, "*.") {
		return strings.HasSuffix(host, pattern[1:])
	}
	return false
}
