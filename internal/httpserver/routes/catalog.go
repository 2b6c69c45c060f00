package routes

import (
	"time"

	"github.com/MrSnakeDoc/deroute/internal/httpserver/deps"
	"github.com/MrSnakeDoc/deroute/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/deroute/internal/httpserver/mw"
	"github.com/MrSnakeDoc/deroute/pkg/deroute"
)

// Catalog names every handler and middleware a route manifest may reference.
func Catalog(d deps.Deps) *deroute.Catalog {
	return deroute.NewCatalog().
		// routes/index.yaml
		HandlerFunc("index.get", handlers.Text("get /")).
		HandlerFunc("index.post", handlers.Text("post /")).
		HandlerFunc("index.put", handlers.Text("put /")).
		HandlerFunc("index.delete", handlers.Text("delete /")).
		HandlerFunc("index.all", handlers.Text("all /all")).
		HandlerFunc("index.custom", handlers.Text("custom /custom")).
		// routes/user.yaml, routes/middleware.yaml
		HandlerFunc("user.index", handlers.Text("Router /user")).
		HandlerFunc("middleware.index", handlers.Text("Router /middleware")).
		// routes/sub
		HandlerFunc("sub.index", handlers.Text("sub/index/")).
		HandlerFunc("sub.a", handlers.Text("sub/a/")).
		Middleware("custom-header", mw.SetHeader("Custom-Header", "express-derouter")).
		Middleware("allow-cidrs", mw.AllowCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).
		Middleware("enforce-host", mw.EnforceHost(d.AllowedHosts, d.Logger)).
		Middleware("rate-limit", mw.RateLimit(mw.RateLimitConfig{
			Burst:         d.RateBurst,
			RefillPerMin:  d.RatePerMin,
			MaxEntries:    10000,
			SweepInterval: time.Minute,
			IdleTTL:       15 * time.Minute,
			TrustProxy:    d.TrustProxy,
		}))
}
