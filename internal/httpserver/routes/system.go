package routes

import (
	"github.com/MrSnakeDoc/deroute/internal/httpserver/deps"
	"github.com/MrSnakeDoc/deroute/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/deroute/internal/httpserver/mw"
	"github.com/MrSnakeDoc/deroute/pkg/deroute"
)

// SystemPrefix is where the operational endpoints are mounted.
const SystemPrefix = "/_system"

// System builds the controller serving health, readiness, metrics and route stats.
// It is restricted by the CIDR allow list when one is configured.
func System(d deps.Deps) *deroute.Controller {
	return deroute.Router(SystemPrefix, mw.AllowCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).
		HandleFunc(deroute.Get("/healthz"), handlers.Healthz(d)).
		HandleFunc(deroute.Get("/readyz"), handlers.Readyz(d)).
		Handle(deroute.Get("/metrics"), d.Metrics.Handler()).
		HandleFunc(deroute.Get("/hits"), handlers.Hits(d)).
		HandleFunc(deroute.Delete("/hits"), handlers.ResetHits(d)).
		HandleFunc(deroute.Get("/routes"), handlers.Routes(d))
}
