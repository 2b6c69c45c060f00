// Package deroute mounts declaratively described controllers on a chi router.
//
// A controller is built in two phases. Method annotations (Get, Post, Custom, ...) are applied
// to handlers with Handle and accumulate in the controller's pending registry. Mount then
// consumes that registry, builds a sub-router and attaches it to the host under the
// controller's prefix, behind its prefix-level middlewares.
//
//	c := deroute.Router("/user", requireAuth).
//		HandleFunc(deroute.Get("/"), users.Index).
//		HandleFunc(deroute.Post("/", audit), users.Create)
//
// Register is the bootstrap entry point: it mounts explicitly listed controllers, then walks
// one or more route directories breadth-first, loading every manifest file exactly once and
// mounting the controllers it describes.
package deroute
