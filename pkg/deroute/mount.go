package deroute

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Host is the part of the application router a controller mounts onto.
// chi.Router satisfies it.
type Host interface {
	Mount(pattern string, h http.Handler)
	With(middlewares ...func(http.Handler) http.Handler) chi.Router
}

// RouterOptions configures the sub-router built for a controller.
type RouterOptions struct {
	// Strict distinguishes "/x" from "/x/". Off by default: a trailing slash is ignored.
	Strict bool

	// Middlewares run for every request the sub-router handles, before route middlewares.
	Middlewares []Middleware

	NotFound         http.HandlerFunc
	MethodNotAllowed http.HandlerFunc
}

func newSubRouter(opts RouterOptions) *chi.Mux {
	sub := chi.NewRouter()
	if !opts.Strict {
		sub.Use(middleware.StripSlashes)
	}
	sub.Use(opts.Middlewares...)
	if opts.NotFound != nil {
		sub.NotFound(opts.NotFound)
	}
	if opts.MethodNotAllowed != nil {
		sub.MethodNotAllowed(opts.MethodNotAllowed)
	}
	return sub
}

// Mount installs every pending route on a fresh sub-router, clears the pending
// registry and mounts the sub-router on host at the controller prefix, behind the
// prefix-level middlewares. A controller without routes mounts an empty sub-router.
//
// A second controller on an already mounted prefix fails here; Registrar stacks
// such controllers instead.
func (c *Controller) Mount(host Host) error {
	_, err := c.mount(host)
	return err
}

func (c *Controller) mount(host Host) (sub *chi.Mux, err error) {
	if isNilHost(host) {
		return nil, configErr("mount "+c.prefix, ErrNoApplication)
	}
	if c.err != nil {
		return nil, c.err
	}

	// chi reports conflicting or malformed patterns by panicking.
	defer func() {
		if r := recover(); r != nil {
			sub, err = nil, fmt.Errorf("mount %s: %v", c.prefix, r)
		}
	}()

	sub = c.build()
	if len(c.middlewares) == 0 {
		host.Mount(c.prefix, sub)
	} else {
		host.With(c.middlewares...).Mount(c.prefix, sub)
	}
	return sub, nil
}

// stack chains c behind tail, a sub-router already mounted at the same prefix.
// Requests tail answers with 404 or 405 fall through to c, after c's prefix-level
// middlewares. c inherits tail's fallback handlers and becomes the new tail.
func (c *Controller) stack(tail *chi.Mux) (sub *chi.Mux, err error) {
	if c.err != nil {
		return nil, c.err
	}

	defer func() {
		if r := recover(); r != nil {
			sub, err = nil, fmt.Errorf("mount %s: %v", c.prefix, r)
		}
	}()

	sub = c.build()
	if c.options.NotFound == nil {
		sub.NotFound(tail.NotFoundHandler())
	}
	if c.options.MethodNotAllowed == nil {
		sub.MethodNotAllowed(tail.MethodNotAllowedHandler())
	}

	next := chi.Chain(c.middlewares...).Handler(sub)
	tail.NotFound(next.ServeHTTP)
	tail.MethodNotAllowed(next.ServeHTTP)
	return sub, nil
}

// build attaches the pending routes to a new sub-router and clears them.
func (c *Controller) build() *chi.Mux {
	sub := newSubRouter(c.options)
	for _, rt := range c.pending.flatten() {
		attach(sub, rt)
	}
	c.pending.clear()
	return sub
}

// isNilHost also catches a typed nil such as (*chi.Mux)(nil).
func isNilHost(host Host) bool {
	if host == nil {
		return true
	}
	v := reflect.ValueOf(host)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func:
		return v.IsNil()
	}
	return false
}

func attach(r chi.Router, rt Route) {
	if len(rt.Middlewares) > 0 {
		r = r.With(rt.Middlewares...)
	}
	if rt.Method == MethodAll {
		r.Handle(rt.Pattern, rt.Handler)
		return
	}
	r.Method(strings.ToUpper(rt.Method), rt.Pattern, rt.Handler)
}
