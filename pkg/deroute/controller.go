package deroute

import (
	"fmt"
	"net/http"
)

// Route is one flattened registration: the middleware chain runs before Handler.
type Route struct {
	Method      string
	Pattern     string
	Middlewares []Middleware
	Handler     http.Handler
}

// Controller collects routes under a common prefix until it is mounted.
type Controller struct {
	prefix      string
	options     RouterOptions
	middlewares []Middleware
	pending     *registry
	err         error
}

// Router starts a controller mounted at prefix.
//
// The first argument after the prefix may be a RouterOptions (or a pointer to one, or nil).
// When it is a middleware instead, it is taken as the first prefix-level middleware and
// default options apply. All remaining arguments must be middlewares.
func Router(prefix string, args ...any) *Controller {
	c := &Controller{prefix: prefix, pending: newRegistry()}

	for i, arg := range args {
		switch v := arg.(type) {
		case Middleware:
			c.middlewares = append(c.middlewares, v)
			continue
		case nil:
			if i == 0 {
				continue
			}
		case RouterOptions:
			if i == 0 {
				c.options = v
				continue
			}
		case *RouterOptions:
			if i == 0 {
				if v != nil {
					c.options = *v
				}
				continue
			}
		}
		c.fail(fmt.Errorf("%w: argument %d is %T", ErrInvalidRouterArg, i+1, arg))
	}

	return c
}

// Prefix returns the mount prefix.
func (c *Controller) Prefix() string { return c.prefix }

// Handle records h under the annotation's method and pattern.
// A second registration of the same method and pattern replaces the first.
func (c *Controller) Handle(a Annotation, h http.Handler) *Controller {
	if a.method == "" {
		c.fail(fmt.Errorf("%w: pattern %q", ErrInvalidMethod, a.pattern))
		return c
	}
	c.pending.set(a.method, a.pattern, binding{middlewares: a.middlewares, handler: h})
	return c
}

func (c *Controller) HandleFunc(a Annotation, fn func(http.ResponseWriter, *http.Request)) *Controller {
	return c.Handle(a, http.HandlerFunc(fn))
}

// Routes returns the pending routes in the order Mount installs them.
func (c *Controller) Routes() []Route {
	return c.pending.flatten()
}

// Err returns the first construction error, if any.
func (c *Controller) Err() error { return c.err }

func (c *Controller) fail(err error) {
	if c.err == nil {
		c.err = configErr("router "+c.prefix, err)
	}
}

type binding struct {
	middlewares []Middleware
	handler     http.Handler
}

// registry is the pending method -> pattern -> binding table. Both levels keep
// insertion order; overwriting a key keeps its original position.
type registry struct {
	methods []string
	table   map[string]*patternTable
}

type patternTable struct {
	patterns []string
	bindings map[string]binding
}

func newRegistry() *registry {
	return &registry{table: make(map[string]*patternTable)}
}

func (r *registry) set(method, pattern string, b binding) {
	pt, ok := r.table[method]
	if !ok {
		pt = &patternTable{bindings: make(map[string]binding)}
		r.table[method] = pt
		r.methods = append(r.methods, method)
	}
	if _, exists := pt.bindings[pattern]; !exists {
		pt.patterns = append(pt.patterns, pattern)
	}
	pt.bindings[pattern] = b
}

func (r *registry) flatten() []Route {
	var out []Route
	for _, m := range r.methods {
		pt := r.table[m]
		for _, p := range pt.patterns {
			b := pt.bindings[p]
			out = append(out, Route{
				Method:      m,
				Pattern:     p,
				Middlewares: b.middlewares,
				Handler:     b.handler,
			})
		}
	}
	return out
}

func (r *registry) clear() {
	r.methods = nil
	r.table = make(map[string]*patternTable)
}
