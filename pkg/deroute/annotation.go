package deroute

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// MethodAll matches every HTTP method.
const MethodAll = "all"

type (
	// Middleware wraps the next handler in the chain.
	Middleware = func(http.Handler) http.Handler

	// Annotation is the routing metadata a method annotation attaches to a handler.
	Annotation struct {
		method      string
		pattern     string
		middlewares []Middleware
	}
)

// Method returns the lower-cased verb.
func (a Annotation) Method() string { return a.method }

// Pattern returns the path pattern relative to the controller prefix.
func (a Annotation) Pattern() string { return a.pattern }

// annotate registers custom verbs with chi right away: a route installed with
// All only covers the verbs chi knows when it is mounted.
func annotate(method, pattern string, mws []Middleware) Annotation {
	if method != "" && !strings.EqualFold(method, MethodAll) {
		chi.RegisterMethod(method)
	}
	return Annotation{
		method:      strings.ToLower(method),
		pattern:     pattern,
		middlewares: mws,
	}
}

func Get(pattern string, mws ...Middleware) Annotation {
	return annotate(http.MethodGet, pattern, mws)
}

func Post(pattern string, mws ...Middleware) Annotation {
	return annotate(http.MethodPost, pattern, mws)
}

func Put(pattern string, mws ...Middleware) Annotation {
	return annotate(http.MethodPut, pattern, mws)
}

func Patch(pattern string, mws ...Middleware) Annotation {
	return annotate(http.MethodPatch, pattern, mws)
}

func Delete(pattern string, mws ...Middleware) Annotation {
	return annotate(http.MethodDelete, pattern, mws)
}

// All matches the pattern for any HTTP method.
func All(pattern string, mws ...Middleware) Annotation {
	return annotate(MethodAll, pattern, mws)
}

// Custom annotates an arbitrary verb. The name is case-insensitive, so
// Custom("GET", p) and Get(p) install the same route.
func Custom(method, pattern string, mws ...Middleware) Annotation {
	return annotate(method, pattern, mws)
}
