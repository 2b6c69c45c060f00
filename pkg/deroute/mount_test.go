package deroute

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func trace(steps *[]string, name string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*steps = append(*steps, name)
			next.ServeHTTP(w, r)
		})
	}
}

func TestMountPrefixConcatenation(t *testing.T) {
	app := chi.NewRouter()
	c := Router("/user").HandleFunc(Get("/"), text("Router /user"))

	require.NoError(t, c.Mount(app))

	tests := []struct {
		name   string
		target string
		status int
		body   string
	}{
		{"prefix with slash", "/user/", http.StatusOK, "Router /user"},
		{"bare prefix", "/user", http.StatusOK, "Router /user"},
		{"unknown path under prefix", "/user/other", http.StatusNotFound, ""},
		{"outside prefix", "/users", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(app, http.MethodGet, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestMountEveryVerb(t *testing.T) {
	app := chi.NewRouter()
	c := Router("/").
		HandleFunc(Get("/"), text("get /")).
		HandleFunc(Post("/"), text("post /")).
		HandleFunc(Put("/"), text("put /")).
		HandleFunc(Delete("/"), text("delete /")).
		HandleFunc(All("/all"), text("all /all")).
		HandleFunc(Custom("get", "/custom"), text("custom /custom")).
		HandleFunc(Custom("purge", "/cache"), text("purged"))

	require.NoError(t, c.Mount(app))

	tests := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodGet, "/", "get /"},
		{http.MethodPost, "/", "post /"},
		{http.MethodPut, "/", "put /"},
		{http.MethodDelete, "/", "delete /"},
		{http.MethodGet, "/all", "all /all"},
		{http.MethodPost, "/all", "all /all"},
		{http.MethodPut, "/all", "all /all"},
		{http.MethodDelete, "/all", "all /all"},
		{http.MethodGet, "/custom", "custom /custom"},
		{"PURGE", "/cache", "purged"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := serve(app, tt.method, tt.target)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}

	assert.Equal(t, http.StatusMethodNotAllowed, serve(app, http.MethodPatch, "/").Code)
}

func TestMountMiddlewareOrder(t *testing.T) {
	var steps []string
	app := chi.NewRouter()

	c := Router("/chain",
		&RouterOptions{Middlewares: []Middleware{trace(&steps, "router")}},
		trace(&steps, "prefix"),
	).Handle(
		Get("/", trace(&steps, "route-1"), trace(&steps, "route-2")),
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			steps = append(steps, "handler")
		}),
	)

	require.NoError(t, c.Mount(app))
	serve(app, http.MethodGet, "/chain/")

	assert.Equal(t, []string{"prefix", "router", "route-1", "route-2", "handler"}, steps)
}

func TestPrefixMiddlewareAsSecondArgument(t *testing.T) {
	addHeader := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Custom-Header", "express-derouter")
			next.ServeHTTP(w, r)
		})
	}

	app := chi.NewRouter()
	require.NoError(t, Router("/middleware", addHeader).HandleFunc(Get("/"), text("Router /middleware")).Mount(app))
	require.NoError(t, Router("/plain").HandleFunc(Get("/"), text("plain")).Mount(app))

	rec := serve(app, http.MethodGet, "/middleware")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "express-derouter", rec.Header().Get("Custom-Header"))
	assert.Equal(t, "Router /middleware", rec.Body.String())

	missing := serve(app, http.MethodGet, "/middleware/missing")
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "express-derouter", missing.Header().Get("Custom-Header"), "runs for every path under the prefix")

	assert.Empty(t, serve(app, http.MethodGet, "/plain").Header().Get("Custom-Header"))
}

func TestMountEmptyController(t *testing.T) {
	app := chi.NewRouter()

	require.NoError(t, Router("/empty").Mount(app))
	assert.Equal(t, http.StatusNotFound, serve(app, http.MethodGet, "/empty/").Code)
}

func TestMountClearsPendingRoutes(t *testing.T) {
	c := Router("/once").HandleFunc(Get("/"), text("once"))
	require.Len(t, c.Routes(), 1)

	require.NoError(t, c.Mount(chi.NewRouter()))
	assert.Empty(t, c.Routes())
}

func TestMountWithoutApplication(t *testing.T) {
	c := Router("/x").HandleFunc(Get("/"), text("x"))

	err := c.Mount(nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoApplication)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Len(t, c.Routes(), 1, "nothing is consumed when mounting fails")
}

func TestMountTypedNilApplication(t *testing.T) {
	var app *chi.Mux

	err := Router("/x").HandleFunc(Get("/"), text("x")).Mount(app)

	assert.ErrorIs(t, err, ErrNoApplication)
}

func TestAllCoversVerbsAnnotatedLater(t *testing.T) {
	app := chi.NewRouter()
	c := Router("/").
		HandleFunc(All("/all"), text("all /all")).
		HandleFunc(Custom("brew", "/pot"), text("brew /pot"))
	require.NoError(t, c.Mount(app))

	assert.Equal(t, "brew /pot", serve(app, "BREW", "/pot").Body.String())
	rec := serve(app, "BREW", "/all")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "all /all", rec.Body.String())
}

func TestMountSurfacesConstructionErrors(t *testing.T) {
	c := Router("/x", 42)

	assert.ErrorIs(t, c.Mount(chi.NewRouter()), ErrInvalidRouterArg)
}

func TestMountConflictReturnsError(t *testing.T) {
	app := chi.NewRouter()
	require.NoError(t, Router("/dup").HandleFunc(Get("/"), text("a")).Mount(app))

	err := Router("/dup").HandleFunc(Get("/"), text("b")).Mount(app)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "/dup")
}

func TestStrictOption(t *testing.T) {
	app := chi.NewRouter()
	require.NoError(t, Router("/loose").HandleFunc(Get("/x"), text("x")).Mount(app))
	require.NoError(t, Router("/strict", RouterOptions{Strict: true}).HandleFunc(Get("/x"), text("x")).Mount(app))

	assert.Equal(t, http.StatusOK, serve(app, http.MethodGet, "/loose/x/").Code)
	assert.Equal(t, http.StatusOK, serve(app, http.MethodGet, "/strict/x").Code)
	assert.Equal(t, http.StatusNotFound, serve(app, http.MethodGet, "/strict/x/").Code)
}

func TestSubRouterNotFound(t *testing.T) {
	app := chi.NewRouter()
	opts := RouterOptions{NotFound: func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}}
	require.NoError(t, Router("/tea", opts).Mount(app))

	assert.Equal(t, http.StatusTeapot, serve(app, http.MethodGet, "/tea/cup").Code)
}

func TestPrefixWithURLParam(t *testing.T) {
	app := chi.NewRouter()
	c := Router("/users/{id:[0-9]+}").HandleFunc(Get("/"), func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chi.URLParam(r, "id")))
	})
	require.NoError(t, c.Mount(app))

	assert.Equal(t, "42", serve(app, http.MethodGet, "/users/42").Body.String())
	assert.Equal(t, http.StatusNotFound, serve(app, http.MethodGet, "/users/abc").Code)
}
