package deroute

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testCatalog() *Catalog {
	return NewCatalog().
		HandlerFunc("user.index", text("Router /user")).
		HandlerFunc("user.create", text("created")).
		HandlerFunc("sub.index", text("sub/index/")).
		Middleware("noop", passthrough)
}

func TestManifestLoaderYAML(t *testing.T) {
	root := writeTree(t, map[string]string{
		"user.yaml": `
prefix: /user
middlewares: [noop]
routes:
  - method: get
    path: /
    handler: user.index
  - method: POST
    path: /
    middlewares: [noop]
    handler: user.create
`,
	})

	controllers, err := NewManifestLoader(testCatalog(), zaptest.NewLogger(t)).Load(filepath.Join(root, "user.yaml"))

	require.NoError(t, err)
	require.Len(t, controllers, 1)
	c := controllers[0]
	assert.Equal(t, "/user", c.Prefix())
	assert.Len(t, c.middlewares, 1)

	routes := c.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, "get", routes[0].Method)
	assert.Equal(t, "post", routes[1].Method)
	assert.Len(t, routes[1].Middlewares, 1)
}

func TestManifestLoaderMultiDocument(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pair.yml": `
prefix: /one
routes:
  - {method: get, path: /, handler: user.index}
---
prefix: /two
strict: true
`,
	})

	controllers, err := NewManifestLoader(testCatalog(), nil).Load(filepath.Join(root, "pair.yml"))

	require.NoError(t, err)
	require.Len(t, controllers, 2)
	assert.Equal(t, "/one", controllers[0].Prefix())
	assert.Equal(t, "/two", controllers[1].Prefix())
	assert.True(t, controllers[1].options.Strict)
	assert.Empty(t, controllers[1].Routes())
}

func TestManifestLoaderTOML(t *testing.T) {
	root := writeTree(t, map[string]string{
		"sub.toml": `
prefix = "/sub"

[[routes]]
method = "get"
path = "/"
handler = "sub.index"
`,
	})

	controllers, err := NewManifestLoader(testCatalog(), nil).Load(filepath.Join(root, "sub.toml"))
	require.NoError(t, err)
	require.Len(t, controllers, 1)

	app := chi.NewRouter()
	require.NoError(t, controllers[0].Mount(app))
	assert.Equal(t, "sub/index/", serve(app, http.MethodGet, "/sub").Body.String())
}

func TestManifestLoaderJSON(t *testing.T) {
	root := writeTree(t, map[string]string{
		"user.json": `{"prefix": "/user", "routes": [{"method": "get", "path": "/", "handler": "user.index"}]}`,
	})

	controllers, err := NewManifestLoader(testCatalog(), nil).Load(filepath.Join(root, "user.json"))

	require.NoError(t, err)
	require.Len(t, controllers, 1)
	assert.Len(t, controllers[0].Routes(), 1)
}

func TestManifestLoaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{
			name:    "unknown handler",
			file:    "a.yaml",
			content: "prefix: /a\nroutes:\n  - {method: get, path: /, handler: nope}\n",
			wantErr: ErrUnknownHandler,
		},
		{
			name:    "unknown prefix middleware",
			file:    "a.yaml",
			content: "prefix: /a\nmiddlewares: [nope]\n",
			wantErr: ErrUnknownMiddleware,
		},
		{
			name:    "unknown route middleware",
			file:    "a.yaml",
			content: "prefix: /a\nroutes:\n  - {method: get, path: /, middlewares: [nope], handler: user.index}\n",
			wantErr: ErrUnknownMiddleware,
		},
		{
			name:    "missing prefix",
			file:    "a.yaml",
			content: "routes: []\n",
			wantErr: ErrMissingPrefix,
		},
		{
			name:    "missing method",
			file:    "a.toml",
			content: "prefix = \"/a\"\n[[routes]]\npath = \"/\"\nhandler = \"user.index\"\n",
			wantErr: ErrInvalidMethod,
		},
		{
			name:    "unknown field",
			file:    "a.yaml",
			content: "prefix: /a\nprefixx: /b\n",
		},
		{
			name:    "malformed toml",
			file:    "a.toml",
			content: "prefix = \n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeTree(t, map[string]string{tt.file: tt.content})

			_, err := NewManifestLoader(testCatalog(), nil).Load(filepath.Join(root, tt.file))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.file)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestManifestLoaderSkipsOtherFiles(t *testing.T) {
	root := writeTree(t, map[string]string{"README.md": "# routes"})

	controllers, err := NewManifestLoader(nil, nil).Load(filepath.Join(root, "README.md"))

	assert.NoError(t, err)
	assert.Empty(t, controllers)
}
