package deroute

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownHandler    = errors.New("unknown handler")
	ErrUnknownMiddleware = errors.New("unknown middleware")
	ErrMissingPrefix     = errors.New("manifest has no prefix")
)

// ModuleLoader turns one discovered file into the controllers it describes.
// Load must not mount anything; the caller decides where the controllers go.
type ModuleLoader interface {
	Load(path string) ([]*Controller, error)
}

// Catalog names the handlers and middlewares manifests may refer to.
type Catalog struct {
	handlers    map[string]http.Handler
	middlewares map[string]Middleware
}

func NewCatalog() *Catalog {
	return &Catalog{
		handlers:    make(map[string]http.Handler),
		middlewares: make(map[string]Middleware),
	}
}

func (c *Catalog) Handler(name string, h http.Handler) *Catalog {
	c.handlers[name] = h
	return c
}

func (c *Catalog) HandlerFunc(name string, fn func(http.ResponseWriter, *http.Request)) *Catalog {
	return c.Handler(name, http.HandlerFunc(fn))
}

func (c *Catalog) Middleware(name string, mw Middleware) *Catalog {
	c.middlewares[name] = mw
	return c
}

func (c *Catalog) handler(name string) (http.Handler, error) {
	h, ok := c.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHandler, name)
	}
	return h, nil
}

func (c *Catalog) middlewareChain(names []string) ([]Middleware, error) {
	out := make([]Middleware, 0, len(names))
	for _, name := range names {
		mw, ok := c.middlewares[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMiddleware, name)
		}
		out = append(out, mw)
	}
	return out, nil
}

// Manifest is the on-disk description of one controller.
//
//	prefix: /user
//	middlewares: [auth]
//	routes:
//	  - method: get
//	    path: /
//	    handler: user.index
type Manifest struct {
	Prefix      string          `yaml:"prefix" toml:"prefix"`
	Strict      bool            `yaml:"strict" toml:"strict"`
	Middlewares []string        `yaml:"middlewares" toml:"middlewares"`
	Routes      []ManifestRoute `yaml:"routes" toml:"routes"`
}

type ManifestRoute struct {
	Method      string   `yaml:"method" toml:"method"`
	Path        string   `yaml:"path" toml:"path"`
	Middlewares []string `yaml:"middlewares" toml:"middlewares"`
	Handler     string   `yaml:"handler" toml:"handler"`
}

// ManifestLoader loads YAML (.yaml, .yml, .json) and TOML (.toml) manifests.
// A YAML file may hold several documents, one controller each. Files with other
// extensions are skipped.
type ManifestLoader struct {
	catalog  *Catalog
	log      *zap.Logger
	readFile func(string) ([]byte, error)
}

func NewManifestLoader(catalog *Catalog, log *zap.Logger) *ManifestLoader {
	if catalog == nil {
		catalog = NewCatalog()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ManifestLoader{catalog: catalog, log: log, readFile: os.ReadFile}
}

func (l *ManifestLoader) Load(path string) ([]*Controller, error) {
	var decode func([]byte) ([]Manifest, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		decode = decodeYAML
	case ".toml":
		decode = decodeTOML
	default:
		l.log.Debug("skip non-manifest file", zap.String("file", path))
		return nil, nil
	}

	data, err := l.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	manifests, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	controllers := make([]*Controller, 0, len(manifests))
	for i, m := range manifests {
		c, err := l.build(m)
		if err != nil {
			return nil, fmt.Errorf("manifest %s (document %d): %w", path, i+1, err)
		}
		controllers = append(controllers, c)
	}
	return controllers, nil
}

func (l *ManifestLoader) build(m Manifest) (*Controller, error) {
	if m.Prefix == "" {
		return nil, ErrMissingPrefix
	}

	mws, err := l.catalog.middlewareChain(m.Middlewares)
	if err != nil {
		return nil, err
	}
	args := make([]any, 0, len(mws)+1)
	args = append(args, RouterOptions{Strict: m.Strict})
	for _, mw := range mws {
		args = append(args, mw)
	}
	c := Router(m.Prefix, args...)

	for _, r := range m.Routes {
		h, err := l.catalog.handler(r.Handler)
		if err != nil {
			return nil, err
		}
		routeMws, err := l.catalog.middlewareChain(r.Middlewares)
		if err != nil {
			return nil, err
		}
		c.Handle(Custom(r.Method, r.Path, routeMws...), h)
	}

	if err := c.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeYAML(data []byte) ([]Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var out []Manifest
	for {
		var m Manifest
		err := dec.Decode(&m)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
}

func decodeTOML(data []byte) ([]Manifest, error) {
	var m Manifest
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return []Manifest{m}, nil
}
