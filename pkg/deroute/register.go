package deroute

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Dirs is a list of route directories. It decodes from a single string as well as a list.
type Dirs []string

// UnmarshalYAML accepts a scalar or a sequence.
func (d *Dirs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*d = Dirs{node.Value}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*d = list
	return nil
}

// UnmarshalText accepts a comma separated list.
func (d *Dirs) UnmarshalText(text []byte) error {
	var out Dirs
	for _, part := range strings.Split(string(text), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	*d = out
	return nil
}

// Options configures Register.
type Options struct {
	// App receives every controller. Required.
	App Host
	// RoutesDir lists the discovery roots, walked in order. Required.
	RoutesDir Dirs

	// Controllers are mounted, in order, before any directory is walked.
	Controllers []*Controller
	// Loader describes the controllers of a discovered file. Defaults to a
	// ManifestLoader with an empty catalog.
	Loader ModuleLoader
	FS     FileSystem
	Logger *zap.Logger

	// OnMount, when set, is called after each successful mount.
	OnMount func(prefix string, routes []Route)
}

// Registrar mounts controllers on one host. It remembers every file it has loaded
// so a path is never loaded twice.
type Registrar struct {
	app       Host
	loader    ModuleLoader
	discovery *Discovery
	log       *zap.Logger
	onMount   func(string, []Route)
	loaded    map[string]struct{}
	tails     map[string]*chi.Mux // prefix -> last sub-router mounted there
}

// NewRegistrar validates opts and returns a registrar bound to opts.App.
func NewRegistrar(opts *Options) (*Registrar, error) {
	if opts == nil {
		return nil, configErr("register", ErrInvalidOptions)
	}
	if isNilHost(opts.App) {
		return nil, configErr("register", ErrMissingApp)
	}
	if len(opts.RoutesDir) == 0 {
		return nil, configErr("register", ErrMissingRoutesDir)
	}
	for i, dir := range opts.RoutesDir {
		if strings.TrimSpace(dir) == "" {
			return nil, configErr("register", fmt.Errorf("%w: entry %d is empty", ErrMissingRoutesDir, i+1))
		}
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("deroute")

	loader := opts.Loader
	if loader == nil {
		loader = NewManifestLoader(nil, log)
	}

	return &Registrar{
		app:       opts.App,
		loader:    loader,
		discovery: NewDiscovery(opts.FS, log),
		log:       log,
		onMount:   opts.OnMount,
		loaded:    make(map[string]struct{}),
		tails:     make(map[string]*chi.Mux),
	}, nil
}

// Register mounts opts.Controllers and then every controller found under opts.RoutesDir.
// It must complete before the host starts serving.
func Register(opts *Options) error {
	r, err := NewRegistrar(opts)
	if err != nil {
		return err
	}
	for _, c := range opts.Controllers {
		if err := r.Mount(c); err != nil {
			return err
		}
	}
	for _, dir := range opts.RoutesDir {
		if err := r.Scan(dir); err != nil {
			return err
		}
	}
	return nil
}

// Scan walks root and mounts the controllers of every file not loaded before.
func (r *Registrar) Scan(root string) error {
	return r.discovery.Walk(root, r.load)
}

// Mount mounts a single controller on the registrar's host. Controllers sharing a
// prefix are tried in mount order: a request the first cannot route falls through
// to the next.
func (r *Registrar) Mount(c *Controller) error {
	routes := c.Routes()

	var (
		sub *chi.Mux
		err error
	)
	if tail, ok := r.tails[c.Prefix()]; ok {
		sub, err = c.stack(tail)
	} else {
		sub, err = c.mount(r.app)
	}
	if err != nil {
		return err
	}
	r.tails[c.Prefix()] = sub

	r.log.Debug("mounted controller",
		zap.String("prefix", c.Prefix()),
		zap.Int("routes", len(routes)))
	if r.onMount != nil {
		r.onMount(c.Prefix(), routes)
	}
	return nil
}

func (r *Registrar) load(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if _, seen := r.loaded[abs]; seen {
		return nil
	}
	r.loaded[abs] = struct{}{}

	controllers, err := r.loader.Load(abs)
	if err != nil {
		return err
	}
	for _, c := range controllers {
		if err := r.Mount(c); err != nil {
			return fmt.Errorf("%s: %w", abs, err)
		}
	}
	return nil
}
