package deroute

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileSystem is what discovery needs from the filesystem.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
}

// OSFileSystem reads the local filesystem.
type OSFileSystem struct{}

func (OSFileSystem) Stat(name string) (fs.FileInfo, error)      { return os.Stat(name) }
func (OSFileSystem) ReadDir(name string) ([]fs.DirEntry, error) { return os.ReadDir(name) }

// Discovery walks route directories breadth-first.
type Discovery struct {
	fs  FileSystem
	log *zap.Logger
}

func NewDiscovery(fsys FileSystem, log *zap.Logger) *Discovery {
	if fsys == nil {
		fsys = OSFileSystem{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Discovery{fs: fsys, log: log}
}

// queued is one worklist item: an absolute path and the root it was found under.
type queued struct {
	path string
	root string
}

// Walk calls visit for every file below root. Siblings are visited in listing order and a
// directory's children go to the back of the queue, so shallow files come before deep ones.
// A missing root is skipped. Any other filesystem error, or an error from visit, stops the
// walk and is returned.
func (d *Discovery) Walk(root string, visit func(path string) error) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", root, err)
	}

	if _, err := d.fs.Stat(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			d.log.Debug("route directory does not exist", zap.String("dir", abs))
			return nil
		}
		return fmt.Errorf("stat %s: %w", abs, err)
	}

	queue, err := d.children(abs, abs)
	if err != nil {
		return err
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		info, err := d.fs.Stat(item.path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", item.path, err)
		}

		if info.IsDir() {
			sub, err := d.children(item.path, item.root)
			if err != nil {
				return err
			}
			queue = append(queue, sub...)
			continue
		}

		d.log.Debug("load route file", zap.String("file", item.path), zap.String("root", item.root))
		if err := visit(item.path); err != nil {
			return err
		}
	}

	return nil
}

func (d *Discovery) children(dir, root string) ([]queued, error) {
	entries, err := d.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	out := make([]queued, 0, len(entries))
	for _, e := range entries {
		out = append(out, queued{path: filepath.Join(dir, e.Name()), root: root})
	}
	return out, nil
}
