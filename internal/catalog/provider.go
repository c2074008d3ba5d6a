package catalog

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Source yields the current catalog. The engine reads through this interface
// so tests and the simulator can inject a fixed catalog.
type Source interface {
	Catalog() *Catalog
}

// Static wraps an already-built catalog into a Source.
func Static(c *Catalog) Source {
	return staticSource{c: c}
}

type staticSource struct {
	c *Catalog
}

func (s staticSource) Catalog() *Catalog { return s.c }

// Provider serves the catalog from a file and reloads it when the file
// changes on disk. A reload that fails to parse keeps the previous catalog.
type Provider struct {
	mu      sync.RWMutex
	current *Catalog

	path    string
	watcher *fsnotify.Watcher
	logger  *zap.Logger
}

// NewProvider loads the catalog once and sets up a watcher on its directory.
// Watching the directory instead of the file survives editors that replace
// the file on save.
func NewProvider(path string, logger *zap.Logger) (*Provider, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating catalog watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching catalog directory: %w", err)
	}

	return &Provider{
		current: c,
		path:    path,
		watcher: watcher,
		logger:  logger,
	}, nil
}

// Catalog returns the most recently loaded catalog.
func (p *Provider) Catalog() *Catalog {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Close stops the file watcher.
func (p *Provider) Close() {
	if p.watcher != nil {
		p.watcher.Close()
	}
}

// Watch blocks, reloading the catalog on write/create events for its file.
// Run it in a goroutine next to the server.
func (p *Provider) Watch() {
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(p.path) {
				continue
			}

			// Small delay so the write is complete before reading.
			time.Sleep(100 * time.Millisecond)

			p.reload()

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("catalog watcher error", zap.Error(err))
		}
	}
}

func (p *Provider) reload() {
	c, err := Load(p.path)
	if err != nil {
		p.logger.Warn("catalog reload failed, keeping previous catalog",
			zap.String("path", p.path),
			zap.Error(err),
		)
		return
	}

	p.mu.Lock()
	p.current = c
	p.mu.Unlock()

	p.logger.Info("catalog reloaded",
		zap.String("path", p.path),
		zap.Int("locations", len(c.Locations)),
	)
}
