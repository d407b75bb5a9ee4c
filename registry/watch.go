package registry

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/veloxq/schema"
)

// Watcher serves the entities of a registry file and reloads them when the
// file changes. A reload that fails keeps the last good registry.
// Watcher implements schema.Registry.
type Watcher struct {
	path    string
	current atomic.Pointer[Registry]
	fsw     *fsnotify.Watcher
	log     *slog.Logger
	done    chan struct{}
	once    sync.Once
}

var _ schema.Registry = (*Watcher)(nil)

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithWatchLogger sets the logger used to report reloads.
func WithWatchLogger(l *slog.Logger) WatchOption {
	return func(w *Watcher) {
		w.log = l
	}
}

// Watch loads the registry file at path and watches it for changes until ctx
// is done or Close is called.
func Watch(ctx context.Context, path string, opts ...WatchOption) (*Watcher, error) {
	path = filepath.Clean(path)
	reg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("registry: watch: %w", err)
	}
	// Editors replace files by renaming, so watch the parent directory.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("registry: watch: %w", err)
	}
	w := &Watcher{
		path: path,
		fsw:  fsw,
		log:  slog.Default(),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.current.Store(reg)
	go w.run(ctx)
	return w, nil
}

// Entity returns the entity from the current registry.
func (w *Watcher) Entity(name string) (*schema.Entity, error) {
	return w.current.Load().Entity(name)
}

// Registry returns the current registry.
func (w *Watcher) Registry() *Registry {
	return w.current.Load()
}

// Close stops watching and waits for the watch loop to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.fsw.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			w.fsw.Close()
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("registry watch error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) reload() {
	reg, err := LoadFile(w.path)
	if err != nil {
		w.log.Warn("registry reload failed", "path", w.path, "error", err)
		return
	}
	w.current.Store(reg)
	w.log.Info("registry reloaded", "path", w.path, "entities", len(reg.Entities()))
}
