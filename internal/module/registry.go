// Package module implements the module registry boundary: resolved
// module paths map to already-loaded Spaces. The evaluator only ever
// sees already-resolved SpaceHandles; locating
// module source files, parsing package manifests, and the module path
// grammar itself are out of scope. This package is what the evaluator
// sees after that resolution has already happened.
package module

import (
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/F1R3FLY-io/mettatron/internal/mettaerr"
	"github.com/F1R3FLY-io/mettatron/internal/space"
)

// Registry resolves module paths to Spaces.
type Registry interface {
	Resolve(path string) (*space.Space, error)
}

// MemRegistry is an in-process module registry: callers Register a
// Space under a logical path, and Resolve looks it up.
type MemRegistry struct {
	mu      sync.RWMutex
	spaces  map[string]*space.Space
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

// NewMemRegistry returns an empty MemRegistry.
func NewMemRegistry(logger *slog.Logger) *MemRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemRegistry{spaces: make(map[string]*space.Space), logger: logger}
}

// Register binds path to spc.
func (r *MemRegistry) Register(path string, spc *space.Space) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spaces[path] = spc
}

// Resolve implements Registry.
func (r *MemRegistry) Resolve(path string) (*space.Space, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spc, ok := r.spaces[path]
	if !ok {
		return nil, mettaerr.NewModuleError(path, nil)
	}
	return spc, nil
}

// WatchDir invalidates a registered module's cached Space whenever its
// backing file changes on disk, so a subsequent Resolve forces the
// caller to re-load it. pathForFile maps a changed filesystem path
// back to the logical module path registered for it; a false second
// return skips the event.
func (r *MemRegistry) WatchDir(dir string, pathForFile func(file string) (string, bool)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return mettaerr.Wrap(mettaerr.ErrModule, "failed to start module file watcher", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return mettaerr.Wrap(mettaerr.ErrModule, "failed to watch module directory", err)
	}
	r.watcher = w

	go r.watchLoop(w, pathForFile)
	return nil
}

func (r *MemRegistry) watchLoop(w *fsnotify.Watcher, pathForFile func(string) (string, bool)) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			path, found := pathForFile(ev.Name)
			if !found {
				continue
			}
			r.mu.Lock()
			delete(r.spaces, path)
			r.mu.Unlock()
			r.logger.Debug("module.invalidated", "path", path, "file", ev.Name)
		case watchErr, ok := <-w.Errors:
			if !ok {
				return
			}
			r.logger.Warn("module.watch_error", "error", watchErr)
		}
	}
}

// Close stops the directory watcher, if one was started.
func (r *MemRegistry) Close() error {
	if r.watcher != nil {
		return r.watcher.Close()
	}
	return nil
}
