// Package watch invalidates cached templates when their files change. It is
// meant for development servers and the CLI watch command.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Invalidator drops cached state for the named templates.
// *gotemplate.Engine and *componentkit.Kit satisfy it.
type Invalidator interface {
	Invalidate(names ...string)
}

// Watcher turns file system events under the configured roots into
// Invalidate calls.
type Watcher struct {
	config      Config
	invalidator Invalidator
	logger      *slog.Logger
	onFlush     func([]string)

	fsWatcher   *fsnotify.Watcher
	fsWatcherMu sync.Mutex
	debouncer   *debouncer
	roots       []string

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New validates the configuration and prepares the underlying fsnotify
// watcher. Roots are added recursively.
func New(config Config, invalidator Invalidator, opts ...Option) (*Watcher, error) {
	if invalidator == nil {
		return nil, errors.New("watch: invalidator is required")
	}
	if len(config.Roots) == 0 {
		return nil, errors.New("watch: at least one root is required")
	}
	for _, pattern := range config.IgnorePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("watch: invalid ignore pattern %q", pattern)
		}
	}
	if config.DebounceWindow <= 0 {
		config.DebounceWindow = DefaultConfig().DebounceWindow
	}
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = DefaultConfig().MaxBatchSize
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	w := &Watcher{
		config:      config,
		invalidator: invalidator,
		logger:      slog.Default().With("component", "watch"),
		fsWatcher:   fsWatcher,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	w.debouncer = newDebouncer(config.DebounceWindow, config.MaxBatchSize, w.flush)

	for _, root := range config.Roots {
		if err := w.addRoot(root); err != nil {
			_ = fsWatcher.Close()
			return nil, err
		}
	}
	return w, nil
}

// Roots returns the absolute roots being watched.
func (w *Watcher) Roots() []string {
	return slices.Clone(w.roots)
}

func (w *Watcher) addRoot(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("watch: root %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watch: root %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch: root %s is not a directory", root)
	}

	if err := w.addToWatcher(abs); err != nil {
		return fmt.Errorf("watch: root %s: %w", root, err)
	}
	w.roots = append(w.roots, abs)
	w.walkAndAdd(abs)

	w.logger.Debug("watching root", "path", abs)
	return nil
}

func (w *Watcher) addToWatcher(path string) error {
	w.fsWatcherMu.Lock()
	defer w.fsWatcherMu.Unlock()
	return w.fsWatcher.Add(path)
}

func (w *Watcher) walkAndAdd(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Debug("failed to read directory", "path", dir, "error", err)
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		fullPath := filepath.Join(dir, entry.Name())
		if _, ignored := w.templateName(fullPath); ignored {
			continue
		}
		if err := w.addToWatcher(fullPath); err != nil {
			w.logger.Debug("failed to watch directory", "path", fullPath, "error", err)
			continue
		}
		w.walkAndAdd(fullPath)
	}
}

// Start processes events until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	w.running = true
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.handleEvents(ctx, w.done)

	w.logger.Info("template watcher started", "roots", w.roots)
	return nil
}

// Stop ends event processing, flushes pending names and closes the
// underlying watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.closeWatcher()
	}
	w.running = false
	w.cancel()
	done := w.done
	w.mu.Unlock()

	<-done
	w.debouncer.stop()

	w.logger.Info("template watcher stopped")
	return w.closeWatcher()
}

func (w *Watcher) closeWatcher() error {
	w.fsWatcherMu.Lock()
	defer w.fsWatcherMu.Unlock()
	if w.fsWatcher == nil {
		return nil
	}
	err := w.fsWatcher.Close()
	w.fsWatcher = nil
	return err
}

func (w *Watcher) handleEvents(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	name, ignored := w.templateName(event.Name)
	if ignored {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addToWatcher(event.Name); err == nil {
				w.walkAndAdd(event.Name)
			}
			return
		}
	}

	if !w.acceptsExtension(name) {
		return
	}

	w.logger.Debug("template event", "name", name, "op", event.Op.String())
	w.debouncer.add(name)
}

func (w *Watcher) flush(names []string) {
	w.logger.Info("invalidating templates", "count", len(names), "templates", names)
	w.invalidator.Invalidate(names...)
	if w.onFlush != nil {
		w.onFlush(names)
	}
}

// templateName maps an absolute path to its root-relative slash name and
// reports whether it is ignored.
func (w *Watcher) templateName(path string) (string, bool) {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)
		return rel, w.shouldIgnore(rel)
	}
	return "", true
}

func (w *Watcher) shouldIgnore(name string) bool {
	if !w.config.WatchHidden {
		for _, part := range strings.Split(name, "/") {
			if strings.HasPrefix(part, ".") {
				return true
			}
		}
	}

	for _, pattern := range w.config.IgnorePatterns {
		if match, _ := doublestar.Match(pattern, name); match {
			return true
		}
	}

	return false
}

func (w *Watcher) acceptsExtension(name string) bool {
	if len(w.config.Extensions) == 0 {
		return true
	}
	return slices.Contains(w.config.Extensions, filepath.Ext(name))
}
