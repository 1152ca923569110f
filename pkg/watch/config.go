package watch

import (
	"log/slog"
	"time"
)

// Config controls which paths are watched and how events are batched.
type Config struct {
	// Roots are template directories watched recursively. Changed files are
	// reported relative to the root that contains them.
	Roots []string

	// DebounceWindow is the quiet period before a batch is flushed.
	DebounceWindow time.Duration

	// MaxBatchSize flushes a batch early once it holds this many paths.
	MaxBatchSize int

	// IgnorePatterns are doublestar patterns matched against root-relative
	// slash paths.
	IgnorePatterns []string

	// WatchHidden includes files and directories whose name starts with ".".
	WatchHidden bool

	// Extensions restricts reported files to these extensions (".html").
	// Empty reports every file.
	Extensions []string
}

// DefaultConfig returns the settings used by the CLI watch command.
func DefaultConfig() Config {
	return Config{
		DebounceWindow: 150 * time.Millisecond,
		MaxBatchSize:   100,
		IgnorePatterns: []string{
			"**/.git/**",
			"**/node_modules/**",
			"**/*.swp",
			"**/*~",
			"**/*.tmp",
		},
	}
}

// Option customises a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger.With("component", "watch")
		}
	}
}

// WithOnFlush registers a callback invoked after each batch has been passed
// to the invalidator.
func WithOnFlush(fn func(names []string)) Option {
	return func(w *Watcher) {
		w.onFlush = fn
	}
}
