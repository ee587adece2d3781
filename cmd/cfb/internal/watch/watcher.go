package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 200 * time.Millisecond

// ErrWatchLimitReached is returned when the OS watch limit is exceeded.
var ErrWatchLimitReached = errors.New("filesystem watch limit reached")

// RunFunc rebuilds and reruns the watched source.
type RunFunc func(ctx context.Context) error

// Config configures the watcher.
type Config struct {
	Source   string   // absolute path of the source file
	Extra    []string // other files whose changes trigger a rerun (stdin input)
	Debounce int      // debounce window in milliseconds
	Verbose  bool
	NoColor  bool
	JSON     bool
	Logger   *Logger     // defaults to a logger built from the fields above
	Log      *zap.Logger // diagnostics
}

// Watcher reruns a source file whenever it or one of its extra files changes.
type Watcher struct {
	config       Config
	fsWatcher    *fsnotify.Watcher
	debouncer    *Debouncer
	logger       *Logger
	log          *zap.Logger
	fingerprints *Fingerprints
	tracked      map[string]bool
	run          RunFunc

	// runMu prevents overlapping runs
	runMu sync.Mutex
	ctx   context.Context
}

// New creates a watcher that calls run after every effective change.
func New(cfg Config, run RunFunc) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = NewLogger(LoggerConfig{
			Verbose: cfg.Verbose,
			NoColor: cfg.NoColor,
			JSON:    cfg.JSON,
		})
	}
	zl := cfg.Log
	if zl == nil {
		zl = zap.NewNop()
	}

	tracked := map[string]bool{filepath.Clean(cfg.Source): true}
	for _, p := range cfg.Extra {
		tracked[filepath.Clean(p)] = true
	}

	return &Watcher{
		config:       cfg,
		fsWatcher:    fsWatcher,
		logger:       logger,
		log:          zl,
		fingerprints: NewFingerprints(),
		tracked:      tracked,
		run:          run,
	}, nil
}

// Dirs returns the sorted directories that must be watched. Editors often
// replace files by rename, so parent directories are watched rather than
// the files themselves.
func (w *Watcher) Dirs() []string {
	var dirs []string
	for p := range w.tracked {
		dir := filepath.Dir(p)
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	slices.Sort(dirs)
	return dirs
}

// Run performs an initial run and then watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.ctx = ctx

	window := time.Duration(w.config.Debounce) * time.Millisecond
	if window <= 0 {
		window = DefaultDebounce
	}
	w.debouncer = NewDebouncer(window, w.handleFlush)
	defer w.debouncer.Stop()

	dirs := w.Dirs()
	for _, dir := range dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			if isWatchLimitError(err) {
				return fmt.Errorf("%w for %s: %v\n"+
					"Increase limit with: sudo sysctl fs.inotify.max_user_watches=524288",
					ErrWatchLimitReached, dir, err)
			}
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	w.logger.Ready(w.config.Source, dirs)

	// Seed fingerprints and run once.
	w.handleFlush(w.trackedPaths())

	for {
		select {
		case <-ctx.Done():
			w.logger.Shutdown()
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error(err)
		}
	}
}

func (w *Watcher) trackedPaths() []string {
	paths := make([]string, 0, len(w.tracked))
	for p := range w.tracked {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// handleEvent filters one filesystem event down to tracked files.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if !w.tracked[path] {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return // chmod and remove
	}

	w.log.Debug("watch event",
		zap.String("path", path),
		zap.String("op", event.Op.String()))
	w.debouncer.Add(path)
}

// handleFlush reruns the source when any flushed file has new contents.
func (w *Watcher) handleFlush(paths []string) {
	ctx := w.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}

	w.runMu.Lock()
	defer w.runMu.Unlock()

	var changed []string
	for _, p := range paths {
		ok, err := w.fingerprints.Update(p)
		if err != nil {
			w.logger.Error(err)
			continue
		}
		if ok {
			changed = append(changed, p)
		}
	}
	if len(changed) == 0 {
		w.logger.Unchanged(paths)
		return
	}
	for _, p := range changed {
		w.logger.Changed(p)
	}

	start := time.Now()
	if err := w.run(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Error(err)
		return
	}
	w.logger.Finished(w.config.Source, time.Since(start))
}

// Close closes the watcher and releases resources.
func (w *Watcher) Close() error {
	if w.fsWatcher != nil {
		return w.fsWatcher.Close()
	}
	return nil
}

// isWatchLimitError checks if an error is due to inotify watch limits.
func isWatchLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "no space left on device") ||
		strings.Contains(errStr, "too many open files")
}
