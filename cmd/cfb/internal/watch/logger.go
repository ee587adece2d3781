package watch

import (
	"io"
	"sync"
	"time"

	"github.com/albertocavalcante/cfb/internal/status"
)

// Outcome is the result marker of one rebuild-and-run cycle.
type Outcome string

const (
	OutcomeOK     Outcome = "✓"
	OutcomeFailed Outcome = "✗"
	OutcomeChange Outcome = "~"
)

var outcomeStyle = map[Outcome]status.Style{
	OutcomeOK:     status.Green,
	OutcomeFailed: status.Red,
	OutcomeChange: status.Yellow,
}

// Logger reports the cycles of a watch session. It shares its line writer
// with the build status printer.
type Logger struct {
	out     *status.Writer
	verbose bool

	mu    sync.Mutex
	stats Stats
}

// Stats counts the cycles of a watch session.
type Stats struct {
	Runs      int
	Failures  int
	Unchanged int
	StartTime time.Time
}

// LoggerConfig configures the logger.
type LoggerConfig struct {
	Writer     io.Writer // defaults to os.Stderr
	Verbose    bool
	NoColor    bool
	ForceColor bool
	JSON       bool
}

func NewLogger(cfg LoggerConfig) *Logger {
	return &Logger{
		out: status.NewWriter(status.WriterConfig{
			Out:        cfg.Writer,
			NoColor:    cfg.NoColor,
			ForceColor: cfg.ForceColor,
			JSON:       cfg.JSON,
		}),
		verbose: cfg.Verbose,
		stats:   Stats{StartTime: time.Now()},
	}
}

// Ready is logged once the watches are in place, before the first run.
func (l *Logger) Ready(source string, dirs []string) {
	if l.out.JSON() {
		l.out.Event("ready", map[string]any{"source": source, "dirs": dirs})
		return
	}
	l.out.Linef("cfb: watching %s", source)
	if l.verbose {
		for _, dir := range dirs {
			l.out.Linef("cfb:   dir %s", dir)
		}
	}
	l.out.Linef("cfb: ready")
}

// Changed reports a watched file whose contents changed.
func (l *Logger) Changed(path string) {
	if l.out.JSON() {
		l.out.Event("changed", map[string]any{"path": path, "time": now()})
		return
	}
	l.out.Linef("[%s] %s %s", clock(), l.colorize(OutcomeChange), path)
}

// Unchanged counts a flush whose files were saved without content changes.
// It prints only in verbose mode.
func (l *Logger) Unchanged(paths []string) {
	l.count(func(s *Stats) { s.Unchanged++ })

	if l.out.JSON() {
		l.out.Event("unchanged", map[string]any{"paths": paths})
		return
	}
	if l.verbose {
		l.out.Linef("[%s] contents unchanged, skipping", clock())
	}
}

// Finished reports a successful cycle.
func (l *Logger) Finished(source string, elapsed time.Duration) {
	l.count(func(s *Stats) { s.Runs++ })

	if l.out.JSON() {
		l.out.Event("finished", map[string]any{"source": source, "duration": elapsed.String()})
		return
	}
	l.out.Linef("[%s] %s %s (%s)", clock(), l.colorize(OutcomeOK), source, elapsed.Round(time.Millisecond))
}

// Error reports a failed cycle or a watcher error. The session continues.
func (l *Logger) Error(err error) {
	l.count(func(s *Stats) { s.Failures++ })

	if l.out.JSON() {
		l.out.Event("error", map[string]any{"error": err.Error(), "time": now()})
		return
	}
	l.out.Linef("[%s] %s error: %v", clock(), l.colorize(OutcomeFailed), err)
}

func (l *Logger) Shutdown() {
	s := l.Stats()
	if l.out.JSON() {
		l.out.Event("shutdown", map[string]any{
			"runs":      s.Runs,
			"failures":  s.Failures,
			"unchanged": s.Unchanged,
			"duration":  time.Since(s.StartTime).String(),
		})
		return
	}
	l.out.Linef("cfb: shutting down (%d runs, %d failures)", s.Runs, s.Failures)
}

// Stats returns a snapshot of the session counters.
func (l *Logger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

func (l *Logger) count(f func(*Stats)) {
	l.mu.Lock()
	f(&l.stats)
	l.mu.Unlock()
}

func (l *Logger) colorize(o Outcome) string {
	return l.out.Paint(string(o), outcomeStyle[o])
}

func clock() string { return time.Now().Format("15:04:05") }

func now() string { return time.Now().Format(time.RFC3339) }
