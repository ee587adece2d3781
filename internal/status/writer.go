package status

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// Style is an ANSI SGR sequence.
type Style string

const (
	Bold        Style = "\033[1m"
	Red         Style = "\033[31m"
	Green       Style = "\033[32m"
	Yellow      Style = "\033[33m"
	BrightBlack Style = "\033[90m"
	BrightGreen Style = "\033[92m"
	BrightBlue  Style = "\033[94m"
	BrightWhite Style = "\033[97m"

	reset = "\033[0m"
)

// WriterConfig configures a Writer.
type WriterConfig struct {
	Out        io.Writer // defaults to os.Stderr
	NoColor    bool
	ForceColor bool // color even when Out is not a terminal
	JSON       bool
}

// Writer serializes whole lines to one stream and decides whether they may
// carry colors. It is shared by the build status lines and the watch log so
// both interleave cleanly on stderr.
type Writer struct {
	out     io.Writer
	color   bool
	jsonOut bool

	mu sync.Mutex
}

// NewWriter creates a Writer.
func NewWriter(cfg WriterConfig) *Writer {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	return &Writer{
		out:     out,
		color:   (cfg.ForceColor || IsTerminal(out)) && !cfg.NoColor,
		jsonOut: cfg.JSON,
	}
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// JSON reports whether events should be written as JSON objects.
func (w *Writer) JSON() bool { return w.jsonOut }

// Paint wraps s in the given styles when colors are enabled.
func (w *Writer) Paint(s string, styles ...Style) string {
	if !w.color || len(styles) == 0 {
		return s
	}
	var prefix string
	for _, st := range styles {
		prefix += string(st)
	}
	return prefix + s + reset
}

// Linef writes one formatted line. A trailing newline is added.
func (w *Writer) Linef(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = fmt.Fprintf(w.out, format+"\n", args...)
}

// Event writes fields as one JSON line, tagged with "event": name.
func (w *Writer) Event(name string, fields map[string]any) {
	ev := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		ev[k] = v
	}
	ev["event"] = name

	data, err := json.Marshal(ev)
	if err != nil {
		data = []byte(`{"event":"internal_error","error":"json marshal failed"}`)
	}
	w.Linef("%s", data)
}
