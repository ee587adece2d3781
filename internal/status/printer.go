// Package status prints the human-readable progress lines shown while
// sources are built and run:
//
//	 % build /work/a.cpp
//	 $ g++ -o /work/cfb-out/a /work/a.cpp
//	 % run /work/a.cpp
//	   skip
package status

import "io"

// Line prefixes.
const (
	SymbolTask    = " %"
	SymbolCommand = " $"
)

// Printer writes task, skip and command lines.
type Printer struct {
	w *Writer
}

// Config configures a Printer.
type Config struct {
	Writer     io.Writer // defaults to os.Stderr
	NoColor    bool
	ForceColor bool
	JSON       bool
}

// New creates a Printer. Colors are enabled only when the writer is a
// terminal, unless forced.
func New(cfg Config) *Printer {
	return &Printer{w: NewWriter(WriterConfig{
		Out:        cfg.Writer,
		NoColor:    cfg.NoColor,
		ForceColor: cfg.ForceColor,
		JSON:       cfg.JSON,
	})}
}

// Task prints ` % <name> <source>`.
func (p *Printer) Task(name, source string) {
	if p.w.JSON() {
		p.w.Event("task", map[string]any{"task": name, "source": source})
		return
	}
	p.w.Linef("%s %s %s",
		p.w.Paint(SymbolTask, Bold, BrightWhite),
		p.w.Paint(name, Bold, BrightGreen),
		p.w.Paint(source, Bold, BrightBlue))
}

// Skip prints the line shown when a build is served from the cache.
func (p *Printer) Skip() {
	if p.w.JSON() {
		p.w.Event("skip", nil)
		return
	}
	p.w.Linef("   %s", p.w.Paint("skip", Bold, Yellow))
}

// Command prints ` $ <command>`.
func (p *Printer) Command(command string) {
	if p.w.JSON() {
		p.w.Event("command", map[string]any{"command": command})
		return
	}
	p.w.Linef("%s %s", p.w.Paint(SymbolCommand, Bold, BrightWhite), p.w.Paint(command, BrightBlack))
}
