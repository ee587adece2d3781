package status

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
)

func TestWriter_Paint(t *testing.T) {
	w := NewWriter(WriterConfig{Out: &bytes.Buffer{}, ForceColor: true})
	if got := w.Paint("ok", Green); got != string(Green)+"ok"+reset {
		t.Errorf("Paint() = %q", got)
	}
	if got := w.Paint("ok"); got != "ok" {
		t.Errorf("Paint() with no styles = %q", got)
	}

	w = NewWriter(WriterConfig{Out: &bytes.Buffer{}})
	if got := w.Paint("ok", Green); got != "ok" {
		t.Errorf("Paint() on non-terminal = %q", got)
	}
}

func TestWriter_Event(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(WriterConfig{Out: &buf, JSON: true})

	fields := map[string]any{"source": "a.c", "event": "overridden"}
	w.Event("task", fields)

	var ev map[string]any
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if ev["event"] != "task" || ev["source"] != "a.c" {
		t.Errorf("unexpected event: %v", ev)
	}
	if fields["event"] != "overridden" {
		t.Error("Event must not modify the caller's map")
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Error("a regular file is not a terminal")
	}
}
