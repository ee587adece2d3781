// Package cache decides whether a compiled artifact is current with respect
// to its source, using filesystem modification times only.
package cache

import (
	"os"
	"time"
)

// Entry describes the freshness of one source/artifact pair.
type Entry struct {
	Source          string    `json:"source"`
	Artifact        string    `json:"artifact"`
	ArtifactExists  bool      `json:"artifact_exists"`
	SourceModTime   time.Time `json:"source_mtime,omitzero"`
	ArtifactModTime time.Time `json:"artifact_mtime,omitzero"`
	Fresh           bool      `json:"fresh"`
}

// IsUpToDate reports whether output exists and was modified no earlier
// than source. Any failure to read either timestamp means "rebuild".
func IsUpToDate(source, output string) bool {
	return Inspect(source, output).Fresh
}

// Inspect stats source and output and reports their freshness.
func Inspect(source, output string) Entry {
	e := Entry{Source: source, Artifact: output}

	outInfo, err := os.Stat(output)
	if err != nil {
		e.SourceModTime = modTime(source)
		return e
	}
	e.ArtifactExists = true
	e.ArtifactModTime = outInfo.ModTime()

	srcInfo, err := os.Stat(source)
	if err != nil {
		return e
	}
	e.SourceModTime = srcInfo.ModTime()
	e.Fresh = !e.ArtifactModTime.Before(e.SourceModTime)
	return e
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// State returns a short label for the entry: "fresh", "stale" or "missing".
func (e Entry) State() string {
	switch {
	case !e.ArtifactExists:
		return "missing"
	case e.Fresh:
		return "fresh"
	default:
		return "stale"
	}
}
