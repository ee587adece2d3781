package watch

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Fingerprints remembers the content hash of each watched file so that
// writes which leave the bytes unchanged do not trigger a rerun.
type Fingerprints struct {
	mu     sync.Mutex
	hashes map[string]uint64
}

// NewFingerprints creates an empty fingerprint table.
func NewFingerprints() *Fingerprints {
	return &Fingerprints{hashes: make(map[string]uint64)}
}

// HashFile computes the xxHash64 of a file's contents.
func HashFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return h.Sum64(), nil
}

// Update records the current hash of path and reports whether it differs
// from the previous one. A file seen for the first time counts as changed.
// A missing file is forgotten and reported unchanged.
func (f *Fingerprints) Update(path string) (bool, error) {
	sum, err := HashFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		f.mu.Lock()
		delete(f.hashes, path)
		f.mu.Unlock()
		return false, nil
	}
	if err != nil {
		return false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	prev, seen := f.hashes[path]
	f.hashes[path] = sum
	return !seen || prev != sum, nil
}

// Len returns the number of tracked files.
func (f *Fingerprints) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hashes)
}
