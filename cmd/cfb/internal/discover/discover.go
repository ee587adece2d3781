// Package discover finds buildable source files under a directory tree.
//
// # Selection
//
// A file is selected when its extension has a language entry. Discovery is
// deterministic: the same tree and configuration always yield the same
// list, sorted by slash-separated relative path.
//
// # Ignored Directories
//
// Hidden directories and the names in IgnoredDirs are never entered, nor
// are any absolute paths passed in Options.SkipPaths (the output directory).
// Options.Exclude adds doublestar patterns matched against relative paths.
package discover

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoredDirs contains directory names skipped during discovery.
var IgnoredDirs = []string{
	"node_modules", // Node.js dependencies
	"__pycache__",  // Python cache
	"vendor",       // Go vendor, other vendored deps
	"target",       // Rust/Maven target
}

// Source is a discovered source file.
type Source struct {
	Path string // absolute path
	Rel  string // slash-separated path relative to the root
}

// Options configures Sources.
type Options struct {
	Root      string
	Match     func(path string) bool // nil selects every file
	Exclude   []string               // doublestar patterns
	SkipPaths []string               // absolute directories never entered
}

// ValidatePatterns checks that every exclude pattern is well formed.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}

// Sources walks opts.Root and returns the selected files in lexical order.
func Sources(ctx context.Context, opts Options) ([]Source, error) {
	if err := ValidatePatterns(opts.Exclude); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	skip := make(map[string]bool, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		skip[filepath.Clean(p)] = true
	}

	var sources []Source
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return err
		}

		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if IsIgnoredDir(d.Name()) || skip[path] || excluded(opts.Exclude, rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if excluded(opts.Exclude, rel) {
			return nil
		}
		if !isRegularFile(path, d) {
			return nil
		}
		if opts.Match != nil && !opts.Match(path) {
			return nil
		}

		sources = append(sources, Source{Path: path, Rel: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(sources, func(a, b Source) int {
		return strings.Compare(a.Rel, b.Rel)
	})
	return sources, nil
}

// isRegularFile reports whether d is a regular file or a symlink that
// resolves to one. Links to directories and dangling links are not sources.
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsIgnoredDir reports whether a directory with this name is never entered.
func IsIgnoredDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return slices.Contains(IgnoredDirs, name)
}

func excluded(patterns []string, rel string) bool {
	for _, p := range patterns {
		// Patterns were validated up front.
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Paths returns the absolute paths of sources.
func Paths(sources []Source) []string {
	paths := make([]string, len(sources))
	for i, s := range sources {
		paths[i] = s.Path
	}
	return paths
}

// Collisions groups sources that map to the same key, such as an artifact
// path. Only keys shared by two or more sources are returned, sorted.
func Collisions(sources []Source, key func(path string) string) [][]Source {
	groups := make(map[string][]Source)
	var keys []string
	for _, s := range sources {
		k := key(s.Path)
		if _, seen := groups[k]; !seen {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], s)
	}

	slices.Sort(keys)
	var result [][]Source
	for _, k := range keys {
		if len(groups[k]) > 1 {
			result = append(result, groups[k])
		}
	}
	return result
}

// Extensions returns the sorted, deduplicated extensions (without the dot)
// of the given sources.
func Extensions(sources []Source) []string {
	var exts []string
	for _, s := range sources {
		ext := strings.TrimPrefix(filepath.Ext(s.Path), ".")
		if ext != "" && !slices.Contains(exts, ext) {
			exts = append(exts, ext)
		}
	}
	slices.Sort(exts)
	return exts
}
