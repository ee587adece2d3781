// Package lang builds and runs source files according to the per-extension
// language table.
package lang

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/albertocavalcante/cfb/pkg/command"
	"github.com/albertocavalcante/cfb/pkg/config"
)

// OutputDirName is the directory, under the workspace root, holding artifacts.
const OutputDirName = "cfb-out"

// Workspace binds a resolved configuration to an output directory.
type Workspace struct {
	Config    *config.Config
	Root      string
	OutputDir string
}

// Open creates a Workspace rooted at root and ensures its output directory exists.
func Open(cfg *config.Config, root string) (*Workspace, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, newIOError(root, err)
	}

	outDir := filepath.Join(abs, OutputDirName)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, newIOError(outDir, err)
	}

	return &Workspace{
		Config:    cfg,
		Root:      abs,
		OutputDir: outDir,
	}, nil
}

// Resolve returns the language entry for source's extension.
func (w *Workspace) Resolve(source string) (config.LanguageEntry, error) {
	ext := config.Ext(source)
	if ext == "" {
		return config.LanguageEntry{}, newMissingExtensionError(source)
	}
	entry, ok := w.Config.Lookup(ext)
	if !ok {
		return config.LanguageEntry{}, newUnknownLanguageError(source, ext)
	}
	return entry, nil
}

// ArtifactPath returns the artifact location for source: the output
// directory joined with the source's file stem.
func (w *Workspace) ArtifactPath(source string) string {
	return filepath.Join(w.OutputDir, Stem(source))
}

// Matches reports whether source has a configured language.
func (w *Workspace) Matches(source string) bool {
	return w.Config.Matches(source)
}

// DefaultInputPath formats the configured default_stdin template for source.
// Relative results are taken from the workspace root. The file need not
// exist; an empty result means no default is configured.
func (w *Workspace) DefaultInputPath(source string) (string, error) {
	if w.Config.DefaultStdin == "" {
		return "", nil
	}

	path, err := command.Format(w.Config.DefaultStdin, source, w.ArtifactPath(source))
	if err != nil || path == "" {
		return "", err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(w.Root, path)
	}
	return path, nil
}

// DefaultInput returns DefaultInputPath when that file exists.
func (w *Workspace) DefaultInput(source string) (string, bool, error) {
	path, err := w.DefaultInputPath(source)
	if err != nil || path == "" {
		return "", false, err
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, newIOError(path, err)
	}
	if info.IsDir() {
		return "", false, nil
	}
	return path, true, nil
}

// Canonicalize returns the absolute, symlink-free path of an existing source.
func Canonicalize(source string) (string, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", newIOError(source, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", newIOError(source, err)
	}
	return resolved, nil
}

// Stem returns the base name of path without its final extension.
// Names with no stem before the dot (".profile") are returned whole.
func Stem(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return base
	}
	return stem
}
