package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// FileName is the name of the per-directory config file.
const FileName = "cfb.toml"

// Loader resolves layered configuration across ancestor directories.
type Loader struct {
	logger *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader with the given options.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	return l
}

// Load resolves configuration starting from the current working directory.
func Load(opts ...LoaderOption) (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, newIOError(".", err)
	}
	return NewLoader(opts...).LoadFrom(wd)
}

// LoadFrom resolves configuration starting from dir.
func LoadFrom(dir string, opts ...LoaderOption) (*Config, error) {
	return NewLoader(opts...).LoadFrom(dir)
}

// LoadFrom walks dir and each of its ancestors, nearest first, folding every
// cfb.toml found into one Config. A malformed file anywhere aborts resolution.
func (l *Loader) LoadFrom(dir string) (*Config, error) {
	root, err := canonicalize(dir)
	if err != nil {
		return nil, newIOError(dir, err)
	}

	cfg := NewConfig()
	for _, path := range ConfigPaths(root) {
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, newIOError(path, err)
		}
		if info.IsDir() {
			continue
		}

		candidate, err := l.ParseFile(path)
		if err != nil {
			return nil, err
		}

		l.logger.Debug("config file loaded",
			zap.String("path", path),
			zap.Int("languages", len(candidate.Langs)))
		cfg.Merge(candidate)
	}

	l.logger.Info("config resolved",
		zap.Strings("files", cfg.Files),
		zap.Strings("extensions", cfg.Extensions()))
	return cfg, nil
}

// ParseFile parses a single cfb.toml file.
func ParseFile(path string) (*Config, error) {
	return NewLoader().ParseFile(path)
}

// ParseFile parses a single cfb.toml file.
func (l *Loader) ParseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newIOError(path, err)
	}

	cfg, err := l.parse(path, string(data))
	if err != nil {
		return nil, err
	}
	cfg.Files = []string{path}
	return cfg, nil
}

func (l *Loader) parse(path, data string) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return nil, newParseError(path, err.Error())
	}

	for _, key := range md.Undecoded() {
		l.logger.Warn("unknown config key ignored",
			zap.String("path", path),
			zap.String("key", key.String()))
	}

	if cfg.Langs == nil {
		cfg.Langs = make(map[string]LanguageEntry)
	}
	for ext := range cfg.Langs {
		if ext == "" {
			return nil, newParseError(path, "empty extension key in [langs]")
		}
		if strings.HasPrefix(ext, ".") {
			return nil, newParseError(path, fmt.Sprintf("extension %q must not start with '.'", ext))
		}
		if !md.IsDefined("langs", ext, "run_command") {
			return nil, newParseError(path, fmt.Sprintf("langs.%s: missing run_command", ext))
		}
		if !md.IsDefined("langs", ext, "compile_commands") {
			return nil, newParseError(path, fmt.Sprintf("langs.%s: missing compile_commands", ext))
		}
	}

	return &cfg, nil
}

// Ancestors returns dir followed by each of its parents up to the filesystem root.
func Ancestors(dir string) []string {
	dir = filepath.Clean(dir)
	dirs := []string{dir}
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dirs = append(dirs, parent)
		dir = parent
	}
	return dirs
}

// canonicalize makes dir absolute and resolves symlinks.
func canonicalize(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// ConfigPaths returns the candidate config file paths for dir, nearest first.
func ConfigPaths(dir string) []string {
	ancestors := Ancestors(dir)
	paths := make([]string, len(ancestors))
	for i, a := range ancestors {
		paths[i] = filepath.Join(a, FileName)
	}
	return paths
}
