// Package config provides configuration management for cfb.
//
// Configuration lives in cfb.toml files. Every directory from the working
// directory up to the filesystem root may contribute one; files closer to the
// working directory take precedence:
//
//	# ./cfb.toml
//	default_stdin = "{source_unquoted}.in"
//
//	[langs.cpp]
//	compile_commands = ["g++ -O2 -o {output} {source}"]
//	run_command = "{output}"
//
// A language entry defined in a nearer file replaces the farther definition
// as a whole; entries are never merged field by field.
package config

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"
)

// LanguageEntry describes how to build and run one file extension.
type LanguageEntry struct {
	// CompileCommands are command templates run in order to produce the artifact.
	// May be empty for interpreted languages.
	CompileCommands []string `toml:"compile_commands" yaml:"compile_commands" json:"compile_commands"`

	// RunCommand is the command template that executes the program.
	RunCommand string `toml:"run_command" yaml:"run_command" json:"run_command"`
}

// Config is the resolved language table.
type Config struct {
	// Langs maps an extension (without leading dot) to its entry.
	Langs map[string]LanguageEntry `toml:"langs" yaml:"langs" json:"langs"`

	// DefaultStdin is an optional template naming the file fed to programs
	// when no input file is given explicitly.
	DefaultStdin string `toml:"default_stdin,omitempty" yaml:"default_stdin,omitempty" json:"default_stdin,omitempty"`

	// Files lists the configuration files that contributed, nearest first.
	Files []string `toml:"-" yaml:"-" json:"-"`
}

// NewConfig creates an empty Config.
func NewConfig() *Config {
	return &Config{
		Langs: make(map[string]LanguageEntry),
	}
}

// Merge folds a farther configuration into this one.
// Extensions already present are kept (nearest definition wins), and the
// first non-empty DefaultStdin is kept.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if c.Langs == nil {
		c.Langs = make(map[string]LanguageEntry)
	}

	for ext, entry := range other.Langs {
		if _, ok := c.Langs[ext]; !ok {
			c.Langs[ext] = entry
		}
	}

	if c.DefaultStdin == "" && other.DefaultStdin != "" {
		c.DefaultStdin = other.DefaultStdin
	}

	c.Files = append(c.Files, other.Files...)
}

// Lookup returns the entry configured for an extension (without leading dot).
func (c *Config) Lookup(ext string) (LanguageEntry, bool) {
	if c == nil || c.Langs == nil {
		return LanguageEntry{}, false
	}
	entry, ok := c.Langs[ext]
	return entry, ok
}

// Extensions returns the configured extensions in sorted order.
func (c *Config) Extensions() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.Langs))
}

// Matches reports whether a path has an extension with a configured entry.
func (c *Config) Matches(path string) bool {
	ext := Ext(path)
	if ext == "" {
		return false
	}
	_, ok := c.Lookup(ext)
	return ok
}

// Ext returns the extension of path without the leading dot.
// Dotfiles such as ".bashrc" and names ending in "." have no extension.
func Ext(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == base {
		return ""
	}
	return strings.TrimPrefix(ext, ".")
}
