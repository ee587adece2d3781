package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// tempRoot returns a symlink-free temp directory so paths compare cleanly.
func tempRoot(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	assert.NotNil(t, cfg.Langs)
	assert.Empty(t, cfg.Langs)
	assert.Empty(t, cfg.DefaultStdin)
	assert.Empty(t, cfg.Extensions())
}

func TestMerge_FirstDefinitionWins(t *testing.T) {
	near := &Config{
		Langs: map[string]LanguageEntry{
			"cpp": {CompileCommands: []string{"g++ -o {output} {source}"}, RunCommand: "{output}"},
		},
		DefaultStdin: "near.in",
		Files:        []string{"/a/cfb.toml"},
	}
	far := &Config{
		Langs: map[string]LanguageEntry{
			"cpp": {CompileCommands: []string{"clang++ -o {output} {source}"}, RunCommand: "far"},
			"py":  {RunCommand: "python3 {source}"},
		},
		DefaultStdin: "far.in",
		Files:        []string{"/cfb.toml"},
	}

	cfg := NewConfig()
	cfg.Merge(near)
	cfg.Merge(far)

	assert.Equal(t, near.Langs["cpp"], cfg.Langs["cpp"])
	assert.Equal(t, far.Langs["py"], cfg.Langs["py"])
	assert.Equal(t, "near.in", cfg.DefaultStdin)
	assert.Equal(t, []string{"/a/cfb.toml", "/cfb.toml"}, cfg.Files)
}

func TestMerge_DefaultStdinFirstNonEmpty(t *testing.T) {
	cfg := NewConfig()
	cfg.Merge(&Config{})
	cfg.Merge(&Config{DefaultStdin: "second.in"})
	cfg.Merge(&Config{DefaultStdin: "third.in"})

	assert.Equal(t, "second.in", cfg.DefaultStdin)
}

func TestMerge_Nil(t *testing.T) {
	cfg := NewConfig()
	cfg.Merge(nil)
	assert.Empty(t, cfg.Langs)
}

func TestLookupAndMatches(t *testing.T) {
	cfg := &Config{Langs: map[string]LanguageEntry{
		"cpp": {RunCommand: "{output}"},
		"x":   {RunCommand: "echo hi"},
	}}

	entry, ok := cfg.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "echo hi", entry.RunCommand)

	_, ok = cfg.Lookup("rs")
	assert.False(t, ok)

	assert.True(t, cfg.Matches("dir/a.cpp"))
	assert.True(t, cfg.Matches("file.x"))
	assert.False(t, cfg.Matches("main.rs"))
	assert.False(t, cfg.Matches("Makefile"))
	assert.False(t, cfg.Matches(".x"))

	assert.Equal(t, []string{"cpp", "x"}, cfg.Extensions())
}

func TestExt(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.cpp", "cpp"},
		{"/tmp/dir.d/a.tar.gz", "gz"},
		{"Makefile", ""},
		{".bashrc", ""},
		{"weird.", ""},
		{"dir.x/noext", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Ext(tt.path), "Ext(%q)", tt.path)
	}
}

func TestAncestors(t *testing.T) {
	got := Ancestors(filepath.FromSlash("/a/b/c"))
	want := []string{
		filepath.FromSlash("/a/b/c"),
		filepath.FromSlash("/a/b"),
		filepath.FromSlash("/a"),
		filepath.FromSlash("/"),
	}
	assert.Equal(t, want, got)

	assert.Equal(t, []string{filepath.FromSlash("/")}, Ancestors(filepath.FromSlash("/")))
}

func TestConfigPaths(t *testing.T) {
	paths := ConfigPaths(filepath.FromSlash("/a/b"))
	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(filepath.FromSlash("/a/b"), FileName), paths[0])
}

func TestParseFile(t *testing.T) {
	dir := tempRoot(t)
	path := writeConfig(t, dir, `
default_stdin = "{source_unquoted}.in"

[langs.cpp]
compile_commands = ["g++ -O2 -o {output} {source}", "strip {output}"]
run_command = "{output}"

[langs.py]
compile_commands = []
run_command = "python3 {source}"

[langs.sh]
compile_commands = []
run_command = "sh {source}"
`)

	cfg, err := ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, "{source_unquoted}.in", cfg.DefaultStdin)
	assert.Equal(t, []string{"g++ -O2 -o {output} {source}", "strip {output}"}, cfg.Langs["cpp"].CompileCommands)
	assert.Equal(t, "{output}", cfg.Langs["cpp"].RunCommand)
	assert.Empty(t, cfg.Langs["py"].CompileCommands)
	assert.Empty(t, cfg.Langs["sh"].CompileCommands)
	assert.Equal(t, []string{path}, cfg.Files)
}

func TestParseFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid toml", "[langs.cpp\nrun_command = 1"},
		{"wrong type", "[langs.cpp]\ncompile_commands = []\nrun_command = 42"},
		{"compile commands not a list", "[langs.cpp]\ncompile_commands = \"g++\"\nrun_command = \"x\""},
		{"missing run_command", "[langs.cpp]\ncompile_commands = []"},
		{"missing compile_commands", "[langs.cpp]\nrun_command = \"x\""},
		{"leading dot", "[langs.\".cpp\"]\ncompile_commands = []\nrun_command = \"x\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tempRoot(t), tt.content)

			_, err := ParseFile(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse))
			assert.Contains(t, err.Error(), path)

			var customErr *cuserr.CustomError
			require.True(t, errors.As(err, &customErr))
			got, ok := customErr.GetMetadata(MetaKeyPath)
			assert.True(t, ok)
			assert.Equal(t, path, got)
		})
	}
}

func TestParseFile_EmptyFile(t *testing.T) {
	path := writeConfig(t, tempRoot(t), "")

	cfg, err := ParseFile(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Langs)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(tempRoot(t), FileName))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))
}

func TestLoadFrom_NearestWins(t *testing.T) {
	root := tempRoot(t)
	child := filepath.Join(root, "contest", "round1")

	farPath := writeConfig(t, root, `
default_stdin = "far.in"

[langs.cpp]
compile_commands = ["clang++ -o {output} {source}"]
run_command = "far {output}"

[langs.py]
compile_commands = []
run_command = "python3 {source}"
`)
	nearPath := writeConfig(t, child, `
[langs.cpp]
compile_commands = ["g++ -o {output} {source}"]
run_command = "{output}"
`)

	cfg, err := LoadFrom(child)
	require.NoError(t, err)

	assert.Equal(t, "{output}", cfg.Langs["cpp"].RunCommand)
	assert.Equal(t, []string{"g++ -o {output} {source}"}, cfg.Langs["cpp"].CompileCommands)
	assert.Equal(t, "python3 {source}", cfg.Langs["py"].RunCommand)
	assert.Equal(t, "far.in", cfg.DefaultStdin)
	assert.Equal(t, []string{nearPath, farPath}, cfg.Files)
}

func TestLoadFrom_SkipsDirectoriesWithoutConfig(t *testing.T) {
	root := tempRoot(t)
	writeConfig(t, root, "[langs.x]\ncompile_commands = []\nrun_command = \"echo hi\"\n")
	deep := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	cfg, err := LoadFrom(deep)
	require.NoError(t, err)
	assert.Equal(t, "echo hi", cfg.Langs["x"].RunCommand)
}

func TestLoadFrom_NoConfig(t *testing.T) {
	cfg, err := LoadFrom(tempRoot(t))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadFrom_MalformedAncestorIsFatal(t *testing.T) {
	root := tempRoot(t)
	child := filepath.Join(root, "child")
	badPath := writeConfig(t, root, "this is = = not toml")
	writeConfig(t, child, "[langs.x]\ncompile_commands = []\nrun_command = \"echo hi\"\n")

	_, err := LoadFrom(child)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
	assert.Contains(t, err.Error(), badPath)
}

func TestLoadFrom_MissingDirectory(t *testing.T) {
	_, err := LoadFrom(filepath.Join(tempRoot(t), "does-not-exist"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))
}

func TestLoadFrom_ResolvesSymlinks(t *testing.T) {
	root := tempRoot(t)
	realDir := filepath.Join(root, "real")
	writeConfig(t, realDir, "[langs.x]\ncompile_commands = []\nrun_command = \"echo real\"\n")

	link := filepath.Join(root, "link")
	if err := os.Symlink(realDir, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	cfg, err := LoadFrom(link)
	require.NoError(t, err)
	assert.Equal(t, "echo real", cfg.Langs["x"].RunCommand)
	assert.Equal(t, []string{filepath.Join(realDir, FileName)}, cfg.Files)
}
