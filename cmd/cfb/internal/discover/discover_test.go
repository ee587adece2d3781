package discover_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/albertocavalcante/cfb/cmd/cfb/internal/discover"
)

func createFile(t *testing.T, root, rel string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func rels(sources []discover.Source) []string {
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = s.Rel
	}
	return out
}

func matchExt(exts ...string) func(string) bool {
	return func(path string) bool {
		return slices.Contains(exts, strings.TrimPrefix(filepath.Ext(path), "."))
	}
}

func TestSources_Empty(t *testing.T) {
	got, err := discover.Sources(context.Background(), discover.Options{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("Sources() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Sources() = %v, want empty", got)
	}
}

func TestSources_LexicalOrder(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "b.cpp")
	createFile(t, root, "a/z.cpp")
	createFile(t, root, "a.cpp")
	createFile(t, root, "readme.md")

	got, err := discover.Sources(context.Background(), discover.Options{
		Root:  root,
		Match: matchExt("cpp"),
	})
	if err != nil {
		t.Fatalf("Sources() error = %v", err)
	}

	want := []string{"a.cpp", "a/z.cpp", "b.cpp"}
	if !slices.Equal(rels(got), want) {
		t.Errorf("Sources() = %v, want %v", rels(got), want)
	}
	if got[0].Path != filepath.Join(root, "a.cpp") {
		t.Errorf("Path = %q, want absolute path under root", got[0].Path)
	}
}

func TestSources_IgnoredDirs(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "main.py")
	createFile(t, root, ".git/hook.py")
	createFile(t, root, "node_modules/x.py")
	createFile(t, root, "__pycache__/y.py")
	createFile(t, root, "vendor/z.py")
	createFile(t, root, "target/w.py")
	createFile(t, root, "cfb-out/old.py")
	createFile(t, root, "targets/kept.py")

	got, err := discover.Sources(context.Background(), discover.Options{
		Root:      root,
		Match:     matchExt("py"),
		SkipPaths: []string{filepath.Join(root, "cfb-out")},
	})
	if err != nil {
		t.Fatalf("Sources() error = %v", err)
	}

	want := []string{"main.py", "targets/kept.py"}
	if !slices.Equal(rels(got), want) {
		t.Errorf("Sources() = %v, want %v", rels(got), want)
	}
}

func TestSources_RootNamedDot(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "a.c")

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(root); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	got, err := discover.Sources(context.Background(), discover.Options{Root: "."})
	if err != nil {
		t.Fatalf("Sources() error = %v", err)
	}
	if !slices.Equal(rels(got), []string{"a.c"}) {
		t.Errorf("Sources() = %v, want [a.c]", rels(got))
	}
}

func TestSources_Exclude(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "a.cpp")
	createFile(t, root, "gen/big.cpp")
	createFile(t, root, "src/keep.cpp")
	createFile(t, root, "src/scratch_1.cpp")

	got, err := discover.Sources(context.Background(), discover.Options{
		Root:    root,
		Exclude: []string{"gen", "**/scratch_*.cpp"},
	})
	if err != nil {
		t.Fatalf("Sources() error = %v", err)
	}

	want := []string{"a.cpp", "src/keep.cpp"}
	if !slices.Equal(rels(got), want) {
		t.Errorf("Sources() = %v, want %v", rels(got), want)
	}
}

func TestSources_InvalidPattern(t *testing.T) {
	_, err := discover.Sources(context.Background(), discover.Options{
		Root:    t.TempDir(),
		Exclude: []string{"[unclosed"},
	})
	if err == nil {
		t.Error("Sources() expected error for invalid pattern")
	}
}

func TestSources_Canceled(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "a.c")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := discover.Sources(ctx, discover.Options{Root: root}); err == nil {
		t.Error("Sources() expected error for canceled context")
	}
}

func TestIsIgnoredDir(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{".git", true},
		{".cache", true},
		{"node_modules", true},
		{"vendor", true},
		{"src", false},
		{"vendored", false},
	}
	for _, tt := range tests {
		if got := discover.IsIgnoredDir(tt.name); got != tt.want {
			t.Errorf("IsIgnoredDir(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCollisions(t *testing.T) {
	sources := []discover.Source{
		{Path: "/r/a.cpp", Rel: "a.cpp"},
		{Path: "/r/a.py", Rel: "a.py"},
		{Path: "/r/b.cpp", Rel: "b.cpp"},
		{Path: "/r/sub/a.c", Rel: "sub/a.c"},
	}
	stem := func(p string) string {
		base := filepath.Base(p)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}

	got := discover.Collisions(sources, stem)
	if len(got) != 1 {
		t.Fatalf("Collisions() = %v, want one group", got)
	}
	if !slices.Equal(rels(got[0]), []string{"a.cpp", "a.py", "sub/a.c"}) {
		t.Errorf("Collisions()[0] = %v", rels(got[0]))
	}
}

func TestExtensionsAndPaths(t *testing.T) {
	sources := []discover.Source{
		{Path: "/r/b.py"},
		{Path: "/r/a.cpp"},
		{Path: "/r/c.py"},
	}

	if got := discover.Extensions(sources); !slices.Equal(got, []string{"cpp", "py"}) {
		t.Errorf("Extensions() = %v", got)
	}
	if got := discover.Paths(sources); !slices.Equal(got, []string{"/r/b.py", "/r/a.cpp", "/r/c.py"}) {
		t.Errorf("Paths() = %v", got)
	}
}

func TestSources_Symlinks(t *testing.T) {
	root := t.TempDir()
	target := createFile(t, root, "real/a.py")
	if err := os.Symlink(target, filepath.Join(root, "link.py")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "dir.py")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "gone.py"), filepath.Join(root, "dangling.py")); err != nil {
		t.Fatal(err)
	}

	got, err := discover.Sources(context.Background(), discover.Options{
		Root:  root,
		Match: matchExt("py"),
	})
	if err != nil {
		t.Fatalf("Sources() error = %v", err)
	}

	want := []string{"link.py", "real/a.py"}
	if !slices.Equal(rels(got), want) {
		t.Errorf("Sources() = %v, want %v", rels(got), want)
	}
}
