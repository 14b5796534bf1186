package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveDefaultsToConventionalRoots(t *testing.T) {
	root := t.TempDir()
	main := filepath.Join(root, "src", "main", "scala")
	if err := os.MkdirAll(main, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	layout, err := Resolve(context.Background(), root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if layout.Root != root {
		t.Fatalf("Root = %q, want %q", layout.Root, root)
	}
	if len(layout.SourceRoots) != 2 {
		t.Fatalf("SourceRoots = %v, want src/main/scala and .", layout.SourceRoots)
	}
	if layout.SourceRoots[0] != main {
		t.Fatalf("deepest root first: got %q, want %q", layout.SourceRoots[0], main)
	}
}

func TestResolveHonorsConfigRoots(t *testing.T) {
	root := t.TempDir()
	app := filepath.Join(root, "app")
	if err := os.MkdirAll(app, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg := "[workspace]\nsource-roots = [\"app\", \"missing\"]\n"
	if err := os.WriteFile(filepath.Join(root, ConfigFile), []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	layout, err := Resolve(context.Background(), root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(layout.SourceRoots) != 1 || layout.SourceRoots[0] != app {
		t.Fatalf("SourceRoots = %v, want [%q]", layout.SourceRoots, app)
	}
}

func TestResolveFindsConfigAboveStartDir(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "modules", "core")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, ConfigFile), []byte(""), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	layout, err := Resolve(context.Background(), nested)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if layout.Root != root {
		t.Fatalf("Root = %q, want config dir %q", layout.Root, root)
	}
}

func TestFindConfigMissing(t *testing.T) {
	_, ok, err := FindConfig(t.TempDir())
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if ok {
		t.Fatal("expected no config in an empty temp dir")
	}
}
