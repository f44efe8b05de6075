package toolchain_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/packwright/packwright/pkg/toolchain"
)

func mustWrite(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("binary"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLocateExecutable_NestedAmongDecoys(t *testing.T) {
	root := t.TempDir()

	// decoy directories and files that must not match
	mustWrite(t, filepath.Join(root, "README.md"))
	mustWrite(t, filepath.Join(root, "docs", "notes.txt"))
	mustWrite(t, filepath.Join(root, "misc", "data", "pack.bin"))

	// the real binary, three directories deep
	want := filepath.Join(root, "release", "x11", "tools", "engine_v3.2.2-stable_linux.x86_64")
	mustWrite(t, want)

	got, err := toolchain.LocateExecutable(root)
	if err != nil {
		t.Fatalf("LocateExecutable failed: %v", err)
	}
	if got != want {
		t.Errorf("found %q, want %q", got, want)
	}
}

func TestLocateExecutable_32BitVariant(t *testing.T) {
	root := t.TempDir()
	want := filepath.Join(root, "bin", "engine.32")
	mustWrite(t, want)

	got, err := toolchain.LocateExecutable(root)
	if err != nil {
		t.Fatalf("LocateExecutable failed: %v", err)
	}
	if got != want {
		t.Errorf("found %q, want %q", got, want)
	}
}

func TestLocateExecutable_NotFound(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a", "b", "c", "nothing.txt"))

	_, err := toolchain.LocateExecutable(root)
	if !errors.Is(err, toolchain.ErrExecutableNotFound) {
		t.Fatalf("expected ErrExecutableNotFound, got %v", err)
	}
}

func TestLocateExecutable_DirectoryNamedLikeBinaryIsSkipped(t *testing.T) {
	root := t.TempDir()

	// a directory whose name carries a binary suffix must not match
	if err := os.MkdirAll(filepath.Join(root, "fake.64"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	want := filepath.Join(root, "real", "engine.64")
	mustWrite(t, want)

	got, err := toolchain.LocateExecutable(root)
	if err != nil {
		t.Fatalf("LocateExecutable failed: %v", err)
	}
	if got != want {
		t.Errorf("found %q, want %q", got, want)
	}
}
