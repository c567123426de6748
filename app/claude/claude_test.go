package claude

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFakeBinary(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("Failed to write fake binary: %v", err)
	}
	return path
}

func TestFindBinary_PathOverride(t *testing.T) {
	fake := writeFakeBinary(t, t.TempDir(), "claude")

	client := NewClient(fake)
	path, err := client.FindBinary()
	if err != nil {
		t.Fatalf("Expected override to resolve, got error: %v", err)
	}
	if path != fake {
		t.Errorf("Expected %s, got %s", fake, path)
	}
}

func TestFindBinary_IgnoresMissingOverride(t *testing.T) {
	dir := t.TempDir()
	fake := writeFakeBinary(t, dir, "claude")

	t.Setenv("CLAUDE_PATH", fake)

	client := NewClient(filepath.Join(dir, "does-not-exist"))
	path, err := client.FindBinary()
	if err != nil {
		t.Fatalf("Expected env fallback to resolve, got error: %v", err)
	}
	if path != fake {
		t.Errorf("Expected %s, got %s", fake, path)
	}
}

func TestFindBinary_EnvVariable(t *testing.T) {
	fake := writeFakeBinary(t, t.TempDir(), "claude")

	t.Setenv("CLAUDE_PATH", fake)

	client := NewClient("")
	path, err := client.FindBinary()
	if err != nil {
		t.Fatalf("Expected CLAUDE_PATH to resolve, got error: %v", err)
	}
	if path != fake {
		t.Errorf("Expected %s, got %s", fake, path)
	}
}

func TestFindBinary_WellKnownDir(t *testing.T) {
	dir := t.TempDir()
	fake := writeFakeBinary(t, dir, "claude")

	original := wellKnownDirs
	wellKnownDirs = []string{dir}
	t.Cleanup(func() { wellKnownDirs = original })

	t.Setenv("CLAUDE_PATH", "")

	client := NewClient("")
	path, err := client.FindBinary()
	if err != nil {
		t.Fatalf("Expected well-known dir to resolve, got error: %v", err)
	}
	if path != fake {
		t.Errorf("Expected %s, got %s", fake, path)
	}
}

func TestFindBinary_NotFound(t *testing.T) {
	original := wellKnownDirs
	wellKnownDirs = []string{t.TempDir()}
	t.Cleanup(func() { wellKnownDirs = original })

	t.Setenv("CLAUDE_PATH", "")
	t.Setenv("PATH", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	client := NewClient("")
	_, err := client.FindBinary()
	if err == nil {
		t.Fatal("Expected an error when no binary exists anywhere")
	}

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError, got %T: %v", err, err)
	}
}
