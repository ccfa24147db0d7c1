package fsutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandHomeNoTilde(t *testing.T) {
	p, err := ExpandHome("/abs/path")
	if err != nil {
		t.Fatalf("ExpandHome: %v", err)
	}
	if p != "/abs/path" {
		t.Fatalf("unexpected: %q", p)
	}
}

func TestExpandHomeTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	p, err := ExpandHome("~/models")
	if err != nil {
		t.Fatalf("ExpandHome: %v", err)
	}
	if !strings.HasPrefix(p, home) {
		t.Fatalf("expected prefix %q got %q", home, p)
	}
}

func TestPathExists(t *testing.T) {
	d := t.TempDir()
	if !PathExists(d) {
		t.Fatalf("expected existing dir")
	}
	if PathExists(filepath.Join(d, "missing")) {
		t.Fatalf("expected missing path")
	}
}

func TestDirNonEmpty(t *testing.T) {
	d := t.TempDir()
	if DirNonEmpty(d) {
		t.Fatalf("empty dir reported non-empty")
	}
	if DirNonEmpty(filepath.Join(d, "nope")) {
		t.Fatalf("missing dir reported non-empty")
	}
	if err := os.WriteFile(filepath.Join(d, "f"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !DirNonEmpty(d) {
		t.Fatalf("dir with file reported empty")
	}
}

func TestFirstWithExt(t *testing.T) {
	d := t.TempDir()
	for _, name := range []string{"b.gguf", "a.gguf", "c.txt"} {
		if err := os.WriteFile(filepath.Join(d, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	p, ok := FirstWithExt(d, ".gguf")
	if !ok {
		t.Fatalf("expected a match")
	}
	// ReadDir is lexical, so a.gguf wins over b.gguf
	if filepath.Base(p) != "a.gguf" {
		t.Fatalf("expected a.gguf got %s", filepath.Base(p))
	}
	if _, ok := FirstWithExt(d, ".safetensors"); ok {
		t.Fatalf("unexpected match")
	}
}

func TestHasAnyExt(t *testing.T) {
	d := t.TempDir()
	if err := os.WriteFile(filepath.Join(d, "weights.BIN"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !HasAnyExt(d, ".safetensors", ".bin", ".pt") {
		t.Fatalf("expected case-insensitive match")
	}
	if HasAnyExt(d, ".gguf") {
		t.Fatalf("unexpected match")
	}
}
