package manager

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"bitnetd/internal/runner"
)

// fakeRunner records invocations and returns canned results.
type fakeRunner struct {
	mu        sync.Mutex
	downloads [][2]string // repo, outDir
	setups    [][2]string // modelDir, quantType
	infers    []runner.InferParams
	fallbacks []runner.FallbackParams

	downloadErr  error
	downloadFunc func(outDir string) error
	setupErr     error
	inferOut     string
	inferErr     error
	fallbackOut  string
	fallbackErr  error
}

func (f *fakeRunner) Download(_ context.Context, repo, outDir string) error {
	f.mu.Lock()
	f.downloads = append(f.downloads, [2]string{repo, outDir})
	f.mu.Unlock()
	if f.downloadFunc != nil {
		if err := f.downloadFunc(outDir); err != nil {
			return err
		}
	}
	return f.downloadErr
}

func (f *fakeRunner) Setup(_ context.Context, modelDir, quantType string) error {
	f.mu.Lock()
	f.setups = append(f.setups, [2]string{modelDir, quantType})
	f.mu.Unlock()
	return f.setupErr
}

func (f *fakeRunner) Infer(_ context.Context, p runner.InferParams) (string, error) {
	f.mu.Lock()
	f.infers = append(f.infers, p)
	f.mu.Unlock()
	return f.inferOut, f.inferErr
}

func (f *fakeRunner) Fallback(_ context.Context, p runner.FallbackParams) (string, error) {
	f.mu.Lock()
	f.fallbacks = append(f.fallbacks, p)
	f.mu.Unlock()
	return f.fallbackOut, f.fallbackErr
}

func (f *fakeRunner) calls() (downloads, setups, infers, fallbacks int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.downloads), len(f.setups), len(f.infers), len(f.fallbacks)
}

func newTestManager(t *testing.T, fake *fakeRunner) *Manager {
	t.Helper()
	return NewWithConfig(ManagerConfig{
		ModelsDir: t.TempDir(),
		Runner:    fake,
		Logger:    zerolog.Nop(),
	})
}

// writeModelFiles populates dir with the given (empty) files.
func writeModelFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", n, err)
		}
	}
}
