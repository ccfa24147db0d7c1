package manager

import (
	"sync"

	"github.com/rs/zerolog"

	"bitnetd/internal/common/fsutil"
	"bitnetd/internal/registry"
	"bitnetd/internal/runner"
	"bitnetd/pkg/types"
)

// Manager owns the model status pair and the download progress record.
// Both were process-wide globals in earlier incarnations of this design;
// here they live behind one mutex so concurrent requests interleave at
// whole-write granularity (last writer wins, as before).
type Manager struct {
	mu  sync.Mutex
	cfg ManagerConfig
	run runner.Runner
	log zerolog.Logger

	loaded  bool
	current string

	progress types.DownloadProgress

	// Tracks background downloads so Close can join them on shutdown.
	wg sync.WaitGroup
}

func New(modelsDir string, run runner.Runner) *Manager {
	return NewWithConfig(ManagerConfig{ModelsDir: modelsDir, Runner: run})
}

func NewWithConfig(cfg ManagerConfig) *Manager {
	cfg.applyDefaults()
	return &Manager{cfg: cfg, run: cfg.Runner, log: cfg.Logger}
}

// Refresh recomputes the status pair against path. The status is loaded only
// when path names an existing directory with at least one entry; an empty
// path, or a missing or empty directory, clears it. Pure function of
// filesystem state at call time, never an error.
func (m *Manager) Refresh(path string) (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshLocked(path)
}

func (m *Manager) refreshLocked(path string) (bool, string) {
	if path == "" || !fsutil.DirNonEmpty(path) {
		m.loaded = false
		m.current = ""
		return false, ""
	}
	m.loaded = true
	m.current = path
	return true, path
}

// ModelStatus re-evaluates and reports the current status pair. Status is
// derived from the filesystem on every call, never cached across calls.
func (m *Manager) ModelStatus() types.ModelStatusResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != "" {
		m.refreshLocked(m.current)
	}
	if !m.loaded {
		return types.ModelStatusResponse{}
	}
	p := m.current
	return types.ModelStatusResponse{ModelLoaded: true, CurrentModel: &p}
}

// Progress returns a copy of the download progress record.
func (m *Manager) Progress() types.DownloadProgress {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.progress
	if m.progress.Error != nil {
		e := *m.progress.Error
		p.Error = &e
	}
	return p
}

// ListModels scans the models root for model directories.
func (m *Manager) ListModels() ([]types.Model, error) {
	return registry.LoadDir(m.cfg.ModelsDir)
}

// Close joins any in-flight background downloads.
func (m *Manager) Close() {
	m.wg.Wait()
}

func errResult(msg string) types.Result {
	return types.Result{Status: types.StatusError, Message: msg}
}
