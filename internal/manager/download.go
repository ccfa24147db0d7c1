package manager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bitnetd/pkg/types"
)

// NormalizeModelName prefixes bare names with the default namespace.
// Names already carrying a '/' are returned untouched.
func NormalizeModelName(name, namespace string) string {
	if strings.Contains(name, "/") || namespace == "" {
		return name
	}
	return namespace + "/" + name
}

// Download fetches a model from the hub into modelsDir/<last path segment>,
// then attempts the environment setup step. Setup failure is non-fatal:
// inference can still proceed through the fallback runtime. The progress
// record steps through fixed checkpoints (10/70/100); nothing is measured
// from actual transfer bytes.
func (m *Manager) Download(ctx context.Context, modelName string) types.Result {
	name := NormalizeModelName(modelName, m.cfg.DefaultNamespace)

	m.mu.Lock()
	m.progress = types.DownloadProgress{
		IsDownloading: true,
		ModelName:     name,
		Progress:      0,
		Status:        "Starting download...",
	}
	m.mu.Unlock()

	outDir := filepath.Join(m.cfg.ModelsDir, name[strings.LastIndex(name, "/")+1:])
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return m.failDownload(fmt.Errorf("create model directory: %w", err))
	}

	m.setProgress(10, "Downloading model files...")
	m.log.Info().Str("model", name).Str("dir", outDir).Msg("download start")
	if err := m.run.Download(ctx, name, outDir); err != nil {
		return m.failDownload(err)
	}

	m.setProgress(70, "Setting up environment...")
	if err := m.run.Setup(ctx, outDir, m.cfg.QuantType); err != nil {
		// Non-fatal: the fallback runtime can still load the raw weights.
		m.log.Warn().Err(err).Str("model", name).Msg("environment setup failed, will rely on fallback model loading")
	}

	m.mu.Lock()
	m.progress.Progress = 100
	m.progress.Status = "Download completed"
	m.progress.IsDownloading = false
	m.refreshLocked(outDir)
	m.mu.Unlock()

	downloadsTotal.WithLabelValues("success").Inc()
	m.log.Info().Str("model", name).Msg("download completed")
	return types.Result{Status: types.StatusSuccess, Message: fmt.Sprintf("Model %s downloaded successfully", name)}
}

// DownloadBackground runs Download on a tracked goroutine and returns an
// acknowledgement immediately. The goroutine reports only through the shared
// progress record; Close joins it during shutdown.
func (m *Manager) DownloadBackground(modelName string) types.Result {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.Download(context.Background(), modelName)
	}()
	return types.Result{Status: types.StatusSuccess, Message: fmt.Sprintf("Started downloading model %s in background", modelName)}
}

func (m *Manager) setProgress(pct int, status string) {
	m.mu.Lock()
	m.progress.Progress = pct
	m.progress.Status = status
	m.mu.Unlock()
}

// failDownload records the error in the progress record, leaves progress at
// its last-set value, and clears the model status.
func (m *Manager) failDownload(err error) types.Result {
	msg := err.Error()
	m.mu.Lock()
	m.progress.Error = &msg
	m.progress.Status = "Error: " + msg
	m.progress.IsDownloading = false
	m.refreshLocked("")
	m.mu.Unlock()
	downloadsTotal.WithLabelValues("error").Inc()
	m.log.Error().Err(err).Msg("download failed")
	return errResult(fmt.Sprintf("Error downloading model: %v", err))
}
