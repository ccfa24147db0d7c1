package manager

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bitnetd/pkg/types"
)

// Upload stores a pre-converted GGUF file under modelsDir/<filename stem>
// and marks it as the loaded model. Non-GGUF filenames are rejected before
// any directory is created.
func (m *Manager) Upload(filename string, r io.Reader) types.Result {
	name := filepath.Base(filename)
	if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
		uploadsTotal.WithLabelValues("rejected").Inc()
		return errResult("Only .gguf files are supported")
	}

	stem := name[:len(name)-len(".gguf")]
	dir := filepath.Join(m.cfg.ModelsDir, stem)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		uploadsTotal.WithLabelValues("error").Inc()
		return errResult(fmt.Sprintf("Error storing model: %v", err))
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		uploadsTotal.WithLabelValues("error").Inc()
		return errResult(fmt.Sprintf("Error storing model: %v", err))
	}
	defer dst.Close()
	if _, err := io.Copy(dst, r); err != nil {
		uploadsTotal.WithLabelValues("error").Inc()
		return errResult(fmt.Sprintf("Error storing model: %v", err))
	}

	m.Refresh(dir)
	uploadsTotal.WithLabelValues("success").Inc()
	m.log.Info().Str("model", stem).Msg("model uploaded")
	return types.Result{Status: types.StatusSuccess, Message: "Model uploaded successfully"}
}
