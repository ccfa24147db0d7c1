package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"bitnetd/internal/common/fsutil"
	"bitnetd/pkg/types"
)

// LoadDir scans the models root for model directories, one per model.
// ID is the directory name; Format is detected from the files inside:
// a *.gguf file wins, otherwise transformer-runtime weights next to a
// config.json count, anything else is unknown.
func LoadDir(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p := filepath.Join(abs, e.Name())
		models = append(models, types.Model{
			ID:     e.Name(),
			Name:   e.Name(),
			Path:   p,
			Format: detectFormat(p),
		})
	}
	return models, nil
}

func detectFormat(dir string) string {
	if _, ok := fsutil.FirstWithExt(dir, ".gguf"); ok {
		return types.FormatGGUF
	}
	if fsutil.HasAnyExt(dir, ".safetensors", ".bin", ".pt") && fsutil.PathExists(filepath.Join(dir, "config.json")) {
		return types.FormatTransformers
	}
	return types.FormatUnknown
}
