package manager

import (
	"github.com/rs/zerolog"

	"bitnetd/internal/runner"
)

const (
	defaultNamespace = "microsoft"
	defaultQuantType = "i2_s"
)

// ManagerConfig collects constructor parameters for the Manager.
type ManagerConfig struct {
	// Root directory holding one subdirectory per model.
	ModelsDir string
	// Namespace prefixed to bare model names (no '/') before download.
	DefaultNamespace string
	// Quantization type passed to the environment setup step.
	QuantType string
	Runner    runner.Runner
	Logger    zerolog.Logger
}

func (c *ManagerConfig) applyDefaults() {
	if c.DefaultNamespace == "" {
		c.DefaultNamespace = defaultNamespace
	}
	if c.QuantType == "" {
		c.QuantType = defaultQuantType
	}
}
