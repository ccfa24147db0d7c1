package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	// Directory holding the external scripts and the BitNet checkout.
	WorkDir string `json:"work_dir" yaml:"work_dir" toml:"work_dir"`
	// Interpreter used to run the external scripts.
	Python string `json:"python" yaml:"python" toml:"python"`
	// Quantization type passed to the environment setup step.
	QuantType string `json:"quant_type" yaml:"quant_type" toml:"quant_type"`
	// Namespace prefixed to bare model names before download.
	DefaultNamespace string `json:"default_namespace" yaml:"default_namespace" toml:"default_namespace"`
	LogLevel         string `json:"log_level" yaml:"log_level" toml:"log_level"`
	// Maximum accepted upload size in MB (0 = unlimited).
	MaxUploadMB int `json:"max_upload_mb" yaml:"max_upload_mb" toml:"max_upload_mb"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
