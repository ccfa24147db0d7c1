package types

// Model formats recognized under the models root.
const (
	FormatGGUF         = "gguf"
	FormatTransformers = "transformers"
	FormatUnknown      = "unknown"
)

// Model represents one model directory under the models root.
type Model struct {
	// Stable identifier, the directory name.
	// example: bitnet_b1_58-large
	ID string `json:"id"`
	// Human-friendly name.
	// example: bitnet_b1_58-large
	Name string `json:"name"`
	// Absolute path to the model directory on disk.
	// example: /srv/bitnetd/models/bitnet_b1_58-large
	Path string `json:"path"`
	// Detected format: gguf, transformers, or unknown.
	// example: gguf
	Format string `json:"format"`
}
