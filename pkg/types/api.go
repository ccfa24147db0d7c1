package types

// Result is the tagged outcome returned by every operation. Failures never
// raise past a component boundary; they are carried in Message with Status
// set to "error".
type Result struct {
	// "success" or "error".
	// example: success
	Status string `json:"status"`
	// Generated text, present on successful generation.
	Output string `json:"output,omitempty"`
	// Human-readable message, present on errors and non-generation successes.
	// example: Model microsoft/bitnet_b1_58-large downloaded successfully
	Message string `json:"message,omitempty"`
}

// Status values used in Result.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// GenerateRequest carries the fields accepted by POST /generate.
type GenerateRequest struct {
	// Prompt text to generate a completion for.
	// example: Write a haiku about the ocean.
	Prompt string `json:"prompt"`
	// Wrap the prompt in a conversational template.
	// example: true
	Conversation bool `json:"conversation"`
	// Maximum number of new tokens to generate.
	// example: 128
	NPredict int `json:"n_predict"`
	// Sampling temperature (higher = more random).
	// example: 0.7
	Temperature float64 `json:"temperature"`
}

// DownloadProgress is the process-wide download progress record, returned
// verbatim by GET /download-progress. Progress steps through fixed
// checkpoints; it is not measured from transferred bytes.
type DownloadProgress struct {
	IsDownloading bool   `json:"is_downloading"`
	ModelName     string `json:"model_name"`
	// Percentage in [0,100].
	// example: 70
	Progress int    `json:"progress"`
	Status   string `json:"status"`
	// Populated only when the download failed.
	Error *string `json:"error"`
}

// ModelStatusResponse is returned by GET /model-status.
type ModelStatusResponse struct {
	ModelLoaded bool `json:"model_loaded"`
	// Absolute path of the loaded model directory, null when none.
	CurrentModel *string `json:"current_model"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	Models []Model `json:"models"`
}

// ErrorResponse is a consistent JSON error payload for transport-level
// failures (malformed forms, oversized bodies).
type ErrorResponse struct {
	// Error message.
	// example: model_name is required
	Error string `json:"error" example:"model_name is required"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
