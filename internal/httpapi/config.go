package httpapi

// maxBodyBytes controls the maximum allowed request body size for the form
// endpoints. Uploads have their own limit.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// maxUploadBytes caps multipart uploads. Zero means unlimited; GGUF model
// files routinely run into the gigabytes.
var maxUploadBytes int64 = 0

// SetMaxUploadBytes configures the upload cap (0 disables).
func SetMaxUploadBytes(n int64) {
	if n < 0 {
		n = 0
	}
	maxUploadBytes = n
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
