package manager

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"bitnetd/internal/common/fsutil"
	"bitnetd/internal/runner"
	"bitnetd/pkg/types"
)

// Prompt template applied by the fallback path in conversational mode. The
// primary path passes the raw prompt and lets the inference script handle
// conversation via its own flag.
const conversationTemplate = "System: %s\nAssistant: "

// Literal delimiters emitted by the fallback generation script.
const (
	fallbackMarker    = "Generated Text:"
	fallbackSeparator = "--------------"
)

// Weight-file extensions the fallback runtime can load.
var fallbackWeightExts = []string{".safetensors", ".bin", ".pt"}

// Generate runs one generation request against the loaded model. A *.gguf
// file selects the primary inference binary; otherwise directories holding
// transformer-runtime weights plus a config descriptor go through the
// fallback script. All failures come back as tagged error results.
func (m *Manager) Generate(ctx context.Context, req types.GenerateRequest) types.Result {
	m.mu.Lock()
	if m.current != "" {
		m.refreshLocked(m.current)
	}
	loaded, current := m.loaded, m.current
	m.mu.Unlock()

	if !loaded || current == "" {
		return errResult("No model loaded")
	}

	if modelFile, ok := fsutil.FirstWithExt(current, ".gguf"); ok {
		return m.generatePrimary(ctx, modelFile, current, req)
	}

	if !fsutil.DirNonEmpty(current) {
		m.Refresh("")
		return errResult("No files found in the model directory. Download may have failed.")
	}

	hasWeights := fsutil.HasAnyExt(current, fallbackWeightExts...)
	hasConfig := fsutil.PathExists(filepath.Join(current, "config.json"))
	if hasWeights && hasConfig {
		out, err := m.generateFallback(ctx, current, req)
		if err != nil {
			return errResult(fmt.Sprintf("Error running fallback model server: %v. Please install transformers: pip install transformers", err))
		}
		return types.Result{Status: types.StatusSuccess, Output: out}
	}
	if hasConfig {
		// Loose last try: a config descriptor without recognized weight
		// files may still be loadable by the fallback runtime.
		if out, err := m.generateFallback(ctx, current, req); err == nil {
			return types.Result{Status: types.StatusSuccess, Output: out}
		}
	}
	return errResult("No GGUF model file found and no alternative model format detected. The model may not be compatible.")
}

func (m *Manager) generatePrimary(ctx context.Context, modelFile, modelDir string, req types.GenerateRequest) types.Result {
	m.log.Info().Str("model_file", modelFile).Bool("conversation", req.Conversation).Msg("inference start")
	out, err := m.run.Infer(ctx, runner.InferParams{
		ModelFile:    modelFile,
		Prompt:       req.Prompt,
		NPredict:     req.NPredict,
		Temperature:  req.Temperature,
		Conversation: req.Conversation,
	})
	if err != nil {
		if runner.IsScriptMissing(err) {
			// The inference script is absent; retry once through the
			// fallback runtime before surfacing an error.
			m.log.Warn().Err(err).Msg("inference script missing, retrying via fallback")
			fout, ferr := m.generateFallback(ctx, modelDir, req)
			if ferr != nil {
				return errResult(fmt.Sprintf("Error during fallback inference: %v", ferr))
			}
			return types.Result{Status: types.StatusSuccess, Output: fout}
		}
		generationsTotal.WithLabelValues("primary", "error").Inc()
		return errResult(fmt.Sprintf("Error during inference process: %v", err))
	}
	generationsTotal.WithLabelValues("primary", "success").Inc()
	return types.Result{Status: types.StatusSuccess, Output: out}
}

func (m *Manager) generateFallback(ctx context.Context, modelDir string, req types.GenerateRequest) (string, error) {
	prompt := req.Prompt
	if req.Conversation {
		prompt = fmt.Sprintf(conversationTemplate, req.Prompt)
	}
	m.log.Info().Str("model_dir", modelDir).Msg("fallback inference start")
	out, err := m.run.Fallback(ctx, runner.FallbackParams{
		ModelDir:    modelDir,
		Prompt:      prompt,
		MaxTokens:   req.NPredict,
		Temperature: req.Temperature,
	})
	if err != nil {
		generationsTotal.WithLabelValues("fallback", "error").Inc()
		return "", err
	}
	generationsTotal.WithLabelValues("fallback", "success").Inc()
	return parseFallbackOutput(out), nil
}

// parseFallbackOutput extracts the generated text from the fallback script's
// stdout by splitting on the literal marker and trimming the separator line.
// Output without the marker is returned verbatim.
func parseFallbackOutput(stdout string) string {
	parts := strings.SplitN(strings.TrimSpace(stdout), fallbackMarker, 2)
	if len(parts) < 2 {
		return stdout
	}
	out := strings.TrimSpace(parts[1])
	out = strings.ReplaceAll(out, fallbackSeparator, "")
	return strings.TrimSpace(out)
}
