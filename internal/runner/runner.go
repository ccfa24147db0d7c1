// Package runner invokes the external processes this service delegates to:
// the hub download command, the bitnet.cpp environment setup and inference
// scripts, and the transformers-based fallback generator.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// InferParams are passed to the primary (GGUF) inference script.
type InferParams struct {
	ModelFile    string
	Prompt       string
	NPredict     int
	Temperature  float64
	Conversation bool
}

// FallbackParams are passed to the transformers fallback script. The prompt
// is expected to already carry any conversational template.
type FallbackParams struct {
	ModelDir    string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Runner is the set of external process invocations the manager depends on.
type Runner interface {
	// Download fetches repo into outDir via the hub snapshot command.
	Download(ctx context.Context, repo, outDir string) error
	// Setup runs the bitnet.cpp environment setup for a downloaded model.
	Setup(ctx context.Context, modelDir, quantType string) error
	// Infer runs the primary inference script and returns its stdout.
	Infer(ctx context.Context, p InferParams) (string, error)
	// Fallback runs the transformers fallback script and returns its raw
	// stdout, marker and separator included.
	Fallback(ctx context.Context, p FallbackParams) (string, error)
}

// Script names resolved relative to the runner's work directory.
const (
	setupScript    = "setup_env.py"
	inferScript    = "run_inference.py"
	fallbackScript = "simple_model_server.py"
)

// ExecRunner shells out with os/exec. WorkDir is where the scripts and the
// BitNet checkout live; Python is the interpreter binary.
type ExecRunner struct {
	Python  string
	WorkDir string
	Log     zerolog.Logger
}

func NewExecRunner(python, workDir string, log zerolog.Logger) *ExecRunner {
	if strings.TrimSpace(python) == "" {
		python = "python"
	}
	return &ExecRunner{Python: python, WorkDir: workDir, Log: log}
}

func (r *ExecRunner) Download(ctx context.Context, repo, outDir string) error {
	// The hub client exposes no CLI for snapshot downloads, so drive it
	// through the interpreter the same way the setup scripts are run.
	snippet := fmt.Sprintf(
		"from huggingface_hub import snapshot_download; snapshot_download(repo_id='%s', local_dir='%s')",
		repo, outDir,
	)
	_, err := r.run(ctx, "download", r.Python, "-c", snippet)
	return err
}

func (r *ExecRunner) Setup(ctx context.Context, modelDir, quantType string) error {
	_, err := r.run(ctx, "setup", r.Python, setupScript, "--model-dir", modelDir, "--quant-type", quantType)
	return err
}

func (r *ExecRunner) Infer(ctx context.Context, p InferParams) (string, error) {
	args := []string{
		inferScript,
		"-m", p.ModelFile,
		"-p", p.Prompt,
		"-n", strconv.Itoa(p.NPredict),
		"-temp", strconv.FormatFloat(p.Temperature, 'g', -1, 64),
	}
	if p.Conversation {
		args = append(args, "-cnv")
	}
	out, err := r.run(ctx, "infer", r.Python, args...)
	if err != nil && mentionsMissingScript(err, inferScript) {
		return out, ErrScriptMissing(inferScript, err)
	}
	return out, err
}

func (r *ExecRunner) Fallback(ctx context.Context, p FallbackParams) (string, error) {
	return r.run(ctx, "fallback", r.Python,
		fallbackScript,
		"--model", p.ModelDir,
		"--prompt", p.Prompt,
		"--max-tokens", strconv.Itoa(p.MaxTokens),
		"--temperature", strconv.FormatFloat(p.Temperature, 'g', -1, 64),
	)
}

// run executes one command to completion, capturing stdout. Stderr is kept
// in memory and its tail is folded into the returned error.
func (r *ExecRunner) run(ctx context.Context, op, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if r.WorkDir != "" {
		cmd.Dir = r.WorkDir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	r.Log.Debug().Str("op", op).Str("cmd", name).Strs("args", args).Msg("spawn")
	err := cmd.Run()
	if err != nil {
		tail := stderr.String()
		if len(tail) > 4096 {
			tail = tail[len(tail)-4096:]
		}
		r.Log.Error().Str("op", op).Err(err).Str("stderr_tail", tail).Msg("external command failed")
		if tail != "" {
			return stdout.String(), fmt.Errorf("%s: %w: %s", op, err, tail)
		}
		return stdout.String(), fmt.Errorf("%s: %w", op, err)
	}
	r.Log.Debug().Str("op", op).Int("stdout_bytes", stdout.Len()).Msg("external command done")
	return stdout.String(), nil
}

// mentionsMissingScript reports whether err looks like the interpreter could
// not find the named script (as opposed to the script itself failing).
func mentionsMissingScript(err error, script string) bool {
	if err == nil {
		return false
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, script) &&
		(strings.Contains(msg, "No such file or directory") || strings.Contains(msg, "can't open file"))
}

// scriptMissingError marks a failure caused by an absent external script so
// the dispatcher can retry once via the fallback path.
type scriptMissingError struct {
	script string
	err    error
}

func (e scriptMissingError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.script, e.err)
}

func (e scriptMissingError) Unwrap() error { return e.err }

// ErrScriptMissing constructs a scriptMissingError.
func ErrScriptMissing(script string, err error) error {
	return scriptMissingError{script: script, err: err}
}

// IsScriptMissing reports whether err indicates a missing external script.
func IsScriptMissing(err error) bool {
	var sm scriptMissingError
	return errors.As(err, &sm)
}
