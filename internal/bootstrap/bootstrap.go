// Package bootstrap prepares the host for delegated inference: it verifies
// the build toolchain the setup scripts need, clones the BitNet repository
// when absent, and can generate a dummy model for smoke testing.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

const bitnetRepoURL = "https://github.com/microsoft/BitNet.git"

// Minimum CMake version required by the bitnet.cpp build.
const (
	minCMakeMajor = 3
	minCMakeMinor = 22
)

// CheckResult is one line of a doctor report.
type CheckResult struct {
	Name   string
	OK     bool
	Detail string
}

// CheckRequirements probes the tools the setup and inference scripts depend
// on. Failures are reported, not fatal: the fallback runtime needs none of
// the build toolchain.
func CheckRequirements(ctx context.Context, python string) []CheckResult {
	var out []CheckResult

	if python == "" {
		python = "python"
	}
	out = append(out, checkTool(ctx, python, "--version"))
	out = append(out, checkCMake(ctx))
	out = append(out, checkCompiler())
	out = append(out, checkTool(ctx, "git", "--version"))
	return out
}

func checkTool(ctx context.Context, name string, versionArg string) CheckResult {
	path, err := exec.LookPath(name)
	if err != nil {
		return CheckResult{Name: name, OK: false, Detail: "not found"}
	}
	b, err := exec.CommandContext(ctx, path, versionArg).CombinedOutput()
	if err != nil {
		return CheckResult{Name: name, OK: false, Detail: err.Error()}
	}
	return CheckResult{Name: name, OK: true, Detail: firstLine(string(b))}
}

func checkCMake(ctx context.Context) CheckResult {
	path, err := exec.LookPath("cmake")
	if err != nil {
		return CheckResult{Name: "cmake", OK: false, Detail: fmt.Sprintf("not found (%d.%d+ required)", minCMakeMajor, minCMakeMinor)}
	}
	b, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return CheckResult{Name: "cmake", OK: false, Detail: err.Error()}
	}
	major, minor, ok := parseCMakeVersion(string(b))
	if !ok {
		return CheckResult{Name: "cmake", OK: false, Detail: "unparsable version output"}
	}
	if major < minCMakeMajor || (major == minCMakeMajor && minor < minCMakeMinor) {
		return CheckResult{
			Name: "cmake", OK: false,
			Detail: fmt.Sprintf("%d.%d found, %d.%d+ required", major, minor, minCMakeMajor, minCMakeMinor),
		}
	}
	return CheckResult{Name: "cmake", OK: true, Detail: fmt.Sprintf("%d.%d", major, minor)}
}

func checkCompiler() CheckResult {
	for _, name := range []string{"clang", "cc", "gcc", "cl"} {
		if path, err := exec.LookPath(name); err == nil {
			return CheckResult{Name: "compiler", OK: true, Detail: path}
		}
	}
	return CheckResult{Name: "compiler", OK: false, Detail: "no C compiler found"}
}

// parseCMakeVersion extracts major.minor from `cmake --version` output,
// whose first line reads "cmake version X.Y.Z".
func parseCMakeVersion(out string) (major, minor int, ok bool) {
	fields := strings.Fields(firstLine(out))
	if len(fields) < 3 {
		return 0, 0, false
	}
	parts := strings.Split(fields[2], ".")
	if len(parts) < 2 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// EnsureBitNetRepo clones the BitNet repository into workDir/BitNet unless
// it is already present.
func EnsureBitNetRepo(ctx context.Context, workDir string, log zerolog.Logger) error {
	dir := filepath.Join(workDir, "BitNet")
	if _, err := os.Stat(dir); err == nil {
		log.Debug().Str("dir", dir).Msg("BitNet repository already present")
		return nil
	}
	log.Info().Str("dir", dir).Msg("cloning BitNet repository")
	cmd := exec.CommandContext(ctx, "git", "clone", "--recursive", bitnetRepoURL, dir)
	if b, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("clone BitNet repository: %w: %s", err, tail(string(b)))
	}
	return nil
}

// CreateDummyModel generates a small fake GGUF model for smoke testing via
// the generator shipped in the BitNet repository.
func CreateDummyModel(ctx context.Context, workDir, python, outputDir, modelSize, quantType string) error {
	if err := EnsureBitNetRepo(ctx, workDir, zerolog.Nop()); err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	outFile, err := filepath.Abs(filepath.Join(outputDir, fmt.Sprintf("dummy-bitnet-%s.%s.gguf", modelSize, quantType)))
	if err != nil {
		return err
	}
	if python == "" {
		python = "python"
	}
	cmd := exec.CommandContext(ctx, python,
		"utils/generate-dummy-bitnet-model.py",
		"models/bitnet_b1_58-large",
		"--outfile", outFile,
		"--outtype", quantType,
		"--model-size", modelSize,
	)
	cmd.Dir = filepath.Join(workDir, "BitNet")
	if b, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("generate dummy model: %w: %s", err, tail(string(b)))
	}
	return nil
}

func tail(s string) string {
	if len(s) > 1024 {
		s = s[len(s)-1024:]
	}
	return strings.TrimSpace(s)
}
