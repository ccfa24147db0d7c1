package runner

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger { return zerolog.Nop() }

func TestRunCapturesStdout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	r := &ExecRunner{Log: testLogger()}
	out, err := r.run(context.Background(), "test", "sh", "-c", "echo hello")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Fatalf("stdout=%q", out)
	}
}

func TestRunIncludesStderrTail(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	r := &ExecRunner{Log: testLogger()}
	_, err := r.run(context.Background(), "test", "sh", "-c", "echo boom >&2; exit 3")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("stderr tail missing: %v", err)
	}
}

func TestRunUsesWorkDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	d := t.TempDir()
	if err := os.WriteFile(filepath.Join(d, "marker"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := &ExecRunner{WorkDir: d, Log: testLogger()}
	out, err := r.run(context.Background(), "test", "sh", "-c", "ls")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "marker") {
		t.Fatalf("expected workdir listing, got %q", out)
	}
}

func TestNewExecRunnerDefaultsPython(t *testing.T) {
	r := NewExecRunner("", "/w", testLogger())
	if r.Python != "python" {
		t.Fatalf("python=%q", r.Python)
	}
	if r.WorkDir != "/w" {
		t.Fatalf("workdir=%q", r.WorkDir)
	}
}

func TestMentionsMissingScript(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"exec not found", &exec.Error{Name: "python", Err: exec.ErrNotFound}, true},
		{"interpreter cannot open script", errors.New("infer: exit status 2: python: can't open file 'run_inference.py'"), true},
		{"posix missing file", errors.New("run_inference.py: No such file or directory"), true},
		{"unrelated failure", errors.New("CUDA out of memory"), false},
		{"missing but other file", errors.New("tokenizer.model: No such file or directory"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mentionsMissingScript(tc.err, inferScript); got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestIsScriptMissing(t *testing.T) {
	base := errors.New("boom")
	wrapped := scriptMissingError{script: inferScript, err: base}
	if !IsScriptMissing(wrapped) {
		t.Fatalf("expected script-missing detection")
	}
	if !errors.Is(wrapped, base) {
		t.Fatalf("expected unwrap to reach cause")
	}
	if IsScriptMissing(base) {
		t.Fatalf("plain error misclassified")
	}
}
