package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/bitnetd/models
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// PathExists checks if the given path exists.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// DirNonEmpty reports whether path is a directory containing at least one
// entry. A missing or unreadable path counts as empty, not as an error.
func DirNonEmpty(path string) bool {
	entries, err := os.ReadDir(path)
	return err == nil && len(entries) > 0
}

// FirstWithExt returns the full path of the first regular file in dir whose
// name has the given extension (case-insensitive). ReadDir order is
// lexical, so the pick is deterministic.
func FirstWithExt(dir, ext string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	ext = strings.ToLower(ext)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}

// HasAnyExt reports whether dir contains at least one regular file with any
// of the given extensions (case-insensitive).
func HasAnyExt(dir string, exts ...string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		for _, ext := range exts {
			if strings.HasSuffix(name, strings.ToLower(ext)) {
				return true
			}
		}
	}
	return false
}
