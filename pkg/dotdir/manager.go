// Package dotdir resolves the .rsum/ directory that holds config.toml.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirName is the name of the rsum directory.
	DirName = ".rsum"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .rsum/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if missing)
//  2. Local ./.rsum/ dir
//  3. Home ~/.rsum/ dir
//
// If none is found an empty path is returned and callers fall back to defaults.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating rsum directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	local, err := m.LocalPath()
	if err != nil {
		return "", err
	}
	if isDir(local) {
		return local, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	if dir := filepath.Join(home, DirName); isDir(dir) {
		return dir, nil
	}

	return "", nil
}

// LocalPath returns the ./.rsum/ path for the current working directory.
func (m *Manager) LocalPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return filepath.Join(cwd, DirName), nil
}

// InitLocal creates ./.rsum/ and reports whether it already existed.
func (m *Manager) InitLocal() (string, bool, error) {
	dir, err := m.LocalPath()
	if err != nil {
		return "", false, err
	}

	if isDir(dir) {
		return dir, true, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("creating .rsum directory: %w", err)
	}
	return dir, false, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
