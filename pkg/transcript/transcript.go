// Package transcript manages the per-run transcript file that mirrors all
// console output of `rsum run`.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const timeLayout = "20060102_150405"

// Transcript is an open transcript file.
type Transcript struct {
	file *os.File
	path string
}

// FileName returns the transcript file name for a variant started at t.
func FileName(variant string, t time.Time) string {
	return fmt.Sprintf("rsum_%s_log_%s.txt", variant, t.Format(timeLayout))
}

// Open creates dir if needed and a new transcript file inside it.
func Open(dir, variant string, t time.Time) (*Transcript, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}

	path := filepath.Join(dir, FileName(variant, t))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create transcript: %w", err)
	}
	return &Transcript{file: f, path: path}, nil
}

// Path returns the transcript's file path.
func (t *Transcript) Path() string {
	return t.path
}

// Write appends p to the transcript.
func (t *Transcript) Write(p []byte) (int, error) {
	return t.file.Write(p)
}

// Close syncs and closes the file.
func (t *Transcript) Close() error {
	if err := t.file.Sync(); err != nil {
		_ = t.file.Close()
		return fmt.Errorf("sync transcript: %w", err)
	}
	return t.file.Close()
}
