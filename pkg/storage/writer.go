package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Stdout is the output path that writes to standard output.
const Stdout = "-"

// Result describes one completed write.
type Result struct {
	Path      string
	Bytes     int
	Unchanged bool
}

// Writer saves rendered profiles.
type Writer struct {
	stdout io.Writer
}

// NewWriter creates a writer; stdout receives output for the "-" path.
func NewWriter(stdout io.Writer) *Writer {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Writer{stdout: stdout}
}

// Write stores data at path, creating parent directories. The file is
// replaced atomically so readers never see a partial profile. A file that
// already holds exactly data is left untouched.
func (w *Writer) Write(path string, data []byte) (Result, error) {
	if path == "" || path == Stdout {
		n, err := w.stdout.Write(data)
		if err != nil {
			return Result{}, fmt.Errorf("failed to write to stdout: %w", err)
		}
		return Result{Path: Stdout, Bytes: n}, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve output path: %w", err)
	}

	if existing, err := os.ReadFile(abs); err == nil && bytes.Equal(existing, data) {
		return Result{Path: abs, Bytes: len(data), Unchanged: true}, nil
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Result{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Temporary file lives next to the target
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(abs)+".*.tmp")
	if err != nil {
		return Result{}, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return Result{}, fmt.Errorf("failed to write profile: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return Result{}, fmt.Errorf("failed to sync profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return Result{}, fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return Result{}, fmt.Errorf("failed to set file mode: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, abs); err != nil {
		os.Remove(tmpPath)
		return Result{}, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return Result{Path: abs, Bytes: len(data)}, nil
}
