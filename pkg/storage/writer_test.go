package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestWriter(t *testing.T) {
	tempDir := t.TempDir()
	w := NewWriter(nil)

	target := filepath.Join(tempDir, "site", "data", "wowProfile.ts")
	data := []byte("export const wowProfile = {}\n")

	res, err := w.Write(target, data)
	if err != nil {
		t.Fatalf("Failed to write profile: %v", err)
	}
	if res.Unchanged {
		t.Error("First write must not be reported as unchanged")
	}
	if res.Bytes != len(data) {
		t.Errorf("Expected %d bytes, got %d", len(data), res.Bytes)
	}

	content, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("Failed to read written file: %v", err)
	}
	if !bytes.Equal(content, data) {
		t.Error("File content does not match expected data")
	}

	// Same content again
	res, err = w.Write(target, data)
	if err != nil {
		t.Fatalf("Failed to rewrite profile: %v", err)
	}
	if !res.Unchanged {
		t.Error("Expected identical content to be reported as unchanged")
	}

	// New content replaces the old
	updated := []byte("export const wowProfile = {\"mounts\":[]}\n")
	if _, err := w.Write(target, updated); err != nil {
		t.Fatalf("Failed to update profile: %v", err)
	}
	content, _ = os.ReadFile(target)
	if !bytes.Equal(content, updated) {
		t.Error("Expected file to hold the updated profile")
	}

	// No temporary files left behind
	entries, err := os.ReadDir(filepath.Dir(target))
	if err != nil {
		t.Fatalf("Failed to read output directory: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the profile in the output directory, found %d entries", len(entries))
	}
}

func TestWriterStdout(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	for _, path := range []string{"-", ""} {
		buf.Reset()
		res, err := w.Write(path, []byte("profile"))
		if err != nil {
			t.Fatalf("Failed to write to stdout: %v", err)
		}
		if res.Path != Stdout {
			t.Errorf("Expected path %q, got %q", Stdout, res.Path)
		}
		if buf.String() != "profile" {
			t.Errorf("Expected stdout to receive the profile, got %q", buf.String())
		}
	}
}

func TestWriterFailsOnDirectoryTarget(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewWriter(nil).Write(dir, []byte("x")); err == nil {
		t.Error("Expected writing over a directory to fail")
	}
}
