package fstest

import (
	"bytes"
	"errors"
	"io"
	iofs "io/fs"
	"testing"

	"github.com/PaperMC/bibliothek/fs"
)

const artifactPath = "paper/1.20.1/10/paper-1.20.1-10.jar"

// TestRead tests Open, Stat, ReadFile and Exists against a stored artifact.
func TestRead(t *testing.T, filesystem fs.Filesystem) {
	content := []byte("artifact content")

	if err := filesystem.MkdirAll("paper/1.20.1/10", 0o755); err != nil {
		t.Fatalf("MkdirAll: setup failed: %v", err)
	}
	if err := filesystem.WriteFile(artifactPath, content, 0o644); err != nil {
		t.Fatalf("WriteFile(%q): setup failed: %v", artifactPath, err)
	}

	t.Run("Open", func(t *testing.T) {
		f, err := filesystem.Open(artifactPath)
		if err != nil {
			t.Fatalf("Open(%q): got error %v, want nil", artifactPath, err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil {
				t.Errorf("Close(): got error %v", closeErr)
			}
		}()

		data, err := io.ReadAll(f)
		if err != nil {
			t.Fatalf("ReadAll(): got error %v", err)
		}
		if !bytes.Equal(data, content) {
			t.Errorf("ReadAll(): got %q, want %q", data, content)
		}
	})

	t.Run("Stat", func(t *testing.T) {
		info, err := filesystem.Stat(artifactPath)
		if err != nil {
			t.Fatalf("Stat(%q): got error %v, want nil", artifactPath, err)
		}
		if info.IsDir() {
			t.Errorf("Stat(%q): IsDir() = true, want false", artifactPath)
		}
		if info.Size() != int64(len(content)) {
			t.Errorf("Stat(%q): Size() = %d, want %d", artifactPath, info.Size(), len(content))
		}
	})

	t.Run("ReadFile", func(t *testing.T) {
		data, err := filesystem.ReadFile(artifactPath)
		if err != nil {
			t.Fatalf("ReadFile(%q): got error %v, want nil", artifactPath, err)
		}
		if !bytes.Equal(data, content) {
			t.Errorf("ReadFile(%q): got %q, want %q", artifactPath, data, content)
		}
	})

	t.Run("Exists", func(t *testing.T) {
		ok, err := filesystem.Exists(artifactPath)
		if err != nil {
			t.Fatalf("Exists(%q): got error %v", artifactPath, err)
		}
		if !ok {
			t.Errorf("Exists(%q): got false, want true", artifactPath)
		}
	})

	t.Run("ExistsNotExist", func(t *testing.T) {
		ok, err := filesystem.Exists("paper/1.20.1/11/missing.jar")
		if err != nil {
			t.Fatalf("Exists(missing): got error %v", err)
		}
		if ok {
			t.Errorf("Exists(missing): got true, want false")
		}
	})

	t.Run("OpenNotExist", func(t *testing.T) {
		_, err := filesystem.Open("nonexistent.jar")
		if !errors.Is(err, iofs.ErrNotExist) {
			t.Errorf("Open(nonexistent.jar): got error %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("StatNotExist", func(t *testing.T) {
		_, err := filesystem.Stat("nonexistent.jar")
		if !errors.Is(err, iofs.ErrNotExist) {
			t.Errorf("Stat(nonexistent.jar): got error %v, want fs.ErrNotExist", err)
		}
	})
}
