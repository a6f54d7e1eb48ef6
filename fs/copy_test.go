package fs_test

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/PaperMC/bibliothek/fs/billy"

	parentfs "github.com/PaperMC/bibliothek/fs"
)

func TestCopyFile_CreatesParentsAndCopies(t *testing.T) {
	src := billy.NewInMemoryFS()
	dst := billy.NewInMemoryFS()

	if err := src.WriteFile("/tmp/paper.jar", []byte("jar bytes"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	h := sha256.New()
	n, err := parentfs.CopyFile(src, "/tmp/paper.jar", dst, "paper/1.20.1/10/paper-1.20.1-10.jar", h)
	if err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}
	if n != int64(len("jar bytes")) {
		t.Errorf("CopyFile copied %d bytes, want %d", n, len("jar bytes"))
	}

	data, err := dst.ReadFile("paper/1.20.1/10/paper-1.20.1-10.jar")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "jar bytes" {
		t.Errorf("destination content = %q, want %q", data, "jar bytes")
	}

	want := sha256.Sum256([]byte("jar bytes"))
	if got := hex.EncodeToString(h.Sum(nil)); got != hex.EncodeToString(want[:]) {
		t.Errorf("tee hash = %s, want %s", got, hex.EncodeToString(want[:]))
	}
}

func TestCopyFile_OverwritesDestination(t *testing.T) {
	src := billy.NewInMemoryFS()
	dst := billy.NewInMemoryFS()

	if err := src.WriteFile("a", []byte("new"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := dst.WriteFile("out/a", []byte("old and longer"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := parentfs.CopyFile(src, "a", dst, "out/a"); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}

	data, err := dst.ReadFile("out/a")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "new" {
		t.Errorf("destination content = %q, want %q", data, "new")
	}
}

func TestCopyFile_MissingSource(t *testing.T) {
	src := billy.NewInMemoryFS()
	dst := billy.NewInMemoryFS()

	_, err := parentfs.CopyFile(src, "missing.jar", dst, "out.jar")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("CopyFile error = %v, want fs.ErrNotExist", err)
	}

	ok, err := dst.Exists("out.jar")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if ok {
		t.Errorf("destination was created for a missing source")
	}
}

func TestGetAbs_StorageRoot(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"absolute root is kept", "/srv/bibliothek/storage", "/srv/bibliothek/storage"},
		{"relative root joins working directory", "storage", filepath.Join(dir, "storage")},
		{"dot is working directory", ".", dir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parentfs.GetAbs(tt.in)
			if err != nil {
				t.Fatalf("GetAbs(%q) returned error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("GetAbs(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCopyFile_IntoRelativeStorageRoot(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	root, err := parentfs.GetAbs("storage")
	if err != nil {
		t.Fatalf("GetAbs failed: %v", err)
	}

	src := billy.NewInMemoryFS()
	if err := src.WriteFile("paper.jar", []byte("jar"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := parentfs.CopyFile(src, "paper.jar", billy.NewOSFS(root), "paper/1.20.1/1/paper-1.20.1-1.jar"); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "storage", "paper", "1.20.1", "1", "paper-1.20.1-1.jar"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "jar" {
		t.Errorf("stored content = %q, want %q", data, "jar")
	}
}
