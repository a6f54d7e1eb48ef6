package fstest

import (
	"bytes"
	"os"
	"testing"

	"github.com/PaperMC/bibliothek/fs"
)

// TestWrite tests Create, OpenFile with truncation, WriteFile and Remove.
func TestWrite(t *testing.T, filesystem fs.Filesystem) {
	t.Run("CreateAndWrite", func(t *testing.T) {
		testData := []byte("data for Create")

		f, err := filesystem.Create("created.jar")
		if err != nil {
			t.Fatalf("Create(%q): got error %v, want nil", "created.jar", err)
		}
		n, err := f.Write(testData)
		if err != nil {
			_ = f.Close()
			t.Fatalf("Write(): got error %v, want nil", err)
		}
		if n != len(testData) {
			_ = f.Close()
			t.Fatalf("Write(): wrote %d bytes, want %d", n, len(testData))
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close(): got error %v, want nil", err)
		}

		data, err := filesystem.ReadFile("created.jar")
		if err != nil {
			t.Fatalf("ReadFile(%q): got error %v, want nil", "created.jar", err)
		}
		if !bytes.Equal(data, testData) {
			t.Errorf("ReadFile(%q): got %q, want %q", "created.jar", data, testData)
		}
	})

	t.Run("OpenFileTruncate", func(t *testing.T) {
		p := "a/b/truncate.jar"
		if err := filesystem.MkdirAll("a/b", 0o755); err != nil {
			t.Fatalf("MkdirAll: got error %v", err)
		}
		if err := filesystem.WriteFile(p, []byte("original, longer content"), 0o644); err != nil {
			t.Fatalf("WriteFile(%q): got error %v", p, err)
		}

		f, err := filesystem.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			t.Fatalf("OpenFile(%q, O_WRONLY|O_CREATE|O_TRUNC): got error %v", p, err)
		}
		if _, err := f.Write([]byte("short")); err != nil {
			_ = f.Close()
			t.Fatalf("Write(): got error %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close(): got error %v", err)
		}

		data, err := filesystem.ReadFile(p)
		if err != nil {
			t.Fatalf("ReadFile(%q): got error %v", p, err)
		}
		if string(data) != "short" {
			t.Errorf("ReadFile(%q) after truncate: got %q, want %q", p, data, "short")
		}
	})

	t.Run("Remove", func(t *testing.T) {
		if err := filesystem.WriteFile("remove.jar", []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile: got error %v", err)
		}
		if err := filesystem.Remove("remove.jar"); err != nil {
			t.Fatalf("Remove(%q): got error %v", "remove.jar", err)
		}
		ok, err := filesystem.Exists("remove.jar")
		if err != nil {
			t.Fatalf("Exists: got error %v", err)
		}
		if ok {
			t.Errorf("Exists(%q) after Remove: got true, want false", "remove.jar")
		}
	})
}
