package fs

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
)

// GetAbs returns the absolute form of p, resolving relative paths against
// the current working directory.
func GetAbs(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("abs %q: %w", p, err)
	}
	return abs, nil
}

// CopyFile copies srcPath on src to dstPath on dst, creating the parent
// directories of dstPath and truncating any existing destination. Every
// writer in tee also receives the copied bytes. It returns the number of
// bytes copied.
func CopyFile(src Filesystem, srcPath string, dst Filesystem, dstPath string, tee ...io.Writer) (int64, error) {
	in, err := src.Open(srcPath)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer func() {
		_ = in.Close()
	}()

	if dir := path.Dir(filepath.ToSlash(dstPath)); dir != "." && dir != "/" {
		if err := dst.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create destination directory: %w", err)
		}
	}

	out, err := dst.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open destination: %w", err)
	}

	var w io.Writer = out
	if len(tee) > 0 {
		w = io.MultiWriter(append([]io.Writer{out}, tee...)...)
	}

	n, err := io.Copy(w, in)
	if err != nil {
		_ = out.Close()
		return n, fmt.Errorf("copy: %w", err)
	}

	// Object store providers upload on Close, so its error matters.
	if err := out.Close(); err != nil {
		return n, fmt.Errorf("close destination: %w", err)
	}
	return n, nil
}
