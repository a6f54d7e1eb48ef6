package s3

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"time"

	parentfs "github.com/PaperMC/bibliothek/fs"
)

// File is an S3 object handle. Reads serve a downloaded copy; writes are
// buffered and uploaded on Sync or Close.
type File struct {
	fs   *S3FS
	key  string
	name string
	mode int

	reader  *bytes.Reader
	modTime time.Time

	buffer *bytes.Buffer
	closed bool
}

func newFileRead(s *S3FS, key, name string, data []byte, modTime time.Time) *File {
	return &File{
		fs:      s,
		key:     key,
		name:    name,
		mode:    os.O_RDONLY,
		reader:  bytes.NewReader(data),
		modTime: modTime,
	}
}

func newFileWrite(s *S3FS, key, name string, flag int) *File {
	return &File{
		fs:     s,
		key:    key,
		name:   name,
		mode:   flag,
		buffer: new(bytes.Buffer),
	}
}

func (f *File) writable() bool {
	return f.mode&(os.O_WRONLY|os.O_RDWR) != 0
}

// Read implements io.Reader in read mode.
func (f *File) Read(p []byte) (int, error) {
	if f.reader == nil {
		return 0, &fs.PathError{Op: "read", Path: f.name, Err: fs.ErrInvalid}
	}
	return f.reader.Read(p)
}

// Write implements io.Writer in write mode.
func (f *File) Write(p []byte) (int, error) {
	if f.closed {
		return 0, &fs.PathError{Op: "write", Path: f.name, Err: fs.ErrClosed}
	}
	if f.buffer == nil {
		return 0, &fs.PathError{Op: "write", Path: f.name, Err: fs.ErrInvalid}
	}
	return f.buffer.Write(p)
}

// Seek implements io.Seeker in read mode.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.reader == nil {
		return 0, &fs.PathError{Op: "seek", Path: f.name, Err: parentfs.ErrUnsupported}
	}
	return f.reader.Seek(offset, whence)
}

// ReadAt implements io.ReaderAt in read mode.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.reader == nil {
		return 0, &fs.PathError{Op: "readat", Path: f.name, Err: parentfs.ErrUnsupported}
	}
	return f.reader.ReadAt(p, off)
}

// Stat describes the downloaded object, or the pending upload in write mode.
func (f *File) Stat() (fs.FileInfo, error) {
	if f.buffer != nil {
		return &fileInfo{name: f.name, size: int64(f.buffer.Len()), modTime: time.Now(), mode: 0o644}, nil
	}
	return &fileInfo{name: f.name, size: f.reader.Size(), modTime: f.modTime, mode: 0o644}, nil
}

// Close uploads pending writes. It is idempotent.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.Sync()
}

// Sync uploads the buffered contents in write mode.
func (f *File) Sync() error {
	if !f.writable() || f.buffer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), f.fs.timeout)
	defer cancel()
	return f.fs.put(ctx, f.key, f.buffer.Bytes())
}

// Name returns the name passed to Open or Create.
func (f *File) Name() string {
	return f.name
}

type fileInfo struct {
	name    string
	size    int64
	modTime time.Time
	mode    fs.FileMode
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.mode&fs.ModeDir != 0 }
func (fi *fileInfo) Sys() any           { return nil }

var (
	_ parentfs.File = (*File)(nil)
	_ fs.File       = (*File)(nil)
)
