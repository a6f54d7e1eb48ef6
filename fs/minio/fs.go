// Package minio provides an fs.Filesystem backed by an S3-compatible object
// store through minio-go. Object keys are the slash-separated file paths,
// optionally under a fixed prefix. Directories are implicit: MkdirAll is a
// no-op and a path is a directory when any object exists beneath it.
package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	parentfs "github.com/PaperMC/bibliothek/fs"
)

// Config holds the connection settings for an object store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool

	// CreateBucket creates the bucket when it does not exist.
	CreateBucket bool
}

// MinioFS implements fs.Filesystem on top of a single bucket.
//
//nolint:revive // name mirrors the provider it wraps.
type MinioFS struct {
	client  *minio.Client
	bucket  string
	prefix  string
	timeout time.Duration
}

// Option configures a MinioFS.
type Option func(*MinioFS)

// WithPrefix stores all objects under prefix.
func WithPrefix(prefix string) Option {
	return func(m *MinioFS) {
		m.prefix = strings.Trim(prefix, "/")
	}
}

// WithTimeout bounds every object store request.
func WithTimeout(d time.Duration) Option {
	return func(m *MinioFS) {
		m.timeout = d
	}
}

// New creates a MinioFS for bucket using an existing client.
func New(client *minio.Client, bucket string, opts ...Option) *MinioFS {
	m := &MinioFS{
		client:  client,
		bucket:  bucket,
		timeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Connect creates a client from cfg and verifies that the bucket exists,
// creating it when cfg.CreateBucket is set.
func Connect(ctx context.Context, cfg Config, opts ...Option) (*MinioFS, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("minio: endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("minio: bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: create client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio: check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if !cfg.CreateBucket {
			return nil, fmt.Errorf("minio: bucket %q: %w", cfg.Bucket, fs.ErrNotExist)
		}
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio: create bucket %q: %w", cfg.Bucket, err)
		}
	}

	return New(client, cfg.Bucket, append([]Option{WithPrefix(cfg.Prefix)}, opts...)...), nil
}

// Bucket returns the bucket objects are stored in.
func (m *MinioFS) Bucket() string {
	return m.bucket
}

// key maps a file path to its object key.
func (m *MinioFS) key(name string) string {
	k := strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(name, "\\", "/")), "/")
	if m.prefix == "" {
		return k
	}
	if k == "" {
		return m.prefix
	}
	return m.prefix + "/" + k
}

func (m *MinioFS) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.timeout)
}

// Create implements Filesystem.Create.
//
//nolint:ireturn // API returns the fs.File interface by design for flexibility.
func (m *MinioFS) Create(name string) (parentfs.File, error) {
	return newFileWrite(m, m.key(name), name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC), nil
}

// Open implements Filesystem.Open.
//
//nolint:ireturn // API returns the fs.File interface by design for flexibility.
func (m *MinioFS) Open(name string) (parentfs.File, error) {
	ctx, cancel := m.context()
	defer cancel()

	f, err := newFileRead(ctx, m, m.key(name), name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return f, nil
}

// OpenFile implements Filesystem.OpenFile. Writes replace the whole object,
// so O_APPEND is not supported.
//
//nolint:ireturn // API returns the fs.File interface by design for flexibility.
func (m *MinioFS) OpenFile(name string, flag int, _ os.FileMode) (parentfs.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR) == 0 {
		return m.Open(name)
	}
	if flag&os.O_APPEND != 0 {
		return nil, &fs.PathError{Op: "openfile", Path: name, Err: parentfs.ErrUnsupported}
	}
	if flag&os.O_CREATE == 0 {
		ok, err := m.objectExists(name)
		if err != nil {
			return nil, &fs.PathError{Op: "openfile", Path: name, Err: err}
		}
		if !ok {
			return nil, &fs.PathError{Op: "openfile", Path: name, Err: fs.ErrNotExist}
		}
	}
	return newFileWrite(m, m.key(name), name, flag), nil
}

// Exists implements Filesystem.Exists. Both objects and implicit
// directories count as existing.
func (m *MinioFS) Exists(name string) (bool, error) {
	ok, err := m.objectExists(name)
	if err != nil || ok {
		return ok, err
	}
	return m.dirExists(name)
}

// MkdirAll implements Filesystem.MkdirAll. Directories are implicit in
// object stores, so this only validates the path.
func (m *MinioFS) MkdirAll(name string, _ os.FileMode) error {
	if strings.Contains(name, "\x00") {
		return &fs.PathError{Op: "mkdirall", Path: name, Err: fs.ErrInvalid}
	}
	return nil
}

// ReadFile implements Filesystem.ReadFile.
func (m *MinioFS) ReadFile(name string) ([]byte, error) {
	ctx, cancel := m.context()
	defer cancel()

	obj, err := m.client.GetObject(ctx, m.bucket, m.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: translateError(err)}
	}
	defer func() {
		_ = obj.Close()
	}()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: translateError(err)}
	}
	return data, nil
}

// Remove implements Filesystem.Remove. Removing a missing object reports
// fs.ErrNotExist, matching local filesystems.
func (m *MinioFS) Remove(name string) error {
	ok, err := m.objectExists(name)
	if err != nil {
		return &fs.PathError{Op: "remove", Path: name, Err: err}
	}
	if !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}

	ctx, cancel := m.context()
	defer cancel()

	if err := m.client.RemoveObject(ctx, m.bucket, m.key(name), minio.RemoveObjectOptions{}); err != nil {
		return &fs.PathError{Op: "remove", Path: name, Err: translateError(err)}
	}
	return nil
}

// Stat implements Filesystem.Stat.
func (m *MinioFS) Stat(name string) (os.FileInfo, error) {
	ctx, cancel := m.context()
	defer cancel()

	info, err := m.client.StatObject(ctx, m.bucket, m.key(name), minio.StatObjectOptions{})
	if err == nil {
		return &fileInfo{
			name:    path.Base(name),
			size:    info.Size,
			modTime: info.LastModified,
			mode:    0o644,
		}, nil
	}

	err = translateError(err)
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}

	isDir, dirErr := m.dirExists(name)
	if dirErr != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: dirErr}
	}
	if !isDir {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return &fileInfo{
		name: path.Base(name),
		mode: fs.ModeDir | 0o755,
	}, nil
}

// WriteFile implements Filesystem.WriteFile.
func (m *MinioFS) WriteFile(name string, data []byte, _ os.FileMode) error {
	ctx, cancel := m.context()
	defer cancel()

	if err := m.put(ctx, m.key(name), data); err != nil {
		return &fs.PathError{Op: "writefile", Path: name, Err: err}
	}
	return nil
}

func (m *MinioFS) put(ctx context.Context, key string, data []byte) error {
	_, err := m.client.PutObject(
		ctx,
		m.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: mimetype.Detect(data).String(),
		},
	)
	return translateError(err)
}

func (m *MinioFS) objectExists(name string) (bool, error) {
	ctx, cancel := m.context()
	defer cancel()

	_, err := m.client.StatObject(ctx, m.bucket, m.key(name), minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	err = translateError(err)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (m *MinioFS) dirExists(name string) (bool, error) {
	ctx, cancel := m.context()
	defer cancel()

	prefix := m.key(name)
	if prefix != "" {
		prefix += "/"
	}

	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
		MaxKeys:   1,
	}) {
		if obj.Err != nil {
			return false, translateError(obj.Err)
		}
		return true, nil
	}
	return false, nil
}

// translateError maps object store error responses onto io/fs errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return fmt.Errorf("%w: %s", fs.ErrNotExist, resp.Message)
	case "AccessDenied":
		return fmt.Errorf("%w: %s", fs.ErrPermission, resp.Message)
	default:
		return err
	}
}

var _ parentfs.Filesystem = (*MinioFS)(nil)
