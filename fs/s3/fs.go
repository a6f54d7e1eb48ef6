// Package s3 provides an fs.Filesystem backed by Amazon S3 through the AWS
// SDK. Keys and directories follow the same layout as the minio provider:
// slash-separated paths under an optional prefix, with implicit directories.
package s3

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

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/gabriel-vasile/mimetype"

	parentfs "github.com/PaperMC/bibliothek/fs"
)

// DefaultRegion is used when neither the config nor the environment names one.
const DefaultRegion = "us-east-1"

// Config holds the connection settings for a bucket.
type Config struct {
	Region string
	Bucket string
	Prefix string

	// Endpoint overrides the S3 endpoint, e.g. for LocalStack.
	Endpoint       string
	ForcePathStyle bool

	// AccessKey and SecretKey select static credentials. When empty the
	// default AWS credential chain is used.
	AccessKey string
	SecretKey string

	// CreateBucket creates the bucket when it does not exist.
	CreateBucket bool
}

// S3FS implements fs.Filesystem on top of a single bucket.
//
//nolint:revive // name mirrors the provider it wraps.
type S3FS struct {
	client  API
	bucket  string
	prefix  string
	timeout time.Duration
}

// Option configures an S3FS.
type Option func(*S3FS)

// WithPrefix stores all objects under prefix.
func WithPrefix(prefix string) Option {
	return func(s *S3FS) {
		s.prefix = strings.Trim(prefix, "/")
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(s *S3FS) {
		s.timeout = d
	}
}

// New creates an S3FS for bucket using an existing client.
func New(client API, bucket string, opts ...Option) *S3FS {
	s := &S3FS{
		client:  client,
		bucket:  bucket,
		timeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect loads the AWS configuration, builds a client from cfg and verifies
// that the bucket exists, creating it when cfg.CreateBucket is set.
func Connect(ctx context.Context, cfg Config, opts ...Option) (*S3FS, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}
	if awsCfg.Region == "" {
		awsCfg.Region = DefaultRegion
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	_, err = client.HeadBucket(ctx, &awss3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)})
	if err != nil {
		err = translateError(err)
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("s3: check bucket %q: %w", cfg.Bucket, err)
		}
		if !cfg.CreateBucket {
			return nil, fmt.Errorf("s3: bucket %q: %w", cfg.Bucket, err)
		}
		if _, err := client.CreateBucket(ctx, &awss3.CreateBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
			return nil, fmt.Errorf("s3: create bucket %q: %w", cfg.Bucket, translateError(err))
		}
	}

	return New(client, cfg.Bucket, append([]Option{WithPrefix(cfg.Prefix)}, opts...)...), nil
}

// Bucket returns the bucket objects are stored in.
func (s *S3FS) Bucket() string {
	return s.bucket
}

func (s *S3FS) key(name string) string {
	k := strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(name, "\\", "/")), "/")
	if s.prefix == "" {
		return k
	}
	if k == "" {
		return s.prefix
	}
	return s.prefix + "/" + k
}

func (s *S3FS) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Create implements Filesystem.Create.
//
//nolint:ireturn // API returns the fs.File interface by design for flexibility.
func (s *S3FS) Create(name string) (parentfs.File, error) {
	return newFileWrite(s, s.key(name), name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC), nil
}

// Open implements Filesystem.Open.
//
//nolint:ireturn // API returns the fs.File interface by design for flexibility.
func (s *S3FS) Open(name string) (parentfs.File, error) {
	ctx, cancel := s.context()
	defer cancel()

	data, info, err := s.get(ctx, s.key(name))
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return newFileRead(s, s.key(name), name, data, info.modTime), nil
}

// OpenFile implements Filesystem.OpenFile. Writes replace the whole object.
//
//nolint:ireturn // API returns the fs.File interface by design for flexibility.
func (s *S3FS) OpenFile(name string, flag int, _ os.FileMode) (parentfs.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR) == 0 {
		return s.Open(name)
	}
	if flag&os.O_APPEND != 0 {
		return nil, &fs.PathError{Op: "openfile", Path: name, Err: parentfs.ErrUnsupported}
	}
	if flag&os.O_CREATE == 0 {
		ok, err := s.objectExists(name)
		if err != nil {
			return nil, &fs.PathError{Op: "openfile", Path: name, Err: err}
		}
		if !ok {
			return nil, &fs.PathError{Op: "openfile", Path: name, Err: fs.ErrNotExist}
		}
	}
	return newFileWrite(s, s.key(name), name, flag), nil
}

// Exists implements Filesystem.Exists.
func (s *S3FS) Exists(name string) (bool, error) {
	ok, err := s.objectExists(name)
	if err != nil || ok {
		return ok, err
	}
	return s.dirExists(name)
}

// MkdirAll implements Filesystem.MkdirAll. Directories are implicit.
func (s *S3FS) MkdirAll(name string, _ os.FileMode) error {
	if strings.Contains(name, "\x00") {
		return &fs.PathError{Op: "mkdirall", Path: name, Err: fs.ErrInvalid}
	}
	return nil
}

// ReadFile implements Filesystem.ReadFile.
func (s *S3FS) ReadFile(name string) ([]byte, error) {
	ctx, cancel := s.context()
	defer cancel()

	data, _, err := s.get(ctx, s.key(name))
	if err != nil {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: err}
	}
	return data, nil
}

// Remove implements Filesystem.Remove. S3 deletes are idempotent, so a
// missing object is checked for first.
func (s *S3FS) Remove(name string) error {
	ok, err := s.objectExists(name)
	if err != nil {
		return &fs.PathError{Op: "remove", Path: name, Err: err}
	}
	if !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}

	ctx, cancel := s.context()
	defer cancel()

	_, err = s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return &fs.PathError{Op: "remove", Path: name, Err: translateError(err)}
	}
	return nil
}

// Stat implements Filesystem.Stat.
func (s *S3FS) Stat(name string) (os.FileInfo, error) {
	info, err := s.head(name)
	if err == nil {
		return info, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}

	isDir, dirErr := s.dirExists(name)
	if dirErr != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: dirErr}
	}
	if !isDir {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return &fileInfo{name: path.Base(name), mode: fs.ModeDir | 0o755}, nil
}

// WriteFile implements Filesystem.WriteFile.
func (s *S3FS) WriteFile(name string, data []byte, _ os.FileMode) error {
	ctx, cancel := s.context()
	defer cancel()

	if err := s.put(ctx, s.key(name), data); err != nil {
		return &fs.PathError{Op: "writefile", Path: name, Err: err}
	}
	return nil
}

func (s *S3FS) get(ctx context.Context, key string) ([]byte, *fileInfo, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, nil, translateError(err)
	}
	defer func() {
		_ = out.Body.Close()
	}()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, nil, translateError(err)
	}
	return data, &fileInfo{
		name:    path.Base(key),
		size:    int64(len(data)),
		modTime: aws.ToTime(out.LastModified),
		mode:    0o644,
	}, nil
}

func (s *S3FS) put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(mimetype.Detect(data).String()),
	})
	return translateError(err)
}

func (s *S3FS) head(name string) (*fileInfo, error) {
	ctx, cancel := s.context()
	defer cancel()

	out, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &fileInfo{
		name:    path.Base(name),
		size:    aws.ToInt64(out.ContentLength),
		modTime: aws.ToTime(out.LastModified),
		mode:    0o644,
	}, nil
}

func (s *S3FS) objectExists(name string) (bool, error) {
	_, err := s.head(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (s *S3FS) dirExists(name string) (bool, error) {
	ctx, cancel := s.context()
	defer cancel()

	prefix := s.key(name)
	if prefix != "" {
		prefix += "/"
	}

	out, err := s.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, translateError(err)
	}
	return len(out.Contents) > 0, nil
}

// translateError maps S3 API error codes onto io/fs errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.ErrorCode() {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return fmt.Errorf("%w: %s", fs.ErrNotExist, apiErr.ErrorMessage())
	case "AccessDenied", "Forbidden":
		return fmt.Errorf("%w: %s", fs.ErrPermission, apiErr.ErrorMessage())
	default:
		return err
	}
}

var _ parentfs.Filesystem = (*S3FS)(nil)
