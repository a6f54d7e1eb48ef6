package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	parentfs "github.com/PaperMC/bibliothek/fs"
	"github.com/PaperMC/bibliothek/fs/fstest"
)

type object struct {
	data        []byte
	contentType string
	modTime     time.Time
}

// bucketAPI is an in-memory bucket implementing API.
type bucketAPI struct {
	mu      sync.Mutex
	objects map[string]object

	// err, when set, is returned by every call.
	err error
}

func newBucketAPI() *bucketAPI {
	return &bucketAPI{objects: make(map[string]object)}
}

func notFound(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: "not found"}
}

func (b *bucketAPI) PutObject(_ context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	if b.err != nil {
		return nil, b.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[aws.ToString(in.Key)] = object{data: data, contentType: aws.ToString(in.ContentType), modTime: time.Now()}
	return &awss3.PutObjectOutput{}, nil
}

func (b *bucketAPI) GetObject(_ context.Context, in *awss3.GetObjectInput, _ ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, notFound("NoSuchKey")
	}
	return &awss3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(obj.data)),
		ContentLength: aws.Int64(int64(len(obj.data))),
		LastModified:  aws.Time(obj.modTime),
	}, nil
}

func (b *bucketAPI) HeadObject(_ context.Context, in *awss3.HeadObjectInput, _ ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, notFound("NotFound")
	}
	return &awss3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(obj.data))),
		LastModified:  aws.Time(obj.modTime),
	}, nil
}

func (b *bucketAPI) DeleteObject(_ context.Context, in *awss3.DeleteObjectInput, _ ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, aws.ToString(in.Key))
	return &awss3.DeleteObjectOutput{}, nil
}

func (b *bucketAPI) ListObjectsV2(
	_ context.Context,
	in *awss3.ListObjectsV2Input,
	_ ...func(*awss3.Options),
) (*awss3.ListObjectsV2Output, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var keys []string
	for k := range b.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if limit := int(aws.ToInt32(in.MaxKeys)); limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	out := &awss3.ListObjectsV2Output{KeyCount: aws.Int32(int32(len(keys)))}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestS3FS_Suite(t *testing.T) {
	fstest.TestSuite(t, func() parentfs.Filesystem {
		return New(newBucketAPI(), "artifacts")
	})
}

func TestS3FS_PrefixAndContentType(t *testing.T) {
	api := newBucketAPI()
	s := New(api, "artifacts", WithPrefix("/storage/"))

	require.NoError(t, s.WriteFile("/paper/1.20.1/10/notes.txt", []byte("plain text notes"), 0o644))

	obj, ok := api.objects["storage/paper/1.20.1/10/notes.txt"]
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(obj.contentType, "text/plain"), "content type %q", obj.contentType)

	dir, err := s.Stat("paper/1.20.1")
	require.NoError(t, err)
	assert.True(t, dir.IsDir())

	ok, err = s.Exists("paper")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestS3FS_OpenFileWithoutCreate(t *testing.T) {
	s := New(newBucketAPI(), "artifacts")

	_, err := s.OpenFile("missing.jar", os.O_WRONLY, 0o644)
	assert.ErrorIs(t, err, iofs.ErrNotExist)

	err = s.Remove("missing.jar")
	assert.ErrorIs(t, err, iofs.ErrNotExist)
}

func TestS3FS_PropagatesFailures(t *testing.T) {
	api := newBucketAPI()
	api.err = &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}
	s := New(api, "artifacts")

	_, err := s.ReadFile("paper.jar")
	assert.ErrorIs(t, err, iofs.ErrPermission)

	_, err = s.Exists("paper.jar")
	assert.ErrorIs(t, err, iofs.ErrPermission)
}

func TestTranslateError(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no such key", notFound("NoSuchKey"), iofs.ErrNotExist},
		{"no such bucket", notFound("NoSuchBucket"), iofs.ErrNotExist},
		{"head not found", notFound("NotFound"), iofs.ErrNotExist},
		{"forbidden", &smithy.GenericAPIError{Code: "Forbidden"}, iofs.ErrPermission},
		{"other api error", &smithy.GenericAPIError{Code: "SlowDown"}, nil},
		{"plain", boom, boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)
			switch {
			case tt.err == nil:
				assert.NoError(t, got)
			case tt.want == nil:
				assert.Equal(t, tt.err, got)
			default:
				assert.ErrorIs(t, got, tt.want)
			}
		})
	}
}

func TestConnect_RequiresBucket(t *testing.T) {
	_, err := Connect(context.Background(), Config{})
	assert.EqualError(t, err, "s3: bucket is required")
}
