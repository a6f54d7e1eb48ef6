package minio_test

import (
	"context"
	"errors"
	iofs "io/fs"
	"strings"
	"testing"

	"github.com/google/uuid"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	parentfs "github.com/PaperMC/bibliothek/fs"
	"github.com/PaperMC/bibliothek/fs/fstest"
	"github.com/PaperMC/bibliothek/fs/minio"
	"github.com/PaperMC/bibliothek/internal/testutil"
)

func connect(t *testing.T, c *testutil.MinioContainer, prefix string) *minio.MinioFS {
	t.Helper()

	access, secret := c.Credentials()
	m, err := minio.Connect(context.Background(), minio.Config{
		Endpoint:     c.Endpoint(),
		AccessKey:    access,
		SecretKey:    secret,
		Bucket:       "artifacts-" + strings.ReplaceAll(uuid.NewString()[:8], "-", ""),
		Prefix:       prefix,
		CreateBucket: true,
	})
	require.NoError(t, err)
	return m
}

func TestMinioFS_Suite(t *testing.T) {
	c := testutil.SetupMinioTest(t)

	fstest.TestSuite(t, func() parentfs.Filesystem {
		return connect(t, c, "")
	})
}

func TestMinioFS_PrefixAndContentType(t *testing.T) {
	c := testutil.SetupMinioTest(t)
	m := connect(t, c, "storage")

	require.NoError(t, m.WriteFile("/paper/1.20.1/10/notes.txt", []byte("plain text notes"), 0o644))

	access, secret := c.Credentials()
	client, err := miniogo.New(c.Endpoint(), &miniogo.Options{
		Creds: credentialsFor(access, secret),
	})
	require.NoError(t, err)

	info, err := client.StatObject(context.Background(), m.Bucket(), "storage/paper/1.20.1/10/notes.txt", miniogo.StatObjectOptions{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(info.ContentType, "text/plain"), "content type %q", info.ContentType)

	dir, err := m.Stat("paper/1.20.1")
	require.NoError(t, err)
	assert.True(t, dir.IsDir())
}

func TestMinioFS_ConnectMissingBucket(t *testing.T) {
	c := testutil.SetupMinioTest(t)

	access, secret := c.Credentials()
	_, err := minio.Connect(context.Background(), minio.Config{
		Endpoint:  c.Endpoint(),
		AccessKey: access,
		SecretKey: secret,
		Bucket:    "does-not-exist",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, iofs.ErrNotExist))
}

func TestConnect_RequiresEndpointAndBucket(t *testing.T) {
	_, err := minio.Connect(context.Background(), minio.Config{Bucket: "b"})
	assert.ErrorContains(t, err, "endpoint is required")

	_, err = minio.Connect(context.Background(), minio.Config{Endpoint: "localhost:9000"})
	assert.ErrorContains(t, err, "bucket is required")
}
