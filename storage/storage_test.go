package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/PaperMC/bibliothek/domain"
	cerrors "github.com/PaperMC/bibliothek/errors"
	"github.com/PaperMC/bibliothek/fs/billy"
	"github.com/PaperMC/bibliothek/manifest"
)

var target = manifest.Target{Project: "paper", Version: "1.20.1", Build: 10}

func sha(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func TestMaterializer_Materialize(t *testing.T) {
	src := billy.NewInMemoryFS()
	dst := billy.NewInMemoryFS()
	require.NoError(t, src.WriteFile("/tmp/paper.jar", []byte("jar"), 0o644))
	require.NoError(t, src.WriteFile("/tmp/mappings.txt", []byte("maps"), 0o644))

	man, err := manifest.New([]string{
		"application:/tmp/paper.jar:" + sha("jar") + ":",
		"mojang.mappings:/tmp/mappings.txt:" + strings.ToUpper(sha("maps")) + ":mappings.txt",
	}, target)
	require.NoError(t, err)

	m := NewMaterializer(dst,
		WithSource(src),
		WithVerifyChecksums(true),
		WithMaterializerLogger(zaptest.NewLogger(t)))
	placed, err := m.Materialize(context.Background(), man)
	require.NoError(t, err)

	assert.Equal(t, []Placed{
		{Key: "application", Destination: "paper/1.20.1/10/paper-1.20.1-10.jar", Size: 3},
		{Key: "mojang:mappings", Destination: "paper/1.20.1/10/mappings.txt", Size: 4},
	}, placed)

	data, err := dst.ReadFile("paper/1.20.1/10/paper-1.20.1-10.jar")
	require.NoError(t, err)
	assert.Equal(t, "jar", string(data))
}

func TestMaterializer_MissingSource(t *testing.T) {
	src := billy.NewInMemoryFS()
	dst := billy.NewInMemoryFS()

	man, err := manifest.New([]string{"application:/tmp/missing.jar:abc"}, target)
	require.NoError(t, err)

	_, err = NewMaterializer(dst, WithSource(src)).Materialize(context.Background(), man)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrArtifactCopyFailed))

	var coded *cerrors.Error
	require.True(t, errors.As(err, &coded))
	assert.Equal(t, "/tmp/missing.jar", coded.Path)
}

func TestMaterializer_ChecksumMismatch(t *testing.T) {
	src := billy.NewInMemoryFS()
	dst := billy.NewInMemoryFS()
	require.NoError(t, src.WriteFile("/tmp/paper.jar", []byte("jar"), 0o644))

	man, err := manifest.New([]string{"application:/tmp/paper.jar:" + sha("other")}, target)
	require.NoError(t, err)

	_, err = NewMaterializer(dst, WithSource(src), WithVerifyChecksums(true)).Materialize(context.Background(), man)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrChecksumMismatch))
	assert.True(t, errors.Is(err, cerrors.ErrValidation))

	exists, err := dst.Exists("paper/1.20.1/10/paper-1.20.1-10.jar")
	require.NoError(t, err)
	assert.False(t, exists, "rejected artifact is removed")
}

func TestMaterializer_NoVerificationByDefault(t *testing.T) {
	src := billy.NewInMemoryFS()
	dst := billy.NewInMemoryFS()
	require.NoError(t, src.WriteFile("/tmp/paper.jar", []byte("jar"), 0o644))

	man, err := manifest.New([]string{"application:/tmp/paper.jar:abc123"}, target)
	require.NoError(t, err)

	_, err = NewMaterializer(dst, WithSource(src)).Materialize(context.Background(), man)
	require.NoError(t, err)
}

func TestMaterializer_Cancelled(t *testing.T) {
	src := billy.NewInMemoryFS()
	dst := billy.NewInMemoryFS()
	require.NoError(t, src.WriteFile("/tmp/paper.jar", []byte("jar"), 0o644))

	man, err := manifest.New([]string{"application:/tmp/paper.jar:abc123"}, target)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	placed, err := NewMaterializer(dst, WithSource(src)).Materialize(ctx, man)
	require.Error(t, err)
	assert.Empty(t, placed)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestResolver_Resolve(t *testing.T) {
	download := domain.Download{Name: "paper-1.20.1-10.jar", SHA256: sha("jar")}
	rel := "paper/1.20.1/10/paper-1.20.1-10.jar"

	tests := []struct {
		name      string
		setup     func(t *testing.T, cache, first, second *billy.FS)
		want      string
		wantErr   error
		wantCache bool
	}{
		{
			name: "cached file is used as-is",
			setup: func(t *testing.T, cache, _, _ *billy.FS) {
				require.NoError(t, cache.WriteFile(rel, []byte("stale"), 0o644))
			},
			want:      "stale",
			wantCache: true,
		},
		{
			name: "first source wins",
			setup: func(t *testing.T, _, first, second *billy.FS) {
				require.NoError(t, first.WriteFile(rel, []byte("jar"), 0o644))
				require.NoError(t, second.WriteFile(rel, []byte("other"), 0o644))
			},
			want:      "jar",
			wantCache: true,
		},
		{
			name: "falls through to second source",
			setup: func(t *testing.T, _, _, second *billy.FS) {
				require.NoError(t, second.WriteFile(rel, []byte("jar"), 0o644))
			},
			want:      "jar",
			wantCache: true,
		},
		{
			name:    "missing everywhere",
			setup:   func(t *testing.T, _, _, _ *billy.FS) {},
			wantErr: cerrors.ErrArtifactCopyFailed,
		},
		{
			name: "checksum mismatch",
			setup: func(t *testing.T, _, first, _ *billy.FS) {
				require.NoError(t, first.WriteFile(rel, []byte("corrupt"), 0o644))
			},
			wantErr: cerrors.ErrChecksumMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := billy.NewInMemoryFS()
			first := billy.NewInMemoryFS()
			second := billy.NewInMemoryFS()
			tt.setup(t, cache, first, second)

			r := NewResolver(cache, WithSources(
				Source{Name: "local", FS: first},
				Source{Name: "objects", FS: second},
			), WithResolverLogger(zaptest.NewLogger(t)))

			got, err := r.Resolve(context.Background(), target, download)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.True(t, errors.Is(err, cerrors.ErrArtifactCopyFailed))

				exists, err := cache.Exists(rel)
				require.NoError(t, err)
				assert.False(t, exists, "cache holds no partial copy")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, rel, got)
			data, err := cache.ReadFile(got)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestResolver_ResolveBuild(t *testing.T) {
	cache := billy.NewInMemoryFS()
	local := billy.NewInMemoryFS()
	require.NoError(t, local.WriteFile("paper/1.20.1/10/paper-1.20.1-10.jar", []byte("jar"), 0o644))
	require.NoError(t, local.WriteFile("paper/1.20.1/10/mappings.txt", []byte("maps"), 0o644))

	build := &domain.Build{
		Number: 10,
		Downloads: map[string]domain.Download{
			"application":     {Name: "paper-1.20.1-10.jar", SHA256: sha("jar")},
			"mojang:mappings": {Name: "mappings.txt", SHA256: sha("maps")},
		},
	}

	r := NewResolver(cache, WithSources(Source{Name: "local", FS: local}))

	paths, err := r.ResolveBuild(context.Background(), target, build, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"application":     "paper/1.20.1/10/paper-1.20.1-10.jar",
		"mojang:mappings": "paper/1.20.1/10/mappings.txt",
	}, paths)

	paths, err = r.ResolveBuild(context.Background(), target, build, "mojang:mappings")
	require.NoError(t, err)
	assert.Len(t, paths, 1)

	_, err = r.ResolveBuild(context.Background(), target, build, "server")
	assert.True(t, errors.Is(err, cerrors.ErrBuildNotFound))
}

func TestChecksum_Verify(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "match", want: sha("paper bytes")},
		{name: "uppercase", want: strings.ToUpper(sha("paper bytes"))},
		{name: "different", want: sha("other bytes"), wantErr: true},
		{name: "not hex", want: "not-a-digest", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := newChecksum()
			_, err := sum.Write([]byte("paper bytes"))
			require.NoError(t, err)
			assert.Equal(t, sha("paper bytes"), sum.Hex())

			err = sum.verify(tt.want)
			if tt.wantErr {
				assert.ErrorIs(t, err, cerrors.ErrChecksumMismatch)
				return
			}
			assert.NoError(t, err)
		})
	}
}
