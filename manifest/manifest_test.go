package manifest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaperMC/bibliothek/domain"
	cerrors "github.com/PaperMC/bibliothek/errors"
)

func TestTarget(t *testing.T) {
	target := Target{Project: "paper", Version: "1.20.1", Build: 10}

	assert.Equal(t, "paper-1.20.1-10.jar", target.PrimaryFileName())
	assert.Equal(t, "paper/1.20.1/10", target.Dir())
}

func TestNew(t *testing.T) {
	target := Target{Project: "paper", Version: "1.20.1", Build: 10}

	m, err := New([]string{
		"application:/tmp/paper.jar:abc123:",
		"mojang.mappings:/tmp/mappings.txt:def456:mojang-mappings.txt",
	}, target)
	require.NoError(t, err)

	assert.Equal(t, map[string]domain.Download{
		"application":     {Name: "paper-1.20.1-10.jar", SHA256: "abc123"},
		"mojang:mappings": {Name: "mojang-mappings.txt", SHA256: "def456"},
	}, m.Downloads)

	assert.Equal(t, []Copy{
		{Key: "application", Source: "/tmp/paper.jar", Destination: "paper/1.20.1/10/paper-1.20.1-10.jar", SHA256: "abc123"},
		{Key: "mojang:mappings", Source: "/tmp/mappings.txt", Destination: "paper/1.20.1/10/mojang-mappings.txt", SHA256: "def456"},
	}, m.Copies)
	assert.Equal(t, target, m.Target)
}

func TestNew_ChannelKeyTranslation(t *testing.T) {
	m, err := New([]string{"app.server:/tmp/s.jar:abc:server.jar"}, Target{Project: "p", Version: "v", Build: 1})
	require.NoError(t, err)

	assert.Contains(t, m.Downloads, "app:server")
	assert.NotContains(t, m.Downloads, "app.server")
}

func TestNew_DuplicateDestination(t *testing.T) {
	_, err := New([]string{
		"application:/tmp/a.jar:aaa",
		"other:/tmp/b.jar:bbb:paper-1.20.1-10.jar",
	}, Target{Project: "paper", Version: "1.20.1", Build: 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrMalformedDescriptor))
}

func TestNew_TooManyPrimary(t *testing.T) {
	m, err := New([]string{"a:/a.jar:aaa", "b:/b.jar:bbb"}, Target{Project: "p", Version: "v", Build: 1})
	require.Error(t, err)
	assert.Nil(t, m)
	assert.True(t, errors.Is(err, cerrors.ErrTooManyPrimaryArtifacts))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "primary", Primary.String())
	assert.Equal(t, "named", Named.String())
	assert.Equal(t, "unknown", Kind(7).String())
}
