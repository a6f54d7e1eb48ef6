package storage

import (
	_ "crypto/sha256" // registers the sha256 digest algorithm
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"

	cerrors "github.com/PaperMC/bibliothek/errors"
)

// checksum accumulates the sha256 digest of the bytes written to it.
type checksum struct {
	digester digest.Digester
}

func newChecksum() *checksum {
	return &checksum{digester: digest.SHA256.Digester()}
}

func (c *checksum) Write(p []byte) (int, error) {
	return c.digester.Hash().Write(p)
}

// Hex returns the lowercase hex digest of everything written so far.
func (c *checksum) Hex() string {
	return c.digester.Digest().Encoded()
}

// verify compares the digest against the declared hex sha256, ignoring case.
func (c *checksum) verify(want string) error {
	declared := digest.NewDigestFromEncoded(digest.SHA256, strings.ToLower(want))
	if err := declared.Validate(); err != nil {
		return fmt.Errorf("%w: declared %q is not a sha256 digest", cerrors.ErrChecksumMismatch, want)
	}
	if got := c.digester.Digest(); got != declared {
		return fmt.Errorf("%w: declared %s, computed %s", cerrors.ErrChecksumMismatch, declared.Encoded(), got.Encoded())
	}
	return nil
}
