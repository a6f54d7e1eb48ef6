// Package storage places build artifacts in artifact storage and resolves
// stored downloads back into a local cache.
//
// Artifacts live at {root}/{project}/{version}/{build}/{file}, where root is
// any fs.Filesystem: a local directory or an object storage bucket.
package storage

import (
	"context"

	"go.uber.org/zap"

	cerrors "github.com/PaperMC/bibliothek/errors"
	"github.com/PaperMC/bibliothek/fs"
	"github.com/PaperMC/bibliothek/fs/billy"
	"github.com/PaperMC/bibliothek/manifest"
)

// MaterializerOption configures a Materializer.
type MaterializerOption func(*Materializer)

// WithSource sets the filesystem artifact source paths are read from.
// Defaults to the native filesystem.
func WithSource(src fs.Filesystem) MaterializerOption {
	return func(m *Materializer) {
		m.src = src
	}
}

// WithVerifyChecksums enables sha256 verification of every copied artifact.
func WithVerifyChecksums(verify bool) MaterializerOption {
	return func(m *Materializer) {
		m.verify = verify
	}
}

// WithMaterializerLogger sets the logger.
func WithMaterializerLogger(logger *zap.Logger) MaterializerOption {
	return func(m *Materializer) {
		m.logger = logger
	}
}

// Placed describes one artifact written to storage.
type Placed struct {
	Key         string
	Destination string
	Size        int64
}

// Materializer copies the artifacts of a manifest into storage.
type Materializer struct {
	src    fs.Filesystem
	dst    fs.Filesystem
	verify bool
	logger *zap.Logger
}

// NewMaterializer returns a Materializer writing into dst.
func NewMaterializer(dst fs.Filesystem, opts ...MaterializerOption) *Materializer {
	m := &Materializer{
		src:    billy.NewBaseOSFS(),
		dst:    dst,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Materialize performs every copy of man in order and stops at the first
// failure. Destinations are overwritten, so a repeated call after a failure
// converges on the same layout. Copy failures match
// errors.ErrArtifactCopyFailed; checksum mismatches match
// errors.ErrChecksumMismatch and leave no file behind.
func (m *Materializer) Materialize(ctx context.Context, man *manifest.Manifest) ([]Placed, error) {
	placed := make([]Placed, 0, len(man.Copies))

	for _, c := range man.Copies {
		if err := ctx.Err(); err != nil {
			return placed, cerrors.WrapPath(err, cerrors.CodeArtifactCopyFailed, "copy artifact", c.Source)
		}

		var sum *checksum
		var n int64
		var err error
		if m.verify {
			sum = newChecksum()
			n, err = fs.CopyFile(m.src, c.Source, m.dst, c.Destination, sum)
		} else {
			n, err = fs.CopyFile(m.src, c.Source, m.dst, c.Destination)
		}
		if err != nil {
			return placed, cerrors.WrapPath(err, cerrors.CodeArtifactCopyFailed, "copy artifact", c.Source)
		}

		if sum != nil {
			if err := sum.verify(c.SHA256); err != nil {
				if rmErr := m.dst.Remove(c.Destination); rmErr != nil {
					m.logger.Warn("failed to remove rejected artifact",
						zap.String("destination", c.Destination),
						zap.Error(rmErr))
				}
				return placed, cerrors.WrapPath(err, cerrors.CodeInvalidInput, "verify artifact", c.Source)
			}
		}

		m.logger.Debug("copied artifact",
			zap.String("channel", c.Key),
			zap.String("source", c.Source),
			zap.String("destination", c.Destination),
			zap.Int64("bytes", n))
		placed = append(placed, Placed{Key: c.Key, Destination: c.Destination, Size: n})
	}

	return placed, nil
}
