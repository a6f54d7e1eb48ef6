package manifest

import (
	"fmt"
	"path"
	"strconv"

	"github.com/PaperMC/bibliothek/domain"
	cerrors "github.com/PaperMC/bibliothek/errors"
)

// Target identifies the build a manifest belongs to.
type Target struct {
	Project string
	Version string
	Build   int
}

// PrimaryFileName returns the deterministic name of the primary artifact.
func (t Target) PrimaryFileName() string {
	return fmt.Sprintf("%s-%s-%d.jar", t.Project, t.Version, t.Build)
}

// Dir returns the storage directory of the build, relative to the storage root.
func (t Target) Dir() string {
	return path.Join(t.Project, t.Version, strconv.Itoa(t.Build))
}

// Copy is one planned artifact copy.
type Copy struct {
	// Key is the stored channel key of the download.
	Key string

	// Source is the artifact path supplied by the descriptor.
	Source string

	// Destination is the target path relative to the storage root.
	Destination string

	// SHA256 is the declared checksum of the artifact.
	SHA256 string
}

// Manifest is the validated download mapping of a build together with the
// copies that place its artifacts in storage.
type Manifest struct {
	Target    Target
	Downloads map[string]domain.Download
	Copies    []Copy
}

// New parses and validates raw descriptors for the target build. It performs
// no I/O, so a failing manifest leaves no trace.
func New(raw []string, t Target) (*Manifest, error) {
	descriptors, err := ParseAll(raw)
	if err != nil {
		return nil, err
	}

	m := FromDescriptors(descriptors, t)

	seen := make(map[string]string, len(m.Copies))
	for _, c := range m.Copies {
		if prev, ok := seen[c.Destination]; ok {
			return nil, cerrors.Wrapf(cerrors.ErrMalformedDescriptor,
				"channels %q and %q both write %q", prev, c.Key, c.Destination)
		}
		seen[c.Destination] = c.Key
	}

	return m, nil
}

// FromDescriptors builds the manifest of already validated descriptors.
// Copies keep descriptor order.
func FromDescriptors(descriptors []Descriptor, t Target) *Manifest {
	m := &Manifest{
		Target:    t,
		Downloads: make(map[string]domain.Download, len(descriptors)),
		Copies:    make([]Copy, 0, len(descriptors)),
	}

	for _, d := range descriptors {
		name := d.FileName(t)
		m.Downloads[d.Key()] = domain.Download{
			Name:   name,
			SHA256: d.SHA256,
		}
		m.Copies = append(m.Copies, Copy{
			Key:         d.Key(),
			Source:      d.Path,
			Destination: path.Join(t.Dir(), name),
			SHA256:      d.SHA256,
		})
	}

	return m
}
