// Package manifest parses download descriptors into the download mapping of a
// build and the plan of artifact copies that materializes it.
//
// A descriptor is a colon separated tuple supplied by a build pipeline:
//
//	channelKey:filePath:sha256              primary form
//	channelKey:filePath:sha256:displayName  named form
//
// Primary artifacts are renamed to {project}-{version}-{build}.jar; named
// artifacts keep their display name. Dots in the channel key stand in for
// colons, which the tuple syntax reserves.
package manifest

import (
	"fmt"
	"regexp"
	"strings"

	cerrors "github.com/PaperMC/bibliothek/errors"
)

// Kind tags the two descriptor forms.
type Kind int

const (
	// Primary is the three field form. Its file is renamed after the build.
	Primary Kind = iota

	// Named is the four field form. Its file keeps the supplied display name.
	Named
)

// String returns a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case Primary:
		return "primary"
	case Named:
		return "named"
	default:
		return "unknown"
	}
}

// displayNamePattern restricts named artifacts to plain file names.
var displayNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Descriptor is one parsed download descriptor.
type Descriptor struct {
	// Kind is Primary or Named.
	Kind Kind

	// Channel is the channel key as written in the descriptor (dotted form).
	Channel string

	// Path is the source file of the artifact.
	Path string

	// SHA256 is the declared hex checksum of the artifact.
	SHA256 string

	// DisplayName is the stored file name of a Named artifact.
	DisplayName string
}

// Key returns the channel key under which the download is stored. The first
// dot of the descriptor key is replaced with a colon, so "mojang.mappings"
// is stored as "mojang:mappings".
func (d Descriptor) Key() string {
	return strings.Replace(d.Channel, ".", ":", 1)
}

// FileName returns the stored artifact file name for the given build.
func (d Descriptor) FileName(t Target) string {
	if d.Kind == Named {
		return d.DisplayName
	}
	return t.PrimaryFileName()
}

// String returns the descriptor in its colon separated form.
func (d Descriptor) String() string {
	if d.Kind == Named {
		return strings.Join([]string{d.Channel, d.Path, d.SHA256, d.DisplayName}, ":")
	}
	return strings.Join([]string{d.Channel, d.Path, d.SHA256}, ":")
}

// Parse parses a single descriptor. A four field descriptor with an empty
// display name is the primary form.
func Parse(raw string) (Descriptor, error) {
	fields := strings.Split(raw, ":")

	var d Descriptor
	switch len(fields) {
	case 3:
		d = Descriptor{Kind: Primary, Channel: fields[0], Path: fields[1], SHA256: fields[2]}
	case 4:
		d = Descriptor{Kind: Named, Channel: fields[0], Path: fields[1], SHA256: fields[2], DisplayName: fields[3]}
		if d.DisplayName == "" {
			d.Kind = Primary
		}
	default:
		return Descriptor{}, malformed(raw, fmt.Sprintf("expected 3 or 4 fields, got %d", len(fields)))
	}

	switch {
	case d.Channel == "":
		return Descriptor{}, malformed(raw, "empty channel key")
	case d.Path == "":
		return Descriptor{}, malformed(raw, "empty file path")
	case d.SHA256 == "":
		return Descriptor{}, malformed(raw, "empty sha256")
	}

	if d.Kind == Named {
		if !displayNamePattern.MatchString(d.DisplayName) || d.DisplayName == "." || d.DisplayName == ".." {
			return Descriptor{}, malformed(raw, fmt.Sprintf("invalid display name %q", d.DisplayName))
		}
	}

	return d, nil
}

func malformed(raw, reason string) error {
	return cerrors.Wrapf(cerrors.ErrMalformedDescriptor, "descriptor %q: %s", raw, reason)
}

// ParseAll parses every descriptor and enforces the list rules: at least one
// descriptor, at most one primary descriptor, and distinct stored keys.
func ParseAll(raw []string) ([]Descriptor, error) {
	if len(raw) == 0 {
		return nil, cerrors.ErrNoDownloads
	}

	descriptors := make([]Descriptor, 0, len(raw))
	primaries := 0
	keys := make(map[string]string, len(raw))

	for _, r := range raw {
		d, err := Parse(r)
		if err != nil {
			return nil, err
		}

		if d.Kind == Primary {
			primaries++
			if primaries > 1 {
				return nil, cerrors.Wrapf(cerrors.ErrTooManyPrimaryArtifacts, "descriptor %q", r)
			}
		}

		if prev, ok := keys[d.Key()]; ok {
			return nil, cerrors.Wrapf(cerrors.ErrDuplicateChannel, "descriptors %q and %q both map to %q", prev, r, d.Key())
		}
		keys[d.Key()] = r

		descriptors = append(descriptors, d)
	}

	return descriptors, nil
}
