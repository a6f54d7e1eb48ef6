package domain

import "fmt"

// BuildChannel represents the release channel of a Build.
type BuildChannel string

const (
	// BuildChannelDefault is the regular release channel.
	BuildChannelDefault BuildChannel = "default"

	// BuildChannelExperimental marks builds that are not ready for general use.
	BuildChannelExperimental BuildChannel = "experimental"
)

// String returns the string representation of the BuildChannel.
func (c BuildChannel) String() string {
	return string(c)
}

// Valid reports whether c is a known channel.
func (c BuildChannel) Valid() bool {
	switch c {
	case BuildChannelDefault, BuildChannelExperimental:
		return true
	default:
		return false
	}
}

// ParseBuildChannel parses s into a BuildChannel. An empty string yields
// BuildChannelDefault.
func ParseBuildChannel(s string) (BuildChannel, error) {
	if s == "" {
		return BuildChannelDefault, nil
	}
	c := BuildChannel(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown build channel %q", s)
	}
	return c, nil
}
