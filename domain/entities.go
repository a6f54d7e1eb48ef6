package domain

import "time"

// Project is a top-level software product tracked by the catalog.
type Project struct {
	// ID is the store-assigned identifier.
	ID string `json:"id" db:"id"`

	// Name is the unique, stable slug of the project (e.g. "paper").
	Name string `json:"name" db:"name" validate:"required"`

	// FriendlyName is the display name. It is set when the project is
	// created and never updated afterwards.
	FriendlyName string `json:"friendlyName" db:"friendly_name"`
}

// VersionGroup groups the versions of a project into a release line.
type VersionGroup struct {
	// ID is the store-assigned identifier.
	ID string `json:"id" db:"id"`

	// Project is the ID of the owning Project.
	Project string `json:"project" db:"project_id" validate:"required"`

	// Name is unique within the project (e.g. "1.20").
	Name string `json:"name" db:"name" validate:"required"`

	// Time is when the group was first recorded. Nil for legacy records.
	Time *time.Time `json:"time,omitempty" db:"time"`
}

// Version is a specific release of a project.
type Version struct {
	// ID is the store-assigned identifier.
	ID string `json:"id" db:"id"`

	// Project is the ID of the owning Project.
	Project string `json:"project" db:"project_id" validate:"required"`

	// Group is the ID of the VersionGroup. Fixed once the version exists.
	Group string `json:"group" db:"group_id" validate:"required"`

	// Name is unique within the project (e.g. "1.20.1").
	Name string `json:"name" db:"name" validate:"required"`

	// Time is when the version was first recorded. Nil for legacy records.
	Time *time.Time `json:"time,omitempty" db:"time"`
}

// Build is one numbered output of a Version.
type Build struct {
	// ID is the store-assigned identifier.
	ID string `json:"id" db:"id"`

	// Project is the ID of the owning Project.
	Project string `json:"project" db:"project_id" validate:"required"`

	// Version is the ID of the owning Version.
	Version string `json:"version" db:"version_id" validate:"required"`

	// Number is the build number. Unique within a version by convention only.
	Number int `json:"number" db:"number" validate:"min=0"`

	// Time is the ingestion wall-clock moment.
	Time time.Time `json:"time" db:"time"`

	// Changes lists the commits attributed to this build, newest first.
	Changes []Change `json:"changes" db:"-"`

	// Downloads maps channel keys (e.g. "application", "mojang:mappings")
	// to the artifacts of this build.
	Downloads map[string]Download `json:"downloads" db:"-"`

	// Promoted marks the build as vetted for general use.
	Promoted bool `json:"promoted" db:"promoted"`

	// Channel is the release channel of the build.
	Channel BuildChannel `json:"channel" db:"channel"`
}

// LatestCommit returns the commit of the newest change, or an empty string
// when the build has no changes.
func (b *Build) LatestCommit() string {
	if len(b.Changes) == 0 {
		return ""
	}
	return b.Changes[0].Commit
}

// Change is one source control commit attributed to a Build.
type Change struct {
	// Commit is the full revision hash.
	Commit string `json:"commit" db:"commit"`

	// Summary is the first line of the commit message.
	Summary string `json:"summary" db:"summary"`

	// Message is the full commit message.
	Message string `json:"message" db:"message"`
}

// Download is one artifact attached to a Build.
type Download struct {
	// Name is the artifact file name as exposed externally.
	Name string `json:"name" db:"name" validate:"required"`

	// SHA256 is the hex-encoded checksum of the artifact.
	SHA256 string `json:"sha256" db:"sha256" validate:"required"`
}
