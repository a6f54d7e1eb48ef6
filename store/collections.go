package store

// Names of the persisted collections (tables for SQL backends).
const (
	ProjectsCollection      = "projects"
	VersionGroupsCollection = "version_groups"
	VersionsCollection      = "versions"
	BuildsCollection        = "builds"
)

// DefaultDatabase is the database name the catalog has always used.
const DefaultDatabase = "library"
