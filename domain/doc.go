// Package domain provides canonical type definitions for the build catalog.
//
// This package is the bottom layer of the module: a zero-dependency library of
// pure data structures shared by the catalog pipeline, the store backends and
// the command line tool.
//
// # Domain Model
//
// The catalog records a four level hierarchy:
//
//   - Project: a top-level software product, identified by a unique name.
//   - VersionGroup: a release line within a project (e.g. "1.20").
//   - Version: a specific release within a project, assigned to one group.
//   - Build: one numbered output of a version, with its changelog and downloads.
//
// Builds embed their Changes (source control commits, newest first) and a
// mapping of channel keys to Downloads. Builds are immutable once recorded
// except for the Promoted flag.
//
// # Identifiers
//
// All entities carry a store-assigned string ID. The MongoDB store uses the
// hex form of an ObjectID; the SQL store uses time-ordered UUIDs. Callers must
// treat identifiers as opaque.
//
// # Serialization
//
// Entities carry json tags matching the persisted document layout
// (camelCase field names) and db tags for SQL column mapping.
package domain
