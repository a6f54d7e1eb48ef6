// Package errors provides the error taxonomy for the build catalog.
// It extends Go's standard error handling with structured error codes,
// context preservation and kind matching through errors.Is.
package errors

// ErrorCode represents a specific error condition in the build catalog.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates a requested resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeConflict indicates a resource state conflict that prevents the operation.
	CodeConflict ErrorCode = "CONFLICT"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// Infrastructure errors.

	// CodeStorageUnavailable indicates the backing document store cannot be reached.
	CodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"

	// CodeDatabase indicates a database operation failed after a connection was established.
	CodeDatabase ErrorCode = "DATABASE_ERROR"

	// CodeArtifactCopyFailed indicates an artifact could not be copied into or out of storage.
	CodeArtifactCopyFailed ErrorCode = "ARTIFACT_COPY_FAILED"

	// CodeSourceControlFailed indicates a repository history lookup failed.
	CodeSourceControlFailed ErrorCode = "SOURCE_CONTROL_QUERY_FAILED"

	// System errors.

	// CodeInternal indicates an internal system error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// String returns the string representation of the ErrorCode.
func (c ErrorCode) String() string {
	return string(c)
}
