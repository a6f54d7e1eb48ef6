package errors

// Taxonomy kinds. Each matches, via errors.Is, every Error carrying its code.
var (
	// ErrValidation matches any input validation failure.
	ErrValidation = newKind(CodeInvalidInput, "validation failed")

	// ErrStorageUnavailable matches failures to reach the backing store.
	ErrStorageUnavailable = newKind(CodeStorageUnavailable, "storage unavailable")

	// ErrArtifactCopyFailed matches filesystem failures while materializing artifacts.
	ErrArtifactCopyFailed = newKind(CodeArtifactCopyFailed, "artifact copy failed")

	// ErrSourceControlQueryFailed matches repository history lookup failures.
	ErrSourceControlQueryFailed = newKind(CodeSourceControlFailed, "source control query failed")

	// ErrBuildNotFound matches lookups of builds that do not exist.
	ErrBuildNotFound = newKind(CodeNotFound, "build not found")
)

// Specific validation failures. They also match ErrValidation.
var (
	// ErrTooManyPrimaryArtifacts is returned when more than one descriptor uses the primary form.
	ErrTooManyPrimaryArtifacts = New(CodeInvalidInput, "too many primary artifacts")

	// ErrMalformedDescriptor is returned when a download descriptor cannot be parsed.
	ErrMalformedDescriptor = New(CodeInvalidInput, "malformed download descriptor")

	// ErrDuplicateChannel is returned when two descriptors map to the same channel key.
	ErrDuplicateChannel = New(CodeInvalidInput, "duplicate download channel")

	// ErrNoDownloads is returned when an ingestion carries no download descriptors.
	ErrNoDownloads = New(CodeInvalidInput, "at least one download is required")

	// ErrChecksumMismatch is returned when an artifact does not match its declared sha256.
	ErrChecksumMismatch = New(CodeInvalidInput, "checksum mismatch")
)
