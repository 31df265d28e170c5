package ledger

import "errors"

// Domain errors. The HTTP layer maps these onto status codes; nothing in
// this package ever panics past an operation boundary.
var (
	// ErrValidation covers bad or missing numeric and text input.
	// The operation aborts with no state change.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means no record carries the given ID.
	ErrNotFound = errors.New("record not found")

	// ErrImportFormat means an import payload is malformed. The current
	// store is left untouched.
	ErrImportFormat = errors.New("invalid import format")

	// ErrConfirmationDeclined means the user (or the collaborator acting
	// for them) declined a confirmation prompt. The operation aborts with
	// no state change.
	ErrConfirmationDeclined = errors.New("confirmation declined")

	// ErrPersistence means the in-memory mutation was applied but flushing
	// it to the store failed. State has diverged from what is persisted;
	// the caller must warn the user rather than pretend nothing happened.
	ErrPersistence = errors.New("failed to persist store")
)
