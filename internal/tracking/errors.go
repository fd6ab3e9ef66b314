package tracking

import "errors"

// Error taxonomy for task lifecycle and time-tracking operations.
// Callers classify with errors.Is; messages carry the user-facing detail.
var (
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPreconditionFailed means a business rule blocked the operation
	// before any mutation (incomplete subtasks, no active timer).
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrInvalidReference means a supplied foreign id does not resolve.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrConflict means the operation lost to existing state (timer
	// already running, duplicate link, member limit reached).
	ErrConflict = errors.New("conflict")

	// ErrValidation means a malformed or out-of-range field value.
	ErrValidation = errors.New("validation error")
)
