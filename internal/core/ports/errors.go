package ports

import "errors"

// Task store error taxonomy. Implementations classify backend failures
// into this closed set so callers branch on errors.Is instead of
// sniffing driver error strings.
var (
	ErrTaskNotFound = errors.New("task store: task not found")
	// ErrTaskFinished rejects mutation of a task already in a terminal
	// state (completed or failed).
	ErrTaskFinished = errors.New("task store: task already finished")
	// ErrInvalidTransition rejects a status change the forward-only
	// state machine does not allow from a non-terminal state.
	ErrInvalidTransition = errors.New("task store: invalid status transition")
	// ErrStoreUnavailable wraps transient backend failures that
	// survived the store's internal retries.
	ErrStoreUnavailable = errors.New("task store: backend unavailable")
)
