package spa

import "errors"

// Client errors.
var (
	// ErrFetchInProgress is returned when an exchange is started while
	// another one is still running. Exchanges are strictly sequential;
	// overlapping calls are rejected, never queued.
	ErrFetchInProgress = errors.New("spa: fetch already in progress")

	// ErrIncomplete is returned when the fetch deadline expires before
	// every requested type has been answered. The partial result map is
	// still returned and the connection stays usable.
	ErrIncomplete = errors.New("spa: fetch incomplete")

	// ErrBadValue is returned when a command value does not match the
	// command's kind or allowed range.
	ErrBadValue = errors.New("spa: invalid command value")
)
