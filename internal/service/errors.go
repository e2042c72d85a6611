package service

import "errors"

// Sentinel errors for the failure taxonomy. Persistence failures inside
// a single topic are logged and swallowed at that scope rather than
// surfaced; only whole-user failures carry one of these out.
var (
	// ErrDataUnavailable marks a missing required input, such as a user
	// without an assigned stream. It aborts that user's pipeline only.
	ErrDataUnavailable = errors.New("required data unavailable")

	// ErrScheduleNotFound is returned when a review completion points at
	// a (user, topic) pair with no schedule row.
	ErrScheduleNotFound = errors.New("review schedule not found")
)
