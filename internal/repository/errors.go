package repository

import "errors"

var (
	// ErrNotFound reports that a referenced schedule or task does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrLocked reports a refused mutation on a locked schedule.
	ErrLocked = errors.New("schedule is locked")

	// ErrConnectionUnavailable reports that the backing store never opened;
	// every operation fails fast with it instead of attempting partial work.
	ErrConnectionUnavailable = errors.New("database connection unavailable")
)
