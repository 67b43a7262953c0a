package event

import "errors"

// Domain-specific errors for the event package.
var (
	// ErrTokenExpired means the token is not in the pending map: the item
	// was already decided or never existed. Expected under double-taps and
	// replayed decisions; never mutates state.
	ErrTokenExpired = errors.New("event expired or already processed")

	// ErrNoDatetime means approval cannot proceed because no date/time was
	// detected for the event. The event stays pending.
	ErrNoDatetime = errors.New("no date/time detected for event")

	// ErrBadStoredTime means the persisted datetime could not be parsed
	// back. The event stays pending so the user can reject it.
	ErrBadStoredTime = errors.New("stored date/time is not parseable")
)
