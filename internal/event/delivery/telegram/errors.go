package telegram

import (
	"errors"
	"fmt"

	"placement-reminder/internal/event"
)

// decisionErrorMessage maps a state machine error to user-facing text.
func decisionErrorMessage(err error) string {
	switch {
	case errors.Is(err, event.ErrTokenExpired):
		return "This item expired or was already processed."
	case errors.Is(err, event.ErrNoDatetime):
		return "No date/time detected in the email. Please reject, or retry once a time is known."
	case errors.Is(err, event.ErrBadStoredTime):
		return "Failed to interpret the detected date/time. Please reject or set it manually."
	default:
		return fmt.Sprintf("Could not complete the action: %v. Tap again to retry or reject.", err)
	}
}
