package gcalendar

import "time"

// ReminderOverride is a single non-default reminder on an event.
type ReminderOverride struct {
	Method  string // "popup" or "email"
	Minutes int64  // minutes before the event start
}

// CreateEventRequest is the input for creating a Google Calendar event.
type CreateEventRequest struct {
	CalendarID  string
	Summary     string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Timezone    string // e.g. "Asia/Kolkata"
	Reminders   []ReminderOverride
}

// Event is a simplified representation of a Google Calendar event.
type Event struct {
	ID          string
	Summary     string
	Description string
	HtmlLink    string
	StartTime   time.Time
	EndTime     time.Time
}
