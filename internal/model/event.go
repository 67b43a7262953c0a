package model

import "time"

// MessageRecord is a transient view of an inbound mail message produced by
// ingestion. ParsedTime is nil when no date/time expression was found.
type MessageRecord struct {
	ID         string
	Subject    string
	Sender     string
	Snippet    string
	Body       string
	ParsedTime *time.Time
}

// PendingEvent is a staged candidate awaiting an approve/reject decision,
// persisted in the pending ledger keyed by its approval token. JSON field
// names are the on-disk layout and must stay stable across restarts.
//
// ParsedTime holds an RFC3339 instant, or "" when no date/time was detected.
type PendingEvent struct {
	SourceID   string `json:"gmail_id"`
	Subject    string `json:"subject"`
	Sender     string `json:"sender"`
	Snippet    string `json:"snippet"`
	Body       string `json:"body_text"`
	ParsedTime string `json:"parsed_dt,omitempty"`
}
