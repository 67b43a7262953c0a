package event

import "time"

// StagedEvent describes one message staged for approval during ingestion.
type StagedEvent struct {
	Token      string
	SourceID   string
	Subject    string
	Sender     string
	Snippet    string
	ParsedTime *time.Time // nil when no date/time was detected
}

// IngestOutput is the result of one ingestion run.
type IngestOutput struct {
	Staged []StagedEvent
}

// DecisionOutput is the result of an approve or reject transition.
type DecisionOutput struct {
	Subject      string
	CalendarLink string // set on approval only
}
