package event

import (
	"context"

	"placement-reminder/pkg/gcalendar"
	"placement-reminder/pkg/gmail"
	"placement-reminder/pkg/telegram"
)

// UseCase defines the business logic interface for the event domain.
type UseCase interface {
	// Ingest fetches candidate messages, stages each unseen one as a pending
	// event and notifies the approval channel. Safe to re-run: already
	// processed or already pending messages are skipped.
	Ingest(ctx context.Context) (IngestOutput, error)

	// Approve creates a calendar entry for the pending event behind token
	// and retires it. The event stays pending when it has no usable
	// datetime or when the calendar call fails.
	Approve(ctx context.Context, token string) (DecisionOutput, error)

	// Reject retires the pending event behind token without creating
	// anything.
	Reject(ctx context.Context, token string) (DecisionOutput, error)
}

// MailClient is the mail collaborator capability.
type MailClient interface {
	ListMessages(ctx context.Context, query string, maxResults int64) ([]gmail.MessageSummary, error)
	GetMessage(ctx context.Context, id string) (*gmail.FullMessage, error)
}

// CalendarClient is the calendar collaborator capability.
type CalendarClient interface {
	CreateEvent(ctx context.Context, req gcalendar.CreateEventRequest) (*gcalendar.Event, error)
}

// Notifier is the approval-channel capability used to deliver prompts.
type Notifier interface {
	SendMessage(chatID int64, text string) error
	SendMessageWithKeyboard(chatID int64, text string, parseMode string, keyboard *telegram.InlineKeyboardMarkup) error
}
