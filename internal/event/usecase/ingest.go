package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"placement-reminder/internal/event"
	"placement-reminder/internal/model"
	"placement-reminder/pkg/mailtext"
	"placement-reminder/pkg/telegram"
)

const (
	placeholderSubject = "(no subject)"
	placeholderSender  = "(unknown)"

	snippetMaxLen = 200
)

// Ingest fetches candidate messages, stages unseen ones as pending events
// and sends one approval prompt per staged event.
func (uc *implUseCase) Ingest(ctx context.Context) (event.IngestOutput, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	processed, err := uc.repo.LoadProcessed(ctx)
	if err != nil {
		return event.IngestOutput{}, fmt.Errorf("failed to load processed set: %w", err)
	}
	pending, err := uc.repo.LoadPending(ctx)
	if err != nil {
		return event.IngestOutput{}, fmt.Errorf("failed to load pending map: %w", err)
	}

	uc.l.Infof(ctx, "ingest: fetching messages with query %q", uc.cfg.Query)
	summaries, err := uc.mail.ListMessages(ctx, uc.cfg.Query, uc.cfg.MaxFetch)
	if err != nil {
		return event.IngestOutput{}, fmt.Errorf("failed to list candidate messages: %w", err)
	}

	seen := make(map[string]struct{}, len(processed)+len(pending))
	for _, id := range processed {
		seen[id] = struct{}{}
	}
	for _, ev := range pending {
		seen[ev.SourceID] = struct{}{}
	}

	var out event.IngestOutput
	for _, summary := range summaries {
		if _, dup := seen[summary.ID]; dup {
			continue
		}

		record, err := uc.buildRecord(ctx, summary.ID)
		if err != nil {
			uc.l.Errorf(ctx, "ingest: failed to fetch message %s: %v", summary.ID, err)
			continue
		}

		token := uuid.NewString()
		pending[token] = toPendingEvent(record)

		// Persist per staged event: a crash mid-batch loses at most the
		// in-flight item.
		if err := uc.repo.SavePending(ctx, pending); err != nil {
			return out, fmt.Errorf("failed to persist pending event: %w", err)
		}
		seen[record.ID] = struct{}{}

		if err := uc.notify(record, token); err != nil {
			uc.l.Warnf(ctx, "ingest: failed to notify for %s: %v", record.ID, err)
		}

		out.Staged = append(out.Staged, event.StagedEvent{
			Token:      token,
			SourceID:   record.ID,
			Subject:    record.Subject,
			Sender:     record.Sender,
			Snippet:    record.Snippet,
			ParsedTime: record.ParsedTime,
		})
		uc.l.Infof(ctx, "ingest: staged %s token=%s", record.ID, token)
	}

	return out, nil
}

// buildRecord fetches a message in full and derives the transient record:
// headers, flattened body and the extracted datetime.
func (uc *implUseCase) buildRecord(ctx context.Context, id string) (model.MessageRecord, error) {
	full, err := uc.mail.GetMessage(ctx, id)
	if err != nil {
		return model.MessageRecord{}, err
	}

	subject, ok := full.Header("Subject")
	if !ok || subject == "" {
		subject = placeholderSubject
	}
	sender, ok := full.Header("From")
	if !ok || sender == "" {
		sender = placeholderSender
	}

	body := mailtext.Normalize(full.Payload)

	snippet := full.Snippet
	if snippet == "" && body != "" {
		snippet = truncateRunes(body, snippetMaxLen) + "..."
	}

	record := model.MessageRecord{
		ID:      id,
		Subject: subject,
		Sender:  sender,
		Snippet: snippet,
		Body:    body,
	}

	combined := subject + "\n\n" + body
	if parsed, found := uc.extractor.Extract(combined, uc.now()); found {
		record.ParsedTime = &parsed
	}
	return record, nil
}

func (uc *implUseCase) notify(record model.MessageRecord, token string) error {
	detected := "No date/time detected"
	if record.ParsedTime != nil {
		detected = record.ParsedTime.Format("Mon, 02 Jan 2006 15:04 MST")
	}

	text := fmt.Sprintf(
		"📧 *%s*\nFrom: %s\n\n_%s_\n\n*Detected time:* %s\n\nTap ✅ to add to Google Calendar.",
		record.Subject, record.Sender, record.Snippet, detected,
	)

	keyboard := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{
				{Text: "✅ Approve", CallbackData: "approve|" + token},
				{Text: "❌ Reject", CallbackData: "reject|" + token},
			},
		},
	}

	return uc.notifier.SendMessageWithKeyboard(uc.cfg.ChatID, text, "Markdown", keyboard)
}

func toPendingEvent(record model.MessageRecord) model.PendingEvent {
	ev := model.PendingEvent{
		SourceID: record.ID,
		Subject:  record.Subject,
		Sender:   record.Sender,
		Snippet:  record.Snippet,
		Body:     record.Body,
	}
	if record.ParsedTime != nil {
		ev.ParsedTime = record.ParsedTime.Format(time.RFC3339)
	}
	return ev
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
