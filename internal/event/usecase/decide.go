package usecase

import (
	"context"
	"fmt"
	"time"

	"placement-reminder/internal/event"
	"placement-reminder/internal/model"
	"placement-reminder/pkg/gcalendar"
)

const (
	// eventDuration is the fixed span of created calendar entries.
	eventDuration = time.Hour

	// descriptionBodyLimit bounds how much body text goes into the
	// calendar event description.
	descriptionBodyLimit = 1000
)

// reminderOverrides is the fixed reminder configuration for created events:
// a pop-up 30 minutes before and an email one day before.
var reminderOverrides = []gcalendar.ReminderOverride{
	{Method: "popup", Minutes: 30},
	{Method: "email", Minutes: 60 * 24},
}

// Approve transitions the pending event behind token to its approved
// terminal state, creating the calendar entry first. The pending entry
// survives any failure so the decision can be retried.
func (uc *implUseCase) Approve(ctx context.Context, token string) (event.DecisionOutput, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	pending, err := uc.repo.LoadPending(ctx)
	if err != nil {
		return event.DecisionOutput{}, fmt.Errorf("failed to load pending map: %w", err)
	}

	ev, ok := pending[token]
	if !ok {
		return event.DecisionOutput{}, event.ErrTokenExpired
	}

	if ev.ParsedTime == "" {
		return event.DecisionOutput{}, event.ErrNoDatetime
	}

	start, err := time.Parse(time.RFC3339, ev.ParsedTime)
	if err != nil {
		uc.l.Errorf(ctx, "approve: stored datetime %q for token %s is unparseable: %v", ev.ParsedTime, token, err)
		return event.DecisionOutput{}, event.ErrBadStoredTime
	}
	start = start.In(uc.extractor.Location())
	end := start.Add(eventDuration)

	created, err := uc.calendar.CreateEvent(ctx, gcalendar.CreateEventRequest{
		CalendarID:  uc.cfg.CalendarID,
		Summary:     ev.Subject,
		Description: fmt.Sprintf("From: %s\n\n%s", ev.Sender, truncateRunes(ev.Body, descriptionBodyLimit)),
		StartTime:   start,
		EndTime:     end,
		Timezone:    uc.cfg.Timezone,
		Reminders:   reminderOverrides,
	})
	if err != nil {
		// No commit: the entry stays pending for a later retry.
		return event.DecisionOutput{}, fmt.Errorf("failed to create calendar event: %w", err)
	}

	if err := uc.retire(ctx, token, ev, pending); err != nil {
		// The calendar entry already exists; retrying the decision will
		// create a second one.
		uc.l.Errorf(ctx, "approve: %s created at %s but ledger commit failed: %v", ev.SourceID, created.HtmlLink, err)
		return event.DecisionOutput{}, err
	}

	uc.l.Infof(ctx, "approve: %s scheduled at %s", ev.SourceID, start.Format(time.RFC3339))
	return event.DecisionOutput{
		Subject:      ev.Subject,
		CalendarLink: created.HtmlLink,
	}, nil
}

// Reject transitions the pending event behind token to its rejected terminal
// state so the message never resurfaces.
func (uc *implUseCase) Reject(ctx context.Context, token string) (event.DecisionOutput, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	pending, err := uc.repo.LoadPending(ctx)
	if err != nil {
		return event.DecisionOutput{}, fmt.Errorf("failed to load pending map: %w", err)
	}

	ev, ok := pending[token]
	if !ok {
		return event.DecisionOutput{}, event.ErrTokenExpired
	}

	if err := uc.retire(ctx, token, ev, pending); err != nil {
		return event.DecisionOutput{}, err
	}

	uc.l.Infof(ctx, "reject: %s retired", ev.SourceID)
	return event.DecisionOutput{Subject: ev.Subject}, nil
}

// retire records the source message as processed and removes the token from
// pending, persisting both sets.
func (uc *implUseCase) retire(ctx context.Context, token string, ev model.PendingEvent, pending map[string]model.PendingEvent) error {
	processed, err := uc.repo.LoadProcessed(ctx)
	if err != nil {
		return fmt.Errorf("failed to load processed set: %w", err)
	}

	processed = append(processed, ev.SourceID)
	if err := uc.repo.SaveProcessed(ctx, processed); err != nil {
		return fmt.Errorf("failed to persist processed set: %w", err)
	}

	delete(pending, token)
	if err := uc.repo.SavePending(ctx, pending); err != nil {
		return fmt.Errorf("failed to persist pending map: %w", err)
	}
	return nil
}
