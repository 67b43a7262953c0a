package usecase

import (
	"sync"
	"time"

	"placement-reminder/internal/event"
	"placement-reminder/internal/event/repository"
	"placement-reminder/pkg/extract"
	pkgLog "placement-reminder/pkg/log"
)

// Config holds the fixed ingestion and scheduling parameters.
type Config struct {
	Query      string // Gmail search query for candidate messages
	MaxFetch   int64  // upper bound on messages per ingestion run
	ChatID     int64  // Telegram chat receiving approval prompts
	CalendarID string // target calendar, "" means primary
	Timezone   string // IANA zone name for created events
}

type implUseCase struct {
	l         pkgLog.Logger
	mail      event.MailClient
	calendar  event.CalendarClient
	notifier  event.Notifier
	repo      repository.LedgerRepository
	extractor *extract.Extractor
	cfg       Config

	// mu serializes every ledger-mutating operation so racing decisions on
	// the same token cannot both commit.
	mu sync.Mutex

	now func() time.Time
}

// New creates a new event UseCase instance.
func New(
	l pkgLog.Logger,
	mail event.MailClient,
	calendar event.CalendarClient,
	notifier event.Notifier,
	repo repository.LedgerRepository,
	extractor *extract.Extractor,
	cfg Config,
) *implUseCase {
	return &implUseCase{
		l:         l,
		mail:      mail,
		calendar:  calendar,
		notifier:  notifier,
		repo:      repo,
		extractor: extractor,
		cfg:       cfg,
		now:       time.Now,
	}
}
