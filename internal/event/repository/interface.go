package repository

import (
	"context"

	"placement-reminder/internal/model"
)

// LedgerRepository owns the durable representation of the processed set and
// the pending map. No other component touches the on-disk state directly.
//
// Load methods return empty containers when no prior state exists or the
// stored representation is corrupt; corruption is logged, never fatal.
// After a successful Save, an immediately following Load from a fresh
// process returns an equal value.
type LedgerRepository interface {
	LoadProcessed(ctx context.Context) ([]string, error)
	SaveProcessed(ctx context.Context, ids []string) error
	LoadPending(ctx context.Context) (map[string]model.PendingEvent, error)
	SavePending(ctx context.Context, pending map[string]model.PendingEvent) error
}
