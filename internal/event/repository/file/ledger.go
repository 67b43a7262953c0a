// Package file implements the ledger on two local JSON files: processed
// message ids as an array, pending events as a token-keyed object.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"placement-reminder/internal/event/repository"
	"placement-reminder/internal/model"
	pkgLog "placement-reminder/pkg/log"
)

type ledger struct {
	l             pkgLog.Logger
	processedPath string
	pendingPath   string
}

// New creates a file-backed LedgerRepository storing the processed set and
// pending map at the given paths.
func New(l pkgLog.Logger, processedPath, pendingPath string) repository.LedgerRepository {
	return &ledger{
		l:             l,
		processedPath: processedPath,
		pendingPath:   pendingPath,
	}
}

func (r *ledger) LoadProcessed(ctx context.Context) ([]string, error) {
	data, err := r.readFile(r.processedPath)
	if err != nil {
		return nil, err
	}

	ids := []string{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &ids); err != nil {
			r.l.Warnf(ctx, "ledger: corrupt state in %s, starting empty: %v", r.processedPath, err)
			ids = []string{}
		}
	}
	return ids, nil
}

func (r *ledger) SaveProcessed(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	return r.saveJSON(r.processedPath, ids)
}

func (r *ledger) LoadPending(ctx context.Context) (map[string]model.PendingEvent, error) {
	data, err := r.readFile(r.pendingPath)
	if err != nil {
		return nil, err
	}

	pending := map[string]model.PendingEvent{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &pending); err != nil {
			r.l.Warnf(ctx, "ledger: corrupt state in %s, starting empty: %v", r.pendingPath, err)
			pending = map[string]model.PendingEvent{}
		}
	}
	return pending, nil
}

func (r *ledger) SavePending(ctx context.Context, pending map[string]model.PendingEvent) error {
	if pending == nil {
		pending = map[string]model.PendingEvent{}
	}
	return r.saveJSON(r.pendingPath, pending)
}

// readFile returns the file content, or nil when the file does not exist:
// absent state is empty state.
func (r *ledger) readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// saveJSON writes value to a temp file in the same directory and renames it
// over path, so a crash mid-write never leaves a partial ledger behind.
func (r *ledger) saveJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
