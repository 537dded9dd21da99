package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"khata/internal/core"
	"khata/internal/kv"
)

// Load hydrates the ledger from the key-value store. Services
// fall back to the fixed seed catalog when their key is absent or
// empty; every other collection defaults to an empty sequence.
func (l *Ledger) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.loadLocked(ctx); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Ledger loaded",
		"students", len(l.students),
		"services", len(l.services),
		"invoices", len(l.invoices),
		"exam_bookings", len(l.exams),
		"expenses", len(l.expenses))
	return nil
}

func (l *Ledger) loadLocked(ctx context.Context) error {
	if err := loadCollection(ctx, l.deps.Store, kv.KeyStudents, &l.students); err != nil {
		return err
	}
	if err := loadCollection(ctx, l.deps.Store, kv.KeyServices, &l.services); err != nil {
		return err
	}
	if len(l.services) == 0 {
		l.services = core.SeedServices()
	}
	if err := loadCollection(ctx, l.deps.Store, kv.KeyInvoices, &l.invoices); err != nil {
		return err
	}
	if err := loadCollection(ctx, l.deps.Store, kv.KeyExams, &l.exams); err != nil {
		return err
	}
	if err := loadCollection(ctx, l.deps.Store, kv.KeyExpenses, &l.expenses); err != nil {
		return err
	}
	return nil
}

// refreshLocked re-reads the store before a mutation so that writes
// from another process sharing it (the worker's recurring expenses,
// the server's invoices) are not clobbered by the full-state flush
// that follows. A failed read keeps the in-memory state, matching the
// save-failure policy. Callers must hold the lock.
func (l *Ledger) refreshLocked(ctx context.Context) {
	if err := l.loadLocked(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to refresh ledger state before mutation, proceeding with in-memory copy",
			"error", err)
	}
}

func loadCollection[T any](ctx context.Context, store kv.Store, key string, dst *[]T) error {
	raw, ok, err := store.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || raw == "" {
		*dst = nil
		return nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	*dst = items
	return nil
}

// persist flushes all five collections. A failing save loses
// durability but never the in-memory mutation, so failures are logged
// as warnings and swallowed. Callers must hold the lock.
func (l *Ledger) persist(ctx context.Context) {
	saveCollection(ctx, l.deps.Store, kv.KeyStudents, l.students)
	saveCollection(ctx, l.deps.Store, kv.KeyServices, l.services)
	saveCollection(ctx, l.deps.Store, kv.KeyInvoices, l.invoices)
	saveCollection(ctx, l.deps.Store, kv.KeyExams, l.exams)
	saveCollection(ctx, l.deps.Store, kv.KeyExpenses, l.expenses)
}

func saveCollection[T any](ctx context.Context, store kv.Store, key string, items []T) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		slog.WarnContext(ctx, "Failed to encode collection", "key", key, "error", err)
		return
	}
	if err := store.Save(ctx, key, string(raw)); err != nil {
		slog.WarnContext(ctx, "Failed to persist collection, in-memory state retained",
			"key", key, "error", err)
	}
}
