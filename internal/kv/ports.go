// Package kv defines the key-value persistence port used by the ledger
// to mirror its collections, plus shared key names.
package kv

import "context"

// Store is an opaque key-value store holding one JSON-serialized
// collection per key.
type Store interface {
	// Load returns the value for key. ok is false when the key has
	// never been written; that is not an error.
	Load(ctx context.Context, key string) (value string, ok bool, err error)

	// Save writes the value for key, replacing any previous value.
	Save(ctx context.Context, key, value string) error

	Close() error
}

// One key per top-level ledger collection.
const (
	KeyStudents = "students"
	KeyServices = "services"
	KeyInvoices = "invoices"
	KeyExams    = "exam_bookings"
	KeyExpenses = "expenses"
)

// Keys lists every collection key, in load order.
func Keys() []string {
	return []string{KeyStudents, KeyServices, KeyInvoices, KeyExams, KeyExpenses}
}
