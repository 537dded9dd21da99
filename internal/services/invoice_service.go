// Package services orchestrates ledger operations that have side
// effects beyond the ledger itself: publishing sync messages for the
// spreadsheet mirror and materializing recurring expenses.
package services

import (
	"context"
	"log/slog"

	"khata/internal/core"
	"khata/internal/ledger"
)

// SyncPublisher publishes invoice sync messages. Satisfied by
// *amqp.Client; nil disables publishing.
type SyncPublisher interface {
	PublishInvoiceSync(ctx context.Context, id core.InvoiceID) error
}

// InvoiceService wraps invoice mutations with a fire-and-forget sync
// publish. Publish failures never fail the mutation: the ledger is
// already updated and persisted.
type InvoiceService struct {
	ledger    *ledger.Ledger
	publisher SyncPublisher
}

func NewInvoiceService(l *ledger.Ledger, publisher SyncPublisher) *InvoiceService {
	return &InvoiceService{
		ledger:    l,
		publisher: publisher,
	}
}

// CreateInvoice creates the invoice and queues it for the spreadsheet
// mirror.
func (s *InvoiceService) CreateInvoice(ctx context.Context, studentID core.StudentID, serviceIDs []core.ServiceID, initial *ledger.InitialPayment) core.Invoice {
	inv := s.ledger.CreateInvoice(ctx, studentID, serviceIDs, initial)
	s.publishSync(ctx, inv.ID)
	return inv
}

// AddPayment appends a payment and re-queues the invoice so the mirror
// picks up the new paid/balance figures.
func (s *InvoiceService) AddPayment(ctx context.Context, id core.InvoiceID, amount core.Money, mode core.PaymentMode) (core.Invoice, bool) {
	inv, found := s.ledger.AddPayment(ctx, id, amount, mode)
	if found {
		s.publishSync(ctx, inv.ID)
	}
	return inv, found
}

func (s *InvoiceService) publishSync(ctx context.Context, id core.InvoiceID) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Sync publisher not available, skipping sync message", "invoice_id", id)
		return
	}
	if err := s.publisher.PublishInvoiceSync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish invoice sync message",
			"invoice_id", id, "error", err)
		// Don't fail the request - the invoice is saved locally
	}
}
