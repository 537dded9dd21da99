// Package worker mirrors invoice state into the Google Sheets ledger
// in response to AMQP sync messages.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"khata/internal/amqp"
	"khata/internal/core"
	"khata/internal/ledger"
	"khata/internal/sheets"
)

// SyncWorker handles synchronization of invoices to Google Sheets.
// Messages carry only the invoice id; the worker re-reads current
// ledger state so the mirrored row reflects all payments made so far.
type SyncWorker struct {
	ledger *ledger.Ledger
	sheets sheets.InvoiceWriter
}

func NewSyncWorker(l *ledger.Ledger, writer sheets.InvoiceWriter) *SyncWorker {
	return &SyncWorker{
		ledger: l,
		sheets: writer,
	}
}

// HandleSyncMessage processes a single invoice sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.InvoiceSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "invoice_id", msg.InvoiceID)

	// Reload so invoices written by the server process are visible.
	if err := w.ledger.Load(ctx); err != nil {
		return fmt.Errorf("reload ledger state: %w", err)
	}

	inv, found := w.ledger.InvoiceByID(msg.InvoiceID)
	if !found {
		// Nothing to mirror. Acking a stale message beats redelivering
		// it forever.
		slog.WarnContext(ctx, "Invoice not found, skipping sync", "invoice_id", msg.InvoiceID)
		return nil
	}

	if w.sheets == nil {
		slog.WarnContext(ctx, "No sheets writer configured, skipping sync", "invoice_id", msg.InvoiceID)
		return nil
	}

	row := w.buildRow(inv)
	if err := w.sheets.AppendInvoice(ctx, row); err != nil {
		return fmt.Errorf("append invoice to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Invoice synced to sheets",
		"invoice_id", msg.InvoiceID,
		"invoice_number", inv.InvoiceNumber)
	return nil
}

// buildRow resolves the invoice's references tolerantly. Deleted or
// unknown ids degrade to placeholders rather than failing the sync.
func (w *SyncWorker) buildRow(inv core.Invoice) sheets.InvoiceRow {
	studentName := "Unknown student"
	if student, ok := w.ledger.StudentByID(inv.StudentID); ok {
		studentName = student.Name
	}

	names := make([]string, 0, len(inv.ServiceIDs))
	for _, id := range inv.ServiceIDs {
		if svc, ok := w.ledger.ServiceByID(id); ok {
			names = append(names, svc.Name)
		}
	}

	return sheets.InvoiceRow{
		InvoiceNumber: inv.InvoiceNumber,
		Date:          inv.CreatedAt.String(),
		StudentName:   studentName,
		Services:      strings.Join(names, ", "),
		TotalRupees:   inv.TotalAmount.Rupees(),
		PaidRupees:    inv.PaidAmount().Rupees(),
		BalanceRupees: inv.Balance().Rupees(),
		Status:        string(inv.Status()),
	}
}
