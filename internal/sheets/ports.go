// Package sheets defines the outbound port for mirroring invoices to
// the institute's accounting spreadsheet.
package sheets

import "context"

// InvoiceRow is one flattened spreadsheet row for an invoice, with the
// derived fields already computed.
type InvoiceRow struct {
	InvoiceNumber string
	Date          string
	StudentName   string
	Services      string
	TotalRupees   float64
	PaidRupees    float64
	BalanceRupees float64
	Status        string
}

// InvoiceWriter is the port for outbound invoice export adapters.
type InvoiceWriter interface {
	AppendInvoice(ctx context.Context, row InvoiceRow) error
}
