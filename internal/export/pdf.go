// Package export renders printable invoice documents.
package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"

	"khata/internal/core"
	"khata/internal/ledger"
)

// Document is the resolved, print-ready view of an invoice. References
// to deleted students or services degrade to placeholders so an old
// invoice always prints.
type Document struct {
	InvoiceNumber string
	Date          string
	StudentName   string
	StudentPhone  string
	Lines         []Line
	Total         core.Money
	Paid          core.Money
	Balance       core.Money
	Status        core.PaymentStatus
	Payments      []core.PaymentRecord
}

// Line is one billed service on the invoice.
type Line struct {
	Name     string
	Category core.ServiceCategory
	Price    core.Money
}

// BuildDocument resolves an invoice against current ledger state.
func BuildDocument(l *ledger.Ledger, inv core.Invoice) Document {
	doc := Document{
		InvoiceNumber: inv.InvoiceNumber,
		Date:          inv.CreatedAt.String(),
		StudentName:   "Unknown student",
		Total:         inv.TotalAmount,
		Paid:          inv.PaidAmount(),
		Balance:       inv.Balance(),
		Status:        inv.Status(),
		Payments:      inv.Payments,
	}

	if student, ok := l.StudentByID(inv.StudentID); ok {
		doc.StudentName = student.Name
		doc.StudentPhone = student.Phone
	}

	for _, id := range inv.ServiceIDs {
		if svc, ok := l.ServiceByID(id); ok {
			doc.Lines = append(doc.Lines, Line{Name: svc.Name, Category: svc.Category, Price: svc.Price})
		} else {
			doc.Lines = append(doc.Lines, Line{Name: "Unavailable service", Price: core.Money{}})
		}
	}

	return doc
}

// rupees formats an amount for the PDF. The core fonts have no rupee
// glyph, so "Rs." stands in for the currency sign.
func rupees(m core.Money) string {
	return fmt.Sprintf("Rs. %.2f", m.Rupees())
}

// Render produces the invoice PDF.
func Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Invoice", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("%s  |  %s", doc.InvoiceNumber, doc.Date), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Student box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Billed To", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Name: %s", doc.StudentName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Phone: %s", doc.StudentPhone), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	// Services table
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Services", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(95, 7, "Service", "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 7, "Category", "1", 0, "C", true, 0, "")
	pdf.CellFormat(50, 7, "Price", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, line := range doc.Lines {
		pdf.CellFormat(95, 6, line.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, string(line.Category), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, rupees(line.Price), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(5)

	// Totals
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Payment Summary", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(63, 8, fmt.Sprintf("Total: %s", rupees(doc.Total)), "1", 0, "C", false, 0, "")
	pdf.CellFormat(63, 8, fmt.Sprintf("Paid: %s", rupees(doc.Paid)), "1", 0, "C", false, 0, "")
	pdf.CellFormat(64, 8, fmt.Sprintf("Balance: %s", rupees(doc.Balance)), "1", 1, "C", false, 0, "")

	if doc.Balance.Paise > 0 {
		pdf.SetFillColor(255, 200, 200)
	} else {
		pdf.SetFillColor(200, 255, 200)
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(190, 10, string(doc.Status), "1", 1, "C", true, 0, "")

	// Payment history
	if len(doc.Payments) > 0 {
		pdf.Ln(5)
		pdf.SetFillColor(240, 240, 240)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 8, "Payment History", "1", 1, "L", true, 0, "")
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(63, 7, "Date", "1", 0, "C", true, 0, "")
		pdf.CellFormat(63, 7, "Mode", "1", 0, "C", true, 0, "")
		pdf.CellFormat(64, 7, "Amount", "1", 1, "C", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, p := range doc.Payments {
			pdf.CellFormat(63, 6, p.Date.String(), "1", 0, "C", false, 0, "")
			pdf.CellFormat(63, 6, string(p.Mode), "1", 0, "C", false, 0, "")
			pdf.CellFormat(64, 6, rupees(p.Amount), "1", 1, "R", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
