package core

const (
	StatusFullyPaid      PaymentStatus = "Fully Paid"
	StatusPaymentPending PaymentStatus = "Payment Pending"
	StatusPartiallyPaid  PaymentStatus = "Partially Paid"
)

// PaymentStatus is a derived tag, never stored.
type PaymentStatus string

// PaidAmount sums the invoice's payment records.
func (inv Invoice) PaidAmount() Money {
	var total Money
	for _, p := range inv.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Balance returns TotalAmount minus PaidAmount. Overpaid invoices have
// a negative balance; nothing clamps it.
func (inv Invoice) Balance() Money {
	return inv.TotalAmount.Sub(inv.PaidAmount())
}

// Status derives the payment status tag: fully paid when nothing is
// outstanding, pending when nothing has been paid at all, partially
// paid otherwise. Recomputed on every read.
func (inv Invoice) Status() PaymentStatus {
	balance := inv.Balance()
	switch {
	case balance.IsZero():
		return StatusFullyPaid
	case balance == inv.TotalAmount:
		return StatusPaymentPending
	default:
		return StatusPartiallyPaid
	}
}
