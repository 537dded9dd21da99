package core

import "testing"

func invoiceWith(total Money, payments ...Money) Invoice {
	inv := Invoice{
		ID:            "inv-1",
		InvoiceNumber: "INV-1001",
		TotalAmount:   total,
		CreatedAt:     NewDate(2025, 1, 10),
	}
	for _, p := range payments {
		inv.Payments = append(inv.Payments, PaymentRecord{
			Date:   NewDate(2025, 1, 10),
			Amount: p,
			Mode:   ModeCash,
		})
	}
	return inv
}

func TestInvoiceDerivedFields(t *testing.T) {
	cases := []struct {
		name       string
		inv        Invoice
		paid       Money
		balance    Money
		status     PaymentStatus
	}{
		{"no payments", invoiceWith(Rupees(15000)), Rupees(0), Rupees(15000), StatusPaymentPending},
		{"partial", invoiceWith(Rupees(15000), Rupees(5000)), Rupees(5000), Rupees(10000), StatusPartiallyPaid},
		{"settled", invoiceWith(Rupees(15000), Rupees(5000), Rupees(10000)), Rupees(15000), Rupees(0), StatusFullyPaid},
		{"overpaid", invoiceWith(Rupees(10000), Rupees(12000)), Rupees(12000), Rupees(-2000), StatusPartiallyPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.inv.PaidAmount(); got != tc.paid {
				t.Fatalf("paid: got %v, want %v", got, tc.paid)
			}
			if got := tc.inv.Balance(); got != tc.balance {
				t.Fatalf("balance: got %v, want %v", got, tc.balance)
			}
			if got := tc.inv.Status(); got != tc.status {
				t.Fatalf("status: got %v, want %v", got, tc.status)
			}
		})
	}
}

// paidAmount + balance must equal totalAmount after every append.
func TestPaidPlusBalanceEqualsTotal(t *testing.T) {
	inv := invoiceWith(Rupees(20000))
	for _, amount := range []Money{Rupees(3000), Rupees(7000), Rupees(15000)} {
		inv.Payments = append(inv.Payments, PaymentRecord{
			Date:   NewDate(2025, 2, 1),
			Amount: amount,
			Mode:   ModeUPI,
		})
		if sum := inv.PaidAmount().Add(inv.Balance()); sum != inv.TotalAmount {
			t.Fatalf("paid+balance = %v, want %v", sum, inv.TotalAmount)
		}
	}
	if inv.Balance().Paise >= 0 {
		t.Fatalf("expected negative balance after overpayment, got %v", inv.Balance())
	}
}

func TestZeroTotalInvoiceIsFullyPaid(t *testing.T) {
	// An invoice whose referenced services all resolved to zero has a
	// zero balance and zero total, so the fully-paid branch wins.
	inv := invoiceWith(Rupees(0))
	if got := inv.Status(); got != StatusFullyPaid {
		t.Fatalf("got %v, want %v", got, StatusFullyPaid)
	}
}
