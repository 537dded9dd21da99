// Package ledger holds the canonical state of the institute (students,
// services, invoices, exam bookings and expenses) with creation and
// mutation contracts, mirrored in full to the key-value store after
// every change.
package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"khata/internal/core"
	"khata/internal/kv"
)

// Deps are the injected collaborators: persistence, id generation and
// the clock. Zero fields fall back to production defaults.
type Deps struct {
	Store kv.Store
	NewID func() string
	Today func() core.Date
}

func (d Deps) withDefaults() Deps {
	if d.NewID == nil {
		d.NewID = randomID
	}
	if d.Today == nil {
		d.Today = func() core.Date {
			now := time.Now()
			return core.NewDate(now.Year(), int(now.Month()), now.Day())
		}
	}
	return d
}

func randomID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("id_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// InitialPayment is the optional first payment recorded at invoice
// creation time.
type InitialPayment struct {
	Amount core.Money
	Mode   core.PaymentMode
}

// Ledger owns the five collections. All mutations run under a single
// lock, re-read the store first so another process sharing it is not
// overwritten, and flush the full state before returning; there is no
// batching across mutations.
type Ledger struct {
	mu   sync.Mutex
	deps Deps

	students []core.Student
	services []core.Service
	invoices []core.Invoice
	exams    []core.ExamBooking
	expenses []core.Expense
}

// New constructs an empty ledger. Use Load to hydrate from the store.
func New(deps Deps) *Ledger {
	return &Ledger{deps: deps.withDefaults()}
}

// AddStudent validates the draft, assigns a fresh id and appends.
func (l *Ledger) AddStudent(ctx context.Context, draft core.Student) (core.Student, error) {
	if err := draft.Validate(); err != nil {
		return core.Student{}, fmt.Errorf("add student: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshLocked(ctx)

	draft.ID = core.StudentID(l.deps.NewID())
	if draft.Status == "" {
		draft.Status = core.StudentActive
	}
	l.students = append(l.students, draft)
	l.persist(ctx)
	return draft, nil
}

// AddService appends a new service. No duplicate-name check.
func (l *Ledger) AddService(ctx context.Context, draft core.Service) (core.Service, error) {
	if err := draft.Validate(); err != nil {
		return core.Service{}, fmt.Errorf("add service: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshLocked(ctx)

	draft.ID = core.ServiceID(l.deps.NewID())
	if draft.Category == "" {
		draft.Category = core.CategoryOther
	}
	l.services = append(l.services, draft)
	l.persist(ctx)
	return draft, nil
}

// UpdateServicePrice replaces the price on the matching service.
// Unknown ids are a silent no-op; found reports whether anything
// changed. Existing invoices are unaffected: they carry the total
// captured at creation.
func (l *Ledger) UpdateServicePrice(ctx context.Context, id core.ServiceID, newPrice core.Money) (core.Service, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshLocked(ctx)

	for i := range l.services {
		if l.services[i].ID == id {
			l.services[i].Price = newPrice
			l.persist(ctx)
			return l.services[i], true
		}
	}
	return core.Service{}, false
}

// CreateInvoice freezes the total as the sum of the referenced
// services' current prices. Missing service ids contribute zero.
// Duplicated ids count twice. The new invoice is prepended so the most
// recent one displays first.
func (l *Ledger) CreateInvoice(ctx context.Context, studentID core.StudentID, serviceIDs []core.ServiceID, initial *InitialPayment) core.Invoice {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshLocked(ctx)

	var total core.Money
	for _, sid := range serviceIDs {
		if svc, ok := l.serviceByIDLocked(sid); ok {
			total = total.Add(svc.Price)
		}
	}

	inv := core.Invoice{
		ID:            core.InvoiceID(l.deps.NewID()),
		InvoiceNumber: fmt.Sprintf("INV-%d", 1000+len(l.invoices)+1),
		StudentID:     studentID,
		ServiceIDs:    append([]core.ServiceID(nil), serviceIDs...),
		TotalAmount:   total,
		CreatedAt:     l.deps.Today(),
	}
	if initial != nil && initial.Amount.Paise > 0 {
		inv.Payments = append(inv.Payments, core.PaymentRecord{
			Date:   l.deps.Today(),
			Amount: initial.Amount,
			Mode:   initial.Mode,
		})
	}

	l.invoices = append([]core.Invoice{inv}, l.invoices...)
	l.persist(ctx)
	return inv
}

// AddPayment appends a payment record dated today to the matching
// invoice. Unknown invoice ids are a silent no-op. The amount is not
// clamped to the remaining balance; overpayment is permitted.
func (l *Ledger) AddPayment(ctx context.Context, id core.InvoiceID, amount core.Money, mode core.PaymentMode) (core.Invoice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshLocked(ctx)

	for i := range l.invoices {
		if l.invoices[i].ID == id {
			l.invoices[i].Payments = append(l.invoices[i].Payments, core.PaymentRecord{
				Date:   l.deps.Today(),
				Amount: amount,
				Mode:   mode,
			})
			l.persist(ctx)
			return cloneInvoice(l.invoices[i]), true
		}
	}
	return core.Invoice{}, false
}

// AddExamBooking validates the draft, assigns a fresh id and appends.
func (l *Ledger) AddExamBooking(ctx context.Context, draft core.ExamBooking) (core.ExamBooking, error) {
	if err := draft.Validate(); err != nil {
		return core.ExamBooking{}, fmt.Errorf("add exam booking: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshLocked(ctx)

	draft.ID = core.ExamBookingID(l.deps.NewID())
	if draft.Status == "" {
		draft.Status = core.ExamBooked
	}
	l.exams = append(l.exams, draft)
	l.persist(ctx)
	return draft, nil
}

// AddExpense validates the draft, assigns a fresh id and appends.
func (l *Ledger) AddExpense(ctx context.Context, draft core.Expense) (core.Expense, error) {
	if err := draft.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshLocked(ctx)

	draft.ID = core.ExpenseID(l.deps.NewID())
	if draft.Category == "" {
		draft.Category = core.ExpenseOthers
	}
	l.expenses = append(l.expenses, draft)
	l.persist(ctx)
	return draft, nil
}

// Lookups resolve weak references, tolerating absence.

func (l *Ledger) StudentByID(id core.StudentID) (core.Student, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.students {
		if s.ID == id {
			return s, true
		}
	}
	return core.Student{}, false
}

func (l *Ledger) ServiceByID(id core.ServiceID) (core.Service, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.serviceByIDLocked(id)
}

func (l *Ledger) serviceByIDLocked(id core.ServiceID) (core.Service, bool) {
	for _, s := range l.services {
		if s.ID == id {
			return s, true
		}
	}
	return core.Service{}, false
}

func (l *Ledger) InvoiceByID(id core.InvoiceID) (core.Invoice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.invoices {
		if l.invoices[i].ID == id {
			return cloneInvoice(l.invoices[i]), true
		}
	}
	return core.Invoice{}, false
}

// Collection accessors return copies; callers never see internal
// slices.

func (l *Ledger) Students() []core.Student {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Student(nil), l.students...)
}

func (l *Ledger) Services() []core.Service {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Service(nil), l.services...)
}

func (l *Ledger) Invoices() []core.Invoice {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.Invoice, len(l.invoices))
	for i := range l.invoices {
		out[i] = cloneInvoice(l.invoices[i])
	}
	return out
}

func (l *Ledger) ExamBookings() []core.ExamBooking {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.ExamBooking(nil), l.exams...)
}

func (l *Ledger) Expenses() []core.Expense {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Expense(nil), l.expenses...)
}

func cloneInvoice(inv core.Invoice) core.Invoice {
	out := inv
	out.ServiceIDs = append([]core.ServiceID(nil), inv.ServiceIDs...)
	out.Payments = append([]core.PaymentRecord(nil), inv.Payments...)
	return out
}
