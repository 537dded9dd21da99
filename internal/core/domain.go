package core

import (
	"errors"
	"strings"
	"time"
)

const (
	CategoryGerman    ServiceCategory = "German"
	CategoryPrometric ServiceCategory = "Prometric"
	CategoryOther     ServiceCategory = "Other"
)

const (
	StudentActive    StudentStatus = "Active"
	StudentCompleted StudentStatus = "Completed"
	StudentDropped   StudentStatus = "Dropped"
)

const (
	ModeUPI          PaymentMode = "UPI"
	ModeCash         PaymentMode = "Cash"
	ModeBankTransfer PaymentMode = "Bank Transfer"
)

const (
	ExamBooked  ExamStatus = "Booked"
	ExamPending ExamStatus = "Pending"
	ExamPassed  ExamStatus = "Passed"
	ExamFailed  ExamStatus = "Failed"
)

const (
	ExpenseRent      ExpenseCategory = "Rent"
	ExpenseSalary    ExpenseCategory = "Salary"
	ExpenseMarketing ExpenseCategory = "Marketing"
	ExpenseUtilities ExpenseCategory = "Utilities"
	ExpenseOthers    ExpenseCategory = "Others"
)

type (
	ServiceCategory string
	StudentStatus   string
	PaymentMode     string
	ExamStatus      string
	ExpenseCategory string

	// Opaque unique identifiers. The core assumes nothing about their
	// format, only uniqueness within a running session.
	StudentID     string
	ServiceID     string
	InvoiceID     string
	ExamBookingID string
	ExpenseID     string

	Date struct {
		time.Time
	}

	Money struct {
		Paise int64 `json:"paise"`
	}

	// Service is a billable course or plan. Price may be edited in
	// place; invoices keep the total captured at creation time.
	Service struct {
		ID       ServiceID       `json:"id"`
		Category ServiceCategory `json:"category"`
		Name     string          `json:"name"`
		Price    Money           `json:"price"`
	}

	Student struct {
		ID        StudentID     `json:"id"`
		Name      string        `json:"name"`
		Phone     string        `json:"phone"`
		Email     string        `json:"email"`
		Course    string        `json:"course"`
		Batch     string        `json:"batch"`
		StartDate Date          `json:"startDate"`
		Status    StudentStatus `json:"status"`
	}

	// PaymentRecord lives only inside its parent Invoice.
	PaymentRecord struct {
		Date   Date        `json:"date"`
		Amount Money       `json:"amount"`
		Mode   PaymentMode `json:"mode"`
	}

	Invoice struct {
		ID            InvoiceID       `json:"id"`
		InvoiceNumber string          `json:"invoiceNumber"`
		StudentID     StudentID       `json:"studentId"`
		ServiceIDs    []ServiceID     `json:"serviceIds"`
		TotalAmount   Money           `json:"totalAmount"`
		Payments      []PaymentRecord `json:"payments"`
		CreatedAt     Date            `json:"createdAt"`
	}

	ExamBooking struct {
		ID        ExamBookingID `json:"id"`
		StudentID StudentID     `json:"studentId"`
		Level     string        `json:"level"`
		Date      Date          `json:"date"`
		Status    ExamStatus    `json:"status"`
		QVPStatus string        `json:"qvpStatus"`
		Notes     string        `json:"notes"`
	}

	Expense struct {
		ID          ExpenseID       `json:"id"`
		Category    ExpenseCategory `json:"category"`
		Date        Date            `json:"date"`
		Amount      Money           `json:"amount"`
		Description string          `json:"description"`
	}
)

var (
	ErrEmptyName      = errors.New("empty name")
	ErrEmptyPhone     = errors.New("empty phone")
	ErrEmptyEmail     = errors.New("empty email")
	ErrEmptyLevel     = errors.New("empty level")
	ErrMissingStudent = errors.New("missing student id")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidDate    = errors.New("invalid date")
)

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// OnOrAfter reports whether d falls on the same calendar day as other
// or later. Time of day is ignored.
func (d Date) OnOrAfter(other Date) bool {
	dy, dm, dd := d.Date()
	oy, om, od := other.Date()
	a := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	b := time.Date(oy, om, od, 0, 0, 0, 0, time.UTC)
	return !a.Before(b)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (s Student) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(s.Phone) == "" {
		return ErrEmptyPhone
	}
	if strings.TrimSpace(s.Email) == "" {
		return ErrEmptyEmail
	}
	return nil
}

func (s Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (b ExamBooking) Validate() error {
	if strings.TrimSpace(string(b.StudentID)) == "" {
		return ErrMissingStudent
	}
	if strings.TrimSpace(b.Level) == "" {
		return ErrEmptyLevel
	}
	if err := b.Date.Validate(); err != nil {
		return err
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	return nil
}
