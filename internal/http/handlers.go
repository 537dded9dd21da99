package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"khata/internal/core"
	"khata/internal/export"
	"khata/internal/ledger"
	"khata/internal/report"
)

const dashCacheKey = "dashboard"

func today() core.Date {
	now := time.Now()
	return core.NewDate(now.Year(), int(now.Month()), now.Day())
}

// invalidateDashboard drops the cached snapshot after any mutation.
func (s *Server) invalidateDashboard() {
	s.dashCache.Delete(dashCacheKey)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.ErrorContext(r.Context(), "Failed to decode request body", "error", err, "url", r.URL.Path)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// Students

type createStudentRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Course    string `json:"course"`
	Batch     string `json:"batch"`
	StartDate string `json:"startDate"`
	Status    string `json:"status"`
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	draft := core.Student{
		Name:   sanitizeInput(req.Name),
		Phone:  sanitizeInput(req.Phone),
		Email:  sanitizeInput(req.Email),
		Course: sanitizeInput(req.Course),
		Batch:  sanitizeInput(req.Batch),
		Status: core.StudentStatus(req.Status),
	}
	if req.StartDate != "" {
		d, err := core.ParseDate(req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid startDate, expected YYYY-MM-DD")
			return
		}
		draft.StartDate = d
	}

	student, err := s.ledger.AddStudent(r.Context(), draft)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.invalidateDashboard()
	writeJSON(w, http.StatusCreated, student)
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Students())
}

// Services

type createServiceRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
}

func (s *Server) handleCreateService(w http.ResponseWriter, r *http.Request) {
	var req createServiceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	price, err := parseAmount(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid price, expected a positive decimal amount")
		return
	}

	svc, err := s.ledger.AddService(r.Context(), core.Service{
		Name:     sanitizeInput(req.Name),
		Category: core.ServiceCategory(req.Category),
		Price:    price,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.invalidateDashboard()
	writeJSON(w, http.StatusCreated, svc)
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Services())
}

type updatePriceRequest struct {
	Price string `json:"price"`
}

func (s *Server) handleUpdateServicePrice(w http.ResponseWriter, r *http.Request) {
	id := core.ServiceID(r.PathValue("id"))

	var req updatePriceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	price, err := parseAmount(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid price, expected a positive decimal amount")
		return
	}

	svc, found := s.ledger.UpdateServicePrice(r.Context(), id, price)
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("service %s not found", id))
		return
	}

	s.invalidateDashboard()
	writeJSON(w, http.StatusOK, svc)
}

// Invoices

// invoiceView adds the derived payment fields to the stored invoice.
type invoiceView struct {
	core.Invoice
	PaidAmount core.Money         `json:"paidAmount"`
	Balance    core.Money         `json:"balance"`
	Status     core.PaymentStatus `json:"status"`
}

func viewOf(inv core.Invoice) invoiceView {
	return invoiceView{
		Invoice:    inv,
		PaidAmount: inv.PaidAmount(),
		Balance:    inv.Balance(),
		Status:     inv.Status(),
	}
}

type initialPaymentRequest struct {
	Amount string `json:"amount"`
	Mode   string `json:"mode"`
}

type createInvoiceRequest struct {
	StudentID      string                 `json:"studentId"`
	ServiceIDs     []string               `json:"serviceIds"`
	InitialPayment *initialPaymentRequest `json:"initialPayment"`
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if _, ok := s.ledger.StudentByID(core.StudentID(req.StudentID)); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("student %s not found", req.StudentID))
		return
	}

	var initial *ledger.InitialPayment
	if req.InitialPayment != nil {
		amount, err := parseAmount(req.InitialPayment.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid initial payment amount")
			return
		}
		initial = &ledger.InitialPayment{
			Amount: amount,
			Mode:   core.PaymentMode(req.InitialPayment.Mode),
		}
	}

	serviceIDs := make([]core.ServiceID, 0, len(req.ServiceIDs))
	for _, id := range req.ServiceIDs {
		serviceIDs = append(serviceIDs, core.ServiceID(id))
	}

	inv := s.invoices.CreateInvoice(r.Context(), core.StudentID(req.StudentID), serviceIDs, initial)
	s.invalidateDashboard()
	writeJSON(w, http.StatusCreated, viewOf(inv))
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices := s.ledger.Invoices()
	views := make([]invoiceView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, viewOf(inv))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	id := core.InvoiceID(r.PathValue("id"))
	inv, found := s.ledger.InvoiceByID(id)
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("invoice %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, viewOf(inv))
}

type addPaymentRequest struct {
	Amount string `json:"amount"`
	Mode   string `json:"mode"`
}

func (s *Server) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	id := core.InvoiceID(r.PathValue("id"))

	var req addPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount, expected a positive decimal amount")
		return
	}

	inv, found := s.invoices.AddPayment(r.Context(), id, amount, core.PaymentMode(req.Mode))
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("invoice %s not found", id))
		return
	}

	s.invalidateDashboard()
	writeJSON(w, http.StatusOK, viewOf(inv))
}

func (s *Server) handleInvoicePDF(w http.ResponseWriter, r *http.Request) {
	id := core.InvoiceID(r.PathValue("id"))
	inv, found := s.ledger.InvoiceByID(id)
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("invoice %s not found", id))
		return
	}

	out, err := export.Render(export.BuildDocument(s.ledger, inv))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to render invoice PDF", "invoice_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render invoice")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", inv.InvoiceNumber))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// Exam bookings

type createExamBookingRequest struct {
	StudentID string `json:"studentId"`
	Level     string `json:"level"`
	Date      string `json:"date"`
	Status    string `json:"status"`
	QVPStatus string `json:"qvpStatus"`
	Notes     string `json:"notes"`
}

func (s *Server) handleCreateExamBooking(w http.ResponseWriter, r *http.Request) {
	var req createExamBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	booking, err := s.ledger.AddExamBooking(r.Context(), core.ExamBooking{
		StudentID: core.StudentID(req.StudentID),
		Level:     sanitizeInput(req.Level),
		Date:      date,
		Status:    core.ExamStatus(req.Status),
		QVPStatus: sanitizeInput(req.QVPStatus),
		Notes:     sanitizeInput(req.Notes),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.invalidateDashboard()
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) handleListExamBookings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.ExamBookings())
}

// Expenses

type createExpenseRequest struct {
	Category    string `json:"category"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount, expected a positive decimal amount")
		return
	}

	expense, err := s.ledger.AddExpense(r.Context(), core.Expense{
		Category:    core.ExpenseCategory(req.Category),
		Date:        date,
		Amount:      amount,
		Description: sanitizeInput(req.Description),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.invalidateDashboard()
	writeJSON(w, http.StatusCreated, expense)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Expenses())
}

// Dashboard

type dashboardView struct {
	Summary       report.Summary     `json:"summary"`
	UpcomingExams []core.ExamBooking `json:"upcomingExams"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.dashCache.Get(dashCacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	now := today()
	view := dashboardView{
		Summary:       report.Summarize(s.ledger.Invoices(), s.ledger.Expenses(), s.ledger.ExamBookings(), now),
		UpcomingExams: report.UpcomingExams(s.ledger.ExamBookings(), now, 5),
	}
	if view.UpcomingExams == nil {
		view.UpcomingExams = []core.ExamBooking{}
	}

	s.dashCache.Set(dashCacheKey, view)
	writeJSON(w, http.StatusOK, view)
}
