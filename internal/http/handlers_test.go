package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"khata/internal/core"
	"khata/internal/kv/memory"
	"khata/internal/ledger"
	"khata/internal/services"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	n := 0
	l := ledger.New(ledger.Deps{
		Store: memory.New(),
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	s := NewServer(":0", l, services.NewInvoiceService(l, nil))
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func createStudent(t *testing.T, s *Server) core.Student {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/students", map[string]string{
		"name":  "Priya Menon",
		"phone": "9800000000",
		"email": "priya@example.com",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create student: status %d, body %s", rec.Code, rec.Body)
	}
	return decode[core.Student](t, rec)
}

func TestCreateStudentValidation(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/students", map[string]string{
		"name": "No Contact",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/students", nil)
	students := decode[[]core.Student](t, rec)
	if len(students) != 0 {
		t.Fatalf("rejected student must not be stored, got %d", len(students))
	}
}

func TestSeededServicesAreListed(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/services", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	svcs := decode[[]core.Service](t, rec)
	if len(svcs) != 7 {
		t.Fatalf("expected 7 seeded services, got %d", len(svcs))
	}
}

func TestUpdateServicePrice(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPut, "/api/services/svc-german-a1/price", map[string]string{"price": "16500"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body)
	}
	svc := decode[core.Service](t, rec)
	if svc.Price != core.Rupees(16500) {
		t.Errorf("price = %v", svc.Price)
	}

	// Unknown id
	rec = doJSON(t, s, http.MethodPut, "/api/services/svc-nope/price", map[string]string{"price": "100"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: expected 404, got %d", rec.Code)
	}

	// Negative price rejected at the boundary
	rec = doJSON(t, s, http.MethodPut, "/api/services/svc-german-a1/price", map[string]string{"price": "-5"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative price: expected 400, got %d", rec.Code)
	}
}

func TestInvoiceLifecycle(t *testing.T) {
	s := testServer(t)
	student := createStudent(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/invoices", map[string]any{
		"studentId":  string(student.ID),
		"serviceIds": []string{"svc-german-a1"},
		"initialPayment": map[string]string{
			"amount": "5000",
			"mode":   "Cash",
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create invoice: status %d, body %s", rec.Code, rec.Body)
	}
	inv := decode[invoiceView](t, rec)
	if inv.Invoice.InvoiceNumber != "INV-1001" {
		t.Errorf("number = %q", inv.Invoice.InvoiceNumber)
	}
	if inv.Invoice.TotalAmount != core.Rupees(15000) {
		t.Errorf("total = %v", inv.Invoice.TotalAmount)
	}
	if inv.Balance != core.Rupees(10000) || inv.Status != core.StatusPartiallyPaid {
		t.Errorf("balance/status = %v/%q", inv.Balance, inv.Status)
	}

	// Settle the balance.
	rec = doJSON(t, s, http.MethodPost, "/api/invoices/"+string(inv.Invoice.ID)+"/payments", map[string]string{
		"amount": "10000",
		"mode":   "UPI",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add payment: status %d, body %s", rec.Code, rec.Body)
	}
	paid := decode[invoiceView](t, rec)
	if paid.Status != core.StatusFullyPaid || !paid.Balance.IsZero() {
		t.Errorf("after settle: status %q balance %v", paid.Status, paid.Balance)
	}

	// Unknown invoice id.
	rec = doJSON(t, s, http.MethodPost, "/api/invoices/inv-ghost/payments", map[string]string{
		"amount": "1", "mode": "Cash",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown invoice: expected 404, got %d", rec.Code)
	}
}

func TestCreateInvoiceUnknownStudentRejected(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/invoices", map[string]any{
		"studentId":  "stu-ghost",
		"serviceIds": []string{"svc-german-a1"},
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestInvoicePDFDownload(t *testing.T) {
	s := testServer(t)
	student := createStudent(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/invoices", map[string]any{
		"studentId":  string(student.ID),
		"serviceIds": []string{"svc-prometric-basic"},
	})
	inv := decode[invoiceView](t, rec)

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/"+string(inv.Invoice.ID)+"/pdf", nil)
	out := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(out, req)

	if out.Code != http.StatusOK {
		t.Fatalf("status %d", out.Code)
	}
	if ct := out.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if !bytes.HasPrefix(out.Body.Bytes(), []byte("%PDF")) {
		t.Errorf("body is not a PDF")
	}
}

func TestDashboardReflectsMutations(t *testing.T) {
	s := testServer(t)
	student := createStudent(t, s)

	rec := doJSON(t, s, http.MethodGet, "/api/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	empty := decode[dashboardView](t, rec)
	if !empty.Summary.TotalIncome.IsZero() {
		t.Errorf("income = %v", empty.Summary.TotalIncome)
	}

	doJSON(t, s, http.MethodPost, "/api/invoices", map[string]any{
		"studentId":  string(student.ID),
		"serviceIds": []string{"svc-german-a1"},
		"initialPayment": map[string]string{
			"amount": "7000",
			"mode":   "Bank Transfer",
		},
	})
	doJSON(t, s, http.MethodPost, "/api/expenses", map[string]string{
		"category":    "Rent",
		"date":        "2025-06-01",
		"amount":      "2000",
		"description": "June rent",
	})

	// The cached snapshot must have been invalidated by the mutations.
	rec = doJSON(t, s, http.MethodGet, "/api/dashboard", nil)
	dash := decode[dashboardView](t, rec)
	if dash.Summary.TotalIncome != core.Rupees(7000) {
		t.Errorf("income = %v", dash.Summary.TotalIncome)
	}
	if dash.Summary.TotalExpenses != core.Rupees(2000) {
		t.Errorf("expenses = %v", dash.Summary.TotalExpenses)
	}
	if dash.Summary.PendingPayments != core.Rupees(8000) {
		t.Errorf("pending = %v", dash.Summary.PendingPayments)
	}
	if dash.Summary.NetProfit != core.Rupees(5000) {
		t.Errorf("net = %v", dash.Summary.NetProfit)
	}
}

func TestCreateExamBookingValidation(t *testing.T) {
	s := testServer(t)
	student := createStudent(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/exams", map[string]string{
		"studentId": string(student.ID),
		"level":     "B1",
		"date":      "2027-01-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body)
	}
	booking := decode[core.ExamBooking](t, rec)
	if booking.Status != core.ExamBooked {
		t.Errorf("default status = %q", booking.Status)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/exams", map[string]string{
		"studentId": string(student.ID),
		"level":     "B1",
		"date":      "10/01/2027",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date: expected 400, got %d", rec.Code)
	}
}

func TestMalformedBodyRejected(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/students", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
