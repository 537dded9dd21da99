package export

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"khata/internal/core"
	"khata/internal/kv/memory"
	"khata/internal/ledger"
)

func testLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	n := 0
	l := ledger.New(ledger.Deps{
		Store: memory.New(),
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
		Today: func() core.Date { return core.NewDate(2025, 6, 15) },
	})
	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return l
}

func TestBuildDocumentResolvesReferences(t *testing.T) {
	l := testLedger(t)
	ctx := context.Background()

	student, err := l.AddStudent(ctx, core.Student{
		Name:  "Rahul Nair",
		Phone: "9000000001",
		Email: "rahul@example.com",
	})
	if err != nil {
		t.Fatalf("add student: %v", err)
	}

	initial := &ledger.InitialPayment{Amount: core.Rupees(10000), Mode: core.ModeCash}
	inv := l.CreateInvoice(ctx, student.ID, []core.ServiceID{"svc-german-b1", "svc-prometric-basic"}, initial)

	doc := BuildDocument(l, inv)
	if doc.StudentName != "Rahul Nair" || doc.StudentPhone != "9000000001" {
		t.Errorf("student = %q / %q", doc.StudentName, doc.StudentPhone)
	}
	if len(doc.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(doc.Lines))
	}
	if doc.Lines[0].Name != "German B1" || doc.Lines[1].Name != "Prometric Basic" {
		t.Errorf("lines = %+v", doc.Lines)
	}
	if doc.Total != core.Rupees(26000) {
		t.Errorf("total = %v", doc.Total)
	}
	if doc.Paid != core.Rupees(10000) || doc.Balance != core.Rupees(16000) {
		t.Errorf("paid/balance = %v/%v", doc.Paid, doc.Balance)
	}
	if doc.Status != core.StatusPartiallyPaid {
		t.Errorf("status = %q", doc.Status)
	}
}

func TestBuildDocumentDegradesMissingReferences(t *testing.T) {
	l := testLedger(t)
	inv := l.CreateInvoice(context.Background(), "stu-gone", []core.ServiceID{"svc-gone"}, nil)

	doc := BuildDocument(l, inv)
	if doc.StudentName != "Unknown student" {
		t.Errorf("student = %q", doc.StudentName)
	}
	if len(doc.Lines) != 1 || doc.Lines[0].Name != "Unavailable service" {
		t.Errorf("lines = %+v", doc.Lines)
	}
}

func TestRenderProducesPDF(t *testing.T) {
	l := testLedger(t)
	inv := l.CreateInvoice(context.Background(), "stu-gone", []core.ServiceID{"svc-german-a1"}, nil)

	out, err := Render(BuildDocument(l, inv))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF")
	}
}
