package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateOnOrAfter(t *testing.T) {
	today := NewDate(2025, 6, 15)
	cases := []struct {
		d    Date
		want bool
	}{
		{NewDate(2025, 6, 14), false},
		{NewDate(2025, 6, 15), true}, // same day counts
		{NewDate(2025, 6, 16), true},
		{NewDate(2024, 12, 31), false},
	}
	for i, tc := range cases {
		if got := tc.d.OnOrAfter(today); got != tc.want {
			t.Fatalf("case %d: %s OnOrAfter %s = %v, want %v", i, tc.d, today, got, tc.want)
		}
	}
	// Time of day must not matter.
	late := Date{Time: time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)}
	if !late.OnOrAfter(today) {
		t.Fatalf("same calendar day with later clock time should count")
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2025, 3, 7)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-03-07"` {
		t.Fatalf("unexpected JSON %s", b)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v != %v", back, d)
	}
}

func TestStudentValidate(t *testing.T) {
	good := Student{Name: "Asha", Phone: "9876500000", Email: "asha@example.com"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Student{
		{Name: "", Phone: "9876500000", Email: "a@b.c"},
		{Name: "Asha", Phone: "", Email: "a@b.c"},
		{Name: "Asha", Phone: "9876500000", Email: ""},
		{Name: "  ", Phone: "9876500000", Email: "a@b.c"},
	}
	for i, s := range bads {
		if err := s.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExamBookingValidate(t *testing.T) {
	good := ExamBooking{StudentID: "stu-1", Level: "B1", Date: NewDate(2025, 9, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []ExamBooking{
		{StudentID: "", Level: "B1", Date: NewDate(2025, 9, 1)},
		{StudentID: "stu-1", Level: "", Date: NewDate(2025, 9, 1)},
		{StudentID: "stu-1", Level: "B1"}, // zero date
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{Category: ExpenseRent, Date: NewDate(2025, 1, 1), Amount: Rupees(25000)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Expense{Category: ExpenseRent, Amount: Rupees(1)}).Validate(); err == nil {
		t.Fatalf("expected error for zero date")
	}
	if err := (Expense{Category: ExpenseRent, Date: NewDate(2025, 1, 1)}).Validate(); err == nil {
		t.Fatalf("expected error for zero amount")
	}
}

func TestSeedServices(t *testing.T) {
	seed := SeedServices()
	if len(seed) != 7 {
		t.Fatalf("expected 7 seed services, got %d", len(seed))
	}
	german, prometric := 0, 0
	for _, s := range seed {
		if err := s.Validate(); err != nil {
			t.Fatalf("seed service %q invalid: %v", s.Name, err)
		}
		switch s.Category {
		case CategoryGerman:
			german++
		case CategoryPrometric:
			prometric++
		}
	}
	if german != 4 || prometric != 3 {
		t.Fatalf("expected 4 German + 3 Prometric, got %d + %d", german, prometric)
	}
}
