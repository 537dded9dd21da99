// Package report derives aggregate figures from the ledger's current
// state. Nothing in here mutates; callers recompute after every state
// change.
package report

import (
	"sort"

	"khata/internal/core"
)

// Summary is the aggregate dashboard snapshot.
type Summary struct {
	TotalIncome     core.Money `json:"totalIncome"`
	TotalExpenses   core.Money `json:"totalExpenses"`
	PendingPayments core.Money `json:"pendingPayments"`
	NetProfit       core.Money `json:"netProfit"`
	UpcomingExams   int        `json:"upcomingExams"`
}

// Summarize computes the aggregate snapshot for the given state as of
// today. PendingPayments is the sum of all outstanding balances and is
// not floored: an overpaid invoice contributes negatively.
func Summarize(invoices []core.Invoice, expenses []core.Expense, exams []core.ExamBooking, today core.Date) Summary {
	var s Summary
	for _, inv := range invoices {
		s.TotalIncome = s.TotalIncome.Add(inv.PaidAmount())
		s.PendingPayments = s.PendingPayments.Add(inv.Balance())
	}
	for _, e := range expenses {
		s.TotalExpenses = s.TotalExpenses.Add(e.Amount)
	}
	s.NetProfit = s.TotalIncome.Sub(s.TotalExpenses)
	s.UpcomingExams = len(UpcomingExams(exams, today, 0))
	return s
}

// UpcomingExams returns bookings dated on or after today, ascending by
// date. Ties keep original collection order. A positive limit
// truncates the result; zero means no limit.
func UpcomingExams(exams []core.ExamBooking, today core.Date, limit int) []core.ExamBooking {
	var upcoming []core.ExamBooking
	for _, e := range exams {
		if e.Date.OnOrAfter(today) {
			upcoming = append(upcoming, e)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Date.Before(upcoming[j].Date.Time)
	})
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming
}
