package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"khata/internal/core"
	"khata/internal/ledger"
)

// RecurringExpense is a monthly expense template (rent, salaries)
// materialized into a ledger Expense once per calendar month.
type RecurringExpense struct {
	Category    core.ExpenseCategory `json:"category"`
	Description string               `json:"description"`
	Amount      core.Money           `json:"amount"`
	DayOfMonth  int                  `json:"dayOfMonth"`
}

// LoadRecurringTemplates reads templates from a JSON file. A missing
// file means no recurring expenses are configured.
func LoadRecurringTemplates(path string) ([]RecurringExpense, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read recurring templates: %w", err)
	}
	var templates []RecurringExpense
	if err := json.Unmarshal(raw, &templates); err != nil {
		return nil, fmt.Errorf("decode recurring templates: %w", err)
	}
	return templates, nil
}

// RecurringProcessor materializes due templates into expenses.
type RecurringProcessor struct {
	ledger    *ledger.Ledger
	templates []RecurringExpense
	today     func() core.Date
}

func NewRecurringProcessor(l *ledger.Ledger, templates []RecurringExpense, today func() core.Date) *RecurringProcessor {
	if today == nil {
		today = func() core.Date {
			now := time.Now()
			return core.NewDate(now.Year(), int(now.Month()), now.Day())
		}
	}
	return &RecurringProcessor{ledger: l, templates: templates, today: today}
}

// ProcessDue appends one expense per template that is due this month
// and not yet materialized. Returns the number of expenses created.
// Safe to call repeatedly; a template already materialized for the
// current month is skipped.
func (p *RecurringProcessor) ProcessDue(ctx context.Context) (int, error) {
	today := p.today()
	created := 0

	for _, tpl := range p.templates {
		if !p.isDue(tpl, today) {
			continue
		}
		if p.alreadyMaterialized(tpl, today) {
			continue
		}

		expense := core.Expense{
			Category:    tpl.Category,
			Date:        materializationDate(tpl, today),
			Amount:      tpl.Amount,
			Description: tpl.Description,
		}
		if _, err := p.ledger.AddExpense(ctx, expense); err != nil {
			return created, fmt.Errorf("materialize recurring expense %q: %w", tpl.Description, err)
		}
		created++
		slog.InfoContext(ctx, "Recurring expense materialized",
			"description", tpl.Description,
			"category", tpl.Category,
			"amount", tpl.Amount.String())
	}

	return created, nil
}

// isDue reports whether the target day of the month has been reached.
// Templates with a target day past the month's end fire on the last
// day (e.g. day 31 in February).
func (p *RecurringProcessor) isDue(tpl RecurringExpense, today core.Date) bool {
	targetDay := tpl.DayOfMonth
	if targetDay < 1 {
		targetDay = 1
	}
	lastDayOfMonth := time.Date(today.Year(), time.Month(today.Month())+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if targetDay > lastDayOfMonth {
		targetDay = lastDayOfMonth
	}
	return today.Day() >= targetDay
}

func (p *RecurringProcessor) alreadyMaterialized(tpl RecurringExpense, today core.Date) bool {
	for _, e := range p.ledger.Expenses() {
		if e.Description == tpl.Description &&
			e.Category == tpl.Category &&
			e.Date.Year() == today.Year() &&
			e.Date.Month() == today.Month() {
			return true
		}
	}
	return false
}

func materializationDate(tpl RecurringExpense, today core.Date) core.Date {
	day := tpl.DayOfMonth
	if day < 1 {
		day = 1
	}
	lastDayOfMonth := time.Date(today.Year(), time.Month(today.Month())+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDayOfMonth {
		day = lastDayOfMonth
	}
	return core.NewDate(today.Year(), int(today.Month()), day)
}
