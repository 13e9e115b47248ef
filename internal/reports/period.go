// Package reports aggregates ledger rows into read-only analytics. Nothing
// here writes to the store; account balances are taken as stored.
package reports

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/valeriaulyamaeva/budget-ledger/models"
)

// Period is an inclusive range of calendar days.
type Period struct {
	From models.Date `json:"start_date"`
	To   models.Date `json:"end_date"`
}

func NewPeriod(from, to models.Date) (Period, error) {
	if to.Before(from.Time) {
		return Period{}, fmt.Errorf("end date %s is before start date %s", to, from)
	}
	return Period{From: from, To: to}, nil
}

// MonthToDate runs from the first day of today's month to today.
func MonthToDate(today models.Date) Period {
	return Period{From: models.NewDate(today.Year(), today.Month(), 1), To: today}
}

// LastDays runs from n days before today up to today.
func LastDays(today models.Date, n int) Period {
	return Period{From: today.AddDays(-n), To: today}
}

// Days counts the days in the period, both ends included.
func (p Period) Days() int {
	return int(p.To.Sub(p.From.Time)/(24*time.Hour)) + 1
}

func (p Period) Contains(d models.Date) bool {
	return !d.Before(p.From.Time) && !d.After(p.To.Time)
}

// Totals sums transactions per macro type. Expenses is necessity plus extra.
type Totals struct {
	Income           decimal.Decimal `json:"income"`
	ExpenseNecessity decimal.Decimal `json:"expense_necessity"`
	ExpenseExtra     decimal.Decimal `json:"expense_extra"`
	Expenses         decimal.Decimal `json:"expenses"`
	Net              decimal.Decimal `json:"net"`
	TransactionCount int             `json:"transaction_count"`
}

func (t *Totals) Add(tx *models.Transaction) {
	switch tx.Type {
	case models.Income:
		t.Income = t.Income.Add(tx.Amount)
	case models.ExpenseNecessity:
		t.ExpenseNecessity = t.ExpenseNecessity.Add(tx.Amount)
		t.Expenses = t.Expenses.Add(tx.Amount)
	case models.ExpenseExtra:
		t.ExpenseExtra = t.ExpenseExtra.Add(tx.Amount)
		t.Expenses = t.Expenses.Add(tx.Amount)
	}
	t.Net = t.Income.Sub(t.Expenses)
	t.TransactionCount++
}

// Flow is the short form of Totals used in side-by-side comparisons.
type Flow struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

func (t Totals) Flow() Flow {
	return Flow{Income: t.Income, Expenses: t.Expenses, Net: t.Net}
}

func (f Flow) plus(o Flow) Flow {
	return Flow{Income: f.Income.Add(o.Income), Expenses: f.Expenses.Add(o.Expenses), Net: f.Net.Add(o.Net)}
}

var hundred = decimal.NewFromInt(100)

// percent is part/whole*100 rounded to cents, or zero when whole is not positive.
func percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(whole).Round(2)
}
