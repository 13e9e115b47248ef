package reports

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/valeriaulyamaeva/budget-ledger/models"
)

const monthLayout = "2006-01"

type SummaryReport struct {
	Period          Period          `json:"period"`
	Days            int             `json:"days"`
	Totals          Totals          `json:"totals"`
	TotalBalance    decimal.Decimal `json:"total_balance"`
	AccountCount    int             `json:"account_count"`
	AvgDailyExpense decimal.Decimal `json:"avg_daily_expense"`
	SavingsRate     decimal.Decimal `json:"savings_rate"`
}

// Summary totals the period's transactions and adds up the current balance
// of the active accounts.
func Summary(p Period, txs []models.Transaction, accounts []models.Account) SummaryReport {
	r := SummaryReport{Period: p, Days: p.Days()}
	for i := range txs {
		if p.Contains(txs[i].Date) {
			r.Totals.Add(&txs[i])
		}
	}
	for _, a := range accounts {
		if !a.IsActive {
			continue
		}
		r.TotalBalance = r.TotalBalance.Add(a.CurrentBalance)
		r.AccountCount++
	}
	if r.Days > 0 {
		r.AvgDailyExpense = r.Totals.Expenses.Div(decimal.NewFromInt(int64(r.Days))).Round(2)
	}
	r.SavingsRate = percent(r.Totals.Net, r.Totals.Income)
	return r
}

type MonthTotals struct {
	Month string `json:"month"`
	Totals
}

type TrendReport struct {
	StartMonth string        `json:"start_month"`
	EndMonth   string        `json:"end_month"`
	Months     []MonthTotals `json:"data"`
}

// TrendStart is the first day of the oldest month covered by MonthlyTrend.
func TrendStart(months int, today models.Date) models.Date {
	if months < 1 {
		months = 1
	}
	return models.DateOf(time.Date(today.Year(), today.Month()-time.Month(months-1), 1, 0, 0, 0, 0, time.UTC))
}

// MonthlyTrend groups transactions by calendar month over the last months
// months up to today. Months without transactions are present with zero totals.
func MonthlyTrend(months int, today models.Date, txs []models.Transaction) TrendReport {
	start := TrendStart(months, today)
	r := TrendReport{StartMonth: start.Format(monthLayout), EndMonth: today.Format(monthLayout)}

	index := map[string]int{}
	for m := start.Time; !m.After(today.Time); m = m.AddDate(0, 1, 0) {
		key := m.Format(monthLayout)
		index[key] = len(r.Months)
		r.Months = append(r.Months, MonthTotals{Month: key})
	}
	for i := range txs {
		if txs[i].Date.Before(start.Time) || txs[i].Date.After(today.Time) {
			continue
		}
		if k, ok := index[txs[i].Date.Format(monthLayout)]; ok {
			r.Months[k].Add(&txs[i])
		}
	}
	return r
}

type CategoryTotal struct {
	CategoryID uuid.UUID        `json:"category_id"`
	Name       string           `json:"category_name"`
	FullName   string           `json:"category_full_name"`
	Type       models.MacroType `json:"category_type"`
	Color      *string          `json:"category_color,omitempty"`
	Icon       *string          `json:"category_icon,omitempty"`
	Total      decimal.Decimal  `json:"total"`
	Count      int              `json:"transaction_count"`
	Percentage decimal.Decimal  `json:"percentage"`
}

type CategoryReport struct {
	Period     Period          `json:"period"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	Categories []CategoryTotal `json:"categories"`
}

// TotalsByCategory sums the period's transactions per category, largest first.
// A nil typ keeps every macro type. Transactions whose category is not in
// categories are left out.
func TotalsByCategory(p Period, txs []models.Transaction, categories []models.Category, typ *models.MacroType) CategoryReport {
	byID := make(map[uuid.UUID]*models.Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}

	totals := map[uuid.UUID]*CategoryTotal{}
	for i := range txs {
		t := &txs[i]
		if !p.Contains(t.Date) || (typ != nil && t.Type != *typ) {
			continue
		}
		c, ok := byID[t.CategoryID]
		if !ok {
			continue
		}
		ct, ok := totals[c.ID]
		if !ok {
			ct = &CategoryTotal{
				CategoryID: c.ID,
				Name:       c.Name,
				FullName:   fullName(c, byID),
				Type:       c.Type,
				Color:      c.Color,
				Icon:       c.Icon,
			}
			totals[c.ID] = ct
		}
		ct.Total = ct.Total.Add(t.Amount)
		ct.Count++
	}

	r := CategoryReport{Period: p, Categories: make([]CategoryTotal, 0, len(totals))}
	for _, ct := range totals {
		r.GrandTotal = r.GrandTotal.Add(ct.Total)
		r.Categories = append(r.Categories, *ct)
	}
	for i := range r.Categories {
		r.Categories[i].Percentage = percent(r.Categories[i].Total, r.GrandTotal)
	}
	sort.Slice(r.Categories, func(i, j int) bool {
		a, b := r.Categories[i], r.Categories[j]
		if !a.Total.Equal(b.Total) {
			return a.Total.GreaterThan(b.Total)
		}
		return a.FullName < b.FullName
	})
	return r
}

func fullName(c *models.Category, byID map[uuid.UUID]*models.Category) string {
	if c.ParentID == nil {
		return c.Name
	}
	if parent, ok := byID[*c.ParentID]; ok {
		return parent.Name + " > " + c.Name
	}
	return c.Name
}

type AccountTotal struct {
	AccountID      uuid.UUID          `json:"account_id"`
	Name           string             `json:"account_name"`
	Type           models.AccountType `json:"account_type"`
	Color          *string            `json:"account_color,omitempty"`
	Currency       string             `json:"currency"`
	CurrentBalance decimal.Decimal    `json:"current_balance"`
	PeriodIncome   decimal.Decimal    `json:"period_income"`
	PeriodExpenses decimal.Decimal    `json:"period_expenses"`
	PeriodNet      decimal.Decimal    `json:"period_net"`
	Count          int                `json:"transaction_count"`
}

type AccountReport struct {
	Period        Period          `json:"period"`
	Accounts      []AccountTotal  `json:"accounts"`
	TotalBalance  decimal.Decimal `json:"total_balance"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
}

// TotalsByAccount lists every active account with its stored balance and the
// period's income and expenses, highest balance first.
func TotalsByAccount(p Period, accounts []models.Account, txs []models.Transaction) AccountReport {
	perAccount := map[uuid.UUID]*Totals{}
	for i := range txs {
		if !p.Contains(txs[i].Date) {
			continue
		}
		t, ok := perAccount[txs[i].AccountID]
		if !ok {
			t = &Totals{}
			perAccount[txs[i].AccountID] = t
		}
		t.Add(&txs[i])
	}

	r := AccountReport{Period: p, Accounts: []AccountTotal{}}
	for _, a := range accounts {
		if !a.IsActive {
			continue
		}
		var t Totals
		if pt, ok := perAccount[a.ID]; ok {
			t = *pt
		}
		r.Accounts = append(r.Accounts, AccountTotal{
			AccountID:      a.ID,
			Name:           a.Name,
			Type:           a.Type,
			Color:          a.Color,
			Currency:       a.Currency,
			CurrentBalance: a.CurrentBalance,
			PeriodIncome:   t.Income,
			PeriodExpenses: t.Expenses,
			PeriodNet:      t.Net,
			Count:          t.TransactionCount,
		})
		r.TotalBalance = r.TotalBalance.Add(a.CurrentBalance)
		r.TotalIncome = r.TotalIncome.Add(t.Income)
		r.TotalExpenses = r.TotalExpenses.Add(t.Expenses)
	}
	sort.SliceStable(r.Accounts, func(i, j int) bool {
		return r.Accounts[i].CurrentBalance.GreaterThan(r.Accounts[j].CurrentBalance)
	})
	return r
}

type DayTotals struct {
	Date models.Date `json:"date"`
	Totals
}

type DailyReport struct {
	Period Period      `json:"period"`
	Days   []DayTotals `json:"data"`
}

// DailyBreakdown has one entry per day of the period, oldest first, including
// days without transactions.
func DailyBreakdown(p Period, txs []models.Transaction) DailyReport {
	r := DailyReport{Period: p, Days: make([]DayTotals, 0, p.Days())}
	for d := p.From; !d.After(p.To.Time); d = d.AddDays(1) {
		r.Days = append(r.Days, DayTotals{Date: d})
	}
	for i := range txs {
		if !p.Contains(txs[i].Date) {
			continue
		}
		k := int(txs[i].Date.Sub(p.From.Time) / (24 * time.Hour))
		r.Days[k].Add(&txs[i])
	}
	return r
}

type MonthComparison struct {
	Month     int    `json:"month"`
	MonthName string `json:"month_name"`
	Year1     Flow   `json:"year1"`
	Year2     Flow   `json:"year2"`
}

type YearReport struct {
	Year1       int               `json:"year1"`
	Year2       int               `json:"year2"`
	Months      []MonthComparison `json:"comparison"`
	Year1Totals Flow              `json:"year1_totals"`
	Year2Totals Flow              `json:"year2_totals"`
}

// YearPeriod spans January 1st to December 31st of year.
func YearPeriod(year int) Period {
	return Period{From: models.NewDate(year, time.January, 1), To: models.NewDate(year, time.December, 31)}
}

// YearComparison puts the monthly flows of two years side by side.
func YearComparison(year1, year2 int, txs []models.Transaction) YearReport {
	var m1, m2 [12]Totals
	for i := range txs {
		t := &txs[i]
		m := t.Date.Month() - 1
		if t.Date.Year() == year1 {
			m1[m].Add(t)
		}
		if t.Date.Year() == year2 {
			m2[m].Add(t)
		}
	}

	r := YearReport{Year1: year1, Year2: year2, Months: make([]MonthComparison, 12)}
	for i := 0; i < 12; i++ {
		r.Months[i] = MonthComparison{
			Month:     i + 1,
			MonthName: time.Month(i + 1).String(),
			Year1:     m1[i].Flow(),
			Year2:     m2[i].Flow(),
		}
		r.Year1Totals = r.Year1Totals.plus(r.Months[i].Year1)
		r.Year2Totals = r.Year2Totals.plus(r.Months[i].Year2)
	}
	return r
}
