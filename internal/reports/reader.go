package reports

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

// Reader loads the rows each report needs from the store and aggregates them.
type Reader struct {
	store ledger.Reader
}

func NewReader(store ledger.Reader) *Reader {
	return &Reader{store: store}
}

func (r *Reader) transactions(ctx context.Context, owner uuid.UUID, p Period, accountID *uuid.UUID) ([]models.Transaction, error) {
	txs, err := r.store.ListTransactions(ctx, owner, models.TransactionFilter{
		AccountID: accountID,
		From:      &p.From,
		To:        &p.To,
		Limit:     -1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return txs, nil
}

func (r *Reader) activeAccounts(ctx context.Context, owner uuid.UUID) ([]models.Account, error) {
	accounts, err := r.store.ListAccounts(ctx, owner, models.AccountFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	return accounts, nil
}

// Summary restricts the totals to one account when accountID is set; the
// balance total always covers every active account.
func (r *Reader) Summary(ctx context.Context, owner uuid.UUID, p Period, accountID *uuid.UUID) (*SummaryReport, error) {
	txs, err := r.transactions(ctx, owner, p, accountID)
	if err != nil {
		return nil, err
	}
	accounts, err := r.activeAccounts(ctx, owner)
	if err != nil {
		return nil, err
	}
	s := Summary(p, txs, accounts)
	return &s, nil
}

func (r *Reader) MonthlyTrend(ctx context.Context, owner uuid.UUID, months int, today models.Date, accountID *uuid.UUID) (*TrendReport, error) {
	p := Period{From: TrendStart(months, today), To: today}
	txs, err := r.transactions(ctx, owner, p, accountID)
	if err != nil {
		return nil, err
	}
	t := MonthlyTrend(months, today, txs)
	return &t, nil
}

func (r *Reader) ByCategory(ctx context.Context, owner uuid.UUID, p Period, typ *models.MacroType) (*CategoryReport, error) {
	txs, err := r.transactions(ctx, owner, p, nil)
	if err != nil {
		return nil, err
	}
	categories, err := r.store.ListCategories(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	c := TotalsByCategory(p, txs, categories, typ)
	return &c, nil
}

func (r *Reader) ByAccount(ctx context.Context, owner uuid.UUID, p Period) (*AccountReport, error) {
	txs, err := r.transactions(ctx, owner, p, nil)
	if err != nil {
		return nil, err
	}
	accounts, err := r.activeAccounts(ctx, owner)
	if err != nil {
		return nil, err
	}
	a := TotalsByAccount(p, accounts, txs)
	return &a, nil
}

func (r *Reader) Daily(ctx context.Context, owner uuid.UUID, p Period, accountID *uuid.UUID) (*DailyReport, error) {
	txs, err := r.transactions(ctx, owner, p, accountID)
	if err != nil {
		return nil, err
	}
	d := DailyBreakdown(p, txs)
	return &d, nil
}

func (r *Reader) YearComparison(ctx context.Context, owner uuid.UUID, year1, year2 int) (*YearReport, error) {
	first, last := year1, year2
	if first > last {
		first, last = last, first
	}
	p := Period{From: YearPeriod(first).From, To: YearPeriod(last).To}
	txs, err := r.transactions(ctx, owner, p, nil)
	if err != nil {
		return nil, err
	}
	y := YearComparison(year1, year2, txs)
	return &y, nil
}

func (r *Reader) NetWorth(ctx context.Context, owner uuid.UUID) (*NetWorthReport, error) {
	accounts, err := r.activeAccounts(ctx, owner)
	if err != nil {
		return nil, err
	}
	n := AccountsSummary(accounts)
	return &n, nil
}

// TransferStatistics covers every transfer dated within the optional bounds.
func (r *Reader) TransferStatistics(ctx context.Context, owner uuid.UUID, from, to *models.Date) (*TransferStats, error) {
	transfers, err := r.store.ListTransfers(ctx, owner, models.TransferFilter{From: from, To: to, Limit: -1})
	if err != nil {
		return nil, fmt.Errorf("failed to load transfers: %w", err)
	}
	s := TransferStatistics(transfers)
	return &s, nil
}

func (r *Reader) Loans(ctx context.Context, owner uuid.UUID) (*LoansReport, error) {
	var loans []models.Transfer
	for _, typ := range []models.TransferType{models.TransferLoanGiven, models.TransferLoanReceived} {
		transfers, err := r.store.ListTransfers(ctx, owner, models.TransferFilter{Type: &typ, Limit: -1})
		if err != nil {
			return nil, fmt.Errorf("failed to load loans: %w", err)
		}
		loans = append(loans, transfers...)
	}
	accounts, err := r.store.ListAccounts(ctx, owner, models.AccountFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	l := LoansSummary(loans, accounts)
	return &l, nil
}
