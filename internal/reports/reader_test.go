package reports_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger/ledgertest"
	"github.com/valeriaulyamaeva/budget-ledger/internal/logging"
	"github.com/valeriaulyamaeva/budget-ledger/internal/reports"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

func TestReader_ReadsStoredBalances(t *testing.T) {
	ctx := context.Background()
	store := ledgertest.New()
	svc := ledger.NewService(store, logging.Discard())
	owner := uuid.New()

	salary, err := svc.CreateCategory(ctx, owner, models.CategoryCreate{Name: "Salary", Type: models.Income})
	require.NoError(t, err)
	main, err := svc.CreateAccount(ctx, owner, models.AccountCreate{Name: "Main", Type: models.AccountChecking, InitialBalance: dec("100.00")})
	require.NoError(t, err)
	loans, err := svc.CreateAccount(ctx, owner, models.AccountCreate{Name: "Loans", Type: models.AccountLoan})
	require.NoError(t, err)

	_, err = svc.CreateTransaction(ctx, owner, models.TransactionCreate{AccountID: main.ID, CategoryID: salary.ID, Amount: dec("400.00"), Date: day(time.March, 4)})
	require.NoError(t, err)
	_, err = svc.CreateTransfer(ctx, owner, models.TransferCreate{
		FromAccountID: main.ID, ToAccountID: loans.ID, Type: models.TransferLoanGiven,
		Amount: dec("150.00"), Fee: dec("2.00"), Date: day(time.March, 5),
	})
	require.NoError(t, err)

	r := reports.NewReader(store)
	p := reports.MonthToDate(day(time.March, 31))

	s, err := r.Summary(ctx, owner, p, nil)
	require.NoError(t, err)
	assert.Equal(t, "400.00", s.Totals.Income.StringFixed(2))
	assert.Equal(t, "498.00", s.TotalBalance.StringFixed(2))

	nw, err := r.NetWorth(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "348.00", nw.NetWorth.StringFixed(2))
	assert.Equal(t, "498.00", nw.TotalAssets.StringFixed(2))

	byAccount, err := r.ByAccount(ctx, owner, p)
	require.NoError(t, err)
	require.Len(t, byAccount.Accounts, 2)
	assert.Equal(t, "Main", byAccount.Accounts[0].Name)

	loansReport, err := r.Loans(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, loansReport.GivenCount)
	assert.Equal(t, "Loans", loansReport.Given[0].Account)

	stats, err := r.TransferStatistics(ctx, owner, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "2.00", stats.TotalFees.StringFixed(2))

	writes := store.BalanceWrites()
	_, err = r.YearComparison(ctx, owner, 2024, 2023)
	require.NoError(t, err)
	_, err = r.MonthlyTrend(ctx, owner, 12, day(time.March, 31), &main.ID)
	require.NoError(t, err)
	_, err = r.Daily(ctx, owner, p, nil)
	require.NoError(t, err)
	_, err = r.ByCategory(ctx, owner, p, nil)
	require.NoError(t, err)
	assert.Equal(t, writes, store.BalanceWrites())
}

func discrepancies() []ledger.Discrepancy {
	return []ledger.Discrepancy{{
		AccountID:   uuid.MustParse("6f1c1d2e-0000-4000-8000-000000000001"),
		AccountName: "Main",
		Stored:      dec("1525"),
		Recomputed:  dec("1500"),
		Difference:  dec("25"),
	}}
}

func TestWriteIntegrity(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reports.WriteIntegrity(&buf, reports.FormatTable, discrepancies()))
	assert.Contains(t, buf.String(), "DIFFERENCE")
	assert.Contains(t, buf.String(), "1525.00")

	buf.Reset()
	require.NoError(t, reports.WriteIntegrity(&buf, reports.FormatTable, nil))
	assert.Contains(t, buf.String(), "consistent")

	buf.Reset()
	require.NoError(t, reports.WriteIntegrity(&buf, reports.FormatJSON, nil))
	assert.JSONEq(t, "[]", buf.String())

	buf.Reset()
	require.NoError(t, reports.WriteIntegrity(&buf, reports.FormatJSON, discrepancies()))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Main", decoded[0]["account_name"])

	buf.Reset()
	require.NoError(t, reports.WriteIntegrity(&buf, reports.FormatYAML, discrepancies()))
	assert.Contains(t, buf.String(), "account_name: Main")
	assert.Contains(t, buf.String(), `difference: "25.00"`)

	buf.Reset()
	require.NoError(t, reports.WriteIntegrity(&buf, reports.FormatCSV, discrepancies()))
	assert.Contains(t, buf.String(), "account_id,account_name,stored,recomputed,difference")
	assert.Contains(t, buf.String(), "6f1c1d2e-0000-4000-8000-000000000001,Main,1525.00,1500.00,25.00")
}

func TestParseFormat(t *testing.T) {
	f, err := reports.ParseFormat(" YAML ")
	require.NoError(t, err)
	assert.Equal(t, reports.FormatYAML, f)

	f, err = reports.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, reports.FormatTable, f)

	_, err = reports.ParseFormat("xml")
	assert.Error(t, err)
}
