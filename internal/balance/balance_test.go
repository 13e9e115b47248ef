package balance_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valeriaulyamaeva/budget-ledger/internal/balance"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func account(typ models.AccountType, initial string) *models.Account {
	return &models.Account{
		ID:             uuid.New(),
		Name:           string(typ) + " account",
		Type:           typ,
		InitialBalance: dec(initial),
		CurrentBalance: dec(initial),
	}
}

func assertBalance(t *testing.T, want string, acc *models.Account) {
	t.Helper()
	assert.Truef(t, acc.CurrentBalance.Equal(dec(want)), "%s: want %s, got %s", acc.Name, want, acc.CurrentBalance)
}

func TestApplyTransactionDelta_RoundTrip(t *testing.T) {
	acc := account(models.AccountChecking, "1234.56")
	before := acc.CurrentBalance

	require.NoError(t, balance.ApplyTransactionDelta(acc, dec("0.07"), models.Income, balance.Apply))
	assertBalance(t, "1234.63", acc)
	require.NoError(t, balance.ApplyTransactionDelta(acc, dec("0.07"), models.Income, balance.Reverse))
	assert.True(t, acc.CurrentBalance.Equal(before))
	assert.Equal(t, before.String(), acc.CurrentBalance.String())

	require.NoError(t, balance.ApplyTransactionDelta(acc, dec("34.56"), models.ExpenseExtra, balance.Apply))
	assertBalance(t, "1200", acc)
}

func TestApplyTransactionDelta_UnknownType(t *testing.T) {
	acc := account(models.AccountCash, "10")
	err := balance.ApplyTransactionDelta(acc, dec("1"), models.MacroType("goal"), balance.Apply)
	assert.True(t, errors.Is(err, balance.ErrUnknownType))
	assertBalance(t, "10", acc)
}

func TestApplyTransferDelta_Symmetry(t *testing.T) {
	a := account(models.AccountChecking, "1000.00")
	b := account(models.AccountSavings, "500.00")

	require.NoError(t, balance.ApplyTransferDelta(a, b, dec("200.00"), decimal.Zero, nil, balance.Apply))
	assertBalance(t, "800.00", a)
	assertBalance(t, "700.00", b)

	require.NoError(t, balance.ApplyTransferDelta(a, b, dec("200.00"), decimal.Zero, nil, balance.Reverse))
	require.NoError(t, balance.ApplyTransferDelta(a, b, dec("200.00"), dec("5.00"), nil, balance.Apply))
	assertBalance(t, "795.00", a)
	assertBalance(t, "700.00", b)
}

func TestApplyTransferDelta_ExchangeRate(t *testing.T) {
	a := account(models.AccountChecking, "1000.00")
	b := account(models.AccountSavings, "0")
	rate := dec("1.10")

	require.NoError(t, balance.ApplyTransferDelta(a, b, dec("100.00"), dec("2.00"), &rate, balance.Apply))
	assertBalance(t, "898.00", a)
	assertBalance(t, "110.00", b)

	require.NoError(t, balance.ApplyTransferDelta(a, b, dec("100.00"), dec("2.00"), &rate, balance.Reverse))
	assertBalance(t, "1000.00", a)
	assertBalance(t, "0", b)
}

func TestApplyTransferDelta_SameAccount(t *testing.T) {
	a := account(models.AccountChecking, "1")
	assert.ErrorIs(t, balance.ApplyTransferDelta(a, a, dec("1"), decimal.Zero, nil, balance.Apply), balance.ErrSameAccount)
}

func TestConverted_Rounding(t *testing.T) {
	rate := dec("0.333333")
	assert.Equal(t, "3.33", balance.Converted(dec("10.00"), &rate).StringFixed(2))

	half := dec("1.005")
	assert.Equal(t, "1.01", balance.Converted(dec("1.00"), &half).StringFixed(2))

	assert.Equal(t, "7.50", balance.Converted(dec("7.50"), nil).StringFixed(2))
}

func TestDelta_AmountChange(t *testing.T) {
	acc := uuid.New()
	before, err := balance.TransactionEffect(balance.TransactionState{AccountID: acc, Amount: dec("40"), Type: models.Income})
	require.NoError(t, err)
	after, err := balance.TransactionEffect(balance.TransactionState{AccountID: acc, Amount: dec("65.25"), Type: models.Income})
	require.NoError(t, err)

	d := balance.Delta(before, after)
	require.Len(t, d, 1)
	assert.True(t, d[acc].Equal(dec("25.25")))
}

func TestDelta_NoChangeIsEmpty(t *testing.T) {
	s := balance.TransactionState{AccountID: uuid.New(), Amount: dec("40"), Type: models.ExpenseNecessity}
	e, err := balance.TransactionEffect(s)
	require.NoError(t, err)
	assert.Empty(t, balance.Delta(e, e))
}

func TestDelta_MatchesReverseThenApply(t *testing.T) {
	a := account(models.AccountChecking, "1000")
	b := account(models.AccountSavings, "500")
	c := account(models.AccountCash, "50")
	rate := dec("1.234567")

	old := &models.Transfer{FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("120.50"), Fee: dec("1.25")}
	updated := &models.Transfer{FromAccountID: c.ID, ToAccountID: a.ID, Amount: dec("33.33"), Fee: decimal.Zero, ExchangeRate: &rate}

	// Start from balances that already include the old transfer.
	require.NoError(t, balance.ApplyTransferDelta(a, b, old.Amount, old.Fee, old.ExchangeRate, balance.Apply))

	manual := map[uuid.UUID]*models.Account{}
	for _, acc := range []*models.Account{a, b, c} {
		cp := *acc
		manual[acc.ID] = &cp
	}
	require.NoError(t, balance.ApplyTransferDelta(manual[a.ID], manual[b.ID], old.Amount, old.Fee, old.ExchangeRate, balance.Reverse))
	require.NoError(t, balance.ApplyTransferDelta(manual[c.ID], manual[a.ID], updated.Amount, updated.Fee, updated.ExchangeRate, balance.Apply))

	before, err := balance.TransferEffect(balance.TransferStateOf(old))
	require.NoError(t, err)
	after, err := balance.TransferEffect(balance.TransferStateOf(updated))
	require.NoError(t, err)
	delta := balance.Delta(before, after)
	assert.Equal(t, []uuid.UUID{}, removeAll(delta.Accounts(), a.ID, b.ID, c.ID))

	accounts := map[uuid.UUID]*models.Account{a.ID: a, b.ID: b, c.ID: c}
	require.NoError(t, delta.ApplyTo(accounts))
	for id, acc := range accounts {
		assert.True(t, acc.CurrentBalance.Equal(manual[id].CurrentBalance), acc.Name)
	}
	assertBalance(t, "500", b)
}

func removeAll(ids []uuid.UUID, drop ...uuid.UUID) []uuid.UUID {
	out := []uuid.UUID{}
	for _, id := range ids {
		keep := true
		for _, d := range drop {
			if id == d {
				keep = false
			}
		}
		if keep {
			out = append(out, id)
		}
	}
	return out
}

func TestAdjustments_ApplyToMissingAccount(t *testing.T) {
	d := balance.Adjustments{uuid.New(): dec("1")}
	assert.Error(t, d.ApplyTo(map[uuid.UUID]*models.Account{}))
}

func TestAdjustments_AccountsSorted(t *testing.T) {
	ids := []uuid.UUID{
		uuid.MustParse("ffffffff-0000-0000-0000-000000000000"),
		uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		uuid.MustParse("7fffffff-0000-0000-0000-000000000000"),
	}
	d := balance.Adjustments{}
	for _, id := range ids {
		d[id] = dec("1")
	}
	assert.Equal(t, []uuid.UUID{ids[1], ids[2], ids[0]}, d.Accounts())
}

func TestValidateDirection(t *testing.T) {
	checking := account(models.AccountChecking, "0")
	savings := account(models.AccountSavings, "0")
	cash := account(models.AccountCash, "0")
	loan := account(models.AccountLoan, "0")
	investment := account(models.AccountInvestment, "0")
	card := account(models.AccountCreditCard, "0")

	tests := []struct {
		typ      models.TransferType
		from, to *models.Account
		side     balance.Side
	}{
		{models.TransferGeneric, card, loan, ""},
		{models.TransferWithdrawal, savings, cash, ""},
		{models.TransferWithdrawal, cash, cash, balance.Source},
		{models.TransferDeposit, cash, checking, ""},
		{models.TransferDeposit, cash, investment, balance.Destination},
		{models.TransferSavings, checking, savings, ""},
		{models.TransferSavings, cash, savings, balance.Source},
		{models.TransferInvestment, savings, investment, ""},
		{models.TransferInvestment, checking, savings, balance.Destination},
		{models.TransferLoanGiven, cash, loan, ""},
		{models.TransferLoanGiven, card, loan, balance.Source},
		{models.TransferLoanReceived, loan, cash, ""},
		{models.TransferLoanReceived, loan, card, balance.Destination},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ)+"/"+string(tt.from.Type)+"->"+string(tt.to.Type), func(t *testing.T) {
			err := balance.ValidateDirection(tt.typ, tt.from, tt.to)
			if tt.side == "" {
				assert.NoError(t, err)
				return
			}
			var de *balance.DirectionError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.side, de.Side)
		})
	}
}

func TestValidateDirection_SavingsFromCash(t *testing.T) {
	cash := account(models.AccountCash, "0")
	savings := account(models.AccountSavings, "0")

	err := balance.ValidateDirection(models.TransferSavings, cash, savings)
	var de *balance.DirectionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, []models.AccountType{models.AccountChecking}, de.Allowed)
	assert.Equal(t, models.AccountCash, de.AccountType)
	assert.Contains(t, err.Error(), "source account must be of type: checking")
	assert.Contains(t, err.Error(), "cash account (cash)")
}

func TestValidateDirection_UnknownType(t *testing.T) {
	a := account(models.AccountChecking, "0")
	b := account(models.AccountSavings, "0")
	assert.ErrorIs(t, balance.ValidateDirection("gift", a, b), balance.ErrUnknownTransferType)
}

func TestRules(t *testing.T) {
	rs := balance.Rules()
	require.Len(t, rs, len(models.TransferTypes))
	for i, r := range rs {
		assert.Equal(t, models.TransferTypes[i], r.Type)
		assert.NotEmpty(t, r.Label)
	}
	generic, ok := balance.RuleFor(models.TransferGeneric)
	require.True(t, ok)
	assert.Nil(t, generic.From)
	assert.Nil(t, generic.To)
	assert.Equal(t, "gift", balance.Label("gift"))
}

func TestRecompute(t *testing.T) {
	a := account(models.AccountChecking, "1000.00")
	b := account(models.AccountSavings, "500.00")
	a.CurrentBalance = dec("-99999")
	rate := dec("1.10")

	txs := []models.Transaction{
		{ID: uuid.New(), AccountID: a.ID, Amount: dec("500.00"), Type: models.Income},
		{ID: uuid.New(), AccountID: a.ID, Amount: dec("100.00"), Type: models.ExpenseNecessity},
		{ID: uuid.New(), AccountID: b.ID, Amount: dec("1.00"), Type: models.ExpenseExtra},
	}
	transfers := []models.Transfer{
		{FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("200.00"), Fee: dec("5.00")},
		{FromAccountID: b.ID, ToAccountID: a.ID, Amount: dec("100.00"), Fee: decimal.Zero, ExchangeRate: &rate},
	}

	got, err := balance.Recompute(a, txs, transfers)
	require.NoError(t, err)
	assert.Equal(t, "1305.00", got.StringFixed(2))

	got, err = balance.Recompute(b, txs, transfers)
	require.NoError(t, err)
	assert.Equal(t, "599.00", got.StringFixed(2))
}

func TestRecompute_UnknownType(t *testing.T) {
	a := account(models.AccountChecking, "1")
	_, err := balance.Recompute(a, []models.Transaction{{AccountID: a.ID, Amount: dec("1"), Type: "goal"}}, nil)
	assert.ErrorIs(t, err, balance.ErrUnknownType)
}
