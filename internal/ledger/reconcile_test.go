package ledger_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

func TestReconciler_BalanceEqualsReplay(t *testing.T) {
	f := newFixture(t)
	a := f.account("Main", models.AccountChecking, "1000.00")
	b := f.account("Savings", models.AccountSavings, "500.00")
	c := f.account("Wallet", models.AccountCash, "20.00")
	rate := dec("0.914")

	f.transaction(a, f.salary, "2500.00")
	groceries := f.transaction(a, f.groceries, "87.45")
	f.transaction(c, f.leisure, "12.30")
	tr := f.transfer(models.TransferCreate{FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("333.33"), Fee: dec("0.99"), ExchangeRate: &rate})
	f.transfer(models.TransferCreate{FromAccountID: a.ID, ToAccountID: c.ID, Type: models.TransferWithdrawal, Amount: dec("60.00")})

	amount := dec("91.10")
	_, err := f.svc.UpdateTransaction(f.ctx, f.owner, groceries.ID, models.TransactionUpdate{Amount: &amount, AccountID: &c.ID})
	require.NoError(t, err)
	_, err = f.svc.UpdateTransfer(f.ctx, f.owner, tr.ID, models.TransferUpdate{ClearExchangeRate: true})
	require.NoError(t, err)

	for _, acc := range []*models.Account{a, b, c} {
		recomputed, err := f.rec.Recompute(f.ctx, f.owner, acc.ID)
		require.NoError(t, err)
		assert.True(t, recomputed.Equal(f.balanceOf(acc)), acc.Name)

		d, err := f.rec.Verify(f.ctx, f.owner, acc.ID)
		require.NoError(t, err)
		assert.Nil(t, d)
	}
	f.assertConsistent()
}

func TestReconciler_DetectsAndFixesDrift(t *testing.T) {
	f := newFixture(t)
	a := f.account("Main", models.AccountChecking, "1000.00")
	b := f.account("Savings", models.AccountSavings, "0.00")
	f.transaction(a, f.salary, "500.00")
	f.store.CorruptBalance(a.ID, dec("1525.00"))

	d, err := f.rec.Verify(f.ctx, f.owner, a.ID)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, a.ID, d.AccountID)
	assert.Equal(t, "Main", d.AccountName)
	assert.True(t, d.Stored.Equal(dec("1525.00")))
	assert.True(t, d.Recomputed.Equal(dec("1500.00")))
	assert.True(t, d.Difference.Equal(dec("25.00")))

	report, err := f.rec.VerifyAll(f.ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, a.ID, report[0].AccountID)

	fixed, err := f.rec.Fix(f.ctx, f.owner, a.ID)
	require.NoError(t, err)
	assert.True(t, fixed.CurrentBalance.Equal(dec("1500.00")))
	f.assertBalance("0.00", b)
	f.assertConsistent()
}

func TestReconciler_FixIsIdempotent(t *testing.T) {
	f := newFixture(t)
	a := f.account("Main", models.AccountChecking, "10.00")
	f.transaction(a, f.groceries, "3.50")
	f.store.CorruptBalance(a.ID, dec("0"))

	_, err := f.rec.Fix(f.ctx, f.owner, a.ID)
	require.NoError(t, err)
	writes := f.store.BalanceWrites()
	first := f.balanceOf(a)

	fixed, err := f.rec.Fix(f.ctx, f.owner, a.ID)
	require.NoError(t, err)
	assert.Equal(t, writes, f.store.BalanceWrites())
	assert.True(t, fixed.CurrentBalance.Equal(first))
	assert.Equal(t, first.String(), f.balanceOf(a).String())
	f.assertBalance("6.50", a)
}

func TestReconciler_FixAll(t *testing.T) {
	f := newFixture(t)
	a := f.account("A", models.AccountChecking, "100.00")
	b := f.account("B", models.AccountSavings, "200.00")
	c := f.account("C", models.AccountCash, "300.00")
	_, err := f.svc.DeactivateAccount(f.ctx, f.owner, c.ID)
	require.NoError(t, err)
	f.store.CorruptBalance(a.ID, dec("99.99"))
	f.store.CorruptBalance(c.ID, dec("0"))

	corrected, err := f.rec.FixAll(f.ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, corrected, 2)
	ids := []uuid.UUID{corrected[0].AccountID, corrected[1].AccountID}
	assert.ElementsMatch(t, []uuid.UUID{a.ID, c.ID}, ids)

	f.assertBalance("100.00", a)
	f.assertBalance("200.00", b)
	f.assertBalance("300.00", c)

	again, err := f.rec.FixAll(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestReconciler_UnknownAccount(t *testing.T) {
	f := newFixture(t)
	_, err := f.rec.Verify(f.ctx, f.owner, uuid.New())
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	_, err = f.rec.Fix(f.ctx, f.owner, uuid.New())
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestReconciler_VerifyReadsOneSnapshot(t *testing.T) {
	f := newFixture(t)
	a := f.account("A", models.AccountChecking, "100.00")
	b := f.account("B", models.AccountSavings, "0.00")
	f.transaction(a, f.groceries, "10.00")
	f.transfer(models.TransferCreate{FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("20.00")})

	before := f.store.Snapshots()
	report, err := f.rec.VerifyAll(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Empty(t, report)
	assert.Equal(t, before+1, f.store.Snapshots())

	_, err = f.rec.Verify(f.ctx, f.owner, a.ID)
	require.NoError(t, err)
	assert.Equal(t, before+2, f.store.Snapshots())

	ctx, cancel := context.WithCancel(f.ctx)
	cancel()
	_, err = f.rec.VerifyAll(ctx, f.owner)
	assert.ErrorIs(t, err, context.Canceled)
}
