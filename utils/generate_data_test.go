package utils

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger/ledgertest"
	"github.com/valeriaulyamaeva/budget-ledger/internal/logging"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

func TestGenerateLedger_StaysConsistent(t *testing.T) {
	ctx := context.Background()
	store := ledgertest.New()
	svc := ledger.NewService(store, logging.Discard())
	owner := uuid.New()

	res, err := GenerateLedger(ctx, svc, owner, SeedOptions{
		Accounts:     7,
		Transactions: 60,
		Transfers:    25,
		From:         models.NewDate(2024, time.January, 1),
		To:           models.NewDate(2024, time.March, 31),
		Seed:         42,
	}, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, len(demoCategories), res.Categories)
	assert.Equal(t, 7, res.Accounts)
	assert.Equal(t, 60, res.Transactions)
	assert.Equal(t, 25, res.Transfers)

	txs, err := svc.ListTransactions(ctx, owner, models.TransactionFilter{Limit: -1})
	require.NoError(t, err)
	assert.Len(t, txs, 60)

	report, err := ledger.NewReconciler(store, logging.Discard()).VerifyAll(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, report)
}

func TestGenerateLedger_RejectsReversedRange(t *testing.T) {
	svc := ledger.NewService(ledgertest.New(), logging.Discard())
	_, err := GenerateLedger(context.Background(), svc, uuid.New(), SeedOptions{
		From: models.NewDate(2024, time.March, 1),
		To:   models.NewDate(2024, time.February, 1),
	}, logging.Discard())
	assert.Error(t, err)
}
