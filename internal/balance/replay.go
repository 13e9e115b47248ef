package balance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/valeriaulyamaeva/budget-ledger/models"
)

// Recompute replays an account's history from its initial balance. It never
// reads CurrentBalance. Rows that do not involve the account are ignored, so
// callers may pass an unfiltered history.
func Recompute(acc *models.Account, txs []models.Transaction, transfers []models.Transfer) (decimal.Decimal, error) {
	total := acc.InitialBalance
	for i := range txs {
		t := &txs[i]
		if t.AccountID != acc.ID {
			continue
		}
		sign, err := transactionSign(t.Type)
		if err != nil {
			return decimal.Zero, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		total = total.Add(t.Amount.Mul(sign))
	}
	for i := range transfers {
		tr := &transfers[i]
		if tr.ToAccountID == acc.ID {
			total = total.Add(Converted(tr.Amount, tr.ExchangeRate))
		}
		if tr.FromAccountID == acc.ID {
			total = total.Sub(tr.Amount.Add(tr.Fee))
		}
	}
	return total, nil
}
