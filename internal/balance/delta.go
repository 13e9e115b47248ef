// Package balance holds the pure balance arithmetic of the ledger: the signed
// effect of a transaction or transfer on account running balances, the
// transfer direction rules, and full replay from the initial balance.
//
// Nothing here touches storage. Callers load and lock the accounts, call
// these functions, then persist the result in the same database transaction.
package balance

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/valeriaulyamaeva/budget-ledger/models"
)

// Direction says whether an entity's effect is being added or removed.
type Direction int

const (
	Apply Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "apply"
}

var (
	// ErrUnknownType means a transaction carries a type outside the macro types.
	ErrUnknownType = errors.New("unknown transaction type")
	// ErrSameAccount means a transfer names the same account on both sides.
	ErrSameAccount = errors.New("transfer source and destination must differ")
)

// Converted returns the amount credited to the destination of a transfer,
// rounded half away from zero to cents.
func Converted(amount decimal.Decimal, rate *decimal.Decimal) decimal.Decimal {
	return models.ConvertedAmount(amount, rate)
}

func transactionSign(typ models.MacroType) (decimal.Decimal, error) {
	switch {
	case typ == models.Income:
		return decimal.NewFromInt(1), nil
	case typ.IsExpense():
		return decimal.NewFromInt(-1), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
}

// ApplyTransactionDelta moves acc's running balance by a transaction.
// Income adds and expenses subtract on Apply; Reverse does the opposite.
// The service applies effects through TransactionEffect and Delta instead;
// this is the single-account form of the same rule.
func ApplyTransactionDelta(acc *models.Account, amount decimal.Decimal, typ models.MacroType, dir Direction) error {
	sign, err := transactionSign(typ)
	if err != nil {
		return err
	}
	if dir == Reverse {
		sign = sign.Neg()
	}
	acc.CurrentBalance = acc.CurrentBalance.Add(amount.Mul(sign))
	return nil
}

// ApplyTransferDelta moves both ends of a transfer. On Apply the source loses
// amount+fee and the destination gains the converted amount. The service
// path uses TransferEffect and Delta, which agree with it.
func ApplyTransferDelta(from, to *models.Account, amount, fee decimal.Decimal, rate *decimal.Decimal, dir Direction) error {
	if from.ID == to.ID {
		return ErrSameAccount
	}
	debit := amount.Add(fee)
	credit := Converted(amount, rate)
	if dir == Reverse {
		debit, credit = debit.Neg(), credit.Neg()
	}
	from.CurrentBalance = from.CurrentBalance.Sub(debit)
	to.CurrentBalance = to.CurrentBalance.Add(credit)
	return nil
}

// Adjustments maps account ids to the signed amount their running balance
// moves by. Zero entries are never kept.
type Adjustments map[uuid.UUID]decimal.Decimal

func (a Adjustments) add(id uuid.UUID, d decimal.Decimal) {
	sum := a[id].Add(d)
	if sum.IsZero() {
		delete(a, id)
		return
	}
	a[id] = sum
}

// Add merges other into a.
func (a Adjustments) Add(other Adjustments) {
	for id, d := range other {
		a.add(id, d)
	}
}

// Accounts returns the adjusted account ids in ascending order, the order
// rows are locked in.
func (a Adjustments) Accounts() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	SortIDs(ids)
	return ids
}

// ApplyTo adds each adjustment to the matching account. Every adjusted
// account must be present.
func (a Adjustments) ApplyTo(accounts map[uuid.UUID]*models.Account) error {
	for _, id := range a.Accounts() {
		acc, ok := accounts[id]
		if !ok {
			return fmt.Errorf("adjustment for account %s which was not loaded", id)
		}
		acc.CurrentBalance = acc.CurrentBalance.Add(a[id])
	}
	return nil
}

// Delta is the single adjustment that takes balances from the effect before
// an edit to the effect after it. Either side may be nil for creates and deletes.
func Delta(before, after Adjustments) Adjustments {
	out := make(Adjustments, len(before)+len(after))
	for id, d := range after {
		out.add(id, d)
	}
	for id, d := range before {
		out.add(id, d.Neg())
	}
	return out
}

// TransactionState is the balance-relevant part of a transaction.
type TransactionState struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal
	Type      models.MacroType
}

func TransactionStateOf(t *models.Transaction) TransactionState {
	return TransactionState{AccountID: t.AccountID, Amount: t.Amount, Type: t.Type}
}

// TransferState is the balance-relevant part of a transfer.
type TransferState struct {
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
	Fee           decimal.Decimal
	ExchangeRate  *decimal.Decimal
}

func TransferStateOf(t *models.Transfer) TransferState {
	s := TransferState{
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        t.Amount,
		Fee:           t.Fee,
	}
	if t.ExchangeRate != nil {
		rate := *t.ExchangeRate
		s.ExchangeRate = &rate
	}
	return s
}

// TransactionEffect is what applying the transaction does to balances.
func TransactionEffect(s TransactionState) (Adjustments, error) {
	sign, err := transactionSign(s.Type)
	if err != nil {
		return nil, err
	}
	out := Adjustments{}
	out.add(s.AccountID, s.Amount.Mul(sign))
	return out, nil
}

// TransferEffect is what applying the transfer does to balances.
func TransferEffect(s TransferState) (Adjustments, error) {
	if s.FromAccountID == s.ToAccountID {
		return nil, ErrSameAccount
	}
	out := Adjustments{}
	out.add(s.FromAccountID, s.Amount.Add(s.Fee).Neg())
	out.add(s.ToAccountID, Converted(s.Amount, s.ExchangeRate))
	return out, nil
}

// SortIDs orders ids ascending by their byte representation.
func SortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		return lessID(ids[i], ids[j])
	})
}

func lessID(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
