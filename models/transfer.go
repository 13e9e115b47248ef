package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransferType string

const (
	TransferGeneric      TransferType = "generic"
	TransferWithdrawal   TransferType = "withdrawal"
	TransferDeposit      TransferType = "deposit"
	TransferSavings      TransferType = "savings"
	TransferInvestment   TransferType = "investment"
	TransferLoanGiven    TransferType = "loan_given"
	TransferLoanReceived TransferType = "loan_received"
)

var TransferTypes = []TransferType{
	TransferGeneric, TransferWithdrawal, TransferDeposit, TransferSavings,
	TransferInvestment, TransferLoanGiven, TransferLoanReceived,
}

func ParseTransferType(s string) (TransferType, error) {
	t := TransferType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range TransferTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fieldErr("transfer_type", "transfer type must be one of: %s", joinTypes(TransferTypes))
}

// Transfer moves money between two accounts of the same owner.
//
// The source loses Amount+Fee. The destination gains Amount, multiplied by
// ExchangeRate when one is set.
type Transfer struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	UserID        uuid.UUID        `json:"user_id" db:"user_id"`
	FromAccountID uuid.UUID        `json:"from_account_id" db:"from_account_id"`
	ToAccountID   uuid.UUID        `json:"to_account_id" db:"to_account_id"`
	Type          TransferType     `json:"transfer_type" db:"transfer_type"`
	Amount        decimal.Decimal  `json:"amount" db:"amount"`
	ExchangeRate  *decimal.Decimal `json:"exchange_rate,omitempty" db:"exchange_rate"`
	Fee           decimal.Decimal  `json:"fee" db:"fee"`
	Date          Date             `json:"date" db:"date"`
	Description   *string          `json:"description,omitempty" db:"description"`
	Notes         *string          `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}

// Involves reports whether the transfer touches the account on either side.
func (t *Transfer) Involves(accountID uuid.UUID) bool {
	return t.FromAccountID == accountID || t.ToAccountID == accountID
}

type TransferCreate struct {
	FromAccountID uuid.UUID        `json:"from_account_id"`
	ToAccountID   uuid.UUID        `json:"to_account_id"`
	Type          TransferType     `json:"transfer_type"`
	Amount        decimal.Decimal  `json:"amount"`
	ExchangeRate  *decimal.Decimal `json:"exchange_rate,omitempty"`
	Fee           decimal.Decimal  `json:"fee"`
	Date          Date             `json:"date"`
	Description   *string          `json:"description,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

func (in *TransferCreate) Validate() error {
	if in.FromAccountID == uuid.Nil {
		return fieldErr("from_account_id", "is required")
	}
	if in.ToAccountID == uuid.Nil {
		return fieldErr("to_account_id", "is required")
	}
	if in.FromAccountID == in.ToAccountID {
		return fieldErr("to_account_id", "source and destination accounts must be different")
	}
	if in.Type == "" {
		in.Type = TransferGeneric
	}
	var err error
	if in.Type, err = ParseTransferType(string(in.Type)); err != nil {
		return err
	}
	if err = ValidateAmount("amount", in.Amount); err != nil {
		return err
	}
	if err = ValidateFee(in.Fee); err != nil {
		return err
	}
	if in.ExchangeRate != nil {
		if err = ValidateExchangeRate(*in.ExchangeRate); err != nil {
			return err
		}
	}
	if in.Date.IsZero() {
		return fieldErr("date", "is required")
	}
	if err = ValidateConverted(in.Amount, in.ExchangeRate); err != nil {
		return err
	}
	if in.Description, err = normalizeText("description", in.Description, MaxDescription); err != nil {
		return err
	}
	in.Notes, err = normalizeText("notes", in.Notes, MaxNotes)
	return err
}

func (in TransferCreate) NewTransfer(owner uuid.UUID, now time.Time) *Transfer {
	return &Transfer{
		ID:            uuid.New(),
		UserID:        owner,
		FromAccountID: in.FromAccountID,
		ToAccountID:   in.ToAccountID,
		Type:          in.Type,
		Amount:        in.Amount,
		ExchangeRate:  in.ExchangeRate,
		Fee:           in.Fee,
		Date:          in.Date,
		Description:   in.Description,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// TransferUpdate holds a partial update; nil fields are left unchanged and
// blank description or notes clear the field.
// ClearExchangeRate removes a stored rate, since a nil ExchangeRate means "unset".
type TransferUpdate struct {
	FromAccountID     *uuid.UUID       `json:"from_account_id,omitempty"`
	ToAccountID       *uuid.UUID       `json:"to_account_id,omitempty"`
	Type              *TransferType    `json:"transfer_type,omitempty"`
	Amount            *decimal.Decimal `json:"amount,omitempty"`
	ExchangeRate      *decimal.Decimal `json:"exchange_rate,omitempty"`
	ClearExchangeRate bool             `json:"clear_exchange_rate,omitempty"`
	Fee               *decimal.Decimal `json:"fee,omitempty"`
	Date              *Date            `json:"date,omitempty"`
	Description       *string          `json:"description,omitempty"`
	Notes             *string          `json:"notes,omitempty"`
}

func (in *TransferUpdate) Validate() error {
	if in.FromAccountID != nil && *in.FromAccountID == uuid.Nil {
		return fieldErr("from_account_id", "cannot be empty")
	}
	if in.ToAccountID != nil && *in.ToAccountID == uuid.Nil {
		return fieldErr("to_account_id", "cannot be empty")
	}
	if in.Type != nil {
		t, err := ParseTransferType(string(*in.Type))
		if err != nil {
			return err
		}
		in.Type = &t
	}
	if in.Amount != nil {
		if err := ValidateAmount("amount", *in.Amount); err != nil {
			return err
		}
	}
	if in.Fee != nil {
		if err := ValidateFee(*in.Fee); err != nil {
			return err
		}
	}
	if in.ExchangeRate != nil {
		if in.ClearExchangeRate {
			return fieldErr("exchange_rate", "cannot be set and cleared at the same time")
		}
		if err := ValidateExchangeRate(*in.ExchangeRate); err != nil {
			return err
		}
	}
	if in.Date != nil && in.Date.IsZero() {
		return fieldErr("date", "cannot be empty")
	}
	var err error
	if in.Amount != nil && in.ExchangeRate != nil {
		if err = ValidateConverted(*in.Amount, in.ExchangeRate); err != nil {
			return err
		}
	}
	if in.Description, err = normalizeUpdateText("description", in.Description, MaxDescription); err != nil {
		return err
	}
	in.Notes, err = normalizeUpdateText("notes", in.Notes, MaxNotes)
	return err
}

// ApplyTo copies the set fields onto t. The caller checks that the resulting
// account pair is still distinct.
func (in TransferUpdate) ApplyTo(t *Transfer, now time.Time) {
	if in.FromAccountID != nil {
		t.FromAccountID = *in.FromAccountID
	}
	if in.ToAccountID != nil {
		t.ToAccountID = *in.ToAccountID
	}
	if in.Type != nil {
		t.Type = *in.Type
	}
	if in.Amount != nil {
		t.Amount = *in.Amount
	}
	if in.ClearExchangeRate {
		t.ExchangeRate = nil
	} else if in.ExchangeRate != nil {
		rate := *in.ExchangeRate
		t.ExchangeRate = &rate
	}
	if in.Fee != nil {
		t.Fee = *in.Fee
	}
	if in.Date != nil {
		t.Date = *in.Date
	}
	applyText(&t.Description, in.Description)
	applyText(&t.Notes, in.Notes)
	t.UpdatedAt = now
}

// ConvertedAmount is the amount credited to the destination of a transfer:
// amount times rate rounded half away from zero to cents, or amount itself
// when there is no rate.
func ConvertedAmount(amount decimal.Decimal, rate *decimal.Decimal) decimal.Decimal {
	if rate == nil {
		return amount
	}
	return amount.Mul(*rate).Round(MoneyScale)
}

// ValidateConverted rejects an amount and rate whose converted amount does
// not fit a money column.
func ValidateConverted(amount decimal.Decimal, rate *decimal.Decimal) error {
	if ConvertedAmount(amount, rate).Abs().GreaterThanOrEqual(MaxMoney) {
		return fieldErr("exchange_rate", "converts the amount beyond the maximum of 13 integer digits")
	}
	return nil
}
