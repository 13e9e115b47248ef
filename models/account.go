package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCreditCard AccountType = "credit_card"
	AccountCash       AccountType = "cash"
	AccountInvestment AccountType = "investment"
	AccountLoan       AccountType = "loan"
	AccountOther      AccountType = "other"
)

// AccountTypes lists every account type in display order.
var AccountTypes = []AccountType{
	AccountChecking, AccountSavings, AccountCreditCard, AccountCash,
	AccountInvestment, AccountLoan, AccountOther,
}

// ParseAccountType accepts any letter case.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AccountTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fieldErr("type", "account type must be one of: %s", joinTypes(AccountTypes))
}

func joinTypes[T ~string](types []T) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

// Account is a user's bank account, wallet or ledger bucket.
//
// InitialBalance is written once, at creation. CurrentBalance is the running
// balance maintained by transaction and transfer lifecycle events and by
// reconciliation; user-facing updates never touch either field.
type Account struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"user_id" db:"user_id"`
	Name           string          `json:"name" db:"name"`
	Type           AccountType     `json:"type" db:"type"`
	Currency       string          `json:"currency" db:"currency"`
	InitialBalance decimal.Decimal `json:"initial_balance" db:"initial_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance" db:"current_balance"`
	Color          *string         `json:"color,omitempty" db:"color"`
	Icon           *string         `json:"icon,omitempty" db:"icon"`
	Notes          *string         `json:"notes,omitempty" db:"notes"`
	IsActive       bool            `json:"is_active" db:"is_active"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

func (a *Account) String() string {
	return fmt.Sprintf("%s (%s)", a.Name, a.Type)
}

// BalanceDifference is how far the account moved since it was opened.
func (a *Account) BalanceDifference() decimal.Decimal {
	return a.CurrentBalance.Sub(a.InitialBalance)
}

type AccountCreate struct {
	Name           string          `json:"name"`
	Type           AccountType     `json:"type"`
	Currency       string          `json:"currency"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Color          *string         `json:"color,omitempty"`
	Icon           *string         `json:"icon,omitempty"`
	Notes          *string         `json:"notes,omitempty"`
}

// Validate normalizes the input in place.
func (in *AccountCreate) Validate() error {
	var err error
	if in.Name, err = normalizeName("name", in.Name, 100); err != nil {
		return err
	}
	if in.Type, err = ParseAccountType(string(in.Type)); err != nil {
		return err
	}
	if in.Currency == "" {
		in.Currency = "EUR"
	}
	if in.Currency, err = NormalizeCurrency(in.Currency); err != nil {
		return err
	}
	if err = ValidateInitialBalance(in.InitialBalance); err != nil {
		return err
	}
	in.InitialBalance = in.InitialBalance.Round(MoneyScale)
	if in.Color, err = NormalizeColor(in.Color); err != nil {
		return err
	}
	if in.Icon, err = normalizeText("icon", in.Icon, 50); err != nil {
		return err
	}
	in.Notes, err = normalizeText("notes", in.Notes, 500)
	return err
}

// NewAccount opens an account whose running balance starts at the initial balance.
func (in AccountCreate) NewAccount(owner uuid.UUID, now time.Time) *Account {
	return &Account{
		ID:             uuid.New(),
		UserID:         owner,
		Name:           in.Name,
		Type:           in.Type,
		Currency:       in.Currency,
		InitialBalance: in.InitialBalance,
		CurrentBalance: in.InitialBalance,
		Color:          in.Color,
		Icon:           in.Icon,
		Notes:          in.Notes,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// AccountUpdate carries the user-editable account fields. There is no way to
// express a balance change through it.
type AccountUpdate struct {
	Name     *string      `json:"name,omitempty"`
	Type     *AccountType `json:"type,omitempty"`
	Currency *string      `json:"currency,omitempty"`
	Color    *string      `json:"color,omitempty"`
	Icon     *string      `json:"icon,omitempty"`
	Notes    *string      `json:"notes,omitempty"`
	IsActive *bool        `json:"is_active,omitempty"`
}

func (in *AccountUpdate) Validate() error {
	if in.Name != nil {
		name, err := normalizeName("name", *in.Name, 100)
		if err != nil {
			return err
		}
		in.Name = &name
	}
	if in.Type != nil {
		t, err := ParseAccountType(string(*in.Type))
		if err != nil {
			return err
		}
		in.Type = &t
	}
	if in.Currency != nil {
		c, err := NormalizeCurrency(*in.Currency)
		if err != nil {
			return err
		}
		in.Currency = &c
	}
	var err error
	if in.Color, err = NormalizeColor(in.Color); err != nil {
		return err
	}
	if in.Icon, err = normalizeText("icon", in.Icon, 50); err != nil {
		return err
	}
	in.Notes, err = normalizeText("notes", in.Notes, 500)
	return err
}

// ApplyTo copies the set fields onto a. Balances are left alone.
func (in AccountUpdate) ApplyTo(a *Account, now time.Time) {
	if in.Name != nil {
		a.Name = *in.Name
	}
	if in.Type != nil {
		a.Type = *in.Type
	}
	if in.Currency != nil {
		a.Currency = *in.Currency
	}
	if in.Color != nil {
		a.Color = in.Color
	}
	if in.Icon != nil {
		a.Icon = in.Icon
	}
	if in.Notes != nil {
		a.Notes = in.Notes
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
	a.UpdatedAt = now
}
