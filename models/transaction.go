package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is an income or expense booked against one account.
// Type is copied from the category and never set directly.
type Transaction struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	UserID             uuid.UUID       `json:"user_id" db:"user_id"`
	AccountID          uuid.UUID       `json:"account_id" db:"account_id"`
	CategoryID         uuid.UUID       `json:"category_id" db:"category_id"`
	Amount             decimal.Decimal `json:"amount" db:"amount"`
	Type               MacroType       `json:"type" db:"type"`
	Date               Date            `json:"date" db:"date"`
	Description        *string         `json:"description,omitempty" db:"description"`
	Notes              *string         `json:"notes,omitempty" db:"notes"`
	Tags               []string        `json:"tags,omitempty" db:"tags"`
	IsRecurring        bool            `json:"is_recurring" db:"is_recurring"`
	RecurringFrequency *string         `json:"recurring_frequency,omitempty" db:"recurring_frequency"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

type TransactionCreate struct {
	AccountID          uuid.UUID       `json:"account_id"`
	CategoryID         uuid.UUID       `json:"category_id"`
	Amount             decimal.Decimal `json:"amount"`
	Date               Date            `json:"date"`
	Description        *string         `json:"description,omitempty"`
	Notes              *string         `json:"notes,omitempty"`
	Tags               []string        `json:"tags,omitempty"`
	IsRecurring        bool            `json:"is_recurring"`
	RecurringFrequency *string         `json:"recurring_frequency,omitempty"`
}

var recurringFrequencies = map[string]bool{
	"daily": true, "weekly": true, "monthly": true, "yearly": true,
}

func validateFrequency(freq *string) (*string, error) {
	f, err := normalizeText("recurring_frequency", freq, 20)
	if err != nil || f == nil {
		return f, err
	}
	if !recurringFrequencies[*f] {
		return nil, fieldErr("recurring_frequency", "must be one of: daily, weekly, monthly, yearly")
	}
	return f, nil
}

func (in *TransactionCreate) Validate() error {
	if in.AccountID == uuid.Nil {
		return fieldErr("account_id", "is required")
	}
	if in.CategoryID == uuid.Nil {
		return fieldErr("category_id", "is required")
	}
	if err := ValidateAmount("amount", in.Amount); err != nil {
		return err
	}
	if in.Date.IsZero() {
		return fieldErr("date", "is required")
	}
	var err error
	if in.Description, err = normalizeText("description", in.Description, MaxDescription); err != nil {
		return err
	}
	if in.Notes, err = normalizeText("notes", in.Notes, MaxNotes); err != nil {
		return err
	}
	in.Tags = NormalizeTags(in.Tags)
	if !in.IsRecurring {
		in.RecurringFrequency = nil
		return nil
	}
	in.RecurringFrequency, err = validateFrequency(in.RecurringFrequency)
	return err
}

// NewTransaction builds the row for a validated input. typ comes from the category.
func (in TransactionCreate) NewTransaction(owner uuid.UUID, typ MacroType, now time.Time) *Transaction {
	return &Transaction{
		ID:                 uuid.New(),
		UserID:             owner,
		AccountID:          in.AccountID,
		CategoryID:         in.CategoryID,
		Amount:             in.Amount,
		Type:               typ,
		Date:               in.Date,
		Description:        in.Description,
		Notes:              in.Notes,
		Tags:               in.Tags,
		IsRecurring:        in.IsRecurring,
		RecurringFrequency: in.RecurringFrequency,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// TransactionUpdate holds a partial update; nil fields are left unchanged
// and blank description or notes clear the field.
type TransactionUpdate struct {
	AccountID          *uuid.UUID       `json:"account_id,omitempty"`
	CategoryID         *uuid.UUID       `json:"category_id,omitempty"`
	Amount             *decimal.Decimal `json:"amount,omitempty"`
	Date               *Date            `json:"date,omitempty"`
	Description        *string          `json:"description,omitempty"`
	Notes              *string          `json:"notes,omitempty"`
	Tags               *[]string        `json:"tags,omitempty"`
	IsRecurring        *bool            `json:"is_recurring,omitempty"`
	RecurringFrequency *string          `json:"recurring_frequency,omitempty"`
}

func (in *TransactionUpdate) Validate() error {
	if in.AccountID != nil && *in.AccountID == uuid.Nil {
		return fieldErr("account_id", "cannot be empty")
	}
	if in.CategoryID != nil && *in.CategoryID == uuid.Nil {
		return fieldErr("category_id", "cannot be empty")
	}
	if in.Amount != nil {
		if err := ValidateAmount("amount", *in.Amount); err != nil {
			return err
		}
	}
	if in.Date != nil && in.Date.IsZero() {
		return fieldErr("date", "cannot be empty")
	}
	var err error
	if in.Description, err = normalizeUpdateText("description", in.Description, MaxDescription); err != nil {
		return err
	}
	if in.Notes, err = normalizeUpdateText("notes", in.Notes, MaxNotes); err != nil {
		return err
	}
	if in.Tags != nil {
		tags := NormalizeTags(*in.Tags)
		in.Tags = &tags
	}
	in.RecurringFrequency, err = validateFrequency(in.RecurringFrequency)
	return err
}

// ApplyTo copies the set fields onto t. The caller re-derives t.Type when
// the category changes.
func (in TransactionUpdate) ApplyTo(t *Transaction, now time.Time) {
	if in.AccountID != nil {
		t.AccountID = *in.AccountID
	}
	if in.CategoryID != nil {
		t.CategoryID = *in.CategoryID
	}
	if in.Amount != nil {
		t.Amount = *in.Amount
	}
	if in.Date != nil {
		t.Date = *in.Date
	}
	applyText(&t.Description, in.Description)
	applyText(&t.Notes, in.Notes)
	if in.Tags != nil {
		t.Tags = *in.Tags
	}
	if in.IsRecurring != nil {
		t.IsRecurring = *in.IsRecurring
	}
	if in.RecurringFrequency != nil {
		t.RecurringFrequency = in.RecurringFrequency
	}
	if !t.IsRecurring {
		t.RecurringFrequency = nil
	}
	t.UpdatedAt = now
}
