package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultPageSize applies when a filter leaves Limit at zero.
const DefaultPageSize = 100

type AccountFilter struct {
	Type       *AccountType
	ActiveOnly bool
}

// TransactionFilter narrows a transaction listing. Zero values mean "any".
// Date bounds are inclusive.
type TransactionFilter struct {
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	Type       *MacroType
	From       *Date
	To         *Date
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	Tags       []string
	Search     string
	Limit      int
	Offset     int
}

// Matches applies every filter criterion except paging.
func (f TransactionFilter) Matches(t *Transaction) bool {
	if f.AccountID != nil && t.AccountID != *f.AccountID {
		return false
	}
	if f.CategoryID != nil && t.CategoryID != *f.CategoryID {
		return false
	}
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	if !inRange(t.Date, f.From, f.To) {
		return false
	}
	if f.MinAmount != nil && t.Amount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && t.Amount.GreaterThan(*f.MaxAmount) {
		return false
	}
	if len(f.Tags) > 0 && !hasAnyTag(t.Tags, f.Tags) {
		return false
	}
	if f.Search != "" && !containsFold(t.Description, f.Search) && !containsFold(t.Notes, f.Search) {
		return false
	}
	return true
}

// TransferFilter narrows a transfer listing. AccountID matches either side.
type TransferFilter struct {
	AccountID     *uuid.UUID
	FromAccountID *uuid.UUID
	ToAccountID   *uuid.UUID
	Type          *TransferType
	From          *Date
	To            *Date
	Limit         int
	Offset        int
}

func (f TransferFilter) Matches(t *Transfer) bool {
	if f.AccountID != nil && !t.Involves(*f.AccountID) {
		return false
	}
	if f.FromAccountID != nil && t.FromAccountID != *f.FromAccountID {
		return false
	}
	if f.ToAccountID != nil && t.ToAccountID != *f.ToAccountID {
		return false
	}
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	return inRange(t.Date, f.From, f.To)
}

// Page clamps offset and limit to n items and returns the slice bounds.
// A negative limit means "no limit".
func Page(n, offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	if limit == 0 {
		limit = DefaultPageSize
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}

func inRange(d Date, from, to *Date) bool {
	if from != nil && d.Before(from.Time) {
		return false
	}
	if to != nil && d.After(to.Time) {
		return false
	}
	return true
}

func hasAnyTag(tags, wanted []string) bool {
	for _, w := range wanted {
		for _, t := range tags {
			if t == w {
				return true
			}
		}
	}
	return false
}

func containsFold(s *string, sub string) bool {
	return s != nil && strings.Contains(strings.ToLower(*s), strings.ToLower(sub))
}
