package balance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valeriaulyamaeva/budget-ledger/models"
)

// ErrUnknownTransferType is returned for a transfer type with no rule.
var ErrUnknownTransferType = errors.New("unknown transfer type")

// Rule restricts the account types a transfer type may move money between.
// A nil set means any account type is accepted on that side.
type Rule struct {
	Type  models.TransferType  `json:"type"`
	Label string               `json:"label"`
	Usage string               `json:"usage"`
	From  []models.AccountType `json:"from_account_types"`
	To    []models.AccountType `json:"to_account_types"`
}

var rules = []Rule{
	{
		Type:  models.TransferGeneric,
		Label: "Transfer",
		Usage: "Generic transfer between any two accounts",
	},
	{
		Type:  models.TransferWithdrawal,
		Label: "Withdrawal",
		Usage: "Account to cash",
		From:  []models.AccountType{models.AccountChecking, models.AccountSavings},
		To:    []models.AccountType{models.AccountCash},
	},
	{
		Type:  models.TransferDeposit,
		Label: "Deposit",
		Usage: "Cash to account",
		From:  []models.AccountType{models.AccountCash},
		To:    []models.AccountType{models.AccountChecking, models.AccountSavings},
	},
	{
		Type:  models.TransferSavings,
		Label: "Savings",
		Usage: "Checking to savings",
		From:  []models.AccountType{models.AccountChecking},
		To:    []models.AccountType{models.AccountSavings},
	},
	{
		Type:  models.TransferInvestment,
		Label: "Investment",
		Usage: "Checking or savings to investment",
		From:  []models.AccountType{models.AccountChecking, models.AccountSavings},
		To:    []models.AccountType{models.AccountInvestment},
	},
	{
		Type:  models.TransferLoanGiven,
		Label: "Loan given",
		Usage: "Own account to loans given to third parties",
		From:  []models.AccountType{models.AccountChecking, models.AccountSavings, models.AccountCash},
		To:    []models.AccountType{models.AccountLoan},
	},
	{
		Type:  models.TransferLoanReceived,
		Label: "Loan received",
		Usage: "Loans account back to own account",
		From:  []models.AccountType{models.AccountLoan},
		To:    []models.AccountType{models.AccountChecking, models.AccountSavings, models.AccountCash},
	},
}

// Rules returns a copy of the direction rule table in display order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// RuleFor looks up the rule of a transfer type.
func RuleFor(t models.TransferType) (Rule, bool) {
	for _, r := range rules {
		if r.Type == t {
			return r, true
		}
	}
	return Rule{}, false
}

// Label is the human name of a transfer type, or the raw type when unknown.
func Label(t models.TransferType) string {
	if r, ok := RuleFor(t); ok {
		return r.Label
	}
	return string(t)
}

// Side names the end of a transfer that broke a direction rule.
type Side string

const (
	Source      Side = "source"
	Destination Side = "destination"
)

// DirectionError reports an account whose type is not allowed on one side of
// a transfer type.
type DirectionError struct {
	TransferType models.TransferType
	Side         Side
	AccountName  string
	AccountType  models.AccountType
	Allowed      []models.AccountType
}

func (e *DirectionError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, t := range e.Allowed {
		allowed[i] = string(t)
	}
	return fmt.Sprintf("for a '%s' transfer, %s account must be of type: %s. Selected account: %s (%s)",
		Label(e.TransferType), e.Side, strings.Join(allowed, ", "), e.AccountName, e.AccountType)
}

// ValidateDirection checks both ends of a transfer against the rule table,
// source first.
func ValidateDirection(t models.TransferType, from, to *models.Account) error {
	r, ok := RuleFor(t)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTransferType, t)
	}
	if !allows(r.From, from.Type) {
		return &DirectionError{TransferType: t, Side: Source, AccountName: from.Name, AccountType: from.Type, Allowed: r.From}
	}
	if !allows(r.To, to.Type) {
		return &DirectionError{TransferType: t, Side: Destination, AccountName: to.Name, AccountType: to.Type, Allowed: r.To}
	}
	return nil
}

func allows(set []models.AccountType, t models.AccountType) bool {
	if set == nil {
		return true
	}
	for _, s := range set {
		if s == t {
			return true
		}
	}
	return false
}
