package reports

import (
	"github.com/shopspring/decimal"

	"github.com/valeriaulyamaeva/budget-ledger/models"
)

// AccountGroup names a bucket of the net worth breakdown.
type AccountGroup string

const (
	GroupLiquid      AccountGroup = "liquid"
	GroupInvestments AccountGroup = "investments"
	GroupLoans       AccountGroup = "loans"
	GroupDebts       AccountGroup = "debts"
	GroupOther       AccountGroup = "other"
)

type GroupTotal struct {
	Group      AccountGroup         `json:"group"`
	Types      []models.AccountType `json:"types"`
	Total      decimal.Decimal      `json:"total"`
	Initial    decimal.Decimal      `json:"initial"`
	Difference decimal.Decimal      `json:"difference"`
	Count      int                  `json:"count"`
}

type NetWorthReport struct {
	TotalLiquid      decimal.Decimal `json:"total_liquid"`
	TotalInvestments decimal.Decimal `json:"total_investments"`
	TotalLoans       decimal.Decimal `json:"total_loans"`
	TotalDebts       decimal.Decimal `json:"total_debts"`
	TotalOther       decimal.Decimal `json:"total_other"`
	NetWorth         decimal.Decimal `json:"net_worth"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	AccountCount     int             `json:"accounts_count"`
	Groups           []GroupTotal    `json:"by_group"`
}

var groupTypes = []struct {
	group AccountGroup
	types []models.AccountType
}{
	{GroupLiquid, []models.AccountType{models.AccountChecking, models.AccountSavings, models.AccountCash}},
	{GroupInvestments, []models.AccountType{models.AccountInvestment}},
	{GroupLoans, []models.AccountType{models.AccountLoan}},
	{GroupDebts, []models.AccountType{models.AccountCreditCard}},
	{GroupOther, []models.AccountType{models.AccountOther}},
}

func groupOf(t models.AccountType) AccountGroup {
	for _, g := range groupTypes {
		for _, gt := range g.types {
			if gt == t {
				return g.group
			}
		}
	}
	return GroupOther
}

// AccountsSummary splits the current balances of active accounts into
// liquidity, investments, loans given, debts and other.
//
// A credit card with a negative balance is a debt of its absolute value; a
// positive card balance counts as liquidity. Net worth is liquid plus
// investments minus debts; total assets adds the loans given.
func AccountsSummary(accounts []models.Account) NetWorthReport {
	groups := make(map[AccountGroup]*GroupTotal, len(groupTypes))
	r := NetWorthReport{Groups: make([]GroupTotal, 0, len(groupTypes))}
	for _, g := range groupTypes {
		groups[g.group] = &GroupTotal{Group: g.group, Types: g.types}
	}

	for _, a := range accounts {
		if !a.IsActive {
			continue
		}
		r.AccountCount++
		g := groups[groupOf(a.Type)]
		g.Count++
		g.Initial = g.Initial.Add(a.InitialBalance)

		bal := a.CurrentBalance
		switch g.Group {
		case GroupLiquid:
			r.TotalLiquid = r.TotalLiquid.Add(bal)
		case GroupInvestments:
			r.TotalInvestments = r.TotalInvestments.Add(bal)
		case GroupLoans:
			r.TotalLoans = r.TotalLoans.Add(bal)
		case GroupDebts:
			if bal.IsNegative() {
				r.TotalDebts = r.TotalDebts.Add(bal.Abs())
			} else {
				r.TotalLiquid = r.TotalLiquid.Add(bal)
			}
		default:
			r.TotalOther = r.TotalOther.Add(bal)
		}
	}

	groups[GroupLiquid].Total = r.TotalLiquid
	groups[GroupInvestments].Total = r.TotalInvestments
	groups[GroupLoans].Total = r.TotalLoans
	groups[GroupDebts].Total = r.TotalDebts
	groups[GroupOther].Total = r.TotalOther
	for _, g := range groupTypes {
		gt := groups[g.group]
		gt.Difference = gt.Total.Sub(gt.Initial)
		r.Groups = append(r.Groups, *gt)
	}

	r.NetWorth = r.TotalLiquid.Add(r.TotalInvestments).Sub(r.TotalDebts)
	r.TotalAssets = r.NetWorth.Add(r.TotalLoans)
	return r
}
