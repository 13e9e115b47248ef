package reports

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/valeriaulyamaeva/budget-ledger/internal/balance"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

type TypeStats struct {
	Type        models.TransferType `json:"transfer_type"`
	Label       string              `json:"label"`
	Count       int                 `json:"count"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	TotalFees   decimal.Decimal     `json:"total_fees"`
}

type TransferStats struct {
	TotalTransfers int             `json:"total_transfers"`
	TotalAmount    decimal.Decimal `json:"total_amount_transferred"`
	TotalFees      decimal.Decimal `json:"total_fees_paid"`
	AverageAmount  decimal.Decimal `json:"average_transfer_amount"`
	ByType         []TypeStats     `json:"by_type"`
}

// TransferStatistics counts transfers and sums amounts and fees, overall and
// for every transfer type.
func TransferStatistics(transfers []models.Transfer) TransferStats {
	byType := make(map[models.TransferType]*TypeStats, len(models.TransferTypes))
	s := TransferStats{ByType: make([]TypeStats, len(models.TransferTypes))}
	for i, t := range models.TransferTypes {
		s.ByType[i] = TypeStats{Type: t, Label: balance.Label(t)}
		byType[t] = &s.ByType[i]
	}

	for _, t := range transfers {
		s.TotalTransfers++
		s.TotalAmount = s.TotalAmount.Add(t.Amount)
		s.TotalFees = s.TotalFees.Add(t.Fee)
		if ts, ok := byType[t.Type]; ok {
			ts.Count++
			ts.TotalAmount = ts.TotalAmount.Add(t.Amount)
			ts.TotalFees = ts.TotalFees.Add(t.Fee)
		}
	}
	if s.TotalTransfers > 0 {
		s.AverageAmount = s.TotalAmount.Div(decimal.NewFromInt(int64(s.TotalTransfers))).Round(2)
	}
	return s
}

type LoanEntry struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        models.Date     `json:"date"`
	Description *string         `json:"description,omitempty"`
	Account     string          `json:"account"`
}

type LoansReport struct {
	GivenCount    int             `json:"loans_given_count"`
	GivenTotal    decimal.Decimal `json:"loans_given_total"`
	ReceivedCount int             `json:"loans_received_count"`
	ReceivedTotal decimal.Decimal `json:"loans_received_total"`
	Net           decimal.Decimal `json:"net_loans"`
	Given         []LoanEntry     `json:"loans_given"`
	Received      []LoanEntry     `json:"loans_received"`
}

// LoansSummary collects loan_given and loan_received transfers. A given loan
// is listed with its destination account, a received one with its source.
// Net is positive when more was lent than got back.
func LoansSummary(transfers []models.Transfer, accounts []models.Account) LoansReport {
	names := make(map[uuid.UUID]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	r := LoansReport{Given: []LoanEntry{}, Received: []LoanEntry{}}
	for _, t := range transfers {
		switch t.Type {
		case models.TransferLoanGiven:
			r.Given = append(r.Given, loanEntry(t, names[t.ToAccountID]))
			r.GivenTotal = r.GivenTotal.Add(t.Amount)
		case models.TransferLoanReceived:
			r.Received = append(r.Received, loanEntry(t, names[t.FromAccountID]))
			r.ReceivedTotal = r.ReceivedTotal.Add(t.Amount)
		}
	}
	r.GivenCount = len(r.Given)
	r.ReceivedCount = len(r.Received)
	r.Net = r.GivenTotal.Sub(r.ReceivedTotal)
	return r
}

func loanEntry(t models.Transfer, account string) LoanEntry {
	return LoanEntry{ID: t.ID, Amount: t.Amount, Date: t.Date, Description: t.Description, Account: account}
}
