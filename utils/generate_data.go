package utils

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/valeriaulyamaeva/budget-ledger/internal/balance"
	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/budget-ledger/internal/logging"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

// SeedOptions sizes the demo ledger. The same Seed produces the same data.
type SeedOptions struct {
	Accounts     int
	Transactions int
	Transfers    int
	From, To     models.Date
	Seed         int64
}

type SeedResult struct {
	Categories   int `json:"categories"`
	Accounts     int `json:"accounts"`
	Transactions int `json:"transactions"`
	Transfers    int `json:"transfers"`
}

var demoCategories = []struct {
	name   string
	typ    models.MacroType
	parent string
}{
	{"Salary", models.Income, ""},
	{"Freelance", models.Income, ""},
	{"Housing", models.ExpenseNecessity, ""},
	{"Rent", models.ExpenseNecessity, "Housing"},
	{"Utilities", models.ExpenseNecessity, "Housing"},
	{"Groceries", models.ExpenseNecessity, ""},
	{"Restaurants", models.ExpenseExtra, ""},
	{"Travel", models.ExpenseExtra, ""},
	{"Hobbies", models.ExpenseExtra, ""},
}

var demoAccounts = []struct {
	name string
	typ  models.AccountType
}{
	{"Main account", models.AccountChecking},
	{"Savings", models.AccountSavings},
	{"Wallet", models.AccountCash},
	{"Broker", models.AccountInvestment},
	{"Loans to friends", models.AccountLoan},
	{"Credit card", models.AccountCreditCard},
	{"Other", models.AccountOther},
}

// GenerateLedger fills an owner's ledger with fake categories, accounts,
// transactions and transfers. Everything goes through the service, so stored
// balances stay consistent with the generated history.
func GenerateLedger(ctx context.Context, svc *ledger.Service, owner uuid.UUID, opts SeedOptions, log logrus.FieldLogger) (*SeedResult, error) {
	if opts.To.Before(opts.From.Time) {
		return nil, fmt.Errorf("seed range ends before it starts")
	}
	faker := gofakeit.New(opts.Seed)
	res := &SeedResult{}

	categories := make([]*models.Category, 0, len(demoCategories))
	byName := map[string]*models.Category{}
	for _, dc := range demoCategories {
		in := models.CategoryCreate{Name: dc.name, Type: dc.typ}
		if dc.parent != "" {
			in.ParentID = &byName[dc.parent].ID
		}
		c, err := svc.CreateCategory(ctx, owner, in)
		if err != nil {
			return res, fmt.Errorf("failed to create category %s: %w", dc.name, err)
		}
		byName[dc.name] = c
		categories = append(categories, c)
		res.Categories++
	}

	n := opts.Accounts
	if n < 2 {
		n = 2
	}
	if n > len(demoAccounts) {
		n = len(demoAccounts)
	}
	accounts := make([]*models.Account, 0, n)
	for _, da := range demoAccounts[:n] {
		color := faker.HexColor()
		a, err := svc.CreateAccount(ctx, owner, models.AccountCreate{
			Name:           da.name,
			Type:           da.typ,
			Currency:       "EUR",
			InitialBalance: money(faker.Price(0, 5000)),
			Color:          &color,
		})
		if err != nil {
			return res, fmt.Errorf("failed to create account %s: %w", da.name, err)
		}
		accounts = append(accounts, a)
		res.Accounts++
	}

	days := int(opts.To.Sub(opts.From.Time).Hours()/24) + 1
	randomDay := func() models.Date {
		return opts.From.AddDays(faker.Number(0, days-1))
	}

	for i := 0; i < opts.Transactions; i++ {
		c := categories[faker.Number(0, len(categories)-1)]
		ceiling := 150.0
		if c.Type == models.Income {
			ceiling = 3000
		}
		desc := faker.Sentence(4)
		in := models.TransactionCreate{
			AccountID:   accounts[faker.Number(0, len(accounts)-1)].ID,
			CategoryID:  c.ID,
			Amount:      money(faker.Price(1, ceiling)),
			Date:        randomDay(),
			Description: &desc,
			Tags:        []string{faker.Word()},
		}
		if _, err := svc.CreateTransaction(ctx, owner, in); err != nil {
			return res, fmt.Errorf("failed to create transaction: %w", err)
		}
		res.Transactions++
	}

	rules := balance.Rules()
	for i := 0; i < opts.Transfers; i++ {
		r := rules[faker.Number(0, len(rules)-1)]
		from, to := pick(faker, accounts, r.From, nil), (*models.Account)(nil)
		if from != nil {
			to = pick(faker, accounts, r.To, from)
		}
		if from == nil || to == nil {
			r, _ = balance.RuleFor(models.TransferGeneric)
			from = accounts[0]
			to = accounts[1]
		}
		in := models.TransferCreate{
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			Type:          r.Type,
			Amount:        money(faker.Price(5, 500)),
			Date:          randomDay(),
		}
		if faker.Number(0, 4) == 0 {
			in.Fee = money(faker.Price(0.5, 3))
		}
		if _, err := svc.CreateTransfer(ctx, owner, in); err != nil {
			return res, fmt.Errorf("failed to create %s transfer: %w", r.Type, err)
		}
		res.Transfers++
	}

	log.WithFields(logrus.Fields{
		logging.FieldUserID: owner,
		"categories":        res.Categories,
		"accounts":          res.Accounts,
		"transactions":      res.Transactions,
		"transfers":         res.Transfers,
	}).Info("Demo ledger generated")
	return res, nil
}

// pick returns a random account of one of the allowed types other than skip,
// or nil when there is none. A nil allowed set accepts any type.
func pick(faker *gofakeit.Faker, accounts []*models.Account, allowed []models.AccountType, skip *models.Account) *models.Account {
	var candidates []*models.Account
	for _, a := range accounts {
		if a == skip {
			continue
		}
		if allowed == nil || containsType(allowed, a.Type) {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[faker.Number(0, len(candidates)-1)]
}

func containsType(types []models.AccountType, t models.AccountType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

func money(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(models.MoneyScale)
}
