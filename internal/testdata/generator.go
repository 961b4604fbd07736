package testdata

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jask/fireflymoney/internal/database/repository"
	"github.com/jask/fireflymoney/internal/model"
)

// ErrAlreadySeeded is returned when the ledger already holds asset accounts.
var ErrAlreadySeeded = errors.New("testdata: ledger already has accounts")

// Repos bundles repos used by Seed.
type Repos struct {
	Accounts *repository.AccountRepo
	Budgets  *repository.BudgetRepo
}

type sample struct {
	desc     string
	dest     string
	category string
	budget   string
	min, max int // cents
}

var withdrawals = []sample{
	{"Weekly groceries", "Supermarket", "Groceries", "Household", 3500, 12000},
	{"Coffee", "Corner Cafe", "Coffee & Drinks", "", 250, 600},
	{"Lunch", "Noodle Bar", "Restaurants", "Eating out", 900, 2200},
	{"Train ticket", "Rail Company", "Transport", "", 280, 4500},
	{"Streaming subscription", "StreamCo", "Subscriptions", "", 999, 1599},
	{"Electricity bill", "Power Utility", "Utilities", "Household", 4500, 9000},
	{"Pharmacy", "Pharmacy", "Health", "", 500, 3000},
	{"Cinema", "Cinema", "Entertainment", "Eating out", 1200, 3000},
}

// Seed fills an empty ledger with demo accounts and the given number of months of
// activity ending at now. Transactions go through sub so they follow the
// same rules as user-entered ones.
func Seed(ctx context.Context, repos Repos, sub model.Submitter, now time.Time, months int, rng *rand.Rand) error {
	if rng == nil {
		rng = rand.New(rand.NewSource(now.UnixNano()))
	}
	if months <= 0 {
		months = 6
	}
	existing, err := repos.Accounts.List(ctx, repository.AccountAsset)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return ErrAlreadySeeded
	}

	assets := []repository.Account{
		{Name: "Checking", OpeningBalance: decimal.NewFromInt(1500), IncludeNetWorth: true, Active: true},
		{Name: "Savings", OpeningBalance: decimal.NewFromInt(8000), IncludeNetWorth: true, Active: true},
		{Name: "Cash wallet", OpeningBalance: decimal.NewFromInt(80), IncludeNetWorth: false, Active: true},
		{Name: "Old credit union", OpeningBalance: decimal.NewFromInt(12), IncludeNetWorth: true, Active: false},
	}
	for _, a := range assets {
		a.ID = uuid.NewString()
		a.AccountType = repository.AccountAsset
		a.CurrencyCode = "EUR"
		if err := repos.Accounts.Insert(ctx, a); err != nil {
			return fmt.Errorf("seed account %s: %w", a.Name, err)
		}
	}
	for _, name := range []string{"Household", "Eating out"} {
		if err := repos.Budgets.Insert(ctx, repository.Budget{ID: uuid.NewString(), Name: name, Active: true}); err != nil {
			return fmt.Errorf("seed budget %s: %w", name, err)
		}
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)
	for m := 0; m < months; m++ {
		first := start.AddDate(0, m, 0)
		drafts := []model.Draft{
			{Type: model.Deposit, Description: "Salary", SourceName: "Employer Ltd", DestinationName: "Checking", Amount: "2850.00", CategoryName: "Income", Date: first},
			{Type: model.Withdrawal, Description: "Rent", SourceName: "Checking", DestinationName: "Landlord", Amount: "950.00", CategoryName: "Rent", BudgetName: "Household", Date: first.AddDate(0, 0, 1)},
			{Type: model.Transfer, Description: "Monthly savings", SourceName: "Checking", DestinationName: "Savings", Amount: "300.00", Date: first.AddDate(0, 0, 2)},
		}
		for i := 0; i < 14; i++ {
			s := withdrawals[rng.Intn(len(withdrawals))]
			cents := s.min + rng.Intn(s.max-s.min+1)
			src := "Checking"
			if rng.Intn(5) == 0 {
				src = "Cash wallet"
			}
			drafts = append(drafts, model.Draft{
				Type:            model.Withdrawal,
				Description:     s.desc,
				SourceName:      src,
				DestinationName: s.dest,
				Amount:          decimal.New(int64(cents), -2).StringFixed(2),
				CategoryName:    s.category,
				BudgetName:      s.budget,
				Date:            first.AddDate(0, 0, rng.Intn(28)),
			})
		}
		for _, d := range drafts {
			if d.Date.After(now) {
				continue
			}
			if err := sub.SubmitTransaction(ctx, d); err != nil {
				return fmt.Errorf("seed %q on %s: %w", d.Description, d.Date.Format("2006-01-02"), err)
			}
		}
	}
	return nil
}
