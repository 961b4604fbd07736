package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jask/fireflymoney/internal/database"
	"github.com/jask/fireflymoney/internal/database/repository"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Setup(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func TestCurrencies(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCurrencyRepo(openDB(t))

	require.NoError(t, repo.Upsert(ctx, repository.Currency{ID: "2", Code: "USD", Name: "US Dollar", Symbol: "$", DecimalPlaces: 2, Enabled: true}))
	require.NoError(t, repo.Upsert(ctx, repository.Currency{ID: "1", Code: "EUR", Name: "Euro", Symbol: "€", DecimalPlaces: 2, Enabled: true, Default: true}))
	require.NoError(t, repo.Upsert(ctx, repository.Currency{ID: "3", Code: "HUF", Name: "Forint", Symbol: "Ft", Enabled: false}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "EUR", list[0].Code)

	def, err := repo.Default(ctx)
	require.NoError(t, err)
	require.Equal(t, "EUR", def.Code)

	_, err = repo.FindByCode(ctx, "XXX")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func seedBase(t *testing.T, db *sql.DB) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repository.NewCurrencyRepo(db).Upsert(ctx, repository.Currency{ID: "1", Code: "EUR", Name: "Euro", Symbol: "€", DecimalPlaces: 2, Enabled: true, Default: true}))
	accounts := repository.NewAccountRepo(db)
	require.NoError(t, accounts.Insert(ctx, repository.Account{ID: "a1", Name: "Checking", AccountType: repository.AccountAsset, CurrencyCode: "EUR", OpeningBalance: decimal.RequireFromString("100.50"), Active: true, IncludeNetWorth: true}))
	require.NoError(t, accounts.Insert(ctx, repository.Account{ID: "e1", Name: "Market", AccountType: repository.AccountExpense, CurrencyCode: "EUR", Active: true}))
	require.NoError(t, repository.NewCategoryRepo(db).Insert(ctx, repository.Category{ID: "c1", Name: "Food"}))
	require.NoError(t, repository.NewBudgetRepo(db).Insert(ctx, repository.Budget{ID: "b1", Name: "Household", Active: true}))
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	seedBase(t, db)
	repo := repository.NewAccountRepo(db)

	a, err := repo.FindByName(ctx, " checking ", repository.AccountAsset)
	require.NoError(t, err)
	require.Equal(t, "a1", a.ID)
	require.True(t, a.OpeningBalance.Equal(decimal.RequireFromString("100.5")))

	_, err = repo.FindByName(ctx, "Checking", repository.AccountExpense)
	require.ErrorIs(t, err, repository.ErrNotFound)

	assets, err := repo.List(ctx, repository.AccountAsset)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	require.NoError(t, repo.SetActive(ctx, "a1", false))
	a, err = repo.Get(ctx, "a1")
	require.NoError(t, err)
	require.False(t, a.Active)

	err = repo.Insert(ctx, repository.Account{ID: "dup", Name: "CHECKING", AccountType: repository.AccountAsset, CurrencyCode: "EUR"})
	require.Error(t, err)
}

func TestCategoriesAndBudgets(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	seedBase(t, db)

	c, err := repository.NewCategoryRepo(db).FindByName(ctx, "food")
	require.NoError(t, err)
	require.Equal(t, "c1", c.ID)

	budgets := repository.NewBudgetRepo(db)
	require.NoError(t, budgets.Insert(ctx, repository.Budget{ID: "b2", Name: "Old", Active: false}))
	list, err := budgets.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []repository.Budget{{ID: "b1", Name: "Household", Active: true}}, list)

	_, err = budgets.Get(ctx, "nope")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTransactionsListAndFilters(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	seedBase(t, db)
	repo := repository.NewTransactionRepo(db)

	day := func(d int) time.Time { return time.Date(2026, time.October, d, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, repo.Insert(ctx, repository.Transaction{ID: "t1", Type: "withdrawal", Date: day(2), Description: "Groceries", Amount: decimal.RequireFromString("12.30"), CurrencyCode: "EUR", SourceID: "a1", DestinationID: "e1", CategoryID: strPtr("c1"), BudgetID: strPtr("b1")}))
	require.NoError(t, repo.Insert(ctx, repository.Transaction{ID: "t2", Type: "withdrawal", Date: day(20), Description: "Bread", Amount: decimal.RequireFromString("2"), CurrencyCode: "EUR", SourceID: "a1", DestinationID: "e1"}))
	require.NoError(t, repo.Insert(ctx, repository.Transaction{ID: "t3", Type: "withdrawal", Date: time.Date(2026, time.September, 30, 0, 0, 0, 0, time.UTC), Description: "groceries", Amount: decimal.RequireFromString("1"), CurrencyCode: "EUR", SourceID: "a1", DestinationID: "e1"}))

	rows, err := repo.List(ctx, repository.TransactionFilters{From: day(1), To: day(31)})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "t2", rows[0].ID)
	require.Equal(t, "Checking", rows[1].SourceName)
	require.Equal(t, repository.AccountExpense, rows[1].DestinationType)
	require.Equal(t, "Food", *rows[1].CategoryName)
	require.Nil(t, rows[0].CategoryName)
	require.True(t, rows[1].Amount.Equal(decimal.RequireFromString("12.3")))
	require.Equal(t, day(2), rows[1].Date)

	rows, err = repo.List(ctx, repository.TransactionFilters{To: day(2)})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rows, err = repo.List(ctx, repository.TransactionFilters{Search: "bre", Limit: 5})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	descs, err := repo.Descriptions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, descs, 2)
	require.Equal(t, "Bread", descs[0])
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	seedBase(t, db)

	err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
		if err := repository.NewCategoryRepo(tx).Insert(ctx, repository.Category{ID: "c2", Name: "Travel"}); err != nil {
			return err
		}
		return repository.NewCategoryRepo(tx).Insert(ctx, repository.Category{ID: "c3", Name: "food"})
	})
	require.Error(t, err)

	_, err = repository.NewCategoryRepo(db).FindByName(ctx, "Travel")
	require.ErrorIs(t, err, repository.ErrNotFound)
}
