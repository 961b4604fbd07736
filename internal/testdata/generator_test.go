package testdata_test

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/fireflymoney/internal/database"
	"github.com/jask/fireflymoney/internal/database/repository"
	"github.com/jask/fireflymoney/internal/model"
	"github.com/jask/fireflymoney/internal/service"
	"github.com/jask/fireflymoney/internal/testdata"
)

func TestSeedLedger(t *testing.T) {
	ctx := context.Background()
	db, err := database.Setup(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.SeedDefaults(ctx, db))

	repos := testdata.Repos{
		Accounts: repository.NewAccountRepo(db),
		Budgets:  repository.NewBudgetRepo(db),
	}
	ledger := service.NewLedgerService(db, nil)
	now := time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

	require.NoError(t, testdata.Seed(ctx, repos, ledger, now, 3, rand.New(rand.NewSource(1))))

	accounts, err := ledger.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 4)

	txs, err := ledger.Transactions(ctx, model.Period{Start: time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), End: now})
	require.NoError(t, err)
	require.NotEmpty(t, txs)
	for _, tx := range txs {
		require.False(t, tx.Date.After(now))
	}

	insight, err := ledger.InsightCategories(ctx, model.Period{Start: time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), End: now}, "EUR")
	require.NoError(t, err)
	require.NotEmpty(t, insight)

	err = testdata.Seed(ctx, repos, ledger, now, 3, nil)
	require.ErrorIs(t, err, testdata.ErrAlreadySeeded)
}
