package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jask/fireflymoney/internal/database/repository"
)

var defaultCurrencies = []repository.Currency{
	{Code: "EUR", Name: "Euro", Symbol: "€", DecimalPlaces: 2, Enabled: true, Default: true},
	{Code: "USD", Name: "US Dollar", Symbol: "$", DecimalPlaces: 2, Enabled: true},
	{Code: "GBP", Name: "British Pound", Symbol: "£", DecimalPlaces: 2, Enabled: true},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥", DecimalPlaces: 0, Enabled: true},
}

// SeedDefaults ensures baseline currencies exist for new databases.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	repo := repository.NewCurrencyRepo(db)
	existing, err := repo.List(ctx)
	if err == nil && len(existing) > 0 {
		return nil
	}
	for _, c := range defaultCurrencies {
		c.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("currency:"+c.Code)).String()
		if err := repo.Upsert(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
