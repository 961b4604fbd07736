package repository

import (
	"context"
)

// CurrencyRepo handles currencies.
type CurrencyRepo struct {
	db DBTX
}

func NewCurrencyRepo(db DBTX) *CurrencyRepo { return &CurrencyRepo{db: db} }

func (r *CurrencyRepo) Upsert(ctx context.Context, c Currency) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO currencies(id, code, name, symbol, decimal_places, enabled, is_default)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(code) DO UPDATE SET
	 name=excluded.name,
	 symbol=excluded.symbol,
	 decimal_places=excluded.decimal_places,
	 enabled=excluded.enabled,
	 is_default=excluded.is_default;
	`, c.ID, c.Code, c.Name, c.Symbol, c.DecimalPlaces, c.Enabled, c.Default)
	return err
}

// List returns enabled currencies, the default first.
func (r *CurrencyRepo) List(ctx context.Context) ([]Currency, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, code, name, symbol, decimal_places, enabled, is_default
	FROM currencies WHERE enabled = 1 ORDER BY is_default DESC, code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Currency
	for rows.Next() {
		var c Currency
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Symbol, &c.DecimalPlaces, &c.Enabled, &c.Default); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CurrencyRepo) FindByCode(ctx context.Context, code string) (Currency, error) {
	var c Currency
	err := r.db.QueryRowContext(ctx, `
	SELECT id, code, name, symbol, decimal_places, enabled, is_default
	FROM currencies WHERE code = ?`, code).
		Scan(&c.ID, &c.Code, &c.Name, &c.Symbol, &c.DecimalPlaces, &c.Enabled, &c.Default)
	if err != nil {
		return Currency{}, notFound(err)
	}
	return c, nil
}

// Default returns the default currency, or the first enabled one.
func (r *CurrencyRepo) Default(ctx context.Context) (Currency, error) {
	list, err := r.List(ctx)
	if err != nil {
		return Currency{}, err
	}
	if len(list) == 0 {
		return Currency{}, ErrNotFound
	}
	return list[0], nil
}
