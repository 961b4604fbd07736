package repository

import (
	"context"
	"strings"
)

// AccountRepo handles accounts.
type AccountRepo struct {
	db DBTX
}

func NewAccountRepo(db DBTX) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) Insert(ctx context.Context, a Account) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO accounts(id, name, account_type, currency_code, opening_balance, active, include_net_worth, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP);
	`, a.ID, a.Name, a.AccountType, a.CurrencyCode, a.OpeningBalance, a.Active, a.IncludeNetWorth)
	return err
}

const accountColumns = `id, name, account_type, currency_code, opening_balance, active, include_net_worth, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (Account, error) {
	var a Account
	err := s.Scan(&a.ID, &a.Name, &a.AccountType, &a.CurrencyCode, &a.OpeningBalance, &a.Active, &a.IncludeNetWorth, &a.CreatedAt)
	return a, err
}

func (r *AccountRepo) Get(ctx context.Context, id string) (Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if err != nil {
		return Account{}, notFound(err)
	}
	return a, nil
}

// FindByName matches name case-insensitively within one account type.
func (r *AccountRepo) FindByName(ctx context.Context, name, accountType string) (Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE name = ? COLLATE NOCASE AND account_type = ?`,
		strings.TrimSpace(name), accountType))
	if err != nil {
		return Account{}, notFound(err)
	}
	return a, nil
}

// List returns accounts of the given types (all types when none given),
// ordered by name.
func (r *AccountRepo) List(ctx context.Context, types ...string) ([]Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	var args []any
	if len(types) > 0 {
		query += ` WHERE account_type IN (?` + strings.Repeat(`, ?`, len(types)-1) + `)`
		for _, t := range types {
			args = append(args, t)
		}
	}
	query += ` ORDER BY name COLLATE NOCASE`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AccountRepo) SetActive(ctx context.Context, id string, active bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE accounts SET active = ? WHERE id = ?`, active, id)
	return err
}
