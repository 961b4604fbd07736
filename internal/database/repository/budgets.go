package repository

import (
	"context"
	"strings"
)

// BudgetRepo handles budgets.
type BudgetRepo struct {
	db DBTX
}

func NewBudgetRepo(db DBTX) *BudgetRepo { return &BudgetRepo{db: db} }

func (r *BudgetRepo) Insert(ctx context.Context, b Budget) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO budgets(id, name, active, created_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`, b.ID, b.Name, b.Active)
	return err
}

func (r *BudgetRepo) Get(ctx context.Context, id string) (Budget, error) {
	var b Budget
	if err := r.db.QueryRowContext(ctx, `SELECT id, name, active FROM budgets WHERE id = ?`, id).Scan(&b.ID, &b.Name, &b.Active); err != nil {
		return Budget{}, notFound(err)
	}
	return b, nil
}

func (r *BudgetRepo) FindByName(ctx context.Context, name string) (Budget, error) {
	var b Budget
	err := r.db.QueryRowContext(ctx, `SELECT id, name, active FROM budgets WHERE name = ? COLLATE NOCASE`, strings.TrimSpace(name)).
		Scan(&b.ID, &b.Name, &b.Active)
	if err != nil {
		return Budget{}, notFound(err)
	}
	return b, nil
}

// List returns active budgets ordered by name.
func (r *BudgetRepo) List(ctx context.Context) ([]Budget, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, active FROM budgets WHERE active = 1 ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Budget
	for rows.Next() {
		var b Budget
		if err := rows.Scan(&b.ID, &b.Name, &b.Active); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
