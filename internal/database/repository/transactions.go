package repository

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TransactionFilters defines list filters. Zero values disable a filter.
type TransactionFilters struct {
	From      time.Time
	To        time.Time // inclusive day
	Type      string
	AccountID string
	Search    string
	Limit     int
}

// TransactionRepo handles transactions.
type TransactionRepo struct {
	db DBTX
}

func NewTransactionRepo(db DBTX) *TransactionRepo { return &TransactionRepo{db: db} }

func (r *TransactionRepo) Insert(ctx context.Context, t Transaction) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(
	 id, transaction_type, date, description, amount, currency_code,
	 source_id, destination_id, category_id, budget_id, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP);
	`,
		t.ID, t.Type, t.Date.Format(dateLayout), t.Description, t.Amount, t.CurrencyCode,
		t.SourceID, t.DestinationID, t.CategoryID, t.BudgetID)
	return err
}

const transactionSelect = `
SELECT t.id, t.transaction_type, t.date, t.description, t.amount, t.currency_code,
       t.source_id, t.destination_id, t.category_id, t.budget_id, t.created_at,
       s.name, s.account_type, d.name, d.account_type, c.name, b.name
FROM transactions t
JOIN accounts s ON s.id = t.source_id
JOIN accounts d ON d.id = t.destination_id
LEFT JOIN categories c ON c.id = t.category_id
LEFT JOIN budgets b ON b.id = t.budget_id`

// List returns joined rows, newest first.
func (r *TransactionRepo) List(ctx context.Context, f TransactionFilters) ([]TransactionRow, error) {
	var where []string
	var args []any

	if !f.From.IsZero() {
		where = append(where, "t.date >= ?")
		args = append(args, f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		where = append(where, "t.date <= ?")
		args = append(args, f.To.Format(dateLayout))
	}
	if f.Type != "" {
		where = append(where, "t.transaction_type = ?")
		args = append(args, f.Type)
	}
	if f.AccountID != "" {
		where = append(where, "(t.source_id = ? OR t.destination_id = ?)")
		args = append(args, f.AccountID, f.AccountID)
	}
	if f.Search != "" {
		where = append(where, "t.description LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}

	query := transactionSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.date DESC, t.created_at DESC, t.id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransactionRow
	for rows.Next() {
		var (
			row  TransactionRow
			date string
		)
		if err := rows.Scan(
			&row.ID, &row.Type, &date, &row.Description, &row.Amount, &row.CurrencyCode,
			&row.SourceID, &row.DestinationID, &row.CategoryID, &row.BudgetID, &row.CreatedAt,
			&row.SourceName, &row.SourceType, &row.DestinationName, &row.DestinationType,
			&row.CategoryName, &row.BudgetName,
		); err != nil {
			return nil, err
		}
		row.Date, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: bad date %q: %w", row.ID, date, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Descriptions returns distinct descriptions, most recently used first.
func (r *TransactionRepo) Descriptions(ctx context.Context, limit int) ([]string, error) {
	query := `SELECT description FROM transactions GROUP BY description COLLATE NOCASE ORDER BY MAX(date) DESC, description`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
