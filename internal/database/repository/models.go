package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("repository: not found")

// DBTX is satisfied by *sql.DB and *sql.Tx, so repos work inside WithTx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	AccountAsset     = "asset"
	AccountExpense   = "expense"
	AccountRevenue   = "revenue"
	AccountLiability = "liability"
)

const dateLayout = "2006-01-02"

// Currency represents a currency row.
type Currency struct {
	ID            string
	Code          string
	Name          string
	Symbol        string
	DecimalPlaces int32
	Enabled       bool
	Default       bool
}

// Account represents an account row.
type Account struct {
	ID              string
	Name            string
	AccountType     string
	CurrencyCode    string
	OpeningBalance  decimal.Decimal
	Active          bool
	IncludeNetWorth bool
	CreatedAt       time.Time
}

// Category represents a category row.
type Category struct {
	ID   string
	Name string
}

// Budget represents a budget row.
type Budget struct {
	ID     string
	Name   string
	Active bool
}

// Transaction represents a transaction row.
type Transaction struct {
	ID            string
	Type          string
	Date          time.Time
	Description   string
	Amount        decimal.Decimal
	CurrencyCode  string
	SourceID      string
	DestinationID string
	CategoryID    *string
	BudgetID      *string
	CreatedAt     time.Time
}

// TransactionRow is a transaction joined with its account, category and
// budget names.
type TransactionRow struct {
	Transaction
	SourceName      string
	SourceType      string
	DestinationName string
	DestinationType string
	CategoryName    *string
	BudgetName      *string
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
