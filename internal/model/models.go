package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is one of the four transaction kinds the server accepts.
type TransactionType string

const (
	Withdrawal     TransactionType = "withdrawal"
	Deposit        TransactionType = "deposit"
	Transfer       TransactionType = "transfer"
	OpeningBalance TransactionType = "opening balance"
)

// SelectableTypes are the types offered by the entry form. Opening balances
// can be loaded from a payload but not picked.
var SelectableTypes = []TransactionType{Withdrawal, Deposit, Transfer}

func (t TransactionType) Valid() bool {
	switch t {
	case Withdrawal, Deposit, Transfer, OpeningBalance:
		return true
	default:
		return false
	}
}

func (t TransactionType) String() string { return string(t) }

// Account is an asset account as shown on the home screen.
type Account struct {
	ID              string
	Name            string
	Type            string
	Active          bool
	IncludeNetWorth bool
	CurrentBalance  decimal.Decimal
	CurrencyCode    string
}

// Currency is an enabled currency offered by the filter panel.
type Currency struct {
	ID            string
	Code          string
	Name          string
	Symbol        string
	DecimalPlaces int32
	Default       bool
}

// InsightCategory is the spending of one category over a period.
type InsightCategory struct {
	ID           string
	Name         string
	Difference   decimal.Decimal
	CurrencyCode string
}

// Amount is a monetary value in a single currency.
type Amount struct {
	CurrencyCode  string
	MonetaryValue decimal.Decimal
}

// Summary carries the aggregates rendered at the top of the home screen.
type Summary struct {
	NetWorth []Amount
	Balance  []Amount
}

// Suggestion is one autocomplete candidate.
type Suggestion struct {
	ID              string
	Name            string
	NameWithBalance string
}

// Transaction is a persisted transaction split, flattened for listing.
type Transaction struct {
	ID              string
	Type            TransactionType
	Date            time.Time
	Description     string
	Amount          decimal.Decimal
	CurrencyCode    string
	SourceName      string
	DestinationName string
	CategoryName    string
	BudgetName      string
}

// Draft is an in-progress transaction held by the entry form.
type Draft struct {
	Description     string
	Date            time.Time
	SourceName      string
	DestinationName string
	Amount          string
	CategoryID      string
	CategoryName    string
	BudgetID        string
	BudgetName      string
	Type            TransactionType
}

// Period is an inclusive date window.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls on a day inside the period.
func (p Period) Contains(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(p.Start.Year(), p.Start.Month(), p.Start.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(p.End.Year(), p.End.Month(), p.End.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(start) && !day.After(end)
}
