package model

import (
	"context"
	"errors"
)

// Fetcher loads the collections the dashboards render.
type Fetcher interface {
	Accounts(ctx context.Context) ([]Account, error)
	Currencies(ctx context.Context) ([]Currency, error)
	InsightCategories(ctx context.Context, p Period, currencyCode string) ([]InsightCategory, error)
	Summary(ctx context.Context, p Period, currencyCode string) (Summary, error)
	Transactions(ctx context.Context, p Period) ([]Transaction, error)
}

// Autocompleter answers free-text lookups for the entry form.
type Autocompleter interface {
	AutocompleteDescriptions(ctx context.Context, query string) ([]Suggestion, error)
	AutocompleteAccounts(ctx context.Context, query string, destination bool) ([]Suggestion, error)
	AutocompleteCategories(ctx context.Context, query string) ([]Suggestion, error)
	AutocompleteBudgets(ctx context.Context, query string) ([]Suggestion, error)
}

// Submitter stores a draft. A rejection the user should read comes back as
// *SubmitError.
type Submitter interface {
	SubmitTransaction(ctx context.Context, d Draft) error
}

// Backend is everything the client needs from a data source.
type Backend interface {
	Fetcher
	Autocompleter
	Submitter
}

// SubmitError is a rejected submission carrying a user-facing message.
type SubmitError struct {
	Message string
	Fields  map[string][]string
}

func (e *SubmitError) Error() string {
	if e.Message == "" {
		return "submission rejected"
	}
	return e.Message
}

// RejectionMessage extracts the user-facing message of a rejection.
func RejectionMessage(err error) (string, bool) {
	var se *SubmitError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message, true
	}
	return "", false
}
