package firefly

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wire shapes of the Firefly III v1 API. Only the fields this client reads
// are declared.

type pagination struct {
	Total       int `json:"total"`
	Count       int `json:"count"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

type meta struct {
	Pagination pagination `json:"pagination"`
}

type accountAttributes struct {
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	Active          bool            `json:"active"`
	IncludeNetWorth bool            `json:"include_net_worth"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	CurrencyCode    string          `json:"currency_code"`
}

type accountRead struct {
	ID         string            `json:"id"`
	Attributes accountAttributes `json:"attributes"`
}

type accountList struct {
	Data []accountRead `json:"data"`
	Meta meta          `json:"meta"`
}

type currencyAttributes struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	DecimalPlaces int32  `json:"decimal_places"`
	Enabled       bool   `json:"enabled"`
	Default       bool   `json:"default"`
}

type currencyRead struct {
	ID         string             `json:"id"`
	Attributes currencyAttributes `json:"attributes"`
}

type currencyList struct {
	Data []currencyRead `json:"data"`
	Meta meta           `json:"meta"`
}

type insightEntry struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Difference   decimal.Decimal `json:"difference"`
	CurrencyCode string          `json:"currency_code"`
}

type summaryEntry struct {
	Key           string          `json:"key"`
	MonetaryValue decimal.Decimal `json:"monetary_value"`
	CurrencyCode  string          `json:"currency_code"`
}

type split struct {
	JournalID       string          `json:"transaction_journal_id"`
	Type            string          `json:"type"`
	Date            time.Time       `json:"date"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	CurrencyCode    string          `json:"currency_code"`
	SourceName      string          `json:"source_name"`
	DestinationName string          `json:"destination_name"`
	CategoryName    string          `json:"category_name"`
	BudgetName      string          `json:"budget_name"`
}

type transactionGroup struct {
	ID         string `json:"id"`
	Attributes struct {
		Transactions []split `json:"transactions"`
	} `json:"attributes"`
}

type transactionList struct {
	Data []transactionGroup `json:"data"`
	Meta meta               `json:"meta"`
}

type autocompleteEntry struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	NameWithBalance string `json:"name_with_balance"`
}

type storeSplit struct {
	Type            string `json:"type"`
	Date            string `json:"date"`
	Amount          string `json:"amount"`
	Description     string `json:"description"`
	SourceName      string `json:"source_name,omitempty"`
	DestinationName string `json:"destination_name,omitempty"`
	CategoryID      string `json:"category_id,omitempty"`
	CategoryName    string `json:"category_name,omitempty"`
	BudgetID        string `json:"budget_id,omitempty"`
	BudgetName      string `json:"budget_name,omitempty"`
}

type storeRequest struct {
	ErrorIfDuplicateHash bool         `json:"error_if_duplicate_hash"`
	ApplyRules           bool         `json:"apply_rules"`
	Transactions         []storeSplit `json:"transactions"`
}

type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// About is the server's /about answer.
type About struct {
	Version    string `json:"version"`
	APIVersion string `json:"api_version"`
	PHPVersion string `json:"php_version"`
	OS         string `json:"os"`
	Driver     string `json:"driver"`
}

type aboutResponse struct {
	Data About `json:"data"`
}
