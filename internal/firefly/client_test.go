package firefly

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jask/fireflymoney/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "tok", time.Second)
}

var october = model.Period{
	Start: time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2026, time.October, 31, 0, 0, 0, 0, time.UTC),
}

func TestAccountsFollowsPagination(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/accounts", r.URL.Path)
		require.Equal(t, "asset", r.URL.Query().Get("type"))
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.Equal(t, acceptType, r.Header.Get("Accept"))
		page := r.URL.Query().Get("page")
		fmt.Fprintf(w, `{"data":[{"id":"%s","attributes":{"name":"Acc %s","type":"asset","active":true,"include_net_worth":%t,"current_balance":"-12.50","currency_code":"EUR"}}],
			"meta":{"pagination":{"current_page":%s,"total_pages":2}}}`, page, page, page == "1", page)
	})

	got, err := c.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Acc 1", got[0].Name)
	require.True(t, got[0].IncludeNetWorth)
	require.False(t, got[1].IncludeNetWorth)
	require.True(t, got[1].CurrentBalance.Equal(decimal.RequireFromString("-12.5")))
}

func TestCurrenciesSkipsDisabled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[
			{"id":"1","attributes":{"code":"EUR","name":"Euro","symbol":"€","decimal_places":2,"enabled":true,"default":true}},
			{"id":"2","attributes":{"code":"HUF","name":"Forint","symbol":"Ft","decimal_places":0,"enabled":false}}],
			"meta":{"pagination":{"total_pages":1}}}`)
	})
	got, err := c.Currencies(context.Background())
	require.NoError(t, err)
	require.Equal(t, []model.Currency{{ID: "1", Code: "EUR", Name: "Euro", Symbol: "€", DecimalPlaces: 2, Default: true}}, got)
}

func TestSummaryParsesKeys(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/summary/basic", r.URL.Path)
		require.Equal(t, "2026-10-01", r.URL.Query().Get("start"))
		require.Equal(t, "2026-10-31", r.URL.Query().Get("end"))
		require.Equal(t, "EUR", r.URL.Query().Get("currency_code"))
		fmt.Fprint(w, `{
			"balance-in-EUR":{"key":"balance-in-EUR","monetary_value":-20.5,"currency_code":"EUR"},
			"net-worth-in-USD":{"key":"net-worth-in-USD","monetary_value":"10","currency_code":"USD"},
			"net-worth-in-EUR":{"key":"net-worth-in-EUR","monetary_value":1234.56,"currency_code":"EUR"},
			"spent-in-EUR":{"key":"spent-in-EUR","monetary_value":-5,"currency_code":"EUR"}}`)
	})
	s, err := c.Summary(context.Background(), october, "EUR")
	require.NoError(t, err)
	require.Len(t, s.NetWorth, 2)
	require.Equal(t, "EUR", s.NetWorth[0].CurrencyCode)
	require.True(t, s.NetWorth[0].MonetaryValue.Equal(decimal.RequireFromString("1234.56")))
	require.Len(t, s.Balance, 1)
	require.True(t, s.Balance[0].MonetaryValue.IsNegative())
}

func TestInsightFiltersCurrency(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/insight/expense/category", r.URL.Path)
		fmt.Fprint(w, `[{"id":"1","name":"Food","difference":"-40.00","currency_code":"EUR"},
			{"id":"2","name":"Travel","difference":"-9","currency_code":"USD"}]`)
	})
	got, err := c.InsightCategories(context.Background(), october, "EUR")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Food", got[0].Name)
}

func TestTransactionsFlattensSplits(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"id":"7","attributes":{"transactions":[
			{"transaction_journal_id":"70","type":"withdrawal","date":"2026-10-02T00:00:00+02:00","amount":"4.20","description":"Coffee","currency_code":"EUR","source_name":"Checking","destination_name":"Cafe"},
			{"transaction_journal_id":"71","type":"withdrawal","date":"2026-10-05T00:00:00+02:00","amount":"1","description":"Tip","currency_code":"EUR"}]}}],
			"meta":{"pagination":{"total_pages":1}}}`)
	})
	got, err := c.Transactions(context.Background(), october)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "71", got[0].ID)
	require.Equal(t, model.Withdrawal, got[1].Type)
	require.Equal(t, "Cafe", got[1].DestinationName)
}

func TestAutocompleteAccountTypes(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/autocomplete/accounts", r.URL.Path)
		require.Equal(t, "che", r.URL.Query().Get("query"))
		seen = append(seen, r.URL.Query().Get("types"))
		fmt.Fprint(w, `[{"id":"1","name":"Checking","name_with_balance":"Checking (€10.00)"}]`)
	})
	got, err := c.AutocompleteAccounts(context.Background(), "che", false)
	require.NoError(t, err)
	require.Equal(t, []model.Suggestion{{ID: "1", Name: "Checking", NameWithBalance: "Checking (€10.00)"}}, got)
	_, err = c.AutocompleteAccounts(context.Background(), "che", true)
	require.NoError(t, err)
	require.Equal(t, []string{sourceAccountTypes, destinationAccountTypes}, seen)
}

func TestAutocompleteKinds(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[{"id":"1","name":%q}]`, r.URL.Path)
	})
	ctx := context.Background()
	d, err := c.AutocompleteDescriptions(ctx, "x")
	require.NoError(t, err)
	require.Equal(t, "/api/v1/autocomplete/transactions", d[0].Name)
	cat, err := c.AutocompleteCategories(ctx, "x")
	require.NoError(t, err)
	require.Equal(t, "/api/v1/autocomplete/categories", cat[0].Name)
	b, err := c.AutocompleteBudgets(ctx, "x")
	require.NoError(t, err)
	require.Equal(t, "/api/v1/autocomplete/budgets", b[0].Name)
}

func TestSubmitTransactionPayload(t *testing.T) {
	var got storeRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/transactions", r.URL.Path)
		require.Equal(t, contentType, r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"data":{"id":"9"}}`)
	})
	err := c.SubmitTransaction(context.Background(), model.Draft{
		Description:     "Groceries",
		Date:            time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC),
		SourceName:      "Checking",
		DestinationName: "Market",
		Amount:          "23.40",
		CategoryID:      "3",
		CategoryName:    "Food",
		Type:            model.Withdrawal,
	})
	require.NoError(t, err)
	require.True(t, got.ErrorIfDuplicateHash)
	require.True(t, got.ApplyRules)
	require.Len(t, got.Transactions, 1)
	s := got.Transactions[0]
	require.Equal(t, "withdrawal", s.Type)
	require.Equal(t, "2026-10-14", s.Date)
	require.Equal(t, "23.40", s.Amount)
	require.Equal(t, "3", s.CategoryID)
	require.Empty(t, s.BudgetID)
}

func TestSubmitRejectionBecomesSubmitError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message":"The given data was invalid.","errors":{"transactions.0.amount":["Amount must be positive"]}}`)
	})
	err := c.SubmitTransaction(context.Background(), model.Draft{Type: model.Deposit, Amount: "1", Description: "x"})
	require.Error(t, err)
	msg, ok := model.RejectionMessage(err)
	require.True(t, ok)
	require.Equal(t, "The given data was invalid.", msg)
	var se *model.SubmitError
	require.True(t, errors.As(err, &se))
	require.Contains(t, se.Fields, "transactions.0.amount")
}

func TestServerErrorWithoutMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	err := c.SubmitTransaction(context.Background(), model.Draft{Type: model.Deposit})
	_, ok := model.RejectionMessage(err)
	require.False(t, ok)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadGateway, apiErr.Status)
}

func TestUnauthorizedAndMissingToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Unauthenticated."}`)
	})
	_, err := c.About(context.Background())
	require.True(t, IsUnauthorized(err))
	require.ErrorContains(t, err, "Unauthenticated.")

	_, err = NewClient("http://127.0.0.1:1", "", time.Second).Accounts(context.Background())
	require.ErrorIs(t, err, ErrNoToken)
}

func TestAbout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/about", r.URL.Path)
		fmt.Fprint(w, `{"data":{"version":"6.1.0","api_version":"2.1.0","os":"Linux"}}`)
	})
	a, err := c.About(context.Background())
	require.NoError(t, err)
	require.Equal(t, "6.1.0", a.Version)
}
