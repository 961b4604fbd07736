// Package firefly is a REST client for the Firefly III v1 API. It implements
// model.Backend.
package firefly

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jask/fireflymoney/internal/logging"
	"github.com/jask/fireflymoney/internal/model"
)

const (
	apiPrefix   = "/api/v1"
	contentType = "application/json"
	acceptType  = "application/vnd.api+json"
	dateLayout  = "2006-01-02"

	sourceAccountTypes      = "Asset account,Revenue account,Loan,Debt,Mortgage"
	destinationAccountTypes = "Asset account,Expense account,Loan,Debt,Mortgage"

	netWorthPrefix = "net-worth-in-"
	balancePrefix  = "balance-in-"
)

var ErrNoToken = errors.New("firefly: no access token configured")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("firefly: %s %s: http %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("firefly: %s %s: http %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *log.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.log = logging.OrDiscard(l) }
}

// NewClient builds a client for the instance at baseURL (without /api/v1).
func NewClient(baseURL, token string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ model.Backend = (*Client)(nil)

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	if c.token == "" {
		return ErrNoToken
	}
	u := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("firefly: encode %s: %w", path, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("firefly: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", acceptType)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", "method", method, "path", path, "err", err)
		return fmt.Errorf("firefly: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode}
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
			apiErr.Message = eb.Message
			apiErr.Fields = eb.Errors
		}
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("firefly: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func periodQuery(p model.Period) url.Values {
	q := url.Values{}
	q.Set("start", p.Start.Format(dateLayout))
	q.Set("end", p.End.Format(dateLayout))
	return q
}

// About fetches server version information. It doubles as a token check.
func (c *Client) About(ctx context.Context) (About, error) {
	var out aboutResponse
	if err := c.get(ctx, "/about", nil, &out); err != nil {
		return About{}, err
	}
	return out.Data, nil
}

// Accounts returns every asset account, following pagination.
func (c *Client) Accounts(ctx context.Context) ([]model.Account, error) {
	var out []model.Account
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("type", "asset")
		q.Set("page", strconv.Itoa(page))
		var list accountList
		if err := c.get(ctx, "/accounts", q, &list); err != nil {
			return nil, err
		}
		for _, a := range list.Data {
			out = append(out, model.Account{
				ID:              a.ID,
				Name:            a.Attributes.Name,
				Type:            a.Attributes.Type,
				Active:          a.Attributes.Active,
				IncludeNetWorth: a.Attributes.IncludeNetWorth,
				CurrentBalance:  a.Attributes.CurrentBalance,
				CurrencyCode:    a.Attributes.CurrencyCode,
			})
		}
		if page >= list.Meta.Pagination.TotalPages {
			break
		}
	}
	return out, nil
}

// Currencies returns the enabled currencies.
func (c *Client) Currencies(ctx context.Context) ([]model.Currency, error) {
	var out []model.Currency
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		var list currencyList
		if err := c.get(ctx, "/currencies", q, &list); err != nil {
			return nil, err
		}
		for _, cur := range list.Data {
			if !cur.Attributes.Enabled {
				continue
			}
			out = append(out, model.Currency{
				ID:            cur.ID,
				Code:          cur.Attributes.Code,
				Name:          cur.Attributes.Name,
				Symbol:        cur.Attributes.Symbol,
				DecimalPlaces: cur.Attributes.DecimalPlaces,
				Default:       cur.Attributes.Default,
			})
		}
		if page >= list.Meta.Pagination.TotalPages {
			break
		}
	}
	return out, nil
}

// InsightCategories returns expense per category over p. Entries in other
// currencies are dropped when currencyCode is set.
func (c *Client) InsightCategories(ctx context.Context, p model.Period, currencyCode string) ([]model.InsightCategory, error) {
	var entries []insightEntry
	if err := c.get(ctx, "/insight/expense/category", periodQuery(p), &entries); err != nil {
		return nil, err
	}
	out := make([]model.InsightCategory, 0, len(entries))
	for _, e := range entries {
		if currencyCode != "" && e.CurrencyCode != "" && !strings.EqualFold(e.CurrencyCode, currencyCode) {
			continue
		}
		out = append(out, model.InsightCategory{
			ID:           e.ID,
			Name:         e.Name,
			Difference:   e.Difference,
			CurrencyCode: e.CurrencyCode,
		})
	}
	return out, nil
}

// Summary returns net worth and balance amounts. The requested currency
// sorts first; the rest follow by code.
func (c *Client) Summary(ctx context.Context, p model.Period, currencyCode string) (model.Summary, error) {
	q := periodQuery(p)
	if currencyCode != "" {
		q.Set("currency_code", currencyCode)
	}
	var raw map[string]summaryEntry
	if err := c.get(ctx, "/summary/basic", q, &raw); err != nil {
		return model.Summary{}, err
	}
	var s model.Summary
	for key, e := range raw {
		code := e.CurrencyCode
		switch {
		case strings.HasPrefix(key, netWorthPrefix):
			if code == "" {
				code = strings.TrimPrefix(key, netWorthPrefix)
			}
			s.NetWorth = append(s.NetWorth, model.Amount{CurrencyCode: code, MonetaryValue: e.MonetaryValue})
		case strings.HasPrefix(key, balancePrefix):
			if code == "" {
				code = strings.TrimPrefix(key, balancePrefix)
			}
			s.Balance = append(s.Balance, model.Amount{CurrencyCode: code, MonetaryValue: e.MonetaryValue})
		}
	}
	sortAmounts(s.NetWorth, currencyCode)
	sortAmounts(s.Balance, currencyCode)
	return s, nil
}

func sortAmounts(a []model.Amount, first string) {
	sort.Slice(a, func(i, j int) bool {
		fi := strings.EqualFold(a[i].CurrencyCode, first)
		fj := strings.EqualFold(a[j].CurrencyCode, first)
		if fi != fj {
			return fi
		}
		return a[i].CurrencyCode < a[j].CurrencyCode
	})
}

// Transactions returns the splits dated inside p, newest first.
func (c *Client) Transactions(ctx context.Context, p model.Period) ([]model.Transaction, error) {
	var out []model.Transaction
	for page := 1; ; page++ {
		q := periodQuery(p)
		q.Set("page", strconv.Itoa(page))
		var list transactionList
		if err := c.get(ctx, "/transactions", q, &list); err != nil {
			return nil, err
		}
		for _, g := range list.Data {
			for _, s := range g.Attributes.Transactions {
				id := s.JournalID
				if id == "" {
					id = g.ID
				}
				out = append(out, model.Transaction{
					ID:              id,
					Type:            model.TransactionType(s.Type),
					Date:            s.Date,
					Description:     s.Description,
					Amount:          s.Amount,
					CurrencyCode:    s.CurrencyCode,
					SourceName:      s.SourceName,
					DestinationName: s.DestinationName,
					CategoryName:    s.CategoryName,
					BudgetName:      s.BudgetName,
				})
			}
		}
		if page >= list.Meta.Pagination.TotalPages {
			break
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (c *Client) autocomplete(ctx context.Context, kind, query string, extra url.Values) ([]model.Suggestion, error) {
	q := url.Values{}
	q.Set("query", query)
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	var entries []autocompleteEntry
	if err := c.get(ctx, "/autocomplete/"+kind, q, &entries); err != nil {
		return nil, err
	}
	out := make([]model.Suggestion, 0, len(entries))
	for _, e := range entries {
		out = append(out, model.Suggestion{ID: e.ID, Name: e.Name, NameWithBalance: e.NameWithBalance})
	}
	return out, nil
}

func (c *Client) AutocompleteDescriptions(ctx context.Context, query string) ([]model.Suggestion, error) {
	return c.autocomplete(ctx, "transactions", query, nil)
}

// AutocompleteAccounts looks up accounts usable as a source, or as a
// destination when destination is set.
func (c *Client) AutocompleteAccounts(ctx context.Context, query string, destination bool) ([]model.Suggestion, error) {
	types := sourceAccountTypes
	if destination {
		types = destinationAccountTypes
	}
	return c.autocomplete(ctx, "accounts", query, url.Values{"types": {types}})
}

func (c *Client) AutocompleteCategories(ctx context.Context, query string) ([]model.Suggestion, error) {
	return c.autocomplete(ctx, "categories", query, nil)
}

func (c *Client) AutocompleteBudgets(ctx context.Context, query string) ([]model.Suggestion, error) {
	return c.autocomplete(ctx, "budgets", query, nil)
}

// SubmitTransaction stores a single-split transaction. A server answer that
// carries a message becomes a *model.SubmitError.
func (c *Client) SubmitTransaction(ctx context.Context, d model.Draft) error {
	body := storeRequest{
		ErrorIfDuplicateHash: true,
		ApplyRules:           true,
		Transactions: []storeSplit{{
			Type:            string(d.Type),
			Date:            d.Date.Format(dateLayout),
			Amount:          d.Amount,
			Description:     d.Description,
			SourceName:      d.SourceName,
			DestinationName: d.DestinationName,
			CategoryID:      d.CategoryID,
			CategoryName:    d.CategoryName,
			BudgetID:        d.BudgetID,
			BudgetName:      d.BudgetName,
		}},
	}
	err := c.do(ctx, http.MethodPost, "/transactions", nil, body, nil)
	if err == nil {
		c.log.Info("transaction stored", "type", d.Type, "amount", d.Amount)
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		c.log.Warn("transaction rejected", "status", apiErr.Status, "message", apiErr.Message)
		return fmt.Errorf("firefly: store transaction: %w", &model.SubmitError{Message: apiErr.Message, Fields: apiErr.Fields})
	}
	return err
}
