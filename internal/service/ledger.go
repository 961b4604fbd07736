package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jask/fireflymoney/internal/database"
	"github.com/jask/fireflymoney/internal/database/repository"
	"github.com/jask/fireflymoney/internal/logging"
	"github.com/jask/fireflymoney/internal/model"
	"github.com/jask/fireflymoney/internal/money"
)

const (
	suggestionLimit = 10
	noNameAccount   = "(no name)"
)

// LedgerService is a local Backend over the sqlite ledger. It applies the
// same account rules a Firefly server applies when storing transactions.
type LedgerService struct {
	DB  *sql.DB
	Log *log.Logger
	Now func() time.Time
}

var _ model.Backend = (*LedgerService)(nil)

func NewLedgerService(db *sql.DB, l *log.Logger) *LedgerService {
	return &LedgerService{DB: db, Log: logging.OrDiscard(l), Now: time.Now}
}

func (s *LedgerService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *LedgerService) logger() *log.Logger { return logging.OrDiscard(s.Log) }

// balances returns each account's balance after every transaction dated on
// or before asOf. A zero asOf counts everything.
func (s *LedgerService) balances(ctx context.Context, accounts []repository.Account, asOf time.Time) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(accounts))
	for _, a := range accounts {
		out[a.ID] = a.OpeningBalance
	}
	rows, err := repository.NewTransactionRepo(s.DB).List(ctx, repository.TransactionFilters{To: asOf})
	if err != nil {
		return nil, fmt.Errorf("ledger: list transactions: %w", err)
	}
	for _, r := range rows {
		if b, ok := out[r.SourceID]; ok {
			out[r.SourceID] = b.Sub(r.Amount)
		}
		if b, ok := out[r.DestinationID]; ok {
			out[r.DestinationID] = b.Add(r.Amount)
		}
	}
	return out, nil
}

// Accounts returns every asset account with its current balance.
func (s *LedgerService) Accounts(ctx context.Context) ([]model.Account, error) {
	accounts, err := repository.NewAccountRepo(s.DB).List(ctx, repository.AccountAsset)
	if err != nil {
		return nil, fmt.Errorf("ledger: list accounts: %w", err)
	}
	bal, err := s.balances(ctx, accounts, time.Time{})
	if err != nil {
		return nil, err
	}
	out := make([]model.Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, model.Account{
			ID:              a.ID,
			Name:            a.Name,
			Type:            a.AccountType,
			Active:          a.Active,
			IncludeNetWorth: a.IncludeNetWorth,
			CurrentBalance:  bal[a.ID],
			CurrencyCode:    a.CurrencyCode,
		})
	}
	return out, nil
}

func (s *LedgerService) Currencies(ctx context.Context) ([]model.Currency, error) {
	list, err := repository.NewCurrencyRepo(s.DB).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger: list currencies: %w", err)
	}
	out := make([]model.Currency, 0, len(list))
	for _, c := range list {
		out = append(out, model.Currency{
			ID:            c.ID,
			Code:          c.Code,
			Name:          c.Name,
			Symbol:        c.Symbol,
			DecimalPlaces: c.DecimalPlaces,
			Default:       c.Default,
		})
	}
	return out, nil
}

func inCurrency(code, want string) bool {
	return want == "" || strings.EqualFold(code, want)
}

// InsightCategories sums withdrawals per category over p. Differences are
// negative; the largest expense sorts first. Uncategorised spending is not
// listed.
func (s *LedgerService) InsightCategories(ctx context.Context, p model.Period, currencyCode string) ([]model.InsightCategory, error) {
	rows, err := repository.NewTransactionRepo(s.DB).List(ctx, repository.TransactionFilters{
		From: p.Start, To: p.End, Type: string(model.Withdrawal),
	})
	if err != nil {
		return nil, fmt.Errorf("ledger: list transactions: %w", err)
	}
	type key struct{ id, code string }
	sums := map[key]*model.InsightCategory{}
	for _, r := range rows {
		if r.CategoryID == nil || !inCurrency(r.CurrencyCode, currencyCode) {
			continue
		}
		k := key{*r.CategoryID, r.CurrencyCode}
		ic, ok := sums[k]
		if !ok {
			ic = &model.InsightCategory{ID: *r.CategoryID, Name: deref(r.CategoryName), CurrencyCode: r.CurrencyCode}
			sums[k] = ic
		}
		ic.Difference = ic.Difference.Sub(r.Amount)
	}
	out := make([]model.InsightCategory, 0, len(sums))
	for _, ic := range sums {
		out = append(out, *ic)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Difference.Cmp(out[j].Difference); c != 0 {
			return c < 0
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Summary computes net worth at the end of p and the period balance
// (deposits minus withdrawals) per currency.
func (s *LedgerService) Summary(ctx context.Context, p model.Period, currencyCode string) (model.Summary, error) {
	accounts, err := repository.NewAccountRepo(s.DB).List(ctx, repository.AccountAsset)
	if err != nil {
		return model.Summary{}, fmt.Errorf("ledger: list accounts: %w", err)
	}
	bal, err := s.balances(ctx, accounts, p.End)
	if err != nil {
		return model.Summary{}, err
	}

	var codes []string
	seen := map[string]bool{}
	addCode := func(c string) {
		c = strings.ToUpper(c)
		if c != "" && !seen[c] {
			seen[c] = true
			codes = append(codes, c)
		}
	}
	addCode(currencyCode)
	if currencyCode == "" {
		for _, a := range accounts {
			addCode(a.CurrencyCode)
		}
	}

	netWorth := map[string]decimal.Decimal{}
	for _, a := range accounts {
		if !a.Active || !a.IncludeNetWorth {
			continue
		}
		c := strings.ToUpper(a.CurrencyCode)
		netWorth[c] = netWorth[c].Add(bal[a.ID])
	}

	rows, err := repository.NewTransactionRepo(s.DB).List(ctx, repository.TransactionFilters{From: p.Start, To: p.End})
	if err != nil {
		return model.Summary{}, fmt.Errorf("ledger: list transactions: %w", err)
	}
	balance := map[string]decimal.Decimal{}
	for _, r := range rows {
		c := strings.ToUpper(r.CurrencyCode)
		switch model.TransactionType(r.Type) {
		case model.Deposit:
			balance[c] = balance[c].Add(r.Amount)
		case model.Withdrawal:
			balance[c] = balance[c].Sub(r.Amount)
		}
	}

	var out model.Summary
	for _, c := range codes {
		out.NetWorth = append(out.NetWorth, model.Amount{CurrencyCode: c, MonetaryValue: netWorth[c]})
		out.Balance = append(out.Balance, model.Amount{CurrencyCode: c, MonetaryValue: balance[c]})
	}
	return out, nil
}

// Transactions lists the transactions dated inside p, newest first.
func (s *LedgerService) Transactions(ctx context.Context, p model.Period) ([]model.Transaction, error) {
	rows, err := repository.NewTransactionRepo(s.DB).List(ctx, repository.TransactionFilters{From: p.Start, To: p.End})
	if err != nil {
		return nil, fmt.Errorf("ledger: list transactions: %w", err)
	}
	out := make([]model.Transaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Transaction{
			ID:              r.ID,
			Type:            model.TransactionType(r.Type),
			Date:            r.Date,
			Description:     r.Description,
			Amount:          r.Amount,
			CurrencyCode:    r.CurrencyCode,
			SourceName:      r.SourceName,
			DestinationName: r.DestinationName,
			CategoryName:    deref(r.CategoryName),
			BudgetName:      deref(r.BudgetName),
		})
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *LedgerService) AutocompleteDescriptions(ctx context.Context, query string) ([]model.Suggestion, error) {
	descs, err := repository.NewTransactionRepo(s.DB).Descriptions(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("ledger: descriptions: %w", err)
	}
	items := make([]model.Suggestion, 0, len(descs))
	for _, d := range descs {
		items = append(items, model.Suggestion{Name: d})
	}
	return Rank(query, items, suggestionLimit), nil
}

// AutocompleteAccounts offers accounts usable as a source (asset, revenue,
// liability) or destination (asset, expense, liability).
func (s *LedgerService) AutocompleteAccounts(ctx context.Context, query string, destination bool) ([]model.Suggestion, error) {
	types := []string{repository.AccountAsset, repository.AccountRevenue, repository.AccountLiability}
	if destination {
		types = []string{repository.AccountAsset, repository.AccountExpense, repository.AccountLiability}
	}
	accounts, err := repository.NewAccountRepo(s.DB).List(ctx, types...)
	if err != nil {
		return nil, fmt.Errorf("ledger: list accounts: %w", err)
	}
	bal, err := s.balances(ctx, accounts, time.Time{})
	if err != nil {
		return nil, err
	}
	places := s.places(ctx)
	items := make([]model.Suggestion, 0, len(accounts))
	for _, a := range accounts {
		if !a.Active {
			continue
		}
		label := a.Name
		if a.AccountType == repository.AccountAsset || a.AccountType == repository.AccountLiability {
			label = fmt.Sprintf("%s (%s)", a.Name, money.Format(a.CurrencyCode, bal[a.ID], places[a.CurrencyCode]))
		}
		items = append(items, model.Suggestion{ID: a.ID, Name: a.Name, NameWithBalance: label})
	}
	return Rank(query, items, suggestionLimit), nil
}

func (s *LedgerService) places(ctx context.Context) map[string]int32 {
	out := map[string]int32{}
	list, err := repository.NewCurrencyRepo(s.DB).List(ctx)
	if err != nil {
		return out
	}
	for _, c := range list {
		out[c.Code] = c.DecimalPlaces
	}
	return out
}

func (s *LedgerService) AutocompleteCategories(ctx context.Context, query string) ([]model.Suggestion, error) {
	cats, err := repository.NewCategoryRepo(s.DB).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger: list categories: %w", err)
	}
	items := make([]model.Suggestion, 0, len(cats))
	for _, c := range cats {
		items = append(items, model.Suggestion{ID: c.ID, Name: c.Name})
	}
	return Rank(query, items, suggestionLimit), nil
}

func (s *LedgerService) AutocompleteBudgets(ctx context.Context, query string) ([]model.Suggestion, error) {
	budgets, err := repository.NewBudgetRepo(s.DB).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger: list budgets: %w", err)
	}
	items := make([]model.Suggestion, 0, len(budgets))
	for _, b := range budgets {
		items = append(items, model.Suggestion{ID: b.ID, Name: b.Name})
	}
	return Rank(query, items, suggestionLimit), nil
}

func reject(format string, args ...any) error {
	return &model.SubmitError{Message: fmt.Sprintf(format, args...)}
}

// SubmitTransaction stores d. Rule violations come back as
// *model.SubmitError; nothing is written when any rule fails.
func (s *LedgerService) SubmitTransaction(ctx context.Context, d model.Draft) error {
	desc := strings.TrimSpace(d.Description)
	if desc == "" {
		return reject("The description field is required.")
	}
	amount, err := money.ParseAmount(d.Amount)
	if err != nil || !amount.IsPositive() {
		return reject("The amount must be more than zero.")
	}
	switch d.Type {
	case model.Withdrawal, model.Deposit, model.Transfer:
	case model.OpeningBalance:
		return reject("Opening balances cannot be created from this form.")
	default:
		return reject("Transaction type %q is not supported.", d.Type)
	}
	date := d.Date
	if date.IsZero() {
		date = s.now()
	}

	var stored repository.Transaction
	err = database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		accounts := repository.NewAccountRepo(tx)
		src, dst, err := s.resolveAccounts(ctx, accounts, d)
		if err != nil {
			return err
		}
		t := repository.Transaction{
			ID:            uuid.NewString(),
			Type:          string(d.Type),
			Date:          date,
			Description:   desc,
			Amount:        amount,
			SourceID:      src.ID,
			DestinationID: dst.ID,
		}
		t.CurrencyCode = src.CurrencyCode
		if d.Type == model.Deposit {
			t.CurrencyCode = dst.CurrencyCode
		}

		if t.CategoryID, err = resolveCategory(ctx, repository.NewCategoryRepo(tx), d); err != nil {
			return err
		}
		if d.Type == model.Withdrawal {
			if t.BudgetID, err = resolveBudget(ctx, repository.NewBudgetRepo(tx), d); err != nil {
				return err
			}
		}
		if err := repository.NewTransactionRepo(tx).Insert(ctx, t); err != nil {
			return fmt.Errorf("ledger: insert transaction: %w", err)
		}
		stored = t
		return nil
	})
	if err != nil {
		if msg, ok := model.RejectionMessage(err); ok {
			s.logger().Warn("transaction rejected", "type", d.Type, "reason", msg)
		}
		return err
	}
	s.logger().Info("transaction stored", "id", stored.ID, "type", stored.Type, "amount", stored.Amount.String())
	return nil
}

func (s *LedgerService) resolveAccounts(ctx context.Context, repo *repository.AccountRepo, d model.Draft) (repository.Account, repository.Account, error) {
	var src, dst repository.Account
	var err error
	switch d.Type {
	case model.Withdrawal:
		if src, err = findOwn(ctx, repo, d.SourceName, "source"); err != nil {
			return src, dst, err
		}
		dst, err = findOrCreate(ctx, repo, d.DestinationName, repository.AccountExpense, src.CurrencyCode)
	case model.Deposit:
		if dst, err = findOwn(ctx, repo, d.DestinationName, "destination"); err != nil {
			return src, dst, err
		}
		src, err = findOrCreate(ctx, repo, d.SourceName, repository.AccountRevenue, dst.CurrencyCode)
	case model.Transfer:
		if src, err = findOwn(ctx, repo, d.SourceName, "source"); err != nil {
			return src, dst, err
		}
		if dst, err = findOwn(ctx, repo, d.DestinationName, "destination"); err != nil {
			return src, dst, err
		}
		if src.ID == dst.ID {
			return src, dst, reject("Source and destination accounts must differ.")
		}
		if !strings.EqualFold(src.CurrencyCode, dst.CurrencyCode) {
			return src, dst, reject("Transfers between %s and %s accounts are not supported.", src.CurrencyCode, dst.CurrencyCode)
		}
	}
	return src, dst, err
}

// findOwn looks up an asset (or liability) account by name.
func findOwn(ctx context.Context, repo *repository.AccountRepo, name, role string) (repository.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return repository.Account{}, reject("A %s account is required.", role)
	}
	for _, typ := range []string{repository.AccountAsset, repository.AccountLiability} {
		a, err := repo.FindByName(ctx, name, typ)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return repository.Account{}, fmt.Errorf("ledger: find account: %w", err)
		}
	}
	return repository.Account{}, reject("Could not find a valid %s account with name %q.", role, name)
}

func findOrCreate(ctx context.Context, repo *repository.AccountRepo, name, accountType, currency string) (repository.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = noNameAccount
	}
	a, err := repo.FindByName(ctx, name, accountType)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return repository.Account{}, fmt.Errorf("ledger: find account: %w", err)
	}
	a = repository.Account{
		ID:           uuid.NewString(),
		Name:         name,
		AccountType:  accountType,
		CurrencyCode: currency,
		Active:       true,
	}
	if err := repo.Insert(ctx, a); err != nil {
		return repository.Account{}, fmt.Errorf("ledger: create %s account: %w", accountType, err)
	}
	return a, nil
}

func resolveCategory(ctx context.Context, repo *repository.CategoryRepo, d model.Draft) (*string, error) {
	if d.CategoryID != "" {
		c, err := repo.Get(ctx, d.CategoryID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, reject("Category #%s does not exist.", d.CategoryID)
		}
		if err != nil {
			return nil, fmt.Errorf("ledger: get category: %w", err)
		}
		return &c.ID, nil
	}
	name := strings.TrimSpace(d.CategoryName)
	if name == "" {
		return nil, nil
	}
	c, err := repo.FindByName(ctx, name)
	if err == nil {
		return &c.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("ledger: find category: %w", err)
	}
	c = repository.Category{ID: uuid.NewString(), Name: name}
	if err := repo.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("ledger: create category: %w", err)
	}
	return &c.ID, nil
}

func resolveBudget(ctx context.Context, repo *repository.BudgetRepo, d model.Draft) (*string, error) {
	var (
		b   repository.Budget
		err error
	)
	switch {
	case d.BudgetID != "":
		b, err = repo.Get(ctx, d.BudgetID)
	case strings.TrimSpace(d.BudgetName) != "":
		b, err = repo.FindByName(ctx, d.BudgetName)
	default:
		return nil, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, reject("Budget %q does not exist.", firstNonEmpty(d.BudgetName, d.BudgetID))
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: find budget: %w", err)
	}
	return &b.ID, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
