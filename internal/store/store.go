// Package store holds the shared client state: fetched collections, their
// loading flags and errors, and the active range and currency. It is safe
// for concurrent use; refreshes run on background goroutines.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/jask/fireflymoney/internal/logging"
	"github.com/jask/fireflymoney/internal/model"
	"github.com/jask/fireflymoney/internal/prefs"
)

// Effect names one fetch the store performs.
type Effect int

const (
	EffectAccounts Effect = iota
	EffectInsight
	EffectSummary
	EffectCurrencies
	EffectTransactions
)

var allEffects = []Effect{EffectAccounts, EffectInsight, EffectSummary, EffectCurrencies, EffectTransactions}

func (e Effect) String() string {
	switch e {
	case EffectAccounts:
		return "accounts"
	case EffectInsight:
		return "insight"
	case EffectSummary:
		return "summary"
	case EffectCurrencies:
		return "currencies"
	case EffectTransactions:
		return "transactions"
	default:
		return fmt.Sprintf("effect(%d)", int(e))
	}
}

var ErrInvalidRange = errors.New("store: range must be 1, 3, 6 or 12 months")

// Prefs persists the selection between runs.
type Prefs interface {
	LoadSelection() (prefs.Selection, bool, error)
	SaveSelection(prefs.Selection) error
}

// Snapshot is a copy of the store's state for rendering.
type Snapshot struct {
	Accounts     []model.Account
	Insight      []model.InsightCategory
	Summary      model.Summary
	Currencies   []model.Currency
	Transactions []model.Transaction
	Selection    Selection
	Range        RangeDetails
	Loading      map[Effect]bool
	Errs         map[Effect]error
}

// ActiveAccounts filters the snapshot's accounts to active ones.
func (s Snapshot) ActiveAccounts() []model.Account {
	var out []model.Account
	for _, a := range s.Accounts {
		if a.Active {
			out = append(out, a)
		}
	}
	return out
}

// Currency returns the loaded currency matching code.
func (s Snapshot) Currency(code string) (model.Currency, bool) {
	for _, c := range s.Currencies {
		if c.Code == code {
			return c, true
		}
	}
	return model.Currency{}, false
}

type Store struct {
	fetcher model.Fetcher
	prefs   Prefs
	log     *log.Logger
	now     func() time.Time

	mu           sync.RWMutex
	sel          Selection
	accounts     []model.Account
	insight      []model.InsightCategory
	summary      model.Summary
	currencies   []model.Currency
	transactions []model.Transaction
	loading      map[Effect]bool
	errs         map[Effect]error
	gen          map[Effect]uint64
}

type Option func(*Store)

func WithPrefs(p Prefs) Option { return func(s *Store) { s.prefs = p } }

func WithLogger(l *log.Logger) Option { return func(s *Store) { s.log = logging.OrDiscard(l) } }

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSelection sets the initial selection used when no saved one exists.
func WithSelection(sel Selection) Option { return func(s *Store) { s.sel = sel } }

func New(f model.Fetcher, opts ...Option) *Store {
	s := &Store{
		fetcher: f,
		log:     logging.Discard(),
		now:     time.Now,
		sel:     Selection{RangeMonths: Periods[0]},
		loading: map[Effect]bool{},
		errs:    map[Effect]error{},
		gen:     map[Effect]uint64{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if !ValidRange(s.sel.RangeMonths) {
		s.sel.RangeMonths = Periods[0]
	}
	s.sel.CurrencyCode = normCode(s.sel.CurrencyCode)
	return s
}

// LoadPrefs applies a saved selection, if any.
func (s *Store) LoadPrefs() error {
	if s.prefs == nil {
		return nil
	}
	saved, ok, err := s.prefs.LoadSelection()
	if err != nil {
		return fmt.Errorf("store: load prefs: %w", err)
	}
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ValidRange(saved.RangeMonths) {
		s.sel.RangeMonths = saved.RangeMonths
	}
	if c := normCode(saved.CurrencyCode); c != "" {
		s.sel.CurrencyCode = c
	}
	return nil
}

func (s *Store) persist(sel Selection) {
	if s.prefs == nil {
		return
	}
	if err := s.prefs.SaveSelection(prefs.Selection{RangeMonths: sel.RangeMonths, CurrencyCode: sel.CurrencyCode}); err != nil {
		s.log.Warn("saving selection failed", "err", err)
	}
}

func (s *Store) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sel
}

func (s *Store) Range() RangeDetails {
	return s.Selection().Range(s.now())
}

// SetRange selects a range length and returns to the current period.
func (s *Store) SetRange(months int) error {
	if !ValidRange(months) {
		return ErrInvalidRange
	}
	s.mu.Lock()
	s.sel.RangeMonths = months
	s.sel.Offset = 0
	sel := s.sel
	s.mu.Unlock()
	s.persist(sel)
	return nil
}

// SetCurrentCode selects the currency the summaries are computed in.
func (s *Store) SetCurrentCode(code string) error {
	code = normCode(code)
	if code == "" {
		return errors.New("store: currency code required")
	}
	s.mu.Lock()
	s.sel.CurrencyCode = code
	sel := s.sel
	s.mu.Unlock()
	s.persist(sel)
	return nil
}

// ShiftRange moves the window by delta ranges. It never moves past the
// current period.
func (s *Store) ShiftRange(delta int) RangeDetails {
	s.mu.Lock()
	s.sel.Offset += delta
	if s.sel.Offset > 0 {
		s.sel.Offset = 0
	}
	sel := s.sel
	s.mu.Unlock()
	return sel.Range(s.now())
}

func (s *Store) Loading(e Effect) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading[e]
}

func (s *Store) Err(e Effect) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errs[e]
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Accounts:     append([]model.Account(nil), s.accounts...),
		Insight:      append([]model.InsightCategory(nil), s.insight...),
		Summary:      model.Summary{NetWorth: append([]model.Amount(nil), s.summary.NetWorth...), Balance: append([]model.Amount(nil), s.summary.Balance...)},
		Currencies:   append([]model.Currency(nil), s.currencies...),
		Transactions: append([]model.Transaction(nil), s.transactions...),
		Selection:    s.sel,
		Range:        s.sel.Range(s.now()),
		Loading:      make(map[Effect]bool, len(s.loading)),
		Errs:         make(map[Effect]error, len(s.errs)),
	}
	for k, v := range s.loading {
		snap.Loading[k] = v
	}
	for k, v := range s.errs {
		snap.Errs[k] = v
	}
	return snap
}

// Refresh runs one fetch with the current selection. If another refresh of
// the same effect starts before this one finishes, this one's result is
// dropped.
func (s *Store) Refresh(ctx context.Context, e Effect) error {
	s.mu.Lock()
	s.gen[e]++
	gen := s.gen[e]
	s.loading[e] = true
	sel := s.sel
	s.mu.Unlock()

	period := sel.Range(s.now()).Period()
	start := time.Now()
	apply, err := s.fetch(ctx, e, period, sel.CurrencyCode)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen[e] != gen {
		return err
	}
	s.loading[e] = false
	s.errs[e] = err
	if err != nil {
		s.log.Warn("refresh failed", "effect", e, "err", err)
		return fmt.Errorf("store: refresh %s: %w", e, err)
	}
	apply()
	s.log.Debug("refreshed", "effect", e, "elapsed", time.Since(start))
	return nil
}

// fetch calls the backend and returns a closure that installs the result;
// the closure runs with the lock held.
func (s *Store) fetch(ctx context.Context, e Effect, p model.Period, code string) (func(), error) {
	switch e {
	case EffectAccounts:
		v, err := s.fetcher.Accounts(ctx)
		return func() { s.accounts = v }, err
	case EffectInsight:
		v, err := s.fetcher.InsightCategories(ctx, p, code)
		return func() { s.insight = v }, err
	case EffectSummary:
		v, err := s.fetcher.Summary(ctx, p, code)
		return func() { s.summary = v }, err
	case EffectCurrencies:
		v, err := s.fetcher.Currencies(ctx)
		return func() {
			s.currencies = v
			if s.sel.CurrencyCode == "" {
				s.sel.CurrencyCode = defaultCode(v)
			}
		}, err
	case EffectTransactions:
		v, err := s.fetcher.Transactions(ctx, p)
		return func() { s.transactions = v }, err
	default:
		return func() {}, fmt.Errorf("unknown effect %d", int(e))
	}
}

func defaultCode(list []model.Currency) string {
	for _, c := range list {
		if c.Default {
			return normCode(c.Code)
		}
	}
	if len(list) > 0 {
		return normCode(list[0].Code)
	}
	return ""
}

// RefreshAll refetches every collection. Currencies load first when no
// currency is selected yet, so the summaries use the default one. The
// returned error joins every failed effect.
func (s *Store) RefreshAll(ctx context.Context) error {
	var errs []error
	effects := allEffects
	if s.Selection().CurrencyCode == "" {
		if err := s.Refresh(ctx, EffectCurrencies); err != nil {
			errs = append(errs, err)
		}
		effects = []Effect{EffectAccounts, EffectInsight, EffectSummary, EffectTransactions}
	}
	return errors.Join(append(errs, s.RefreshMany(ctx, effects...))...)
}

// RefreshMany runs the given effects concurrently.
func (s *Store) RefreshMany(ctx context.Context, effects ...Effect) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, e := range effects {
		g.Go(func() error {
			if err := s.Refresh(ctx, e); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
