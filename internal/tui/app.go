// Package tui is the terminal front end: a stack of screens over the shared
// store, driven by bubbletea.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/jask/fireflymoney/internal/form"
	"github.com/jask/fireflymoney/internal/logging"
	"github.com/jask/fireflymoney/internal/model"
	"github.com/jask/fireflymoney/internal/money"
	"github.com/jask/fireflymoney/internal/store"
)

type screenID int

const (
	screenHome screenID = iota
	screenFilters
	screenForm
	screenTransactions
)

func (s screenID) String() string {
	switch s {
	case screenHome:
		return "home"
	case screenFilters:
		return "filters"
	case screenForm:
		return "form"
	case screenTransactions:
		return "transactions"
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

// Deps are the collaborators the app is built from.
type Deps struct {
	Backend    model.Backend
	Store      *store.Store
	Log        *log.Logger
	Debounce   time.Duration
	DateFormat string
	Now        func() time.Time
}

// Model is the root bubbletea model.
type Model struct {
	ctx        context.Context
	backend    model.Backend
	store      *store.Store
	keys       *KeyRegistry
	log        *log.Logger
	now        func() time.Time
	debounce   time.Duration
	dateFormat string

	stack     []screenID
	width     int
	height    int
	status    string
	statusErr bool
	pending   map[store.Effect]int
	spinner   spinner.Model

	home    homeState
	filters filtersState
	entry   entryState
	txs     txState
}

func New(ctx context.Context, d Deps) Model {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	format := d.DateFormat
	if format == "" {
		format = time.DateOnly
	}
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = mutedStyle
	return Model{
		ctx:        ctx,
		backend:    d.Backend,
		store:      d.Store,
		keys:       NewKeyRegistry(),
		log:        logging.OrDiscard(d.Log).WithPrefix("tui"),
		now:        now,
		debounce:   d.Debounce,
		dateFormat: format,
		stack:      []screenID{screenHome},
		pending:    map[store.Effect]int{},
		spinner:    sp,
	}
}

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

type pushMsg struct {
	screen  screenID
	payload *model.Draft
}

type popMsg struct{}

// replaceMsg swaps the top screen for another one.
type replaceMsg struct{ screen screenID }

type refreshDoneMsg struct {
	effects []store.Effect
	err     error
}

type lookupDueMsg struct {
	gen    int
	lookup form.Lookup
}

type suggestionsMsg struct {
	gen    int
	lookup form.Lookup
	items  []model.Suggestion
	err    error
}

type submitDoneMsg struct {
	gen int
	err error
}

func push(s screenID) tea.Cmd {
	return func() tea.Msg { return pushMsg{screen: s} }
}

func pushForm(payload model.Draft) tea.Cmd {
	return func() tea.Msg { return pushMsg{screen: screenForm, payload: &payload} }
}

func pop() tea.Msg { return popMsg{} }

// ---------------------------------------------------------------------------
// bubbletea plumbing
// ---------------------------------------------------------------------------

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refreshAll())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case refreshDoneMsg:
		return m.handleRefreshDone(msg)
	case pushMsg:
		return m.handlePush(msg)
	case popMsg:
		return m.handlePop()
	case replaceMsg:
		m.stack = m.stack[:len(m.stack)-1]
		return m.handlePush(pushMsg{screen: msg.screen})
	case lookupDueMsg:
		return m.handleLookupDue(msg)
	case suggestionsMsg:
		return m.handleSuggestions(msg)
	case submitDoneMsg:
		return m.handleSubmitDone(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) View() string {
	switch m.top() {
	case screenFilters:
		return m.viewFilters()
	case screenForm:
		return m.viewForm()
	case screenTransactions:
		return m.viewTransactions()
	default:
		return m.viewHome()
	}
}

func (m Model) top() screenID {
	if len(m.stack) == 0 {
		return screenHome
	}
	return m.stack[len(m.stack)-1]
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.top() {
	case screenFilters:
		return m.handleFiltersKey(msg)
	case screenForm:
		return m.handleFormKey(msg)
	case screenTransactions:
		return m.handleTransactionsKey(msg)
	default:
		return m.handleHomeKey(msg)
	}
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.top() != screenForm || !m.entry.form.Success() {
		return m, nil
	}
	if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
		return m.openTransactionsFromSuccess()
	}
	return m, nil
}

func (m Model) handlePush(msg pushMsg) (tea.Model, tea.Cmd) {
	m.stack = append(m.stack, msg.screen)
	m.log.Debug("navigate", "to", msg.screen, "depth", len(m.stack))
	switch msg.screen {
	case screenFilters:
		m.filters = newFiltersState(m.store.Snapshot())
	case screenForm:
		var payload model.Draft
		if msg.payload != nil {
			payload = *msg.payload
		}
		return m, m.openForm(payload)
	case screenTransactions:
		m.txs = txState{}
	}
	return m, nil
}

func (m Model) handlePop() (tea.Model, tea.Cmd) {
	if len(m.stack) <= 1 {
		return m, tea.Quit
	}
	m.stack = m.stack[:len(m.stack)-1]
	return m, nil
}

// ---------------------------------------------------------------------------
// Store refreshes
// ---------------------------------------------------------------------------

func (m *Model) refreshAll() tea.Cmd {
	effects := []store.Effect{store.EffectCurrencies, store.EffectAccounts, store.EffectInsight, store.EffectSummary, store.EffectTransactions}
	for _, e := range effects {
		m.pending[e]++
	}
	s, ctx := m.store, m.ctx
	return func() tea.Msg {
		return refreshDoneMsg{effects: effects, err: s.RefreshAll(ctx)}
	}
}

func (m *Model) refresh(effects ...store.Effect) tea.Cmd {
	for _, e := range effects {
		m.pending[e]++
	}
	s, ctx := m.store, m.ctx
	return func() tea.Msg {
		return refreshDoneMsg{effects: effects, err: s.RefreshMany(ctx, effects...)}
	}
}

// periodEffects are the fetches that depend on the selected range or
// currency.
var periodEffects = []store.Effect{store.EffectInsight, store.EffectSummary, store.EffectTransactions}

func (m Model) handleRefreshDone(msg refreshDoneMsg) (tea.Model, tea.Cmd) {
	for _, e := range msg.effects {
		if m.pending[e] > 0 {
			m.pending[e]--
		}
	}
	if msg.err != nil {
		m.setError(fmt.Sprintf("Refresh failed: %v", msg.err))
		return m, nil
	}
	if m.statusErr && m.idle() {
		m.clearStatus()
	}
	return m, nil
}

func (m Model) idle() bool {
	for _, n := range m.pending {
		if n > 0 {
			return false
		}
	}
	return true
}

// loading reports whether e is in flight, either already inside the store
// or dispatched and not yet started.
func (m Model) loading(snap store.Snapshot, e store.Effect) bool {
	return snap.Loading[e] || m.pending[e] > 0
}

func (m *Model) setError(msg string) {
	m.status = msg
	m.statusErr = true
	m.log.Warn(msg)
}

func (m *Model) setStatus(msg string) {
	m.status = msg
	m.statusErr = false
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

func (m Model) places(snap store.Snapshot, code string) int32 {
	if c, ok := snap.Currency(code); ok {
		return c.DecimalPlaces
	}
	return money.DefaultPlaces
}
