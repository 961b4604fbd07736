package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/fireflymoney/internal/money"
	"github.com/jask/fireflymoney/internal/store"
)

type filterKind int

const (
	filterCurrency filterKind = iota
	filterPeriod
)

type filterOption struct {
	kind     filterKind
	code     string
	months   int
	label    string
	disabled bool
}

type filtersState struct {
	options []filterOption
	cursor  int
}

// newFiltersState lists the loaded currencies followed by the range lengths.
// The option matching the current selection is disabled.
func newFiltersState(snap store.Snapshot) filtersState {
	var opts []filterOption
	for _, c := range snap.Currencies {
		sym := c.Symbol
		if sym == "" {
			sym = money.Symbol(c.Code)
		}
		opts = append(opts, filterOption{
			kind:     filterCurrency,
			code:     c.Code,
			label:    c.Code + " " + sym,
			disabled: c.Code == snap.Selection.CurrencyCode,
		})
	}
	for _, months := range store.Periods {
		opts = append(opts, filterOption{
			kind:     filterPeriod,
			months:   months,
			label:    store.PeriodLabel(months),
			disabled: months == snap.Selection.RangeMonths,
		})
	}
	st := filtersState{options: opts}
	for st.cursor < len(opts)-1 && opts[st.cursor].disabled {
		st.cursor++
	}
	return st
}

func (m Model) handleFiltersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := m.keys.Lookup(msg.String(), scopeFilters)
	if b == nil {
		return m, nil
	}
	switch b.Action {
	case actionQuit:
		return m, tea.Quit
	case actionBack:
		return m, pop
	case actionNavigate:
		n := len(m.filters.options)
		if n == 0 {
			return m, nil
		}
		switch msg.String() {
		case "j", "down":
			m.filters.cursor = (m.filters.cursor + 1) % n
		default:
			m.filters.cursor = (m.filters.cursor - 1 + n) % n
		}
	case actionSelect:
		return m.applyFilter()
	}
	return m, nil
}

func (m Model) applyFilter() (tea.Model, tea.Cmd) {
	if m.filters.cursor >= len(m.filters.options) {
		return m, nil
	}
	opt := m.filters.options[m.filters.cursor]
	if opt.disabled {
		return m, nil
	}
	var err error
	switch opt.kind {
	case filterCurrency:
		err = m.store.SetCurrentCode(opt.code)
	case filterPeriod:
		err = m.store.SetRange(opt.months)
	}
	if err != nil {
		m.setError(err.Error())
		return m, nil
	}
	m.log.Info("filter applied", "option", opt.label)
	m.clearStatus()
	return m, tea.Batch(pop, m.refresh(periodEffects...))
}

func (m Model) viewFilters() string {
	snap := m.store.Snapshot()
	w := m.sectionWidth() - 4

	var currencies, periods []string
	for i, opt := range m.filters.options {
		line := m.filterLine(opt, i == m.filters.cursor, w)
		if opt.kind == filterCurrency {
			currencies = append(currencies, line)
		} else {
			periods = append(periods, line)
		}
	}
	if len(currencies) == 0 {
		if m.loading(snap, store.EffectCurrencies) {
			currencies = []string{skeleton(2, w)}
		} else {
			currencies = []string{mutedStyle.Render("No currencies loaded.")}
		}
	}

	body := []string{
		m.renderHeader(snap.Range.Title),
		"",
		m.renderSection("currency", strings.Join(currencies, "\n")),
		m.renderSection("period", strings.Join(periods, "\n")),
	}
	footer := m.renderFooter(m.keys.HelpBindings(scopeFilters))
	return m.placeWithFooter(strings.Join(body, "\n"), m.renderStatus(), footer)
}

func (m Model) filterLine(opt filterOption, selected bool, w int) string {
	prefix := "  "
	if selected {
		prefix = cursorStyle.Render("> ")
	}
	label := opt.label
	switch {
	case opt.disabled:
		label = disabledStyle.Render(label) + mutedStyle.Render("  current")
	case selected:
		label = focusStyle.Render(label)
	}
	return padRight(prefix+label, w)
}
