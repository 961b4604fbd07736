package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/fireflymoney/internal/model"
	"github.com/jask/fireflymoney/internal/money"
	"github.com/jask/fireflymoney/internal/store"
)

type homeTab int

const (
	tabAccounts homeTab = iota
	tabCategories
)

var homeTabNames = []string{"accounts", "categories"}

type homeState struct {
	tab    homeTab
	scroll int
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := m.keys.Lookup(msg.String(), scopeHome)
	if b == nil {
		return m, nil
	}
	switch b.Action {
	case actionQuit:
		return m, tea.Quit
	case actionSwitchTab:
		m.home.tab = (m.home.tab + 1) % homeTab(len(homeTabNames))
		m.home.scroll = 0
	case actionNavigate:
		switch msg.String() {
		case "j", "down":
			if m.home.scroll < m.homeRowCount()-1 {
				m.home.scroll++
			}
		default:
			if m.home.scroll > 0 {
				m.home.scroll--
			}
		}
	case actionPrevPeriod, actionNextPeriod:
		delta := -1
		if b.Action == actionNextPeriod {
			delta = 1
		}
		before := m.store.Range()
		after := m.store.ShiftRange(delta)
		if after.Start.Equal(before.Start) {
			return m, nil
		}
		m.setStatus(after.Title)
		return m, m.refresh(periodEffects...)
	case actionFilters:
		return m, push(screenFilters)
	case actionNew:
		return m, pushForm(model.Draft{})
	case actionTransactions:
		return m, push(screenTransactions)
	case actionRefresh:
		m.setStatus("Refreshing...")
		return m, m.refreshAll()
	}
	return m, nil
}

func (m Model) homeRowCount() int {
	snap := m.store.Snapshot()
	if m.home.tab == tabCategories {
		return len(snap.Insight)
	}
	return len(snap.ActiveAccounts())
}

func (m Model) viewHome() string {
	snap := m.store.Snapshot()
	header := m.renderHeader(snap.Range.Title)

	body := []string{
		header,
		"",
		m.renderSection("Overview", m.viewOverview(snap)),
		m.renderTabs(),
		m.renderSection(homeTabNames[m.home.tab], m.viewHomeList(snap)),
	}
	footer := m.renderFooter(m.keys.HelpBindings(scopeHome))
	return m.placeWithFooter(strings.Join(body, "\n"), m.renderStatus(), footer)
}

func (m Model) viewOverview(snap store.Snapshot) string {
	w := m.sectionWidth() - 4
	if m.loading(snap, store.EffectSummary) && len(snap.Summary.NetWorth) == 0 {
		return skeleton(2, w)
	}
	code := snap.Selection.CurrencyCode
	places := m.places(snap, code)

	netWorth := mutedStyle.Render("n/a")
	if len(snap.Summary.NetWorth) > 0 {
		nw := snap.Summary.NetWorth[0]
		netWorth = money.Format(nw.CurrencyCode, nw.MonetaryValue, m.places(snap, nw.CurrencyCode))
		if code == "" {
			code = nw.CurrencyCode
		}
	}
	balance := mutedStyle.Render("n/a")
	if b, ok := amountFor(snap.Summary.Balance, code); ok {
		balance = amountStyle(b.MonetaryValue.Sign()).Render(money.Signed(b.CurrencyCode, b.MonetaryValue, places))
	}

	lines := []string{
		row(labelStyle.Render("net worth ("+code+")"), netWorth, w),
		row(labelStyle.Render("balance"), balance, w),
	}
	if err := snap.Errs[store.EffectSummary]; err != nil {
		lines = append(lines, warnStyle.Render("summary unavailable"))
	}
	return strings.Join(lines, "\n")
}

func amountFor(list []model.Amount, code string) (model.Amount, bool) {
	for _, a := range list {
		if a.CurrencyCode == code {
			return a, true
		}
	}
	if len(list) > 0 && code == "" {
		return list[0], true
	}
	return model.Amount{}, false
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(homeTabNames))
	for i, name := range homeTabNames {
		if homeTab(i) == m.home.tab {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = inactiveTabStyle.Render(name)
		}
	}
	return " " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) visibleRows() int {
	if m.height <= 0 {
		return 0
	}
	return max(m.height-16, 3)
}

// window returns the slice bounds of n rows starting at scroll that fit the
// terminal.
func (m Model) window(n, scroll int) (int, int) {
	visible := m.visibleRows()
	if visible == 0 || n <= visible {
		return 0, n
	}
	start := min(max(scroll, 0), n-visible)
	return start, start + visible
}

func (m Model) viewHomeList(snap store.Snapshot) string {
	w := m.sectionWidth() - 4
	if m.home.tab == tabCategories {
		return m.viewCategories(snap, w)
	}
	return m.viewAccounts(snap, w)
}

func (m Model) viewAccounts(snap store.Snapshot, w int) string {
	accounts := snap.ActiveAccounts()
	if m.loading(snap, store.EffectAccounts) && len(accounts) == 0 {
		return skeleton(4, w)
	}
	if len(accounts) == 0 {
		return mutedStyle.Render("No active accounts.")
	}
	start, end := m.window(len(accounts), m.home.scroll)
	lines := make([]string, 0, end-start)
	for _, a := range accounts[start:end] {
		name := a.Name
		if !a.IncludeNetWorth {
			name += " (*)"
		}
		bal := money.Format(a.CurrencyCode, a.CurrentBalance, m.places(snap, a.CurrencyCode))
		if a.CurrentBalance.IsNegative() {
			bal = debitStyle.Render(bal)
		}
		lines = append(lines, row(name, bal, w))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewCategories(snap store.Snapshot, w int) string {
	if m.loading(snap, store.EffectInsight) && len(snap.Insight) == 0 {
		return skeleton(4, w)
	}
	if len(snap.Insight) == 0 {
		return mutedStyle.Render("No spending in this period.")
	}
	start, end := m.window(len(snap.Insight), m.home.scroll)
	lines := make([]string, 0, end-start)
	for _, c := range snap.Insight[start:end] {
		name := c.Name
		if strings.TrimSpace(name) == "" {
			name = "no category name"
		}
		diff := money.Format(c.CurrencyCode, c.Difference, m.places(snap, c.CurrencyCode))
		if c.Difference.IsNegative() {
			diff = debitStyle.Render(diff)
		}
		lines = append(lines, row(name, diff, w))
	}
	return strings.Join(lines, "\n")
}
