package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/fireflymoney/internal/model"
	"github.com/jask/fireflymoney/internal/money"
	"github.com/jask/fireflymoney/internal/store"
)

type txState struct {
	cursor int
}

func (m Model) handleTransactionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := m.keys.Lookup(msg.String(), scopeTransactions)
	if b == nil {
		return m, nil
	}
	switch b.Action {
	case actionQuit:
		return m, tea.Quit
	case actionBack:
		return m, pop
	case actionNew:
		return m, pushForm(model.Draft{})
	case actionRefresh:
		return m, m.refresh(store.EffectTransactions)
	case actionNavigate:
		n := len(m.store.Snapshot().Transactions)
		switch msg.String() {
		case "j", "down":
			if m.txs.cursor < n-1 {
				m.txs.cursor++
			}
		default:
			if m.txs.cursor > 0 {
				m.txs.cursor--
			}
		}
	}
	return m, nil
}

func (m Model) viewTransactions() string {
	snap := m.store.Snapshot()
	w := m.sectionWidth() - 4

	var content string
	switch {
	case m.loading(snap, store.EffectTransactions) && len(snap.Transactions) == 0:
		content = skeleton(6, w)
	case len(snap.Transactions) == 0:
		content = mutedStyle.Render("No transactions in this period.")
	default:
		start, end := m.window(len(snap.Transactions), m.txs.cursor)
		lines := make([]string, 0, end-start)
		for i, tx := range snap.Transactions[start:end] {
			lines = append(lines, m.transactionLine(snap, tx, start+i == m.txs.cursor, w))
		}
		content = strings.Join(lines, "\n")
	}

	body := []string{
		m.renderHeader(snap.Range.Title),
		"",
		m.renderSection("transactions", content),
	}
	footer := m.renderFooter(m.keys.HelpBindings(scopeTransactions))
	return m.placeWithFooter(strings.Join(body, "\n"), m.renderStatus(), footer)
}

func (m Model) transactionLine(snap store.Snapshot, tx model.Transaction, selected bool, w int) string {
	prefix := "  "
	if selected {
		prefix = cursorStyle.Render("> ")
	}
	amount := money.Format(tx.CurrencyCode, tx.Amount, m.places(snap, tx.CurrencyCode))
	amount = lipgloss.NewStyle().Foreground(typeColor(tx.Type)).Render(amount)

	desc := tx.Description
	if strings.TrimSpace(desc) == "" {
		desc = "no name"
	}
	left := prefix + mutedStyle.Render(tx.Date.Format("2006-01-02")) + "  " + desc
	flow := mutedStyle.Render(tx.SourceName + " → " + tx.DestinationName)
	if tx.CategoryName != "" {
		flow += mutedStyle.Render("  [" + tx.CategoryName + "]")
	}
	return row(left, amount, w) + "\n" + "    " + flow
}
