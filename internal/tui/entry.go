package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/fireflymoney/internal/form"
	"github.com/jask/fireflymoney/internal/model"
	"github.com/jask/fireflymoney/internal/store"
)

const successText = "Transaction created. Click here to go to transactions list."

// submitEffects are refetched after a transaction is stored.
var submitEffects = []store.Effect{store.EffectAccounts, store.EffectInsight, store.EffectSummary, store.EffectTransactions}

type targetKind int

const (
	targetType targetKind = iota
	targetField
	targetSubmit
)

type focusTarget struct {
	kind  targetKind
	field form.Field
}

// entryTargets is the tab order of the form.
var entryTargets = []focusTarget{
	{kind: targetType},
	{kind: targetField, field: form.FieldDescription},
	{kind: targetField, field: form.FieldSource},
	{kind: targetField, field: form.FieldDestination},
	{kind: targetField, field: form.FieldDate},
	{kind: targetField, field: form.FieldAmount},
	{kind: targetField, field: form.FieldCategory},
	{kind: targetField, field: form.FieldBudget},
	{kind: targetSubmit},
}

var fieldLabels = map[form.Field]string{
	form.FieldDescription: "description",
	form.FieldSource:      "source account",
	form.FieldDestination: "destination account",
	form.FieldDate:        "date",
	form.FieldAmount:      "amount",
	form.FieldCategory:    "category",
	form.FieldBudget:      "budget",
}

type entryState struct {
	gen    int
	form   *form.Form
	inputs map[form.Field]*textinput.Model
	focus  int
	cursor int
	code   string
}

func (m *Model) openForm(payload model.Draft) tea.Cmd {
	snap := m.store.Snapshot()
	code := snap.Selection.CurrencyCode
	f := form.New(payload, m.places(snap, code), form.WithClock(m.now))

	inputs := make(map[form.Field]*textinput.Model, len(fieldLabels))
	for fld, label := range fieldLabels {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = label
		ti.CharLimit = 255
		ti.Width = 40
		inputs[fld] = &ti
	}
	inputs[form.FieldDate].Placeholder = m.dateFormat
	inputs[form.FieldAmount].CharLimit = 32

	m.entry = entryState{gen: m.entry.gen + 1, form: f, inputs: inputs, focus: 1, code: code}
	m.syncInputs()
	return m.focusTarget(1)
}

// syncInputs copies the draft into the text inputs after the form changed
// it directly.
func (m *Model) syncInputs() {
	for fld, ti := range m.entry.inputs {
		v := m.entry.form.Value(fld)
		if fld == form.FieldDate {
			v = m.entry.form.Draft().Date.Format(m.dateFormat)
		}
		if ti.Value() != v {
			ti.SetValue(v)
		}
	}
}

func (m Model) focused() focusTarget { return entryTargets[m.entry.focus] }

// focusTarget moves focus to entryTargets[i], blurring the previous field
// and starting a lookup for the new one.
func (m *Model) focusTarget(i int) tea.Cmd {
	prev := m.focused()
	if prev.kind == targetField {
		m.entry.inputs[prev.field].Blur()
		if prev.field == form.FieldDate {
			m.commitDate()
		}
	}
	m.entry.form.Blur()
	m.entry.focus = i
	m.entry.cursor = 0

	next := m.focused()
	if next.kind != targetField {
		return nil
	}
	cmds := []tea.Cmd{m.entry.inputs[next.field].Focus()}
	if l, ok := m.entry.form.Focus(next.field); ok {
		cmds = append(cmds, m.lookupCmd(l))
	}
	return tea.Batch(cmds...)
}

func (m *Model) commitDate() {
	raw := strings.TrimSpace(m.entry.inputs[form.FieldDate].Value())
	t, err := time.ParseInLocation(m.dateFormat, raw, m.now().Location())
	if err != nil {
		m.setError(fmt.Sprintf("Date must look like %s.", m.dateFormat))
		m.entry.inputs[form.FieldDate].SetValue(m.entry.form.Draft().Date.Format(m.dateFormat))
		return
	}
	m.entry.form.SetDate(t)
}

// panelActive reports whether the focused field's suggestion panel is open.
func (m Model) panelActive() bool {
	t := m.focused()
	return t.kind == targetField && m.entry.form.Open() == t.field
}

func (m Model) formScopes() []string {
	var scopes []string
	if m.entry.form.Success() {
		scopes = append(scopes, scopeFormSuccess)
	}
	if m.focused().kind == targetType {
		scopes = append(scopes, scopeFormType)
	}
	if m.panelActive() {
		return append(scopes, scopeFormPanel)
	}
	return append(scopes, scopeForm)
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.entry.form
	b := m.keys.Lookup(msg.String(), m.formScopes()...)
	if b == nil {
		return m.typeInto(msg)
	}
	switch b.Action {
	case actionQuit:
		return m, tea.Quit
	case actionTransactions:
		return m.openTransactionsFromSuccess()
	case actionDismiss:
		f.DismissSuccess()
	case actionTypePrev, actionTypeNext:
		step := 1
		if b.Action == actionTypePrev {
			step = -1
		}
		_ = f.SetType(cycleType(f.Draft().Type, step))
	case actionNextField:
		return m, m.focusTarget((m.entry.focus + 1) % len(entryTargets))
	case actionPrevField:
		return m, m.focusTarget((m.entry.focus - 1 + len(entryTargets)) % len(entryTargets))
	case actionDown, actionUp:
		n := len(f.Suggestions(m.focused().field))
		if n > 0 {
			if b.Action == actionDown {
				m.entry.cursor = (m.entry.cursor + 1) % n
			} else {
				m.entry.cursor = (m.entry.cursor - 1 + n) % n
			}
		}
	case actionSelect:
		return m.formEnter()
	case actionSubmit:
		return m.submit()
	case actionClear:
		switch t := m.focused(); {
		case t.kind != targetField:
		case t.field == form.FieldDate:
			m.entry.inputs[form.FieldDate].SetValue("")
		default:
			l, ok := f.Clear(t.field)
			m.syncInputs()
			if ok {
				return m, m.debounced(l)
			}
		}
	case actionReset:
		f.Reset()
		m.entry.cursor = 0
		m.syncInputs()
		m.setStatus("Form reset.")
	case actionBack:
		switch {
		case m.panelActive():
			f.Blur()
		case f.Errors().Global != "":
			f.DismissError()
		default:
			return m, pop
		}
	}
	return m, nil
}

func (m Model) formEnter() (tea.Model, tea.Cmd) {
	f := m.entry.form
	t := m.focused()
	if t.kind == targetSubmit {
		return m.submit()
	}
	if m.panelActive() {
		items := f.Suggestions(t.field)
		if len(items) > 0 && !f.Loading(t.field) {
			pick := items[min(m.entry.cursor, len(items)-1)]
			f.Select(t.field, pick)
			m.entry.cursor = 0
			m.syncInputs()
			m.entry.inputs[t.field].CursorEnd()
			m.log.Debug("suggestion picked", "field", t.field, "name", pick.Name)
			return m, nil
		}
	}
	return m, m.focusTarget((m.entry.focus + 1) % len(entryTargets))
}

// typeInto forwards a key to the focused text input and feeds the new value
// to the form.
func (m Model) typeInto(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.focused()
	if t.kind != targetField {
		return m, nil
	}
	ti := m.entry.inputs[t.field]
	updated, cmd := ti.Update(msg)
	*ti = updated

	value := ti.Value()
	if t.field == form.FieldDate {
		if d, err := time.ParseInLocation(m.dateFormat, strings.TrimSpace(value), m.now().Location()); err == nil {
			m.entry.form.SetDate(d)
		}
		return m, cmd
	}
	if value == m.entry.form.Value(t.field) {
		return m, cmd
	}
	l, ok := m.entry.form.Input(t.field, value)
	m.entry.cursor = 0
	if !ok {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.debounced(l))
}

func cycleType(cur model.TransactionType, step int) model.TransactionType {
	types := model.SelectableTypes
	i := slices.Index(types, cur)
	if i < 0 {
		if step > 0 {
			return types[0]
		}
		return types[len(types)-1]
	}
	return types[(i+step+len(types))%len(types)]
}

// ---------------------------------------------------------------------------
// Autocomplete
// ---------------------------------------------------------------------------

func (m Model) debounced(l form.Lookup) tea.Cmd {
	if m.debounce <= 0 {
		return m.lookupCmd(l)
	}
	gen := m.entry.gen
	return tea.Tick(m.debounce, func(time.Time) tea.Msg { return lookupDueMsg{gen: gen, lookup: l} })
}

func (m Model) handleLookupDue(msg lookupDueMsg) (tea.Model, tea.Cmd) {
	if !m.formLive(msg.gen) || !m.entry.form.Current(msg.lookup) {
		return m, nil
	}
	return m, m.lookupCmd(msg.lookup)
}

func (m Model) lookupCmd(l form.Lookup) tea.Cmd {
	ac, ctx, gen := m.backend, m.ctx, m.entry.gen
	return func() tea.Msg {
		items, err := lookup(ctx, ac, l)
		return suggestionsMsg{gen: gen, lookup: l, items: items, err: err}
	}
}

// formLive reports whether gen is the form currently on screen.
func (m Model) formLive(gen int) bool {
	return m.top() == screenForm && m.entry.form != nil && m.entry.gen == gen
}

func lookup(ctx context.Context, ac model.Autocompleter, l form.Lookup) ([]model.Suggestion, error) {
	switch l.Field {
	case form.FieldDescription:
		return ac.AutocompleteDescriptions(ctx, l.Query)
	case form.FieldSource, form.FieldDestination:
		return ac.AutocompleteAccounts(ctx, l.Query, l.Destination)
	case form.FieldCategory:
		return ac.AutocompleteCategories(ctx, l.Query)
	case form.FieldBudget:
		return ac.AutocompleteBudgets(ctx, l.Query)
	default:
		return nil, fmt.Errorf("no autocomplete for %s", l.Field)
	}
}

func (m Model) handleSuggestions(msg suggestionsMsg) (tea.Model, tea.Cmd) {
	if !m.formLive(msg.gen) {
		return m, nil
	}
	if msg.err != nil {
		m.log.Warn("autocomplete failed", "field", msg.lookup.Field, "query", msg.lookup.Query, "err", msg.err)
	}
	if !m.entry.form.Resolve(msg.lookup, msg.items, msg.err) {
		m.log.Debug("stale suggestions dropped", "field", msg.lookup.Field, "seq", msg.lookup.Seq)
		return m, nil
	}
	if n := len(msg.items); m.entry.cursor >= n {
		m.entry.cursor = max(n-1, 0)
	}
	return m, nil
}

// suggestionLabel is the text shown for one candidate. Account candidates
// carry their balance.
func suggestionLabel(fld form.Field, s model.Suggestion) string {
	name := s.Name
	if (fld == form.FieldSource || fld == form.FieldDestination) && s.NameWithBalance != "" {
		name = s.NameWithBalance
	}
	if strings.TrimSpace(name) != "" {
		return name
	}
	switch fld {
	case form.FieldCategory:
		return "no category name"
	case form.FieldBudget:
		return "no budget name"
	default:
		return "no name"
	}
}

// ---------------------------------------------------------------------------
// Submit
// ---------------------------------------------------------------------------

func (m Model) submit() (tea.Model, tea.Cmd) {
	f := m.entry.form
	if f.Submitting() {
		return m, nil
	}
	if t := m.focused(); t.kind == targetField && t.field == form.FieldDate {
		m.commitDate()
	}
	d, ok := f.BeginSubmit()
	if !ok {
		m.setError("Fix the highlighted fields.")
		return m, nil
	}
	m.clearStatus()
	m.log.Info("submitting transaction", "type", d.Type, "amount", d.Amount)
	sub, ctx, gen := m.backend, m.ctx, m.entry.gen
	return m, func() tea.Msg {
		return submitDoneMsg{gen: gen, err: sub.SubmitTransaction(ctx, d)}
	}
}

func (m Model) handleSubmitDone(msg submitDoneMsg) (tea.Model, tea.Cmd) {
	f := m.entry.form
	if f == nil || m.entry.gen != msg.gen {
		if msg.err == nil {
			return m, m.refresh(submitEffects...)
		}
		return m, nil
	}
	f.CompleteSubmit(msg.err)
	if msg.err != nil {
		m.log.Warn("submit failed", "err", msg.err)
		return m, nil
	}
	f.Reset()
	m.entry.cursor = 0
	m.syncInputs()
	m.setStatus("Transaction created.")
	return m, m.refresh(submitEffects...)
}

func (m Model) openTransactionsFromSuccess() (tea.Model, tea.Cmd) {
	m.entry.form.DismissSuccess()
	return m, func() tea.Msg { return replaceMsg{screen: screenTransactions} }
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m Model) viewForm() string {
	snap := m.store.Snapshot()
	f := m.entry.form
	w := m.sectionWidth() - 4

	lines := []string{m.viewTypeSelector()}
	for _, t := range entryTargets {
		if t.kind != targetField {
			continue
		}
		lines = append(lines, m.viewField(t.field, w)...)
	}
	lines = append(lines, "", m.viewSubmitButton())

	if msg := f.Errors().Global; msg != "" {
		lines = append(lines, "", bannerErrStyle.Width(w).Render(msg))
	}
	if f.Success() {
		lines = append(lines, "", bannerOKStyle.Width(w).Render(successText))
	}

	body := []string{
		m.renderHeader(snap.Range.Title),
		"",
		m.renderSection("new transaction", strings.Join(lines, "\n")),
	}
	footer := m.renderFooter(m.keys.HelpBindings(m.formScopes()...))
	return m.placeWithFooter(strings.Join(body, "\n"), m.renderStatus(), footer)
}

func (m Model) viewTypeSelector() string {
	cur := m.entry.form.Draft().Type
	types := model.SelectableTypes
	if !slices.Contains(types, cur) {
		types = append(slices.Clone(types), cur)
	}
	parts := make([]string, 0, len(types))
	for _, t := range types {
		style := lipgloss.NewStyle().Foreground(typeColor(t)).Padding(0, 1)
		if t == cur {
			style = style.Reverse(true).Bold(true)
		}
		parts = append(parts, style.Render(string(t)))
	}
	label := labelStyle.Render(padRight("type", 22))
	if m.focused().kind == targetType {
		label = focusStyle.Render(padRight("type", 22))
	}
	return label + strings.Join(parts, " ")
}

func (m Model) viewField(fld form.Field, w int) []string {
	f := m.entry.form
	focused := m.focused()
	isFocused := focused.kind == targetField && focused.field == fld

	name := fieldLabels[fld]
	if fld == form.FieldAmount && m.entry.code != "" {
		name += " (" + m.entry.code + ")"
	}
	label := labelStyle.Render(padRight(name, 22))
	if isFocused {
		label = focusStyle.Render(padRight(name, 22))
	}
	out := []string{label + m.entry.inputs[fld].View()}

	if msg := f.Errors().Field(fld); msg != "" {
		out = append(out, strings.Repeat(" ", 22)+fieldErrStyle.Render(msg))
	}
	if f.Open() == fld {
		out = append(out, m.viewPanel(fld, w))
	}
	return out
}

func (m Model) viewPanel(fld form.Field, w int) string {
	f := m.entry.form
	items := f.Suggestions(fld)
	var lines []string
	switch {
	case f.Loading(fld) && len(items) == 0:
		lines = []string{m.spinner.View() + " " + mutedStyle.Render("searching...")}
	case len(items) == 0:
		lines = []string{mutedStyle.Render("no suggestions")}
	default:
		for i, s := range items {
			label := suggestionLabel(fld, s)
			if i == m.entry.cursor {
				lines = append(lines, cursorStyle.Render("> ")+focusStyle.Render(label))
			} else {
				lines = append(lines, "  "+label)
			}
		}
	}
	return lipgloss.NewStyle().MarginLeft(22).Render(panelStyle.Width(max(w-26, 20)).Render(strings.Join(lines, "\n")))
}

func (m Model) viewSubmitButton() string {
	label := "Submit"
	style := buttonStyle
	if m.entry.form.Submitting() {
		label = "Submitting..."
		style = buttonBusyStyle
	}
	btn := style.Render(label)
	if m.focused().kind == targetSubmit {
		btn = cursorStyle.Render("> ") + btn
	} else {
		btn = "  " + btn
	}
	return strings.Repeat(" ", 20) + btn
}
