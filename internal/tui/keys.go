package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type Action string

type Binding struct {
	Action Action
	Keys   []string
	Help   string
	Scopes []string
}

// KeyRegistry maps key names to actions per screen scope. Lookups fall back
// to the global scope.
type KeyRegistry struct {
	bindingsByScope map[string][]*Binding
	indexByScope    map[string]map[string]*Binding
}

const (
	scopeGlobal       = "global"
	scopeHome         = "home"
	scopeFilters      = "filters"
	scopeForm         = "form"
	scopeFormPanel    = "form_panel"
	scopeFormType     = "form_type"
	scopeFormSuccess  = "form_success"
	scopeTransactions = "transactions"
)

const (
	actionQuit         Action = "quit"
	actionRefresh      Action = "refresh"
	actionFilters      Action = "filters"
	actionNew          Action = "new"
	actionTransactions Action = "transactions"
	actionPrevPeriod   Action = "prev_period"
	actionNextPeriod   Action = "next_period"
	actionSwitchTab    Action = "switch_tab"
	actionNavigate     Action = "navigate"
	actionUp           Action = "up"
	actionDown         Action = "down"
	actionSelect       Action = "select"
	actionBack         Action = "back"
	actionNextField    Action = "next_field"
	actionPrevField    Action = "prev_field"
	actionSubmit       Action = "submit"
	actionReset        Action = "reset"
	actionClear        Action = "clear"
	actionTypePrev     Action = "type_prev"
	actionTypeNext     Action = "type_next"
	actionDismiss      Action = "dismiss"
)

func NewKeyRegistry() *KeyRegistry {
	r := &KeyRegistry{
		bindingsByScope: make(map[string][]*Binding),
		indexByScope:    make(map[string]map[string]*Binding),
	}

	reg := func(scope string, action Action, keys []string, help string) {
		r.Register(Binding{Action: action, Keys: keys, Help: help, Scopes: []string{scope}})
	}

	reg(scopeGlobal, actionQuit, []string{"ctrl+c"}, "quit")

	reg(scopeHome, actionSwitchTab, []string{"tab", "shift+tab"}, "accounts/categories")
	reg(scopeHome, actionNavigate, []string{"j/k", "j", "k", "up", "down"}, "scroll")
	reg(scopeHome, actionPrevPeriod, []string{"["}, "prev period")
	reg(scopeHome, actionNextPeriod, []string{"]"}, "next period")
	reg(scopeHome, actionFilters, []string{"f"}, "filters")
	reg(scopeHome, actionNew, []string{"n"}, "new")
	reg(scopeHome, actionTransactions, []string{"t"}, "transactions")
	reg(scopeHome, actionRefresh, []string{"r"}, "refresh")
	reg(scopeHome, actionQuit, []string{"q", "ctrl+c"}, "quit")

	reg(scopeFilters, actionNavigate, []string{"j/k", "j", "k", "up", "down"}, "navigate")
	reg(scopeFilters, actionSelect, []string{"enter", "space"}, "apply")
	reg(scopeFilters, actionBack, []string{"esc", "q"}, "back")

	// Form scopes are consulted before the text input sees the key, so only
	// chorded or non-printing keys belong here.
	reg(scopeForm, actionNextField, []string{"tab", "down"}, "next field")
	reg(scopeForm, actionPrevField, []string{"shift+tab", "up"}, "prev field")
	reg(scopeForm, actionSelect, []string{"enter"}, "next/submit")
	reg(scopeForm, actionSubmit, []string{"ctrl+s"}, "submit")
	reg(scopeForm, actionClear, []string{"ctrl+x"}, "clear field")
	reg(scopeForm, actionReset, []string{"ctrl+r"}, "reset")
	reg(scopeForm, actionBack, []string{"esc"}, "back")

	reg(scopeFormPanel, actionNextField, []string{"tab"}, "next field")
	reg(scopeFormPanel, actionPrevField, []string{"shift+tab"}, "prev field")
	reg(scopeFormPanel, actionDown, []string{"down", "ctrl+n"}, "next")
	reg(scopeFormPanel, actionUp, []string{"up", "ctrl+p"}, "prev")
	reg(scopeFormPanel, actionSelect, []string{"enter"}, "pick")
	reg(scopeFormPanel, actionSubmit, []string{"ctrl+s"}, "submit")
	reg(scopeFormPanel, actionClear, []string{"ctrl+x"}, "clear field")
	reg(scopeFormPanel, actionReset, []string{"ctrl+r"}, "reset")
	reg(scopeFormPanel, actionBack, []string{"esc"}, "close")

	reg(scopeFormType, actionTypePrev, []string{"h/l", "h", "left"}, "type")
	reg(scopeFormType, actionTypeNext, []string{"l", "right"}, "")

	reg(scopeFormSuccess, actionTransactions, []string{"enter"}, "go to transactions")
	reg(scopeFormSuccess, actionDismiss, []string{"esc"}, "dismiss")

	reg(scopeTransactions, actionNavigate, []string{"j/k", "j", "k", "up", "down"}, "navigate")
	reg(scopeTransactions, actionNew, []string{"n"}, "new")
	reg(scopeTransactions, actionRefresh, []string{"r"}, "refresh")
	reg(scopeTransactions, actionBack, []string{"esc", "q"}, "back")

	return r
}

func (r *KeyRegistry) Register(b Binding) {
	if r == nil || len(b.Keys) == 0 {
		return
	}
	for _, scope := range b.Scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" {
			continue
		}
		if _, ok := r.indexByScope[scope]; !ok {
			r.indexByScope[scope] = make(map[string]*Binding)
		}
		normKeys := normalizeKeyList(b.Keys)
		if len(normKeys) == 0 || r.scopeHasAnyKey(scope, normKeys) {
			continue
		}

		copyBinding := b
		copyBinding.Keys = normKeys
		copyBinding.Scopes = []string{scope}
		r.bindingsByScope[scope] = append(r.bindingsByScope[scope], &copyBinding)
		for _, k := range copyBinding.Keys {
			r.indexByScope[scope][k] = &copyBinding
		}
	}
}

func (r *KeyRegistry) BindingsForScope(scope string) []Binding {
	if r == nil {
		return nil
	}
	items := r.bindingsByScope[scope]
	out := make([]Binding, 0, len(items))
	for _, b := range items {
		out = append(out, *b)
	}
	return out
}

// Lookup finds the binding for keyName, trying each scope in order and then
// the global scope.
func (r *KeyRegistry) Lookup(keyName string, scopes ...string) *Binding {
	if r == nil || keyName == "" {
		return nil
	}
	keyName = normalizeKeyName(keyName)
	for _, scope := range scopes {
		if b := r.indexByScope[scope][keyName]; b != nil {
			return b
		}
	}
	return r.indexByScope[scopeGlobal][keyName]
}

// HelpBindings returns footer bindings for the given scopes. Bindings with
// empty help are hidden.
func (r *KeyRegistry) HelpBindings(scopes ...string) []key.Binding {
	var out []key.Binding
	for _, scope := range scopes {
		for _, b := range r.BindingsForScope(scope) {
			if b.Help == "" {
				continue
			}
			out = append(out, key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(b.Keys[0], b.Help)))
		}
	}
	return out
}

func (r *KeyRegistry) scopeHasAnyKey(scope string, keys []string) bool {
	lookup := r.indexByScope[scope]
	for _, k := range keys {
		if _, exists := lookup[k]; exists {
			return true
		}
	}
	return false
}

func normalizeKeyList(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool)
	for _, k := range keys {
		n := normalizeKeyName(k)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func normalizeKeyName(k string) string {
	if k == " " {
		return "space"
	}
	trimmed := strings.TrimSpace(k)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) == 1 {
		// Single runes keep their case so "G" and "g" stay distinct.
		return trimmed
	}
	s := strings.ToLower(trimmed)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "control+", "ctrl+")
	s = strings.ReplaceAll(s, "return", "enter")
	return s
}
