// Package form holds the transaction entry state machine: the draft, its
// validation errors, the open autocomplete panel and the submit lifecycle.
// It has no UI dependencies; screens drive it and render its state.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jask/fireflymoney/internal/model"
	"github.com/jask/fireflymoney/internal/money"
)

var ErrBusy = errors.New("form: submission already in flight")

// Field identifies a draft field.
type Field int

const (
	FieldNone Field = iota
	FieldDescription
	FieldSource
	FieldDestination
	FieldDate
	FieldAmount
	FieldCategory
	FieldBudget
)

var fieldNames = [...]string{"none", "description", "source", "destination", "date", "amount", "category", "budget"}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// Autocompletes reports whether the field has a suggestion panel.
func (f Field) Autocompletes() bool {
	switch f {
	case FieldDescription, FieldSource, FieldDestination, FieldCategory, FieldBudget:
		return true
	default:
		return false
	}
}

// AutocompleteFields lists the fields with panels in display order.
var AutocompleteFields = []Field{FieldDescription, FieldSource, FieldDestination, FieldCategory, FieldBudget}

// Status is the submit lifecycle position.
type Status int

const (
	StatusEditing Status = iota
	StatusValidating
	StatusSubmitting
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusEditing:
		return "editing"
	case StatusValidating:
		return "validating"
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Lookup is an autocomplete request issued by the form. Seq orders requests
// per field; only the answer to the latest one is applied.
type Lookup struct {
	Field       Field
	Query       string
	Destination bool
	Seq         uint64
}

type panel struct {
	seq     uint64
	pending bool
	items   []model.Suggestion
}

// Form is the entry form state. It is not safe for concurrent use; the UI
// loop owns it.
type Form struct {
	draft   model.Draft
	errors  Errors
	status  Status
	success bool
	open    Field
	panels  map[Field]*panel
	now     func() time.Time
}

type Option func(*Form)

// WithClock overrides the clock used for default dates.
func WithClock(now func() time.Time) Option {
	return func(f *Form) {
		if now != nil {
			f.now = now
		}
	}
}

// New builds a form from a payload. A payload amount is normalised to the
// given number of decimal places; a missing date or type gets a default.
func New(payload model.Draft, places int32, opts ...Option) *Form {
	f := &Form{now: time.Now, panels: make(map[Field]*panel, len(AutocompleteFields))}
	for _, opt := range opts {
		opt(f)
	}
	for _, fld := range AutocompleteFields {
		f.panels[fld] = &panel{}
	}
	d := payload
	if d.Date.IsZero() {
		d.Date = today(f.now())
	}
	if !d.Type.Valid() {
		d.Type = model.Withdrawal
	}
	if d.Amount != "" {
		if v, err := money.ParseAmount(d.Amount); err == nil {
			d.Amount = money.Fixed(v, places)
		}
	}
	f.draft = d
	return f
}

// Defaults is the draft a reset restores.
func Defaults(now time.Time) model.Draft {
	return model.Draft{Date: today(now), Type: model.Deposit}
}

func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (f *Form) Draft() model.Draft { return f.draft }
func (f *Form) Errors() Errors     { return f.errors }
func (f *Form) Status() Status     { return f.status }
func (f *Form) Success() bool      { return f.success }
func (f *Form) Submitting() bool   { return f.status == StatusSubmitting }

// Open returns the field whose panel is open, or FieldNone.
func (f *Form) Open() Field { return f.open }

// Loading reports whether the latest lookup for fld is still unanswered.
func (f *Form) Loading(fld Field) bool {
	p := f.panels[fld]
	return p != nil && p.pending
}

// Suggestions returns the applied candidates for fld.
func (f *Form) Suggestions(fld Field) []model.Suggestion {
	p := f.panels[fld]
	if p == nil {
		return nil
	}
	return append([]model.Suggestion(nil), p.items...)
}

// Value returns the text shown in a field's input.
func (f *Form) Value(fld Field) string {
	switch fld {
	case FieldDescription:
		return f.draft.Description
	case FieldSource:
		return f.draft.SourceName
	case FieldDestination:
		return f.draft.DestinationName
	case FieldAmount:
		return f.draft.Amount
	case FieldCategory:
		return f.draft.CategoryName
	case FieldBudget:
		return f.draft.BudgetName
	case FieldDate:
		return f.draft.Date.Format("2006-01-02")
	default:
		return ""
	}
}

// SetType switches the transaction type.
func (f *Form) SetType(t model.TransactionType) error {
	if !t.Valid() {
		return fmt.Errorf("form: unknown transaction type %q", t)
	}
	f.draft.Type = t
	return nil
}

func (f *Form) SetDate(t time.Time) {
	if t.IsZero() {
		return
	}
	f.draft.Date = t
}

// Input writes typed text into a field. For autocomplete fields it opens
// that field's panel and returns the lookup to run. Typing a category or
// budget name drops the previously selected id.
func (f *Form) Input(fld Field, value string) (Lookup, bool) {
	switch fld {
	case FieldDescription:
		f.draft.Description = value
	case FieldSource:
		f.draft.SourceName = value
	case FieldDestination:
		f.draft.DestinationName = value
	case FieldCategory:
		f.draft.CategoryName = value
		f.draft.CategoryID = ""
	case FieldBudget:
		f.draft.BudgetName = value
		f.draft.BudgetID = ""
	case FieldAmount:
		f.draft.Amount = value
		return Lookup{}, false
	default:
		return Lookup{}, false
	}
	f.open = fld
	return f.issue(fld), true
}

// Focus opens fld's panel (closing any other) and returns a lookup for the
// current value. Focusing a field without a panel closes all panels.
func (f *Form) Focus(fld Field) (Lookup, bool) {
	if !fld.Autocompletes() {
		f.open = FieldNone
		return Lookup{}, false
	}
	f.open = fld
	return f.issue(fld), true
}

// Blur closes every panel.
func (f *Form) Blur() {
	f.open = FieldNone
}

func (f *Form) issue(fld Field) Lookup {
	p := f.panels[fld]
	p.seq++
	p.pending = true
	return Lookup{
		Field:       fld,
		Query:       f.Value(fld),
		Destination: fld == FieldDestination,
		Seq:         p.seq,
	}
}

// Current reports whether l is the latest lookup issued for its field.
func (f *Form) Current(l Lookup) bool {
	p := f.panels[l.Field]
	return p != nil && p.seq == l.Seq
}

// Resolve applies the answer to a lookup. Stale answers are dropped and
// Resolve returns false. A failed lookup leaves the panel empty.
func (f *Form) Resolve(l Lookup, items []model.Suggestion, err error) bool {
	if !f.Current(l) {
		return false
	}
	p := f.panels[l.Field]
	p.pending = false
	if err != nil {
		p.items = nil
		return true
	}
	p.items = append([]model.Suggestion(nil), items...)
	return true
}

// Select writes a suggestion into fld and closes that field's panel.
func (f *Form) Select(fld Field, s model.Suggestion) bool {
	switch fld {
	case FieldDescription:
		f.draft.Description = s.Name
	case FieldSource:
		f.draft.SourceName = s.Name
	case FieldDestination:
		f.draft.DestinationName = s.Name
	case FieldCategory:
		f.draft.CategoryID = s.ID
		f.draft.CategoryName = s.Name
	case FieldBudget:
		f.draft.BudgetID = s.ID
		f.draft.BudgetName = s.Name
	default:
		return false
	}
	p := f.panels[fld]
	p.seq++
	p.pending = false
	if f.open == fld {
		f.open = FieldNone
	}
	return true
}

// Clear empties a field. Category and budget lose both id and name. The
// field's suggestions are dropped and lookups in flight for it are
// invalidated; when its panel is open a lookup for the empty value is
// returned.
func (f *Form) Clear(fld Field) (Lookup, bool) {
	switch fld {
	case FieldDescription:
		f.draft.Description = ""
	case FieldSource:
		f.draft.SourceName = ""
	case FieldDestination:
		f.draft.DestinationName = ""
	case FieldAmount:
		f.draft.Amount = ""
	case FieldCategory:
		f.draft.CategoryID = ""
		f.draft.CategoryName = ""
	case FieldBudget:
		f.draft.BudgetID = ""
		f.draft.BudgetName = ""
	}
	p := f.panels[fld]
	if p == nil {
		return Lookup{}, false
	}
	p.items = nil
	if f.open == fld {
		return f.issue(fld), true
	}
	p.seq++
	p.pending = false
	return Lookup{}, false
}

// Validate checks the draft and replaces the error set with the first
// failure found.
func (f *Form) Validate() bool {
	var errs Errors
	switch {
	case f.draft.Description == "":
		errs.Description = MsgDescriptionRequired
	case strings.TrimSpace(f.draft.Description) == "":
		errs.Description = MsgDescriptionShort
	case !positiveAmount(f.draft.Amount):
		errs.Amount = MsgAmountRequired
	}
	f.errors = errs
	return !errs.Any()
}

func positiveAmount(s string) bool {
	v, err := money.ParseAmount(s)
	return err == nil && v.IsPositive()
}

// BeginSubmit validates and, when the draft passes, clears errors, closes
// panels and moves to submitting. The returned draft carries a normalised
// amount.
func (f *Form) BeginSubmit() (model.Draft, bool) {
	if f.status == StatusSubmitting {
		return model.Draft{}, false
	}
	f.status = StatusValidating
	if !f.Validate() {
		f.status = StatusEditing
		return model.Draft{}, false
	}
	f.errors = Errors{}
	f.open = FieldNone
	f.status = StatusSubmitting

	d := f.draft
	if v, err := money.ParseAmount(d.Amount); err == nil {
		d.Amount = v.String()
	}
	return d, true
}

// CompleteSubmit records the submitter's answer. A rejection message lands
// in the global slot; every field slot is cleared.
func (f *Form) CompleteSubmit(err error) {
	if err == nil {
		f.success = true
		f.status = StatusSucceeded
		return
	}
	f.success = false
	f.status = StatusFailed
	msg, ok := model.RejectionMessage(err)
	if !ok {
		msg = MsgSubmitFailed
	}
	f.errors = Errors{Global: msg}
}

// Submit runs the whole submit flow synchronously.
func (f *Form) Submit(ctx context.Context, s model.Submitter) error {
	d, ok := f.BeginSubmit()
	if !ok {
		if f.status == StatusSubmitting {
			return ErrBusy
		}
		return ErrInvalid
	}
	err := s.SubmitTransaction(ctx, d)
	f.CompleteSubmit(err)
	return err
}

// DismissSuccess hides the confirmation.
func (f *Form) DismissSuccess() {
	f.success = false
	if f.status == StatusSucceeded {
		f.status = StatusEditing
	}
}

// DismissError clears the error set.
func (f *Form) DismissError() {
	f.errors = Errors{}
	if f.status == StatusFailed {
		f.status = StatusEditing
	}
}

// Reset restores the default draft and clears errors and panels. Lookups in
// flight are invalidated.
func (f *Form) Reset() {
	f.draft = Defaults(f.now())
	f.errors = Errors{}
	f.open = FieldNone
	for _, p := range f.panels {
		p.seq++
		p.pending = false
		p.items = nil
	}
	if f.status != StatusSubmitting {
		f.status = StatusEditing
	}
}
