package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/fireflymoney/internal/model"
)

var fixedNow = time.Date(2026, time.October, 14, 15, 30, 0, 0, time.UTC)

func newForm(d model.Draft) *Form {
	return New(d, 2, WithClock(func() time.Time { return fixedNow }))
}

type stubSubmitter struct {
	err   error
	calls []model.Draft
}

func (s *stubSubmitter) SubmitTransaction(_ context.Context, d model.Draft) error {
	s.calls = append(s.calls, d)
	return s.err
}

func TestNewNormalisesPayload(t *testing.T) {
	f := New(model.Draft{Amount: "12.5"}, 2, WithClock(func() time.Time { return fixedNow }))
	d := f.Draft()
	require.Equal(t, "12.50", d.Amount)
	require.Equal(t, model.Withdrawal, d.Type)
	require.Equal(t, time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC), d.Date)

	f = New(model.Draft{Amount: "3", Type: model.Transfer}, 0)
	require.Equal(t, "3", f.Draft().Amount)
	require.Equal(t, model.Transfer, f.Draft().Type)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		draft model.Draft
		want  Errors
	}{
		{"missing description", model.Draft{Amount: "10"}, Errors{Description: MsgDescriptionRequired}},
		{"blank description", model.Draft{Description: "   ", Amount: "10"}, Errors{Description: MsgDescriptionShort}},
		{"zero amount", model.Draft{Description: "Coffee", Amount: "0"}, Errors{Amount: MsgAmountRequired}},
		{"negative amount", model.Draft{Description: "Coffee", Amount: "-4"}, Errors{Amount: MsgAmountRequired}},
		{"garbage amount", model.Draft{Description: "Coffee", Amount: "abc"}, Errors{Amount: MsgAmountRequired}},
		{"exponent amount", model.Draft{Description: "Coffee", Amount: "1e3000000"}, Errors{Amount: MsgAmountRequired}},
		{"missing amount", model.Draft{Description: "Coffee"}, Errors{Amount: MsgAmountRequired}},
		{"both missing reports description", model.Draft{}, Errors{Description: MsgDescriptionRequired}},
		{"valid", model.Draft{Description: "Coffee", Amount: "3,50"}, Errors{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newForm(tc.draft)
			ok := f.Validate()
			require.Equal(t, tc.want, f.Errors())
			require.Equal(t, !tc.want.Any(), ok)
		})
	}
}

func TestSubmitSuccess(t *testing.T) {
	f := newForm(model.Draft{Description: "Coffee", Amount: "3,50", Type: model.Withdrawal})
	sub := &stubSubmitter{}

	require.NoError(t, f.Submit(context.Background(), sub))
	require.True(t, f.Success())
	require.Equal(t, StatusSucceeded, f.Status())
	require.False(t, f.Errors().Any())
	require.Len(t, sub.calls, 1)
	require.Equal(t, "3.5", sub.calls[0].Amount)
	require.Equal(t, "Coffee", sub.calls[0].Description)

	f.DismissSuccess()
	require.False(t, f.Success())
	require.Equal(t, StatusEditing, f.Status())
}

func TestSubmitInvalidDoesNotCallSubmitter(t *testing.T) {
	f := newForm(model.Draft{Description: "Coffee", Amount: "0"})
	sub := &stubSubmitter{}

	err := f.Submit(context.Background(), sub)
	require.ErrorIs(t, err, ErrInvalid)
	require.Empty(t, sub.calls)
	require.Equal(t, MsgAmountRequired, f.Errors().Amount)
	require.Equal(t, StatusEditing, f.Status())
}

func TestSubmitRejection(t *testing.T) {
	f := newForm(model.Draft{Description: "Coffee"})
	require.False(t, f.Validate())
	require.Equal(t, MsgAmountRequired, f.Errors().Amount)
	f.Input(FieldAmount, "3")

	sub := &stubSubmitter{err: &model.SubmitError{Message: "The given data was invalid."}}
	err := f.Submit(context.Background(), sub)
	require.Error(t, err)
	require.False(t, f.Success())
	require.Equal(t, StatusFailed, f.Status())
	require.Equal(t, Errors{Global: "The given data was invalid."}, f.Errors())

	f.DismissError()
	require.False(t, f.Errors().Any())
	require.Equal(t, StatusEditing, f.Status())
}

func TestSubmitTransportFailureUsesGenericMessage(t *testing.T) {
	f := newForm(model.Draft{Description: "Coffee", Amount: "3"})
	err := f.Submit(context.Background(), &stubSubmitter{err: errors.New("dial tcp: refused")})
	require.Error(t, err)
	require.Equal(t, Errors{Global: MsgSubmitFailed}, f.Errors())
}

func TestBeginSubmitWhileInFlight(t *testing.T) {
	f := newForm(model.Draft{Description: "Coffee", Amount: "3"})
	_, ok := f.BeginSubmit()
	require.True(t, ok)
	require.True(t, f.Submitting())

	_, ok = f.BeginSubmit()
	require.False(t, ok)
	require.ErrorIs(t, f.Submit(context.Background(), &stubSubmitter{}), ErrBusy)

	f.CompleteSubmit(nil)
	require.True(t, f.Success())
}

func TestPanelsOneAtATime(t *testing.T) {
	f := newForm(model.Draft{})
	_, ok := f.Focus(FieldSource)
	require.True(t, ok)
	require.Equal(t, FieldSource, f.Open())

	_, ok = f.Focus(FieldCategory)
	require.True(t, ok)
	require.Equal(t, FieldCategory, f.Open())

	_, ok = f.Focus(FieldAmount)
	require.False(t, ok)
	require.Equal(t, FieldNone, f.Open())

	f.Focus(FieldBudget)
	f.Blur()
	require.Equal(t, FieldNone, f.Open())
}

func TestInputIssuesLookup(t *testing.T) {
	f := newForm(model.Draft{CategoryID: "7", CategoryName: "Groceries"})
	l, ok := f.Input(FieldCategory, "Gro")
	require.True(t, ok)
	require.Equal(t, FieldCategory, l.Field)
	require.Equal(t, "Gro", l.Query)
	require.True(t, f.Loading(FieldCategory))
	require.Equal(t, "", f.Draft().CategoryID)
	require.Equal(t, FieldCategory, f.Open())

	l, ok = f.Input(FieldDestination, "Sup")
	require.True(t, ok)
	require.True(t, l.Destination)

	_, ok = f.Input(FieldAmount, "12")
	require.False(t, ok)
	require.Equal(t, "12", f.Draft().Amount)
}

func TestResolveDropsStaleAnswers(t *testing.T) {
	f := newForm(model.Draft{})
	first, _ := f.Input(FieldDescription, "Co")
	second, _ := f.Input(FieldDescription, "Cof")

	require.False(t, f.Resolve(first, []model.Suggestion{{Name: "Cola"}}, nil))
	require.Empty(t, f.Suggestions(FieldDescription))
	require.True(t, f.Loading(FieldDescription))

	require.True(t, f.Resolve(second, []model.Suggestion{{Name: "Coffee"}}, nil))
	require.Equal(t, []model.Suggestion{{Name: "Coffee"}}, f.Suggestions(FieldDescription))
	require.False(t, f.Loading(FieldDescription))
}

func TestResolveErrorEmptiesPanel(t *testing.T) {
	f := newForm(model.Draft{})
	l, _ := f.Focus(FieldBudget)
	require.True(t, f.Resolve(l, nil, errors.New("boom")))
	require.Empty(t, f.Suggestions(FieldBudget))
	require.False(t, f.Loading(FieldBudget))
}

func TestSelectWritesOnlyThatField(t *testing.T) {
	f := newForm(model.Draft{Description: "Lunch", SourceName: "Checking"})
	l, _ := f.Focus(FieldCategory)
	f.Resolve(l, []model.Suggestion{{ID: "3", Name: "Food"}}, nil)

	require.True(t, f.Select(FieldCategory, model.Suggestion{ID: "3", Name: "Food"}))
	d := f.Draft()
	require.Equal(t, "3", d.CategoryID)
	require.Equal(t, "Food", d.CategoryName)
	require.Equal(t, "Lunch", d.Description)
	require.Equal(t, "Checking", d.SourceName)
	require.Equal(t, FieldNone, f.Open())
	require.False(t, f.Current(l))

	f.Focus(FieldSource)
	f.Select(FieldSource, model.Suggestion{ID: "1", Name: "Savings", NameWithBalance: "Savings (€10.00)"})
	require.Equal(t, "Savings", f.Draft().SourceName)

	require.False(t, f.Select(FieldAmount, model.Suggestion{Name: "x"}))
}

func TestSelectLeavesOtherPanelOpen(t *testing.T) {
	f := newForm(model.Draft{})
	f.Focus(FieldDescription)
	desc, _ := f.Input(FieldDescription, "Cof")
	f.Focus(FieldBudget)
	require.Equal(t, FieldBudget, f.Open())

	require.True(t, f.Select(FieldDescription, model.Suggestion{Name: "Coffee"}))
	require.Equal(t, FieldBudget, f.Open())
	require.Equal(t, "Coffee", f.Draft().Description)
	require.Empty(t, f.Draft().BudgetID)
	require.False(t, f.Current(desc))
}

func TestClear(t *testing.T) {
	f := newForm(model.Draft{
		Description: "Lunch", Amount: "4.00",
		CategoryID: "3", CategoryName: "Food",
		BudgetID: "9", BudgetName: "Eating out",
	})
	f.Clear(FieldCategory)
	f.Clear(FieldBudget)
	f.Clear(FieldAmount)
	d := f.Draft()
	require.Empty(t, d.CategoryID)
	require.Empty(t, d.CategoryName)
	require.Empty(t, d.BudgetID)
	require.Empty(t, d.BudgetName)
	require.Empty(t, d.Amount)
	require.Equal(t, "Lunch", d.Description)
}

func TestClearInvalidatesSuggestions(t *testing.T) {
	f := newForm(model.Draft{})
	first, _ := f.Input(FieldCategory, "Gro")
	require.True(t, f.Resolve(first, []model.Suggestion{{ID: "7", Name: "Groceries"}}, nil))
	late, _ := f.Input(FieldCategory, "Groc")

	l, ok := f.Clear(FieldCategory)
	require.True(t, ok)
	require.Equal(t, FieldCategory, l.Field)
	require.Empty(t, l.Query)
	require.Empty(t, f.Suggestions(FieldCategory))
	require.False(t, f.Resolve(late, []model.Suggestion{{Name: "Groceries"}}, nil))
	require.Empty(t, f.Suggestions(FieldCategory))
	require.True(t, f.Resolve(l, []model.Suggestion{{ID: "1", Name: "Bills"}}, nil))

	pending, _ := f.Input(FieldBudget, "Eat")
	f.Focus(FieldDescription)
	_, ok = f.Clear(FieldBudget)
	require.False(t, ok)
	require.False(t, f.Loading(FieldBudget))
	require.False(t, f.Resolve(pending, []model.Suggestion{{Name: "Eating out"}}, nil))
	require.Equal(t, FieldDescription, f.Open())
}

func TestReset(t *testing.T) {
	f := newForm(model.Draft{Description: "Lunch", Amount: "4", Type: model.Transfer, SourceName: "A"})
	l, _ := f.Focus(FieldSource)
	f.Validate()
	f.Clear(FieldDescription)
	f.Validate()
	require.True(t, f.Errors().Any())

	f.Reset()
	require.Equal(t, Defaults(fixedNow), f.Draft())
	require.Equal(t, model.Deposit, f.Draft().Type)
	require.False(t, f.Errors().Any())
	require.Equal(t, FieldNone, f.Open())
	require.False(t, f.Resolve(l, []model.Suggestion{{Name: "late"}}, nil))
}

func TestSetType(t *testing.T) {
	f := newForm(model.Draft{})
	require.NoError(t, f.SetType(model.Transfer))
	require.Equal(t, model.Transfer, f.Draft().Type)
	require.Error(t, f.SetType("bogus"))
	require.Equal(t, model.Transfer, f.Draft().Type)
}
