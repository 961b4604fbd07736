package form

import "errors"

// ErrInvalid is returned by Submit when the draft does not validate.
var ErrInvalid = errors.New("form: draft failed validation")

const (
	MsgDescriptionRequired = "Description is required."
	MsgDescriptionShort    = "Description is too short."
	MsgAmountRequired      = "Amount is required."
	MsgSubmitFailed        = "The transaction could not be submitted."
)

// Errors holds one message slot per validated field plus a global slot for
// server-reported failures. An empty string means no error.
type Errors struct {
	Description     string
	SourceName      string
	DestinationName string
	Amount          string
	CategoryID      string
	BudgetID        string
	Global          string
}

// Any reports whether any slot is set.
func (e Errors) Any() bool {
	return e != Errors{}
}

// Field returns the message for a field slot.
func (e Errors) Field(f Field) string {
	switch f {
	case FieldDescription:
		return e.Description
	case FieldSource:
		return e.SourceName
	case FieldDestination:
		return e.DestinationName
	case FieldAmount:
		return e.Amount
	case FieldCategory:
		return e.CategoryID
	case FieldBudget:
		return e.BudgetID
	default:
		return ""
	}
}
