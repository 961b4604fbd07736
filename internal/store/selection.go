package store

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jask/fireflymoney/internal/model"
)

// Periods are the range lengths, in months, the filter panel offers.
var Periods = []int{1, 3, 6, 12}

// Selection is the active time range and currency.
type Selection struct {
	RangeMonths  int
	CurrencyCode string
	// Offset moves the window by whole ranges; 0 ends in the current month,
	// -1 is the range before it.
	Offset int
}

// RangeDetails is the concrete window a selection resolves to.
type RangeDetails struct {
	Start time.Time
	End   time.Time
	Title string
}

func (r RangeDetails) Period() model.Period {
	return model.Period{Start: r.Start, End: r.End}
}

// ValidRange reports whether months is one of Periods.
func ValidRange(months int) bool { return slices.Contains(Periods, months) }

// PeriodLabel renders a range length the way the filter panel shows it.
func PeriodLabel(months int) string { return fmt.Sprintf("%dM", months) }

// Range resolves the selection against now. The window ends on the last day
// of its final month and starts on the first day of its first month.
func (s Selection) Range(now time.Time) RangeDetails {
	months := s.RangeMonths
	if !ValidRange(months) {
		months = Periods[0]
	}
	loc := now.Location()
	lastMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, s.Offset*months, 0)
	firstMonth := lastMonth.AddDate(0, -(months - 1), 0)
	end := lastMonth.AddDate(0, 1, -1)

	var title string
	if months == 1 {
		title = lastMonth.Format("January 2006")
	} else {
		title = firstMonth.Format("Jan 2006") + " - " + lastMonth.Format("Jan 2006")
	}
	return RangeDetails{Start: firstMonth, End: end, Title: title}
}

func normCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
