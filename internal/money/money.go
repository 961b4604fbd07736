// Package money parses user-entered amounts and formats balances for display.
package money

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPlaces is used when a currency does not say otherwise.
const DefaultPlaces int32 = 2

var ErrEmpty = errors.New("money: empty amount")

// Bounds on typed amounts. Firefly stores amounts as decimal(32,12).
const (
	maxIntDigits  = 18
	maxFracDigits = 12
)

var plainAmount = regexp.MustCompile(`^[+-]?(\d*)(?:\.(\d*))?$`)

var symbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
	"KRW": "₩",
	"BRL": "R$",
	"AUD": "A$",
	"CAD": "C$",
	"RUB": "₽",
	"UAH": "₴",
	"TRY": "₺",
	"PLN": "zł",
	"ILS": "₪",
}

// Symbol returns the display symbol for a currency code, falling back to the
// code itself.
func Symbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if s, ok := symbols[code]; ok {
		return s
	}
	return code
}

// ParseAmount reads a decimal amount typed by a user. A lone comma is taken
// as the decimal separator; with both present, commas are grouping.
// Exponent notation and amounts beyond 18 integer or 12 fractional digits
// are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmpty
	}
	s = strings.ReplaceAll(s, " ", "")
	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") == 1:
		s = strings.Replace(s, ",", ".", 1)
	}
	m := plainAmount.FindStringSubmatch(s)
	if m == nil || m[1]+m[2] == "" {
		return decimal.Zero, fmt.Errorf("money: parse %q: not a plain decimal", s)
	}
	if len(strings.TrimLeft(m[1], "0")) > maxIntDigits || len(m[2]) > maxFracDigits {
		return decimal.Zero, fmt.Errorf("money: parse %q: out of range", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return d, nil
}

// Fixed renders v with exactly places decimals and no grouping, the shape
// the entry form keeps in its amount field.
func Fixed(v decimal.Decimal, places int32) string {
	if places < 0 {
		places = DefaultPlaces
	}
	return v.StringFixed(places)
}

// Format renders v for display, e.g. "€1,234.56", "-$12.00" or "CHF 3.50".
func Format(code string, v decimal.Decimal, places int32) string {
	if places < 0 {
		places = DefaultPlaces
	}
	sign := ""
	if v.Sign() < 0 {
		sign = "-"
	}
	num := group(v.Abs().StringFixed(places))
	sym := Symbol(code)
	if sym == "" {
		return sign + num
	}
	if len([]rune(sym)) > 1 && sym == strings.ToUpper(strings.TrimSpace(code)) {
		return sign + sym + " " + num
	}
	return sign + sym + num
}

// Signed is Format with an explicit plus sign for positive values.
func Signed(code string, v decimal.Decimal, places int32) string {
	if v.Sign() > 0 {
		return "+" + Format(code, v, places)
	}
	return Format(code, v, places)
}

func group(fixed string) string {
	intPart, frac, hasFrac := strings.Cut(fixed, ".")
	if len(intPart) > 3 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}
	if hasFrac {
		return intPart + "." + frac
	}
	return intPart
}
