package numeric

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmpty is returned by ParseStrict for blank input
	ErrEmpty = errors.New("value is empty")
	// ErrInvalid is returned by ParseStrict for input that is not a decimal number
	ErrInvalid = errors.New("value is not a valid number")
)

var hundred = decimal.NewFromInt(100)

// maxInputLen bounds the typed text so exponents and huge digit runs never
// reach decimal arithmetic.
const maxInputLen = 32

var plainNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// normalize trims the input and accepts a comma as the decimal separator
// when no dot is present ("12,5" -> "12.5").
func normalize(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	}
	return s
}

// Parse returns the decimal value of s, or zero when s is blank or unparsable.
// Use it for display math, never for submission checks.
func Parse(s string) decimal.Decimal {
	d, err := ParseStrict(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseStrict returns the decimal value of s or an error describing why it
// cannot be used. Only plain [-]digits[.digits] input is accepted.
func ParseStrict(s string) (decimal.Decimal, error) {
	s = normalize(s)
	if s == "" {
		return decimal.Zero, ErrEmpty
	}
	if len(s) > maxInputLen || !plainNumber.MatchString(s) {
		return decimal.Zero, ErrInvalid
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalid
	}
	return d, nil
}

// Percent returns base * pct / 100
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

// Round rounds to 2 decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Float converts d to float64 for JSON payloads.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
