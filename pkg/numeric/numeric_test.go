package numeric

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "0"},
		{"blank", "   ", "0"},
		{"integer", "3", "3"},
		{"decimal", "12.50", "12.5"},
		{"comma separator", "12,5", "12.5"},
		{"padded", " 7 ", "7"},
		{"garbage", "abc", "0"},
		{"thousand and decimal", "1,000.5", "0"},
		{"negative", "-4", "-4"},
		{"leading dot", ".5", "0.5"},
		{"exponent", "1e100000000", "0"},
		{"negative exponent", "5E-3", "0"},
		{"too long", "1234567890123456789012345678901234", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.in)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseStrict(t *testing.T) {
	if _, err := ParseStrict(""); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
	if _, err := ParseStrict("1.2.3"); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
	for _, in := range []string{"1e100000000", "1E5", "0x10", "Infinity", "NaN", "12345678901234567890.12345678901234"} {
		if _, err := ParseStrict(in); !errors.Is(err, ErrInvalid) {
			t.Errorf("ParseStrict(%q) err = %v, want ErrInvalid", in, err)
		}
	}
	d, err := ParseStrict("2,25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Equal(decimal.RequireFromString("2.25")) {
		t.Errorf("got %s, want 2.25", d)
	}
}

func TestRoundAndPercent(t *testing.T) {
	if got := Round(decimal.RequireFromString("10.005")); !got.Equal(decimal.RequireFromString("10.01")) {
		t.Errorf("Round = %s, want 10.01", got)
	}
	if got := Percent(decimal.NewFromInt(220), decimal.NewFromInt(10)); !got.Equal(decimal.NewFromInt(22)) {
		t.Errorf("Percent = %s, want 22", got)
	}
}
