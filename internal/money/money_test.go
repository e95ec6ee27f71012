package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDivZeroDivisor(t *testing.T) {
	got := Div(decimal.NewFromInt(100), decimal.Zero)
	if !got.IsZero() {
		t.Errorf("Div(100, 0) = %s, want 0", got)
	}
}

func TestDivKeepsPrecision(t *testing.T) {
	// 1700/150 must not be pre-rounded to money precision
	got := Div(decimal.NewFromInt(1700), decimal.NewFromInt(150))
	want := decimal.NewFromInt(1700).Div(decimal.NewFromInt(150))
	if !got.Equal(want) {
		t.Errorf("Div(1700, 150) = %s, want %s", got, want)
	}
	if got.Equal(decimal.RequireFromString("11.33")) {
		t.Error("Div must not round to 2 decimal places")
	}
}

func TestRound2HalfUp(t *testing.T) {
	cases := map[string]string{
		"1.005":  "1.01",
		"1.004":  "1.00",
		"-1.005": "-1.01",
		"2":      "2.00",
	}
	for in, want := range cases {
		got := Round2(decimal.RequireFromString(in))
		if got.StringFixed(2) != want {
			t.Errorf("Round2(%s) = %s, want %s", in, got.StringFixed(2), want)
		}
	}
}

func TestSignHelpers(t *testing.T) {
	if !IsPositive(decimal.NewFromInt(1)) || IsPositive(decimal.Zero) {
		t.Error("IsPositive misclassifies")
	}
	if !IsNegative(decimal.NewFromInt(-1)) || IsNegative(decimal.Zero) {
		t.Error("IsNegative misclassifies")
	}
}
