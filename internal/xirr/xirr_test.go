package xirr

import (
	"math"
	"testing"
	"time"
)

func approxEqual(got, want, tolerance float64) bool {
	return math.Abs(got-want) <= tolerance
}

func TestCalculate_SimpleBuyAndHold(t *testing.T) {
	// Invest 1000, worth 1100 exactly one year later: ~10%
	flows := []CashFlow{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Amount: -1000},
		{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Amount: 1100},
	}
	got := Calculate(flows)
	if !approxEqual(got, 10.0, 0.5) {
		t.Errorf("Calculate = %.2f%%, want ~10%%", got)
	}
}

func TestCalculate_ShortPeriodAnnualises(t *testing.T) {
	// 5% over six months annualises to ~10.25%
	flows := []CashFlow{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Amount: -10000},
		{Date: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), Amount: 10500},
	}
	got := Calculate(flows)
	if got < 9 || got > 12 {
		t.Errorf("Calculate = %.2f%%, want ~10.25%%", got)
	}
}

func TestCalculate_MultipleFlows(t *testing.T) {
	// Two purchases, one partial sale, then a terminal value.
	flows := []CashFlow{
		{Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Amount: -1000},
		{Date: time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC), Amount: -500},
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Amount: 300},
		{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Amount: 1600},
	}
	got := Calculate(flows)
	if got <= 0 || got > 50 {
		t.Errorf("Calculate = %.2f%%, want a moderate positive rate", got)
	}
}

func TestCalculate_NegativeReturn(t *testing.T) {
	flows := []CashFlow{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Amount: -1000},
		{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Amount: 800},
	}
	got := Calculate(flows)
	if !approxEqual(got, -20.0, 0.5) {
		t.Errorf("Calculate = %.2f%%, want ~-20%%", got)
	}
}

func TestCalculate_Degenerate(t *testing.T) {
	if got := Calculate(nil); got != 0 {
		t.Errorf("Calculate(nil) = %.2f, want 0", got)
	}

	oneFlow := []CashFlow{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Amount: -1000},
	}
	if got := Calculate(oneFlow); got != 0 {
		t.Errorf("Calculate(single flow) = %.2f, want 0", got)
	}

	allOut := []CashFlow{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Amount: -1000},
		{Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Amount: -500},
	}
	if got := Calculate(allOut); got != 0 {
		t.Errorf("Calculate(all negative) = %.2f, want 0", got)
	}
}

func TestCalculate_RoundsToTwoDecimals(t *testing.T) {
	flows := []CashFlow{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Amount: -1000},
		{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Amount: 1137},
	}
	got := Calculate(flows)
	if got != math.Round(got*100)/100 {
		t.Errorf("Calculate = %v, want a value rounded to 2 decimals", got)
	}
}
