// Package xirr computes the annualised internal rate of return for an
// irregular series of cash flows. Outflows (purchases) are negative,
// inflows (proceeds and the current holding value) are positive. The
// result is a display metric, so float64 precision is sufficient.
package xirr

import (
	"math"
	"sort"
	"time"
)

// CashFlow is one dated flow. Negative amounts are money invested,
// positive amounts are money received.
type CashFlow struct {
	Date   time.Time
	Amount float64
}

// Calculate returns the XIRR of the flows as a percentage rounded to
// two decimal places, e.g. 21.11 for an annualised 21.11% return. It
// returns 0 when the flows cannot produce a rate: fewer than two flows,
// all flows of one sign, or a solve that fails to converge.
func Calculate(flows []CashFlow) float64 {
	if len(flows) < 2 {
		return 0
	}

	sorted := make([]CashFlow, len(flows))
	copy(sorted, flows)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	hasNeg, hasPos := false, false
	for _, f := range sorted {
		if f.Amount < 0 {
			hasNeg = true
		}
		if f.Amount > 0 {
			hasPos = true
		}
	}
	if !hasNeg || !hasPos {
		return 0
	}

	base := sorted[0].Date
	years := make([]float64, len(sorted))
	for i, f := range sorted {
		days := f.Date.Sub(base).Hours() / 24
		years[i] = days / 365.25
	}

	rate := solve(sorted, years)
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0
	}
	return math.Round(rate*100*100) / 100
}

// solve runs Newton-Raphson on NPV(r) = sum(amount_i / (1+r)^years_i)
// from a 10% starting guess, falling back to bisection when the
// iteration stalls or diverges.
func solve(flows []CashFlow, years []float64) float64 {
	const (
		maxIter = 100
		tol     = 1e-7
		minRate = -0.999
	)

	rate := 0.1
	for iter := 0; iter < maxIter; iter++ {
		npv := 0.0
		dnpv := 0.0
		for i, f := range flows {
			b := 1 + rate
			if b <= 0 {
				rate = minRate
				b = 1 + rate
			}
			discount := math.Pow(b, years[i])
			if discount == 0 {
				continue
			}
			npv += f.Amount / discount
			if years[i] != 0 {
				dnpv -= years[i] * f.Amount / (discount * b)
			}
		}

		if math.Abs(npv) < tol {
			return rate
		}
		if dnpv == 0 {
			break
		}

		next := rate - npv/dnpv
		if next < minRate {
			next = minRate
		}
		if next > 100 {
			next = 100
		}
		rate = next
	}

	return bisect(flows, years)
}

func bisect(flows []CashFlow, years []float64) float64 {
	const (
		maxIter = 200
		tol     = 1e-6
	)

	npvAt := func(rate float64) float64 {
		sum := 0.0
		for i, f := range flows {
			b := 1 + rate
			if b <= 0 {
				return math.NaN()
			}
			sum += f.Amount / math.Pow(b, years[i])
		}
		return sum
	}

	lo, hi := -0.99, 10.0
	npvLo := npvAt(lo)
	npvHi := npvAt(hi)
	if math.IsNaN(npvLo) || math.IsNaN(npvHi) || npvLo*npvHi > 0 {
		return math.NaN()
	}

	for iter := 0; iter < maxIter; iter++ {
		mid := (lo + hi) / 2
		npvMid := npvAt(mid)
		if math.IsNaN(npvMid) {
			return math.NaN()
		}
		if math.Abs(npvMid) < tol {
			return mid
		}
		if npvMid*npvLo < 0 {
			hi = mid
		} else {
			lo = mid
			npvLo = npvMid
		}
	}
	return (lo + hi) / 2
}
