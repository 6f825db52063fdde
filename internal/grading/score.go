package grading

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Percent returns round(part / whole * 100), rounding halves away from zero.
// A zero whole scores 0. The result is clamped to [0, 100].
func Percent(part, whole int) int {
	if whole <= 0 || part <= 0 {
		return 0
	}

	p := decimal.NewFromInt(int64(part)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(whole))).
		Round(0).
		IntPart()

	if p > 100 {
		return 100
	}
	return int(p)
}

// Mean returns round(sum / n), or 0 when n is 0.
func Mean(sum int64, n int) int {
	if n <= 0 {
		return 0
	}
	return int(decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(n))).Round(0).IntPart())
}

// Passed reports score >= passing, using fallback when no passing score is set.
func Passed(score int, passing *int, fallback int) bool {
	threshold := fallback
	if passing != nil {
		threshold = *passing
	}
	return score >= threshold
}

// Rate returns part / whole as a percentage with one decimal place.
func Rate(part, whole int) float64 {
	if whole <= 0 || part <= 0 {
		return 0
	}
	r, _ := decimal.NewFromInt(int64(part)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(whole))).
		Round(1).
		Float64()
	return r
}
