package validation

import (
	"math"

	"github.com/shopspring/decimal"
)

// round2 rounds a monetary amount half away from zero to two decimals.
func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// relativeError returns |actual-expected| / max(expected, floor).
func relativeError(actual, expected, floor float64) float64 {
	return math.Abs(expected-actual) / math.Max(expected, floor)
}
