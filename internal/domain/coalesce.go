package domain

import "math"

// CoalesceStr returns the first non-empty string from vals.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// ClampPercent bounds v to [0, 100].
func ClampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// PercentFromFloat clamps x to [0, 100] and rounds it half up. Infinities
// land on the nearest bound; NaN is 0.
func PercentFromFloat(x float64) int {
	if math.IsNaN(x) {
		return 0
	}
	return RoundHalfUp(math.Max(0, math.Min(100, x)))
}

// RoundHalfUp rounds x to the nearest integer, halves away from zero.
// Inputs in this package are never negative.
func RoundHalfUp(x float64) int {
	return int(math.Round(x))
}
