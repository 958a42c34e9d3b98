package utils

import "math"

// MaxInt returns the larger of a and b.
func MaxInt(a, b int) int {
	if a < b {
		return b
	}
	return a
}

// MinInt returns the smaller of a and b.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ClampF64 restricts v to [lo, hi].
func ClampF64(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ClampInt restricts v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	return MaxInt(lo, MinInt(hi, v))
}
