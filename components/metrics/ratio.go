package metrics

import "math"

// Percentage returns numerator/denominator*100, or 0 when the denominator is
// zero, negative or NaN. The result is not rounded. Finite inputs never yield
// an infinite result: ratios beyond float64 saturate at ±math.MaxFloat64.
func Percentage(numerator, denominator float64) float64 {
	if !(denominator > 0) {
		return 0
	}
	// scale first so whole-number ratios come out exact
	p := numerator * 100 / denominator
	if !math.IsInf(p, 0) || math.IsInf(numerator, 0) {
		return p
	}
	p = numerator / denominator * 100
	if math.IsInf(p, 0) {
		return math.Copysign(math.MaxFloat64, p)
	}
	return p
}

// Delta returns the percentage change from previous to current. A previous
// value <= 0 yields 0.
func Delta(current, previous float64) float64 {
	return Percentage(current-previous, previous)
}

// Divide returns numerator/denominator with the same zero guard as Percentage.
// Use it for currency quotients (ARPU, AOV) that must not be scaled by 100.
func Divide(numerator, denominator float64) float64 {
	if !(denominator > 0) {
		return 0
	}
	return numerator / denominator
}

// Clamp bounds v to [lo, hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
