package tensor

import "math"

// Precision used when rounding generated values and arithmetic results.
const (
	GeneratedDigits  = 2
	ArithmeticDigits = 3
)

// Round rounds x half away from zero to the given number of decimal places.
func Round(x float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	r := math.Round(x*scale) / scale
	if r == 0 {
		// Normalize -0 so formatted output never shows "-0".
		return 0
	}
	return r
}
