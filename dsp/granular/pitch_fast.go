//go:build fastmath

package granular

import (
	"github.com/meko-christian/algo-approx"
)

// ln2Over12 converts semitones to a natural exponent: 2^(s/12) = e^(s*ln2/12).
const ln2Over12 = 0.693147180559945309417232121458 / 12

// SemitonesToRatio converts a transposition in semitones to a playback ratio
// using a fast exponential approximation.
func SemitonesToRatio(semitones float64) float64 {
	return approx.FastExp(semitones * ln2Over12)
}

func invSqrt(x float64) float64 {
	return 1 / approx.FastSqrt(x)
}
