//go:build !fastmath

package granular

import "math"

// SemitonesToRatio converts a transposition in semitones to a playback ratio.
func SemitonesToRatio(semitones float64) float64 {
	return math.Pow(2, semitones/12)
}

func invSqrt(x float64) float64 {
	return 1 / math.Sqrt(x)
}
