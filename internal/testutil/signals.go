// Package testutil holds deterministic signal generators and assertions
// shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a mono sine wave starting at phase zero.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// StereoSine returns frames of an interleaved stereo sine with both
// channels in phase.
func StereoSine(freqHz, sampleRate, amplitude float64, frames int) []float64 {
	return Interleave(
		DeterministicSine(freqHz, sampleRate, amplitude, frames),
		DeterministicSine(freqHz, sampleRate, amplitude, frames),
	)
}

// Interleave zips left and right into one interleaved stereo slice. The
// shorter channel bounds the frame count.
func Interleave(left, right []float64) []float64 {
	n := min(len(left), len(right))
	out := make([]float64, 2*n)
	for i := range n {
		out[2*i] = left[i]
		out[2*i+1] = right[i]
	}
	return out
}

// Channel extracts channel ch (0 or 1) from interleaved stereo.
func Channel(interleaved []float64, ch int) []float64 {
	out := make([]float64, len(interleaved)/2)
	for i := range out {
		out[i] = interleaved[2*i+ch]
	}
	return out
}
