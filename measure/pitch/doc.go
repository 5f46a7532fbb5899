// Package pitch estimates the dominant frequency of a signal from the peak
// of a Hann-windowed FFT magnitude spectrum with parabolic bin
// interpolation.
//
// It is used to verify transposition of the granular engines and is cheap
// enough to run as a host diagnostic.
package pitch
