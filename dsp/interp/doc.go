// Package interp provides the fractional-read kernels used by the sample
// buffers.
//
// [Hermite4] is the 4-point cubic Hermite kernel used for every grain and
// loop read.
//
// Read positions inside the granular engines are 16.16 fixed point: the
// integer part selects the sample, the low [FracBits] bits are converted with
// [Frac16].
package interp
