// Package biquad provides second-order IIR sections in Direct Form II
// Transposed and the RBJ cookbook designs used to condition the feedback
// path of the voice.
package biquad
