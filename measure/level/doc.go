// Package level implements a stereo peak and RMS meter for interleaved
// audio blocks.
package level
