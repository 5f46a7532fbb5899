// Package automation plays breakpoint envelopes onto granular voice
// controls.
//
// A [Lane] is a list of (time, value) breakpoints with linear interpolation,
// optionally looping. A [Player] owns one lane per [Target], advances by the
// audio block size and writes the lane values into a [granular.Controls]
// snapshot for publishing.
package automation
