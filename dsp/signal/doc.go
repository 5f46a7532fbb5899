// Package signal provides deterministic sources used to feed the voice:
// a polyphonic drone and plain test tones.
package signal
