// Package granular implements a granular delay and looper voice.
//
// Live input is recorded into circular [sample.Buffer]s. Short windowed
// grains read back from them at independent rates, positions and pans:
//
//   - [Engine] schedules a fixed pool of grains behind the write head
//     (granular delay, reverse playback).
//   - [Player] drives the engine and, while frozen, replays a crossfaded loop
//     of the held buffer. Tap tempo can lock delay time and loop length.
//   - [Shimmer] seeds a larger pool with octave-shifted, heavily overlapped
//     grains.
//   - [Processor] ties a voice together with feedback, a reverb send and the
//     dry/wet mix.
//
// Parameter snapshots cross from the control goroutine to the audio
// goroutine through [Parameters]; every other type is confined to the audio
// goroutine and does not allocate after construction.
package granular
