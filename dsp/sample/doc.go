// Package sample provides the recorded audio buffers read by the granular
// engines.
//
// A [Buffer] is a fixed-capacity ring with a write head that only moves when a
// [Recorder] pushes new samples. Reads never mutate the head and treat the
// storage as a ring: index size-1 and index 0 are adjacent, so Hermite reads
// stay continuous across the wrap.
package sample
