// Package window provides window functions for grain envelopes and analysis
// frames.
//
// [GrainEnvelope] is the per-sample grain window used by the granular
// engines. [Generate], [Hann] and [ApplyCoefficientsInPlace] build and apply
// whole-frame windows for the spectral measurements in measure/pitch.
package window
