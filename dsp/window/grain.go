package window

const grainTableSize = 1024

// hannTable holds one symmetric Hann period sampled over the full grain so
// grain envelopes never call math.Cos in the audio path.
var hannTable = Generate(TypeHann, grainTableSize+1)

// GrainEnvelope evaluates a grain window from its envelope phase.
//
// phase runs from 0 to 2 over the grain; the base shape is triangular with its
// peak at phase 1. shape blends linearly from that triangle (0) toward a Hann
// window (1). Phases outside [0, 2] return 0.
func GrainEnvelope(phase, shape float64) float64 {
	if phase <= 0 || phase >= 2 {
		return 0
	}

	tri := phase
	if tri > 1 {
		tri = 2 - tri
	}
	if shape <= 0 {
		return tri
	}

	x := phase * (0.5 * grainTableSize)
	i := int(x)
	frac := x - float64(i)
	hann := hannTable[i] + frac*(hannTable[i+1]-hannTable[i])

	if shape >= 1 {
		return hann
	}
	return tri + (hann-tri)*shape
}
