package granular

import (
	"github.com/cwbudde/algo-drone/dsp/interp"
	"github.com/cwbudde/algo-drone/dsp/sample"
	"github.com/cwbudde/algo-drone/dsp/window"
)

// Grain is a single playback voice: a windowed segment of the recorded
// buffers read at its own fixed-point rate.
//
// The read phase is 16.16 fixed point relative to firstSample. A negative
// increment plays the segment backwards. The envelope phase runs from 0 to 2
// with the peak at 1; the grain deactivates itself once it passes 2.
//
// Grains live in fixed pools and are restarted in place, never allocated.
type Grain struct {
	firstSample    int
	width          int
	phase          int64
	phaseIncrement int64

	envelopePhase     float64
	envelopeIncrement float64
	windowShape       float64

	gainL float64
	gainR float64

	preDelay int
	active   bool
}

// Start activates the grain.
//
// preDelay is the number of output samples to stay silent before playback,
// start is any buffer index (it is wrapped into [0, bufferSize)), width is the
// grain duration in output samples and phaseIncrement the 16.16 read rate.
// windowShape blends the triangular envelope toward Hann (0 = triangle).
func (g *Grain) Start(preDelay, bufferSize, start, width int, phaseIncrement int64,
	windowShape, gainL, gainR float64,
) {
	if width < 1 {
		width = 1
	}
	if preDelay < 0 {
		preDelay = 0
	}

	start %= bufferSize
	if start < 0 {
		start += bufferSize
	}

	g.firstSample = start
	g.width = width
	g.phase = 0
	g.phaseIncrement = phaseIncrement
	g.envelopePhase = 0
	g.envelopeIncrement = 2 / float64(width)
	g.windowShape = windowShape
	g.gainL = gainL
	g.gainR = gainR
	g.preDelay = preDelay
	g.active = true
}

// Active reports whether the grain occupies its pool slot.
func (g *Grain) Active() bool {
	return g.active
}

// Stop frees the slot immediately.
func (g *Grain) Stop() {
	g.active = false
}

// OverlapAdd accumulates up to size frames of the grain into dst, an
// interleaved stereo block. right may be nil, in which case the mono left
// buffer feeds both channels.
//
// It returns the frame range [first, end) the grain contributed to, so the
// caller can track per-sample overlap. Once the envelope completes the grain
// deactivates and the remaining frames are left untouched.
func (g *Grain) OverlapAdd(left, right *sample.Buffer, dst []float64, size int) (first, end int) {
	if !g.active {
		return 0, 0
	}

	if g.preDelay >= size {
		g.preDelay -= size
		return 0, 0
	}

	first = g.preDelay
	g.preDelay = 0

	i := first
	for ; i < size; i++ {
		if g.envelopePhase >= 2 {
			break
		}

		gain := window.GrainEnvelope(g.envelopePhase, g.windowShape)
		index := g.firstSample + int(g.phase>>interp.FracBits)
		frac := uint16(g.phase & interp.FracMask)

		l := left.ReadHermite(index, frac)
		r := l
		if right != nil {
			r = right.ReadHermite(index, frac)
		}

		dst[2*i] += l * gain * g.gainL
		dst[2*i+1] += r * gain * g.gainR

		g.phase += g.phaseIncrement
		g.envelopePhase += g.envelopeIncrement
	}

	if g.envelopePhase >= 2 {
		g.active = false
	}

	return first, i
}
