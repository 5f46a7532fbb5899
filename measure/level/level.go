package level

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-drone/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

const defaultRelease = 0.3

// Levels is a readout of the meter, linear and in dBFS.
type Levels struct {
	Peak   [2]float64
	RMS    [2]float64
	Stereo float64

	PeakDB   [2]float64
	RMSDB    [2]float64
	StereoDB float64
}

// Option configures a [Meter].
type Option func(*Meter)

// WithRelease sets the peak fall time constant in seconds.
func WithRelease(seconds float64) Option {
	return func(m *Meter) {
		if seconds > 0 {
			m.release = seconds
		}
	}
}

// Meter tracks per-channel peak with exponential release, per-block RMS and
// the combined stereo RMS.
//
// Process runs on the audio goroutine and does not allocate for blocks up to
// maxBlock frames. Levels may be called from any goroutine.
type Meter struct {
	sampleRate float64
	release    float64
	decay      float64

	peak [2]float64

	left  []float64
	right []float64
	power []float64

	readout [5]atomic.Uint64
}

// New creates a meter for blocks of at most maxBlock frames.
func New(sampleRate float64, maxBlock int, opts ...Option) (*Meter, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("level meter sample rate must be > 0: %f", sampleRate)
	}
	if maxBlock <= 0 {
		return nil, fmt.Errorf("level meter block size must be > 0: %d", maxBlock)
	}

	m := &Meter{
		sampleRate: sampleRate,
		release:    defaultRelease,
		left:       make([]float64, maxBlock),
		right:      make([]float64, maxBlock),
		power:      make([]float64, maxBlock),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	m.decay = math.Exp(-1 / (m.release * sampleRate))
	return m, nil
}

// Process meters an interleaved stereo block. Blocks longer than the
// configured maximum are split.
func (m *Meter) Process(interleaved []float64) {
	frames := len(interleaved) / 2
	maxBlock := len(m.left)
	for frames > 0 {
		n := min(frames, maxBlock)
		m.processBlock(interleaved[:2*n], n)
		interleaved = interleaved[2*n:]
		frames -= n
	}
}

func (m *Meter) processBlock(interleaved []float64, n int) {
	left, right, power := m.left[:n], m.right[:n], m.power[:n]

	var blockPeak, sum [2]float64
	for i := range n {
		l, r := interleaved[2*i], interleaved[2*i+1]
		left[i], right[i] = l, r
		blockPeak[0] = math.Max(blockPeak[0], math.Abs(l))
		blockPeak[1] = math.Max(blockPeak[1], math.Abs(r))
		sum[0] += l * l
		sum[1] += r * r
	}

	vecmath.Power(power, left, right)
	var stereo float64
	for _, p := range power {
		stereo += p
	}

	fall := math.Pow(m.decay, float64(n))
	for ch := range m.peak {
		m.peak[ch] = core.FlushDenormals(math.Max(m.peak[ch]*fall, blockPeak[ch]))
	}

	m.readout[0].Store(math.Float64bits(m.peak[0]))
	m.readout[1].Store(math.Float64bits(m.peak[1]))
	m.readout[2].Store(math.Float64bits(math.Sqrt(sum[0] / float64(n))))
	m.readout[3].Store(math.Float64bits(math.Sqrt(sum[1] / float64(n))))
	m.readout[4].Store(math.Float64bits(math.Sqrt(stereo / float64(2*n))))
}

// Levels returns the latest readout. Safe from any goroutine.
func (m *Meter) Levels() Levels {
	var lv Levels
	lv.Peak[0] = math.Float64frombits(m.readout[0].Load())
	lv.Peak[1] = math.Float64frombits(m.readout[1].Load())
	lv.RMS[0] = math.Float64frombits(m.readout[2].Load())
	lv.RMS[1] = math.Float64frombits(m.readout[3].Load())
	lv.Stereo = math.Float64frombits(m.readout[4].Load())

	for ch := range 2 {
		lv.PeakDB[ch] = core.LinearToDB(lv.Peak[ch])
		lv.RMSDB[ch] = core.LinearToDB(lv.RMS[ch])
	}
	lv.StereoDB = core.LinearToDB(lv.Stereo)
	return lv
}

// Reset clears the peak hold and readout. Audio goroutine only.
func (m *Meter) Reset() {
	m.peak = [2]float64{}
	for i := range m.readout {
		m.readout[i].Store(0)
	}
}
