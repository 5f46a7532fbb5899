package pitch

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-drone/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

const (
	minSize = 32

	defaultLowHz  = 20.0
	defaultHighHz = 20000.0
)

// ErrShortInput is returned when the signal is shorter than the analysis
// size.
var ErrShortInput = errors.New("pitch: input shorter than analysis size")

// Result is one pitch estimate.
type Result struct {
	// Frequency is the interpolated peak frequency in Hz.
	Frequency float64
	// Bin is the interpolated peak bin.
	Bin float64
	// Magnitude is the windowed magnitude of the strongest bin.
	Magnitude float64
}

// Option configures an [Estimator].
type Option func(*config)

type config struct {
	lowHz  float64
	highHz float64
}

// WithRange limits the peak search to [lowHz, highHz].
func WithRange(lowHz, highHz float64) Option {
	return func(c *config) {
		if lowHz >= 0 && highHz > lowHz {
			c.lowHz = lowHz
			c.highHz = highHz
		}
	}
}

// Estimator holds a reusable FFT plan and scratch buffers. It is not
// thread-safe.
type Estimator struct {
	sampleRate float64
	size       int
	lowBin     int
	highBin    int

	plan   *algofft.Plan[complex128]
	coeffs []float64
	frame  []float64
	in     []complex128
	out    []complex128
	re     []float64
	im     []float64
	mag    []float64
}

// New creates an estimator analysing size samples (a power of two >= 32).
func New(size int, sampleRate float64, opts ...Option) (*Estimator, error) {
	if size < minSize || size&(size-1) != 0 {
		return nil, fmt.Errorf("pitch: size must be a power of two >= %d: %d", minSize, size)
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("pitch: sample rate must be > 0: %f", sampleRate)
	}

	cfg := config{lowHz: defaultLowHz, highHz: defaultHighHz}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("pitch: %w", err)
	}
	coeffs, err := window.Hann(size, window.WithPeriodic())
	if err != nil {
		return nil, fmt.Errorf("pitch: %w", err)
	}

	bins := size/2 + 1
	binHz := sampleRate / float64(size)
	low := max(int(math.Floor(cfg.lowHz/binHz)), 1)
	high := min(int(math.Ceil(cfg.highHz/binHz)), bins-2)
	if high < low {
		high = low
	}

	return &Estimator{
		sampleRate: sampleRate,
		size:       size,
		lowBin:     low,
		highBin:    high,
		plan:       plan,
		coeffs:     coeffs,
		frame:      make([]float64, size),
		in:         make([]complex128, size),
		out:        make([]complex128, size),
		re:         make([]float64, bins),
		im:         make([]float64, bins),
		mag:        make([]float64, bins),
	}, nil
}

// Size returns the analysis length in samples.
func (e *Estimator) Size() int { return e.size }

// BinHz returns the spectral resolution in Hz.
func (e *Estimator) BinHz() float64 { return e.sampleRate / float64(e.size) }

// Estimate analyses the last Size() samples of signal.
func (e *Estimator) Estimate(signal []float64) (Result, error) {
	if len(signal) < e.size {
		return Result{}, ErrShortInput
	}

	frame := e.frame
	copy(frame, signal[len(signal)-e.size:])
	if err := window.ApplyCoefficientsInPlace(frame, e.coeffs); err != nil {
		return Result{}, fmt.Errorf("pitch: %w", err)
	}
	for i, v := range frame {
		e.in[i] = complex(v, 0)
	}

	if err := e.plan.Forward(e.out, e.in); err != nil {
		return Result{}, fmt.Errorf("pitch: %w", err)
	}
	for i := range e.re {
		e.re[i] = real(e.out[i])
		e.im[i] = imag(e.out[i])
	}
	vecmath.Magnitude(e.mag, e.re, e.im)

	peak := e.lowBin
	for k := e.lowBin + 1; k <= e.highBin; k++ {
		if e.mag[k] > e.mag[peak] {
			peak = k
		}
	}

	bin := float64(peak) + parabolicOffset(e.mag[peak-1], e.mag[peak], e.mag[peak+1])
	return Result{
		Frequency: bin * e.BinHz(),
		Bin:       bin,
		Magnitude: e.mag[peak],
	}, nil
}

// parabolicOffset fits a parabola through log magnitudes around a peak and
// returns the vertex offset in bins, within [-0.5, 0.5].
func parabolicOffset(left, center, right float64) float64 {
	const floor = 1e-300
	a := math.Log(math.Max(left, floor))
	b := math.Log(math.Max(center, floor))
	c := math.Log(math.Max(right, floor))

	den := a - 2*b + c
	if den == 0 {
		return 0
	}
	p := 0.5 * (a - c) / den
	if p > 0.5 {
		p = 0.5
	}
	if p < -0.5 {
		p = -0.5
	}
	return p
}

// Semitones returns the interval from reference to frequency in semitones.
func Semitones(frequency, reference float64) float64 {
	if frequency <= 0 || reference <= 0 {
		return 0
	}
	return 12 * math.Log2(frequency/reference)
}
