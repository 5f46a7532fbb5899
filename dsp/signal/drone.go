package signal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-drone/dsp/core"
)

const (
	defaultRootHz   = 110.0
	defaultDetune   = 7.0 // cents
	defaultLevel    = 0.5
	defaultDriftHz  = 0.08
	defaultDriftAmt = 0.35

	twoPi = 2 * math.Pi
)

var defaultIntervals = []float64{0, 7, 12, 19}

// Option configures a [Drone].
type Option func(*droneConfig)

type droneConfig struct {
	seed      int64
	rootHz    float64
	intervals []float64
	detune    float64
	level     float64
	driftHz   float64
	driftAmt  float64
}

// WithSeed sets the seed used for initial phases and drift rates.
func WithSeed(seed int64) Option {
	return func(c *droneConfig) {
		c.seed = seed
	}
}

// WithRoot sets the root frequency in Hz.
func WithRoot(hz float64) Option {
	return func(c *droneConfig) {
		if hz > 0 {
			c.rootHz = hz
		}
	}
}

// WithIntervals sets the chord as semitone offsets from the root.
func WithIntervals(semitones ...float64) Option {
	return func(c *droneConfig) {
		if len(semitones) > 0 {
			c.intervals = append([]float64(nil), semitones...)
		}
	}
}

// WithDetune sets the spread between the left and right oscillator of each
// voice in cents.
func WithDetune(cents float64) Option {
	return func(c *droneConfig) {
		if cents >= 0 {
			c.detune = cents
		}
	}
}

// WithLevel sets the output level. No channel exceeds it.
func WithLevel(level float64) Option {
	return func(c *droneConfig) {
		if level >= 0 {
			c.level = level
		}
	}
}

// WithDrift sets the mean amplitude-drift rate in Hz and its depth in [0, 1].
// Depth zero gives a static chord.
func WithDrift(rateHz, depth float64) Option {
	return func(c *droneConfig) {
		if rateHz >= 0 && depth >= 0 && depth <= 1 {
			c.driftHz = rateHz
			c.driftAmt = depth
		}
	}
}

type voice struct {
	phaseL, phaseR float64
	incL, incR     float64
	drift          float64
	driftInc       float64
	gainL, gainR   float64
}

// Drone is a bank of detuned sine voices with slow amplitude drift. Each
// voice runs two oscillators detuned against each other, one per channel,
// and sits at its own position in the stereo field.
//
// Render does not allocate. Drone is not thread-safe.
type Drone struct {
	cfg    core.ProcessorConfig
	opts   droneConfig
	voices []voice
	gain   float64
}

// NewDrone creates a drone at the sample rate taken from coreOpts.
func NewDrone(coreOpts []core.ProcessorOption, opts ...Option) (*Drone, error) {
	cfg := core.ApplyProcessorOptions(coreOpts...)
	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		return nil, fmt.Errorf("drone sample rate must be > 0: %f", cfg.SampleRate)
	}

	dc := droneConfig{
		seed:      1,
		rootHz:    defaultRootHz,
		intervals: defaultIntervals,
		detune:    defaultDetune,
		level:     defaultLevel,
		driftHz:   defaultDriftHz,
		driftAmt:  defaultDriftAmt,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&dc)
		}
	}

	nyquist := cfg.SampleRate / 2
	for _, st := range dc.intervals {
		if f := dc.rootHz * math.Pow(2, st/12); f >= nyquist {
			return nil, fmt.Errorf("drone voice %.1f Hz at or above Nyquist %.1f Hz", f, nyquist)
		}
	}

	d := &Drone{
		cfg:    cfg,
		opts:   dc,
		voices: make([]voice, len(dc.intervals)),
		gain:   dc.level / float64(len(dc.intervals)),
	}
	d.Reset()
	return d, nil
}

// Config returns the processor configuration.
func (d *Drone) Config() core.ProcessorConfig { return d.cfg }

// Voices returns the number of chord voices.
func (d *Drone) Voices() int { return len(d.voices) }

// Reset restores initial phases and drift rates from the seed.
func (d *Drone) Reset() {
	rng := rand.New(rand.NewSource(d.opts.seed))
	spread := math.Pow(2, d.opts.detune/2400)
	rate := d.cfg.SampleRate

	n := len(d.voices)
	for i, st := range d.opts.intervals {
		f := d.opts.rootHz * math.Pow(2, st/12)
		pan := 0.5
		if n > 1 {
			pan = 0.2 + 0.6*float64(i)/float64(n-1)
		}
		d.voices[i] = voice{
			phaseL:   rng.Float64() * twoPi,
			phaseR:   rng.Float64() * twoPi,
			incL:     twoPi * f / spread / rate,
			incR:     twoPi * f * spread / rate,
			drift:    rng.Float64() * twoPi,
			driftInc: twoPi * d.opts.driftHz * (0.5 + rng.Float64()) / rate,
			gainL:    min(1, 2*(1-pan)),
			gainR:    min(1, 2*pan),
		}
	}
}

// Render overwrites out with interleaved stereo frames.
func (d *Drone) Render(out []float64) {
	depth := d.opts.driftAmt
	for i := 0; i+1 < len(out); i += 2 {
		var l, r float64
		for v := range d.voices {
			vc := &d.voices[v]
			amp := d.gain * (1 - depth*0.5*(1+math.Sin(vc.drift)))
			l += amp * vc.gainL * math.Sin(vc.phaseL)
			r += amp * vc.gainR * math.Sin(vc.phaseR)

			vc.phaseL = wrapPhase(vc.phaseL + vc.incL)
			vc.phaseR = wrapPhase(vc.phaseR + vc.incR)
			vc.drift = wrapPhase(vc.drift + vc.driftInc)
		}
		out[i] = l
		out[i+1] = r
	}
}

// RenderMono overwrites out with the average of both channels.
func (d *Drone) RenderMono(out []float64) {
	var frame [2]float64
	for i := range out {
		d.Render(frame[:])
		out[i] = 0.5 * (frame[0] + frame[1])
	}
}

func wrapPhase(p float64) float64 {
	if p >= twoPi {
		p -= twoPi
	}
	return p
}

// Sine writes a sine tone into out, one sample per element.
func Sine(out []float64, freqHz, sampleRate, amplitude float64) error {
	if sampleRate <= 0 {
		return fmt.Errorf("sine sample rate must be > 0: %f", sampleRate)
	}
	step := twoPi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return nil
}
