package granular

import (
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-drone/dsp/core"
	"github.com/cwbudde/algo-drone/dsp/filter/biquad"
	"github.com/cwbudde/algo-drone/dsp/reverb"
	"github.com/cwbudde/algo-drone/dsp/sample"
	"github.com/cwbudde/algo-vecmath"
)

// Processor hosts one complete voice: recorder, looping player, shimmer
// engine, feedback path, reverb send and dry/wet mix.
//
// Process must only be called from the audio goroutine. Parameters,
// RequestReset and the diagnostic getters are safe from any goroutine.
type Processor struct {
	cfg core.ProcessorConfig

	params   *Parameters
	buffers  []*sample.Buffer
	recorder *sample.Recorder
	player   *Player
	shimmer  *Shimmer
	reverb   *reverb.Reverb

	// feedback conditioning per output channel: DC blocker then tone lowpass
	dcBlock [2]*biquad.Section
	tone    [2]*biquad.Section

	wet      []float64
	previous []float64
	ramp     []float64
	prevLen  int

	mode     Mode
	gateGain float64

	resetRequested atomic.Bool
	activeGrains   atomic.Int32
	synchronized   atomic.Bool
}

// NewProcessor builds a voice from core options (sample rate, block size,
// buffer length, channel count) and granular options.
func NewProcessor(coreOpts []core.ProcessorOption, opts ...Option) (*Processor, error) {
	cfg := core.ApplyProcessorOptions(coreOpts...)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("granular processor: %w", err)
	}

	buffers := make([]*sample.Buffer, cfg.Channels)
	for i := range buffers {
		b, err := sample.New(cfg.BufferSamples())
		if err != nil {
			return nil, fmt.Errorf("granular processor: %w", err)
		}
		buffers[i] = b
	}

	recorder, err := sample.NewRecorder(buffers...)
	if err != nil {
		return nil, fmt.Errorf("granular processor: %w", err)
	}

	player, err := NewPlayer(cfg.BlockSize, opts...)
	if err != nil {
		return nil, fmt.Errorf("granular processor: %w", err)
	}
	player.Init(cfg.Channels)

	shimmer := NewShimmer(opts...)
	shimmer.Init(cfg.Channels)

	rev, err := reverb.New(cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("granular processor: %w", err)
	}

	p := &Processor{
		cfg:      cfg,
		params:   NewParameters(DefaultControls()),
		buffers:  buffers,
		recorder: recorder,
		player:   player,
		shimmer:  shimmer,
		reverb:   rev,
		wet:      make([]float64, 2*cfg.BlockSize),
		previous: make([]float64, 2*cfg.BlockSize),
		ramp:     make([]float64, 2*cfg.BlockSize),
		mode:     ModeGranular,
		gateGain: 1,
	}
	for ch := range 2 {
		p.dcBlock[ch] = biquad.NewSection(biquad.DCBlocker(FeedbackDCBlockHz, cfg.SampleRate))
		p.tone[ch] = biquad.NewSection(biquad.Lowpass(feedbackToneHz(cfg.SampleRate), biquad.DefaultQ, cfg.SampleRate))
	}
	return p, nil
}

// Feedback path filter corners.
const (
	FeedbackDCBlockHz = 20.0
	FeedbackToneHz    = 6000.0
)

// feedbackToneHz keeps the tone corner below Nyquist at low sample rates.
func feedbackToneHz(sampleRate float64) float64 {
	return min(FeedbackToneHz, 0.45*sampleRate)
}

// Config returns the resolved configuration.
func (p *Processor) Config() core.ProcessorConfig { return p.cfg }

// Parameters returns the voice parameters. Publish and Tap on it are safe
// from any goroutine.
func (p *Processor) Parameters() *Parameters { return p.params }

// Buffers returns the recorded sample buffers (one per input channel).
func (p *Processor) Buffers() []*sample.Buffer { return p.buffers }

// RequestReset asks the audio goroutine to clear buffers, grains and tap
// state at the next block boundary.
func (p *Processor) RequestReset() { p.resetRequested.Store(true) }

// ActiveGrainCount returns the grain count of the last rendered block.
func (p *Processor) ActiveGrainCount() int { return int(p.activeGrains.Load()) }

// Synchronized reports whether tap tempo was locked in the last block.
func (p *Processor) Synchronized() bool { return p.synchronized.Load() }

// Process consumes interleaved input with the configured channel count and
// writes interleaved stereo to out. The frame count is taken from out;
// in must hold at least as many frames. Work is split into blocks of the
// configured size.
func (p *Processor) Process(in, out []float64) {
	channels := p.cfg.Channels
	frames := len(out) / 2
	if avail := len(in) / channels; avail < frames {
		frames = avail
	}

	for frames > 0 {
		n := frames
		if n > p.cfg.BlockSize {
			n = p.cfg.BlockSize
		}
		p.processBlock(in[:n*channels], out[:2*n], n)
		in = in[n*channels:]
		out = out[2*n:]
		frames -= n
	}
}

func (p *Processor) processBlock(in, out []float64, n int) {
	if p.resetRequested.Swap(false) {
		p.reset()
	}

	params := p.params
	params.UpdateSmoothing()

	p.record(in, n, params)

	wet := p.wet[:2*n]
	mode := params.Mode()
	if mode != p.mode {
		if mode == ModeShimmer {
			p.player.Stop()
		} else if p.mode == ModeShimmer {
			p.shimmer.Stop()
		}
		p.mode = mode
	}

	if mode == ModeShimmer {
		p.shimmer.Play(p.buffers, params, wet, 0, n)
		p.player.CountTaps(params, p.buffers[0].Size(), n)
		p.activeGrains.Store(int32(p.shimmer.ActiveGrainCount()))
	} else {
		p.player.Play(p.buffers, params, wet, 0, n)
		p.activeGrains.Store(int32(p.player.ActiveGrainCount()))
	}
	p.synchronized.Store(p.player.Synchronized())

	p.reverb.SetAmount(params.Reverb())
	p.reverb.AddTo(wet)

	copy(p.previous, wet)
	p.prevLen = n

	p.mix(in, out, wet, n, params)
}

// record writes input plus soft-limited feedback of the previous wet block
// into the buffers. The feedback is DC blocked and lowpassed first so
// repeated passes darken instead of building up offset and hiss. While
// frozen nothing is written and the head holds.
func (p *Processor) record(in []float64, n int, params *Parameters) {
	p.recorder.SetEnabled(!params.Freeze())
	if !p.recorder.Enabled() {
		return
	}

	feedback := params.Feedback()
	channels := p.cfg.Channels
	for i := range n {
		var fbL, fbR float64
		if i < p.prevLen {
			fbL = feedback * core.SoftLimit(p.condition(0, p.previous[2*i]))
			fbR = feedback * core.SoftLimit(p.condition(1, p.previous[2*i+1]))
		}
		l := in[i*channels]
		r := l
		if channels == 2 {
			r = in[i*channels+1]
		}
		p.recorder.RecordFrame(l+fbL, r+fbR)
	}
}

func (p *Processor) condition(ch int, x float64) float64 {
	return p.tone[ch].ProcessSample(p.dcBlock[ch].ProcessSample(x))
}

// mix crossfades dry and wet. The gate fades the wet path with a per-block
// one-pole ramped across the block.
func (p *Processor) mix(in, out, wet []float64, n int, params *Parameters) {
	target := 0.0
	if params.Gate() {
		target = 1
	}
	start := p.gateGain
	p.gateGain = core.FlushDenormals(core.OnePole(p.gateGain, target, SmoothingCoefficient))

	dryWet := params.DryWet()
	ramp := p.ramp[:2*n]
	step := (p.gateGain - start) / float64(n)
	gain := start
	for i := range n {
		gain += step
		ramp[2*i] = gain * dryWet
		ramp[2*i+1] = gain * dryWet
	}
	vecmath.MulBlockInPlace(wet, ramp)

	dry := 1 - dryWet
	channels := p.cfg.Channels
	for i := range n {
		l := in[i*channels]
		r := l
		if channels == 2 {
			r = in[i*channels+1]
		}
		out[2*i] = l*dry + wet[2*i]
		out[2*i+1] = r*dry + wet[2*i+1]
	}
}

func (p *Processor) reset() {
	p.recorder.Clear()
	p.player.Clear()
	p.shimmer.Clear()
	p.reverb.Reset()
	for ch := range 2 {
		p.dcBlock[ch].Reset()
		p.tone[ch].Reset()
	}
	core.Zero(p.previous)
	p.prevLen = 0
	p.params.Snap()
}
