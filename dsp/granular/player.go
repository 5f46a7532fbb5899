package granular

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-drone/dsp/sample"
)

const (
	// LoopCrossfadeDuration is the splice length, in samples, between
	// consecutive iterations of a frozen loop.
	LoopCrossfadeDuration = 64

	// minSyncDelay is the shortest tap interval accepted as a tempo; shorter
	// intervals are treated as contact bounce.
	minSyncDelay = 128

	minGrainDuration = 220
	maxGrainDuration = 22050

	pitchRangeSemitones = 24
	sprayFraction       = 0.05
)

// Player is the looping sample player. Each block it either runs the
// granular-delay engine over the live buffer or, while frozen, reads a
// crossfaded loop out of the held buffer. It also tracks tap-tempo sync.
//
// Player is real-time safe and not thread-safe; see [Processor] for the
// thread-safe host.
type Player struct {
	engine      *Engine
	numChannels int

	phase        float64
	loopPoint    float64
	loopDuration float64
	tailStart    float64
	tailDuration float64
	loopReset    float64
	restart      bool
	tail         bool

	synchronized    bool
	tapDelay        int
	tapDelayCounter int
}

// NewPlayer creates a player whose engine renders at most maxBlock frames per
// pass.
func NewPlayer(maxBlock int, opts ...Option) (*Player, error) {
	engine, err := NewEngine(maxBlock, opts...)
	if err != nil {
		return nil, fmt.Errorf("looping player: %w", err)
	}
	p := &Player{engine: engine}
	p.Init(2)
	return p, nil
}

// Init sets the number of recorded channels (1 or 2) and clears all state.
func (p *Player) Init(numChannels int) {
	if numChannels != 1 {
		numChannels = 2
	}
	p.numChannels = numChannels
	p.Clear()
}

// Stop silences all grains and forces a fresh splice on the next frozen
// block. Tap-tempo state survives.
func (p *Player) Stop() {
	p.engine.Reset()
	p.phase = 0
	p.loopReset = 0
	p.restart = true
	p.tail = false
}

// Clear resets the player completely, including tap-tempo state.
func (p *Player) Clear() {
	p.Stop()
	p.loopPoint = 0
	p.loopDuration = 0
	p.tailStart = 0
	p.tailDuration = 0
	p.synchronized = false
	p.tapDelay = 0
	p.tapDelayCounter = 0
}

// Synchronized reports whether a tap tempo currently overrides the delay
// time and loop length.
func (p *Player) Synchronized() bool { return p.synchronized }

// TapDelay returns the last accepted tap interval in samples.
func (p *Player) TapDelay() int { return p.tapDelay }

// ActiveGrainCount returns the number of sounding grains.
func (p *Player) ActiveGrainCount() int { return p.engine.ActiveGrainCount() }

// Play renders size frames of interleaved stereo into out starting at frame
// offset, overwriting what was there. buffers holds the left (or mono) buffer
// and optionally the right one.
//
// The buffers must end exactly at this call's last frame: the write head is
// taken as the time of out[offset+size-1], whatever offset is. A host that
// splits a block into sub-blocks records each sub-block before playing it.
func (p *Player) Play(buffers []*sample.Buffer, params *Parameters, out []float64, offset, size int) {
	if size <= 0 || len(buffers) == 0 {
		return
	}
	dst := out[2*offset : 2*(offset+size)]

	left := buffers[0]
	var right *sample.Buffer
	if p.numChannels == 2 && len(buffers) > 1 {
		right = buffers[1]
	}

	maxDelay := playerMaxDelay(left.Size())

	if params.Trigger() {
		p.loopReset = p.phase
		p.restart = true
	}
	p.countTaps(params.Trigger(), size, maxDelay)

	if !params.Freeze() {
		p.playGranular(left, right, params, dst, size, maxDelay)
		return
	}
	p.engine.silence()
	p.playLoop(left, right, params, dst, size, maxDelay)
}

func playerMaxDelay(bufferSize int) int {
	return max(bufferSize-LoopCrossfadeDuration, 1)
}

// CountTaps advances tap-tempo tracking by size frames without rendering.
// Hosts call it for blocks the player does not play (shimmer mode) so the
// tempo keeps following taps.
func (p *Player) CountTaps(params *Parameters, bufferSize, size int) {
	if size <= 0 {
		return
	}
	p.countTaps(params.Trigger(), size, playerMaxDelay(bufferSize))
}

// countTaps handles a trigger before counting the block, so a tap after
// exactly n counted frames yields a tap delay of n.
func (p *Player) countTaps(trigger bool, size, maxDelay int) {
	if trigger {
		p.tapDelay = p.tapDelayCounter
		p.tapDelayCounter = 0
		p.synchronized = p.tapDelay > minSyncDelay
	}
	p.tapDelayCounter += size
	if p.tapDelayCounter > maxDelay {
		p.tapDelay = 0
		p.tapDelayCounter = 0
		p.synchronized = false
	}
}

func (p *Player) playGranular(left, right *sample.Buffer, params *Parameters, dst []float64, size, maxDelay int) {
	delay := params.Position() * float64(maxDelay)
	if p.synchronized {
		delay = float64(p.tapDelay)
	}

	grainSize := minGrainDuration + params.Size()*(maxGrainDuration-minGrainDuration)

	p.engine.Process(left, right, EngineSettings{
		Delay:        delay,
		GrainSize:    grainSize,
		PitchRatio:   SemitonesToRatio(params.PitchSemitones()),
		Density:      params.Density(),
		Spray:        grainSize * sprayFraction,
		StereoSpread: params.StereoSpread(),
		Mode:         params.Mode(),
	}, dst, size)

	// Entering freeze always starts a fresh loop without a tail.
	p.phase = 0
	p.loopReset = 0
	p.restart = true
	p.tail = false
}

// loopWindow returns the loop start (distance behind the head) and length
// for the current knobs. loopPoint+loopDuration never exceeds maxDelay.
func loopWindow(position, size float64, maxDelay int, tapDelay int, synchronized bool) (loopPoint, loopDuration float64) {
	limit := float64(maxDelay)
	span := math.Max(limit-LoopCrossfadeDuration, 1)

	loopPoint = position*span*15/16 + LoopCrossfadeDuration
	loopDuration = (0.01 + 0.99*size*size*size) * span
	if synchronized {
		loopDuration = float64(tapDelay)
	}
	if loopDuration < 1 {
		loopDuration = 1
	}
	if loopDuration > span {
		loopDuration = span
	}
	if loopPoint+loopDuration > limit {
		loopPoint = limit - loopDuration
	}
	if loopPoint < 0 {
		loopPoint = 0
	}
	return loopPoint, loopDuration
}

func (p *Player) playLoop(left, right *sample.Buffer, params *Parameters, dst []float64, size, maxDelay int) {
	loopPoint, loopDuration := loopWindow(params.Position(), params.Size(), maxDelay, p.tapDelay, p.synchronized)

	// The loop reads the knob directly as semitones, a one-semitone
	// varispeed, unless tap tempo holds it at unity.
	increment := 1.0
	if !p.synchronized {
		increment = SemitonesToRatio(params.Pitch())
	}

	// The head is static while frozen; "now" is the last written sample.
	now := float64(left.Head() - readGuard)

	for i := range size {
		if p.restart || p.phase >= p.loopDuration {
			if p.phase >= p.loopDuration {
				p.loopReset = p.loopDuration
			}
			if p.loopReset > p.loopDuration {
				p.loopReset = p.loopDuration
			}
			p.tailStart = p.loopDuration - p.loopReset + p.loopPoint
			p.phase = 0
			p.tailDuration = LoopCrossfadeDuration
			if increment < 1 {
				p.tailDuration = LoopCrossfadeDuration * increment
			}
			p.loopPoint = loopPoint
			p.loopDuration = loopDuration
			p.restart = false
		}

		p.phase += increment

		gain := 1.0
		if p.tailDuration > 0 {
			gain = p.phase / p.tailDuration
			if gain > 1 {
				gain = 1
			}
		}

		pos := now - (p.loopDuration - p.phase + p.loopPoint)
		l := left.ReadHermiteAt(pos) * gain
		r := l
		if right != nil {
			r = right.ReadHermiteAt(pos) * gain
		}

		if gain < 1 && p.tail {
			fade := 1 - gain
			tailPos := now - (-p.phase + p.tailStart)
			tl := left.ReadHermiteAt(tailPos)
			tr := tl
			if right != nil {
				tr = right.ReadHermiteAt(tailPos)
			}
			l += tl * fade
			r += tr * fade
		}
		if gain >= 1 {
			p.tail = true
		}

		dst[2*i] = l
		dst[2*i+1] = r
	}
}
