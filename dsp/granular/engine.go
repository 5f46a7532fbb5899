package granular

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-drone/dsp/interp"
	"github.com/cwbudde/algo-drone/dsp/sample"
)

const (
	// EnginePoolSize is the number of grains in a granular-delay engine.
	EnginePoolSize = 12

	minEngineGrainSize = 64
	maxOverlapBoost    = 7

	// delaySmoothing is the per-sample one-pole coefficient applied to the
	// read delay so position jumps never click.
	delaySmoothing = 0.0001

	overlapNormalization = 0.3

	// readGuard keeps reads this many samples behind the write head so the
	// Hermite kernel never touches the sample being written.
	readGuard = 4

	minPitchRatio = 1.0 / 16
	maxPitchRatio = 16.0
)

// EngineSettings are the block-rate controls of an [Engine].
type EngineSettings struct {
	// Delay is the read distance behind the write head in samples.
	Delay float64
	// GrainSize is the grain duration in output samples.
	GrainSize float64
	// PitchRatio is the playback rate before the mode multiplier.
	PitchRatio float64
	// Density in [0, 1] maps to 1x..8x overlap.
	Density float64
	// Spray is the random start jitter in samples (0 disables it).
	Spray float64
	// StereoSpread in [0, 1] widens the random grain panning.
	StereoSpread float64
	Mode         Mode
}

// Engine is the granular-delay grain scheduler: a fixed pool of grains
// spawned at an interval derived from density and grain size, reading from a
// smoothed delay position behind the write head.
//
// Engine is real-time safe (no allocations after construction) and not
// thread-safe.
type Engine struct {
	grains [EnginePoolSize]Grain

	seed int64
	rng  *rand.Rand

	delay        float64
	delayPrimed  bool
	spawnCounter float64

	maxBlock int
	overlap  []int
}

// NewEngine creates an engine rendering at most maxBlock frames per internal
// pass. Longer requests are split.
func NewEngine(maxBlock int, opts ...Option) (*Engine, error) {
	if maxBlock <= 0 {
		return nil, fmt.Errorf("granular engine block size must be > 0: %d", maxBlock)
	}

	o := applyOptions(opts)

	return &Engine{
		seed:     o.seed,
		rng:      rand.New(rand.NewSource(o.seed)),
		maxBlock: maxBlock,
		overlap:  make([]int, maxBlock),
	}, nil
}

// ActiveGrainCount returns the number of grains currently sounding.
func (e *Engine) ActiveGrainCount() int {
	n := 0
	for i := range e.grains {
		if e.grains[i].active {
			n++
		}
	}
	return n
}

// silence frees every grain slot without touching delay or random state.
func (e *Engine) silence() {
	for i := range e.grains {
		e.grains[i].active = false
	}
}

// Reset stops every grain, forgets the smoothed delay and rewinds the random
// source.
func (e *Engine) Reset() {
	for i := range e.grains {
		e.grains[i] = Grain{}
	}
	e.delay = 0
	e.delayPrimed = false
	e.spawnCounter = 0
	e.rng.Seed(e.seed)
}

// Process renders size frames of interleaved stereo into out, overwriting it.
// right may be nil for a mono recording.
//
// The block's input is expected to be recorded already: frame i of the block
// corresponds to buffer index Head()-size+i.
func (e *Engine) Process(left, right *sample.Buffer, s EngineSettings, out []float64, size int) {
	head := left.Head()
	for size > 0 {
		n := size
		if n > e.maxBlock {
			n = e.maxBlock
		}
		e.render(left, right, s, out[:2*n], head-size, n)
		out = out[2*n:]
		size -= n
	}
}

func (e *Engine) render(left, right *sample.Buffer, s EngineSettings, out []float64, now0, n int) {
	bufferSize := left.Size()

	grainSize := s.GrainSize
	maxGrainSize := math.Max(minEngineGrainSize, float64(bufferSize)*0.25)
	if grainSize < minEngineGrainSize || math.IsNaN(grainSize) {
		grainSize = minEngineGrainSize
	}
	if grainSize > maxGrainSize {
		grainSize = maxGrainSize
	}

	density := s.Density
	if density < 0 || math.IsNaN(density) {
		density = 0
	}
	if density > 1 {
		density = 1
	}
	interval := grainSize / (1 + density*maxOverlapBoost)
	if interval < 1 {
		interval = 1
	}

	reverse, multiplier := s.Mode.playback(s.PitchRatio)
	ratio := s.PitchRatio * multiplier
	if !(ratio >= minPitchRatio) {
		ratio = minPitchRatio
	}
	if ratio > maxPitchRatio {
		ratio = maxPitchRatio
	}

	increment := int64(ratio * interp.FracOne)
	if reverse {
		increment = -increment
	}

	target := s.Delay
	if target < 0 || math.IsNaN(target) {
		target = 0
	}
	if limit := float64(bufferSize) - math.Abs(s.Spray) - 2*readGuard; target > limit {
		target = math.Max(limit, 0)
	}
	if !e.delayPrimed {
		e.delay = target
		e.delayPrimed = true
	}

	sp := spawn{
		bufferSize: bufferSize,
		width:      int(grainSize),
		span:       grainSize * ratio,
		increment:  increment,
		reverse:    reverse,
		spray:      s.Spray,
		spread:     s.StereoSpread,
	}

	for i := range n {
		e.delay += (target - e.delay) * delaySmoothing
		e.spawnCounter++
		if e.spawnCounter >= interval {
			e.spawnCounter = 0
			e.spawn(i, now0+i, sp)
		}
	}

	for i := range out {
		out[i] = 0
	}
	overlap := e.overlap[:n]
	for i := range overlap {
		overlap[i] = 0
	}

	for gi := range e.grains {
		g := &e.grains[gi]
		if !g.active {
			continue
		}
		first, end := g.OverlapAdd(left, right, out, n)
		for i := first; i < end; i++ {
			overlap[i]++
		}
	}

	for i, count := range overlap {
		norm := 1 / (1 + float64(count)*overlapNormalization)
		out[2*i] *= norm
		out[2*i+1] *= norm
	}
}

type spawn struct {
	bufferSize int
	width      int
	span       float64
	increment  int64
	reverse    bool
	spray      float64
	spread     float64
}

// spawn starts one grain in the first free slot. When the pool is exhausted
// the request is dropped.
func (e *Engine) spawn(preDelay, now int, sp spawn) {
	slot := -1
	for i := range e.grains {
		if !e.grains[i].active {
			slot = i
			break
		}
	}
	if slot < 0 {
		return
	}

	pos := float64(now) - e.delay
	if sp.spray > 0 {
		pos += (e.rng.Float64()*2 - 1) * sp.spray
	}
	if sp.reverse {
		pos += float64(sp.width)
	}

	// The head keeps advancing while the grain plays, so a forward grain only
	// has to stay behind it by the distance it gains on the head.
	latest := float64(now - readGuard)
	if sp.reverse {
		if pos > latest {
			pos = latest
		}
	} else if lead := sp.span - float64(sp.width); lead > 0 {
		if pos+lead > latest {
			pos = latest - lead
		}
	} else if pos > latest {
		pos = latest
	}

	gainL, gainR := 1.0, 1.0
	if sp.spread > 0 {
		gainL, gainR = panGains(0.5 + sp.spread*(e.rng.Float64()-0.5))
	}

	e.grains[slot].Start(preDelay, sp.bufferSize, int(math.Floor(pos)), sp.width,
		sp.increment, 0, gainL, gainR)
}
