package granular

import (
	"math/rand"

	"github.com/cwbudde/algo-drone/dsp/interp"
	"github.com/cwbudde/algo-drone/dsp/sample"
)

const (
	// ShimmerPoolSize is the number of grains in the shimmer engine.
	ShimmerPoolSize = 32

	minShimmerGrainSize   = 2048
	shimmerGrainSizeRange = 14336

	shimmerNormAttack  = 0.9
	shimmerNormRelease = 0.2
	shimmerNormGain    = 0.7
	shimmerPanWidth    = 0.4
)

// Shimmer is a self-contained grain pool tuned for octave-shifted, heavily
// overlapped texture. Grains are seeded probabilistically, use smooth
// Hann-leaning windows and are panned at random; output gain rides the
// grain count with a slow one-pole.
//
// Shimmer is real-time safe and not thread-safe.
type Shimmer struct {
	grains [ShimmerPoolSize]Grain

	seed int64
	rng  *rand.Rand

	numChannels       int
	numGrains         float64
	gainNormalization float64
}

// NewShimmer creates a shimmer engine.
func NewShimmer(opts ...Option) *Shimmer {
	o := applyOptions(opts)
	s := &Shimmer{
		seed: o.seed,
		rng:  rand.New(rand.NewSource(o.seed)),
	}
	s.Init(2)
	return s
}

// Init sets the number of recorded channels (1 or 2) and clears all state.
func (s *Shimmer) Init(numChannels int) {
	if numChannels != 1 {
		numChannels = 2
	}
	s.numChannels = numChannels
	s.Clear()
}

// Stop silences every grain.
func (s *Shimmer) Stop() {
	for i := range s.grains {
		s.grains[i] = Grain{}
	}
	s.numGrains = 0
	s.gainNormalization = 1
}

// Clear stops every grain and rewinds the random source.
func (s *Shimmer) Clear() {
	s.Stop()
	s.rng.Seed(s.seed)
}

// ActiveGrainCount returns the number of sounding grains.
func (s *Shimmer) ActiveGrainCount() int {
	n := 0
	for i := range s.grains {
		if s.grains[i].active {
			n++
		}
	}
	return n
}

// ShimmerPitch returns the shimmer transposition in semitones for a pitch
// knob value. The knob is unipolar here: 0 is unison, 1 is two octaves up.
func ShimmerPitch(pitch float64) float64 {
	return unit(pitch) * pitchRangeSemitones
}

// shimmerGrainSize maps the size knob quadratically onto grain length,
// biased long, bounded by a quarter of the buffer and, when pitched up, by
// the inverse ratio so a grain never reads past its segment.
func shimmerGrainSize(size float64, bufferSize int, inverseRatio float64) float64 {
	grainSize := minShimmerGrainSize + size*size*shimmerGrainSizeRange
	limit := float64(bufferSize) * 0.25
	if inverseRatio < 1 {
		limit *= inverseRatio
	}
	if grainSize > limit {
		grainSize = limit
	}
	if grainSize < 1 {
		grainSize = 1
	}
	return grainSize
}

// shimmerTargetGrains is the steady-state grain count for a density knob.
func shimmerTargetGrains(density float64) float64 {
	overlap := 0.7 + unit(density)*0.3
	return overlap * overlap * overlap * ShimmerPoolSize
}

// Play renders size frames of interleaved stereo into out starting at frame
// offset, overwriting what was there. As with [Player.Play], the buffers
// must end exactly at this call's last frame.
func (s *Shimmer) Play(buffers []*sample.Buffer, params *Parameters, out []float64, offset, size int) {
	if size <= 0 || len(buffers) == 0 {
		return
	}
	dst := out[2*offset : 2*(offset+size)]

	left := buffers[0]
	var right *sample.Buffer
	if s.numChannels == 2 && len(buffers) > 1 {
		right = buffers[1]
	}
	bufferSize := left.Size()

	ratio := SemitonesToRatio(ShimmerPitch(params.Pitch()))
	inverse := 1 / ratio
	grainSize := shimmerGrainSize(params.Size(), bufferSize, inverse)
	width := int(grainSize)
	span := grainSize * ratio
	increment := int64(ratio * interp.FracOne)
	windowShape := 0.6 + params.Texture()*0.4

	target := shimmerTargetGrains(params.Density())
	probability := target / grainSize

	previousGain := s.gainNormalization
	active := s.ActiveGrainCount()
	s.updateNormalization(active)
	s.numGrains += (float64(active) - s.numGrains) * shimmerNormAttack

	available := float64(bufferSize) - span - 2*readGuard
	if available < 0 {
		available = 0
	}
	lookback := span + readGuard + params.Position()*available

	now0 := left.Head() - size
	trigger := params.Trigger()
	gate := params.Gate()

	for i := range size {
		seed := trigger && i == 0
		if !seed && gate && target > s.numGrains {
			seed = s.rng.Float64() < probability
		}
		if !seed {
			continue
		}

		slot := s.freeSlot()
		if slot < 0 {
			continue
		}

		back := lookback + s.rng.Float64()*grainSize*0.5
		if limit := float64(bufferSize - readGuard); back > limit {
			back = limit
		}
		gainL, gainR := panGains(0.5 + shimmerPanWidth*(s.rng.Float64()-0.5))

		start := now0 + i - int(back)
		s.grains[slot].Start(i, bufferSize, start, width, increment, windowShape, gainL, gainR)
		s.numGrains++
	}

	for i := range dst {
		dst[i] = 0
	}
	for gi := range s.grains {
		s.grains[gi].OverlapAdd(left, right, dst, size)
	}

	// Ramp the normalization across the block to avoid zipper noise.
	step := (s.gainNormalization - previousGain) / float64(size)
	gain := previousGain
	for i := range size {
		gain += step
		dst[2*i] *= gain
		dst[2*i+1] *= gain
	}
}

func (s *Shimmer) freeSlot() int {
	for i := range s.grains {
		if !s.grains[i].active {
			return i
		}
	}
	return -1
}

// updateNormalization moves the output gain toward 0.7/sqrt(n-1): quickly
// when grains pile up, slowly when they thin out.
func (s *Shimmer) updateNormalization(active int) {
	target := 1.0
	if active > 1 {
		target = shimmerNormGain * invSqrt(float64(active-1))
		if target > 1 {
			target = 1
		}
	}
	coefficient := shimmerNormRelease
	if target < s.gainNormalization {
		coefficient = shimmerNormAttack
	}
	s.gainNormalization += (target - s.gainNormalization) * coefficient
}
