package reverb

import (
	"fmt"
	"math"
)

const (
	numCombs     = 8
	numAllpasses = 4

	fixedGain = 0.015

	// Tunings calibrated for 44.1 kHz, rescaled to the running rate.
	tuningRate   = 44100.0
	stereoSpread = 23

	minRoomSize   = 0.7
	roomSizeRange = 0.28

	defaultDamp = 0.5
)

var (
	combTunings    = [numCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	allpassTunings = [numAllpasses]int{556, 441, 341, 225}
)

// Reverb is a stereo Schroeder/Freeverb-style reverb used as a send: it
// returns only the reverberated signal, leaving the dry mix to the caller.
//
// Reverb allocates its delay lines at construction and is real-time safe
// afterwards. It is not thread-safe.
type Reverb struct {
	sampleRate float64
	amount     float64
	wet        float64
	roomSize   float64
	damp       float64

	left  channel
	right channel
}

type channel struct {
	combs   [numCombs]comb
	allpass [numAllpasses]allpass
}

type allpass struct {
	feedback float64
	buffer   []float64
	index    int
}

func (a *allpass) process(input float64) float64 {
	bufOut := a.buffer[a.index]
	output := bufOut - input
	a.buffer[a.index] = input + bufOut*a.feedback
	a.index++
	if a.index >= len(a.buffer) {
		a.index = 0
	}
	return output
}

type comb struct {
	feedback    float64
	filterStore float64
	dampA       float64
	dampB       float64
	buffer      []float64
	index       int
}

func (c *comb) setDamp(v float64) {
	c.dampA = v
	c.dampB = 1 - v
}

func (c *comb) process(input float64) float64 {
	output := c.buffer[c.index]
	c.filterStore = output*c.dampB + c.filterStore*c.dampA
	if math.Abs(c.filterStore) < 1e-23 {
		c.filterStore = 0
	}
	c.buffer[c.index] = input + c.filterStore*c.feedback
	c.index++
	if c.index >= len(c.buffer) {
		c.index = 0
	}
	return output
}

func newChannel(sampleRate float64, spread int) channel {
	var ch channel
	for i := range ch.combs {
		ch.combs[i].buffer = make([]float64, scaleTuning(combTunings[i]+spread, sampleRate))
	}
	for i := range ch.allpass {
		ch.allpass[i].feedback = 0.5
		ch.allpass[i].buffer = make([]float64, scaleTuning(allpassTunings[i]+spread, sampleRate))
	}
	return ch
}

func scaleTuning(samples int, sampleRate float64) int {
	n := int(math.Round(float64(samples) * sampleRate / tuningRate))
	if n < 1 {
		n = 1
	}
	return n
}

func (ch *channel) process(x float64) float64 {
	var acc float64
	for i := range ch.combs {
		acc += ch.combs[i].process(x)
	}
	for i := range ch.allpass {
		acc = ch.allpass[i].process(acc)
	}
	return acc
}

func (ch *channel) reset() {
	for i := range ch.combs {
		c := &ch.combs[i]
		clear(c.buffer)
		c.index = 0
		c.filterStore = 0
	}
	for i := range ch.allpass {
		a := &ch.allpass[i]
		clear(a.buffer)
		a.index = 0
	}
}

// New creates a reverb for the given sample rate with the send muted.
func New(sampleRate float64) (*Reverb, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("reverb sample rate must be > 0 and finite: %f", sampleRate)
	}

	r := &Reverb{
		sampleRate: sampleRate,
		left:       newChannel(sampleRate, 0),
		right:      newChannel(sampleRate, stereoSpread),
	}
	r.SetDamp(defaultDamp)
	r.SetAmount(0)
	return r, nil
}

// SampleRate returns the rate the delay lines were tuned for.
func (r *Reverb) SampleRate() float64 { return r.sampleRate }

// Amount returns the send amount in [0, 1].
func (r *Reverb) Amount() float64 { return r.amount }

// RoomSize returns the comb feedback.
func (r *Reverb) RoomSize() float64 { return r.roomSize }

// Damp returns the comb damping.
func (r *Reverb) Damp() float64 { return r.damp }

// SetAmount maps one knob in [0, 1] onto wet gain and room size. Zero mutes
// the send.
func (r *Reverb) SetAmount(amount float64) {
	if !(amount > 0) {
		amount = 0
	}
	if amount > 1 {
		amount = 1
	}
	r.amount = amount
	r.wet = amount
	r.setRoomSize(minRoomSize + roomSizeRange*amount)
}

func (r *Reverb) setRoomSize(v float64) {
	r.roomSize = v
	for i := range r.left.combs {
		r.left.combs[i].feedback = v
		r.right.combs[i].feedback = v
	}
}

// SetDamp sets the high-frequency damping of the comb feedback, in [0, 1].
func (r *Reverb) SetDamp(v float64) {
	if !(v > 0) {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	r.damp = v
	for i := range r.left.combs {
		r.left.combs[i].setDamp(v)
		r.right.combs[i].setDamp(v)
	}
}

// ProcessStereo feeds one frame and returns the wet reverb output. Both
// channels excite both tanks through the summed input.
func (r *Reverb) ProcessStereo(left, right float64) (float64, float64) {
	x := (left + right) * fixedGain
	return r.left.process(x) * r.wet, r.right.process(x) * r.wet
}

// AddTo runs the reverb over an interleaved stereo block and adds the send
// output to it in place.
func (r *Reverb) AddTo(buf []float64) {
	if r.wet == 0 {
		// The tank keeps running while muted.
		for i := 0; i+1 < len(buf); i += 2 {
			x := (buf[i] + buf[i+1]) * fixedGain
			r.left.process(x)
			r.right.process(x)
		}
		return
	}
	for i := 0; i+1 < len(buf); i += 2 {
		l, rr := r.ProcessStereo(buf[i], buf[i+1])
		buf[i] += l
		buf[i+1] += rr
	}
}

// Reset clears all delay and filter state.
func (r *Reverb) Reset() {
	r.left.reset()
	r.right.reset()
}
