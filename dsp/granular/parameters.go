package granular

import (
	"math"
	"sync/atomic"
)

// SmoothingCoefficient is the per-block one-pole coefficient applied to every
// continuous parameter.
const SmoothingCoefficient = 0.1

// Controls is a snapshot of raw (unsmoothed) parameter targets as written by
// the control side: UI, automation or a control-surface file.
//
// Continuous values are normalized to [0, 1] except Pitch, which is bipolar
// in [-1, 1] (one unit is two octaves).
type Controls struct {
	Position     float64 `json:"position"`
	Size         float64 `json:"size"`
	Pitch        float64 `json:"pitch"`
	Density      float64 `json:"density"`
	Texture      float64 `json:"texture"`
	DryWet       float64 `json:"dry_wet"`
	StereoSpread float64 `json:"stereo_spread"`
	Feedback     float64 `json:"feedback"`
	Reverb       float64 `json:"reverb"`

	Freeze  bool `json:"freeze"`
	Trigger bool `json:"trigger"`
	Gate    bool `json:"gate"`

	Mode Mode `json:"mode"`
}

// DefaultControls returns the power-on patch.
func DefaultControls() Controls {
	return Controls{
		Position: 0.5,
		Size:     0.5,
		Density:  0.5,
		Texture:  0.5,
		DryWet:   0.5,
		Gate:     true,
		Mode:     ModeGranular,
	}
}

func (c Controls) sanitized() Controls {
	c.Position = unit(c.Position)
	c.Size = unit(c.Size)
	c.Pitch = bipolar(c.Pitch)
	c.Density = unit(c.Density)
	c.Texture = unit(c.Texture)
	c.DryWet = unit(c.DryWet)
	c.StereoSpread = unit(c.StereoSpread)
	c.Feedback = unit(c.Feedback)
	c.Reverb = unit(c.Reverb)
	if c.Mode != ModeGranular && c.Mode != ModeReverse && c.Mode != ModeShimmer {
		c.Mode = ModeGranular
	}
	return c
}

func unit(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func bipolar(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// Parameters is the per-voice parameter holder shared by the players.
//
// It is the only cross-thread boundary of the voice. The control side calls
// [Parameters.Publish] and [Parameters.Tap]; the audio side calls
// [Parameters.UpdateSmoothing] once per block and then only reads smoothed
// values. Publishing swaps a whole snapshot atomically, so the audio thread
// never sees a half-written patch.
type Parameters struct {
	pending atomic.Pointer[Controls]
	taps    atomic.Uint32

	// Audio-thread state.
	target   Controls
	seenTaps uint32
	trigger  bool

	position     float64
	size         float64
	pitch        float64
	density      float64
	texture      float64
	dryWet       float64
	stereoSpread float64
	feedback     float64
	reverb       float64
}

// NewParameters creates a holder whose targets and smoothed values start at
// initial.
func NewParameters(initial Controls) *Parameters {
	p := &Parameters{}
	p.target = initial.sanitized()
	p.target.Trigger = false
	p.Snap()
	return p
}

// Publish hands a new target snapshot to the audio thread. A false-to-true
// transition of Trigger between consecutive snapshots is one trigger edge.
// Safe to call from any goroutine.
func (p *Parameters) Publish(c Controls) {
	p.pending.Store(&c)
}

// Tap registers one trigger edge without touching the other targets. Taps
// between two audio blocks collapse into a single edge. Safe to call from any
// goroutine.
func (p *Parameters) Tap() {
	p.taps.Add(1)
}

// UpdateSmoothing consumes the latest published snapshot and advances every
// smoothed value one step toward its target. Audio thread only.
func (p *Parameters) UpdateSmoothing() {
	p.trigger = false
	if c := p.pending.Swap(nil); c != nil {
		next := c.sanitized()
		p.trigger = next.Trigger && !p.target.Trigger
		p.target = next
	}
	if taps := p.taps.Load(); taps != p.seenTaps {
		p.seenTaps = taps
		p.trigger = true
	}

	t := &p.target
	p.position += (t.Position - p.position) * SmoothingCoefficient
	p.size += (t.Size - p.size) * SmoothingCoefficient
	p.pitch += (t.Pitch - p.pitch) * SmoothingCoefficient
	p.density += (t.Density - p.density) * SmoothingCoefficient
	p.texture += (t.Texture - p.texture) * SmoothingCoefficient
	p.dryWet += (t.DryWet - p.dryWet) * SmoothingCoefficient
	p.stereoSpread += (t.StereoSpread - p.stereoSpread) * SmoothingCoefficient
	p.feedback += (t.Feedback - p.feedback) * SmoothingCoefficient
	p.reverb += (t.Reverb - p.reverb) * SmoothingCoefficient
}

// Snap jumps every smoothed value to its target. Audio thread only.
func (p *Parameters) Snap() {
	t := &p.target
	p.position = t.Position
	p.size = t.Size
	p.pitch = t.Pitch
	p.density = t.Density
	p.texture = t.Texture
	p.dryWet = t.DryWet
	p.stereoSpread = t.StereoSpread
	p.feedback = t.Feedback
	p.reverb = t.Reverb
}

// Targets returns the raw targets the audio thread is currently smoothing
// toward. Audio thread only.
func (p *Parameters) Targets() Controls { return p.target }

func (p *Parameters) Position() float64     { return p.position }
func (p *Parameters) Size() float64         { return p.size }
func (p *Parameters) Pitch() float64        { return p.pitch }
func (p *Parameters) Density() float64      { return p.density }
func (p *Parameters) Texture() float64      { return p.texture }
func (p *Parameters) DryWet() float64       { return p.dryWet }
func (p *Parameters) StereoSpread() float64 { return p.stereoSpread }
func (p *Parameters) Feedback() float64     { return p.feedback }
func (p *Parameters) Reverb() float64       { return p.reverb }

// Freeze reports whether the recorded buffer is held.
func (p *Parameters) Freeze() bool { return p.target.Freeze }

// Gate reports whether the voice is gated on.
func (p *Parameters) Gate() bool { return p.target.Gate }

// Trigger reports whether a trigger edge arrived with the current block.
func (p *Parameters) Trigger() bool { return p.trigger }

// Mode returns the selected playback mode.
func (p *Parameters) Mode() Mode { return p.target.Mode }

// PitchSemitones returns the smoothed pitch knob as a transposition in
// semitones (±24).
func (p *Parameters) PitchSemitones() float64 { return p.pitch * pitchRangeSemitones }
