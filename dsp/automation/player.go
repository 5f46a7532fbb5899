package automation

import (
	"fmt"

	"github.com/cwbudde/algo-drone/dsp/granular"
)

// Target names the continuous control a lane drives.
type Target int

const (
	TargetPosition Target = iota
	TargetSize
	TargetPitch
	TargetDensity
	TargetTexture
	TargetDryWet
	TargetStereoSpread
	TargetFeedback
	TargetReverb

	numTargets
)

var targetNames = [numTargets]string{
	TargetPosition:     "position",
	TargetSize:         "size",
	TargetPitch:        "pitch",
	TargetDensity:      "density",
	TargetTexture:      "texture",
	TargetDryWet:       "dry_wet",
	TargetStereoSpread: "stereo_spread",
	TargetFeedback:     "feedback",
	TargetReverb:       "reverb",
}

func (t Target) String() string {
	if t >= 0 && t < numTargets {
		return targetNames[t]
	}
	return fmt.Sprintf("Target(%d)", int(t))
}

// ParseTarget maps a control name (the JSON field name of
// [granular.Controls]) to a Target.
func ParseTarget(name string) (Target, error) {
	for i, n := range targetNames {
		if n == name {
			return Target(i), nil
		}
	}
	return 0, fmt.Errorf("automation: unknown target %q", name)
}

func (t Target) set(c *granular.Controls, v float64) {
	switch t {
	case TargetPosition:
		c.Position = v
	case TargetSize:
		c.Size = v
	case TargetPitch:
		c.Pitch = v
	case TargetDensity:
		c.Density = v
	case TargetTexture:
		c.Texture = v
	case TargetDryWet:
		c.DryWet = v
	case TargetStereoSpread:
		c.StereoSpread = v
	case TargetFeedback:
		c.Feedback = v
	case TargetReverb:
		c.Reverb = v
	}
}

// Player advances a set of lanes in sample time and overlays their values
// on a base control snapshot. It is not thread-safe; drive it from the
// goroutine that publishes controls.
type Player struct {
	lanes    [numTargets]*Lane
	base     granular.Controls
	position int64
}

// NewPlayer creates a player whose untouched controls come from base.
func NewPlayer(base granular.Controls) *Player {
	return &Player{base: base}
}

// SetLane assigns (or with nil, removes) the lane for target.
func (p *Player) SetLane(target Target, lane *Lane) error {
	if target < 0 || target >= numTargets {
		return fmt.Errorf("automation: invalid target %d", int(target))
	}
	p.lanes[target] = lane
	return nil
}

// SetBase replaces the snapshot that un-automated controls are taken from.
func (p *Player) SetBase(base granular.Controls) { p.base = base }

// Base returns the current base snapshot.
func (p *Player) Base() granular.Controls { return p.base }

// Position returns the playhead in samples.
func (p *Player) Position() int64 { return p.position }

// SeekTo moves the playhead.
func (p *Player) SeekTo(position int64) { p.position = position }

// Controls returns the snapshot at the current playhead.
func (p *Player) Controls() granular.Controls {
	c := p.base
	for t, lane := range p.lanes {
		if lane != nil {
			Target(t).set(&c, lane.ValueAt(p.position))
		}
	}
	return c
}

// Advance returns the snapshot at the playhead and moves it n samples on.
func (p *Player) Advance(n int) granular.Controls {
	c := p.Controls()
	p.position += int64(n)
	return c
}

// Publish advances by n samples and hands the snapshot to params.
func (p *Player) Publish(params *granular.Parameters, n int) {
	params.Publish(p.Advance(n))
}
