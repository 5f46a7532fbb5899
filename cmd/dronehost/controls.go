package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/cwbudde/algo-drone/dsp/core"
	"github.com/cwbudde/algo-drone/dsp/granular"
)

// knobStep is the change per key press for continuous controls.
const knobStep = 0.05

// surface is the control-side copy of the voice targets. Keys, the control
// file and drift automation all edit it; every edit is published.
type surface struct {
	mu       sync.Mutex
	controls granular.Controls
	params   *granular.Parameters
}

func newSurface(params *granular.Parameters) *surface {
	return &surface{controls: granular.DefaultControls(), params: params}
}

// snapshot returns the current targets.
func (s *surface) snapshot() granular.Controls {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controls
}

// update edits the targets and publishes the result under the lock, so
// concurrent edits reach the audio thread in the order they were applied.
func (s *surface) update(edit func(c *granular.Controls)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	edit(&s.controls)
	s.params.Publish(s.controls)
}

// load replaces the targets with the contents of a JSON control file.
// Fields missing from the file keep their current values.
func (s *surface) load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read controls: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.controls
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("parse controls %s: %w", path, err)
	}
	s.controls = c
	s.params.Publish(c)
	return nil
}

// knobs maps the lower-case key pairs to continuous controls: the first key
// of each pair raises, the second lowers.
var knobs = map[byte]struct {
	field func(c *granular.Controls) *float64
	delta float64
}{
	'q': {func(c *granular.Controls) *float64 { return &c.Position }, knobStep},
	'a': {func(c *granular.Controls) *float64 { return &c.Position }, -knobStep},
	'w': {func(c *granular.Controls) *float64 { return &c.Size }, knobStep},
	's': {func(c *granular.Controls) *float64 { return &c.Size }, -knobStep},
	'e': {func(c *granular.Controls) *float64 { return &c.Pitch }, 1.0 / 24},
	'd': {func(c *granular.Controls) *float64 { return &c.Pitch }, -1.0 / 24},
	'r': {func(c *granular.Controls) *float64 { return &c.Density }, knobStep},
	'f': {func(c *granular.Controls) *float64 { return &c.Density }, -knobStep},
	't': {func(c *granular.Controls) *float64 { return &c.Texture }, knobStep},
	'g': {func(c *granular.Controls) *float64 { return &c.Texture }, -knobStep},
	'y': {func(c *granular.Controls) *float64 { return &c.DryWet }, knobStep},
	'h': {func(c *granular.Controls) *float64 { return &c.DryWet }, -knobStep},
	'u': {func(c *granular.Controls) *float64 { return &c.StereoSpread }, knobStep},
	'j': {func(c *granular.Controls) *float64 { return &c.StereoSpread }, -knobStep},
	'i': {func(c *granular.Controls) *float64 { return &c.Feedback }, knobStep},
	'k': {func(c *granular.Controls) *float64 { return &c.Feedback }, -knobStep},
	'o': {func(c *granular.Controls) *float64 { return &c.Reverb }, knobStep},
	'l': {func(c *granular.Controls) *float64 { return &c.Reverb }, -knobStep},
}

// nextMode cycles granular, reverse, shimmer.
func nextMode(m granular.Mode) granular.Mode {
	switch m {
	case granular.ModeGranular:
		return granular.ModeReverse
	case granular.ModeReverse:
		return granular.ModeShimmer
	default:
		return granular.ModeGranular
	}
}

// handleKey applies one key press. It reports false when the key asks to quit.
func (s *surface) handleKey(key byte, v *voice) bool {
	switch key {
	case 0x1b, 0x03, 0x04: // Esc, Ctrl-C, Ctrl-D
		return false
	case ' ':
		s.params.Tap()
	case 'z':
		s.update(func(c *granular.Controls) { c.Freeze = !c.Freeze })
	case 'b':
		s.update(func(c *granular.Controls) { c.Gate = !c.Gate })
	case 'm':
		s.update(func(c *granular.Controls) { c.Mode = nextMode(c.Mode) })
	case 'x':
		if v != nil {
			v.proc.RequestReset()
		}
	default:
		k, ok := knobs[key]
		if !ok {
			return true
		}
		s.update(func(c *granular.Controls) {
			p := k.field(c)
			lo := 0.0
			if p == &c.Pitch {
				lo = -1
			}
			*p = core.Clamp(*p+k.delta, lo, 1)
		})
	}
	return true
}
