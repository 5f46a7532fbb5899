package sample

import "fmt"

// Recorder owns the write side of one or two buffers. Frames are pushed in
// lock step so every buffer shares the same head.
type Recorder struct {
	buffers []*Buffer
	enabled bool
}

// NewRecorder creates an enabled recorder over one (mono) or two (stereo)
// buffers of equal size.
func NewRecorder(buffers ...*Buffer) (*Recorder, error) {
	if len(buffers) != 1 && len(buffers) != 2 {
		return nil, fmt.Errorf("recorder needs 1 or 2 buffers: %d", len(buffers))
	}
	for i, b := range buffers {
		if b == nil {
			return nil, fmt.Errorf("recorder buffer %d is nil", i)
		}
		if b.Size() != buffers[0].Size() {
			return nil, fmt.Errorf("recorder buffer sizes differ: %d vs %d", b.Size(), buffers[0].Size())
		}
	}
	return &Recorder{buffers: buffers, enabled: true}, nil
}

// Buffers returns the recorded buffers, left first.
func (r *Recorder) Buffers() []*Buffer {
	return r.buffers
}

// Enabled reports whether incoming frames are written.
func (r *Recorder) Enabled() bool {
	return r.enabled
}

// SetEnabled starts or stops writing. A disabled recorder leaves the heads
// static, which is how freeze holds the captured audio.
func (r *Recorder) SetEnabled(enabled bool) {
	r.enabled = enabled
}

// RecordFrame pushes one stereo frame. A mono recorder stores the average.
func (r *Recorder) RecordFrame(left, right float64) {
	if !r.enabled {
		return
	}
	if len(r.buffers) == 1 {
		r.buffers[0].Push(0.5 * (left + right))
		return
	}
	r.buffers[0].Push(left)
	r.buffers[1].Push(right)
}

// Record pushes interleaved stereo frames.
func (r *Recorder) Record(frames []float64) {
	for i := 0; i+1 < len(frames); i += 2 {
		r.RecordFrame(frames[i], frames[i+1])
	}
}

// Clear zeroes every buffer and rewinds the heads.
func (r *Recorder) Clear() {
	for _, b := range r.buffers {
		b.Clear()
	}
}
