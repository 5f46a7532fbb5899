package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-drone/dsp/core"
	"github.com/cwbudde/algo-drone/dsp/granular"
	"github.com/cwbudde/algo-drone/dsp/signal"
	"github.com/cwbudde/algo-drone/measure/level"
)

type settings struct {
	sampleRate    float64
	blockSize     int
	bufferSeconds float64
	seconds       float64
	controls      string
	drift         bool
	rootHz        float64
	seed          int64
}

func (s settings) coreOptions() []core.ProcessorOption {
	return []core.ProcessorOption{
		core.WithSampleRate(s.sampleRate),
		core.WithBlockSize(s.blockSize),
		core.WithBufferSeconds(s.bufferSeconds),
		core.WithChannels(2),
	}
}

// voice chains drone source, granular processor and output meter. Read runs
// on the audio goroutine; status is safe from any goroutine.
type voice struct {
	drone *signal.Drone
	proc  *granular.Processor
	meter *level.Meter

	in, out []float64
	block   int

	frames atomic.Int64
}

// validate rejects flag values the core options would silently ignore.
func (s settings) validate() error {
	if !(s.sampleRate > 0) || math.IsInf(s.sampleRate, 0) {
		return fmt.Errorf("sample rate must be > 0: %v", s.sampleRate)
	}
	if s.blockSize <= 0 {
		return fmt.Errorf("block size must be > 0: %d", s.blockSize)
	}
	if !(s.bufferSeconds > 0) {
		return fmt.Errorf("buffer seconds must be > 0: %v", s.bufferSeconds)
	}
	return nil
}

func newVoice(s settings) (*voice, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	coreOpts := s.coreOptions()

	drone, err := signal.NewDrone(coreOpts, signal.WithSeed(s.seed), signal.WithRoot(s.rootHz))
	if err != nil {
		return nil, err
	}
	proc, err := granular.NewProcessor(coreOpts, granular.WithSeed(s.seed))
	if err != nil {
		return nil, err
	}
	meter, err := level.New(s.sampleRate, s.blockSize)
	if err != nil {
		return nil, err
	}

	return &voice{
		drone: drone,
		proc:  proc,
		meter: meter,
		in:    make([]float64, 2*s.blockSize),
		out:   make([]float64, 2*s.blockSize),
		block: s.blockSize,
	}, nil
}

func (v *voice) renderBlock(n int) {
	in, out := v.in[:2*n], v.out[:2*n]
	v.drone.Render(in)
	v.proc.Process(in, out)
	v.meter.Process(out)
	v.frames.Add(int64(n))
}

// Read implements io.Reader for the audio device, producing float32
// little-endian stereo frames. A trailing partial frame is zero-filled.
func (v *voice) Read(p []byte) (int, error) {
	const frameBytes = 8

	frames := len(p) / frameBytes
	buf := p
	for frames > 0 {
		n := min(frames, v.block)
		v.renderBlock(n)
		for i, x := range v.out[:2*n] {
			binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(float32(x)))
		}
		buf = buf[n*frameBytes:]
		frames -= n
	}
	clear(buf)
	return len(p), nil
}

func (v *voice) status() string {
	lv := v.meter.Levels()
	sync := "free"
	if v.proc.Synchronized() {
		sync = "sync"
	}
	return fmt.Sprintf("peak %6.1f/%6.1f dBFS  rms %6.1f dBFS  grains %2d  %s  %6.1fs",
		lv.PeakDB[0], lv.PeakDB[1], lv.StereoDB, v.proc.ActiveGrainCount(), sync,
		float64(v.frames.Load())/v.drone.Config().SampleRate)
}
