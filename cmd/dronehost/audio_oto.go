//go:build !headless

package main

import (
	"context"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
)

// sink plays the voice on the default audio device.
type sink struct {
	ctx    *oto.Context
	player *oto.Player
}

func newSink(s settings, src io.Reader) (*sink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   int(s.sampleRate),
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4 * time.Duration(float64(s.blockSize)/s.sampleRate*float64(time.Second)),
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	return &sink{ctx: ctx, player: ctx.NewPlayer(src)}, nil
}

// run plays until ctx is done.
func (o *sink) run(ctx context.Context) error {
	o.player.Play()
	<-ctx.Done()
	return o.player.Close()
}
