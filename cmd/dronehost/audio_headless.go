//go:build headless

package main

import (
	"context"
	"io"
	"time"
)

// sink pulls audio at real-time pace and discards it. The voice still
// meters every block.
type sink struct {
	src    io.Reader
	buf    []byte
	period time.Duration
}

func newSink(s settings, src io.Reader) (*sink, error) {
	return &sink{
		src:    src,
		buf:    make([]byte, 8*s.blockSize),
		period: time.Duration(float64(s.blockSize) / s.sampleRate * float64(time.Second)),
	}, nil
}

// run renders one block per period until ctx is done.
func (o *sink) run(ctx context.Context) error {
	ticker := time.NewTicker(o.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := o.src.Read(o.buf); err != nil {
				return err
			}
		}
	}
}
