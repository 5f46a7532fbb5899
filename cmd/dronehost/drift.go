package main

import (
	"context"
	"time"

	"github.com/cwbudde/algo-drone/dsp/automation"
)

// driftTick is how often drift automation publishes a snapshot.
const driftTick = 20 * time.Millisecond

// driftPlayer builds looping lanes that sweep position over 40 s and texture
// over 25 s.
func driftPlayer(s *surface, sampleRate float64) (*automation.Player, error) {
	seconds := func(s float64) int64 { return int64(s * sampleRate) }

	position, err := automation.NewLane([]automation.Point{
		{Time: 0, Value: 0.2},
		{Time: seconds(20), Value: 0.8},
	}, automation.WithLoop(seconds(40)))
	if err != nil {
		return nil, err
	}
	texture, err := automation.NewLane([]automation.Point{
		{Time: 0, Value: 0.3},
		{Time: seconds(12.5), Value: 0.9},
	}, automation.WithLoop(seconds(25)))
	if err != nil {
		return nil, err
	}

	p := automation.NewPlayer(s.snapshot())
	if err := p.SetLane(automation.TargetPosition, position); err != nil {
		return nil, err
	}
	if err := p.SetLane(automation.TargetTexture, texture); err != nil {
		return nil, err
	}
	return p, nil
}

// runDrift publishes automated snapshots on top of the surface targets until
// ctx is done.
func runDrift(ctx context.Context, st settings, s *surface) error {
	p, err := driftPlayer(s, st.sampleRate)
	if err != nil {
		return err
	}

	step := int(st.sampleRate * driftTick.Seconds())
	ticker := time.NewTicker(driftTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.SetBase(s.snapshot())
			p.Publish(s.params, step)
		}
	}
}
