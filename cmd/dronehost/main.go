// Command dronehost plays a granular drone voice on the default audio device.
//
// A bank of detuned sine voices is recorded into the granular processor and
// the result is played back live. Controls come from the keyboard, from a
// JSON control file that is re-read whenever it changes, and optionally from
// a slow drift automation.
//
// Usage:
//
//	dronehost [flags]
//
// Examples:
//
//	dronehost
//	dronehost -rate 44100 -block 128 -controls patch.json
//	dronehost -seconds 30 -drift
//
// Build with -tags headless to replace the audio device with a null sink
// that only meters the output.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

const usageKeys = `keys:
  space tap    z freeze    m mode    b gate    x reset    esc quit
  q/a position  w/s size  e/d pitch  r/f density  t/g texture
  y/h dry/wet   u/j spread  i/k feedback  o/l reverb
`

func main() {
	log.SetFlags(0)
	log.SetPrefix("dronehost: ")

	var s settings
	flag.Float64Var(&s.sampleRate, "rate", 48000, "sample rate in Hz")
	flag.IntVar(&s.blockSize, "block", 256, "processing block size in frames")
	flag.Float64Var(&s.bufferSeconds, "buffer", 60, "recording buffer length in seconds")
	flag.Float64Var(&s.seconds, "seconds", 0, "stop after this many seconds (0 runs until quit)")
	flag.StringVar(&s.controls, "controls", "", "JSON control file to load and watch")
	flag.BoolVar(&s.drift, "drift", false, "slowly automate position and texture")
	flag.Float64Var(&s.rootHz, "root", 55, "drone root frequency in Hz")
	flag.Int64Var(&s.seed, "seed", 1, "random seed for grains and drone drift")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: dronehost [flags]\n\n")
		flag.PrintDefaults()
		fmt.Fprint(flag.CommandLine.Output(), "\n"+usageKeys)
	}
	flag.Parse()

	if err := run(s); err != nil {
		log.Fatal(err)
	}
}

func run(s settings) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if s.seconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.seconds*float64(time.Second)))
		defer cancel()
	}

	v, err := newVoice(s)
	if err != nil {
		return err
	}

	ctl := newSurface(v.proc.Parameters())
	if s.controls != "" {
		if err := ctl.load(s.controls); err != nil {
			return err
		}
	}

	out, err := newSink(s, v)
	if err != nil {
		return fmt.Errorf("audio output: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return out.run(ctx) })
	g.Go(func() error { return runKeys(ctx, ctl, v, cancel) })
	g.Go(func() error { return runStatus(ctx, v) })
	if s.controls != "" {
		g.Go(func() error { return watchControls(ctx, s.controls, ctl) })
	}
	if s.drift {
		g.Go(func() error { return runDrift(ctx, s, ctl) })
	}

	err = g.Wait()
	fmt.Fprint(os.Stderr, "\r\n")
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// runStatus prints meter readouts twice a second until ctx is done.
func runStatus(ctx context.Context, v *voice) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fmt.Fprintf(os.Stderr, "\r%s\x1b[K", v.status())
		}
	}
}
