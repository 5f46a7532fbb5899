package core

import (
	"fmt"
	"math"
)

// ProcessorConfig defines the settings shared by every voice component.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int

	// BufferSeconds is the capacity of each recorded sample buffer.
	BufferSeconds float64

	// Channels is the number of recorded input channels (1 or 2). Output is
	// always interleaved stereo.
	Channels int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns defaults matching a 60 s stereo voice at 48 kHz.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate:    48000,
		BlockSize:     256,
		BufferSeconds: 60,
		Channels:      2,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the maximum processing block size in frames.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithBufferSeconds sets the recorded buffer duration.
func WithBufferSeconds(seconds float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if seconds > 0 {
			cfg.BufferSeconds = seconds
		}
	}
}

// WithChannels sets the recorded channel count. Values other than 1 and 2
// are ignored.
func WithChannels(channels int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if channels == 1 || channels == 2 {
			cfg.Channels = channels
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// BufferSamples returns the per-channel buffer capacity in samples.
func (c ProcessorConfig) BufferSamples() int {
	return int(math.Ceil(c.SampleRate * c.BufferSeconds))
}

// Validate reports whether the configuration can drive a voice.
func (c ProcessorConfig) Validate() error {
	if c.SampleRate <= 0 || math.IsNaN(c.SampleRate) || math.IsInf(c.SampleRate, 0) {
		return fmt.Errorf("sample rate must be > 0: %f", c.SampleRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("block size must be > 0: %d", c.BlockSize)
	}
	if c.BufferSeconds <= 0 || math.IsNaN(c.BufferSeconds) || math.IsInf(c.BufferSeconds, 0) {
		return fmt.Errorf("buffer seconds must be > 0: %f", c.BufferSeconds)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("channels must be 1 or 2: %d", c.Channels)
	}
	return nil
}
